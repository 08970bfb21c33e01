package migration

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pierrec/lz4/v4"

	"github.com/arthur-debert/molt/pkg/datastore"
	"github.com/arthur-debert/molt/pkg/errors"
	"github.com/arthur-debert/molt/pkg/logging"
	"github.com/arthur-debert/molt/pkg/trust"
	"github.com/arthur-debert/molt/pkg/version"
)

// Options describes one migration run. Migrations are executed in the
// order given; the caller has already selected and ordered them for
// the direction of travel.
type Options struct {
	// Repository supplies the migration binaries.
	Repository trust.Repository
	// Direction is passed to each migration binary. Forward or
	// Backward; a run with no migrations never gets here.
	Direction version.Direction
	// Migrations are the repository target names to execute, in order.
	Migrations []string
	// SourceDir is the live datastore directory migrations start from.
	// Each step's output is reserved as a sibling of its source.
	SourceDir string
	// TargetVersion names the version every step's output directory is
	// reserved under.
	TargetVersion version.Number
	// RunDir receives the decoded binaries. Disposable; the workspace
	// run dir is the usual choice.
	RunDir string
}

// Run executes the migrations and returns the directory holding the
// fully migrated datastore. With no migrations to run that is just
// SourceDir. Each step reads from the previous step's output and
// writes a fresh sibling directory, so the source datastore is never
// modified; on any failure Run returns immediately and the caller's
// links still describe the untouched store. Intermediate directories
// are removed best-effort only after every step has succeeded.
func Run(opts Options) (string, error) {
	logger := logging.GetLogger("migration")

	sourceDir := opts.SourceDir
	var created []string

	for i, name := range opts.Migrations {
		binPath, err := fetch(opts.Repository, name, opts.RunDir)
		if err != nil {
			return "", err
		}

		targetDir, err := datastore.NewLocation(filepath.Dir(sourceDir), opts.TargetVersion)
		if err != nil {
			return "", err
		}

		logger.Info().
			Str("migration", name).
			Str("direction", opts.Direction.String()).
			Str("source", sourceDir).
			Str("target", targetDir).
			Msgf("Running migration %d of %d", i+1, len(opts.Migrations))

		if err := execute(binPath, opts.Direction, sourceDir, targetDir); err != nil {
			return "", err
		}

		created = append(created, targetDir)
		sourceDir = targetDir
	}

	// Everything this run created except the final store is dead
	// weight now. The original source stays; it is the rollback.
	if len(created) > 1 {
		for _, dir := range created[:len(created)-1] {
			if err := os.RemoveAll(dir); err != nil {
				logger.Warn().Err(err).Str("dir", dir).Msg("Failed to remove intermediate datastore")
			}
		}
	}

	return sourceDir, nil
}

// fetch reads a migration out of the repository, undoes the LZ4
// framing, and writes it executable into runDir.
func fetch(repo trust.Repository, name, runDir string) (string, error) {
	if filepath.Base(name) != name {
		return "", errors.Newf(errors.ErrInternal, "migration name %q contains a path separator", name)
	}

	data, err := repo.ReadTarget(name)
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrTargetNotFound) {
			return "", errors.Wrapf(err, errors.ErrMigrationNotFound, "migration %q not in repository", name)
		}
		return "", errors.Wrapf(err, errors.ErrMigrationLoad, "cannot load migration %q", name)
	}

	decoded, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrDecode, "migration %q is not valid lz4", name)
	}

	// The repository stores bytes, not permissions; make it runnable.
	binPath := filepath.Join(runDir, name)
	if err := os.WriteFile(binPath, decoded, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrMigrationSave, "cannot write migration %q", name)
	}
	return binPath, nil
}

// execute runs one migration binary against a source and target store.
// Output is captured rather than inherited: stdout is progress detail,
// stderr is the migration telling us what went wrong.
func execute(binPath string, direction version.Direction, sourceDir, targetDir string) error {
	logger := logging.GetLogger("migration")
	name := filepath.Base(binPath)

	args := []string{
		direction.Flag(),
		"--source-datastore", sourceDir,
		"--target-datastore", targetDir,
	}
	logging.LogCommand(name, args)

	cmd := exec.Command(binPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if stdout.Len() > 0 {
		logger.Debug().
			Str("migration", name).
			Str("output", stdout.String()).
			Msg("Migration stdout")
	}
	if stderr.Len() > 0 {
		logger.Error().
			Str("migration", name).
			Str("output", stderr.String()).
			Msg("Migration stderr")
	}

	if err != nil {
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			return errors.Wrapf(err, errors.ErrMigrationFailure, "migration %q failed", name).
				WithDetail("exit_code", exitErr.ExitCode()).
				WithDetail("stderr", stderr.String())
		}
		return errors.Wrapf(err, errors.ErrMigrationStart, "cannot start migration %q", name)
	}

	logger.Info().Str("migration", name).Msg("Migration succeeded")
	return nil
}
