package migrate

import (
	"path/filepath"

	"github.com/arthur-debert/molt/pkg/datastore"
	"github.com/arthur-debert/molt/pkg/logging"
	"github.com/arthur-debert/molt/pkg/manifest"
	"github.com/arthur-debert/molt/pkg/migration"
	"github.com/arthur-debert/molt/pkg/trust"
	"github.com/arthur-debert/molt/pkg/version"
	"github.com/arthur-debert/molt/pkg/workspace"
)

// Options defines the options for the Migrate command
type Options struct {
	// DatastorePath is the datastore's current link
	DatastorePath string
	// TargetVersion is the version to bring the datastore to
	TargetVersion version.Number
	// RootPath is the trusted root metadata file
	RootPath string
	// MetadataDir holds the update repository's signed metadata
	MetadataDir string
	// MigrationDir holds the update repository's target files
	MigrationDir string
	// WorkingDir hosts the per-run workspace. Empty means the system
	// temp directory
	WorkingDir string
	// DryRun reports the migration plan without touching the datastore
	DryRun bool
	// Repository overrides the verified on-disk repository. Tests
	// inject fakes here; when nil, Migrate opens the real one
	Repository trust.Repository
}

// Result reports what Migrate found and did.
type Result struct {
	// From is the version the datastore was at
	From version.Number
	// To is the requested version
	To version.Number
	// Direction relates From to To
	Direction version.Direction
	// Migrations lists the selected migrations in execution order
	Migrations []string
	// FinalDir is the directory the links point at after the flip.
	// Empty for no-ops and dry runs
	FinalDir string
	// NoOp is set when the datastore was already at To
	NoOp bool
}

// Migrate brings the datastore to opts.TargetVersion. It resolves the
// current version from the link chain, selects the migrations covering
// the version window, runs them through a chain of fresh datastore
// copies, and flips the links to the last copy. The pre-migration
// datastore directory stays on disk as the rollback target.
//
// A datastore already at the target version is left completely
// untouched. With no matching migrations the links are flipped to the
// existing data directory, which from then on serves both versions.
func Migrate(opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.migrate")
	logger.Debug().
		Str("datastorePath", opts.DatastorePath).
		Str("targetVersion", opts.TargetVersion.String()).
		Bool("dryRun", opts.DryRun).
		Msg("Starting migrate command")

	ds, err := datastore.Resolve(opts.DatastorePath)
	if err != nil {
		return nil, err
	}

	direction := version.DirectionOf(ds.Version, opts.TargetVersion)
	result := &Result{
		From:      ds.Version,
		To:        opts.TargetVersion,
		Direction: direction,
	}

	if direction == version.None {
		logger.Info().
			Str("version", ds.Version.String()).
			Msg("Datastore already at target version, nothing to do")
		result.NoOp = true
		return result, nil
	}

	ws, err := workspace.New(opts.WorkingDir)
	if err != nil {
		return nil, err
	}
	defer func() { _ = ws.Close() }()

	repo := opts.Repository
	if repo == nil {
		repo, err = trust.Open(trust.Options{
			RootPath:    opts.RootPath,
			MetadataDir: opts.MetadataDir,
			TargetsDir:  opts.MigrationDir,
			ScratchDir:  ws.RepoDir(),
		})
		if err != nil {
			return nil, err
		}
	}

	man, err := manifest.Load(repo)
	if err != nil {
		return nil, err
	}
	result.Migrations = man.Select(ds.Version, opts.TargetVersion)

	logger.Info().
		Str("from", ds.Version.String()).
		Str("to", opts.TargetVersion.String()).
		Str("direction", direction.String()).
		Strs("migrations", result.Migrations).
		Msg("Selected migrations")

	if opts.DryRun {
		return result, nil
	}

	finalDir, err := migration.Run(migration.Options{
		Repository:    repo,
		Direction:     direction,
		Migrations:    result.Migrations,
		SourceDir:     ds.Dir,
		TargetVersion: opts.TargetVersion,
		RunDir:        ws.RunDir(),
	})
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(filepath.Clean(opts.DatastorePath))
	if err := datastore.Flip(base, opts.TargetVersion, finalDir); err != nil {
		return nil, err
	}
	result.FinalDir = finalDir

	logger.Info().
		Str("from", ds.Version.String()).
		Str("to", opts.TargetVersion.String()).
		Int("migrations", len(result.Migrations)).
		Str("datastore", finalDir).
		Msg("Migrate command completed")

	return result, nil
}
