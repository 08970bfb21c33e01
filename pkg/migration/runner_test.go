// pkg/migration/runner_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem, /bin/sh
// PURPOSE: Test migration execution, chaining, and failure handling

package migration_test

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/molt/pkg/errors"
	"github.com/arthur-debert/molt/pkg/migration"
	"github.com/arthur-debert/molt/pkg/testutil"
	"github.com/arthur-debert/molt/pkg/version"
)

var locationPattern = regexp.MustCompile(`^v0\.99\.1_[a-zA-Z0-9]{16}$`)

// readResult returns the lines migrations recorded, oldest first.
func readResult(t *testing.T, base string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(base, "result.txt"))
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

// argValue extracts the value following flag in a recorded line.
func argValue(t *testing.T, line, flag string) string {
	t.Helper()
	fields := strings.Fields(line)
	for i, f := range fields {
		if f == flag {
			require.Less(t, i+1, len(fields), "line %q has no value for %s", line, flag)
			return fields[i+1]
		}
	}
	t.Fatalf("line %q has no %s", line, flag)
	return ""
}

func TestRun(t *testing.T) {
	from := version.MustParse("0.99.0")
	to := version.MustParse("0.99.1")

	t.Run("chains_migrations_in_order", func(t *testing.T) {
		base := t.TempDir()
		sourceDir := testutil.MakeDatastore(t, base, from)
		runDir := t.TempDir()

		repo := testutil.NewFakeRepository()
		testutil.AddMigration(t, repo, "b-first-migration", testutil.MigrationScript("b-first-migration"))
		testutil.AddMigration(t, repo, "a-second-migration", testutil.MigrationScript("a-second-migration"))

		finalDir, err := migration.Run(migration.Options{
			Repository:    repo,
			Direction:     version.Forward,
			Migrations:    []string{"b-first-migration", "a-second-migration"},
			SourceDir:     sourceDir,
			TargetVersion: to,
			RunDir:        runDir,
		})
		require.NoError(t, err)

		assert.Equal(t, base, filepath.Dir(finalDir))
		assert.Regexp(t, locationPattern, filepath.Base(finalDir))
		assert.DirExists(t, finalDir)

		lines := readResult(t, base)
		require.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[0], "b-first-migration: --forward "), "line %q", lines[0])
		assert.True(t, strings.HasPrefix(lines[1], "a-second-migration: --forward "), "line %q", lines[1])

		// Each step reads the previous step's output.
		assert.Equal(t, sourceDir, argValue(t, lines[0], "--source-datastore"))
		firstTarget := argValue(t, lines[0], "--target-datastore")
		assert.Equal(t, firstTarget, argValue(t, lines[1], "--source-datastore"))
		assert.Equal(t, finalDir, argValue(t, lines[1], "--target-datastore"))

		// The intermediate store is gone, the live source is not.
		_, statErr := os.Stat(firstTarget)
		assert.True(t, os.IsNotExist(statErr), "intermediate %s should be removed", firstTarget)
		assert.DirExists(t, sourceDir)
	})

	t.Run("backward_direction_flag", func(t *testing.T) {
		base := t.TempDir()
		sourceDir := testutil.MakeDatastore(t, base, to)

		repo := testutil.NewFakeRepository()
		testutil.AddMigration(t, repo, "undo-migration", testutil.MigrationScript("undo-migration"))

		_, err := migration.Run(migration.Options{
			Repository:    repo,
			Direction:     version.Backward,
			Migrations:    []string{"undo-migration"},
			SourceDir:     sourceDir,
			TargetVersion: from,
			RunDir:        t.TempDir(),
		})
		require.NoError(t, err)

		lines := readResult(t, base)
		require.Len(t, lines, 1)
		assert.True(t, strings.HasPrefix(lines[0], "undo-migration: --backward "), "line %q", lines[0])
	})

	t.Run("no_migrations_returns_source", func(t *testing.T) {
		base := t.TempDir()
		sourceDir := testutil.MakeDatastore(t, base, from)

		finalDir, err := migration.Run(migration.Options{
			Repository:    testutil.NewFakeRepository(),
			Direction:     version.Forward,
			Migrations:    nil,
			SourceDir:     sourceDir,
			TargetVersion: to,
			RunDir:        t.TempDir(),
		})
		require.NoError(t, err)
		assert.Equal(t, sourceDir, finalDir)
	})

	t.Run("missing_migration", func(t *testing.T) {
		base := t.TempDir()
		sourceDir := testutil.MakeDatastore(t, base, from)

		_, err := migration.Run(migration.Options{
			Repository:    testutil.NewFakeRepository(),
			Direction:     version.Forward,
			Migrations:    []string{"not-published"},
			SourceDir:     sourceDir,
			TargetVersion: to,
			RunDir:        t.TempDir(),
		})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrMigrationNotFound),
			"expected MIGRATION_NOT_FOUND, got %v", err)
	})

	t.Run("migration_not_lz4", func(t *testing.T) {
		base := t.TempDir()
		sourceDir := testutil.MakeDatastore(t, base, from)

		repo := testutil.NewFakeRepository().
			AddTarget("raw-migration", testutil.MigrationScript("raw-migration"))

		_, err := migration.Run(migration.Options{
			Repository:    repo,
			Direction:     version.Forward,
			Migrations:    []string{"raw-migration"},
			SourceDir:     sourceDir,
			TargetVersion: to,
			RunDir:        t.TempDir(),
		})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrDecode),
			"expected DECODE, got %v", err)
	})

	t.Run("failure_stops_the_chain", func(t *testing.T) {
		base := t.TempDir()
		sourceDir := testutil.MakeDatastore(t, base, from)

		repo := testutil.NewFakeRepository()
		testutil.AddMigration(t, repo, "step-one", testutil.MigrationScript("step-one"))
		testutil.AddMigration(t, repo, "step-two", testutil.FailingMigrationScript("datastore key vanished"))
		testutil.AddMigration(t, repo, "step-three", testutil.MigrationScript("step-three"))

		_, err := migration.Run(migration.Options{
			Repository:    repo,
			Direction:     version.Forward,
			Migrations:    []string{"step-one", "step-two", "step-three"},
			SourceDir:     sourceDir,
			TargetVersion: to,
			RunDir:        t.TempDir(),
		})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrMigrationFailure),
			"expected MIGRATION_FAILURE, got %v", err)

		details := errors.GetErrorDetails(err)
		require.NotNil(t, details)
		assert.Contains(t, details["stderr"], "datastore key vanished")
		assert.Equal(t, 1, details["exit_code"])

		// Only the first migration ran; the live store is untouched.
		lines := readResult(t, base)
		require.Len(t, lines, 1)
		assert.True(t, strings.HasPrefix(lines[0], "step-one: "), "line %q", lines[0])
		assert.DirExists(t, sourceDir)
	})

	t.Run("unexecutable_migration", func(t *testing.T) {
		base := t.TempDir()
		sourceDir := testutil.MakeDatastore(t, base, from)

		repo := testutil.NewFakeRepository()
		testutil.AddMigration(t, repo, "not-a-binary", []byte{0x00, 0x01, 0x02, 0x03})

		_, err := migration.Run(migration.Options{
			Repository:    repo,
			Direction:     version.Forward,
			Migrations:    []string{"not-a-binary"},
			SourceDir:     sourceDir,
			TargetVersion: to,
			RunDir:        t.TempDir(),
		})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrMigrationStart),
			"expected MIGRATION_START, got %v", err)
	})
}

func TestRunWritesBinariesIntoRunDir(t *testing.T) {
	base := t.TempDir()
	sourceDir := testutil.MakeDatastore(t, base, version.MustParse("0.99.0"))
	runDir := t.TempDir()

	repo := testutil.NewFakeRepository()
	name := fmt.Sprintf("migrate_v%s_record", "0.99.1")
	testutil.AddMigration(t, repo, name, testutil.MigrationScript(name))

	_, err := migration.Run(migration.Options{
		Repository:    repo,
		Direction:     version.Forward,
		Migrations:    []string{name},
		SourceDir:     sourceDir,
		TargetVersion: version.MustParse("0.99.1"),
		RunDir:        runDir,
	})
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(runDir, name))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

func TestRunRejectsPathSeparators(t *testing.T) {
	base := t.TempDir()
	sourceDir := testutil.MakeDatastore(t, base, version.MustParse("0.99.0"))

	repo := testutil.NewFakeRepository()
	testutil.AddMigration(t, repo, "../escape", testutil.MigrationScript("escape"))

	_, err := migration.Run(migration.Options{
		Repository:    repo,
		Direction:     version.Forward,
		Migrations:    []string{"../escape"},
		SourceDir:     sourceDir,
		TargetVersion: version.MustParse("0.99.1"),
		RunDir:        t.TempDir(),
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInternal),
		"expected INTERNAL, got %v", err)
}
