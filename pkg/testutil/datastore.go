package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/molt/pkg/version"
)

// MakeDatastore builds the full version link chain for v under base and
// returns the real datastore directory it resolves to. Link targets are
// relative, the same form molt itself writes.
//
//	current -> v1 -> v1.0 -> v1.0.0 -> v1.0.0_0123456789abcdef
func MakeDatastore(t *testing.T, base string, v version.Number) string {
	t.Helper()

	dir := filepath.Join(base, fmt.Sprintf("v%s_0123456789abcdef", v))
	require.NoError(t, os.MkdirAll(dir, 0755))

	patch := filepath.Join(base, fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch))
	minor := filepath.Join(base, fmt.Sprintf("v%d.%d", v.Major, v.Minor))
	major := filepath.Join(base, fmt.Sprintf("v%d", v.Major))
	current := filepath.Join(base, "current")

	require.NoError(t, os.Symlink(filepath.Base(dir), patch))
	require.NoError(t, os.Symlink(filepath.Base(patch), minor))
	require.NoError(t, os.Symlink(filepath.Base(minor), major))
	require.NoError(t, os.Symlink(filepath.Base(major), current))

	return dir
}

// LinkTarget reads a symlink and fails the test if it cannot.
func LinkTarget(t *testing.T, path string) string {
	t.Helper()
	target, err := os.Readlink(path)
	require.NoError(t, err, "reading link %s", path)
	return target
}
