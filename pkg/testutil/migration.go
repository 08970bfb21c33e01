package testutil

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"
)

// MigrationScript returns a shell script usable as a migration binary.
// On every run it appends "<name>: <argv>" to result.txt next to the
// source datastore, which lets tests assert execution order and the
// exact arguments each migration received.
func MigrationScript(name string) []byte {
	return []byte(fmt.Sprintf(`#!/bin/sh
src=""
tgt=""
prev=""
for a in "$@"; do
  case "$prev" in
    --source-datastore) src="$a" ;;
    --target-datastore) tgt="$a" ;;
  esac
  prev="$a"
done
if [ -n "$tgt" ]; then
  mkdir -p "$tgt"
fi
echo "%s: $*" >> "$(dirname "$src")/result.txt"
`, name))
}

// FailingMigrationScript returns a migration that writes message to
// stderr and exits non-zero.
func FailingMigrationScript(message string) []byte {
	return []byte(fmt.Sprintf("#!/bin/sh\necho %q >&2\nexit 1\n", message))
}

// CompressLZ4 wraps data in an LZ4 frame, the form migrations are
// published in.
func CompressLZ4(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// AddMigration compresses script and registers it in repo under name.
func AddMigration(t *testing.T, repo *FakeRepository, name string, script []byte) {
	t.Helper()
	repo.AddTarget(name, CompressLZ4(t, script))
}
