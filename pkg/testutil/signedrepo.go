package testutil

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sigstore/sigstore/pkg/signature"
	"github.com/stretchr/testify/require"
	"github.com/theupdateframework/go-tuf/v2/metadata"
)

// SignedRepo is an on-disk signed update repository built for one test.
type SignedRepo struct {
	// RootPath is the trusted root metadata file.
	RootPath string
	// MetadataDir holds the signed role metadata.
	MetadataDir string
	// TargetsDir holds the target files.
	TargetsDir string
}

// MakeSignedRepo writes a complete single-key signed repository under
// dir, publishing the given targets. Expires applies to every role and
// may lie in the past: loading the repository must not depend on the
// host clock.
func MakeSignedRepo(t *testing.T, dir string, targets map[string][]byte, expires time.Time) SignedRepo {
	t.Helper()

	metadataDir := filepath.Join(dir, "metadata")
	targetsDir := filepath.Join(dir, "targets")
	require.NoError(t, os.MkdirAll(metadataDir, 0755))
	require.NoError(t, os.MkdirAll(targetsDir, 0755))

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer, err := signature.LoadSigner(priv, crypto.Hash(0))
	require.NoError(t, err)
	key, err := metadata.KeyFromPublicKey(pub)
	require.NoError(t, err)

	tgts := metadata.Targets(expires)
	for name, data := range targets {
		info, err := metadata.TargetFile().FromBytes(name, data, "sha256")
		require.NoError(t, err)
		tgts.Signed.Targets[name] = info
		require.NoError(t, os.WriteFile(filepath.Join(targetsDir, name), data, 0644))
	}

	snap := metadata.Snapshot(expires)
	snap.Signed.Meta["targets.json"] = metadata.MetaFile(tgts.Signed.Version)

	ts := metadata.Timestamp(expires)
	ts.Signed.Meta["snapshot.json"] = metadata.MetaFile(snap.Signed.Version)

	root := metadata.Root(expires)
	root.Signed.ConsistentSnapshot = false
	for _, role := range []string{metadata.ROOT, metadata.TIMESTAMP, metadata.SNAPSHOT, metadata.TARGETS} {
		require.NoError(t, root.Signed.AddKey(key, role))
	}

	_, err = root.Sign(signer)
	require.NoError(t, err)
	_, err = ts.Sign(signer)
	require.NoError(t, err)
	_, err = snap.Sign(signer)
	require.NoError(t, err)
	_, err = tgts.Sign(signer)
	require.NoError(t, err)

	rootPath := filepath.Join(dir, "root.json")
	require.NoError(t, root.ToFile(rootPath, true))
	require.NoError(t, ts.ToFile(filepath.Join(metadataDir, "timestamp.json"), true))
	require.NoError(t, snap.ToFile(filepath.Join(metadataDir, "snapshot.json"), true))
	require.NoError(t, tgts.ToFile(filepath.Join(metadataDir, "targets.json"), true))

	return SignedRepo{RootPath: rootPath, MetadataDir: metadataDir, TargetsDir: targetsDir}
}
