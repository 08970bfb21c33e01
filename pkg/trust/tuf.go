package trust

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strconv"

	"github.com/theupdateframework/go-tuf/v2/metadata"

	"github.com/arthur-debert/molt/pkg/errors"
	"github.com/arthur-debert/molt/pkg/logging"
)

// Options locates a signed repository on disk.
type Options struct {
	// RootPath is the trusted root metadata file baked into the image.
	RootPath string
	// MetadataDir holds the repository's signed metadata files.
	MetadataDir string
	// TargetsDir holds the repository's target files.
	TargetsDir string
	// ScratchDir receives a copy of each metadata file as it is
	// verified. It is disposable; a workspace dir is the usual choice.
	ScratchDir string
}

// Client is a Repository backed by a signed repository on local disk.
//
// The metadata chain is walked here instead of through a stock updater:
// signatures, hashes and version numbers are enforced in full, expiry
// dates are not. Migrations can run before the host has wall-clock
// time, and the repository on disk is already the newest this host has
// seen.
type Client struct {
	targets    *metadata.Metadata[metadata.TargetsType]
	targetsDir string
	consistent bool
}

var _ Repository = (*Client)(nil)

// Open verifies the repository metadata against the trusted root and
// returns a client for reading targets. The full chain (root,
// timestamp, snapshot, targets) is checked here; a repository that
// does not verify never produces a Client.
func Open(opts Options) (*Client, error) {
	logger := logging.GetLogger("trust")

	if err := os.MkdirAll(opts.ScratchDir, 0700); err != nil {
		return nil, errors.Wrapf(err, errors.ErrRepoLoad, "cannot create metadata cache %s", opts.ScratchDir)
	}

	rootBytes, err := os.ReadFile(opts.RootPath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRepoLoad, "cannot read trusted root %s", opts.RootPath)
	}
	root, err := metadata.Root().FromBytes(rootBytes)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrRepoLoad, "cannot parse trusted root")
	}
	if err := root.VerifyDelegate(metadata.ROOT, root); err != nil {
		return nil, errors.Wrap(err, errors.ErrRepoLoad, "trusted root does not verify itself")
	}
	consistent := root.Signed.ConsistentSnapshot

	tsBytes, err := readRole(opts.MetadataDir, metadata.TIMESTAMP, 0, consistent)
	if err != nil {
		return nil, err
	}
	ts, err := metadata.Timestamp().FromBytes(tsBytes)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrRepoLoad, "cannot parse timestamp metadata")
	}
	if err := root.VerifyDelegate(metadata.TIMESTAMP, ts); err != nil {
		return nil, errors.Wrap(err, errors.ErrRepoLoad, "timestamp metadata does not verify")
	}

	snapInfo, ok := ts.Signed.Meta["snapshot.json"]
	if !ok {
		return nil, errors.New(errors.ErrRepoLoad, "timestamp metadata lists no snapshot")
	}
	snapBytes, err := readRole(opts.MetadataDir, metadata.SNAPSHOT, snapInfo.Version, consistent)
	if err != nil {
		return nil, err
	}
	if err := snapInfo.VerifyLengthHashes(snapBytes); err != nil {
		return nil, errors.Wrap(err, errors.ErrRepoLoad, "snapshot metadata does not match timestamp")
	}
	snap, err := metadata.Snapshot().FromBytes(snapBytes)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrRepoLoad, "cannot parse snapshot metadata")
	}
	if err := root.VerifyDelegate(metadata.SNAPSHOT, snap); err != nil {
		return nil, errors.Wrap(err, errors.ErrRepoLoad, "snapshot metadata does not verify")
	}
	if snap.Signed.Version != snapInfo.Version {
		return nil, errors.Newf(errors.ErrRepoLoad,
			"snapshot version %d does not match timestamp's %d", snap.Signed.Version, snapInfo.Version)
	}

	tgtInfo, ok := snap.Signed.Meta["targets.json"]
	if !ok {
		return nil, errors.New(errors.ErrRepoLoad, "snapshot metadata lists no targets")
	}
	tgtBytes, err := readRole(opts.MetadataDir, metadata.TARGETS, tgtInfo.Version, consistent)
	if err != nil {
		return nil, err
	}
	if err := tgtInfo.VerifyLengthHashes(tgtBytes); err != nil {
		return nil, errors.Wrap(err, errors.ErrRepoLoad, "targets metadata does not match snapshot")
	}
	targets, err := metadata.Targets().FromBytes(tgtBytes)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrRepoLoad, "cannot parse targets metadata")
	}
	if err := root.VerifyDelegate(metadata.TARGETS, targets); err != nil {
		return nil, errors.Wrap(err, errors.ErrRepoLoad, "targets metadata does not verify")
	}
	if targets.Signed.Version != tgtInfo.Version {
		return nil, errors.Newf(errors.ErrRepoLoad,
			"targets version %d does not match snapshot's %d", targets.Signed.Version, tgtInfo.Version)
	}

	verified := map[string][]byte{
		metadata.ROOT:      rootBytes,
		metadata.TIMESTAMP: tsBytes,
		metadata.SNAPSHOT:  snapBytes,
		metadata.TARGETS:   tgtBytes,
	}
	for role, data := range verified {
		cached := filepath.Join(opts.ScratchDir, role+".json")
		if err := os.WriteFile(cached, data, 0600); err != nil {
			return nil, errors.Wrapf(err, errors.ErrRepoLoad, "cannot cache %s metadata", role)
		}
	}

	logger.Debug().
		Str("metadata", opts.MetadataDir).
		Str("targets", opts.TargetsDir).
		Int64("targetsVersion", targets.Signed.Version).
		Bool("consistentSnapshot", consistent).
		Msg("Loaded trusted repository")

	return &Client{targets: targets, targetsDir: opts.TargetsDir, consistent: consistent}, nil
}

// ReadTarget reads and verifies the named target, returning its bytes.
func (c *Client) ReadTarget(name string) ([]byte, error) {
	info, ok := c.targets.Signed.Targets[name]
	if !ok {
		return nil, errors.Newf(errors.ErrTargetNotFound, "target %q not in repository", name)
	}

	plain := filepath.Join(c.targetsDir, name)
	hashed := make([]string, 0, len(info.Hashes))
	for _, sum := range info.Hashes {
		hashed = append(hashed, filepath.Join(c.targetsDir, hex.EncodeToString(sum)+"."+name))
	}
	var candidates []string
	if c.consistent {
		candidates = append(hashed, plain)
	} else {
		candidates = append([]string{plain}, hashed...)
	}

	var data []byte
	var readErr error
	found := false
	for _, path := range candidates {
		data, readErr = os.ReadFile(path)
		if readErr == nil {
			found = true
			break
		}
	}
	if !found {
		return nil, errors.Wrapf(readErr, errors.ErrTargetLoad, "cannot read target %q", name)
	}
	if err := info.VerifyLengthHashes(data); err != nil {
		return nil, errors.Wrapf(err, errors.ErrTargetLoad, "target %q does not match signed metadata", name)
	}
	return data, nil
}

// readRole reads a role's metadata document. Consistent-snapshot
// repositories store snapshot and targets under version-prefixed names,
// so the preferred spelling follows the root's declaration with the
// other accepted as fallback. The caller verifies whatever comes back;
// the file name is a lookup hint, not a trust decision.
func readRole(dir, role string, version int64, consistent bool) ([]byte, error) {
	plain := filepath.Join(dir, role+".json")
	names := []string{plain}
	if version > 0 {
		versioned := filepath.Join(dir, strconv.FormatInt(version, 10)+"."+role+".json")
		if consistent {
			names = []string{versioned, plain}
		} else {
			names = []string{plain, versioned}
		}
	}
	var firstErr error
	for _, name := range names {
		data, err := os.ReadFile(name)
		if err == nil {
			return data, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, errors.Wrapf(firstErr, errors.ErrRepoLoad, "cannot read %s metadata in %s", role, dir)
}
