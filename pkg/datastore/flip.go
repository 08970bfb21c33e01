package datastore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/molt/pkg/errors"
	"github.com/arthur-debert/molt/pkg/logging"
	"github.com/arthur-debert/molt/pkg/version"
)

// Flip repoints the version link chain in base at toDir, publishing it
// as version v. toDir must be a sibling reserved with NewLocation.
//
// Links are replaced innermost first - patch, minor, major, then
// current - and each replacement is a fresh temporary symlink renamed
// over the old link, so every level is swapped atomically and a crash
// at any point leaves the chain wholly on the old store or wholly on
// the new one. Link targets are bare names, keeping the chain valid
// however the datastore directory itself is mounted. Leftover
// temporary links from an interrupted run are inert debris.
func Flip(base string, v version.Number, toDir string) error {
	logger := logging.GetLogger("datastore")

	base = filepath.Clean(base)
	if filepath.Dir(filepath.Clean(toDir)) != base {
		return errors.Newf(errors.ErrInvalidInput,
			"datastore %s is not directly under %s", toDir, base)
	}

	// Hold the directory open before touching any link: it is needed
	// for the fsync afterward, and failing to open it must not happen
	// with the chain half flipped.
	dir, err := os.Open(base)
	if err != nil {
		return errors.Wrapf(err, errors.ErrDirOpen, "cannot open datastore directory %s", base)
	}
	defer func() { _ = dir.Close() }()

	patch := patchLinkName(v)
	minor := minorLinkName(v)
	major := majorLinkName(v)

	swaps := []struct {
		link   string
		target string
	}{
		{patch, filepath.Base(toDir)},
		{minor, patch},
		{major, minor},
		{currentLinkName(), major},
	}

	for _, s := range swaps {
		if err := swapLink(base, s.link, s.target); err != nil {
			return err
		}
		logger.Debug().
			Str("link", s.link).
			Str("target", s.target).
			Msg("Flipped link")
	}

	// Push the renamed entries to disk. The links are correct either
	// way; this narrows the window where power loss could revert them.
	if err := dir.Sync(); err != nil {
		logger.Warn().Err(err).Str("dir", base).Msg("Failed to sync datastore directory")
	}

	return nil
}

// swapLink atomically points base/link at target by creating a
// uniquely named temporary symlink and renaming it into place. Rename
// replaces any existing link and creates the name when the version
// introduces a new precision level.
func swapLink(base, link, target string) error {
	linkPath := filepath.Join(base, link)
	tmpPath := filepath.Join(base, fmt.Sprintf("%s.%s", link, suffix()))

	if err := os.Symlink(target, tmpPath); err != nil {
		return errors.Wrapf(err, errors.ErrLinkCreate, "cannot create temporary link %s", tmpPath)
	}
	if err := os.Rename(tmpPath, linkPath); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrapf(err, errors.ErrLinkSwap, "cannot swap link %s into place", linkPath)
	}
	return nil
}
