package datastore

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/arthur-debert/molt/pkg/errors"
	"github.com/arthur-debert/molt/pkg/version"
)

// Handle is a resolved datastore: the version the chain reports and
// the real directory holding the data.
type Handle struct {
	Version version.Number
	Dir     string
}

// Resolve follows the version link chain starting at linkPath, the
// datastore's current link, and reports what it finds.
//
// The chain has a link per precision level, so the system can be
// addressed by major, minor, or full version:
//
//	current -> v1 -> v1.5 -> v1.5.2 -> v1.5.2_f00db475a7c6e188
//
// The version comes from the name of the patch-level link, three hops
// in; the directory is whatever that link points at. Link targets are
// normally bare names relative to the datastore directory, but
// absolute targets are followed too.
func Resolve(linkPath string) (Handle, error) {
	linkPath = filepath.Clean(linkPath)
	if linkPath == "/" || linkPath == "." {
		return Handle{}, errors.Newf(errors.ErrLinkToRoot,
			"datastore link %q has no parent directory", linkPath)
	}

	// Three hops land on the patch link: current -> major -> minor -> patch.
	patchLink := linkPath
	var err error
	for i := 0; i < 3; i++ {
		patchLink, err = follow(patchLink)
		if err != nil {
			return Handle{}, err
		}
	}

	name := filepath.Base(patchLink)
	if !utf8.ValidString(name) {
		return Handle{}, errors.Newf(errors.ErrPathEncoding,
			"link name %q is not valid text", name)
	}
	v, err := version.Parse(name)
	if err != nil {
		return Handle{}, errors.Wrapf(err, errors.ErrVersionParse,
			"link %s does not name a version", patchLink)
	}

	dir, err := follow(patchLink)
	if err != nil {
		return Handle{}, err
	}

	return Handle{Version: v, Dir: dir}, nil
}

// follow reads one symlink and returns the absolute path it points at.
func follow(linkPath string) (string, error) {
	target, err := os.Readlink(linkPath)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrLinkRead, "cannot read link %s", linkPath)
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target), nil
	}
	return filepath.Join(filepath.Dir(linkPath), target), nil
}

// Link names for each precision level of a version, relative to the
// datastore directory.

func currentLinkName() string {
	return "current"
}

func majorLinkName(v version.Number) string {
	return fmt.Sprintf("v%d", v.Major)
}

func minorLinkName(v version.Number) string {
	return fmt.Sprintf("v%d.%d", v.Major, v.Minor)
}

func patchLinkName(v version.Number) string {
	return fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
}
