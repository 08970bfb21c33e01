package datastore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/arthur-debert/molt/pkg/errors"
	"github.com/arthur-debert/molt/pkg/version"
)

// NewLocation reserves a directory name for a datastore at version v,
// as a sibling of the other versioned directories in base. The name
// carries a random suffix so repeated migrations to the same version
// never tread on an existing store:
//
//	v1.5.2_497a6f82cd3e41b8
//
// The directory itself is not created; migrations create their target
// store. An existing entry under the chosen name is an error rather
// than something to silently reuse.
func NewLocation(base string, v version.Number) (string, error) {
	name := fmt.Sprintf("v%s_%s", v, randomSuffix())
	path := filepath.Join(base, name)

	_, err := os.Lstat(path)
	if err == nil {
		return "", errors.Newf(errors.ErrLocationCollision, "datastore location %s already exists", path)
	}
	if !os.IsNotExist(err) {
		return "", errors.Wrapf(err, errors.ErrInternal, "cannot check datastore location %s", path)
	}
	return path, nil
}

// suffix returns 16 random characters fit for a path component.
// Swappable so tests can force collisions.
var randomSuffix = suffix

func suffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
