package config

import (
	"bufio"
	"os"
	"strings"

	"github.com/arthur-debert/molt/pkg/errors"
	"github.com/arthur-debert/molt/pkg/version"
)

// OSReleaseVersion reads the running image's version out of an
// os-release file. VERSION_ID carries it, quoted or bare. This is what
// the migrate command targets when asked to migrate to the version the
// image itself ships.
func OSReleaseVersion(path string) (version.Number, error) {
	f, err := os.Open(path)
	if err != nil {
		return version.Number{}, errors.Wrapf(err, errors.ErrOSRelease, "cannot read %s", path)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "VERSION_ID=") {
			continue
		}
		value := strings.TrimPrefix(line, "VERSION_ID=")
		value = strings.Trim(value, `"'`)
		n, err := version.Parse(value)
		if err != nil {
			return version.Number{}, errors.Wrapf(err, errors.ErrOSRelease,
				"%s has unusable VERSION_ID %q", path, value)
		}
		return n, nil
	}
	if err := scanner.Err(); err != nil {
		return version.Number{}, errors.Wrapf(err, errors.ErrOSRelease, "cannot read %s", path)
	}
	return version.Number{}, errors.Newf(errors.ErrOSRelease, "no VERSION_ID in %s", path)
}
