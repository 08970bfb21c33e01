package version

import (
	"strings"

	jujuversion "github.com/juju/version/v2"

	"github.com/arthur-debert/molt/pkg/errors"
)

// Number is a parsed major.minor.patch triple. It is a comparable value
// type and safe to use as a map key.
type Number = jujuversion.Number

// Parse parses a version string into a Number. A single leading "v" is
// accepted and stripped. Pre-release tags and build numbers are rejected;
// the datastore only ever deals in plain triples.
func Parse(s string) (Number, error) {
	trimmed := strings.TrimPrefix(s, "v")
	n, err := jujuversion.Parse(trimmed)
	if err != nil {
		return Number{}, errors.Wrapf(err, errors.ErrVersionParse, "invalid version %q", s)
	}
	if n.Tag != "" || n.Build != 0 {
		return Number{}, errors.Newf(errors.ErrVersionParse, "invalid version %q: expected major.minor.patch", s)
	}
	return n, nil
}

// MustParse parses a version string and panics on failure. Only for use
// with literals in tests and table definitions.
func MustParse(s string) Number {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}
