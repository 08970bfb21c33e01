package manifest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arthur-debert/molt/pkg/errors"
	"github.com/arthur-debert/molt/pkg/trust"
	"github.com/arthur-debert/molt/pkg/version"
)

// TargetName is the repository target the manifest is published under.
const TargetName = "manifest.json"

// Bounds is one version pair in the manifest. Low is always the older
// version; pairs where Low is not strictly below High are rejected at
// parse time.
type Bounds struct {
	Low  version.Number
	High version.Number
}

// String renders the pair the way it appears in the manifest.
func (b Bounds) String() string {
	return fmt.Sprintf("(%s, %s)", b.Low, b.High)
}

// MarshalText implements encoding.TextMarshaler so Bounds can be used
// as a JSON map key.
func (b Bounds) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts the
// "(low, high)" form, with or without the space after the comma.
func (b *Bounds) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return errors.Newf(errors.ErrManifestInvalid, "malformed version pair %q", s)
	}
	parts := strings.Split(s[1:len(s)-1], ",")
	if len(parts) != 2 {
		return errors.Newf(errors.ErrManifestInvalid, "malformed version pair %q", s)
	}
	low, err := version.Parse(strings.TrimSpace(parts[0]))
	if err != nil {
		return errors.Wrapf(err, errors.ErrManifestInvalid, "malformed version pair %q", s)
	}
	high, err := version.Parse(strings.TrimSpace(parts[1]))
	if err != nil {
		return errors.Wrapf(err, errors.ErrManifestInvalid, "malformed version pair %q", s)
	}
	b.Low = low
	b.High = high
	return nil
}

// Manifest is the decoded migration manifest. Fields other than
// migrations exist in the published document but are not ours to
// interpret, so they are ignored.
type Manifest struct {
	Migrations map[Bounds][]string `json:"migrations"`
}

// Parse decodes and validates manifest JSON.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestInvalid, "cannot decode manifest")
	}
	for b := range m.Migrations {
		if b.Low.Compare(b.High) >= 0 {
			return nil, errors.Newf(errors.ErrManifestInvalid,
				"version pair %s is not ordered low to high", b)
		}
	}
	if m.Migrations == nil {
		m.Migrations = map[Bounds][]string{}
	}
	return &m, nil
}

// Load reads the manifest target out of a trusted repository and parses it.
func Load(repo trust.Repository) (*Manifest, error) {
	data, err := repo.ReadTarget(TargetName)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestLoad, "cannot read %s from repository", TargetName)
	}
	return Parse(data)
}
