package manifest

import (
	"sort"

	"github.com/arthur-debert/molt/pkg/version"
)

// Select returns the migration names needed to move a datastore from
// one version to another, in execution order.
//
// A pair applies when it sits entirely inside the travelled window:
// going forward, every pair with from <= Low and High <= to is taken,
// pairs in ascending order and each pair's migrations in the order the
// manifest lists them. Going backward the same pairs are taken for the
// reverse window and the whole sequence is reversed, so migrations
// undo in the exact opposite order they applied. Same version in and
// out selects nothing.
func (m *Manifest) Select(from, to version.Number) []string {
	low, high := from, to
	backward := from.Compare(to) > 0
	if backward {
		low, high = to, from
	}

	pairs := make([]Bounds, 0, len(m.Migrations))
	for b := range m.Migrations {
		pairs = append(pairs, b)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if c := pairs[i].Low.Compare(pairs[j].Low); c != 0 {
			return c < 0
		}
		return pairs[i].High.Compare(pairs[j].High) < 0
	})

	var names []string
	for _, b := range pairs {
		if b.Low.Compare(low) < 0 || b.High.Compare(high) > 0 {
			continue
		}
		names = append(names, m.Migrations[b]...)
	}

	if backward {
		for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
			names[i], names[j] = names[j], names[i]
		}
	}
	return names
}
