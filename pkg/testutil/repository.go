package testutil

import (
	"github.com/arthur-debert/molt/pkg/errors"
	"github.com/arthur-debert/molt/pkg/trust"
)

// FakeRepository is a trust.Repository serving canned targets from
// memory. It stands in for a signed repository in tests; target bytes
// are taken at face value.
type FakeRepository struct {
	Targets map[string][]byte
}

var _ trust.Repository = (*FakeRepository)(nil)

// NewFakeRepository returns an empty repository.
func NewFakeRepository() *FakeRepository {
	return &FakeRepository{Targets: map[string][]byte{}}
}

// AddTarget registers a target, replacing any previous content under
// the same name. Returns the repository for chaining.
func (r *FakeRepository) AddTarget(name string, data []byte) *FakeRepository {
	r.Targets[name] = data
	return r
}

// ReadTarget implements trust.Repository.
func (r *FakeRepository) ReadTarget(name string) ([]byte, error) {
	data, ok := r.Targets[name]
	if !ok {
		return nil, errors.Newf(errors.ErrTargetNotFound, "target %q not in repository", name)
	}
	return data, nil
}
