// Package current implements the read-only datastore query: what
// version is installed and where its data lives. It never mutates
// anything, so it is safe to run at any time.
package current

import (
	"github.com/arthur-debert/molt/pkg/datastore"
	"github.com/arthur-debert/molt/pkg/logging"
	"github.com/arthur-debert/molt/pkg/version"
)

// Options defines the options for the Current command
type Options struct {
	// DatastorePath is the datastore's current link
	DatastorePath string
}

// Result reports the resolved datastore.
type Result struct {
	// Version is what the link chain reports
	Version version.Number
	// Dir is the data directory the chain lands on
	Dir string
}

// Current resolves the datastore's version link chain.
func Current(opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.current")

	ds, err := datastore.Resolve(opts.DatastorePath)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("version", ds.Version.String()).
		Str("dir", ds.Dir).
		Msg("Resolved datastore")

	return &Result{Version: ds.Version, Dir: ds.Dir}, nil
}
