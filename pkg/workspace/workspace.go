// Package workspace manages the private scratch area a migrator run
// works in: the repository cache and the decoded migration binaries.
// Nothing in it survives the run.
package workspace

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/molt/pkg/errors"
	"github.com/arthur-debert/molt/pkg/logging"
)

// Workspace is a disposable directory tree for one migrator run.
type Workspace struct {
	root string
}

// New creates a workspace under parent. An empty parent places it in
// the system temp directory. The workspace root is fresh and private
// to this process; binaries decoded into it are executed, so it must
// not be writable by anyone else.
func New(parent string) (*Workspace, error) {
	if parent != "" {
		if err := os.MkdirAll(parent, 0755); err != nil {
			return nil, errors.Wrapf(err, errors.ErrWorkspaceCreate, "cannot create working directory %s", parent)
		}
	}
	root, err := os.MkdirTemp(parent, "molt.*")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrWorkspaceCreate, "cannot create workspace")
	}
	for _, sub := range []string{"repo", "run"} {
		if err := os.Mkdir(filepath.Join(root, sub), 0700); err != nil {
			_ = os.RemoveAll(root)
			return nil, errors.Wrapf(err, errors.ErrWorkspaceCreate, "cannot create workspace %s dir", sub)
		}
	}

	logger := logging.GetLogger("workspace")
	logger.Debug().Str("root", root).Msg("Created workspace")
	return &Workspace{root: root}, nil
}

// Root returns the workspace root directory.
func (w *Workspace) Root() string {
	return w.root
}

// RepoDir returns the scratch directory for repository metadata and
// target caches.
func (w *Workspace) RepoDir() string {
	return filepath.Join(w.root, "repo")
}

// RunDir returns the directory migration binaries are written to
// before execution.
func (w *Workspace) RunDir() string {
	return filepath.Join(w.root, "run")
}

// Close removes the workspace and everything in it. Safe to call more
// than once.
func (w *Workspace) Close() error {
	if err := os.RemoveAll(w.root); err != nil {
		logger := logging.GetLogger("workspace")
		logger.Warn().Err(err).Str("root", w.root).Msg("Failed to remove workspace")
		return err
	}
	return nil
}
