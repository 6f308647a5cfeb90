package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
)

// ResourceError reports that a workspace could not be allocated.
type ResourceError struct {
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("failed to create workspace %s: %v", e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// Manager hands out uniquely named directories under a shared root.
// Paths never collide, so concurrent callers need no coordination.
type Manager struct {
	root string
	live *xsync.MapOf[string, *Workspace]
	log  *slog.Logger
}

func NewManager(root string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root %s: %w", root, err)
	}

	err = os.MkdirAll(absRoot, 0755)
	if err != nil {
		return nil, &ResourceError{Path: absRoot, Err: err}
	}

	return &Manager{
		root: absRoot,
		live: xsync.NewMapOf[string, *Workspace](),
		log:  logger.With("component", "workspace"),
	}, nil
}

func (m *Manager) Root() string {
	return m.root
}

// Acquire creates a fresh, empty workspace directory.
func (m *Manager) Acquire() (*Workspace, error) {
	id := uuid.NewString()
	path := filepath.Join(m.root, "ws-"+id)

	// Mkdir rather than MkdirAll: an existing directory must never be reused.
	err := os.Mkdir(path, 0755)
	if err != nil {
		return nil, &ResourceError{Path: path, Err: err}
	}

	ws := &Workspace{id: id, path: path}
	m.live.Store(id, ws)
	m.log.Debug("acquired workspace", "id", id, "path", path)
	return ws, nil
}

// Release removes the workspace directory tree. Failures are logged and
// swallowed. Releasing an already released workspace does nothing.
func (m *Manager) Release(ws *Workspace) {
	if ws == nil {
		return
	}

	if _, loaded := m.live.LoadAndDelete(ws.id); !loaded {
		return
	}

	err := os.RemoveAll(ws.path)
	if err != nil {
		m.log.Error("failed to remove workspace", "id", ws.id, "path", ws.path, "error", err)
		return
	}
	m.log.Debug("released workspace", "id", ws.id)
}

// With runs fn inside a freshly acquired workspace and releases it on every
// exit path, including a panic in fn.
func (m *Manager) With(fn func(ws *Workspace) error) error {
	ws, err := m.Acquire()
	if err != nil {
		return err
	}
	defer m.Release(ws)

	return fn(ws)
}

// Live returns the number of acquired workspaces not yet released.
func (m *Manager) Live() int {
	return m.live.Size()
}
