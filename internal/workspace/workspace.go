package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Workspace is a directory owned by exactly one execution attempt.
type Workspace struct {
	id   string
	path string
}

func (ws *Workspace) ID() string {
	return ws.id
}

func (ws *Workspace) Path() string {
	return ws.path
}

// FilePath returns the absolute path of name inside the workspace.
func (ws *Workspace) FilePath(name string) string {
	return filepath.Join(ws.path, name)
}

func (ws *Workspace) AddFile(name string, content []byte) error {
	if name == "" || strings.ContainsRune(name, os.PathSeparator) {
		return fmt.Errorf("invalid workspace file name %q", name)
	}
	err := os.WriteFile(ws.FilePath(name), content, 0644)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func (ws *Workspace) HasFile(name string) bool {
	info, err := os.Stat(ws.FilePath(name))
	return err == nil && !info.IsDir()
}
