package server

import (
	"os"
	"path/filepath"
	"strings"

	serrors "strongbox/internal/errors"
)

// Handler executes authenticated commands. The username has already been
// verified by the handshake; implementations may use it for per-user
// namespacing or auditing.
type Handler interface {
	// Rename renames a file from oldName to newName.
	Rename(username, oldName, newName string) error

	// Delete removes the named file.
	Delete(username, name string) error
}

// DirHandler is a Handler operating on flat per-user directories under a
// root. Filenames are reduced to their base name, so a client cannot escape
// its own directory with path traversal.
type DirHandler struct {
	root string
}

// NewDirHandler creates a handler rooted at dir.
func NewDirHandler(dir string) *DirHandler {
	return &DirHandler{root: dir}
}

// Rename renames a file inside the user's directory.
func (h *DirHandler) Rename(username, oldName, newName string) error {
	oldPath, err := h.resolve(username, oldName)
	if err != nil {
		return err
	}
	newPath, err := h.resolve(username, newName)
	if err != nil {
		return err
	}
	return os.Rename(oldPath, newPath)
}

// Delete removes a file inside the user's directory.
func (h *DirHandler) Delete(username, name string) error {
	path, err := h.resolve(username, name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

func (h *DirHandler) resolve(username, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", serrors.ErrInvalidFilename
	}
	return filepath.Join(h.root, username, name), nil
}
