package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/CrestNiraj12/clipflow/domain"
)

// ViewerProvider supplies the signed-in viewer's profile id.
type ViewerProvider interface {
	ViewerID() (string, error)
}

// FileViewerProvider reads the viewer id from a file on disk. A missing or empty
// file means anonymous browsing.
type FileViewerProvider struct {
	path string
}

// NewFileViewerProvider creates a ViewerProvider that reads from the given file path.
func NewFileViewerProvider(path string) *FileViewerProvider {
	return &FileViewerProvider{path: path}
}

// ViewerID returns the id, or "" for anonymous viewers.
func (f *FileViewerProvider) ViewerID() (string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading viewer from %s: %w", f.path, err)
	}

	id := strings.TrimSpace(string(data))
	if id == "" {
		return "", nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("viewer file %s does not hold a profile id: %w", f.path, err)
	}
	return id, nil
}

// RequireViewer returns domain.ErrUnauthorized for anonymous viewers.
func RequireViewer(id string) error {
	if id == "" {
		return domain.ErrUnauthorized
	}
	return nil
}
