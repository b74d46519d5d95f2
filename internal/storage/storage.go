package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Storage defines the interface for deployed site storage
type Storage interface {
	// Put writes data to name (a slash separated relative path) and returns the file path
	Put(ctx context.Context, name string, data []byte) (string, error)

	// Delete removes a stored file or directory
	Delete(ctx context.Context, path string) error

	// Root is the directory served as static files
	Root() string
}

// LocalStorage implements Storage interface using local filesystem
type LocalStorage struct {
	root string
}

// NewLocalStorage creates a new LocalStorage instance
func NewLocalStorage(root string) (*LocalStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{root: abs}, nil
}

func (s *LocalStorage) Root() string {
	return s.root
}

func (s *LocalStorage) Put(ctx context.Context, name string, data []byte) (string, error) {
	path, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	// Write to a temp file first so the static handler never serves a partial page.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}

	return path, nil
}

func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	// Verify the path is within our storage directory
	if !s.contains(path) || filepath.Clean(path) == s.root {
		return fmt.Errorf("invalid file path: must be within storage directory")
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}
	return os.RemoveAll(path)
}

func (s *LocalStorage) resolve(name string) (string, error) {
	path := filepath.Join(s.root, filepath.FromSlash(name))
	if !s.contains(path) || path == s.root {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return path, nil
}

func (s *LocalStorage) contains(path string) bool {
	rel, err := filepath.Rel(s.root, filepath.Clean(path))
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
