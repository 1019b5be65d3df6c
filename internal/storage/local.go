package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps resumes on disk under a base directory. Object names are
// cleaned and confined to the base to block path traversal.
type LocalStore struct {
	base string
}

func NewLocalStore(base string) (*LocalStore, error) {
	if base == "" {
		base = "data/resumes"
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{base: abs}, nil
}

func (s *LocalStore) path(objectName string) (string, error) {
	clean := filepath.Clean(objectName)
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid object name %q", objectName)
	}
	p := filepath.Join(s.base, clean)
	if !strings.HasPrefix(p, s.base+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid object name %q", objectName)
	}
	return p, nil
}

func (s *LocalStore) Upload(_ context.Context, objectName string, _ string, r io.Reader) (string, error) {
	p, err := s.path(objectName)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(p)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(p)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return objectName, nil
}

func (s *LocalStore) Open(_ context.Context, objectName string) (io.ReadCloser, error) {
	p, err := s.path(objectName)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}
