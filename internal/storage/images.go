// Package storage manages product image files referenced by catalog rows.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ImageStore resolves image references against an upload directory.
type ImageStore struct {
	fs  afero.Fs
	dir string
}

// NewImageStore returns a store rooted at dir on fs.
func NewImageStore(fs afero.Fs, dir string) *ImageStore {
	return &ImageStore{fs: fs, dir: dir}
}

// NewOSImageStore returns a store on the local disk.
func NewOSImageStore(dir string) *ImageStore {
	return NewImageStore(afero.NewOsFs(), dir)
}

// Dir returns the upload directory.
func (s *ImageStore) Dir() string {
	return s.dir
}

// EnsureDir creates the upload directory when missing.
func (s *ImageStore) EnsureDir() error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory %s: %w", s.dir, err)
	}
	return nil
}

// pathFor maps a stored reference such as "/uploads/rose.jpg" or "rose.jpg"
// to a file inside the upload directory. Only the base name is kept.
func (s *ImageStore) pathFor(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	name := path.Base(filepath.ToSlash(ref))
	if name == "." || name == "/" || name == ".." {
		return "", false
	}
	return filepath.Join(s.dir, name), true
}

// Exists reports whether the referenced image is present.
func (s *ImageStore) Exists(ref string) (bool, error) {
	p, ok := s.pathFor(ref)
	if !ok {
		return false, nil
	}
	return afero.Exists(s.fs, p)
}

// Remove deletes the referenced image. A missing file is not an error.
func (s *ImageStore) Remove(ref string) error {
	p, ok := s.pathFor(ref)
	if !ok {
		return nil
	}
	if err := s.fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove image %s: %w", ref, err)
	}
	return nil
}
