package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileStore persists artifacts as plain files laid out as
// <root>/<namespace>/<artifactID>. Writes go through a temporary file and a
// rename so readers never observe partial content.
type FileStore struct {
	root string
}

// NewFileStore returns a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact root: %w", err)
	}
	return &FileStore{root: dir}, nil
}

// Root returns the directory the store writes to.
func (f *FileStore) Root() string { return f.root }

func validName(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}

func (f *FileStore) path(namespace, artifactID string) (string, error) {
	if !validName(namespace) || !validName(artifactID) {
		return "", fmt.Errorf("%w: %s/%s", ErrInvalidName, namespace, artifactID)
	}
	return filepath.Join(f.root, namespace, artifactID), nil
}

// Save writes (or overwrites) the artifact file.
func (f *FileStore) Save(namespace, artifactID string, data []byte) error {
	p, err := f.path(namespace, artifactID)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create namespace %s: %w", namespace, err)
	}
	tmp, err := os.CreateTemp(dir, "."+artifactID+".tmp-*")
	if err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("save artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save artifact: %w", err)
	}
	return nil
}

// Get reads the artifact file or returns ErrNotFound.
func (f *FileStore) Get(namespace, artifactID string) ([]byte, error) {
	p, err := f.path(namespace, artifactID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// List returns the sorted artifact ids stored in the namespace.
func (f *FileStore) List(namespace string) ([]string, error) {
	if !validName(namespace) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidName, namespace)
	}
	entries, err := os.ReadDir(filepath.Join(f.root, namespace))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		ids = append(ids, e.Name())
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes the artifact file or returns ErrNotFound.
func (f *FileStore) Delete(namespace, artifactID string) error {
	p, err := f.path(namespace, artifactID)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}
