// Package file persists key-value blobs as files in a local directory. It is
// the default favorites backend when no object storage is configured.
package file

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/lescale-paris/escale-backend/internal/repository/ports"
)

type KeyValueStore struct {
	dir string
}

// NewKeyValueStore creates dir if needed. Files are written 0600; the blobs
// hold user state.
func NewKeyValueStore(dir string) (*KeyValueStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("file store: create dir %q: %w", dir, err)
	}
	return &KeyValueStore{dir: dir}, nil
}

func (s *KeyValueStore) GetItem(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, ports.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("file store: read %q: %w", key, err)
	}
	return data, nil
}

func (s *KeyValueStore) SetItem(_ context.Context, key string, value []byte) error {
	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0o600); err != nil {
		return fmt.Errorf("file store: write %q: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("file store: commit %q: %w", key, err)
	}
	return nil
}

// path escapes the key so namespace separators cannot traverse directories.
func (s *KeyValueStore) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}

var _ ports.KeyValueStore = (*KeyValueStore)(nil)
