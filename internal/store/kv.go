// Package store persists the document snapshot through an injected key-value collaborator.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/ppiankov/flow/internal/model"
)

// KV is the minimal key-value capability persistence needs
type KV interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Close() error
}

// FileKV keeps one file per key inside a directory
type FileKV struct {
	dir string
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// NewFileKV creates a file-backed store rooted at dir
func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileKV{dir: dir}, nil
}

// Get returns the value for key; a missing key is not an error
func (s *FileKV) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return data, true, nil
}

// Set replaces the value for key atomically
func (s *FileKV) Set(key string, value []byte) error {
	tmp, err := os.CreateTemp(s.dir, "."+sanitizeKey(key)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

// Close is a no-op for files
func (s *FileKV) Close() error {
	return nil
}

func (s *FileKV) path(key string) string {
	return filepath.Join(s.dir, sanitizeKey(key)+".json")
}

func sanitizeKey(key string) string {
	return unsafeKeyChars.ReplaceAllString(key, "_")
}

// SQLiteFile is the database file name used under the store path
const SQLiteFile = "flow.db"

// Open returns the KV backend selected by cfg. cfg.Path is a directory for
// both drivers.
func Open(cfg model.StoreConfig) (KV, error) {
	switch cfg.Driver {
	case model.StoreDriverSQLite:
		kv, err := OpenSQLite(filepath.Join(cfg.Path, SQLiteFile))
		if err != nil {
			return nil, err
		}
		return kv, nil
	case model.StoreDriverFile, "":
		kv, err := NewFileKV(cfg.Path)
		if err != nil {
			return nil, err
		}
		return kv, nil
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Driver)
	}
}
