// Package filestore keeps JSON documents as files in a data directory.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	"github.com/SscSPs/valutatrade_hub/internal/core/ports/repositories"
)

const fileExt = ".json"

// Store implements repositories.KVStore on top of the local filesystem.
// Every key maps to <dir>/<key>.json.
type Store struct {
	dir string
	mu  sync.Mutex
}

var _ repositories.KVStore = (*Store)(nil)

// New creates the data directory if needed and returns a store rooted at it.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: data directory must not be empty", apperrors.ErrConfiguration)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Path returns the file backing key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+fileExt)
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: document '%s'", apperrors.ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to read document '%s': %w", key, err)
	}
	return data, nil
}

// Put writes data to a temporary file in the same directory, fsyncs it and
// renames it over the target, so readers never observe a truncated document.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.Path(key)
	tmp, err := os.CreateTemp(s.dir, key+fileExt+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for '%s': %w", key, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write document '%s': %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync document '%s': %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file for '%s': %w", key, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("failed to replace document '%s': %w", key, err)
	}
	committed = true

	syncDir(s.dir)
	return nil
}

// syncDir flushes the rename to disk where the platform allows it.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

func validateKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return fmt.Errorf("%w: invalid document key '%s'", apperrors.ErrValidation, key)
	}
	return nil
}
