// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
)

// FileStore keeps the payload in a single JSON file. Save is atomic and
// durable (fsync before rename), so replicas sharing the file never observe
// a partial write. Freshness derives from the file mtime, matching how the
// cache behaves when multiple processes share one data dir.
type FileStore struct {
	path string
}

// NewFileStore creates a file store at dir/name, creating dir if needed.
func NewFileStore(dir, name string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileStore{path: filepath.Join(dir, name)}, nil
}

// Path returns the backing file path.
func (fs *FileStore) Path() string { return fs.path }

// Load reads the payload and its mtime.
func (fs *FileStore) Load(_ context.Context) ([]byte, time.Time, error) {
	info, err := os.Stat(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, time.Time{}, ErrNoPayload
		}
		return nil, time.Time{}, fmt.Errorf("stat cache file: %w", err)
	}

	data, err := os.ReadFile(fs.path)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("read cache file: %w", err)
	}
	return data, info.ModTime(), nil
}

// Save atomically replaces the payload file.
func (fs *FileStore) Save(_ context.Context, data []byte) error {
	pending, err := renameio.NewPendingFile(fs.path)
	if err != nil {
		return fmt.Errorf("create pending cache file: %w", err)
	}
	defer pending.Cleanup() //nolint:errcheck // no-op after a successful replace

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write cache payload: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace cache file: %w", err)
	}
	return nil
}
