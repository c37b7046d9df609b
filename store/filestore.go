package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tierledger/settle/ledger"
)

// FileStore implements ledger.Store on the local filesystem.
// Logs are stored as JSON at: {baseDir}/{id[:2]}/{id}.json
// The first two characters of the id are used as a subdirectory for sharding.
type FileStore struct {
	baseDir string
	mu      sync.RWMutex
}

// Compile-time interface check.
var _ ledger.Store = (*FileStore)(nil)

// NewFileStore creates a new file-based log store. The directory is
// created if it does not exist.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		return nil, ErrInvalidBaseDir
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// LogPath converts a log id to its filesystem path.
func LogPath(baseDir, id string) string {
	return filepath.Join(baseDir, id[:2], id+".json")
}

// validateID checks that id is usable as a file name and long enough to shard.
func validateID(id string) error {
	if len(id) < 2 || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Put writes a log. Returns ledger.ErrDuplicateLog if the file exists.
func (fs *FileStore) Put(_ context.Context, l *ledger.Log) error {
	if err := l.Validate(); err != nil {
		return err
	}
	if err := validateID(l.ID); err != nil {
		return err
	}

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode log: %w", err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	path := LogPath(fs.baseDir, l.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: %s", ledger.ErrDuplicateLog, l.ID)
		}
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return nil
}

// Get reads a log by id.
func (fs *FileStore) Get(_ context.Context, id string) (*ledger.Log, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	return fs.read(LogPath(fs.baseDir, id), id)
}

func (fs *FileStore) read(path, id string) (*ledger.Log, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ledger.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	var l ledger.Log
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("store: decode log %s: %w", id, err)
	}
	return &l, nil
}

// List returns every stored log, newest first, by scanning the shard
// directories.
func (fs *FileStore) List(_ context.Context) ([]*ledger.Log, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	shards, err := os.ReadDir(fs.baseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}

	var logs []*ledger.Log
	for _, shard := range shards {
		if !shard.IsDir() || len(shard.Name()) != 2 {
			continue
		}
		shardPath := filepath.Join(fs.baseDir, shard.Name())
		files, err := os.ReadDir(shardPath)
		if err != nil {
			continue
		}
		for _, f := range files {
			name := f.Name()
			if f.IsDir() || !strings.HasSuffix(name, ".json") {
				continue
			}
			id := strings.TrimSuffix(name, ".json")
			l, err := fs.read(filepath.Join(shardPath, name), id)
			if err != nil {
				return nil, err
			}
			logs = append(logs, l)
		}
	}
	ledger.SortNewestFirst(logs)
	return logs, nil
}

// Delete removes a log by id.
func (fs *FileStore) Delete(_ context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.Remove(LogPath(fs.baseDir, id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ledger.ErrNotFound, id)
		}
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return nil
}
