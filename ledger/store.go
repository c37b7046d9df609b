package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tierledger/settle/commission"
)

// Store persists settlement logs.
type Store interface {
	// Put stores a new log. Returns ErrDuplicateLog if the id exists.
	Put(ctx context.Context, l *Log) error

	// Get retrieves a log by id.
	Get(ctx context.Context, id string) (*Log, error)

	// List returns every stored log, newest first.
	List(ctx context.Context) ([]*Log, error)

	// Delete removes a log by id.
	Delete(ctx context.Context, id string) error
}

// MemStore is an in-memory implementation of Store.
type MemStore struct {
	mu   sync.RWMutex
	logs map[string]*Log
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates a new in-memory log store.
func NewMemStore() *MemStore {
	return &MemStore{logs: make(map[string]*Log)}
}

// Put stores a copy of l.
func (s *MemStore) Put(_ context.Context, l *Log) error {
	if err := l.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.logs[l.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateLog, l.ID)
	}
	s.logs[l.ID] = Clone(l)
	return nil
}

// Get retrieves a copy of the log with the given id.
func (s *MemStore) Get(_ context.Context, id string) (*Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.logs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return Clone(l), nil
}

// List returns copies of every log, newest first.
func (s *MemStore) List(_ context.Context) ([]*Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Log, 0, len(s.logs))
	for _, l := range s.logs {
		out = append(out, Clone(l))
	}
	SortNewestFirst(out)
	return out, nil
}

// Delete removes a log by id.
func (s *MemStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.logs[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.logs, id)
	return nil
}

// Clone returns a deep copy of l.
func Clone(l *Log) *Log {
	c := *l
	c.Results = append([]commission.Entry(nil), l.Results...)
	c.RawInputs = append([]commission.LeafInput(nil), l.RawInputs...)
	return &c
}

// SortNewestFirst orders logs by descending timestamp, breaking ties by id.
func SortNewestFirst(logs []*Log) {
	sort.SliceStable(logs, func(i, j int) bool {
		if !logs[i].Timestamp.Equal(logs[j].Timestamp) {
			return logs[i].Timestamp.After(logs[j].Timestamp)
		}
		return logs[i].ID < logs[j].ID
	})
}
