package store

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/tierledger/settle/ledger"
	"github.com/tierledger/settle/member"
)

var (
	bucketMembers = []byte("members")
	bucketLogs    = []byte("logs")
)

// BoltStore wraps a bbolt database holding the member tree and settlement logs.
type BoltStore struct {
	db *bbolt.DB
}

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketMembers, bucketLogs} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("boltstore: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// Members returns a member.Repository backed by this database.
func (s *BoltStore) Members() *BoltMemberRepository { return &BoltMemberRepository{db: s.db} }

// Logs returns a ledger.Store backed by this database.
func (s *BoltStore) Logs() *BoltLogStore { return &BoltLogStore{db: s.db} }

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// ---------------------------------------------------------------------------
// BoltMemberRepository implements member.Repository.
// ---------------------------------------------------------------------------

// BoltMemberRepository persists members in bbolt, keyed by id.
type BoltMemberRepository struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ member.Repository = (*BoltMemberRepository)(nil)

// List returns every member ordered by id.
func (r *BoltMemberRepository) List(_ context.Context) ([]member.Member, error) {
	var out []member.Member
	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMembers).ForEach(func(_, v []byte) error {
			var m member.Member
			if err := decodeGob(v, &m); err != nil {
				return fmt.Errorf("boltstore: decode member in list: %w", err)
			}
			out = append(out, m)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore: list members: %w", err)
	}
	return out, nil
}

// Get returns the member with the given id.
func (r *BoltMemberRepository) Get(_ context.Context, id string) (*member.Member, error) {
	key := []byte(member.NormalizeID(id))

	var m member.Member
	err := r.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketMembers).Get(key)
		if data == nil {
			return fmt.Errorf("%w: %s", member.ErrNotFound, id)
		}
		if err := decodeGob(data, &m); err != nil {
			return fmt.Errorf("boltstore: decode member: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create stores a new member.
func (r *BoltMemberRepository) Create(_ context.Context, m member.Member) error {
	return r.put(m, false)
}

// Update replaces an existing member.
func (r *BoltMemberRepository) Update(_ context.Context, m member.Member) error {
	return r.put(m, true)
}

func (r *BoltMemberRepository) put(m member.Member, update bool) error {
	m.ID = member.NormalizeID(m.ID)
	m.ParentID = member.NormalizeID(m.ParentID)
	if m.ID == "" {
		return member.ErrEmptyID
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMembers)
		exists := b.Get([]byte(m.ID)) != nil
		if update && !exists {
			return fmt.Errorf("%w: %s", member.ErrNotFound, m.ID)
		}
		if !update && exists {
			return fmt.Errorf("%w: %s", member.ErrDuplicateID, m.ID)
		}
		data, err := encodeGob(m)
		if err != nil {
			return fmt.Errorf("encode member: %w", err)
		}
		if err := b.Put([]byte(m.ID), data); err != nil {
			return fmt.Errorf("boltstore: put member: %w", err)
		}
		return nil
	})
}

// Delete removes a member that has no children.
func (r *BoltMemberRepository) Delete(_ context.Context, id string) error {
	id = member.NormalizeID(id)

	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMembers)
		if b.Get([]byte(id)) == nil {
			return fmt.Errorf("%w: %s", member.ErrNotFound, id)
		}
		err := b.ForEach(func(_, v []byte) error {
			var m member.Member
			if err := decodeGob(v, &m); err != nil {
				return fmt.Errorf("boltstore: decode member: %w", err)
			}
			if m.ParentID == id {
				return fmt.Errorf("%w: %s", member.ErrHasChildren, id)
			}
			return nil
		})
		if err != nil {
			return err
		}
		if err := b.Delete([]byte(id)); err != nil {
			return fmt.Errorf("boltstore: delete member: %w", err)
		}
		return nil
	})
}

// ---------------------------------------------------------------------------
// BoltLogStore implements ledger.Store.
// ---------------------------------------------------------------------------

// BoltLogStore persists settlement logs in bbolt.
type BoltLogStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ ledger.Store = (*BoltLogStore)(nil)

// Put stores a log. Returns ledger.ErrDuplicateLog if the id already exists.
func (s *BoltLogStore) Put(_ context.Context, l *ledger.Log) error {
	if err := l.Validate(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketLogs)
		if b.Get([]byte(l.ID)) != nil {
			return fmt.Errorf("%w: %s", ledger.ErrDuplicateLog, l.ID)
		}
		data, err := encodeGob(l)
		if err != nil {
			return fmt.Errorf("encode log: %w", err)
		}
		if err := b.Put([]byte(l.ID), data); err != nil {
			return fmt.Errorf("boltstore: put log: %w", err)
		}
		return nil
	})
}

// Get retrieves a log by id.
func (s *BoltLogStore) Get(_ context.Context, id string) (*ledger.Log, error) {
	var l ledger.Log
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketLogs).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ledger.ErrNotFound, id)
		}
		if err := decodeGob(data, &l); err != nil {
			return fmt.Errorf("boltstore: decode log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// List returns every stored log, newest first.
func (s *BoltLogStore) List(_ context.Context) ([]*ledger.Log, error) {
	var logs []*ledger.Log
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketLogs).ForEach(func(_, v []byte) error {
			var l ledger.Log
			if err := decodeGob(v, &l); err != nil {
				return fmt.Errorf("boltstore: decode log in list: %w", err)
			}
			logs = append(logs, &l)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore: list logs: %w", err)
	}
	ledger.SortNewestFirst(logs)
	return logs, nil
}

// Delete removes a log by id.
func (s *BoltLogStore) Delete(_ context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketLogs)
		if b.Get([]byte(id)) == nil {
			return fmt.Errorf("%w: %s", ledger.ErrNotFound, id)
		}
		if err := b.Delete([]byte(id)); err != nil {
			return fmt.Errorf("boltstore: delete log: %w", err)
		}
		return nil
	})
}
