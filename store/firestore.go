package store

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tierledger/settle/ledger"
	"github.com/tierledger/settle/member"
)

const (
	collectionMembers = "members"
	collectionLogs    = "logs"
)

// FirestoreStore keeps the member tree and settlement logs in a Firestore
// document database, one document per member and per log.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore connects to the Firestore database of projectID.
// When FIRESTORE_EMULATOR_HOST is set the client talks to the emulator.
func NewFirestoreStore(ctx context.Context, projectID string, opts ...option.ClientOption) (*FirestoreStore, error) {
	if projectID == "" {
		return nil, ErrEmptyProject
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("store: firestore client: %w", err)
	}
	return &FirestoreStore{client: client}, nil
}

// Close releases the underlying client.
func (s *FirestoreStore) Close() error { return s.client.Close() }

// Members returns a member.Repository backed by the members collection.
func (s *FirestoreStore) Members() *FirestoreMemberRepository {
	return &FirestoreMemberRepository{client: s.client, col: s.client.Collection(collectionMembers)}
}

// Logs returns a ledger.Store backed by the logs collection.
func (s *FirestoreStore) Logs() *FirestoreLogStore {
	return &FirestoreLogStore{col: s.client.Collection(collectionLogs)}
}

func isNotFound(err error) bool { return status.Code(err) == codes.NotFound }

func isAlreadyExists(err error) bool { return status.Code(err) == codes.AlreadyExists }

// ---------------------------------------------------------------------------
// FirestoreMemberRepository implements member.Repository.
// ---------------------------------------------------------------------------

// FirestoreMemberRepository stores members as documents keyed by id.
type FirestoreMemberRepository struct {
	client *firestore.Client
	col    *firestore.CollectionRef
}

// Compile-time interface check.
var _ member.Repository = (*FirestoreMemberRepository)(nil)

// List reads the whole collection.
func (r *FirestoreMemberRepository) List(ctx context.Context) ([]member.Member, error) {
	iter := r.col.OrderBy("id", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var out []member.Member
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore: list members: %w", err)
		}
		var m member.Member
		if err := doc.DataTo(&m); err != nil {
			return nil, fmt.Errorf("firestore: decode member %s: %w", doc.Ref.ID, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// Get returns the member with the given id.
func (r *FirestoreMemberRepository) Get(ctx context.Context, id string) (*member.Member, error) {
	id = member.NormalizeID(id)
	if id == "" {
		return nil, member.ErrEmptyID
	}
	snap, err := r.col.Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", member.ErrNotFound, id)
		}
		return nil, fmt.Errorf("firestore: get member: %w", err)
	}
	var m member.Member
	if err := snap.DataTo(&m); err != nil {
		return nil, fmt.Errorf("firestore: decode member %s: %w", id, err)
	}
	return &m, nil
}

// Create stores a new member document.
func (r *FirestoreMemberRepository) Create(ctx context.Context, m member.Member) error {
	m.ID = member.NormalizeID(m.ID)
	m.ParentID = member.NormalizeID(m.ParentID)
	if m.ID == "" {
		return member.ErrEmptyID
	}
	if _, err := r.col.Doc(m.ID).Create(ctx, m); err != nil {
		if isAlreadyExists(err) {
			return fmt.Errorf("%w: %s", member.ErrDuplicateID, m.ID)
		}
		return fmt.Errorf("firestore: create member: %w", err)
	}
	return nil
}

// Update replaces an existing member document.
func (r *FirestoreMemberRepository) Update(ctx context.Context, m member.Member) error {
	m.ID = member.NormalizeID(m.ID)
	m.ParentID = member.NormalizeID(m.ParentID)
	if m.ID == "" {
		return member.ErrEmptyID
	}
	ref := r.col.Doc(m.ID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if isNotFound(err) {
				return fmt.Errorf("%w: %s", member.ErrNotFound, m.ID)
			}
			return err
		}
		return tx.Set(ref, m)
	})
	if err != nil {
		if errors.Is(err, member.ErrNotFound) {
			return err
		}
		return fmt.Errorf("firestore: update member: %w", err)
	}
	return nil
}

// Delete removes a member document that no other member names as parent.
func (r *FirestoreMemberRepository) Delete(ctx context.Context, id string) error {
	id = member.NormalizeID(id)
	if id == "" {
		return member.ErrEmptyID
	}

	children := r.col.Where("parentId", "==", id).Limit(1).Documents(ctx)
	defer children.Stop()
	_, err := children.Next()
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", member.ErrHasChildren, id)
	case err != iterator.Done:
		return fmt.Errorf("firestore: query children: %w", err)
	}

	if _, err := r.col.Doc(id).Delete(ctx, firestore.Exists); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s", member.ErrNotFound, id)
		}
		return fmt.Errorf("firestore: delete member: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// FirestoreLogStore implements ledger.Store.
// ---------------------------------------------------------------------------

// FirestoreLogStore stores settlement logs as documents keyed by log id.
type FirestoreLogStore struct {
	col *firestore.CollectionRef
}

// Compile-time interface check.
var _ ledger.Store = (*FirestoreLogStore)(nil)

// Put creates the log document. Existing documents are never overwritten.
func (s *FirestoreLogStore) Put(ctx context.Context, l *ledger.Log) error {
	if err := l.Validate(); err != nil {
		return err
	}
	if _, err := s.col.Doc(l.ID).Create(ctx, l); err != nil {
		if isAlreadyExists(err) {
			return fmt.Errorf("%w: %s", ledger.ErrDuplicateLog, l.ID)
		}
		return fmt.Errorf("firestore: put log: %w", err)
	}
	return nil
}

// Get reads a log document by id.
func (s *FirestoreLogStore) Get(ctx context.Context, id string) (*ledger.Log, error) {
	if id == "" {
		return nil, ledger.ErrEmptyID
	}
	snap, err := s.col.Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ledger.ErrNotFound, id)
		}
		return nil, fmt.Errorf("firestore: get log: %w", err)
	}
	var l ledger.Log
	if err := snap.DataTo(&l); err != nil {
		return nil, fmt.Errorf("firestore: decode log %s: %w", id, err)
	}
	return &l, nil
}

// List returns every log, newest first.
func (s *FirestoreLogStore) List(ctx context.Context) ([]*ledger.Log, error) {
	iter := s.col.OrderBy("timestamp", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var logs []*ledger.Log
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore: list logs: %w", err)
		}
		var l ledger.Log
		if err := doc.DataTo(&l); err != nil {
			return nil, fmt.Errorf("firestore: decode log %s: %w", doc.Ref.ID, err)
		}
		logs = append(logs, &l)
	}
	ledger.SortNewestFirst(logs)
	return logs, nil
}

// Delete removes a log document.
func (s *FirestoreLogStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ledger.ErrEmptyID
	}
	if _, err := s.col.Doc(id).Delete(ctx, firestore.Exists); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s", ledger.ErrNotFound, id)
		}
		return fmt.Errorf("firestore: delete log: %w", err)
	}
	return nil
}
