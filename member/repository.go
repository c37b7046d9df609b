package member

import (
	"context"
	"fmt"
	"sync"
)

// Repository persists the member tree. List must return the complete,
// current set of members.
type Repository interface {
	// List returns every member.
	List(ctx context.Context) ([]Member, error)

	// Get returns the member with the given id.
	Get(ctx context.Context, id string) (*Member, error)

	// Create stores a new member. Returns ErrDuplicateID if the id is taken.
	Create(ctx context.Context, m Member) error

	// Update replaces an existing member. Returns ErrNotFound if absent.
	Update(ctx context.Context, m Member) error

	// Delete removes a member. Returns ErrHasChildren if other members
	// still reference it as their parent.
	Delete(ctx context.Context, id string) error
}

// MemRepository is an in-memory implementation of Repository.
type MemRepository struct {
	mu      sync.RWMutex
	members map[string]Member
	order   []string
}

// Compile-time interface check.
var _ Repository = (*MemRepository)(nil)

// NewMemRepository creates a repository seeded with members.
func NewMemRepository(members ...Member) *MemRepository {
	r := &MemRepository{members: make(map[string]Member)}
	for _, m := range members {
		m.ID = NormalizeID(m.ID)
		m.ParentID = NormalizeID(m.ParentID)
		if _, ok := r.members[m.ID]; !ok {
			r.order = append(r.order, m.ID)
		}
		r.members[m.ID] = m
	}
	return r
}

// List returns every member in insertion order.
func (r *MemRepository) List(_ context.Context) ([]Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Member, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.members[id])
	}
	return out, nil
}

// Get returns the member with the given id.
func (r *MemRepository) Get(_ context.Context, id string) (*Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.members[NormalizeID(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &m, nil
}

// Create stores a new member.
func (r *MemRepository) Create(_ context.Context, m Member) error {
	m.ID = NormalizeID(m.ID)
	m.ParentID = NormalizeID(m.ParentID)
	if m.ID == "" {
		return ErrEmptyID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[m.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, m.ID)
	}
	r.members[m.ID] = m
	r.order = append(r.order, m.ID)
	return nil
}

// Update replaces an existing member.
func (r *MemRepository) Update(_ context.Context, m Member) error {
	m.ID = NormalizeID(m.ID)
	m.ParentID = NormalizeID(m.ParentID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[m.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, m.ID)
	}
	r.members[m.ID] = m
	return nil
}

// Delete removes a member that has no children.
func (r *MemRepository) Delete(_ context.Context, id string) error {
	id = NormalizeID(id)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	for _, m := range r.members {
		if m.ParentID == id {
			return fmt.Errorf("%w: %s", ErrHasChildren, id)
		}
	}
	delete(r.members, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
