package member

import "fmt"

// MaxDepth bounds every parent walk. A well-formed tree is far shallower;
// reaching it means the parent links form a cycle.
const MaxDepth = 64

// Index is an id-indexed view over a member snapshot. It is built once
// and only read afterwards, so it is safe for concurrent use.
type Index struct {
	byID     map[string]*Member
	children map[string][]*Member
	order    []*Member
}

// NewIndex builds an Index over members. Later duplicates of an id replace
// earlier ones. The members are copied.
func NewIndex(members []Member) *Index {
	idx := &Index{
		byID:     make(map[string]*Member, len(members)),
		children: make(map[string][]*Member),
		order:    make([]*Member, 0, len(members)),
	}
	for i := range members {
		m := members[i]
		m.ID = NormalizeID(m.ID)
		m.ParentID = NormalizeID(m.ParentID)
		if _, dup := idx.byID[m.ID]; dup {
			for j, prev := range idx.order {
				if prev.ID == m.ID {
					idx.order = append(idx.order[:j], idx.order[j+1:]...)
					break
				}
			}
		}
		idx.byID[m.ID] = &m
		idx.order = append(idx.order, &m)
	}
	for _, m := range idx.order {
		if m.ParentID != "" {
			idx.children[m.ParentID] = append(idx.children[m.ParentID], m)
		}
	}
	return idx
}

// Len returns the number of distinct members.
func (idx *Index) Len() int { return len(idx.order) }

// Get returns the member with the given id.
func (idx *Index) Get(id string) (*Member, bool) {
	m, ok := idx.byID[NormalizeID(id)]
	return m, ok
}

// Lineage returns the ancestors of id, nearest first, ending at a root or
// at the first parent reference that cannot be resolved. A broken
// reference is not an error. ErrLineageTooDeep is returned after MaxDepth
// hops.
func (idx *Index) Lineage(id string) ([]*Member, error) {
	m, ok := idx.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	var chain []*Member
	for m.ParentID != "" {
		parent, ok := idx.byID[m.ParentID]
		if !ok {
			break
		}
		if len(chain) == MaxDepth {
			return nil, fmt.Errorf("%w: %s", ErrLineageTooDeep, id)
		}
		chain = append(chain, parent)
		m = parent
	}
	return chain, nil
}

// Children returns the direct children of id in snapshot order.
func (idx *Index) Children(id string) []*Member {
	return idx.children[NormalizeID(id)]
}

// Roots returns every member without a resolvable parent.
func (idx *Index) Roots() []*Member {
	var roots []*Member
	for _, m := range idx.order {
		if m.ParentID == "" {
			roots = append(roots, m)
			continue
		}
		if _, ok := idx.byID[m.ParentID]; !ok {
			roots = append(roots, m)
		}
	}
	return roots
}

// Descendants returns every member below id in pre-order. The walk is
// bounded by MaxDepth.
func (idx *Index) Descendants(id string) ([]*Member, error) {
	id = NormalizeID(id)
	if _, ok := idx.byID[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	var out []*Member
	var walk func(id string, depth int) error
	walk = func(id string, depth int) error {
		if depth > MaxDepth {
			return fmt.Errorf("%w: below %s", ErrLineageTooDeep, id)
		}
		for _, c := range idx.children[id] {
			out = append(out, c)
			if err := walk(c.ID, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(id, 1); err != nil {
		return nil, err
	}
	return out, nil
}

// IsDescendant reports whether id lies in the subtree rooted at rootID.
// A member is considered part of its own subtree.
func (idx *Index) IsDescendant(rootID, id string) bool {
	rootID, id = NormalizeID(rootID), NormalizeID(id)
	if rootID == id {
		_, ok := idx.byID[id]
		return ok
	}
	chain, err := idx.Lineage(id)
	if err != nil {
		return false
	}
	for _, a := range chain {
		if a.ID == rootID {
			return true
		}
	}
	return false
}
