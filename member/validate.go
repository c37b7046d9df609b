package member

import "fmt"

// Validate checks m against the members already held in idx. It enforces
// the invariants the hierarchy relies on: rates within [0, 100], an
// existing acyclic parent, a level strictly below the parent's, and no
// channel rate above the parent's rate for the same channel.
//
// idx may already hold a previous version of m, as it does on update; the
// children recorded for m must still fit below the new rates and level.
func Validate(m Member, idx *Index) error {
	id := NormalizeID(m.ID)
	if id == "" {
		return ErrEmptyID
	}
	if !m.Level.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidLevel, int(m.Level))
	}
	for _, r := range []struct {
		name string
		rate float64
	}{
		{"casino", m.CasinoRate},
		{"slot", m.SlotRate},
		{"losing", m.LosingRate},
	} {
		if r.rate < 0 || r.rate > 100 {
			return fmt.Errorf("%w: %s rate %g", ErrRateOutOfRange, r.name, r.rate)
		}
	}

	parentID := NormalizeID(m.ParentID)
	var parent *Member
	if parentID != "" {
		if parentID == id {
			return fmt.Errorf("%w: %s is its own parent", ErrCycle, id)
		}
		var ok bool
		if parent, ok = idx.Get(parentID); !ok {
			return fmt.Errorf("%w: %s", ErrParentNotFound, parentID)
		}
		if idx.IsDescendant(id, parentID) {
			return fmt.Errorf("%w: %s is below %s", ErrCycle, parentID, id)
		}
	}

	for _, c := range idx.Children(id) {
		if err := checkBelow(*c, m); err != nil {
			return fmt.Errorf("child %s: %w", c.ID, err)
		}
	}
	if parent == nil {
		return nil
	}
	return checkBelow(m, *parent)
}

// checkBelow verifies that child may sit directly under parent.
func checkBelow(child, parent Member) error {
	if child.Level <= parent.Level {
		return fmt.Errorf("%w: %s must rank below parent %s", ErrInvalidLevel, child.Level, parent.Level)
	}
	switch {
	case child.CasinoRate > parent.CasinoRate:
		return fmt.Errorf("%w: casino %g > %g", ErrRateExceedsParent, child.CasinoRate, parent.CasinoRate)
	case child.SlotRate > parent.SlotRate:
		return fmt.Errorf("%w: slot %g > %g", ErrRateExceedsParent, child.SlotRate, parent.SlotRate)
	case child.LosingRate > parent.LosingRate:
		return fmt.Errorf("%w: losing %g > %g", ErrRateExceedsParent, child.LosingRate, parent.LosingRate)
	}
	return nil
}
