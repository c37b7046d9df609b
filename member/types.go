package member

import (
	"fmt"
	"strings"
)

// Level is the rank of a member in the hierarchy. Lower values rank higher.
type Level int

const (
	Grandmaster Level = iota
	Master
	Branch
	SubBranch
)

var levelNames = [...]string{"grandmaster", "master", "branch", "sub-branch"}

// String returns the lowercase level name.
func (l Level) String() string {
	if l < Grandmaster || l > SubBranch {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// Valid reports whether l is one of the known levels.
func (l Level) Valid() bool {
	return l >= Grandmaster && l <= SubBranch
}

// Child returns the level directly below l. SubBranch has no lower level
// and returns itself.
func (l Level) Child() Level {
	if l >= SubBranch {
		return SubBranch
	}
	return l + 1
}

// ParseLevel parses a level name as produced by String. Case and the
// separator between "sub" and "branch" are ignored.
func ParseLevel(s string) (Level, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", "-", " ", "-").Replace(norm)
	if norm == "subbranch" {
		norm = "sub-branch"
	}
	for i, name := range levelNames {
		if name == norm {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
}

// Member is a node in the referral hierarchy. Rates are percentages.
type Member struct {
	ID         string  `json:"id" firestore:"id"`
	ParentID   string  `json:"parentId,omitempty" firestore:"parentId"` // empty for a root
	Name       string  `json:"name" firestore:"name"`
	Level      Level   `json:"level" firestore:"level"`
	CasinoRate float64 `json:"casinoRate" firestore:"casinoRate"`
	SlotRate   float64 `json:"slotRate" firestore:"slotRate"`
	LosingRate float64 `json:"losingRate" firestore:"losingRate"`
}

// IsRoot returns true if the member has no parent.
func (m *Member) IsRoot() bool {
	return NormalizeID(m.ParentID) == ""
}

// NormalizeID returns the canonical form of an id. Ids that differ only in
// surrounding whitespace refer to the same member.
func NormalizeID(id string) string {
	return strings.TrimSpace(id)
}
