package ledger

import (
	"time"

	"github.com/tierledger/settle/commission"
)

// Log is an immutable snapshot of one settlement run: the raw inputs, the
// entries they produced, and enough context to reload them later.
type Log struct {
	ID               string                 `json:"id" firestore:"id"`
	Timestamp        time.Time              `json:"timestamp" firestore:"timestamp"`
	TotalCasinoInput float64                `json:"totalCasinoInput" firestore:"totalCasinoInput"`
	TotalSlotInput   float64                `json:"totalSlotInput" firestore:"totalSlotInput"`
	TotalLosingInput float64                `json:"totalLosingInput" firestore:"totalLosingInput"`
	Results          []commission.Entry     `json:"results" firestore:"results"`
	SelectedRootID   string                 `json:"selectedRootId,omitempty" firestore:"selectedRootId"`
	RawInputs        []commission.LeafInput `json:"rawInputs" firestore:"rawInputs"`
	MemberDigest     string                 `json:"memberDigest,omitempty" firestore:"memberDigest"`
}

// Validate checks the fields every store relies on.
func (l *Log) Validate() error {
	if l == nil {
		return ErrNilLog
	}
	if l.ID == "" {
		return ErrEmptyID
	}
	return nil
}
