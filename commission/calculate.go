package commission

import (
	"errors"
	"fmt"

	"github.com/tierledger/settle/member"
)

// DefaultTolerance is the absolute amount at or below which a computed
// profit is treated as floating-point noise.
const DefaultTolerance = 0.01

// Calculator computes commission entries for a batch of leaf inputs.
// The zero value uses a tolerance of 0.
type Calculator struct {
	Tolerance float64
}

// NewCalculator returns a Calculator using DefaultTolerance.
func NewCalculator() *Calculator {
	return &Calculator{Tolerance: DefaultTolerance}
}

// Calculate runs NewCalculator().Calculate.
func Calculate(inputs []LeafInput, members []member.Member) ([]Entry, error) {
	return NewCalculator().Calculate(inputs, members)
}

// Calculate derives every commission entry produced by inputs against the
// members snapshot. Entries are returned in input order, then lineage
// order, and are never merged across inputs.
//
// Inputs naming an unknown performer are skipped. The returned error is
// nil unless some performer's lineage could not be walked (cyclic parent
// links); those inputs contribute no entries, wrap ErrLeafSkipped, and
// every other input is still processed.
func (c *Calculator) Calculate(inputs []LeafInput, members []member.Member) ([]Entry, error) {
	idx := member.NewIndex(members)

	var (
		entries []Entry
		faults  []error
	)
	for _, in := range inputs {
		leaf, ok := idx.Get(in.PerformerID)
		if !ok {
			continue
		}
		lineage, err := idx.Lineage(leaf.ID)
		if err != nil {
			faults = append(faults, fmt.Errorf("%w: performer %s: %w", ErrLeafSkipped, leaf.ID, err))
			continue
		}
		entries = append(entries, c.distribute(leaf, in.Amounts, lineage)...)
	}
	return entries, errors.Join(faults...)
}
