package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/tierledger/settle/commission"
)

// Totals sums the raw inputs per channel. Sums are accumulated in decimal
// and rounded to cents so that totals of typed-in figures are exact.
func Totals(inputs []commission.LeafInput) commission.Amounts {
	var casino, slot, losing decimal.Decimal
	for _, in := range inputs {
		casino = casino.Add(decimal.NewFromFloat(in.Amounts.Casino))
		slot = slot.Add(decimal.NewFromFloat(in.Amounts.Slot))
		losing = losing.Add(decimal.NewFromFloat(in.Amounts.Losing))
	}
	return commission.Amounts{
		Casino: casino.Round(2).InexactFloat64(),
		Slot:   slot.Round(2).InexactFloat64(),
		Losing: losing.Round(2).InexactFloat64(),
	}
}
