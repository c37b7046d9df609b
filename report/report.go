// Package report groups commission entries for display. The engine emits
// one entry per leaf input and never merges them; callers that want a
// single figure per member use Group or Summarize.
package report

import (
	"github.com/shopspring/decimal"

	"github.com/tierledger/settle/commission"
)

// Line is the merged total of every entry sharing a member and source.
type Line struct {
	UserID   string
	UserName string
	Source   commission.Source
	Amount   decimal.Decimal
	Entries  int
}

// Group merges entries by (UserID, Source), preserving first-seen order.
// Amounts are summed in decimal and rounded to cents.
func Group(entries []commission.Entry) []Line {
	type key struct {
		user string
		src  commission.Source
	}
	pos := make(map[key]int)
	var lines []Line
	for _, e := range entries {
		k := key{e.UserID, e.Source}
		i, ok := pos[k]
		if !ok {
			i = len(lines)
			pos[k] = i
			lines = append(lines, Line{UserID: e.UserID, UserName: e.UserName, Source: e.Source})
		}
		lines[i].Amount = lines[i].Amount.Add(decimal.NewFromFloat(e.Amount))
		lines[i].Entries++
	}
	for i := range lines {
		lines[i].Amount = lines[i].Amount.Round(2)
	}
	return lines
}

// Summary is one member's totals across all channels.
type Summary struct {
	UserID   string
	UserName string
	Casino   decimal.Decimal
	Slot     decimal.Decimal
	Losing   decimal.Decimal
	Total    decimal.Decimal
}

// Summarize returns per-member channel totals in first-seen order, and the
// grand total over every member.
func Summarize(entries []commission.Entry) ([]Summary, decimal.Decimal) {
	pos := make(map[string]int)
	var out []Summary
	for _, line := range Group(entries) {
		i, ok := pos[line.UserID]
		if !ok {
			i = len(out)
			pos[line.UserID] = i
			out = append(out, Summary{UserID: line.UserID, UserName: line.UserName})
		}
		s := &out[i]
		switch line.Source {
		case commission.SourceCasino:
			s.Casino = s.Casino.Add(line.Amount)
		case commission.SourceSlot:
			s.Slot = s.Slot.Add(line.Amount)
		case commission.SourceLosing:
			s.Losing = s.Losing.Add(line.Amount)
		}
		s.Total = s.Total.Add(line.Amount)
	}

	var total decimal.Decimal
	for _, s := range out {
		total = total.Add(s.Total)
	}
	return out, total
}
