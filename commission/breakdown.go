package commission

import (
	"fmt"
	"strconv"

	"github.com/tierledger/settle/member"
)

// money formats an amount with two decimals and no grouping.
func money(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if s == "-0.00" {
		return "0.00"
	}
	return s
}

// pct formats a percentage rate.
func pct(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64) + "%"
}

func label(m *member.Member) string {
	if m.Name == "" {
		return m.ID
	}
	return fmt.Sprintf("%s(%s)", m.Name, m.ID)
}

func zeroRateBreakdown(src Source, leaf *member.Member, fee float64) string {
	return fmt.Sprintf("%s fee %s paid to %s at %s rate: rolling cannot be derived, treated as 0",
		src, money(fee), label(leaf), pct(0))
}

func differentialBreakdown(src Source, d differential) string {
	head := fmt.Sprintf("rolling %s = fee %s / %s (%s); %s fee %s x %s = %s; previous fee %s (%s @ %s)",
		money(d.rolling), money(d.leafFee), pct(d.leafRate), label(d.leaf),
		label(d.anc), money(d.rolling), pct(d.ancRate), money(d.currFee),
		money(d.prevFee), label(d.prev), pct(d.prevRate))
	if d.emitted {
		return fmt.Sprintf("%s; %s profit %s - %s = %s", head, src, money(d.currFee), money(d.prevFee), money(d.profit))
	}
	return fmt.Sprintf("%s; %s margin %s within tolerance (rate %s vs %s), no profit",
		head, src, money(d.profit), pct(d.ancRate), pct(d.prevRate))
}

func losingBreakdown(l losingShare) string {
	return fmt.Sprintf("deduction casino %s x %s (%s - %s) = %s + slot %s x %s (%s - %s) = %s, total %s; "+
		"net losing %s - %s = %s; rate %s - %s = %s; share %s x %s = %s",
		money(l.rollingCasino), pct(l.marginCasino), pct(l.anc.CasinoRate), pct(l.leaf.CasinoRate), money(l.casinoDeduction),
		money(l.rollingSlot), pct(l.marginSlot), pct(l.anc.SlotRate), pct(l.leaf.SlotRate), money(l.slotDeduction),
		money(l.totalDeduction),
		money(l.losing), money(l.totalDeduction), money(l.net),
		pct(l.anc.LosingRate), pct(l.prevRate), pct(l.rateDiff),
		money(l.net), pct(l.rateDiff), money(l.amount))
}
