package commission

import (
	"math"

	"github.com/tierledger/settle/member"
)

// differential is the casino or slot computation at one ancestor level.
type differential struct {
	leaf, prev, anc            *member.Member
	leafFee, leafRate, rolling float64
	prevFee, prevRate          float64
	ancRate, currFee, profit   float64
	emitted                    bool
}

// losingShare is the losing computation at one ancestor level.
type losingShare struct {
	leaf, anc                      *member.Member
	rollingCasino, rollingSlot     float64
	marginCasino, marginSlot       float64
	casinoDeduction, slotDeduction float64
	totalDeduction, losing, net    float64
	prevRate, rateDiff, amount     float64
}

// channel tracks one of the fee channels (casino or slot) while walking up
// the lineage.
type channel struct {
	src      Source
	fee      float64 // fee typed in for the leaf
	rolling  float64
	rate     func(*member.Member) float64
	prevFee  float64
	prevRate float64
}

func casinoRate(m *member.Member) float64 { return m.CasinoRate }
func slotRate(m *member.Member) float64   { return m.SlotRate }

// distribute produces every entry for one leaf: the zero-rate self
// entries, then per ancestor (nearest first) casino, slot and losing.
func (c *Calculator) distribute(leaf *member.Member, amounts Amounts, lineage []*member.Member) []Entry {
	var out []Entry

	channels := [2]*channel{
		{src: SourceCasino, fee: amounts.Casino, rate: casinoRate},
		{src: SourceSlot, fee: amounts.Slot, rate: slotRate},
	}
	for _, ch := range channels {
		ch.prevRate = ch.rate(leaf)
		ch.prevFee = ch.fee
		rolling, ok := DeriveRolling(ch.fee, ch.prevRate)
		if !ok {
			out = append(out, Entry{
				UserID:      leaf.ID,
				UserName:    leaf.Name,
				PerformerID: leaf.ID,
				Role:        RoleSelf,
				Source:      ch.src,
				Breakdown:   zeroRateBreakdown(ch.src, leaf, ch.fee),
			})
		}
		ch.rolling = rolling
	}

	prev := leaf
	prevLosingRate := leaf.LosingRate
	for _, anc := range lineage {
		for _, ch := range channels {
			if ch.rolling == 0 {
				continue
			}
			d := differential{
				leaf: leaf, prev: prev, anc: anc,
				leafFee: ch.fee, leafRate: ch.rate(leaf), rolling: ch.rolling,
				prevFee: ch.prevFee, prevRate: ch.prevRate,
				ancRate: ch.rate(anc),
			}
			d.currFee = d.rolling * (d.ancRate / 100)
			d.profit = d.currFee - d.prevFee
			d.emitted = math.Abs(d.profit) > c.Tolerance

			e := Entry{
				UserID:      anc.ID,
				UserName:    anc.Name,
				PerformerID: leaf.ID,
				Role:        RoleUpper,
				Source:      ch.src,
				Breakdown:   differentialBreakdown(ch.src, d),
			}
			if d.emitted {
				e.Amount = d.profit
			}
			out = append(out, e)

			ch.prevFee = d.currFee
			ch.prevRate = d.ancRate
		}

		if amounts.Losing != 0 {
			if e, ok := c.losing(leaf, anc, channels[0].rolling, channels[1].rolling, amounts.Losing, prevLosingRate); ok {
				out = append(out, e)
			}
		}

		prevLosingRate = anc.LosingRate
		prev = anc
	}
	return out
}

// losing computes anc's share of the leaf's losing amount, net of the
// rolling-fee margins anc already earns over the leaf. The deduction is
// recomputed at every level because the margin depends on anc's rates.
func (c *Calculator) losing(leaf, anc *member.Member, rollingCasino, rollingSlot, amount, prevRate float64) (Entry, bool) {
	l := losingShare{
		leaf: leaf, anc: anc,
		rollingCasino: rollingCasino, rollingSlot: rollingSlot,
		marginCasino: math.Max(0, anc.CasinoRate-leaf.CasinoRate),
		marginSlot:   math.Max(0, anc.SlotRate-leaf.SlotRate),
		losing:       amount,
		prevRate:     prevRate,
		rateDiff:     anc.LosingRate - prevRate,
	}
	if l.rateDiff <= 0 {
		return Entry{}, false
	}
	l.casinoDeduction = rollingCasino * (l.marginCasino / 100)
	l.slotDeduction = rollingSlot * (l.marginSlot / 100)
	l.totalDeduction = l.casinoDeduction + l.slotDeduction
	l.net = amount - l.totalDeduction
	l.amount = l.net * (l.rateDiff / 100)
	if math.Abs(l.amount) <= c.Tolerance {
		return Entry{}, false
	}

	return Entry{
		UserID:      anc.ID,
		UserName:    anc.Name,
		PerformerID: leaf.ID,
		Amount:      l.amount,
		Role:        RoleUpper,
		Source:      SourceLosing,
		Breakdown:   losingBreakdown(l),
	}, true
}
