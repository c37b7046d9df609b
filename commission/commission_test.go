package commission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tierledger/settle/member"
)

const delta = 0.01

// testMembers returns A (root) > B > C > D, the hierarchy used throughout.
func testMembers() []member.Member {
	return []member.Member{
		{ID: "A", Name: "alpha", Level: member.Grandmaster, CasinoRate: 1.2, SlotRate: 10, LosingRate: 50},
		{ID: "B", ParentID: "A", Name: "bravo", Level: member.Master, CasinoRate: 1.0, SlotRate: 8, LosingRate: 40},
		{ID: "C", ParentID: "B", Name: "charlie", Level: member.Branch, CasinoRate: 0.5, SlotRate: 5, LosingRate: 30},
		{ID: "D", ParentID: "C", Name: "delta", Level: member.SubBranch},
	}
}

func filter(entries []Entry, src Source) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Source == src {
			out = append(out, e)
		}
	}
	return out
}

// --- DeriveRolling tests ---

func TestDeriveRolling(t *testing.T) {
	tests := []struct {
		name   string
		fee    float64
		rate   float64
		want   float64
		wantOK bool
	}{
		{"normal", 50000, 0.5, 10000000, true},
		{"zero fee", 0, 0.5, 0, true},
		{"zero fee zero rate", 0, 0, 0, true},
		{"zero rate", 10000, 0, 0, false},
		{"whole percent", 300, 3, 10000, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DeriveRolling(tt.fee, tt.rate)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, delta)
		})
	}
}

// --- Casino / slot differential tests ---

func TestCalculate_TwoLevel(t *testing.T) {
	members := []member.Member{
		{ID: "R", Name: "root", CasinoRate: 2},
		{ID: "L", ParentID: "R", Name: "leaf", Level: member.Master, CasinoRate: 1.5},
	}
	const fee = 1234.56

	entries, err := Calculate([]LeafInput{{PerformerID: "L", Amounts: Amounts{Casino: fee}}}, members)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	rolling := fee / (1.5 / 100)
	e := entries[0]
	assert.Equal(t, "R", e.UserID)
	assert.Equal(t, "root", e.UserName)
	assert.Equal(t, "L", e.PerformerID)
	assert.Equal(t, RoleUpper, e.Role)
	assert.Equal(t, SourceCasino, e.Source)
	assert.InDelta(t, rolling*0.02-fee, e.Amount, delta)
}

func TestCalculate_ThreeLevelCasino(t *testing.T) {
	entries, err := Calculate([]LeafInput{{PerformerID: "C", Amounts: Amounts{Casino: 50000}}}, testMembers())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "B", entries[0].UserID)
	assert.InDelta(t, 50000, entries[0].Amount, delta)
	assert.Contains(t, entries[0].Breakdown, "rolling 10000000.00")
	assert.Contains(t, entries[0].Breakdown, "fee 50000.00")
	assert.Contains(t, entries[0].Breakdown, "100000.00 - 50000.00 = 50000.00")

	assert.Equal(t, "A", entries[1].UserID)
	assert.InDelta(t, 20000, entries[1].Amount, delta)
	assert.Contains(t, entries[1].Breakdown, "120000.00 - 100000.00 = 20000.00")
}

func TestCalculate_SlotIndependentOfCasino(t *testing.T) {
	entries, err := Calculate([]LeafInput{{PerformerID: "C", Amounts: Amounts{Casino: 50000, Slot: 5000}}}, testMembers())
	require.NoError(t, err)

	slot := filter(entries, SourceSlot)
	require.Len(t, slot, 2)
	// rolling = 5000 / 5% = 100000
	assert.Equal(t, "B", slot[0].UserID)
	assert.InDelta(t, 3000, slot[0].Amount, delta)
	assert.Equal(t, "A", slot[1].UserID)
	assert.InDelta(t, 2000, slot[1].Amount, delta)

	casino := filter(entries, SourceCasino)
	require.Len(t, casino, 2)
	assert.InDelta(t, 50000, casino[0].Amount, delta)
}

func TestCalculate_ZeroRatePerformer(t *testing.T) {
	entries, err := Calculate([]LeafInput{{PerformerID: "D", Amounts: Amounts{Casino: 10000}}}, testMembers())
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "D", e.UserID)
	assert.Equal(t, RoleSelf, e.Role)
	assert.Equal(t, SourceCasino, e.Source)
	assert.Zero(t, e.Amount)
	assert.NotEmpty(t, e.Breakdown)
	assert.Contains(t, e.Breakdown, "cannot be derived")
	for _, e := range entries {
		assert.NotEqual(t, RoleUpper, e.Role)
	}
}

func TestCalculate_ZeroFeeEmitsNothing(t *testing.T) {
	entries, err := Calculate([]LeafInput{{PerformerID: "C", Amounts: Amounts{Slot: 5000}}}, testMembers())
	require.NoError(t, err)
	assert.Empty(t, filter(entries, SourceCasino))
	assert.Len(t, filter(entries, SourceSlot), 2)

	entries, err = Calculate([]LeafInput{{PerformerID: "C"}}, testMembers())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCalculate_NoMarginLevelKeepsAuditEntry(t *testing.T) {
	members := testMembers()
	members[1].CasinoRate = 0.5 // B equals C

	entries, err := Calculate([]LeafInput{{PerformerID: "C", Amounts: Amounts{Casino: 50000}}}, members)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "B", entries[0].UserID)
	assert.Zero(t, entries[0].Amount)
	assert.Contains(t, entries[0].Breakdown, "within tolerance")
	assert.Contains(t, entries[0].Breakdown, "0.5% vs 0.5%")

	assert.Equal(t, "A", entries[1].UserID)
	assert.InDelta(t, 70000, entries[1].Amount, delta)
}

func TestCalculate_NegativeDifferential(t *testing.T) {
	members := testMembers()
	members[1].CasinoRate = 0.4 // B below C, an upstream invariant violation

	entries, err := Calculate([]LeafInput{{PerformerID: "C", Amounts: Amounts{Casino: 50000}}}, members)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.InDelta(t, -10000, entries[0].Amount, delta)
	assert.InDelta(t, 80000, entries[1].Amount, delta)
}

func TestCalculator_Tolerance(t *testing.T) {
	members := []member.Member{
		{ID: "R", CasinoRate: 1.001},
		{ID: "L", ParentID: "R", Level: member.Master, CasinoRate: 1},
	}
	in := []LeafInput{{PerformerID: "L", Amounts: Amounts{Casino: 100}}}
	// rolling 10000, R fee 100.1, profit 0.1

	entries, err := (&Calculator{Tolerance: 1}).Calculate(in, members)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Zero(t, entries[0].Amount)

	entries, err = Calculate(in, members)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.InDelta(t, 0.1, entries[0].Amount, 1e-9)
}

// --- Losing tests ---

func TestCalculate_LosingWithoutFees(t *testing.T) {
	const losing = 1000000
	entries, err := Calculate([]LeafInput{{PerformerID: "C", Amounts: Amounts{Losing: losing}}}, testMembers())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	for i, want := range []string{"B", "A"} {
		e := entries[i]
		assert.Equal(t, want, e.UserID)
		assert.Equal(t, SourceLosing, e.Source)
		assert.Equal(t, RoleUpper, e.Role)
		assert.InDelta(t, 100000, e.Amount, delta)
		assert.Contains(t, e.Breakdown, "total 0.00")
		assert.Contains(t, e.Breakdown, "net losing 1000000.00 - 0.00 = 1000000.00")
	}
}

func TestCalculate_LosingNetOfDeductions(t *testing.T) {
	in := []LeafInput{{PerformerID: "C", Amounts: Amounts{Casino: 50000, Losing: 1000000}}}
	entries, err := Calculate(in, testMembers())
	require.NoError(t, err)
	require.Len(t, entries, 4)

	// Lineage order: B casino, B losing, A casino, A losing.
	assert.Equal(t, []Source{SourceCasino, SourceLosing, SourceCasino, SourceLosing},
		[]Source{entries[0].Source, entries[1].Source, entries[2].Source, entries[3].Source})

	// B: margin 0.5% of 10,000,000 = 50,000; net 950,000; 10% share.
	assert.Equal(t, "B", entries[1].UserID)
	assert.InDelta(t, 95000, entries[1].Amount, delta)
	assert.Contains(t, entries[1].Breakdown, "net losing 1000000.00 - 50000.00 = 950000.00")

	// A: margin 0.7% of 10,000,000 = 70,000; net 930,000; 10% share.
	assert.Equal(t, "A", entries[3].UserID)
	assert.InDelta(t, 93000, entries[3].Amount, delta)
	assert.Contains(t, entries[3].Breakdown, "rate 50% - 40% = 10%")
}

func TestCalculate_NegativeNetLosingPropagates(t *testing.T) {
	in := []LeafInput{{PerformerID: "C", Amounts: Amounts{Casino: 50000, Losing: 10000}}}
	entries, err := Calculate(in, testMembers())
	require.NoError(t, err)

	losing := filter(entries, SourceLosing)
	require.Len(t, losing, 2)
	assert.InDelta(t, -4000, losing[0].Amount, delta)
	assert.InDelta(t, -6000, losing[1].Amount, delta)
}

func TestCalculate_LosingRequiresRateAdvantage(t *testing.T) {
	members := testMembers()
	members[1].LosingRate = 30 // B equals C

	entries, err := Calculate([]LeafInput{{PerformerID: "C", Amounts: Amounts{Losing: 1000}}}, members)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "A", entries[0].UserID)
	// A compares against B's 30%, not C's.
	assert.InDelta(t, 200, entries[0].Amount, delta)
}

func TestCalculate_LosingMarginClampedAtZero(t *testing.T) {
	members := testMembers()
	members[1].CasinoRate = 0.4 // B below C

	in := []LeafInput{{PerformerID: "C", Amounts: Amounts{Casino: 50000, Losing: 1000000}}}
	entries, err := Calculate(in, members)
	require.NoError(t, err)

	losing := filter(entries, SourceLosing)
	require.Len(t, losing, 2)
	assert.InDelta(t, 100000, losing[0].Amount, delta)
	assert.Contains(t, losing[0].Breakdown, "total 0.00")
}

// --- Batch tests ---

func TestCalculate_UnknownPerformerSkipped(t *testing.T) {
	in := []LeafInput{
		{PerformerID: "ghost", Amounts: Amounts{Casino: 100}},
		{PerformerID: "C", Amounts: Amounts{Casino: 50000}},
	}
	entries, err := Calculate(in, testMembers())
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestCalculate_BrokenLineageStops(t *testing.T) {
	members := testMembers()
	members[1].ParentID = "missing"

	entries, err := Calculate([]LeafInput{{PerformerID: "C", Amounts: Amounts{Casino: 50000}}}, members)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "B", entries[0].UserID)
}

func TestCalculate_CycleIsolated(t *testing.T) {
	members := append(testMembers(),
		member.Member{ID: "X", ParentID: "Y", CasinoRate: 1},
		member.Member{ID: "Y", ParentID: "X", CasinoRate: 1},
	)
	in := []LeafInput{
		{PerformerID: "X", Amounts: Amounts{Casino: 100}},
		{PerformerID: "C", Amounts: Amounts{Casino: 50000}},
	}

	entries, err := Calculate(in, members)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLeafSkipped)
	assert.ErrorIs(t, err, member.ErrLineageTooDeep)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "C", e.PerformerID)
	}
}

func TestCalculate_NoCrossLeafMerging(t *testing.T) {
	members := append(testMembers(),
		member.Member{ID: "C2", ParentID: "B", Level: member.Branch, CasinoRate: 0.5},
	)
	in := []LeafInput{
		{PerformerID: "C", Amounts: Amounts{Casino: 50000}},
		{PerformerID: "C2", Amounts: Amounts{Casino: 50000}},
	}
	entries, err := Calculate(in, members)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	var bravo int
	for _, e := range entries {
		if e.UserID == "B" && e.Source == SourceCasino {
			bravo++
		}
	}
	assert.Equal(t, 2, bravo)
}

func TestCalculate_Idempotent(t *testing.T) {
	in := []LeafInput{
		{PerformerID: "C", Amounts: Amounts{Casino: 50000, Slot: 700, Losing: 25000}},
		{PerformerID: "D", Amounts: Amounts{Casino: 10000, Losing: 300}},
		{PerformerID: "B", Amounts: Amounts{Slot: 1600, Losing: -500}},
	}
	members := testMembers()

	first, err := Calculate(in, members)
	require.NoError(t, err)
	second, err := Calculate(in, members)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCalculate_BatchIndependence(t *testing.T) {
	members := testMembers()
	c := LeafInput{PerformerID: "C", Amounts: Amounts{Casino: 50000, Losing: 25000}}
	b := LeafInput{PerformerID: "B", Amounts: Amounts{Slot: 1600, Losing: 800}}

	both, err := Calculate([]LeafInput{c, b}, members)
	require.NoError(t, err)
	onlyB, err := Calculate([]LeafInput{b}, members)
	require.NoError(t, err)

	var fromB []Entry
	for _, e := range both {
		if e.PerformerID == "B" {
			fromB = append(fromB, e)
		}
	}
	assert.Equal(t, onlyB, fromB)
}

func TestCalculate_IDRepresentations(t *testing.T) {
	members := testMembers()
	members[2].ParentID = "B "

	entries, err := Calculate([]LeafInput{{PerformerID: " C", Amounts: Amounts{Casino: 50000}}}, members)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "C", entries[0].PerformerID)
}
