package commission

// Source is the channel a commission entry was earned on.
type Source string

const (
	SourceCasino Source = "casino"
	SourceSlot   Source = "slot"
	SourceLosing Source = "losing"
)

// Sources lists every channel in output order.
var Sources = []Source{SourceCasino, SourceSlot, SourceLosing}

// Role distinguishes the performer's own entries from its ancestors'.
type Role string

const (
	RoleSelf  Role = "self"
	RoleUpper Role = "upper"
)

// Amounts holds the settlement figures typed in for one performer.
// Casino and Slot are fees already paid to the performer, not wagering
// volume. Losing is a raw cash amount.
type Amounts struct {
	Casino float64 `json:"casino" firestore:"casino"`
	Slot   float64 `json:"slot" firestore:"slot"`
	Losing float64 `json:"losing" firestore:"losing"`
}

// LeafInput is one batch entry.
type LeafInput struct {
	PerformerID string  `json:"performerId" firestore:"performerId"`
	Amounts     Amounts `json:"amounts" firestore:"amounts"`
}

// Entry is a single commission line for one member on one channel.
// Breakdown carries the literal figures needed to verify Amount by hand.
type Entry struct {
	UserID      string  `json:"userId" firestore:"userId"`
	UserName    string  `json:"userName" firestore:"userName"`
	PerformerID string  `json:"performerId" firestore:"performerId"`
	Amount      float64 `json:"amount" firestore:"amount"`
	Role        Role    `json:"role" firestore:"role"`
	Source      Source  `json:"source" firestore:"source"`
	Breakdown   string  `json:"breakdown" firestore:"breakdown"`
}
