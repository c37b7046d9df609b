package ledger

import (
	"encoding/binary"
	"encoding/hex"
	"math"
	"sort"

	"golang.org/x/crypto/blake2b"

	"github.com/tierledger/settle/member"
)

// Digest returns a hex BLAKE2b-256 fingerprint of a member snapshot. The
// result depends only on the set of members and their fields, not on the
// order they were listed in.
func Digest(members []member.Member) string {
	sorted := make([]member.Member, len(members))
	copy(sorted, members)
	for i := range sorted {
		sorted[i].ID = member.NormalizeID(sorted[i].ID)
		sorted[i].ParentID = member.NormalizeID(sorted[i].ParentID)
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	h, _ := blake2b.New256(nil) // only fails for oversized keys
	var num [8]byte
	writeString := func(s string) {
		binary.BigEndian.PutUint64(num[:], uint64(len(s)))
		h.Write(num[:])
		h.Write([]byte(s))
	}
	writeFloat := func(f float64) {
		binary.BigEndian.PutUint64(num[:], math.Float64bits(f))
		h.Write(num[:])
	}
	for _, m := range sorted {
		writeString(m.ID)
		writeString(m.ParentID)
		writeString(m.Name)
		binary.BigEndian.PutUint64(num[:], uint64(m.Level))
		h.Write(num[:])
		writeFloat(m.CasinoRate)
		writeFloat(m.SlotRate)
		writeFloat(m.LosingRate)
	}
	return hex.EncodeToString(h.Sum(nil))
}
