package commission

// DeriveRolling inverts fee = rolling * rate/100. It returns false when a
// non-zero fee was paid at a zero rate, in which case no rolling can be
// derived and 0 is returned.
func DeriveRolling(fee, rate float64) (float64, bool) {
	if fee == 0 {
		return 0, true
	}
	if rate == 0 {
		return 0, false
	}
	return fee / (rate / 100), true
}
