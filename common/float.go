// package common contains the shared math and numeric-policy helpers used
// throughout the renderer. They are plain functions on float32 values, not
// interface-wrapped types.
package common

// Epsilon is the float32 machine epsilon. The composite stage uses it both
// as the divisor floor for the weighted-average reconstruction and as the
// relative tolerance of ApproxEqual.
const Epsilon float32 = 1.192092896e-7

// Clamp limits v to the inclusive range [lo, hi].
//
// Parameters:
//   - v: the value to clamp
//   - lo, hi: the range bounds (lo must be <= hi)
//
// Returns:
//   - float32: v limited to [lo, hi]
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ApproxEqual reports whether a and b are equal within a relative error of
// Epsilon: |a-b| <= min(|a|, |b|) * Epsilon. This is a relative comparison,
// not an absolute one; the composite stage uses it only for the
// "fully revealed / no transparent coverage" check against 1.0.
//
// Parameters:
//   - a, b: the values to compare
//
// Returns:
//   - bool: true if the values are approximately equal
func ApproxEqual(a, b float32) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	aa, ab := a, b
	if aa < 0 {
		aa = -aa
	}
	if ab < 0 {
		ab = -ab
	}
	smaller := aa
	if ab < aa {
		smaller = ab
	}
	return diff <= smaller*Epsilon
}

// IsSaturated reports whether v has overflowed to a saturated (infinite)
// magnitude, using the doubling trick: a finite non-zero float changes when
// doubled, an infinity does not. Deliberately narrower than math.IsInf:
// NaN inputs report false (NaN*2 != NaN), and the composite stage relies on
// that. The overflow fallback must trigger only once additive accumulation
// has actually saturated, never on NaN garbage.
//
// Parameters:
//   - v: the value to test
//
// Returns:
//   - bool: true if v is a saturated (infinite) value
func IsSaturated(v float32) bool {
	return v != 0 && v*2 == v
}
