// package shading implements the weighted blended order-independent
// transparency core: the shared vertex transform, the three fragment
// stages, and the numeric policy that keeps the approximation stable.
//
// Every function here has an exact WGSL twin in assets/wboit.wgsl; the
// softpipe package executes these on the CPU, the renderer package runs
// the WGSL on the GPU. Keep the two in lockstep.
package shading

import (
	"github.com/Carmen-Shannon/wboit/common"
)

// Weight bounds for the accumulation stage. The clamp keeps per-fragment
// weights from underflowing or overflowing once summed across many
// overlapping transparent fragments.
const (
	WeightFloor   float32 = 1e-2
	WeightCeiling float32 = 3e3
)

// TransformVertex transforms an object-space position into clip space:
// projection * view * world * (position, 1). The multiplication order
// matches the camera convention (projection applied last) and must not
// be changed.
//
// Parameters:
//   - projection: the camera projection matrix (16 elements, column-major)
//   - view: the camera view matrix (16 elements, column-major)
//   - world: the object's world matrix (16 elements, column-major)
//   - position: object-space vertex position
//
// Returns:
//   - [4]float32: the clip-space homogeneous position
func TransformVertex(projection, view, world []float32, position [3]float32) [4]float32 {
	v := common.MulVec4(world, [4]float32{position[0], position[1], position[2], 1})
	v = common.MulVec4(view, v)
	return common.MulVec4(projection, v)
}

// OpaqueFragment is the opaque stage's fragment function: the interpolated
// color passes through unchanged, written without blending. Intended only
// for objects whose alpha is always 1; routing is the caller's job.
//
// Parameters:
//   - color: the interpolated RGBA color
//
// Returns:
//   - [4]float32: the color, unchanged
func OpaqueFragment(color [4]float32) [4]float32 {
	return color
}

// Weight computes the per-fragment blending weight from alpha and the
// fragment's clip-space depth (not linearized; the projection must map
// depth into [0, 1]):
//
//	w = clamp(pow(min(1, alpha*10) + 0.01, 3) * 1e8 * pow(1 - depth*0.9, 3), 1e-2, 3e3)
//
// Higher-alpha and nearer fragments dominate the weighted average. The
// cubic terms and the 1e8 multiplier are tuned constants; any deviation
// visibly changes the blend.
//
// Parameters:
//   - alpha: the fragment's alpha in [0, 1]
//   - depth: the fragment's clip-space depth in [0, 1]
//
// Returns:
//   - float32: the clamped weight in [WeightFloor, WeightCeiling]
func Weight(alpha, depth float32) float32 {
	a := alpha * 10
	if a > 1 {
		a = 1
	}
	a += 0.01
	d := 1 - depth*0.9
	return common.Clamp(a*a*a*1e8*(d*d*d), WeightFloor, WeightCeiling)
}

// AccumulateFragment is the accumulation stage's fragment function. It
// returns the two values the stage writes with blending enabled:
// the weighted premultiplied color for the accumulation target (additive)
// and the raw alpha for the revealage target (product: dst *= 1 - alpha).
// Never discards; always produces a value.
//
// Parameters:
//   - color: the interpolated RGBA color
//   - depth: the fragment's clip-space depth in [0, 1]
//
// Returns:
//   - accumulation: (rgb*alpha, alpha) * weight
//   - revealage: the fragment's alpha
func AccumulateFragment(color [4]float32, depth float32) (accumulation [4]float32, revealage float32) {
	w := Weight(color[3], depth)
	accumulation = [4]float32{
		color[0] * color[3] * w,
		color[1] * color[3] * w,
		color[2] * color[3] * w,
		color[3] * w,
	}
	return accumulation, color[3]
}

// compositeCorners are the four clip-space corners of the full-screen
// composite quad, indexed by vertex index as a triangle strip.
var compositeCorners = [4][4]float32{
	{-1, -1, 0, 1},
	{-1, 1, 0, 1},
	{1, -1, 0, 1},
	{1, 1, 0, 1},
}

// CompositeCorner is the composite stage's vertex function: a fixed
// lookup of the full-screen quad corner for the given vertex index.
// Indices outside 0-3 are unreachable under the fixed 4-vertex draw and
// return the zero vector.
//
// Parameters:
//   - index: the implicit vertex index (0-3)
//
// Returns:
//   - [4]float32: the clip-space corner position
func CompositeCorner(index uint32) [4]float32 {
	if index > 3 {
		return [4]float32{}
	}
	return compositeCorners[index]
}

// CompositeFragment is the composite stage's fragment function. Given the
// accumulation and revealage values at the fragment's pixel it
// reconstructs the average transparent color and the final blend factor:
//
//  1. revealage approximately 1.0 means no transparent coverage: discard
//     (ok == false), leaving the opaque result untouched.
//  2. A saturated accumulation channel (additive overflow) collapses the
//     color to neutral gray (a,a,a,a), preserving total alpha.
//  3. The average divides by accumulated alpha floored at Epsilon.
//
// The output color's alpha is 1 - revealage, to be blended over the
// opaque target with standard "over" semantics. All anomalies are
// silently compensated; this stage never fails.
//
// Parameters:
//   - accumulation: the RGBA value read from the accumulation target
//   - revealage: the value read from the revealage target
//
// Returns:
//   - [4]float32: (averageColor, 1 - revealage); zero if discarded
//   - bool: false if the fragment discards, true otherwise
func CompositeFragment(accumulation [4]float32, revealage float32) ([4]float32, bool) {
	if common.ApproxEqual(revealage, 1.0) {
		return [4]float32{}, false
	}

	if common.IsSaturated(maxAbs3(accumulation[0], accumulation[1], accumulation[2])) {
		a := accumulation[3]
		accumulation = [4]float32{a, a, a, a}
	}

	divisor := accumulation[3]
	if divisor < common.Epsilon {
		divisor = common.Epsilon
	}
	return [4]float32{
		accumulation[0] / divisor,
		accumulation[1] / divisor,
		accumulation[2] / divisor,
		1 - revealage,
	}, true
}

func maxAbs3(r, g, b float32) float32 {
	if r < 0 {
		r = -r
	}
	if g < 0 {
		g = -g
	}
	if b < 0 {
		b = -b
	}
	m := r
	if g > m {
		m = g
	}
	if b > m {
		m = b
	}
	return m
}
