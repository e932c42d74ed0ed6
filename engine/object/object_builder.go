package object

import (
	"github.com/Carmen-Shannon/wboit/common"
)

// ObjectBuilderOption is a functional option for configuring an object.
// Use the With* functions to create options. Options are applied in
// order, so WithLookAtPoint should come after WithTranslation.
type ObjectBuilderOption func(*objectImpl)

// WithColor sets the object's RGBA base color. Alpha below 1 marks the
// object for the transparent path; the caller routes accordingly.
//
// Parameters:
//   - r, g, b, a: color components in [0, 1]
//
// Returns:
//   - ObjectBuilderOption: option function to apply
func WithColor(r, g, b, a float32) ObjectBuilderOption {
	return func(o *objectImpl) {
		o.color = [4]float32{r, g, b, a}
	}
}

// WithScale sets the object's per-axis scale factors.
//
// Parameters:
//   - x, y, z: scale factors
//
// Returns:
//   - ObjectBuilderOption: option function to apply
func WithScale(x, y, z float32) ObjectBuilderOption {
	return func(o *objectImpl) {
		o.scale = [3]float32{x, y, z}
	}
}

// WithTranslation sets the object's world-space position.
//
// Parameters:
//   - x, y, z: the translation
//
// Returns:
//   - ObjectBuilderOption: option function to apply
func WithTranslation(x, y, z float32) ObjectBuilderOption {
	return func(o *objectImpl) {
		o.translation = [3]float32{x, y, z}
	}
}

// WithLookAtPoint orients the object so its look axis points from its
// translation toward the given point, with +Y as the reference up vector.
//
// Parameters:
//   - x, y, z: the point to look at
//
// Returns:
//   - ObjectBuilderOption: option function to apply
func WithLookAtPoint(x, y, z float32) ObjectBuilderOption {
	return func(o *objectImpl) {
		o.basis = common.LookBasis(
			o.translation[0], o.translation[1], o.translation[2],
			x, y, z,
			0, 1, 0,
		)
	}
}
