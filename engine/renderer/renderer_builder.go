package renderer

import "github.com/cogentcore/webgpu/wgpu"

// RendererBuilderOption is a functional option for configuring the
// renderer at creation time. Use the With* functions to create options.
type RendererBuilderOption func(*rendererImpl)

// WithPresentMode sets the surface present mode. The default is
// PresentModeFifo (vsync).
//
// Parameters:
//   - mode: the present mode
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithPresentMode(mode wgpu.PresentMode) RendererBuilderOption {
	return func(r *rendererImpl) {
		r.presentMode = mode
	}
}

// WithForceFallbackAdapter forces adapter selection to the fallback
// (software) adapter, useful on machines without a usable GPU.
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithForceFallbackAdapter() RendererBuilderOption {
	return func(r *rendererImpl) {
		r.forceFallbackAdapter = true
	}
}
