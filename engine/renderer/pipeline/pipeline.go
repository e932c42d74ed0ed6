// package pipeline describes the three render pipelines of the weighted
// blended OIT protocol: opaque, accumulation, and composite. A Pipeline
// is a CPU-side description; the renderer backend turns it into the
// actual GPU pipeline object with the frame's surface format.
package pipeline

import (
	"github.com/Carmen-Shannon/wboit/engine/shading"
	"github.com/cogentcore/webgpu/wgpu"
)

// Pipeline keys, used for caching and GPU object labels.
const (
	KeyOpaque       = "wboit_opaque"
	KeyAccumulation = "wboit_accumulation"
	KeyComposite    = "wboit_composite"
)

// blendComponentAdditive accumulates src + dst, the accumulation target's
// hardware sum.
var blendComponentAdditive = wgpu.BlendComponent{
	SrcFactor: wgpu.BlendFactorOne,
	DstFactor: wgpu.BlendFactorOne,
	Operation: wgpu.BlendOperationAdd,
}

// BlendStateAdditive is the one/one additive blend used by the
// accumulation target.
var BlendStateAdditive = wgpu.BlendState{
	Color: blendComponentAdditive,
	Alpha: blendComponentAdditive,
}

// blendComponentProduct computes dst * (1 - src): each fragment scales the
// stored revealage by its own transmittance.
var blendComponentProduct = wgpu.BlendComponent{
	SrcFactor: wgpu.BlendFactorZero,
	DstFactor: wgpu.BlendFactorOneMinusSrc,
	Operation: wgpu.BlendOperationAdd,
}

// BlendStateProduct is the multiplicative blend used by the revealage
// target. The target is cleared to 1; a pixel no transparent fragment
// touches stays at exactly 1.
var BlendStateProduct = wgpu.BlendState{
	Color: blendComponentProduct,
	Alpha: blendComponentProduct,
}

// BlendStateAlpha is the standard "over" blend the composite stage uses to
// lay the reconstructed transparent color over the opaque result.
var BlendStateAlpha = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
}

// ColorTarget describes one color attachment of a pipeline: its texture
// format and optional blend state. A format of TextureFormatUndefined
// means "the surface format", resolved by the backend at creation time.
type ColorTarget struct {
	Format wgpu.TextureFormat
	Blend  *wgpu.BlendState
}

// pipelineImpl is the implementation of the Pipeline interface.
type pipelineImpl struct {
	key            string
	vertexShader   shading.Shader
	fragmentShader shading.Shader

	colorTargets      []ColorTarget
	depthWriteEnabled bool
	hasVertexBuffer   bool

	renderPipeline *wgpu.RenderPipeline
}

// Pipeline describes one stage's render pipeline configuration and holds
// the created GPU pipeline object once the backend registers it. All
// pipelines share triangle-strip topology, no culling, and a less-than
// depth test against the shared depth target.
type Pipeline interface {
	// Key returns the unique key for this pipeline, used for caching and labels.
	//
	// Returns:
	//   - string: the pipeline key
	Key() string

	// VertexShader returns the pipeline's vertex shader entry point.
	//
	// Returns:
	//   - shading.Shader: the vertex shader
	VertexShader() shading.Shader

	// FragmentShader returns the pipeline's fragment shader entry point.
	//
	// Returns:
	//   - shading.Shader: the fragment shader
	FragmentShader() shading.Shader

	// ColorTargets returns the pipeline's color attachment descriptions in
	// attachment order.
	//
	// Returns:
	//   - []ColorTarget: the color targets
	ColorTargets() []ColorTarget

	// DepthWriteEnabled returns whether the pipeline writes depth. Only
	// the opaque stage does; the accumulation and composite stages test
	// against the opaque depth without writing.
	//
	// Returns:
	//   - bool: true if depth writes are enabled
	DepthWriteEnabled() bool

	// HasVertexBuffer returns whether the pipeline consumes the position
	// vertex buffer. The composite stage does not; its four vertices are
	// implicit in the vertex index.
	//
	// Returns:
	//   - bool: true if the pipeline binds the position vertex buffer
	HasVertexBuffer() bool

	// RenderPipeline returns the created GPU pipeline, or nil if the
	// backend has not registered this pipeline yet.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the GPU pipeline object
	RenderPipeline() *wgpu.RenderPipeline

	// SetRenderPipeline stores the created GPU pipeline object.
	//
	// Parameters:
	//   - p: the GPU pipeline
	SetRenderPipeline(p *wgpu.RenderPipeline)
}

var _ Pipeline = &pipelineImpl{}

func (p *pipelineImpl) Key() string                    { return p.key }
func (p *pipelineImpl) VertexShader() shading.Shader   { return p.vertexShader }
func (p *pipelineImpl) FragmentShader() shading.Shader { return p.fragmentShader }
func (p *pipelineImpl) ColorTargets() []ColorTarget    { return p.colorTargets }
func (p *pipelineImpl) DepthWriteEnabled() bool        { return p.depthWriteEnabled }
func (p *pipelineImpl) HasVertexBuffer() bool          { return p.hasVertexBuffer }

func (p *pipelineImpl) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipelineImpl) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

// NewOpaquePipeline describes the opaque stage: shared vertex transform,
// pass-through fragment color written unblended to the surface target,
// depth test with write.
//
// Returns:
//   - Pipeline: the opaque pipeline description
func NewOpaquePipeline() Pipeline {
	return &pipelineImpl{
		key:            KeyOpaque,
		vertexShader:   shading.VertexShader(),
		fragmentShader: shading.OpaqueFragmentShader(),
		colorTargets: []ColorTarget{
			{Format: wgpu.TextureFormatUndefined}, // surface format, no blend
		},
		depthWriteEnabled: true,
		hasVertexBuffer:   true,
	}
}

// NewAccumulationPipeline describes the accumulation stage: shared vertex
// transform, weighted fragment output to two blended targets. Target 0 is
// the RGBA16Float accumulation sum (additive; at least 16-bit float
// precision is required for the weighted sums). Target 1 is the R8Unorm
// revealage product. Depth is tested against the opaque result but not
// written, so transparent fragments never occlude each other.
//
// Returns:
//   - Pipeline: the accumulation pipeline description
func NewAccumulationPipeline() Pipeline {
	return &pipelineImpl{
		key:            KeyAccumulation,
		vertexShader:   shading.VertexShader(),
		fragmentShader: shading.AccumulationFragmentShader(),
		colorTargets: []ColorTarget{
			{Format: wgpu.TextureFormatRGBA16Float, Blend: &BlendStateAdditive},
			{Format: wgpu.TextureFormatR8Unorm, Blend: &BlendStateProduct},
		},
		depthWriteEnabled: false,
		hasVertexBuffer:   true,
	}
}

// NewCompositePipeline describes the composite stage: a full-screen quad
// from the implicit vertex index (no vertex buffers), reading the two OIT
// targets and blending the reconstructed color over the opaque surface
// with standard "over" semantics.
//
// Returns:
//   - Pipeline: the composite pipeline description
func NewCompositePipeline() Pipeline {
	return &pipelineImpl{
		key:            KeyComposite,
		vertexShader:   shading.CompositeVertexShader(),
		fragmentShader: shading.CompositeFragmentShader(),
		colorTargets: []ColorTarget{
			{Format: wgpu.TextureFormatUndefined, Blend: &BlendStateAlpha}, // surface format
		},
		depthWriteEnabled: false,
		hasVertexBuffer:   false,
	}
}

// CameraBindGroupLayoutDescriptor is the layout of bind group 0 for the
// geometry pipelines: one uniform buffer holding the camera's view and
// projection matrices.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the camera layout
func CameraBindGroupLayoutDescriptor() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "BindGroupLayout(Camera)",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeUniform,
				},
			},
		},
	}
}

// ObjectBindGroupLayoutDescriptor is the layout of bind group 1 for the
// geometry pipelines: one uniform buffer holding the object's world
// matrix and base color.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the object layout
func ObjectBindGroupLayoutDescriptor() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "BindGroupLayout(ColoredObject)",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeUniform,
				},
			},
		},
	}
}

// CompositeBindGroupLayoutDescriptor is the layout of bind group 0 for the
// composite pipeline: the accumulation and revealage textures, loaded
// unfiltered at integer pixel coordinates.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the composite layout
func CompositeBindGroupLayoutDescriptor() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "BindGroupLayout(WeightedBlendedOIT)",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeUnfilterableFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeUnfilterableFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
		},
	}
}
