// package renderer drives the three-stage weighted blended OIT protocol
// on the GPU through WebGPU. It owns the device and surface, the
// accumulation/revealage/depth targets, the per-object uniform resources,
// and the per-frame pass ordering contract: clear targets, opaque draws,
// accumulation draws with blending enabled on both targets, then exactly
// one full-screen composite draw.
package renderer

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/wboit/engine/camera"
	"github.com/Carmen-Shannon/wboit/engine/object"
	"github.com/Carmen-Shannon/wboit/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/wboit/engine/shading"
	"github.com/cogentcore/webgpu/wgpu"
)

// objectResources holds the GPU resources created for one registered
// object: its uniform buffer and the bind group wrapping it.
type objectResources struct {
	buffer    *wgpu.Buffer
	bindGroup *wgpu.BindGroup
}

type rendererImpl struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	width, height int

	forceFallbackAdapter bool

	shaderModule *wgpu.ShaderModule

	cameraLayout    *wgpu.BindGroupLayout
	objectLayout    *wgpu.BindGroupLayout
	compositeLayout *wgpu.BindGroupLayout

	opaquePipeline       pipeline.Pipeline
	accumulationPipeline pipeline.Pipeline
	compositePipeline    pipeline.Pipeline

	quadVertexBuffer *wgpu.Buffer
	cameraBuffer     *wgpu.Buffer
	cameraBindGroup  *wgpu.BindGroup

	objects map[string]*objectResources

	depthTexture        *wgpu.Texture
	depthView           *wgpu.TextureView
	accumulationTexture *wgpu.Texture
	accumulationView    *wgpu.TextureView
	revealageTexture    *wgpu.Texture
	revealageView       *wgpu.TextureView
	compositeBindGroup  *wgpu.BindGroup
}

// Renderer defines the interface for the WBOIT rendering system. A
// Renderer is bound to one window surface; RenderFrame runs the full
// three-stage protocol for one frame.
type Renderer interface {
	// Resize reconfigures the surface and recreates the size-dependent
	// render targets (depth, accumulation, revealage) and the composite
	// bind group. Call when the window's framebuffer size changes.
	//
	// Parameters:
	//   - width, height: the new surface size in pixels
	Resize(width, height int)

	// RenderFrame renders one frame: uploads the camera and object
	// uniforms, then encodes the opaque, accumulation, and composite
	// passes in the contract order and presents the result. Objects not
	// seen before are registered (uniform buffer + bind group) on first
	// use. The caller routes objects: opaque objects should have alpha 1,
	// transparent ones alpha below 1; neither is enforced here.
	//
	// Parameters:
	//   - cam: the frame's camera (uniform shared by all draws)
	//   - opaque: objects drawn by the opaque stage
	//   - transparent: objects drawn by the accumulation stage
	//
	// Returns:
	//   - error: an error if surface acquisition or command encoding fails
	RenderFrame(cam camera.Camera, opaque, transparent []object.Object) error

	// Release frees the GPU resources owned by the renderer.
	Release()
}

var _ Renderer = &rendererImpl{}

// NewRenderer creates a renderer bound to the given surface and
// initializes the GPU: instance, adapter, device, the shared WGSL shader
// module, the three pipelines, and the size-dependent targets. Panics if
// GPU bring-up fails; later per-frame operations return errors instead.
//
// Parameters:
//   - surfaceDescriptor: the platform surface to render to
//   - width, height: the initial surface size in pixels
//   - options: builder options to apply
//
// Returns:
//   - Renderer: the initialized renderer
func NewRenderer(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, options ...RendererBuilderOption) Renderer {
	runtime.LockOSThread()

	r := &rendererImpl{
		mu:          &sync.Mutex{},
		presentMode: wgpu.PresentModeFifo,
		objects:     make(map[string]*objectResources),
	}
	for _, option := range options {
		option(r)
	}

	r.instance = wgpu.CreateInstance(nil)
	r.surface = r.instance.CreateSurface(surfaceDescriptor)

	adapter, err := r.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: r.forceFallbackAdapter,
		CompatibleSurface:    r.surface,
	})
	if err != nil {
		panic(err)
	}
	r.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "WBOIT Device",
	})
	if err != nil {
		panic(err)
	}
	r.device = device
	r.queue = device.GetQueue()

	if err := r.initSharedResources(); err != nil {
		panic(err)
	}

	r.Resize(width, height)

	if err := r.registerPipelines(); err != nil {
		panic(err)
	}

	return r
}

// initSharedResources creates the size-independent GPU objects: the
// shader module, bind group layouts, quad vertex buffer, and the camera
// uniform buffer with its bind group.
func (r *rendererImpl) initSharedResources() error {
	module, err := r.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "ShaderModule(WeightedBlendedOIT)",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: shading.Source,
		},
	})
	if err != nil {
		return err
	}
	r.shaderModule = module

	cameraDesc := pipeline.CameraBindGroupLayoutDescriptor()
	r.cameraLayout, err = r.device.CreateBindGroupLayout(&cameraDesc)
	if err != nil {
		return err
	}
	objectDesc := pipeline.ObjectBindGroupLayoutDescriptor()
	r.objectLayout, err = r.device.CreateBindGroupLayout(&objectDesc)
	if err != nil {
		return err
	}
	compositeDesc := pipeline.CompositeBindGroupLayoutDescriptor()
	r.compositeLayout, err = r.device.CreateBindGroupLayout(&compositeDesc)
	if err != nil {
		return err
	}

	quad := object.QuadStripVertexData()
	r.quadVertexBuffer, err = r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "VertexBuffer(QuadMesh)",
		Size:  uint64(len(quad)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	r.queue.WriteBuffer(r.quadVertexBuffer, 0, quad)

	var cameraUniform camera.GPUCameraUniform
	r.cameraBuffer, err = r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "UniformBuffer(Camera)",
		Size:  uint64(cameraUniform.Size()),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	r.cameraBindGroup, err = r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "BindGroup(Camera)",
		Layout: r.cameraLayout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  r.cameraBuffer,
				Offset:  0,
				Size:    wgpu.WholeSize,
			},
		},
	})
	return err
}

// registerPipelines creates the three GPU render pipelines from their
// CPU-side descriptions. The surface format must be known, so Resize must
// run first.
func (r *rendererImpl) registerPipelines() error {
	r.opaquePipeline = pipeline.NewOpaquePipeline()
	r.accumulationPipeline = pipeline.NewAccumulationPipeline()
	r.compositePipeline = pipeline.NewCompositePipeline()

	geometryLayouts := []*wgpu.BindGroupLayout{r.cameraLayout, r.objectLayout}
	compositeLayouts := []*wgpu.BindGroupLayout{r.compositeLayout}

	for _, entry := range []struct {
		p       pipeline.Pipeline
		layouts []*wgpu.BindGroupLayout
	}{
		{r.opaquePipeline, geometryLayouts},
		{r.accumulationPipeline, geometryLayouts},
		{r.compositePipeline, compositeLayouts},
	} {
		if err := r.createRenderPipeline(entry.p, entry.layouts); err != nil {
			return fmt.Errorf("failed to create pipeline %q: %w", entry.p.Key(), err)
		}
	}
	return nil
}

// createRenderPipeline turns one pipeline description into a GPU pipeline,
// resolving TextureFormatUndefined color targets to the surface format.
func (r *rendererImpl) createRenderPipeline(p pipeline.Pipeline, layouts []*wgpu.BindGroupLayout) error {
	pipelineLayout, err := r.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.Key(),
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return err
	}

	targets := make([]wgpu.ColorTargetState, 0, len(p.ColorTargets()))
	for _, ct := range p.ColorTargets() {
		format := ct.Format
		if format == wgpu.TextureFormatUndefined {
			format = r.surfaceFormat
		}
		targets = append(targets, wgpu.ColorTargetState{
			Format:    format,
			Blend:     ct.Blend,
			WriteMask: wgpu.ColorWriteMaskAll,
		})
	}

	var vertexBuffers []wgpu.VertexBufferLayout
	if p.HasVertexBuffer() {
		vertexBuffers = []wgpu.VertexBufferLayout{
			{
				ArrayStride: 12, // [3]float32 position
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{
						Format:         wgpu.VertexFormatFloat32x3,
						Offset:         0,
						ShaderLocation: 0,
					},
				},
			},
		}
	}

	created, err := r.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.Key() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     r.shaderModule,
			EntryPoint: p.VertexShader().EntryPoint(),
			Buffers:    vertexBuffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     r.shaderModule,
			EntryPoint: p.FragmentShader().EntryPoint(),
			Targets:    targets,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleStrip,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth32Float,
			DepthWriteEnabled: p.DepthWriteEnabled(),
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return err
	}

	p.SetRenderPipeline(created)
	return nil
}

func (r *rendererImpl) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}
	r.width = width
	r.height = height

	capabilities := r.surface.GetCapabilities(r.adapter)
	r.surfaceFormat = capabilities.Formats[0]

	r.surface.Configure(r.adapter, r.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      r.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: r.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	r.releaseTargets()
	r.depthTexture, r.depthView = r.createTarget("DepthStencilBuffer", wgpu.TextureFormatDepth32Float, wgpu.TextureUsageRenderAttachment)
	r.accumulationTexture, r.accumulationView = r.createTarget("Accumulate", wgpu.TextureFormatRGBA16Float, wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding)
	r.revealageTexture, r.revealageView = r.createTarget("Revealage", wgpu.TextureFormatR8Unorm, wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding)

	bindGroup, err := r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "BindGroup(WeightedBlendedOIT)",
		Layout: r.compositeLayout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding:     0,
				TextureView: r.accumulationView,
			},
			{
				Binding:     1,
				TextureView: r.revealageView,
			},
		},
	})
	if err != nil {
		panic(err)
	}
	r.compositeBindGroup = bindGroup
}

// releaseTargets frees the size-dependent textures and views from the
// previous surface configuration.
func (r *rendererImpl) releaseTargets() {
	for _, view := range []*wgpu.TextureView{r.depthView, r.accumulationView, r.revealageView} {
		if view != nil {
			view.Release()
		}
	}
	for _, texture := range []*wgpu.Texture{r.depthTexture, r.accumulationTexture, r.revealageTexture} {
		if texture != nil {
			texture.Release()
		}
	}
	r.depthTexture, r.depthView = nil, nil
	r.accumulationTexture, r.accumulationView = nil, nil
	r.revealageTexture, r.revealageView = nil, nil
}

// createTarget creates one size-dependent render target texture and its
// default view. Panics on failure, matching bring-up policy.
func (r *rendererImpl) createTarget(label string, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*wgpu.Texture, *wgpu.TextureView) {
	texture, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(r.width),
			Height:             uint32(r.height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		panic(err)
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		panic(err)
	}
	return texture, view
}

// ensureObject creates the uniform buffer and bind group for an object on
// first use and uploads the object's current uniform data.
func (r *rendererImpl) ensureObject(obj object.Object) (*objectResources, error) {
	res, ok := r.objects[obj.ID()]
	if !ok {
		uniform := obj.Uniform()
		buffer, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "UniformBuffer(" + obj.ID() + ")",
			Size:  uint64(uniform.Size()),
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, err
		}
		bindGroup, err := r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  "BindGroup(" + obj.ID() + ")",
			Layout: r.objectLayout,
			Entries: []wgpu.BindGroupEntry{
				{
					Binding: 0,
					Buffer:  buffer,
					Offset:  0,
					Size:    wgpu.WholeSize,
				},
			},
		})
		if err != nil {
			return nil, err
		}
		res = &objectResources{buffer: buffer, bindGroup: bindGroup}
		r.objects[obj.ID()] = res
	}

	uniform := obj.Uniform()
	r.queue.WriteBuffer(res.buffer, 0, uniform.Marshal())
	return res, nil
}

func (r *rendererImpl) RenderFrame(cam camera.Camera, opaque, transparent []object.Object) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	uniform := cam.Uniform()
	r.queue.WriteBuffer(r.cameraBuffer, 0, uniform.Marshal())

	surfaceTexture, err := r.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("failed to acquire surface texture: %w", err)
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	defer func() {
		view.Release()
		surfaceTexture.Release()
	}()

	encoder, err := r.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	// <1> Opaque pass: clears the frame, establishes depth and the opaque
	// color baseline.
	opaquePass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "RenderPass(Opaque)",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            r.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
	opaquePass.SetPipeline(r.opaquePipeline.RenderPipeline())
	opaquePass.SetBindGroup(0, r.cameraBindGroup, nil)
	opaquePass.SetVertexBuffer(0, r.quadVertexBuffer, 0, wgpu.WholeSize)
	for _, obj := range opaque {
		res, resErr := r.ensureObject(obj)
		if resErr != nil {
			opaquePass.End()
			return resErr
		}
		opaquePass.SetBindGroup(1, res.bindGroup, nil)
		opaquePass.Draw(4, 1, 0, 0)
	}
	opaquePass.End()

	// <2> Accumulation pass: accumulation target cleared to zero,
	// revealage target cleared to one; depth loaded from the opaque pass
	// so occluded transparent fragments are rejected, but never written.
	accumulationPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "RenderPass(Transparent)",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       r.accumulationView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 0},
			},
			{
				View:       r.revealageView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 1, G: 1, B: 1, A: 1},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:         r.depthView,
			DepthLoadOp:  wgpu.LoadOpLoad,
			DepthStoreOp: wgpu.StoreOpStore,
		},
	})
	accumulationPass.SetPipeline(r.accumulationPipeline.RenderPipeline())
	accumulationPass.SetBindGroup(0, r.cameraBindGroup, nil)
	accumulationPass.SetVertexBuffer(0, r.quadVertexBuffer, 0, wgpu.WholeSize)
	for _, obj := range transparent {
		res, resErr := r.ensureObject(obj)
		if resErr != nil {
			accumulationPass.End()
			return resErr
		}
		accumulationPass.SetBindGroup(1, res.bindGroup, nil)
		accumulationPass.Draw(4, 1, 0, 0)
	}
	accumulationPass.End()

	// <3> Composite pass: one full-screen draw reading both OIT targets,
	// blended over the opaque result. The pass boundary is the
	// read-after-write-all barrier the composite stage depends on.
	compositePass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "RenderPass(Composite)",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    view,
				LoadOp:  wgpu.LoadOpLoad,
				StoreOp: wgpu.StoreOpStore,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:         r.depthView,
			DepthLoadOp:  wgpu.LoadOpLoad,
			DepthStoreOp: wgpu.StoreOpStore,
		},
	})
	compositePass.SetPipeline(r.compositePipeline.RenderPipeline())
	compositePass.SetBindGroup(0, r.compositeBindGroup, nil)
	compositePass.Draw(4, 1, 0, 0)
	compositePass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	r.queue.Submit(commandBuffer)
	commandBuffer.Release()

	r.surface.Present()
	return nil
}

func (r *rendererImpl) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, res := range r.objects {
		res.buffer.Release()
	}
	r.objects = make(map[string]*objectResources)

	if r.cameraBuffer != nil {
		r.cameraBuffer.Release()
		r.cameraBuffer = nil
	}
	if r.quadVertexBuffer != nil {
		r.quadVertexBuffer.Release()
		r.quadVertexBuffer = nil
	}
	r.releaseTargets()
	if r.device != nil {
		r.device.Release()
		r.device = nil
	}
}
