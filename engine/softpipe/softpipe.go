// package softpipe is a CPU rendering backend implementing the same
// three-stage weighted blended OIT protocol as the GPU renderer. Blending
// is modeled with compare-and-swap float operations on the target planes
// (additive for accumulation, multiplicative for revealage), and each
// stage runs in parallel over horizontal row bands. The fragment math is
// the shading package, so both backends share one set of equations.
package softpipe

import (
	"fmt"
	"image"
	"image/color"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/wboit/engine/camera"
	"github.com/Carmen-Shannon/wboit/engine/object"
	"github.com/Carmen-Shannon/wboit/engine/shading"
)

type pipelineImpl struct {
	mu *sync.Mutex

	width, height int
	workers       int

	// pool persists across frames; a WaitGroup provides the per-stage
	// barrier, since each stage must fully finish before the next reads
	// its targets.
	pool   worker.DynamicWorkerPool
	taskID int

	color        *floatPlane // surface, 4 channels
	depth        *floatPlane // 1 channel, written by the opaque stage only
	accumulation *floatPlane // 4 channels, additive blend
	revealage    *floatPlane // 1 channel, multiplicative blend, cleared to 1
}

// Pipeline is the CPU rendering backend. RenderFrame runs the full
// three-stage protocol into an internal framebuffer; Image returns the
// result for presentation or inspection.
type Pipeline interface {
	// RenderFrame renders one frame: clears the targets, rasterizes the
	// opaque objects with depth writes, rasterizes the transparent objects
	// into the weighted accumulation and revealage targets, then runs the
	// composite resolve over every pixel. The caller routes objects
	// between the opaque and transparent lists.
	//
	// Parameters:
	//   - cam: the frame's camera
	//   - opaque: objects drawn by the opaque stage
	//   - transparent: objects drawn by the accumulation stage
	//
	// Returns:
	//   - error: an error if the pipeline has a degenerate size
	RenderFrame(cam camera.Camera, opaque, transparent []object.Object) error

	// Image converts the framebuffer to an 8-bit RGBA image, clamping each
	// channel to [0, 1].
	//
	// Returns:
	//   - *image.RGBA: the rendered frame
	Image() *image.RGBA

	// Resize reallocates the framebuffer and render targets.
	//
	// Parameters:
	//   - width, height: the new size in pixels
	Resize(width, height int)

	// Width returns the framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

var _ Pipeline = &pipelineImpl{}

// NewPipeline creates a CPU pipeline with the given framebuffer size and
// options applied over the defaults (one worker per logical CPU).
//
// Parameters:
//   - width, height: framebuffer size in pixels
//   - options: builder options to apply
//
// Returns:
//   - Pipeline: the configured pipeline
func NewPipeline(width, height int, options ...PipelineBuilderOption) Pipeline {
	p := &pipelineImpl{
		mu:      &sync.Mutex{},
		workers: runtime.NumCPU(),
	}
	for _, option := range options {
		option(p)
	}
	if p.workers < 1 {
		p.workers = 1
	}
	// Queue size of 256 leaves headroom over one task per band per stage.
	p.pool = worker.NewDynamicWorkerPool(p.workers, 256, 1*time.Second)
	p.resize(width, height)
	return p
}

func (p *pipelineImpl) Resize(width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resize(width, height)
}

func (p *pipelineImpl) resize(width, height int) {
	if width < 1 || height < 1 {
		return
	}
	p.width = width
	p.height = height
	p.color = newFloatPlane(width, height, 4)
	p.depth = newFloatPlane(width, height, 1)
	p.accumulation = newFloatPlane(width, height, 4)
	p.revealage = newFloatPlane(width, height, 1)
}

func (p *pipelineImpl) Width() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width
}

func (p *pipelineImpl) Height() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.height
}

// runBands splits the framebuffer rows into one band per worker, submits a
// task per band, and blocks until every band finishes.
func (p *pipelineImpl) runBands(run func(bandTop, bandBottom int)) {
	bandHeight := (p.height + p.workers - 1) / p.workers

	var wg sync.WaitGroup
	for top := 0; top < p.height; top += bandHeight {
		bottom := top + bandHeight
		if bottom > p.height {
			bottom = p.height
		}

		wg.Add(1)
		bandTop, bandBottom := top, bottom
		p.taskID++
		p.pool.SubmitTask(worker.Task{
			ID: p.taskID,
			Do: func() (any, error) {
				defer wg.Done()
				run(bandTop, bandBottom)
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func (p *pipelineImpl) RenderFrame(cam camera.Camera, opaque, transparent []object.Object) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.width < 1 || p.height < 1 {
		return fmt.Errorf("pipeline has no framebuffer: %dx%d", p.width, p.height)
	}

	uniform := cam.Uniform()
	projection := uniform.Projection[:]
	view := uniform.View[:]

	opaqueCommands := make([]drawCommand, 0, len(opaque))
	for _, obj := range opaque {
		opaqueCommands = append(opaqueCommands, projectQuad(projection, view, obj, p.width, p.height))
	}
	transparentCommands := make([]drawCommand, 0, len(transparent))
	for _, obj := range transparent {
		transparentCommands = append(transparentCommands, projectQuad(projection, view, obj, p.width, p.height))
	}

	// <1> Opaque stage: clear the frame, draw with depth test and write.
	p.runBands(func(bandTop, bandBottom int) {
		for i := bandTop * p.width; i < bandBottom*p.width; i++ {
			base := i * 4
			p.color.store(base, 0)
			p.color.store(base+1, 0)
			p.color.store(base+2, 0)
			p.color.store(base+3, 1)
			p.depth.store(i, 1)
			p.accumulation.store(base, 0)
			p.accumulation.store(base+1, 0)
			p.accumulation.store(base+2, 0)
			p.accumulation.store(base+3, 0)
			p.revealage.store(i, 1)
		}

		for _, cmd := range opaqueCommands {
			fragment := shading.OpaqueFragment(cmd.color)
			rasterizeQuad(cmd, p.width, bandTop, bandBottom, func(index int, depth float32) {
				if depth >= p.depth.load(index) {
					return
				}
				p.depth.store(index, depth)
				base := index * 4
				p.color.store(base, fragment[0])
				p.color.store(base+1, fragment[1])
				p.color.store(base+2, fragment[2])
				p.color.store(base+3, fragment[3])
			})
		}
	})

	// <2> Accumulation stage: depth tested against the opaque result but
	// never written, so transparent fragments blend commutatively in both
	// targets regardless of draw order.
	p.runBands(func(bandTop, bandBottom int) {
		for _, cmd := range transparentCommands {
			baseColor := cmd.color
			rasterizeQuad(cmd, p.width, bandTop, bandBottom, func(index int, depth float32) {
				if depth >= p.depth.load(index) {
					return
				}
				accumulation, revealage := shading.AccumulateFragment(baseColor, depth)
				base := index * 4
				p.accumulation.atomicAdd(base, accumulation[0])
				p.accumulation.atomicAdd(base+1, accumulation[1])
				p.accumulation.atomicAdd(base+2, accumulation[2])
				p.accumulation.atomicAdd(base+3, accumulation[3])
				p.revealage.atomicMul(index, 1-revealage)
			})
		}
	})

	// <3> Composite stage: one resolve per pixel, alpha blended over the
	// opaque color.
	p.runBands(func(bandTop, bandBottom int) {
		for index := bandTop * p.width; index < bandBottom*p.width; index++ {
			base := index * 4
			accumulation := [4]float32{
				p.accumulation.load(base),
				p.accumulation.load(base + 1),
				p.accumulation.load(base + 2),
				p.accumulation.load(base + 3),
			}
			revealage := p.revealage.load(index)

			composite, ok := shading.CompositeFragment(accumulation, revealage)
			if !ok {
				continue
			}
			srcAlpha := composite[3]
			for c := 0; c < 3; c++ {
				dst := p.color.load(base + c)
				p.color.store(base+c, composite[c]*srcAlpha+dst*(1-srcAlpha))
			}
			dstAlpha := p.color.load(base + 3)
			p.color.store(base+3, composite[3]+dstAlpha*(1-srcAlpha))
		}
	})

	return nil
}

func (p *pipelineImpl) Image() *image.RGBA {
	p.mu.Lock()
	defer p.mu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	for i := 0; i < p.width*p.height; i++ {
		base := i * 4
		img.SetRGBA(i%p.width, i/p.width, color.RGBA{
			R: toByte(p.color.load(base)),
			G: toByte(p.color.load(base + 1)),
			B: toByte(p.color.load(base + 2)),
			A: toByte(p.color.load(base + 3)),
		})
	}
	return img
}

// toByte clamps a [0, 1] channel and quantizes it to 8 bits.
func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
