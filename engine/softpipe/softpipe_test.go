package softpipe

import (
	"image/color"
	"math"
	"testing"

	"github.com/Carmen-Shannon/wboit/engine/camera"
	"github.com/Carmen-Shannon/wboit/engine/object"
)

const (
	testSize = 64
	// center of the framebuffer; every test quad is centered on the view
	// axis and covers this pixel.
	center = testSize / 2
)

func testCamera() camera.Camera {
	return camera.NewCamera(
		camera.WithEye(0, 0, 5),
		camera.WithTarget(0, 0, 0),
		camera.WithFov(float32(60.0*math.Pi/180.0)),
		camera.WithAspect(1),
		camera.WithNear(0.001),
		camera.WithFar(1000),
	)
}

func newTestPipeline(t *testing.T) Pipeline {
	t.Helper()
	return NewPipeline(testSize, testSize, WithWorkers(4))
}

func TestRenderFrameBackground(t *testing.T) {
	p := newTestPipeline(t)
	if err := p.RenderFrame(testCamera(), nil, nil); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}

	img := p.Image()
	for _, pt := range [][2]int{{0, 0}, {center, center}, {testSize - 1, testSize - 1}} {
		got := img.RGBAAt(pt[0], pt[1])
		if got != (color.RGBA{0, 0, 0, 255}) {
			t.Errorf("pixel (%d, %d) = %v, want opaque black", pt[0], pt[1], got)
		}
	}
}

func TestRenderFrameOpaque(t *testing.T) {
	p := newTestPipeline(t)
	opaque := []object.Object{
		object.NewObject(object.WithColor(0.5, 0.5, 0.5, 1)),
	}
	if err := p.RenderFrame(testCamera(), opaque, nil); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}

	img := p.Image()
	if got := img.RGBAAt(center, center); got != (color.RGBA{128, 128, 128, 255}) {
		t.Errorf("center = %v, want mid gray", got)
	}
	// The quad projects well inside the frame; the corner stays clear.
	if got := img.RGBAAt(1, 1); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("corner = %v, want opaque black", got)
	}
}

// A single transparent quad with alpha 1 must reconstruct its own color:
// the weight cancels in the average and the composite fully replaces the
// background.
func TestRenderFrameOpaqueAlphaRoundTrip(t *testing.T) {
	p := newTestPipeline(t)
	transparent := []object.Object{
		object.NewObject(object.WithColor(0.8, 0.4, 0.2, 1)),
	}
	if err := p.RenderFrame(testCamera(), nil, transparent); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}

	got := p.Image().RGBAAt(center, center)
	want := color.RGBA{204, 102, 51, 255}
	if !withinOne(got.R, want.R) || !withinOne(got.G, want.G) || !withinOne(got.B, want.B) || got.A != 255 {
		t.Errorf("center = %v, want about %v", got, want)
	}
}

// Two overlapping faint quads: both contribute, and the nearer one
// dominates the weighted average regardless of submission order. The
// tight near/far range spreads the two depths apart, and the low alpha
// keeps both weights inside the clamp band so the depth term matters.
func TestRenderFrameTransparentBlend(t *testing.T) {
	cam := camera.NewCamera(
		camera.WithEye(0, 0, 5),
		camera.WithTarget(0, 0, 0),
		camera.WithFov(float32(60.0*math.Pi/180.0)),
		camera.WithAspect(1),
		camera.WithNear(1),
		camera.WithFar(10),
	)
	red := object.NewObject(
		object.WithColor(1, 0, 0, 0.01),
		object.WithTranslation(0, 0, 0),
	)
	blue := object.NewObject(
		object.WithColor(0, 0, 1, 0.01),
		object.WithTranslation(0, 0, -2),
	)

	for name, order := range map[string][]object.Object{
		"near first": {red, blue},
		"far first":  {blue, red},
	} {
		t.Run(name, func(t *testing.T) {
			p := newTestPipeline(t)
			if err := p.RenderFrame(cam, nil, order); err != nil {
				t.Fatalf("RenderFrame: %v", err)
			}

			got := p.Image().RGBAAt(center, center)
			if got.R == 0 || got.B == 0 {
				t.Fatalf("center = %v, want both red and blue contributions", got)
			}
			if got.R <= got.B {
				t.Errorf("center = %v, nearer red should outweigh farther blue", got)
			}
			if got.G != 0 {
				t.Errorf("center = %v, unexpected green", got)
			}
		})
	}
}

// Identical overlapping quads blend to equal channels once their weights
// both clamp at the ceiling: at alpha 0.5 the weight function saturates
// for every depth, so near and far contribute evenly.
func TestRenderFrameWeightCeilingEvensOut(t *testing.T) {
	p := newTestPipeline(t)
	transparent := []object.Object{
		object.NewObject(
			object.WithColor(1, 0, 0, 0.5),
			object.WithTranslation(0, 0, 0),
		),
		object.NewObject(
			object.WithColor(0, 0, 1, 0.5),
			object.WithTranslation(0, 0, -2),
		),
	}
	if err := p.RenderFrame(testCamera(), nil, transparent); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}

	got := p.Image().RGBAAt(center, center)
	if !withinOne(got.R, got.B) {
		t.Errorf("center = %v, want equal red and blue at clamped weights", got)
	}
	// avg (0.5, 0, 0.5) laid over black with 1 - 0.5*0.5 = 0.75 coverage.
	if !withinOne(got.R, 96) {
		t.Errorf("center = %v, want about (96, 0, 96)", got)
	}
}

// Transparent fragments behind opaque geometry fail the depth test, leave
// revealage at 1, and the composite discards: the opaque color survives
// untouched.
func TestRenderFrameDepthOcclusion(t *testing.T) {
	p := newTestPipeline(t)
	opaque := []object.Object{
		object.NewObject(
			object.WithColor(0.5, 0.5, 0.5, 1),
			object.WithTranslation(0, 0, 1),
		),
	}
	transparent := []object.Object{
		object.NewObject(
			object.WithColor(1, 0, 0, 0.5),
			object.WithTranslation(0, 0, 0),
		),
	}
	if err := p.RenderFrame(testCamera(), opaque, transparent); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}

	if got := p.Image().RGBAAt(center, center); got != (color.RGBA{128, 128, 128, 255}) {
		t.Errorf("center = %v, want the occluding gray untouched", got)
	}
}

// Every covered pixel of a quad must be emitted exactly once, including
// pixel centers lying exactly on the diagonal shared by the strip's two
// triangles. A double emission there would add the weighted color twice
// and square the pixel's transmittance in the accumulation stage,
// diverging from the one-invocation-per-fragment GPU behavior.
func TestRasterizeQuadSharedEdgeCoverage(t *testing.T) {
	const width = 4
	cmd := drawCommand{
		vertices: [4]screenVertex{
			{x: 0, y: 0, depth: 0.5},
			{x: 0, y: width, depth: 0.5},
			{x: width, y: 0, depth: 0.5},
			{x: width, y: width, depth: 0.5},
		},
		color: [4]float32{1, 1, 1, 1},
		valid: true,
	}

	counts := make([]int, width*width)
	rasterizeQuad(cmd, width, 0, width, func(index int, depth float32) {
		counts[index]++
	})

	for index, count := range counts {
		if count != 1 {
			t.Errorf("pixel (%d, %d) emitted %d times, want 1", index%width, index/width, count)
		}
	}
}

func TestRenderFrameDegenerateSize(t *testing.T) {
	p := NewPipeline(0, 0, WithWorkers(1))
	if err := p.RenderFrame(testCamera(), nil, nil); err == nil {
		t.Error("RenderFrame on empty framebuffer did not error")
	}
}

func TestResize(t *testing.T) {
	p := NewPipeline(8, 8, WithWorkers(2))
	p.Resize(32, 16)

	if p.Width() != 32 || p.Height() != 16 {
		t.Fatalf("size = %dx%d, want 32x16", p.Width(), p.Height())
	}
	if err := p.RenderFrame(testCamera(), nil, nil); err != nil {
		t.Fatalf("RenderFrame after resize: %v", err)
	}
	img := p.Image()
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 16 {
		t.Errorf("image bounds = %v, want 32x16", img.Bounds())
	}
}

func withinOne(got, want uint8) bool {
	diff := int(got) - int(want)
	if diff < 0 {
		diff = -diff
	}
	return diff <= 1
}
