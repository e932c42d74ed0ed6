package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/wboit/common"
)

func near(a, b, tolerance float32) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()

	if got := c.Eye(); got != [3]float32{0, 0, 10} {
		t.Errorf("Eye() = %v, want (0, 0, 10)", got)
	}
	if got := c.Target(); got != [3]float32{0, 0, 0} {
		t.Errorf("Target() = %v, want origin", got)
	}
	if got := c.Near(); got != 0.001 {
		t.Errorf("Near() = %v, want 0.001", got)
	}
	if got := c.Far(); got != 1000 {
		t.Errorf("Far() = %v, want 1000", got)
	}
	if got := c.Aspect(); got != 1 {
		t.Errorf("Aspect() = %v, want 1", got)
	}
}

func TestCameraBuilderOptions(t *testing.T) {
	c := NewCamera(
		WithEye(0, 3, 15),
		WithTarget(0, 1, 0),
		WithFov(math.Pi/3),
		WithAspect(16.0/9.0),
		WithNear(0.1),
		WithFar(500),
	)

	if got := c.Eye(); got != [3]float32{0, 3, 15} {
		t.Errorf("Eye() = %v, want (0, 3, 15)", got)
	}
	if got := c.Target(); got != [3]float32{0, 1, 0} {
		t.Errorf("Target() = %v, want (0, 1, 0)", got)
	}
	if !near(c.Fov(), math.Pi/3, 1e-6) {
		t.Errorf("Fov() = %v, want pi/3", c.Fov())
	}
	if got := c.Near(); got != 0.1 {
		t.Errorf("Near() = %v, want 0.1", got)
	}
	if got := c.Far(); got != 500 {
		t.Errorf("Far() = %v, want 500", got)
	}
}

// The view matrix must place the target straight ahead of the eye at the
// eye distance.
func TestCameraViewMatrix(t *testing.T) {
	c := NewCamera(WithEye(0, 0, 5), WithTarget(0, 0, 0))

	view := c.ViewMatrix()
	got := common.MulVec4(view[:], [4]float32{0, 0, 0, 1})
	want := [4]float32{0, 0, -5, 1}
	for i := range got {
		if !near(got[i], want[i], 1e-5) {
			t.Fatalf("view * target = %v, want %v", got, want)
		}
	}
}

func TestCameraSetAspect(t *testing.T) {
	c := NewCamera(WithAspect(1))
	before := c.ProjectionMatrix()

	c.SetAspect(2)
	after := c.ProjectionMatrix()

	if got := c.Aspect(); got != 2 {
		t.Errorf("Aspect() = %v, want 2", got)
	}
	if !near(after[0], before[0]/2, 1e-5) {
		t.Errorf("projection[0] = %v after aspect doubled, want %v", after[0], before[0]/2)
	}
	if after[5] != before[5] {
		t.Errorf("projection[5] changed with aspect: %v -> %v", before[5], after[5])
	}
}

// Orbiting revolves the eye around the vertical axis through the target:
// distance and height stay fixed, a full turn returns home.
func TestCameraOrbit(t *testing.T) {
	c := NewCamera(WithEye(0, 3, 15), WithTarget(0, 1, 0))

	c.Orbit(0.7)
	eye := c.Eye()
	if eye[1] != 3 {
		t.Errorf("orbit changed height: %v", eye[1])
	}
	radius := float32(math.Sqrt(float64(eye[0]*eye[0] + eye[2]*eye[2])))
	if !near(radius, 15, 1e-3) {
		t.Errorf("orbit changed radius: %v, want 15", radius)
	}

	c.Orbit(-0.7)
	eye = c.Eye()
	if !near(eye[0], 0, 1e-4) || !near(eye[2], 15, 1e-3) {
		t.Errorf("orbit round trip ended at %v, want (0, 3, 15)", eye)
	}
}

func TestGPUCameraUniformMarshal(t *testing.T) {
	c := NewCamera()
	uniform := c.Uniform()

	if got := uniform.Size(); got != 128 {
		t.Fatalf("Size() = %d, want 128", got)
	}

	buf := uniform.Marshal()
	if len(buf) != 128 {
		t.Fatalf("len(Marshal()) = %d, want 128", len(buf))
	}

	// View matrix at offset 0, projection at offset 64, little-endian.
	for i := range 16 {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		if got != uniform.View[i] {
			t.Fatalf("view[%d] = %v, want %v", i, got, uniform.View[i])
		}
		got = math.Float32frombits(binary.LittleEndian.Uint32(buf[64+i*4:]))
		if got != uniform.Projection[i] {
			t.Fatalf("projection[%d] = %v, want %v", i, got, uniform.Projection[i])
		}
	}
}
