package object

import (
	"encoding/binary"
	"math"
	"testing"
)

func near(a, b, tolerance float32) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}

func TestNewObjectDefaults(t *testing.T) {
	o := NewObject()

	if got := o.Color(); got != [4]float32{1, 1, 1, 1} {
		t.Errorf("Color() = %v, want opaque white", got)
	}
	world := o.WorldMatrix()
	identity := [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	if world != identity {
		t.Errorf("WorldMatrix() = %v, want identity", world)
	}
}

func TestNewObjectUniqueIDs(t *testing.T) {
	a := NewObject()
	b := NewObject()
	if a.ID() == b.ID() {
		t.Errorf("two objects share id %q", a.ID())
	}
	if a.ID() == "" {
		t.Error("empty id")
	}
}

func TestObjectBuilderOptions(t *testing.T) {
	o := NewObject(
		WithColor(1, 0, 0, 0.3),
		WithScale(8, 8, 1),
		WithTranslation(0, 1, 0),
	)

	if got := o.Color(); got != [4]float32{1, 0, 0, 0.3} {
		t.Errorf("Color() = %v, want (1, 0, 0, 0.3)", got)
	}

	world := o.WorldMatrix()
	if world[0] != 8 || world[5] != 8 || world[10] != 1 {
		t.Errorf("scale diagonal = (%v, %v, %v), want (8, 8, 1)", world[0], world[5], world[10])
	}
	if world[12] != 0 || world[13] != 1 || world[14] != 0 {
		t.Errorf("translation = (%v, %v, %v), want (0, 1, 0)", world[12], world[13], world[14])
	}
}

// Looking straight up from the origin rotates the quad's face normal from
// +Z onto +Y, which is how the ground plane is laid flat.
func TestObjectWithLookAtPoint(t *testing.T) {
	o := NewObject(WithLookAtPoint(0, 1, 0))

	world := o.WorldMatrix()
	// The look column (third basis column) must be +Y.
	if !near(world[8], 0, 1e-6) || !near(world[9], 1, 1e-6) || !near(world[10], 0, 1e-6) {
		t.Errorf("look column = (%v, %v, %v), want (0, 1, 0)", world[8], world[9], world[10])
	}
}

func TestObjectSetTranslation(t *testing.T) {
	o := NewObject(WithTranslation(1, 2, 3))
	o.SetTranslation(-2, 1, 5)

	world := o.WorldMatrix()
	if world[12] != -2 || world[13] != 1 || world[14] != 5 {
		t.Errorf("translation = (%v, %v, %v), want (-2, 1, 5)", world[12], world[13], world[14])
	}
}

func TestGPUObjectUniformMarshal(t *testing.T) {
	o := NewObject(
		WithColor(0, 0, 1, 0.3),
		WithTranslation(-2, 1, -5),
	)
	uniform := o.Uniform()

	if got := uniform.Size(); got != 80 {
		t.Fatalf("Size() = %d, want 80", got)
	}

	buf := uniform.Marshal()
	if len(buf) != 80 {
		t.Fatalf("len(Marshal()) = %d, want 80", len(buf))
	}

	// World matrix at offset 0, color at offset 64, little-endian.
	for i := range 16 {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		if got != uniform.World[i] {
			t.Fatalf("world[%d] = %v, want %v", i, got, uniform.World[i])
		}
	}
	for i := range 4 {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[64+i*4:]))
		if got != uniform.Color[i] {
			t.Fatalf("color[%d] = %v, want %v", i, got, uniform.Color[i])
		}
	}
}

func TestQuadStripVertexData(t *testing.T) {
	data := QuadStripVertexData()
	if len(data) != 48 {
		t.Fatalf("len = %d, want 48 (4 vertices * 3 floats * 4 bytes)", len(data))
	}

	// First vertex is (-1, -1, 0).
	x := math.Float32frombits(binary.LittleEndian.Uint32(data[0:]))
	y := math.Float32frombits(binary.LittleEndian.Uint32(data[4:]))
	z := math.Float32frombits(binary.LittleEndian.Uint32(data[8:]))
	if x != -1 || y != -1 || z != 0 {
		t.Errorf("first vertex = (%v, %v, %v), want (-1, -1, 0)", x, y, z)
	}
}
