package object

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUObjectUniform is the GPU-aligned representation of the per-object
// uniform buffer: world matrix followed by base color. One instance per
// draw, immutable during the draw call. Matches the WGSL ObjectUniform
// struct layout exactly.
// Size: 80 bytes (std140 / WGSL aligned).
type GPUObjectUniform struct {
	World [16]float32 // offset  0: world matrix (mat4x4<f32>)
	Color [4]float32  // offset 64: base color (vec4<f32>)
}

// Size returns the size of the GPUObjectUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (80)
func (g *GPUObjectUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUObjectUniform struct into a byte buffer
// suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUObjectUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.World[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.Color[i]))
	}
	return buf
}
