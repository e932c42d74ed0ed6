package object

import "github.com/Carmen-Shannon/wboit/common"

// QuadStripVertices is the shared unit-quad mesh in triangle-strip order:
// four corners of the [-1, 1] square in the z = 0 plane. Every object is
// an instance of this mesh under its own world transform.
var QuadStripVertices = [4][3]float32{
	{-1, -1, 0},
	{-1, 1, 0},
	{1, -1, 0},
	{1, 1, 0},
}

// QuadStripVertexData returns the quad mesh packed as little-endian float32
// bytes for GPU vertex buffer upload (stride 12, position at location 0).
//
// Returns:
//   - []byte: the packed vertex data
func QuadStripVertexData() []byte {
	flat := make([]float32, 0, 12)
	for _, v := range QuadStripVertices {
		flat = append(flat, v[0], v[1], v[2])
	}
	return common.SliceToBytes(flat)
}
