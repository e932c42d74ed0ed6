package softpipe

import (
	"github.com/Carmen-Shannon/wboit/engine/object"
	"github.com/Carmen-Shannon/wboit/engine/shading"
)

// screenVertex is one quad corner after projection and viewport mapping:
// pixel coordinates plus the depth that the depth test and the weight
// function consume.
type screenVertex struct {
	x, y  float32
	depth float32
}

// drawCommand is one object's quad, projected for the current frame.
// valid is false when any corner lands behind the near plane; such quads
// are rejected whole rather than clipped.
type drawCommand struct {
	vertices [4]screenVertex
	color    [4]float32
	valid    bool
}

// projectQuad transforms the shared quad mesh by the object's world matrix
// and the frame's view and projection, then maps NDC to pixel coordinates.
// Depth stays in the [0, 1] range the projection produces.
func projectQuad(projection, view []float32, obj object.Object, width, height int) drawCommand {
	uniform := obj.Uniform()
	cmd := drawCommand{color: uniform.Color, valid: true}

	for i, v := range object.QuadStripVertices {
		clip := shading.TransformVertex(projection, view, uniform.World[:], v)
		if clip[3] <= 0 {
			cmd.valid = false
			return cmd
		}
		invW := 1 / clip[3]
		ndcX := clip[0] * invW
		ndcY := clip[1] * invW
		ndcZ := clip[2] * invW
		cmd.vertices[i] = screenVertex{
			x:     (ndcX*0.5 + 0.5) * float32(width),
			y:     (1 - (ndcY*0.5 + 0.5)) * float32(height),
			depth: ndcZ,
		}
	}
	return cmd
}

// edge computes the signed area of the triangle (a, b, p), doubled. The
// sign says which side of edge a-b the point p lies on.
func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// fragmentFunc receives one covered pixel: its flat framebuffer index and
// the screen-space interpolated depth.
type fragmentFunc func(index int, depth float32)

// isTopLeftEdge reports whether the directed edge p -> q is a top or left
// edge of a positively oriented triangle in y-down screen coordinates: a
// horizontal edge running leftward, or any edge running downward.
func isTopLeftEdge(p, q screenVertex) bool {
	return (p.y == q.y && q.x < p.x) || q.y > p.y
}

// rasterizeTriangle walks the pixels of one triangle inside the row band
// [bandTop, bandBottom) and calls emit for each covered pixel with the
// interpolated depth. Coverage uses pixel centers with a top-left fill
// rule, so a pixel center lying exactly on an edge shared by two
// triangles is emitted by exactly one of them. No culling; negatively
// oriented triangles are flipped before the test.
func rasterizeTriangle(a, b, c screenVertex, width, bandTop, bandBottom int, emit fragmentFunc) {
	area := edge(a.x, a.y, b.x, b.y, c.x, c.y)
	if area == 0 {
		return
	}
	if area < 0 {
		b, c = c, b
		area = -area
	}

	minX := int(min3(a.x, b.x, c.x))
	maxX := int(max3(a.x, b.x, c.x)) + 1
	minY := int(min3(a.y, b.y, c.y))
	maxY := int(max3(a.y, b.y, c.y)) + 1

	if minX < 0 {
		minX = 0
	}
	if maxX > width {
		maxX = width
	}
	if minY < bandTop {
		minY = bandTop
	}
	if maxY > bandBottom {
		maxY = bandBottom
	}

	edge0Fills := isTopLeftEdge(b, c)
	edge1Fills := isTopLeftEdge(c, a)
	edge2Fills := isTopLeftEdge(a, b)

	invArea := 1 / area
	for py := minY; py < maxY; py++ {
		cy := float32(py) + 0.5
		rowBase := py * width
		for px := minX; px < maxX; px++ {
			cx := float32(px) + 0.5
			w0 := edge(b.x, b.y, c.x, c.y, cx, cy)
			w1 := edge(c.x, c.y, a.x, a.y, cx, cy)
			w2 := edge(a.x, a.y, b.x, b.y, cx, cy)
			if w0 < 0 || (w0 == 0 && !edge0Fills) {
				continue
			}
			if w1 < 0 || (w1 == 0 && !edge1Fills) {
				continue
			}
			if w2 < 0 || (w2 == 0 && !edge2Fills) {
				continue
			}
			b0 := w0 * invArea
			b1 := w1 * invArea
			b2 := w2 * invArea
			depth := b0*a.depth + b1*b.depth + b2*c.depth
			emit(rowBase+px, depth)
		}
	}
}

// rasterizeQuad splits the strip-ordered quad into its two triangles and
// rasterizes both within the band.
func rasterizeQuad(cmd drawCommand, width, bandTop, bandBottom int, emit fragmentFunc) {
	if !cmd.valid {
		return
	}
	v := cmd.vertices
	rasterizeTriangle(v[0], v[1], v[2], width, bandTop, bandBottom, emit)
	rasterizeTriangle(v[1], v[2], v[3], width, bandTop, bandBottom, emit)
}

func min3(a, b, c float32) float32 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func max3(a, b, c float32) float32 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
