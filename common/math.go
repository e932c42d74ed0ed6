package common

import (
	"math"
	"unsafe"
)

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in column-major order (WebGPU convention).
// Result: out = a * b
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			buf[i*4+j] = sum
		}
	}
	copy(out, buf[:])
}

// MulVec4 multiplies a 4x4 column-major matrix by a 4D vector.
//
// Parameters:
//   - m: matrix (16 elements, column-major)
//   - v: the vector to transform
//
// Returns:
//   - [4]float32: m * v
func MulVec4(m []float32, v [4]float32) [4]float32 {
	var out [4]float32
	for j := 0; j < 4; j++ {
		out[j] = m[j]*v[0] + m[4+j]*v[1] + m[8+j]*v[2] + m[12+j]*v[3]
	}
	return out
}

// Perspective creates a perspective projection matrix.
// Maps view-space depth into the WebGPU clip-space range [0, 1]; the
// accumulation stage's weight function assumes this range.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
func Perspective(out []float32, fovY, aspect, near, far float32) {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))
	Identity(out)

	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	out[15] = 0.0
}

// LookAt creates a view matrix that positions and orients the camera.
// The resulting matrix transforms world coordinates to view/camera space.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - eyeX, eyeY, eyeZ: camera position in world space
//   - centerX, centerY, centerZ: target point the camera looks at
//   - upX, upY, upZ: up vector defining camera orientation (typically 0,1,0)
func LookAt(out []float32, eyeX, eyeY, eyeZ, centerX, centerY, centerZ, upX, upY, upZ float32) {
	z0 := eyeX - centerX
	z1 := eyeY - centerY
	z2 := eyeZ - centerZ
	val := float64(z0*z0 + z1*z1 + z2*z2)
	if val == 0 {
		val = 1
	}
	invLen := 1.0 / float32(math.Sqrt(val))
	z0 *= invLen
	z1 *= invLen
	z2 *= invLen

	x0 := upY*z2 - upZ*z1
	x1 := upZ*z0 - upX*z2
	x2 := upX*z1 - upY*z0
	val = float64(x0*x0 + x1*x1 + x2*x2)
	if val == 0 {
		val = 1
	}
	invLen = 1.0 / float32(math.Sqrt(val))
	x0 *= invLen
	x1 *= invLen
	x2 *= invLen

	y0 := z1*x2 - z2*x1
	y1 := z2*x0 - z0*x2
	y2 := z0*x1 - z1*x0

	out[0], out[4], out[8], out[12] = x0, x1, x2, -(x0*eyeX + x1*eyeY + x2*eyeZ)
	out[1], out[5], out[9], out[13] = y0, y1, y2, -(y0*eyeX + y1*eyeY + y2*eyeZ)
	out[2], out[6], out[10], out[14] = z0, z1, z2, -(z0*eyeX + z1*eyeY + z2*eyeZ)
	out[3], out[7], out[11], out[15] = 0, 0, 0, 1
}

// LookBasis builds an orthonormal rotation basis whose look axis points
// from the position toward the target point. The basis is returned as
// three column vectors (right, up, look), ready to drop into the upper
// 3x3 of a column-major world matrix.
//
// Parameters:
//   - posX, posY, posZ: position the basis is anchored at
//   - targetX, targetY, targetZ: point the look axis aims at
//   - upX, upY, upZ: reference up vector (typically 0,1,0)
//
// Returns:
//   - [9]float32: the basis, columns right | up | look
func LookBasis(posX, posY, posZ, targetX, targetY, targetZ, upX, upY, upZ float32) [9]float32 {
	lx, ly, lz := normalize3(targetX-posX, targetY-posY, targetZ-posZ)
	rx, ry, rz := normalize3(upY*lz-upZ*ly, upZ*lx-upX*lz, upX*ly-upY*lx)
	if rx == 0 && ry == 0 && rz == 0 {
		// Reference up is parallel to the look axis (e.g. a ground plane
		// rotated to face straight up); fall back to +Z as the reference.
		upX, upY, upZ = 0, 0, 1
		rx, ry, rz = normalize3(upY*lz-upZ*ly, upZ*lx-upX*lz, upX*ly-upY*lx)
	}
	ux, uy, uz := normalize3(ly*rz-lz*ry, lz*rx-lx*rz, lx*ry-ly*rx)
	return [9]float32{rx, ry, rz, ux, uy, uz, lx, ly, lz}
}

// ComposeTRS builds a 4x4 column-major world matrix from a translation,
// a rotation basis, and per-axis scale. Equivalent to T * R * S.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - tx, ty, tz: translation
//   - basis: rotation basis, columns right | up | look (see LookBasis)
//   - sx, sy, sz: scale factors
func ComposeTRS(out []float32, tx, ty, tz float32, basis [9]float32, sx, sy, sz float32) {
	out[0] = basis[0] * sx
	out[1] = basis[1] * sx
	out[2] = basis[2] * sx
	out[3] = 0

	out[4] = basis[3] * sy
	out[5] = basis[4] * sy
	out[6] = basis[5] * sy
	out[7] = 0

	out[8] = basis[6] * sz
	out[9] = basis[7] * sz
	out[10] = basis[8] * sz
	out[11] = 0

	out[12] = tx
	out[13] = ty
	out[14] = tz
	out[15] = 1
}

// RotateAroundY rotates a point around the Y axis passing through a
// pivot point. Used for the arrow-key camera orbit.
//
// Parameters:
//   - px, py, pz: the point to rotate
//   - pivotX, pivotY, pivotZ: pivot the rotation axis passes through
//   - angle: rotation angle in radians
//
// Returns:
//   - x, y, z: the rotated point
func RotateAroundY(px, py, pz, pivotX, pivotY, pivotZ, angle float32) (x, y, z float32) {
	c := float32(math.Cos(float64(angle)))
	s := float32(math.Sin(float64(angle)))
	dx := px - pivotX
	dz := pz - pivotZ
	return pivotX + dx*c + dz*s, py, pivotZ - dx*s + dz*c
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

func normalize3(x, y, z float32) (float32, float32, float32) {
	val := float64(x*x + y*y + z*z)
	if val == 0 {
		return 0, 0, 0
	}
	invLen := 1.0 / float32(math.Sqrt(val))
	return x * invLen, y * invLen, z * invLen
}
