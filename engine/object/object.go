// package object provides the flat-colored drawable consumed by the
// opaque and accumulation stages: one world transform and one RGBA base
// color per instance. Whether an object is drawn through the opaque or
// the transparent path is the caller's routing decision; the stages do
// not enforce alpha values.
package object

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/wboit/common"
)

// objectCount is an atomic counter used to generate unique ids for buffer
// labels on each object instance.
var objectCount atomic.Uint64

type objectImpl struct {
	mu *sync.Mutex

	id    string
	color [4]float32

	translation [3]float32
	scale       [3]float32
	basis       [9]float32

	worldMatrix [16]float32
}

// Object defines the interface for a colored drawable. The world matrix
// and base color are immutable during a draw call.
type Object interface {
	// ID returns the object's unique identifier, used for GPU buffer labels.
	//
	// Returns:
	//   - string: the unique id
	ID() string

	// Color returns the object's RGBA base color.
	//
	// Returns:
	//   - [4]float32: the base color
	Color() [4]float32

	// WorldMatrix returns the object's 4x4 world transform as 16 floats
	// (column-major), composed translation * rotation * scale.
	//
	// Returns:
	//   - [16]float32: the world matrix
	WorldMatrix() [16]float32

	// SetTranslation moves the object to a new world position and
	// recomputes the world matrix.
	//
	// Parameters:
	//   - x, y, z: the new translation
	SetTranslation(x, y, z float32)

	// Uniform returns the object's uniform data for GPU upload.
	//
	// Returns:
	//   - GPUObjectUniform: the uniform snapshot
	Uniform() GPUObjectUniform
}

var _ Object = &objectImpl{}

// NewObject creates a colored object with the provided options applied
// over the defaults (white opaque color, unit scale, identity rotation,
// origin translation).
//
// Parameters:
//   - options: builder options to apply
//
// Returns:
//   - Object: the configured object
func NewObject(options ...ObjectBuilderOption) Object {
	o := &objectImpl{
		mu:          &sync.Mutex{},
		id:          "object-" + strconv.FormatUint(objectCount.Add(1), 10),
		color:       [4]float32{1, 1, 1, 1},
		scale:       [3]float32{1, 1, 1},
		basis:       [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1},
		translation: [3]float32{0, 0, 0},
	}
	for _, option := range options {
		option(o)
	}
	o.updateWorldMatrix()
	return o
}

func (o *objectImpl) ID() string {
	return o.id
}

func (o *objectImpl) Color() [4]float32 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.color
}

func (o *objectImpl) WorldMatrix() [16]float32 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.worldMatrix
}

func (o *objectImpl) SetTranslation(x, y, z float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.translation = [3]float32{x, y, z}
	o.updateWorldMatrix()
}

func (o *objectImpl) Uniform() GPUObjectUniform {
	o.mu.Lock()
	defer o.mu.Unlock()
	return GPUObjectUniform{
		World: o.worldMatrix,
		Color: o.color,
	}
}

// updateWorldMatrix recomposes the world matrix from translation, basis
// and scale. Callers must hold o.mu.
func (o *objectImpl) updateWorldMatrix() {
	common.ComposeTRS(o.worldMatrix[:],
		o.translation[0], o.translation[1], o.translation[2],
		o.basis,
		o.scale[0], o.scale[1], o.scale[2],
	)
}
