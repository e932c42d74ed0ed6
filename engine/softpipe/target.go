package softpipe

import (
	"math"
	"sync/atomic"
)

// floatPlane is a float32 render target plane with atomic read-modify-write
// blending, stored as raw float bits so compare-and-swap loops can model
// the hardware blend units: additive for the accumulation target,
// multiplicative for the revealage target.
type floatPlane struct {
	bits     []uint32
	channels int
}

func newFloatPlane(width, height, channels int) *floatPlane {
	return &floatPlane{
		bits:     make([]uint32, width*height*channels),
		channels: channels,
	}
}

// load returns the sample at the given flat index.
func (p *floatPlane) load(index int) float32 {
	return math.Float32frombits(atomic.LoadUint32(&p.bits[index]))
}

// store overwrites the sample at the given flat index.
func (p *floatPlane) store(index int, v float32) {
	atomic.StoreUint32(&p.bits[index], math.Float32bits(v))
}

// atomicAdd blends src + dst into the sample at the given flat index.
func (p *floatPlane) atomicAdd(index int, delta float32) {
	addr := &p.bits[index]
	for {
		old := atomic.LoadUint32(addr)
		updated := math.Float32bits(math.Float32frombits(old) + delta)
		if atomic.CompareAndSwapUint32(addr, old, updated) {
			return
		}
	}
}

// atomicMul blends dst * factor into the sample at the given flat index.
func (p *floatPlane) atomicMul(index int, factor float32) {
	addr := &p.bits[index]
	for {
		old := atomic.LoadUint32(addr)
		updated := math.Float32bits(math.Float32frombits(old) * factor)
		if atomic.CompareAndSwapUint32(addr, old, updated) {
			return
		}
	}
}
