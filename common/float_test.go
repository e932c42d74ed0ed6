package common

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name       string
		v, lo, hi  float32
		want       float32
	}{
		{"inside", 0.5, 0, 1, 0.5},
		{"below", -2, 0, 1, 0},
		{"above", 7, 0, 1, 1},
		{"at lower bound", 0, 0, 1, 0},
		{"at upper bound", 1, 0, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
				t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestApproxEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b float32
		want bool
	}{
		{"identical", 1.0, 1.0, true},
		{"within one ulp of 1", 1.0, 1.0 - Epsilon/2, true},
		{"two epsilon apart", 1.0, 1.0 - 2*Epsilon, false},
		{"far apart", 1.0, 0.5, false},
		{"both zero", 0, 0, true},
		{"zero vs tiny", 0, 1e-8, false},
		{"large identical", 3e3, 3e3, true},
		{"negative identical", -1.0, -1.0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApproxEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("ApproxEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestIsSaturated(t *testing.T) {
	tests := []struct {
		name string
		v    float32
		want bool
	}{
		{"zero", 0, false},
		{"one", 1, false},
		{"weight ceiling", 3e3, false},
		{"max float32", math.MaxFloat32, false},
		{"positive infinity", float32(math.Inf(1)), true},
		{"negative infinity", float32(math.Inf(-1)), true},
		{"NaN stays finite", float32(math.NaN()), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSaturated(tt.v); got != tt.want {
				t.Errorf("IsSaturated(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

// Repeated doubling must eventually trip the saturation predicate, the way
// unchecked additive accumulation would.
func TestIsSaturatedAfterOverflow(t *testing.T) {
	v := float32(1)
	for i := 0; i < 256 && !IsSaturated(v); i++ {
		v *= 2
	}
	if !IsSaturated(v) {
		t.Fatalf("doubling never saturated, ended at %v", v)
	}
}
