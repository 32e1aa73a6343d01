package kernel

import (
	"errors"
	"fmt"
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// --- Polyline helper method tests ---

func TestPolylineVertexCount(t *testing.T) {
	tests := []struct {
		name   string
		points []v3.Vec
		want   int
	}{
		{"empty", nil, 0},
		{"one vertex", []v3.Vec{{X: 1, Y: 2, Z: 3}}, 1},
		{"four vertices", []v3.Vec{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPolyline(tt.points, false)
			if got := p.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
			if got := len(p.Vertices); got != 3*tt.want {
				t.Errorf("len(Vertices) = %d, want %d", got, 3*tt.want)
			}
		})
	}
}

func TestPolylineIsEmpty(t *testing.T) {
	t.Run("empty polyline", func(t *testing.T) {
		p := &Polyline{}
		if !p.IsEmpty() {
			t.Error("IsEmpty() = false for empty polyline, want true")
		}
	})
	t.Run("non-empty polyline", func(t *testing.T) {
		p := &Polyline{Vertices: []float32{1, 2, 3}}
		if p.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty polyline, want false")
		}
	})
}

func TestPolylineBoundingBox(t *testing.T) {
	p := NewPolyline([]v3.Vec{{X: -1, Y: 2, Z: 0}, {X: 3, Y: -4, Z: 5}, {X: 0, Y: 0, Z: 1}}, true)
	bb := p.BoundingBox()
	if bb.Min.X != -1 || bb.Min.Y != -4 || bb.Min.Z != 0 {
		t.Errorf("Min = %v, want (-1,-4,0)", bb.Min)
	}
	if bb.Max.X != 3 || bb.Max.Y != 2 || bb.Max.Z != 5 {
		t.Errorf("Max = %v, want (3,2,5)", bb.Max)
	}
	if !p.Closed {
		t.Error("Closed = false, want true")
	}
}

// --- Interval and Plane ---

func TestInterval(t *testing.T) {
	d := Interval{T0: 2, T1: 6}
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"length", d.Length(), 4},
		{"parameter at 0", d.ParameterAt(0), 2},
		{"parameter at 0.25", d.ParameterAt(0.25), 3},
		{"parameter at 1", d.ParameterAt(1), 6},
		{"normalized at 5", d.NormalizedParameterAt(5), 0.75},
		{"normalized on empty domain", Interval{T0: 1, T1: 1}.NormalizedParameterAt(1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.want) > 1e-12 {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if !d.Includes(6.0000001, 1e-6) {
		t.Error("Includes should accept values within tolerance of T1")
	}
	if d.Includes(1.9, 1e-6) {
		t.Error("Includes should reject values below T0")
	}
}

func TestPlaneSignedDistance(t *testing.T) {
	p := Plane{Origin: v3.Vec{Z: 10}, Normal: v3.Vec{Z: 2}}
	if got := p.SignedDistance(v3.Vec{X: 5, Y: 5, Z: 13}); math.Abs(got-3) > 1e-12 {
		t.Errorf("SignedDistance above = %v, want 3", got)
	}
	if got := p.SignedDistance(v3.Vec{Z: 4}); math.Abs(got+6) > 1e-12 {
		t.Errorf("SignedDistance below = %v, want -6", got)
	}
	if got := (Plane{}).SignedDistance(v3.Vec{Z: 4}); got != 0 {
		t.Errorf("SignedDistance with zero normal = %v, want 0", got)
	}
}

func TestErrorsWrap(t *testing.T) {
	sentinels := []error{ErrInvalidGeometry, ErrRange, ErrNoIntersection, ErrConfiguration, ErrArgument}
	for _, s := range sentinels {
		t.Run(s.Error(), func(t *testing.T) {
			err := fmt.Errorf("seam: at length 3: %w", s)
			if !errors.Is(err, s) {
				t.Errorf("errors.Is(%v, %v) = false", err, s)
			}
			for _, other := range sentinels {
				if other != s && errors.Is(err, other) {
					t.Errorf("errors.Is(%v, %v) = true, want false", err, other)
				}
			}
		})
	}
}
