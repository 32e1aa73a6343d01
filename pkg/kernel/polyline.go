package kernel

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Polyline is a flattened curve suitable for drawing in a viewport.
// Vertices has 3 floats per vertex (x,y,z).
type Polyline struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Closed   bool      `json:"closed"`
	Name     string    `json:"name"` // which program object this came from
}

// NewPolyline flattens points into a Polyline.
func NewPolyline(points []v3.Vec, closed bool) *Polyline {
	p := &Polyline{Vertices: make([]float32, 0, 3*len(points)), Closed: closed}
	for _, q := range points {
		p.Vertices = append(p.Vertices, float32(q.X), float32(q.Y), float32(q.Z))
	}
	return p
}

// VertexCount returns the number of vertices.
func (p *Polyline) VertexCount() int {
	return len(p.Vertices) / 3
}

// IsEmpty returns true if the polyline has no geometry.
func (p *Polyline) IsEmpty() bool {
	return len(p.Vertices) == 0
}

// BoundingBox returns the axis-aligned bounds of the vertices.
// An empty polyline returns the zero box.
func (p *Polyline) BoundingBox() sdf.Box3 {
	if p.IsEmpty() {
		return sdf.Box3{}
	}
	at := func(i int) v3.Vec {
		return v3.Vec{X: float64(p.Vertices[3*i]), Y: float64(p.Vertices[3*i+1]), Z: float64(p.Vertices[3*i+2])}
	}
	bb := sdf.Box3{Min: at(0), Max: at(0)}
	for i := 1; i < p.VertexCount(); i++ {
		q := at(i)
		bb.Min = v3.Vec{X: min(bb.Min.X, q.X), Y: min(bb.Min.Y, q.Y), Z: min(bb.Min.Z, q.Z)}
		bb.Max = v3.Vec{X: max(bb.Max.X, q.X), Y: max(bb.Max.Y, q.Y), Z: max(bb.Max.Z, q.Z)}
	}
	return bb
}
