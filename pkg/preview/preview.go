// Package preview walks program objects and produces flat polylines for
// a viewport using a geometry kernel. One polyline is produced per slicer.
package preview

import (
	"fmt"
	"strings"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/program"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/slicer"
	"github.com/deadsy/sdfx/sdf"
)

// nameStack accumulates group names during traversal.
type nameStack struct {
	names []string
}

func (ns *nameStack) push(name string) {
	ns.names = append(ns.names, name)
}

func (ns *nameStack) pop() {
	if len(ns.names) > 0 {
		ns.names = ns.names[:len(ns.names)-1]
	}
}

// qualify joins the non-empty group names and name with "/".
func (ns *nameStack) qualify(name string) string {
	parts := make([]string, 0, len(ns.names)+1)
	for _, n := range ns.names {
		if n != "" {
			parts = append(parts, n)
		}
	}
	return strings.Join(append(parts, name), "/")
}

type walker struct {
	k     kernel.Kernel
	ns    nameStack
	count int
}

// Collect walks objects and produces one polyline per slicer, following
// the linearized path through the frame origins. The walk is read-only;
// every slicer must already be sliced.
func Collect(objects []program.Object, k kernel.Kernel) ([]*kernel.Polyline, error) {
	w := &walker{k: k}
	var out []*kernel.Polyline
	for i, o := range objects {
		collected, err := w.walk(o)
		if err != nil {
			return nil, fmt.Errorf("preview: object %d: %w", i, err)
		}
		out = append(out, collected...)
	}
	return out, nil
}

func (w *walker) walk(o program.Object) ([]*kernel.Polyline, error) {
	switch v := o.(type) {
	case slicer.Slicer:
		return w.handleSlicer(v)
	case program.Group:
		return w.handleGroup(v)
	default:
		// Codes, temperatures and feed rates have no geometry.
		return nil, nil
	}
}

func (w *walker) handleSlicer(s slicer.Slicer) ([]*kernel.Polyline, error) {
	idx := w.count
	w.count++
	if !s.Sliced() {
		return nil, fmt.Errorf("slicer %d has not been sliced", idx)
	}
	p, err := w.k.ToPolyline(s.LinearizedPath())
	if err != nil {
		return nil, fmt.Errorf("slicer %d: %w", idx, err)
	}

	// Prefer the slicer's name, fall back to its position.
	name := s.Name()
	if name == "" {
		name = fmt.Sprintf("slicer-%d", idx)
	}
	p.Name = w.ns.qualify(name)
	return []*kernel.Polyline{p}, nil
}

// handleGroup pushes the group name, recurses into members, then pops.
func (w *walker) handleGroup(g program.Group) ([]*kernel.Polyline, error) {
	w.ns.push(g.Name)
	defer w.ns.pop()

	var out []*kernel.Polyline
	for _, o := range g.Objects {
		collected, err := w.walk(o)
		if err != nil {
			return nil, err
		}
		out = append(out, collected...)
	}
	return out, nil
}

// Bounds returns the box enclosing every non-empty polyline.
func Bounds(polys []*kernel.Polyline) sdf.Box3 {
	var (
		bb    sdf.Box3
		first = true
	)
	for _, p := range polys {
		if p == nil || p.IsEmpty() {
			continue
		}
		b := p.BoundingBox()
		if first {
			bb, first = b, false
			continue
		}
		bb = bb.Extend(b)
	}
	return bb
}
