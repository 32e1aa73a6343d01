package engine

import (
	"fmt"
	"strings"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/program"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/slicer"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// Custom Sexp types carry Go values between builtins.

// sexpVec3 wraps a point or vector.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpCurve wraps a contour.
type sexpCurve struct {
	curve kernel.Curve
	name  string // set for named contours
}

func (c *sexpCurve) SexpString(ps *zygo.PrintState) string {
	kind := "open"
	if c.curve.IsClosed() {
		kind = "closed"
	}
	if c.name != "" {
		return fmt.Sprintf("(contour %q %s %.3f)", c.name, kind, c.curve.Length())
	}
	return fmt.Sprintf("(curve %s %.3f)", kind, c.curve.Length())
}
func (c *sexpCurve) Type() *zygo.RegisteredType { return nil }

// sexpObject wraps a program object, including slicers.
type sexpObject struct {
	obj program.Object
}

func (o *sexpObject) SexpString(ps *zygo.PrintState) string {
	switch v := o.obj.(type) {
	case slicer.Slicer:
		return fmt.Sprintf("(slicer %q %d layers)", v.Name(), v.LayerCount())
	case program.Group:
		return fmt.Sprintf("(group %q %d)", v.Name, len(v.Objects))
	case program.SingleStringer:
		return fmt.Sprintf("(code %q)", v.ToSingleString())
	}
	return fmt.Sprintf("(object %T)", o.obj)
}
func (o *sexpObject) Type() *zygo.RegisteredType { return nil }

// isKW checks if a Sexp is a preprocessed keyword string and returns the
// keyword name without prefix.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds a mixed positional and keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments. A
// keyword in last position is a flag with a nil value.
func parseArgs(args []zygo.Sexp) kwArgs {
	res := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			res.positional = append(res.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			res.kw[name] = args[i+1]
			i++
		} else {
			res.kw[name] = zygo.SexpNull
		}
	}
	return res
}

// float returns keyword key as a number, or def when absent.
func (a kwArgs) float(key string, def float64) (float64, error) {
	v, ok := a.kw[key]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

// requireFloat returns keyword key as a number and fails when absent.
func (a kwArgs) requireFloat(key string) (float64, error) {
	if _, ok := a.kw[key]; !ok {
		return 0, fmt.Errorf("missing :%s", key)
	}
	return a.float(key, 0)
}

// str returns keyword key as a string or keyword name, or def when absent.
func (a kwArgs) str(key, def string) (string, error) {
	v, ok := a.kw[key]
	if !ok {
		return def, nil
	}
	s, err := toKeywordString(v)
	if err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	return s, nil
}

// flag reports whether keyword key is present and not false.
func (a kwArgs) flag(key string) bool {
	v, ok := a.kw[key]
	if !ok {
		return false
	}
	if b, ok := v.(*zygo.SexpBool); ok {
		return b.Val
	}
	return true
}

// toFloat64 extracts a float64 from a SexpInt or SexpFloat.
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString accepts a preprocessed keyword (:bezier) or a plain
// string ("bezier") and returns the bare name.
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toCurve(s zygo.Sexp) (kernel.Curve, error) {
	if c, ok := s.(*sexpCurve); ok {
		return c.curve, nil
	}
	return nil, fmt.Errorf("expected curve, got %T (%s)", s, s.SexpString(nil))
}

func toObject(s zygo.Sexp) (program.Object, error) {
	if o, ok := s.(*sexpObject); ok {
		return o.obj, nil
	}
	return nil, fmt.Errorf("expected program object, got %T (%s)", s, s.SexpString(nil))
}

func toSlicer(s zygo.Sexp) (slicer.Slicer, error) {
	o, err := toObject(s)
	if err != nil {
		return nil, err
	}
	sl, ok := o.(slicer.Slicer)
	if !ok {
		return nil, fmt.Errorf("expected slicer, got %T", o)
	}
	return sl, nil
}

// sexpListToSlice converts a list or array to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toFloats converts a list of numbers.
func toFloats(s zygo.Sexp) ([]float64, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(items))
	for i, item := range items {
		if out[i], err = toFloat64(item); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return out, nil
}

// toCurves converts a list of curves, or a single curve.
func toCurves(s zygo.Sexp) ([]kernel.Curve, error) {
	if c, ok := s.(*sexpCurve); ok {
		return []kernel.Curve{c.curve}, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]kernel.Curve, len(items))
	for i, item := range items {
		if out[i], err = toCurve(item); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return out, nil
}

// toPoints converts positional vec3 arguments, or a single list of them.
func toPoints(args []zygo.Sexp) ([]v3.Vec, error) {
	if len(args) == 1 {
		if items, err := sexpListToSlice(args[0]); err == nil {
			args = items
		}
	}
	out := make([]v3.Vec, len(args))
	for i, a := range args {
		v, err := toVec3(a)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
