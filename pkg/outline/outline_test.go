package outline

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel/polycurve"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"honnef.co/go/curve"
)

func TestFromShapeCircle(t *testing.T) {
	k := polycurve.New()
	cs, err := FromShape(k, curve.Circle{Center: curve.Pt(1, 2), Radius: 10}, 3, 0.001)
	require.NoError(t, err)
	require.Len(t, cs, 1)
	c := cs[0]
	assert.True(t, c.IsClosed())
	assert.InDelta(t, 20*math.Pi, c.Length(), 0.05)
	for _, p := range c.Points() {
		assert.InDelta(t, 3, p.Z, 1e-12)
		assert.InDelta(t, 10, p.Sub(v3.Vec{X: 1, Y: 2, Z: 3}).Length(), 0.01)
	}
}

func TestShapes(t *testing.T) {
	k := polycurve.New()

	r, err := Rect(k, 0, 0, 4, 2, 1)
	require.NoError(t, err)
	assert.True(t, r.IsClosed())
	assert.InDelta(t, 12, r.Length(), 1e-9)
	assert.Len(t, r.Segments(), 4)

	rr, err := RoundedRect(k, 0, 0, 10, 10, 2, 0, 0.001)
	require.NoError(t, err)
	assert.True(t, rr.IsClosed())
	assert.InDelta(t, 40-16+4*math.Pi, rr.Length(), 0.05)

	_, err = RoundedRect(k, 0, 0, 10, 10, 6, 0, 0.001)
	assert.ErrorIs(t, err, kernel.ErrArgument)

	e, err := Ellipse(k, 0, 0, 5, 5, 0, 0, 0.001)
	require.NoError(t, err)
	assert.InDelta(t, 10*math.Pi, e.Length(), 0.05)

	_, err = Ellipse(k, 0, 0, 0, 5, 0, 0, 0.001)
	assert.ErrorIs(t, err, kernel.ErrArgument)
}

func TestFromPath(t *testing.T) {
	k := polycurve.New()
	p := curve.BezPath{
		curve.MoveTo(curve.Pt(0, 0)),
		curve.LineTo(curve.Pt(10, 0)),
		curve.LineTo(curve.Pt(10, 5)),
		curve.MoveTo(curve.Pt(20, 0)),
		curve.LineTo(curve.Pt(30, 0)),
		curve.LineTo(curve.Pt(30, 10)),
		curve.ClosePath(),
	}
	cs, err := FromPath(k, p, 2, 0)
	require.NoError(t, err)
	require.Len(t, cs, 2)
	assert.False(t, cs[0].IsClosed())
	assert.InDelta(t, 15, cs[0].Length(), 1e-9)
	assert.True(t, cs[1].IsClosed())
	assert.InDelta(t, 20+math.Sqrt(200), cs[1].Length(), 1e-9)
	assert.Equal(t, v3.Vec{X: 20, Z: 2}, cs[1].PointAtStart())

	_, err = FromPath(k, curve.BezPath{curve.MoveTo(curve.Pt(1, 1))}, 0, 0)
	assert.ErrorIs(t, err, kernel.ErrInvalidGeometry)
}

func TestSortByHeight(t *testing.T) {
	k := polycurve.New()
	cs := []kernel.Curve{
		k.Circle(v3.Vec{Z: 3}, 1, 0),
		k.Circle(v3.Vec{Z: 1}, 2, 0),
		k.Circle(v3.Vec{Z: 2}, 3, 0),
		k.Circle(v3.Vec{Z: 1}, 4, 0),
	}
	SortByHeight(cs)
	var got []float64
	for _, c := range cs {
		got = append(got, c.PointAtStart().X)
	}
	assert.Equal(t, []float64{2, 4, 3, 1}, got)
}

func TestFromDXFRejectsGarbage(t *testing.T) {
	_, err := FromDXF(polycurve.New(), strings.NewReader("not a drawing"))
	assert.Error(t, err)
}

// drawing wraps group code and value lines in an ENTITIES section.
func drawing(lines ...string) string {
	all := append([]string{"0", "SECTION", "2", "ENTITIES"}, lines...)
	all = append(all, "0", "ENDSEC", "0", "EOF")
	return strings.Join(all, "\n") + "\n"
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// polyline returns a POLYLINE entity with one VERTEX per xy pair at height z.
func polyline(closed bool, z float64, xy ...float64) []string {
	flags := "0"
	if closed {
		flags = "1"
	}
	out := []string{"0", "POLYLINE", "70", flags}
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, "0", "VERTEX", "10", num(xy[i]), "20", num(xy[i+1]), "30", num(z))
	}
	return append(out, "0", "SEQEND")
}

// lwpolyline returns an LWPOLYLINE entity at elevation z.
func lwpolyline(closed bool, z float64, xy ...float64) []string {
	flags := "0"
	if closed {
		flags = "1"
	}
	out := []string{"0", "LWPOLYLINE", "90", strconv.Itoa(len(xy) / 2), "70", flags, "38", num(z)}
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, "10", num(xy[i]), "20", num(xy[i+1]))
	}
	return out
}

func line(z float64, x0, y0, x1, y1 float64) []string {
	return []string{"0", "LINE",
		"10", num(x0), "20", num(y0), "30", num(z),
		"11", num(x1), "21", num(y1), "31", num(z)}
}

func circle(x, y, z, r float64) []string {
	return []string{"0", "CIRCLE", "10", num(x), "20", num(y), "30", num(z), "40", num(r)}
}

func readDrawing(t *testing.T, entities ...[]string) []kernel.Curve {
	t.Helper()
	var lines []string
	for _, e := range entities {
		lines = append(lines, e...)
	}
	cs, err := FromDXF(polycurve.New(), strings.NewReader(drawing(lines...)))
	require.NoError(t, err)
	return cs
}

func TestFromDXFPolylines(t *testing.T) {
	t.Run("closed flag closes without a repeated vertex", func(t *testing.T) {
		cs := readDrawing(t, polyline(true, 5, 0, 0, 10, 0, 10, 10, 0, 10))
		require.Len(t, cs, 1)
		assert.True(t, cs[0].IsClosed())
		assert.InDelta(t, 40, cs[0].Length(), 1e-9)
		assert.InDelta(t, 5, cs[0].PointAtStart().Z, 1e-12)
	})

	t.Run("closed flag with a repeated vertex adds nothing", func(t *testing.T) {
		cs := readDrawing(t, polyline(true, 0, 0, 0, 10, 0, 10, 10, 0, 10, 0, 0))
		require.Len(t, cs, 1)
		assert.True(t, cs[0].IsClosed())
		assert.InDelta(t, 40, cs[0].Length(), 1e-9)
	})

	t.Run("open polyline stays open", func(t *testing.T) {
		cs := readDrawing(t, polyline(false, 0, 0, 0, 5, 0, 5, 5))
		require.Len(t, cs, 1)
		assert.False(t, cs[0].IsClosed())
		assert.InDelta(t, 10, cs[0].Length(), 1e-9)
	})

	t.Run("closed lightweight polyline at its elevation", func(t *testing.T) {
		cs := readDrawing(t, lwpolyline(true, 10, 0, 0, 8, 0, 8, 8, 0, 8))
		require.Len(t, cs, 1)
		assert.True(t, cs[0].IsClosed())
		assert.InDelta(t, 32, cs[0].Length(), 1e-9)
		for _, p := range cs[0].Points() {
			assert.InDelta(t, 10, p.Z, 1e-12)
		}
	})

	t.Run("open lightweight polyline", func(t *testing.T) {
		cs := readDrawing(t, lwpolyline(false, 0, 0, 0, 8, 0, 8, 8))
		require.Len(t, cs, 1)
		assert.False(t, cs[0].IsClosed())
		assert.InDelta(t, 16, cs[0].Length(), 1e-9)
	})
}

func TestFromDXFJoinsLines(t *testing.T) {
	cs := readDrawing(t,
		line(2, 0, 0, 6, 0),
		line(2, 6, 0, 3, 4),
		line(2, 3, 4, 0, 0),
	)
	require.Len(t, cs, 1)
	assert.True(t, cs[0].IsClosed())
	assert.InDelta(t, 16, cs[0].Length(), 1e-9)

	cs = readDrawing(t, line(0, 0, 0, 6, 0), line(0, 20, 0, 20, 5))
	require.Len(t, cs, 2)
	assert.False(t, cs[0].IsClosed())
	assert.False(t, cs[1].IsClosed())
}

func TestFromDXFCircle(t *testing.T) {
	cs := readDrawing(t, circle(1, 2, 7, 3))
	require.Len(t, cs, 1)
	assert.True(t, cs[0].IsClosed())
	assert.InDelta(t, 6*math.Pi, cs[0].Length(), 0.05)
	assert.InDelta(t, 7, cs[0].PointAtStart().Z, 1e-12)
}

func TestFromDXFMixedSortedByHeight(t *testing.T) {
	cs := readDrawing(t,
		lwpolyline(true, 10, 0, 0, 8, 0, 8, 8, 0, 8),
		circle(0, 0, 7, 3),
		polyline(true, 5, 0, 0, 10, 0, 10, 10, 0, 10),
		line(2, 0, 0, 6, 0),
		line(2, 6, 0, 3, 4),
		line(2, 3, 4, 0, 0),
		polyline(false, 0, 0, 0, 5, 0, 5, 5),
	)
	require.Len(t, cs, 5)
	var heights []float64
	var closed []bool
	for _, c := range cs {
		heights = append(heights, c.PointAtStart().Z)
		closed = append(closed, c.IsClosed())
	}
	assert.Equal(t, []float64{0, 2, 5, 7, 10}, heights)
	assert.Equal(t, []bool{false, true, true, true, true}, closed)
}

func TestFromDXFNoContours(t *testing.T) {
	_, err := FromDXF(polycurve.New(), strings.NewReader(drawing(circle(0, 0, 0, 0)...)))
	assert.ErrorIs(t, err, kernel.ErrInvalidGeometry)
}
