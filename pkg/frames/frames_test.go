package frames

import (
	"math"
	"testing"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel/polycurve"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func assertVec(t *testing.T, want, got v3.Vec, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, tol, msgAndArgs...)
	assert.InDelta(t, want.Y, got.Y, tol, msgAndArgs...)
	assert.InDelta(t, want.Z, got.Z, tol, msgAndArgs...)
}

func TestNew(t *testing.T) {
	t.Run("horizontal tangent", func(t *testing.T) {
		f := New(v3.Vec{X: 1}, v3.Vec{X: 3}, 0.5)
		assertVec(t, v3.Vec{X: 1}, f.Tangent)
		assertVec(t, v3.Vec{Y: -1}, f.Binormal)
		assertVec(t, v3.Vec{Z: 1}, f.Normal)
		assert.Equal(t, 0.5, f.Param)
	})

	t.Run("vertical tangent", func(t *testing.T) {
		f := New(v3.Vec{}, v3.Vec{Z: 2}, 0)
		assert.InDelta(t, 1, f.Binormal.Length(), tol)
		assert.InDelta(t, 1, f.Normal.Length(), tol)
		assert.InDelta(t, 0, f.Binormal.Dot(f.Tangent), tol)
		assert.InDelta(t, 0, f.Normal.Dot(f.Tangent), tol)
	})
}

func TestInterpolate(t *testing.T) {
	a := New(v3.Vec{}, v3.Vec{X: 1}, 0)
	b := New(v3.Vec{X: 2}, v3.Vec{Y: 1}, 1)
	m := Interpolate(a, b)
	assertVec(t, v3.Vec{X: 1}, m.Origin)
	assertVec(t, v3.Vec{X: 0.5, Y: 0.5}, m.Tangent)
	assert.InDelta(t, math.Sqrt(0.5), m.Tangent.Length(), tol, "tangent must not be renormalized")
	assert.Equal(t, 0.5, m.Param)
}

func TestSortByParameter(t *testing.T) {
	in := []Frame{{Param: 3}, {Param: 1, Origin: v3.Vec{X: 1}}, {Param: 2}, {Param: 1, Origin: v3.Vec{X: 2}}}
	out := SortByParameter(in)
	require.Len(t, out, 4)
	assert.Equal(t, []float64{1, 1, 2, 3}, []float64{out[0].Param, out[1].Param, out[2].Param, out[3].Param})
	assert.Equal(t, 1.0, out[0].Origin.X, "stable order for equal parameters")
	assert.Equal(t, 3.0, in[0].Param, "input must not be modified")
}

func lineFrames(k *polycurve.Kernel, n int) ([]Frame, kernel.Curve) {
	c := k.Line(v3.Vec{}, v3.Vec{X: float64(n - 1)})
	fs := make([]Frame, n)
	for i := range fs {
		fs[i] = At(c, float64(i))
	}
	return fs, c
}

func TestReduceByCurvature(t *testing.T) {
	k := polycurve.New()

	t.Run("ends are never removed", func(t *testing.T) {
		fs, c := lineFrames(k, 30)
		for _, keep := range []int{1, 3, 5} {
			for _, threshold := range []float64{0, DefaultThreshold, 1, math.Inf(1)} {
				out := ReduceByCurvature(fs, c, keep, threshold)
				require.GreaterOrEqual(t, len(out), 2*keep)
				for i := 0; i < keep; i++ {
					assert.Equal(t, fs[i], out[i], "start frame %d removed (keep=%d)", i, keep)
					assert.Equal(t, fs[len(fs)-1-i], out[len(out)-1-i], "end frame %d removed (keep=%d)", i, keep)
				}
			}
		}
	})

	t.Run("straight run collapses to the end windows", func(t *testing.T) {
		for _, n := range []int{21, 30} {
			fs, c := lineFrames(k, n)
			out := ReduceByCurvature(fs, c, 5, DefaultThreshold)
			require.Len(t, out, 10, "%d frames", n)
			assert.Equal(t, fs[:5], out[:5])
			assert.Equal(t, fs[n-5:], out[5:])
		}
	})

	t.Run("straight run keeps neighbors of curved frames", func(t *testing.T) {
		arc, err := k.Arc(v3.Vec{X: 20}, v3.Vec{X: 1}, v3.Vec{X: 30, Y: 10})
		require.NoError(t, err)
		joined := k.Join([]kernel.Curve{k.Line(v3.Vec{}, v3.Vec{X: 20}), arc})
		require.Len(t, joined, 1)
		c := joined[0]

		fs := make([]Frame, 0, 36)
		for s := 0.0; s <= c.Length(); s++ {
			fs = append(fs, At(c, c.ParameterAtLength(s)))
		}
		out := ReduceByCurvature(fs, c, 2, DefaultThreshold)
		assert.NotContains(t, out, fs[10])
		assert.Contains(t, out, fs[19])
		for i := 21; i < len(fs); i++ {
			assert.Contains(t, out, fs[i], "arc frame %d removed", i)
		}
	})

	t.Run("zero threshold keeps everything", func(t *testing.T) {
		fs, c := lineFrames(k, 30)
		assert.Len(t, ReduceByCurvature(fs, c, 5, 0), 30)
	})

	t.Run("curved frames protect their neighbors", func(t *testing.T) {
		circle := k.Circle(v3.Vec{}, 10, 0)
		fs := make([]Frame, 40)
		for i := range fs {
			fs[i] = At(circle, circle.Domain().ParameterAt(float64(i)/40))
		}
		assert.Len(t, ReduceByCurvature(fs, circle, 5, DefaultThreshold), 40)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, ReduceByCurvature(nil, k.Line(v3.Vec{}, v3.Vec{X: 1}), 5, 1))
	})
}

func TestByDistance(t *testing.T) {
	k := polycurve.New()

	t.Run("short line keeps its end windows", func(t *testing.T) {
		fs := ByDistance(k.Line(v3.Vec{}, v3.Vec{X: 10}), 1, true, true)
		require.Len(t, fs, 10)
		assertVec(t, v3.Vec{}, fs[0].Origin)
		assertVec(t, v3.Vec{X: 4}, fs[4].Origin)
		assertVec(t, v3.Vec{X: 6}, fs[5].Origin)
		assertVec(t, v3.Vec{X: 10}, fs[9].Origin)
		for i := 1; i < len(fs); i++ {
			assert.Greater(t, fs[i].Param, fs[i-1].Param)
		}
	})

	t.Run("long straight line is reduced", func(t *testing.T) {
		fs := ByDistance(k.Line(v3.Vec{}, v3.Vec{X: 100}), 1, true, true)
		assert.Len(t, fs, 10)
	})

	t.Run("include flags", func(t *testing.T) {
		line := k.Line(v3.Vec{}, v3.Vec{X: 10})
		assert.Len(t, ByDistance(line, 2, false, true), 5)
		assert.Len(t, ByDistance(line, 2, true, false), 5)
		assert.Len(t, ByDistance(line, 2, false, false), 4)
	})

	t.Run("two frames without ends is empty", func(t *testing.T) {
		assert.Empty(t, ByDistance(k.Line(v3.Vec{}, v3.Vec{X: 1}), 5, false, false))
	})

	t.Run("zero length curve gives a single frame", func(t *testing.T) {
		p := k.Line(v3.Vec{X: 1}, v3.Vec{X: 1})
		assert.Len(t, ByDistance(p, 1, true, true), 1)
		assert.Empty(t, ByDistance(p, 1, false, false))
	})

	t.Run("count is non-increasing in spacing", func(t *testing.T) {
		curves := map[string]kernel.Curve{
			"circle": k.Circle(v3.Vec{}, 10, 0),
			"line":   k.Line(v3.Vec{}, v3.Vec{X: 200}),
		}
		for name, c := range curves {
			prev := math.MaxInt
			for d := 0.25; d <= 20; d += 0.25 {
				n := len(ByDistance(c, d, true, true))
				assert.LessOrEqual(t, n, prev, "%s: spacing %v", name, d)
				prev = n
			}
		}
	})
}

func TestByDistanceAndSegment(t *testing.T) {
	k := polycurve.New()
	sq, err := k.PolylineCurve([]v3.Vec{{}, {X: 10}, {X: 10, Y: 10}, {Y: 10}, {}})
	require.NoError(t, err)

	fs := ByDistanceAndSegment(sq, 2.5, true, true)
	require.Len(t, fs, 17)

	corner := fs[4]
	assertVec(t, v3.Vec{X: 10}, corner.Origin)
	assertVec(t, v3.Vec{X: 0.5, Y: 0.5}, corner.Tangent)

	for i := 1; i < len(fs); i++ {
		assert.GreaterOrEqual(t, fs[i].Param, fs[i-1].Param, "frame %d out of order", i)
	}

	trimmed := ByDistanceAndSegment(sq, 2.5, false, false)
	assert.Len(t, trimmed, 15)
}
