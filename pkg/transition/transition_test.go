package transition

import (
	"errors"
	"testing"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/diag"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel/polycurve"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func assertNear(t *testing.T, want, got v3.Vec, delta float64, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, 0, got.Sub(want).Length(), delta, msgAndArgs...)
}

func stack(k kernel.Kernel, radius float64, heights ...float64) []kernel.Curve {
	out := make([]kernel.Curve, len(heights))
	for i, h := range heights {
		out[i] = k.Circle(v3.Vec{Z: h}, radius, 0)
	}
	return out
}

func TestPolicies(t *testing.T) {
	assert.Equal(t, "interpolated", ClosedInterpolated.String())
	assert.Equal(t, "bezier", OpenBezier.String())
	assert.Equal(t, "ClosedTransition(7)", ClosedTransition(7).String())

	var d diag.Diagnostics
	assert.Equal(t, ClosedBezier, ParseClosed(" Bezier ", &d))
	assert.Equal(t, OpenLinear, ParseOpen("linear", &d))
	assert.Equal(t, 0, d.Len())

	assert.Equal(t, ClosedLinear, ParseClosed("spiral", &d))
	assert.Equal(t, OpenLinear, ParseOpen("interpolated", &d))
	assert.Equal(t, ClosedLinear, CheckClosed(ClosedTransition(-1), &d))
	assert.Equal(t, OpenLinear, CheckOpen(OpenTransition(9), &d))
	assert.Equal(t, ClosedInterpolated, CheckClosed(ClosedInterpolated, &d))
	assert.Equal(t, 4, d.Len())
	assert.Contains(t, d.Warnings()[0].Message, `"spiral"`)
}

func TestConnectors(t *testing.T) {
	k := polycurve.New()
	lines := []kernel.Curve{
		k.Line(v3.Vec{}, v3.Vec{X: 10}),
		k.Line(v3.Vec{Y: 5, Z: 1}, v3.Vec{X: 10, Y: 5, Z: 1}),
		k.Line(v3.Vec{Y: 10, Z: 2}, v3.Vec{X: 10, Y: 10, Z: 2}),
	}
	builders := map[string]func(kernel.Kernel, []kernel.Curve) ([]kernel.Curve, error){
		"linear": Linear,
		"arc":    OutsideArc,
		"bezier": Bezier,
	}
	for name, build := range builders {
		t.Run(name, func(t *testing.T) {
			trs, err := build(k, lines)
			require.NoError(t, err)
			require.Len(t, trs, 2)
			for i, tr := range trs {
				assertNear(t, lines[i].PointAtEnd(), tr.PointAtStart(), tol, "transition %d start", i)
				assertNear(t, lines[i+1].PointAtStart(), tr.PointAtEnd(), tol, "transition %d end", i)
			}
			none, err := build(k, lines[:1])
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}

	t.Run("arc and bezier leave along the contour", func(t *testing.T) {
		for _, build := range []func(kernel.Kernel, []kernel.Curve) ([]kernel.Curve, error){OutsideArc, Bezier} {
			trs, err := build(k, lines)
			require.NoError(t, err)
			tan := trs[0].TangentAt(trs[0].Domain().T0)
			assert.Greater(t, tan.X, 0.9)
		}
	})
}

func TestTrimFromEnds(t *testing.T) {
	k := polycurve.New()

	t.Run("closed", func(t *testing.T) {
		c := k.Circle(v3.Vec{}, 10, 0)
		trimmed, cut, err := TrimFromEnds(k, c, 4)
		require.NoError(t, err)
		require.NotNil(t, cut)
		assert.InDelta(t, c.Length()-4, trimmed.Length(), 1e-9)
		assert.InDelta(t, 4, cut.Length(), 1e-9)
		assert.False(t, trimmed.IsClosed())
		assertNear(t, trimmed.PointAtEnd(), cut.PointAtStart(), tol)
		assertNear(t, trimmed.PointAtStart(), cut.PointAtEnd(), tol)
	})

	t.Run("open", func(t *testing.T) {
		trimmed, cut, err := TrimFromEnds(k, k.Line(v3.Vec{}, v3.Vec{X: 10}), 4)
		require.NoError(t, err)
		assert.Nil(t, cut)
		assertNear(t, v3.Vec{X: 2}, trimmed.PointAtStart(), tol)
		assertNear(t, v3.Vec{X: 8}, trimmed.PointAtEnd(), tol)
	})

	t.Run("errors", func(t *testing.T) {
		c := k.Line(v3.Vec{}, v3.Vec{X: 10})
		for _, l := range []float64{0, -1} {
			_, _, err := TrimFromEnds(k, c, l)
			assert.True(t, errors.Is(err, kernel.ErrArgument), "length %v", l)
		}
		_, _, err := TrimFromEnds(k, c, 10)
		assert.True(t, errors.Is(err, kernel.ErrRange))
	})
}

func TestJoinLinearConnectivity(t *testing.T) {
	k := polycurve.New()
	contours := stack(k, 10, 0, 2, 4, 6)
	r, err := JoinClosed(k, contours, ClosedLinear, 3, 0)
	require.NoError(t, err)
	require.Len(t, r.Contours, 4)
	require.Len(t, r.Transitions, 3)
	for i, tr := range r.Transitions {
		assertNear(t, r.Contours[i].PointAtEnd(), tr.PointAtStart(), k.Tolerance(), "contour %d end", i)
		assertNear(t, r.Contours[i+1].PointAtStart(), tr.PointAtEnd(), k.Tolerance(), "contour %d start", i+1)
	}

	var total float64
	for _, c := range r.Contours {
		total += c.Length()
	}
	for _, tr := range r.Transitions {
		total += tr.Length()
	}
	assert.InDelta(t, total, r.Path.Length(), 1e-6)
	assertNear(t, r.Contours[0].PointAtStart(), r.Path.PointAtStart(), tol)
	assertNear(t, r.Contours[3].PointAtEnd(), r.Path.PointAtEnd(), tol)

	path, trs, err := JoinLinear(k, contours, 3)
	require.NoError(t, err)
	assert.Len(t, trs, 3)
	assert.InDelta(t, r.Path.Length(), path.Length(), 1e-9)
}

func TestJoinWithoutTrimming(t *testing.T) {
	k := polycurve.New()
	contours := stack(k, 5, 0, 1)
	path, trs, err := JoinLinear(k, contours, 0)
	require.NoError(t, err)
	require.Len(t, trs, 1)
	assert.InDelta(t, 1, trs[0].Length(), tol)
	assert.InDelta(t, contours[0].Length()*2+1, path.Length(), 1e-9)

	_, _, err = JoinLinear(k, contours, -1)
	assert.True(t, errors.Is(err, kernel.ErrArgument))
	_, _, err = JoinLinear(k, nil, 1)
	assert.True(t, errors.Is(err, kernel.ErrArgument))
}

func TestJoinSingleContour(t *testing.T) {
	k := polycurve.New()
	c := k.Circle(v3.Vec{}, 5, 0)
	for _, policy := range []ClosedTransition{ClosedLinear, ClosedBezier, ClosedInterpolated} {
		r, err := JoinClosed(k, []kernel.Curve{c}, policy, 2, 0.5)
		require.NoError(t, err, policy.String())
		assert.Empty(t, r.Transitions)
		assert.InDelta(t, c.Length(), r.Path.Length(), 1e-9)
	}
}

func TestJoinBezierAndArc(t *testing.T) {
	k := polycurve.New()
	contours := stack(k, 10, 0, 3, 6)

	path, trs, err := JoinBezier(k, contours, 5)
	require.NoError(t, err)
	require.Len(t, trs, 2)
	assert.Greater(t, path.Length(), 0.0)

	path, trs, err = JoinOutsideArc(k, contours, 5)
	require.NoError(t, err)
	require.Len(t, trs, 2)
	last := contours[2]
	assertNear(t, last.PointAt(last.ParameterAtLength(last.Length()-2.5)), path.PointAtEnd(), 1e-9)
}

func TestInterpolated(t *testing.T) {
	k := polycurve.New()
	contours := stack(k, 10, 0, 10)

	trimmed, trs, err := Interpolated(k, contours, 4, 0.5)
	require.NoError(t, err)
	require.Len(t, trimmed, 2)
	require.Len(t, trs, 1)

	tr := trs[0]
	assertNear(t, trimmed[0].PointAtEnd(), tr.PointAtStart(), tol)
	assertNear(t, trimmed[1].PointAtStart(), tr.PointAtEnd(), tol)

	mid := v3.Vec{X: 10, Z: 5}
	assertNear(t, mid, tr.PointAt(tr.ClosestParameter(mid)), 1e-6)

	path, _, err := JoinInterpolated(k, contours, 4, 0.5)
	require.NoError(t, err)
	assert.Greater(t, path.Length(), trimmed[0].Length()+trimmed[1].Length())

	open := []kernel.Curve{k.Line(v3.Vec{}, v3.Vec{X: 10}), k.Line(v3.Vec{Z: 1}, v3.Vec{X: 10, Z: 1})}
	_, _, err = JoinInterpolated(k, open, 4, 0.5)
	assert.True(t, errors.Is(err, kernel.ErrInvalidGeometry))

	_, _, err = Interpolated(k, contours, 4, 0)
	assert.True(t, errors.Is(err, kernel.ErrArgument))
}

func TestJoinOpen(t *testing.T) {
	k := polycurve.New()
	zigzag := []kernel.Curve{
		k.Line(v3.Vec{}, v3.Vec{X: 10}),
		k.Line(v3.Vec{X: 10, Z: 1}, v3.Vec{Z: 1}),
		k.Line(v3.Vec{Z: 2}, v3.Vec{X: 10, Z: 2}),
	}
	for _, policy := range []OpenTransition{OpenLinear, OpenBezier} {
		r, err := JoinOpen(k, zigzag, policy)
		require.NoError(t, err, policy.String())
		assert.Len(t, r.Transitions, 2)
		assertNear(t, v3.Vec{X: 10, Z: 2}, r.Path.PointAtEnd(), tol)
	}
	_, err := JoinOpen(k, zigzag, OpenTransition(5))
	assert.True(t, errors.Is(err, kernel.ErrArgument))
}
