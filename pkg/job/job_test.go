package job

import (
	"testing"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel/polycurve"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/program"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/slicer"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ring(k kernel.Kernel, name string, heights ...float64) *slicer.ClosedPlanar {
	return slicer.NewClosedPlanar(k, k.Circle(v3.Vec{}, 10, 0), 0, 0, 2, heights, slicer.WithName(name))
}

func TestContours(t *testing.T) {
	k := polycurve.New()
	j := New("vase")
	require.NoError(t, j.AddContour("outer", k.Circle(v3.Vec{}, 10, 0)))
	require.NoError(t, j.AddContour("inner", k.Circle(v3.Vec{}, 5, 0)))

	assert.ErrorIs(t, j.AddContour("outer", k.Circle(v3.Vec{}, 1, 0)), kernel.ErrArgument)
	assert.ErrorIs(t, j.AddContour("", k.Circle(v3.Vec{}, 1, 0)), kernel.ErrArgument)
	assert.ErrorIs(t, j.AddContour("none", nil), kernel.ErrArgument)

	assert.Equal(t, []string{"outer", "inner"}, j.ContourNames())
	assert.InDelta(t, 5, j.Contour("inner").PointAtStart().X, 1e-12)
	assert.Nil(t, j.Contour("missing"))
}

func TestWalkAndSlicers(t *testing.T) {
	k := polycurve.New()
	a, b := ring(k, "a", 0), ring(k, "b", 1)
	j := New("walk")
	j.Add(
		program.CodeLine{Code: "G28"},
		program.Group{Name: "outer", Objects: []program.Object{
			a,
			program.Group{Name: "inner", Objects: []program.Object{b}},
		}},
		nil,
	)
	assert.Len(t, j.Objects, 2)

	var paths [][]string
	j.Walk(func(o program.Object, path []string) bool {
		paths = append(paths, path)
		return true
	})
	assert.Equal(t, [][]string{nil, nil, {"outer"}, {"outer"}, {"outer", "inner"}}, paths)

	slicers := j.Slicers()
	require.Len(t, slicers, 2)
	assert.Equal(t, "a", slicers[0].Name())
	assert.Equal(t, "b", slicers[1].Name())

	visited := 0
	j.Walk(func(program.Object, []string) bool {
		visited++
		return visited < 2
	})
	assert.Equal(t, 2, visited)
}

func TestSliceAndProgram(t *testing.T) {
	k := polycurve.New()
	j := New("program")
	j.Add(program.SetTemperature{HotEnd: 200, Bed: 60}, program.FeedRate{Rate: 1500}, ring(k, "ring", 0, 1))
	require.NoError(t, j.Slice())

	lines := j.Program("3.0.0")
	assert.Contains(t, lines[1], "v3.0.0")
	assert.Contains(t, lines, "; ring")
	assert.Contains(t, lines, "; LAYER 001")
	assert.Equal(t, "M30", lines[len(lines)-1])

	bad := New("bad")
	bad.Add(slicer.NewClosedPlanar(k, k.Circle(v3.Vec{}, 1, 0), 0, 0, 100, nil))
	assert.ErrorIs(t, bad.Slice(), kernel.ErrConfiguration)
}

func TestValidate(t *testing.T) {
	k := polycurve.New()
	lim := Limits{MaxHotEnd: 250, MaxBed: 100, MaxFeedRate: 6000}

	t.Run("empty job", func(t *testing.T) {
		r := Validate(New("empty"), lim)
		require.Len(t, r.Errors, 1)
		assert.False(t, r.OK())
		assert.Equal(t, "[error] job has no program objects", r.Errors[0].Error())
	})

	t.Run("clean job", func(t *testing.T) {
		j := New("clean")
		j.Add(program.SetTemperature{HotEnd: 200, Bed: 60}, program.FeedRate{Rate: 1500}, ring(k, "ring", 0, 1))
		require.NoError(t, j.Slice())
		r := Validate(j, lim)
		assert.True(t, r.OK(), "%v", r.Errors)
		assert.Empty(t, r.Warnings)
	})

	t.Run("limits", func(t *testing.T) {
		j := New("hot")
		j.Add(program.SetTemperature{HotEnd: 300, Bed: 120}, program.FeedRate{Rate: 9000}, ring(k, "ring", 0))
		require.NoError(t, j.Slice())
		r := Validate(j, lim)
		assert.Len(t, r.Errors, 3)
		for _, e := range r.Errors {
			assert.Equal(t, SeverityError, e.Severity)
			assert.Contains(t, e.Message, "exceeds machine limit")
		}
	})

	t.Run("zero limits are not checked", func(t *testing.T) {
		j := New("free")
		j.Add(program.SetTemperature{HotEnd: 900}, program.FeedRate{Rate: 1e6}, ring(k, "ring", 0))
		require.NoError(t, j.Slice())
		assert.True(t, Validate(j, Limits{}).OK())
	})

	t.Run("warnings", func(t *testing.T) {
		j := New("warn")
		j.Add(ring(k, "ring", 0, 2, 1), ring(k, "ring", 5))
		require.NoError(t, j.Slice())
		r := Validate(j, lim)
		assert.True(t, r.OK())
		msgs := make([]string, len(r.Warnings))
		for i, w := range r.Warnings {
			msgs[i] = w.Message
			assert.Equal(t, SeverityWarning, w.Severity)
		}
		assert.Contains(t, msgs, "no temperature is set before the first slicer")
		assert.Contains(t, msgs, "no feed rate is set before the first slicer")
		assert.Contains(t, msgs, "slicer name is used more than once")
		assert.Len(t, msgs, 4)
	})

	t.Run("unsliced", func(t *testing.T) {
		j := New("lazy")
		j.Add(program.SetTemperature{HotEnd: 200}, program.FeedRate{Rate: 100}, ring(k, "", 0))
		r := Validate(j, lim)
		require.Len(t, r.Errors, 1)
		assert.Equal(t, "slicer #0", r.Errors[0].Object)
	})

	t.Run("no slicer", func(t *testing.T) {
		j := New("codes")
		j.Add(program.CodeLine{Code: "G28"})
		r := Validate(j, lim)
		assert.True(t, r.OK())
		require.Len(t, r.Warnings, 1)
		assert.Equal(t, "[warning] job has no slicer", r.Warnings[0].Error())
	})
}

func TestValidateCarriesBuildWarnings(t *testing.T) {
	j := New("noted")
	j.Diag.Warnf("closed-slicer", "unknown transition %q", "spiral")
	r := Validate(j, Limits{})
	require.Len(t, r.Warnings, 1)
	assert.Equal(t, "closed-slicer", r.Warnings[0].Object)
	require.Len(t, r.Errors, 1)
}
