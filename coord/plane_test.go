package coord

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaneFrom3Points(t *testing.T) {
	sets := [][3]Point{
		{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		{{-750, 1500, 0}, {750, 1500, 0}, {-750, -1500, -10}},
		{{1, 2, 3}, {-4, 5, 9}, {7, -2, 0.5}},
		{{1e4, 2e4, 3}, {1e4 + 1, 2e4, 3.5}, {1e4, 2e4 + 1, 2}},
	}

	for _, s := range sets {
		p, err := PlaneFrom3Points(s[0], s[1], s[2])
		require.NoError(t, err, "points %v", s)

		assert.InDelta(t, 1, p.Normal().Norm(), 1e-12, "unit normal for %v", s)
		for _, pt := range s {
			assert.InDelta(t, 0, p.Eval(pt), 1e-9, "point %s on plane %+v", pt, p)
		}
	}
}

func TestPlaneFrom3Points_Orientation(t *testing.T) {
	p, err := PlaneFrom3Points(Point{0, 0, 0}, Point{1, 0, 0}, Point{0, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, Plane{A: 0, B: 0, C: 1, D: 0}, p)

	p, err = PlaneFrom3Points(Point{0, 0, 0}, Point{0, 1, 0}, Point{1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, -1.0, p.C)
}

func TestPlaneFrom3Points_Degenerate(t *testing.T) {
	_, err := PlaneFrom3Points(Point{0, 0, 0}, Point{1, 0, 0}, Point{2, 0, 0})
	assert.ErrorIs(t, err, ErrDegenerate)

	_, err = PlaneFrom3Points(Point{1, 1, 1}, Point{1, 1, 1}, Point{5, 2, 0})
	assert.ErrorIs(t, err, ErrDegenerate)

	_, err = PlaneFrom3Points(Point{3, 3, 3}, Point{3, 3, 3}, Point{3, 3, 3})
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestTolerance_Relative(t *testing.T) {
	// tiny but valid triangle; its normal is far below the absolute threshold
	p1 := Point{0, 0, 0}
	p2 := Point{1e-5, 0, 0}
	p3 := Point{0, 1e-5, 0}

	_, err := PlaneFrom3Points(p1, p2, p3)
	assert.ErrorIs(t, err, ErrDegenerate)

	tol := DefaultTolerance
	tol.Relative = true
	p, err := tol.PlaneFrom3Points(p1, p2, p3)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.C)

	// still rejects genuinely collinear points
	_, err = tol.PlaneFrom3Points(p1, p2, Point{2e-5, 0, 0})
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestZDistance(t *testing.T) {
	p, err := PlaneFrom3Points(Point{-750, 1500, 0}, Point{750, 1500, 0}, Point{-750, -1500, 0})
	require.NoError(t, err)

	d, err := ZDistance(p, Point{750, -1500, 5})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, d, 1e-12)

	d, err = ZDistance(p, Point{0, 0, -2})
	require.NoError(t, err)
	assert.InDelta(t, -2.0, d, 1e-12)
}

func TestZDistance_Sloped(t *testing.T) {
	// z = x/2
	p, err := PlaneFrom3Points(Point{0, 0, 0}, Point{2, 0, 1}, Point{0, 2, 0})
	require.NoError(t, err)

	z, err := p.Z(4, 7)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, z, 1e-12)

	d, err := ZDistance(p, Point{4, 7, 3})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, d, 1e-12)
}

func TestZDistance_Vertical(t *testing.T) {
	p, err := PlaneFrom3Points(Point{0, 0, 0}, Point{0, 1, 0}, Point{0, 0, 1})
	require.NoError(t, err)

	d, err := ZDistance(p, Point{1, 1, 1})
	assert.ErrorIs(t, err, ErrNoZSolution)
	assert.ErrorIs(t, err, ErrDegenerate)
	assert.False(t, math.IsNaN(d) || math.IsInf(d, 0))
	assert.Equal(t, 0.0, d)
}

func TestPlane_Z_VerticalThreshold(t *testing.T) {
	_, err := Plane{A: 1, C: VerticalEpsilon}.Z(1, 1)
	assert.ErrorIs(t, err, ErrNoZSolution)

	_, err = Plane{A: 1, C: -VerticalEpsilon}.Z(1, 1)
	assert.ErrorIs(t, err, ErrNoZSolution)

	z, err := Plane{C: 2 * VerticalEpsilon, D: -2 * VerticalEpsilon}.Z(5, 5)
	require.NoError(t, err)
	assert.InDelta(t, 1, z, 1e-9)
}
