package coord

import (
	"errors"
	"fmt"
	"math"
)

const (
	// CollinearEpsilon is the largest normal component still treated as zero
	// when checking three points for collinearity.
	CollinearEpsilon = 1e-8

	// VerticalEpsilon is the largest |C| for which a plane cannot be solved for Z.
	VerticalEpsilon = 1e-12
)

var (
	ErrInvalidShape = errors.New("point must have exactly 3 coordinates")
	ErrDegenerate   = errors.New("degenerate geometry")

	// ErrNoZSolution is returned for vertical planes. It wraps ErrDegenerate.
	ErrNoZSolution = fmt.Errorf("%w: plane cannot be solved for z", ErrDegenerate)
)

// Plane is the implicit surface A*x + B*y + C*z + D = 0.
//
// Planes built by PlaneFrom3Points have a unit-length normal (A,B,C).
type Plane struct{ A, B, C, D float64 }

// Tolerance controls the degeneracy checks used when fitting
// and evaluating planes.
type Tolerance struct {
	// Collinear is the threshold below which every component of the
	// (unnormalized) normal counts as zero.
	Collinear float64

	// Relative scales Collinear by the length of both edge vectors,
	// so the check does not depend on the magnitude of the input.
	Relative bool

	// Vertical is the threshold at or below which |C| counts as zero.
	Vertical float64
}

var DefaultTolerance = Tolerance{
	Collinear: CollinearEpsilon,
	Vertical:  VerticalEpsilon,
}

// PlaneFrom3Points fits a plane through p1, p2 and p3 using DefaultTolerance.
func PlaneFrom3Points(p1, p2, p3 Point) (Plane, error) {
	return DefaultTolerance.PlaneFrom3Points(p1, p2, p3)
}

// PlaneFrom3Points returns the plane through p1, p2 and p3.
//
// The normal is oriented by the right-hand rule of (p2-p1)x(p3-p1) and
// normalized to unit length. Collinear or coincident points return ErrDegenerate.
func (t Tolerance) PlaneFrom3Points(p1, p2, p3 Point) (Plane, error) {
	v1 := p2.Sub(p1)
	v2 := p3.Sub(p1)
	n := v1.Cross(v2)

	eps := t.Collinear
	if t.Relative {
		eps *= v1.Norm() * v2.Norm()
	}
	if math.Abs(n.X) <= eps && math.Abs(n.Y) <= eps && math.Abs(n.Z) <= eps {
		return Plane{}, fmt.Errorf("%w: points %s, %s, %s are collinear or coincident", ErrDegenerate, p1, p2, p3)
	}

	n = n.Div(n.Norm())
	return Plane{A: n.X, B: n.Y, C: n.Z, D: -n.Dot(p1)}, nil
}

// Normal returns (A,B,C).
func (p Plane) Normal() Point { return Point{X: p.A, Y: p.B, Z: p.C} }

// Eval returns A*x + B*y + C*z + D for pt; zero when pt lies on the plane.
func (p Plane) Eval(pt Point) float64 {
	return p.A*pt.X + p.B*pt.Y + p.C*pt.Z + p.D
}

// Z returns the height of the plane at x,y using DefaultTolerance.
func (p Plane) Z(x, y float64) (float64, error) {
	return DefaultTolerance.Z(p, x, y)
}

// Z returns the height of plane p at x,y.
func (t Tolerance) Z(p Plane, x, y float64) (float64, error) {
	if math.Abs(p.C) <= t.Vertical {
		return 0, ErrNoZSolution
	}
	return -(p.A*x + p.B*y + p.D) / p.C, nil
}

// ZDistance returns pt.Z minus the height of the plane at pt's x,y,
// using DefaultTolerance.
//
// A positive distance means pt lies above the plane.
func ZDistance(p Plane, pt Point) (float64, error) {
	return DefaultTolerance.ZDistance(p, pt)
}

// ZDistance returns pt.Z minus the height of plane p at pt's x,y.
func (t Tolerance) ZDistance(p Plane, pt Point) (float64, error) {
	z, err := t.Z(p, pt.X, pt.Y)
	if err != nil {
		return 0, err
	}
	return pt.Z - z, nil
}
