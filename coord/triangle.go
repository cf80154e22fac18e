package coord

import (
	"math"
)

const (
	// Epsilon is the max error when checking containment.
	Epsilon   = 0.001
	epsilonSq = Epsilon * Epsilon
)

type Triangle struct{ A, B, C Point }

// ContainsXY returns true if the 2D projection of the triangle
// has the point x,y, allowing for Epsilon along the edges.
func (t Triangle) ContainsXY(x, y float64) bool {
	p := Point{X: x, Y: y}
	a, b, c := t.A.flat(), t.B.flat(), t.C.flat()

	if x < math.Min(a.X, math.Min(b.X, c.X))-Epsilon || x > math.Max(a.X, math.Max(b.X, c.X))+Epsilon {
		return false
	}
	if y < math.Min(a.Y, math.Min(b.Y, c.Y))-Epsilon || y > math.Max(a.Y, math.Max(b.Y, c.Y))+Epsilon {
		return false
	}

	s1, s2, s3 := turn(a, b, p), turn(b, c, p), turn(c, a, p)
	if (s1 >= 0 && s2 >= 0 && s3 >= 0) || (s1 <= 0 && s2 <= 0 && s3 <= 0) {
		return true
	}

	return segmentDistSq(a, b, p) <= epsilonSq ||
		segmentDistSq(b, c, p) <= epsilonSq ||
		segmentDistSq(c, a, p) <= epsilonSq
}

// Plane returns the plane the triangle lies in.
func (t Triangle) Plane() (Plane, error) {
	return PlaneFrom3Points(t.A, t.B, t.C)
}

// Z will give the Z-coordinate on the plane defined by the triangle
// where it intersects x,y.
func (t Triangle) Z(x, y float64) (float64, error) {
	p, err := t.Plane()
	if err != nil {
		return 0, err
	}
	return p.Z(x, y)
}

func (p Point) flat() Point {
	p.Z = 0
	return p
}

// turn is the z component of (b-a)x(p-a); positive when p is left of a->b.
func turn(a, b, p Point) float64 {
	return b.Sub(a).Cross(p.Sub(a)).Z
}

// segmentDistSq is the squared distance from p to the segment a-b.
func segmentDistSq(a, b, p Point) float64 {
	ab := b.Sub(a)
	ap := p.Sub(a)
	l := ab.Dot(ab)
	if l == 0 {
		return ap.Dot(ap)
	}
	t := math.Max(0, math.Min(1, ap.Dot(ab)/l))
	d := ap.Sub(ab.Mul(t))
	return d.Dot(d)
}
