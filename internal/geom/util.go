package geom

import (
	"math"

	"github.com/golang/geo/r3"
)

const Tolerance = 1e-6

// Default cell size for point deduplication.
const DefaultEpsilon = 1e-9

// To compensate for imprecision in floats, equality is tolerance based.
func Equal(a, b float64) bool {
	return math.Abs(a-b) < Tolerance
}

// A common convention in our geometry is that if two points have the same Y
// value, the one with the smaller X value is "lower". This simulates a slightly
// rotated coordinate system, allowing us to assume Y values are never equal.
func Below(p, otherPoint Point2) bool {
	if Equal(p.Y, otherPoint.Y) {
		return p.X < otherPoint.X
	}
	return p.Y < otherPoint.Y
}

// Often we want to treat an array as a circular buffer. This gives the modular
// index given length n, but unlike the raw modulo operator, it only gives positive values
func CircularIndex(i, n int) int {
	return (i%n + n) % n
}

// Twice the signed area of the triangle abc. Positive when abc winds
// counterclockwise.
func Orient(a, b, c Point2) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// In-circle determinant. For a counterclockwise triangle abc the result is
// positive iff d lies strictly inside the circumcircle, and zero when d is on
// it. For a clockwise triangle the sign flips.
func InCircle(a, b, c, d Point2) float64 {
	adx, ady := a.X-d.X, a.Y-d.Y
	bdx, bdy := b.X-d.X, b.Y-d.Y
	cdx, cdy := c.X-d.X, c.Y-d.Y

	ad := adx*adx + ady*ady
	bd := bdx*bdx + bdy*bdy
	cd := cdx*cdx + cdy*cdy

	return ad*(bdx*cdy-cdx*bdy) -
		bd*(adx*cdy-cdx*ady) +
		cd*(adx*bdy-bdx*ady)
}

// Lexicographic total order over coordinates (x, then y, then z).
func Compare3(a, b Point3) int {
	switch {
	case a.X < b.X:
		return -1
	case a.X > b.X:
		return 1
	case a.Y < b.Y:
		return -1
	case a.Y > b.Y:
		return 1
	case a.Z < b.Z:
		return -1
	case a.Z > b.Z:
		return 1
	}
	return 0
}

// Unit normal of the triangle abc by the right hand rule. Degenerate triangles
// give the zero vector.
func TriangleNormal(a, b, c Point3) Point3 {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Norm2() == 0 {
		return r3.Vector{}
	}
	return n.Normalize()
}

func TriangleArea(a, b, c Point3) float64 {
	return b.Sub(a).Cross(c.Sub(a)).Norm() / 2
}

func Lift(p Point2) Point3 {
	return Point3{X: p.X, Y: p.Y}
}

// Distance from p to the closed segment ab.
func SegmentDistance(p, a, b Point2) float64 {
	ab := b.Sub(a)
	length2 := ab.Dot(ab)
	if length2 == 0 {
		return p.Sub(a).Norm()
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(ab)/length2))
	return p.Sub(a.Add(ab.Mul(t))).Norm()
}
