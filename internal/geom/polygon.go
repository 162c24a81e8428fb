package geom

import (
	"github.com/paulmach/orb"
)

type Polygon struct {
	Points []Point2
}

// Winding rule point-in-polygon. Points exactly on an edge may land on either
// side.
func (poly Polygon) ContainsPointByEvenOdd(p Point2) bool {
	return poly.CrossingCount(p)%2 == 1
}

// Crossing count helper for even odd rule. Counts the edges crossed by a ray
// from p to the right, using the lexicographic Below convention so that a ray
// through a vertex is counted exactly once.
func (poly Polygon) CrossingCount(p Point2) int {
	crossingCount := 0
	for i, vertex := range poly.Points {
		nextVertex := poly.Points[CircularIndex(i+1, len(poly.Points))]
		if Below(vertex, p) == Below(nextVertex, p) {
			continue
		}
		// A horizontal edge that straddles p means p is on the boundary
		if Equal(vertex.Y, nextVertex.Y) {
			continue
		}

		// Solve for the x value of the edge at the ray's height
		t := (p.Y - vertex.Y) / (nextVertex.Y - vertex.Y)
		x := vertex.X + t*(nextVertex.X-vertex.X)
		if x > p.X {
			crossingCount++
		}
	}
	return crossingCount
}

func (poly Polygon) Reverse() Polygon {
	newPoly := Polygon{}
	for i := len(poly.Points) - 1; i >= 0; i-- {
		newPoly.Points = append(newPoly.Points, poly.Points[i])
	}
	return newPoly
}

// Shoelace area, positive for counterclockwise polygons.
func (poly Polygon) SignedArea() float64 {
	var area float64
	for i, p := range poly.Points {
		q := poly.Points[CircularIndex(i+1, len(poly.Points))]
		area += p.X*q.Y - q.X*p.Y
	}
	return area / 2
}

func (poly Polygon) Ring() orb.Ring {
	ring := make(orb.Ring, len(poly.Points))
	for i, p := range poly.Points {
		ring[i] = orb.Point{p.X, p.Y}
	}
	return ring
}

func (poly Polygon) IsCCW() bool {
	return poly.Ring().Orientation() == orb.CCW
}

func (poly Polygon) IsCW() bool {
	return poly.Ring().Orientation() == orb.CW
}

func (poly Polygon) Bound() orb.Bound {
	return poly.Ring().Bound()
}
