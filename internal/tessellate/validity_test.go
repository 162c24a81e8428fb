package tessellate

// This contains no actual tests. It is just a helper for checking tessellation
// validity.

import (
	"math"
	"testing"

	"github.com/osuushi/jigsaw/internal/delaunay"
	"github.com/osuushi/jigsaw/internal/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to check that a tessellation is valid. The rules are:
// 1. Every triangle is counterclockwise
// 2. No triangle has zero area
// 3. Every triangle's centroid is inside the boundary
// 4. The sum of the areas of all triangles is within areaTolerance (relative)
// of the area of the boundary.
func assertValidTessellation(t *testing.T, boundary []geom.Point2, tr *delaunay.Triangulation, areaTolerance float64) {
	t.Helper()
	poly := geom.Polygon{Points: boundary}

	var triangleArea float64
	for _, tri := range tr.Triangles {
		a, b, c := tr.Points[tri[0]], tr.Points[tri[1]], tr.Points[tri[2]]
		area := geom.Orient(a, b, c) / 2
		require.Greater(t, area, 0.0, "clockwise or degenerate triangle: %v", tri)
		triangleArea += area

		centroid := a.Add(b).Add(c).Mul(1.0 / 3)
		require.True(t, poly.ContainsPointByEvenOdd(centroid), "triangle %v is outside the boundary", tri)
	}

	polygonArea := math.Abs(poly.SignedArea())
	require.InDelta(t, polygonArea, triangleArea, areaTolerance*polygonArea,
		"sum of the areas of all triangles should match the area of the boundary")
}

// Sample a grid over the boundary and count the points where the triangles and
// the boundary disagree about containment. At most maxMismatch of the samples
// may disagree.
func validateBySampling(t *testing.T, boundary []geom.Point2, tr *delaunay.Triangulation, maxMismatch float64) {
	t.Helper()
	poly := geom.Polygon{Points: boundary}
	bound := poly.Bound()

	// Pad the bounding box by 10%
	xPadding := (bound.Max[0] - bound.Min[0]) * 0.1
	yPadding := (bound.Max[1] - bound.Min[1]) * 0.1
	minX, minY := bound.Min[0]-xPadding, bound.Min[1]-yPadding
	maxX, maxY := bound.Max[0]+xPadding, bound.Max[1]+yPadding
	step := math.Max(maxX-minX, maxY-minY) / 50

	samples, mismatches := 0, 0
	for y := minY; y <= maxY; y += step {
		for x := minX; x <= maxX; x += step {
			p := geom.Point2{X: x, Y: y}
			samples++
			if poly.ContainsPointByEvenOdd(p) != trianglesContain(tr, p) {
				mismatches++
			}
		}
	}
	assert.LessOrEqual(t, float64(mismatches), maxMismatch*float64(samples),
		"%d of %d samples disagree", mismatches, samples)
}

func trianglesContain(tr *delaunay.Triangulation, p geom.Point2) bool {
	for _, tri := range tr.Triangles {
		a, b, c := tr.Points[tri[0]], tr.Points[tri[1]], tr.Points[tri[2]]
		if geom.Orient(a, b, p) >= 0 && geom.Orient(b, c, p) >= 0 && geom.Orient(c, a, p) >= 0 {
			return true
		}
	}
	return false
}
