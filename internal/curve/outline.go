package curve

import (
	"math"

	"github.com/osuushi/jigsaw/internal/geom"
)

// Which way an edge's midpoint is pushed.
type Bow int

const (
	// Tab bows the edge outward, away from the piece's center
	Tab Bow = iota
	// Blank bows the edge inward
	Blank
)

// Bow direction for an edge. Even edges are tabs, odd edges are blanks.
func EdgeBow(edgeIndex int) Bow {
	if edgeIndex%2 == 0 {
		return Tab
	}
	return Blank
}

// Corners of a regular polygon with numEdges sides inscribed in a circle of
// radius size, counterclockwise from angle 0.
func PolygonVertices(numEdges int, size float64) []geom.Point2 {
	vertices := make([]geom.Point2, numEdges)
	for i := range vertices {
		angle := 2 * math.Pi * float64(i) / float64(numEdges)
		vertices[i] = geom.Point2{X: size * math.Cos(angle), Y: size * math.Sin(angle)}
	}
	return vertices
}

// The displaced midpoint used as the middle control point for an edge from a to
// b of a counterclockwise polygon.
func EdgeControl(a, b geom.Point2, tabSize float64, bow Bow) geom.Point2 {
	mid := a.Add(b).Mul(0.5)
	direction := b.Sub(a)
	// For a counterclockwise polygon, the right hand normal points out
	outward := geom.Point2{X: direction.Y, Y: -direction.X}.Normalize()
	if bow == Blank {
		outward = outward.Mul(-1)
	}
	return mid.Add(outward.Mul(tabSize))
}

// Synthesize a piece outline. The numEdges corners sit evenly on a circle of
// radius size; each edge is replaced by the quadratic curve through its start,
// its midpoint pushed tabSize along the edge normal (outward for even edges,
// inward for odd ones), and its end, sampled at resolution segments.
//
// The result has numEdges*(resolution+1) points. Each edge contributes its own
// start and end sample, so the corners appear twice and the last point equals
// the first. Use OutlineRing to get a simple polygon.
//
// With a resolution of 0 or less only the corners remain, one per edge.
//
// tabSize must be small relative to the edge length, or neighboring curves
// cross each other. This is not validated.
func SynthesizeOutline(cache *BinomialCache, numEdges int, size, tabSize float64, resolution int) []geom.Point2 {
	if numEdges < 3 {
		geom.Throwf(geom.ErrDegenerateInput, "outline needs at least 3 edges, got %d", numEdges)
	}
	resolution = max(resolution, 0)
	vertices := PolygonVertices(numEdges, size)
	outline := make([]geom.Point2, 0, numEdges*(resolution+1))
	for i, a := range vertices {
		b := vertices[geom.CircularIndex(i+1, numEdges)]
		control := EdgeControl(a, b, tabSize, EdgeBow(i))
		outline = append(outline, Sample(cache, []geom.Point2{a, control, b}, resolution)...)
	}
	return outline
}

// Drop the repeated corner samples of a synthesized outline, leaving a simple
// polygon ring with no duplicate points.
func OutlineRing(outline []geom.Point2, epsilon float64) []geom.Point2 {
	ix := geom.NewPointIndex(epsilon)
	ring := make([]geom.Point2, 0, len(outline))
	for _, p := range outline {
		if _, added := ix.Add2(p); added {
			ring = append(ring, p)
		}
	}
	return ring
}
