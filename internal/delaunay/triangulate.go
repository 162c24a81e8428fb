// Package delaunay implements Bowyer-Watson Delaunay triangulation, and the
// Laplacian relaxation of interior points that is built on top of it.
package delaunay

import (
	"math"
	"sort"

	"github.com/golang/geo/r2"
	"github.com/osuushi/jigsaw/internal/dbg"
	"github.com/osuushi/jigsaw/internal/geom"
)

type Options struct {
	// Points closer than this are treated as one vertex.
	Epsilon float64
	// How far beyond the bounding box the supertriangle reaches, in multiples
	// of the bounding box diagonal.
	SuperTriangleScale float64
}

func DefaultOptions() Options {
	return Options{
		Epsilon:            geom.DefaultEpsilon,
		SuperTriangleScale: 2,
	}
}

// Triangulation of a deduplicated point set. Every triangle winds
// counterclockwise.
type Triangulation struct {
	Points    []geom.Point2
	Triangles []geom.Triangle
	// For each input point, the index of the vertex it was merged into.
	VertexOf []int
}

// The triangulation is built over the input points followed by the three
// supertriangle corners. The corners are stripped before returning.
type triangulator struct {
	points    []geom.Point2
	triangles []geom.Triangle
	super     [3]int
}

// Triangulate the points with the Bowyer-Watson algorithm. Points within
// opts.Epsilon of each other become a single vertex.
func Triangulate(points []geom.Point2, opts Options) *Triangulation {
	if opts.Epsilon <= 0 {
		opts.Epsilon = geom.DefaultEpsilon
	}
	if opts.SuperTriangleScale <= 0 {
		opts.SuperTriangleScale = DefaultOptions().SuperTriangleScale
	}

	ix := geom.NewPointIndex(opts.Epsilon)
	vertexOf := make([]int, len(points))
	for i, p := range points {
		vertexOf[i], _ = ix.Add2(p)
	}
	vertices := ix.Points2()
	result := &Triangulation{Points: vertices, VertexOf: vertexOf}
	if len(vertices) < 3 {
		return result
	}

	t := &triangulator{points: append([]geom.Point2(nil), vertices...)}
	t.addSuperTriangle(opts.SuperTriangleScale)
	for i := range vertices {
		t.insert(i)
	}
	result.Triangles = t.stripSuperTriangle()

	dbg.Logger().Debug("delaunay: triangulated",
		"points", len(points), "vertices", len(vertices), "triangles", len(result.Triangles))
	return result
}

// The supertriangle is the equilateral triangle around the disk centered on
// the bounding box, whose radius is half the diagonal plus scale diagonals.
func (t *triangulator) addSuperTriangle(scale float64) {
	bounds := r2.RectFromPoints(t.points...)
	center := bounds.Center()
	diagonal := bounds.Size().Norm()
	if diagonal == 0 {
		diagonal = 1
	}
	inradius := diagonal/2 + scale*diagonal

	n := len(t.points)
	for i := 0; i < 3; i++ {
		angle := math.Pi/2 + 2*math.Pi*float64(i)/3
		// The corners of an equilateral triangle are twice the inradius out
		corner := center.Add(r2.Point{X: math.Cos(angle), Y: math.Sin(angle)}.Mul(2 * inradius))
		t.points = append(t.points, corner)
	}
	t.super = [3]int{n, n + 1, n + 2}
	t.triangles = []geom.Triangle{t.newTriangle(n, n+1, n+2)}
}

// Every triangle is stored counterclockwise, so that the sign of InCircle never
// depends on the order edges were found in.
func (t *triangulator) newTriangle(a, b, c int) geom.Triangle {
	tri := geom.Triangle{a, b, c}
	if geom.Orient(t.points[a], t.points[b], t.points[c]) < 0 {
		tri = tri.Flip()
	}
	return tri
}

// A point exactly on the circumcircle is not inside. Keeping the test strict
// means cocircular points never flip back and forth.
func (t *triangulator) circumcircleContains(tri geom.Triangle, p geom.Point2) bool {
	return geom.InCircle(t.points[tri[0]], t.points[tri[1]], t.points[tri[2]], p) > 0
}

func (t *triangulator) insert(i int) {
	p := t.points[i]

	var bad []geom.Triangle
	kept := make([]geom.Triangle, 0, len(t.triangles)+2)
	for _, tri := range t.triangles {
		if t.circumcircleContains(tri, p) {
			bad = append(bad, tri)
		} else {
			kept = append(kept, tri)
		}
	}
	if len(bad) == 0 {
		geom.Fatalf("delaunay: point %d (%v) is outside every circumcircle", i, p)
	}

	// An edge is on the cavity boundary iff exactly one bad triangle has it.
	// Keep the half edges in the order they were found so that the output does
	// not depend on map iteration.
	counts := make(map[geom.Edge]int, len(bad)*3)
	var halfEdges []geom.HalfEdge
	for _, tri := range bad {
		for _, h := range tri.HalfEdges() {
			counts[h.Edge()]++
			halfEdges = append(halfEdges, h)
		}
	}

	for _, h := range halfEdges {
		if counts[h.Edge()] != 1 {
			continue
		}
		kept = append(kept, t.newTriangle(h.From, h.To, i))
	}
	t.triangles = kept
}

func (t *triangulator) stripSuperTriangle() []geom.Triangle {
	result := make([]geom.Triangle, 0, len(t.triangles))
	for _, tri := range t.triangles {
		if tri.Has(t.super[0]) || tri.Has(t.super[1]) || tri.Has(t.super[2]) {
			continue
		}
		result = append(result, tri)
	}
	return result
}

// Neighbors returns the sorted 1-ring of every vertex.
func (tr *Triangulation) Neighbors() [][]int {
	sets := make([]geom.IndexSet, len(tr.Points))
	for _, tri := range tr.Triangles {
		for _, h := range tri.HalfEdges() {
			for _, pair := range [2][2]int{{h.From, h.To}, {h.To, h.From}} {
				if sets[pair[0]] == nil {
					sets[pair[0]] = make(geom.IndexSet)
				}
				sets[pair[0]].Add(pair[1])
			}
		}
	}

	neighbors := make([][]int, len(tr.Points))
	for v, set := range sets {
		for n := range set {
			neighbors[v] = append(neighbors[v], n)
		}
		sort.Ints(neighbors[v])
	}
	return neighbors
}
