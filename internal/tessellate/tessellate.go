// Package tessellate fills a piece boundary with triangles. It stands in for a
// general purpose polygon tessellator: the boundary and the Steiner points are
// Delaunay triangulated together, and triangles whose centroid falls outside
// the boundary are thrown away.
//
// Boundary edges are not enforced as constraints. A boundary that is sampled
// densely compared to its Steiner spacing keeps its edges in practice.
package tessellate

import (
	"math"

	"github.com/osuushi/jigsaw/internal/dbg"
	"github.com/osuushi/jigsaw/internal/delaunay"
	"github.com/osuushi/jigsaw/internal/geom"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

type Options struct {
	Delaunay delaunay.Options
}

func DefaultOptions() Options {
	return Options{Delaunay: delaunay.DefaultOptions()}
}

// Triangulate the region inside boundary, using steiner as extra interior
// vertices. The boundary may wind either way.
func Tessellate(boundary, steiner []geom.Point2, opts Options) (*delaunay.Triangulation, error) {
	if len(boundary) < 3 {
		return nil, errors.Wrapf(geom.ErrDegenerateInput, "boundary has %d points", len(boundary))
	}

	points := make([]geom.Point2, 0, len(boundary)+len(steiner))
	points = append(points, boundary...)
	points = append(points, steiner...)
	tr := delaunay.Triangulate(points, opts.Delaunay)

	poly := geom.Polygon{Points: boundary}
	kept := tr.Triangles[:0]
	for _, tri := range tr.Triangles {
		centroid := tr.Points[tri[0]].Add(tr.Points[tri[1]]).Add(tr.Points[tri[2]]).Mul(1.0 / 3)
		if poly.ContainsPointByEvenOdd(centroid) {
			kept = append(kept, tri)
		}
	}
	dbg.Logger().Debug("tessellate: filtered triangles", "kept", len(kept), "total", len(tr.Triangles))
	tr.Triangles = kept

	if len(kept) == 0 {
		return nil, errors.Wrap(geom.ErrDegenerateInput, "no triangles inside the boundary")
	}
	return tr, nil
}

// Steiner points on a square grid of the given spacing over the boundary's
// bounding box, each nudged by up to jitter*spacing on both axes. Only points
// strictly inside the boundary and at least half a spacing away from it are
// kept. A nil src disables the jitter.
func SteinerGrid(boundary []geom.Point2, spacing, jitter float64, src rand.Source) []geom.Point2 {
	if !(spacing > 0) || len(boundary) < 3 {
		return nil
	}
	var rng *rand.Rand
	if src != nil && jitter > 0 {
		rng = rand.New(src)
	}

	poly := geom.Polygon{Points: boundary}
	bound := poly.Bound()
	margin := spacing / 2

	var points []geom.Point2
	for y := bound.Min[1] + margin; y < bound.Max[1]; y += spacing {
		for x := bound.Min[0] + margin; x < bound.Max[0]; x += spacing {
			p := geom.Point2{X: x, Y: y}
			if rng != nil {
				p.X += (rng.Float64()*2 - 1) * jitter * spacing
				p.Y += (rng.Float64()*2 - 1) * jitter * spacing
			}
			if poly.ContainsPointByEvenOdd(p) && BoundaryDistance(boundary, p) >= margin {
				points = append(points, p)
			}
		}
	}
	return points
}

// Distance from p to the nearest edge of the closed boundary.
func BoundaryDistance(boundary []geom.Point2, p geom.Point2) float64 {
	distance := math.Inf(1)
	for i, a := range boundary {
		b := boundary[geom.CircularIndex(i+1, len(boundary))]
		distance = math.Min(distance, geom.SegmentDistance(p, a, b))
	}
	return distance
}
