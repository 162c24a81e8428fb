package delaunay

import (
	"github.com/osuushi/jigsaw/internal/dbg"
	"github.com/osuushi/jigsaw/internal/geom"
	"github.com/pkg/errors"
)

// Relax the interior points against a fixed boundary. The boundary and the
// interior are triangulated together, then each interior point moves to the
// unweighted average of its neighbors in that triangulation. This is a single
// Laplacian smoothing pass; call it again to smooth further.
//
// The boundary is never moved, and interior points that coincide with a
// boundary point stay pinned to it. If any interior point has no neighbors, the
// interior is returned unchanged along with an error wrapping
// geom.ErrEmptyNeighborhood.
func Relax(boundary, interior []geom.Point2, opts Options) ([]geom.Point2, error) {
	points := make([]geom.Point2, 0, len(boundary)+len(interior))
	points = append(points, boundary...)
	points = append(points, interior...)

	tr := Triangulate(points, opts)
	neighbors := tr.Neighbors()

	pinned := make(geom.IndexSet, len(boundary))
	for i := range boundary {
		pinned.Add(tr.VertexOf[i])
	}

	relaxed := make([]geom.Point2, len(interior))
	for i, p := range interior {
		v := tr.VertexOf[len(boundary)+i]
		if pinned.Contains(v) {
			relaxed[i] = p
			continue
		}

		ring := neighbors[v]
		if len(ring) == 0 {
			dbg.Logger().Warn("delaunay: interior point has no neighbors", "index", i, "point", p)
			unchanged := append([]geom.Point2(nil), interior...)
			return unchanged, errors.Wrapf(geom.ErrEmptyNeighborhood, "interior point %d at %v", i, p)
		}

		var sum geom.Point2
		for _, n := range ring {
			sum = sum.Add(tr.Points[n])
		}
		relaxed[i] = sum.Mul(1 / float64(len(ring)))
	}
	return relaxed, nil
}
