package hull

import (
	"math"

	"github.com/osuushi/jigsaw/internal/dbg"
	"github.com/osuushi/jigsaw/internal/geom"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// A planar polygon assembled from coplanar hull faces.
type Polygon struct {
	// Indices into the hull's points, counterclockwise around Normal when Closed
	Indices []int
	Points  []geom.Point3
	Normal  geom.Point3
	// False when the boundary walk failed to return to its start
	Closed bool
}

type MergeOptions struct {
	// Faces whose normals have a dot product above this are grouped together
	NormalTolerance float64
	// Maximum difference in plane offset within one group. Zero scales a small
	// tolerance with the distance of the plane from the origin.
	PlaneTolerance float64
	// Vertex deduplication distance
	Epsilon float64
	// Neighbor count for the boundary walk
	K int
}

func DefaultMergeOptions() MergeOptions {
	return MergeOptions{
		NormalTolerance: 0.999,
		Epsilon:         geom.DefaultEpsilon,
		K:               3,
	}
}

// A plane with an orthonormal basis, so points can move between 3D and plane
// coordinates. U × V = Normal, which keeps 2D counterclockwise order
// counterclockwise about Normal.
type Plane struct {
	Normal, U, V geom.Point3
	Offset       float64
}

func NewPlane(normal geom.Point3, offset float64) Plane {
	normal = normal.Normalize()
	u := normal.Ortho()
	return Plane{
		Normal: normal,
		U:      u,
		V:      normal.Cross(u),
		Offset: offset,
	}
}

func (pl Plane) Project(p geom.Point3) geom.Point2 {
	return geom.Point2{X: p.Dot(pl.U), Y: p.Dot(pl.V)}
}

func (pl Plane) Unproject(p geom.Point2) geom.Point3 {
	return pl.U.Mul(p.X).Add(pl.V.Mul(p.Y)).Add(pl.Normal.Mul(pl.Offset))
}

type faceGroup struct {
	normal geom.Point3
	offset float64
	faces  []int
}

// Merge coplanar hull faces into one polygon per planar patch. Every polygon
// is returned even when its boundary walk fails; in that case the polygon has
// Closed set to false and the returned error wraps geom.ErrUnclosedBoundary.
func MergeFaces(h *Hull, opts MergeOptions) ([]Polygon, error) {
	if opts.K == 0 {
		opts.K = 3
	}
	if opts.NormalTolerance == 0 {
		opts.NormalTolerance = DefaultMergeOptions().NormalTolerance
	}

	var groups []faceGroup
	for i, f := range h.Faces {
		if f.Normal.Norm2() == 0 {
			continue
		}
		joined := false
		for g := range groups {
			group := &groups[g]
			if f.Normal.Dot(group.normal) > opts.NormalTolerance &&
				math.Abs(f.Offset-group.offset) <= planeTolerance(opts, group.offset) {
				group.faces = append(group.faces, i)
				joined = true
				break
			}
		}
		if !joined {
			groups = append(groups, faceGroup{normal: f.Normal, offset: f.Offset, faces: []int{i}})
		}
	}

	polygons := make([]Polygon, 0, len(groups))
	unclosed := 0
	for _, group := range groups {
		poly := mergeGroup(h, group, opts)
		if !poly.Closed {
			unclosed++
			dbg.Logger().Warn("hull: coplanar group did not close",
				"faces", len(group.faces), "vertices", len(poly.Indices))
		}
		polygons = append(polygons, poly)
	}
	dbg.Logger().Debug("hull: merged faces", "faces", len(h.Faces), "polygons", len(polygons))

	if unclosed > 0 {
		return polygons, errors.Wrapf(geom.ErrUnclosedBoundary, "%d of %d coplanar groups", unclosed, len(groups))
	}
	return polygons, nil
}

func planeTolerance(opts MergeOptions, offset float64) float64 {
	if opts.PlaneTolerance > 0 {
		return opts.PlaneTolerance
	}
	return geom.Tolerance * (1 + math.Abs(offset))
}

func mergeGroup(h *Hull, group faceGroup, opts MergeOptions) Polygon {
	plane := NewPlane(group.normal, group.offset)

	// Unique boundary vertices of the group, in first-seen order
	boundary := boundaryVertices(h, group)
	index := geom.NewPointIndex(opts.Epsilon)
	var vertexOf []int
	for _, fi := range group.faces {
		for _, vi := range h.Faces[fi].Indices {
			if !boundary.Contains(vi) {
				continue
			}
			if _, added := index.Add(h.Points[vi]); added {
				vertexOf = append(vertexOf, vi)
			}
		}
	}

	projected := make([]geom.Point2, len(vertexOf))
	for i, vi := range vertexOf {
		projected[i] = plane.Project(h.Points[vi])
	}

	chain, closed := ConcaveHull(projected, opts.K)
	if closed && ringOf(projected, chain).Orientation() == orb.CW {
		for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
			chain[i], chain[j] = chain[j], chain[i]
		}
	}

	poly := Polygon{Normal: plane.Normal, Closed: closed}
	for _, c := range chain {
		poly.Indices = append(poly.Indices, vertexOf[c])
		poly.Points = append(poly.Points, plane.Unproject(projected[c]))
	}
	return poly
}

// Vertices on the outer edges of a group, meaning edges used by exactly one of
// its faces. A vertex with only shared edges lies inside the patch and would
// pull the boundary walk inward.
func boundaryVertices(h *Hull, group faceGroup) geom.IndexSet {
	uses := make(map[geom.PointEdge]int)
	ends := make(map[geom.PointEdge]geom.Edge)
	for _, fi := range group.faces {
		for _, he := range h.Faces[fi].Indices.HalfEdges() {
			key := geom.NewPointEdge(h.Points[he.From], h.Points[he.To])
			uses[key]++
			ends[key] = he.Edge()
		}
	}

	boundary := make(geom.IndexSet)
	for key, n := range uses {
		if n == 1 {
			boundary.Add(ends[key].A)
			boundary.Add(ends[key].B)
		}
	}
	return boundary
}

func ringOf(points []geom.Point2, chain []int) orb.Ring {
	ring := make(orb.Ring, 0, len(chain)+1)
	for _, c := range chain {
		ring = append(ring, orb.Point{points[c].X, points[c].Y})
	}
	if len(chain) > 0 {
		ring = append(ring, ring[0])
	}
	return ring
}
