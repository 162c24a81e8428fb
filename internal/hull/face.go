package hull

import (
	"fmt"

	"github.com/logrusorgru/aurora"
	"github.com/osuushi/jigsaw/internal/dbg"
	"github.com/osuushi/jigsaw/internal/geom"
)

// A triangular hull face. Indices wind counterclockwise when seen from
// outside, so Normal points out of the hull.
type Face struct {
	Indices geom.Triangle
	Normal  geom.Point3
	// Signed distance of the face plane from the origin along Normal
	Offset float64
}

func newFace(points []geom.Point3, tri geom.Triangle) Face {
	normal := geom.TriangleNormal(points[tri[0]], points[tri[1]], points[tri[2]])
	return Face{
		Indices: tri,
		Normal:  normal,
		Offset:  normal.Dot(points[tri[0]]),
	}
}

// Signed distance from the face plane. Positive means p is outside.
func (f Face) Distance(p geom.Point3) float64 {
	return f.Normal.Dot(p) - f.Offset
}

func (f Face) String() string {
	return fmt.Sprintf("Face<%s %v>", aurora.Magenta(dbg.Name(f.Indices)), f.Indices)
}

// Working state of a face during construction. The face's outside points are
// the range [start, end) of the builder's arena, and belong to this face alone
// until it is deleted.
type workFace struct {
	Face
	alive      bool
	start, end int
}

func (f *workFace) outsideCount() int {
	return f.end - f.start
}
