package geom

import "math"

// PointIndex deduplicates points by distance instead of exact float equality.
// Coordinates are quantized to a grid of cell size Epsilon, and a lookup scans
// the 27 cells around the query so that two points closer than Epsilon are
// always found, even when they straddle a cell boundary.
type PointIndex struct {
	Epsilon float64
	cells   map[cellKey][]int
	points  []Point3
}

type cellKey [3]int64

func NewPointIndex(epsilon float64) *PointIndex {
	if !(epsilon > 0) {
		epsilon = DefaultEpsilon
	}
	return &PointIndex{
		Epsilon: epsilon,
		cells:   make(map[cellKey][]int),
	}
}

func (ix *PointIndex) key(p Point3) cellKey {
	return cellKey{
		int64(math.Floor(p.X / ix.Epsilon)),
		int64(math.Floor(p.Y / ix.Epsilon)),
		int64(math.Floor(p.Z / ix.Epsilon)),
	}
}

// Find the lowest index of a stored point within Epsilon of p.
func (ix *PointIndex) Find(p Point3) (int, bool) {
	center := ix.key(p)
	found := -1
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				key := cellKey{center[0] + dx, center[1] + dy, center[2] + dz}
				for _, i := range ix.cells[key] {
					if (found == -1 || i < found) && ix.points[i].Distance(p) <= ix.Epsilon {
						found = i
					}
				}
			}
		}
	}
	return found, found != -1
}

// Add p unless an equivalent point is already stored. Returns the index of the
// stored point, and whether p was newly added.
func (ix *PointIndex) Add(p Point3) (int, bool) {
	if i, ok := ix.Find(p); ok {
		return i, false
	}
	i := len(ix.points)
	ix.points = append(ix.points, p)
	key := ix.key(p)
	ix.cells[key] = append(ix.cells[key], i)
	return i, true
}

func (ix *PointIndex) Add2(p Point2) (int, bool) {
	return ix.Add(Lift(p))
}

func (ix *PointIndex) Len() int {
	return len(ix.points)
}

func (ix *PointIndex) Points() []Point3 {
	return ix.points
}

// The stored points, dropped back into the plane.
func (ix *PointIndex) Points2() []Point2 {
	result := make([]Point2, len(ix.points))
	for i, p := range ix.points {
		result[i] = Point2{X: p.X, Y: p.Y}
	}
	return result
}
