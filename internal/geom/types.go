package geom

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// Points are plain values. Nothing in the engines ever mutates a point it was
// given; derived positions are always written to fresh slices.
type (
	Point2 = r2.Point
	Point3 = r3.Vector
)

// A triangle or face as three indices into some point slice.
type Triangle [3]int

// Stack of indices, used for flood fills over faces and triangles.
type IndexStack []int

// Set of indices.
type IndexSet map[int]struct{}

func (s IndexSet) Add(i int) {
	s[i] = struct{}{}
}

func (s IndexSet) Contains(i int) bool {
	_, ok := s[i]
	return ok
}
