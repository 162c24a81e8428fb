package geom

// An unordered pair of vertex indices. NewEdge canonicalizes the pair so that
// (a, b) and (b, a) are the same map key.
type Edge struct {
	A, B int
}

func NewEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{a, b}
}

// Directed version of an edge, for half edge lookups.
type HalfEdge struct {
	From, To int
}

func (h HalfEdge) Twin() HalfEdge {
	return HalfEdge{h.To, h.From}
}

func (h HalfEdge) Edge() Edge {
	return NewEdge(h.From, h.To)
}

// An unordered pair of points, canonicalized by Compare3 so that the "lower"
// point is always first.
type PointEdge struct {
	Lower, Upper Point3
}

func NewPointEdge(a, b Point3) PointEdge {
	if Compare3(a, b) > 0 {
		return PointEdge{b, a}
	}
	return PointEdge{a, b}
}

// Edges of a triangle in winding order.
func (t Triangle) HalfEdges() [3]HalfEdge {
	return [3]HalfEdge{{t[0], t[1]}, {t[1], t[2]}, {t[2], t[0]}}
}

func (t Triangle) Has(i int) bool {
	return t[0] == i || t[1] == i || t[2] == i
}

func (t Triangle) Flip() Triangle {
	return Triangle{t[0], t[2], t[1]}
}

func (s *IndexStack) Push(i int) {
	*s = append(*s, i)
}

func (s *IndexStack) Pop() int {
	if len(*s) == 0 {
		return -1
	}
	i := (*s)[len(*s)-1]
	*s = (*s)[:len(*s)-1]
	return i
}

func (s *IndexStack) Empty() bool {
	return len(*s) == 0
}
