// Package hull builds 3D convex hulls with an incremental QuickHull, and merges
// the resulting coplanar triangles back into polygons.
package hull

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/osuushi/jigsaw/internal/dbg"
	"github.com/osuushi/jigsaw/internal/geom"
	"github.com/pkg/errors"
)

type Hull struct {
	// The input points. Faces index into this.
	Points []geom.Point3
	Faces  []Face
	// Distance tolerance the hull was built with
	Epsilon float64
}

type Option func(*options)

type options struct {
	epsilon       float64
	maxIterations int
}

// Points closer to a face plane than epsilon count as on it. By default the
// tolerance scales with the magnitude of the input coordinates.
func WithEpsilon(epsilon float64) Option {
	return func(o *options) {
		o.epsilon = epsilon
	}
}

// Bound on the number of expansion steps. Each step consumes one outside
// point, so a well behaved build never needs more than the number of input
// points; the default is exactly that plus one.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

// Tolerance proportional to the largest coordinates, after the classic
// QuickHull implementation.
func defaultEpsilon(points []geom.Point3) float64 {
	var maxX, maxY, maxZ float64
	for _, p := range points {
		maxX = math.Max(maxX, math.Abs(p.X))
		maxY = math.Max(maxY, math.Abs(p.Y))
		maxZ = math.Max(maxZ, math.Abs(p.Z))
	}
	return 3 * 2.220446049250313e-16 * (maxX + maxY + maxZ)
}

type builder struct {
	points   []geom.Point3
	epsilon  float64
	faces    []workFace
	edgeFace map[geom.HalfEdge]int
	// Shared storage for every face's outside points
	arena   []int
	garbage int
	// Centroid of the initial tetrahedron. It stays inside the hull forever.
	interior geom.Point3
}

// Compute the convex hull of the points. At least 4 points are required, and
// they must not all be coplanar; otherwise the error wraps
// geom.ErrDegenerateInput.
func Compute(points []geom.Point3, opts ...Option) (*Hull, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if len(points) < 4 {
		return nil, errors.Wrapf(geom.ErrDegenerateInput, "hull needs at least 4 points, got %d", len(points))
	}
	if o.epsilon <= 0 {
		o.epsilon = defaultEpsilon(points)
	}
	if o.maxIterations <= 0 {
		o.maxIterations = len(points) + 1
	}

	b := &builder{
		points:   points,
		epsilon:  o.epsilon,
		edgeFace: make(map[geom.HalfEdge]int),
	}
	simplex, err := b.initialSimplex()
	if err != nil {
		return nil, err
	}
	b.buildSimplex(simplex)
	if err := b.expand(o.maxIterations); err != nil {
		return nil, err
	}
	return b.result(), nil
}

// Pick the initial tetrahedron: the farthest pair of points, then the point
// farthest from their line, then the point farthest from that triangle's
// plane.
func (b *builder) initialSimplex() ([4]int, error) {
	var simplex [4]int
	points := b.points

	best := -1.0
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			if d := points[i].Sub(points[j]).Norm2(); d > best {
				best = d
				simplex[0], simplex[1] = i, j
			}
		}
	}
	if math.Sqrt(best) <= b.epsilon {
		return simplex, errors.Wrap(geom.ErrDegenerateInput, "all hull points coincide")
	}

	a, c := points[simplex[0]], points[simplex[1]]
	axis := c.Sub(a)
	best = -1
	for i, p := range points {
		if d := p.Sub(a).Cross(axis).Norm(); d > best {
			best = d
			simplex[2] = i
		}
	}
	if best/axis.Norm() <= b.epsilon {
		return simplex, errors.Wrap(geom.ErrDegenerateInput, "hull points are collinear")
	}

	normal := geom.TriangleNormal(a, c, points[simplex[2]])
	best = -1
	for i, p := range points {
		if d := math.Abs(normal.Dot(p.Sub(a))); d > best {
			best = d
			simplex[3] = i
		}
	}
	if best <= b.epsilon {
		return simplex, errors.Wrap(geom.ErrDegenerateInput, "hull points are coplanar")
	}
	return simplex, nil
}

func (b *builder) buildSimplex(simplex [4]int) {
	for _, i := range simplex {
		b.interior = b.interior.Add(b.points[i])
	}
	b.interior = b.interior.Mul(0.25)

	a, c, d, e := simplex[0], simplex[1], simplex[2], simplex[3]
	faceIDs := []int{
		b.addFace(a, c, d),
		b.addFace(a, d, e),
		b.addFace(a, e, c),
		b.addFace(c, e, d),
	}

	inSimplex := make(geom.IndexSet, 4)
	for _, i := range simplex {
		inSimplex.Add(i)
	}
	candidates := make([]int, 0, len(b.points)-4)
	for i := range b.points {
		if !inSimplex.Contains(i) {
			candidates = append(candidates, i)
		}
	}
	b.distribute(candidates, faceIDs)
}

// Add a face, flipping its winding if the interior point is in front of it.
func (b *builder) addFace(i, j, k int) int {
	face := newFace(b.points, geom.Triangle{i, j, k})
	if face.Distance(b.interior) > 0 {
		face = newFace(b.points, face.Indices.Flip())
	}

	id := len(b.faces)
	b.faces = append(b.faces, workFace{Face: face, alive: true})
	for _, h := range face.Indices.HalfEdges() {
		b.edgeFace[h] = id
	}
	return id
}

func (b *builder) deleteFace(id int) {
	f := &b.faces[id]
	f.alive = false
	b.garbage += f.outsideCount()
	f.start, f.end = 0, 0
	for _, h := range f.Indices.HalfEdges() {
		if b.edgeFace[h] == id {
			delete(b.edgeFace, h)
		}
	}
}

// Hand each candidate point to the first face it is outside of. Points that
// are outside none of the faces are inside the hull and are dropped. Each
// face's points are written as one contiguous range at the end of the arena.
func (b *builder) distribute(candidates []int, faceIDs []int) {
	target := make([]int, len(candidates))
	counts := make([]int, len(faceIDs))
	for ci, p := range candidates {
		target[ci] = -1
		for fi, id := range faceIDs {
			if b.faces[id].Distance(b.points[p]) > b.epsilon {
				target[ci] = fi
				counts[fi]++
				break
			}
		}
	}

	cursor := make([]int, len(faceIDs))
	next := len(b.arena)
	for fi, id := range faceIDs {
		b.faces[id].start = next
		b.faces[id].end = next + counts[fi]
		cursor[fi] = next
		next += counts[fi]
	}
	b.arena = append(b.arena, make([]int, next-len(b.arena))...)
	for ci, fi := range target {
		if fi == -1 {
			continue
		}
		b.arena[cursor[fi]] = candidates[ci]
		cursor[fi]++
	}
}

// Rewrite the arena with only the live ranges once dead ranges dominate it.
func (b *builder) compact() {
	if b.garbage < 1024 || b.garbage*2 < len(b.arena) {
		return
	}
	arena := make([]int, 0, len(b.arena)-b.garbage)
	for id := range b.faces {
		f := &b.faces[id]
		if !f.alive {
			continue
		}
		start := len(arena)
		arena = append(arena, b.arena[f.start:f.end]...)
		f.start, f.end = start, len(arena)
	}
	b.arena = arena
	b.garbage = 0
}

func (b *builder) expand(maxIterations int) error {
	logger := dbg.Logger()
	debug := logger.Enabled(context.Background(), slog.LevelDebug)

	var pending geom.IndexStack
	for id := range b.faces {
		pending.Push(id)
	}

	iterations := 0
	for !pending.Empty() {
		id := pending.Pop()
		f := &b.faces[id]
		if !f.alive || f.outsideCount() == 0 {
			continue
		}
		iterations++
		if iterations > maxIterations {
			return errors.Wrapf(geom.ErrDegenerateInput, "hull did not converge after %d iterations", maxIterations)
		}

		// The farthest outside point is the next hull vertex
		eye := -1
		farthest := -1.0
		for _, p := range b.arena[f.start:f.end] {
			if d := f.Distance(b.points[p]); d > farthest {
				farthest = d
				eye = p
			}
		}

		visible := b.visibleFrom(id, b.points[eye])
		horizon := b.horizon(visible)

		var orphans []int
		for _, v := range visible {
			for _, p := range b.arena[b.faces[v].start:b.faces[v].end] {
				if p != eye {
					orphans = append(orphans, p)
				}
			}
			b.deleteFace(v)
		}

		newFaces := make([]int, len(horizon))
		for i, h := range horizon {
			newFaces[i] = b.addFace(h.From, h.To, eye)
		}
		b.distribute(orphans, newFaces)
		for _, nf := range newFaces {
			if b.faces[nf].outsideCount() > 0 {
				pending.Push(nf)
			}
		}
		b.compact()

		if debug {
			logger.Debug("hull: added vertex",
				"eye", eye, "visible", len(visible), "horizon", len(horizon), "orphans", len(orphans),
				"seed", b.faces[id].Face.String())
		}
	}

	logger.Debug("hull: done", "points", len(b.points), "iterations", iterations)
	return nil
}

// Faces that can see the eye, found by flooding out from the seed face across
// shared edges. Flooding keeps the visible set connected even when rounding
// makes a distant face look visible.
func (b *builder) visibleFrom(seed int, eye geom.Point3) []int {
	visited := geom.IndexSet{seed: {}}
	visible := []int{seed}
	stack := geom.IndexStack{seed}
	for !stack.Empty() {
		id := stack.Pop()
		for _, h := range b.faces[id].Indices.HalfEdges() {
			neighbor, ok := b.edgeFace[h.Twin()]
			if !ok || visited.Contains(neighbor) {
				continue
			}
			visited.Add(neighbor)
			if b.faces[neighbor].Distance(eye) > b.epsilon {
				visible = append(visible, neighbor)
				stack.Push(neighbor)
			}
		}
	}
	return visible
}

// The horizon is the set of edges that appear in exactly one visible face. The
// half edges keep the winding of their visible face, so a new face built on
// one faces outward.
func (b *builder) horizon(visible []int) []geom.HalfEdge {
	counts := make(map[geom.Edge]int, len(visible)*3)
	for _, id := range visible {
		for _, h := range b.faces[id].Indices.HalfEdges() {
			counts[h.Edge()]++
		}
	}
	var horizon []geom.HalfEdge
	for _, id := range visible {
		for _, h := range b.faces[id].Indices.HalfEdges() {
			if counts[h.Edge()] == 1 {
				horizon = append(horizon, h)
			}
		}
	}
	return horizon
}

func (b *builder) result() *Hull {
	h := &Hull{Points: b.points, Epsilon: b.epsilon}
	for _, f := range b.faces {
		if f.alive {
			h.Faces = append(h.Faces, f.Face)
		}
	}
	return h
}

// Sorted indices of the points that are hull vertices.
func (h *Hull) Vertices() []int {
	set := make(geom.IndexSet)
	for _, f := range h.Faces {
		for _, i := range f.Indices {
			set.Add(i)
		}
	}
	vertices := make([]int, 0, len(set))
	for i := range set {
		vertices = append(vertices, i)
	}
	sort.Ints(vertices)
	return vertices
}

// Whether p is inside the hull or within epsilon of its surface.
func (h *Hull) Contains(p geom.Point3, epsilon float64) bool {
	for _, f := range h.Faces {
		if f.Distance(p) > epsilon {
			return false
		}
	}
	return true
}
