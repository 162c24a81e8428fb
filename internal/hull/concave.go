package hull

import (
	"math"
	"sort"

	"github.com/osuushi/jigsaw/internal/geom"
)

// Walk the boundary of a planar point set with a k-nearest-neighbor concave
// hull. The walk starts at the leftmost (then lowest) point heading down, and
// at each step moves to whichever of the k nearest unvisited points needs the
// smallest turn without crossing the chain built so far. The start point
// becomes a candidate again once three points are placed.
//
// Returns indices into points, and whether the walk made it back to the
// start. An unclosed walk returns the partial chain. k is clamped to [3, n-1].
func ConcaveHull(points []geom.Point2, k int) ([]int, bool) {
	n := len(points)
	if n < 3 {
		chain := make([]int, n)
		for i := range chain {
			chain[i] = i
		}
		return chain, false
	}
	if n == 3 {
		if geom.Orient(points[0], points[1], points[2]) < 0 {
			return []int{0, 2, 1}, true
		}
		return []int{0, 1, 2}, true
	}
	k = max(3, min(k, n-1))

	first := 0
	for i, p := range points {
		q := points[first]
		if p.X < q.X || (p.X == q.X && p.Y < q.Y) {
			first = i
		}
	}

	visited := make([]bool, n)
	visited[first] = true
	chain := []int{first}
	current := first
	heading := geom.Point2{X: 0, Y: -1}

	for {
		candidates := nearestCandidates(points, visited, current, first, len(chain) >= 3, k)
		if len(candidates) == 0 {
			return chain, false
		}
		turns := make(map[int]float64, len(candidates))
		for _, c := range candidates {
			turns[c] = math.Abs(turnAngle(heading, points[c].Sub(points[current])))
		}
		// Candidates arrive sorted by distance, so the stable sort breaks turn
		// ties in favor of the nearer point.
		sort.SliceStable(candidates, func(i, j int) bool {
			return turns[candidates[i]] < turns[candidates[j]]
		})

		chosen := -1
		for _, c := range candidates {
			if !crossesChain(points, chain, current, c, c == first) {
				chosen = c
				break
			}
		}
		if chosen == -1 {
			return chain, false
		}
		if chosen == first {
			return chain, true
		}
		heading = points[chosen].Sub(points[current])
		visited[chosen] = true
		chain = append(chain, chosen)
		current = chosen
	}
}

// The k points nearest to current among the unvisited ones, plus the start
// point when it is allowed, ordered by distance and then index.
func nearestCandidates(points []geom.Point2, visited []bool, current, first int, allowFirst bool, k int) []int {
	var pool []int
	for i := range points {
		if i == current {
			continue
		}
		if !visited[i] || (allowFirst && i == first) {
			pool = append(pool, i)
		}
	}
	origin := points[current]
	sort.SliceStable(pool, func(i, j int) bool {
		return points[pool[i]].Sub(origin).Norm() < points[pool[j]].Sub(origin).Norm()
	})
	if len(pool) > k {
		pool = pool[:k]
	}
	return pool
}

// Signed angle from a to b in (-pi, pi].
func turnAngle(a, b geom.Point2) float64 {
	return math.Atan2(a.Cross(b), a.Dot(b))
}

// Whether the segment from current to candidate conflicts with any chain
// segment other than the ones it shares an endpoint with.
func crossesChain(points []geom.Point2, chain []int, current, candidate int, closing bool) bool {
	a, b := points[current], points[candidate]
	for i := 0; i+1 < len(chain); i++ {
		from, to := chain[i], chain[i+1]
		if from == current || to == current {
			continue
		}
		if closing && (from == candidate || to == candidate) {
			continue
		}
		if segmentsConflict(a, b, points[from], points[to]) {
			return true
		}
	}
	return false
}

// Proper crossing, or collinear overlap of positive length.
func segmentsConflict(a, b, c, d geom.Point2) bool {
	d1 := geom.Orient(c, d, a)
	d2 := geom.Orient(c, d, b)
	d3 := geom.Orient(a, b, c)
	d4 := geom.Orient(a, b, d)
	if d1*d2 < 0 && d3*d4 < 0 {
		return true
	}

	ab, cd := b.Sub(a), d.Sub(c)
	tiny := 1e-12 * math.Max(1, ab.Norm()*cd.Norm())
	if math.Abs(d1) > tiny || math.Abs(d2) > tiny || math.Abs(d3) > tiny || math.Abs(d4) > tiny {
		return false
	}

	// All four points are on one line. Compare their extents along it.
	axis := ab
	if axis.Norm() == 0 {
		axis = cd
	}
	project := func(p geom.Point2) float64 { return p.Dot(axis) }
	lo := math.Max(math.Min(project(a), project(b)), math.Min(project(c), project(d)))
	hi := math.Min(math.Max(project(a), project(b)), math.Max(project(c), project(d)))
	return hi-lo > tiny
}
