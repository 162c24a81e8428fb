// Package segment splits a triangle soup into regions with a weighted k-means
// over triangle centroids.
package segment

import (
	"math"
	"time"

	"github.com/osuushi/jigsaw/internal/dbg"
	"github.com/osuushi/jigsaw/internal/geom"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/sampleuv"
)

type Variant int

const (
	// Seeds are sampled by triangle area, and clusters pay a penalty for the
	// area they have already claimed in the current round
	AreaBalanced Variant = iota
	// Seeds are picked uniformly, and clusters prefer triangles facing the same
	// way as their members
	NormalAware
)

func (v Variant) String() string {
	switch v {
	case AreaBalanced:
		return "area-balanced"
	case NormalAware:
		return "normal-aware"
	}
	return "unknown"
}

// Per triangle data. All three slices are indexed by triangle.
type Input struct {
	Centroids []geom.Point3
	Normals   []geom.Point3
	Areas     []float64
}

func (in Input) Len() int {
	return len(in.Centroids)
}

func FromMesh(points []geom.Point3, triangles []geom.Triangle) Input {
	in := Input{
		Centroids: make([]geom.Point3, len(triangles)),
		Normals:   make([]geom.Point3, len(triangles)),
		Areas:     make([]float64, len(triangles)),
	}
	for i, tri := range triangles {
		a, b, c := points[tri[0]], points[tri[1]], points[tri[2]]
		in.Centroids[i] = a.Add(b).Add(c).Mul(1.0 / 3)
		in.Normals[i] = geom.TriangleNormal(a, b, c)
		in.Areas[i] = geom.TriangleArea(a, b, c)
	}
	return in
}

type Options struct {
	Variant Variant
	// Upper bound on refinement rounds
	Rounds int
	// End early once a round changes no assignment
	StopWhenStable bool
	// Clusters with less than this fraction of the total area are folded into
	// the largest cluster
	MinAreaFraction float64
	// AreaBalanced cost per unit of area the cluster has claimed this round
	SizePenalty float64
	// NormalAware cost of a half turn between a triangle and a cluster
	NormalWeight float64
	// Seeding randomness. Nil seeds from the clock.
	Source rand.Source
}

func DefaultOptions() Options {
	return Options{
		Variant:         AreaBalanced,
		Rounds:          10,
		StopWhenStable:  true,
		MinAreaFraction: 0.05,
		SizePenalty:     0.1,
		NormalWeight:    1,
	}
}

type Cluster struct {
	Centroid geom.Point3
	// Normalized area weighted mean normal of the members
	Direction geom.Point3
	Area      float64

	start, end int
}

// The result of segmentation. Every triangle belongs to exactly one cluster.
type Partition struct {
	// Cluster index of each triangle
	Assignment []int
	Clusters   []Cluster
	members    []int
}

// Triangle indices of cluster c, in increasing order.
func (p *Partition) Members(c int) []int {
	cluster := p.Clusters[c]
	return p.members[cluster.start:cluster.end]
}

// Working state of one segmentation call
type segmenter struct {
	input      Input
	opts       Options
	rng        *rand.Rand
	assignment []int
	centroids  []geom.Point3
	directions []geom.Point3
	areas      []float64
}

// Partition the triangles into at most targetCount regions. The error wraps
// geom.ErrDegenerateInput when there is nothing to partition or the input
// slices disagree in length.
func Segment(input Input, targetCount int, opts Options) (*Partition, error) {
	n := input.Len()
	if n == 0 {
		return nil, errors.Wrap(geom.ErrDegenerateInput, "no triangles to segment")
	}
	if targetCount <= 0 {
		return nil, errors.Wrapf(geom.ErrDegenerateInput, "target cluster count %d", targetCount)
	}
	if len(input.Areas) != n || len(input.Normals) != n {
		return nil, errors.Wrapf(geom.ErrDegenerateInput,
			"%d centroids, %d normals, %d areas", n, len(input.Normals), len(input.Areas))
	}
	if opts.Source == nil {
		opts.Source = rand.NewSource(uint64(time.Now().UnixNano()))
	}

	s := &segmenter{
		input:      input,
		opts:       opts,
		rng:        rand.New(opts.Source),
		assignment: make([]int, n),
	}
	for i := range s.assignment {
		s.assignment[i] = -1
	}
	s.seed(min(targetCount, n))

	for round := 0; round < opts.Rounds; round++ {
		changed := s.round()
		dbg.Logger().Debug("segment: round", "round", round, "changed", changed, "variant", opts.Variant)
		if changed == 0 && opts.StopWhenStable {
			break
		}
	}
	// Zero rounds still has to assign every triangle somewhere
	if opts.Rounds <= 0 {
		s.round()
	}

	total := floats.Sum(input.Areas)
	s.redistribute(opts.MinAreaFraction * total)
	return s.partition(), nil
}

func (s *segmenter) seed(k int) {
	n := s.input.Len()
	var seeds []int
	if s.opts.Variant == AreaBalanced {
		weighted := sampleuv.NewWeighted(s.input.Areas, s.opts.Source)
		for len(seeds) < k {
			i, ok := weighted.Take()
			if !ok {
				// Only zero area triangles are left
				break
			}
			seeds = append(seeds, i)
		}
	}
	if len(seeds) < k {
		taken := make(geom.IndexSet, len(seeds))
		for _, i := range seeds {
			taken.Add(i)
		}
		for _, i := range s.rng.Perm(n) {
			if len(seeds) == k {
				break
			}
			if !taken.Contains(i) {
				seeds = append(seeds, i)
			}
		}
	}

	s.centroids = make([]geom.Point3, k)
	s.directions = make([]geom.Point3, k)
	s.areas = make([]float64, k)
	for c, i := range seeds {
		s.centroids[c] = s.input.Centroids[i]
		s.directions[c] = s.input.Normals[i]
	}
}

func (s *segmenter) cost(i, c int) float64 {
	d := s.input.Centroids[i].Distance(s.centroids[c])
	switch s.opts.Variant {
	case NormalAware:
		dot := math.Max(-1, math.Min(1, s.input.Normals[i].Dot(s.directions[c])))
		return d + s.opts.NormalWeight*math.Acos(dot)/math.Pi
	default:
		return d + s.opts.SizePenalty*s.areas[c]
	}
}

// One assignment pass followed by a centroid update. Returns the number of
// triangles whose cluster changed.
func (s *segmenter) round() int {
	for c := range s.areas {
		s.areas[c] = 0
	}
	changed := 0
	for i := range s.assignment {
		best, bestCost := 0, math.Inf(1)
		for c := range s.centroids {
			if cost := s.cost(i, c); cost < bestCost {
				best, bestCost = c, cost
			}
		}
		if s.assignment[i] != best {
			changed++
			s.assignment[i] = best
		}
		s.areas[best] += s.input.Areas[i]
	}
	s.updateCentroids()
	return changed
}

// Centroids become the mean of their members' centroids. Empty clusters keep
// their previous centroid and direction.
func (s *segmenter) updateCentroids() {
	k := len(s.centroids)
	sums := make([]geom.Point3, k)
	normals := make([]geom.Point3, k)
	counts := make([]int, k)
	for i, c := range s.assignment {
		sums[c] = sums[c].Add(s.input.Centroids[i])
		normals[c] = normals[c].Add(s.input.Normals[i].Mul(s.input.Areas[i]))
		counts[c]++
	}
	for c := range s.centroids {
		if counts[c] == 0 {
			continue
		}
		s.centroids[c] = sums[c].Mul(1 / float64(counts[c]))
		if normals[c].Norm2() > 0 {
			s.directions[c] = normals[c].Normalize()
		}
	}
}

// Fold undersized clusters into the largest one, smallest first, until every
// remaining cluster reaches the threshold or only one is left. Folded clusters
// end up empty.
func (s *segmenter) redistribute(threshold float64) {
	k := len(s.centroids)
	areas := make([]float64, k)
	counts := make([]int, k)
	for i, c := range s.assignment {
		areas[c] += s.input.Areas[i]
		counts[c]++
	}
	alive := make([]bool, k)
	live := 0
	for c := range alive {
		alive[c] = counts[c] > 0
		if alive[c] {
			live++
		}
	}

	for live > 1 {
		smallest := -1
		for c := range areas {
			if alive[c] && (smallest == -1 || areas[c] < areas[smallest]) {
				smallest = c
			}
		}
		if areas[smallest] >= threshold {
			break
		}
		largest := -1
		for c := range areas {
			if alive[c] && c != smallest && (largest == -1 || areas[c] > areas[largest]) {
				largest = c
			}
		}

		dbg.Logger().Warn("segment: folding undersized cluster",
			"cluster", smallest, "area", areas[smallest], "into", largest, "threshold", threshold)
		for i, c := range s.assignment {
			if c == smallest {
				s.assignment[i] = largest
			}
		}
		areas[largest] += areas[smallest]
		areas[smallest] = 0
		alive[smallest] = false
		live--
	}
	s.areas = areas
}

// Renumber the non-empty clusters densely and lay their members out in one
// shared array.
func (s *segmenter) partition() *Partition {
	k := len(s.centroids)
	counts := make([]int, k)
	for _, c := range s.assignment {
		counts[c]++
	}
	renumber := make([]int, k)
	p := &Partition{
		Assignment: make([]int, len(s.assignment)),
		members:    make([]int, len(s.assignment)),
	}
	next := 0
	for c := range counts {
		renumber[c] = -1
		if counts[c] == 0 {
			continue
		}
		renumber[c] = len(p.Clusters)
		p.Clusters = append(p.Clusters, Cluster{start: next, end: next})
		next += counts[c]
	}

	sums := make([]geom.Point3, len(p.Clusters))
	normals := make([]geom.Point3, len(p.Clusters))
	for i, c := range s.assignment {
		id := renumber[c]
		cluster := &p.Clusters[id]
		p.Assignment[i] = id
		p.members[cluster.end] = i
		cluster.end++
		cluster.Area += s.input.Areas[i]
		sums[id] = sums[id].Add(s.input.Centroids[i])
		normals[id] = normals[id].Add(s.input.Normals[i].Mul(s.input.Areas[i]))
	}
	for id := range p.Clusters {
		cluster := &p.Clusters[id]
		cluster.Centroid = sums[id].Mul(1 / float64(cluster.end-cluster.start))
		if normals[id].Norm2() > 0 {
			cluster.Direction = normals[id].Normalize()
		}
	}
	return p
}
