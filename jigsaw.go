// Package jigsaw builds procedural jigsaw puzzle pieces.
//
// It is a small geometry kernel: Bezier outlines with alternating tabs and
// blanks, Delaunay relaxation of interior points, 3D convex hulls with
// coplanar face merging, and k-means segmentation of triangle soups. Everything
// consumes and produces plain data (points, index triples, partitions).
//
// Geometry failures come back as errors that wrap one of ErrDegenerateInput,
// ErrEmptyNeighborhood or ErrUnclosedBoundary.
package jigsaw

import (
	"log/slog"

	"github.com/osuushi/jigsaw/internal/curve"
	"github.com/osuushi/jigsaw/internal/dbg"
	"github.com/osuushi/jigsaw/internal/delaunay"
	"github.com/osuushi/jigsaw/internal/geom"
	"github.com/osuushi/jigsaw/internal/hull"
	"github.com/osuushi/jigsaw/internal/mesh"
	"github.com/osuushi/jigsaw/internal/segment"
	"github.com/osuushi/jigsaw/internal/tessellate"
	"github.com/pkg/errors"
)

type Point2 = geom.Point2
type Point3 = geom.Point3
type Triangle = geom.Triangle

type DelaunayOptions = delaunay.Options
type Triangulation = delaunay.Triangulation

type Hull = hull.Hull
type Face = hull.Face
type HullOption = hull.Option
type MergeOptions = hull.MergeOptions
type MergedPolygon = hull.Polygon

type SegmentInput = segment.Input
type SegmentOptions = segment.Options
type Partition = segment.Partition
type SegmentVariant = segment.Variant

const (
	AreaBalanced = segment.AreaBalanced
	NormalAware  = segment.NormalAware
)

type TessellateOptions = tessellate.Options
type Mesh = mesh.Mesh

var (
	ErrDegenerateInput   = geom.ErrDegenerateInput
	ErrEmptyNeighborhood = geom.ErrEmptyNeighborhood
	ErrUnclosedBoundary  = geom.ErrUnclosedBoundary
)

var (
	WithEpsilon       = hull.WithEpsilon
	WithMaxIterations = hull.WithMaxIterations
)

func DefaultDelaunayOptions() DelaunayOptions { return delaunay.DefaultOptions() }
func DefaultMergeOptions() MergeOptions { return hull.DefaultMergeOptions() }
func DefaultSegmentOptions() SegmentOptions { return segment.DefaultOptions() }
func DefaultTessellateOptions() TessellateOptions { return tessellate.DefaultOptions() }

// Route the kernel's logs to l. Nothing is logged by default; nil silences it
// again.
func SetLogger(l *slog.Logger) {
	dbg.SetLogger(l)
}

// Evaluate a Bezier curve of any degree at t. Works for both Point2 and
// Point3 control points.
func EvaluateBezier[T curve.Vector[T]](controlPoints []T, t float64) T {
	return curve.Evaluate(curve.DefaultCache, controlPoints, t)
}

// segments+1 uniformly spaced samples of a Bezier curve. segments <= 0 gives
// just the start point.
func SampleCurve[T curve.Vector[T]](controlPoints []T, segments int) []T {
	return curve.Sample(curve.DefaultCache, controlPoints, segments)
}

// Synthesize a piece outline: numEdges corners on a circle of radius size,
// each edge bowed out (even edges) or in (odd edges) by tabSize, sampled at
// resolution segments per edge. The result has numEdges*(resolution+1) points,
// with corners repeated and the last point equal to the first.
func SynthesizeOutline(numEdges int, size, tabSize float64, resolution int) (outline []Point2, err error) {
	defer func() {
		if recoveredErr := geom.HandlePanicRecover(recover()); recoveredErr != nil {
			outline = nil
			err = recoveredErr
		}
	}()
	return curve.SynthesizeOutline(curve.DefaultCache, numEdges, size, tabSize, resolution), nil
}

// Delaunay triangulation of the points.
func Triangulate(points []Point2, opts DelaunayOptions) (tr *Triangulation, err error) {
	defer func() {
		if recoveredErr := geom.HandlePanicRecover(recover()); recoveredErr != nil {
			tr = nil
			err = recoveredErr
		}
	}()
	return delaunay.Triangulate(points, opts), nil
}

// One Laplacian smoothing pass of the interior points against a fixed
// boundary. See delaunay.Relax.
func Relax(boundary, interior []Point2, opts DelaunayOptions) (relaxed []Point2, err error) {
	defer func() {
		if recoveredErr := geom.HandlePanicRecover(recover()); recoveredErr != nil {
			relaxed = append([]Point2(nil), interior...)
			err = recoveredErr
		}
	}()
	return delaunay.Relax(boundary, interior, opts)
}

func ComputeHull(points []Point3, opts ...HullOption) (h *Hull, err error) {
	defer func() {
		if recoveredErr := geom.HandlePanicRecover(recover()); recoveredErr != nil {
			h = nil
			err = recoveredErr
		}
	}()
	return hull.Compute(points, opts...)
}

func MergeFaces(h *Hull, opts MergeOptions) (polygons []MergedPolygon, err error) {
	defer func() {
		if recoveredErr := geom.HandlePanicRecover(recover()); recoveredErr != nil {
			polygons = nil
			err = recoveredErr
		}
	}()
	return hull.MergeFaces(h, opts)
}

// Trace the boundary of a planar point set. Fewer than 3 points come back
// unchanged. A walk that cannot close returns its partial chain and an error
// wrapping ErrUnclosedBoundary.
func ConcaveHull(points []Point2, k int) ([]int, error) {
	chain, closed := hull.ConcaveHull(points, k)
	if !closed && len(points) >= 3 {
		return chain, errors.Wrapf(ErrUnclosedBoundary, "walk stopped after %d of %d points", len(chain), len(points))
	}
	return chain, nil
}

func Segment(input SegmentInput, targetCount int, opts SegmentOptions) (p *Partition, err error) {
	defer func() {
		if recoveredErr := geom.HandlePanicRecover(recover()); recoveredErr != nil {
			p = nil
			err = recoveredErr
		}
	}()
	return segment.Segment(input, targetCount, opts)
}

// Per triangle segmentation input for a mesh.
func SegmentInputFromMesh(points []Point3, triangles []Triangle) SegmentInput {
	return segment.FromMesh(points, triangles)
}

func Tessellate(boundary, steiner []Point2, opts TessellateOptions) (tr *Triangulation, err error) {
	defer func() {
		if recoveredErr := geom.HandlePanicRecover(recover()); recoveredErr != nil {
			tr = nil
			err = recoveredErr
		}
	}()
	return tessellate.Tessellate(boundary, steiner, opts)
}
