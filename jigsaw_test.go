package jigsaw

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/osuushi/jigsaw/internal/delaunay"
	"github.com/osuushi/jigsaw/internal/geom"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// A four sided piece outline plus its centroid goes through relaxation. The
// outline must come out untouched, and the centroid must land on the mean of
// its triangulation neighbors.
func TestOutlineRelaxation(t *testing.T) {
	outline, err := SynthesizeOutline(4, 1, 0.4, 8)
	require.NoError(t, err)
	require.Len(t, outline, 36)
	assert.InDelta(t, 0, outline[0].Sub(outline[35]).Norm(), 1e-12)

	var centroid Point2
	for _, p := range outline[:35] {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Mul(1.0 / 35)

	before := append([]Point2(nil), outline...)
	relaxed, err := Relax(outline, []Point2{centroid}, DefaultDelaunayOptions())
	require.NoError(t, err)
	require.Len(t, relaxed, 1)
	assert.Equal(t, before, outline)

	points := append(append([]Point2(nil), outline...), centroid)
	tr := delaunay.Triangulate(points, DefaultDelaunayOptions())
	ring := tr.Neighbors()[tr.VertexOf[36]]
	require.NotEmpty(t, ring)
	var mean Point2
	for _, n := range ring {
		mean = mean.Add(tr.Points[n])
	}
	mean = mean.Mul(1 / float64(len(ring)))
	assert.InDelta(t, mean.X, relaxed[0].X, 1e-12)
	assert.InDelta(t, mean.Y, relaxed[0].Y, 1e-12)
}

func TestSynthesizeOutlineError(t *testing.T) {
	outline, err := SynthesizeOutline(2, 1, 0.4, 8)
	assert.Nil(t, outline)
	assert.True(t, errors.Is(err, ErrDegenerateInput))

	// Negative resolutions fall back to the corners instead of panicking
	outline, err = SynthesizeOutline(4, 1, 0.2, -2)
	require.NoError(t, err)
	assert.Len(t, outline, 4)
}

func TestEvaluateBezier(t *testing.T) {
	control := []Point3{{X: 0}, {X: 1, Y: 2}, {X: 2, Z: 1}}
	assert.Equal(t, control[0], EvaluateBezier(control, 0))
	assert.Equal(t, control[2], EvaluateBezier(control, 1))
	assert.Len(t, SampleCurve(control, 4), 5)
}

func TestConcaveHull(t *testing.T) {
	chain, err := ConcaveHull([]Point2{{X: 0}, {X: 1}}, 3)
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 1}, chain)

	chain, err = ConcaveHull([]Point2{{X: 0}, {X: 1}, {X: 2}, {X: 3}}, 3)
	assert.True(t, errors.Is(err, ErrUnclosedBoundary))
	assert.Len(t, chain, 4)
}

func signedVolume(m *Mesh) float64 {
	positions := m.Positions()
	var volume float64
	for _, tri := range m.Triangles() {
		a, b, c := positions[tri[0]], positions[tri[1]], positions[tri[2]]
		volume += a.Dot(b.Cross(c)) / 6
	}
	return volume
}

func buildTestPiece(t *testing.T) *Piece {
	cfg := DefaultPieceConfig()
	cfg.Source = rand.NewSource(1)
	piece, err := BuildPiece(cfg)
	require.NoError(t, err)
	return piece
}

func TestBuildPiece(t *testing.T) {
	piece := buildTestPiece(t)
	cfg := DefaultPieceConfig()

	// Corners are shared between neighboring edges
	require.Len(t, piece.Outline, cfg.NumEdges*cfg.Resolution)
	outline := geom.Polygon{Points: piece.Outline}
	assert.True(t, outline.IsCCW())
	assert.True(t, piece.Relaxed)
	assert.Equal(t, piece.Outline, piece.Points[:len(piece.Outline)])

	var area float64
	for _, tri := range piece.Triangles {
		triangleArea := geom.Orient(piece.Points[tri[0]], piece.Points[tri[1]], piece.Points[tri[2]]) / 2
		require.Greater(t, triangleArea, 0.0)
		area += triangleArea
	}
	assert.InDelta(t, outline.SignedArea(), area, 1e-9)

	m := piece.Mesh
	assert.Equal(t, 2*len(piece.Triangles)+2*len(piece.Outline), m.TriangleCount())
	assert.InDelta(t, area*cfg.Thickness, signedVolume(m), 1e-4*area*cfg.Thickness)
}

func TestBuildPiecePlacement(t *testing.T) {
	base := buildTestPiece(t)

	cfg := DefaultPieceConfig()
	cfg.Source = rand.NewSource(1)
	cfg.Placement = mgl64.Translate3D(5, -2, 1).Mul4(mgl64.HomogRotate3DZ(math.Pi / 2))
	placed, err := BuildPiece(cfg)
	require.NoError(t, err)

	// The planar data stays in piece coordinates
	assert.Equal(t, base.Points, placed.Points)

	basePositions := base.Mesh.Positions()
	placedPositions := placed.Mesh.Positions()
	require.Len(t, placedPositions, len(basePositions))
	for i, p := range basePositions {
		assert.InDelta(t, 5-p.Y, placedPositions[i].X, 1e-5)
		assert.InDelta(t, -2+p.X, placedPositions[i].Y, 1e-5)
		assert.InDelta(t, 1+p.Z, placedPositions[i].Z, 1e-5)
	}

	baseBound, placedBound := base.Mesh.Bound(), placed.Mesh.Bound()
	assert.InDelta(t, 5-baseBound.Max[1], placedBound.Min[0], 1e-5)
	assert.InDelta(t, -2+baseBound.Min[0], placedBound.Min[1], 1e-5)

	// The zero matrix means no placement
	cfg.Source = rand.NewSource(1)
	cfg.Placement = mgl64.Mat4{}
	unplaced, err := BuildPiece(cfg)
	require.NoError(t, err)
	assert.Equal(t, base.Mesh.Vertices, unplaced.Mesh.Vertices)
}

func TestBuildPieceErrors(t *testing.T) {
	cfg := DefaultPieceConfig()
	cfg.NumEdges = 2
	piece, err := BuildPiece(cfg)
	assert.Nil(t, piece)
	assert.True(t, errors.Is(err, ErrDegenerateInput))
}

func TestPieceHullAndMerge(t *testing.T) {
	piece := buildTestPiece(t)
	positions := piece.Mesh.Positions()

	h, err := ComputeHull(positions)
	require.NoError(t, err)
	for _, p := range positions {
		assert.True(t, h.Contains(p, 1e-6))
	}

	polygons, err := MergeFaces(h, DefaultMergeOptions())
	require.NoError(t, err)
	assert.Less(t, len(polygons), len(h.Faces))

	caps := 0
	for _, poly := range polygons {
		assert.True(t, poly.Closed)
		if math.Abs(poly.Normal.Z) > 0.999 {
			caps++
			assert.GreaterOrEqual(t, len(poly.Indices), 4)
		}
	}
	assert.Equal(t, 2, caps)
}

func TestPieceSegment(t *testing.T) {
	piece := buildTestPiece(t)
	input := SegmentInputFromMesh(piece.Mesh.Positions(), piece.Mesh.Triangles())

	opts := DefaultSegmentOptions()
	opts.Source = rand.NewSource(2)
	p, err := Segment(input, 4, opts)
	require.NoError(t, err)

	total := 0
	for c := range p.Clusters {
		total += len(p.Members(c))
	}
	assert.Equal(t, piece.Mesh.TriangleCount(), total)
	assert.LessOrEqual(t, len(p.Clusters), 4)
}
