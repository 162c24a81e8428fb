package jigsaw

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/osuushi/jigsaw/internal/curve"
	"github.com/osuushi/jigsaw/internal/dbg"
	"github.com/osuushi/jigsaw/internal/delaunay"
	"github.com/osuushi/jigsaw/internal/geom"
	"github.com/osuushi/jigsaw/internal/mesh"
	"github.com/osuushi/jigsaw/internal/tessellate"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

type PieceConfig struct {
	NumEdges   int
	Size       float64
	TabSize    float64
	Resolution int

	// Grid spacing of the interior Steiner points. Keep it larger than the
	// distance between outline samples, or boundary edges can get lost.
	SteinerSpacing float64
	// Random offset of each Steiner point, as a fraction of the spacing
	Jitter float64
	// Jitter randomness. Nil disables jitter.
	Source rand.Source

	// Slab thickness of the mesh. Zero gives a flat mesh.
	Thickness float64
	// Where the mesh goes. The zero matrix leaves it centered on the origin.
	Placement mgl64.Mat4

	Delaunay DelaunayOptions
}

func DefaultPieceConfig() PieceConfig {
	return PieceConfig{
		NumEdges:       4,
		Size:           1,
		TabSize:        0.2,
		Resolution:     12,
		SteinerSpacing: 0.15,
		Jitter:         0.25,
		Thickness:      0.1,
		Placement:      mgl64.Ident4(),
		Delaunay:       delaunay.DefaultOptions(),
	}
}

type Piece struct {
	// The outline as a simple counterclockwise ring
	Outline []Point2
	// Tessellation vertices. The outline comes first, in order.
	Points    []Point2
	Triangles []Triangle
	// False when relaxation was skipped
	Relaxed bool
	Mesh    *Mesh
}

// Build a piece: synthesize the outline, scatter Steiner points inside it,
// relax them once, tessellate, extrude, and place the mesh. The 2D outline and
// tessellation stay in piece coordinates.
func BuildPiece(cfg PieceConfig) (piece *Piece, err error) {
	defer func() {
		if recoveredErr := geom.HandlePanicRecover(recover()); recoveredErr != nil {
			piece = nil
			err = recoveredErr
		}
	}()

	outline := curve.SynthesizeOutline(curve.DefaultCache, cfg.NumEdges, cfg.Size, cfg.TabSize, cfg.Resolution)
	ring := curve.OutlineRing(outline, cfg.Delaunay.Epsilon)
	steiner := tessellate.SteinerGrid(ring, cfg.SteinerSpacing, cfg.Jitter, cfg.Source)

	piece = &Piece{Outline: ring}
	interior := steiner
	relaxed, err := delaunay.Relax(ring, steiner, cfg.Delaunay)
	switch {
	case errors.Is(err, ErrEmptyNeighborhood):
		dbg.Logger().Warn("jigsaw: skipping relaxation", "error", err)
	case err != nil:
		return nil, err
	default:
		interior = keepClearOfBoundary(ring, steiner, relaxed, cfg.SteinerSpacing/2)
		piece.Relaxed = true
	}

	tr, err := tessellate.Tessellate(ring, interior, tessellate.Options{Delaunay: cfg.Delaunay})
	if err != nil {
		return nil, errors.Wrap(err, "tessellating piece")
	}
	piece.Points = tr.Points
	piece.Triangles = tr.Triangles

	ringIndices := make([]int, 0, len(ring))
	seen := make(geom.IndexSet, len(ring))
	for i := range ring {
		v := tr.VertexOf[i]
		if !seen.Contains(v) {
			seen.Add(v)
			ringIndices = append(ringIndices, v)
		}
	}
	piece.Mesh = mesh.Extrude(tr.Points, tr.Triangles, ringIndices, cfg.Thickness)
	if cfg.Placement != (mgl64.Mat4{}) && cfg.Placement != mgl64.Ident4() {
		piece.Mesh = piece.Mesh.Transform(cfg.Placement)
	}

	dbg.Logger().Debug("jigsaw: built piece",
		"outline", len(ring), "steiner", len(steiner), "triangles", len(tr.Triangles),
		"vertices", piece.Mesh.VertexCount())
	return piece, nil
}

// Relaxed points that left the piece or came within margin of its outline go
// back to where they started.
func keepClearOfBoundary(ring, original, relaxed []Point2, margin float64) []Point2 {
	poly := geom.Polygon{Points: ring}
	kept := make([]Point2, len(relaxed))
	for i, p := range relaxed {
		if poly.ContainsPointByEvenOdd(p) && tessellate.BoundaryDistance(ring, p) >= margin {
			kept[i] = p
		} else {
			kept[i] = original[i]
		}
	}
	return kept
}
