package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/logrusorgru/aurora"
	"github.com/osuushi/jigsaw"
	"github.com/osuushi/jigsaw/internal/dbg"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	app     = kingpin.New("jigsaw", "Build procedural jigsaw puzzle pieces.")
	verbose = app.Flag("verbose", "Log geometry details to stderr.").Short('v').Bool()

	outlineCmd = app.Command("outline", "Print the points of a piece outline, one \"x y\" per line.")
	relaxCmd   = app.Command("relax", "Relax interior points against a boundary.")
	pieceCmd   = app.Command("piece", "Build a piece and report its mesh.")
	hullCmd    = app.Command("hull", "Build a piece and merge the faces of its convex hull.")
	segmentCmd = app.Command("segment", "Build a piece and split its mesh into regions.")

	relaxSVG = relaxCmd.Flag("svg", "Read polygons from an SVG file instead of stdin.").ExistingFile()

	segmentRegions = segmentCmd.Flag("regions", "Number of regions.").Default("4").Int()
	normalAware    = segmentCmd.Flag("normal-aware", "Cluster by normal instead of balancing area.").Bool()
	hullK          = hullCmd.Flag("k", "Neighbor count for the boundary walk.").Default("3").Int()
	hullTolerance  = hullCmd.Flag("tolerance", "Normal dot product above which faces merge.").Default("0.999").Float64()
)

// Flags that shape a piece, shared by every command that builds one
type pieceFlags struct {
	edges      *int
	size       *float64
	tab        *float64
	resolution *int
	spacing    *float64
	jitter     *float64
	thickness  *float64
	rotate     *float64
	offset     *string
	seed       *uint64
	png        *string
	imgcat     *bool
}

func addPieceFlags(cmd *kingpin.CmdClause) *pieceFlags {
	defaults := jigsaw.DefaultPieceConfig()
	return &pieceFlags{
		edges:      cmd.Flag("edges", "Number of piece edges.").Default(fmt.Sprint(defaults.NumEdges)).Int(),
		size:       cmd.Flag("size", "Radius of the piece's corner circle.").Default(fmt.Sprint(defaults.Size)).Float64(),
		tab:        cmd.Flag("tab", "How far tabs and blanks bow the edges.").Default(fmt.Sprint(defaults.TabSize)).Float64(),
		resolution: cmd.Flag("resolution", "Curve segments per edge.").Default(fmt.Sprint(defaults.Resolution)).Int(),
		spacing:    cmd.Flag("spacing", "Steiner point spacing.").Default(fmt.Sprint(defaults.SteinerSpacing)).Float64(),
		jitter:     cmd.Flag("jitter", "Steiner point jitter, as a fraction of the spacing.").Default(fmt.Sprint(defaults.Jitter)).Float64(),
		thickness:  cmd.Flag("thickness", "Slab thickness.").Default(fmt.Sprint(defaults.Thickness)).Float64(),
		rotate:     cmd.Flag("rotate", "Turn the mesh about the z axis, in degrees.").Default("0").Float64(),
		offset:     cmd.Flag("offset", "Move the mesh by \"x,y,z\".").Default("0,0,0").String(),
		seed:       cmd.Flag("seed", "Random seed.").Default("1").Uint64(),
		png:        cmd.Flag("png", "Draw the piece to this PNG file.").String(),
		imgcat:     cmd.Flag("imgcat", "Also show the drawing in the terminal.").Bool(),
	}
}

func (f *pieceFlags) config() (jigsaw.PieceConfig, error) {
	cfg := jigsaw.DefaultPieceConfig()
	cfg.NumEdges = *f.edges
	cfg.Size = *f.size
	cfg.TabSize = *f.tab
	cfg.Resolution = *f.resolution
	cfg.SteinerSpacing = *f.spacing
	cfg.Jitter = *f.jitter
	cfg.Thickness = *f.thickness
	cfg.Source = rand.NewSource(*f.seed)

	offset, err := parseOffset(*f.offset)
	if err != nil {
		return cfg, err
	}
	cfg.Placement = mgl64.Translate3D(offset[0], offset[1], offset[2]).
		Mul4(mgl64.HomogRotate3DZ(mgl64.DegToRad(*f.rotate)))
	return cfg, nil
}

func (f *pieceFlags) draw(drawing *dbg.Drawing) error {
	if *f.png == "" {
		return nil
	}
	const scale = 200
	if *f.imgcat {
		return drawing.Cat(*f.png, scale)
	}
	return drawing.SavePNG(*f.png, scale)
}

var (
	outlineFlags = addPieceFlags(outlineCmd)
	pieceFlagSet = addPieceFlags(pieceCmd)
	hullFlags    = addPieceFlags(hullCmd)
	segmentFlags = addPieceFlags(segmentCmd)
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))
	if *verbose {
		jigsaw.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	var err error
	switch command {
	case outlineCmd.FullCommand():
		err = runOutline(outlineFlags)
	case relaxCmd.FullCommand():
		err = runRelax()
	case pieceCmd.FullCommand():
		err = runPiece(pieceFlagSet)
	case hullCmd.FullCommand():
		err = runHull(hullFlags)
	case segmentCmd.FullCommand():
		err = runSegment(segmentFlags)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, aurora.Red("error:"), err)
		os.Exit(1)
	}
}

func runOutline(flags *pieceFlags) error {
	cfg, err := flags.config()
	if err != nil {
		return err
	}
	outline, err := jigsaw.SynthesizeOutline(cfg.NumEdges, cfg.Size, cfg.TabSize, cfg.Resolution)
	if err != nil {
		return err
	}
	printPoints(outline)
	return flags.draw(&dbg.Drawing{Outline: outline, Markers: outline})
}

func runRelax() error {
	var polygons [][]jigsaw.Point2
	var err error
	if *relaxSVG != "" {
		polygons, err = readSVG(*relaxSVG)
	} else {
		polygons, err = readPolygons(os.Stdin)
	}
	if err != nil {
		return err
	}
	if len(polygons) < 2 {
		return errors.Errorf("need a boundary and a group of interior points, got %d groups", len(polygons))
	}

	relaxed, err := jigsaw.Relax(polygons[0], polygons[1], jigsaw.DefaultDelaunayOptions())
	if errors.Is(err, jigsaw.ErrEmptyNeighborhood) {
		fmt.Fprintln(os.Stderr, aurora.Yellow("warning:"), err)
	} else if err != nil {
		return err
	}
	printPoints(relaxed)
	return nil
}

func runPiece(flags *pieceFlags) error {
	cfg, err := flags.config()
	if err != nil {
		return err
	}
	piece, err := jigsaw.BuildPiece(cfg)
	if err != nil {
		return err
	}
	fmt.Printf("%s %d points\n", aurora.Cyan("outline"), len(piece.Outline))
	fmt.Printf("%s %d points, %d triangles (relaxed: %v)\n",
		aurora.Cyan("tessellation"), len(piece.Points), len(piece.Triangles), piece.Relaxed)
	fmt.Printf("%s %d vertices, %d triangles\n",
		aurora.Cyan("mesh"), piece.Mesh.VertexCount(), piece.Mesh.TriangleCount())
	bound := piece.Mesh.Bound()
	fmt.Printf("%s x %.4f..%.4f, y %.4f..%.4f\n",
		aurora.Cyan("bounds"), bound.Min[0], bound.Max[0], bound.Min[1], bound.Max[1])
	return flags.draw(&dbg.Drawing{Outline: piece.Outline, Points: piece.Points, Triangles: piece.Triangles})
}

func runHull(flags *pieceFlags) error {
	cfg, err := flags.config()
	if err != nil {
		return err
	}
	piece, err := jigsaw.BuildPiece(cfg)
	if err != nil {
		return err
	}
	h, err := jigsaw.ComputeHull(piece.Mesh.Positions())
	if err != nil {
		return err
	}
	fmt.Printf("%s %d vertices, %d faces\n", aurora.Cyan("hull"), len(h.Vertices()), len(h.Faces))

	opts := jigsaw.DefaultMergeOptions()
	opts.K = *hullK
	opts.NormalTolerance = *hullTolerance
	polygons, err := jigsaw.MergeFaces(h, opts)
	if err != nil && !errors.Is(err, jigsaw.ErrUnclosedBoundary) {
		return err
	}
	for i, poly := range polygons {
		status := aurora.Green("closed")
		if !poly.Closed {
			status = aurora.Red("open")
		}
		fmt.Printf("polygon %d: %d vertices, normal %v, %s\n", i, len(poly.Indices), poly.Normal, status)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, aurora.Yellow("warning:"), err)
	}
	return flags.draw(&dbg.Drawing{Outline: piece.Outline, Markers: project(h.Points, h.Vertices())})
}

func runSegment(flags *pieceFlags) error {
	cfg, err := flags.config()
	if err != nil {
		return err
	}
	piece, err := jigsaw.BuildPiece(cfg)
	if err != nil {
		return err
	}

	opts := jigsaw.DefaultSegmentOptions()
	if *normalAware {
		opts.Variant = jigsaw.NormalAware
	}
	opts.Source = rand.NewSource(*flags.seed)
	input := jigsaw.SegmentInputFromMesh(piece.Mesh.Positions(), piece.Mesh.Triangles())
	partition, err := jigsaw.Segment(input, *segmentRegions, opts)
	if err != nil {
		return err
	}
	for c, cluster := range partition.Clusters {
		fmt.Printf("%s %d: %d triangles, area %.4f, centroid %v\n",
			aurora.Cyan("region"), c, len(partition.Members(c)), cluster.Area, cluster.Centroid)
	}
	return nil
}

func printPoints(points []jigsaw.Point2) {
	for _, p := range points {
		fmt.Printf("%g %g\n", p.X, p.Y)
	}
}

func project(points []jigsaw.Point3, indices []int) []jigsaw.Point2 {
	projected := make([]jigsaw.Point2, len(indices))
	for i, vi := range indices {
		projected[i] = jigsaw.Point2{X: points[vi].X, Y: points[vi].Y}
	}
	return projected
}
