package dbg

import (
	"math"
	"os"

	"github.com/fogleman/gg"
	imgcat "github.com/martinlindhe/imgcat/lib"
	"github.com/osuushi/jigsaw/internal/geom"
	"github.com/paulmach/orb"
)

// Padding around the shape, in pixels
const drawPadding = 20

// A planar drawing: an outline, optional triangles over some points, and loose
// points marked with dots.
type Drawing struct {
	Outline   []geom.Point2
	Points    []geom.Point2
	Triangles []geom.Triangle
	Markers   []geom.Point2
}

func (d *Drawing) bounds() orb.Bound {
	var mp orb.MultiPoint
	for _, list := range [][]geom.Point2{d.Outline, d.Points, d.Markers} {
		for _, p := range list {
			mp = append(mp, orb.Point{p.X, p.Y})
		}
	}
	if len(mp) == 0 {
		return orb.Bound{}
	}
	return mp.Bound()
}

// Render the drawing to a context at the given scale (pixels per unit).
func (d *Drawing) Render(scale float64) *gg.Context {
	bound := d.bounds()
	width := int(scale*(bound.Max[0]-bound.Min[0])) + drawPadding*2
	height := int(scale*(bound.Max[1]-bound.Min[1])) + drawPadding*2
	c := gg.NewContext(width, height)
	c.SetRGB(0, 0, 0)
	c.DrawRectangle(0, 0, float64(width), float64(height))
	c.Fill()

	// Flip the context so the origin is at the bottom left
	c.Translate(0, float64(height))
	c.Scale(1, -1)
	// Translate for padding
	c.Translate(drawPadding, drawPadding)
	c.Scale(scale, scale)
	// Translate to min
	c.Translate(-bound.Min[0], -bound.Min[1])

	lineWidth := 1 / scale
	c.SetLineWidth(math.Max(lineWidth, 1e-3))

	for _, tri := range d.Triangles {
		a, b, cc := d.Points[tri[0]], d.Points[tri[1]], d.Points[tri[2]]
		c.MoveTo(a.X, a.Y)
		c.LineTo(b.X, b.Y)
		c.LineTo(cc.X, cc.Y)
		c.ClosePath()
	}
	c.SetRGBA(0.3, 0.2, 1, 0.5)
	c.FillPreserve()
	c.SetRGB(0, 1, 0)
	c.Stroke()

	if len(d.Outline) > 0 {
		c.SetLineWidth(math.Max(3*lineWidth, 3e-3))
		c.MoveTo(d.Outline[0].X, d.Outline[0].Y)
		for _, p := range d.Outline[1:] {
			c.LineTo(p.X, p.Y)
		}
		c.ClosePath()
		c.SetRGB(0, 1, 1)
		c.Stroke()
	}

	c.SetRGB(1, 0.3, 0.3)
	for _, p := range d.Markers {
		c.DrawCircle(p.X, p.Y, 3/scale)
		c.Fill()
	}
	return c
}

// Save the drawing as a PNG.
func (d *Drawing) SavePNG(path string, scale float64) error {
	return d.Render(scale).SavePNG(path)
}

// Save the drawing as a PNG and print it to the terminal (iTerm only).
func (d *Drawing) Cat(path string, scale float64) error {
	if err := d.SavePNG(path, scale); err != nil {
		return err
	}
	imgcat.CatFile(path, os.Stdout)
	return nil
}
