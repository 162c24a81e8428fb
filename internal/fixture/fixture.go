// Package fixture loads test shapes. SVG fixtures are embedded from the
// fixtures/ directory and are available by name, sans extension. The SVG
// handling is not a full (or even correct) SVG parser: it finds polygon
// elements and reads their points attribute.
package fixture

import (
	"embed"
	"io"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/JoshVarga/svgparser"
	"github.com/osuushi/jigsaw/internal/geom"
	"github.com/pkg/errors"
)

//go:embed fixtures
var fixtures embed.FS

// Load a named fixture as a counterclockwise polygon. If anything goes wrong,
// this is fatal; it is meant for tests.
func LoadFixture(name string) geom.Polygon {
	fixture, err := fixtures.Open("fixtures/" + name + ".svg")
	if err != nil {
		log.Fatalf("Could not load fixture %q: %v", name, err)
	}
	defer fixture.Close()

	polygons, err := ParseSVG(fixture)
	if err != nil {
		log.Fatalf("Failed to parse fixture %q: %v", name, err)
	}
	if len(polygons) != 1 {
		log.Fatalf("Expected one polygon in fixture %q, found %d", name, len(polygons))
	}
	return polygons[0]
}

// Read every polygon element in an SVG document. Each polygon is returned
// counterclockwise.
func ParseSVG(r io.Reader) ([]geom.Polygon, error) {
	rootEl, err := svgparser.Parse(r, true)
	if err != nil {
		return nil, errors.Wrap(err, "parsing svg")
	}

	var result []geom.Polygon
	for _, polygonEl := range rootEl.FindAll("polygon") {
		points, err := parsePoints(polygonEl.Attributes["points"])
		if err != nil {
			return nil, err
		}
		poly := geom.Polygon{Points: points}
		// Ensure that the polygon is CCW
		if poly.IsCW() {
			poly = poly.Reverse()
		}
		result = append(result, poly)
	}
	if len(result) == 0 {
		return nil, errors.New("no polygons found")
	}
	return result, nil
}

func parsePoints(pointString string) ([]geom.Point2, error) {
	pointStrings := strings.Fields(pointString)
	points := make([]geom.Point2, 0, len(pointStrings))
	for _, pointString := range pointStrings {
		coords := strings.Split(pointString, ",")
		if len(coords) != 2 {
			return nil, errors.Errorf("invalid point string %q", pointString)
		}
		x, err := strconv.ParseFloat(coords[0], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid x value %q", coords[0])
		}
		y, err := strconv.ParseFloat(coords[1], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid y value %q", coords[1])
		}
		points = append(points, geom.Point2{X: x, Y: y})
	}
	return points, nil
}

// Some ad hoc fixtures

func SimpleStar() geom.Polygon {
	var points []geom.Point2
	const outerRadius = 5
	const innerRadius = 2
	for i := 0; i < 10; i++ {
		var radius float64
		if i%2 == 0 {
			radius = outerRadius
		} else {
			radius = innerRadius
		}
		angle := 2 * math.Pi * float64(i) / 10
		points = append(points, geom.Point2{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)})
	}
	return geom.Polygon{Points: points}
}

func Square(halfSize float64) geom.Polygon {
	return geom.Polygon{Points: []geom.Point2{
		{X: -halfSize, Y: -halfSize},
		{X: halfSize, Y: -halfSize},
		{X: halfSize, Y: halfSize},
		{X: -halfSize, Y: halfSize},
	}}
}

// Corners of an axis aligned cube centered on the origin.
func Cube(halfSize float64) []geom.Point3 {
	var points []geom.Point3
	for _, x := range []float64{-halfSize, halfSize} {
		for _, y := range []float64{-halfSize, halfSize} {
			for _, z := range []float64{-halfSize, halfSize} {
				points = append(points, geom.Point3{X: x, Y: y, Z: z})
			}
		}
	}
	return points
}

// A regular tetrahedron's corners.
func Tetrahedron() []geom.Point3 {
	return []geom.Point3{
		{X: 1, Y: 1, Z: 1},
		{X: 1, Y: -1, Z: -1},
		{X: -1, Y: 1, Z: -1},
		{X: -1, Y: -1, Z: 1},
	}
}
