package main

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/osuushi/jigsaw"
	"github.com/osuushi/jigsaw/internal/fixture"
	"github.com/pkg/errors"
)

// Input on stdin is newline separated points in the form "x y", with each
// group of points separated by an extra newline. For relax, the first group is
// the boundary and the second is the interior.
func readPolygons(in io.Reader) ([][]jigsaw.Point2, error) {
	polygons := [][]jigsaw.Point2{}
	scanner := bufio.NewScanner(in)
	points := []jigsaw.Point2{}
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())

		// If it's empty, and we collected any points, this is the end of the polygon
		if line == "" {
			if len(points) > 0 {
				polygons = append(polygons, points)
				points = []jigsaw.Point2{}
			}
			continue
		}

		point, err := parsePoint(line)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNumber)
		}
		points = append(points, point)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading points")
	}

	// Handle trailing polygon if any
	if len(points) > 0 {
		polygons = append(polygons, points)
	}
	return polygons, nil
}

func parsePoint(line string) (jigsaw.Point2, error) {
	parts := strings.Fields(line)
	if len(parts) != 2 {
		return jigsaw.Point2{}, errors.Errorf("expected \"x y\", got %q", line)
	}
	x, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return jigsaw.Point2{}, errors.Wrapf(err, "invalid x value %q", parts[0])
	}
	y, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return jigsaw.Point2{}, errors.Wrapf(err, "invalid y value %q", parts[1])
	}
	return jigsaw.Point2{X: x, Y: y}, nil
}

// Polygons from an SVG file, in document order.
func readSVG(path string) ([][]jigsaw.Point2, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening svg")
	}
	defer f.Close()

	polygons, err := fixture.ParseSVG(f)
	if err != nil {
		return nil, err
	}
	result := make([][]jigsaw.Point2, len(polygons))
	for i, poly := range polygons {
		result[i] = poly.Points
	}
	return result, nil
}

// An "x,y,z" translation.
func parseOffset(s string) ([3]float64, error) {
	var offset [3]float64
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return offset, errors.Errorf("expected \"x,y,z\", got %q", s)
	}
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return offset, errors.Wrapf(err, "invalid offset component %q", part)
		}
		offset[i] = v
	}
	return offset, nil
}
