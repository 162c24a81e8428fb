package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/osuushi/jigsaw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPolygons(t *testing.T) {
	input := "0 0\n4 0\n4 4\n0 4\n\n\n1 1\n 2.5  3 \n"
	polygons, err := readPolygons(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, polygons, 2)
	assert.Len(t, polygons[0], 4)
	assert.Equal(t, []jigsaw.Point2{{X: 1, Y: 1}, {X: 2.5, Y: 3}}, polygons[1])

	t.Run("empty input", func(t *testing.T) {
		polygons, err := readPolygons(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, polygons)
	})

	t.Run("bad line", func(t *testing.T) {
		_, err := readPolygons(strings.NewReader("0 0\n1 x\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
	})
}

func TestParsePoint(t *testing.T) {
	for _, line := range []string{"1", "1 2 3", "a 1"} {
		_, err := parsePoint(line)
		assert.Error(t, err, line)
	}
	p, err := parsePoint("-1.5 2e1")
	require.NoError(t, err)
	assert.Equal(t, jigsaw.Point2{X: -1.5, Y: 20}, p)
}

func TestReadSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shapes.svg")
	doc := `<svg xmlns="http://www.w3.org/2000/svg">
		<polygon points="0,0 4,0 4,4 0,4" />
		<polygon points="1,1 2,1 1,2" />
	</svg>`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	polygons, err := readSVG(path)
	require.NoError(t, err)
	require.Len(t, polygons, 2)
	assert.Len(t, polygons[0], 4)
	assert.Equal(t, jigsaw.Point2{X: 2, Y: 1}, polygons[1][1])

	_, err = readSVG(filepath.Join(t.TempDir(), "missing.svg"))
	assert.Error(t, err)
}

func TestParseOffset(t *testing.T) {
	offset, err := parseOffset("1, -2.5,0")
	require.NoError(t, err)
	assert.Equal(t, [3]float64{1, -2.5, 0}, offset)

	for _, s := range []string{"", "1,2", "1,2,3,4", "1,y,3"} {
		_, err := parseOffset(s)
		assert.Error(t, err, s)
	}
}
