// Package mesh turns a tessellated piece into a flat triangle mesh.
package mesh

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/osuushi/jigsaw/internal/geom"
	"github.com/paulmach/orb"
)

// Mesh is a triangle mesh in flat buffers: Vertices and Normals have 3 floats
// per vertex, UVs 2 floats per vertex, and Indices 3 per triangle.
type Mesh struct {
	Vertices []float32
	Normals  []float32
	UVs      []float32
	Indices  []uint32
}

func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

func (m *Mesh) addVertex(p geom.Point3, normal geom.Point3, uv geom.Point2) uint32 {
	i := uint32(m.VertexCount())
	m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
	m.Normals = append(m.Normals, float32(normal.X), float32(normal.Y), float32(normal.Z))
	m.UVs = append(m.UVs, float32(uv.X), float32(uv.Y))
	return i
}

func (m *Mesh) addTriangle(a, b, c uint32) {
	m.Indices = append(m.Indices, a, b, c)
}

// Extrude a tessellated outline into a slab centered on z = 0. The top cap
// faces +z and uses the triangles as given, which must wind counterclockwise.
// The bottom cap mirrors it. ring lists the boundary vertices in order, and
// gets one flat shaded wall quad per edge.
//
// A thickness of zero or less produces just the top cap, at z = 0.
func Extrude(points []geom.Point2, triangles []geom.Triangle, ring []int, thickness float64) *Mesh {
	m := &Mesh{}
	uvs := boundingBoxUVs(points)

	if thickness <= 0 {
		addCap(m, points, uvs, triangles, 0, geom.Point3{Z: 1}, false)
		return m
	}

	half := thickness / 2
	addCap(m, points, uvs, triangles, half, geom.Point3{Z: 1}, false)
	addCap(m, points, uvs, triangles, -half, geom.Point3{Z: -1}, true)

	ringPolygon := geom.Polygon{Points: make([]geom.Point2, len(ring))}
	for i, vi := range ring {
		ringPolygon.Points[i] = points[vi]
	}
	if ringPolygon.IsCW() {
		reversed := make([]int, len(ring))
		for i, vi := range ring {
			reversed[len(ring)-1-i] = vi
		}
		ring = reversed
	}

	for i, ai := range ring {
		bi := ring[geom.CircularIndex(i+1, len(ring))]
		a, b := points[ai], points[bi]
		d := b.Sub(a)
		if d.Norm() == 0 {
			continue
		}
		outward := geom.Point2{X: d.Y, Y: -d.X}.Normalize()
		normal := geom.Lift(outward)

		aBottom := m.addVertex(geom.Point3{X: a.X, Y: a.Y, Z: -half}, normal, uvs[ai])
		bBottom := m.addVertex(geom.Point3{X: b.X, Y: b.Y, Z: -half}, normal, uvs[bi])
		bTop := m.addVertex(geom.Point3{X: b.X, Y: b.Y, Z: half}, normal, uvs[bi])
		aTop := m.addVertex(geom.Point3{X: a.X, Y: a.Y, Z: half}, normal, uvs[ai])
		m.addTriangle(aBottom, bBottom, bTop)
		m.addTriangle(aBottom, bTop, aTop)
	}
	return m
}

func addCap(m *Mesh, points []geom.Point2, uvs []geom.Point2, triangles []geom.Triangle, z float64, normal geom.Point3, flip bool) {
	base := uint32(m.VertexCount())
	for i, p := range points {
		m.addVertex(geom.Point3{X: p.X, Y: p.Y, Z: z}, normal, uvs[i])
	}
	for _, tri := range triangles {
		if flip {
			tri = tri.Flip()
		}
		m.addTriangle(base+uint32(tri[0]), base+uint32(tri[1]), base+uint32(tri[2]))
	}
}

// Normalize XY into the unit square over the points' bounding box.
func boundingBoxUVs(points []geom.Point2) []geom.Point2 {
	uvs := make([]geom.Point2, len(points))
	if len(points) == 0 {
		return uvs
	}
	bound := geom.Polygon{Points: points}.Bound()
	width, height := bound.Max[0]-bound.Min[0], bound.Max[1]-bound.Min[1]
	for i, p := range points {
		if width > 0 {
			uvs[i].X = (p.X - bound.Min[0]) / width
		}
		if height > 0 {
			uvs[i].Y = (p.Y - bound.Min[1]) / height
		}
	}
	return uvs
}

// A copy of the mesh moved by the transform. Normals go through the inverse
// transpose, so non-uniform scales keep them perpendicular.
func (m *Mesh) Transform(transform mgl64.Mat4) *Mesh {
	out := &Mesh{
		Vertices: make([]float32, len(m.Vertices)),
		Normals:  make([]float32, len(m.Normals)),
		UVs:      append([]float32(nil), m.UVs...),
		Indices:  append([]uint32(nil), m.Indices...),
	}
	normalTransform := transform.Inv().Transpose()
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		v := mgl64.Vec3{float64(m.Vertices[i]), float64(m.Vertices[i+1]), float64(m.Vertices[i+2])}
		v = mgl64.TransformCoordinate(v, transform)
		out.Vertices[i], out.Vertices[i+1], out.Vertices[i+2] = float32(v[0]), float32(v[1]), float32(v[2])

		n := mgl64.Vec3{float64(m.Normals[i]), float64(m.Normals[i+1]), float64(m.Normals[i+2])}
		n = mgl64.TransformNormal(n, normalTransform)
		if n.Len() > 0 {
			n = n.Normalize()
		}
		out.Normals[i], out.Normals[i+1], out.Normals[i+2] = float32(n[0]), float32(n[1]), float32(n[2])
	}
	return out
}

func (m *Mesh) Positions() []geom.Point3 {
	positions := make([]geom.Point3, m.VertexCount())
	for i := range positions {
		positions[i] = geom.Point3{
			X: float64(m.Vertices[3*i]),
			Y: float64(m.Vertices[3*i+1]),
			Z: float64(m.Vertices[3*i+2]),
		}
	}
	return positions
}

func (m *Mesh) Triangles() []geom.Triangle {
	triangles := make([]geom.Triangle, m.TriangleCount())
	for i := range triangles {
		triangles[i] = geom.Triangle{int(m.Indices[3*i]), int(m.Indices[3*i+1]), int(m.Indices[3*i+2])}
	}
	return triangles
}

// Axis aligned XY bounds of the vertices.
func (m *Mesh) Bound() orb.Bound {
	points := make(orb.MultiPoint, m.VertexCount())
	for i := range points {
		points[i] = orb.Point{float64(m.Vertices[3*i]), float64(m.Vertices[3*i+1])}
	}
	return points.Bound()
}
