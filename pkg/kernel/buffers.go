package kernel

import "github.com/chewxy/math32"

// Buffers is the flat form of a mesh handed to a renderer.
// vertices and normals have 3 floats per vertex, colors 4 floats per
// vertex (empty when uncoloured), indices 3 per triangle.
type Buffers struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Colors   []float32 `json:"colors,omitempty"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
}

// Buffers flattens m and computes its vertex normals.
func (m *Mesh) Buffers() *Buffers {
	b := &Buffers{
		Vertices: make([]float32, 0, 3*len(m.Points)),
		Normals:  make([]float32, 0, 3*len(m.Points)),
		Indices:  make([]uint32, 0, 3*len(m.Faces)),
		PartName: m.Name,
	}
	for _, p := range m.Points {
		b.Vertices = append(b.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
	}
	for _, n := range m.VertexNormals() {
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)
		// Rounding to float32 can leave the normal slightly off unit length.
		if l := math32.Sqrt(nx*nx + ny*ny + nz*nz); l > 0 {
			nx, ny, nz = nx/l, ny/l, nz/l
		}
		b.Normals = append(b.Normals, nx, ny, nz)
	}
	for _, f := range m.Faces {
		b.Indices = append(b.Indices, uint32(f[0]), uint32(f[1]), uint32(f[2]))
	}
	if len(m.Colors) == len(m.Points) && len(m.Colors) > 0 {
		b.Colors = make([]float32, 0, 4*len(m.Colors))
		for _, c := range m.Colors {
			b.Colors = append(b.Colors, float32(c[0]), float32(c[1]), float32(c[2]), float32(c[3]))
		}
	}
	return b
}

// VertexCount returns the number of vertices.
func (b *Buffers) VertexCount() int {
	return len(b.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (b *Buffers) TriangleCount() int {
	return len(b.Indices) / 3
}
