package kernel

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Face is a triangle given as three indices into Mesh.Points.
// Counter-clockwise order (right-hand rule) faces outward.
type Face [3]int

// Color is an RGBA vertex colour with components in [0, 1].
type Color [4]float64

// White is the colour given to uncoloured points when meshes are merged
// with coloured ones.
var White = Color{1, 1, 1, 1}

// Mesh is a triangle mesh in ring-major point order.
// Colors is either empty or parallel to Points.
type Mesh struct {
	Name   string   `json:"name,omitempty"`
	Points []v3.Vec `json:"points"`
	Colors []Color  `json:"colors,omitempty"`
	Faces  []Face   `json:"faces"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Points)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Points) == 0
}

// Validate checks that every face index is in range and that colours, if
// present, are parallel to the points.
func (m *Mesh) Validate() error {
	n := len(m.Points)
	if len(m.Colors) != 0 && len(m.Colors) != n {
		return fmt.Errorf("%w: mesh %q has %d colors for %d points", ErrInvalidArgument, m.Name, len(m.Colors), n)
	}
	for fi, f := range m.Faces {
		for _, idx := range f {
			if idx < 0 || idx >= n {
				return fmt.Errorf("%w: mesh %q face %d index %d out of range [0,%d)", ErrInvalidArgument, m.Name, fi, idx, n)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of m.
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{
		Name:   m.Name,
		Points: append([]v3.Vec(nil), m.Points...),
		Faces:  append([]Face(nil), m.Faces...),
	}
	if len(m.Colors) > 0 {
		out.Colors = append([]Color(nil), m.Colors...)
	}
	return out
}

// Merge combines two meshes into one index space. The points of b follow
// those of a and every index of b's faces is shifted by len(a.Points).
// Neither input is modified.
func Merge(a, b *Mesh) *Mesh {
	offset := len(a.Points)
	out := &Mesh{
		Name:   a.Name,
		Points: make([]v3.Vec, 0, offset+len(b.Points)),
		Faces:  make([]Face, 0, len(a.Faces)+len(b.Faces)),
	}
	out.Points = append(out.Points, a.Points...)
	out.Points = append(out.Points, b.Points...)
	out.Faces = append(out.Faces, a.Faces...)
	for _, f := range b.Faces {
		out.Faces = append(out.Faces, Face{f[0] + offset, f[1] + offset, f[2] + offset})
	}

	if len(a.Colors) > 0 || len(b.Colors) > 0 {
		out.Colors = make([]Color, 0, len(out.Points))
		out.Colors = append(out.Colors, colorsOrWhite(a)...)
		out.Colors = append(out.Colors, colorsOrWhite(b)...)
	}
	return out
}

func colorsOrWhite(m *Mesh) []Color {
	if len(m.Colors) == len(m.Points) {
		return m.Colors
	}
	c := make([]Color, len(m.Points))
	for i := range c {
		c[i] = White
	}
	return c
}

// Translate returns a copy of m moved by offset.
func (m *Mesh) Translate(offset v3.Vec) *Mesh {
	out := m.Clone()
	if offset == (v3.Vec{}) {
		return out
	}
	t := sdf.Translate3d(offset)
	for i, p := range out.Points {
		out.Points[i] = t.MulPosition(p)
	}
	return out
}

// Paint returns a copy of m with every point set to c.
func (m *Mesh) Paint(c Color) *Mesh {
	out := m.Clone()
	out.Colors = make([]Color, len(out.Points))
	for i := range out.Colors {
		out.Colors[i] = c
	}
	return out
}

// BoundingBox returns the axis-aligned bounds of the points.
// An empty mesh has a zero box.
func (m *Mesh) BoundingBox() sdf.Box3 {
	if len(m.Points) == 0 {
		return sdf.Box3{}
	}
	lo, hi := m.Points[0], m.Points[0]
	for _, p := range m.Points[1:] {
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return sdf.Box3{Min: lo, Max: hi}
}

// Triangle returns face i as a triangle.
func (m *Mesh) Triangle(i int) sdf.Triangle3 {
	f := m.Faces[i]
	return sdf.Triangle3{m.Points[f[0]], m.Points[f[1]], m.Points[f[2]]}
}

// VertexNormals returns area-weighted vertex normals. Vertices that touch
// no face, or only zero-area faces, get the zero vector.
func (m *Mesh) VertexNormals() []v3.Vec {
	normals := make([]v3.Vec, len(m.Points))
	for i, f := range m.Faces {
		t := m.Triangle(i)
		// The unnormalised cross product weights by twice the area.
		n := t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))
		for _, idx := range f {
			normals[idx] = normals[idx].Add(n)
		}
	}
	for i, n := range normals {
		if n.Length() > 0 {
			normals[i] = n.Normalize()
		}
	}
	return normals
}
