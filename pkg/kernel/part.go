package kernel

import v3 "github.com/deadsy/sdfx/vec/v3"

// Part places a mesh relative to its parent. The relation is a translation
// only; there is no live scene graph, and tessellate flattens a Part tree
// into world-space meshes.
type Part struct {
	Name     string
	Mesh     *Mesh
	Offset   v3.Vec // translation relative to the parent part
	Children []*Part
}

// NewPart returns a part for m at the parent's origin, named after m.
func NewPart(m *Mesh) *Part {
	return &Part{Name: m.Name, Mesh: m}
}

// Attach adds child at offset and returns it.
func (p *Part) Attach(child *Part, offset v3.Vec) *Part {
	child.Offset = offset
	p.Children = append(p.Children, child)
	return child
}

// Count returns the number of parts in the tree rooted at p.
func (p *Part) Count() int {
	n := 1
	for _, c := range p.Children {
		n += c.Count()
	}
	return n
}
