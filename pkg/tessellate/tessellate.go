// Package tessellate walks a tree of parts and produces world-space
// triangle meshes. One mesh is produced per part that carries geometry.
package tessellate

import (
	"fmt"

	"github.com/chazu/rhinophore/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// transformStack accumulates part offsets during tree traversal.
type transformStack struct {
	translations []v3.Vec
}

func newTransformStack() *transformStack {
	return &transformStack{}
}

func (ts *transformStack) pushTranslation(v v3.Vec) {
	ts.translations = append(ts.translations, v)
}

func (ts *transformStack) pop() {
	if len(ts.translations) > 0 {
		ts.translations = ts.translations[:len(ts.translations)-1]
	}
}

// accumulatedTranslation returns the sum of all translations on the stack.
func (ts *transformStack) accumulatedTranslation() v3.Vec {
	var sum v3.Vec
	for _, t := range ts.translations {
		sum = sum.Add(t)
	}
	return sum
}

// Tessellate walks each root part and returns one world-space mesh per part
// with geometry, parents before children. Parts without a mesh group their
// children. The tessellator is read-only and never mutates the parts.
func Tessellate(roots ...*kernel.Part) ([]*kernel.Mesh, error) {
	var meshes []*kernel.Mesh
	ts := newTransformStack()

	for i, root := range roots {
		if root == nil {
			continue
		}
		collected, err := walkPart(root, ts)
		if err != nil {
			return nil, fmt.Errorf("tessellate: error walking root %d (%s): %w", i, root.Name, err)
		}
		meshes = append(meshes, collected...)
	}

	return meshes, nil
}

// Flatten tessellates the roots and merges every mesh into one, so that a
// child is composed into its parent's point buffer. The result is named
// after the first root.
func Flatten(roots ...*kernel.Part) (*kernel.Mesh, error) {
	meshes, err := Tessellate(roots...)
	if err != nil {
		return nil, err
	}
	out := &kernel.Mesh{}
	for _, m := range meshes {
		out = kernel.Merge(out, m)
	}
	for _, root := range roots {
		if root != nil {
			out.Name = root.Name
			break
		}
	}
	return out, nil
}

// walkPart pushes the part's offset, emits its mesh, recurses into its
// children, then pops.
func walkPart(p *kernel.Part, ts *transformStack) ([]*kernel.Mesh, error) {
	ts.pushTranslation(p.Offset)
	defer ts.pop()

	var meshes []*kernel.Mesh
	if p.Mesh != nil {
		if err := p.Mesh.Validate(); err != nil {
			return nil, fmt.Errorf("part %q: %w", p.Name, err)
		}
		m := p.Mesh.Translate(ts.accumulatedTranslation())

		// Set the part name: prefer the part's Name, fall back to the mesh's.
		if p.Name != "" {
			m.Name = p.Name
		}
		meshes = append(meshes, m)
	}

	for _, child := range p.Children {
		if child == nil {
			continue
		}
		collected, err := walkPart(child, ts)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}
