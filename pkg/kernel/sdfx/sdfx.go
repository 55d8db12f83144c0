// Package sdfx builds meshes for closed primitives from signed distance
// fields using the github.com/deadsy/sdfx library. It is the alternative
// to the lathe for the lamellate cuff.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/rhinophore/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultCells controls marching cubes resolution along the longest axis.
const DefaultCells = 48

// Solid is a signed distance field that can be meshed.
type Solid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box of the field.
func (s *Solid) BoundingBox() sdf.Box3 {
	return s.s.BoundingBox()
}

// RoundedCylinder returns a cylinder standing on the XZ plane with its
// axis along +Y and edges rounded by edgeRadius.
func RoundedCylinder(diameter, height, edgeRadius float64) (*Solid, error) {
	s, err := sdf.Cylinder3D(height, diameter/2, edgeRadius)
	if err != nil {
		return nil, fmt.Errorf("%w: sdfx cylinder: %v", kernel.ErrInvalidArgument, err)
	}
	// sdf.Cylinder3D is centred on the origin along Z.
	upright := &Solid{s: sdf.Transform3D(s, sdf.RotateX(-math.Pi/2))}
	return upright.Translate(v3.Vec{Y: -upright.BoundingBox().Min.Y}), nil
}

// Translate moves a solid by offset.
func (s *Solid) Translate(offset v3.Vec) *Solid {
	return &Solid{s: sdf.Transform3D(s.s, sdf.Translate3d(offset))}
}

// ToMesh converts a solid to an indexed triangle mesh using marching cubes.
// Vertices shared by neighbouring triangles are welded.
func (s *Solid) ToMesh(name string, cells int) (*kernel.Mesh, error) {
	if cells <= 0 {
		cells = DefaultCells
	}
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s.s, renderer)
	if len(triangles) == 0 {
		return nil, fmt.Errorf("%w: sdfx solid %q produced no triangles", kernel.ErrInvalidArgument, name)
	}

	m := &kernel.Mesh{
		Name:   name,
		Points: make([]v3.Vec, 0, len(triangles)),
		Faces:  make([]kernel.Face, 0, len(triangles)),
	}
	index := make(map[v3.Vec]int, len(triangles))
	for _, tri := range triangles {
		var f kernel.Face
		for j := 0; j < 3; j++ {
			v := tri[j]
			idx, ok := index[v]
			if !ok {
				idx = len(m.Points)
				index[v] = idx
				m.Points = append(m.Points, v)
			}
			f[j] = idx
		}
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			continue
		}
		m.Faces = append(m.Faces, f)
	}
	return m, nil
}

// RoundedCylinderMesh is RoundedCylinder followed by ToMesh.
func RoundedCylinderMesh(name string, diameter, height, edgeRadius float64, cells int) (*kernel.Mesh, error) {
	s, err := RoundedCylinder(diameter, height, edgeRadius)
	if err != nil {
		return nil, err
	}
	return s.ToMesh(name, cells)
}
