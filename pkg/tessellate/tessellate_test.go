package tessellate_test

import (
	"errors"
	"testing"

	"github.com/chazu/rhinophore/pkg/kernel"
	"github.com/chazu/rhinophore/pkg/noise"
	"github.com/chazu/rhinophore/pkg/shape"
	"github.com/chazu/rhinophore/pkg/tessellate"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// makeTriangle creates a part holding a single triangle at the origin.
func makeTriangle(name string) *kernel.Part {
	return kernel.NewPart(&kernel.Mesh{
		Name:   name,
		Points: []v3.Vec{{}, {X: 1}, {Y: 1}},
		Faces:  []kernel.Face{{0, 1, 2}},
	})
}

func TestSingleTriangle(t *testing.T) {
	meshes, err := tessellate.Tessellate(makeTriangle("tri"))
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}
	if meshes[0].Name != "tri" {
		t.Errorf("Name = %q, want %q", meshes[0].Name, "tri")
	}
	if meshes[0].TriangleCount() != 1 {
		t.Errorf("TriangleCount = %d, want 1", meshes[0].TriangleCount())
	}
}

func TestOffsetsAccumulate(t *testing.T) {
	root := makeTriangle("root")
	root.Offset = v3.Vec{X: 10}
	child := root.Attach(makeTriangle("child"), v3.Vec{Y: 5})
	child.Attach(makeTriangle("grandchild"), v3.Vec{Z: 2})

	meshes, err := tessellate.Tessellate(root)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 3 {
		t.Fatalf("expected 3 meshes, got %d", len(meshes))
	}

	want := []struct {
		name   string
		origin v3.Vec
	}{
		{"root", v3.Vec{X: 10}},
		{"child", v3.Vec{X: 10, Y: 5}},
		{"grandchild", v3.Vec{X: 10, Y: 5, Z: 2}},
	}
	for i, w := range want {
		if meshes[i].Name != w.name {
			t.Errorf("mesh %d name = %q, want %q", i, meshes[i].Name, w.name)
		}
		if got := meshes[i].Points[0]; got != w.origin {
			t.Errorf("mesh %s origin = %v, want %v", w.name, got, w.origin)
		}
	}

	// The parts are untouched.
	if root.Mesh.Points[0] != (v3.Vec{}) {
		t.Errorf("root mesh was modified: %v", root.Mesh.Points[0])
	}
}

func TestSiblingsDoNotShareOffsets(t *testing.T) {
	root := &kernel.Part{Name: "group"}
	root.Attach(makeTriangle("a"), v3.Vec{X: 1})
	root.Attach(makeTriangle("b"), v3.Vec{X: -1})

	meshes, err := tessellate.Tessellate(root)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes (group has no geometry), got %d", len(meshes))
	}
	if meshes[1].Points[0].X != -1 {
		t.Errorf("sibling b origin x = %f, want -1", meshes[1].Points[0].X)
	}
}

func TestMultipleRoots(t *testing.T) {
	a := makeTriangle("a")
	b := makeTriangle("b")
	b.Offset = v3.Vec{Z: 3}

	meshes, err := tessellate.Tessellate(a, nil, b)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(meshes))
	}
	if meshes[1].Points[0].Z != 3 {
		t.Errorf("root b origin z = %f, want 3", meshes[1].Points[0].Z)
	}
}

func TestEmpty(t *testing.T) {
	meshes, err := tessellate.Tessellate()
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 0 {
		t.Fatalf("expected no meshes, got %d", len(meshes))
	}
}

func TestInvalidMesh(t *testing.T) {
	bad := kernel.NewPart(&kernel.Mesh{
		Name:   "bad",
		Points: []v3.Vec{{}},
		Faces:  []kernel.Face{{0, 1, 2}},
	})
	root := makeTriangle("root")
	root.Attach(bad, v3.Vec{})

	_, err := tessellate.Tessellate(root)
	if err == nil {
		t.Fatal("expected error for out-of-range face index")
	}
	if !errors.Is(err, kernel.ErrInvalidArgument) {
		t.Errorf("error %v does not wrap ErrInvalidArgument", err)
	}
}

func TestFlattenPulpit(t *testing.T) {
	o := shape.DefaultOptions()
	o.CentralShaft = true
	part, err := shape.Pulpit(o, noise.New(1))
	if err != nil {
		t.Fatalf("Pulpit failed: %v", err)
	}
	part.Offset = v3.Vec{X: 2}

	flat, err := tessellate.Flatten(part)
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}
	if err := flat.Validate(); err != nil {
		t.Fatalf("flattened mesh invalid: %v", err)
	}

	body := part.Mesh
	shaft := part.Children[0].Mesh
	if flat.VertexCount() != body.VertexCount()+shaft.VertexCount() {
		t.Errorf("VertexCount = %d, want %d", flat.VertexCount(), body.VertexCount()+shaft.VertexCount())
	}
	if flat.TriangleCount() != body.TriangleCount()+shaft.TriangleCount() {
		t.Errorf("TriangleCount = %d, want %d", flat.TriangleCount(), body.TriangleCount()+shaft.TriangleCount())
	}
	if flat.Name != "pulpit" {
		t.Errorf("Name = %q, want %q", flat.Name, "pulpit")
	}

	// Shaft faces are offset by the body's point count and the shaft sits
	// at the parent's offset.
	first := flat.Faces[body.TriangleCount()]
	if first[0] != shaft.Faces[0][0]+body.VertexCount() {
		t.Errorf("first shaft face index = %d, want %d", first[0], shaft.Faces[0][0]+body.VertexCount())
	}
	p := flat.Points[body.VertexCount()]
	q := shaft.Points[0]
	if p.X != q.X+2 || p.Y != q.Y || p.Z != q.Z {
		t.Errorf("shaft point = %v, want %v shifted by x+2", p, q)
	}
}
