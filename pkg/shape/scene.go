package shape

import (
	"fmt"

	"github.com/chazu/rhinophore/pkg/kernel"
	"github.com/chazu/rhinophore/pkg/noise"
)

// Scene is an ordered list of shapes to build together.
type Scene struct {
	Seed   int64 // seed for shapes that do not set their own
	Shapes []Request
}

// NewScene returns an empty scene with the default seed.
func NewScene() *Scene {
	return &Scene{Seed: noise.DefaultSeed}
}

// Add appends r. Named shapes must be unique within a scene.
func (s *Scene) Add(r Request) error {
	if r.Name != "" && s.Lookup(r.Name) != nil {
		return fmt.Errorf("shape %q already defined", r.Name)
	}
	s.Shapes = append(s.Shapes, r)
	return nil
}

// Lookup returns the shape named name, or nil.
func (s *Scene) Lookup(name string) *Request {
	for i := range s.Shapes {
		if s.Shapes[i].Name == name {
			return &s.Shapes[i]
		}
	}
	return nil
}

// Len returns the number of shapes.
func (s *Scene) Len() int {
	return len(s.Shapes)
}

// Validate runs Validate on every shape and labels findings with the
// shape's name (or its index when unnamed).
func (s *Scene) Validate() ValidationResult {
	var result ValidationResult
	for i, r := range s.Shapes {
		label := r.Name
		if label == "" {
			label = fmt.Sprintf("#%d %s", i, r.Kind)
		}
		res := Validate(r.Kind, r.Options)
		for _, e := range res.Errors {
			e.Message = label + ": " + e.Message
			result.Errors = append(result.Errors, e)
		}
		for _, w := range res.Warnings {
			w.Message = label + ": " + w.Message
			result.Warnings = append(result.Warnings, w)
		}
	}
	return result
}

// Build generates every shape in order. Each shape gets its own noise
// source for its seed, so shapes do not affect each other.
func (s *Scene) Build() ([]*kernel.Part, error) {
	parts := make([]*kernel.Part, 0, len(s.Shapes))
	for i, r := range s.Shapes {
		p, err := r.Build()
		if err != nil {
			if r.Name != "" {
				return nil, fmt.Errorf("shape %q: %w", r.Name, err)
			}
			return nil, fmt.Errorf("shape %d (%s): %w", i, r.Kind, err)
		}
		parts = append(parts, p)
	}
	return parts, nil
}
