package config

import (
	"encoding/json"
	"fmt"

	"github.com/chazu/rhinophore/pkg/shape"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Slider is the {min, max, value} form of a number option.
type Slider struct {
	Min   float64 `json:"min" toml:"min" yaml:"min"`
	Max   float64 `json:"max" toml:"max" yaml:"max"`
	Value float64 `json:"value" toml:"value" yaml:"value"`
}

// EncodeOptions controls how a scene is written.
type EncodeOptions struct {
	// Sliders writes adjustable number options in the {min, max, value} form.
	Sliders bool

	// Defaults writes every adjustable option the shape's kind reads, not
	// only those that differ from the defaults. Presets use it.
	Defaults bool
}

// FromScene converts a scene to its file form. Unless opts.Defaults is set,
// only options that differ from the defaults are written.
func FromScene(scene *shape.Scene, opts EncodeOptions) *File {
	seed := scene.Seed
	f := &File{Seed: &seed, Shapes: make([]ShapeEntry, 0, len(scene.Shapes))}

	defaults := shape.DefaultOptions()
	schema := shape.Schema()
	for _, r := range scene.Shapes {
		e := ShapeEntry{Name: r.Name, Kind: string(r.Kind)}
		if r.Seed != scene.Seed {
			s := r.Seed
			e.Seed = &s
		}
		if r.Offset.X != 0 || r.Offset.Y != 0 || r.Offset.Z != 0 {
			e.Offset = []float64{r.Offset.X, r.Offset.Y, r.Offset.Z}
		}
		for _, spec := range schema {
			v, _ := r.Options.Get(spec.Key)
			d, _ := defaults.Get(spec.Key)
			preset := opts.Defaults && !spec.Fixed && spec.UsedBy(r.Kind)
			if v == d && !preset {
				continue
			}
			if e.Options == nil {
				e.Options = map[string]any{}
			}
			if num, ok := v.(float64); ok && opts.Sliders && !spec.Fixed {
				e.Options[spec.Key] = Slider{Min: spec.Min, Max: spec.Max, Value: num}
				continue
			}
			e.Options[spec.Key] = v
		}
		f.Shapes = append(f.Shapes, e)
	}
	return f
}

// Marshal encodes the scene in format.
func Marshal(scene *shape.Scene, format Format, opts EncodeOptions) ([]byte, error) {
	f := FromScene(scene, opts)
	switch format {
	case FormatTOML:
		return toml.Marshal(f)
	case FormatYAML:
		return yaml.Marshal(f)
	case FormatJSON:
		return json.MarshalIndent(f, "", "  ")
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}
