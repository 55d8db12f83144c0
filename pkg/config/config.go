// Package config reads and writes scene files. A scene file lists shapes
// with their kind, seed, offset and options, in TOML, YAML or JSON.
//
// Option values may be given bare or in the {min, max, value} form the
// option sliders use; only value is read from the latter.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/rhinophore/pkg/shape"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for file formats with no decoder.
var ErrUnsupportedFormat = errors.New("unsupported scene format")

// Format names a scene file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Decoder is implemented by the toml, yaml and json decoders.
type Decoder interface {
	Decode(v any) error
}

// DecoderFunc creates a Decoder reading from r.
type DecoderFunc func(r io.Reader) Decoder

var decoders = map[Format]DecoderFunc{
	FormatTOML: func(r io.Reader) Decoder { return toml.NewDecoder(r) },
	FormatYAML: func(r io.Reader) Decoder { return yaml.NewDecoder(r) },
	FormatJSON: func(r io.Reader) Decoder { return json.NewDecoder(r) },
}

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
}

// File is the on-disk form of a scene.
type File struct {
	Seed   *int64       `json:"seed,omitempty" toml:"seed,omitempty" yaml:"seed,omitempty"`
	Shapes []ShapeEntry `json:"shape" toml:"shape" yaml:"shape"`
}

// ShapeEntry is one shape in a scene file.
type ShapeEntry struct {
	Name    string         `json:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`
	Kind    string         `json:"kind" toml:"kind" yaml:"kind"`
	Seed    *int64         `json:"seed,omitempty" toml:"seed,omitempty" yaml:"seed,omitempty"`
	Offset  []float64      `json:"offset,omitempty" toml:"offset,omitempty" yaml:"offset,omitempty"`
	Options map[string]any `json:"options,omitempty" toml:"options,omitempty" yaml:"options,omitempty"`
}

// Load reads the scene file at path, choosing the decoder by extension.
func Load(path string) (*shape.Scene, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	scene, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return scene, nil
}

// Parse decodes a scene file held in data.
func Parse(data []byte, format Format) (*shape.Scene, error) {
	newDecoder, ok := decoders[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	var f File
	if err := newDecoder(bytes.NewReader(data)).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	return f.Scene()
}

// Scene converts the file into a scene. Shapes without a seed take the
// file's seed, or the default seed when the file has none.
func (f *File) Scene() (*shape.Scene, error) {
	scene := shape.NewScene()
	if f.Seed != nil {
		scene.Seed = *f.Seed
	}
	for i, e := range f.Shapes {
		req, err := e.request(scene.Seed)
		if err != nil {
			if e.Name != "" {
				return nil, fmt.Errorf("shape %q: %w", e.Name, err)
			}
			return nil, fmt.Errorf("shape %d: %w", i, err)
		}
		if err := scene.Add(req); err != nil {
			return nil, err
		}
	}
	return scene, nil
}

func (e ShapeEntry) request(defaultSeed int64) (shape.Request, error) {
	kind, err := shape.ParseKind(e.Kind)
	if err != nil {
		return shape.Request{}, err
	}
	req := shape.NewRequest(kind)
	req.Name = e.Name
	req.Seed = defaultSeed
	if e.Seed != nil {
		req.Seed = *e.Seed
	}

	switch len(e.Offset) {
	case 0:
	case 3:
		req.Offset = v3.Vec{X: e.Offset[0], Y: e.Offset[1], Z: e.Offset[2]}
	default:
		return shape.Request{}, fmt.Errorf("offset needs 3 coordinates, got %d", len(e.Offset))
	}

	values := make(map[string]any, len(e.Options))
	for k, v := range e.Options {
		values[k] = optionValue(v)
	}
	if err := req.Options.SetAll(values); err != nil {
		return shape.Request{}, err
	}
	if err := shape.Validate(kind, req.Options).Err(); err != nil {
		return shape.Request{}, err
	}
	return req, nil
}

// optionValue unwraps the {min, max, value} form.
func optionValue(v any) any {
	switch m := v.(type) {
	case map[string]any:
		if inner, ok := m["value"]; ok {
			return inner
		}
	case map[any]any:
		if inner, ok := m["value"]; ok {
			return inner
		}
	}
	return v
}
