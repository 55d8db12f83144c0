package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/chazu/rhinophore/pkg/config"
	"github.com/chazu/rhinophore/pkg/engine"
	"github.com/chazu/rhinophore/pkg/kernel"
	"github.com/chazu/rhinophore/pkg/preview"
	"github.com/chazu/rhinophore/pkg/shape"
	"github.com/chazu/rhinophore/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#D9774A", "#E6B422", "#8E5BA6", "#2E86C1",
	"#C0392B", "#17A589", "#F0A6CA", "#7D6608",
}

// App ties the recipe engine, scene files and the generators together.
// The CLI and the preview server both go through it.
type App struct {
	engine *engine.Engine
	log    *slog.Logger

	// Flatten merges each root shape and its children into one mesh.
	Flatten bool
}

// MeshData is one renderer mesh plus its display colour.
type MeshData struct {
	*kernel.Buffers
	Color string `json:"color"`
}

// EvalErrorData is a JSON-serializable error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of one generation.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

func newEvalResult() EvalResult {
	return EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
}

// fail records a whole-run error.
func (r *EvalResult) fail(msg string) {
	r.Errors = append(r.Errors, EvalErrorData{Message: msg})
}

// Err joins the result's errors, or returns nil.
func (r EvalResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		if e.Line > 0 {
			errs[i] = fmt.Errorf("line %d: %s", e.Line, e.Message)
		} else {
			errs[i] = errors.New(e.Message)
		}
	}
	return errors.Join(errs...)
}

// NewApp creates an App logging to slog's default logger.
func NewApp() *App {
	return NewAppWithLogger(slog.Default())
}

// NewAppWithLogger creates an App logging to logger.
func NewAppWithLogger(logger *slog.Logger) *App {
	return &App{
		engine: engine.NewEngine(),
		log:    logger,
	}
}

// Session returns an App with its own engine, sharing the logger and the
// Flatten setting. Evaluations in one session supersede each other; those
// in different sessions are independent.
func (a *App) Session() preview.Generator {
	return &App{engine: engine.NewEngine(), log: a.log, Flatten: a.Flatten}
}

// Evaluate runs recipe source and returns mesh data, errors and warnings.
func (a *App) Evaluate(source string) EvalResult {
	result := newEvalResult()

	// Step 1: evaluate the recipe into a scene.
	checked, err := a.engine.Check(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.log.Error("evaluate", "err", err)
		result.fail(err.Error())
		return result
	}

	// Step 2: convert eval errors and warnings.
	for _, e := range checked.Errors {
		result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
	}
	for _, w := range checked.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: w.Shape + ": " + w.String()})
	}
	if len(result.Errors) > 0 {
		return result
	}

	// Step 3: build and tessellate.
	a.render(checked.Scene, &result)
	return result
}

// LoadScene reads a scene file and generates it.
func (a *App) LoadScene(path string) EvalResult {
	result := newEvalResult()
	scene, err := config.Load(path)
	if err != nil {
		a.log.Error("load scene", "path", path, "err", err)
		result.fail(err.Error())
		return result
	}
	result.Warnings = append(result.Warnings, shapeWarnings(scene)...)
	a.render(scene, &result)
	return result
}

// Generate builds one shape request.
func (a *App) Generate(req shape.Request) EvalResult {
	result := newEvalResult()
	scene := shape.NewScene()
	if err := scene.Add(req); err != nil {
		result.fail(err.Error())
		return result
	}
	result.Warnings = append(result.Warnings, shapeWarnings(scene)...)
	a.render(scene, &result)
	return result
}

// render builds every shape of scene, tessellates the parts and appends
// coloured renderer buffers to result.
func (a *App) render(scene *shape.Scene, result *EvalResult) {
	start := time.Now()

	if err := scene.Validate().Err(); err != nil {
		result.fail(err.Error())
		return
	}

	parts, err := scene.Build()
	if err != nil {
		a.log.Error("build", "err", err)
		result.fail("generation failed: " + err.Error())
		return
	}

	var meshes []*kernel.Mesh
	if a.Flatten {
		for _, p := range parts {
			m, err := tessellate.Flatten(p)
			if err != nil {
				result.fail("tessellation failed: " + err.Error())
				return
			}
			meshes = append(meshes, m)
		}
	} else {
		meshes, err = tessellate.Tessellate(parts...)
		if err != nil {
			a.log.Error("tessellate", "err", err)
			result.fail("tessellation failed: " + err.Error())
			return
		}
	}

	points, faces := 0, 0
	for i, m := range meshes {
		hex := colorPalette[i%len(colorPalette)]
		c, err := parseHexColor(hex)
		if err != nil {
			result.fail(err.Error())
			return
		}
		result.Meshes = append(result.Meshes, MeshData{
			Buffers: m.Paint(c).Buffers(),
			Color:   hex,
		})
		points += m.VertexCount()
		faces += m.TriangleCount()
	}
	a.log.Info("generated",
		"shapes", scene.Len(),
		"meshes", len(meshes),
		"points", points,
		"faces", faces,
		"duration", time.Since(start))
}

// shapeWarnings lists range warnings in the same form the engine reports
// them for recipes.
func shapeWarnings(scene *shape.Scene) []EvalErrorData {
	var out []EvalErrorData
	for i, r := range scene.Shapes {
		label := r.Name
		if label == "" {
			label = fmt.Sprintf("#%d %s", i, r.Kind)
		}
		for _, w := range shape.Validate(r.Kind, r.Options).Warnings {
			out = append(out, EvalErrorData{Message: label + ": " + w.Key + ": " + w.Message})
		}
	}
	return out
}

// parseHexColor converts "#RRGGBB" into an opaque colour.
func parseHexColor(s string) (kernel.Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return kernel.Color{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return kernel.Color{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return kernel.Color{
		float64(v>>16&0xff) / 255,
		float64(v>>8&0xff) / 255,
		float64(v&0xff) / 255,
		1,
	}, nil
}

// GenerateRecipe implements preview.Generator.
func (a *App) GenerateRecipe(source string) (*preview.Frame, error) {
	return a.Evaluate(source).frame()
}

var _ preview.Sessioner = (*App)(nil)

// GenerateScene implements preview.Generator.
func (a *App) GenerateScene(path string) (*preview.Frame, error) {
	return a.LoadScene(path).frame()
}

// GenerateShape implements preview.Generator.
func (a *App) GenerateShape(req shape.Request) (*preview.Frame, error) {
	return a.Generate(req).frame()
}

func (r EvalResult) frame() (*preview.Frame, error) {
	if err := r.Err(); err != nil {
		return nil, err
	}
	f := &preview.Frame{Meshes: make([]*kernel.Buffers, len(r.Meshes))}
	for i, m := range r.Meshes {
		f.Meshes[i] = m.Buffers
	}
	for _, w := range r.Warnings {
		f.Warnings = append(f.Warnings, w.Message)
	}
	return f, nil
}
