package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/rhinophore/pkg/shape"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites recipe source into something zygomys accepts:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keywords never
//     collide with user bindings of the same name.
//  2. Kebab-case identifiers become underscores (default-seed ->
//     default_seed). zygomys reads a bare hyphen as subtraction.
//  3. ; line comments become // comments.
//
// String literals are copied through untouched.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		switch {
		case b[i] == '"':
			j := skipQuoted(b, i, '"', true)
			result = append(result, b[i:j]...)
			i = j
			continue
		case b[i] == '`':
			j := skipQuoted(b, i, '`', false)
			result = append(result, b[i:j]...)
			i = j
			continue
		case b[i] == ';':
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		case b[i] == ':' && i+1 < len(b) && b[i+1] == '=':
			result = append(result, b[i], b[i+1])
			i += 2
			continue
		case b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, kwPrefix...)
			result = append(result, b[i+1:j]...)
			result = append(result, '"')
			i = j
			continue
		case b[i] == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

// skipQuoted returns the index just past the literal opened at b[start].
func skipQuoted(b []byte, start int, quote byte, escapes bool) int {
	i := start + 1
	for i < len(b) && b[i] != quote {
		if escapes && b[i] == '\\' && i+1 < len(b) {
			i += 2
			continue
		}
		i++
	}
	if i < len(b) {
		i++
	}
	return i
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types
// ---------------------------------------------------------------------------

// sexpVec3 carries a point between builtins.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpShape is returned by the shape builtins so recipes can print or bind
// what they declared.
type sexpShape struct {
	name string
	kind shape.Kind
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	if s.name != "" {
		return fmt.Sprintf("(%s %q)", s.kind, s.name)
	}
	return fmt.Sprintf("(%s)", s.kind)
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW reports whether s is a preprocessed keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds a mixed positional and keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	order      []string // keyword names in source order
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments. A
// trailing keyword with no value is recorded as a flag set to true.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			i++
			continue
		}
		if _, seen := result.kw[name]; !seen {
			result.order = append(result.order, name)
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i += 2
		} else {
			result.kw[name] = &zygo.SexpBool{Val: true}
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a SexpInt or SexpFloat.
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt64 extracts an integer from a SexpInt.
func toInt64(s zygo.Sexp) (int64, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString accepts both :ribbed and "ribbed".
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toVec3 accepts a vec3 value or a list or array of three numbers.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
	}
	if len(items) != 3 {
		return v3.Vec{}, fmt.Errorf("expected 3 coordinates, got %d", len(items))
	}
	var c [3]float64
	for i, item := range items {
		if c[i], err = toFloat64(item); err != nil {
			return v3.Vec{}, err
		}
	}
	return v3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}

// toOptionValue converts a Sexp into a value shape.Options.Set accepts.
func toOptionValue(s zygo.Sexp) (any, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return v.Val, nil
	case *zygo.SexpFloat:
		return v.Val, nil
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpStr:
		return strings.TrimPrefix(v.S, kwPrefix), nil
	}
	return nil, fmt.Errorf("unsupported value %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// reservedKeywords are shape builtin keywords that are not options.
var reservedKeywords = map[string]bool{"at": true, "seed": true, "kind": true, "name": true}

// registerBuiltins installs the recipe builtins into a zygomys environment.
// Every shape builtin appends a request to scene.
//
// Source code must be preprocessed with preprocessSource() first so that
// :keyword tokens arrive as recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, scene *shape.Scene) {

	// -----------------------------------------------------------------------
	// (vec3 x y z)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (default-seed 42) sets the seed for shapes declared after it.
	// -----------------------------------------------------------------------
	env.AddFunction("default_seed", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("default-seed requires exactly 1 argument, got %d", len(args))
		}
		seed, err := toInt64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("default-seed: %w", err)
		}
		scene.Seed = seed
		return &zygo.SexpInt{Val: seed}, nil
	})

	// -----------------------------------------------------------------------
	// (simple "left" :length 6 :at (vec3 -1 0 0) :seed 3)
	// (ribbed ...) (lamellate ...) (pulpit ...)
	// -----------------------------------------------------------------------
	for _, kind := range shape.Kinds() {
		kind := kind
		env.AddFunction(string(kind), func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			return declareShape(scene, kind, parseArgs(args))
		})
	}

	// -----------------------------------------------------------------------
	// (rhinophore :kind :ribbed "left" :length 6)
	// -----------------------------------------------------------------------
	env.AddFunction("rhinophore", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		v, ok := pa.kw["kind"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("rhinophore requires :kind")
		}
		s, err := toKeywordString(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rhinophore: kind: %w", err)
		}
		kind, err := shape.ParseKind(s)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rhinophore: %w", err)
		}
		return declareShape(scene, kind, pa)
	})
}

// declareShape turns parsed builtin arguments into a request, validates its
// options and adds it to the scene.
func declareShape(scene *shape.Scene, kind shape.Kind, pa kwArgs) (zygo.Sexp, error) {
	req := shape.NewRequest(kind)
	req.Seed = scene.Seed

	label := string(kind)
	if len(pa.positional) > 1 {
		return zygo.SexpNull, fmt.Errorf("%s: expected at most one positional name, got %d", label, len(pa.positional))
	}
	nameArg, hasName := pa.kw["name"]
	if len(pa.positional) == 1 {
		nameArg, hasName = pa.positional[0], true
	}
	if hasName {
		s, err := toString(nameArg)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: name: %w", label, err)
		}
		req.Name = s
		label = fmt.Sprintf("%s %q", kind, s)
	}

	if v, ok := pa.kw["seed"]; ok {
		seed, err := toInt64(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: seed: %w", label, err)
		}
		req.Seed = seed
	}
	if v, ok := pa.kw["at"]; ok {
		at, err := toVec3(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: at: %w", label, err)
		}
		req.Offset = at
	}

	for _, key := range pa.order {
		if reservedKeywords[key] {
			continue
		}
		value, err := toOptionValue(pa.kw[key])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %s: %w", label, key, err)
		}
		if err := req.Options.Set(key, value); err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", label, err)
		}
	}

	if err := shape.Validate(kind, req.Options).Err(); err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", label, err)
	}
	if err := scene.Add(req); err != nil {
		return zygo.SexpNull, err
	}
	return &sexpShape{name: req.Name, kind: kind}, nil
}
