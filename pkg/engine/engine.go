// Package engine evaluates rhinophore recipes. A recipe is a small Lisp
// program run in a sandboxed zygomys environment; its shape builtins
// declare the shapes of a scene.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/rhinophore/pkg/shape"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning is an advisory finding about a declared shape.
type EvalWarning struct {
	Shape   string
	Key     string
	Message string
}

func (w EvalWarning) String() string {
	return fmt.Sprintf("%s: %s", w.Key, w.Message)
}

// EvalResult bundles the full output of an evaluation.
type EvalResult struct {
	Scene    *shape.Scene
	Errors   []EvalError
	Warnings []EvalWarning
}

// OK reports whether the evaluation produced a scene.
func (r EvalResult) OK() bool {
	return r.Scene != nil && len(r.Errors) == 0
}

// sandboxMu serializes sandbox setup. zygomys writes package-level parser
// state while it initializes an environment.
var sandboxMu sync.Mutex

// Engine wraps the zygomys interpreter for one caller, such as an editor.
// Each call to Evaluate creates a fresh sandboxed environment so results
// depend only on the source. Calls may overlap, but a call that finishes
// after a newer one started returns ErrSuperseded; callers that must not
// cancel each other use separate engines.
type Engine struct {
	// Timeout bounds each evaluation; zero means DefaultTimeout.
	Timeout time.Duration

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs recipe source and returns the scene it declares.
//
// Return semantics:
//   - On success: returns scene + nil errors + nil error
//   - On parse/eval failure: returns nil scene + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*shape.Scene, []EvalError, error) {
	return e.EvaluateContext(context.Background(), source)
}

// EvaluateContext is Evaluate with a caller-controlled deadline. When ctx
// ends first its error is returned.
func (e *Engine) EvaluateContext(ctx context.Context, source string) (*shape.Scene, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		scene, evalErrs, err := e.evaluate(source)
		ch <- evalResult{scene: scene, errors: evalErrs, err: err}
	}()

	return e.await(ctx, ch, gen)
}

// Check evaluates source and adds range warnings for every declared shape.
func (e *Engine) Check(source string) (EvalResult, error) {
	scene, evalErrs, err := e.Evaluate(source)
	if err != nil {
		return EvalResult{}, err
	}
	result := EvalResult{Scene: scene, Errors: evalErrs}
	if scene == nil {
		return result, nil
	}
	for i, r := range scene.Shapes {
		label := r.Name
		if label == "" {
			label = fmt.Sprintf("#%d %s", i, r.Kind)
		}
		for _, w := range shape.Validate(r.Kind, r.Options).Warnings {
			result.Warnings = append(result.Warnings, EvalWarning{Shape: label, Key: w.Key, Message: w.Message})
		}
	}
	return result, nil
}

// evaluate performs the zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*shape.Scene, []EvalError, error) {
	scene := shape.NewScene()

	// Empty source is a valid recipe with no shapes.
	if strings.TrimSpace(source) == "" {
		return scene, nil, nil
	}

	// Sandbox mode keeps recipes away from the filesystem and syscalls.
	sandboxMu.Lock()
	env := zygo.NewZlispSandbox()
	registerBuiltins(env, scene)
	sandboxMu.Unlock()
	defer env.Stop()

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return scene, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into EvalError values,
// extracting a line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}

	// No line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
