package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chazu/rhinophore/pkg/shape"
)

// DefaultTimeout bounds one evaluation when Engine.Timeout is zero.
const DefaultTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a recipe runs past the engine's timeout.
	ErrTimeout = errors.New("evaluation timed out")

	// ErrSuperseded is returned to a caller whose evaluation finished after
	// a newer one had started.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

// evalResult carries an evaluation's output through a channel.
type evalResult struct {
	scene  *shape.Scene
	errors []EvalError
	err    error
}

func (e *Engine) timeout() time.Duration {
	if e.Timeout > 0 {
		return e.Timeout
	}
	return DefaultTimeout
}

// current reports whether gen is the latest evaluation.
func (e *Engine) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}

// await returns the result of evaluation gen from ch. It gives up when ctx
// is done or the timeout passes; the evaluating goroutine may still be
// running then, and its result is dropped by the generation check.
func (e *Engine) await(ctx context.Context, ch <-chan evalResult, gen uint64) (*shape.Scene, []EvalError, error) {
	limit := e.timeout()
	timer := time.NewTimer(limit)
	defer timer.Stop()

	select {
	case res := <-ch:
		if !e.current(gen) {
			return nil, nil, ErrSuperseded
		}
		return res.scene, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, limit)
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}
