// Package kernel is the procedural mesh kernel: it stitches rings of points
// into triangle surfaces, extrudes tubes around paths, builds hollow
// double-walled solids and lathes profiles. All operations are pure
// functions of their inputs; nothing here keeps state between calls.
package kernel

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidArgument reports a violated kernel contract, such as a ring
// with fewer than three points.
var ErrInvalidArgument = errors.New("invalid argument")

// MinLoopLength is the smallest ring that encloses an area.
const MinLoopLength = 3

// Size caps. Point counts past them overflow int or exhaust memory.
const (
	MaxLoopLength = 4096
	MaxRings      = 1 << 16
)

// checkGrid validates a mesh of rings rings with loop points each.
func checkGrid(what string, rings, loop int) error {
	switch {
	case loop < MinLoopLength:
		return fmt.Errorf("%w: %s loop length %d, need at least %d", ErrInvalidArgument, what, loop, MinLoopLength)
	case loop > MaxLoopLength:
		return fmt.Errorf("%w: %s loop length %d, at most %d", ErrInvalidArgument, what, loop, MaxLoopLength)
	case rings > MaxRings:
		return fmt.Errorf("%w: %s has %d rings, at most %d", ErrInvalidArgument, what, rings, MaxRings)
	}
	return nil
}

// RingAngle returns the angle of slot j on a ring of n points. On a ring
// around +Y, slot angles turn from +X toward +Z.
func RingAngle(j, n int) float64 {
	return float64(j) * 2 * math.Pi / float64(n)
}
