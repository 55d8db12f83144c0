// Package noise provides the coherent noise fields sampled by the shape
// generators. Generators never construct their own noise; a seeded Source
// is passed in so that identical seeds produce identical meshes.
package noise

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Source is a deterministic coherent noise field. Values are in [-1, 1].
// Implementations must be safe for concurrent sampling once constructed.
type Source interface {
	Noise2D(x, y float64) float64
	Noise3D(x, y, z float64) float64
}

// Compile-time interface checks.
var (
	_ Source = (*Simplex)(nil)
	_ Source = Constant(0)
	_ Source = Funcs{}
)

// DefaultSeed is used when a caller does not pick a seed.
const DefaultSeed int64 = 1

// Simplex is an OpenSimplex noise field.
type Simplex struct {
	os opensimplex.Noise
}

// New returns an OpenSimplex source for the given seed.
func New(seed int64) *Simplex {
	return &Simplex{os: opensimplex.New(seed)}
}

// Noise2D samples the 2D field.
func (s *Simplex) Noise2D(x, y float64) float64 {
	return clamp(s.os.Eval2(x, y))
}

// Noise3D samples the 3D field.
func (s *Simplex) Noise3D(x, y, z float64) float64 {
	return clamp(s.os.Eval3(x, y, z))
}

// Constant is a flat field that returns the same value everywhere.
type Constant float64

func (c Constant) Noise2D(_, _ float64) float64    { return clamp(float64(c)) }
func (c Constant) Noise3D(_, _, _ float64) float64 { return clamp(float64(c)) }

// Funcs adapts plain functions to a Source. A nil function samples as zero.
type Funcs struct {
	F2 func(x, y float64) float64
	F3 func(x, y, z float64) float64
}

func (f Funcs) Noise2D(x, y float64) float64 {
	if f.F2 == nil {
		return 0
	}
	return clamp(f.F2(x, y))
}

func (f Funcs) Noise3D(x, y, z float64) float64 {
	if f.F3 == nil {
		return 0
	}
	return clamp(f.F3(x, y, z))
}

func clamp(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
