package kernel

import (
	"fmt"
	"math"

	"github.com/chazu/rhinophore/pkg/noise"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// HollowOptions describes a double-walled vessel rising along +Y.
type HollowOptions struct {
	Name string

	Height       float64 // nominal height before skew
	BottomRadius float64 // radius of ring 0
	TopRadius    float64 // radius of the last ring
	Wall         float64 // inner wall offset toward the axis

	HorizontalZoom float64 // noise zoom on x and z of the clean ring position
	VerticalZoom   float64 // noise zoom on y
	RadiusNoise    float64 // amplitude of the radius noise
	Skew           float64 // noise zoom for the per-ring height skew

	Steps      int // ring count is Steps+1
	LoopLength int
}

// HollowSolid builds the outer and inner walls of a vessel and seals them
// with a rim at the last ring. The outer wall comes first in the point
// buffer, followed by the inner wall. The base ring is left open.
//
// Every outer point's radius is the linearly interpolated base radius
// plus 3D noise keyed on its clean position. Ring i>0 sits above the same
// slot of ring i-1 by (1+noise2D)*Height/Steps, so successive rings are not
// parallel and the solid leans.
func HollowSolid(opts HollowOptions, src noise.Source) (*Mesh, error) {
	if opts.Steps < 1 {
		return nil, fmt.Errorf("%w: hollow solid needs at least 1 step, got %d", ErrInvalidArgument, opts.Steps)
	}
	if err := checkGrid("hollow solid", opts.Steps, opts.LoopLength); err != nil {
		return nil, err
	}
	if opts.Wall < 0 {
		return nil, fmt.Errorf("%w: negative wall thickness %f", ErrInvalidArgument, opts.Wall)
	}

	loop := opts.LoopLength
	n := (opts.Steps + 1) * loop
	outer := &Mesh{Name: opts.Name, Points: make([]v3.Vec, 0, n)}
	inner := &Mesh{Name: opts.Name + " inner", Points: make([]v3.Vec, 0, n)}

	yStep := opts.Height / float64(opts.Steps)
	for i := 0; i <= opts.Steps; i++ {
		baseY := float64(i) * yStep
		baseRadius := opts.BottomRadius + (opts.TopRadius-opts.BottomRadius)*float64(i)/float64(opts.Steps)

		for j := 0; j < loop; j++ {
			a := RingAngle(j, loop)
			cos, sin := math.Cos(a), math.Sin(a)

			bx, bz := cos*baseRadius, sin*baseRadius
			r := baseRadius + opts.RadiusNoise*src.Noise3D(bx*opts.HorizontalZoom, bz*opts.HorizontalZoom, baseY*opts.VerticalZoom)
			r = math.Max(0, r)
			x, z := cos*r, sin*r

			y := baseY
			if i > 0 {
				prev := outer.Points[len(outer.Points)-loop].Y
				y = prev + (src.Noise2D(x*opts.Skew, z*opts.Skew)+1)*yStep
			}
			outer.Points = append(outer.Points, v3.Vec{X: x, Y: y, Z: z})

			ri := math.Max(0, r-opts.Wall)
			inner.Points = append(inner.Points, v3.Vec{X: cos * ri, Y: y, Z: sin * ri})
		}
	}

	var err error
	if outer.Faces, err = GenerateFaces(len(outer.Points), loop, Outward); err != nil {
		return nil, fmt.Errorf("hollow solid outer wall: %w", err)
	}
	if inner.Faces, err = GenerateFaces(len(inner.Points), loop, Inward); err != nil {
		return nil, fmt.Errorf("hollow solid inner wall: %w", err)
	}

	m := Merge(outer, inner)
	m.Faces = append(m.Faces, Rim(len(outer.Points), loop)...)
	return m, nil
}

// Rim seals the top of a merged hollow solid whose outer wall has
// outerLen points. Each outer point of the last ring is joined to the inner
// point on the same slot and to the next slot, with faces pointing up and
// away from the vessel.
func Rim(outerLen, loopLength int) []Face {
	lastOuter := outerLen - loopLength
	return StitchLoops(lastOuter, lastOuter+outerLen, loopLength, Outward)
}
