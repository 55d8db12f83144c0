package shape

import (
	"fmt"

	"github.com/chazu/rhinophore/pkg/kernel"
	"github.com/chazu/rhinophore/pkg/noise"
	"github.com/chazu/rhinophore/pkg/profile"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

const (
	// baseRings is the number of rings at the root of a simple shape that
	// get the boosted flare and stay on the axis.
	baseRings = 2

	// baseBoost scales the flare of the base rings.
	baseBoost = 1.75
)

// Simple is a straight horn: a lightly wobbling shaft with a flared base,
// closed by a cosine-tapered tip.
func Simple(o Options, src noise.Source) (*kernel.Part, error) {
	if err := Validate(KindSimple, o).Err(); err != nil {
		return nil, err
	}
	m, err := kernel.Tube(SimplePath(o, src), SimpleRadius(o), kernel.TubeOptions{
		Name:       "simple rhinophore",
		LoopLength: o.LoopLength,
	})
	if err != nil {
		return nil, fmt.Errorf("simple: %w", err)
	}
	return kernel.NewPart(m), nil
}

// SimplePath returns the simple shape's centerline: Steps+1 shaft points
// followed by Steps tip points, 2*Steps+1 in all.
func SimplePath(o Options, src noise.Source) []v3.Vec {
	shaftLength := (1 - o.TipPercentage) * o.Length
	path := profile.NoisyShaft(o.Steps, shaftLength, o.Thickness, o.ShaftNoiseFactor, baseRings, src)
	return profile.ExtendCap(path, o.Steps, o.Length, o.TipPercentage)
}

// SimpleRadius returns the simple shape's radius by ring index.
func SimpleRadius(o Options) profile.RadiusFunc {
	flare := profile.Flare(o.Thickness, o.BaseFlarePercentage, o.BaseFalloff, o.Steps)
	shaft := profile.BaseBoost(flare, baseRings, baseBoost, o.Thickness, o.BaseFlarePercentage, o.BaseFalloff, o.Steps)
	return profile.ShaftWithTip(shaft, profile.CosineTip(o.Thickness, o.Steps), o.Steps)
}

// Ribbed is a curling horn with noisy ribs, tapering over its whole length.
func Ribbed(o Options, src noise.Source) (*kernel.Part, error) {
	if err := Validate(KindRibbed, o).Err(); err != nil {
		return nil, err
	}
	path := RibbedPath(o)
	m, err := kernel.Tube(path, RibbedRadius(o, len(path), src), kernel.TubeOptions{
		Name:       "ribbed rhinophore",
		LoopLength: o.LoopLength,
	})
	if err != nil {
		return nil, fmt.Errorf("ribbed: %w", err)
	}
	return kernel.NewPart(m), nil
}

// RibbedPath returns the curved centerline of a ribbed shape.
func RibbedPath(o Options) []v3.Vec {
	return profile.Curved(o.Length, o.Tension, o.RibIntervals, profile.DefaultSeedAngle)
}

// RibbedRadius returns the bumpy, tapered radius of a ribbed shape with
// pathLen rings.
func RibbedRadius(o Options, pathLen int, src noise.Source) profile.RadiusFunc {
	return profile.Tapered(profile.Bumpy(o.Thickness, o.Bumpiness, o.RibNoiseZoom, src), pathLen)
}
