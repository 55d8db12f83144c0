package shape

import (
	"fmt"

	"github.com/chazu/rhinophore/pkg/kernel"
	"github.com/chazu/rhinophore/pkg/noise"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Pulpit is a leaning double-walled cup. With CentralShaft set, a simple
// horn built from the same options grows out of its open base.
func Pulpit(o Options, src noise.Source) (*kernel.Part, error) {
	if err := Validate(KindPulpit, o).Err(); err != nil {
		return nil, err
	}

	m, err := kernel.HollowSolid(PulpitHollow(o), src)
	if err != nil {
		return nil, fmt.Errorf("pulpit: %w", err)
	}
	root := kernel.NewPart(m)

	if o.CentralShaft {
		shaft, err := Simple(o, src)
		if err != nil {
			return nil, fmt.Errorf("pulpit central shaft: %w", err)
		}
		root.Attach(shaft, v3.Vec{})
	}
	return root, nil
}

// PulpitHollow maps shape options onto the hollow solid builder.
func PulpitHollow(o Options) kernel.HollowOptions {
	return kernel.HollowOptions{
		Name:           "pulpit",
		Height:         o.Length * o.PulpitLengthPercentage,
		BottomRadius:   o.PulpitThickness * o.BaseRadiusPercentage,
		TopRadius:      o.PulpitThickness,
		Wall:           o.WallThickness,
		HorizontalZoom: o.HorizontalNoiseZoom,
		VerticalZoom:   o.VerticalNoiseZoom,
		RadiusNoise:    o.RadiusNoiseFactor,
		Skew:           o.PulpitSkewFactor,
		Steps:          o.PulpitSteps,
		LoopLength:     o.PulpitLoopLength,
	}
}
