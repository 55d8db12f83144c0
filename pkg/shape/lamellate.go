package shape

import (
	"fmt"
	"math"

	"github.com/chazu/rhinophore/pkg/kernel"
	"github.com/chazu/rhinophore/pkg/kernel/sdfx"
	"github.com/chazu/rhinophore/pkg/noise"
	"github.com/chazu/rhinophore/pkg/profile"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

const (
	// tipRings is the ring count of the lamellate tip, sampled every pi/10
	// from -pi to 0.
	tipRings = 11

	// tipFlatten caps z on the tip so the lens is flattened on one side.
	tipFlatten = 0.5

	// tipLift divides the tip length to place the tip centre above the shaft.
	tipLift = 2.1
)

// Lamellate is a straight flared shaft carrying a flattened lens-shaped
// tip, with an optional rounded cuff around the base. The tip and cuff are
// child parts of the shaft.
func Lamellate(o Options, src noise.Source) (*kernel.Part, error) {
	if err := Validate(KindLamellate, o).Err(); err != nil {
		return nil, err
	}

	shaftLength := (1 - o.TipPercentage) * o.Length
	tipLength := o.Length * o.TipPercentage

	shaft, err := kernel.Tube(
		profile.Shaft(o.Steps, shaftLength),
		profile.Flare(o.Thickness, o.BaseFlarePercentage, o.BaseFalloff, o.Steps),
		kernel.TubeOptions{Name: "lamellate shaft", LoopLength: o.LoopLength},
	)
	if err != nil {
		return nil, fmt.Errorf("lamellate shaft: %w", err)
	}
	root := kernel.NewPart(shaft)

	tip, err := LamellateTip(tipLength, o.Thickness, o.TipLoopLength)
	if err != nil {
		return nil, err
	}
	root.Attach(kernel.NewPart(tip), v3.Vec{Y: shaftLength + tipLength/tipLift})

	if o.Cuff {
		cuff, err := Cuff(o)
		if err != nil {
			return nil, err
		}
		root.Attach(kernel.NewPart(cuff), v3.Vec{})
	}
	return root, nil
}

// LamellateTip builds the lens-shaped tip centred on its own origin. Ring k
// sits at theta = -pi + k*pi/10, at height cos(theta)*tipLength/2 with
// radius max(0, sin(theta-pi) - 0.1*y)*2*thickness; z is capped at 0.5.
// The top ring collapses onto the axis; the bottom ring keeps a small
// opening of about 0.1*tipLength*thickness.
func LamellateTip(tipLength, thickness float64, loopLength int) (*kernel.Mesh, error) {
	if loopLength < kernel.MinLoopLength || loopLength > kernel.MaxLoopLength {
		return nil, fmt.Errorf("%w: tip loop length %d", kernel.ErrInvalidArgument, loopLength)
	}
	m := &kernel.Mesh{Name: "lamellate tip", Points: make([]v3.Vec, 0, tipRings*loopLength)}
	for k := 0; k < tipRings; k++ {
		theta := -math.Pi + float64(k)*math.Pi/float64(tipRings-1)
		y := math.Cos(theta) * tipLength / 2
		r := math.Max(0, math.Sin(theta-math.Pi)-y*0.1) * thickness * 2
		for j := 0; j < loopLength; j++ {
			a := kernel.RingAngle(j, loopLength)
			m.Points = append(m.Points, v3.Vec{
				X: r * math.Cos(a),
				Y: y,
				Z: math.Min(tipFlatten, r*math.Sin(a)),
			})
		}
	}

	faces, err := kernel.GenerateFaces(len(m.Points), loopLength, kernel.Outward)
	if err != nil {
		return nil, fmt.Errorf("lamellate tip: %w", err)
	}
	m.Faces = faces
	return m, nil
}

// Cuff builds the rounded cylinder around the lamellate base, three
// thicknesses wide and tall with edges rounded by a tenth of that.
func Cuff(o Options) (*kernel.Mesh, error) {
	size := 3 * o.Thickness
	edge := 0.3 * o.Thickness

	switch o.CuffMode {
	case CuffSDF:
		m, err := sdfx.RoundedCylinderMesh("lamellate cuff", size, size, edge, o.CuffCells)
		if err != nil {
			return nil, fmt.Errorf("lamellate cuff: %w", err)
		}
		return m, nil
	default:
		m, err := kernel.Lathe("lamellate cuff", kernel.RoundedCylinderProfile(size, size, edge), o.CuffSegments)
		if err != nil {
			return nil, fmt.Errorf("lamellate cuff: %w", err)
		}
		return m, nil
	}
}
