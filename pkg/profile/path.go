package profile

import (
	"math"

	"github.com/chazu/rhinophore/pkg/noise"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

const (
	// DefaultIntervals is the number of straight runs in a curved path.
	DefaultIntervals = 20

	// DefaultSeedAngle is the heading of the first curved run.
	DefaultSeedAngle = math.Pi / 15

	// minSegment is the shortest segment treated as having a direction.
	minSegment = 1e-12
)

var up = v3.Vec{X: 0, Y: 1, Z: 0}

// Shaft returns a straight path of steps+1 points rising from the origin
// along +Y to shaftLength.
func Shaft(steps int, shaftLength float64) []v3.Vec {
	return NoisyShaft(steps, shaftLength, 0, 0, 0, noise.Constant(0))
}

// NoisyShaft returns a +Y path of steps+1 points whose X and Z are offset by
// two independent noise samples scaled by thickness*noiseFactor. Points
// with index below exempt stay on the axis so the base starts clean.
func NoisyShaft(steps int, shaftLength, thickness, noiseFactor float64, exempt int, src noise.Source) []v3.Vec {
	if steps < 0 {
		steps = 0
	}
	path := make([]v3.Vec, 0, steps+1)
	path = append(path, v3.Vec{})
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		p := v3.Vec{Y: float64(i) * shaftLength / float64(steps)}
		if i >= exempt {
			p.X = src.Noise2D(t, 0) * thickness * noiseFactor
			p.Z = src.Noise2D(0, t) * thickness * noiseFactor
		}
		path = append(path, p)
	}
	return path
}

// ExtendCap appends steps points past the end of path along its final
// direction. Point i sits sin((i/steps)*pi/2)*length*tipPct beyond the end,
// a sine-eased spacing that pairs with CosineTip.
func ExtendCap(path []v3.Vec, steps int, length, tipPct float64) []v3.Vec {
	if len(path) == 0 {
		path = []v3.Vec{{}}
	}
	base := path[len(path)-1]
	dir := up
	if len(path) > 1 {
		d := base.Sub(path[len(path)-2])
		if d.Length() > minSegment {
			dir = d.Normalize()
		}
	}

	out := make([]v3.Vec, len(path), len(path)+steps)
	copy(out, path)
	for i := 1; i <= steps; i++ {
		alpha := float64(i) / float64(steps) * math.Pi / 2
		scale := math.Sin(alpha) * length * tipPct
		out = append(out, base.Add(dir.MulScalar(scale)))
	}
	return out
}

// CurveSteps is the number of unit steps in a curved path with the given
// number of intervals.
func CurveSteps(intervals int) int {
	return intervals * (intervals - 1) / 2
}

// Curved returns a path in the XY plane made of intervals straight runs;
// run k is intervals-1-k steps long. The heading starts at seedAngle and is
// multiplied by 1+tension after every run, so turning compounds toward the
// tip. Small tensions give a gentle arc, tensions near 1 a tight spiral.
func Curved(length, tension float64, intervals int, seedAngle float64) []v3.Vec {
	n := CurveSteps(intervals)
	path := make([]v3.Vec, 1, n+1)
	if n <= 0 {
		return path
	}

	step := length / float64(n)
	multiplier := 1 + tension
	theta := seedAngle
	for k := 0; k < intervals; k++ {
		heading := theta + math.Pi/2 - seedAngle
		d := v3.Vec{X: step * math.Cos(heading), Y: step * math.Sin(heading)}
		for j := 0; j < intervals-1-k; j++ {
			path = append(path, path[len(path)-1].Add(d))
		}
		theta *= multiplier
	}
	return path
}
