package kernel

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Lathe spins a profile in the XY plane (X = distance from the axis,
// Y = height) around the Y axis. Each profile point becomes a ring of
// segments points. A profile that runs bottom-to-top on its outer side
// produces outward-facing faces. Profile points on the axis collapse to a
// ring of coincident points and give zero-area faces.
func Lathe(name string, profile []v2.Vec, segments int) (*Mesh, error) {
	if err := checkGrid("lathe", len(profile), segments); err != nil {
		return nil, err
	}
	if len(profile) < 2 {
		return nil, fmt.Errorf("%w: lathe profile needs at least 2 points, got %d", ErrInvalidArgument, len(profile))
	}

	m := &Mesh{Name: name, Points: make([]v3.Vec, 0, len(profile)*segments)}
	for _, p := range profile {
		for j := 0; j < segments; j++ {
			a := RingAngle(j, segments)
			m.Points = append(m.Points, v3.Vec{X: p.X * math.Cos(a), Y: p.Y, Z: p.X * math.Sin(a)})
		}
	}

	faces, err := GenerateFaces(len(m.Points), segments, Outward)
	if err != nil {
		return nil, fmt.Errorf("lathe %q: %w", name, err)
	}
	m.Faces = faces
	return m, nil
}

// RoundedCylinderProfile returns the half cross-section of a cylinder with
// rounded edges, starting on the axis at the bottom and ending on the axis
// at the top. The bottom and top each get two flat points, the rounded
// corners are sampled every pi/8 and one extra point sits halfway up the
// side.
func RoundedCylinderProfile(diameter, height, edgeRadius float64) []v2.Vec {
	const arcStep = math.Pi / 8
	inside := diameter/2 - edgeRadius

	pts := []v2.Vec{
		{X: 0, Y: 0},
		{X: inside / 2, Y: 0},
	}

	// Bottom corner: 3pi/2 up to (not including) 2pi.
	for k := 0; k < 4; k++ {
		theta := 3*math.Pi/2 + float64(k)*arcStep
		pts = append(pts, v2.Vec{
			X: edgeRadius*math.Cos(theta) + inside,
			Y: edgeRadius*math.Sin(theta) + edgeRadius,
		})
	}

	pts = append(pts, v2.Vec{X: diameter / 2, Y: height / 2})

	// Top corner: 0 up to (not including) pi/2.
	for k := 0; k < 4; k++ {
		theta := float64(k) * arcStep
		pts = append(pts, v2.Vec{
			X: edgeRadius*math.Cos(theta) + inside,
			Y: edgeRadius*math.Sin(theta) + height - edgeRadius,
		})
	}

	return append(pts,
		v2.Vec{X: inside / 2, Y: height},
		v2.Vec{X: 0, Y: height},
	)
}
