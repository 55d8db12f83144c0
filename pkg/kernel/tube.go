package kernel

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultLoopLength is the ring size used when TubeOptions leaves it unset.
const DefaultLoopLength = 24

// minTangent is the shortest segment treated as having a direction.
const minTangent = 1e-12

// TubeOptions controls tube extrusion.
type TubeOptions struct {
	Name       string
	LoopLength int  // points per ring; 0 means DefaultLoopLength
	CapStart   bool // prepend a ring collapsed onto path[0] to close the base
}

// Tube sweeps a ring of LoopLength points around every path vertex, at the
// distance given by radius, and stitches the rings with Outward winding.
// Ring i is centred on path[i] in the plane perpendicular to the local
// tangent. Negative radii collapse the ring onto the path.
func Tube(path []v3.Vec, radius func(i int) float64, opts TubeOptions) (*Mesh, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: tube path is empty", ErrInvalidArgument)
	}
	loop := opts.LoopLength
	if loop == 0 {
		loop = DefaultLoopLength
	}
	rings := len(path)
	if opts.CapStart {
		rings++
	}
	if err := checkGrid("tube", rings, loop); err != nil {
		return nil, err
	}

	frames := transportFrames(path)
	m := &Mesh{Name: opts.Name, Points: make([]v3.Vec, 0, rings*loop)}
	if opts.CapStart {
		for j := 0; j < loop; j++ {
			m.Points = append(m.Points, path[0])
		}
	}
	for i, p := range path {
		r := math.Max(0, radius(i))
		m.Points = append(m.Points, ring(p, frames[i], r, loop)...)
	}

	faces, err := GenerateFaces(len(m.Points), loop, Outward)
	if err != nil {
		return nil, fmt.Errorf("tube %q: %w", opts.Name, err)
	}
	m.Faces = faces
	return m, nil
}

// frame is an orthonormal basis at a path vertex. The ring lies in the
// plane spanned by e1 and e2, with e2 = e1 x tangent so that Outward
// winding faces away from the path.
type frame struct {
	tangent, e1, e2 v3.Vec
}

// ring returns loop points around centre at distance r.
func ring(centre v3.Vec, f frame, r float64, loop int) []v3.Vec {
	pts := make([]v3.Vec, loop)
	for j := range pts {
		a := RingAngle(j, loop)
		off := f.e1.MulScalar(math.Cos(a)).Add(f.e2.MulScalar(math.Sin(a)))
		pts[j] = centre.Add(off.MulScalar(r))
	}
	return pts
}

// transportFrames computes a frame per path vertex. The tangent at i points
// to the next vertex (the last vertex uses the previous segment) and the
// reference normal is carried along by projection so rings do not twist.
// Coincident vertices reuse the previous tangent; a path with no usable
// segment runs along +Y.
func transportFrames(path []v3.Vec) []frame {
	tangents := make([]v3.Vec, len(path))
	var last v3.Vec
	found := false
	for i := range path {
		var d v3.Vec
		if i < len(path)-1 {
			d = path[i+1].Sub(path[i])
		} else if i > 0 {
			d = path[i].Sub(path[i-1])
		}
		if d.Length() > minTangent {
			last = d.Normalize()
			if !found {
				// Back-fill leading degenerate vertices.
				for k := 0; k < i; k++ {
					tangents[k] = last
				}
				found = true
			}
		}
		tangents[i] = last
	}
	if !found {
		for i := range tangents {
			tangents[i] = v3.Vec{X: 0, Y: 1, Z: 0}
		}
	}

	frames := make([]frame, len(path))
	e1 := perpendicular(tangents[0])
	for i, t := range tangents {
		// Remove the component along the new tangent.
		p := e1.Sub(t.MulScalar(e1.Dot(t)))
		if p.Length() < minTangent {
			p = perpendicular(t)
		}
		e1 = p.Normalize()
		frames[i] = frame{tangent: t, e1: e1, e2: e1.Cross(t)}
	}
	return frames
}

// perpendicular returns a unit vector perpendicular to t, built from the
// world axis least aligned with it. For t = +Y this is +X.
func perpendicular(t v3.Vec) v3.Vec {
	axis := v3.Vec{X: 1}
	if math.Abs(t.X) > math.Abs(t.Y) && math.Abs(t.X) > math.Abs(t.Z) {
		axis = v3.Vec{Y: 1}
	}
	p := axis.Sub(t.MulScalar(axis.Dot(t)))
	return p.Normalize()
}
