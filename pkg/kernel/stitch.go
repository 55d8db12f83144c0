package kernel

import "fmt"

// Winding selects which side of a stitched surface faces outward.
type Winding int

const (
	// Outward winding faces away from the ring axis (outer walls).
	Outward Winding = iota
	// Inward winding faces toward the ring axis (inner walls of hollow solids).
	Inward
)

func (w Winding) String() string {
	switch w {
	case Outward:
		return "outward"
	case Inward:
		return "inward"
	default:
		return fmt.Sprintf("Winding(%d)", int(w))
	}
}

// GenerateFaces triangulates pointCount points laid out as consecutive
// rings of loopLength points. Each adjacent ring pair gets two triangles per
// angular slot; slots wrap around modulo loopLength. No faces are emitted
// after the last ring, so callers add end caps themselves.
func GenerateFaces(pointCount, loopLength int, w Winding) ([]Face, error) {
	if err := checkGrid("face", 0, loopLength); err != nil {
		return nil, err
	}
	if pointCount < 0 || pointCount%loopLength != 0 {
		return nil, fmt.Errorf("%w: %d points do not form rings of %d", ErrInvalidArgument, pointCount, loopLength)
	}

	rings := pointCount / loopLength
	if rings > MaxRings {
		return nil, fmt.Errorf("%w: %d rings, at most %d", ErrInvalidArgument, rings, MaxRings)
	}
	if rings < 2 {
		return nil, nil
	}
	faces := make([]Face, 0, 2*loopLength*(rings-1))
	for i := 0; i < rings-1; i++ {
		faces = append(faces, StitchLoops(i*loopLength, (i+1)*loopLength, loopLength, w)...)
	}
	return faces, nil
}

// StitchLoops joins the ring starting at index a to the ring starting at
// index b with two triangles per slot. With Outward winding, slot j yields
// (a+j, b+j, a+j+1) and (a+j+1, b+j, b+j+1); Inward swaps the last two
// indices of each triangle.
func StitchLoops(a, b, loopLength int, w Winding) []Face {
	faces := make([]Face, 0, 2*loopLength)
	for j := 0; j < loopLength; j++ {
		next := (j + 1) % loopLength
		ca, na := a+j, a+next
		cb, nb := b+j, b+next
		if w == Inward {
			faces = append(faces, Face{ca, na, cb}, Face{na, nb, cb})
		} else {
			faces = append(faces, Face{ca, cb, na}, Face{na, cb, nb})
		}
	}
	return faces
}
