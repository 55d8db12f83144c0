// Package profile builds the centerline paths and radius functions that the
// tube extruder sweeps into surfaces.
package profile

import (
	"math"

	"github.com/chazu/rhinophore/pkg/noise"
)

// RadiusFunc maps a ring index along a path to a tube radius.
type RadiusFunc func(i int) float64

// LogisticFalloff is 2 - 2/(1+exp(-t*k)). It is 1 at t=0 and decays toward
// 0 as t grows; k controls how steep the decay is.
func LogisticFalloff(t, k float64) float64 {
	return 2 - 2/(1+math.Exp(-t*k))
}

// Flare returns the shaft radius: thickness plus a base flare of
// flarePct*thickness that dies off logistically over steps rings.
// Usable falloff values are roughly 4-16; large values give a single-step
// flare, small ones never collapse to thickness before the tip.
func Flare(thickness, flarePct, falloff float64, steps int) RadiusFunc {
	return func(i int) float64 {
		return thickness + thickness*flarePct*LogisticFalloff(fraction(i, steps), falloff)
	}
}

// BaseBoost scales the flare term by factor for the first n rings.
// The radius beyond ring n-1 is left to next.
func BaseBoost(next RadiusFunc, n int, factor, thickness, flarePct, falloff float64, steps int) RadiusFunc {
	return func(i int) float64 {
		if i < n {
			return thickness + factor*thickness*flarePct*LogisticFalloff(fraction(i, steps), falloff)
		}
		return next(i)
	}
}

// CosineTip returns the cap radius for rings past the shaft end.
// Ring steps has the full thickness and ring 2*steps reaches zero.
func CosineTip(thickness float64, steps int) RadiusFunc {
	return func(i int) float64 {
		theta := fraction(i-steps, steps) * math.Pi / 2
		return thickness * math.Cos(theta)
	}
}

// ShaftWithTip uses shaft for i <= steps and tip beyond.
func ShaftWithTip(shaft, tip RadiusFunc, steps int) RadiusFunc {
	return func(i int) float64 {
		if i <= steps {
			return shaft(i)
		}
		return tip(i)
	}
}

// Bumpy jitters thickness with one noise sample per ring so rings stay
// circular with a perturbed radius.
func Bumpy(thickness, bumpiness, zoom float64, src noise.Source) RadiusFunc {
	return func(i int) float64 {
		z := float64(i) * zoom
		return thickness + src.Noise2D(z, z)*bumpiness
	}
}

// Tapered multiplies f by cos((i/n)*pi/2) over the whole length n.
func Tapered(f RadiusFunc, n int) RadiusFunc {
	return func(i int) float64 {
		return f(i) * math.Cos(fraction(i, n)*math.Pi/2)
	}
}

func fraction(i, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(i) / float64(n)
}
