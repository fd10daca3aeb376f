package driftfield

import (
	"math"
	"math/rand/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default particle tint.
var ColorWhite = Color{1, 1, 1, 1}

// Vec2 is a 2D vector used for pointer samples, planar offsets, and mesh
// vertices throughout the API.
type Vec2 struct {
	X, Y float64
}

// Range is a general-purpose min/max range.
// Used for particle sizes, opacities, float speeds, and tube jitter.
type Range struct {
	Min, Max float64
}

// Random returns a random float64 in [Min, Max] drawn from rng.
func (r Range) Random(rng *rand.Rand) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// Clamp returns v limited to [Min, Max].
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// IsZero reports whether the range is the zero value.
func (r Range) IsZero() bool {
	return r.Min == 0 && r.Max == 0
}

// lerp linearly interpolates between a and b by t.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// clamp01 limits v to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// smoothstep is the cubic Hermite 0→1 transition: 0 for x ≤ edge0, 1 for
// x ≥ edge1, and 3t²−2t³ in between. Used for edge fades and the pupil mask.
func smoothstep(edge0, edge1, x float64) float64 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

// normalizeAngle maps an angle in radians into [0, 2π).
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// finiteOr returns v, or fallback when v is NaN or ±Inf. Output buffers are
// scrubbed with this before being handed to the render adapter.
func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
