package driftfield

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"
)

// MotionConfig tunes the organic floating motion applied on top of every
// particle's base position. Displacement on each axis is a sine of elapsed
// time scaled by the particle's fixed speed and phase, so motion is a pure
// function of time: bounded by the amplitudes, free of drift, and restartable
// at any elapsed value.
//
// The Y and Z oscillators run at 0.8× and 0.6× the particle speed so the
// three axes never lock into a repeating pattern; Amplitude.Z is typically
// the smallest for a flatter depth wobble.
type MotionConfig struct {
	// Amplitude is the per-axis displacement bound.
	Amplitude r3.Vec
	// Speed is the range particle float speeds are drawn from.
	Speed Range
}

// defaultFloatSpeed is used when MotionConfig.Speed is the zero value.
var defaultFloatSpeed = Range{0.3, 1.0}

// speedRange returns the configured speed range or the default.
func (m MotionConfig) speedRange() Range {
	if m.Speed.IsZero() {
		return defaultFloatSpeed
	}
	return m.Speed
}

// floatState holds one particle's immutable motion parameters.
type floatState struct {
	phase r3.Vec // per-axis phase offsets in [0, 2π)
	speed float64
}

// newFloatState draws fresh phase and speed values from rng.
func newFloatState(rng *rand.Rand, speed Range) floatState {
	return floatState{
		phase: r3.Vec{
			X: rng.Float64() * 2 * math.Pi,
			Y: rng.Float64() * 2 * math.Pi,
			Z: rng.Float64() * 2 * math.Pi,
		},
		speed: speed.Random(rng),
	}
}

// displacement returns the float offset at elapsed time t.
func (f floatState) displacement(t float64, amp r3.Vec) r3.Vec {
	return r3.Vec{
		X: math.Sin(t*f.speed+f.phase.X) * amp.X,
		Y: math.Sin(t*f.speed*0.8+f.phase.Y) * amp.Y,
		Z: math.Sin(t*f.speed*0.6+f.phase.Z) * amp.Z,
	}
}
