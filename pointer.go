package driftfield

import (
	"fmt"
	"math"
	"sync/atomic"
)

// InteractMode selects how the smoothed interaction vector is applied to the
// field each tick.
type InteractMode uint8

const (
	// InteractRotate treats the vector as (yaw, pitch) rotation angles
	// applied to every particle around the origin.
	InteractRotate InteractMode = iota
	// InteractOffset treats the vector as a planar displacement added to
	// every particle.
	InteractOffset
)

// PointerConfig tunes pointer-driven interaction.
type PointerConfig struct {
	// Mode selects rotation or planar offset.
	Mode InteractMode
	// Scale maps the normalized [−1, 1]² input sample to the target vector
	// (radians for InteractRotate, field units for InteractOffset).
	Scale Vec2
	// Alpha is the per-reference-tick smoothing factor in (0, 1]. Smaller
	// values follow the pointer more lazily. Zero disables interaction.
	Alpha float64
}

func (p PointerConfig) validate() error {
	if math.IsNaN(p.Alpha) || p.Alpha < 0 || p.Alpha > 1 {
		return fmt.Errorf("pointer alpha must lie in [0, 1], got %v", p.Alpha)
	}
	if math.IsNaN(p.Scale.X) || math.IsNaN(p.Scale.Y) ||
		math.IsInf(p.Scale.X, 0) || math.IsInf(p.Scale.Y, 0) {
		return fmt.Errorf("pointer scale must be finite, got (%v, %v)", p.Scale.X, p.Scale.Y)
	}
	return nil
}

// refTickDuration is the tick length Alpha is calibrated against. step
// rescales the filter for other tick durations so convergence speed stays
// independent of the frame rate.
const refTickDuration = 1.0 / 60.0

// interaction converts raw pointer samples into a smoothed vector.
//
// SetInput may be called from outside the tick context (an input callback),
// so the latest sample is stored behind an atomic pointer swap; step, called
// once per tick, reads it and advances the single-pole exponential filter
// current += (target − current)·α. The filter converges monotonically toward
// a constant target with no overshoot.
type interaction struct {
	cfg    PointerConfig
	latest atomic.Pointer[Vec2]

	target  Vec2
	current Vec2
}

// setInput stores a normalized input sample, clamped to [−1, 1]².
func (c *interaction) setInput(sample Vec2) {
	v := Vec2{
		X: math.Min(math.Max(finiteOr(sample.X, 0), -1), 1),
		Y: math.Min(math.Max(finiteOr(sample.Y, 0), -1), 1),
	}
	c.latest.Store(&v)
}

// step consumes the latest input sample and advances the filter by dt
// seconds. Alpha is rescaled as 1−(1−α)^(dt/refTick) so a variable tick rate
// neither stalls nor destabilizes the filter.
func (c *interaction) step(dt float64) {
	if c.cfg.Alpha == 0 {
		return
	}
	if sample := c.latest.Load(); sample != nil {
		c.target = Vec2{X: sample.X * c.cfg.Scale.X, Y: sample.Y * c.cfg.Scale.Y}
	}
	alpha := c.cfg.Alpha
	if dt != refTickDuration {
		if dt <= 0 {
			alpha = 0
		} else {
			alpha = 1 - math.Pow(1-c.cfg.Alpha, dt/refTickDuration)
		}
	}
	c.current.X += (c.target.X - c.current.X) * alpha
	c.current.Y += (c.target.Y - c.current.Y) * alpha
}
