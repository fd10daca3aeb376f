package driftfield

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"
)

// Axis selects a coordinate axis for gradient rules.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// component returns the axis component of p.
func (a Axis) component(p r3.Vec) float64 {
	switch a {
	case AxisX:
		return p.X
	case AxisZ:
		return p.Z
	default:
		return p.Y
	}
}

// GradientRule derives base opacity from position along an axis:
// opacity = Floor + normalizedHeight·Span, where normalizedHeight maps the
// particle's axis coordinate into [0, 1] over the region's sampled extent.
// The result is clamped to [0, 1]. When present it replaces the region's
// random base opacity.
type GradientRule struct {
	Axis  Axis
	Floor float64
	Span  float64
}

// FadeMode selects which boundary an EdgeFadeRule measures distance to.
type FadeMode uint8

const (
	// FadeRadial fades as the planar radius approaches OuterRadius.
	FadeRadial FadeMode = iota
	// FadeAngular fades near both angular ends of the [AngleStart, AngleEnd]
	// sector. Requires the region's shape to be an AngularShape.
	FadeAngular
	// FadeRect fades near the vertical and horizontal edges of a centered
	// rectangle with the given half extents.
	FadeRect
)

// EdgeFadeRule multiplies base opacity by a smoothstep falloff over Width as
// the particle approaches a boundary.
type EdgeFadeRule struct {
	Mode        FadeMode
	Width       float64
	OuterRadius float64 // FadeRadial
	AngleStart  float64 // FadeAngular, radians
	AngleEnd    float64 // FadeAngular, radians
	HalfExtent  Vec2    // FadeRect
}

// factor returns the multiplicative fade in [0, 1] for a particle at p with
// the given angular coordinate.
func (f EdgeFadeRule) factor(p r3.Vec, angle float64) float64 {
	switch f.Mode {
	case FadeAngular:
		span := normalizeAngle(f.AngleEnd - f.AngleStart)
		if span == 0 {
			span = 2 * math.Pi
		}
		off := normalizeAngle(angle - f.AngleStart)
		if off > span {
			return 0
		}
		return smoothstep(0, f.Width, off) * smoothstep(0, f.Width, span-off)
	case FadeRect:
		dx := f.HalfExtent.X - math.Abs(p.X)
		dy := f.HalfExtent.Y - math.Abs(p.Y)
		return smoothstep(0, f.Width, dx) * smoothstep(0, f.Width, dy)
	default:
		dist := f.OuterRadius - math.Hypot(p.X, p.Y)
		return smoothstep(0, f.Width, dist)
	}
}

// SweepRule progressively brightens a ring region over each cycle. The sweep
// angle grows from 0 to 2π over Cycle seconds; a particle is bright when its
// angular offset from Reference is strictly less than the sweep angle. The
// strict comparison means elapsed 0 leaves every particle dim, and the
// particle sitting exactly on the sweep boundary is always the dim one.
type SweepRule struct {
	// Cycle is the sweep period in seconds.
	Cycle float64
	// Reference is the angle the sweep starts from, in radians.
	Reference float64
	// Bright is the opacity range for swept particles. Each particle keeps a
	// fixed draw from this range so brightness does not flicker across ticks.
	Bright Range
	// Dim is the opacity of particles the sweep has not reached.
	Dim float64
}

// angleAt returns the sweep threshold angle for the given elapsed time.
func (s SweepRule) angleAt(elapsed float64) float64 {
	cycles := math.Mod(elapsed, s.Cycle)
	if cycles < 0 {
		cycles += s.Cycle
	}
	return cycles / s.Cycle * 2 * math.Pi
}

// opacity returns the sweep opacity for a particle with the given angular
// coordinate. jitter is the particle's fixed [0,1) draw for the bright range.
func (s SweepRule) opacity(angle, sweepAngle, jitter float64) float64 {
	off := normalizeAngle(angle - s.Reference)
	if off < sweepAngle {
		return s.Bright.Min + jitter*(s.Bright.Max-s.Bright.Min)
	}
	return s.Dim
}

// MaskRule cuts a moving transparent hole ("pupil") that tracks the smoothed
// interaction vector. Opacity is multiplied by a smoothstep between
// InnerRadius (fully masked) and InnerRadius+Fade (fully visible) of the
// particle's distance to the focal point.
type MaskRule struct {
	// InnerRadius is the fully transparent core radius. For Angular masks
	// both radii are in radians.
	InnerRadius float64
	// Fade is the width of the smoothstep transition back to full opacity.
	Fade float64
	// Scale maps the smoothed interaction vector to the focal point in field
	// coordinates. Ignored for Angular masks, which use the vector's
	// direction only.
	Scale Vec2
	// Angular measures angular distance to the focal direction instead of
	// planar distance to the focal point.
	Angular bool
}

// factor returns the multiplicative mask value in [0, 1] for a particle at p
// with angular coordinate angle, given the smoothed interaction vector.
func (m MaskRule) factor(p r3.Vec, angle float64, cur Vec2) float64 {
	if m.Angular {
		// A near-zero vector has no direction; leave the region unmasked
		// rather than feeding atan2(0,0) into the buffers.
		if math.Hypot(cur.X, cur.Y) < 1e-9 {
			return 1
		}
		focal := normalizeAngle(math.Atan2(cur.Y, cur.X))
		d := math.Abs(angle - focal)
		if d > math.Pi {
			d = 2*math.Pi - d
		}
		return smoothstep(m.InnerRadius, m.InnerRadius+m.Fade, d)
	}
	fx := cur.X * m.Scale.X
	fy := cur.Y * m.Scale.Y
	dist := math.Hypot(p.X-fx, p.Y-fy)
	return smoothstep(m.InnerRadius, m.InnerRadius+m.Fade, dist)
}

// AttributeRule bundles the static and dynamic attribute rules for one
// region. The zero value gives size 1 and opacity 1 with no gradient, fade,
// sweep, or mask. A "highlight" region is expressed by giving it boosted
// Size/Opacity ranges of its own.
type AttributeRule struct {
	// Size is the particle size range, drawn once per particle at init.
	Size Range
	// Opacity is the base opacity range, drawn once per particle at init.
	// Replaced by Gradient when that is set.
	Opacity Range
	// Gradient, when set, derives base opacity from position.
	Gradient *GradientRule
	// EdgeFade, when set, multiplies base opacity by a boundary falloff.
	EdgeFade *EdgeFadeRule
	// Sweep, when set, overrides opacity each tick with the sweep highlight.
	Sweep *SweepRule
	// Mask, when set, multiplies opacity each tick by the pupil mask.
	Mask *MaskRule
}

// normalized returns the rule with zero-value ranges replaced by defaults.
func (r AttributeRule) normalized() AttributeRule {
	if r.Size.IsZero() {
		r.Size = Range{1, 1}
	}
	if r.Opacity.IsZero() {
		r.Opacity = Range{1, 1}
	}
	return r
}

func (r AttributeRule) validate() error {
	rn := r.normalized()
	if rn.Size.Min < 0 || rn.Size.Max < rn.Size.Min {
		return fmt.Errorf("size range invalid: [%v, %v]", rn.Size.Min, rn.Size.Max)
	}
	if rn.Opacity.Min < 0 || rn.Opacity.Max > 1 || rn.Opacity.Max < rn.Opacity.Min {
		return fmt.Errorf("opacity range must lie in [0, 1]: [%v, %v]", rn.Opacity.Min, rn.Opacity.Max)
	}
	if g := r.Gradient; g != nil {
		if g.Axis > AxisZ {
			return fmt.Errorf("gradient axis out of range: %d", g.Axis)
		}
	}
	if f := r.EdgeFade; f != nil && (f.Width < 0 || math.IsNaN(f.Width)) {
		return fmt.Errorf("edge fade width must be non-negative, got %v", f.Width)
	}
	if s := r.Sweep; s != nil {
		if s.Cycle <= 0 || math.IsNaN(s.Cycle) || math.IsInf(s.Cycle, 0) {
			return fmt.Errorf("sweep cycle must be positive, got %v", s.Cycle)
		}
		if s.Bright.Min < 0 || s.Bright.Max > 1 || s.Bright.Max < s.Bright.Min {
			return fmt.Errorf("sweep bright range must lie in [0, 1]: [%v, %v]", s.Bright.Min, s.Bright.Max)
		}
		if s.Dim < 0 || s.Dim > 1 {
			return fmt.Errorf("sweep dim opacity must lie in [0, 1], got %v", s.Dim)
		}
	}
	if m := r.Mask; m != nil && (m.InnerRadius < 0 || m.Fade < 0) {
		return fmt.Errorf("mask radii must be non-negative: inner %v, fade %v", m.InnerRadius, m.Fade)
	}
	return nil
}

// extents is the axis-aligned bounding box of a region's sampled points,
// used to normalize gradient heights.
type extents struct {
	min, max r3.Vec
}

func newExtents() extents {
	inf := math.Inf(1)
	return extents{
		min: r3.Vec{X: inf, Y: inf, Z: inf},
		max: r3.Vec{X: -inf, Y: -inf, Z: -inf},
	}
}

func (e *extents) include(p r3.Vec) {
	e.min.X = math.Min(e.min.X, p.X)
	e.min.Y = math.Min(e.min.Y, p.Y)
	e.min.Z = math.Min(e.min.Z, p.Z)
	e.max.X = math.Max(e.max.X, p.X)
	e.max.Y = math.Max(e.max.Y, p.Y)
	e.max.Z = math.Max(e.max.Z, p.Z)
}

// normalized maps the axis component of p into [0, 1] over the extent.
// A flat extent (all points at one height) normalizes to 1 rather than
// dividing by zero.
func (e extents) normalized(a Axis, p r3.Vec) float64 {
	lo := a.component(e.min)
	hi := a.component(e.max)
	if hi-lo < 1e-12 {
		return 1
	}
	return clamp01((a.component(p) - lo) / (hi - lo))
}

// staticOpacity computes a particle's immutable base opacity from the
// region's rules: gradient (or random base), then edge fade, clamped.
func (r AttributeRule) staticOpacity(p r3.Vec, angle float64, ext extents, rng *rand.Rand) float64 {
	rn := r.normalized()
	op := rn.Opacity.Random(rng)
	if g := r.Gradient; g != nil {
		op = g.Floor + ext.normalized(g.Axis, p)*g.Span
	}
	if f := r.EdgeFade; f != nil {
		op *= f.factor(p, angle)
	}
	return clamp01(op)
}
