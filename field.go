package driftfield

import (
	"math"
	"math/rand/v2"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"gonum.org/v1/gonum/spatial/r3"
)

// RenderAdapter consumes the per-tick output buffers. Submit is called once
// per Tick, after all mutation for that tick has finished; the adapter must
// treat the slices as read-only and must not retain them across ticks.
// positions is laid out [x0, y0, z0, x1, y1, z1, ...].
type RenderAdapter interface {
	Submit(positions []float32, opacities []float32, sizes []float32)
}

// fieldRegion is a configured region plus its slot in the particle arrays.
type fieldRegion struct {
	Region
	span    IndexRange
	ext     extents
	angular bool
}

// Field is a fixed-size particle field. Particle count and base attributes
// are immutable after New; Tick recomputes positions and opacities in place
// as pure functions of elapsed time and the smoothed interaction vector.
//
// A Field is single-threaded: the caller drives it one Tick at a time and no
// internal goroutines exist. The only call safe from other contexts is
// SetInput. Stopping the animation is simply ceasing to call Tick.
type Field struct {
	cfg     Config
	regions []fieldRegion

	// Immutable per-particle state, index-aligned across all slices.
	base   []r3.Vec
	angle  []float64
	jitter []float64 // fixed [0,1) draw for sweep brightness
	motion []floatState
	baseOp []float64

	// Output buffers handed to the adapter.
	positions []float32
	opacities []float32
	sizes     []float32

	elapsed  float64
	inter    interaction
	fade     *gween.Tween
	fadeA    float64
	fadeDone bool
	adapter  RenderAdapter
}

// New validates cfg, samples every region, and derives the static attributes.
// The returned field has not ticked yet; its position buffer holds the base
// positions and its opacity buffer the base opacities.
func New(cfg Config) (*Field, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f := &Field{cfg: cfg}
	f.init(cfg.Seed)
	return f, nil
}

// init (re)builds all particle state from scratch with the given seed.
func (f *Field) init(seed uint64) {
	cfg := f.cfg
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	weights := make([]float64, len(cfg.Regions))
	for i, reg := range cfg.Regions {
		weights[i] = reg.Weight
	}
	counts := splitBudget(cfg.ParticleCount, weights)

	// All buffers are sized from the split, not from ParticleCount, so they
	// stay index-aligned even when every weight is degenerate and the split
	// comes up short.
	n := 0
	for _, c := range counts {
		n += c
	}
	f.base = make([]r3.Vec, 0, n)
	f.angle = make([]float64, 0, n)
	f.jitter = make([]float64, 0, n)
	f.motion = make([]floatState, 0, n)
	f.baseOp = make([]float64, n)
	f.positions = make([]float32, 3*n)
	f.opacities = make([]float32, n)
	f.sizes = make([]float32, 0, n)
	f.regions = make([]fieldRegion, len(cfg.Regions))

	speed := cfg.Motion.speedRange()
	for i, reg := range cfg.Regions {
		fr := fieldRegion{Region: reg, ext: newExtents()}
		fr.Attr = reg.Attr.normalized()
		fr.span.Start = len(f.base)
		_, fr.angular = reg.Shape.(AngularShape)

		for j := 0; j < counts[i]; j++ {
			p := reg.Shape.Sample(rng)
			f.base = append(f.base, p)
			fr.ext.include(p)
			a := 0.0
			if fr.angular {
				a = reg.Shape.(AngularShape).Angle(p)
			}
			f.angle = append(f.angle, a)
			f.jitter = append(f.jitter, rng.Float64())
			f.motion = append(f.motion, newFloatState(rng, speed))
			f.sizes = append(f.sizes, float32(fr.Attr.Size.Random(rng)))
		}
		fr.span.End = len(f.base)
		f.regions[i] = fr
	}

	// Static opacities need the finished region extents, so second pass.
	for _, fr := range f.regions {
		for i := fr.span.Start; i < fr.span.End; i++ {
			f.baseOp[i] = fr.Attr.staticOpacity(f.base[i], f.angle[i], fr.ext, rng)
		}
	}

	f.elapsed = 0
	f.inter.cfg = cfg.Pointer
	f.inter.target = Vec2{}
	f.inter.current = Vec2{}
	f.inter.latest.Store(nil)
	if cfg.FadeIn > 0 {
		f.fade = gween.New(0, 1, float32(cfg.FadeIn), ease.OutQuad)
		f.fadeA = 0
		f.fadeDone = false
	} else {
		f.fade = nil
		f.fadeA = 1
		f.fadeDone = true
	}

	// Seed the output buffers so a field drawn before its first tick shows
	// the base state instead of zeros.
	for i, p := range f.base {
		f.positions[3*i] = float32(p.X)
		f.positions[3*i+1] = float32(p.Y)
		f.positions[3*i+2] = float32(p.Z)
		f.opacities[i] = float32(f.baseOp[i] * f.fadeA)
	}
}

// Reset resamples the entire field with a new seed. Elapsed time, the
// interaction filter, and the fade-in restart from zero.
func (f *Field) Reset(seed uint64) {
	f.init(seed)
}

// SetAdapter registers the render adapter that receives the buffers each
// tick. A nil adapter is allowed; the field still animates.
func (f *Field) SetAdapter(a RenderAdapter) {
	f.adapter = a
}

// SetInput feeds the latest normalized pointer sample in [−1, 1]². Safe to
// call from input callbacks outside the tick context.
func (f *Field) SetInput(sample Vec2) {
	f.inter.setInput(sample)
}

// Count returns the fixed particle count. It equals Config.ParticleCount
// unless every region weight is degenerate, in which case the field is empty.
func (f *Field) Count() int {
	return len(f.base)
}

// Elapsed returns the accumulated animation time in seconds.
func (f *Field) Elapsed() float64 {
	return f.elapsed
}

// Color returns the configured particle tint.
func (f *Field) Color() Color {
	return f.cfg.Color
}

// Positions returns the live position buffer, laid out [x, y, z] per
// particle. Read-only between ticks.
func (f *Field) Positions() []float32 {
	return f.positions
}

// Opacities returns the live opacity buffer. Read-only between ticks.
func (f *Field) Opacities() []float32 {
	return f.opacities
}

// Sizes returns the immutable size buffer.
func (f *Field) Sizes() []float32 {
	return f.sizes
}

// RegionRange returns the index range a named region's particles occupy.
func (f *Field) RegionRange(name string) (IndexRange, bool) {
	for _, fr := range f.regions {
		if fr.Name == name {
			return fr.span, true
		}
	}
	return IndexRange{}, false
}

// RegionNames returns the configured region names in buffer order.
func (f *Field) RegionNames() []string {
	names := make([]string, len(f.regions))
	for i, fr := range f.regions {
		names[i] = fr.Name
	}
	return names
}

// Tick advances the animation by dt seconds: elapsed time, interaction
// filter, fade-in, then every particle's position and opacity, and finally
// hands the buffers to the adapter. All per-particle work is a pure function
// of the advanced state, so nothing accumulates and nothing drifts.
func (f *Field) Tick(dt float64) {
	if math.IsNaN(dt) || dt < 0 {
		dt = 0
	}
	f.elapsed += dt
	f.inter.step(dt)

	if !f.fadeDone {
		v, done := f.fade.Update(float32(dt))
		f.fadeA = float64(v)
		f.fadeDone = done
	}

	cur := f.inter.current
	amp := f.cfg.Motion.Amplitude
	sinYaw, cosYaw := math.Sincos(cur.X)
	sinPitch, cosPitch := math.Sincos(cur.Y)
	rotate := f.cfg.Pointer.Mode == InteractRotate

	for _, fr := range f.regions {
		var sweepAngle float64
		if fr.Attr.Sweep != nil {
			sweepAngle = fr.Attr.Sweep.angleAt(f.elapsed)
		}
		for i := fr.span.Start; i < fr.span.End; i++ {
			d := f.motion[i].displacement(f.elapsed, amp)
			p := r3.Add(f.base[i], d)

			if rotate {
				// Yaw about Y, then pitch about X.
				x := p.X*cosYaw + p.Z*sinYaw
				z := -p.X*sinYaw + p.Z*cosYaw
				y := p.Y*cosPitch - z*sinPitch
				z = p.Y*sinPitch + z*cosPitch
				p = r3.Vec{X: x, Y: y, Z: z}
			} else {
				p.X += cur.X
				p.Y += cur.Y
			}

			f.positions[3*i] = float32(finiteOr(p.X, 0))
			f.positions[3*i+1] = float32(finiteOr(p.Y, 0))
			f.positions[3*i+2] = float32(finiteOr(p.Z, 0))

			op := f.baseOp[i]
			if s := fr.Attr.Sweep; s != nil {
				op = s.opacity(f.angle[i], sweepAngle, f.jitter[i])
			}
			if m := fr.Attr.Mask; m != nil {
				op *= m.factor(f.base[i], f.angle[i], cur)
			}
			op *= f.fadeA
			f.opacities[i] = float32(clamp01(finiteOr(op, 0)))
		}
	}

	if f.adapter != nil {
		f.adapter.Submit(f.positions, f.opacities, f.sizes)
	}
}
