package driftfield

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"
)

// Shape is a sampleable particle domain. Sample draws one point with the
// density appropriate to the shape (uniform over surface, area, or volume as
// documented per variant) from the supplied random source. Contains is the
// membership predicate used by tests and rejection samplers; it admits a small
// floating tolerance at the boundary.
type Shape interface {
	Sample(rng *rand.Rand) r3.Vec
	Contains(p r3.Vec) bool
	Validate() error
}

// AngularShape is implemented by shapes that have a natural angle around the
// vertical axis. Regions whose shape implements it record the angle per
// particle at sampling time, which the sweep highlight and angular masks need.
type AngularShape interface {
	Angle(p r3.Vec) float64
}

// containsEpsilon is the boundary tolerance for membership predicates.
const containsEpsilon = 1e-6

// maxSampleAttempts bounds rejection sampling. When a sampler exhausts the
// budget it falls back to a deterministic in-shape point instead of spinning.
const maxSampleAttempts = 20

// checkDimension rejects non-positive or non-finite shape dimensions.
func checkDimension(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be finite, got %v", name, v)
	}
	if v <= 0 {
		return fmt.Errorf("%s must be positive, got %v", name, v)
	}
	return nil
}

// --- Torus ---

// Torus samples the surface of a torus whose ring lies in the XY plane,
// centered at the origin. TubeScale, when non-zero, randomizes the tube
// radius per point (as a multiplier of TubeRadius) so the tube gains visual
// thickness; the zero value means a fixed tube radius.
type Torus struct {
	MajorRadius float64
	TubeRadius  float64
	TubeScale   Range
}

func (t Torus) tubeScale() Range {
	if t.TubeScale.IsZero() {
		return Range{1, 1}
	}
	return t.TubeScale
}

// Sample draws u, v uniformly in [0, 2π) and places the point on the tube.
func (t Torus) Sample(rng *rand.Rand) r3.Vec {
	u := rng.Float64() * 2 * math.Pi
	v := rng.Float64() * 2 * math.Pi
	tube := t.TubeRadius * t.tubeScale().Random(rng)
	ring := t.MajorRadius + tube*math.Cos(v)
	return r3.Vec{
		X: ring * math.Cos(u),
		Y: ring * math.Sin(u),
		Z: tube * math.Sin(v),
	}
}

// Contains reports whether p lies within the torus tube, at the widest tube
// scale the shape can produce.
func (t Torus) Contains(p r3.Vec) bool {
	maxTube := t.TubeRadius * math.Max(t.tubeScale().Min, t.tubeScale().Max)
	ringDist := math.Hypot(math.Hypot(p.X, p.Y)-t.MajorRadius, p.Z)
	return ringDist <= maxTube+containsEpsilon
}

// Angle returns the angle around the ring axis, in [0, 2π).
func (t Torus) Angle(p r3.Vec) float64 {
	return normalizeAngle(math.Atan2(p.Y, p.X))
}

// Validate checks the torus dimensions.
func (t Torus) Validate() error {
	if err := checkDimension("torus major radius", t.MajorRadius); err != nil {
		return err
	}
	if err := checkDimension("torus tube radius", t.TubeRadius); err != nil {
		return err
	}
	ts := t.tubeScale()
	if ts.Min < 0 || ts.Max < ts.Min {
		return fmt.Errorf("torus tube scale range invalid: [%v, %v]", ts.Min, ts.Max)
	}
	return nil
}

// --- Ellipsoid / sphere ---

// Ellipsoid samples an axis-aligned ellipsoid volume centered at the origin
// with uniform volume density: direction from θ=2πu, φ=acos(2v−1), radius
// from the cube root of a uniform draw, then per-axis scaling.
type Ellipsoid struct {
	Radii r3.Vec
}

// NewSphere returns an Ellipsoid with all three radii equal to radius.
func NewSphere(radius float64) Ellipsoid {
	return Ellipsoid{Radii: r3.Vec{X: radius, Y: radius, Z: radius}}
}

// Sample draws one point uniformly inside the ellipsoid volume.
func (e Ellipsoid) Sample(rng *rand.Rand) r3.Vec {
	theta := rng.Float64() * 2 * math.Pi
	phi := math.Acos(2*rng.Float64() - 1)
	rho := math.Cbrt(rng.Float64())
	sinPhi := math.Sin(phi)
	return r3.Vec{
		X: e.Radii.X * rho * sinPhi * math.Cos(theta),
		Y: e.Radii.Y * rho * sinPhi * math.Sin(theta),
		Z: e.Radii.Z * rho * math.Cos(phi),
	}
}

// Contains evaluates the ellipsoid equation (x/rx)² + (y/ry)² + (z/rz)² ≤ 1.
func (e Ellipsoid) Contains(p r3.Vec) bool {
	x := p.X / e.Radii.X
	y := p.Y / e.Radii.Y
	z := p.Z / e.Radii.Z
	return x*x+y*y+z*z <= 1+containsEpsilon
}

// Validate checks all three radii.
func (e Ellipsoid) Validate() error {
	for _, d := range []struct {
		name string
		v    float64
	}{
		{"ellipsoid X radius", e.Radii.X},
		{"ellipsoid Y radius", e.Radii.Y},
		{"ellipsoid Z radius", e.Radii.Z},
	} {
		if err := checkDimension(d.name, d.v); err != nil {
			return err
		}
	}
	return nil
}

// --- Disc / annulus ---

// Disc samples an annulus in the XY plane with uniform area density between
// InnerRadius and OuterRadius, plus a shallow uniform depth perturbation of
// ±Depth/2 on Z. InnerRadius zero gives a full disc.
type Disc struct {
	InnerRadius float64
	OuterRadius float64
	Depth       float64
}

// Sample draws the angle uniformly and the radius via the square-root trick
// so area density stays uniform across the annulus.
func (d Disc) Sample(rng *rand.Rand) r3.Vec {
	a := rng.Float64() * 2 * math.Pi
	inner2 := d.InnerRadius * d.InnerRadius
	outer2 := d.OuterRadius * d.OuterRadius
	radius := math.Sqrt(lerp(inner2, outer2, rng.Float64()))
	return r3.Vec{
		X: radius * math.Cos(a),
		Y: radius * math.Sin(a),
		Z: (rng.Float64() - 0.5) * d.Depth,
	}
}

// Contains reports whether p lies within the annulus slab.
func (d Disc) Contains(p r3.Vec) bool {
	radius := math.Hypot(p.X, p.Y)
	if radius < d.InnerRadius-containsEpsilon || radius > d.OuterRadius+containsEpsilon {
		return false
	}
	return math.Abs(p.Z) <= d.Depth/2+containsEpsilon
}

// Angle returns the angle around the disc axis, in [0, 2π).
func (d Disc) Angle(p r3.Vec) float64 {
	return normalizeAngle(math.Atan2(p.Y, p.X))
}

// Validate checks the annulus radii and depth.
func (d Disc) Validate() error {
	if err := checkDimension("disc outer radius", d.OuterRadius); err != nil {
		return err
	}
	if d.InnerRadius < 0 || math.IsNaN(d.InnerRadius) || math.IsInf(d.InnerRadius, 0) {
		return fmt.Errorf("disc inner radius must be finite and non-negative, got %v", d.InnerRadius)
	}
	if d.InnerRadius >= d.OuterRadius {
		return fmt.Errorf("disc inner radius %v must be less than outer radius %v", d.InnerRadius, d.OuterRadius)
	}
	if d.Depth < 0 || math.IsNaN(d.Depth) || math.IsInf(d.Depth, 0) {
		return fmt.Errorf("disc depth must be finite and non-negative, got %v", d.Depth)
	}
	return nil
}

// --- Rounded box ---

// RoundedBox samples the volume of an axis-aligned box in the XY plane with
// circular-arc corners, extruded ±Depth/2 on Z. Points are drawn by rejection
// sampling inside the bounding box against the rounded membership test, with
// a fixed attempt budget; when the budget is exhausted the last candidate is
// clamped onto the core rectangle, so sampling always terminates.
type RoundedBox struct {
	Width        float64
	Height       float64
	Depth        float64
	CornerRadius float64
}

// Sample draws one point uniformly inside the rounded box.
func (b RoundedBox) Sample(rng *rand.Rand) r3.Vec {
	var x, y float64
	placed := false
	for attempt := 0; attempt < maxSampleAttempts; attempt++ {
		x = (rng.Float64() - 0.5) * b.Width
		y = (rng.Float64() - 0.5) * b.Height
		if b.containsPlanar(x, y) {
			placed = true
			break
		}
	}
	if !placed {
		x, y = b.fallback(x, y)
	}
	return r3.Vec{X: x, Y: y, Z: (rng.Float64() - 0.5) * b.Depth}
}

// fallback deterministically clamps a rejected candidate into the core
// rectangle, which always lies inside the rounded outline. Keeps rejection
// sampling terminating within the fixed attempt budget.
func (b RoundedBox) fallback(x, y float64) (float64, float64) {
	halfW := math.Max(b.Width/2-b.CornerRadius, 0)
	halfH := b.Height / 2
	x = math.Min(math.Max(x, -halfW), halfW)
	y = math.Min(math.Max(y, -halfH), halfH)
	return x, y
}

// containsPlanar is the 2D rounded-rectangle membership test: inside the box
// and, when in a corner square, inside that corner's circular cap.
func (b RoundedBox) containsPlanar(x, y float64) bool {
	halfW := b.Width / 2
	halfH := b.Height / 2
	ax := math.Abs(x)
	ay := math.Abs(y)
	if ax > halfW || ay > halfH {
		return false
	}
	cx := halfW - b.CornerRadius
	cy := halfH - b.CornerRadius
	if ax <= cx || ay <= cy {
		return true
	}
	return math.Hypot(ax-cx, ay-cy) <= b.CornerRadius
}

// Contains reports whether p lies within the extruded rounded box.
func (b RoundedBox) Contains(p r3.Vec) bool {
	if math.Abs(p.Z) > b.Depth/2+containsEpsilon {
		return false
	}
	grown := RoundedBox{
		Width:        b.Width + 2*containsEpsilon,
		Height:       b.Height + 2*containsEpsilon,
		CornerRadius: b.CornerRadius,
	}
	return grown.containsPlanar(p.X, p.Y)
}

// Validate checks the box dimensions and corner radius.
func (b RoundedBox) Validate() error {
	if err := checkDimension("rounded box width", b.Width); err != nil {
		return err
	}
	if err := checkDimension("rounded box height", b.Height); err != nil {
		return err
	}
	if b.Depth < 0 || math.IsNaN(b.Depth) || math.IsInf(b.Depth, 0) {
		return fmt.Errorf("rounded box depth must be finite and non-negative, got %v", b.Depth)
	}
	if b.CornerRadius < 0 || math.IsNaN(b.CornerRadius) {
		return fmt.Errorf("rounded box corner radius must be non-negative, got %v", b.CornerRadius)
	}
	if b.CornerRadius > b.Width/2 || b.CornerRadius > b.Height/2 {
		return fmt.Errorf("rounded box corner radius %v exceeds half extent (%v x %v)",
			b.CornerRadius, b.Width, b.Height)
	}
	return nil
}
