package driftfield

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestSmoothstep(t *testing.T) {
	cases := []struct {
		x, want float64
	}{
		{-1, 0},
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{2, 1},
	}
	for _, tc := range cases {
		if got := smoothstep(0, 1, tc.x); math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("smoothstep(0, 1, %v) = %v, want %v", tc.x, got, tc.want)
		}
	}
	// Quarter point of the Hermite curve: 3t²-2t³ at t=0.25.
	want := 3*0.0625 - 2*0.015625
	if got := smoothstep(0, 1, 0.25); math.Abs(got-want) > 1e-12 {
		t.Errorf("smoothstep(0, 1, 0.25) = %v, want %v", got, want)
	}
}

func TestGradientOpacity(t *testing.T) {
	rule := AttributeRule{
		Gradient: &GradientRule{Axis: AxisY, Floor: 0.2, Span: 0.6},
	}
	ext := newExtents()
	ext.include(r3.Vec{Y: -10})
	ext.include(r3.Vec{Y: 10})

	rng := testRNG(20)
	bottom := rule.staticOpacity(r3.Vec{Y: -10}, 0, ext, rng)
	mid := rule.staticOpacity(r3.Vec{Y: 0}, 0, ext, rng)
	top := rule.staticOpacity(r3.Vec{Y: 10}, 0, ext, rng)

	if math.Abs(bottom-0.2) > 1e-9 {
		t.Errorf("bottom opacity = %v, want 0.2", bottom)
	}
	if math.Abs(mid-0.5) > 1e-9 {
		t.Errorf("mid opacity = %v, want 0.5", mid)
	}
	if math.Abs(top-0.8) > 1e-9 {
		t.Errorf("top opacity = %v, want 0.8", top)
	}
}

func TestGradientClamped(t *testing.T) {
	rule := AttributeRule{
		Gradient: &GradientRule{Axis: AxisY, Floor: 0.8, Span: 0.9},
	}
	ext := newExtents()
	ext.include(r3.Vec{Y: 0})
	ext.include(r3.Vec{Y: 1})
	if got := rule.staticOpacity(r3.Vec{Y: 1}, 0, ext, testRNG(21)); got != 1 {
		t.Errorf("opacity = %v, want clamped to 1", got)
	}
}

func TestGradientFlatExtent(t *testing.T) {
	// All particles at one height must not divide by zero.
	rule := AttributeRule{Gradient: &GradientRule{Axis: AxisZ, Floor: 0.1, Span: 0.5}}
	ext := newExtents()
	ext.include(r3.Vec{Z: 3})
	got := rule.staticOpacity(r3.Vec{Z: 3}, 0, ext, testRNG(22))
	if math.IsNaN(got) || got < 0 || got > 1 {
		t.Errorf("flat extent opacity = %v, want finite in [0, 1]", got)
	}
}

func TestEdgeFadeRadial(t *testing.T) {
	fade := EdgeFadeRule{Mode: FadeRadial, Width: 4, OuterRadius: 20}
	deep := fade.factor(r3.Vec{X: 10}, 0)
	if deep != 1 {
		t.Errorf("deep factor = %v, want 1", deep)
	}
	boundary := fade.factor(r3.Vec{X: 20}, 0)
	if boundary != 0 {
		t.Errorf("boundary factor = %v, want 0", boundary)
	}
	partway := fade.factor(r3.Vec{X: 18}, 0)
	if partway <= 0 || partway >= 1 {
		t.Errorf("partway factor = %v, want in (0, 1)", partway)
	}
}

func TestEdgeFadeRect(t *testing.T) {
	fade := EdgeFadeRule{Mode: FadeRect, Width: 2, HalfExtent: Vec2{X: 10, Y: 5}}
	if got := fade.factor(r3.Vec{}, 0); got != 1 {
		t.Errorf("center factor = %v, want 1", got)
	}
	if got := fade.factor(r3.Vec{X: 10}, 0); got != 0 {
		t.Errorf("edge factor = %v, want 0", got)
	}
	if got := fade.factor(r3.Vec{X: 9, Y: 4.5}, 0); got <= 0 || got >= 1 {
		t.Errorf("corner approach factor = %v, want in (0, 1)", got)
	}
}

func TestEdgeFadeAngular(t *testing.T) {
	fade := EdgeFadeRule{Mode: FadeAngular, Width: 0.2, AngleStart: 1, AngleEnd: 2}
	if got := fade.factor(r3.Vec{}, 1.5); got != 1 {
		t.Errorf("sector middle factor = %v, want 1", got)
	}
	if got := fade.factor(r3.Vec{}, 1); got != 0 {
		t.Errorf("sector start factor = %v, want 0", got)
	}
	if got := fade.factor(r3.Vec{}, 2.8); got != 0 {
		t.Errorf("outside sector factor = %v, want 0", got)
	}
}

func TestSweepAllDimAtZero(t *testing.T) {
	s := SweepRule{Cycle: 6, Bright: Range{0.8, 1}, Dim: 0.15}
	sweep := s.angleAt(0)
	if sweep != 0 {
		t.Fatalf("sweep angle at elapsed 0 = %v, want 0", sweep)
	}
	// Every offset, including exactly 0, is dim under the strict-less-than
	// convention.
	for _, angle := range []float64{0, 0.1, math.Pi, 2 * math.Pi * 0.999} {
		if got := s.opacity(angle, sweep, 0.5); got != 0.15 {
			t.Errorf("opacity at angle %v = %v, want dim 0.15", angle, got)
		}
	}
}

func TestSweepNearFullCycle(t *testing.T) {
	s := SweepRule{Cycle: 6, Bright: Range{0.8, 1}, Dim: 0.15}
	sweep := s.angleAt(6 - 1e-4)
	// Just before wrap, everything except a sliver near 2π is bright.
	for _, angle := range []float64{0, 1, math.Pi, 2 * math.Pi * 0.99} {
		got := s.opacity(angle, sweep, 0.5)
		if got < 0.8 || got > 1 {
			t.Errorf("opacity at angle %v = %v, want in bright range [0.8, 1]", angle, got)
		}
	}
	// The boundary particle sits exactly on the sweep angle: dim.
	if got := s.opacity(sweep, sweep, 0.5); got != 0.15 {
		t.Errorf("boundary opacity = %v, want dim 0.15", got)
	}
}

func TestSweepWrapsCycle(t *testing.T) {
	s := SweepRule{Cycle: 6, Bright: Range{1, 1}, Dim: 0}
	if a, b := s.angleAt(1), s.angleAt(7); math.Abs(a-b) > 1e-9 {
		t.Errorf("sweep angle at 1s = %v, at 7s = %v, want equal after wrap", a, b)
	}
}

func TestSweepBrightStablePerParticle(t *testing.T) {
	s := SweepRule{Cycle: 6, Bright: Range{0.6, 1}, Dim: 0}
	a := s.opacity(0.5, math.Pi, 0.3)
	b := s.opacity(0.5, math.Pi, 0.3)
	if a != b {
		t.Errorf("bright opacity not stable: %v vs %v", a, b)
	}
	if want := 0.6 + 0.3*0.4; math.Abs(a-want) > 1e-12 {
		t.Errorf("bright opacity = %v, want %v", a, want)
	}
}

func TestMaskPlanar(t *testing.T) {
	m := MaskRule{InnerRadius: 3, Fade: 2, Scale: Vec2{X: 10, Y: 10}}
	cur := Vec2{X: 0.5, Y: 0} // focal point at (5, 0)

	if got := m.factor(r3.Vec{X: 5}, 0, cur); got != 0 {
		t.Errorf("factor at focal point = %v, want 0", got)
	}
	if got := m.factor(r3.Vec{X: 5, Y: 10}, 0, cur); got != 1 {
		t.Errorf("factor far from focal point = %v, want 1", got)
	}
	if got := m.factor(r3.Vec{X: 9}, 0, cur); got <= 0 || got >= 1 {
		t.Errorf("factor inside fade band = %v, want in (0, 1)", got)
	}
}

func TestMaskAngular(t *testing.T) {
	m := MaskRule{InnerRadius: 0.3, Fade: 0.4, Angular: true}
	cur := Vec2{X: 1, Y: 0} // focal angle 0

	if got := m.factor(r3.Vec{}, 0, cur); got != 0 {
		t.Errorf("factor at focal angle = %v, want 0", got)
	}
	if got := m.factor(r3.Vec{}, math.Pi, cur); got != 1 {
		t.Errorf("factor opposite focal angle = %v, want 1", got)
	}
	// Wrap-around distance: angle 2π-0.1 is 0.1 from focal angle 0.
	if got := m.factor(r3.Vec{}, 2*math.Pi-0.1, cur); got != 0 {
		t.Errorf("wrapped factor = %v, want 0", got)
	}
}

func TestMaskAngularZeroVector(t *testing.T) {
	// A zero-length interaction vector has no direction; the mask must pass
	// everything through instead of producing NaN.
	m := MaskRule{InnerRadius: 0.3, Fade: 0.4, Angular: true}
	if got := m.factor(r3.Vec{}, 1.0, Vec2{}); got != 1 {
		t.Errorf("zero-vector factor = %v, want 1", got)
	}
}

func TestAttributeRuleValidation(t *testing.T) {
	bad := []AttributeRule{
		{Size: Range{-1, 2}},
		{Size: Range{3, 1}},
		{Opacity: Range{0, 1.5}},
		{Opacity: Range{0.9, 0.2}},
		{Sweep: &SweepRule{Cycle: 0}},
		{Sweep: &SweepRule{Cycle: 5, Bright: Range{0.5, 2}}},
		{Sweep: &SweepRule{Cycle: 5, Bright: Range{0, 1}, Dim: -0.1}},
		{Mask: &MaskRule{InnerRadius: -1}},
		{EdgeFade: &EdgeFadeRule{Width: -2}},
	}
	for i, rule := range bad {
		if err := rule.validate(); err == nil {
			t.Errorf("rule %d: validate = nil, want error", i)
		}
	}
	good := AttributeRule{Size: Range{0.5, 2}, Opacity: Range{0.1, 0.9}}
	if err := good.validate(); err != nil {
		t.Errorf("good rule: validate = %v, want nil", err)
	}
}

func TestStaticOpacityWithinBounds(t *testing.T) {
	rule := AttributeRule{
		Opacity:  Range{0.3, 0.7},
		EdgeFade: &EdgeFadeRule{Mode: FadeRadial, Width: 5, OuterRadius: 20},
	}
	ext := newExtents()
	ext.include(r3.Vec{X: -20, Y: -20, Z: -1})
	ext.include(r3.Vec{X: 20, Y: 20, Z: 1})
	rng := testRNG(23)
	for i := 0; i < 500; i++ {
		p := r3.Vec{X: (rng.Float64() - 0.5) * 40, Y: (rng.Float64() - 0.5) * 40}
		got := rule.staticOpacity(p, 0, ext, rng)
		if got < 0 || got > 0.7 {
			t.Fatalf("opacity %v outside [0, 0.7] at %+v", got, p)
		}
	}
}
