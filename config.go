package driftfield

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// Config fully describes a particle field. Build one in code or load a named
// profile from YAML via LoadProfile.
type Config struct {
	// ParticleCount is the total particle budget, split across Regions.
	ParticleCount int
	// Seed drives the injected random source. The same seed reproduces the
	// same field exactly.
	Seed uint64
	// Color is the particle tint handed to render adapters.
	Color Color
	// FadeIn is the duration in seconds of the opacity fade on start.
	// Zero starts at full opacity.
	FadeIn float64
	// Motion tunes the organic floating displacement.
	Motion MotionConfig
	// Pointer tunes pointer-driven interaction.
	Pointer PointerConfig
	// Regions are the sub-shapes making up the field, in buffer order.
	Regions []Region
}

// Validate checks the whole configuration before any sampling begins.
func (c Config) Validate() error {
	if c.ParticleCount <= 0 {
		return fmt.Errorf("particle count must be positive, got %d", c.ParticleCount)
	}
	if c.FadeIn < 0 || math.IsNaN(c.FadeIn) || math.IsInf(c.FadeIn, 0) {
		return fmt.Errorf("fade-in must be finite and non-negative, got %v", c.FadeIn)
	}
	if err := c.Pointer.validate(); err != nil {
		return err
	}
	return validateRegions(c.Regions)
}

//go:embed defaults.yaml
var defaultsYAML []byte

// --- YAML profile schema ---
//
// Shapes and rules are interfaces and pointers in the core API, so the YAML
// layer uses plain mirror structs and converts. Unknown YAML fields are
// ignored (yaml.v3 default), so profiles written for newer versions still
// load.

type profileFile struct {
	Profiles map[string]profileConfig `yaml:"profiles"`
}

type profileConfig struct {
	ParticleCount int            `yaml:"particle_count"`
	Seed          uint64         `yaml:"seed"`
	Color         colorConfig    `yaml:"color"`
	FadeIn        float64        `yaml:"fade_in"`
	Motion        motionConfig   `yaml:"motion"`
	Pointer       pointerConfig  `yaml:"pointer"`
	Regions       []regionConfig `yaml:"regions"`
}

type colorConfig struct {
	R float64 `yaml:"r"`
	G float64 `yaml:"g"`
	B float64 `yaml:"b"`
	A float64 `yaml:"a"`
}

type vecConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

type rangeConfig struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

func (r rangeConfig) toRange() Range {
	return Range{Min: r.Min, Max: r.Max}
}

type motionConfig struct {
	Amplitude vecConfig   `yaml:"amplitude"`
	Speed     rangeConfig `yaml:"speed"`
}

type pointerConfig struct {
	Mode   string  `yaml:"mode"` // "rotate" (default) or "offset"
	ScaleX float64 `yaml:"scale_x"`
	ScaleY float64 `yaml:"scale_y"`
	Alpha  float64 `yaml:"alpha"`
}

type regionConfig struct {
	Name   string      `yaml:"name"`
	Weight float64     `yaml:"weight"`
	Shape  shapeConfig `yaml:"shape"`
	Attr   attrConfig  `yaml:"attr"`
}

type shapeConfig struct {
	Kind string `yaml:"kind"` // torus, sphere, ellipsoid, disc, rounded_box

	MajorRadius float64     `yaml:"major_radius"` // torus
	TubeRadius  float64     `yaml:"tube_radius"`  // torus
	TubeScale   rangeConfig `yaml:"tube_scale"`   // torus

	Radius float64   `yaml:"radius"` // sphere
	Radii  vecConfig `yaml:"radii"`  // ellipsoid

	InnerRadius float64 `yaml:"inner_radius"` // disc
	OuterRadius float64 `yaml:"outer_radius"` // disc

	Width        float64 `yaml:"width"`         // rounded_box
	Height       float64 `yaml:"height"`        // rounded_box
	CornerRadius float64 `yaml:"corner_radius"` // rounded_box

	Depth float64 `yaml:"depth"` // disc, rounded_box
}

func (s shapeConfig) build() (Shape, error) {
	switch s.Kind {
	case "torus":
		return Torus{
			MajorRadius: s.MajorRadius,
			TubeRadius:  s.TubeRadius,
			TubeScale:   s.TubeScale.toRange(),
		}, nil
	case "sphere":
		return NewSphere(s.Radius), nil
	case "ellipsoid":
		return Ellipsoid{Radii: r3.Vec{X: s.Radii.X, Y: s.Radii.Y, Z: s.Radii.Z}}, nil
	case "disc":
		return Disc{InnerRadius: s.InnerRadius, OuterRadius: s.OuterRadius, Depth: s.Depth}, nil
	case "rounded_box":
		return RoundedBox{
			Width:        s.Width,
			Height:       s.Height,
			Depth:        s.Depth,
			CornerRadius: s.CornerRadius,
		}, nil
	case "":
		return nil, fmt.Errorf("shape kind is required")
	default:
		return nil, fmt.Errorf("unknown shape kind %q", s.Kind)
	}
}

type attrConfig struct {
	Size     rangeConfig     `yaml:"size"`
	Opacity  rangeConfig     `yaml:"opacity"`
	Gradient *gradientConfig `yaml:"gradient"`
	EdgeFade *edgeFadeConfig `yaml:"edge_fade"`
	Sweep    *sweepConfig    `yaml:"sweep"`
	Mask     *maskConfig     `yaml:"mask"`
}

type gradientConfig struct {
	Axis  string  `yaml:"axis"` // x, y (default), z
	Floor float64 `yaml:"floor"`
	Span  float64 `yaml:"span"`
}

type edgeFadeConfig struct {
	Mode        string  `yaml:"mode"` // radial (default), angular, rect
	Width       float64 `yaml:"width"`
	OuterRadius float64 `yaml:"outer_radius"`
	AngleStart  float64 `yaml:"angle_start"`
	AngleEnd    float64 `yaml:"angle_end"`
	HalfWidth   float64 `yaml:"half_width"`
	HalfHeight  float64 `yaml:"half_height"`
}

type sweepConfig struct {
	Cycle     float64     `yaml:"cycle"`
	Reference float64     `yaml:"reference"`
	Bright    rangeConfig `yaml:"bright"`
	Dim       float64     `yaml:"dim"`
}

type maskConfig struct {
	InnerRadius float64 `yaml:"inner_radius"`
	Fade        float64 `yaml:"fade"`
	ScaleX      float64 `yaml:"scale_x"`
	ScaleY      float64 `yaml:"scale_y"`
	Angular     bool    `yaml:"angular"`
}

func parseAxis(s string) (Axis, error) {
	switch s {
	case "x":
		return AxisX, nil
	case "", "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	default:
		return 0, fmt.Errorf("unknown gradient axis %q", s)
	}
}

func (a attrConfig) build() (AttributeRule, error) {
	rule := AttributeRule{
		Size:    a.Size.toRange(),
		Opacity: a.Opacity.toRange(),
	}
	if g := a.Gradient; g != nil {
		axis, err := parseAxis(g.Axis)
		if err != nil {
			return AttributeRule{}, err
		}
		rule.Gradient = &GradientRule{Axis: axis, Floor: g.Floor, Span: g.Span}
	}
	if f := a.EdgeFade; f != nil {
		ef := &EdgeFadeRule{
			Width:       f.Width,
			OuterRadius: f.OuterRadius,
			AngleStart:  f.AngleStart,
			AngleEnd:    f.AngleEnd,
			HalfExtent:  Vec2{X: f.HalfWidth, Y: f.HalfHeight},
		}
		switch f.Mode {
		case "", "radial":
			ef.Mode = FadeRadial
		case "angular":
			ef.Mode = FadeAngular
		case "rect":
			ef.Mode = FadeRect
		default:
			return AttributeRule{}, fmt.Errorf("unknown edge fade mode %q", f.Mode)
		}
		rule.EdgeFade = ef
	}
	if s := a.Sweep; s != nil {
		rule.Sweep = &SweepRule{
			Cycle:     s.Cycle,
			Reference: s.Reference,
			Bright:    s.Bright.toRange(),
			Dim:       s.Dim,
		}
	}
	if m := a.Mask; m != nil {
		rule.Mask = &MaskRule{
			InnerRadius: m.InnerRadius,
			Fade:        m.Fade,
			Scale:       Vec2{X: m.ScaleX, Y: m.ScaleY},
			Angular:     m.Angular,
		}
	}
	return rule, nil
}

func (p profileConfig) build() (Config, error) {
	cfg := Config{
		ParticleCount: p.ParticleCount,
		Seed:          p.Seed,
		Color:         Color(p.Color),
		FadeIn:        p.FadeIn,
		Motion: MotionConfig{
			Amplitude: r3.Vec{X: p.Motion.Amplitude.X, Y: p.Motion.Amplitude.Y, Z: p.Motion.Amplitude.Z},
			Speed:     p.Motion.Speed.toRange(),
		},
	}

	switch p.Pointer.Mode {
	case "", "rotate":
		cfg.Pointer.Mode = InteractRotate
	case "offset":
		cfg.Pointer.Mode = InteractOffset
	default:
		return Config{}, fmt.Errorf("unknown pointer mode %q", p.Pointer.Mode)
	}
	cfg.Pointer.Scale = Vec2{X: p.Pointer.ScaleX, Y: p.Pointer.ScaleY}
	cfg.Pointer.Alpha = p.Pointer.Alpha

	for _, rc := range p.Regions {
		shape, err := rc.Shape.build()
		if err != nil {
			return Config{}, fmt.Errorf("region %q: %w", rc.Name, err)
		}
		attr, err := rc.Attr.build()
		if err != nil {
			return Config{}, fmt.Errorf("region %q: %w", rc.Name, err)
		}
		cfg.Regions = append(cfg.Regions, Region{
			Name:   rc.Name,
			Shape:  shape,
			Weight: rc.Weight,
			Attr:   attr,
		})
	}
	return cfg, nil
}

// LoadProfile returns the named profile from the built-in defaults, or from
// the YAML file at path merged over them. A user profile with the same name
// replaces the built-in one wholesale; new names are added. The returned
// config has already passed Validate.
func LoadProfile(path, name string) (Config, error) {
	var file profileFile
	if err := yaml.Unmarshal(defaultsYAML, &file); err != nil {
		return Config{}, fmt.Errorf("parsing embedded profiles: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading profile file: %w", err)
		}
		var user profileFile
		if err := yaml.Unmarshal(data, &user); err != nil {
			return Config{}, fmt.Errorf("parsing profile file: %w", err)
		}
		for k, v := range user.Profiles {
			file.Profiles[k] = v
		}
	}

	p, ok := file.Profiles[name]
	if !ok {
		return Config{}, fmt.Errorf("profile %q not found", name)
	}
	cfg, err := p.build()
	if err != nil {
		return Config{}, fmt.Errorf("profile %q: %w", name, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("profile %q: %w", name, err)
	}
	return cfg, nil
}

// ProfileNames returns the names of the built-in profiles, for demo pickers.
func ProfileNames() []string {
	var file profileFile
	if err := yaml.Unmarshal(defaultsYAML, &file); err != nil {
		return nil
	}
	names := make([]string, 0, len(file.Profiles))
	for name := range file.Profiles {
		names = append(names, name)
	}
	return names
}
