package driftfield

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// --- White pixel singleton (no sync.Once, driftfield is single-threaded) ---

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image.
// Created on first draw rather than in init so package import is safe before
// the ebiten game loop exists.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// SpriteAdapter renders the field's buffers as additive-blended point
// sprites with a simple perspective projection. It implements RenderAdapter;
// construct it with NewSpriteAdapter, which registers it on the field, then
// call Draw from your game's Draw.
//
// Additive blending is order-independent, so particles are drawn in buffer
// order with no depth sort.
type SpriteAdapter struct {
	// Zoom is the pixel size of one field unit at z = 0.
	Zoom float64
	// Focal is the perspective focal distance in field units. Larger values
	// flatten the projection. Particles at or behind the focal plane are
	// skipped.
	Focal float64
	// SpriteScale converts a particle's size attribute to pixels before the
	// perspective factor is applied.
	SpriteScale float64

	tint      Color
	positions []float32
	opacities []float32
	sizes     []float32
}

// NewSpriteAdapter creates an adapter with sensible projection defaults and
// registers it as the field's render adapter.
func NewSpriteAdapter(f *Field) *SpriteAdapter {
	a := &SpriteAdapter{
		Zoom:        8,
		Focal:       120,
		SpriteScale: 3,
		tint:        f.Color(),
	}
	f.SetAdapter(a)
	return a
}

// Submit stores the buffers for the next Draw. Called by Field.Tick.
func (a *SpriteAdapter) Submit(positions []float32, opacities []float32, sizes []float32) {
	a.positions = positions
	a.opacities = opacities
	a.sizes = sizes
}

// Draw renders the last submitted buffers centered in the target image.
func (a *SpriteAdapter) Draw(target *ebiten.Image) {
	if len(a.opacities) == 0 {
		return
	}
	bounds := target.Bounds()
	cx := float64(bounds.Dx()) / 2
	cy := float64(bounds.Dy()) / 2
	px := ensureWhitePixel()

	var opts ebiten.DrawImageOptions
	opts.Blend = ebiten.BlendLighter

	for i := range a.opacities {
		alpha := float64(a.opacities[i]) * a.tint.A
		if alpha <= 0 {
			continue
		}
		z := float64(a.positions[3*i+2])
		if z >= a.Focal {
			continue
		}
		persp := a.Focal / (a.Focal - z)

		size := float64(a.sizes[i]) * a.SpriteScale * persp
		if size <= 0 {
			continue
		}
		x := cx + float64(a.positions[3*i])*a.Zoom*persp - size/2
		y := cy - float64(a.positions[3*i+1])*a.Zoom*persp - size/2

		opts.GeoM.Reset()
		opts.GeoM.Scale(size, size)
		opts.GeoM.Translate(x, y)
		opts.ColorScale.Reset()
		opts.ColorScale.Scale(
			float32(a.tint.R*alpha),
			float32(a.tint.G*alpha),
			float32(a.tint.B*alpha),
			float32(alpha),
		)
		target.DrawImage(px, &opts)
	}
}

// RunConfig configures the Run convenience game loop.
type RunConfig struct {
	Title  string
	Width  int
	Height int
	// Background is the clear color behind the field.
	Background Color
	// ShowFPS overlays the actual FPS/TPS in the top-left corner.
	ShowFPS bool
}

// fieldGame adapts a Field and SpriteAdapter to ebiten.Game: pointer position
// is normalized to [−1, 1]² into SetInput, the field ticks once per update,
// and the adapter draws the submitted buffers.
type fieldGame struct {
	field   *Field
	adapter *SpriteAdapter
	cfg     RunConfig
}

func (g *fieldGame) Update() error {
	mx, my := ebiten.CursorPosition()
	g.field.SetInput(Vec2{
		X: 2*float64(mx)/float64(g.cfg.Width) - 1,
		Y: 2*float64(my)/float64(g.cfg.Height) - 1,
	})
	g.field.Tick(1.0 / float64(ebiten.TPS()))
	return nil
}

func (g *fieldGame) Draw(screen *ebiten.Image) {
	bg := g.cfg.Background
	screen.Fill(color.RGBA{
		R: uint8(clamp01(bg.R) * 255),
		G: uint8(clamp01(bg.G) * 255),
		B: uint8(clamp01(bg.B) * 255),
		A: 255,
	})
	g.adapter.Draw(screen)
	if g.cfg.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f",
			ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
}

func (g *fieldGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}

// Run opens a window and drives the field until the window closes. For
// integrating a field into an existing game, skip Run and drive Field.Tick /
// SpriteAdapter.Draw from your own ebiten.Game.
func Run(field *Field, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 960
	}
	if cfg.Height <= 0 {
		cfg.Height = 640
	}
	if cfg.Title == "" {
		cfg.Title = "driftfield"
	}
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)
	return ebiten.RunGame(&fieldGame{
		field:   field,
		adapter: NewSpriteAdapter(field),
		cfg:     cfg,
	})
}
