// Package driftfield generates and animates large point clouds that trace
// parametric solids or arbitrary vector artwork, for decorative interactive
// backgrounds on [Ebitengine].
//
// A field is built once from a [Config]: each configured region samples its
// share of the particle budget from a [Shape] (torus, sphere, ellipsoid, disc,
// rounded box, or a triangulated vector mesh), then static attributes (size,
// base opacity) are derived from position. After that the caller drives the
// field one tick at a time; every tick recomputes positions and opacities as
// pure functions of elapsed time, so the animation is bounded, drift-free,
// and restartable.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	cfg, err := driftfield.LoadProfile("", "ring")
//	if err != nil {
//		log.Fatal(err)
//	}
//	field, err := driftfield.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	driftfield.Run(field, driftfield.RunConfig{
//		Title: "Ring", Width: 960, Height: 640,
//	})
//
// For full control, implement [ebiten.Game] yourself, feed pointer input via
// [Field.SetInput], call [Field.Tick] from Update, and draw the submitted
// buffers with your own [RenderAdapter]:
//
//	type Game struct {
//		field   *driftfield.Field
//		adapter *driftfield.SpriteAdapter
//	}
//
//	func (g *Game) Update() error {
//		g.field.SetInput(pointerNorm())
//		g.field.Tick(1.0 / float64(ebiten.TPS()))
//		return nil
//	}
//	func (g *Game) Draw(s *ebiten.Image) { g.adapter.Draw(s) }
//
// # Regions
//
// Composite fields (a ring with a highlighted sector and a core orb, say) are
// described as a list of [Region] values. The particle budget is split across
// regions by weight, each region samples independently, and the results are
// concatenated into contiguous index ranges so attribute rules can address a
// region without per-particle tags.
//
// # Determinism
//
// Every sampler draws from an injected random source seeded by Config.Seed.
// The same config always produces the same field, which the tests rely on.
//
// [Ebitengine]: https://ebitengine.org
package driftfield
