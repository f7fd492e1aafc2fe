package blacksky

import (
	"math/rand"
	"time"
)

// SpriteLayer orders 2D sprites relative to the 3D instances.
type SpriteLayer int

const (
	LayerBackground SpriteLayer = iota
	LayerOverlay
)

// SpriteComponent is a soft disc in window pixels.
type SpriteComponent struct {
	X, Y   float32
	Radius float32
	Color  [4]float32
	Glow   float32 // extra halo radius in pixels
	Layer  SpriteLayer
}

type EffectsConfig struct {
	Twinkle      bool `toml:"twinkle" yaml:"twinkle"`
	TwinkleCount int  `toml:"twinkle_count" yaml:"twinkle_count"`
	Trail        bool `toml:"trail" yaml:"trail"`
	TrailMaxDots int  `toml:"trail_max_dots" yaml:"trail_max_dots"`
	Ripple       bool `toml:"ripple" yaml:"ripple"`
	Tilt         bool `toml:"tilt" yaml:"tilt"`
}

func DefaultEffectsConfig() EffectsConfig {
	return EffectsConfig{
		Twinkle:      true,
		TwinkleCount: 150,
		Trail:        true,
		TrailMaxDots: 256,
		Ripple:       true,
		Tilt:         true,
	}
}

// Effects holds one state object per enabled effect. A nil field means the
// effect is off.
type Effects struct {
	Config  EffectsConfig
	Twinkle *TwinkleField
	Trail   *CursorTrail
	Ripples *RippleEmitter

	rng     *rand.Rand
	pending *EffectsConfig
}

func NewEffects(cfg EffectsConfig, seed int64) *Effects {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Effects{
		rng:     rand.New(rand.NewSource(seed)),
		pending: &cfg,
	}
}

// Reconfigure swaps the configuration on the next frame.
func (fx *Effects) Reconfigure(cfg EffectsConfig) {
	fx.pending = &cfg
}

// Create builds the state objects for the current configuration.
func (fx *Effects) Create(cmd *Commands) {
	cfg := fx.Config
	if cfg.Twinkle {
		fx.Twinkle = NewTwinkleField(cfg.TwinkleCount)
		fx.Twinkle.Create(cmd, fx.rng)
	}
	if cfg.Trail {
		fx.Trail = NewCursorTrail(cfg.TrailMaxDots)
	}
	if cfg.Ripple {
		fx.Ripples = NewRippleEmitter()
	}
}

// Destroy removes every entity the effects spawned.
func (fx *Effects) Destroy(cmd *Commands) {
	if fx.Twinkle != nil {
		fx.Twinkle.Destroy(cmd)
		fx.Twinkle = nil
	}
	if fx.Trail != nil {
		fx.Trail.Destroy(cmd)
		fx.Trail = nil
	}
	if fx.Ripples != nil {
		fx.Ripples.Destroy(cmd)
		fx.Ripples = nil
	}
}

type EffectsModule struct {
	Config EffectsConfig
	Seed   int64
}

func (mod EffectsModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewEffects(mod.Config, mod.Seed))
	app.UseSystem(System(effectsConfigSystem).InStage(PreUpdate))
	app.UseSystem(System(tiltSystem).InStage(Update))
	app.UseSystem(System(trailSpawnSystem).InStage(Update))
	app.UseSystem(System(rippleSpawnSystem).InStage(Update))
	app.UseSystem(System(twinkleSystem).InStage(PostUpdate))
	app.UseSystem(System(trailFadeSystem).InStage(PostUpdate))
	app.UseSystem(System(rippleGrowSystem).InStage(PostUpdate))
}

func effectsConfigSystem(fx *Effects, cmd *Commands) {
	if fx.pending == nil {
		return
	}
	fx.Destroy(cmd)
	fx.Config = *fx.pending
	fx.pending = nil
	fx.Create(cmd)
	cmd.Logger().Debugf("Effects configured: %+v", fx.Config)
}

// easeInOut approximates CSS ease-in-out.
func easeInOut(p float32) float32 {
	p = clamp01(p)
	return p * p * (3 - 2*p)
}

// easeOut approximates CSS ease-out.
func easeOut(p float32) float32 {
	p = clamp01(p)
	q := 1 - p
	return 1 - q*q*q
}

func clamp01(p float32) float32 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
