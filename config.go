package blacksky

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	ErrConfigFormat  = errors.New("unsupported config format")
	ErrInvalidConfig = errors.New("invalid config")
)

type WindowConfig struct {
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
	Title  string `toml:"title" yaml:"title"`
}

type TerminalConfig struct {
	FrameRate int    `toml:"frame_rate" yaml:"frame_rate"`
	LogFile   string `toml:"log_file" yaml:"log_file"`
}

type SnapshotConfig struct {
	Frames  int     `toml:"frames" yaml:"frames"`
	Out     string  `toml:"out" yaml:"out"`
	Scale   float64 `toml:"scale" yaml:"scale"`
	Caption string  `toml:"caption" yaml:"caption"`
}

// SceneConfig is everything a scene file can set. Fields missing from the
// file keep their defaults; a list present in the file replaces the default
// list as a whole.
type SceneConfig struct {
	Renderer   string         `toml:"renderer" yaml:"renderer"`
	Seed       int64          `toml:"seed" yaml:"seed"`
	Rotation   string         `toml:"rotation" yaml:"rotation"`
	Clear      [4]float32     `toml:"clear" yaml:"clear"`
	Window     WindowConfig   `toml:"window" yaml:"window"`
	Terminal   TerminalConfig `toml:"terminal" yaml:"terminal"`
	Snapshot   SnapshotConfig `toml:"snapshot" yaml:"snapshot"`
	Containers []Container    `toml:"containers" yaml:"containers"`
	Visuals    []VisualDef    `toml:"visuals" yaml:"visuals"`
	Effects    EffectsConfig  `toml:"effects" yaml:"effects"`
}

func DefaultSceneConfig() *SceneConfig {
	return &SceneConfig{
		Renderer: string(RendererWGPU),
		Rotation: FrameCoupled.String(),
		Clear:    [4]float32{0, 0, 0, 1},
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "Black Sky",
		},
		Terminal: TerminalConfig{FrameRate: 30},
		Snapshot: SnapshotConfig{
			Frames: 120,
			Out:    "blacksky.png",
			Scale:  1,
		},
		Containers: DefaultContainers(),
		Visuals:    DefaultVisualDefs(),
		Effects:    DefaultEffectsConfig(),
	}
}

// LoadSceneConfig reads a TOML (.toml) or YAML (.yaml, .yml) scene file on
// top of the defaults and validates it.
func LoadSceneConfig(path string) (*SceneConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseSceneConfig(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseSceneConfig decodes data in the format named by ext.
func ParseSceneConfig(data []byte, ext string) (*SceneConfig, error) {
	cfg := DefaultSceneConfig()
	// Lists are decoded fresh so file entries never inherit default entries.
	cfg.Containers, cfg.Visuals = nil, nil

	var err error
	switch strings.ToLower(ext) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrConfigFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Containers == nil {
		cfg.Containers = DefaultContainers()
	}
	if cfg.Visuals == nil {
		cfg.Visuals = DefaultVisualDefs()
	} else {
		for i := range cfg.Visuals {
			cfg.Visuals[i] = cfg.Visuals[i].withDefaults()
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem found, joined.
func (cfg *SceneConfig) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...)))
	}

	if _, err := ParseRendererName(cfg.Renderer); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseRotationMode(cfg.Rotation); err != nil {
		errs = append(errs, err)
	}
	if cfg.Window.Width <= 0 || cfg.Window.Height <= 0 {
		invalid("window size %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Snapshot.Scale <= 0 {
		invalid("snapshot scale %v", cfg.Snapshot.Scale)
	}

	names := make(map[string]bool, len(cfg.Containers))
	for _, c := range cfg.Containers {
		if c.Name == "" {
			invalid("container without a name")
		}
		if names[c.Name] {
			invalid("duplicate container %q", c.Name)
		}
		names[c.Name] = true
		if c.Size < 0 {
			invalid("container %q size %v", c.Name, c.Size)
		}
	}
	for _, v := range cfg.Visuals {
		switch v.Kind {
		case KindGalaxy, string(PrimitiveCube), string(PrimitiveSphere), string(PrimitiveTorus):
		default:
			invalid("visual %q kind %q", v.Name, v.Kind)
		}
		if v.Count < 0 {
			invalid("visual %q count %d", v.Name, v.Count)
		}
	}
	if cfg.Effects.TwinkleCount < 0 {
		invalid("twinkle count %d", cfg.Effects.TwinkleCount)
	}
	return errors.Join(errs...)
}

// RotationMode parses the rotation field; Validate has checked it.
func (cfg *SceneConfig) RotationMode() RotationMode {
	mode, _ := ParseRotationMode(cfg.Rotation)
	return mode
}

func ParseRotationMode(s string) (RotationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "frame", FrameCoupled.String():
		return FrameCoupled, nil
	case "time", TimeScaled.String():
		return TimeScaled, nil
	}
	return FrameCoupled, fmt.Errorf("%w: rotation %q", ErrInvalidConfig, s)
}
