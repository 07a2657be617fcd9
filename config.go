package grove

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hajimehoshi/ebiten/v2"
)

// Config is the contents of a game's grove.toml.
type Config struct {
	Window  WindowConfig  `toml:"window"`
	Assets  AssetsConfig  `toml:"assets"`
	Loading LoadingConfig `toml:"loading"`
	Physics PhysicsConfig `toml:"physics"`
	Input   InputConfig   `toml:"input"`
	Logging LoggingConfig `toml:"logging"`
}

// WindowConfig sizes the window and sets the update rate.
type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	TPS    int    `toml:"tps"`

	ShowFPS bool `toml:"show_fps"`
	Debug   bool `toml:"debug"` // per-cycle timing at Debug level
}

// AssetsConfig locates the asset root and bounds concurrent loads.
type AssetsConfig struct {
	Root               string `toml:"root"`
	Manifest           string `toml:"manifest"` // relative to Root; empty = none
	MaxConcurrentLoads int    `toml:"max_concurrent_loads"`
}

// LoadingConfig hardens the loading gate. The zero value waits forever.
type LoadingConfig struct {
	Timeout  time.Duration `toml:"timeout"`   // 0 = wait forever
	FailFast bool          `toml:"fail_fast"` // abort on the first failed load
}

// PhysicsConfig sets the fixed physics step.
type PhysicsConfig struct {
	Tick time.Duration `toml:"tick"`
}

// InputConfig overrides key bindings per action, using ebiten key names:
//
//	[input]
//	start = ["P", "Enter"]
type InputConfig map[string][]ebiten.Key

// Bindings converts the table into KeyBindings.
func (c InputConfig) Bindings() KeyBindings {
	out := make(KeyBindings, len(c))
	for name, keys := range c {
		out[Action(name)] = keys
	}
	return out
}

// LoggingConfig selects the zap level and encoder for NewLogger.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// LoadConfig reads path over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("grove: read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes TOML data over the defaults.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("grove: parse config: %w", err)
	}
	return cfg, nil
}

// LoadConfigOrDefault is LoadConfig, except that a missing file yields the
// defaults.
func LoadConfigOrDefault(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// DefaultConfig returns the settings used when no file overrides them.
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "grove",
			Width:  1024,
			Height: 768,
			TPS:    60,
		},
		Assets: AssetsConfig{
			Root:               "assets",
			MaxConcurrentLoads: DefaultMaxConcurrentLoads,
		},
		Physics: PhysicsConfig{
			Tick: PhysicsTickTime,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
