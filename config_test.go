package grove

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

const testConfig = `
[window]
title = "Mars Base One"
show_fps = true

[assets]
root = "data"
manifest = "assets.yaml"
max_concurrent_loads = 2

[loading]
timeout = "5s"
fail_fast = true

[physics]
tick = "20ms"

[input]
start = ["Enter", "P"]

[logging]
level = "debug"
format = "json"
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(testConfig))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Window.Title != "Mars Base One" {
		t.Errorf("title = %q", cfg.Window.Title)
	}
	if !cfg.Window.ShowFPS {
		t.Error("show_fps not set")
	}
	// Unset keys keep their defaults.
	if cfg.Window.Width != 1024 || cfg.Window.Height != 768 || cfg.Window.TPS != 60 {
		t.Errorf("window size = %dx%d@%d, want defaults", cfg.Window.Width, cfg.Window.Height, cfg.Window.TPS)
	}
	if cfg.Assets.Root != "data" || cfg.Assets.Manifest != "assets.yaml" || cfg.Assets.MaxConcurrentLoads != 2 {
		t.Errorf("assets = %+v", cfg.Assets)
	}
	if cfg.Loading.Timeout != 5*time.Second || !cfg.Loading.FailFast {
		t.Errorf("loading = %+v", cfg.Loading)
	}
	if cfg.Physics.Tick != 20*time.Millisecond {
		t.Errorf("tick = %v, want 20ms", cfg.Physics.Tick)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}

	keys := cfg.Input.Bindings()[ActionStart]
	if len(keys) != 2 || keys[0] != ebiten.KeyEnter || keys[1] != ebiten.KeyP {
		t.Errorf("start keys = %v, want [Enter P]", keys)
	}
}

func TestParseConfigInvalid(t *testing.T) {
	if _, err := ParseConfig([]byte("[window\ntitle = 1")); err == nil {
		t.Error("expected error for malformed TOML")
	}
	if _, err := ParseConfig([]byte("[input]\nstart = [\"NoSuchKey\"]")); err == nil {
		t.Error("expected error for unknown key name")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Physics.Tick != PhysicsTickTime {
		t.Errorf("tick = %v, want %v", cfg.Physics.Tick, PhysicsTickTime)
	}
	if cfg.Assets.MaxConcurrentLoads != DefaultMaxConcurrentLoads {
		t.Errorf("max loads = %d, want %d", cfg.Assets.MaxConcurrentLoads, DefaultMaxConcurrentLoads)
	}
	if cfg.Loading.FailFast || cfg.Loading.Timeout != 0 {
		t.Errorf("loading hardening should default off: %+v", cfg.Loading)
	}
}

func TestLoadConfigOrDefault(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfigOrDefault(filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if cfg.Window.Title != "grove" {
		t.Errorf("title = %q, want default", cfg.Window.Title)
	}

	path := filepath.Join(dir, "grove.toml")
	if err := os.WriteFile(path, []byte("[window]\ntitle = \"Flappy\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadConfigOrDefault(path)
	if err != nil {
		t.Fatalf("LoadConfigOrDefault: %v", err)
	}
	if cfg.Window.Title != "Flappy" {
		t.Errorf("title = %q, want Flappy", cfg.Window.Title)
	}

	if err := os.WriteFile(path, []byte("not = [toml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfigOrDefault(path); err == nil {
		t.Error("expected parse error to be returned, not defaults")
	}
}

func TestNewLogger(t *testing.T) {
	for _, cfg := range []LoggingConfig{
		{Level: "debug", Format: "console"},
		{Level: "warn", Format: "json"},
		{Level: "nonsense"},
	} {
		log, err := NewLogger(cfg)
		if err != nil {
			t.Fatalf("NewLogger(%+v): %v", cfg, err)
		}
		log.Debug("test entry")
	}
}
