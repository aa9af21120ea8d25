package config

import (
	"errors"
	"testing"
	"time"

	"github.com/user/webrec/pkg/mocks"
	"github.com/user/webrec/pkg/ports"
	"github.com/user/webrec/pkg/timing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Width != 1920 || cfg.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.FPS != "30" {
		t.Errorf("expected 30 fps, got %s", cfg.FPS)
	}
	if cfg.OutputPath != "output.mkv" {
		t.Errorf("expected output.mkv, got %s", cfg.OutputPath)
	}
	if cfg.GraceMs != 100 {
		t.Errorf("expected 100ms grace, got %d", cfg.GraceMs)
	}
	if cfg.Backend != "auto" {
		t.Errorf("expected auto backend, got %s", cfg.Backend)
	}
}

func TestLoadFromFile_YAML(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteFile("webrec.yaml", []byte(`
url: https://example.com
fps: 30000/1001
width: 1280
height: 720
frames: 90
headers:
  X-Test: "1"
codecs: [libx264]
`))

	cfg, err := LoadFromFile(fs, "webrec.yaml")
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.URL != "https://example.com" || cfg.FPS != "30000/1001" || cfg.Frames != 90 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Width != 1280 || cfg.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Headers["X-Test"] != "1" || len(cfg.Codecs) != 1 {
		t.Errorf("headers or codecs not loaded: %+v", cfg)
	}
	// Untouched keys keep their defaults.
	if cfg.GraceMs != 100 || cfg.OutputPath != "output.mkv" {
		t.Errorf("defaults lost: grace=%d output=%s", cfg.GraceMs, cfg.OutputPath)
	}
}

func TestLoadFromFile_TOML(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteFile("webrec.toml", []byte(`
url = "https://example.com"
output = "clip.mp4"
fps = "60"
backend = "mp4"
grace_ms = 250
`))

	cfg, err := LoadFromFile(fs, "webrec.toml")
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.OutputPath != "clip.mp4" || cfg.FPS != "60" || cfg.Backend != "mp4" || cfg.GraceMs != 250 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Width != 1920 {
		t.Errorf("expected default width, got %d", cfg.Width)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteFile("webrec.json", []byte(`{}`))
	fs.WriteFile("bad.yaml", []byte("width: [1, 2"))

	if _, err := LoadFromFile(fs, "webrec.json"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := LoadFromFile(fs, "bad.yaml"); err == nil {
		t.Error("expected parse error")
	}
	if _, err := LoadFromFile(fs, "missing.yaml"); err == nil {
		t.Error("expected read error")
	}
}

func TestValidate(t *testing.T) {
	valid := Defaults()
	valid.URL = "https://example.com"

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults with url", func(c *Config) {}, false},
		{"pattern without url", func(c *Config) { c.URL = ""; c.Source = SourcePattern }, false},
		{"chrome without url", func(c *Config) { c.URL = "" }, true},
		{"vnc without address", func(c *Config) { c.Source = SourceVNC }, true},
		{"vnc with address", func(c *Config) { c.Source = SourceVNC; c.VNCAddress = "localhost:5900" }, false},
		{"zero width", func(c *Config) { c.Width = 0 }, true},
		{"bad fps", func(c *Config) { c.FPS = "fast" }, true},
		{"zero fps", func(c *Config) { c.FPS = "0" }, true},
		{"bad format", func(c *Config) { c.Format = "gif" }, true},
		{"bad backend", func(c *Config) { c.Backend = "gstreamer" }, true},
		{"bad source", func(c *Config) { c.Source = "firefox" }, true},
		{"quality too high", func(c *Config) { c.Quality = 101 }, true},
		{"negative grace", func(c *Config) { c.GraceMs = -1 }, true},
		{"empty output", func(c *Config) { c.OutputPath = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestToRecorderConfig(t *testing.T) {
	cfg := Defaults()
	cfg.URL = "https://example.com"
	cfg.FPS = "29.97"
	cfg.Frames = 10
	cfg.DurationMs = 5000
	cfg.Format = "jpeg"
	cfg.SnapQuality = 70
	cfg.UserAgent = "webrec-test"

	rc, err := cfg.ToRecorderConfig()
	if err != nil {
		t.Fatalf("ToRecorderConfig failed: %v", err)
	}

	if rc.Rate != (timing.Rate{Num: 2997, Den: 100}) {
		t.Errorf("unexpected rate %v", rc.Rate)
	}
	if rc.MaxFrames != 10 || rc.Duration != 5*time.Second || rc.Grace != 100*time.Millisecond {
		t.Errorf("unexpected limits: %+v", rc)
	}
	if rc.Format != ports.SnapshotJPEG || rc.Host.Quality != 70 || rc.Host.UserAgent != "webrec-test" {
		t.Errorf("host options not carried over: %+v", rc.Host)
	}
	if !rc.Host.Headless {
		t.Error("expected headless by default")
	}
	if err := rc.Validate(); err != nil {
		t.Errorf("converted config is invalid: %v", err)
	}
}
