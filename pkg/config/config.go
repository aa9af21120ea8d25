// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/user/webrec/pkg/adapters/backendselect"
	"github.com/user/webrec/pkg/ports"
	"github.com/user/webrec/pkg/recorder"
	"github.com/user/webrec/pkg/stages/encode"
	"github.com/user/webrec/pkg/timing"
)

var (
	// ErrUnsupportedFormat is returned for config files that are neither
	// YAML nor TOML.
	ErrUnsupportedFormat = errors.New("config: unsupported file format")

	// ErrInvalid is returned by Validate.
	ErrInvalid = errors.New("config: invalid value")
)

// Source names a render host.
const (
	SourceChrome     = "chrome"
	SourcePlaywright = "playwright"
	SourceVNC        = "vnc"
	SourcePattern    = "pattern"
)

// Config represents the full configuration for webrec.
type Config struct {
	// Input/Output
	URL        string `yaml:"url" toml:"url"`
	OutputPath string `yaml:"output" toml:"output"`

	// Capture
	Width       int    `yaml:"width" toml:"width"`
	Height      int    `yaml:"height" toml:"height"`
	FPS         string `yaml:"fps" toml:"fps"` // "30", "30000/1001" or "29.97"
	Frames      uint64 `yaml:"frames" toml:"frames"`
	DurationMs  int    `yaml:"duration_ms" toml:"duration_ms"`
	GraceMs     int    `yaml:"grace_ms" toml:"grace_ms"`
	TimeoutMs   int    `yaml:"timeout_ms" toml:"timeout_ms"`
	Format      string `yaml:"format" toml:"format"`
	Source      string `yaml:"source" toml:"source"`
	SnapQuality int    `yaml:"snapshot_quality" toml:"snapshot_quality"`

	// Browser
	Headless          bool              `yaml:"headless" toml:"headless"`
	ChromePath        string            `yaml:"chrome_path" toml:"chrome_path"`
	UserAgent         string            `yaml:"user_agent" toml:"user_agent"`
	Headers           map[string]string `yaml:"headers" toml:"headers"`
	IgnoreHTTPSErrors bool              `yaml:"ignore_https_errors" toml:"ignore_https_errors"`
	ProxyServer       string            `yaml:"proxy_server" toml:"proxy_server"`
	Incognito         bool              `yaml:"incognito" toml:"incognito"`

	// VNC
	VNCAddress  string `yaml:"vnc_address" toml:"vnc_address"`
	VNCPassword string `yaml:"vnc_password" toml:"vnc_password"`

	// Encoding
	Backend        string   `yaml:"backend" toml:"backend"`
	Quality        int      `yaml:"quality" toml:"quality"`
	Codecs         []string `yaml:"codecs" toml:"codecs"`
	FFmpegPath     string   `yaml:"ffmpeg_path" toml:"ffmpeg_path"`
	FragmentFrames int      `yaml:"fragment_frames" toml:"fragment_frames"`

	// Debug
	Debug    bool   `yaml:"debug" toml:"debug"`
	DebugDir string `yaml:"debug_dir" toml:"debug_dir"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		OutputPath: "output.mkv",

		Width:     1920,
		Height:    1080,
		FPS:       "30",
		GraceMs:   100,
		TimeoutMs: 30000,
		Format:    string(ports.SnapshotPNG),
		Source:    SourceChrome,

		Headless: true,

		Backend:        string(backendselect.KindAuto),
		Quality:        80,
		FragmentFrames: 30,

		DebugDir: "./debug",
	}
}

// FileReader is the part of ports.FileSystem LoadFromFile needs.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// LoadFromFile loads configuration from a YAML (.yaml, .yml) or TOML
// (.toml) file on top of Defaults.
func LoadFromFile(fs FileReader, path string) (Config, error) {
	cfg := Defaults()

	data, err := fs.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	return cfg, nil
}

// Validate checks the values that cannot be caught by parsing.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalid, c.Width, c.Height)
	}
	if _, err := timing.ParseRate(c.FPS); err != nil {
		return fmt.Errorf("%w: fps %q: %v", ErrInvalid, c.FPS, err)
	}
	if c.OutputPath == "" {
		return fmt.Errorf("%w: output path is empty", ErrInvalid)
	}
	switch ports.SnapshotFormat(c.Format) {
	case ports.SnapshotPNG, ports.SnapshotJPEG, ports.SnapshotWebP:
	default:
		return fmt.Errorf("%w: snapshot format %q", ErrInvalid, c.Format)
	}
	switch c.Source {
	case SourceChrome, SourcePlaywright, SourcePattern:
		if c.Source != SourcePattern && c.URL == "" {
			return fmt.Errorf("%w: url is required for the %s source", ErrInvalid, c.Source)
		}
	case SourceVNC:
		if c.VNCAddress == "" {
			return fmt.Errorf("%w: vnc_address is required for the vnc source", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: source %q", ErrInvalid, c.Source)
	}
	if _, err := backendselect.ParseKind(c.Backend); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Quality < 0 || c.Quality > 100 || c.SnapQuality < 0 || c.SnapQuality > 100 {
		return fmt.Errorf("%w: quality must be within 0-100", ErrInvalid)
	}
	if c.GraceMs < 0 || c.DurationMs < 0 || c.TimeoutMs < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalid)
	}
	return nil
}

// ToRecorderConfig converts Config to recorder.Config. Call Validate first.
func (c Config) ToRecorderConfig() (recorder.Config, error) {
	rate, err := timing.ParseRate(c.FPS)
	if err != nil {
		return recorder.Config{}, fmt.Errorf("%w: fps %q: %v", ErrInvalid, c.FPS, err)
	}

	return recorder.Config{
		URL:         c.URL,
		OutputPath:  c.OutputPath,
		Width:       c.Width,
		Height:      c.Height,
		Rate:        rate,
		MaxFrames:   c.Frames,
		Duration:    time.Duration(c.DurationMs) * time.Millisecond,
		Grace:       time.Duration(c.GraceMs) * time.Millisecond,
		LoadTimeout: time.Duration(c.TimeoutMs) * time.Millisecond,
		Host: ports.HostOptions{
			Quality:           c.SnapQuality,
			Headless:          c.Headless,
			ChromePath:        c.ChromePath,
			UserAgent:         c.UserAgent,
			Headers:           c.Headers,
			IgnoreHTTPSErrors: c.IgnoreHTTPSErrors,
			ProxyServer:       c.ProxyServer,
			Incognito:         c.Incognito,
			Address:           c.VNCAddress,
			Password:          c.VNCPassword,
		},
		Format:  ports.SnapshotFormat(c.Format),
		Quality: c.Quality,
		Codecs:  c.Codecs,
		Retry:   encode.DefaultRetryPolicy(),
	}, nil
}
