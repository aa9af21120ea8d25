package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/webrec/pkg/adapters/logger"
	"github.com/user/webrec/pkg/config"
	"github.com/user/webrec/pkg/ports"
)

func captureFlags() []cli.Flag {
	cat := l10n.T("Capture")
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("Load settings from a YAML or TOML file"), Category: cat},
		&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Usage: l10n.T("Capture width in pixels (default: 1920)"), Category: cat},
		&cli.IntFlag{Name: "height", Aliases: []string{"H"}, Usage: l10n.T("Capture height in pixels (default: 1080)"), Category: cat},
		&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Usage: l10n.T("Render host (chrome, playwright, vnc, pattern)"), Category: cat},
		&cli.StringFlag{Name: "format", Usage: l10n.T("Snapshot image format (png, jpeg, webp)"), Category: cat},
		&cli.IntFlag{Name: "snapshot-quality", Usage: l10n.T("Snapshot JPEG/WebP quality (0-100)"), Category: cat},
		&cli.DurationFlag{Name: "timeout", Usage: l10n.T("Maximum wait for the page to load"), Category: cat},
	}
}

func browserFlags() []cli.Flag {
	cat := l10n.T("Browser")
	return []cli.Flag{
		&cli.BoolFlag{Name: "no-headless", Usage: l10n.T("Run browser in non-headless mode"), Category: cat},
		&cli.StringFlag{Name: "chrome-path", Usage: l10n.T("Path to Chrome executable"), EnvVars: []string{"WEBREC_CHROME_PATH"}, Category: cat},
		&cli.StringFlag{Name: "user-agent", Usage: l10n.T("Override the browser user agent"), Category: cat},
		&cli.StringSliceFlag{Name: "header", Usage: l10n.T("Extra HTTP header as 'Name: value' (repeatable)"), Category: cat},
		&cli.BoolFlag{Name: "ignore-https-errors", Usage: l10n.T("Ignore HTTPS certificate errors"), Category: cat},
		&cli.StringFlag{Name: "proxy-server", Usage: l10n.T("HTTP proxy server (e.g., http://proxy:8080)"), Category: cat},
		&cli.BoolFlag{Name: "incognito", Usage: l10n.T("Use an incognito browser context"), Category: cat},
		&cli.StringFlag{Name: "vnc-address", Usage: l10n.T("VNC server address (host:port)"), Category: cat},
		&cli.StringFlag{Name: "vnc-password", Usage: l10n.T("VNC password"), EnvVars: []string{"WEBREC_VNC_PASSWORD"}, Category: cat},
	}
}

func loggingFlags() []cli.Flag {
	cat := l10n.T("Logging")
	return []cli.Flag{
		&cli.IntFlag{Name: "verbose", Aliases: []string{"v"}, Value: 1, Usage: l10n.T("Verbosity (0 = quiet, 1 = info, 2 = debug)"), Category: cat},
		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: l10n.T("Log level (debug, info, warn, error, quiet)"), Category: cat},
		&cli.BoolFlag{Name: "timestamps", Usage: l10n.T("Prefix log lines with the time"), Category: cat},
	}
}

// logLevel resolves -v, overridden by an explicit --log-level.
func logLevel(c *cli.Context) ports.LogLevel {
	if c.IsSet("log-level") {
		return ports.ParseLogLevel(c.String("log-level"))
	}
	return ports.LevelFromVerbosity(c.Int("verbose"))
}

func newLogger(c *cli.Context) ports.Logger {
	level := logLevel(c)
	if level == ports.LevelQuiet {
		return logger.NewNoop()
	}
	l := logger.NewConsole(level)
	if c.Bool("timestamps") {
		l = l.WithTimestamps()
	}
	return l
}

// loadConfig starts from the config file (or defaults) and applies every
// flag the user set explicitly.
func loadConfig(c *cli.Context, fs config.FileReader) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(fs, path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if url := c.Args().First(); url != "" {
		cfg.URL = url
	}

	setString := func(name string, dst *string) {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	setInt := func(name string, dst *int) {
		if c.IsSet(name) {
			*dst = c.Int(name)
		}
	}
	setMs := func(name string, dst *int) {
		if c.IsSet(name) {
			*dst = int(c.Duration(name) / time.Millisecond)
		}
	}

	setString("output", &cfg.OutputPath)
	setInt("width", &cfg.Width)
	setInt("height", &cfg.Height)
	setString("fps", &cfg.FPS)
	if c.IsSet("frames") {
		cfg.Frames = c.Uint64("frames")
	}
	setMs("duration", &cfg.DurationMs)
	setMs("grace", &cfg.GraceMs)
	setMs("timeout", &cfg.TimeoutMs)
	setString("format", &cfg.Format)
	setString("source", &cfg.Source)
	setInt("snapshot-quality", &cfg.SnapQuality)

	if c.IsSet("no-headless") {
		cfg.Headless = !c.Bool("no-headless")
	}
	setString("chrome-path", &cfg.ChromePath)
	setString("user-agent", &cfg.UserAgent)
	if c.IsSet("header") {
		headers, err := parseHeaders(c.StringSlice("header"))
		if err != nil {
			return cfg, err
		}
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string)
		}
		for k, v := range headers {
			cfg.Headers[k] = v
		}
	}
	if c.IsSet("ignore-https-errors") {
		cfg.IgnoreHTTPSErrors = c.Bool("ignore-https-errors")
	}
	setString("proxy-server", &cfg.ProxyServer)
	if c.IsSet("incognito") {
		cfg.Incognito = c.Bool("incognito")
	}
	setString("vnc-address", &cfg.VNCAddress)
	setString("vnc-password", &cfg.VNCPassword)

	setString("backend", &cfg.Backend)
	setInt("quality", &cfg.Quality)
	if c.IsSet("codec") {
		cfg.Codecs = c.StringSlice("codec")
	}
	setString("ffmpeg-path", &cfg.FFmpegPath)
	setInt("fragment-frames", &cfg.FragmentFrames)

	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	setString("debug-dir", &cfg.DebugDir)

	return cfg, nil
}

// parseHeaders accepts "Name: value" or "Name=value".
func parseHeaders(values []string) (map[string]string, error) {
	headers := make(map[string]string, len(values))
	for _, v := range values {
		name, value, ok := strings.Cut(v, ":")
		if !ok {
			name, value, ok = strings.Cut(v, "=")
		}
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%s", l10n.F("Invalid header %q, expected 'Name: value'", v))
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}
