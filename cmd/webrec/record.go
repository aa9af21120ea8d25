package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/webrec/pkg/adapters/backendselect"
	"github.com/user/webrec/pkg/adapters/chromehost"
	"github.com/user/webrec/pkg/adapters/filesink"
	"github.com/user/webrec/pkg/adapters/nullsink"
	"github.com/user/webrec/pkg/adapters/osfilesystem"
	"github.com/user/webrec/pkg/adapters/patternhost"
	"github.com/user/webrec/pkg/adapters/playwrighthost"
	"github.com/user/webrec/pkg/adapters/vnchost"
	"github.com/user/webrec/pkg/config"
	"github.com/user/webrec/pkg/ports"
	"github.com/user/webrec/pkg/recorder"
	"github.com/user/webrec/pkg/summarizer"
)

func recordCommand() *cli.Command {
	out := l10n.T("Output")
	enc := l10n.T("Encoding")

	flags := []cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: l10n.T("Output video file (default: output.mkv)"), Category: out},
		&cli.StringFlag{Name: "fps", Aliases: []string{"r"}, Usage: l10n.T("Frame rate: 30, 30000/1001 or 29.97 (default: 30)"), Category: out},
		&cli.Uint64Flag{Name: "frames", Aliases: []string{"n"}, Usage: l10n.T("Stop after this many frames"), Category: out},
		&cli.DurationFlag{Name: "duration", Aliases: []string{"t"}, Usage: l10n.T("Stop after this long (e.g., 10s)"), Category: out},
		&cli.DurationFlag{Name: "grace", Usage: l10n.T("Wait this long for an in-flight capture when stopping"), Category: out},
		&cli.StringFlag{Name: "summary", Usage: l10n.T("Write the recording summary as JSON to this file"), Category: out},
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Save every captured snapshot for debugging"), Category: out},
		&cli.StringFlag{Name: "debug-dir", Usage: l10n.T("Debug output directory (default: ./debug)"), Category: out},

		&cli.StringFlag{Name: "backend", Aliases: []string{"b"}, Usage: l10n.T("Encoder backend (auto, ffmpeg, mp4, mjpeg)"), Category: enc},
		&cli.IntFlag{Name: "quality", Aliases: []string{"q"}, Usage: l10n.T("Encoder quality (0-100)"), Category: enc},
		&cli.StringSliceFlag{Name: "codec", Usage: l10n.T("Preferred ffmpeg codec (repeatable, tried in order)"), Category: enc},
		&cli.StringFlag{Name: "ffmpeg-path", Usage: l10n.T("Path to the ffmpeg binary"), EnvVars: []string{"WEBREC_FFMPEG_PATH"}, Category: enc},
		&cli.IntFlag{Name: "fragment-frames", Usage: l10n.T("Frames per fragment for the built-in MP4 writer"), Category: enc},
	}
	flags = append(flags, captureFlags()...)
	flags = append(flags, browserFlags()...)
	flags = append(flags, loggingFlags()...)

	return &cli.Command{
		Name:      "record",
		Usage:     l10n.T("Record a page into a constant-frame-rate video"),
		ArgsUsage: "<url>",
		Flags:     flags,
		Action:    runRecord,
	}
}

func runRecord(c *cli.Context) error {
	log := newLogger(c)
	fs := osfilesystem.New()

	cfg, err := loadConfig(c, fs)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	recCfg, err := cfg.ToRecorderConfig()
	if err != nil {
		return err
	}

	host, err := buildHost(cfg.Source, log)
	if err != nil {
		return err
	}

	kind, _ := backendselect.ParseKind(cfg.Backend)
	backend, info, err := backendselect.New(kind, cfg.OutputPath, backendselect.Options{
		FFmpegPath:     cfg.FFmpegPath,
		FragmentFrames: cfg.FragmentFrames,
		Logger:         log,
	})
	if err != nil {
		return err
	}
	log.Debug("Selected %s backend (requested %s)", info.Kind, info.Requested)

	var sink ports.DebugSink = nullsink.New()
	if cfg.Debug {
		sink = filesink.New(cfg.DebugDir, fs)
	}

	flag := &recorder.ShutdownFlag{}
	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()
	stopSignals := watchSignals(flag, cancel, log)
	defer stopSignals()

	rec := recorder.New(host, backend, nil, fs, sink, log, flag)
	result, runErr := rec.Run(ctx, recCfg)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	builder := summarizer.NewBuilder().WithRecording(result)
	if st, err := os.Stat(cfg.OutputPath); err == nil {
		builder = builder.WithFileSize(st.Size())
	}
	summary := builder.Build()

	if logLevel(c) != ports.LevelQuiet {
		fmt.Fprint(c.App.Writer, summarizer.NewTableFormatter().Format(summary))
	}
	if path := c.String("summary"); path != "" {
		if err := summarizer.NewWriter(summarizer.NewJSONFormatter(), fs).Write(path, summary); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		log.Info("Summary saved to %s", path)
	}

	log.Info("Output saved to %s", cfg.OutputPath)
	return runErr
}

// buildHost returns the render host for a source name.
func buildHost(source string, log ports.Logger) (ports.RenderHost, error) {
	switch source {
	case config.SourceChrome:
		return chromehost.New(log), nil
	case config.SourcePlaywright:
		return playwrighthost.New(), nil
	case config.SourceVNC:
		return vnchost.New(log), nil
	case config.SourcePattern:
		return patternhost.New(patternhost.Options{Seed: time.Now().UnixNano()}), nil
	default:
		return nil, fmt.Errorf("%w: source %q", config.ErrInvalid, source)
	}
}

// watchSignals raises the shutdown flag on the first interrupt and cancels
// the recording on the second.
func watchSignals(flag *recorder.ShutdownFlag, cancel context.CancelFunc, log ports.Logger) func() {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		count := 0
		for {
			select {
			case <-sigCh:
				count++
				if count == 1 {
					flag.Request()
					continue
				}
				log.Warn("Second interrupt, aborting")
				cancel()
				return
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
