package main

import (
	"fmt"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/webrec/pkg/adapters/osfilesystem"
	"github.com/user/webrec/pkg/adapters/pixeldecoder"
	"github.com/user/webrec/pkg/pipeline"
	"github.com/user/webrec/pkg/ports"
	"github.com/user/webrec/pkg/stages/snapshot"
)

func snapshotCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "snapshot.png", Usage: l10n.T("Output PNG file"), Category: l10n.T("Output")},
		&cli.DurationFlag{Name: "delay", Usage: l10n.T("Extra wait after the page has loaded"), Category: l10n.T("Capture")},
	}
	flags = append(flags, captureFlags()...)
	flags = append(flags, browserFlags()...)
	flags = append(flags, loggingFlags()...)

	return &cli.Command{
		Name:      "snapshot",
		Usage:     l10n.T("Capture a single frame as PNG"),
		ArgsUsage: "<url>",
		Flags:     flags,
		Action:    runSnapshot,
	}
}

func runSnapshot(c *cli.Context) error {
	log := newLogger(c)
	fs := osfilesystem.New()

	cfg, err := loadConfig(c, fs)
	if err != nil {
		return err
	}
	output := c.String("output")
	cfg.OutputPath = output
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

	opts := recCfg.Host
	opts.Width = recCfg.Width
	opts.Height = recCfg.Height
	opts.Format = recCfg.Format

	result, err := snapshot.New(host, log).Execute(c.Context, pipeline.SnapshotInput{
		URL:     recCfg.URL,
		Host:    opts,
		Delay:   c.Duration("delay"),
		Timeout: recCfg.LoadTimeout + 10*time.Second,
	})
	if err != nil {
		return err
	}

	data := result.Data
	if opts.Format != ports.SnapshotPNG {
		data, err = pixeldecoder.Encode(pixeldecoder.ToImage(result.Frame), ports.SnapshotPNG, 0)
		if err != nil {
			return fmt.Errorf("encode png: %w", err)
		}
	}
	if err := fs.WriteFile(output, data); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	log.Info("Output saved to %s", output)
	return nil
}
