// Package main provides the CLI entry point for webrec.
package main

import (
	"fmt"
	"os"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, l10n.F("Error: %s", err))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version",
		Usage: l10n.T("Show version information"),
	}

	return &cli.App{
		Name:    "webrec",
		Usage:   l10n.T("Record a rendered surface into a constant-frame-rate video"),
		Version: version,
		Commands: []*cli.Command{
			recordCommand(),
			snapshotCommand(),
			inspectCommand(),
			{
				Name:  "version",
				Usage: l10n.T("Show version information"),
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, l10n.F("webrec version %s", version))
					return nil
				},
			},
		},
	}
}
