package main

import (
	"encoding/json"
	"fmt"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/webrec/pkg/adapters/mp4inspect"
	"github.com/user/webrec/pkg/summarizer"
)

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     l10n.T("Show the video track timing of an MP4 file"),
		ArgsUsage: "<file.mp4>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "samples", Value: 10, Usage: l10n.T("Number of samples to list (0 lists all)")},
			&cli.BoolFlag{Name: "json", Usage: l10n.T("Print the report as JSON")},
		},
		Action: runInspect,
	}
}

func runInspect(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("%s", l10n.T("An MP4 file argument is required"))
	}

	report, err := mp4inspect.InspectFile(path)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprint(c.App.Writer, summarizer.FormatInspect(report, c.Int("samples")))
	return nil
}
