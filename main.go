package main

import (
	"fmt"
	"os"

	"github.com/dtnitsch/docforge/internal/classify"
	"github.com/dtnitsch/docforge/internal/run"
	"github.com/dtnitsch/docforge/internal/runs"
	"github.com/dtnitsch/docforge/models"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "docforge",
		Usage: "turn tool documentation into executable templates and guardrails",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "analyze a documentation corpus and publish templates, guardrails, and a summary",
				Action: run.RunAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "source",
						Usage:    "file, directory, or comma-separated list of documentation files",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "doc-type-hint",
						Usage: "skip detection: cli, api, library, or auto",
					},
					&cli.StringFlag{
						Name:  "output",
						Value: "docforge-out",
						Usage: "directory the artifacts are published into",
					},
					&cli.BoolFlag{
						Name:  "research",
						Usage: "query the research endpoint for detected gaps",
					},
					&cli.StringFlag{
						Name:  "research-endpoint",
						Usage: "HTTP endpoint answering gap queries (implies --research)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Value: models.DefaultWorkers,
						Usage: "concurrent page classification workers",
					},
					&cli.Float64Flag{
						Name:  "confidence-floor",
						Value: models.DefaultConfidenceFloor,
						Usage: "labels below this confidence are dropped",
					},
					&cli.IntFlag{
						Name:  "summary-window",
						Value: models.DefaultSummaryWindow,
						Usage: "high-severity pitfalls must surface within this many summary lines",
					},
					&cli.IntFlag{
						Name:  "near-duplicate-distance",
						Value: models.DefaultNearDupDistance,
						Usage: "max token edit distance for flagging near-duplicate commands",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "only log errors",
					},
				},
			},
			{
				Name:   "classify",
				Usage:  "classify a corpus and dump the labeled spans as YAML (no artifacts)",
				Action: classify.ClassifyAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "source",
						Usage:    "file, directory, or comma-separated list of documentation files",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "workers",
						Value: models.DefaultWorkers,
					},
					&cli.Float64Flag{
						Name:  "confidence-floor",
						Value: models.DefaultConfidenceFloor,
					},
					&cli.StringFlag{
						Name:  "fields",
						Usage: "comma-separated span fields to include in the dump",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "only log errors",
					},
				},
			},
			{
				Name:   "runs",
				Usage:  "list recorded pipeline runs",
				Action: runs.ListAction,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Value: 20,
						Usage: "max runs to show",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
