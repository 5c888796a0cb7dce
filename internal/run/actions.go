package run

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dtnitsch/docforge/internal/common"
	"github.com/dtnitsch/docforge/models"
	"github.com/dtnitsch/docforge/pkg/db"
	"github.com/dtnitsch/docforge/pkg/gaps"
	"github.com/dtnitsch/docforge/pkg/pipeline"
	"github.com/urfave/cli/v2"
)

const researchTimeout = 30 * time.Second

func RunAction(c *cli.Context) error {
	logger := common.LoggerFromFlags(c)

	cfg := models.RunConfig{
		Source:           c.String("source"),
		DocTypeHint:      c.String("doc-type-hint"),
		OutputDir:        c.String("output"),
		ResearchEnabled:  c.Bool("research") || c.String("research-endpoint") != "",
		ResearchEndpoint: c.String("research-endpoint"),
		Workers:          c.Int("workers"),
		ConfidenceFloor:  c.Float64("confidence-floor"),
		SummaryWindow:    c.Int("summary-window"),
		NearDupDistance:  c.Int("near-duplicate-distance"),
		Quiet:            c.Bool("quiet"),
	}

	var researcher gaps.Researcher
	if cfg.ResearchEnabled {
		if cfg.ResearchEndpoint == "" {
			logger.Error("research enabled but no --research-endpoint given")
			os.Exit(2)
		}
		researcher = gaps.NewHTTPResearcher(cfg.ResearchEndpoint, researchTimeout)
	}

	result, err := pipeline.Run(context.Background(), &pipeline.Context{
		Config:     cfg,
		Logger:     logger,
		Researcher: researcher,
	})
	if err != nil {
		var emptyErr *models.CorpusEmptyError
		var loadErr *models.LoadError
		if errors.As(err, &emptyErr) || errors.As(err, &loadErr) {
			logger.Error("corpus load failed", "error", err)
			os.Exit(2)
		}
		return fmt.Errorf("run failed: %w", err)
	}

	recordRun(cfg, result, logger)

	report := result.Report
	fmt.Printf("Run %s: %d pages, %d spans, %d clusters -> %d templates, %d guardrails\n",
		result.RunID, len(result.Corpus.Pages), len(result.Spans),
		len(result.Clusters), len(result.Templates), len(result.Guardrails))
	fmt.Printf("Artifacts: %s\n", result.OutputDir)
	fmt.Printf("Summary:   %s\n", filepath.Join(result.OutputDir, "SUMMARY.md"))

	if len(report.Warnings) > 0 {
		fmt.Printf("Warnings:  %d (see validation_report.json)\n", len(report.Warnings))
	}

	if !report.OK() {
		if !report.CoverageOK {
			logger.Error("coverage check failed", "missing_commands", report.MissingCommands)
		}
		if !report.SurfacingOK {
			logger.Error("surfacing check failed", "buried_pitfalls", len(report.BuriedPitfalls))
		}
		os.Exit(1)
	}

	return nil
}

// recordRun stores the run in the history ledger. Ledger trouble never
// fails a run that already published its artifacts.
func recordRun(cfg models.RunConfig, result *pipeline.Result, logger *slog.Logger) {
	database, err := db.Open()
	if err != nil {
		logger.Warn("run history unavailable", "error", err)
		return
	}
	defer database.Close()

	rec := db.RunRecord{
		RunID:          result.RunID,
		Source:         cfg.Source,
		DocType:        string(result.Detection.DocType),
		Confidence:     result.Detection.Confidence,
		OutputDir:      cfg.OutputDir,
		PageCount:      len(result.Corpus.Pages),
		SpanCount:      len(result.Spans),
		ClusterCount:   len(result.Clusters),
		TemplateCount:  len(result.Templates),
		GuardrailCount: len(result.Guardrails),
		GapCount:       len(result.Gaps),
		WarningCount:   len(result.Report.Warnings),
		CoverageOK:     result.Report.CoverageOK,
		SurfacingOK:    result.Report.SurfacingOK,
	}
	if err := database.RecordRun(rec); err != nil {
		logger.Warn("failed to record run", "error", err)
		return
	}

	spanCounts := make(map[string]int)
	for _, s := range result.Spans {
		spanCounts[s.PageID]++
	}
	if err := database.AddRunPages(result.RunID, result.Corpus.Pages, spanCounts); err != nil {
		logger.Warn("failed to record run pages", "error", err)
	}

	gapVals := make([]models.Gap, 0, len(result.Gaps))
	for _, g := range result.Gaps {
		gapVals = append(gapVals, *g)
	}
	if err := database.AddRunGaps(result.RunID, gapVals); err != nil {
		logger.Warn("failed to record run gaps", "error", err)
	}
}
