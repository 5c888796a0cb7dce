// Package pipeline wires the analysis phases together: load, detect,
// classify, aggregate, research, synthesize, guard, summarize, validate,
// publish. Each phase consumes the previous phase's output; nothing is
// written to the final output directory until every phase has run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dtnitsch/docforge/models"
	"github.com/dtnitsch/docforge/pkg/aggregate"
	"github.com/dtnitsch/docforge/pkg/artifacts"
	"github.com/dtnitsch/docforge/pkg/classifier"
	"github.com/dtnitsch/docforge/pkg/corpus"
	"github.com/dtnitsch/docforge/pkg/detector"
	"github.com/dtnitsch/docforge/pkg/extract"
	"github.com/dtnitsch/docforge/pkg/gaps"
	"github.com/dtnitsch/docforge/pkg/guardrail"
	"github.com/dtnitsch/docforge/pkg/summary"
	"github.com/dtnitsch/docforge/pkg/synth"
	"github.com/dtnitsch/docforge/pkg/validate"
)

// Context carries everything a run needs beyond the flags.
type Context struct {
	Config     models.RunConfig
	Logger     *slog.Logger
	Researcher gaps.Researcher // nil disables research even if enabled in config
}

// Result is the full outcome of one pipeline run.
type Result struct {
	RunID      string
	Detection  detector.Result
	Corpus     *models.Corpus
	Spans      []*models.Span
	Clusters   []*models.Cluster
	Templates  []*models.Template
	Guardrails []*models.Guardrail
	Gaps       []*models.Gap
	Report     *models.ValidationReport
	Warnings   []string
	OutputDir  string
}

// Run executes the full pipeline. A returned error means the run could
// not produce artifacts at all (load failure, publish failure); a
// failing validation is reported through Result.Report, not the error.
func Run(ctx context.Context, pc *Context) (*Result, error) {
	cfg := pc.Config
	logger := pc.Logger
	var warnings []string

	// Load
	sources, ws, err := extract.Sources(cfg.Source)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, ws...)

	now := time.Now()
	c, ws, err := corpus.Load(sources, now)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, ws...)
	logger.Info("corpus loaded", "pages", len(c.Pages))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Detect
	detection := detector.Detect(c, cfg.DocTypeHint)
	logger.Info("doc type detected",
		"doc_type", detection.DocType,
		"confidence", detection.Confidence,
		"language", detection.Language)

	// Classify
	clsCfg := classifier.Config{
		ConfidenceFloor: cfg.ConfidenceFloor,
		Workers:         cfg.Workers,
	}
	spans := classifier.ClassifyCorpus(ctx, c, clsCfg, logger)
	logger.Info("classification complete", "spans", len(spans))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Aggregate
	agg := aggregate.Partition(spans, cfg.ConfidenceFloor, cfg.NearDupDistance)
	logger.Info("aggregation complete",
		"clusters", len(agg.Clusters),
		"near_duplicates", len(agg.NearDups))

	// Gaps + research
	gapList := gaps.Detect(spans, agg.NearDups)
	if cfg.ResearchEnabled && pc.Researcher != nil && len(gapList) > 0 {
		ws = gaps.ResearchAll(ctx, pc.Researcher, gapList, logger)
		warnings = append(warnings, ws...)

		var researchPage *models.Page
		spans, researchPage = gaps.MergeFindings(gapList, spans, func(page *models.Page) []*models.Span {
			return classifier.ClassifyPage(page, clsCfg)
		})
		if researchPage != nil {
			researchPage.FetchedAt = now
			c.Pages = append(c.Pages, *researchPage)
			// Findings may introduce new commands; regroup with them
			// included and re-point cluster-scoped gaps at the renumbered
			// clusters.
			oldClusters := agg.Clusters
			agg = aggregate.Partition(spans, cfg.ConfidenceFloor, cfg.NearDupDistance)
			gaps.RemapClusters(gapList, oldClusters, agg.Clusters)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Synthesize
	templates, failures := synth.Synthesize(agg.Clusters, spans, logger)
	for _, f := range failures {
		gapList = gaps.AddSynthesisGap(gapList, f)
		warnings = append(warnings, fmt.Sprintf("synthesis failed for cluster %d: %s", f.ClusterID, f.Reason))
	}
	logger.Info("synthesis complete", "templates", len(templates), "failures", len(failures))

	// Guardrails
	rails := guardrail.Generate(spans, templates)
	logger.Info("guardrails generated", "count", len(rails))

	// Summary
	md := summary.Render(summary.Data{
		Detection:  detection,
		Corpus:     c,
		Spans:      spans,
		Clusters:   agg.Clusters,
		Templates:  templates,
		Guardrails: rails,
		Gaps:       gapList,
		Warnings:   warnings,
	})

	// Validate
	report := validate.Check(validate.Input{
		Spans:         spans,
		Clusters:      agg.Clusters,
		Templates:     templates,
		Guardrails:    rails,
		Gaps:          gapList,
		Summary:       md,
		SummaryWindow: cfg.SummaryWindow,
		Warnings:      warnings,
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Publish: stage everything, then swap into place in one rename.
	runID := GenerateRunID(origins(c), now)
	mgr, err := artifacts.NewManager(cfg.OutputDir, runID)
	if err != nil {
		return nil, err
	}

	if err := writeAll(mgr, runID, cfg, detection, c, spans, agg.Clusters, templates, rails, gapList, md, report); err != nil {
		mgr.Discard()
		return nil, err
	}
	if err := mgr.Publish(); err != nil {
		mgr.Discard()
		return nil, err
	}
	logger.Info("artifacts published", "run_id", runID, "output", cfg.OutputDir)

	return &Result{
		RunID:      runID,
		Detection:  detection,
		Corpus:     c,
		Spans:      spans,
		Clusters:   agg.Clusters,
		Templates:  templates,
		Guardrails: rails,
		Gaps:       gapList,
		Report:     report,
		Warnings:   report.Warnings,
		OutputDir:  cfg.OutputDir,
	}, nil
}

func writeAll(
	mgr *artifacts.Manager,
	runID string,
	cfg models.RunConfig,
	detection detector.Result,
	c *models.Corpus,
	spans []*models.Span,
	clusters []*models.Cluster,
	templates []*models.Template,
	rails []*models.Guardrail,
	gapList []*models.Gap,
	md string,
	report *models.ValidationReport,
) error {
	if err := mgr.WriteTemplates(templates); err != nil {
		return err
	}
	if err := mgr.WriteGuardrails(rails); err != nil {
		return err
	}
	if err := mgr.WriteSummary(md); err != nil {
		return err
	}
	if err := mgr.WriteReport(report); err != nil {
		return err
	}
	return mgr.WriteRunManifest(artifacts.RunManifest{
		RunID:      runID,
		Source:     cfg.Source,
		DocType:    string(detection.DocType),
		Confidence: detection.Confidence,
		Language:   detection.Language,
		Pages:      len(c.Pages),
		Spans:      len(spans),
		Clusters:   len(clusters),
		Templates:  len(templates),
		Guardrails: len(rails),
		Gaps:       len(gapList),
		Origins:    origins(c),
	})
}

func origins(c *models.Corpus) []string {
	out := make([]string, 0, len(c.Pages))
	for _, p := range c.Pages {
		out = append(out, p.Origin)
	}
	return out
}
