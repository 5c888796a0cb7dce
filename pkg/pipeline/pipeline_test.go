package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dtnitsch/docforge/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func cliDoc() string {
	return "# foo\n\n" +
		"The foo command-line tool.\n\n" +
		"Usage: foo run --count <n>\n\n" +
		"Example:\n\n" +
		"```sh\n" +
		"foo run --count 3\n" +
		"```\n\n" +
		"⚠️ Warning: do not run foo twice on the same input\n\n" +
		"1. Install foo\n" +
		"2. Run foo init\n" +
		"3. Run foo run\n"
}

func runOnce(t *testing.T, srcDir, outDir string) *Result {
	t.Helper()
	res, err := Run(context.Background(), &Context{
		Config: models.RunConfig{
			Source:          srcDir,
			DocTypeHint:     "auto",
			OutputDir:       outDir,
			Workers:         models.DefaultWorkers,
			ConfidenceFloor: models.DefaultConfidenceFloor,
			SummaryWindow:   models.DefaultSummaryWindow,
			NearDupDistance: models.DefaultNearDupDistance,
		},
		Logger: testLogger(),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return res
}

func TestRunProducesArtifacts(t *testing.T) {
	srcDir := t.TempDir()
	writeDoc(t, srcDir, "guide.md", cliDoc())
	outDir := filepath.Join(t.TempDir(), "out")

	res := runOnce(t, srcDir, outDir)

	for _, f := range []string{"SUMMARY.md", "validation_report.json", "run.yaml"} {
		if _, err := os.Stat(filepath.Join(outDir, f)); err != nil {
			t.Errorf("missing artifact %s: %v", f, err)
		}
	}
	for _, d := range []string{"templates", "guardrails"} {
		if info, err := os.Stat(filepath.Join(outDir, d)); err != nil || !info.IsDir() {
			t.Errorf("missing artifact directory %s", d)
		}
	}

	if len(res.Templates) == 0 {
		t.Error("no templates synthesized from a command-bearing corpus")
	}
	if len(res.Guardrails) == 0 {
		t.Error("no guardrails generated despite a high-severity warning")
	}
	if !res.Report.CoverageOK {
		t.Errorf("coverage failed: missing %v", res.Report.MissingCommands)
	}
	if !res.Report.SurfacingOK {
		t.Errorf("surfacing failed: buried %v", res.Report.BuriedPitfalls)
	}
}

func TestRunChecklistNearTop(t *testing.T) {
	srcDir := t.TempDir()
	writeDoc(t, srcDir, "guide.md", cliDoc())
	outDir := filepath.Join(t.TempDir(), "out")

	runOnce(t, srcDir, outDir)

	data, err := os.ReadFile(filepath.Join(outDir, "SUMMARY.md"))
	if err != nil {
		t.Fatalf("summary missing: %v", err)
	}
	md := string(data)
	if !strings.Contains(md, "do not run foo twice") {
		t.Fatalf("warning absent from summary:\n%s", md)
	}
	warnLine := strings.Count(md[:strings.Index(md, "do not run foo twice")], "\n") + 1
	if warnLine > models.DefaultSummaryWindow {
		t.Errorf("warning surfaced at line %d, past the window", warnLine)
	}
}

func TestRunIdempotent(t *testing.T) {
	srcDir := t.TempDir()
	writeDoc(t, srcDir, "guide.md", cliDoc())
	writeDoc(t, srcDir, "api.md", "GET endpoint:\n\n```\ncurl -X GET https://api.example.com/users/1\n```\n\n```\ncurl -X GET https://api.example.com/users/2\n```\n")
	outDir := filepath.Join(t.TempDir(), "out")

	first := runOnce(t, srcDir, outDir)
	firstSummary, _ := os.ReadFile(filepath.Join(outDir, "SUMMARY.md"))

	second := runOnce(t, srcDir, outDir)
	secondSummary, _ := os.ReadFile(filepath.Join(outDir, "SUMMARY.md"))

	if string(firstSummary) != string(secondSummary) {
		t.Error("summaries differ across identical runs")
	}
	if len(first.Spans) != len(second.Spans) {
		t.Fatalf("span counts differ: %d vs %d", len(first.Spans), len(second.Spans))
	}
	for i := range first.Spans {
		if first.Spans[i].ID != second.Spans[i].ID || first.Spans[i].Text != second.Spans[i].Text {
			t.Errorf("span %d differs across runs", i)
		}
	}
	if len(first.Clusters) != len(second.Clusters) {
		t.Fatalf("cluster counts differ: %d vs %d", len(first.Clusters), len(second.Clusters))
	}
}

func TestRunEmptyCorpusFatal(t *testing.T) {
	srcDir := t.TempDir() // no eligible files
	outDir := filepath.Join(t.TempDir(), "out")

	_, err := Run(context.Background(), &Context{
		Config: models.RunConfig{Source: srcDir, OutputDir: outDir},
		Logger: testLogger(),
	})
	var emptyErr *models.CorpusEmptyError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("Run() error = %v, want CorpusEmptyError", err)
	}
	if _, statErr := os.Stat(outDir); !os.IsNotExist(statErr) {
		t.Error("output directory created despite fatal load error")
	}
}

func TestRunMissingSourcePathFatal(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")

	_, err := Run(context.Background(), &Context{
		Config: models.RunConfig{
			Source:    filepath.Join(t.TempDir(), "never-written.md"),
			OutputDir: outDir,
		},
		Logger: testLogger(),
	})
	var emptyErr *models.CorpusEmptyError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("Run() error = %v, want CorpusEmptyError", err)
	}
}

func TestRunResearchMergesFindings(t *testing.T) {
	srcDir := t.TempDir()
	writeDoc(t, srcDir, "guide.md",
		"Usage: foo run --fast\n\nFor advanced usage, see the documentation.\n")
	outDir := filepath.Join(t.TempDir(), "out")

	res, err := Run(context.Background(), &Context{
		Config: models.RunConfig{
			Source:          srcDir,
			OutputDir:       outDir,
			ResearchEnabled: true,
			Workers:         1,
			ConfidenceFloor: models.DefaultConfidenceFloor,
		},
		Logger:     testLogger(),
		Researcher: fixedResearcher{answer: "$ foo run --advanced"},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var researched bool
	for _, g := range res.Gaps {
		if g.Status == models.GapResearched {
			researched = true
		}
	}
	if !researched {
		t.Fatal("no gap reached researched status")
	}

	var researchSpan bool
	for _, s := range res.Spans {
		if s.Provenance == models.ProvenanceResearch {
			researchSpan = true
		}
	}
	if !researchSpan {
		t.Error("research finding produced no synthetic span")
	}
	if res.Corpus.Page("research") == nil {
		t.Error("research page absent from corpus")
	}
}

func TestRunResearchFailureNonFatal(t *testing.T) {
	srcDir := t.TempDir()
	writeDoc(t, srcDir, "guide.md",
		"Usage: foo run --fast\n\nFor advanced usage, see the documentation.\n")
	outDir := filepath.Join(t.TempDir(), "out")

	res, err := Run(context.Background(), &Context{
		Config: models.RunConfig{
			Source:          srcDir,
			OutputDir:       outDir,
			ResearchEnabled: true,
			Workers:         1,
			ConfidenceFloor: models.DefaultConfidenceFloor,
		},
		Logger:     testLogger(),
		Researcher: fixedResearcher{fail: true},
	})
	if err != nil {
		t.Fatalf("Run() error = %v, research failure must not be fatal", err)
	}

	var unresolved bool
	for _, g := range res.Gaps {
		if g.Status == models.GapUnresolved {
			unresolved = true
		}
	}
	if !unresolved {
		t.Error("failed research did not leave the gap unresolved")
	}
	if len(res.Report.Warnings) == 0 {
		t.Error("failed research produced no warning")
	}
}

type fixedResearcher struct {
	answer string
	fail   bool
}

func (r fixedResearcher) Query(_ context.Context, text string) (models.Finding, error) {
	if r.fail {
		return models.Finding{}, errors.New("endpoint down")
	}
	return models.Finding{Query: text, Answer: r.answer, Citation: "https://example.com"}, nil
}

func TestGenerateRunID(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 30, 0, 0, time.UTC)

	a := GenerateRunID([]string{"docs/a.md", "docs/b.md"}, now)
	b := GenerateRunID([]string{"docs/b.md", "docs/a.md"}, now)
	if a != b {
		t.Errorf("run IDs differ for the same origin set: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "2026-08-31T10-30-") {
		t.Errorf("run ID = %s, want timestamp prefix", a)
	}

	c := GenerateRunID([]string{"docs/c.md"}, now)
	if a == c {
		t.Error("different origin sets share a run ID")
	}
}
