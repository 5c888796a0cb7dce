// Package artifacts stages the run's output files and publishes them
// atomically. Everything is written to a temporary sibling of the
// output directory; only after the validator has produced its report is
// the staging directory renamed into place. A cancelled or failed run
// leaves nothing at the publish path.
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/docforge/models"
)

const (
	TemplatesDir  = "templates"
	GuardrailsDir = "guardrails"

	SummaryFile         = "SUMMARY.md"
	ReportFile          = "validation_report.json"
	RunManifestFile     = "run.yaml"
	PreflightChecksFile = "preflight_checks.sh"
	ChecklistsFile      = "checklists.md"
	SetupFile           = "setup.sh"
)

// Manager stages one run's artifacts.
type Manager struct {
	finalDir   string
	stagingDir string
}

// NewManager creates the staging directory next to the final output
// path so the publish rename never crosses a filesystem boundary.
func NewManager(outputDir, runID string) (*Manager, error) {
	staging := filepath.Join(filepath.Dir(outputDir),
		fmt.Sprintf(".%s.tmp-%s", filepath.Base(outputDir), runID))

	for _, dir := range []string{staging, filepath.Join(staging, TemplatesDir), filepath.Join(staging, GuardrailsDir)} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create staging directory: %w", err)
		}
	}
	return &Manager{finalDir: outputDir, stagingDir: staging}, nil
}

// StagingDir exposes the staging path, mostly for logs and tests.
func (m *Manager) StagingDir() string { return m.stagingDir }

// WriteTemplates renders each template into templates/ with its inline
// annotations spliced above the body and one comment line per
// placeholder.
func (m *Manager) WriteTemplates(templates []*models.Template) error {
	for _, t := range templates {
		path := filepath.Join(m.stagingDir, TemplatesDir, t.FileName())
		if err := os.WriteFile(path, []byte(renderTemplateFile(t)), 0600); err != nil {
			return fmt.Errorf("failed to write template %s: %w", t.Name, err)
		}
	}
	return nil
}

func renderTemplateFile(t *models.Template) string {
	var sb strings.Builder
	sb.WriteString("#!/bin/sh\n")
	fmt.Fprintf(&sb, "# Template: %s\n", t.Name)
	if t.Unverified {
		sb.WriteString("# unverified-generalization: single documented example, copied verbatim\n")
	}
	for _, a := range t.Annotations {
		fmt.Fprintf(&sb, "# WARNING: %s\n", a)
	}
	for _, p := range t.Placeholders {
		fmt.Fprintf(&sb, "# ${%s}: %s, default %q\n", p.Name, p.InferredType, p.Default)
	}
	sb.WriteString("\n")
	sb.WriteString(t.Skeleton)
	sb.WriteString("\n")
	return sb.String()
}

// WriteGuardrails emits the three standalone guardrail files. Inline
// warnings live inside templates and the summary, not here.
func (m *Manager) WriteGuardrails(guardrails []*models.Guardrail) error {
	var preflight, checklist, setup strings.Builder

	preflight.WriteString("#!/bin/sh\n# Preflight checks. Each failed check prints its remediation.\nfail=0\n")
	checklist.WriteString("# Manual verification checklist\n\n")
	setup.WriteString("#!/bin/sh\n# Setup and remediation steps. Safe to re-run.\nset -e\n")

	havePreflight, haveSetup := false, false
	for _, g := range guardrails {
		switch g.Kind {
		case models.GuardrailPreflightCheck:
			havePreflight = true
			fmt.Fprintf(&preflight, "\nif ! %s; then\n  echo %q\n  fail=1\nfi\n", g.Check, "preflight failed: "+g.Remediation)
		case models.GuardrailChecklistItem:
			fmt.Fprintf(&checklist, "- [ ] (%s) %s\n", g.Severity, g.Text)
		case models.GuardrailSetupStep:
			haveSetup = true
			fmt.Fprintf(&setup, "\n# %s\n%s\n", g.Text, g.Remediation)
		}
	}
	preflight.WriteString("\nexit $fail\n")
	if !havePreflight {
		preflight.Reset()
		preflight.WriteString("#!/bin/sh\n# No checkable preconditions detected.\nexit 0\n")
	}
	if !haveSetup {
		setup.Reset()
		setup.WriteString("#!/bin/sh\n# No setup steps detected.\nexit 0\n")
	}

	files := map[string]string{
		PreflightChecksFile: preflight.String(),
		ChecklistsFile:      checklist.String(),
		SetupFile:           setup.String(),
	}
	for name, content := range files {
		path := filepath.Join(m.stagingDir, GuardrailsDir, name)
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			return fmt.Errorf("failed to write guardrail file %s: %w", name, err)
		}
	}
	return nil
}

// WriteSummary stores the summary artifact.
func (m *Manager) WriteSummary(content string) error {
	path := filepath.Join(m.stagingDir, SummaryFile)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// WriteReport stores the machine-readable validation report.
func (m *Manager) WriteReport(report *models.ValidationReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal validation report: %w", err)
	}
	path := filepath.Join(m.stagingDir, ReportFile)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write validation report: %w", err)
	}
	return nil
}

// RunManifest is the run.yaml metadata written alongside the artifacts.
type RunManifest struct {
	RunID      string   `yaml:"run_id"`
	Source     string   `yaml:"source"`
	DocType    string   `yaml:"doc_type"`
	Confidence float64  `yaml:"confidence"`
	Language   string   `yaml:"language,omitempty"`
	Pages      int      `yaml:"pages"`
	Spans      int      `yaml:"spans"`
	Clusters   int      `yaml:"clusters"`
	Templates  int      `yaml:"templates"`
	Guardrails int      `yaml:"guardrails"`
	Gaps       int      `yaml:"gaps"`
	Origins    []string `yaml:"origins"`
}

// WriteRunManifest stores run metadata as YAML.
func (m *Manager) WriteRunManifest(manifest RunManifest) error {
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal run manifest: %w", err)
	}
	path := filepath.Join(m.stagingDir, RunManifestFile)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write run manifest: %w", err)
	}
	return nil
}

// Publish atomically moves the staged artifacts to the final output
// directory, replacing whatever a previous run left there.
func (m *Manager) Publish() error {
	if _, err := os.Stat(m.finalDir); err == nil {
		if err := os.RemoveAll(m.finalDir); err != nil {
			return fmt.Errorf("failed to clear previous output: %w", err)
		}
	}
	if err := os.Rename(m.stagingDir, m.finalDir); err != nil {
		return fmt.Errorf("failed to publish artifacts: %w", err)
	}
	return nil
}

// Discard removes the staging directory. Called on cancellation or
// failure; safe to call after Publish, when there is nothing left.
func (m *Manager) Discard() {
	_ = os.RemoveAll(m.stagingDir)
}
