package db

import (
	"testing"

	"github.com/dtnitsch/docforge/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	database, err := OpenAt(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	return database
}

func TestRecordRunAndGet(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	rec := RunRecord{
		RunID:         "2026-08-31T10-00-abc123",
		Source:        "docs/",
		DocType:       "cli",
		Confidence:    0.8,
		OutputDir:     "out/",
		PageCount:     2,
		SpanCount:     14,
		ClusterCount:  3,
		TemplateCount: 3,
		GapCount:      1,
		CoverageOK:    true,
		SurfacingOK:   true,
	}

	if err := db.RecordRun(rec); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	got, err := db.GetRun(rec.RunID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if got.Source != rec.Source {
		t.Errorf("Source = %q, want %q", got.Source, rec.Source)
	}
	if got.DocType != rec.DocType {
		t.Errorf("DocType = %q, want %q", got.DocType, rec.DocType)
	}
	if got.SpanCount != rec.SpanCount {
		t.Errorf("SpanCount = %d, want %d", got.SpanCount, rec.SpanCount)
	}
	if !got.CoverageOK || !got.SurfacingOK {
		t.Errorf("validation flags = %v/%v, want true/true", got.CoverageOK, got.SurfacingOK)
	}
}

func TestGetRunNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := db.GetRun("missing"); err == nil {
		t.Fatal("GetRun() expected error for unknown run, got nil")
	}
}

func TestAddRunPages(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := db.RecordRun(RunRecord{RunID: "run-1", Source: "docs/"}); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	pages := []models.Page{
		{SourceID: "install", Origin: "docs/install.md", Text: "# Install\n\nrun make\n"},
		{SourceID: "usage", Origin: "docs/usage.md", Text: "# Usage\n\nfoo --bar\n"},
	}
	counts := map[string]int{"install": 5, "usage": 9}

	if err := db.AddRunPages("run-1", pages, counts); err != nil {
		t.Fatalf("AddRunPages() error = %v", err)
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM run_pages WHERE run_id = ?", "run-1").Scan(&n); err != nil {
		t.Fatalf("count query error = %v", err)
	}
	if n != 2 {
		t.Errorf("run_pages count = %d, want 2", n)
	}
}

func TestAddRunGaps(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := db.RecordRun(RunRecord{RunID: "run-1", Source: "docs/"}); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	gaps := []models.Gap{
		{Kind: models.GapLowConfidence, Status: models.GapResearched, Query: "what is X"},
		{Kind: models.GapDeferredReference, Status: models.GapOpen, Query: "see advanced docs"},
	}

	if err := db.AddRunGaps("run-1", gaps); err != nil {
		t.Fatalf("AddRunGaps() error = %v", err)
	}

	var status string
	err := db.QueryRow("SELECT status FROM run_gaps WHERE run_id = ? AND kind = ?",
		"run-1", string(models.GapLowConfidence)).Scan(&status)
	if err != nil {
		t.Fatalf("status query error = %v", err)
	}
	if status != string(models.GapResearched) {
		t.Errorf("status = %q, want %q", status, models.GapResearched)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for _, id := range []string{"run-a", "run-b", "run-c"} {
		if err := db.RecordRun(RunRecord{RunID: id, Source: "docs/"}); err != nil {
			t.Fatalf("RecordRun(%s) error = %v", id, err)
		}
	}

	runs, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListRuns() returned %d runs, want 2", len(runs))
	}
	// Same created_at second for all three, so run_id DESC breaks the tie.
	if runs[0].RunID != "run-c" {
		t.Errorf("first run = %q, want run-c", runs[0].RunID)
	}
}
