package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dtnitsch/docforge/models"
)

// RunRecord is a stored summary of a completed pipeline run.
type RunRecord struct {
	RunID          string
	CreatedAt      time.Time
	Source         string
	DocType        string
	Confidence     float64
	OutputDir      string
	PageCount      int
	SpanCount      int
	ClusterCount   int
	TemplateCount  int
	GuardrailCount int
	GapCount       int
	WarningCount   int
	CoverageOK     bool
	SurfacingOK    bool
}

// RecordRun inserts the run row. Call before AddRunPages / AddRunGaps.
func (db *DB) RecordRun(rec RunRecord) error {
	_, err := db.Exec(`
		INSERT INTO runs (
			run_id, source, doc_type, detection_confidence, output_dir,
			page_count, span_count, cluster_count, template_count,
			guardrail_count, gap_count, warning_count,
			coverage_ok, surfacing_ok
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Source, rec.DocType, rec.Confidence, rec.OutputDir,
		rec.PageCount, rec.SpanCount, rec.ClusterCount, rec.TemplateCount,
		rec.GuardrailCount, rec.GapCount, rec.WarningCount,
		rec.CoverageOK, rec.SurfacingOK,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// AddRunPages stores the pages that made up a run's corpus.
// spanCounts maps source ID to the number of spans classified on that page.
func (db *DB) AddRunPages(runID string, pages []models.Page, spanCounts map[string]int) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO run_pages (run_id, source_id, origin, line_count, span_count)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range pages {
		if _, err := stmt.Exec(runID, p.SourceID, p.Origin, p.LineCount(), spanCounts[p.SourceID]); err != nil {
			return fmt.Errorf("failed to insert page %s: %w", p.SourceID, err)
		}
	}

	return tx.Commit()
}

// AddRunGaps stores the gaps a run surfaced, with final status.
func (db *DB) AddRunGaps(runID string, gaps []models.Gap) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO run_gaps (run_id, kind, status, query)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare gap insert: %w", err)
	}
	defer stmt.Close()

	for _, g := range gaps {
		if _, err := stmt.Exec(runID, string(g.Kind), string(g.Status), g.Query); err != nil {
			return fmt.Errorf("failed to insert gap: %w", err)
		}
	}

	return tx.Commit()
}

// GetRun returns a single run by ID.
func (db *DB) GetRun(runID string) (*RunRecord, error) {
	row := db.QueryRow(`
		SELECT run_id, created_at, source, doc_type, detection_confidence, output_dir,
		       page_count, span_count, cluster_count, template_count,
		       guardrail_count, gap_count, warning_count,
		       coverage_ok, surfacing_ok
		FROM runs WHERE run_id = ?`, runID)

	rec, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return rec, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.Query(`
		SELECT run_id, created_at, source, doc_type, detection_confidence, output_dir,
		       page_count, span_count, cluster_count, template_count,
		       guardrail_count, gap_count, warning_count,
		       coverage_ok, surfacing_ok
		FROM runs
		ORDER BY created_at DESC, run_id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *rec)
	}

	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var rec RunRecord
	var docType, outputDir sql.NullString
	var confidence sql.NullFloat64

	err := row.Scan(
		&rec.RunID, &rec.CreatedAt, &rec.Source, &docType, &confidence, &outputDir,
		&rec.PageCount, &rec.SpanCount, &rec.ClusterCount, &rec.TemplateCount,
		&rec.GuardrailCount, &rec.GapCount, &rec.WarningCount,
		&rec.CoverageOK, &rec.SurfacingOK,
	)
	if err != nil {
		return nil, err
	}

	rec.DocType = docType.String
	rec.OutputDir = outputDir.String
	rec.Confidence = confidence.Float64

	return &rec, nil
}
