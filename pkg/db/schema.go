package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Runs table: one row per pipeline run
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    source TEXT NOT NULL,
    doc_type TEXT,
    detection_confidence REAL,
    output_dir TEXT,

    page_count INTEGER DEFAULT 0,
    span_count INTEGER DEFAULT 0,
    cluster_count INTEGER DEFAULT 0,
    template_count INTEGER DEFAULT 0,
    guardrail_count INTEGER DEFAULT 0,
    gap_count INTEGER DEFAULT 0,
    warning_count INTEGER DEFAULT 0,

    coverage_ok BOOLEAN DEFAULT 0,
    surfacing_ok BOOLEAN DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_runs_doc_type ON runs(doc_type);

-- Pages loaded in each run
CREATE TABLE IF NOT EXISTS run_pages (
    page_row_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    source_id TEXT NOT NULL,
    origin TEXT NOT NULL,
    line_count INTEGER DEFAULT 0,
    span_count INTEGER DEFAULT 0,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_run_pages_run ON run_pages(run_id);

-- Gaps recorded for each run, with their final status
CREATE TABLE IF NOT EXISTS run_gaps (
    gap_row_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    status TEXT NOT NULL,
    query TEXT,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_run_gaps_run ON run_gaps(run_id);
CREATE INDEX IF NOT EXISTS idx_run_gaps_status ON run_gaps(status);
`
