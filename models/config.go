// Package models defines the shared data structures of the pipeline.
package models

// RunConfig holds runtime configuration for a pipeline run.
// All values come from CLI flags, not external config files.
type RunConfig struct {
	Source           string  // path, directory, or comma-separated list
	DocTypeHint      string  // cli, api, library, auto
	OutputDir        string
	ResearchEnabled  bool
	ResearchEndpoint string
	Workers          int     // classifier worker pool size
	ConfidenceFloor  float64 // below this for all categories => unclassified
	SummaryWindow    int     // surfacing window in summary lines
	NearDupDistance  int     // signature token edits flagged as potential duplicates
	Quiet            bool
}

// Defaults for flag values, shared between main.go and tests.
const (
	DefaultWorkers         = 4
	DefaultConfidenceFloor = 0.35
	DefaultSummaryWindow   = 200
	DefaultNearDupDistance = 2
)
