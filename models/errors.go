package models

import "fmt"

// LoadError is a per-page load failure. Non-fatal: the page is skipped
// and a warning recorded.
type LoadError struct {
	Origin string
	Reason string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %s", e.Origin, e.Reason)
}

// CorpusEmptyError means no page at all could be loaded. The only fatal
// error in the taxonomy; the run aborts with exit code 2.
type CorpusEmptyError struct {
	Attempted int
}

func (e *CorpusEmptyError) Error() string {
	if e.Attempted == 0 {
		return "corpus empty: no input sources"
	}
	return fmt.Sprintf("corpus empty: all %d pages failed to load", e.Attempted)
}

// ResearchFailure wraps a failed research query. Non-fatal: the gap
// stays unresolved and is surfaced as a report warning.
type ResearchFailure struct {
	Query string
	Err   error
}

func (e *ResearchFailure) Error() string {
	return fmt.Sprintf("research query %q failed: %v", e.Query, e.Err)
}

func (e *ResearchFailure) Unwrap() error { return e.Err }

// SynthesisFailure is a per-cluster generalization failure. Non-fatal:
// the cluster falls back to a verbatim-copy artifact and sibling
// clusters are unaffected.
type SynthesisFailure struct {
	ClusterID int
	Signature string
	Reason    string
}

func (e *SynthesisFailure) Error() string {
	return fmt.Sprintf("synthesis failed for cluster %d (%s): %s", e.ClusterID, e.Signature, e.Reason)
}
