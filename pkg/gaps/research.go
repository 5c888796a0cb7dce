package gaps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dtnitsch/docforge/models"
)

// Researcher is the narrow interface to the external research
// collaborator. Its internals (web search, an LLM, a human) are not our
// business; we send a question and get a finding or a failure.
type Researcher interface {
	Query(ctx context.Context, text string) (models.Finding, error)
}

// HTTPResearcher posts queries as JSON to a research endpoint.
type HTTPResearcher struct {
	Endpoint string
	Client   *http.Client
}

// NewHTTPResearcher builds a researcher with a per-query timeout baked
// into its client.
func NewHTTPResearcher(endpoint string, timeout time.Duration) *HTTPResearcher {
	return &HTTPResearcher{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: timeout},
	}
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Answer        string `json:"answer"`
	Citation      string `json:"citation"`
	Applicability string `json:"applicability"`
}

func (r *HTTPResearcher) Query(ctx context.Context, text string) (models.Finding, error) {
	body, err := json.Marshal(queryRequest{Query: text})
	if err != nil {
		return models.Finding{}, fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, bytes.NewReader(body))
	if err != nil {
		return models.Finding{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return models.Finding{}, fmt.Errorf("research request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Finding{}, fmt.Errorf("research endpoint returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Finding{}, fmt.Errorf("failed to read research response: %w", err)
	}

	var qr queryResponse
	if err := json.Unmarshal(data, &qr); err != nil {
		return models.Finding{}, fmt.Errorf("failed to decode research response: %w", err)
	}
	if qr.Answer == "" {
		return models.Finding{}, fmt.Errorf("research endpoint returned no answer")
	}

	applicability := qr.Applicability
	if applicability != models.FindingTaskSpecific {
		applicability = models.FindingGeneral
	}

	return models.Finding{
		Query:         text,
		Answer:        qr.Answer,
		Citation:      qr.Citation,
		Applicability: applicability,
	}, nil
}

const (
	researchRetries = 2
	researchBackoff = 500 * time.Millisecond
)

// ResearchAll runs every open gap's query through the researcher with a
// small bounded retry. Failure is never fatal: the gap goes unresolved
// and the pipeline carries on. Returns the warnings to surface.
func ResearchAll(ctx context.Context, r Researcher, gaps []*models.Gap, logger *slog.Logger) []string {
	var warnings []string

	for _, g := range gaps {
		if g.Status != models.GapOpen {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		finding, err := queryWithRetry(ctx, r, g.Query)
		if err != nil {
			rf := &models.ResearchFailure{Query: g.Query, Err: err}
			logger.Warn("research query failed", "gap_id", g.ID, "error", err)
			g.Status = models.GapUnresolved
			warnings = append(warnings, rf.Error())
			continue
		}

		g.Finding = &finding
		g.Status = models.GapResearched
		logger.Info("research query answered", "gap_id", g.ID, "applicability", finding.Applicability)
	}

	return warnings
}

func queryWithRetry(ctx context.Context, r Researcher, query string) (models.Finding, error) {
	var lastErr error
	backoff := researchBackoff

	for attempt := 0; attempt <= researchRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return models.Finding{}, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		finding, err := r.Query(ctx, query)
		if err == nil {
			return finding, nil
		}
		lastErr = err
	}
	return models.Finding{}, lastErr
}

// MergeFindings converts researched findings into synthetic spans on a
// dedicated research page and classifies them with the normal rule
// table. The returned page is nil when no gap carried a finding; the
// original corpus pages stay untouched, only the span set grows.
func MergeFindings(gaps []*models.Gap, spans []*models.Span, classify func(page *models.Page) []*models.Span) ([]*models.Span, *models.Page) {
	var answers []string
	for _, g := range gaps {
		if g.Status == models.GapResearched && g.Finding != nil {
			answers = append(answers, g.Finding.Answer)
		}
	}
	if len(answers) == 0 {
		return spans, nil
	}

	page := &models.Page{
		SourceID: "research",
		Origin:   "research:findings",
	}
	var text bytes.Buffer
	for i, a := range answers {
		if i > 0 {
			text.WriteString("\n\n")
		}
		text.WriteString(a)
	}
	page.Text = text.String()

	nextID := 0
	for _, s := range spans {
		if s.ID > nextID {
			nextID = s.ID
		}
	}

	for _, s := range classify(page) {
		nextID++
		s.ID = nextID
		s.Provenance = models.ProvenanceResearch
		spans = append(spans, s)
	}
	return spans, page
}
