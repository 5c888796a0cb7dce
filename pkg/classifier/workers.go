package classifier

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dtnitsch/docforge/models"
)

type job struct {
	pageIdx int
	page    *models.Page
}

type result struct {
	pageIdx int
	spans   []*models.Span
}

// ClassifyCorpus classifies every page on a worker pool. All workers
// finish before the span set is assembled (the aggregator needs the full
// set), and spans are numbered in corpus order so two runs over the same
// corpus produce identical IDs no matter how work was scheduled.
func ClassifyCorpus(ctx context.Context, c *models.Corpus, cfg Config, logger *slog.Logger) []*models.Span {
	workerCount := cfg.Workers
	if workerCount <= 0 {
		workerCount = models.DefaultWorkers
	}
	if workerCount > len(c.Pages) {
		workerCount = len(c.Pages)
	}

	jobs := make(chan job, len(c.Pages))
	results := make(chan result, len(c.Pages))

	var wg sync.WaitGroup
	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					return
				}
				spans := ClassifyPage(j.page, cfg)
				logger.Debug("classified page", "worker", id, "page", j.page.SourceID, "spans", len(spans))
				results <- result{pageIdx: j.pageIdx, spans: spans}
			}
		}(w)
	}

	for i := range c.Pages {
		jobs <- job{pageIdx: i, page: &c.Pages[i]}
	}
	close(jobs)

	wg.Wait()
	close(results)

	perPage := make([][]*models.Span, len(c.Pages))
	for r := range results {
		perPage[r.pageIdx] = r.spans
	}

	var spans []*models.Span
	id := 1
	for _, pageSpans := range perPage {
		for _, s := range pageSpans {
			s.ID = id
			id++
			spans = append(spans, s)
		}
	}
	return spans
}
