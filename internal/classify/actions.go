package classify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dtnitsch/docforge/internal/common"
	"github.com/dtnitsch/docforge/models"
	"github.com/dtnitsch/docforge/pkg/classifier"
	"github.com/dtnitsch/docforge/pkg/corpus"
	"github.com/dtnitsch/docforge/pkg/extract"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// spanDump is the YAML shape of one classified span.
type spanDump struct {
	ID         int            `yaml:"id" json:"id"`
	Page       string         `yaml:"page" json:"page"`
	Line       int            `yaml:"line" json:"line"`
	Text       string         `yaml:"text" json:"text"`
	Category   string         `yaml:"category" json:"category"`
	Subtype    string         `yaml:"subtype,omitempty" json:"subtype,omitempty"`
	Confidence float64        `yaml:"confidence" json:"confidence"`
	Labels     []models.Label `yaml:"labels,omitempty" json:"labels,omitempty"`
}

func ClassifyAction(c *cli.Context) error {
	logger := common.LoggerFromFlags(c)

	sources, warnings, err := extract.Sources(c.String("source"))
	if err != nil {
		return fmt.Errorf("failed to expand sources: %w", err)
	}

	corp, ws, err := corpus.Load(sources, time.Now())
	if err != nil {
		var emptyErr *models.CorpusEmptyError
		if errors.As(err, &emptyErr) {
			logger.Error("corpus load failed", "error", err)
			os.Exit(2)
		}
		return fmt.Errorf("failed to load corpus: %w", err)
	}
	warnings = append(warnings, ws...)
	for _, w := range warnings {
		logger.Warn(w)
	}

	cfg := classifier.Config{
		ConfidenceFloor: c.Float64("confidence-floor"),
		Workers:         c.Int("workers"),
	}
	spans := classifier.ClassifyCorpus(context.Background(), corp, cfg, logger)

	fieldsStr := c.String("fields")
	dump := make([]interface{}, 0, len(spans))
	for _, s := range spans {
		primary := s.Primary()
		d := spanDump{
			ID:         s.ID,
			Page:       s.PageID,
			Line:       s.Line,
			Text:       s.Text,
			Category:   string(primary.Category),
			Subtype:    primary.Subtype,
			Confidence: primary.Confidence,
			Labels:     s.Labels,
		}
		if fieldsStr != "" {
			dump = append(dump, common.FilterFields(d, fieldsStr))
		} else {
			dump = append(dump, d)
		}
	}

	out, err := yaml.Marshal(dump)
	if err != nil {
		return fmt.Errorf("failed to marshal spans: %w", err)
	}
	fmt.Print(string(out))

	return nil
}
