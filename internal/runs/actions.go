package runs

import (
	"fmt"
	"strings"

	"github.com/dtnitsch/docforge/pkg/db"
	"github.com/urfave/cli/v2"
)

func ListAction(c *cli.Context) error {
	database, err := db.Open()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	limit := c.Int("limit")
	records, err := database.ListRuns(limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No runs recorded")
		return nil
	}

	// Print table header
	fmt.Printf("%-28s %-20s %-12s %-6s %-6s %-10s %-6s %-6s\n",
		"Run ID", "Created", "Doc Type", "Pages", "Spans", "Templates", "Gaps", "OK")
	fmt.Println(strings.Repeat("-", 100))

	for _, r := range records {
		ok := "yes"
		if !r.CoverageOK || !r.SurfacingOK {
			ok = "no"
		}
		fmt.Printf("%-28s %-20s %-12s %-6d %-6d %-10d %-6d %-6s\n",
			r.RunID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.DocType,
			r.PageCount,
			r.SpanCount,
			r.TemplateCount,
			r.GapCount,
			ok,
		)
	}

	fmt.Printf("\nTotal: %d runs\n", len(records))

	return nil
}
