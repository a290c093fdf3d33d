package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/querylens/querylens/internal/core"
)

// TableFormatter renders the result table plus the per-seed summary.
type TableFormatter struct{}

// FormatRun renders a run as two ASCII tables.
func (f *TableFormatter) FormatRun(result *core.RunResult) (string, error) {
	if result == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Seed", "Query Sent", "Position", "Suggestion", "Error"})

	for _, row := range result.Rows {
		position := ""
		if row.Position > 0 {
			position = strconv.Itoa(row.Position)
		}
		t.AppendRow(table.Row{row.Seed, row.Query, position, row.Suggestion, row.Error})
	}
	t.AppendFooter(table.Row{
		"",
		fmt.Sprintf("%d queries", result.QueryCount),
		"",
		fmt.Sprintf("%d rows", len(result.Rows)),
		"",
	})

	sections := []string{t.Render()}

	if len(result.Summary) > 0 {
		s := table.NewWriter()
		s.SetStyle(table.StyleRounded)
		s.SetTitle("Unique suggestions per seed")
		s.AppendHeader(table.Row{"Seed", "Unique Suggestions"})
		for _, entry := range result.Summary {
			s.AppendRow(table.Row{entry.Seed, entry.UniqueSuggestions})
		}
		sections = append(sections, s.Render())
	}

	if result.RateLimitRemaining != "" {
		sections = append(sections, "SerpAPI X-RateLimit-Remaining: "+result.RateLimitRemaining)
	}

	return strings.Join(sections, "\n\n"), nil
}
