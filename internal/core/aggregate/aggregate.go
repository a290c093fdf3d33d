// Package aggregate post-processes the row table produced by a batch run.
package aggregate

import (
	"sort"

	"github.com/querylens/querylens/internal/core"
)

type rowKey struct {
	seed       string
	suggestion string
}

// Dedupe collapses rows sharing (seed, suggestion) to a single row, keeping
// the lowest position. The surviving row occupies the first occurrence's slot
// so table order stays stable. Rows without a suggestion are never merged.
func Dedupe(rows []core.Row) []core.Row {
	out := make([]core.Row, 0, len(rows))
	slot := make(map[rowKey]int)

	for _, row := range rows {
		if !row.HasSuggestion() {
			out = append(out, row)
			continue
		}

		key := rowKey{seed: row.Seed, suggestion: row.Suggestion}
		if idx, ok := slot[key]; ok {
			if row.Position < out[idx].Position {
				out[idx] = row
			}
			continue
		}
		slot[key] = len(out)
		out = append(out, row)
	}

	return out
}

// Summarize counts distinct non-empty suggestions per seed, sorted by count
// descending with seed name as the tiebreak.
func Summarize(rows []core.Row) []core.SeedCount {
	unique := make(map[string]map[string]struct{})
	order := make([]string, 0)

	for _, row := range rows {
		if !row.HasSuggestion() {
			continue
		}
		set, ok := unique[row.Seed]
		if !ok {
			set = make(map[string]struct{})
			unique[row.Seed] = set
			order = append(order, row.Seed)
		}
		set[row.Suggestion] = struct{}{}
	}

	summary := make([]core.SeedCount, 0, len(order))
	for _, seed := range order {
		summary = append(summary, core.SeedCount{
			Seed:              seed,
			UniqueSuggestions: len(unique[seed]),
		})
	}

	sort.SliceStable(summary, func(i, j int) bool {
		if summary[i].UniqueSuggestions != summary[j].UniqueSuggestions {
			return summary[i].UniqueSuggestions > summary[j].UniqueSuggestions
		}
		return summary[i].Seed < summary[j].Seed
	})

	return summary
}
