package aggregate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/querylens/querylens/internal/core"
)

func TestDedupeKeepsLowestPosition(t *testing.T) {
	rows := []core.Row{
		{Seed: "coffee", Query: "coffee", Position: 3, Suggestion: "coffee shop"},
		{Seed: "coffee", Query: "coffee a", Position: 1, Suggestion: "coffee shop"},
		{Seed: "coffee", Query: "coffee", Position: 2, Suggestion: "coffee beans"},
	}

	deduped := Dedupe(rows)
	require.Len(t, deduped, 2)
	require.Equal(t, "coffee shop", deduped[0].Suggestion)
	require.Equal(t, 1, deduped[0].Position, "lower position must win")
	require.Equal(t, "coffee beans", deduped[1].Suggestion)
}

func TestDedupeScopedToSeed(t *testing.T) {
	rows := []core.Row{
		{Seed: "a", Query: "a", Position: 1, Suggestion: "apple"},
		{Seed: "b", Query: "b", Position: 1, Suggestion: "apple"},
	}
	require.Len(t, Dedupe(rows), 2)
}

func TestDedupeNeverMergesNullRows(t *testing.T) {
	rows := []core.Row{
		{Seed: "a", Query: "a x"},
		{Seed: "a", Query: "a y"},
		{Seed: "a", Query: "a z", Error: "serpapi error 500: boom"},
	}
	require.Len(t, Dedupe(rows), 3)
}

func TestSummarizeSortsByCountDescending(t *testing.T) {
	rows := []core.Row{
		{Seed: "tea", Query: "tea", Position: 1, Suggestion: "tea pot"},
		{Seed: "coffee", Query: "coffee", Position: 1, Suggestion: "coffee shop"},
		{Seed: "coffee", Query: "coffee", Position: 2, Suggestion: "coffee beans"},
		{Seed: "coffee", Query: "coffee a", Position: 1, Suggestion: "coffee shop"},
		{Seed: "tea", Query: "tea b"},
	}

	summary := Summarize(rows)
	require.Equal(t, []core.SeedCount{
		{Seed: "coffee", UniqueSuggestions: 2},
		{Seed: "tea", UniqueSuggestions: 1},
	}, summary)
}

func TestSummarizeIgnoresNullRows(t *testing.T) {
	rows := []core.Row{
		{Seed: "a", Query: "a", Error: "failed"},
		{Seed: "a", Query: "a b"},
	}
	require.Empty(t, Summarize(rows))
}
