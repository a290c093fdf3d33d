package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/querylens/querylens/internal/config"
	"github.com/querylens/querylens/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(context.Background(), config.StoreConfig{
		Path: filepath.Join(t.TempDir(), "runs.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRun() *core.RunResult {
	started := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return &core.RunResult{
		RunID:       "run-1",
		StartedAt:   started,
		CompletedAt: started.Add(3 * time.Second),
		Seeds:       []string{"coffee"},
		QueryCount:  2,
		Rows: []core.Row{
			{Seed: "coffee", Query: "coffee", Position: 1, Suggestion: "coffee shop"},
			{Seed: "coffee", Query: "coffee a", Error: "serpapi error 500: boom"},
		},
		Options:            core.RunOptions{RPM: 60, MaxRetries: 2, Backoff: 3 * time.Second, Dedupe: true},
		RateLimitRemaining: "17",
	}
}

func TestSaveAndGetRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRun(ctx, sampleRun()))

	loaded, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	require.Equal(t, []string{"coffee"}, loaded.Seeds)
	require.Equal(t, 2, loaded.QueryCount)
	require.Len(t, loaded.Rows, 2)
	require.Equal(t, "coffee shop", loaded.Rows[0].Suggestion)
	require.Equal(t, "serpapi error 500: boom", loaded.Rows[1].Error)
	require.Equal(t, "17", loaded.RateLimitRemaining)
	require.Equal(t, 60, loaded.Options.RPM)
	require.Equal(t, []core.SeedCount{{Seed: "coffee", UniqueSuggestions: 1}}, loaded.Summary)
}

func TestListRunsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := sampleRun()
	second := sampleRun()
	second.RunID = "run-2"
	second.StartedAt = first.StartedAt.Add(time.Hour)
	second.CompletedAt = second.StartedAt.Add(time.Second)

	require.NoError(t, s.SaveRun(ctx, first))
	require.NoError(t, s.SaveRun(ctx, second))

	metas, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, metas, 2)
	require.Equal(t, "run-2", metas[0].RunID)
	require.Equal(t, "run-1", metas[1].RunID)
	require.Equal(t, 2, metas[0].RowCount)
}

func TestGetRunNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetRun(context.Background(), "missing")
	require.ErrorIs(t, err, ErrRunNotFound)
}
