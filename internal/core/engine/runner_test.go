package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/querylens/querylens/internal/core"
	"github.com/querylens/querylens/internal/core/suggest"
)

type stubFetcher struct {
	// failures maps a query to the number of attempts that error before
	// one succeeds. -1 means every attempt fails.
	failures    map[string]int
	suggestions map[string][]string
	calls       []string
}

func (f *stubFetcher) Suggest(ctx context.Context, query string) (*suggest.Result, error) {
	f.calls = append(f.calls, query)

	if remaining, ok := f.failures[query]; ok && remaining != 0 {
		if remaining > 0 {
			f.failures[query] = remaining - 1
		}
		return nil, errors.New("transport failed")
	}

	result := &suggest.Result{Query: query}
	for i, value := range f.suggestions[query] {
		result.Suggestions = append(result.Suggestions, suggest.Suggestion{Position: i + 1, Value: value})
	}
	return result, nil
}

func newTestRunner(fetcher Fetcher, opts core.RunOptions) (*Runner, *[]time.Duration) {
	sleeps := &[]time.Duration{}
	runner := &Runner{
		Fetcher: fetcher,
		Options: opts,
		Sleep:   func(d time.Duration) { *sleeps = append(*sleeps, d) },
		Clock:   func() time.Time { return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC) },
	}
	return runner, sleeps
}

func TestRunEndToEnd(t *testing.T) {
	fetcher := &stubFetcher{suggestions: map[string][]string{
		"a": {"apple"},
		"b": {"banana"},
	}}
	runner, _ := newTestRunner(fetcher, core.RunOptions{KeepSeedFirst: true})

	result, err := runner.Run(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, 2, result.QueryCount)
	require.Len(t, result.Rows, 2)
	require.Equal(t, core.Row{Seed: "a", Query: "a", Position: 1, Suggestion: "apple"}, result.Rows[0])
	require.Equal(t, core.Row{Seed: "b", Query: "b", Position: 1, Suggestion: "banana"}, result.Rows[1])
	require.Equal(t, []core.SeedCount{
		{Seed: "a", UniqueSuggestions: 1},
		{Seed: "b", UniqueSuggestions: 1},
	}, result.Summary)
	require.NotEmpty(t, result.RunID)
}

func TestRunRetrySchedule(t *testing.T) {
	fetcher := &stubFetcher{
		failures:    map[string]int{"a": 2},
		suggestions: map[string][]string{"a": {"apple"}},
	}
	runner, sleeps := newTestRunner(fetcher, core.RunOptions{
		KeepSeedFirst: true,
		MaxRetries:    2,
		Backoff:       3 * time.Second,
	})

	result, err := runner.Run(context.Background(), []string{"a"})
	require.NoError(t, err)

	// Two failures, then success on the third attempt.
	require.Equal(t, []string{"a", "a", "a"}, fetcher.calls)
	require.Equal(t, []time.Duration{3 * time.Second, 6 * time.Second}, *sleeps)
	require.Equal(t, "apple", result.Rows[0].Suggestion)
}

func TestRunRecordsExhaustedRetriesAndContinues(t *testing.T) {
	fetcher := &stubFetcher{
		failures:    map[string]int{"a": -1},
		suggestions: map[string][]string{"b": {"banana"}},
	}
	runner, sleeps := newTestRunner(fetcher, core.RunOptions{
		KeepSeedFirst: true,
		MaxRetries:    1,
		Backoff:       time.Second,
	})

	result, err := runner.Run(context.Background(), []string{"a", "b"})
	require.NoError(t, err)

	require.Len(t, result.Rows, 2)
	require.Equal(t, 0, result.Rows[0].Position)
	require.Empty(t, result.Rows[0].Suggestion)
	require.Contains(t, result.Rows[0].Error, "transport failed")
	require.Equal(t, "banana", result.Rows[1].Suggestion)
	require.Equal(t, []time.Duration{time.Second}, *sleeps)
}

func TestRunZeroSuggestionsIsNotAnError(t *testing.T) {
	fetcher := &stubFetcher{}
	runner, sleeps := newTestRunner(fetcher, core.RunOptions{KeepSeedFirst: true, MaxRetries: 3, Backoff: time.Second})

	result, err := runner.Run(context.Background(), []string{"zzzzz"})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	require.Empty(t, result.Rows[0].Suggestion)
	require.Empty(t, result.Rows[0].Error)
	require.Empty(t, *sleeps, "empty results must not trigger retries")
}

func TestRunExpandsAndDedupesSeeds(t *testing.T) {
	fetcher := &stubFetcher{suggestions: map[string][]string{}}
	runner, _ := newTestRunner(fetcher, core.RunOptions{
		KeepSeedFirst: true,
		Letters:       true,
	})

	result, err := runner.Run(context.Background(), []string{"x", " x ", ""})
	require.NoError(t, err)
	require.Equal(t, []string{"x"}, result.Seeds)
	require.Equal(t, 27, result.QueryCount)
	require.Len(t, fetcher.calls, 27)
	require.Equal(t, "x", fetcher.calls[0])
	require.Equal(t, "x a", fetcher.calls[1])
	require.Equal(t, "x z", fetcher.calls[26])
}

func TestRunDropSeedRowWhenDisabled(t *testing.T) {
	fetcher := &stubFetcher{}
	runner, _ := newTestRunner(fetcher, core.RunOptions{
		Suffixes: []string{"near me"},
	})

	result, err := runner.Run(context.Background(), []string{"coffee"})
	require.NoError(t, err)
	require.Equal(t, []string{"coffee near me"}, fetcher.calls)
	require.Equal(t, 1, result.QueryCount)
}

func TestRunDedupeOption(t *testing.T) {
	fetcher := &stubFetcher{suggestions: map[string][]string{
		"coffee":   {"coffee shop"},
		"coffee a": {"coffee shop"},
	}}

	runner, _ := newTestRunner(fetcher, core.RunOptions{
		KeepSeedFirst: true,
		Suffixes:      []string{"a"},
		Dedupe:        true,
	})
	result, err := runner.Run(context.Background(), []string{"coffee"})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)

	runner, _ = newTestRunner(&stubFetcher{suggestions: fetcher.suggestions}, core.RunOptions{
		KeepSeedFirst: true,
		Suffixes:      []string{"a"},
	})
	result, err = runner.Run(context.Background(), []string{"coffee"})
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
}

func TestNewRunnerDerivesLimiterFromRPM(t *testing.T) {
	runner := NewRunner(&stubFetcher{}, core.RunOptions{RPM: 60}, nil)
	require.NotNil(t, runner.Limiter)
	require.Equal(t, rate.Every(time.Minute/60), runner.Limiter.Limit())
	require.Equal(t, 1, runner.Limiter.Burst(), "one outstanding request at a time")

	runner = NewRunner(&stubFetcher{}, core.RunOptions{}, nil)
	require.Nil(t, runner.Limiter, "zero RPM disables pacing")
}

func TestRunPacesQueriesToRPMCeiling(t *testing.T) {
	fetcher := &stubFetcher{}
	// 600 RPM is one request per 100ms; three queries need two waits.
	runner := NewRunner(fetcher, core.RunOptions{
		RPM:           600,
		KeepSeedFirst: true,
		Suffixes:      []string{"a", "b"},
	}, nil)

	start := time.Now()
	_, err := runner.Run(context.Background(), []string{"x"})
	require.NoError(t, err)
	require.Len(t, fetcher.calls, 3)
	require.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
}

func TestRunRequiresSeeds(t *testing.T) {
	runner, _ := newTestRunner(&stubFetcher{}, core.RunOptions{})

	_, err := runner.Run(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoSeeds)

	_, err = runner.Run(context.Background(), []string{"  ", ""})
	require.ErrorIs(t, err, ErrNoSeeds)
}

func TestRunProgressCallback(t *testing.T) {
	fetcher := &stubFetcher{}
	runner, _ := newTestRunner(fetcher, core.RunOptions{KeepSeedFirst: true})

	var updates [][2]int
	runner.Progress = func(done, total int) { updates = append(updates, [2]int{done, total}) }

	_, err := runner.Run(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, [][2]int{{1, 2}, {2, 2}}, updates)
}
