// Package engine runs suggestion batches: expansion, paced fetching with
// retry, and aggregation into the result table.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/querylens/querylens/internal/core"
	"github.com/querylens/querylens/internal/core/aggregate"
	"github.com/querylens/querylens/internal/core/expand"
	"github.com/querylens/querylens/internal/core/suggest"
)

var (
	// ErrNoSeeds means the batch had no usable seed after trimming.
	ErrNoSeeds = errors.New("at least one seed is required")
	// ErrMissingAPIKey blocks a run (but not the UI) when no key is configured.
	ErrMissingAPIKey = errors.New("missing SerpAPI key")
)

// Fetcher issues one autocomplete request per call.
type Fetcher interface {
	Suggest(ctx context.Context, query string) (*suggest.Result, error)
}

// Runner executes a batch sequentially: one outstanding request at a time,
// paced to the configured RPM ceiling. Limiter, Sleep, and Clock are
// injectable for tests; nil fields fall back to real time.
type Runner struct {
	Fetcher  Fetcher
	Options  core.RunOptions
	Logger   *zap.Logger
	Limiter  *rate.Limiter
	Sleep    func(time.Duration)
	Clock    func() time.Time
	Progress func(done, total int)
}

// NewRunner builds a runner with pacing derived from the RPM option.
func NewRunner(fetcher Fetcher, opts core.RunOptions, logger *zap.Logger) *Runner {
	r := &Runner{Fetcher: fetcher, Options: opts, Logger: logger}
	if opts.RPM > 0 {
		r.Limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RPM)), 1)
	}
	return r
}

// Run expands every seed and fetches each variant in order. Per-query
// failures are recorded as rows and never abort the batch; only an empty
// seed set or context cancellation does.
func (r *Runner) Run(ctx context.Context, seeds []string) (*core.RunResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	seeds = expand.Distinct(seeds)
	if len(seeds) == 0 {
		return nil, ErrNoSeeds
	}

	queries := make(map[string][]string, len(seeds))
	total := 0
	for _, seed := range seeds {
		variants := r.variants(seed)
		queries[seed] = variants
		total += len(variants)
	}

	result := &core.RunResult{
		RunID:      uuid.New().String(),
		StartedAt:  r.now(),
		Seeds:      seeds,
		QueryCount: total,
		Options:    r.Options,
	}

	done := 0
	for _, seed := range seeds {
		for _, query := range queries[seed] {
			if err := r.pace(ctx); err != nil {
				return nil, err
			}

			r.logDebug("fetching query", zap.String("seed", seed), zap.String("query", query))

			fetched, err := r.fetchWithRetry(ctx, query)
			switch {
			case err != nil && ctx.Err() != nil:
				return nil, ctx.Err()
			case err != nil:
				r.logWarn("query failed after retries",
					zap.String("query", query),
					zap.Int("max_retries", r.Options.MaxRetries),
					zap.Error(err))
				result.Rows = append(result.Rows, core.Row{Seed: seed, Query: query, Error: err.Error()})
			case len(fetched.Suggestions) == 0:
				result.Rows = append(result.Rows, core.Row{Seed: seed, Query: query})
			default:
				for _, s := range fetched.Suggestions {
					result.Rows = append(result.Rows, core.Row{
						Seed:       seed,
						Query:      query,
						Position:   s.Position,
						Suggestion: s.Value,
					})
				}
			}
			if fetched != nil && fetched.RateLimitRemaining != "" {
				result.RateLimitRemaining = fetched.RateLimitRemaining
			}

			done++
			if r.Progress != nil {
				r.Progress(done, total)
			}
		}
	}

	if r.Options.Dedupe {
		result.Rows = aggregate.Dedupe(result.Rows)
	}
	result.Summary = aggregate.Summarize(result.Rows)
	result.CompletedAt = r.now()

	return result, nil
}

// fetchWithRetry retries transport and HTTP failures up to MaxRetries extra
// attempts, waiting backoff*attempt between tries. Exhaustion surfaces the
// last error to the caller.
func (r *Runner) fetchWithRetry(ctx context.Context, query string) (*suggest.Result, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		result, err := r.Fetcher.Suggest(ctx, query)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt >= r.Options.MaxRetries {
			return nil, lastErr
		}

		wait := r.Options.Backoff * time.Duration(attempt+1)
		r.logDebug("retrying query",
			zap.String("query", query),
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err))
		if err := r.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// variants expands one seed. The bare seed leads the set; when
// KeepSeedFirst is off it is dropped as long as other variants remain.
func (r *Runner) variants(seed string) []string {
	variants := expand.Variants(seed, expand.Options{
		Letters:  r.Options.Letters,
		Prefixes: r.Options.Prefixes,
		Suffixes: r.Options.Suffixes,
	})
	if !r.Options.KeepSeedFirst && len(variants) > 1 {
		variants = variants[1:]
	}
	return variants
}

func (r *Runner) pace(ctx context.Context) error {
	if r.Limiter == nil {
		return nil
	}
	return r.Limiter.Wait(ctx)
}

func (r *Runner) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if r.Sleep != nil {
		r.Sleep(d)
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) now() time.Time {
	if r != nil && r.Clock != nil {
		return r.Clock()
	}
	return time.Now().UTC()
}

func (r *Runner) logDebug(msg string, fields ...zap.Field) {
	if r.Logger != nil {
		r.Logger.Debug(msg, fields...)
	}
}

func (r *Runner) logWarn(msg string, fields ...zap.Field) {
	if r.Logger != nil {
		r.Logger.Warn(msg, fields...)
	}
}
