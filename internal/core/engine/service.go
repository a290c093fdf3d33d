package engine

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/querylens/querylens/internal/config"
	"github.com/querylens/querylens/internal/core"
	"github.com/querylens/querylens/internal/core/store"
	"github.com/querylens/querylens/internal/core/suggest"
)

// Service wires configuration, the suggestion client, and the run store
// into a single entry point used by both the CLI and the dashboard.
type Service struct {
	Config *config.Config
	Store  *store.Store
	Logger *zap.Logger

	// NewFetcher overrides client construction in tests.
	NewFetcher func(opts core.RunOptions) Fetcher

	// Progress receives per-query completion updates.
	Progress func(done, total int)
}

// Run validates the request, executes the batch, and records it in the run
// store when one is configured. Store failures are logged, not fatal: the
// caller still gets the completed result.
func (s *Service) Run(ctx context.Context, req core.RunRequest) (*core.RunResult, error) {
	opts := s.applyDefaults(req.Options)

	fetcher, err := s.fetcher(opts)
	if err != nil {
		return nil, err
	}

	runner := NewRunner(fetcher, opts, s.Logger)
	runner.Progress = s.Progress

	result, err := runner.Run(ctx, req.Seeds)
	if err != nil {
		return nil, err
	}

	if s.Store != nil {
		if err := s.Store.SaveRun(ctx, result); err != nil && s.Logger != nil {
			s.Logger.Warn("failed to persist run", zap.String("run_id", result.RunID), zap.Error(err))
		}
	}

	return result, nil
}

func (s *Service) fetcher(opts core.RunOptions) (Fetcher, error) {
	if s.NewFetcher != nil {
		return s.NewFetcher(opts), nil
	}

	if s.Config == nil || strings.TrimSpace(s.Config.SerpAPI.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	return &suggest.Client{
		APIKey:  s.Config.SerpAPI.APIKey,
		Locale:  opts.Locale,
		BaseURL: s.Config.SerpAPI.BaseURL,
		Client:  s.Config.SerpAPI.HTTPClient(),
	}, nil
}

// applyDefaults fills unset request options from configuration. MaxRetries
// treats negative as "unset" so an explicit zero survives. The request
// locale map is merged over the configured defaults so either app variant
// (gl/hl/client or google_domain flavored) works without code changes.
func (s *Service) applyDefaults(opts core.RunOptions) core.RunOptions {
	if cfg := s.Config; cfg != nil {
		if opts.RPM <= 0 {
			opts.RPM = cfg.Pacing.RPM
		}
		if opts.MaxRetries < 0 {
			opts.MaxRetries = cfg.Pacing.MaxRetries
		}
		if opts.Backoff <= 0 {
			opts.Backoff = cfg.Pacing.Backoff
		}

		locale := make(map[string]string, len(cfg.Locale)+len(opts.Locale))
		for key, value := range cfg.Locale {
			locale[key] = value
		}
		for key, value := range opts.Locale {
			locale[key] = value
		}
		opts.Locale = locale
	}

	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return opts
}
