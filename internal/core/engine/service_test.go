package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/querylens/querylens/internal/config"
	"github.com/querylens/querylens/internal/core"
)

func TestServiceRunMissingAPIKeyIsFatal(t *testing.T) {
	svc := &Service{Config: &config.Config{}}

	_, err := svc.Run(context.Background(), core.RunRequest{Seeds: []string{"coffee"}})
	require.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestServiceRunMergesLocaleDefaults(t *testing.T) {
	var seen core.RunOptions
	svc := &Service{
		Config: &config.Config{
			Locale: map[string]string{"gl": "uk", "hl": "en"},
			Pacing: config.PacingConfig{RPM: 60, Backoff: 3 * time.Second},
		},
		NewFetcher: func(opts core.RunOptions) Fetcher {
			seen = opts
			return &stubFetcher{}
		},
	}

	_, err := svc.Run(context.Background(), core.RunRequest{
		Seeds: []string{"coffee"},
		Options: core.RunOptions{
			KeepSeedFirst: true,
			Locale:        map[string]string{"gl": "us", "google_domain": "google.com"},
		},
	})
	require.NoError(t, err)

	require.Equal(t, "us", seen.Locale["gl"], "request locale overrides config")
	require.Equal(t, "en", seen.Locale["hl"], "config locale fills gaps")
	require.Equal(t, "google.com", seen.Locale["google_domain"])
	require.Equal(t, 60, seen.RPM)
	require.Equal(t, 3*time.Second, seen.Backoff)
}

func TestServiceRunFillsRetryDefaultFromConfig(t *testing.T) {
	var seen core.RunOptions
	svc := &Service{
		Config: &config.Config{Pacing: config.PacingConfig{MaxRetries: 2}},
		NewFetcher: func(opts core.RunOptions) Fetcher {
			seen = opts
			return &stubFetcher{}
		},
	}

	_, err := svc.Run(context.Background(), core.RunRequest{
		Seeds:   []string{"coffee"},
		Options: core.RunOptions{KeepSeedFirst: true, MaxRetries: -1},
	})
	require.NoError(t, err)
	require.Equal(t, 2, seen.MaxRetries, "unset retries take the config default")

	_, err = svc.Run(context.Background(), core.RunRequest{
		Seeds:   []string{"coffee"},
		Options: core.RunOptions{KeepSeedFirst: true, MaxRetries: 0},
	})
	require.NoError(t, err)
	require.Equal(t, 0, seen.MaxRetries, "explicit zero retries must survive")
}
