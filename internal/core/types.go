package core

import "time"

// Row is one observation for a query sent to the autocomplete API.
// Position is 1-indexed and zero exactly when Suggestion is empty: a query
// that failed or returned nothing still produces a single row so the batch
// output accounts for every query sent.
type Row struct {
	Seed       string `json:"seed"`
	Query      string `json:"query_sent"`
	Position   int    `json:"position,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Error      string `json:"error,omitempty"`
}

// HasSuggestion reports whether the row carries an actual suggestion.
func (r Row) HasSuggestion() bool {
	return r.Suggestion != ""
}

// SeedCount is one summary line: distinct non-empty suggestions per seed.
type SeedCount struct {
	Seed              string `json:"seed"`
	UniqueSuggestions int    `json:"unique_suggestions"`
}

// RunOptions captures the knobs for a single batch run.
type RunOptions struct {
	Letters       bool              `json:"letters" mapstructure:"letters"`
	Prefixes      []string          `json:"prefixes,omitempty" mapstructure:"prefixes"`
	Suffixes      []string          `json:"suffixes,omitempty" mapstructure:"suffixes"`
	KeepSeedFirst bool              `json:"keep_seed_first" mapstructure:"keep_seed_first"`
	Dedupe        bool              `json:"dedupe" mapstructure:"dedupe"`
	RPM           int               `json:"rpm" mapstructure:"rpm"`
	MaxRetries    int               `json:"max_retries" mapstructure:"max_retries"`
	Backoff       time.Duration     `json:"backoff" mapstructure:"backoff"`
	Locale        map[string]string `json:"locale,omitempty" mapstructure:"locale"`
}

// RunRequest is a batch run as submitted by the CLI or the dashboard.
type RunRequest struct {
	Seeds   []string   `json:"seeds"`
	Options RunOptions `json:"options"`
}

// RunResult is the outcome of a completed batch run.
type RunResult struct {
	RunID              string      `json:"run_id"`
	StartedAt          time.Time   `json:"started_at"`
	CompletedAt        time.Time   `json:"completed_at"`
	Seeds              []string    `json:"seeds"`
	QueryCount         int         `json:"query_count"`
	Rows               []Row       `json:"rows"`
	Summary            []SeedCount `json:"summary"`
	Options            RunOptions  `json:"options"`
	RateLimitRemaining string      `json:"rate_limit_remaining,omitempty"`
}

// RunMeta is the run-history listing entry.
type RunMeta struct {
	RunID      string    `json:"run_id"`
	CreatedAt  time.Time `json:"created_at"`
	SeedCount  int       `json:"seed_count"`
	QueryCount int       `json:"query_count"`
	RowCount   int       `json:"row_count"`
}
