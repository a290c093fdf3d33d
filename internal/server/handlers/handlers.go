// Package handlers implements the dashboard HTTP endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/querylens/querylens/internal/config"
	"github.com/querylens/querylens/internal/core"
)

// RunService executes suggestion batches.
type RunService interface {
	Run(ctx context.Context, req core.RunRequest) (*core.RunResult, error)
}

// RunHistory exposes persisted runs for listing and CSV re-download.
type RunHistory interface {
	ListRuns(ctx context.Context, limit int) ([]core.RunMeta, error)
	GetRun(ctx context.Context, runID string) (*core.RunResult, error)
}

// Dashboard carries the dependencies shared by the dashboard endpoints.
// History may be nil when no run store is configured.
type Dashboard struct {
	Service RunService
	History RunHistory
	Config  *config.Config
	Logger  *zap.Logger
}

func (d *Dashboard) log() *zap.Logger {
	if d != nil && d.Logger != nil {
		return d.Logger
	}
	return zap.NewNop()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func jsonDecode(r *http.Request, target any) error {
	defer r.Body.Close() // nolint:errcheck // best-effort cleanup on request body
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}
