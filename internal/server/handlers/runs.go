package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/querylens/querylens/internal/core/store"
	"github.com/querylens/querylens/internal/output"
)

// ListRuns returns the most recent persisted runs as JSON.
func (d *Dashboard) ListRuns(w http.ResponseWriter, r *http.Request) {
	if d.History == nil {
		writeError(w, http.StatusNotFound, "run history is not configured")
		return
	}

	runs, err := d.History.ListRuns(r.Context(), 50)
	if err != nil {
		d.log().Error("failed to list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	writeJSON(w, http.StatusOK, runs)
}

// GetRun returns one persisted run with its full row table as JSON.
func (d *Dashboard) GetRun(w http.ResponseWriter, r *http.Request) {
	if d.History == nil {
		writeError(w, http.StatusNotFound, "run history is not configured")
		return
	}

	result, err := d.History.GetRun(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		d.log().Error("failed to load run", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// DownloadCSV streams a persisted run's row table as a CSV attachment.
// The delimiter comes from the `sep` query parameter.
func (d *Dashboard) DownloadCSV(w http.ResponseWriter, r *http.Request) {
	if d.History == nil {
		writeError(w, http.StatusNotFound, "run history is not configured")
		return
	}

	delimiter, err := output.ParseDelimiter(r.URL.Query().Get("sep"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	runID := chi.URLParam(r, "id")
	result, err := d.History.GetRun(r.Context(), runID)
	if errors.Is(err, store.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		d.log().Error("failed to load run", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "autocomplete_results_"+runID+".csv"))
	if err := output.WriteCSV(w, result.Rows, delimiter); err != nil {
		d.log().Error("failed to stream CSV", zap.String("run_id", runID), zap.Error(err))
	}
}
