package handlers

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/querylens/querylens/internal/core"
	"github.com/querylens/querylens/internal/core/engine"
	"github.com/querylens/querylens/internal/core/expand"
)

//go:embed templates/*.html
var templateFS embed.FS

var dashboardTmpl = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

// formState echoes the submitted form back into the rendered page.
type formState struct {
	Seeds         string
	Letters       bool
	Prefixes      string
	Suffixes      string
	KeepSeedFirst bool
	Dedupe        bool
	RPM           int
	MaxRetries    int
	Backoff       int
	GL            string
	HL            string
	Client        string
	GoogleDomain  string
	Delimiter     string
}

type pageData struct {
	Warning string
	Error   string
	Form    formState
	Result  *core.RunResult
	Runs    []core.RunMeta
	HasCSV  bool
}

// Index renders the dashboard form. A missing API key degrades to a
// warning banner; it does not block the page.
func (d *Dashboard) Index(w http.ResponseWriter, r *http.Request) {
	data := pageData{Form: d.defaultForm()}
	if d.missingKey() {
		data.Warning = "No SERPAPI_KEY found. Set it via environment or config; batch runs are blocked until it is."
	}
	d.attachRuns(r, &data)
	d.render(w, data)
}

// Run executes a batch from the submitted form and renders the results.
func (d *Dashboard) Run(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form submission")
		return
	}

	form := parseForm(r)
	req := formToRequest(form)

	data := pageData{Form: form, HasCSV: d.History != nil}

	result, err := d.Service.Run(r.Context(), req)
	switch {
	case errors.Is(err, engine.ErrMissingAPIKey):
		data.Error = "Missing SERPAPI_KEY. Add it via environment variable or config file."
		d.renderStatus(w, http.StatusUnprocessableEntity, data)
		return
	case errors.Is(err, engine.ErrNoSeeds):
		data.Error = "Add at least one seed."
		d.renderStatus(w, http.StatusUnprocessableEntity, data)
		return
	case err != nil:
		d.log().Error("batch run failed", zap.Error(err))
		data.Error = "Batch run failed: " + err.Error()
		d.renderStatus(w, http.StatusInternalServerError, data)
		return
	}

	d.log().Info("batch run completed",
		zap.String("run_id", result.RunID),
		zap.Int("seeds", len(result.Seeds)),
		zap.Int("queries", result.QueryCount),
		zap.Int("rows", len(result.Rows)))

	data.Result = result
	d.attachRuns(r, &data)
	d.render(w, data)
}

// RunAPI executes a batch from a JSON request body. This is the endpoint
// the non-HTML dashboard variant drives.
func (d *Dashboard) RunAPI(w http.ResponseWriter, r *http.Request) {
	// A minimal body behaves like an untouched form: bare seed kept,
	// dedupe on, retries deferred to config via the negative sentinel.
	req := core.RunRequest{Options: core.RunOptions{
		KeepSeedFirst: true,
		Dedupe:        true,
		MaxRetries:    -1,
	}}
	if err := jsonDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	result, err := d.Service.Run(r.Context(), req)
	switch {
	case errors.Is(err, engine.ErrMissingAPIKey), errors.Is(err, engine.ErrNoSeeds):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		d.log().Error("batch run failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (d *Dashboard) render(w http.ResponseWriter, data pageData) {
	d.renderStatus(w, http.StatusOK, data)
}

func (d *Dashboard) renderStatus(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := dashboardTmpl.Execute(w, data); err != nil {
		d.log().Error("failed to render dashboard", zap.Error(err))
	}
}

func (d *Dashboard) attachRuns(r *http.Request, data *pageData) {
	if d.History == nil {
		return
	}
	data.HasCSV = true
	runs, err := d.History.ListRuns(r.Context(), 10)
	if err != nil {
		d.log().Warn("failed to list run history", zap.Error(err))
		return
	}
	data.Runs = runs
}

func (d *Dashboard) missingKey() bool {
	return d.Config == nil || strings.TrimSpace(d.Config.SerpAPI.APIKey) == ""
}

func (d *Dashboard) defaultForm() formState {
	form := formState{
		KeepSeedFirst: true,
		Dedupe:        true,
		RPM:           60,
		MaxRetries:    2,
		Backoff:       3,
		Delimiter:     ",",
	}
	if d.Config != nil {
		if d.Config.Pacing.RPM > 0 {
			form.RPM = d.Config.Pacing.RPM
		}
		if d.Config.Pacing.MaxRetries > 0 {
			form.MaxRetries = d.Config.Pacing.MaxRetries
		}
		if d.Config.Pacing.Backoff > 0 {
			form.Backoff = int(d.Config.Pacing.Backoff / time.Second)
		}
		form.GL = d.Config.Locale["gl"]
		form.HL = d.Config.Locale["hl"]
		form.Client = d.Config.Locale["client"]
		form.GoogleDomain = d.Config.Locale["google_domain"]
		if d.Config.Output.Delimiter != "" {
			form.Delimiter = d.Config.Output.Delimiter
		}
	}
	return form
}

func parseForm(r *http.Request) formState {
	return formState{
		Seeds:         r.PostFormValue("seeds"),
		Letters:       r.PostFormValue("letters") != "",
		Prefixes:      r.PostFormValue("prefixes"),
		Suffixes:      r.PostFormValue("suffixes"),
		KeepSeedFirst: r.PostFormValue("keep_seed_first") != "",
		Dedupe:        r.PostFormValue("dedupe") != "",
		RPM:           formInt(r, "rpm", 60),
		MaxRetries:    formInt(r, "max_retries", 2),
		Backoff:       formInt(r, "backoff", 3),
		GL:            r.PostFormValue("gl"),
		HL:            r.PostFormValue("hl"),
		Client:        r.PostFormValue("client"),
		GoogleDomain:  r.PostFormValue("google_domain"),
		Delimiter:     r.PostFormValue("delimiter"),
	}
}

func formToRequest(form formState) core.RunRequest {
	locale := map[string]string{}
	if form.GL != "" {
		locale["gl"] = form.GL
	}
	if form.HL != "" {
		locale["hl"] = form.HL
	}
	if form.Client != "" {
		locale["client"] = form.Client
	}
	if form.GoogleDomain != "" {
		locale["google_domain"] = form.GoogleDomain
	}

	return core.RunRequest{
		Seeds: expand.Seeds(form.Seeds),
		Options: core.RunOptions{
			Letters:       form.Letters,
			Prefixes:      expand.Seeds(form.Prefixes),
			Suffixes:      expand.Seeds(form.Suffixes),
			KeepSeedFirst: form.KeepSeedFirst,
			Dedupe:        form.Dedupe,
			RPM:           form.RPM,
			MaxRetries:    form.MaxRetries,
			Backoff:       time.Duration(form.Backoff) * time.Second,
			Locale:        locale,
		},
	}
}

func formInt(r *http.Request, name string, fallback int) int {
	value := strings.TrimSpace(r.PostFormValue(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
