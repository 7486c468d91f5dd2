package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"

	"population-pipeline/internal/model"
	"population-pipeline/internal/store"
)

// Runner executes one pipeline run. The report may be nil when err is set.
type Runner interface {
	Run(ctx context.Context) (*model.RunReport, error)
}

// Store is the read side the handlers need from the repository.
type Store interface {
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	GetRun(ctx context.Context, runID string) (model.RunRecord, error)
	QueryInlineSum(ctx context.Context) (int64, error)
	QueryViewSum(ctx context.Context) (int64, error)
	Documents(ctx context.Context) ([]model.PersistedDocument, error)
}

// RunHandler serves pipeline runs and the persisted data behind them.
type RunHandler struct {
	runner Runner
	store  Store

	// runs are serialized so a single writer touches the dataset table
	mu sync.Mutex
}

func NewRunHandler(runner Runner, store Store) *RunHandler {
	return &RunHandler{runner: runner, store: store}
}

// CreateRun runs the pipeline synchronously
// @Summary Run the pipeline
// @Description Fetch the dataset, persist it and reconcile the three aggregate sums. Runs are serialized.
// @Tags runs
// @Produce json
// @Success 200 {object} model.RunReport "Run completed"
// @Failure 500 {object} model.RunReport "Persistence or query failure"
// @Failure 502 {object} model.RunReport "Source unreachable or malformed"
// @Router /runs [post]
func (h *RunHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	report, err := h.runner.Run(r.Context())
	if err != nil {
		if report == nil {
			report = &model.RunReport{State: model.StateFailed, Error: err.Error()}
		}
		log.Printf("❌ Run %s failed: %v", report.RunID, err)
		writeJSON(w, statusFor(err), report)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ListRuns retrieves the run history
// @Summary List runs
// @Description Get every recorded run, newest first
// @Tags runs
// @Produce json
// @Success 200 {array} model.RunRecord "List of runs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs [get]
func (h *RunHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.store.ListRuns(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch runs", err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// GetRun retrieves a single run
// @Summary Get run
// @Description Retrieve the recorded state and sums of a run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} model.RunRecord "Run details"
// @Failure 400 {object} map[string]interface{} "Invalid run ID"
// @Failure 404 {object} map[string]interface{} "Run not found"
// @Router /runs/{id} [get]
func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/runs/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}
	runID := strings.Trim(r.URL.Path[len(prefix):], "/")
	if runID == "" || strings.Contains(runID, "/") {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}

	run, err := h.store.GetRun(r.Context(), runID)
	if errors.Is(err, store.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, "Run not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch run", err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// GetSums recomputes the store-side aggregates without fetching
// @Summary Current sums
// @Description Compute the inline query and view sums over the active rows
// @Tags sums
// @Produce json
// @Success 200 {object} model.SumsView "Current sums"
// @Failure 500 {object} map[string]interface{} "Query failure"
// @Router /sums [get]
func (h *RunHandler) GetSums(w http.ResponseWriter, r *http.Request) {
	inline, err := h.store.QueryInlineSum(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute inline sum", err)
		return
	}
	view, err := h.store.QueryViewSum(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute view sum", err)
		return
	}
	writeJSON(w, http.StatusOK, model.SumsView{
		InlineQuery: inline,
		View:        view,
		Consistent:  inline == view,
	})
}

// ListDocuments retrieves persisted dataset rows
// @Summary List documents
// @Description Get the persisted dataset rows with their flags, without payloads
// @Tags documents
// @Produce json
// @Success 200 {array} model.PersistedDocument "Persisted rows"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /documents [get]
func (h *RunHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.store.Documents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch documents", err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// statusFor maps a run failure to the response status. Upstream failures are
// reported as a bad gateway, everything else is ours.
func statusFor(err error) int {
	switch model.KindOf(err) {
	case model.ErrNetwork, model.ErrShape:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("⚠️ Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	log.Printf("❌ %s: %v", message, err)
	writeJSON(w, status, map[string]interface{}{
		"error":   message,
		"details": err.Error(),
	})
}
