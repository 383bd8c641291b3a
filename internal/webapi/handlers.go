// Package webapi exposes the evaluation harness over HTTP: catalog and
// record CRUD, asynchronous run triggers, status polling, and a WebSocket
// progress feed.
package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mangleddev/behaviorlab/internal/config"
	"github.com/mangleddev/behaviorlab/internal/models"
	"github.com/mangleddev/behaviorlab/internal/orchestration"
	"github.com/mangleddev/behaviorlab/internal/store"
)

// Version is set at build time or defaults to dev.
var Version = "0.1.0-dev"

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	store *store.Store
	orch  *orchestration.Orchestrator
	hub   *Hub
	log   *slog.Logger
}

// NewHandlers creates the handler set. The hub is registered as a progress
// listener so WebSocket clients see run progress live.
func NewHandlers(st *store.Store, orch *orchestration.Orchestrator, log *slog.Logger) *Handlers {
	if log == nil {
		log = slog.Default()
	}
	h := &Handlers{store: st, orch: orch, hub: NewHub(log), log: log}
	orch.OnProgress(h.hub.Broadcast)
	return h
}

// RegisterRoutes registers all web API routes on the given mux.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", h.HandleHealth)

	mux.HandleFunc("GET /api/behaviors", h.HandleListBehaviors)
	mux.HandleFunc("POST /api/behaviors", h.HandleCreateBehavior)

	mux.HandleFunc("GET /api/evaluations", h.HandleListEvaluations)
	mux.HandleFunc("POST /api/evaluations", h.HandleCreateEvaluation)
	mux.HandleFunc("GET /api/evaluations/{id}", h.HandleGetEvaluation)
	mux.HandleFunc("DELETE /api/evaluations/{id}", h.HandleDeleteEvaluation)
	mux.HandleFunc("POST /api/evaluations/{id}/run", h.HandleRunEvaluation)
	mux.HandleFunc("GET /api/evaluations/{id}/status", h.HandleEvaluationStatus)

	mux.HandleFunc("GET /api/comparisons", h.HandleListComparisons)
	mux.HandleFunc("POST /api/comparisons", h.HandleCreateComparison)
	mux.HandleFunc("GET /api/comparisons/{id}", h.HandleGetComparison)
	mux.HandleFunc("DELETE /api/comparisons/{id}", h.HandleDeleteComparison)
	mux.HandleFunc("POST /api/comparisons/{id}/run", h.HandleRunComparison)

	mux.HandleFunc("GET /api/runs/active", h.HandleActiveRuns)
	mux.HandleFunc("GET /api/ws", h.HandleWebSocket)
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: Version})
}

// HandleListBehaviors returns the full catalog, built-ins first.
func (h *Handlers) HandleListBehaviors(w http.ResponseWriter, r *http.Request) {
	behaviors, err := h.store.ListBehaviors(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, behaviors)
}

// HandleCreateBehavior appends a custom behavior to the catalog.
func (h *Handlers) HandleCreateBehavior(w http.ResponseWriter, r *http.Request) {
	var req CreateBehaviorRequest
	if !decodeBody(w, r, &req) {
		return
	}
	behavior, err := h.store.AddBehavior(r.Context(), req.Key, req.Description)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, behavior)
}

// HandleListEvaluations returns all evaluations in creation order.
func (h *Handlers) HandleListEvaluations(w http.ResponseWriter, r *http.Request) {
	evals, err := h.store.ListEvaluations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, evals)
}

// HandleCreateEvaluation creates a pending evaluation.
func (h *Handlers) HandleCreateEvaluation(w http.ResponseWriter, r *http.Request) {
	var req CreateEvaluationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ev, err := h.orch.CreateEvaluation(r.Context(), orchestration.NewEvaluationParams{
		Name:         req.Name,
		BehaviorKey:  req.BehaviorKey,
		PromptConfig: req.PromptConfig,
		Tier:         req.Tier,
		Overrides:    overridesFrom(req.NumScenarios, req.NumJudges, req.MaxTurns, req.Diversity),
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

// HandleGetEvaluation returns one full evaluation record.
func (h *Handlers) HandleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	ev, err := h.store.GetEvaluation(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// HandleDeleteEvaluation removes an evaluation record. Active runs keep
// their in-flight state; only the stored record is deleted.
func (h *Handlers) HandleDeleteEvaluation(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteEvaluation(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRunEvaluation triggers an asynchronous evaluation run.
func (h *Handlers) HandleRunEvaluation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.store.GetEvaluation(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	if h.orch.IsActive(id) {
		writeError(w, http.StatusConflict, "evaluation is already running")
		return
	}

	go func() {
		// Runs outlive the triggering request.
		if _, err := h.orch.RunEvaluation(context.Background(), id); err != nil {
			h.log.Error("evaluation run failed", "evaluation", id, "error", err)
		}
	}()
	writeJSON(w, http.StatusAccepted, RunAccepted{ID: id, Status: models.StatusRunning})
}

// HandleEvaluationStatus returns the pollable run status.
func (h *Handlers) HandleEvaluationStatus(w http.ResponseWriter, r *http.Request) {
	ev, err := h.store.GetEvaluation(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{
		ID:          ev.ID,
		Status:      ev.Status,
		Stages:      ev.Stages,
		Results:     ev.Results,
		StartedAt:   ev.StartedAt,
		CompletedAt: ev.CompletedAt,
		Error:       ev.Error,
		Active:      h.orch.IsActive(ev.ID),
	})
}

// HandleListComparisons returns all comparisons in creation order.
func (h *Handlers) HandleListComparisons(w http.ResponseWriter, r *http.Request) {
	comparisons, err := h.store.ListComparisons(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, comparisons)
}

// HandleCreateComparison creates a comparison and its two evaluations.
func (h *Handlers) HandleCreateComparison(w http.ResponseWriter, r *http.Request) {
	var req CreateComparisonRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := h.orch.CreateComparison(r.Context(), orchestration.NewComparisonParams{
		Name:          req.Name,
		BehaviorKey:   req.BehaviorKey,
		Tier:          req.Tier,
		Overrides:     overridesFrom(req.NumScenarios, req.NumJudges, req.MaxTurns, req.Diversity),
		PromptConfigA: req.PromptConfigA,
		PromptConfigB: req.PromptConfigB,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// HandleGetComparison returns one comparison record.
func (h *Handlers) HandleGetComparison(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.GetComparison(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleDeleteComparison removes a comparison record. The underlying
// evaluations are kept; they remain independently queryable.
func (h *Handlers) HandleDeleteComparison(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteComparison(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRunComparison triggers an asynchronous A/B comparison run.
func (h *Handlers) HandleRunComparison(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.store.GetComparison(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	if h.orch.IsActive(id) {
		writeError(w, http.StatusConflict, "comparison is already running")
		return
	}

	go func() {
		if _, err := h.orch.RunComparison(context.Background(), id); err != nil {
			h.log.Error("comparison run failed", "comparison", id, "error", err)
		}
	}()
	writeJSON(w, http.StatusAccepted, RunAccepted{ID: id, Status: models.StatusRunning})
}

// HandleActiveRuns lists in-flight run ids.
func (h *Handlers) HandleActiveRuns(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ActiveRunsResponse{Active: h.orch.ActiveRuns()})
}

// HandleWebSocket upgrades the connection and streams progress events.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	h.hub.Serve(w, r)
}

func overridesFrom(numScenarios, numJudges, maxTurns *int, diversity *float64) config.Overrides {
	return config.Overrides{
		NumScenarios: numScenarios,
		NumJudges:    numJudges,
		MaxTurns:     maxTurns,
		Diversity:    diversity,
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeStoreError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}
