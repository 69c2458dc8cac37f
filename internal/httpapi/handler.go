// Package httpapi exposes the Migration Workflow Engine over HTTP: a thin
// layer outside the core that submits migration jobs, reports workflow
// status, and retries failed steps, grounded on the teacher's chi-based
// WorkflowRunsHandler (internal/api/workflow_runs.go).
package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cedricziel/migrated/internal/workflow"
)

// Handler wires the Workflow Registry and Engine behind the HTTP surface
// described for the core: migration submission, status lookup, listing,
// and per-step retry.
type Handler struct {
	engine    *workflow.Engine
	workflows *workflow.Registry
}

// NewHandler returns a Handler driving engine/workflows.
func NewHandler(engine *workflow.Engine, workflows *workflow.Registry) *Handler {
	return &Handler{engine: engine, workflows: workflows}
}

// Router assembles the chi router this Handler serves.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", h.health)
	r.Route("/api/workflows", func(r chi.Router) {
		r.Get("/", h.listWorkflows)
		r.Post("/migration", h.submitMigration)
		r.Route("/{workflowID}", func(r chi.Router) {
			r.Get("/", h.getWorkflow)
			r.Post("/retry/{stepID}", h.retryStep)
		})
	})
	return r
}

type migrationRequest struct {
	SourceSystem string         `json:"sourceSystem"`
	TargetSystem string         `json:"targetSystem"`
	ProjectKey   string         `json:"projectKey"`
	EntityTypes  []string       `json:"entityTypes"`
	Options      map[string]any `json:"options"`
}

func (h *Handler) submitMigration(w http.ResponseWriter, r *http.Request) {
	var req migrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	entityTypes := req.EntityTypes
	if len(entityTypes) == 0 {
		entityTypes = []string{"test-case"}
	}

	wf := workflow.NewWorkflow(uuid.NewString(), workflow.MigrationInput{
		SourceSystem: req.SourceSystem,
		TargetSystem: req.TargetSystem,
		ProjectKey:   req.ProjectKey,
		EntityTypes:  entityTypes,
		SourceConfig: mapValue(req.Options, "sourceConfig"),
		TargetConfig: mapValue(req.Options, "targetConfig"),
		Filters:      mapValue(req.Options, "filters"),
	})
	h.workflows.Submit(wf)

	if err := h.engine.Start(r.Context(), wf); err != nil {
		// The error is already reflected on wf.State/wf.Error; a submission
		// that fails validation or connection is still a 200 with a FAILED
		// workflow status object, not a transport-level error.
	}

	writeJSON(w, http.StatusOK, toStatusObject(wf))
}

func (h *Handler) getWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workflowID")
	wf, ok := h.workflows.Get(id)
	if !ok {
		http.Error(w, "workflow not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toStatusObject(wf))
}

func (h *Handler) listWorkflows(w http.ResponseWriter, r *http.Request) {
	list := h.workflows.List()
	out := make([]summaryObject, 0, len(list))
	for _, wf := range list {
		out = append(out, summaryObject{
			ID:        wf.ID,
			Type:      wf.Type,
			State:     string(wf.State),
			CreatedAt: wf.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) retryStep(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workflowID")
	stepID := chi.URLParam(r, "stepID")

	wf, ok := h.workflows.Get(id)
	if !ok {
		http.Error(w, "workflow not found", http.StatusNotFound)
		return
	}

	if err := h.engine.RetryStep(wf, stepID); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.engine.Start(r.Context(), wf); err != nil {
		// Reflected on the status object, as in submitMigration.
	}

	writeJSON(w, http.StatusOK, toStatusObject(wf))
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

type stepObject struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	Order     int        `json:"order"`
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
}

type statusObject struct {
	ID          string       `json:"id"`
	Type        string       `json:"type"`
	State       string       `json:"state"`
	CreatedAt   time.Time    `json:"createdAt"`
	StartedAt   *time.Time   `json:"startedAt,omitempty"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
	Steps       []stepObject `json:"steps"`
	Result      any          `json:"result,omitempty"`
	Error       string       `json:"error,omitempty"`
}

type summaryObject struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
}

func toStatusObject(wf *workflow.Workflow) statusObject {
	steps := make([]stepObject, len(wf.Steps))
	for i, s := range wf.Steps {
		steps[i] = stepObject{
			ID:        s.ID,
			Name:      s.Name,
			Status:    string(s.Status),
			Order:     s.Order,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
		}
	}
	return statusObject{
		ID:          wf.ID,
		Type:        wf.Type,
		State:       string(wf.State),
		CreatedAt:   wf.CreatedAt,
		StartedAt:   wf.StartedAt,
		CompletedAt: wf.CompletedAt,
		Steps:       steps,
		Result:      wf.Result,
		Error:       wf.Error,
	}
}

func mapValue(options map[string]any, key string) map[string]any {
	if options == nil {
		return nil
	}
	if v, ok := options[key].(map[string]any); ok {
		return v
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		fmt.Fprintf(w, `{"error":"failed to encode response"}`)
	}
}
