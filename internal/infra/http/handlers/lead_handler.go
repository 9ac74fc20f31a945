package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/imob-crm/internal/usecase"
)

type InteractionRecorder interface {
	Execute(ctx context.Context, leadID string, input usecase.InteractionInput) error
}

type StageChanger interface {
	Execute(ctx context.Context, leadID string, input usecase.StageInput) error
}

type LeadHandler struct {
	Interactions InteractionRecorder
	Stages       StageChanger
}

func NewLeadHandler(interactions InteractionRecorder, stages StageChanger) *LeadHandler {
	return &LeadHandler{Interactions: interactions, Stages: stages}
}

// HandleInteraction (POST /leads/{id}/interactions). Corpo opcional.
func (h *LeadHandler) HandleInteraction(w http.ResponseWriter, r *http.Request) {
	var input usecase.InteractionInput
	if r.ContentLength != 0 && !decodeJSON(w, r, &input) {
		return
	}

	if err := h.Interactions.Execute(r.Context(), chi.URLParam(r, "id"), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleStage (PUT /leads/{id}/stage)
func (h *LeadHandler) HandleStage(w http.ResponseWriter, r *http.Request) {
	var input usecase.StageInput
	if !decodeJSON(w, r, &input) {
		return
	}

	if err := h.Stages.Execute(r.Context(), chi.URLParam(r, "id"), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
