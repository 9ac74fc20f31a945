package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/imob-crm/internal/infra/http/middleware"
	"github.com/xavierca1/imob-crm/internal/logger"
	"github.com/xavierca1/imob-crm/internal/usecase"
)

type FollowupHandler struct {
	Scheduler usecase.FollowupScheduler
	Remover   usecase.FollowupRemover
	Logger    *zap.Logger
}

func NewFollowupHandler(scheduler usecase.FollowupScheduler, remover usecase.FollowupRemover, log *zap.Logger) *FollowupHandler {
	return &FollowupHandler{Scheduler: scheduler, Remover: remover, Logger: logger.OrNop(log)}
}

// HandleSchedule (PUT /leads/{id}/followup)
func (h *FollowupHandler) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "id")

	var input usecase.FollowupInput
	if !decodeJSON(w, r, &input) {
		return
	}

	out, err := h.Scheduler.Execute(r.Context(), leadID, input)
	if err != nil {
		var domainErr *usecase.DomainError
		if errors.As(err, &domainErr) {
			for _, f := range domainErr.Fields {
				middleware.RecordValidationRejection(f.Field)
			}
		} else {
			h.Logger.Error("erro ao agendar follow-up", zap.String("lead_id", leadID), zap.Error(err))
		}
		writeError(w, err)
		return
	}

	middleware.RecordFollowupScheduled()
	writeJSON(w, http.StatusOK, out)
}

// HandleRemove (DELETE /leads/{id}/followup?actor_name=)
func (h *FollowupHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "id")

	if err := h.Remover.Execute(r.Context(), leadID, r.URL.Query().Get("actor_name")); err != nil {
		if usecase.IsTechnicalError(err) {
			h.Logger.Error("erro ao remover follow-up", zap.String("lead_id", leadID), zap.Error(err))
		}
		writeError(w, err)
		return
	}

	middleware.RecordFollowupRemoved()
	w.WriteHeader(http.StatusNoContent)
}
