package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/imob-crm/internal/aging"
	"github.com/xavierca1/imob-crm/internal/entity"
	"github.com/xavierca1/imob-crm/internal/usecase"
)

type BoardReader interface {
	Execute(ctx context.Context, filter entity.LeadFilter) (*usecase.BoardOutput, error)
	ExecuteLead(ctx context.Context, leadID string) (*aging.Card, error)
}

type LeadWatcher interface {
	Execute(ctx context.Context, leadID string, onRender func(aging.Card)) error
}

type BoardHandler struct {
	Board   BoardReader
	Watcher LeadWatcher
	// Snapshot devolve o último board completo do worker (nil antes do primeiro tick).
	Snapshot func() *usecase.BoardOutput
}

func NewBoardHandler(board BoardReader, watcher LeadWatcher, snapshot func() *usecase.BoardOutput) *BoardHandler {
	return &BoardHandler{Board: board, Watcher: watcher, Snapshot: snapshot}
}

// HandleList (GET /leads/aging?stage=novo,em_espera&owner=Ana&limit=50).
// Sem filtro, responde com o board já calculado pelo worker.
func (h *BoardHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseLeadFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if isEmptyFilter(filter) && h.Snapshot != nil {
		if snap := h.Snapshot(); snap != nil {
			writeJSON(w, http.StatusOK, snap)
			return
		}
	}

	out, err := h.Board.Execute(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleLead (GET /leads/{id}/aging)
func (h *BoardHandler) HandleLead(w http.ResponseWriter, r *http.Request) {
	card, err := h.Board.ExecuteLead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// HandleStream (GET /leads/{id}/aging/stream) envia o cartão por SSE a cada
// recálculo, até o cliente desconectar.
func (h *BoardHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok || h.Watcher == nil {
		writeJSON(w, http.StatusNotImplemented, ErrorResponse{Error: "streaming não suportado"})
		return
	}

	started := false
	err := h.Watcher.Execute(r.Context(), chi.URLParam(r, "id"), func(card aging.Card) {
		if !started {
			w.Header().Set("Content-Type", "text/event-stream")
			w.Header().Set("Cache-Control", "no-cache")
			w.Header().Set("Connection", "keep-alive")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		body, err := json.Marshal(card)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "event: aging\ndata: %s\n\n", body)
		flusher.Flush()
	})
	if err != nil && !started {
		writeError(w, err)
	}
}

func isEmptyFilter(f entity.LeadFilter) bool {
	return len(f.Stages) == 0 && f.OwnerName == "" && f.Limit == 0
}

func parseLeadFilter(r *http.Request) (entity.LeadFilter, error) {
	q := r.URL.Query()
	filter := entity.LeadFilter{OwnerName: strings.TrimSpace(q.Get("owner"))}

	for _, raw := range q["stage"] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part == "" {
				continue
			}
			stage, err := entity.ParseStage(part)
			if err != nil {
				return filter, &usecase.DomainError{
					Code:    usecase.CodeInvalidStage,
					Message: err.Error(),
					Fields:  []usecase.ValidationError{{Field: "stage", Message: "is invalid"}},
				}
			}
			filter.Stages = append(filter.Stages, stage)
		}
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, &usecase.DomainError{
				Code:    usecase.CodeValidation,
				Message: "limit inválido",
				Fields:  []usecase.ValidationError{{Field: "limit", Message: "must be a positive integer"}},
			}
		}
		filter.Limit = limit
	}
	return filter, nil
}
