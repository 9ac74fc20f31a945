package entity

import (
	"context"
	"errors"
	"time"
)

var (
	ErrLeadNotFound = errors.New("lead não encontrado")
	ErrInvalidStage = errors.New("etapa inválida")
)

type Lead struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email,omitempty"`
	Phone             string     `json:"phone,omitempty"`
	OwnerName         string     `json:"owner_name,omitempty"`
	OwnerEmail        string     `json:"owner_email,omitempty"`
	OwnerPhone        string     `json:"owner_phone,omitempty"`
	Stage             Stage      `json:"stage"`
	LastInteractionAt *time.Time `json:"last_interaction_at,omitempty"`
	FollowupAt        *time.Time `json:"followup_at,omitempty"`
	FollowupNote      string     `json:"followup_note,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// AgingAnchor é o instante a partir do qual o lead envelhece.
// Sem interação registrada, vale a data de criação.
func (l *Lead) AgingAnchor() time.Time {
	if l.LastInteractionAt != nil && !l.LastInteractionAt.IsZero() {
		return *l.LastInteractionAt
	}
	return l.CreatedAt
}

func (l *Lead) HasFollowup() bool {
	return l.FollowupAt != nil && !l.FollowupAt.IsZero()
}

// LeadFilter restringe a busca do quadro de aging. Campos vazios não filtram.
type LeadFilter struct {
	Stages    []Stage
	OwnerName string
	Limit     int
}

type LeadRepositoryInterface interface {
	FetchLeadsForAging(ctx context.Context, filter LeadFilter) ([]*Lead, error)
	FindByID(ctx context.Context, id string) (*Lead, error)
	// FetchOverdueFollowups lista, sem limite, os follow-ups vencidos até now
	// de leads em etapas abertas, do mais antigo para o mais recente.
	FetchOverdueFollowups(ctx context.Context, now time.Time) ([]*Lead, error)
	UpdateFollowup(ctx context.Context, leadID string, at time.Time, note, actorName string) error
	RemoveFollowup(ctx context.Context, leadID, actorName string) error
	RecordInteraction(ctx context.Context, leadID string, at time.Time, actorName string) error
	UpdateStage(ctx context.Context, leadID string, stage Stage, actorName string) error
}

var (
	ErrFollowupInFlight = errors.New("já existe um envio de follow-up em andamento para este lead")
	ErrNoFollowup       = errors.New("lead não possui follow-up agendado")
	// ErrNoRecipient indica que o corretor não tem contato no canal; nada foi enviado.
	ErrNoRecipient = errors.New("responsável sem contato cadastrado para o canal")
)
