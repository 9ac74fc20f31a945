package usecase

import (
	"context"
	"time"
)

type FollowupInput struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Note      string `json:"note"`
	ActorName string `json:"actor_name"`
}

type FollowupOutput struct {
	LeadID     string `json:"lead_id"`
	FollowupAt string `json:"followup_at"`
	Note       string `json:"note,omitempty"`
}

type StageInput struct {
	Stage     string `json:"stage"`
	ActorName string `json:"actor_name"`
}

type InteractionInput struct {
	ActorName string `json:"actor_name"`
}

// SubmitLock impede gravações duplicadas do mesmo lead enquanto um envio está em voo.
// Retorna entity.ErrFollowupInFlight quando já ocupado.
type SubmitLock interface {
	Acquire(ctx context.Context, leadID string) (release func(), err error)
}

type FollowupScheduler interface {
	Execute(ctx context.Context, leadID string, input FollowupInput) (*FollowupOutput, error)
}

type FollowupRemover interface {
	Execute(ctx context.Context, leadID, actorName string) error
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
