package entity

import (
	"context"
	"time"
)

type ChangeKind string

const (
	ChangeFollowupSet     ChangeKind = "followup_set"
	ChangeFollowupRemoved ChangeKind = "followup_removed"
	ChangeInteraction     ChangeKind = "interaction"
	ChangeStage           ChangeKind = "stage_changed"
)

// LeadChange é o evento publicado no feed em tempo real sempre que um
// campo relevante para o aging muda.
type LeadChange struct {
	ID         string     `json:"id"`
	LeadID     string     `json:"lead_id"`
	Kind       ChangeKind `json:"kind"`
	Stage      Stage      `json:"stage,omitempty"`
	ActorName  string     `json:"actor_name,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

type ChangeFilter struct {
	LeadID string
	Kinds  []ChangeKind
}

func (f ChangeFilter) Match(c LeadChange) bool {
	if f.LeadID != "" && f.LeadID != c.LeadID {
		return false
	}
	if len(f.Kinds) == 0 {
		return true
	}
	for _, k := range f.Kinds {
		if k == c.Kind {
			return true
		}
	}
	return false
}

type ChangePublisher interface {
	PublishLeadChange(ctx context.Context, change LeadChange) error
}

// ChangeFeed entrega mudanças aos assinantes. A função retornada cancela a assinatura.
type ChangeFeed interface {
	Subscribe(filter ChangeFilter, onChange func(LeadChange)) (unsubscribe func())
}
