package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/imob-crm/internal/entity"
)

// MemoryLeadRepository atende o modo demo e os testes de integração dos handlers.
type MemoryLeadRepository struct {
	mu    sync.RWMutex
	leads map[string]*entity.Lead
	now   func() time.Time
}

func NewMemoryLeadRepository(now func() time.Time, leads ...*entity.Lead) *MemoryLeadRepository {
	if now == nil {
		now = time.Now
	}
	r := &MemoryLeadRepository{leads: make(map[string]*entity.Lead), now: now}
	for _, l := range leads {
		r.leads[l.ID] = cloneLead(l)
	}
	return r
}

func (r *MemoryLeadRepository) FetchLeadsForAging(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Lead, 0, len(r.leads))
	for _, l := range r.leads {
		if !matchesFilter(l, filter) {
			continue
		}
		out = append(out, cloneLead(l))
	}

	sort.Slice(out, func(i, j int) bool {
		ai, aj := out[i].AgingAnchor(), out[j].AgingAnchor()
		if !ai.Equal(aj) {
			return ai.Before(aj)
		}
		return out[i].ID < out[j].ID
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultAgingLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	return cloneLead(l), nil
}

func (r *MemoryLeadRepository) FetchOverdueFollowups(ctx context.Context, now time.Time) ([]*entity.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entity.Lead
	for _, l := range r.leads {
		if !l.HasFollowup() || l.Stage.IsClosed() || l.FollowupAt.After(now) {
			continue
		}
		out = append(out, cloneLead(l))
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].FollowupAt.Equal(*out[j].FollowupAt) {
			return out[i].FollowupAt.Before(*out[j].FollowupAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryLeadRepository) UpdateFollowup(ctx context.Context, leadID string, at time.Time, note, actorName string) error {
	return r.update(leadID, func(l *entity.Lead) error {
		t := at.UTC()
		l.FollowupAt = &t
		l.FollowupNote = note
		return nil
	})
}

func (r *MemoryLeadRepository) RemoveFollowup(ctx context.Context, leadID, actorName string) error {
	return r.update(leadID, func(l *entity.Lead) error {
		if !l.HasFollowup() {
			return entity.ErrNoFollowup
		}
		l.FollowupAt = nil
		l.FollowupNote = ""
		return nil
	})
}

func (r *MemoryLeadRepository) RecordInteraction(ctx context.Context, leadID string, at time.Time, actorName string) error {
	return r.update(leadID, func(l *entity.Lead) error {
		t := at.UTC()
		l.LastInteractionAt = &t
		return nil
	})
}

func (r *MemoryLeadRepository) UpdateStage(ctx context.Context, leadID string, stage entity.Stage, actorName string) error {
	return r.update(leadID, func(l *entity.Lead) error {
		l.Stage = stage
		return nil
	})
}

func (r *MemoryLeadRepository) update(leadID string, fn func(*entity.Lead) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.leads[leadID]
	if !ok {
		return entity.ErrLeadNotFound
	}
	if err := fn(l); err != nil {
		return err
	}
	l.UpdatedAt = r.now()
	return nil
}

func matchesFilter(l *entity.Lead, f entity.LeadFilter) bool {
	if f.OwnerName != "" && l.OwnerName != f.OwnerName {
		return false
	}
	if len(f.Stages) == 0 {
		return true
	}
	for _, s := range f.Stages {
		if s == l.Stage {
			return true
		}
	}
	return false
}

func cloneLead(l *entity.Lead) *entity.Lead {
	c := *l
	if l.LastInteractionAt != nil {
		t := *l.LastInteractionAt
		c.LastInteractionAt = &t
	}
	if l.FollowupAt != nil {
		t := *l.FollowupAt
		c.FollowupAt = &t
	}
	return &c
}

// DemoLeads monta uma carteira de exemplo cobrindo todas as faixas de urgência.
func DemoLeads(now time.Time) []*entity.Lead {
	at := func(d time.Duration) *time.Time {
		t := now.Add(d).UTC()
		return &t
	}
	day := 24 * time.Hour

	seed := []struct {
		name         string
		stage        entity.Stage
		lastContact  *time.Time
		followup     *time.Time
		followupNote string
	}{
		{"Carla Mendes", entity.StageNovo, nil, nil, ""},
		{"Rafael Souza", entity.StageEmEspera, at(-2 * day), nil, ""},
		{"Juliana Prado", entity.StageEmAtendimento, at(-10 * day), at(day), "retornar sobre a contraproposta"},
		{"Marcos Lima", entity.StageDocumentacao, at(-6 * time.Hour), at(-time.Hour), "cobrar certidões"},
		{"Beatriz Rocha", entity.StageEmAtendimento, at(-20 * day), nil, ""},
		{"Thiago Alves", entity.StageComprou, at(-45 * day), nil, ""},
		{"Fernanda Dias", entity.StageRemovido, at(-90 * day), nil, ""},
	}

	leads := make([]*entity.Lead, 0, len(seed))
	for _, s := range seed {
		leads = append(leads, &entity.Lead{
			ID:                uuid.New().String(),
			Name:              s.name,
			OwnerName:         "Corretor Demo",
			Stage:             s.stage,
			LastInteractionAt: s.lastContact,
			FollowupAt:        s.followup,
			FollowupNote:      s.followupNote,
			CreatedAt:         now.Add(-3 * day).UTC(),
			UpdatedAt:         now.UTC(),
		})
	}
	return leads
}
