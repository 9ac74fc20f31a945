package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/xavierca1/imob-crm/internal/aging"
	"github.com/xavierca1/imob-crm/internal/entity"
)

type BoardOutput struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Cards       []aging.Card       `json:"cards"`
	Counts      map[aging.Tier]int `json:"counts"`
	Overdue     int                `json:"overdue"`
}

type BoardUseCase struct {
	Repo      entity.LeadRepositoryInterface
	Clock     clockwork.Clock
	Formatter aging.Formatter
}

func NewBoardUseCase(repo entity.LeadRepositoryInterface, clock clockwork.Clock, formatter aging.Formatter) *BoardUseCase {
	return &BoardUseCase{Repo: repo, Clock: clock, Formatter: formatter}
}

// Execute devolve os cartões do mais urgente para o menos urgente.
func (uc *BoardUseCase) Execute(ctx context.Context, filter entity.LeadFilter) (*BoardOutput, error) {
	leads, err := uc.Repo.FetchLeadsForAging(ctx, filter)
	if err != nil {
		return nil, persistenceError("falha ao buscar leads", err)
	}
	return BuildBoard(leads, uc.Clock.Now(), uc.Formatter), nil
}

func (uc *BoardUseCase) ExecuteLead(ctx context.Context, leadID string) (*aging.Card, error) {
	lead, err := uc.Repo.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, &DomainError{Code: CodeLeadNotFound, Message: err.Error()}
		}
		return nil, persistenceError("falha ao buscar lead", err)
	}
	card := aging.Render(lead, aging.ComputeLead(lead, uc.Clock), uc.Formatter)
	return &card, nil
}

func BuildBoard(leads []*entity.Lead, now time.Time, formatter aging.Formatter) *BoardOutput {
	out := &BoardOutput{
		GeneratedAt: now.UTC(),
		Cards:       make([]aging.Card, 0, len(leads)),
		Counts:      make(map[aging.Tier]int),
	}

	for _, lead := range leads {
		res := aging.Compute(aging.Input{
			LastInteractionAt: lead.AgingAnchor(),
			FollowupAt:        lead.FollowupAt,
			Stage:             lead.Stage,
		}, now)
		out.Cards = append(out.Cards, aging.Render(lead, res, formatter))
		out.Counts[res.Tier]++
		if res.IsOverdue {
			out.Overdue++
		}
	}

	sort.SliceStable(out.Cards, func(i, j int) bool {
		a, b := out.Cards[i], out.Cards[j]
		if a.IsOverdue != b.IsOverdue {
			return a.IsOverdue
		}
		if a.FillWidth != b.FillWidth {
			return a.FillWidth > b.FillWidth
		}
		return a.DaysDiff > b.DaysDiff
	})

	return out
}
