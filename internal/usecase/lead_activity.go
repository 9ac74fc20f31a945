package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/xavierca1/imob-crm/internal/entity"
	"github.com/xavierca1/imob-crm/internal/logger"
)

// RecordInteractionUseCase zera o relógio de aging do lead.
type RecordInteractionUseCase struct {
	Repo      entity.LeadRepositoryInterface
	Publisher entity.ChangePublisher
	Clock     clockwork.Clock
	Logger    *zap.Logger
}

func NewRecordInteractionUseCase(repo entity.LeadRepositoryInterface, publisher entity.ChangePublisher, clock clockwork.Clock, log *zap.Logger) *RecordInteractionUseCase {
	return &RecordInteractionUseCase{Repo: repo, Publisher: publisher, Clock: clock, Logger: logger.OrNop(log)}
}

func (uc *RecordInteractionUseCase) Execute(ctx context.Context, leadID string, input InteractionInput) error {
	now := uc.Clock.Now()
	actor := strings.TrimSpace(input.ActorName)

	if err := uc.Repo.RecordInteraction(ctx, leadID, now.UTC(), actor); err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return &DomainError{Code: CodeLeadNotFound, Message: err.Error()}
		}
		return persistenceError("falha ao registrar interação", err)
	}

	publishChange(ctx, uc.Publisher, uc.Logger, entity.LeadChange{
		LeadID:     leadID,
		Kind:       entity.ChangeInteraction,
		ActorName:  actor,
		OccurredAt: now,
	})
	return nil
}

// ChangeStageUseCase move o lead no funil; etapas fechadas congelam o aging.
type ChangeStageUseCase struct {
	Repo      entity.LeadRepositoryInterface
	Publisher entity.ChangePublisher
	Clock     clockwork.Clock
	Logger    *zap.Logger
}

func NewChangeStageUseCase(repo entity.LeadRepositoryInterface, publisher entity.ChangePublisher, clock clockwork.Clock, log *zap.Logger) *ChangeStageUseCase {
	return &ChangeStageUseCase{Repo: repo, Publisher: publisher, Clock: clock, Logger: logger.OrNop(log)}
}

func (uc *ChangeStageUseCase) Execute(ctx context.Context, leadID string, input StageInput) error {
	stage, err := entity.ParseStage(input.Stage)
	if err != nil {
		return &DomainError{
			Code:    CodeInvalidStage,
			Message: err.Error(),
			Fields:  []ValidationError{{"stage", "is invalid"}},
		}
	}
	actor := strings.TrimSpace(input.ActorName)

	if err := uc.Repo.UpdateStage(ctx, leadID, stage, actor); err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return &DomainError{Code: CodeLeadNotFound, Message: err.Error()}
		}
		return persistenceError("falha ao mudar etapa", err)
	}

	uc.Logger.Info("etapa alterada", zap.String("lead_id", leadID), zap.String("stage", string(stage)))

	publishChange(ctx, uc.Publisher, uc.Logger, entity.LeadChange{
		LeadID:     leadID,
		Kind:       entity.ChangeStage,
		Stage:      stage,
		ActorName:  actor,
		OccurredAt: uc.Clock.Now(),
	})
	return nil
}
