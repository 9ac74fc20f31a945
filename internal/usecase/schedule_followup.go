package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/xavierca1/imob-crm/internal/entity"
	"github.com/xavierca1/imob-crm/internal/logger"
)

type ScheduleFollowupUseCase struct {
	Repo      entity.LeadRepositoryInterface
	Publisher entity.ChangePublisher
	Lock      SubmitLock
	Clock     clockwork.Clock
	Rules     FollowupRules
	Logger    *zap.Logger
}

func NewScheduleFollowupUseCase(
	repo entity.LeadRepositoryInterface,
	publisher entity.ChangePublisher,
	lock SubmitLock,
	clock clockwork.Clock,
	rules FollowupRules,
	log *zap.Logger,
) *ScheduleFollowupUseCase {
	return &ScheduleFollowupUseCase{
		Repo:      repo,
		Publisher: publisher,
		Lock:      lock,
		Clock:     clock,
		Rules:     rules,
		Logger:    logger.OrNop(log),
	}
}

func (uc *ScheduleFollowupUseCase) Execute(ctx context.Context, leadID string, input FollowupInput) (*FollowupOutput, error) {
	now := uc.Clock.Now()

	at, fields := ValidateFollowupInput(input, now, uc.Rules)
	if len(fields) > 0 {
		return nil, validationError(fields)
	}

	release, err := acquire(ctx, uc.Lock, leadID)
	if err != nil {
		return nil, err
	}
	defer release()

	actor := strings.TrimSpace(input.ActorName)
	if err := uc.Repo.UpdateFollowup(ctx, leadID, at, input.Note, actor); err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, &DomainError{Code: CodeLeadNotFound, Message: err.Error()}
		}
		uc.Logger.Error("falha ao salvar follow-up", zap.String("lead_id", leadID), zap.Error(err))
		return nil, persistenceError("falha ao salvar follow-up", err)
	}

	uc.Logger.Info("follow-up agendado",
		zap.String("lead_id", leadID),
		zap.Time("followup_at", at),
		zap.String("actor", actor),
	)

	publishChange(ctx, uc.Publisher, uc.Logger, entity.LeadChange{
		LeadID:     leadID,
		Kind:       entity.ChangeFollowupSet,
		ActorName:  actor,
		OccurredAt: now,
	})

	return &FollowupOutput{
		LeadID:     leadID,
		FollowupAt: formatTimestamp(at),
		Note:       input.Note,
	}, nil
}

func acquire(ctx context.Context, lock SubmitLock, leadID string) (func(), error) {
	if lock == nil {
		return func() {}, nil
	}
	release, err := lock.Acquire(ctx, leadID)
	if err != nil {
		if errors.Is(err, entity.ErrFollowupInFlight) {
			return nil, &DomainError{Code: CodeSubmitInFlight, Message: err.Error()}
		}
		return nil, &TechnicalError{Code: CodePersistence, Message: "falha ao reservar envio: " + err.Error(), Err: err}
	}
	return release, nil
}

// publishChange não falha a operação: o dado já está salvo e o próximo tick do
// quadro relê o estado de qualquer forma.
func publishChange(ctx context.Context, publisher entity.ChangePublisher, log *zap.Logger, change entity.LeadChange) {
	if publisher == nil {
		return
	}
	if change.ID == "" {
		change.ID = uuid.New().String()
	}
	if err := publisher.PublishLeadChange(ctx, change); err != nil {
		log.Warn("mudança salva, mas não publicada no feed",
			zap.String("lead_id", change.LeadID),
			zap.String("kind", string(change.Kind)),
			zap.Error(err),
		)
	}
}
