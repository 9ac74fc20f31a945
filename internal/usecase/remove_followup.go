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

type RemoveFollowupUseCase struct {
	Repo      entity.LeadRepositoryInterface
	Publisher entity.ChangePublisher
	Lock      SubmitLock
	Clock     clockwork.Clock
	Logger    *zap.Logger
}

func NewRemoveFollowupUseCase(
	repo entity.LeadRepositoryInterface,
	publisher entity.ChangePublisher,
	lock SubmitLock,
	clock clockwork.Clock,
	log *zap.Logger,
) *RemoveFollowupUseCase {
	return &RemoveFollowupUseCase{
		Repo:      repo,
		Publisher: publisher,
		Lock:      lock,
		Clock:     clock,
		Logger:    logger.OrNop(log),
	}
}

// Execute limpa data e nota do follow-up numa única chamada ao repositório.
// A checagem de existência roda sob o lock do lead.
func (uc *RemoveFollowupUseCase) Execute(ctx context.Context, leadID, actorName string) error {
	release, err := acquire(ctx, uc.Lock, leadID)
	if err != nil {
		return err
	}
	defer release()

	lead, err := uc.Repo.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return &DomainError{Code: CodeLeadNotFound, Message: err.Error()}
		}
		return persistenceError("falha ao buscar lead", err)
	}
	if !lead.HasFollowup() {
		return &DomainError{Code: CodeFollowupNotFound, Message: entity.ErrNoFollowup.Error()}
	}

	actor := strings.TrimSpace(actorName)
	if err := uc.Repo.RemoveFollowup(ctx, leadID, actor); err != nil {
		if errors.Is(err, entity.ErrNoFollowup) {
			return &DomainError{Code: CodeFollowupNotFound, Message: err.Error()}
		}
		uc.Logger.Error("falha ao remover follow-up", zap.String("lead_id", leadID), zap.Error(err))
		return persistenceError("falha ao remover follow-up", err)
	}

	uc.Logger.Info("follow-up removido", zap.String("lead_id", leadID), zap.String("actor", actor))

	publishChange(ctx, uc.Publisher, uc.Logger, entity.LeadChange{
		LeadID:     leadID,
		Kind:       entity.ChangeFollowupRemoved,
		ActorName:  actor,
		OccurredAt: uc.Clock.Now(),
	})
	return nil
}
