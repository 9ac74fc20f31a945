package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/xavierca1/imob-crm/internal/aging"
	"github.com/xavierca1/imob-crm/internal/entity"
	"github.com/xavierca1/imob-crm/internal/logger"
)

// WatchLeadUseCase mantém o cartão de um lead atualizado enquanto a tela está
// aberta: recalcula a cada Interval e também quando o feed avisa uma mudança.
type WatchLeadUseCase struct {
	Repo      entity.LeadRepositoryInterface
	Feed      entity.ChangeFeed
	Clock     clockwork.Clock
	Formatter aging.Formatter
	Interval  time.Duration
	Logger    *zap.Logger
}

func NewWatchLeadUseCase(repo entity.LeadRepositoryInterface, feed entity.ChangeFeed, clock clockwork.Clock, formatter aging.Formatter, interval time.Duration, log *zap.Logger) *WatchLeadUseCase {
	return &WatchLeadUseCase{
		Repo:      repo,
		Feed:      feed,
		Clock:     clock,
		Formatter: formatter,
		Interval:  interval,
		Logger:    logger.OrNop(log),
	}
}

// Execute bloqueia até ctx ser cancelado. Só devolve erro se o lead não puder
// ser carregado antes do primeiro cartão; onRender nunca é chamado em paralelo
// nem depois do retorno.
func (uc *WatchLeadUseCase) Execute(ctx context.Context, leadID string, onRender func(aging.Card)) error {
	lead, err := uc.Repo.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return &DomainError{Code: CodeLeadNotFound, Message: err.Error()}
		}
		return persistenceError("falha ao buscar lead", err)
	}

	var (
		leadMu  sync.Mutex
		current = lead
		emitMu  sync.Mutex
	)
	source := func() *entity.Lead {
		leadMu.Lock()
		defer leadMu.Unlock()
		return current
	}
	emit := func(card aging.Card) {
		emitMu.Lock()
		defer emitMu.Unlock()
		if ctx.Err() == nil {
			onRender(card)
		}
	}

	if uc.Feed != nil {
		unsubscribe := uc.Feed.Subscribe(entity.ChangeFilter{LeadID: leadID}, func(entity.LeadChange) {
			fresh, err := uc.Repo.FindByID(ctx, leadID)
			if err != nil {
				uc.Logger.Warn("falha ao recarregar lead do feed", zap.String("lead_id", leadID), zap.Error(err))
				return
			}
			leadMu.Lock()
			current = fresh
			leadMu.Unlock()
			emit(aging.Render(fresh, aging.ComputeLead(fresh, uc.Clock), uc.Formatter))
		})
		defer unsubscribe()
	}

	aging.Watch(ctx, uc.Clock, uc.Interval, uc.Formatter, source, emit)

	// espera um emit em andamento terminar antes de devolver o controle
	emitMu.Lock()
	emitMu.Unlock()
	return nil
}
