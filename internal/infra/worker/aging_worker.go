package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/xavierca1/imob-crm/internal/aging"
	"github.com/xavierca1/imob-crm/internal/entity"
	"github.com/xavierca1/imob-crm/internal/infra/http/middleware"
	"github.com/xavierca1/imob-crm/internal/logger"
	"github.com/xavierca1/imob-crm/internal/usecase"
)

var metricTiers = []string{
	string(aging.TierClosed),
	string(aging.TierRecent),
	string(aging.TierAttention),
	string(aging.TierUrgent),
	string(aging.TierCritical),
}

type ReminderSender interface {
	SendFollowupReminder(lead *entity.Lead, dueText string) error
}

// Notifier associa um canal (email, whatsapp) ao sender usado nas métricas.
type Notifier struct {
	Channel string
	Sender  ReminderSender
}

// AgingWorker recalcula o board periodicamente e avisa o corretor quando um
// follow-up vence.
type AgingWorker struct {
	repo      entity.LeadRepositoryInterface
	feed      entity.ChangeFeed
	clock     clockwork.Clock
	interval  time.Duration
	lookback  time.Duration
	formatter aging.Formatter
	notifiers []Notifier
	log       *zap.Logger

	refresh chan struct{}

	mu       sync.RWMutex
	snapshot *usecase.BoardOutput
	reminded map[string]time.Time
}

type Options struct {
	Interval  time.Duration
	Lookback  time.Duration
	Formatter aging.Formatter
}

func NewAgingWorker(repo entity.LeadRepositoryInterface, feed entity.ChangeFeed, clock clockwork.Clock, opts Options, log *zap.Logger, notifiers ...Notifier) *AgingWorker {
	if opts.Interval <= 0 {
		opts.Interval = aging.DefaultRefreshInterval
	}
	return &AgingWorker{
		repo:      repo,
		feed:      feed,
		clock:     clock,
		interval:  opts.Interval,
		lookback:  opts.Lookback,
		formatter: opts.Formatter,
		notifiers: notifiers,
		log:       logger.OrNop(log),
		refresh:   make(chan struct{}, 1),
		reminded:  make(map[string]time.Time),
	}
}

func (w *AgingWorker) Start(ctx context.Context) {
	w.log.Info("aging worker iniciado", zap.Duration("interval", w.interval), zap.Int("notifiers", len(w.notifiers)))

	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()

	if w.feed != nil {
		unsubscribe := w.feed.Subscribe(entity.ChangeFilter{}, func(entity.LeadChange) {
			select {
			case w.refresh <- struct{}{}:
			default:
			}
		})
		defer unsubscribe()
	}

	w.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("aging worker encerrado")
			return
		case <-ticker.Chan():
			w.Tick(ctx)
		case <-w.refresh:
			w.Tick(ctx)
		}
	}
}

// Tick faz uma passada completa: board, métricas e lembretes.
func (w *AgingWorker) Tick(ctx context.Context) {
	leads, err := w.repo.FetchLeadsForAging(ctx, entity.LeadFilter{})
	if err != nil {
		w.log.Error("erro ao buscar leads para aging", zap.Error(err))
		return
	}

	now := w.clock.Now()
	board := usecase.BuildBoard(leads, now, w.formatter)

	counts := make(map[string]int, len(board.Counts))
	for tier, n := range board.Counts {
		counts[string(tier)] = n
	}
	middleware.SetTierCounts(counts, metricTiers, board.Overdue)

	w.mu.Lock()
	w.snapshot = board
	w.mu.Unlock()

	// o board é limitado; os vencidos vêm de uma consulta própria, sem limite
	overdue, err := w.repo.FetchOverdueFollowups(ctx, now)
	if err != nil {
		w.log.Error("erro ao buscar follow-ups vencidos", zap.Error(err))
		return
	}
	w.remindOverdue(overdue, now)
}

func (w *AgingWorker) Snapshot() *usecase.BoardOutput {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.snapshot
}

func (w *AgingWorker) remindOverdue(leads []*entity.Lead, now time.Time) {
	for _, lead := range w.pendingReminders(leads, now) {
		w.notify(lead, w.formatter.Format(*lead.FollowupAt))
	}
}

// pendingReminders marca como avisados os follow-ups que venceram desde a
// última passada e devolve os que ainda estão dentro do lookback.
func (w *AgingWorker) pendingReminders(leads []*entity.Lead, now time.Time) []*entity.Lead {
	w.mu.Lock()
	defer w.mu.Unlock()

	var pending []*entity.Lead
	seen := make(map[string]struct{}, len(leads))
	for _, lead := range leads {
		if !lead.HasFollowup() || lead.Stage.IsClosed() {
			continue
		}
		due := *lead.FollowupAt
		seen[lead.ID] = struct{}{}

		if !now.After(due) {
			continue
		}
		if prev, ok := w.reminded[lead.ID]; ok && prev.Equal(due) {
			continue
		}
		w.reminded[lead.ID] = due

		// vencidos há mais tempo que o lookback (ex.: no boot) não geram aviso
		if w.lookback > 0 && now.Sub(due) > w.lookback {
			continue
		}
		pending = append(pending, lead)
	}

	for id := range w.reminded {
		if _, ok := seen[id]; !ok {
			delete(w.reminded, id)
		}
	}
	return pending
}

func (w *AgingWorker) notify(lead *entity.Lead, dueText string) {
	for _, n := range w.notifiers {
		err := n.Sender.SendFollowupReminder(lead, dueText)
		middleware.RecordReminder(n.Channel, reminderStatus(err))
		if errors.Is(err, entity.ErrNoRecipient) {
			w.log.Debug("lembrete de follow-up ignorado: responsável sem contato",
				zap.String("channel", n.Channel),
				zap.String("lead_id", lead.ID))
			continue
		}
		if err != nil {
			w.log.Warn("falha ao enviar lembrete de follow-up",
				zap.String("channel", n.Channel),
				zap.String("lead_id", lead.ID),
				zap.Error(err))
			continue
		}
		w.log.Info("lembrete de follow-up enviado",
			zap.String("channel", n.Channel),
			zap.String("lead_id", lead.ID),
			zap.String("owner", lead.OwnerName))
	}
}

func reminderStatus(err error) string {
	switch {
	case err == nil:
		return middleware.ReminderSent
	case errors.Is(err, entity.ErrNoRecipient):
		return middleware.ReminderSkipped
	default:
		return middleware.ReminderFailed
	}
}
