package main

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	amqp "github.com/rabbitmq/amqp091-go"
	goRedis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xavierca1/imob-crm/internal/aging"
	"github.com/xavierca1/imob-crm/internal/config"
	"github.com/xavierca1/imob-crm/internal/entity"
	"github.com/xavierca1/imob-crm/internal/infra/cache"
	"github.com/xavierca1/imob-crm/internal/infra/database"
	"github.com/xavierca1/imob-crm/internal/infra/http/handlers"
	"github.com/xavierca1/imob-crm/internal/infra/integration/whatsapp"
	"github.com/xavierca1/imob-crm/internal/infra/mail"
	"github.com/xavierca1/imob-crm/internal/infra/queue"
	"github.com/xavierca1/imob-crm/internal/infra/worker"
	"github.com/xavierca1/imob-crm/internal/logger"
	"github.com/xavierca1/imob-crm/internal/usecase"
)

// infra agrupa o que muda entre os modos live e demo.
type infra struct {
	repo      entity.LeadRepositoryInterface
	publisher entity.ChangePublisher
	feed      entity.ChangeFeed
	lock      usecase.SubmitLock

	db       *sql.DB
	rabbitMQ *amqp.Connection
	redis    *goRedis.Client
	closers  []func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Config{Level: cfg.Logger.Level, Encoding: cfg.Logger.Encoding})
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()

	// 1. Infra (banco, fila, cache) conforme o modo
	var deps *infra
	if cfg.Mode.IsDemo() {
		deps = demoInfra(clock, log)
	} else {
		deps, err = liveInfra(cfg, log)
		if err != nil {
			log.Fatal("falha ao iniciar infraestrutura", zap.Error(err))
		}
	}
	defer func() {
		for i := len(deps.closers) - 1; i >= 0; i-- {
			deps.closers[i]()
		}
	}()

	formatter := aging.NewFormatter(cfg.Aging.Location())
	rules := usecase.FollowupRules{MaxDays: cfg.Aging.FollowupMaxDays, Location: cfg.Aging.Location()}

	// 2. UseCases
	boardUC := usecase.NewBoardUseCase(deps.repo, clock, formatter)
	scheduleUC := usecase.NewScheduleFollowupUseCase(deps.repo, deps.publisher, deps.lock, clock, rules, log)
	removeUC := usecase.NewRemoveFollowupUseCase(deps.repo, deps.publisher, deps.lock, clock, log)
	interactionUC := usecase.NewRecordInteractionUseCase(deps.repo, deps.publisher, clock, log)
	stageUC := usecase.NewChangeStageUseCase(deps.repo, deps.publisher, clock, log)
	watchUC := usecase.NewWatchLeadUseCase(deps.repo, deps.feed, clock, formatter, cfg.Aging.RefreshInterval, log)

	// 3. Worker de aging e lembretes
	var notifiers []worker.Notifier
	if cfg.Mail.Enabled() {
		notifiers = append(notifiers, worker.Notifier{
			Channel: "email",
			Sender:  mail.NewEmailSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.From),
		})
	}
	if cfg.WhatsApp.Enabled() {
		notifiers = append(notifiers, worker.Notifier{
			Channel: "whatsapp",
			Sender:  whatsapp.NewClient(cfg.WhatsApp, log),
		})
	}

	agingWorker := worker.NewAgingWorker(deps.repo, deps.feed, clock, worker.Options{
		Interval:  cfg.Aging.RefreshInterval,
		Lookback:  cfg.Aging.ReminderLookback,
		Formatter: formatter,
	}, log, notifiers...)
	go agingWorker.Start(ctx)

	// 4. Handlers e router
	limiter := handlers.NewRateLimiter(cfg.HTTP.WriteRateLimit, time.Minute)
	go limiter.Cleanup(ctx.Done())

	router := handlers.NewRouter(handlers.Routes{
		Health:         handlers.NewHealthHandler(string(cfg.Mode), deps.db, deps.rabbitMQ, deps.redis),
		Board:          handlers.NewBoardHandler(boardUC, watchUC, agingWorker.Snapshot),
		Followup:       handlers.NewFollowupHandler(scheduleUC, removeUC, log),
		Lead:           handlers.NewLeadHandler(interactionUC, stageUC),
		WriteLimiter:   limiter,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// streams SSE terminam junto com o processo
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Info("servidor imob-crm rodando", zap.String("port", cfg.HTTP.Port), zap.String("mode", string(cfg.Mode)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("erro no servidor http", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("desligando servidor")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("erro ao desligar servidor", zap.Error(err))
	}
}

func demoInfra(clock clockwork.Clock, log *zap.Logger) *infra {
	log.Warn("modo demo: dados em memória, nada é persistido")

	repo := database.NewMemoryLeadRepository(clock.Now, database.DemoLeads(clock.Now())...)
	feed := queue.NewMemoryFeed()
	return &infra{
		repo:      repo,
		publisher: feed,
		feed:      feed,
		lock:      cache.NewMemorySubmitLock(),
	}
}

func liveInfra(cfg *config.Config, log *zap.Logger) (*infra, error) {
	deps := &infra{}

	db, err := database.NewDBConnection(cfg.Database)
	if err != nil {
		return nil, err
	}
	deps.db = db
	deps.closers = append(deps.closers, func() { db.Close() })

	if cfg.Migrations.Enabled {
		if err := database.RunMigrations(db, log); err != nil {
			return nil, err
		}
	}
	deps.repo = database.NewLeadRepository(db)

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}
	deps.rabbitMQ = rabbitMQ.Conn
	deps.closers = append(deps.closers, rabbitMQ.Close)
	deps.publisher = queue.NewChangeProducer(rabbitMQ.Ch)
	deps.feed = queue.NewRabbitFeed(rabbitMQ.Conn, log)

	rdb, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		// sem Redis o lock cai para memória: protege só esta instância
		log.Warn("redis indisponível, usando lock em memória", zap.Error(err))
		deps.lock = cache.NewMemorySubmitLock()
	} else {
		deps.redis = rdb
		deps.closers = append(deps.closers, func() { rdb.Close() })
		deps.lock = cache.NewRedisSubmitLock(rdb, cfg.Redis.SubmitTTL, log)
	}

	return deps, nil
}
