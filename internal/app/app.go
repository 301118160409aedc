package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/ops-accountability/internal/clients/redis"
	"github.com/yungbote/ops-accountability/internal/data/db"
	repos "github.com/yungbote/ops-accountability/internal/data/repos/enforcement"
	"github.com/yungbote/ops-accountability/internal/modules/enforcement/carryforward"
	"github.com/yungbote/ops-accountability/internal/modules/enforcement/ladder"
	"github.com/yungbote/ops-accountability/internal/modules/enforcement/lifecycle"
	"github.com/yungbote/ops-accountability/internal/modules/enforcement/scoring"
	"github.com/yungbote/ops-accountability/internal/observability"
	"github.com/yungbote/ops-accountability/internal/pkg/logger"
	"github.com/yungbote/ops-accountability/internal/services"
)

type App struct {
	Log     *logger.Logger
	Cfg     Config
	DB      *gorm.DB
	Repos   repos.Repos
	Metrics *observability.Metrics
	Service services.EnforcementService

	store       *db.PostgresService
	broadcaster *redis.Broadcaster
	shutdown    func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	store, err := db.NewPostgresService(log, cfg.DBOptions())
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init store: %w", err)
	}
	if cfg.AutoMigrate {
		if err := store.AutoMigrateAll(); err != nil {
			_ = store.Close()
			log.Sync()
			return nil, err
		}
	}

	a := &App{
		Log:      log,
		Cfg:      cfg,
		DB:       store.DB(),
		Metrics:  observability.NewMetrics(),
		store:    store,
		shutdown: observability.InitOTel(ctx, log, observability.ConfigFromEnv(cfg.ServiceName)),
	}
	a.Repos = repos.NewRepos(a.DB, log)

	notifier := a.wireNotifier()
	svc, err := wireService(cfg, log, a.Repos, notifier, a.Metrics)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Service = svc
	return a, nil
}

// wireNotifier prefers Redis pub/sub and falls back to logging notifications.
func (a *App) wireNotifier() carryforward.Notifier {
	if a.Cfg.RedisAddr == "" {
		a.Log.Warn("REDIS_ADDR not set; notifications will only be logged")
		return redis.LogNotifier{Log: a.Log}
	}
	b, err := redis.NewBroadcaster(a.Log, redis.Options{Addr: a.Cfg.RedisAddr, Channel: a.Cfg.NotifyChannel})
	if err != nil {
		a.Log.Warn("Redis unavailable; notifications will only be logged", "error", err)
		return redis.LogNotifier{Log: a.Log}
	}
	a.broadcaster = b
	return b
}

func wireService(cfg Config, log *logger.Logger, r repos.Repos, notifier carryforward.Notifier, metrics *observability.Metrics) (services.EnforcementService, error) {
	log.Info("Wiring enforcement engine...")
	machine := lifecycle.NewMachine(r, log)
	return services.NewEnforcementService(services.EnforcementDeps{
		Repos:   r,
		Machine: machine,
		Ladder: ladder.New(ladder.Deps{
			Repos:       r,
			Machine:     machine,
			Log:         log,
			Concurrency: cfg.LadderConcurrency,
		}),
		Scoring: scoring.New(scoring.Deps{
			Repos:       r,
			Bounds:      scoring.NewBoundsCache(r.Settings, cfg.BoundsCacheTTL),
			Log:         log,
			Concurrency: cfg.ScoringConcurrency,
		}),
		CarryForward: carryforward.New(carryforward.Deps{
			Repos:         r,
			Notifier:      notifier,
			Log:           log,
			Concurrency:   cfg.CarryConcurrency,
			NotifyTimeout: cfg.NotifyTimeout,
		}),
		Metrics:      metrics,
		Log:          log,
		StoreTimeout: cfg.StoreTimeout,
	})
}

// Ping checks store connectivity for readiness probes.
func (a *App) Ping(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.shutdown != nil {
		_ = a.shutdown(context.Background())
	}
	if a.broadcaster != nil {
		_ = a.broadcaster.Close()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
