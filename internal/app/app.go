package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-tutor/internal/data/db"
	tutorhttp "github.com/yungbote/neurobridge-tutor/internal/http"
	"github.com/yungbote/neurobridge-tutor/internal/jobs/scheduler"
	"github.com/yungbote/neurobridge-tutor/internal/observability"
	"github.com/yungbote/neurobridge-tutor/internal/platform/envutil"
	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
	"github.com/yungbote/neurobridge-tutor/internal/services"
	"github.com/yungbote/neurobridge-tutor/internal/temporalx/temporalworker"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Clients  Clients
	Repos    services.TutorRepos
	Services Services

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// New wires the full server. The relational store is required; redis, neo4j
// and Temporal are optional.
func New() (*App, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}

	recalcDriver := "ticker"
	if envutil.String("TEMPORAL_ADDRESS", "") != "" {
		recalcDriver = "temporal"
	}
	shutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
		Attributes: append(cfg.Policy.TraceAttributes(),
			attribute.String("tutor.metrics_scheduler", recalcDriver),
		),
	})

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	clients, err := wireClients(log)
	if err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, clients, reposet)
	handlerset := wireHandlers(log, theDB, serviceset)
	middleware := wireMiddleware(log, cfg)
	router := wireRouter(log, cfg, handlerset, middleware)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		pg:           pg,
		otelShutdown: shutdown,
	}, nil
}

// Start launches background work: the Temporal worker and cron schedule when
// Temporal is configured, the in-process scheduler otherwise.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	observability.StartDBSampler(ctx, a.Log, a.DB, 15*time.Second)

	if a.Clients.Temporal != nil {
		runner, err := temporalworker.NewRunner(a.Log, a.Clients.Temporal, a.Services.Metrics)
		if err != nil {
			return err
		}
		if err := runner.Start(ctx); err != nil {
			return fmt.Errorf("start temporal worker: %w", err)
		}
		if err := runner.EnsureMetricsSchedule(ctx); err != nil {
			a.Log.Warn("Metrics cron not scheduled", "error", err)
		}
		return nil
	}
	scheduler.FromEnv(a.Log, a.Services.Metrics).Start(ctx)
	return nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("Listening", "addr", addr)
	return (&tutorhttp.Server{Engine: a.Router}).Run(ctx, addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.close()
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.otelShutdown(ctx)
		cancel()
	}
	if a.pg != nil {
		_ = a.pg.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
