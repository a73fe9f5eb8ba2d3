package app

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/survey-backend/internal/data/docstore"
	apphttp "github.com/yungbote/survey-backend/internal/http"
	"github.com/yungbote/survey-backend/internal/observability"
	"github.com/yungbote/survey-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Medium   docstore.Medium
	Clients  Clients
	Services Services
	Metrics  *observability.Metrics
	Server   *apphttp.Server
	Router   *gin.Engine

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
	closeOnce    sync.Once
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.LogMode != logMode {
		if l, lerr := logger.New(cfg.LogMode); lerr == nil {
			log.Sync()
			log = l
		}
	}
	if cfg.LogMode == "production" || cfg.LogMode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)
	metrics := observability.NewMetrics(cfg.Metrics.Enabled)

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	medium, err := resolveMedium(log, cfg, clients.Redis)
	if err != nil {
		closeClients(clients, "")
		log.Sync()
		return nil, err
	}

	serviceset, err := wireServices(ctx, log, medium, clients, metrics)
	if err != nil {
		_ = medium.Close()
		closeClients(clients, cfg.Survey.Medium)
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, cfg, serviceset)
	server := wireServer(log, cfg, handlerset, metrics)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Medium:       medium,
		Clients:      clients,
		Services:     serviceset,
		Metrics:      metrics,
		Server:       server,
		Router:       server.Engine,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background listeners. Safe to call more than once.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Cfg.Metrics.Addr != "" {
		a.Metrics.StartServer(ctx, a.Log, a.Cfg.Metrics.Addr)
	}
}

func (a *App) Run(addr string) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Server listening", "addr", addr, "medium", a.Medium.Describe())
	return a.Server.Run(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return nil
	}
	return a.Server.Shutdown(ctx)
}

// Close releases everything New opened. Later calls are no-ops.
func (a *App) Close() {
	if a == nil {
		return
	}
	a.closeOnce.Do(a.close)
}

func (a *App) close() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Services.Survey != nil {
		a.Services.Survey.Close()
	}
	if a.Medium != nil {
		if err := a.Medium.Close(); err != nil {
			a.Log.Warn("Closing survey medium failed", "error", err)
		}
	}
	closeClients(a.Clients, a.Cfg.Survey.Medium)
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

// closeClients closes the event bus, then the redis client unless the
// medium is redis, which owns the client and closes it itself.
func closeClients(c Clients, medium Medium) {
	if c.Events != nil {
		_ = c.Events.Close()
	}
	if c.Redis != nil && medium != MediumRedis {
		_ = c.Redis.Close()
	}
}
