package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smile-share/engage/internal/api"
	"github.com/smile-share/engage/internal/app/gamify"
	"github.com/smile-share/engage/internal/app/notify"
	"github.com/smile-share/engage/internal/health"
	_ "github.com/smile-share/engage/internal/infra/metrics" // Register Prometheus metrics
	"github.com/smile-share/engage/internal/infra/sqlite"
)

// Daemon is the engage runtime. It wires together all services.
type Daemon struct {
	Config     Config
	DB         *sqlite.DB
	Engine     *gamify.Engine
	Dispatcher *notify.Dispatcher
	Server     *api.Server
	Health     *health.Checker
	cancel     context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	db, err := sqlite.Open(cfg.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	engine := gamify.NewEngineWithBase(db, gamify.BasePoints{
		Purchase: cfg.Points.Purchase,
		Donation: cfg.Points.Donation,
		Activity: cfg.Points.Activity,
	})

	dispatcher := notify.NewDispatcherWithTTLs(notify.TTLs{
		Badges:  time.Duration(cfg.Notifications.BadgeSeconds) * time.Second,
		LevelUp: time.Duration(cfg.Notifications.LevelUpSeconds) * time.Second,
		Points:  time.Duration(cfg.Notifications.PointsSeconds) * time.Second,
	})

	srv := api.NewServer(engine, dispatcher)
	srv.SetCORSOrigins(cfg.Server.CORSOrigins)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	checker := health.NewChecker(db, cfg.Storage.Dir)
	srv.SetHealth(checker)

	return &Daemon{
		Config:     cfg,
		DB:         db,
		Engine:     engine,
		Dispatcher: dispatcher,
		Server:     srv,
		Health:     checker,
	}, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.Server.Host, d.Config.Server.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	fmt.Printf("engage serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
