package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"netpay/internal/domain/audit"
	"netpay/internal/domain/auth"
	"netpay/internal/domain/ratetable"
	"netpay/internal/domain/tax"
	"netpay/internal/platform/config"
	"netpay/internal/platform/db"
	"netpay/internal/platform/logging"
	"netpay/internal/platform/metrics"
)

var log = logrus.WithField("module", "server")

const shutdownTimeout = 10 * time.Second

type App struct {
	Config config.Config
	DB     *db.Pool
	Router http.Handler
}

func Run() {
	cfg := config.Load()
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatalf("logging setup failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	if err := app.Serve(ctx); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// New connects storage when configured, loads the rate table and builds the router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{Config: cfg}

	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		app.DB = pool
		if cfg.RunMigrations {
			if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
				app.Close()
				return nil, fmt.Errorf("migrations: %w", err)
			}
		}
		if err := ratetable.NewStore(pool).EnsureDefault(ctx); err != nil {
			app.Close()
			return nil, fmt.Errorf("seed rate table: %w", err)
		}
	}

	table, err := loadRateTable(ctx, cfg, app.DB)
	if err != nil {
		app.Close()
		return nil, err
	}
	engine, err := tax.NewEngine(table)
	if err != nil {
		app.Close()
		return nil, err
	}

	clients, err := auth.ParseClients(cfg.APIClients)
	if err != nil {
		app.Close()
		return nil, err
	}

	deps := Deps{
		Config:  cfg,
		Engine:  engine,
		Clients: clients,
		Audit:   audit.Nop{},
	}
	if cfg.MetricsEnabled {
		deps.Metrics = metrics.New()
	}
	if app.DB != nil {
		pool := app.DB
		deps.RateTables = ratetable.NewStore(pool)
		deps.Ready = pool.Ping
		if cfg.AuditEnabled {
			service := audit.New(pool)
			deps.Audit = service
			deps.AuditStore = service
		}
	}
	app.Router = NewRouter(deps)

	log.WithFields(logrus.Fields{
		"rateTableYear":   table.Year,
		"rateTableSource": cfg.RateTableSource,
		"database":        app.DB != nil,
		"clients":         len(clients),
	}).Info("netpay configured")
	return app, nil
}

func loadRateTable(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) (*ratetable.Table, error) {
	switch cfg.RateTableSource {
	case config.RateTableFile:
		return ratetable.LoadFile(cfg.RateTablePath)
	case config.RateTableDatabase:
		if pool == nil {
			return nil, errors.New("database rate table source needs DATABASE_URL")
		}
		return ratetable.NewStore(pool).Load(ctx, cfg.RateTableYear)
	default:
		return ratetable.Default()
	}
}

// Serve listens until ctx is cancelled and then drains in-flight requests.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("netpay listening on %s", a.Config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
