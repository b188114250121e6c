package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/vncsmyrnk/governance/internal/adapters/auth/jwt"
	"github.com/vncsmyrnk/governance/internal/adapters/handler/http"
	"github.com/vncsmyrnk/governance/internal/adapters/metrics"
	"github.com/vncsmyrnk/governance/internal/adapters/notify"
	"github.com/vncsmyrnk/governance/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/governance/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/governance/internal/adapters/repository/sqlite"
	"github.com/vncsmyrnk/governance/internal/config"
	"github.com/vncsmyrnk/governance/internal/core/domain"
	"github.com/vncsmyrnk/governance/internal/core/ports"
	"github.com/vncsmyrnk/governance/internal/core/services"
)

// @title        Governance ledger API
// @version      1.0
// @description  Owner-curated proposals with one vote per account.
// @BasePath     /
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsPublisher, err := metrics.NewPublisher(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	publisher := notify.Fanout{notify.NewLogPublisher(logger), metricsPublisher}
	ledgerService := services.NewLedgerService(repo, publisher, logger)
	owner, err := ledgerService.Initialize(ctx, domain.AccountID(cfg.Owner))
	if err != nil {
		return fmt.Errorf("failed to initialize ledger: %w", err)
	}

	authority, err := jwt.NewAuthority(cfg.JWTSecret)
	if err != nil {
		return err
	}

	handler := http.NewHandler(http.Routes{
		Ledger:    http.NewLedgerHandler(ledgerService),
		Proposals: http.NewProposalHandler(ledgerService),
		Votes:     http.NewVoteHandler(ledgerService),
		Verifier:  authority,
		Metrics:   metrics.Handler(reg),
	})
	server := &stdhttp.Server{Addr: cfg.HTTPAddr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr, "driver", cfg.StorageDriver, "owner", owner)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	logger.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func openRepository(ctx context.Context, cfg config.Config) (ports.LedgerRepository, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		db, err := sql.Open("postgres", cfg.Postgres.ConnString())
		if err != nil {
			return nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to reach postgres: %w", err)
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewLedgerRepository(db), func() { db.Close() }, nil
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	default:
		return memory.NewStore(), func() {}, nil
	}
}
