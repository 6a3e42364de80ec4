package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"zenstream/internal/config"
	"zenstream/internal/db"
	"zenstream/internal/handler"
	"zenstream/internal/ledger"
	"zenstream/internal/logging"
	"zenstream/internal/platform"
	"zenstream/internal/repository"
	"zenstream/internal/router"
	"zenstream/internal/service"
	"zenstream/internal/timer"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logging: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	migrations, err := db.Migrations(cfg.MigrationsDir)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	if err := db.RunMigrations(database, migrations); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	records := repository.NewRecordRepository(database)
	settingsRepo := repository.NewSettingsRepository(records)
	progressRepo := repository.NewProgressRepository(database, records)
	intervalRepo := repository.NewIntervalRepository(database)

	zenLedger := ledger.Open(ctx, progressRepo, logger)
	defer zenLedger.Close()

	recorder := service.NewIntervalRecorder(intervalRepo, logger)
	defer recorder.Close()

	machine := timer.New(timer.Dependencies{
		Accruer:   zenLedger,
		Notifier:  platform.NewSoundPlayer(cfg.SoundEnabled, logger),
		KeepAwake: platform.NewKeepAwake(cfg.KeepAwakeEnabled, logger),
		Recorder:  recorder,
		Logger:    logger,
	})
	runner := timer.NewRunner(machine, timer.SystemClock(), cfg.TickInterval)
	// Stopping first records the cancelled interval and releases keep-awake
	// before the recorder and ledger flush.
	defer runner.Stop()

	timerService := service.NewTimerService(runner, settingsRepo, intervalRepo, logger)
	shopService := service.NewShopService(zenLedger, progressRepo)
	settingsService := service.NewSettingsService(settingsRepo, logger)

	gin.SetMode(gin.ReleaseMode)
	engine := router.New(
		handler.NewTimerHandler(timerService),
		handler.NewShopHandler(shopService),
		handler.NewSettingsHandler(settingsService),
		cfg.CORSOrigins,
		logger,
	)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		// Event streams end when the process is asked to stop.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("backend listening", "addr", server.Addr, "db", cfg.DBPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("run server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	})

	return group.Wait()
}
