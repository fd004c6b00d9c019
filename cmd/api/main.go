package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/georgemunganga/printa-catalog/internal/config"
	"github.com/georgemunganga/printa-catalog/internal/database"
	"github.com/georgemunganga/printa-catalog/internal/events"
	"github.com/georgemunganga/printa-catalog/internal/httpx"
	"github.com/georgemunganga/printa-catalog/internal/logging"
	"github.com/georgemunganga/printa-catalog/internal/modules/catalog"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Database ────────────────────────────────────────────
	db, dialect, err := database.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, dialect); err != nil {
		log.Fatal(err)
	}
	logger.Info("connected to database", "driver", dialect)

	// ── Events ──────────────────────────────────────────────
	var publisher events.Publisher = events.Nop{}
	var kafkaPublisher *events.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, 1024, logger)
		kafkaPublisher.Start(ctx)
		publisher = kafkaPublisher
		logger.Info("publishing catalog events", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	// ── Router ──────────────────────────────────────────────
	router := httpx.NewRouter(db, cfg.RequestTimeout)

	catalogRepo := catalog.NewSQLRepository(db, dialect)
	catalogService := catalog.NewService(catalogRepo, publisher, cfg.ServiceName, logger)
	catalog.NewHandler(catalogService, logger).RegisterRoutes(router)

	// ── Start Server ─────────────────────────────────────────
	srv := &http.Server{Addr: cfg.Addr(), Handler: router}
	go func() {
		logger.Info("catalog API server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Shutdown(shutdownCtx); err != nil {
			logger.Error("event publisher shutdown", "error", err)
		}
	}
}
