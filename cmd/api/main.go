package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"photo-wall/internal/adapters/eventbroker/nats"
	"photo-wall/internal/adapters/handlers/http/chi"
	"photo-wall/internal/adapters/handlers/http/chi/v1/gallery"
	"photo-wall/internal/adapters/handlers/http/chi/v1/upload"
	"photo-wall/internal/adapters/ratelimit/memory"
	"photo-wall/internal/adapters/repository/postgres"
	"photo-wall/internal/adapters/storage/minio"
	"photo-wall/internal/config"
	"photo-wall/internal/core/port"
	"photo-wall/internal/core/service/cleanup"
	galleryservice "photo-wall/internal/core/service/gallery"
	uploadservice "photo-wall/internal/core/service/upload"
	"sync"
	"syscall"
	"time"

	_ "github.com/lib/pq"
)

func main() {

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	//storage
	minioAdapter, err := minio.NewAdapter(ctx, cfg.Minio, logger)
	if err != nil {
		logger.Error("failed to init minio", "error", err)
		os.Exit(1)
	}

	//rate limiting
	var limiter port.RateLimiter
	switch cfg.RateLimit.Store {
	case config.RateLimitStorePostgres:
		db, err := initDB(cfg.Database)
		if err != nil {
			logger.Error("failed to init database", "error", err)
			os.Exit(1)
		}
		defer func(db *sql.DB) {
			if err := db.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
		}(db)
		logger.Info("db connection established")
		limiter = postgres.NewSQLRateLimiter(db, cfg.RateLimit.Points, cfg.RateLimit.Window(), logger)
	default:
		limiter = memory.NewLimiter(cfg.RateLimit.Points, cfg.RateLimit.Window())
	}
	logger.Info("rate limiter initialized", "store", cfg.RateLimit.Store, "points", cfg.RateLimit.Points, "window", cfg.RateLimit.Window())

	//events
	var publisher port.EventPublisher
	if cfg.NATS.URL != "" {
		natsPublisher, err := nats.NewNATSPublisher(ctx, cfg.NATS, logger)
		if err != nil {
			logger.Error("failed to init NATS publisher", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := natsPublisher.Close(); err != nil {
				logger.Error("failed to close NATS publisher", "error", err)
			}
		}()
		publisher = natsPublisher
		logger.Info("NATS publisher initialized", "subject", cfg.NATS.Subject)
	} else {
		logger.Info("NATS_URL not set, upload events disabled")
	}

	uploadService := uploadservice.NewUploadService(minioAdapter, publisher, cfg.Upload, logger)
	galleryService := galleryservice.NewGalleryService(minioAdapter, logger)
	cleanupService := cleanup.NewCleanupService(minioAdapter, logger)

	//http
	uploadHandler := upload.NewUploadHandlerV1(uploadService, upload.NewDecoder(cfg.Upload), logger)
	galleryHandler := gallery.NewGalleryHandlerV1(galleryService, logger)

	router := chi.NewRouter(logger, limiter, uploadHandler, galleryHandler, cfg.Env.Env, cfg.Server.RequestTimeout)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port)
		servErr := server.ListenAndServe()
		if servErr != nil && !errors.Is(servErr, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", servErr)
			stop()
		}
	}()

	// init cleanup task
	wg.Add(1)
	go func() {
		defer wg.Done()
		initCleanupTask(ctx, cleanupService, cfg.Upload.CleanupEvery, cfg.Upload.StaleAfter, logger)
	}()

	//wait for context cancel
	<-ctx.Done()
	logger.Info("gracefully shutting down app")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.RequestTimeout+5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	} else {
		logger.Info("server gracefully shutdown complete")
	}

	wg.Wait()
	logger.Info("app shutdown complete")

}

func initDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenCons)
	db.SetMaxIdleConns(cfg.MaxIdleCons)
	db.SetConnMaxLifetime(cfg.ConMaxLifeTime)

	return db, nil
}

func initCleanupTask(ctx context.Context, service port.CleanupService, every time.Duration, staleAfter time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	logger.Info("cleanup task initialized", "interval", every, "staleAfter", staleAfter)

	for {
		select {
		case <-ticker.C:
			logger.Info("cleanup task starting")
			_, err := service.AbortStaleUploads(ctx, time.Now().Add(-staleAfter))
			if err != nil {
				logger.Error("failed to abort stale uploads", "error", err)
			} else {
				logger.Info("cleanup task completed successfully")
			}
		case <-ctx.Done():
			logger.Info("cleanup task stopped")
			return
		}
	}

}
