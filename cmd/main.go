package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"rentListings/internal/auth"
	"rentListings/internal/browse"
	"rentListings/internal/config"
	"rentListings/internal/listings"
	"rentListings/internal/logger"
	"rentListings/internal/metrics"
	"rentListings/internal/query"
	"rentListings/internal/router"
	"rentListings/internal/storage"
	"rentListings/internal/storage/gridfs"
	"rentListings/internal/storage/memory"
	"rentListings/internal/storage/postgres"
	"rentListings/internal/storage/redis"
	"rentListings/internal/telemetry"

	"go.uber.org/zap"
)

type backends struct {
	db       storage.Database
	cache    storage.Cache
	sessions storage.SessionStore
	images   storage.ImageStore
	closers  []func(context.Context) error
}

func (b *backends) close(ctx context.Context, log *zap.Logger) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil {
			log.Warn("failed to close backend", zap.Error(err))
		}
	}
}

func openBackends(ctx context.Context, cfg *config.Config, log *zap.Logger) (*backends, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		log.Warn("using in-memory storage; data is lost on restart")
		return &backends{
			db:       memory.New(),
			sessions: memory.NewSessions(),
			images:   memory.NewImageStore(cfg.HTTP.PublicURL),
		}, nil
	}

	b := &backends{}

	db, err := postgres.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	b.db = db
	b.closers = append(b.closers, func(context.Context) error { return db.Close() })

	cache, err := redis.New(ctx, redis.Options{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		ListingTTL: cfg.Redis.ListingTTL,
	}, log)
	if err != nil {
		b.close(ctx, log)
		return nil, err
	}
	b.cache = cache
	b.sessions = cache
	b.closers = append(b.closers, func(context.Context) error { return cache.Close() })

	images, err := gridfs.New(ctx, gridfs.Options{
		URI:       cfg.Mongo.URI,
		Database:  cfg.Mongo.Database,
		Bucket:    cfg.Mongo.Bucket,
		PublicURL: cfg.HTTP.PublicURL,
	})
	if err != nil {
		b.close(ctx, log)
		return nil, err
	}
	b.images = images
	b.closers = append(b.closers, images.Close)

	return b, nil
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	shutdownTracing, err := telemetry.Setup(cfg.Telemetry, os.Stdout)
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}

	q := query.NewService(b.db, b.cache, m, log)
	handler := router.New(router.Dependencies{
		Auth: auth.NewService(b.db, b.sessions, auth.Options{
			Secret:              []byte(cfg.Auth.JWTSecret),
			Issuer:              cfg.Auth.Issuer,
			TokenTTL:            cfg.Auth.TokenTTL,
			VerificationTTL:     cfg.Auth.VerificationTTL,
			RequireConfirmation: cfg.Auth.RequireConfirmation,
			PublicURL:           cfg.HTTP.PublicURL,
		}, m, log),
		Listings:       listings.NewService(b.db, b.images, q, m, log),
		Browse:         browse.NewRegistry(q, cfg.Browse.SessionIdle),
		Images:         b.images,
		Metrics:        m,
		Log:            log,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		MaxUploadBytes: cfg.HTTP.MaxUploadMB << 20,
		SecureCookies:  strings.HasPrefix(cfg.HTTP.PublicURL, "https://"),
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.HTTP.Addr), zap.String("storage", cfg.Storage.Driver))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	b.close(shutdownCtx, log)
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("failed to flush traces", zap.Error(err))
	}

	return nil
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
