package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop-chatbot/internal/chatbot"
	"shop-chatbot/internal/common/config"
	"shop-chatbot/internal/common/database"
	"shop-chatbot/internal/common/logger"
	"shop-chatbot/internal/common/observability"
	"shop-chatbot/internal/server"
	"shop-chatbot/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting chatbot api", map[string]interface{}{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		log.Error("failed to create postgres client", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer pg.Close()

	if err := retryWithBackoff(log, "postgres", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return pg.Ping(ctx)
	}); err != nil {
		log.Error("postgres unreachable", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		log.Error("failed to create redis client", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer rdb.Close()

	if err := retryWithBackoff(log, "redis", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return rdb.Ping(ctx)
	}); err != nil {
		// The catalog cache degrades gracefully, so a missing Redis is
		// a warning rather than a startup failure.
		log.Warn("redis unreachable, catalog caching disabled", map[string]interface{}{"error": err.Error()})
		rdb = nil
	}

	var tracing *observability.Tracing
	if cfg.Tracing.Enabled {
		tracing, err = observability.New(cfg.App.Name, cfg.Tracing.JaegerURL, cfg.Tracing.SampleRatio)
		if err != nil {
			log.Error("failed to init tracing", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
		defer tracing.Shutdown()
	}

	executor := store.NewSQLExecutor(pg, log)
	catalog := store.NewCatalog(executor, rdb, config.GetDuration(cfg.Chatbot.CatalogCacheTTL), log)

	opts := []chatbot.Option{chatbot.WithDefaultLimit(cfg.Chatbot.DefaultLimit)}
	if tracing != nil {
		opts = append(opts, chatbot.WithTracing(tracing))
	}
	engine := chatbot.NewEngine(executor, catalog, log, opts...)

	srv := server.New(cfg.Server, engine, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server failed", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
	case sig := <-stop:
		log.Info("shutting down", map[string]interface{}{"signal": sig.String()})
		ctx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}

	log.Info("chatbot api stopped", nil)
}

// retryWithBackoff retries a connectivity probe with exponential backoff.
func retryWithBackoff(log logger.Logger, name string, probe func() error) error {
	const attempts = 5
	delay := time.Second

	var err error
	for i := 1; i <= attempts; i++ {
		if err = probe(); err == nil {
			return nil
		}
		log.Warn("connection attempt failed", map[string]interface{}{
			"target":  name,
			"attempt": i,
			"error":   err.Error(),
		})
		if i < attempts {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return err
}
