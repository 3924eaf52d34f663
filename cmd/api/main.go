package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskboard/assignment-system/internal/api"
	"github.com/taskboard/assignment-system/internal/core/service"
	"github.com/taskboard/assignment-system/internal/infrastructure/config"
	mongodb "github.com/taskboard/assignment-system/internal/infrastructure/db/mongo"
	redisdb "github.com/taskboard/assignment-system/internal/infrastructure/db/redis"
	"github.com/taskboard/assignment-system/internal/infrastructure/queue"
	"github.com/taskboard/assignment-system/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	rdb, err := redisdb.Connect(ctx, cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	deps := api.Dependencies{
		Client: client,
		DB:     db,
		Redis:  rdb,
		Config: cfg,
		Logger: log,
	}
	services := api.BuildServices(deps)

	if err := services.UserRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user index creation failed")
	}
	if err := mongodb.NewTaskRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("task index creation failed")
	}

	ingest := service.NewIngestService(services.Users, redisdb.NewDedupChecker(rdb), log)
	dispatcher := queue.NewDispatcher(cfg.Workers, ingest, log)
	dispatcher.Start(ctx)
	deps.Dispatcher = dispatcher

	e := api.NewRouter(deps, services)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
