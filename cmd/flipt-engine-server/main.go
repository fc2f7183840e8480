package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/flipt-io/flipt-engine-go/engine"
	"github.com/flipt-io/flipt-engine-go/internal/gateway"
)

func main() {
	cfg := engine.LoadConfig()
	logger := setupLogger()

	logger.Info().Msg("starting flipt-engine-server")

	parser := buildParser(cfg, logger)

	eng, err := engine.New(context.Background(), parser, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build initial snapshot")
	}

	router := gateway.NewRouter(eng, os.Getenv("FLIPT_GATEWAY_AUTH_SECRET"), logger)

	httpServer := &http.Server{
		Addr:         serverAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("gateway listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("gateway server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("gateway shutdown error")
	}
	if err := eng.Close(); err != nil {
		logger.Error().Err(err).Msg("engine shutdown error")
	}

	logger.Info().Msg("exited")
}

func buildParser(cfg engine.Config, logger zerolog.Logger) engine.Parser {
	namespaces := []string{"default"}

	switch cfg.Parser {
	case engine.ParserKindFile:
		return engine.NewFileParser(cfg.FilePath, namespaces)
	case engine.ParserKindRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return engine.NewRedisParser(client, namespaces, logger)
	case engine.ParserKindPostgres:
		pool, err := pgxpool.New(context.Background(), cfg.Postgres.DSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		return engine.NewPostgresParser(pool, namespaces, logger)
	default:
		return engine.NewHTTPParser(cfg.RemoteURL, namespaces, logger)
	}
}

func setupLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(os.Getenv("FLIPT_LOG_LEVEL"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().
		Timestamp().
		Str("service", "flipt-engine-server").
		Logger()
}

func serverAddr() string {
	port := os.Getenv("FLIPT_GATEWAY_PORT")
	if port == "" {
		port = "8081"
	}
	return fmt.Sprintf(":%s", port)
}
