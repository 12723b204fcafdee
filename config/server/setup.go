package server

import (
	"AuthSessionService/config"
	"AuthSessionService/internal"
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

func SetupDatabase(ctx context.Context, cfg config.DatabaseConfig) (*internal.Database, error) {
	database, err := internal.NewDatabaseConnection(ctx, cfg.Driver, cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения: %w", err)
	}
	return database, nil
}

func SetupRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ошибка подключения к redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func SetupServer(cfg config.ServerConfig) (*http.Server, *chi.Mux) {
	router := chi.NewRouter()
	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           router,
		ReadHeaderTimeout: cfg.RequestTimeout,
	}

	return server, router
}
