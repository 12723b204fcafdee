package main

import (
	"AuthSessionService/config"
	"AuthSessionService/config/server"
	"AuthSessionService/internal"
	"AuthSessionService/internal/cache"
	"AuthSessionService/internal/handler"
	"AuthSessionService/internal/logger"
	"AuthSessionService/internal/metrics"
	"AuthSessionService/internal/notifier"
	"AuthSessionService/internal/repository"
	"AuthSessionService/internal/security"
	"AuthSessionService/internal/service"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
)

const (
	blockedAccessTokenPrefix  = "blocked_access_token:"
	activeRefreshTokensPrefix = "active_refresh_tokens:"
)

func main() {
	app := &cli.App{
		Name:  "auth-session-service",
		Usage: "сервис регистрации, входа и управления сессиями",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "путь до yaml файла конфигурации",
				EnvVars: []string{"AUTH_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "путь до .env файла, по умолчанию .env в рабочей директории",
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "запустить HTTP сервер",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "применить миграции БД и выйти",
				Action: migrate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "ошибка: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(c.String("config"), c.String("env-file"))
	if err != nil {
		return nil, nil, err
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	slog.SetDefault(log)
	return cfg, log, nil
}

func migrate(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}

	database, err := server.SetupDatabase(c.Context, cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(c.Context); err != nil {
		return err
	}
	log.Info("миграции применены")
	return nil
}

func serve(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	database, err := server.SetupDatabase(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("не удалось подключиться к БД: %w", err)
	}
	defer database.Close()

	if cfg.Database.MigrateOnStart {
		if err := database.Migrate(ctx); err != nil {
			return err
		}
	}

	redisClient, err := server.SetupRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	codec, err := security.NewTokenCodec(cfg.JWT.SecretKey, cfg.JWT.Algorithm, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL)
	if err != nil {
		return err
	}
	hasher, err := security.NewBcryptHasher(cfg.Password.BcryptCost)
	if err != nil {
		return err
	}

	authMetrics := metrics.New()
	revocationRepository := repository.NewRevocationRepository(
		cache.NewRedisCache(redisClient, cfg.Redis.KeyPrefix+blockedAccessTokenPrefix),
		cache.NewRedisSetCache(redisClient, cfg.Redis.KeyPrefix+activeRefreshTokensPrefix),
	)
	userRepository := repository.NewUserRepository(database)

	sessionService := service.NewSessionService(codec, revocationRepository, userRepository,
		service.WithRefreshRotation(cfg.JWT.RotateRefreshTokens),
		service.WithNotifier(notifier.NewWebhookNotifier(cfg.Webhook.URL, cfg.Webhook.Timeout)),
		service.WithMetrics(authMetrics),
		service.WithLogger(log),
	)
	accountService := service.NewAccountService(userRepository, hasher, sessionService,
		service.WithAccountMetrics(authMetrics),
		service.WithAccountLogger(log),
	)

	httpServer, router := server.SetupServer(cfg.Server)
	handler.RegisterRoutes(router, cfg.Server.BasePath,
		handler.NewAuthenticationHandler(accountService, sessionService, log, cfg.Server.RequestTimeout),
		handler.NewUserHandler(accountService, log, cfg.Server.RequestTimeout),
		handler.NewHealthHandler(healthChecks(database, redisClient), log, cfg.Server.RequestTimeout),
		authMetrics.Handler(),
	)

	return runServer(ctx, httpServer, cfg.Server.ShutdownTimeout, log)
}

func healthChecks(database *internal.Database, redisClient *redis.Client) map[string]handler.HealthCheck {
	return map[string]handler.HealthCheck{
		"database": database.PingContext,
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	}
}

func runServer(ctx context.Context, server *http.Server, shutdownTimeout time.Duration, log *slog.Logger) error {
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("сервер запущен на " + server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ошибка работы сервера: %w", err)
		}
		return nil
	case sig := <-signalChannel:
		log.Info("получен сигнал остановки работы сервера", "signal", sig.String())
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		return fmt.Errorf("ошибка при остановке сервера: %w", err)
	}
	log.Info("сервер успешно остановлен")
	return nil
}
