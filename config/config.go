package config

import (
	"errors"
	"fmt"
	"net"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Password PasswordConfig `yaml:"password"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	BasePath        string        `yaml:"base_path"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

func (server ServerConfig) Address() string {
	return net.JoinHostPort(server.Host, server.Port)
}

type DatabaseConfig struct {
	Driver           string `yaml:"driver"`
	ConnectionString string `yaml:"connection_string"`
	MigrateOnStart   bool   `yaml:"migrate_on_start"`
}

type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

type JWTConfig struct {
	SecretKey           string        `yaml:"secret_key"`
	Algorithm           string        `yaml:"algorithm"`
	AccessTokenTTL      time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL     time.Duration `yaml:"refresh_token_ttl"`
	RotateRefreshTokens bool          `yaml:"rotate_refresh_tokens"`
}

type PasswordConfig struct {
	BcryptCost int `yaml:"bcrypt_cost"`
}

type WebhookConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default значения, которые перекрываются файлом и переменными окружения
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			BasePath:        "/api/v1",
			RequestTimeout:  3 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:         "postgres",
			MigrateOnStart: true,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		JWT: JWTConfig{
			Algorithm:           "HS256",
			AccessTokenTTL:      15 * time.Minute,
			RefreshTokenTTL:     30 * 24 * time.Hour,
			RotateRefreshTokens: true,
		},
		Password: PasswordConfig{
			BcryptCost: bcrypt.DefaultCost,
		},
		Webhook: WebhookConfig{
			Timeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func (cfg *Config) Validate() error {
	var errs []error

	if cfg.JWT.SecretKey == "" {
		errs = append(errs, errors.New("jwt.secret_key не задан"))
	}
	switch cfg.JWT.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("jwt.algorithm: неподдерживаемый алгоритм %q", cfg.JWT.Algorithm))
	}
	if cfg.JWT.AccessTokenTTL <= 0 || cfg.JWT.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("время жизни токенов должно быть положительным"))
	} else if cfg.JWT.AccessTokenTTL >= cfg.JWT.RefreshTokenTTL {
		errs = append(errs, errors.New("jwt.access_token_ttl должен быть меньше jwt.refresh_token_ttl"))
	}
	if cfg.Password.BcryptCost < bcrypt.MinCost || cfg.Password.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("password.bcrypt_cost вне диапазона %d..%d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if cfg.Server.Port == "" {
		errs = append(errs, errors.New("server.port не задан"))
	}
	if cfg.Server.RequestTimeout <= 0 || cfg.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("таймауты сервера должны быть положительными"))
	}

	return errors.Join(errs...)
}
