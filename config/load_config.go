package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultEnvFile = ".env"

// LoadConfig порядок: значения по умолчанию, yaml файл, .env файл, переменные окружения.
// Без envFilePath читается .env из рабочей директории, если он есть.
func LoadConfig(filePath string, envFilePath string) (*Config, error) {
	cfg := Default()

	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("ошибка парсинга .yaml файла: %w", err)
		}
	}

	if envFilePath == "" {
		if _, err := os.Stat(defaultEnvFile); err == nil {
			envFilePath = defaultEnvFile
		}
	}
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			return nil, fmt.Errorf(".env не найден по пути %s: %w", envFilePath, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("невалидная конфигурация: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if address, ok := os.LookupEnv("SERVER_ADDRESS"); ok {
		host, port, err := net.SplitHostPort(address)
		if err != nil {
			return fmt.Errorf("SERVER_ADDRESS: %w", err)
		}
		cfg.Server.Host, cfg.Server.Port = host, port
	}

	setString(&cfg.Database.Driver, "DATABASE_DRIVER")
	setString(&cfg.Database.ConnectionString, "DATABASE_CONNECTION_URL")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.JWT.SecretKey, "JWT_SECRET_KEY")
	setString(&cfg.JWT.Algorithm, "JWT_ALGORITHM")
	setString(&cfg.Webhook.URL, "WEBHOOK_URL")
	setString(&cfg.Log.Level, "LOG_LEVEL")

	if err := setDuration(&cfg.JWT.AccessTokenTTL, "ACCESS_TOKEN_TTL"); err != nil {
		return err
	}
	return setDuration(&cfg.JWT.RefreshTokenTTL, "REFRESH_TOKEN_TTL")
}

func setString(target *string, key string) {
	if value, ok := os.LookupEnv(key); ok {
		*target = value
	}
}

func setDuration(target *time.Duration, key string) error {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*target = duration
	return nil
}
