package internal

import (
	"AuthSessionService/internal/migrations"
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

type Database struct {
	*sqlx.DB
}

func NewDatabaseConnection(ctx context.Context, dbDriver string, dbConnectionStr string) (*Database, error) {
	database, err := sqlx.ConnectContext(ctx, dbDriver, dbConnectionStr)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := database.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ошибка пинга БД: %w", err)
	}

	slog.InfoContext(ctx, "подключение к БД успешно выполнено", "driver", dbDriver)
	return &Database{
		database,
	}, nil
}

// Migrate применяет встроенные миграции goose
func (db *Database) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("ошибка выбора диалекта миграций: %w", err)
	}
	if err := goose.UpContext(ctx, db.DB.DB, "."); err != nil {
		return fmt.Errorf("ошибка применения миграций: %w", err)
	}
	return nil
}

func (db *Database) Close() error {
	err := db.DB.Close()
	if err != nil {
		return fmt.Errorf("ошибка закрытия соединения с БД: %w", err)
	}

	return nil
}
