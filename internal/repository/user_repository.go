package repository

import (
	"AuthSessionService/internal"
	"AuthSessionService/internal/model"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uniqueViolationCode = "23505"

const userColumns = `uuid, username, email, password, created_at, is_superuser, is_active`

type UserRepository struct {
	*internal.Database
}

func NewUserRepository(database *internal.Database) *UserRepository {
	return &UserRepository{database}
}

func (repository *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return repository.findOne(ctx, query, username)
}

func (repository *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE uuid = $1`
	return repository.findOne(ctx, query, id)
}

func (repository *UserRepository) Insert(ctx context.Context, user *model.User) (*model.User, error) {
	query := `INSERT INTO users (` + userColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING ` + userColumns

	var created model.User
	err := repository.DB.GetContext(ctx, &created, query,
		user.UUID, user.Username, user.Email, user.PasswordHash, user.CreatedAt, user.IsSuperuser, user.IsActive)
	if err != nil {
		return nil, mapWriteError("ошибка вставки пользователя", err)
	}

	return &created, nil
}

func (repository *UserRepository) Update(ctx context.Context, user *model.User) (*model.User, error) {
	query := `UPDATE users
			  SET username = $2, email = $3, password = $4, is_superuser = $5, is_active = $6
			  WHERE uuid = $1
			  RETURNING ` + userColumns

	var updated model.User
	err := repository.DB.GetContext(ctx, &updated, query,
		user.UUID, user.Username, user.Email, user.PasswordHash, user.IsSuperuser, user.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, mapWriteError("ошибка обновления пользователя", err)
	}

	return &updated, nil
}

func (repository *UserRepository) findOne(ctx context.Context, query string, arg any) (*model.User, error) {
	var user model.User
	err := repository.DB.GetContext(ctx, &user, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: ошибка выполнения запроса: %v", model.ErrStoreUnavailable, err)
	}

	return &user, nil
}

func mapWriteError(message string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
		return fmt.Errorf("%s: %w", message, model.ErrDuplicateAccount)
	}
	return fmt.Errorf("%w: %s: %v", model.ErrStoreUnavailable, message, err)
}
