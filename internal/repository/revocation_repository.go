package repository

import (
	"AuthSessionService/internal/ports"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const blockedValue = "blocked"

// RevocationRepository черный список access токенов и белый список refresh токенов пользователя
type RevocationRepository struct {
	blockedAccessTokens ports.ExpiringCache
	activeRefreshTokens ports.SetCache
}

func NewRevocationRepository(blockedAccessTokens ports.ExpiringCache, activeRefreshTokens ports.SetCache) *RevocationRepository {
	return &RevocationRepository{
		blockedAccessTokens: blockedAccessTokens,
		activeRefreshTokens: activeRefreshTokens,
	}
}

// Block идемпотентен: повторная блокировка не меняет запись
func (repository *RevocationRepository) Block(ctx context.Context, accessTokenID string, ttl time.Duration) error {
	if err := repository.blockedAccessTokens.SetIfAbsent(ctx, accessTokenID, blockedValue, ttl); err != nil {
		return fmt.Errorf("не удалось заблокировать access токен: %w", err)
	}
	return nil
}

func (repository *RevocationRepository) IsBlocked(ctx context.Context, accessTokenID string) (bool, error) {
	_, found, err := repository.blockedAccessTokens.Get(ctx, accessTokenID)
	if err != nil {
		return false, fmt.Errorf("не удалось проверить черный список: %w", err)
	}
	return found, nil
}

func (repository *RevocationRepository) Allow(ctx context.Context, userID uuid.UUID, refreshTokenID string) error {
	if err := repository.activeRefreshTokens.Add(ctx, userID.String(), refreshTokenID); err != nil {
		return fmt.Errorf("не удалось сохранить refresh токен: %w", err)
	}
	return nil
}

func (repository *RevocationRepository) IsAllowed(ctx context.Context, userID uuid.UUID, refreshTokenID string) (bool, error) {
	found, err := repository.activeRefreshTokens.Contains(ctx, userID.String(), refreshTokenID)
	if err != nil {
		return false, fmt.Errorf("не удалось проверить refresh токен: %w", err)
	}
	return found, nil
}

func (repository *RevocationRepository) Revoke(ctx context.Context, userID uuid.UUID, refreshTokenID string) error {
	if err := repository.activeRefreshTokens.Remove(ctx, userID.String(), refreshTokenID); err != nil {
		return fmt.Errorf("не удалось отозвать refresh токен: %w", err)
	}
	return nil
}

func (repository *RevocationRepository) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	if err := repository.activeRefreshTokens.Clear(ctx, userID.String()); err != nil {
		return fmt.Errorf("не удалось отозвать refresh токены пользователя: %w", err)
	}
	return nil
}

// Rotate атомарно удаляет старый refresh id и добавляет новый.
// false, если старого id уже нет в белом списке.
func (repository *RevocationRepository) Rotate(ctx context.Context, userID uuid.UUID, oldRefreshTokenID string, newRefreshTokenID string) (bool, error) {
	rotated, err := repository.activeRefreshTokens.Swap(ctx, userID.String(), oldRefreshTokenID, newRefreshTokenID)
	if err != nil {
		return false, fmt.Errorf("не удалось заменить refresh токен: %w", err)
	}
	return rotated, nil
}
