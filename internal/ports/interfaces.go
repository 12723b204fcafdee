package ports

import (
	"AuthSessionService/internal/model"
	"context"
	"time"

	"github.com/google/uuid"
)

// ExpiringCache ключ-значение с временем жизни записи
type ExpiringCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetIfAbsent(ctx context.Context, key string, value string, ttl time.Duration) error
}

// SetCache множество значений по ключу без времени жизни
type SetCache interface {
	Add(ctx context.Context, key string, value string) error
	Remove(ctx context.Context, key string, value string) error
	Clear(ctx context.Context, key string) error
	Contains(ctx context.Context, key string, value string) (bool, error)
	Swap(ctx context.Context, key string, oldValue string, newValue string) (bool, error)
}

type RevocationStore interface {
	Block(ctx context.Context, accessTokenID string, ttl time.Duration) error
	IsBlocked(ctx context.Context, accessTokenID string) (bool, error)
	Allow(ctx context.Context, userID uuid.UUID, refreshTokenID string) error
	IsAllowed(ctx context.Context, userID uuid.UUID, refreshTokenID string) (bool, error)
	Revoke(ctx context.Context, userID uuid.UUID, refreshTokenID string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
	Rotate(ctx context.Context, userID uuid.UUID, oldRefreshTokenID string, newRefreshTokenID string) (bool, error)
}

type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	Insert(ctx context.Context, user *model.User) (*model.User, error)
	Update(ctx context.Context, user *model.User) (*model.User, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) bool
}

type SecurityNotifier interface {
	Notify(ctx context.Context, event model.SecurityEvent) error
}
