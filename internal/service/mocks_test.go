package service

import (
	"AuthSessionService/internal/cache"
	"AuthSessionService/internal/logger"
	"AuthSessionService/internal/model"
	"AuthSessionService/internal/repository"
	"AuthSessionService/internal/security"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

// Insert и Update возвращают переданную запись, если в Return не задана другая
func (m *MockUserRepository) Insert(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	return echoUser(user, args)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	return echoUser(user, args)
}

func echoUser(user *model.User, args mock.Arguments) (*model.User, error) {
	if err := args.Error(1); err != nil {
		return nil, err
	}
	if stored, ok := args.Get(0).(*model.User); ok && stored != nil {
		return stored, nil
	}
	return user, nil
}

type recordingNotifier struct {
	events chan model.SecurityEvent
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{events: make(chan model.SecurityEvent, 8)}
}

func (notifier *recordingNotifier) Notify(ctx context.Context, event model.SecurityEvent) error {
	notifier.events <- event
	return nil
}

type testEnv struct {
	codec      *security.TokenCodec
	revocation *repository.RevocationRepository
	users      *MockUserRepository
	hasher     *security.BcryptHasher
	redis      *miniredis.Miniredis
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	codec, err := security.NewTokenCodec("test-secret", "HS256", 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	hasher, err := security.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	return &testEnv{
		codec: codec,
		revocation: repository.NewRevocationRepository(
			cache.NewRedisCache(client, "blocked_access_token:"),
			cache.NewRedisSetCache(client, "active_refresh_tokens:"),
		),
		users:  new(MockUserRepository),
		hasher: hasher,
		redis:  mr,
	}
}

func (env *testEnv) sessions(options ...SessionOption) *SessionService {
	options = append([]SessionOption{WithLogger(logger.Discard())}, options...)
	return NewSessionService(env.codec, env.revocation, env.users, options...)
}

func (env *testEnv) accounts(sessions *SessionService) *AccountService {
	return NewAccountService(env.users, env.hasher, sessions, WithAccountLogger(logger.Discard()))
}

// storedUser регистрирует пользователя в моке FindByID
func (env *testEnv) storedUser(username string) *model.User {
	user := &model.User{
		UUID:      uuid.New(),
		Username:  username,
		Email:     username + "@x.com",
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		IsActive:  true,
	}
	env.users.On("FindByID", mock.Anything, user.UUID).Return(user, nil)
	return user
}
