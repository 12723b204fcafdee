package service

import (
	"AuthSessionService/internal/metrics"
	"AuthSessionService/internal/model"
	"AuthSessionService/internal/ports"
	"AuthSessionService/internal/security"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// UserContext результат проверки токена: утверждения и актуальная запись пользователя
type UserContext struct {
	Claims *security.Claims
	User   *model.User
}

type SessionService struct {
	codec         *security.TokenCodec
	revocation    ports.RevocationStore
	users         ports.UserRepository
	notifier      ports.SecurityNotifier
	metrics       *metrics.Metrics
	logger        *slog.Logger
	rotateRefresh bool
	now           func() time.Time
}

type SessionOption func(*SessionService)

// WithRefreshRotation при true старый refresh токен удаляется из allowlist атомарно с выдачей нового
func WithRefreshRotation(enabled bool) SessionOption {
	return func(service *SessionService) {
		service.rotateRefresh = enabled
	}
}

func WithNotifier(notifier ports.SecurityNotifier) SessionOption {
	return func(service *SessionService) {
		service.notifier = notifier
	}
}

func WithMetrics(metrics *metrics.Metrics) SessionOption {
	return func(service *SessionService) {
		service.metrics = metrics
	}
}

func WithLogger(logger *slog.Logger) SessionOption {
	return func(service *SessionService) {
		service.logger = logger
	}
}

func WithSessionClock(now func() time.Time) SessionOption {
	return func(service *SessionService) {
		service.now = now
	}
}

func NewSessionService(codec *security.TokenCodec, revocation ports.RevocationStore, users ports.UserRepository, options ...SessionOption) *SessionService {
	service := &SessionService{
		codec:         codec,
		revocation:    revocation,
		users:         users,
		logger:        slog.Default(),
		rotateRefresh: true,
		now:           time.Now,
	}
	for _, option := range options {
		option(service)
	}
	return service
}

// IssuePair выпускает новую пару токенов и регистрирует refresh токен в allowlist
func (service *SessionService) IssuePair(ctx context.Context, profile model.UserProfile) (*model.TokensPair, error) {
	tokensPair, refreshJTI, err := service.encodePair(profile)
	if err != nil {
		return nil, err
	}

	if err := service.revocation.Allow(ctx, profile.UUID, refreshJTI); err != nil {
		return nil, fmt.Errorf("ошибка регистрации refresh токена: %w", err)
	}
	service.countIssued()

	return tokensPair, nil
}

func (service *SessionService) encodePair(profile model.UserProfile) (*model.TokensPair, string, error) {
	refreshJTI := uuid.NewString()
	issuedAt := service.now()

	refreshToken, err := service.codec.Encode(service.codec.NewRefreshClaims(profile.UUID, refreshJTI, issuedAt))
	if err != nil {
		return nil, "", fmt.Errorf("ошибка генерации refresh токена: %w", err)
	}
	accessToken, err := service.codec.Encode(service.codec.NewAccessClaims(profile, refreshJTI, issuedAt))
	if err != nil {
		return nil, "", fmt.Errorf("ошибка генерации access токена: %w", err)
	}

	return &model.TokensPair{AccessToken: accessToken, RefreshToken: refreshToken}, refreshJTI, nil
}

func (service *SessionService) ValidateAccess(ctx context.Context, accessToken string) (*UserContext, error) {
	claims, err := service.decode(accessToken, model.AccessToken)
	if err != nil {
		return nil, err
	}

	blocked, err := service.revocation.IsBlocked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки блок-листа: %w", err)
	}
	if blocked {
		service.metrics.TokenRejected(metrics.RejectedRevoked)
		return nil, model.ErrRevokedToken
	}

	return service.userContext(ctx, claims)
}

func (service *SessionService) ValidateRefresh(ctx context.Context, refreshToken string) (*UserContext, error) {
	claims, err := service.decode(refreshToken, model.RefreshToken)
	if err != nil {
		return nil, err
	}

	allowed, err := service.revocation.IsAllowed(ctx, claims.UserUUID, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки allowlist: %w", err)
	}
	if !allowed {
		service.metrics.TokenRejected(metrics.RejectedRevoked)
		service.reportReuse(ctx, claims)
		return nil, model.ErrRevokedToken
	}

	return service.userContext(ctx, claims)
}

// Refresh выпускает новую пару по refresh токену.
// С ротацией старый refresh токен погашается, повторное предъявление вернет ErrRevokedToken.
func (service *SessionService) Refresh(ctx context.Context, refreshToken string) (*model.TokensPair, error) {
	userContext, err := service.ValidateRefresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	profile := userContext.User.Profile()

	if !service.rotateRefresh {
		return service.IssuePair(ctx, profile)
	}

	tokensPair, refreshJTI, err := service.encodePair(profile)
	if err != nil {
		return nil, err
	}
	rotated, err := service.revocation.Rotate(ctx, profile.UUID, userContext.Claims.ID, refreshJTI)
	if err != nil {
		return nil, fmt.Errorf("ошибка ротации refresh токена: %w", err)
	}
	if !rotated {
		// параллельный запрос успел погасить этот токен
		service.metrics.TokenRejected(metrics.RejectedRevoked)
		return nil, model.ErrRevokedToken
	}
	service.metrics.TokenRevoked(metrics.RevokedRotation)
	service.countIssued()

	service.logger.InfoContext(ctx, "токены обновлены", "user_uuid", profile.UUID.String())
	return tokensPair, nil
}

// Logout завершает одну сессию: блокирует access токен и отзывает связанный refresh токен
func (service *SessionService) Logout(ctx context.Context, accessToken string) error {
	userContext, err := service.ValidateAccess(ctx, accessToken)
	if err != nil {
		return err
	}
	if err := service.EndSession(ctx, userContext.Claims, metrics.RevokedLogout); err != nil {
		return err
	}

	service.logger.InfoContext(ctx, "выполнен выход из аккаунта", "user_uuid", userContext.Claims.UserUUID.String())
	return nil
}

// LogoutAll блокирует текущий access токен и отзывает все refresh токены пользователя.
// Другие access токены остаются валидными до истечения своего срока.
func (service *SessionService) LogoutAll(ctx context.Context, accessToken string) error {
	userContext, err := service.ValidateAccess(ctx, accessToken)
	if err != nil {
		return err
	}
	claims := userContext.Claims

	if err := service.blockAccess(ctx, claims); err != nil {
		return err
	}
	if err := service.revocation.RevokeAll(ctx, claims.UserUUID); err != nil {
		return fmt.Errorf("ошибка отзыва refresh токенов: %w", err)
	}
	service.metrics.TokenRevoked(metrics.RevokedLogoutAll)

	service.logger.InfoContext(ctx, "выполнен выход со всех устройств", "user_uuid", claims.UserUUID.String())
	return nil
}

// EndSession блокирует access токен и отзывает refresh токен его сессии
func (service *SessionService) EndSession(ctx context.Context, claims *security.Claims, reason string) error {
	if err := service.blockAccess(ctx, claims); err != nil {
		return err
	}
	if err := service.revocation.Revoke(ctx, claims.UserUUID, claims.RefreshJTI); err != nil {
		return fmt.Errorf("ошибка отзыва refresh токена: %w", err)
	}
	service.metrics.TokenRevoked(reason)
	return nil
}

func (service *SessionService) blockAccess(ctx context.Context, claims *security.Claims) error {
	if err := service.revocation.Block(ctx, claims.ID, service.codec.AccessTTL()); err != nil {
		return fmt.Errorf("ошибка блокировки access токена: %w", err)
	}
	return nil
}

func (service *SessionService) decode(token string, expected model.TokenType) (*security.Claims, error) {
	claims, err := service.codec.Decode(token)
	if err != nil {
		service.metrics.TokenRejected(metrics.RejectedInvalid)
		return nil, err
	}
	if claims.Type != expected {
		service.metrics.TokenRejected(metrics.RejectedWrongUse)
		return nil, fmt.Errorf("%w: ожидался %s токен", model.ErrInvalidToken, expected)
	}
	return claims, nil
}

func (service *SessionService) userContext(ctx context.Context, claims *security.Claims) (*UserContext, error) {
	user, err := service.users.FindByID(ctx, claims.UserUUID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			service.metrics.TokenRejected(metrics.RejectedNoUser)
		}
		return nil, err
	}
	if !user.IsActive {
		service.metrics.TokenRejected(metrics.RejectedNoUser)
		return nil, model.ErrUserNotFound
	}

	return &UserContext{Claims: claims, User: user}, nil
}

// reportReuse при ротации предъявление погашенного refresh токена означает возможную утечку
func (service *SessionService) reportReuse(ctx context.Context, claims *security.Claims) {
	if !service.rotateRefresh || service.notifier == nil {
		return
	}

	event := model.SecurityEvent{
		UserUUID:       claims.UserUUID.String(),
		RefreshTokenID: claims.ID,
		Event:          model.EventRefreshTokenReuse,
		TimeStamp:      service.now().UTC().Format(time.RFC3339),
	}
	service.logger.WarnContext(ctx, "повторное использование refresh токена, отправка webhook", "user_uuid", event.UserUUID)

	notifyCtx := context.WithoutCancel(ctx)
	go func() {
		if err := service.notifier.Notify(notifyCtx, event); err != nil {
			service.logger.Error("ошибка отправки webhook", "error", err)
		}
	}()
}

func (service *SessionService) countIssued() {
	service.metrics.TokenIssued(model.AccessToken)
	service.metrics.TokenIssued(model.RefreshToken)
}
