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
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// RegisterInput данные для регистрации
// swagger:model
type RegisterInput struct {
	Username string `json:"username" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type profilePatchInput struct {
	Username string `json:"username" validate:"omitempty,max=150"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// ProfileUpdate обновленный пользователь и новая пара токенов.
// Tokens равен nil, если профиль сохранен, а сессию обновить не удалось.
type ProfileUpdate struct {
	User   *model.User
	Tokens *model.TokensPair
}

type AccountService struct {
	users    ports.UserRepository
	hasher   ports.PasswordHasher
	sessions *SessionService
	validate *validator.Validate
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

type AccountOption func(*AccountService)

func WithAccountMetrics(metrics *metrics.Metrics) AccountOption {
	return func(service *AccountService) {
		service.metrics = metrics
	}
}

func WithAccountLogger(logger *slog.Logger) AccountOption {
	return func(service *AccountService) {
		service.logger = logger
	}
}

func NewAccountService(users ports.UserRepository, hasher ports.PasswordHasher, sessions *SessionService, options ...AccountOption) *AccountService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		return name
	})

	service := &AccountService{
		users:    users,
		hasher:   hasher,
		sessions: sessions,
		validate: validate,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, option := range options {
		option(service)
	}
	return service
}

// Register создает пользователя. Email приводится к нижнему регистру.
func (service *AccountService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	input.Email = strings.ToLower(input.Email)
	if err := service.validateStruct(input); err != nil {
		return nil, err
	}
	if err := checkPassword(input.Password); err != nil {
		return nil, err
	}

	passwordHash, err := service.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("ошибка хэширования пароля: %w", err)
	}

	user, err := service.users.Insert(ctx, &model.User{
		UUID:         uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: passwordHash,
		CreatedAt:    service.now().UTC(),
		IsActive:     true,
	})
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "пользователь зарегистрирован", "user_uuid", user.UUID.String())
	return user, nil
}

// Authenticate не различает отсутствующего пользователя и неверный пароль
func (service *AccountService) Authenticate(ctx context.Context, username string, password string) (*model.User, error) {
	user, err := service.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			service.metrics.Login(metrics.LoginFailure)
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive || !service.hasher.Verify(password, user.PasswordHash) {
		service.metrics.Login(metrics.LoginFailure)
		return nil, model.ErrInvalidCredentials
	}

	service.metrics.Login(metrics.LoginSuccess)
	return user, nil
}

func (service *AccountService) Login(ctx context.Context, username string, password string) (*model.TokensPair, error) {
	user, err := service.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	tokensPair, err := service.sessions.IssuePair(ctx, user.Profile())
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "выполнен вход", "user_uuid", user.UUID.String())
	return tokensPair, nil
}

func (service *AccountService) CurrentUser(ctx context.Context, accessToken string) (*model.User, error) {
	userContext, err := service.sessions.ValidateAccess(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return userContext.User, nil
}

// UpdateProfile применяет переданные поля, блокирует старый access токен и выдает новую пару,
// чтобы снимок профиля в токене не устарел
func (service *AccountService) UpdateProfile(ctx context.Context, accessToken string, patch model.UserPatch) (*ProfileUpdate, error) {
	userContext, err := service.sessions.ValidateAccess(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	patch, err = service.preparePatch(patch)
	if err != nil {
		return nil, err
	}

	user := userContext.User
	if !patch.Empty() {
		merged := model.MergeUser(*user, patch)
		user, err = service.users.Update(ctx, &merged)
		if err != nil {
			return nil, err
		}
	}

	if err := service.sessions.EndSession(ctx, userContext.Claims, metrics.RevokedProfileUpdate); err != nil {
		return service.rotationFailed(user, !patch.Empty(), err)
	}
	tokensPair, err := service.sessions.IssuePair(ctx, user.Profile())
	if err != nil {
		return service.rotationFailed(user, !patch.Empty(), err)
	}

	service.logger.InfoContext(ctx, "профиль обновлен", "user_uuid", user.UUID.String())
	return &ProfileUpdate{User: user, Tokens: tokensPair}, nil
}

// rotationFailed если изменения уже сохранены, возвращает запись без токенов и ErrSessionNotRotated
func (service *AccountService) rotationFailed(user *model.User, saved bool, err error) (*ProfileUpdate, error) {
	if !saved {
		return nil, err
	}
	return &ProfileUpdate{User: user}, fmt.Errorf("%w: %w", model.ErrSessionNotRotated, err)
}

// preparePatch проверяет поля и заменяет пароль его хэшем
func (service *AccountService) preparePatch(patch model.UserPatch) (model.UserPatch, error) {
	input := profilePatchInput{}
	if patch.Username != nil {
		input.Username = *patch.Username
	}
	if patch.Email != nil {
		email := strings.ToLower(*patch.Email)
		patch.Email = &email
		input.Email = email
	}
	if err := service.validateStruct(input); err != nil {
		return patch, err
	}

	if patch.Password != nil && *patch.Password != "" {
		if err := checkPassword(*patch.Password); err != nil {
			return patch, err
		}
		passwordHash, err := service.hasher.Hash(*patch.Password)
		if err != nil {
			return patch, fmt.Errorf("ошибка хэширования пароля: %w", err)
		}
		patch.Password = &passwordHash
	}

	return patch, nil
}

func (service *AccountService) validateStruct(input any) error {
	err := service.validate.Struct(input)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fieldError := validationErrors[0]
		return model.NewInputError(fieldError.Field(), validationReason(fieldError.Tag()))
	}
	return fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
}

func validationReason(tag string) string {
	switch tag {
	case "required":
		return "обязательное поле"
	case "email":
		return "некорректный email"
	case "max":
		return "слишком длинное значение"
	default:
		return "некорректное значение"
	}
}

func checkPassword(password string) error {
	if len(password) > security.MaxPasswordBytes {
		return model.NewInputError("password", "пароль длиннее 72 байт")
	}
	return nil
}
