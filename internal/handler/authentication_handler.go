package handler

import (
	"AuthSessionService/internal/model"
	"AuthSessionService/internal/security"
	"AuthSessionService/internal/service"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// SignUpResponse созданный пользователь
// swagger:model
type SignUpResponse struct {
	// example: пользователь создан
	Message string      `json:"msg"`
	User    *model.User `json:"user"`
}

// LoginRequest учетные данные пользователя
// swagger:model
type LoginRequest struct {
	// example: alice
	Username string `json:"username"`
	// example: secret1
	Password string `json:"password"`
}

type AuthenticationHandler struct {
	accounts       *service.AccountService
	sessions       *service.SessionService
	logger         *slog.Logger
	requestTimeout time.Duration
}

func NewAuthenticationHandler(accounts *service.AccountService, sessions *service.SessionService, logger *slog.Logger, requestTimeout time.Duration) *AuthenticationHandler {
	return &AuthenticationHandler{
		accounts:       accounts,
		sessions:       sessions,
		logger:         logger,
		requestTimeout: requestTimeout,
	}
}

// SignUp регистрирует нового пользователя
// @Summary Регистрация
// @Description Создает пользователя. Email приводится к нижнему регистру. Пример запроса: POST /api/v1/signup с телом {"username": "alice", "email": "a@x.com", "password": "secret1"}
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Данные пользователя"
// @Success 201 {object} SignUpResponse "пользователь создан"
// @Failure 400 {object} ErrorResponse "неверный json, некорректные данные или пользователь уже существует"
// @Failure 500 {object} ErrorResponse "хранилище недоступно"
// @Router /signup [post]
func (handler *AuthenticationHandler) SignUp(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), handler.requestTimeout)
	defer cancel()

	var input service.RegisterInput
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		writeJSON(writer, http.StatusBadRequest, ErrorResponse{Detail: "неверный json"})
		return
	}

	user, err := handler.accounts.Register(ctx, input)
	if err != nil {
		writeError(writer, request, handler.logger, err)
		return
	}

	writeJSON(writer, http.StatusCreated, SignUpResponse{Message: "пользователь создан", User: user})
}

// Login выдает пару токенов по логину и паролю
// @Summary Вход
// @Description Проверяет учетные данные и выдает новую пару JWT-токенов. Пример запроса: POST /api/v1/login с телом {"username": "alice", "password": "secret1"}
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Учетные данные"
// @Success 200 {object} model.TokensPair "успешный вход"
// @Failure 400 {object} ErrorResponse "неверный json"
// @Failure 401 {object} ErrorResponse "неверное имя пользователя или пароль"
// @Router /login [post]
func (handler *AuthenticationHandler) Login(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), handler.requestTimeout)
	defer cancel()

	var loginRequest LoginRequest
	if err := json.NewDecoder(request.Body).Decode(&loginRequest); err != nil {
		writeJSON(writer, http.StatusBadRequest, ErrorResponse{Detail: "неверный json"})
		return
	}

	tokensPair, err := handler.accounts.Login(ctx, loginRequest.Username, loginRequest.Password)
	if err != nil {
		writeError(writer, request, handler.logger, err)
		return
	}

	writeJSON(writer, http.StatusOK, tokensPair)
}

// Refresh обновляет пару токенов
// @Summary Обновление токенов
// @Description Выдает новую пару по refresh-токену. Старый refresh-токен при этом погашается. Пример запроса: POST /api/v1/refresh с заголовком Authorization: Bearer <refresh_token>
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Refresh токен" default(Bearer <refresh_token>)
// @Success 200 {object} model.TokensPair "успешное обновление токенов"
// @Failure 401 {object} ErrorResponse "токен невалиден или отозван"
// @Security ApiKeyAuth
// @Router /refresh [post]
func (handler *AuthenticationHandler) Refresh(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), handler.requestTimeout)
	defer cancel()

	refreshToken, _ := security.TokenFromContext(ctx)
	tokensPair, err := handler.sessions.Refresh(ctx, refreshToken)
	if err != nil {
		writeError(writer, request, handler.logger, err)
		return
	}

	writeJSON(writer, http.StatusOK, tokensPair)
}

// Logout godoc
// @Summary Выход из аккаунта
// @Description Блокирует access-токен и отзывает связанный refresh-токен. Пример запроса: POST /api/v1/logout с заголовком Authorization: Bearer <access_token>
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} MessageResponse "Успешный выход"
// @Failure 401 {object} ErrorResponse "выход уже выполнен или токен невалиден"
// @Security ApiKeyAuth
// @Router /logout [post]
func (handler *AuthenticationHandler) Logout(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), handler.requestTimeout)
	defer cancel()

	accessToken, _ := security.TokenFromContext(ctx)
	if err := handler.sessions.Logout(ctx, accessToken); err != nil {
		handler.writeLogoutError(writer, request, err)
		return
	}

	writeJSON(writer, http.StatusOK, MessageResponse{Message: "выполнен выход из аккаунта"})
}

// LogoutAll godoc
// @Summary Выход со всех устройств
// @Description Блокирует access-токен и отзывает все refresh-токены пользователя. Пример запроса: POST /api/v1/logout_all с заголовком Authorization: Bearer <access_token>
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} MessageResponse "Успешный выход"
// @Failure 401 {object} ErrorResponse "выход уже выполнен или токен невалиден"
// @Security ApiKeyAuth
// @Router /logout_all [post]
func (handler *AuthenticationHandler) LogoutAll(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), handler.requestTimeout)
	defer cancel()

	accessToken, _ := security.TokenFromContext(ctx)
	if err := handler.sessions.LogoutAll(ctx, accessToken); err != nil {
		handler.writeLogoutError(writer, request, err)
		return
	}

	writeJSON(writer, http.StatusOK, MessageResponse{Message: "выполнен выход со всех устройств"})
}

func (handler *AuthenticationHandler) writeLogoutError(writer http.ResponseWriter, request *http.Request, err error) {
	if errors.Is(err, model.ErrRevokedToken) {
		writeUnauthorized(writer, "выход уже выполнен")
		return
	}
	writeError(writer, request, handler.logger, err)
}
