package handler

import (
	"AuthSessionService/internal/model"
	"AuthSessionService/internal/security"
	"AuthSessionService/internal/service"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// CurrentUserResponse профиль текущего пользователя
// swagger:model
type CurrentUserResponse struct {
	User *model.User `json:"user"`
}

// UpdateProfileResponse обновленный профиль и новая пара токенов
// swagger:model
type UpdateProfileResponse struct {
	// example: профиль обновлен, используйте новый access токен
	Message      string      `json:"msg"`
	User         *model.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
}

type UserHandler struct {
	accounts       *service.AccountService
	logger         *slog.Logger
	requestTimeout time.Duration
}

func NewUserHandler(accounts *service.AccountService, logger *slog.Logger, requestTimeout time.Duration) *UserHandler {
	return &UserHandler{accounts: accounts, logger: logger, requestTimeout: requestTimeout}
}

// GetCurrentUser godoc
// @Summary Текущий пользователь
// @Description Возвращает профиль владельца access-токена. Пример запроса: GET /api/v1/me с заголовком Authorization: Bearer <access_token>
// @Tags Users
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} CurrentUserResponse "Успешный ответ"
// @Failure 401 {object} ErrorResponse "токен невалиден или отозван"
// @Security ApiKeyAuth
// @Router /me [get]
func (handler *UserHandler) GetCurrentUser(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), handler.requestTimeout)
	defer cancel()

	accessToken, _ := security.TokenFromContext(ctx)
	user, err := handler.accounts.CurrentUser(ctx, accessToken)
	if err != nil {
		writeError(writer, request, handler.logger, err)
		return
	}

	writeJSON(writer, http.StatusOK, CurrentUserResponse{User: user})
}

// UpdateCurrentUser godoc
// @Summary Обновление профиля
// @Description Обновляет переданные поля. Старый access-токен блокируется, выдается новая пара. Пример запроса: PATCH /api/v1/me с телом {"email": "new@x.com"}
// @Tags Users
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Param request body model.UserPatch true "Изменяемые поля"
// @Success 200 {object} UpdateProfileResponse "профиль обновлен"
// @Failure 400 {object} ErrorResponse "неверный json, некорректные данные или занятый username/email"
// @Failure 401 {object} ErrorResponse "токен невалиден или отозван"
// @Security ApiKeyAuth
// @Router /me [patch]
func (handler *UserHandler) UpdateCurrentUser(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), handler.requestTimeout)
	defer cancel()

	var patch model.UserPatch
	if err := json.NewDecoder(request.Body).Decode(&patch); err != nil {
		writeJSON(writer, http.StatusBadRequest, ErrorResponse{Detail: "неверный json"})
		return
	}

	accessToken, _ := security.TokenFromContext(ctx)
	update, err := handler.accounts.UpdateProfile(ctx, accessToken, patch)
	if err != nil {
		writeError(writer, request, handler.logger, err)
		return
	}

	writeJSON(writer, http.StatusOK, UpdateProfileResponse{
		Message:      "профиль обновлен, используйте новый access токен",
		User:         update.User,
		AccessToken:  update.Tokens.AccessToken,
		RefreshToken: update.Tokens.RefreshToken,
	})
}
