package handler

import (
	"AuthSessionService/internal/model"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// ErrorResponse тело ответа с ошибкой
// swagger:model
type ErrorResponse struct {
	// example: токен отозван
	Detail string `json:"detail"`
}

// MessageResponse тело ответа с сообщением
// swagger:model
type MessageResponse struct {
	// example: выполнен выход из аккаунта
	Message string `json:"msg"`
}

func writeJSON(writer http.ResponseWriter, status int, body any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	json.NewEncoder(writer).Encode(body)
}

// writeError ошибки токена и учетных данных -> 401 без подробностей, ошибки ввода -> 400, остальное -> 500
func writeError(writer http.ResponseWriter, request *http.Request, logger *slog.Logger, err error) {
	var inputError *model.InputError
	switch {
	case errors.As(err, &inputError):
		writeJSON(writer, http.StatusBadRequest, ErrorResponse{Detail: inputError.Error()})
	case errors.Is(err, model.ErrDuplicateAccount):
		writeJSON(writer, http.StatusBadRequest, ErrorResponse{Detail: model.ErrDuplicateAccount.Error()})
	case errors.Is(err, model.ErrInvalidInput):
		writeJSON(writer, http.StatusBadRequest, ErrorResponse{Detail: model.ErrInvalidInput.Error()})
	case errors.Is(err, model.ErrRevokedToken):
		writeUnauthorized(writer, model.ErrRevokedToken.Error())
	case errors.Is(err, model.ErrInvalidToken), errors.Is(err, model.ErrUserNotFound):
		writeUnauthorized(writer, model.ErrInvalidToken.Error())
	case errors.Is(err, model.ErrInvalidCredentials):
		writeUnauthorized(writer, model.ErrInvalidCredentials.Error())
	case errors.Is(err, model.ErrSessionNotRotated):
		logger.ErrorContext(request.Context(), "профиль сохранен без ротации сессии", "error", err)
		writeJSON(writer, http.StatusInternalServerError, ErrorResponse{Detail: model.ErrSessionNotRotated.Error()})
	default:
		logger.ErrorContext(request.Context(), "ошибка обработки запроса", "path", request.URL.Path, "error", err)
		writeJSON(writer, http.StatusInternalServerError, ErrorResponse{Detail: "внутренняя ошибка сервера"})
	}
}

func writeUnauthorized(writer http.ResponseWriter, detail string) {
	writer.Header().Set("WWW-Authenticate", "Bearer")
	writeJSON(writer, http.StatusUnauthorized, ErrorResponse{Detail: detail})
}
