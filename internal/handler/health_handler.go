package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HealthCheck проверка одной зависимости, например ping Redis или БД
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks  map[string]HealthCheck
	logger  *slog.Logger
	timeout time.Duration
}

func NewHealthHandler(checks map[string]HealthCheck, logger *slog.Logger, timeout time.Duration) *HealthHandler {
	return &HealthHandler{checks: checks, logger: logger, timeout: timeout}
}

// HealthResponse состояние сервиса
// swagger:model
type HealthResponse struct {
	// example: ok
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Health godoc
// @Summary Состояние сервиса
// @Tags Service
// @Produce json
// @Success 200 {object} HealthResponse "сервис доступен"
// @Failure 503 {object} HealthResponse "зависимость недоступна"
// @Router /health [get]
func (handler *HealthHandler) Health(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), handler.timeout)
	defer cancel()

	for name, check := range handler.checks {
		if err := check(ctx); err != nil {
			handler.logger.ErrorContext(ctx, "проверка зависимости не пройдена", "dependency", name, "error", err)
			writeJSON(writer, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Detail: name})
			return
		}
	}

	writeJSON(writer, http.StatusOK, HealthResponse{Status: "ok"})
}
