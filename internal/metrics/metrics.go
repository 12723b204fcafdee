// Package metrics счетчики выпуска и отзыва токенов в формате Prometheus.
// Все методы безопасны для nil получателя, чтобы сервисы работали без метрик.
package metrics

import (
	"AuthSessionService/internal/model"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "auth"

const (
	RevokedLogout        = "logout"
	RevokedLogoutAll     = "logout_all"
	RevokedProfileUpdate = "profile_update"
	RevokedRotation      = "rotation"

	RejectedInvalid  = "invalid"
	RejectedRevoked  = "revoked"
	RejectedNoUser   = "user_not_found"
	RejectedWrongUse = "wrong_type"

	LoginSuccess = "success"
	LoginFailure = "failure"
)

type Metrics struct {
	registry        *prometheus.Registry
	tokensIssued    *prometheus.CounterVec
	tokensRevoked   *prometheus.CounterVec
	tokenRejections *prometheus.CounterVec
	logins          *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	metrics := &Metrics{
		registry: registry,
		tokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Количество выпущенных токенов по типу.",
		}, []string{"type"}),
		tokensRevoked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_revoked_total",
			Help:      "Количество отзывов токенов по причине.",
		}, []string{"reason"}),
		tokenRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_rejections_total",
			Help:      "Количество отклоненных токенов по причине.",
		}, []string{"reason"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Попытки входа по результату.",
		}, []string{"result"}),
	}

	registry.MustRegister(
		metrics.tokensIssued,
		metrics.tokensRevoked,
		metrics.tokenRejections,
		metrics.logins,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return metrics
}

func (metrics *Metrics) Handler() http.Handler {
	if metrics == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(metrics.registry, promhttp.HandlerOpts{})
}

func (metrics *Metrics) TokenIssued(tokenType model.TokenType) {
	if metrics == nil {
		return
	}
	metrics.tokensIssued.WithLabelValues(string(tokenType)).Inc()
}

func (metrics *Metrics) TokenRevoked(reason string) {
	if metrics == nil {
		return
	}
	metrics.tokensRevoked.WithLabelValues(reason).Inc()
}

func (metrics *Metrics) TokenRejected(reason string) {
	if metrics == nil {
		return
	}
	metrics.tokenRejections.WithLabelValues(reason).Inc()
}

func (metrics *Metrics) Login(result string) {
	if metrics == nil {
		return
	}
	metrics.logins.WithLabelValues(result).Inc()
}
