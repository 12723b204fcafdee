package notifier

import (
	"AuthSessionService/internal/model"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookNotifier отправляет события безопасности на внешний webhook.
// Пустой URL отключает отправку.
type WebhookNotifier struct {
	webhookURL string
	client     *http.Client
}

func NewWebhookNotifier(webhookURL string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: timeout},
	}
}

func (notifier *WebhookNotifier) Enabled() bool {
	return notifier != nil && notifier.webhookURL != ""
}

func (notifier *WebhookNotifier) Notify(ctx context.Context, event model.SecurityEvent) error {
	if !notifier.Enabled() {
		return nil
	}
	if event.TimeStamp == "" {
		event.TimeStamp = time.Now().UTC().Format(time.RFC3339)
	}

	jsonBody, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("ошибка преобразования в json: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, notifier.webhookURL, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("ошибка создания запроса webhook: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := notifier.client.Do(request)
	if err != nil {
		return fmt.Errorf("ошибка отправки webhook: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("webhook ответил статусом %d", response.StatusCode)
	}

	return nil
}
