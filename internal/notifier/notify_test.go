package notifier

import (
	"AuthSessionService/internal/model"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotify_PostsEvent(t *testing.T) {
	received := make(chan model.SecurityEvent, 1)
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, http.MethodPost, request.Method)
		assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

		var event model.SecurityEvent
		assert.NoError(t, json.NewDecoder(request.Body).Decode(&event))
		received <- event
		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL, time.Second)
	err := notifier.Notify(context.Background(), model.SecurityEvent{
		UserUUID:       "user-uuid",
		RefreshTokenID: "refresh-uuid",
		Event:          model.EventRefreshTokenReuse,
	})
	require.NoError(t, err)

	event := <-received
	assert.Equal(t, "user-uuid", event.UserUUID)
	assert.Equal(t, model.EventRefreshTokenReuse, event.Event)
	assert.NotEmpty(t, event.TimeStamp)
}

func TestNotify_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := NewWebhookNotifier(server.URL, time.Second).Notify(context.Background(), model.SecurityEvent{Event: "x"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestNotify_DisabledWithoutURL(t *testing.T) {
	notifier := NewWebhookNotifier("", time.Second)

	assert.False(t, notifier.Enabled())
	assert.NoError(t, notifier.Notify(context.Background(), model.SecurityEvent{Event: "x"}))
}
