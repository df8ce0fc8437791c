package mailer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digo-dashboard/internal/core/config"
)

func newTestAdapter(baseURL string) *SendGridAdapter {
	return NewSendGridAdapter(config.EmailConfig{
		APIKey:    "test-key",
		BaseURL:   baseURL,
		FromEmail: "notificaciones@digo.mx",
		FromName:  "Sistema DIGO",
	})
}

func TestSendGridAdapter_Send(t *testing.T) {
	var captured sgMailSend
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/mail/send", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	adapter := newTestAdapter(srv.URL)
	err := adapter.Send(context.Background(), Message{
		To:      "cliente@example.com",
		Subject: "Envío en Tránsito - ECO-2025-001",
		HTML:    "<p>hola</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	require.Len(t, captured.Personalizations, 1)
	require.Len(t, captured.Personalizations[0].To, 1)
	assert.Equal(t, "cliente@example.com", captured.Personalizations[0].To[0].Email)
	assert.Equal(t, "notificaciones@digo.mx", captured.From.Email)
	assert.Equal(t, "Sistema DIGO", captured.From.Name)
	require.Len(t, captured.Content, 1)
	assert.Equal(t, "text/html", captured.Content[0].Type)
}

func TestSendGridAdapter_Send_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"The provided authorization grant is invalid"}]}`))
	}))
	defer srv.Close()

	adapter := newTestAdapter(srv.URL)
	err := adapter.Send(context.Background(), Message{
		To:      "cliente@example.com",
		Subject: "test",
		HTML:    "<p>hola</p>",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSendFailed)
	assert.Contains(t, err.Error(), "authorization grant")
}

func TestSendGridAdapter_Send_Validation(t *testing.T) {
	adapter := newTestAdapter("http://localhost:1")

	t.Run("missing recipient", func(t *testing.T) {
		err := adapter.Send(context.Background(), Message{Subject: "x", HTML: "y"})
		assert.ErrorIs(t, err, ErrSendFailed)
	})

	t.Run("empty body", func(t *testing.T) {
		err := adapter.Send(context.Background(), Message{To: "a@b.com", Subject: "x"})
		assert.ErrorIs(t, err, ErrSendFailed)
	})
}
