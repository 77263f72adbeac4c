package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBrevoSend(t *testing.T) {
	t.Parallel()

	var got brevoPayload
	var gotKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		gotKey = r.Header.Get("api-key")
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	b := &Brevo{
		APIKey:    "test-key",
		FromEmail: "noreply@oursaladish.com",
		FromName:  "Our Saladish",
		Endpoint:  srv.URL,
	}

	err := b.Send(context.Background(), "ann@x.com", "Verify your email", "<p>hi</p>")
	require.NoError(t, err)

	require.Equal(t, "test-key", gotKey)
	require.Equal(t, "noreply@oursaladish.com", got.Sender.Email)
	require.Equal(t, "Our Saladish", got.Sender.Name)
	require.Len(t, got.To, 1)
	require.Equal(t, "ann@x.com", got.To[0].Email)
	require.Equal(t, "Verify your email", got.Subject)
	require.Equal(t, "<p>hi</p>", got.HTMLContent)
}

func TestBrevoSendFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"unauthorized","message":"Key not found"}`))
	}))
	defer srv.Close()

	b := &Brevo{
		APIKey:    "bad-key",
		FromEmail: "noreply@oursaladish.com",
		Endpoint:  srv.URL,
	}

	err := b.Send(context.Background(), "ann@x.com", "subject", "<p>hi</p>")
	require.Error(t, err)

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	require.Equal(t, http.StatusUnauthorized, sendErr.Status)
	require.Contains(t, sendErr.Body, "Key not found")
}

func TestBrevoSendRequiresSender(t *testing.T) {
	t.Parallel()

	b := &Brevo{APIKey: "key"}
	err := b.Send(context.Background(), "ann@x.com", "subject", "body")
	require.Error(t, err)
}
