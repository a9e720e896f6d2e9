package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ms-registration/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyPostsFlatJSON(t *testing.T) {
	var got map[string]interface{}
	var contentType, auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, time.Second, logger.Nop())
	amount := 600.0
	err := n.Notify(context.Background(), Payload{
		DeliveryID:       "d-1",
		RegistrationID:   10,
		EventCode:        "COFFEE-2025-0726",
		ParticipantCount: 2,
		PaymentAmount:    600,
		TransferAmount:   &amount,
	})
	require.NoError(t, err)

	assert.Equal(t, "application/json", contentType)
	assert.Empty(t, auth)
	assert.Equal(t, float64(2), got["participant_count"])
	assert.Equal(t, "COFFEE-2025-0726", got["event_code"])
	assert.Equal(t, float64(600), got["transfer_amount"])
}

func TestNotifyNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, time.Second, logger.Nop())
	err := n.Notify(context.Background(), Payload{})
	assert.ErrorContains(t, err, "502")
}

func TestNotifyTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, 20*time.Millisecond, logger.Nop())
	assert.Error(t, n.Notify(context.Background(), Payload{}))
}

func TestDisabledNotifierIsNoop(t *testing.T) {
	n := NewNotifier("", time.Second, logger.Nop())
	assert.False(t, n.Enabled())
	assert.NoError(t, n.Notify(context.Background(), Payload{}))

	var nilNotifier *Notifier
	assert.NoError(t, nilNotifier.Notify(context.Background(), Payload{}))
}
