package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNotification() *PayoutNotification {
	return &PayoutNotification{
		PurchaseID:      10,
		CedenteID:       1,
		CommissionCents: 50_000,
		ReleasedAt:      time.Now().UTC(),
	}
}

func newTestClient(url string) *Client {
	return NewClient(Config{
		URL:        url,
		Timeout:    time.Second,
		MaxRetries: 2,
		RetryDelay: 10 * time.Millisecond,
	})
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Config{URL: "http://localhost:9090"})

	assert.Equal(t, 5*time.Second, client.config.Timeout)
	assert.Equal(t, 3, client.config.MaxRetries)
	assert.Equal(t, 200*time.Millisecond, client.config.RetryDelay)
}

func TestClient_Notify(t *testing.T) {
	t.Run("successful delivery", func(t *testing.T) {
		var received PayoutNotification
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			json.NewEncoder(w).Encode(NotifyResponse{
				NotificationID: "notif-1",
				Accepted:       true,
			})
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		resp, err := client.Notify(context.Background(), testNotification())

		require.NoError(t, err)
		assert.True(t, resp.Accepted)
		assert.Equal(t, "notif-1", resp.NotificationID)
		assert.Equal(t, int64(10), received.PurchaseID)
		assert.Equal(t, int64(50_000), received.CommissionCents)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			json.NewEncoder(w).Encode(NotifyResponse{NotificationID: "notif-2", Accepted: true})
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		resp, err := client.Notify(context.Background(), testNotification())

		require.NoError(t, err)
		assert.True(t, resp.Accepted)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		_, err := client.Notify(context.Background(), testNotification())

		assert.ErrorIs(t, err, ErrWebhookUnavailable)
		// Initial attempt plus MaxRetries.
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("4xx is permanent and not retried", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnprocessableEntity)
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		_, err := client.Notify(context.Background(), testNotification())

		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrWebhookUnavailable)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("canceled context stops the retry loop", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := newTestClient(server.URL)
		_, err := client.Notify(ctx, testNotification())

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestClient_Stats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(NotifyResponse{Accepted: true})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Notify(context.Background(), testNotification())
	require.NoError(t, err)

	total, failed := client.Stats()
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(0), failed)
}
