package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srvURL string, attempts int) *FalClient {
	return NewFalClient(Config{
		APIKey:      "secret-key",
		BaseURL:     srvURL,
		Model:       "fal-ai/reve/edit",
		WebhookURL:  "https://reve.example/api/fal/webhook?token=t0k",
		MaxAttempts: attempts,
		Timeout:     2 * time.Second,
	}, WithRetryBackoff(time.Millisecond, 5*time.Millisecond))
}

func TestFalClient_Submit(t *testing.T) {
	var got struct {
		path, auth, hook string
		body             editRequest
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		got.auth = r.Header.Get("Authorization")
		got.hook = r.URL.Query().Get("fal_webhook")
		_ = json.NewDecoder(r.Body).Decode(&got.body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"request_id":"req-123","status":"IN_QUEUE"}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL, 3).Submit(context.Background(), SubmitRequest{
		Prompt:        "add rainbow",
		ImageURL:      "https://img/x.png",
		CorrelationID: "17",
	})
	require.NoError(t, err)
	assert.Equal(t, "req-123", res.RequestID)

	assert.Equal(t, "/fal-ai/reve/edit", got.path)
	assert.Equal(t, "Key secret-key", got.auth)
	assert.Equal(t, editRequest{Prompt: "add rainbow", ImageURL: "https://img/x.png", NumImages: 1, OutputFormat: "png"}, got.body)

	hook, err := url.Parse(got.hook)
	require.NoError(t, err)
	assert.Equal(t, "/api/fal/webhook", hook.Path)
	assert.Equal(t, "t0k", hook.Query().Get("token"))
	assert.Equal(t, "17", hook.Query().Get(CorrelationParam))
}

func TestFalClient_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"request_id":"req-after-retry"}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL, 3).Submit(context.Background(), SubmitRequest{Prompt: "p", ImageURL: "i"})
	require.NoError(t, err)
	assert.Equal(t, "req-after-retry", res.RequestID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFalClient_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 2).Submit(context.Background(), SubmitRequest{Prompt: "p", ImageURL: "i"})
	require.Error(t, err)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFalClient_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"image_url is not reachable"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 5).Submit(context.Background(), SubmitRequest{Prompt: "p", ImageURL: "i"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image_url is not reachable")
	assert.Equal(t, int32(1), calls.Load())
}

func TestFalClient_MissingRequestID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 3).Submit(context.Background(), SubmitRequest{Prompt: "p", ImageURL: "i"})
	assert.ErrorContains(t, err, "missing request_id")
}

func TestFalClient_NotConfigured(t *testing.T) {
	_, err := NewFalClient(Config{}).Submit(context.Background(), SubmitRequest{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestWebhookPayload_ImageURL(t *testing.T) {
	var ok WebhookPayload
	require.NoError(t, json.Unmarshal([]byte(`{"request_id":"r","status":"OK","payload":{"images":[{"url":"Y"}]}}`), &ok))
	u, found := ok.ImageURL()
	assert.True(t, found)
	assert.Equal(t, "Y", u)

	var noImages WebhookPayload
	require.NoError(t, json.Unmarshal([]byte(`{"request_id":"r","status":"OK","payload":{"images":[]}}`), &noImages))
	_, found = noImages.ImageURL()
	assert.False(t, found)

	var failed WebhookPayload
	require.NoError(t, json.Unmarshal([]byte(`{"request_id":"r","status":"ERROR","error":"model timeout"}`), &failed))
	_, found = failed.ImageURL()
	assert.False(t, found)
	assert.Equal(t, "model timeout", failed.Error)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("  short \n"))

	// the two-byte rune straddles the limit
	body := strings.Repeat("a", maxErrorBodyLen-1) + "é" + strings.Repeat("b", 10)
	got := truncate(body)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", maxErrorBodyLen-1)+"...", got)

	exact := strings.Repeat("c", maxErrorBodyLen)
	assert.Equal(t, exact, truncate(exact))
}
