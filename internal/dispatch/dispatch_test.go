package dispatch_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/brief/internal/dispatch"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSend(t *testing.T) {
	var (
		rawQuery  string
		recipient string
		body      map[string]string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		recipient = r.URL.Query().Get("to")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	cfg := &dispatch.Config{URL: srv.URL + "/send?channel=mail"}
	require.NoError(t, cfg.Finalize(nil))

	err := dispatch.New(cfg, srv.Client(), discard()).Send(context.Background(), "a+b@example.com", "the summary")
	require.NoError(t, err)

	assert.Equal(t, "a+b@example.com", recipient)
	assert.Contains(t, rawQuery, "to=a%2Bb%40example.com")
	assert.Contains(t, rawQuery, "channel=mail")
	assert.Equal(t, map[string]string{"message": "the summary"}, body)
}

func TestSendCustomRecipientParam(t *testing.T) {
	var recipient string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recipient = r.URL.Query().Get("email")
	}))
	defer srv.Close()

	cfg := &dispatch.Config{URL: srv.URL, RecipientParam: "email"}
	require.NoError(t, cfg.Finalize(nil))

	require.NoError(t, dispatch.New(cfg, srv.Client(), discard()).Send(context.Background(), "x@y.z", "m"))
	assert.Equal(t, "x@y.z", recipient)
}

func TestSendFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"bad request", http.StatusBadRequest},
		{"server error", http.StatusBadGateway},
		{"redirect status", http.StatusNotModified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			cfg := &dispatch.Config{URL: srv.URL}
			require.NoError(t, cfg.Finalize(nil))

			err := dispatch.New(cfg, srv.Client(), discard()).Send(context.Background(), "a@b.c", "m")
			assert.ErrorIs(t, err, dispatch.ErrDispatch)
			assert.Equal(t, 1, calls, "dispatch must not retry")
		})
	}
}

func TestSendNotConfigured(t *testing.T) {
	cfg := &dispatch.Config{}
	require.NoError(t, cfg.Finalize(nil))
	assert.False(t, cfg.Enabled())

	err := dispatch.New(cfg, nil, discard()).Send(context.Background(), "a@b.c", "m")
	assert.ErrorIs(t, err, dispatch.ErrDispatch)
	assert.ErrorIs(t, err, dispatch.ErrNotConfigured)
}

func TestSendRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	cfg := &dispatch.Config{URL: srv.URL, RatePerMinute: 1}
	require.NoError(t, cfg.Finalize(nil))
	client := dispatch.New(cfg, srv.Client(), discard())

	require.NoError(t, client.Send(context.Background(), "a@b.c", "first"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := client.Send(ctx, "a@b.c", "second")
	assert.ErrorIs(t, err, dispatch.ErrDispatch)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     dispatch.Config
		wantErr bool
	}{
		{"disabled", dispatch.Config{}, false},
		{"valid url", dispatch.Config{URL: "https://relay.example.com/send"}, false},
		{"relative url", dispatch.Config{URL: "/send"}, true},
		{"negative rate", dispatch.Config{URL: "https://relay.example.com", RatePerMinute: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestStatusSettled(t *testing.T) {
	assert.False(t, dispatch.StatusIdle.Settled())
	assert.False(t, dispatch.StatusSending.Settled())
	assert.True(t, dispatch.StatusSent.Settled())
	assert.True(t, dispatch.StatusError.Settled())
}
