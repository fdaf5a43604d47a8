package summarize_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/brief/internal/language"
	"github.com/JaimeStill/brief/internal/summarize"
	"github.com/JaimeStill/brief/pkg/remote"
)

type captured struct {
	path   string
	auth   string
	inputs string
}

func newServer(t *testing.T, status int, response string, got *captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Inputs string `json:"inputs"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		if got != nil {
			got.path = r.URL.Path
			got.auth = r.Header.Get("Authorization")
			got.inputs = body.Inputs
		}

		w.WriteHeader(status)
		io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(srv *httptest.Server) *summarize.Client {
	cfg := &summarize.Config{
		EnglishURL:   srv.URL + "/english",
		EnglishModel: "english-model",
		ArabicURL:    srv.URL + "/arabic",
		ArabicModel:  "arabic-model",
		Token:        "test-token",
	}
	return summarize.New(cfg, srv.Client(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSummarizeSelectsEndpoint(t *testing.T) {
	tests := []struct {
		lang      language.Language
		wantPath  string
		wantModel string
	}{
		{language.English, "/english", "english-model"},
		{language.Arabic, "/arabic", "arabic-model"},
	}

	for _, tt := range tests {
		t.Run(string(tt.lang), func(t *testing.T) {
			var got captured
			srv := newServer(t, http.StatusOK, `[{"summary_text":"short"},{"summary_text":"ignored"}]`, &got)

			result, err := newClient(srv).Summarize(context.Background(), "some text", tt.lang)
			require.NoError(t, err)

			assert.Equal(t, "short", result.Summary)
			assert.Equal(t, tt.wantModel, result.Model)
			assert.Equal(t, tt.wantPath, got.path)
			assert.Equal(t, "Bearer test-token", got.auth)
			assert.Equal(t, "some text", got.inputs)
		})
	}
}

func TestSummarizeTruncatesInput(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `[{"summary_text":"ok"}]`, &got)

	text := strings.Repeat("abcde", 1000)
	_, err := newClient(srv).Summarize(context.Background(), text, language.English)
	require.NoError(t, err)

	assert.Len(t, got.inputs, summarize.MaxInputChars)
	assert.Equal(t, text[:2000], got.inputs)
}

func TestSummarizeTruncatesByCharacter(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `[{"summary_text":"ok"}]`, &got)

	text := strings.Repeat("ب", 5000)
	_, err := newClient(srv).Summarize(context.Background(), text, language.Arabic)
	require.NoError(t, err)

	assert.Equal(t, 2000, len([]rune(got.inputs)))
}

func TestSummarizeFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		response string
		wantErr  error
	}{
		{"server error", http.StatusInternalServerError, `{"error":"overloaded"}`, summarize.ErrSummarization},
		{"unauthorized", http.StatusUnauthorized, ``, summarize.ErrSummarization},
		{"object instead of list", http.StatusOK, `{"summary_text":"x"}`, summarize.ErrUnexpectedResponseShape},
		{"empty list", http.StatusOK, `[]`, summarize.ErrUnexpectedResponseShape},
		{"missing field", http.StatusOK, `[{"generated_text":"x"}]`, summarize.ErrUnexpectedResponseShape},
		{"wrong field type", http.StatusOK, `[{"summary_text":42}]`, summarize.ErrUnexpectedResponseShape},
		{"not json", http.StatusOK, `<html>loading</html>`, summarize.ErrUnexpectedResponseShape},
		{"list inside prose", http.StatusOK, `Model warming up, partial: [{"summary_text":"leaked"}]`, summarize.ErrUnexpectedResponseShape},
		{"fenced list", http.StatusOK, "```json\n[{\"summary_text\":\"fenced\"}]\n```", summarize.ErrUnexpectedResponseShape},
		{"list inside html", http.StatusOK, `<pre>[{"summary_text":"html"}]</pre>`, summarize.ErrUnexpectedResponseShape},
		{"trailing data", http.StatusOK, `[{"summary_text":"a"}] [{"summary_text":"b"}]`, summarize.ErrUnexpectedResponseShape},
		{"oversized body", http.StatusOK, `[{"summary_text":"` + strings.Repeat("x", 2<<20) + `"}]`, remote.ErrResponseTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, tt.status, tt.response, nil)

			result, err := newClient(srv).Summarize(context.Background(), "text", language.English)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSummarizeAllowsSurroundingWhitespace(t *testing.T) {
	srv := newServer(t, http.StatusOK, "\n  [{\"summary_text\":\"ok\"}]\n", nil)

	result, err := newClient(srv).Summarize(context.Background(), "text", language.English)
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Summary)
}

func TestSummarizeResponseLimit(t *testing.T) {
	srv := newServer(t, http.StatusOK, `[{"summary_text":"`+strings.Repeat("x", 2048)+`"}]`, nil)

	cfg := &summarize.Config{
		EnglishURL:      srv.URL + "/english",
		ArabicURL:       srv.URL + "/arabic",
		Token:           "test-token",
		MaxResponseSize: "1KB",
	}
	client := summarize.New(cfg, srv.Client(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := client.Summarize(context.Background(), "text", language.English)
	assert.ErrorIs(t, err, summarize.ErrSummarization)
	assert.ErrorIs(t, err, remote.ErrResponseTooLarge)
}

func TestSummarizeTransportFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	client := newClient(srv)
	srv.Close()

	_, err := client.Summarize(context.Background(), "text", language.English)
	assert.ErrorIs(t, err, summarize.ErrSummarization)
	assert.Zero(t, calls.Load())
}

func TestSummarizeUnsupportedLanguage(t *testing.T) {
	srv := newServer(t, http.StatusOK, `[{"summary_text":"x"}]`, nil)

	_, err := newClient(srv).Summarize(context.Background(), "text", language.Language("french"))
	assert.ErrorIs(t, err, summarize.ErrSummarization)
	assert.ErrorIs(t, err, summarize.ErrUnsupportedLanguage)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 3, "hel"},
		{"hello", 0, ""},
		{"مرحبا", 2, "مر"},
		{"", 4, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, summarize.Truncate(tt.in, tt.n))
	}
}
