package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"loud":    slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestLoggerComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentChat, Format: "json", Output: &buf})

	l.Info("hello", FieldConversationID, "u1")
	assert.Contains(t, buf.String(), `"component":"chat"`)
	assert.Contains(t, buf.String(), `"conversation_id":"u1"`)

	buf.Reset()
	l.WithComponent(ComponentNLU).Debug("parsed")
	assert.Contains(t, buf.String(), `"component":"nlu"`)
	assert.NotContains(t, buf.String(), `"component":"chat"`)
}

func TestMiddlewareAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Component: ComponentHTTP, Output: &buf})

	h := Middleware(base, func(r *http.Request) string { return "req-1" })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Info("inside")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Contains(t, buf.String(), "request_id=req-1")
}

func TestLogTurn(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Component: ComponentChat, Output: &buf})

	LogTurn(context.Background(), l, "u1", 1, 2, 0, nil)
	assert.Contains(t, buf.String(), "Turn handled")
	assert.Contains(t, buf.String(), "doable=2")

	buf.Reset()
	LogTurn(context.Background(), l, "u1", 0, 0, 0, errors.New("boom"))
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "error=boom")
}

func TestFromContextFallback(t *testing.T) {
	assert.Equal(t, "unknown", FromContext(context.Background()).Component())
}
