package nlu

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

	"vslim/internal/core"
)

func newTestClient(url string, retries int) *Client {
	return NewClient(Config{URL: url, Timeout: time.Second, MaxRetries: retries, BaseBackoff: time.Millisecond}, nil)
}

func TestParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req parseRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "bánh mì 25k", req.Utterance)

		_, _ = w.Write([]byte(`{
			"intents": ["add_expense"],
			"entities": [
				{"key": "description", "text": "bánh mì", "intent": "add_expense"},
				{"key": "amount", "text": "25000", "intent": "add_expense"}
			],
			"confidence": 0.92
		}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL, 0).Parse(context.Background(), "bánh mì 25k")
	require.NoError(t, err)
	assert.Equal(t, []core.Intent{core.IntentAddExpense}, got.Intents)
	require.Len(t, got.Entities, 2)
	assert.Equal(t, core.Entity{Key: "amount", Text: "25000", Intent: core.IntentAddExpense}, got.Entities[1])
	assert.InDelta(t, 0.92, got.Confidence, 1e-9)
}

func TestParseMissingConfidence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"intents": [], "entities": []}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL, 0).Parse(context.Background(), "xin chào")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Confidence)
}

func TestParseRetries(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCalls int32
	}{
		{name: "server error is retried", status: http.StatusBadGateway, wantCalls: 3},
		{name: "client error is not retried", status: http.StatusBadRequest, wantCalls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL, 2).Parse(context.Background(), "x")
			assert.ErrorIs(t, err, ErrParseFailed)
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestParseRecoversAfterRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"intents": ["stat_expense"], "entities": [], "confidence": 0.8}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL, 2).Parse(context.Background(), "thống kê")
	require.NoError(t, err)
	assert.Equal(t, []core.Intent{core.IntentStatExpense}, got.Intents)
}

func TestParseTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, Timeout: 20 * time.Millisecond}, nil)
	_, err := c.Parse(context.Background(), "x")
	assert.ErrorIs(t, err, ErrParseTimeout)
}

func TestParseNotConfigured(t *testing.T) {
	_, err := newTestClient("", 0).Parse(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestParseBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"intents": `))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 0).Parse(context.Background(), "x")
	assert.ErrorIs(t, err, ErrParseFailed)
}
