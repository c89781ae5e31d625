package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vslim/internal/core"
	"vslim/internal/nlu"
	"vslim/internal/session"
)

func TestJSONResponseBuilder(t *testing.T) {
	w := httptest.NewRecorder()
	err := NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Custom", "1").
		Body(map[string]int{"count": 2}).
		Write(w)
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Custom"))
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"count":2}`, w.Body.String())
}

func TestJSONResponseBuilderEncodingFailure(t *testing.T) {
	w := httptest.NewRecorder()
	err := NewJSONResponse().Body(func() {}).Write(w)
	assert.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestErrorFrom(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not found", fmt.Errorf("get: %w", core.ErrExpenseNotFound), http.StatusNotFound, "get: expense not found"},
		{"validation", fmt.Errorf("record 0: %w", core.ErrEmptyDescription), http.StatusBadRequest, "record 0: empty description"},
		{"transport validation", fmt.Errorf("%w: empty body", errValidation), http.StatusBadRequest, "invalid request: empty body"},
		{"conversation", session.ErrInvalidConversation, http.StatusBadRequest, "conversation id is required"},
		{"timeout", nlu.ErrParseTimeout, http.StatusGatewayTimeout, "Gateway Timeout"},
		{"extraction", nlu.ErrParseFailed, http.StatusBadGateway, "Bad Gateway"},
		{"other", errors.New("sql: database is locked"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			require.NoError(t, ErrorFrom(tt.err).Write(w))
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tt.wantMsg), w.Body.String())
		})
	}
}
