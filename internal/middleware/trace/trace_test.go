package trace

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "vslim/internal/log"
	"vslim/internal/metrics"
)

func newTestMiddleware(m *metrics.Metrics) *Middleware {
	cfg := applog.DefaultConfig()
	cfg.Output = io.Discard
	return NewMiddleware(func(*http.Request) string { return "198.51.100.1" }, m, applog.New(cfg))
}

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var seen string
	h := newTestMiddleware(nil).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.True(t, strings.HasPrefix(seen, "req_"))
	assert.Equal(t, seen, w.Header().Get(HeaderRequestID))
}

func TestMiddlewareHonorsCallerRequestID(t *testing.T) {
	h := newTestMiddleware(nil).Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.Header.Set(HeaderRequestID, "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
}

func TestMiddlewareObservesRoute(t *testing.T) {
	m := metrics.New()
	h := newTestMiddleware(m).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		SetRoute(r.Context(), "GET /v1/expense/one/{id}")
		w.WriteHeader(http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/expense/one/x", nil))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `route="GET /v1/expense/one/{id}"`)
}

func TestGetRequestIDMissing(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, GetRequestID(r.Context()))
	assert.Empty(t, RequestIDFromRequest(r))
}
