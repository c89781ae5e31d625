package http

import (
	"context"
	"net/http"
	"time"

	"vslim/internal/core"
	"vslim/internal/resolve"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}))
}

// handleReady pings every registered dependency.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]string, len(s.readiness))
	for name, dep := range s.readiness {
		if err := dep.Ping(ctx); err != nil {
			checks[name] = "failed: " + err.Error()
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	s.respond(w, r, NewJSONResponse().Status(httpStatus).Body(map[string]any{
		"status": status,
		"checks": checks,
	}))
}

// handleTestDate exposes the date range resolver. Unresolvable text
// yields null.
func (s *Server) handleTestDate(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "test_date", err)
		return
	}

	span, ok := resolve.RangeAt(req.Text, s.today())
	if !ok {
		s.respond(w, r, NewJSONResponse().Body(nil))
		return
	}
	s.respond(w, r, NewJSONResponse().Body(span))
}

// handleTestPrice exposes the amount resolver. Unresolvable text yields
// null.
func (s *Server) handleTestPrice(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "test_price", err)
		return
	}

	amount, ok := resolve.Amount(req.Text)
	if !ok {
		s.respond(w, r, NewJSONResponse().Body(nil))
		return
	}
	s.respond(w, r, NewJSONResponse().Body(core.Money(amount)))
}
