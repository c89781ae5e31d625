package log

import (
	"context"
	"net/http"
)

type contextKey string

const loggerContextKey contextKey = "logger"

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// FromContext extracts the request logger, falling back to the default one.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*Logger); ok {
		return logger
	}
	return New(DefaultConfig()).WithComponent("unknown")
}

// Middleware stores logger, enriched with the request ID, in each request
// context.
func Middleware(logger *Logger, extractRequestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := logger
			if extractRequestID != nil {
				if id := extractRequestID(r); id != "" {
					l = l.With(FieldRequestID, id)
				}
			}
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), l)))
		})
	}
}

// LogTurn records the outcome of one conversation turn.
func LogTurn(ctx context.Context, logger *Logger, conversationID string, pending, doable, incomplete int, err error) {
	fields := NewFields().WithTurn(conversationID, pending, doable, incomplete)
	if err != nil {
		logger.ErrorContext(ctx, "Turn failed", fields.WithError(err).ToSlice()...)
		return
	}
	logger.InfoContext(ctx, "Turn handled", fields.ToSlice()...)
}
