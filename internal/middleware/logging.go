// Package middleware holds the HTTP middlewares shared by every route.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mmynk/splitledger/internal/metrics"
)

// RequestLogger logs every request once it has been served: method, route,
// status and duration. 5xx responses are logged as errors and 4xx
// as warnings. When m is non-nil the request is also counted.
func RequestLogger(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			elapsed := time.Since(start)

			attrs := []any{
				"method", r.Method,
				"route", route,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"request_id", chimw.GetReqID(r.Context()),
				"duration_ms", elapsed.Milliseconds(),
			}
			switch {
			case status >= 500:
				slog.Error("HTTP request failed", attrs...)
			case status >= 400:
				slog.Warn("HTTP request rejected", attrs...)
			default:
				slog.Info("HTTP request ok", attrs...)
			}

			if m != nil {
				m.ObserveRequest(r.Method, route, status, elapsed)
			}
		})
	}
}

// routePattern returns the matched chi route, so metrics are not labelled
// with raw IDs.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
