package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/unclebandit/mailmerge-backend/internal/controller"
	"github.com/unclebandit/mailmerge-backend/internal/metrics"
)

// TokenParser resolves a session token to the user it was issued for.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// RequireAuth rejects requests without a valid bearer session and stores the
// user ID on the request context.
func RequireAuth(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				unauthorized(w, "Not authorized")
				return
			}

			userID, err := tokens.ParseToken(strings.TrimSpace(token))
			if err != nil || userID == "" {
				unauthorized(w, "Token invalid or expired")
				return
			}

			next.ServeHTTP(w, r.WithContext(controller.WithUserID(r.Context(), userID)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"message":"` + msg + `"}`))
}

// AccessLog logs one line per request and feeds the request metrics.
func AccessLog(logger *zap.Logger, rec *metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			if rec != nil {
				rec.ObserveRequest(r.Method, route, status, elapsed)
			}
			if logger != nil {
				logger.Info("request",
					zap.String("method", r.Method),
					zap.String("route", route),
					zap.Int("status", status),
					zap.Duration("duration", elapsed),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}
		})
	}
}
