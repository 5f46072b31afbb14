package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/bkniffler/myranor/internal/platform/requestctx"
	"github.com/bkniffler/myranor/internal/services/game/domain/event"
	"github.com/google/uuid"
)

const (
	// HeaderRequestID carries the request id in and out.
	HeaderRequestID = "X-Request-ID"
	// HeaderUserID names the calling user.
	HeaderUserID = "X-User-Id"
	// HeaderRole is the calling user's role: gm or player.
	HeaderRole = "X-Role"
)

type requestIDKey struct{}

// RequestID injects a request id into the context and response headers.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(HeaderRequestID, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID extracts the request id from context.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestLogger logs each request with slog.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", GetRequestID(r.Context()),
				"user_id", requestctx.UserIDFromContext(r.Context()),
			)
		})
	}
}

// Recovery turns panics into a 500 response.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						"error", rec,
						"stack", string(debug.Stack()),
						"path", r.URL.Path,
						"request_id", GetRequestID(r.Context()),
					)
					RespondJSON(w, http.StatusInternalServerError, errorBody{Code: codeInternal, Message: "internal server error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// JSONContentType sets Content-Type to application/json for all responses.
func JSONContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Identity copies the caller headers into the request context. It does not
// reject anonymous requests; handlers that need an actor call actorFrom.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if userID := strings.TrimSpace(r.Header.Get(HeaderUserID)); userID != "" {
			ctx = requestctx.WithUserID(ctx, userID)
		}
		if role := strings.TrimSpace(r.Header.Get(HeaderRole)); role != "" {
			ctx = requestctx.WithRole(ctx, strings.ToLower(role))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// actorFrom resolves the authenticated actor of a request.
func actorFrom(ctx context.Context) (event.Actor, bool) {
	userID := requestctx.UserIDFromContext(ctx)
	if userID == "" {
		return event.Actor{}, false
	}
	role, err := event.ParseRole(requestctx.RoleFromContext(ctx))
	if err != nil {
		return event.Actor{}, false
	}
	return event.Actor{UserID: userID, Role: role}, true
}

// statusWriter captures the status code written by a handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
