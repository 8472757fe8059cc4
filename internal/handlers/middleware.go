package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"rentListings/internal/auth"
	"rentListings/internal/metrics"
	"rentListings/internal/models"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const AccessTokenCookie = "access_token"

type contextKey string

const sessionKey contextKey = "session"

// GateMode selects how an unauthenticated request is turned away.
type GateMode int

const (
	// GateAPI answers 401 with a JSON notice.
	GateAPI GateMode = iota
	// GateScreen redirects to the sign-in screen.
	GateScreen
)

func SessionFromContext(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(sessionKey).(models.Session)
	return s, ok
}

func withSession(r *http.Request, s models.Session) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), sessionKey, s))
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// AuthorizationMiddleware admits only requests carrying a live session and
// stores that session in the request context. next never runs otherwise.
func AuthorizationMiddleware(next http.Handler, mode GateMode, authSvc *auth.Service, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := authSvc.Authenticate(r.Context(), bearerToken(r))
		if err != nil {
			if !errors.Is(err, auth.ErrUnauthorized) {
				log.Warn("session lookup failed", zap.Error(err))
			}
			if mode == GateScreen {
				signInRedirect(w, r, noticeSignIn)
				return
			}
			writeError(w, log, auth.ErrUnauthorized)
			return
		}

		next.ServeHTTP(w, withSession(r, session))
	})
}

// OptionalSession attaches the session when the request has one and lets
// anonymous requests through unchanged.
func OptionalSession(next http.Handler, authSvc *auth.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			if session, err := authSvc.Authenticate(r.Context(), token); err == nil {
				r = withSession(r, session)
			}
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// Instrument logs every request, records it in the request metrics and names
// the request span after the matched route template.
func Instrument(log *zap.Logger, m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			route := routeName(r)
			trace.SpanFromContext(r.Context()).SetName(r.Method + " " + route)
			elapsed := time.Since(start)
			m.ObserveRequest(route, r.Method, rec.status, elapsed)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", elapsed),
			)
		})
	}
}

// Recover turns a panicking handler into a 500 response.
func Recover(log *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					if v == http.ErrAbortHandler {
						panic(v)
					}
					log.Error("handler panicked", zap.Any("panic", v), zap.String("path", r.URL.Path), zap.Stack("stack"))
					writeJSON(w, http.StatusInternalServerError, ErrorResponse{Kind: KindBackend, Message: "internal error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
