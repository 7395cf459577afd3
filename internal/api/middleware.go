package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"energyportal/internal/session"
	"energyportal/pkg/authtoken"
)

// SessionLookup resolves a session id to a live session.
type SessionLookup interface {
	GetActive(ctx context.Context, id string, now time.Time) (*session.Session, error)
}

// SessionAuth verifies the portal bearer token and attaches the backing
// session to the request context.
//
// Expected header:
// - Authorization: Bearer <JWT>
func SessionAuth(signer authtoken.Signer, sessions SessionLookup, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session token")
				return
			}

			now := time.Now()
			claims, err := signer.Verify(strings.TrimSpace(authz[7:]), now)
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid session token")
				return
			}

			s, err := sessions.GetActive(r.Context(), claims.ID, now)
			if err != nil {
				if errors.Is(err, session.ErrNotFound) {
					WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "session expired")
					return
				}
				log.WithError(err).WithField("session_id", claims.ID).Error("session lookup failed")
				WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

// RequireAdmin must run after SessionAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := SessionFromContext(r.Context())
		if s == nil {
			WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
			return
		}
		if !s.IsAdmin() {
			WriteError(w, http.StatusForbidden, "FORBIDDEN", "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs one structured line per request.
func RequestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  middleware.GetReqID(r.Context()),
			}
			entry := log.WithFields(fields)
			switch {
			case status >= 500:
				entry.Error("request failed")
			case status >= 400:
				entry.Warn("request rejected")
			default:
				entry.Info("request handled")
			}
		})
	}
}
