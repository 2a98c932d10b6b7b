package server

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/abishek1718/package-locker/internal/auth"
	"github.com/abishek1718/package-locker/internal/repository"
)

type contextKey string

const sessionKey contextKey = "session"

func sessionFromContext(ctx context.Context) *auth.Session {
	session, _ := ctx.Value(sessionKey).(*auth.Session)
	return session
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// sessionRequired resolves the bearer token into a session and rejects
// the request when there is none.
func (s *Server) sessionRequired(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		session, err := auth.ParseToken(token, s.cfg.JWTSecret)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), sessionKey, session)))
	}
}

// adminRequired additionally checks the session role.
func (s *Server) adminRequired(next http.HandlerFunc) http.HandlerFunc {
	return s.sessionRequired(func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())
		if session == nil || session.Role != repository.RoleAdmin {
			respondError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next(w, r)
	})
}

// cronRequired gates the reminder sweep behind the scheduler secret.
func (s *Server) cronRequired(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		secret := s.cfg.CronSecret
		if secret == "" ||
			subtle.ConstantTimeCompare([]byte(bearerToken(r)), []byte(secret)) != 1 {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r)
	}
}
