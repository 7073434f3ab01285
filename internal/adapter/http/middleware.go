package adapthttp

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"secrets/internal/app"
	"secrets/internal/domain"
)

type contextKey string

const userContextKey contextKey = "user"

// sessionMiddleware deserializes the session cookie, if any, into the
// request context. A missing or invalid session is not an error: the
// request simply proceeds anonymous.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		user, err := s.auth.SessionUser(r.Context(), cookie.Value)
		if err != nil {
			if !errors.Is(err, app.ErrSessionNotFound) && !errors.Is(err, app.ErrSessionExpired) {
				log.Printf("session lookup: %v", err)
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireUser guards protected routes: anonymous requests are redirected
// to the login page rather than rejected with an error status.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if currentUser(r) == nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next(w, r)
	}
}

// currentUser returns the session identity for the request, or nil when
// anonymous.
func currentUser(r *http.Request) *domain.SessionUser {
	user, _ := r.Context().Value(userContextKey).(*domain.SessionUser)
	return user
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware logs one line per request.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
