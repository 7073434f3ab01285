// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"net/http"

	"secrets/internal/app"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth    *app.AuthService
	secrets *app.SecretService
	google  *GoogleProvider
	github  *GitHubProvider
	secure  bool
}

// New creates a Server wired to the given application services and OAuth
// providers. secure controls the Secure flag on cookies.
func New(auth *app.AuthService, secrets *app.SecretService, google *GoogleProvider, github *GitHubProvider, secure bool) *Server {
	return &Server{
		auth:    auth,
		secrets: secrets,
		google:  google,
		github:  github,
		secure:  secure,
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	mux.HandleFunc("/", s.handleHome)
	mux.HandleFunc("/register", s.handleRegister)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.requireUser(s.handleLogout))

	mux.HandleFunc("/auth/google", s.handleGoogleLogin)
	mux.HandleFunc("/auth/google/secrets", s.handleGoogleCallback)
	mux.HandleFunc("/auth/github", s.handleGitHubLogin)
	mux.HandleFunc("/auth/github/secrets", s.handleGitHubCallback)

	mux.HandleFunc("/secrets", s.handleSecrets)
	mux.HandleFunc("/submit", s.requireUser(s.handleSubmit))

	return s.loggingMiddleware(s.sessionMiddleware(mux))
}
