package adapthttp

import (
	"encoding/json"
	"net/http"
	"time"

	"secrets/internal/app"
)

const (
	sessionCookieName = "session"
	stateCookieName   = "oauth_state"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		// Lax, not Strict: the OAuth callback is a cross-site redirect
		// and the follow-up navigation must carry the cookie.
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(app.SessionTTL / time.Second),
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
