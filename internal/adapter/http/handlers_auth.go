package adapthttp

import (
	"errors"
	"log"
	"net/http"

	"secrets/internal/app"
	"secrets/internal/domain"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, "register.html", pageData(r))

	case http.MethodPost:
		username, password, ok := loginForm(r)
		if !ok {
			http.Redirect(w, r, "/register", http.StatusFound)
			return
		}

		user, err := s.auth.Register(r.Context(), username, password)
		if errors.Is(err, app.ErrUsernameTaken) {
			http.Redirect(w, r, "/register", http.StatusFound)
			return
		}
		if err != nil {
			log.Printf("register: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		s.loginAndRedirect(w, r, user, "/secrets")

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, "login.html", pageData(r))

	case http.MethodPost:
		username, password, ok := loginForm(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		user, err := s.auth.Login(r.Context(), username, password)
		if errors.Is(err, app.ErrInvalidCredentials) {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		if err != nil {
			log.Printf("login: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		s.loginAndRedirect(w, r, user, "/secrets")

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if err := s.auth.EndSession(r.Context(), cookie.Value); err != nil {
			log.Printf("logout: %v", err)
		}
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// loginAndRedirect establishes a session for the user and redirects. The
// redirect goes out only after the session write is acknowledged.
func (s *Server) loginAndRedirect(w http.ResponseWriter, r *http.Request, user *domain.User, target string) {
	token, err := s.auth.StartSession(r.Context(), user)
	if err != nil {
		log.Printf("start session: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.setSessionCookie(w, token)
	http.Redirect(w, r, target, http.StatusFound)
}

func loginForm(r *http.Request) (username, password string, ok bool) {
	if err := r.ParseForm(); err != nil {
		return "", "", false
	}
	username = r.PostFormValue("username")
	password = r.PostFormValue("password")
	return username, password, username != "" && password != ""
}
