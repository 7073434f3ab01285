package adapthttp

import (
	"errors"
	"log"
	"net/http"

	"secrets/internal/app"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.render(w, "home.html", pageData(r))
}

// handleSecrets lists every submitted secret. Deliberately public: the
// wall shows all secrets, not just the caller's, and reading it needs no
// login. Only submitting is gated.
func (s *Server) handleSecrets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	users, err := s.secrets.List(r.Context())
	if err != nil {
		log.Printf("list secrets: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	secrets := make([]string, 0, len(users))
	for _, u := range users {
		secrets = append(secrets, u.Secret)
	}

	data := pageData(r)
	data["Secrets"] = secrets
	s.render(w, "secrets.html", data)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, "submit.html", pageData(r))

	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/submit", http.StatusFound)
			return
		}

		user := currentUser(r)
		err := s.secrets.Submit(r.Context(), user.ID, r.PostFormValue("secret"))
		if errors.Is(err, app.ErrEmptySecret) {
			http.Redirect(w, r, "/submit", http.StatusFound)
			return
		}
		if err != nil {
			log.Printf("submit secret: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, "/secrets", http.StatusFound)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
