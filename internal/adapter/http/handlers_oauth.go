package adapthttp

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"secrets/internal/domain"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GoogleProvider holds the Google auth-code flow configuration. The
// subject id comes from the verified ID token.
type GoogleProvider struct {
	OAuth2   *oauth2.Config
	Verifier *oidc.IDTokenVerifier
}

// NewGoogleProvider builds a GoogleProvider from OIDC discovery. Fails
// when the issuer is unreachable, which is a startup error.
func NewGoogleProvider(ctx context.Context, clientID, clientSecret, redirectURL string) (*GoogleProvider, error) {
	provider, err := oidc.NewProvider(ctx, "https://accounts.google.com")
	if err != nil {
		return nil, fmt.Errorf("google discovery: %w", err)
	}
	return &GoogleProvider{
		OAuth2: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile"},
		},
		Verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// GitHubProvider holds the GitHub auth-code flow configuration. GitHub is
// plain OAuth2, so the subject id comes from the user info endpoint.
type GitHubProvider struct {
	OAuth2 *oauth2.Config

	// UserInfoURL is overridable for tests.
	UserInfoURL string
}

// NewGitHubProvider builds a GitHubProvider.
func NewGitHubProvider(clientID, clientSecret, redirectURL string) *GitHubProvider {
	return &GitHubProvider{
		OAuth2: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     github.Endpoint,
			Scopes:       []string{"user:email"},
		},
		UserInfoURL: "https://api.github.com/user",
	}
}

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	s.redirectToProvider(w, r, s.google.OAuth2)
}

func (s *Server) handleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	s.redirectToProvider(w, r, s.github.OAuth2)
}

func (s *Server) redirectToProvider(w http.ResponseWriter, r *http.Request, cfg *oauth2.Config) {
	state := generateState()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode, // Lax required for cross-site redirect returns
		MaxAge:   300,
	})
	http.Redirect(w, r, cfg.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if !s.checkState(w, r) {
		return
	}

	token, err := s.google.OAuth2.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		log.Printf("google exchange: %v", err)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		log.Print("google callback: no id_token")
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	idToken, err := s.google.Verifier.Verify(r.Context(), rawIDToken)
	if err != nil {
		log.Printf("google verify: %v", err)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	s.reconcileAndLogin(w, r, domain.ProviderGoogle, idToken.Subject)
}

func (s *Server) handleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	if !s.checkState(w, r) {
		return
	}

	token, err := s.github.OAuth2.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		log.Printf("github exchange: %v", err)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	subject, err := s.githubSubject(r.Context(), token)
	if err != nil {
		log.Printf("github user info: %v", err)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	s.reconcileAndLogin(w, r, domain.ProviderGitHub, subject)
}

// checkState validates the anti-forgery state cookie against the callback
// query and clears it. A mismatch aborts the flow back to the login page.
func (s *Server) checkState(w http.ResponseWriter, r *http.Request) bool {
	state, err := r.Cookie(stateCookieName)
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, MaxAge: -1, Path: "/"})
	if err != nil || r.URL.Query().Get("state") != state.Value {
		log.Print("oauth callback: state mismatch")
		http.Redirect(w, r, "/login", http.StatusFound)
		return false
	}
	return true
}

// reconcileAndLogin finds or creates the user for the provider subject id
// and establishes a session.
func (s *Server) reconcileAndLogin(w http.ResponseWriter, r *http.Request, p domain.Provider, subject string) {
	user, err := s.auth.FindOrCreate(r.Context(), p, subject)
	if err != nil {
		log.Printf("%s find-or-create: %v", p, err)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	s.loginAndRedirect(w, r, user, "/secrets")
}

// githubSubject fetches the authenticated user from the GitHub API and
// returns the numeric account id as the provider subject.
func (s *Server) githubSubject(ctx context.Context, token *oauth2.Token) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.github.UserInfoURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github user info: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var info struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return "", err
	}
	if info.ID == 0 {
		return "", fmt.Errorf("github user info: missing id")
	}
	return strconv.FormatInt(info.ID, 10), nil
}

func generateState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
