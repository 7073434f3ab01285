package adapthttp_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	adapthttp "secrets/internal/adapter/http"
	"secrets/internal/adapter/memory"
	"secrets/internal/app"
	"secrets/internal/domain"

	"golang.org/x/oauth2"
)

// stubGitHub fakes GitHub's token and user info endpoints.
func stubGitHub(t *testing.T, subjectID int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"stub-token","token_type":"bearer"}`)
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer stub-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":%d,"login":"octocat"}`, subjectID)
	})
	return httptest.NewServer(mux)
}

func newOAuthTestServer(t *testing.T, stub *httptest.Server) http.Handler {
	t.Helper()
	db := memory.New()
	authSvc := app.NewAuthService(db, memory.NewSessionRepo(db), "test-secret")
	secretSvc := app.NewSecretService(db)

	github := adapthttp.NewGitHubProvider("client-id", "client-secret", "http://example.com/auth/github/secrets")
	github.OAuth2.Endpoint = oauth2.Endpoint{
		AuthURL:  stub.URL + "/login/oauth/authorize",
		TokenURL: stub.URL + "/login/oauth/access_token",
	}
	github.UserInfoURL = stub.URL + "/user"

	return adapthttp.New(authSvc, secretSvc, nil, github, false).Handler()
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestGitHubFlow_LoginRedirect(t *testing.T) {
	stub := stubGitHub(t, 12345)
	defer stub.Close()
	h := newOAuthTestServer(t, stub)

	w := get(t, h, "/auth/github", nil)
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}

	loc, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad redirect location: %v", err)
	}
	if !strings.HasPrefix(loc.String(), stub.URL) {
		t.Errorf("expected redirect to provider, got %q", loc)
	}
	if loc.Query().Get("scope") != "user:email" {
		t.Errorf("expected scope user:email, got %q", loc.Query().Get("scope"))
	}

	state := findCookie(w.Result().Cookies(), "oauth_state")
	if state == nil || state.Value == "" {
		t.Fatal("expected an oauth_state cookie")
	}
	if loc.Query().Get("state") != state.Value {
		t.Error("state in redirect URL and cookie must match")
	}
}

func TestGitHubFlow_CallbackCreatesUserAndSession(t *testing.T) {
	stub := stubGitHub(t, 12345)
	defer stub.Close()
	h := newOAuthTestServer(t, stub)

	begin := get(t, h, "/auth/github", nil)
	state := findCookie(begin.Result().Cookies(), "oauth_state")
	if state == nil {
		t.Fatal("expected an oauth_state cookie")
	}

	cb := get(t, h, "/auth/github/secrets?state="+state.Value+"&code=stub-code", []*http.Cookie{state})
	if cb.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", cb.Code)
	}
	if loc := cb.Header().Get("Location"); loc != "/secrets" {
		t.Fatalf("expected redirect to /secrets, got %q", loc)
	}

	session := findCookie(cb.Result().Cookies(), "session")
	if session == nil || session.Value == "" {
		t.Fatal("expected a session cookie")
	}

	// The session is real: the protected form is reachable.
	if w := get(t, h, "/submit", []*http.Cookie{session}); w.Code != http.StatusOK {
		t.Errorf("expected 200 on /submit, got %d", w.Code)
	}
}

func TestGitHubFlow_CallbackIsIdempotentPerSubject(t *testing.T) {
	stub := stubGitHub(t, 777)
	defer stub.Close()

	db := memory.New()
	authSvc := app.NewAuthService(db, memory.NewSessionRepo(db), "test-secret")
	secretSvc := app.NewSecretService(db)
	github := adapthttp.NewGitHubProvider("client-id", "client-secret", "http://example.com/auth/github/secrets")
	github.OAuth2.Endpoint = oauth2.Endpoint{
		AuthURL:  stub.URL + "/login/oauth/authorize",
		TokenURL: stub.URL + "/login/oauth/access_token",
	}
	github.UserInfoURL = stub.URL + "/user"
	h := adapthttp.New(authSvc, secretSvc, nil, github, false).Handler()

	login := func() {
		begin := get(t, h, "/auth/github", nil)
		state := findCookie(begin.Result().Cookies(), "oauth_state")
		cb := get(t, h, "/auth/github/secrets?state="+state.Value+"&code=c", []*http.Cookie{state})
		if cb.Code != http.StatusFound || cb.Header().Get("Location") != "/secrets" {
			t.Fatalf("callback failed: %d %q", cb.Code, cb.Header().Get("Location"))
		}
	}
	login()
	login()

	user, err := db.GetByProvider(t.Context(), domain.ProviderGitHub, "777")
	if err != nil || user == nil {
		t.Fatalf("expected a github user, got %v %v", user, err)
	}
}

func TestOAuthCallback_StateMismatchRedirectsToLogin(t *testing.T) {
	stub := stubGitHub(t, 1)
	defer stub.Close()
	h := newOAuthTestServer(t, stub)

	// No state cookie at all.
	w := get(t, h, "/auth/github/secrets?state=whatever&code=c", nil)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", w.Code, w.Header().Get("Location"))
	}

	// Cookie present but not matching the query.
	begin := get(t, h, "/auth/github", nil)
	state := findCookie(begin.Result().Cookies(), "oauth_state")
	w = get(t, h, "/auth/github/secrets?state=forged&code=c", []*http.Cookie{state})
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", w.Code, w.Header().Get("Location"))
	}

	// Google shares the same state check.
	w = get(t, h, "/auth/google/secrets?state=whatever&code=c", nil)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", w.Code, w.Header().Get("Location"))
	}
}
