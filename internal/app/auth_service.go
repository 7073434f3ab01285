// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"

	"secrets/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials indicates that the provided username or password
	// was incorrect. Deliberately the same for both cases.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUsernameTaken indicates that the requested username already exists.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates that the session has expired.
	ErrSessionExpired = errors.New("session expired")
	// ErrUserNotFound indicates that the user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// SessionTTL is how long a login session stays valid.
const SessionTTL = 24 * time.Hour

// Cost of a bcrypt compare against a hash that belongs to nobody, so
// lookups for unknown usernames take as long as wrong-password ones.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// AuthService handles registration, credential verification, third-party
// identity reconciliation and session management.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	hmacKey  []byte
}

// NewAuthService creates an AuthService. sessionSecret keys the HMAC under
// which session tokens are stored at rest.
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository, sessionSecret string) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		hmacKey:  []byte(sessionSecret),
	}
}

// Register creates a local user with a bcrypt-hashed password. The
// plaintext is never stored.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateLocal(ctx, username, string(hash))
	if errors.Is(err, domain.ErrConflict) {
		// Lost a race with a concurrent registration for the same name.
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies a local username/password pair. Unknown usernames and
// wrong passwords yield the identical error.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil || user == nil || user.PasswordHash == "" {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// FindOrCreate reconciles a provider subject id to a user record:
// returns the existing record for that exact (provider, subject) pair or
// creates one with only that binding set. Idempotent.
func (s *AuthService) FindOrCreate(ctx context.Context, p domain.Provider, subject string) (*domain.User, error) {
	user, err := s.users.GetByProvider(ctx, p, subject)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user, err = s.users.CreateFromProvider(ctx, p, subject)
	if errors.Is(err, domain.ErrConflict) {
		// Concurrent first login for the same subject; fetch the winner.
		return s.users.GetByProvider(ctx, p, subject)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// StartSession stores a new session for the user and returns the bearer
// token. Callers must not respond before this returns, so a session is
// only ever announced after the store write is acknowledged.
func (s *AuthService) StartSession(ctx context.Context, user *domain.User) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	view := domain.SessionUser{ID: user.ID, Username: user.Username}
	expiresAt := time.Now().Add(SessionTTL)
	if err := s.sessions.Create(ctx, s.hashToken(token), view, expiresAt); err != nil {
		return "", err
	}
	return token, nil
}

// SessionUser resolves a session token to the stored identity view.
// Other User fields must be re-fetched from the store when needed.
func (s *AuthService) SessionUser(ctx context.Context, token string) (*domain.SessionUser, error) {
	session, err := s.sessions.GetByTokenHash(ctx, s.hashToken(token))
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if time.Now().After(session.ExpiresAt) {
		_ = s.sessions.Delete(ctx, session.TokenHash)
		return nil, ErrSessionExpired
	}

	return &domain.SessionUser{ID: session.UserID, Username: session.Username}, nil
}

// EndSession invalidates a session.
func (s *AuthService) EndSession(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, s.hashToken(token))
}

// SweepExpired removes expired sessions from the store.
func (s *AuthService) SweepExpired(ctx context.Context) error {
	return s.sessions.DeleteExpired(ctx)
}

// hashToken keys the token under the session secret so a leaked sessions
// table cannot be replayed.
func (s *AuthService) hashToken(token string) string {
	mac := hmac.New(sha256.New, s.hmacKey)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
