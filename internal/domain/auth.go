// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrConflict is returned by repositories when a write violates a
// uniqueness constraint (duplicate username or provider id).
var ErrConflict = errors.New("conflict")

// Provider identifies a third-party identity provider.
type Provider string

// Supported identity providers.
const (
	ProviderGoogle Provider = "google"
	ProviderGitHub Provider = "github"
)

// User represents an account. Exactly one identity binding (Username,
// GoogleID or GitHubID) is set at creation and records are never merged
// across providers: the same subject seen through two providers yields
// two distinct users.
type User struct {
	ID           uuid.UUID
	Username     string // set for local-auth users only, unique when set
	PasswordHash string // set for local-auth users only
	GoogleID     string // provider subject id, unique when set
	GitHubID     string // provider subject id, unique when set
	Secret       string // free text, empty until the user submits one
	CreatedAt    time.Time
}

// SessionUser is the minimal identity stored against a session: enough
// to know who is logged in without refetching the full User record.
type SessionUser struct {
	ID       uuid.UUID
	Username string
}

// Session represents an active login session. Only a keyed hash of the
// bearer token is persisted.
type Session struct {
	TokenHash string
	UserID    uuid.UUID
	Username  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// UserRepository defines the port for user persistence operations.
// Lookups return (nil, nil) when no record matches.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByProvider(ctx context.Context, p Provider, subject string) (*User, error)
	CreateLocal(ctx context.Context, username, passwordHash string) (*User, error)
	CreateFromProvider(ctx context.Context, p Provider, subject string) (*User, error)
	SetSecret(ctx context.Context, id uuid.UUID, secret string) error
	ListWithSecrets(ctx context.Context) ([]User, error)
}

// SessionRepository defines the port for session persistence operations.
type SessionRepository interface {
	Create(ctx context.Context, tokenHash string, user SessionUser, expiresAt time.Time) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context) error
}
