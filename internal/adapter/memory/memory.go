// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"sync"
	"time"

	"secrets/internal/domain"

	"github.com/google/uuid"
)

// DB implements an in-memory database storage.
type DB struct {
	mu       sync.Mutex
	users    []*domain.User
	sessions map[string]*domain.Session
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		sessions: make(map[string]*domain.Session),
	}
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// --- UserRepository ---

// GetByID retrieves a user by id.
func (db *DB) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

// GetByUsername retrieves a local-auth user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username != "" && u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

// GetByProvider retrieves a user by provider subject id.
func (db *DB) GetByProvider(ctx context.Context, p domain.Provider, subject string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if providerID(u, p) != "" && providerID(u, p) == subject {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

// CreateLocal creates a local-auth user.
func (db *DB) CreateLocal(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, domain.ErrConflict
		}
	}

	u := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	db.users = append(db.users, u)
	copied := *u
	return &copied, nil
}

// CreateFromProvider creates a user bound only to a provider subject id.
func (db *DB) CreateFromProvider(ctx context.Context, p domain.Provider, subject string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if providerID(u, p) == subject {
			return nil, domain.ErrConflict
		}
	}

	u := &domain.User{ID: uuid.New(), CreatedAt: time.Now()}
	switch p {
	case domain.ProviderGoogle:
		u.GoogleID = subject
	case domain.ProviderGitHub:
		u.GitHubID = subject
	}
	db.users = append(db.users, u)
	copied := *u
	return &copied, nil
}

// SetSecret updates the secret on a user record.
func (db *DB) SetSecret(ctx context.Context, id uuid.UUID, secret string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			u.Secret = secret
			return nil
		}
	}
	return nil
}

// ListWithSecrets returns users that have submitted a secret, oldest first.
func (db *DB) ListWithSecrets(ctx context.Context) ([]domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.User
	for _, u := range db.users {
		if u.Secret != "" {
			out = append(out, *u)
		}
	}
	return out, nil
}

func providerID(u *domain.User, p domain.Provider) string {
	switch p {
	case domain.ProviderGoogle:
		return u.GoogleID
	case domain.ProviderGitHub:
		return u.GitHubID
	}
	return ""
}

// --- SessionRepository ---

// SessionRepo implements session repository operations on DB.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo wraps a DB as a SessionRepository.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create stores a session keyed by token hash.
func (r *SessionRepo) Create(ctx context.Context, tokenHash string, user domain.SessionUser, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[tokenHash] = &domain.Session{
		TokenHash: tokenHash,
		UserID:    user.ID,
		Username:  user.Username,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

// GetByTokenHash retrieves a session by token hash.
func (r *SessionRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	s, ok := r.db.sessions[tokenHash]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

// Delete deletes a session by token hash.
func (r *SessionRepo) Delete(ctx context.Context, tokenHash string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	delete(r.db.sessions, tokenHash)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := time.Now()
	for tokenHash, s := range r.db.sessions {
		if now.After(s.ExpiresAt) {
			delete(r.db.sessions, tokenHash)
		}
	}
	return nil
}
