package app

import (
	"context"
	"errors"
	"strings"

	"secrets/internal/domain"

	"github.com/google/uuid"
)

// ErrEmptySecret indicates that a submitted secret was blank.
var ErrEmptySecret = errors.New("secret must not be empty")

// SecretService encapsulates the secrets-wall use cases.
type SecretService struct {
	users domain.UserRepository
}

// NewSecretService creates a SecretService backed by the given repository.
func NewSecretService(users domain.UserRepository) *SecretService {
	return &SecretService{users: users}
}

// Submit sets the secret on the caller's own record. A single row update;
// only the owning authenticated user ever reaches this path.
func (s *SecretService) Submit(ctx context.Context, userID uuid.UUID, secret string) error {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return ErrEmptySecret
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	return s.users.SetSecret(ctx, user.ID, secret)
}

// List returns every user that has submitted a secret.
func (s *SecretService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.ListWithSecrets(ctx)
}
