package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"secrets/internal/domain"

	"github.com/google/uuid"
)

const userColumns = "id, username, password_hash, google_id, github_id, secret, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u                          domain.User
		username, passwordHash     sql.NullString
		googleID, githubID, secret sql.NullString
	)
	err := row.Scan(&u.ID, &username, &passwordHash, &googleID, &githubID, &secret, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Username = username.String
	u.PasswordHash = passwordHash.String
	u.GoogleID = googleID.String
	u.GitHubID = githubID.String
	u.Secret = secret.String
	return &u, nil
}

// GetByID retrieves a user by id.
func (d *DB) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return scanUser(d.sql.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
}

// GetByUsername retrieves a local-auth user by username.
func (d *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return scanUser(d.sql.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = $1", username))
}

// GetByProvider retrieves a user by provider subject id.
func (d *DB) GetByProvider(ctx context.Context, p domain.Provider, subject string) (*domain.User, error) {
	column, err := providerColumn(p)
	if err != nil {
		return nil, err
	}
	return scanUser(d.sql.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM users WHERE %s = $1", userColumns, column), subject))
}

// CreateLocal creates a local-auth user. Returns domain.ErrConflict when
// the username is already taken.
func (d *DB) CreateLocal(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	user, err := scanUser(d.sql.QueryRowContext(ctx,
		"INSERT INTO users (id, username, password_hash, created_at) VALUES ($1, $2, $3, $4) RETURNING "+userColumns,
		uuid.New(), username, passwordHash, time.Now()))
	if isUniqueViolation(err) {
		return nil, domain.ErrConflict
	}
	return user, err
}

// CreateFromProvider creates a user bound only to the given provider
// subject id. Returns domain.ErrConflict when that subject already exists.
func (d *DB) CreateFromProvider(ctx context.Context, p domain.Provider, subject string) (*domain.User, error) {
	column, err := providerColumn(p)
	if err != nil {
		return nil, err
	}
	user, err := scanUser(d.sql.QueryRowContext(ctx,
		fmt.Sprintf("INSERT INTO users (id, %s, created_at) VALUES ($1, $2, $3) RETURNING %s", column, userColumns),
		uuid.New(), subject, time.Now()))
	if isUniqueViolation(err) {
		return nil, domain.ErrConflict
	}
	return user, err
}

// SetSecret updates the secret on a single user record.
func (d *DB) SetSecret(ctx context.Context, id uuid.UUID, secret string) error {
	_, err := d.sql.ExecContext(ctx, "UPDATE users SET secret = $2 WHERE id = $1", id, secret)
	return err
}

// ListWithSecrets returns all users that have submitted a secret, oldest
// first.
func (d *DB) ListWithSecrets(ctx context.Context) ([]domain.User, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE secret IS NOT NULL ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// SessionRepo implements session repository operations on DB.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo wraps a DB as a SessionRepository.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session row keyed by token hash.
func (r *SessionRepo) Create(ctx context.Context, tokenHash string, user domain.SessionUser, expiresAt time.Time) error {
	_, err := r.db.sql.ExecContext(ctx,
		"INSERT INTO sessions (token_hash, user_id, username, expires_at, created_at) VALUES ($1, $2, $3, $4, $5)",
		tokenHash, user.ID, user.Username, expiresAt, time.Now())
	return err
}

// GetByTokenHash retrieves a session by token hash.
func (r *SessionRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	var s domain.Session
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT token_hash, user_id, username, expires_at, created_at FROM sessions WHERE token_hash = $1",
		tokenHash,
	).Scan(&s.TokenHash, &s.UserID, &s.Username, &s.ExpiresAt, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete deletes a session by token hash.
func (r *SessionRepo) Delete(ctx context.Context, tokenHash string) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM sessions WHERE token_hash = $1", tokenHash)
	return err
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < $1", time.Now())
	return err
}
