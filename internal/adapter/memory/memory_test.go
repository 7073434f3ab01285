package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"secrets/internal/domain"
)

func TestCreateLocal_Conflict(t *testing.T) {
	ctx := context.Background()
	db := New()

	if _, err := db.CreateLocal(ctx, "alice", "hash"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := db.CreateLocal(ctx, "alice", "other"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCreateFromProvider_SetsOnlyThatBinding(t *testing.T) {
	ctx := context.Background()
	db := New()

	user, err := db.CreateFromProvider(ctx, domain.ProviderGitHub, "777")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.GitHubID != "777" || user.GoogleID != "" || user.Username != "" {
		t.Fatalf("unexpected bindings: %+v", user)
	}

	found, err := db.GetByProvider(ctx, domain.ProviderGitHub, "777")
	if err != nil || found == nil || found.ID != user.ID {
		t.Fatalf("lookup after create: %v %v", found, err)
	}

	// The same subject through the other provider is a different world.
	other, err := db.GetByProvider(ctx, domain.ProviderGoogle, "777")
	if err != nil || other != nil {
		t.Fatalf("expected no google user, got %v %v", other, err)
	}
}

func TestGetReturnsCopies(t *testing.T) {
	ctx := context.Background()
	db := New()

	created, err := db.CreateLocal(ctx, "alice", "hash")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, _ := db.GetByID(ctx, created.ID)
	got.Secret = "mutated from outside"

	again, _ := db.GetByID(ctx, created.ID)
	if again.Secret != "" {
		t.Error("store handed out a shared pointer")
	}
}

func TestSetSecret_AndList(t *testing.T) {
	ctx := context.Background()
	db := New()

	user, err := db.CreateLocal(ctx, "alice", "hash")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := db.CreateLocal(ctx, "bob", "hash"); err != nil {
		t.Fatalf("create bob: %v", err)
	}

	if err := db.SetSecret(ctx, user.ID, "told"); err != nil {
		t.Fatalf("set secret: %v", err)
	}

	users, err := db.ListWithSecrets(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 1 || users[0].Username != "alice" {
		t.Fatalf("unexpected list: %+v", users)
	}
}

func TestSessions_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	db := New()
	repo := NewSessionRepo(db)

	user, err := db.CreateLocal(ctx, "alice", "hash")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	view := domain.SessionUser{ID: user.ID, Username: user.Username}

	if err := repo.Create(ctx, "fresh", view, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("create fresh: %v", err)
	}
	if err := repo.Create(ctx, "stale", view, time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("create stale: %v", err)
	}

	if err := repo.DeleteExpired(ctx); err != nil {
		t.Fatalf("delete expired: %v", err)
	}

	if s, _ := repo.GetByTokenHash(ctx, "stale"); s != nil {
		t.Error("expected stale session to be gone")
	}
	if s, _ := repo.GetByTokenHash(ctx, "fresh"); s == nil {
		t.Error("expected fresh session to survive")
	}
}
