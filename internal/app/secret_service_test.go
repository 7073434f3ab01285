package app

import (
	"context"
	"errors"
	"testing"

	"secrets/internal/adapter/memory"

	"github.com/google/uuid"
)

func TestSubmit_SetsSecretOnOwnRecord(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	svc := NewSecretService(db)

	user, err := db.CreateLocal(ctx, "alice", "hash")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Submit(ctx, user.ID, "hello"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	users, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 1 || users[0].Secret != "hello" {
		t.Fatalf("expected alice with secret %q, got %+v", "hello", users)
	}
}

func TestSubmit_EmptySecretRejected(t *testing.T) {
	ctx := context.Background()
	svc := NewSecretService(memory.New())

	if err := svc.Submit(ctx, uuid.New(), "   "); !errors.Is(err, ErrEmptySecret) {
		t.Fatalf("expected ErrEmptySecret, got %v", err)
	}
}

func TestSubmit_UnknownUser(t *testing.T) {
	ctx := context.Background()
	svc := NewSecretService(memory.New())

	if err := svc.Submit(ctx, uuid.New(), "hello"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestList_ExcludesUsersWithoutSecret(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	svc := NewSecretService(db)

	teller, err := db.CreateLocal(ctx, "teller", "hash")
	if err != nil {
		t.Fatalf("create teller: %v", err)
	}
	if _, err := db.CreateLocal(ctx, "lurker", "hash"); err != nil {
		t.Fatalf("create lurker: %v", err)
	}
	if err := svc.Submit(ctx, teller.ID, "told"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	users, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user with a secret, got %d", len(users))
	}
	if users[0].Username != "teller" {
		t.Errorf("expected teller, got %q", users[0].Username)
	}
}
