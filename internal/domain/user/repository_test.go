package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hairtrack/hairtrack-api/internal/domain/user"
	"github.com/hairtrack/hairtrack-api/internal/pkg/database/dbtest"
)

func TestRepositoryCreateAndLookup(t *testing.T) {
	db := dbtest.Open(t)
	repo := user.NewRepository(db)
	ctx := context.Background()

	u := &user.User{
		ID:           uuid.New(),
		Email:        "scalp@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}

	byEmail, err := repo.GetByEmail(ctx, "scalp@example.com")
	if err != nil || byEmail == nil || byEmail.ID != u.ID {
		t.Fatalf("expected user by email, got %v %v", byEmail, err)
	}
	byID, err := repo.GetByID(ctx, u.ID)
	if err != nil || byID == nil || byID.Email != u.Email {
		t.Fatalf("expected user by id, got %v %v", byID, err)
	}

	dup := *u
	dup.ID = uuid.New()
	if err := repo.Create(ctx, &dup); err != user.ErrEmailAlreadyExists {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}

	missing, err := repo.GetByID(ctx, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("expected nil,nil for missing user, got %v %v", missing, err)
	}

	if err := repo.Delete(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, u.ID); err != user.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound on second delete, got %v", err)
	}
}
