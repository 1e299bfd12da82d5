package store

import (
	"context"
	"errors"
	"testing"

	"github.com/printroom/stockroom/internal/db"
	"github.com/printroom/stockroom/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "clerk1", "hash123", model.RoleClerk)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Role != model.RoleClerk {
		t.Errorf("expected role clerk, got %q", user.Role)
	}

	got, err := GetUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Username != "clerk1" {
		t.Errorf("expected username 'clerk1', got %q", got.Username)
	}

	missing, err := GetUser(ctx, database, 999)
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for missing user, got %v, %v", missing, err)
	}
}

func TestGetUserByUsernameSkipsDeleted(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "alice", "hash", model.RoleAdmin)
	if got, _ := GetUserByUsername(ctx, database, "alice"); got == nil {
		t.Fatal("expected user, got nil")
	}

	if err := DeleteUser(ctx, database, user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if got, _ := GetUserByUsername(ctx, database, "alice"); got != nil {
		t.Error("expected deleted user to be hidden")
	}

	// The name is free again.
	if _, err := CreateUser(ctx, database, "alice", "hash", model.RoleClerk); err != nil {
		t.Errorf("expected to reuse deleted username: %v", err)
	}
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, "bob", "hash", model.RoleClerk)
	if _, err := CreateUser(ctx, database, "bob", "hash", model.RoleClerk); err == nil {
		t.Error("expected duplicate active username to fail")
	}
}

func TestListUsersAndCountAdmins(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, "a", "hash", model.RoleAdmin)
	CreateUser(ctx, database, "b", "hash", model.RoleClerk)

	users, err := ListUsers(ctx, database)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}

	n, err := CountAdmins(ctx, database)
	if err != nil {
		t.Fatalf("CountAdmins: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 admin, got %d", n)
	}
}

func TestUpdateUserPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "pwuser", "oldhash", model.RoleClerk)
	if err := UpdateUserPassword(ctx, database, user.ID, "newhash"); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}

	got, _ := GetUser(ctx, database, user.ID)
	if got.PasswordHash != "newhash" {
		t.Errorf("expected password hash 'newhash', got %q", got.PasswordHash)
	}

	if err := UpdateUserPassword(ctx, database, 999, "x"); !errors.Is(err, model.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound for missing user, got %v", err)
	}
}
