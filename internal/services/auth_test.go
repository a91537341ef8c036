package services

import (
	"testing"

	"github.com/haidang/taskhive/backend/internal/utils"
)

func TestRegisterAndLogin(t *testing.T) {
	utils.SetJWTSecret("test-secret")
	db := setupTestDB(t)
	svc := NewAuthService(db, 24)

	resp, err := svc.Register(&RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if resp.Token == "" {
		t.Error("register should issue a token")
	}
	if resp.User.Password == "correct-horse" {
		t.Error("password must be stored hashed")
	}

	// Duplicate email.
	_, err = svc.Register(&RegisterRequest{
		Name:     "Alice Again",
		Email:    "alice@example.com",
		Password: "another-pass",
	})
	wantStatus(t, err, 409)

	login, err := svc.Login(&LoginRequest{Email: "alice@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, err := utils.ParseToken(login.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != resp.User.ID {
		t.Errorf("token user = %d, want %d", claims.UserID, resp.User.ID)
	}
}

func TestLogin_IndistinctFailures(t *testing.T) {
	utils.SetJWTSecret("test-secret")
	db := setupTestDB(t)
	svc := NewAuthService(db, 24)

	svc.Register(&RegisterRequest{Name: "Bob", Email: "bob@example.com", Password: "hunter2xx"})

	_, errWrongPass := svc.Login(&LoginRequest{Email: "bob@example.com", Password: "wrong"})
	_, errNoUser := svc.Login(&LoginRequest{Email: "nobody@example.com", Password: "wrong"})

	wantStatus(t, errWrongPass, 401)
	wantStatus(t, errNoUser, 401)
	if errWrongPass.Error() != errNoUser.Error() {
		t.Errorf("login failures must be indistinguishable: %q vs %q",
			errWrongPass.Error(), errNoUser.Error())
	}
}

func TestLogin_TouchesLastActive(t *testing.T) {
	utils.SetJWTSecret("test-secret")
	db := setupTestDB(t)
	svc := NewAuthService(db, 24)

	resp, err := svc.Register(&RegisterRequest{Name: "Cara", Email: "cara@example.com", Password: "longenough"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	before := resp.User.LastActive

	login, err := svc.Login(&LoginRequest{Email: "cara@example.com", Password: "longenough"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !login.User.LastActive.After(before) && !login.User.LastActive.Equal(before) {
		t.Error("login should touch last_active")
	}

	fetched, err := svc.GetUserByID(resp.User.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if fetched.LastActive.Before(before) {
		t.Error("stored last_active went backwards")
	}
}
