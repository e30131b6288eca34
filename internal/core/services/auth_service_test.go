package services

import (
	"context"
	"errors"
	"testing"

	"lendbridge/internal/adapters/persistence/repositories"
	"lendbridge/internal/config"
	"lendbridge/internal/core/domain"

	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
		OTP: config.OTPConfig{ExpiryMinutes: 5, MaxAttempts: 5},
	}
}

func newAuthService(db *gorm.DB) *AuthService {
	return NewAuthService(
		repositories.NewUserRepository(db),
		repositories.NewRefreshTokenRepository(db),
		repositories.NewTenantRepository(db),
		testConfig(),
	)
}

func TestRegisterAndLogin(t *testing.T) {
	db := openTestDB(t)
	svc := newAuthService(db)

	resp, err := svc.Register(context.Background(), &RegisterInput{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Password: "supersecret1",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if resp.User.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", resp.User.Email)
	}
	if resp.User.Role != domain.RoleCustomer {
		t.Errorf("role = %s, want customer", resp.User.Role)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("tokens not issued on registration")
	}

	login, err := svc.Login(context.Background(), &LoginInput{Email: "alice@example.com", Password: "supersecret1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	claims, err := svc.ValidateAccessToken(login.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if claims.UserID != resp.User.ID {
		t.Errorf("claims user = %s, want %s", claims.UserID, resp.User.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := openTestDB(t)
	svc := newAuthService(db)

	input := &RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "supersecret1"}
	if _, err := svc.Register(context.Background(), input); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), input); !errors.Is(err, domain.ErrUserAlreadyExists) {
		t.Errorf("expected duplicate user error, got %v", err)
	}
}

func TestRegisterWeakPassword(t *testing.T) {
	db := openTestDB(t)
	svc := newAuthService(db)

	_, err := svc.Register(context.Background(), &RegisterInput{Name: "Carol", Email: "carol@example.com", Password: "short"})
	if !errors.Is(err, ErrWeakPassword) {
		t.Errorf("expected weak password error, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db := openTestDB(t)
	svc := newAuthService(db)

	if _, err := svc.Register(context.Background(), &RegisterInput{Name: "Dave", Email: "dave@example.com", Password: "supersecret1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Login(context.Background(), &LoginInput{Email: "dave@example.com", Password: "wrong-password"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected invalid credentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), &LoginInput{Email: "nobody@example.com", Password: "whatever12"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected invalid credentials, got %v", err)
	}
}

func TestLoginInactiveUser(t *testing.T) {
	db := openTestDB(t)
	svc := newAuthService(db)
	userRepo := repositories.NewUserRepository(db)

	resp, err := svc.Register(context.Background(), &RegisterInput{Name: "Erin", Email: "erin@example.com", Password: "supersecret1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, err := userRepo.GetByID(context.Background(), resp.User.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	user.IsActive = false
	if err := userRepo.Update(context.Background(), user); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if _, err := svc.Login(context.Background(), &LoginInput{Email: "erin@example.com", Password: "supersecret1"}); !errors.Is(err, domain.ErrUserInactive) {
		t.Errorf("expected inactive user error, got %v", err)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	db := openTestDB(t)
	svc := newAuthService(db)

	reg, err := svc.Register(context.Background(), &RegisterInput{Name: "Frank", Email: "frank@example.com", Password: "supersecret1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	refreshed, err := svc.RefreshToken(context.Background(), reg.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if refreshed.RefreshToken == reg.RefreshToken {
		t.Error("refresh token was not rotated")
	}

	// the old token is revoked by the exchange
	if _, err := svc.RefreshToken(context.Background(), reg.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("reusing rotated token: expected revoked, got %v", err)
	}

	// the new one still works
	if _, err := svc.RefreshToken(context.Background(), refreshed.RefreshToken); err != nil {
		t.Errorf("fresh token rejected: %v", err)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	db := openTestDB(t)
	svc := newAuthService(db)

	reg, err := svc.Register(context.Background(), &RegisterInput{Name: "Grace", Email: "grace@example.com", Password: "supersecret1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.Logout(context.Background(), reg.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	if _, err := svc.RefreshToken(context.Background(), reg.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("expected revoked token after logout, got %v", err)
	}
}

func TestRefreshTokenGarbage(t *testing.T) {
	db := openTestDB(t)
	svc := newAuthService(db)

	if _, err := svc.RefreshToken(context.Background(), "not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected invalid token, got %v", err)
	}
}
