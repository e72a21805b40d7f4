package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bookstall/internal/config"
	"github.com/bookstall/internal/constants"
	"github.com/bookstall/internal/repository"
)

func newTestAuthService(env *serviceTestEnv) *UserAuthService {
	cfg := &config.Config{
		UserJWT:  config.JWTConfig{SecretKey: "test-secret", ExpireHours: 2},
		Security: config.SecurityConfig{PasswordMinLength: 8},
	}
	return NewUserAuthService(cfg, env.userRepo, repository.NewEmailVerifyCodeRepository(env.db), nil)
}

func TestRegisterAndLogin(t *testing.T) {
	env := setupServiceTest(t)
	auth := newTestAuthService(env)

	user, token, expiresAt, err := auth.Register(RegisterInput{
		Username: "barnabas",
		Email:    " Barnabas@Example.com ",
		Password: "encourage1",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Role != constants.RoleBuyer || user.Email != "barnabas@example.com" || token == "" || expiresAt.IsZero() {
		t.Fatalf("unexpected register result: %+v token=%q", user, token)
	}
	claims, err := auth.ParseUserJWT(token)
	if err != nil || claims.UserID != user.ID || claims.Role != constants.RoleBuyer {
		t.Fatalf("token should carry user id and role, got %+v err=%v", claims, err)
	}

	for _, identifier := range []string{"barnabas", "barnabas@example.com"} {
		if _, _, _, err := auth.Login(identifier, "encourage1"); err != nil {
			t.Fatalf("login with %q failed: %v", identifier, err)
		}
	}
	if _, _, _, err := auth.Login("barnabas", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, _, err := auth.Login("nobody", "encourage1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}

	if _, err := auth.SetUserActive(context.Background(), user.ID, false); err != nil {
		t.Fatalf("disable failed: %v", err)
	}
	if _, _, _, err := auth.Login("barnabas", "encourage1"); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("expected ErrUserDisabled, got %v", err)
	}
	state, err := auth.ResolveAuthState(context.Background(), user.ID)
	if err != nil || state.IsActive {
		t.Fatalf("auth state should reflect disabled user, got %+v err=%v", state, err)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := setupServiceTest(t)
	auth := newTestAuthService(env)
	if _, _, _, err := auth.Register(RegisterInput{Username: "silas", Email: "silas@example.com", Password: "password1"}); err != nil {
		t.Fatalf("seed register failed: %v", err)
	}

	cases := []struct {
		name  string
		input RegisterInput
		want  error
	}{
		{"short password", RegisterInput{Username: "titus", Email: "titus@example.com", Password: "short"}, ErrPasswordTooShort},
		{"bad email", RegisterInput{Username: "titus", Email: "titus", Password: "password1"}, ErrInvalidEmail},
		{"bad username", RegisterInput{Username: "ti", Email: "titus@example.com", Password: "password1"}, ErrRegisterInvalid},
		{"username taken", RegisterInput{Username: "silas", Email: "other@example.com", Password: "password1"}, ErrUsernameExists},
		{"email taken", RegisterInput{Username: "titus", Email: "SILAS@example.com", Password: "password1"}, ErrEmailExists},
	}
	for _, tc := range cases {
		if _, _, _, err := auth.Register(tc.input); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestCreateUserWithRole(t *testing.T) {
	env := setupServiceTest(t)
	auth := newTestAuthService(env)
	admin := env.seedUser(t, "overseer", constants.RoleSuperuser)

	seller, err := auth.CreateUser(RegisterInput{Username: "lydia", Email: "lydia@example.com", Password: "purple-cloth"}, constants.RoleSeller, admin.ID)
	if err != nil {
		t.Fatalf("create seller failed: %v", err)
	}
	if seller.Role != constants.RoleSeller || seller.CreatedBy == nil || *seller.CreatedBy != admin.ID {
		t.Fatalf("unexpected seller: %+v", seller)
	}
	if _, err := auth.CreateUser(RegisterInput{Username: "x-user", Email: "x@example.com", Password: "password1"}, "owner", admin.ID); !errors.Is(err, ErrRoleInvalid) {
		t.Fatalf("expected ErrRoleInvalid, got %v", err)
	}
	sellers, total, err := auth.ListUsers(repository.UserListFilter{Role: constants.RoleSeller})
	if err != nil || total != 1 || sellers[0].ID != seller.ID {
		t.Fatalf("expected one seller, got %d err=%v", total, err)
	}
}

func TestParseUserJWTRejectsForeignToken(t *testing.T) {
	env := setupServiceTest(t)
	auth := newTestAuthService(env)
	user := env.seedUser(t, "demas", constants.RoleBuyer)
	token, _, err := auth.GenerateUserJWT(user)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	other := NewUserAuthService(&config.Config{UserJWT: config.JWTConfig{SecretKey: "another-secret"}}, env.userRepo, nil, nil)
	if _, err := other.ParseUserJWT(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := auth.ParseUserJWT("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
	missing := NewUserAuthService(&config.Config{}, env.userRepo, nil, nil)
	if _, _, err := missing.GenerateUserJWT(user); !errors.Is(err, ErrJWTSecretMissing) {
		t.Fatalf("expected ErrJWTSecretMissing, got %v", err)
	}
}
