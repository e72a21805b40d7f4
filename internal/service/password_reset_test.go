package service

import (
	"errors"
	"testing"
	"time"

	"github.com/bookstall/internal/config"
	"github.com/bookstall/internal/constants"
	"github.com/bookstall/internal/models"
	"github.com/bookstall/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

func newResetAuthService(env *serviceTestEnv, mailer *fakeMailer) *UserAuthService {
	cfg := &config.Config{
		UserJWT:  config.JWTConfig{SecretKey: "test-secret", ExpireHours: 2},
		Security: config.SecurityConfig{PasswordMinLength: 8},
		Email: config.EmailConfig{VerifyCode: config.VerifyCodeConfig{
			ExpireMinutes:       60,
			SendIntervalSeconds: 60,
			MaxAttempts:         3,
			Length:              6,
		}},
	}
	notifications := NewNotificationService(&fakeNotificationQueue{}, mailer, env.userRepo, NotificationOptions{})
	return NewUserAuthService(cfg, env.userRepo, repository.NewEmailVerifyCodeRepository(env.db), notifications)
}

// backdateResetCodes 让发送间隔限制失效
func backdateResetCodes(t *testing.T, env *serviceTestEnv, email string) {
	t.Helper()
	if err := env.db.Model(&models.EmailVerifyCode{}).
		Where("email = ?", email).
		Update("sent_at", time.Now().Add(-2*time.Minute)).Error; err != nil {
		t.Fatalf("backdate codes failed: %v", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	env := setupServiceTest(t)
	mailer := &fakeMailer{}
	auth := newResetAuthService(env, mailer)
	user := env.seedUser(t, "priscilla", constants.RoleBuyer)

	if err := auth.RequestPasswordReset(" Priscilla@Example.com "); err != nil {
		t.Fatalf("request reset failed: %v", err)
	}
	if len(mailer.resets) != 1 {
		t.Fatalf("expected one reset email, got %d", len(mailer.resets))
	}
	sent := mailer.resets[0]
	if sent.Email != "priscilla@example.com" || len(sent.Code) != 6 || sent.ExpireMinutes != 60 {
		t.Fatalf("unexpected reset payload: %+v", sent)
	}

	if err := auth.ResetPassword(user.Email, "not-it", "tentmaker1"); !errors.Is(err, ErrVerifyCodeInvalid) {
		t.Fatalf("expected ErrVerifyCodeInvalid, got %v", err)
	}
	if err := auth.ResetPassword(user.Email, sent.Code, "short"); err == nil {
		t.Fatalf("short password should be rejected")
	}
	if err := auth.ResetPassword(user.Email, sent.Code, "tentmaker1"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	reloaded, err := env.userRepo.GetByID(user.ID)
	if err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(reloaded.PasswordHash), []byte("tentmaker1")) != nil {
		t.Fatalf("password hash was not replaced")
	}
	if _, _, _, err := auth.Login("priscilla", "tentmaker1"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}

	if err := auth.ResetPassword(user.Email, sent.Code, "tentmaker2"); !errors.Is(err, ErrVerifyCodeInvalid) {
		t.Fatalf("used code must not be accepted again, got %v", err)
	}
}

func TestRequestPasswordResetRules(t *testing.T) {
	env := setupServiceTest(t)
	mailer := &fakeMailer{}
	auth := newResetAuthService(env, mailer)
	user := env.seedUser(t, "aquila", constants.RoleBuyer)

	if err := auth.RequestPasswordReset("nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown email should be rejected, got %v", err)
	}
	if err := auth.RequestPasswordReset("not-an-email"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}

	if err := auth.RequestPasswordReset(user.Email); err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	if err := auth.RequestPasswordReset(user.Email); !errors.Is(err, ErrVerifyCodeTooFrequent) {
		t.Fatalf("expected ErrVerifyCodeTooFrequent, got %v", err)
	}

	backdateResetCodes(t, env, user.Email)
	if err := auth.RequestPasswordReset(user.Email); err != nil {
		t.Fatalf("second request failed: %v", err)
	}
	var count int64
	env.db.Model(&models.EmailVerifyCode{}).Where("email = ?", user.Email).Count(&count)
	if count != 1 {
		t.Fatalf("old codes should be removed on new request, found %d", count)
	}
	first, second := mailer.resets[0].Code, mailer.resets[1].Code
	if first != second {
		if err := auth.ResetPassword(user.Email, first, "fellowworker1"); !errors.Is(err, ErrVerifyCodeInvalid) {
			t.Fatalf("superseded code must be rejected, got %v", err)
		}
	}
}

func TestRequestPasswordResetRollsBackWhenMailFails(t *testing.T) {
	env := setupServiceTest(t)
	mailer := &fakeMailer{err: ErrEmailServiceDisabled}
	auth := newResetAuthService(env, mailer)
	user := env.seedUser(t, "apollos", constants.RoleBuyer)

	if err := auth.RequestPasswordReset(user.Email); !errors.Is(err, ErrEmailServiceDisabled) {
		t.Fatalf("expected ErrEmailServiceDisabled, got %v", err)
	}
	var count int64
	env.db.Model(&models.EmailVerifyCode{}).Where("email = ?", user.Email).Count(&count)
	if count != 0 {
		t.Fatalf("failed send should not leave a code behind, found %d", count)
	}

	mailer.err = nil
	if err := auth.RequestPasswordReset(user.Email); err != nil {
		t.Fatalf("retry after failed send should not be throttled, got %v", err)
	}
}

func TestResetPasswordCodeLimits(t *testing.T) {
	env := setupServiceTest(t)
	mailer := &fakeMailer{}
	auth := newResetAuthService(env, mailer)
	user := env.seedUser(t, "tychicus", constants.RoleBuyer)

	if err := auth.RequestPasswordReset(user.Email); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	code := mailer.resets[0].Code
	for i := 0; i < 3; i++ {
		if err := auth.ResetPassword(user.Email, "000000x", "beloved1234"); !errors.Is(err, ErrVerifyCodeInvalid) {
			t.Fatalf("attempt %d: expected ErrVerifyCodeInvalid, got %v", i, err)
		}
	}
	if err := auth.ResetPassword(user.Email, code, "beloved1234"); !errors.Is(err, ErrVerifyCodeAttemptsExceeded) {
		t.Fatalf("expected ErrVerifyCodeAttemptsExceeded, got %v", err)
	}

	backdateResetCodes(t, env, user.Email)
	if err := auth.RequestPasswordReset(user.Email); err != nil {
		t.Fatalf("new request failed: %v", err)
	}
	if err := env.db.Model(&models.EmailVerifyCode{}).
		Where("email = ?", user.Email).
		Update("expires_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("expire code failed: %v", err)
	}
	if err := auth.ResetPassword(user.Email, mailer.resets[1].Code, "beloved1234"); !errors.Is(err, ErrVerifyCodeExpired) {
		t.Fatalf("expected ErrVerifyCodeExpired, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	env := setupServiceTest(t)
	auth := newTestAuthService(env)
	user := env.seedUser(t, "lois", constants.RoleBuyer)
	other := env.seedUser(t, "eunice", constants.RoleBuyer)

	updated, err := auth.UpdateProfile(user.ID, ProfileInput{
		FirstName: " Lois ",
		LastName:  "Grand",
		Email:     " LOIS.New@Example.com",
		Phone:     "+1 555 0100",
	})
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.FirstName != "Lois" || updated.LastName != "Grand" || updated.Email != "lois.new@example.com" || updated.Phone != "+1 555 0100" {
		t.Fatalf("unexpected profile: %+v", updated)
	}
	if updated.Username != "lois" {
		t.Fatalf("username must not change, got %q", updated.Username)
	}

	if _, err := auth.UpdateProfile(user.ID, ProfileInput{Email: other.Email}); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
	if _, err := auth.UpdateProfile(user.ID, ProfileInput{Email: "lois.new@example.com", FirstName: "Lois"}); err != nil {
		t.Fatalf("keeping own email should succeed, got %v", err)
	}
	if _, err := auth.UpdateProfile(user.ID, ProfileInput{Email: "broken"}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := auth.UpdateProfile(user.ID, ProfileInput{Email: "lois.new@example.com", Phone: "0123456789012345678901234567890123"}); !errors.Is(err, ErrProfileInvalid) {
		t.Fatalf("expected ErrProfileInvalid for long phone, got %v", err)
	}
	if _, err := auth.UpdateProfile(9999, ProfileInput{Email: "ghost@example.com"}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
