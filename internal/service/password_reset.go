package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/bookstall/internal/cache"
	"github.com/bookstall/internal/config"
	"github.com/bookstall/internal/constants"
	"github.com/bookstall/internal/logger"
	"github.com/bookstall/internal/models"
	"github.com/bookstall/internal/queue"

	"golang.org/x/crypto/bcrypt"
)

// RequestPasswordReset 向已注册邮箱发送找回密码验证码，旧验证码随之作废
func (s *UserAuthService) RequestPasswordReset(email string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if !user.IsActive {
		return ErrUserDisabled
	}

	latest, err := s.codeRepo.GetLatest(normalized, constants.VerifyPurposeReset)
	if err != nil {
		return err
	}
	now := time.Now()
	if latest != nil {
		interval := time.Duration(resolveSendIntervalSeconds(s.cfg.Email.VerifyCode)) * time.Second
		if !latest.SentAt.IsZero() && now.Sub(latest.SentAt) < interval {
			return ErrVerifyCodeTooFrequent
		}
	}

	code, err := randomNumericCode(resolveCodeLength(s.cfg.Email.VerifyCode))
	if err != nil {
		return err
	}
	expireMinutes := resolveExpireMinutes(s.cfg.Email.VerifyCode)
	userID := user.ID
	record := &models.EmailVerifyCode{
		Email:     normalized,
		UserID:    &userID,
		Purpose:   constants.VerifyPurposeReset,
		Code:      code,
		ExpiresAt: now.Add(time.Duration(expireMinutes) * time.Minute),
		SentAt:    now,
		CreatedAt: now,
	}
	if err := s.codeRepo.DeleteByEmail(normalized, constants.VerifyPurposeReset); err != nil {
		return err
	}
	if err := s.codeRepo.Create(record); err != nil {
		return err
	}
	if s.sender == nil {
		return ErrEmailServiceNotConfigured
	}
	if err := s.sender.SendPasswordResetCode(queue.PasswordResetEmailPayload{
		Email:         normalized,
		Username:      user.Username,
		Code:          code,
		ExpireMinutes: expireMinutes,
	}); err != nil {
		// 发送失败时撤销记录，允许用户立即重试
		if delErr := s.codeRepo.DeleteByEmail(normalized, constants.VerifyPurposeReset); delErr != nil {
			logger.Warnw("password_reset_code_rollback_failed", "user_id", user.ID, "error", delErr)
		}
		return err
	}
	logger.Infow("password_reset_code_sent", "user_id", user.ID)
	return nil
}

// ResetPassword 校验验证码后设置新密码
func (s *UserAuthService) ResetPassword(email, code, newPassword string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if err := validatePassword(s.cfg.Security.PasswordMinLength, newPassword); err != nil {
		return err
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if _, err := s.verifyCode(normalized, constants.VerifyPurposeReset, code); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedPassword)
	if err := s.userRepo.Update(user); err != nil {
		return err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	logger.Infow("password_reset_done", "user_id", user.ID)
	return nil
}

func (s *UserAuthService) verifyCode(email, purpose, code string) (*models.EmailVerifyCode, error) {
	record, err := s.codeRepo.GetLatest(email, purpose)
	if err != nil {
		return nil, err
	}
	if record == nil || record.VerifiedAt != nil {
		return nil, ErrVerifyCodeInvalid
	}

	now := time.Now()
	if record.ExpiresAt.Before(now) {
		return nil, ErrVerifyCodeExpired
	}

	maxAttempts := resolveMaxAttempts(s.cfg.Email.VerifyCode)
	if record.AttemptCount >= maxAttempts {
		return nil, ErrVerifyCodeAttemptsExceeded
	}

	if strings.TrimSpace(record.Code) != strings.TrimSpace(code) {
		_ = s.codeRepo.IncrementAttempt(record.ID)
		return nil, ErrVerifyCodeInvalid
	}

	if err := s.codeRepo.MarkVerified(record.ID, now); err != nil {
		return nil, err
	}
	return record, nil
}

func resolveExpireMinutes(cfg config.VerifyCodeConfig) int {
	if cfg.ExpireMinutes <= 0 {
		return 60
	}
	return cfg.ExpireMinutes
}

func resolveSendIntervalSeconds(cfg config.VerifyCodeConfig) int {
	if cfg.SendIntervalSeconds <= 0 {
		return 60
	}
	return cfg.SendIntervalSeconds
}

func resolveMaxAttempts(cfg config.VerifyCodeConfig) int {
	if cfg.MaxAttempts <= 0 {
		return 5
	}
	return cfg.MaxAttempts
}

func resolveCodeLength(cfg config.VerifyCodeConfig) int {
	if cfg.Length < 4 || cfg.Length > 10 {
		return 6
	}
	return cfg.Length
}

func randomNumericCode(length int) (string, error) {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String(), nil
}
