package service

import (
	"errors"
	"testing"

	"github.com/bookstall/internal/config"
	"github.com/bookstall/internal/constants"
)

func TestCaptchaDisabledProviderSkipsVerification(t *testing.T) {
	svc := NewCaptchaService(config.CaptchaConfig{
		Scenes: config.CaptchaSceneConfig{Login: true},
	})
	if svc.IsSceneEnabled(constants.CaptchaSceneLogin) {
		t.Fatalf("scenes must be off when provider is none")
	}
	if err := svc.Verify(constants.CaptchaSceneLogin, CaptchaVerifyPayload{}); err != nil {
		t.Fatalf("verify should pass when disabled, got %v", err)
	}
	if _, err := svc.GenerateImageChallenge(); !errors.Is(err, ErrCaptchaConfigInvalid) {
		t.Fatalf("expected ErrCaptchaConfigInvalid, got %v", err)
	}
	if setting := svc.PublicSetting(); setting.Provider != constants.CaptchaProviderNone {
		t.Fatalf("unexpected provider %q", setting.Provider)
	}
}

func TestCaptchaImageChallengeRoundTrip(t *testing.T) {
	svc := NewCaptchaService(config.CaptchaConfig{
		Provider: " IMAGE ",
		Scenes:   config.CaptchaSceneConfig{Login: true, GuestCheckout: true},
	})
	setting := svc.PublicSetting()
	if !setting.Scenes[constants.CaptchaSceneLogin] || setting.Scenes[constants.CaptchaSceneRegister] {
		t.Fatalf("unexpected scenes: %+v", setting.Scenes)
	}

	challenge, err := svc.GenerateImageChallenge()
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if challenge.CaptchaID == "" || challenge.ImageBase64 == "" {
		t.Fatalf("challenge should carry id and image: %+v", challenge)
	}
	answer := svc.store().Get(challenge.CaptchaID, false)
	if answer == "" {
		t.Fatalf("answer should be stored")
	}

	if err := svc.Verify(constants.CaptchaSceneLogin, CaptchaVerifyPayload{}); !errors.Is(err, ErrCaptchaRequired) {
		t.Fatalf("expected ErrCaptchaRequired, got %v", err)
	}
	if err := svc.Verify(constants.CaptchaSceneRegister, CaptchaVerifyPayload{}); err != nil {
		t.Fatalf("disabled scene should pass, got %v", err)
	}
	if err := svc.Verify(constants.CaptchaSceneLogin, CaptchaVerifyPayload{CaptchaID: challenge.CaptchaID, CaptchaCode: answer}); err != nil {
		t.Fatalf("correct answer rejected: %v", err)
	}
	if err := svc.Verify(constants.CaptchaSceneLogin, CaptchaVerifyPayload{CaptchaID: challenge.CaptchaID, CaptchaCode: answer}); !errors.Is(err, ErrCaptchaInvalid) {
		t.Fatalf("answer must be single use, got %v", err)
	}
}
