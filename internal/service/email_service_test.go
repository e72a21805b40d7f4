package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/bookstall/internal/config"
	"github.com/bookstall/internal/queue"
)

func sampleNotificationPayload(anonymous bool) queue.OrderNotificationPayload {
	return queue.OrderNotificationPayload{
		OrderID:         12,
		Username:        "mark",
		CustomerName:    "Mark",
		CustomerEmail:   "mark@example.com",
		CustomerPhone:   "555-0100",
		DeliveryAddress: "7 Hill Rd",
		IsAnonymous:     anonymous,
		Lines: []queue.OrderNotificationLine{
			{ProductName: "Psalms", Quantity: 2, UnitPrice: "10.00", TotalPrice: "20.00"},
			{ProductName: "Proverbs", Quantity: 1, UnitPrice: "25.00", TotalPrice: "25.00"},
		},
		Total: "45.00",
	}
}

func TestBuildOrderConfirmationContent(t *testing.T) {
	subject, body := buildOrderConfirmationContent(sampleNotificationPayload(false))
	if subject != "Order Confirmation - Order #12" {
		t.Fatalf("unexpected subject: %s", subject)
	}
	for _, want := range []string{"Dear Mark", "Psalms x 2 @ 10.00 = 20.00", "Total: 45.00", "7 Hill Rd"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body should contain %q, got %s", want, body)
		}
	}
}

func TestBuildOrderAdminAlertSubject(t *testing.T) {
	tests := []struct {
		name      string
		anonymous bool
		username  string
		want      string
	}{
		{name: "registered", username: "mark", want: "New Order #12 from mark"},
		{name: "anonymous", anonymous: true, username: "", want: "New Order #12 from Anonymous"},
		{name: "missing_username", username: " ", want: "New Order #12 from Anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := sampleNotificationPayload(tt.anonymous)
			payload.Username = tt.username
			subject, _ := buildOrderAdminAlertContent(payload)
			if subject != tt.want {
				t.Fatalf("subject = %q, want %q", subject, tt.want)
			}
		})
	}
}

func TestBuildContactMessageContent(t *testing.T) {
	subject, body := buildContactMessageContent(queue.ContactMessagePayload{Username: "ruth", Email: "ruth@example.com", Message: "Do you ship?"})
	if subject != "New Message from ruth" {
		t.Fatalf("unexpected subject: %s", subject)
	}
	if !strings.Contains(body, "Do you ship?") || !strings.Contains(body, "ruth@example.com") {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestBuildPasswordResetContent(t *testing.T) {
	subject, body := buildPasswordResetContent(queue.PasswordResetEmailPayload{Email: "ruth@example.com", Username: "ruth", Code: "482913", ExpireMinutes: 60})
	if subject != "Password Reset Code" {
		t.Fatalf("unexpected subject: %s", subject)
	}
	if !strings.Contains(body, "482913") || !strings.Contains(body, "60 minutes") {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestSendTextEmailGuards(t *testing.T) {
	disabled := NewEmailService(&config.EmailConfig{Enabled: false})
	if err := disabled.SendOrderConfirmation(sampleNotificationPayload(false)); !errors.Is(err, ErrEmailServiceDisabled) {
		t.Fatalf("expected disabled error, got %v", err)
	}
	incomplete := NewEmailService(&config.EmailConfig{Enabled: true})
	if err := incomplete.SendOrderConfirmation(sampleNotificationPayload(false)); !errors.Is(err, ErrEmailServiceNotConfigured) {
		t.Fatalf("expected not configured error, got %v", err)
	}
	configured := NewEmailService(&config.EmailConfig{Enabled: true, Host: "smtp.local", Port: 25, From: "shop@example.com"})
	payload := sampleNotificationPayload(false)
	payload.CustomerEmail = "not-an-email"
	if err := configured.SendOrderConfirmation(payload); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected invalid email error, got %v", err)
	}
}

func TestIsEmailRecipientRejected(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "smtp_550_no_such_recipient",
			err:  errors.New("550 No such recipient here"),
			want: true,
		},
		{
			name: "smtp_user_unknown",
			err:  errors.New("SMTP 5.1.1 user unknown"),
			want: true,
		},
		{
			name: "smtp_550_mailbox_unavailable",
			err:  errors.New("550 mailbox unavailable"),
			want: true,
		},
		{
			name: "network_timeout",
			err:  errors.New("dial tcp timeout"),
			want: false,
		},
		{
			name: "nil_error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isEmailRecipientRejected(tt.err); got != tt.want {
				t.Fatalf("isEmailRecipientRejected() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeEmailSendError(t *testing.T) {
	rejected := errors.New("550 No such recipient here")
	if got := normalizeEmailSendError(rejected); !errors.Is(got, ErrEmailRecipientRejected) {
		t.Fatalf("normalizeEmailSendError() expected ErrEmailRecipientRejected, got %v", got)
	}

	networkErr := errors.New("dial tcp timeout")
	if got := normalizeEmailSendError(networkErr); !errors.Is(got, networkErr) {
		t.Fatalf("normalizeEmailSendError() should keep original error, got %v", got)
	}

	if got := normalizeEmailSendError(nil); got != nil {
		t.Fatalf("normalizeEmailSendError(nil) should be nil, got %v", got)
	}
}
