package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/bookstall/internal/queue"
)

type recordingSubmitter struct {
	payloads []queue.ContactMessagePayload
}

func (s *recordingSubmitter) SubmitContactMessage(payload queue.ContactMessagePayload) error {
	s.payloads = append(s.payloads, payload)
	return nil
}

func TestSendContactMessage(t *testing.T) {
	submitter := &recordingSubmitter{}
	svc := NewContactService(submitter)

	if err := svc.SendContactMessage("cornelius", " Cornelius@Example.com", "  Please restock Acts.  "); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if len(submitter.payloads) != 1 {
		t.Fatalf("expected one submitted message, got %d", len(submitter.payloads))
	}
	got := submitter.payloads[0]
	if got.Email != "cornelius@example.com" || got.Message != "Please restock Acts." {
		t.Fatalf("unexpected payload: %+v", got)
	}

	invalid := []struct{ username, email, message string }{
		{"", "a@example.com", "hi"},
		{"cornelius", "a@example.com", "   "},
		{"cornelius", "broken", "hi"},
		{"cornelius", "a@example.com", strings.Repeat("x", contactMessageMaxLength+1)},
	}
	for i, tc := range invalid {
		if err := svc.SendContactMessage(tc.username, tc.email, tc.message); !errors.Is(err, ErrContactInvalid) {
			t.Fatalf("case %d: expected ErrContactInvalid, got %v", i, err)
		}
	}
	if len(submitter.payloads) != 1 {
		t.Fatalf("invalid messages must not be submitted")
	}
}
