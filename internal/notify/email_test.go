package notify

import (
	"context"
	"testing"

	"github.com/careloop/frontdesk/pkg/logging"
)

func TestNewSendGridSenderRequiresAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{FromEmail: "noreply@hospital.com"}, nil)
	if sender != nil {
		t.Fatal("expected nil sender without an API key")
	}
}

func TestStubEmailSenderNeverFails(t *testing.T) {
	sender := NewStubEmailSender(logging.New("error"))
	err := sender.Send(context.Background(), EmailMessage{
		To:      "asha@example.com",
		Subject: "Hospital Appointment Confirmation - OP#abc",
		Body:    "test",
	})
	if err != nil {
		t.Fatalf("stub sender returned error: %v", err)
	}
}

func TestLogCallDialerNeverFails(t *testing.T) {
	dialer := NewLogCallDialer(logging.New("error"))
	if err := dialer.Dial(context.Background(), "+91-9000000001", "reminder"); err != nil {
		t.Fatalf("log dialer returned error: %v", err)
	}
}
