package notify

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Sobarinetech/elscalyticsone/internal/config"
	"github.com/Sobarinetech/elscalyticsone/internal/severity"
)

func sampleNotification() Notification {
	return Notification{
		TicketKey: "PROJ-42",
		Summary:   "Login broken",
		Severity:  severity.High,
		Assignee:  "lead@example.com",
		Link:      "https://example.atlassian.net/browse/PROJ-42",
	}
}

func TestSubjectTemplate(t *testing.T) {
	got := sampleNotification().Subject()
	want := "[Jira Alert] New Ticket Analyzed - PROJ-42 (High)"
	if got != want {
		t.Errorf("Subject() = %q, want %q", got, want)
	}
}

func TestBodyTemplate(t *testing.T) {
	body := sampleNotification().Body()
	for _, fragment := range []string{
		"Ticket ID: PROJ-42",
		"Summary: Login broken",
		"Severity Level: High",
		"Assigned To: lead@example.com",
		"https://example.atlassian.net/browse/PROJ-42",
	} {
		if !strings.Contains(body, fragment) {
			t.Errorf("body missing %q:\n%s", fragment, body)
		}
	}
}

func TestSendUnreachableHostReturnsError(t *testing.T) {
	m := New(config.SMTPConfig{
		Host:     "127.0.0.1",
		Port:     1, // nothing listens here
		Username: "user",
		Password: "pass",
		From:     "noreply@example.com",
		To:       "team@example.com",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	// Must return an error, not panic or hang.
	if err := m.Send(ctx, sampleNotification()); err == nil {
		t.Fatal("expected error for unreachable relay")
	}
}

func TestSendRejectsBadAddresses(t *testing.T) {
	m := New(config.SMTPConfig{
		Host: "smtp.example.com",
		Port: 587,
		From: "not-an-address",
		To:   "team@example.com",
	})

	err := m.Send(context.Background(), sampleNotification())
	if err == nil || !strings.Contains(err.Error(), "from address") {
		t.Errorf("expected from-address error, got %v", err)
	}
}
