// Package notify delivers email notifications through an SMTP relay.
package notify

import (
	"context"
	"fmt"
	"time"

	mail "github.com/wneessen/go-mail"

	"github.com/Sobarinetech/elscalyticsone/internal/config"
	"github.com/Sobarinetech/elscalyticsone/internal/severity"
)

// Notification is the transient payload assembled for one outbound email.
type Notification struct {
	TicketKey string
	Summary   string
	Severity  severity.Level
	Assignee  string
	Link      string
}

// Subject renders the fixed subject template.
func (n Notification) Subject() string {
	return fmt.Sprintf("[Jira Alert] New Ticket Analyzed - %s (%s)", n.TicketKey, n.Severity)
}

// Body renders the fixed plain-text body template.
func (n Notification) Body() string {
	return fmt.Sprintf(`A new Jira ticket has been analyzed:

Ticket ID: %s
Summary: %s
Severity Level: %s
Assigned To: %s

Check the ticket here: %s

- Automated Escalytics System
`, n.TicketKey, n.Summary, n.Severity, n.Assignee, n.Link)
}

// Mailer sends notifications over authenticated SMTP with STARTTLS. One
// delivery attempt per call; no queueing.
type Mailer struct {
	cfg config.SMTPConfig
}

// New creates a Mailer for the given relay.
func New(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// Send composes and delivers one notification. Any relay error is returned,
// never panicked; callers convert it to an operator-facing status string.
func (m *Mailer) Send(ctx context.Context, n Notification) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(m.cfg.To); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	msg.Subject(n.Subject())
	msg.SetBodyString(mail.TypeTextPlain, n.Body())

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(10*time.Second),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
