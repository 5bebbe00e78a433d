// Package pipeline orchestrates the ticket analysis and escalation workflow:
// fetch the latest open ticket, classify and analyze it, assign it, comment
// on it, and send a notification email.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Sobarinetech/elscalyticsone/internal/analyzer"
	"github.com/Sobarinetech/elscalyticsone/internal/notify"
	"github.com/Sobarinetech/elscalyticsone/internal/severity"
	"github.com/Sobarinetech/elscalyticsone/internal/store"
	"github.com/Sobarinetech/elscalyticsone/internal/ticket"
)

// AnalysisService produces the AI analysis for ticket text.
type AnalysisService interface {
	Analyze(ctx context.Context, description string) analyzer.Result
}

// Notifier delivers the outbound email notification.
type Notifier interface {
	Send(ctx context.Context, n notify.Notification) error
}

// Recorder persists run history. May be nil when history is disabled.
type Recorder interface {
	RecordRun(r *store.Run) error
}

// Options toggles individual side effects for one run.
type Options struct {
	SkipAssign  bool
	SkipComment bool
	SkipEmail   bool
}

// Report carries every operator-facing outcome of one run. Once a ticket is
// found, all five outcomes are populated even when individual steps degraded
// to error strings.
type Report struct {
	Found  bool
	Ticket *ticket.Ticket

	Severity         severity.Level
	Analysis         analyzer.Result
	AssignmentStatus string
	CommentStatus    string
	EmailStatus      string

	RunID string
}

// Runner wires the pipeline's collaborators together.
type Runner struct {
	tracker  ticket.Tracker
	analyzer AnalysisService
	mailer   Notifier
	recorder Recorder
	assignee string
	log      *slog.Logger
}

// New creates a Runner. recorder may be nil.
func New(tracker ticket.Tracker, analysis AnalysisService, mailer Notifier, recorder Recorder, defaultAssignee string) *Runner {
	return &Runner{
		tracker:  tracker,
		analyzer: analysis,
		mailer:   mailer,
		recorder: recorder,
		assignee: defaultAssignee,
		log:      slog.Default(),
	}
}

const statusSkipped = "Skipped"

// Run executes the pipeline once. At most one ticket is processed; when the
// project has no open tickets the report's Found flag is false and no
// downstream call is made. Per-step failures become status strings on the
// report so that one failing step never blocks its siblings.
func (r *Runner) Run(ctx context.Context, opts Options) (*Report, error) {
	tk, err := r.tracker.LatestOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch latest ticket: %w", err)
	}
	if tk == nil {
		r.log.Info("no open tickets found")
		return &Report{Found: false}, nil
	}

	r.log.Info("analyzing ticket", "key", tk.Key, "summary", tk.Summary)

	report := &Report{
		Found:    true,
		Ticket:   tk,
		Severity: severity.Classify(tk.Description),
	}
	report.Analysis = r.analyzer.Analyze(ctx, tk.Description)
	if report.Analysis.Err != nil {
		r.log.Warn("analysis degraded", "key", tk.Key, "error", report.Analysis.Err)
	}

	if opts.SkipAssign {
		report.AssignmentStatus = statusSkipped
	} else {
		report.AssignmentStatus = r.assign(ctx, tk.Key)
	}

	if opts.SkipComment {
		report.CommentStatus = statusSkipped
	} else {
		report.CommentStatus = r.comment(ctx, tk.Key, report.Analysis.Text, report.Severity)
	}

	if opts.SkipEmail {
		report.EmailStatus = statusSkipped
	} else {
		report.EmailStatus = r.email(ctx, tk, report.Severity)
	}

	r.record(report)
	return report, nil
}

// assign resolves the default assignee's account and assigns the ticket.
// Zero directory matches is a reported status, not an error, and skips the
// assign call entirely.
func (r *Runner) assign(ctx context.Context, key string) string {
	accountID, err := r.tracker.FindUser(ctx, r.assignee)
	if err != nil {
		return fmt.Sprintf("Assignment Error: %v", err)
	}
	if accountID == "" {
		return "No valid user found for assignment"
	}
	if err := r.tracker.Assign(ctx, key, accountID); err != nil {
		return fmt.Sprintf("Assignment Error: %v", err)
	}
	return fmt.Sprintf("Issue assigned to %s", r.assignee)
}

// comment posts the analysis back onto the ticket. Not idempotent: every
// call creates a new comment.
func (r *Runner) comment(ctx context.Context, key, analysis string, sev severity.Level) string {
	body := CommentBody(analysis, sev)
	if err := r.tracker.AddComment(ctx, key, body); err != nil {
		return fmt.Sprintf("Comment Error: %v", err)
	}
	return fmt.Sprintf("Analysis posted as a comment on %s", key)
}

func (r *Runner) email(ctx context.Context, tk *ticket.Ticket, sev severity.Level) string {
	n := notify.Notification{
		TicketKey: tk.Key,
		Summary:   tk.Summary,
		Severity:  sev,
		Assignee:  r.assignee,
		Link:      tk.URL,
	}
	if err := r.mailer.Send(ctx, n); err != nil {
		return fmt.Sprintf("Email Error: %v", err)
	}
	return "Email notification sent!"
}

func (r *Runner) record(report *Report) {
	if r.recorder == nil {
		return
	}

	report.RunID = uuid.NewString()
	run := &store.Run{
		ID:               report.RunID,
		TicketKey:        report.Ticket.Key,
		Summary:          report.Ticket.Summary,
		Severity:         string(report.Severity),
		Analysis:         report.Analysis.Text,
		AnalysisCached:   report.Analysis.Cached,
		AssignmentStatus: report.AssignmentStatus,
		CommentStatus:    report.CommentStatus,
		EmailStatus:      report.EmailStatus,
	}
	if err := r.recorder.RecordRun(run); err != nil {
		r.log.Warn("record run", "error", err)
	}
}

// CommentBody renders the fixed comment template embedding the analysis and
// severity label.
func CommentBody(analysis string, sev severity.Level) string {
	return fmt.Sprintf("*Automated Analysis:*\n%s\n\n*Severity Level:* %s", analysis, sev)
}
