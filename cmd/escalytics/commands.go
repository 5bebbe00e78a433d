package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Sobarinetech/elscalyticsone/internal/analyzer"
	"github.com/Sobarinetech/elscalyticsone/internal/config"
	"github.com/Sobarinetech/elscalyticsone/internal/notify"
	"github.com/Sobarinetech/elscalyticsone/internal/pipeline"
	"github.com/Sobarinetech/elscalyticsone/internal/store"
	"github.com/Sobarinetech/elscalyticsone/internal/ticket"
	"github.com/Sobarinetech/elscalyticsone/internal/tui"
)

// buildRunner validates config and wires the pipeline's collaborators.
// The returned cleanup closes the analyzer client and the history store.
func buildRunner(ctx context.Context) (*pipeline.Runner, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	tracker, err := ticket.New(cfg.Tracker)
	if err != nil {
		return nil, nil, err
	}

	analysis, err := analyzer.New(ctx, cfg.AI)
	if err != nil {
		return nil, nil, err
	}

	var recorder pipeline.Recorder
	var st *store.Store
	if cfg.Store.Database != "" {
		st, err = store.New(cfg.Store.Database)
		if err != nil {
			// History is a convenience; a broken store should not stop a run.
			slog.Warn("run history disabled", "error", err)
		} else {
			recorder = st
		}
	}

	cleanup := func() {
		analysis.Close()
		if st != nil {
			st.Close()
		}
	}

	runner := pipeline.New(tracker, analysis, notify.New(cfg.SMTP), recorder, cfg.Assign.DefaultAssignee)
	return runner, cleanup, nil
}

func runAnalyze(ctx context.Context, asJSON bool, opts pipeline.Options) error {
	runner, cleanup, err := buildRunner(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := runner.Run(ctx, opts)
	if err != nil {
		return err
	}

	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(reportToJSON(report))
	}

	printReport(report)
	return nil
}

func runDashboard(cmd *cobra.Command, args []string) error {
	runner, cleanup, err := buildRunner(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	model := tui.New(func(ctx context.Context) (*pipeline.Report, error) {
		return runner.Run(ctx, pipeline.Options{})
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func runHistory(limit int) error {
	if cfg.Store.Database == "" {
		return fmt.Errorf("run history is disabled (store.database is empty)")
	}

	st, err := store.New(cfg.Store.Database)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TICKET\tSEVERITY\tASSIGNMENT\tEMAIL\tDATE")
	fmt.Fprintln(w, "------\t--------\t----------\t-----\t----")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.TicketKey, r.Severity, r.AssignmentStatus, r.EmailStatus,
			r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runConfigInit() error {
	path := config.DefaultConfigPath()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}

	starter := config.DefaultConfig()
	starter.Tracker.BaseURL = "https://your-site.atlassian.net"
	starter.Tracker.Email = "you@example.com"
	starter.Tracker.APIToken = "${JIRA_API_TOKEN}"
	starter.Tracker.ProjectKey = "PROJ"
	starter.AI.APIKey = "${GEMINI_API_KEY}"
	starter.Assign.DefaultAssignee = "responsible_person@example.com"
	starter.SMTP.Host = "smtp.example.com"
	starter.SMTP.Username = "${SMTP_USERNAME}"
	starter.SMTP.Password = "${SMTP_PASSWORD}"
	starter.SMTP.From = "notifications@example.com"
	starter.SMTP.To = "team@example.com"

	if err := starter.Save(path); err != nil {
		return err
	}
	fmt.Printf("Wrote starter config to %s\n", path)
	return nil
}

func runConfigShow() error {
	shown := *cfg
	shown.Tracker.APIToken = config.MaskSecret(shown.Tracker.APIToken)
	shown.AI.APIKey = config.MaskSecret(shown.AI.APIKey)
	shown.SMTP.Password = config.MaskSecret(shown.SMTP.Password)
	shown.Log.SentryDSN = config.MaskSecret(shown.Log.SentryDSN)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "tracker.base_url\t%s\n", shown.Tracker.BaseURL)
	fmt.Fprintf(w, "tracker.email\t%s\n", shown.Tracker.Email)
	fmt.Fprintf(w, "tracker.api_token\t%s\n", shown.Tracker.APIToken)
	fmt.Fprintf(w, "tracker.project_key\t%s\n", shown.Tracker.ProjectKey)
	fmt.Fprintf(w, "tracker.transport\t%s\n", shown.Tracker.Transport)
	fmt.Fprintf(w, "ai.model\t%s\n", shown.AI.Model)
	fmt.Fprintf(w, "ai.api_key\t%s\n", shown.AI.APIKey)
	fmt.Fprintf(w, "ai.excerpt_cap\t%d\n", shown.AI.ExcerptCap)
	fmt.Fprintf(w, "ai.cache_ttl\t%s\n", shown.AI.CacheTTL)
	fmt.Fprintf(w, "assign.default_assignee\t%s\n", shown.Assign.DefaultAssignee)
	fmt.Fprintf(w, "smtp.host\t%s:%d\n", shown.SMTP.Host, shown.SMTP.Port)
	fmt.Fprintf(w, "smtp.from\t%s\n", shown.SMTP.From)
	fmt.Fprintf(w, "smtp.to\t%s\n", shown.SMTP.To)
	fmt.Fprintf(w, "store.database\t%s\n", shown.Store.Database)
	return w.Flush()
}

// reportJSON is the stable shape emitted by --json.
type reportJSON struct {
	Found            bool   `json:"found"`
	TicketKey        string `json:"ticket_key,omitempty"`
	Summary          string `json:"summary,omitempty"`
	Severity         string `json:"severity,omitempty"`
	Analysis         string `json:"analysis,omitempty"`
	AnalysisCached   bool   `json:"analysis_cached,omitempty"`
	AssignmentStatus string `json:"assignment_status,omitempty"`
	CommentStatus    string `json:"comment_status,omitempty"`
	EmailStatus      string `json:"email_status,omitempty"`
	RunID            string `json:"run_id,omitempty"`
}

func reportToJSON(r *pipeline.Report) reportJSON {
	out := reportJSON{Found: r.Found}
	if !r.Found {
		return out
	}
	out.TicketKey = r.Ticket.Key
	out.Summary = r.Ticket.Summary
	out.Severity = string(r.Severity)
	out.Analysis = r.Analysis.Text
	out.AnalysisCached = r.Analysis.Cached
	out.AssignmentStatus = r.AssignmentStatus
	out.CommentStatus = r.CommentStatus
	out.EmailStatus = r.EmailStatus
	out.RunID = r.RunID
	return out
}
