package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/Sobarinetech/elscalyticsone/internal/pipeline"
)

// RunFunc executes the pipeline once. Injected so the surface stays
// decoupled from service construction.
type RunFunc func(ctx context.Context) (*pipeline.Report, error)

type state int

const (
	stateIdle state = iota
	stateRunning
	stateDone
	stateEmpty
	stateFailed
)

type (
	reportMsg           *pipeline.Report
	runErrMsg           error
	analysisRenderedMsg string
)

// Model is the "Analyze Latest Ticket" surface: one action, five result
// panels, mirroring the original web page.
type Model struct {
	run RunFunc

	state            state
	spinner          spinner.Model
	report           *pipeline.Report
	analysisRendered string
	err              error
	width            int
}

// New creates the surface model.
func New(run RunFunc) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorAccent)

	return Model{
		run:     run,
		spinner: sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "a", "enter":
			if m.state == stateRunning {
				return m, nil
			}
			m.state = stateRunning
			m.report = nil
			m.analysisRendered = ""
			m.err = nil
			return m, tea.Batch(m.spinner.Tick, m.runPipeline())
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case spinner.TickMsg:
		if m.state == stateRunning {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case reportMsg:
		m.report = msg
		if !m.report.Found {
			m.state = stateEmpty
			return m, nil
		}
		m.state = stateDone
		m.analysisRendered = "Rendering..."
		return m, m.renderAnalysisCmd(m.report.Analysis.Text)

	case runErrMsg:
		m.state = stateFailed
		m.err = msg
		return m, nil

	case analysisRenderedMsg:
		m.analysisRendered = string(msg)
		return m, nil
	}

	return m, nil
}

func (m Model) runPipeline() tea.Cmd {
	return func() tea.Msg {
		report, err := m.run(context.Background())
		if err != nil {
			return runErrMsg(err)
		}
		return reportMsg(report)
	}
}

func (m Model) renderAnalysisCmd(content string) tea.Cmd {
	width := m.width - 6
	if width < 40 {
		width = 40
	}
	return func() tea.Msg {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return analysisRenderedMsg(content)
		}
		out, err := r.Render(content)
		if err != nil {
			return analysisRenderedMsg(content)
		}
		return analysisRenderedMsg(out)
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Escalytics — Jira Ticket Analyzer"))
	b.WriteString("\n")

	switch m.state {
	case stateIdle:
		b.WriteString(styleHelp.Render("Press a to analyze the latest open ticket. q quits."))
		b.WriteString("\n")

	case stateRunning:
		b.WriteString(fmt.Sprintf("%s Fetching and analyzing the latest open ticket...\n", m.spinner.View()))

	case stateEmpty:
		b.WriteString(styleWarning.Render("No new open tickets found."))
		b.WriteString("\n")

	case stateFailed:
		b.WriteString(styleError.Render(fmt.Sprintf("Pipeline failed: %v", m.err)))
		b.WriteString("\n")

	case stateDone:
		b.WriteString(m.resultView())
	}

	b.WriteString("\n")
	b.WriteString(styleHelp.Render("a: analyze · q: quit"))
	return b.String()
}

func (m Model) resultView() string {
	tk := m.report.Ticket

	var b strings.Builder
	b.WriteString(styleBanner.Render(fmt.Sprintf("Analysis posted as a comment on %s!", tk.Key)))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s  %s — %s\n\n",
		severityBadge(m.report.Severity), tk.Key, tk.Summary))

	b.WriteString(stylePanelHeader.Render("Analysis Result"))
	b.WriteString("\n")
	analysis := m.analysisRendered
	if analysis == "" {
		analysis = m.report.Analysis.Text
	}
	b.WriteString(stylePanel.Render(strings.TrimRight(analysis, "\n")))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("Severity Level: %s\n", severityBadge(m.report.Severity)))
	b.WriteString(fmt.Sprintf("Assignment Status: %s\n", m.report.AssignmentStatus))
	b.WriteString(fmt.Sprintf("Comment Status: %s\n", m.report.CommentStatus))
	b.WriteString(fmt.Sprintf("Email Notification: %s\n", m.report.EmailStatus))
	return b.String()
}
