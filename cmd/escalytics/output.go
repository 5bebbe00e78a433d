package main

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/Sobarinetech/elscalyticsone/internal/pipeline"
	"github.com/Sobarinetech/elscalyticsone/internal/severity"
)

const (
	reset = "\033[0m"
	bold  = "\033[1m"
	dim   = "\033[2m"

	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

func colorsEnabled() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("NO_COLOR") == ""
}

func styled(text, code string) string {
	if !colorsEnabled() {
		return text
	}
	return code + text + reset
}

func severityStyled(level severity.Level) string {
	switch level {
	case severity.High:
		return styled(string(level), bold+red)
	case severity.Medium:
		return styled(string(level), bold+yellow)
	default:
		return styled(string(level), bold+green)
	}
}

// printReport writes the five outcomes of a run, or the empty-project banner.
func printReport(r *pipeline.Report) {
	if !r.Found {
		fmt.Println(styled("No new open tickets found.", bold+yellow))
		return
	}

	fmt.Printf("%s %s — %s\n\n",
		styled("Analyzing Ticket:", bold),
		styled(r.Ticket.Key, bold+cyan),
		r.Ticket.Summary)

	fmt.Println(styled("Analysis Result:", bold))
	for _, line := range strings.Split(strings.TrimRight(r.Analysis.Text, "\n"), "\n") {
		fmt.Printf("  %s\n", line)
	}
	if r.Analysis.Cached {
		fmt.Println(styled("  (cached)", dim))
	}
	fmt.Println()

	fmt.Printf("%s %s\n", styled("Severity Level:", bold), severityStyled(r.Severity))
	fmt.Printf("%s %s\n", styled("Assignment Status:", bold), r.AssignmentStatus)
	fmt.Printf("%s %s\n", styled("Comment Status:", bold), r.CommentStatus)
	fmt.Printf("%s %s\n", styled("Email Notification:", bold), r.EmailStatus)
}
