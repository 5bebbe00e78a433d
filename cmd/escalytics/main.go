// Command escalytics analyzes the latest open Jira ticket with Gemini and
// escalates it: severity label, assignment, a ticket comment, and an email
// notification.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sobarinetech/elscalyticsone/internal/config"
	"github.com/Sobarinetech/elscalyticsone/internal/logging"
	"github.com/Sobarinetech/elscalyticsone/internal/pipeline"
)

// version is set at build time with -ldflags.
var version = "dev"

var cfg *config.Config

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Init(logging.Config{
		Level:     cfg.Log.Level,
		SentryDSN: cfg.Log.SentryDSN,
		Version:   version,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Flush(2 * time.Second)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "escalytics",
	Short: "Jira ticket analyzer and automator",
	Long: `Escalytics fetches the most recent open ticket from a Jira project,
classifies its severity, analyzes it with Gemini, assigns it, posts the
analysis back as a comment, and emails a notification.

Run with no arguments for the interactive surface, or use "analyze" for a
single non-interactive run.`,
	SilenceUsage: true,
	RunE:         runDashboard,
}

var (
	analyzeJSON    bool
	analyzeNoMail  bool
	analyzeNoWrite bool
	analyzeNoOwner bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze the latest open ticket once and print the results",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd.Context(), analyzeJSON, pipeline.Options{
			SkipAssign:  analyzeNoOwner,
			SkipComment: analyzeNoWrite,
			SkipEmail:   analyzeNoMail,
		})
	},
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistory(historyLimit)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigInit()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config with secrets masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigShow()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the escalytics version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "emit the report as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeNoMail, "no-email", false, "skip the email notification")
	analyzeCmd.Flags().BoolVar(&analyzeNoWrite, "no-comment", false, "skip posting the Jira comment")
	analyzeCmd.Flags().BoolVar(&analyzeNoOwner, "no-assign", false, "skip assigning the ticket")

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum runs to list")

	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(analyzeCmd, historyCmd, configCmd, versionCmd)
}
