// Package ticket provides access to the issue tracker.
package ticket

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sobarinetech/elscalyticsone/internal/config"
)

// Ticket is a single issue fetched from the tracker. It is read-only
// downstream of the fetch: comments and assignment mutate the tracker's
// copy, never this struct.
type Ticket struct {
	Key         string // e.g. "PROJ-42"
	Summary     string
	Description string
	Status      string
	URL         string
}

// Tracker is the transport-agnostic tracker contract. Two adapters exist:
// one built on the go-jira client library and one speaking the REST API
// directly.
type Tracker interface {
	// LatestOpen returns the newest ticket with status "Open" in the
	// configured project, or nil when the project has none. An empty
	// result is not an error.
	LatestOpen(ctx context.Context) (*Ticket, error)

	// AddComment appends a comment to a ticket. Calling it twice creates
	// two comments; the tracker does not deduplicate.
	AddComment(ctx context.Context, key, body string) error

	// FindUser resolves an email address to the tracker's internal account
	// ID. Zero matches yields ("", nil).
	FindUser(ctx context.Context, email string) (string, error)

	// Assign sets the ticket's assignee to the given account ID.
	Assign(ctx context.Context, key, accountID string) error

	// Name identifies the adapter, e.g. "jira" or "rest".
	Name() string
}

// New builds the Tracker adapter selected by cfg.Transport.
func New(cfg config.TrackerConfig) (Tracker, error) {
	switch cfg.Transport {
	case "", "jira":
		return newJiraTracker(cfg)
	case "rest":
		return newRESTTracker(cfg), nil
	default:
		return nil, fmt.Errorf("unknown tracker transport %q", cfg.Transport)
	}
}

// BrowseURL returns the human-facing link for a ticket key.
func BrowseURL(baseURL, key string) string {
	return strings.TrimRight(baseURL, "/") + "/browse/" + key
}

func latestOpenJQL(projectKey string) string {
	return fmt.Sprintf(`project = "%s" AND status = "Open" ORDER BY created DESC`, projectKey)
}
