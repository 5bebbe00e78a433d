package ticket

import (
	"context"
	"fmt"

	jira "github.com/andygrunwald/go-jira"

	"github.com/Sobarinetech/elscalyticsone/internal/config"
)

// jiraTracker implements Tracker with the go-jira client library.
type jiraTracker struct {
	client  *jira.Client
	baseURL string
	project string
}

func newJiraTracker(cfg config.TrackerConfig) (*jiraTracker, error) {
	tp := jira.BasicAuthTransport{
		Username: cfg.Email,
		Password: cfg.APIToken,
	}
	httpClient := tp.Client()
	if cfg.Timeout > 0 {
		httpClient.Timeout = cfg.Timeout
	}

	client, err := jira.NewClient(httpClient, cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("jira client: %w", err)
	}

	return &jiraTracker{
		client:  client,
		baseURL: cfg.BaseURL,
		project: cfg.ProjectKey,
	}, nil
}

func (t *jiraTracker) Name() string { return "jira" }

func (t *jiraTracker) LatestOpen(ctx context.Context) (*Ticket, error) {
	issues, _, err := t.client.Issue.SearchWithContext(ctx, latestOpenJQL(t.project), &jira.SearchOptions{
		MaxResults: 1,
		Fields:     []string{"summary", "description", "status"},
	})
	if err != nil {
		return nil, fmt.Errorf("search issues: %w", err)
	}
	if len(issues) == 0 {
		return nil, nil
	}

	issue := issues[0]
	tk := &Ticket{
		Key:         issue.Key,
		Summary:     issue.Fields.Summary,
		Description: issue.Fields.Description,
		URL:         BrowseURL(t.baseURL, issue.Key),
	}
	if issue.Fields.Status != nil {
		tk.Status = issue.Fields.Status.Name
	}
	return tk, nil
}

func (t *jiraTracker) AddComment(ctx context.Context, key, body string) error {
	_, _, err := t.client.Issue.AddCommentWithContext(ctx, key, &jira.Comment{Body: body})
	if err != nil {
		return fmt.Errorf("add comment to %s: %w", key, err)
	}
	return nil
}

func (t *jiraTracker) FindUser(ctx context.Context, email string) (string, error) {
	users, _, err := t.client.User.FindWithContext(ctx, email)
	if err != nil {
		return "", fmt.Errorf("find user %s: %w", email, err)
	}
	if len(users) == 0 {
		return "", nil
	}
	return users[0].AccountID, nil
}

func (t *jiraTracker) Assign(ctx context.Context, key, accountID string) error {
	_, err := t.client.Issue.UpdateAssigneeWithContext(ctx, key, &jira.User{AccountID: accountID})
	if err != nil {
		return fmt.Errorf("assign %s: %w", key, err)
	}
	return nil
}
