package ticket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/Sobarinetech/elscalyticsone/internal/config"
)

// restTracker implements Tracker against the Jira REST v2 API directly,
// with basic auth and bounded retry on transient failures.
type restTracker struct {
	baseURL string
	email   string
	token   string
	project string
	http    *http.Client
}

func newRESTTracker(cfg config.TrackerConfig) *restTracker {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.Logger = nil
	if cfg.Timeout > 0 {
		rc.HTTPClient.Timeout = cfg.Timeout
	}

	return &restTracker{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		email:   cfg.Email,
		token:   cfg.APIToken,
		project: cfg.ProjectKey,
		http:    rc.StandardClient(),
	}
}

func (t *restTracker) Name() string { return "rest" }

type restIssue struct {
	Key    string `json:"key"`
	Fields struct {
		Summary     string `json:"summary"`
		Description string `json:"description"`
		Status      struct {
			Name string `json:"name"`
		} `json:"status"`
	} `json:"fields"`
}

func (t *restTracker) LatestOpen(ctx context.Context) (*Ticket, error) {
	payload := map[string]any{
		"jql":        latestOpenJQL(t.project),
		"fields":     []string{"summary", "description", "status"},
		"maxResults": 1,
	}

	var response struct {
		Issues []restIssue `json:"issues"`
	}
	if err := t.doJSON(ctx, http.MethodPost, "/rest/api/2/search", payload, &response); err != nil {
		return nil, fmt.Errorf("search issues: %w", err)
	}
	if len(response.Issues) == 0 {
		return nil, nil
	}

	issue := response.Issues[0]
	return &Ticket{
		Key:         issue.Key,
		Summary:     issue.Fields.Summary,
		Description: issue.Fields.Description,
		Status:      issue.Fields.Status.Name,
		URL:         BrowseURL(t.baseURL, issue.Key),
	}, nil
}

func (t *restTracker) AddComment(ctx context.Context, key, body string) error {
	path := fmt.Sprintf("/rest/api/2/issue/%s/comment", key)
	payload := map[string]string{"body": body}
	if err := t.doJSON(ctx, http.MethodPost, path, payload, nil); err != nil {
		return fmt.Errorf("add comment to %s: %w", key, err)
	}
	return nil
}

func (t *restTracker) FindUser(ctx context.Context, email string) (string, error) {
	path := "/rest/api/2/user/search?query=" + url.QueryEscape(email)

	var users []struct {
		AccountID string `json:"accountId"`
	}
	if err := t.doJSON(ctx, http.MethodGet, path, nil, &users); err != nil {
		return "", fmt.Errorf("find user %s: %w", email, err)
	}
	if len(users) == 0 {
		return "", nil
	}
	return users[0].AccountID, nil
}

func (t *restTracker) Assign(ctx context.Context, key, accountID string) error {
	path := fmt.Sprintf("/rest/api/2/issue/%s/assignee", key)
	payload := map[string]string{"accountId": accountID}
	if err := t.doJSON(ctx, http.MethodPut, path, payload, nil); err != nil {
		return fmt.Errorf("assign %s: %w", key, err)
	}
	return nil
}

func (t *restTracker) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth(t.email, t.token)

	resp, err := t.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("jira api error (%d): %s", resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}
