package ticket

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
)

func newTestRESTTracker(rt roundTripFunc) *restTracker {
	return &restTracker{
		baseURL: "https://example.atlassian.net",
		email:   "ops@example.com",
		token:   "token",
		project: "PROJ",
		http:    &http.Client{Transport: rt},
	}
}

func TestRESTLatestOpen(t *testing.T) {
	tr := newTestRESTTracker(func(req *http.Request) *http.Response {
		if req.Method != http.MethodPost || !strings.HasSuffix(req.URL.Path, "/rest/api/2/search") {
			t.Fatalf("unexpected request: %s %s", req.Method, req.URL.Path)
		}
		var payload map[string]any
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		jql, _ := payload["jql"].(string)
		if !strings.Contains(jql, `project = "PROJ"`) || !strings.Contains(jql, "ORDER BY created DESC") {
			t.Fatalf("unexpected jql: %s", jql)
		}
		if payload["maxResults"] != float64(1) {
			t.Fatalf("expected maxResults 1, got %v", payload["maxResults"])
		}
		body := `{"issues":[{"key":"PROJ-42","fields":{"summary":"Login broken","description":"This is a critical issue","status":{"name":"Open"}}}]}`
		return jsonResponse(http.StatusOK, body)
	})

	tk, err := tr.LatestOpen(context.Background())
	if err != nil {
		t.Fatalf("LatestOpen failed: %v", err)
	}
	if tk == nil || tk.Key != "PROJ-42" {
		t.Fatalf("unexpected ticket: %#v", tk)
	}
	if tk.Status != "Open" {
		t.Errorf("unexpected status: %s", tk.Status)
	}
	if tk.URL != "https://example.atlassian.net/browse/PROJ-42" {
		t.Errorf("unexpected url: %s", tk.URL)
	}
}

func TestRESTLatestOpenEmpty(t *testing.T) {
	tr := newTestRESTTracker(func(req *http.Request) *http.Response {
		return jsonResponse(http.StatusOK, `{"issues":[]}`)
	})

	tk, err := tr.LatestOpen(context.Background())
	if err != nil {
		t.Fatalf("LatestOpen failed: %v", err)
	}
	if tk != nil {
		t.Fatalf("expected nil ticket for empty result, got %#v", tk)
	}
}

func TestRESTAddComment(t *testing.T) {
	var posted string
	tr := newTestRESTTracker(func(req *http.Request) *http.Response {
		if req.Method != http.MethodPost || !strings.HasSuffix(req.URL.Path, "/issue/PROJ-42/comment") {
			t.Fatalf("unexpected request: %s %s", req.Method, req.URL.Path)
		}
		var payload map[string]string
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		posted = payload["body"]
		return jsonResponse(http.StatusCreated, `{"id":"1"}`)
	})

	if err := tr.AddComment(context.Background(), "PROJ-42", "analysis text"); err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if posted != "analysis text" {
		t.Errorf("unexpected comment body: %s", posted)
	}
}

func TestRESTFindUser(t *testing.T) {
	tr := newTestRESTTracker(func(req *http.Request) *http.Response {
		if req.Method != http.MethodGet || !strings.Contains(req.URL.Path, "/user/search") {
			t.Fatalf("unexpected request: %s %s", req.Method, req.URL.Path)
		}
		if got := req.URL.Query().Get("query"); got != "lead@example.com" {
			t.Fatalf("unexpected query: %s", got)
		}
		return jsonResponse(http.StatusOK, `[{"accountId":"abc123"}]`)
	})

	id, err := tr.FindUser(context.Background(), "lead@example.com")
	if err != nil {
		t.Fatalf("FindUser failed: %v", err)
	}
	if id != "abc123" {
		t.Errorf("unexpected account id: %s", id)
	}
}

func TestRESTFindUserNoMatch(t *testing.T) {
	tr := newTestRESTTracker(func(req *http.Request) *http.Response {
		return jsonResponse(http.StatusOK, `[]`)
	})

	id, err := tr.FindUser(context.Background(), "ghost@example.com")
	if err != nil {
		t.Fatalf("FindUser failed: %v", err)
	}
	if id != "" {
		t.Errorf("expected empty account id, got %s", id)
	}
}

func TestRESTAssign(t *testing.T) {
	tr := newTestRESTTracker(func(req *http.Request) *http.Response {
		if req.Method != http.MethodPut || !strings.HasSuffix(req.URL.Path, "/issue/PROJ-42/assignee") {
			t.Fatalf("unexpected request: %s %s", req.Method, req.URL.Path)
		}
		var payload map[string]string
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload["accountId"] != "abc123" {
			t.Fatalf("unexpected account id: %s", payload["accountId"])
		}
		return jsonResponse(http.StatusNoContent, "")
	})

	if err := tr.Assign(context.Background(), "PROJ-42", "abc123"); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
}

func TestRESTErrorStatus(t *testing.T) {
	tr := newTestRESTTracker(func(req *http.Request) *http.Response {
		return jsonResponse(http.StatusUnauthorized, `{"errorMessages":["bad credentials"]}`)
	})

	if _, err := tr.LatestOpen(context.Background()); err == nil {
		t.Fatal("expected error for 401 response")
	} else if !strings.Contains(err.Error(), "401") {
		t.Errorf("error should carry status code: %v", err)
	}
}

func TestBrowseURL(t *testing.T) {
	got := BrowseURL("https://example.atlassian.net/", "PROJ-1")
	if got != "https://example.atlassian.net/browse/PROJ-1" {
		t.Errorf("unexpected browse url: %s", got)
	}
}

type roundTripFunc func(*http.Request) *http.Response

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}
