package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jcatrysse/jira2redmine-issues/internal/jiraclient"
	"github.com/jcatrysse/jira2redmine-issues/internal/store"
)

func issuePayload(id, key string) string {
	return fmt.Sprintf(`{
		"id":%q, "key":%q,
		"fields": {
			"summary":"Bug %s",
			"project":{"id":"10"},
			"issuetype":{"id":"100"},
			"status":{"id":"1","statusCategory":{"key":"new"}},
			"priority":{"id":"3"},
			"created":"2024-01-01T10:00:00.000+0000",
			"labels":["alpha","beta"],
			"issuelinks":[{"id":"900","type":{"outward":"blocks"},"outwardIssue":{"id":"2002"}}]
		}
	}`, id, key, key)
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRun_SinglePageStampsProject(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		resp := jiraclient.SearchResult{
			Issues:     []json.RawMessage{json.RawMessage(issuePayload("1001", "PRJ-1"))},
			MaxResults: 50,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	s := newTestStore(t)
	ctx := context.Background()
	if err := s.UpsertProjectMapping(ctx, store.ProjectMapping{JiraProjectID: "10", JiraProjectKey: "PRJ"}); err != nil {
		t.Fatalf("seed project: %v", err)
	}

	client := jiraclient.New(srv.URL, "user@example.com", "token")
	sum, err := Run(ctx, Deps{Store: s, Jira: client, BatchSize: 50})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.IssuesUpserted != 1 || sum.ProjectsProcessed != 1 {
		t.Errorf("got %+v", sum)
	}
	if requests != 1 {
		t.Errorf("expected 1 request for a short page, got %d", requests)
	}

	issue, err := s.GetJiraIssueByID(ctx, "1001")
	if err != nil {
		t.Fatalf("GetJiraIssueByID: %v", err)
	}
	if issue.IssueKey != "PRJ-1" || issue.Summary != "Bug PRJ-1" {
		t.Errorf("got %+v", issue)
	}

	projects, err := s.ListProjectsPendingExtraction(ctx)
	if err != nil {
		t.Fatalf("ListProjectsPendingExtraction: %v", err)
	}
	if len(projects) != 0 {
		t.Errorf("expected project to be stamped and no longer pending, got %+v", projects)
	}
}

func TestRun_MultiPagePaginatesUntilShortPage(t *testing.T) {
	page := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page++
		var issues []json.RawMessage
		if page == 1 {
			issues = []json.RawMessage{
				json.RawMessage(issuePayload("1001", "PRJ-1")),
				json.RawMessage(issuePayload("1002", "PRJ-2")),
			}
		} else {
			issues = []json.RawMessage{json.RawMessage(issuePayload("1003", "PRJ-3"))}
		}
		resp := jiraclient.SearchResult{Issues: issues, MaxResults: 2}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	s := newTestStore(t)
	ctx := context.Background()
	if err := s.UpsertProjectMapping(ctx, store.ProjectMapping{JiraProjectID: "10", JiraProjectKey: "PRJ"}); err != nil {
		t.Fatalf("seed project: %v", err)
	}

	client := jiraclient.New(srv.URL, "user@example.com", "token")
	sum, err := Run(ctx, Deps{Store: s, Jira: client, BatchSize: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.IssuesUpserted != 3 {
		t.Errorf("expected 3 issues across 2 pages, got %+v", sum)
	}
	if page != 2 {
		t.Errorf("expected exactly 2 requests, got %d", page)
	}
}

func TestRun_TransportFailureSkipsProjectWithoutStamping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errorMessages":["bad jql"]}`))
	}))
	defer srv.Close()

	s := newTestStore(t)
	ctx := context.Background()
	if err := s.UpsertProjectMapping(ctx, store.ProjectMapping{JiraProjectID: "10", JiraProjectKey: "PRJ"}); err != nil {
		t.Fatalf("seed project: %v", err)
	}

	client := jiraclient.New(srv.URL, "user@example.com", "token", jiraclient.Options{MaxRetries: 1})
	sum, err := Run(ctx, Deps{Store: s, Jira: client, BatchSize: 50})
	if err != nil {
		t.Fatalf("Run should not return a fatal error for a project-level failure: %v", err)
	}
	if sum.ProjectsFailed != 1 || sum.ProjectsProcessed != 0 {
		t.Errorf("got %+v", sum)
	}

	projects, err := s.ListProjectsPendingExtraction(ctx)
	if err != nil {
		t.Fatalf("ListProjectsPendingExtraction: %v", err)
	}
	if len(projects) != 1 {
		t.Errorf("expected project to remain pending after transport failure, got %+v", projects)
	}
}

func TestRun_IdempotentUpsert(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := jiraclient.SearchResult{
			Issues:     []json.RawMessage{json.RawMessage(issuePayload("1001", "PRJ-1"))},
			MaxResults: 50,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	s := newTestStore(t)
	ctx := context.Background()
	client := jiraclient.New(srv.URL, "user@example.com", "token")

	if err := s.UpsertProjectMapping(ctx, store.ProjectMapping{JiraProjectID: "10", JiraProjectKey: "PRJ"}); err != nil {
		t.Fatalf("seed project: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := s.DB().ExecContext(ctx, `UPDATE migration_mapping_projects SET issues_extracted_at = NULL WHERE jira_project_id = '10'`); err != nil {
			t.Fatalf("reset extracted_at: %v", err)
		}
		if _, err := Run(ctx, Deps{Store: s, Jira: client, BatchSize: 50}); err != nil {
			t.Fatalf("Run iteration %d: %v", i, err)
		}
	}

	issue, err := s.GetJiraIssueByID(ctx, "1001")
	if err != nil {
		t.Fatalf("GetJiraIssueByID: %v", err)
	}
	if issue.IssueKey != "PRJ-1" {
		t.Errorf("got %+v", issue)
	}
}
