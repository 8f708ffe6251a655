package redmineclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateIssue_Success(t *testing.T) {
	var gotKey, gotNotify string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Redmine-API-Key")
		gotNotify = r.URL.Query().Get("notify")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"issue": map[string]any{"id": 42}})
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	issue, err := c.CreateIssue(context.Background(), map[string]any{"issue": map[string]any{"subject": "x"}})
	if err != nil {
		t.Fatalf("CreateIssue() error = %v", err)
	}
	if issue.ID != 42 {
		t.Errorf("expected id 42, got %d", issue.ID)
	}
	if gotKey != "secret" {
		t.Errorf("expected api key header, got %q", gotKey)
	}
	if gotNotify != "false" {
		t.Errorf("expected notify=false, got %q", gotNotify)
	}
}

func TestCreateIssue_DoesNotRetryOn422(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"errors":["Subject can't be blank"]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret", Options{MaxRetries: 5})
	_, err := c.CreateIssue(context.Background(), map[string]any{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", apiErr.StatusCode)
	}
	if calls != 1 {
		t.Errorf("expected exactly 1 attempt for non-retryable 4xx, got %d", calls)
	}
}

func TestProbeExtendedAPI_MissingHeaderFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "secret", Options{ExtendedAPIPrefix: "extended_api"})
	if err := c.ProbeExtendedAPI(context.Background()); err == nil {
		t.Fatal("expected error when X-Redmine-Extended-API header is missing")
	}
}

func TestProbeExtendedAPI_Success(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("X-Redmine-Extended-API", "1")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "secret", Options{ExtendedAPIPrefix: "extended_api"})
	if err := c.ProbeExtendedAPI(context.Background()); err != nil {
		t.Fatalf("ProbeExtendedAPI() error = %v", err)
	}
	if gotPath != "/extended_api/issues.json" {
		t.Errorf("unexpected probe path: %q", gotPath)
	}
}
