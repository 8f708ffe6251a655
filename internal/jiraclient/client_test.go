package jiraclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearch_Success(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("jql")
		if r.URL.Query().Get("fields") != "*all" {
			t.Errorf("expected fields=*all, got %q", r.URL.Query().Get("fields"))
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "bot@example.com" || pass != "tok" {
			t.Errorf("unexpected basic auth: %q/%q ok=%v", user, pass, ok)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"issues":     []json.RawMessage{json.RawMessage(`{"id":"1"}`), json.RawMessage(`{"id":"2"}`)},
			"maxResults": 2,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "bot@example.com", "tok")
	result, err := c.Search(context.Background(), `project = "ABC" ORDER BY id ASC`, 100)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(result.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(result.Issues))
	}
	if gotQuery != `project = "ABC" ORDER BY id ASC` {
		t.Errorf("unexpected jql sent: %q", gotQuery)
	}
}

func TestSearch_RetriesOn500ThenSucceeds(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"issues": []json.RawMessage{}, "maxResults": 100})
	}))
	defer srv.Close()

	c := New(srv.URL, "bot@example.com", "tok", Options{MaxRetries: 5})
	_, err := c.Search(context.Background(), `project = "ABC"`, 100)
	if err != nil {
		t.Fatalf("Search() error = %v after %d calls", err, calls)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestSearch_DoesNotRetryOn400(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errorMessages":["invalid jql"]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "bot@example.com", "tok", Options{MaxRetries: 5})
	_, err := c.Search(context.Background(), `not valid jql`, 100)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if calls != 1 {
		t.Errorf("expected exactly 1 attempt for non-retryable 4xx, got %d", calls)
	}
}
