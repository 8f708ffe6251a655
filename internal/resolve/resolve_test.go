package resolve

import (
	"testing"

	"github.com/jcatrysse/jira2redmine-issues/internal/store"
)

func TestResolve_MatchFound(t *testing.T) {
	idx := map[string]store.ResolvedMapping{
		"10": {RedmineID: 1, MigrationStatus: store.StatusMatchFound},
	}
	id, ok := Resolve(idx, "10")
	if !ok || id != 1 {
		t.Errorf("got id=%d ok=%v", id, ok)
	}
}

func TestResolve_CreationSuccess(t *testing.T) {
	idx := map[string]store.ResolvedMapping{
		"10": {RedmineID: 2, MigrationStatus: store.StatusCreationSuccess},
	}
	id, ok := Resolve(idx, "10")
	if !ok || id != 2 {
		t.Errorf("got id=%d ok=%v", id, ok)
	}
}

func TestResolve_PendingIsUnresolved(t *testing.T) {
	idx := map[string]store.ResolvedMapping{
		"10": {RedmineID: 2, MigrationStatus: store.StatusPendingAnalysis},
	}
	if _, ok := Resolve(idx, "10"); ok {
		t.Error("expected unresolved for PENDING_ANALYSIS")
	}
}

func TestResolve_MissingKey(t *testing.T) {
	idx := map[string]store.ResolvedMapping{}
	if _, ok := Resolve(idx, "999"); ok {
		t.Error("expected unresolved for missing key")
	}
}

func TestResolve_EmptyIDUnresolved(t *testing.T) {
	idx := map[string]store.ResolvedMapping{"": {RedmineID: 1, MigrationStatus: store.StatusMatchFound}}
	if _, ok := Resolve(idx, ""); ok {
		t.Error("expected empty jiraID to be unresolved")
	}
}
