// Package resolve implements the Mapping Resolvers (spec §5 "Design Notes"):
// pure, read-only lookups over the per-entity index maps the Transformer
// loads once per run.
package resolve

import "github.com/jcatrysse/jira2redmine-issues/internal/store"

// Resolve looks up jiraID in index and returns its Redmine id, only
// considering the mapping resolved when migration_status is MATCH_FOUND or
// CREATION_SUCCESS (spec §4.2 step 3c). A missing row or an unresolved
// status both report ok=false; callers treat both the same way.
func Resolve(index map[string]store.ResolvedMapping, jiraID string) (int64, bool) {
	if jiraID == "" {
		return 0, false
	}
	m, found := index[jiraID]
	if !found || !m.Resolved() {
		return 0, false
	}
	return m.RedmineID, true
}
