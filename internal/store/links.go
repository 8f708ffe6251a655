package store

import "context"

// UpsertIssueLink idempotently writes a canonicalized (source, target) issue
// link row, keyed on the Jira link id (spec §4.1 step 4).
func (s *Store) UpsertIssueLink(ctx context.Context, l IssueLink) error {
	_, err := s.stmts.upsertLink.ExecContext(ctx, l.JiraLinkID, l.SourceIssueID, l.TargetIssueID, nullableString(l.LinkType))
	return err
}

// UpsertLabel inserts a label name if not already present (spec §3
// JiraAttachment sibling table "unique on name").
func (s *Store) UpsertLabel(ctx context.Context, name string) error {
	_, err := s.stmts.upsertLabel.ExecContext(ctx, name)
	return err
}
