package store

import (
	"context"
	"database/sql"
	"errors"
)

// UpsertAttachment idempotently writes a staging_jira_attachments row.
func (s *Store) UpsertAttachment(ctx context.Context, a Attachment) error {
	_, err := s.stmts.upsertAttachment.ExecContext(ctx,
		a.ID, a.IssueID, a.Filename, a.SizeBytes, nullableString(a.MimeType),
		a.ContentURL, nullableString(a.CreatedAt))
	return err
}

// ListAttachmentsByIssue returns every staged attachment for one Jira issue,
// used by the Doc Converter's attachment-id index (spec §4.6).
func (s *Store) ListAttachmentsByIssue(ctx context.Context, issueID string) ([]Attachment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, issue_id, filename, size_bytes, mime_type, content_url, created_at
		FROM staging_jira_attachments WHERE issue_id = ? ORDER BY id`, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Attachment
	for rows.Next() {
		var a Attachment
		var mime, created string
		var size *int64
		if err := rows.Scan(&a.ID, &a.IssueID, &a.Filename, &size, &mime, &a.ContentURL, &created); err != nil {
			return nil, err
		}
		a.SizeBytes, a.MimeType, a.CreatedAt = size, mime, created
		out = append(out, a)
	}
	return out, rows.Err()
}

// AttachmentExistsForIssue reports whether a staged attachment with this id
// belongs to the issue. The attachment-link normalizer does not call it; its
// last-resort numeric regex is limited by the per-issue attachment map only.
func (s *Store) AttachmentExistsForIssue(ctx context.Context, attachmentID, issueID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM staging_jira_attachments WHERE id = ? AND issue_id = ?`,
		attachmentID, issueID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
