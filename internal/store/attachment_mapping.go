package store

import "context"

// UpsertAttachmentMapping idempotently creates or refreshes one
// migration_mapping_attachments row, keyed on jira_attachment_id (spec §4.3
// attachment readiness precondition).
func (s *Store) UpsertAttachmentMapping(ctx context.Context, a AttachmentMapping) error {
	now := Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO migration_mapping_attachments (
			jira_attachment_id, jira_issue_id, unique_filename, redmine_upload_token,
			sharepoint_url, association_hint, migration_status, notes, created_at, last_updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(jira_attachment_id) DO UPDATE SET
			unique_filename=excluded.unique_filename,
			redmine_upload_token=excluded.redmine_upload_token,
			sharepoint_url=excluded.sharepoint_url,
			association_hint=excluded.association_hint,
			migration_status=excluded.migration_status,
			notes=excluded.notes,
			last_updated_at=excluded.last_updated_at
	`, a.JiraAttachmentID, a.JiraIssueID, a.UniqueFilename, nullableString(a.RedmineUploadToken),
		nullableString(a.SharePointURL), a.AssociationHint, a.MigrationStatus, nullableString(a.Notes),
		now, now)
	return err
}

// ListAttachmentMappingsByIssue returns every attachment mapping row for a
// Jira issue, ordered by id (spec §4.3 attachment association loop).
func (s *Store) ListAttachmentMappingsByIssue(ctx context.Context, jiraIssueID string) ([]AttachmentMapping, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, jira_attachment_id, jira_issue_id, unique_filename, redmine_upload_token,
			sharepoint_url, association_hint, migration_status, notes, created_at, last_updated_at
		FROM migration_mapping_attachments
		WHERE jira_issue_id = ?
		ORDER BY id ASC`, jiraIssueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AttachmentMapping
	for rows.Next() {
		var a AttachmentMapping
		var token, url, notes *string
		if err := rows.Scan(&a.ID, &a.JiraAttachmentID, &a.JiraIssueID, &a.UniqueFilename, &token,
			&url, &a.AssociationHint, &a.MigrationStatus, &notes, &a.CreatedAt, &a.LastUpdatedAt); err != nil {
			return nil, err
		}
		if token != nil {
			a.RedmineUploadToken = *token
		}
		if url != nil {
			a.SharePointURL = *url
		}
		if notes != nil {
			a.Notes = *notes
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CountAttachmentsPendingDownloadOrUpload implements the Pusher's readiness
// check (spec §4.3 step 2): attachments still in PENDING_DOWNLOAD or
// PENDING_UPLOAD block the push.
func (s *Store) CountAttachmentsPendingDownloadOrUpload(ctx context.Context, jiraIssueID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM migration_mapping_attachments
		WHERE jira_issue_id = ? AND migration_status IN (?, ?)`,
		jiraIssueID, AttachmentPendingDownload, AttachmentPendingUpload).Scan(&n)
	return n, err
}

// CountAttachmentsPendingAssociation implements the Pusher's consistency
// check (spec §4.3 step 2): the count of PENDING_ASSOCIATION rows must match
// the number of "usable" attachments fetched.
func (s *Store) CountAttachmentsPendingAssociation(ctx context.Context, jiraIssueID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM migration_mapping_attachments
		WHERE jira_issue_id = ? AND migration_status = ?`,
		jiraIssueID, AttachmentPendingAssociate).Scan(&n)
	return n, err
}

// ListUsableAttachments returns the PENDING_ASSOCIATION attachments for an
// issue that carry either a Redmine upload token or a SharePoint URL (spec
// §4.3 step 1 "fetch the usable attachment rows").
func (s *Store) ListUsableAttachments(ctx context.Context, jiraIssueID string) ([]AttachmentMapping, error) {
	all, err := s.ListAttachmentMappingsByIssue(ctx, jiraIssueID)
	if err != nil {
		return nil, err
	}
	var out []AttachmentMapping
	for _, a := range all {
		if a.MigrationStatus == AttachmentPendingAssociate && (a.RedmineUploadToken != "" || a.SharePointURL != "") {
			out = append(out, a)
		}
	}
	return out, nil
}

// UpdateAttachmentStatus transitions a single attachment mapping row.
func (s *Store) UpdateAttachmentStatus(ctx context.Context, id int64, status, note string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE migration_mapping_attachments
		SET migration_status = ?, notes = ?, last_updated_at = ?
		WHERE id = ?`, status, nullableString(note), Now(), id)
	return err
}

// UpdateAttachmentUploadToken records the Redmine upload token obtained from
// POST /uploads.json, advancing an attachment to PENDING_ASSOCIATION.
func (s *Store) UpdateAttachmentUploadToken(ctx context.Context, id int64, token string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE migration_mapping_attachments
		SET redmine_upload_token = ?, migration_status = ?, last_updated_at = ?
		WHERE id = ?`, token, AttachmentPendingAssociate, Now(), id)
	return err
}
