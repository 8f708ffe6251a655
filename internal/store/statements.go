package store

import (
	"database/sql"
	"fmt"
)

// statements holds every prepared statement the core issues more than once
// per run. They are all owned by the Store and released together in
// Close(), so no caller needs to remember to clean one up individually.
type statements struct {
	upsertIssue      *sql.Stmt
	upsertAttachment *sql.Stmt
	upsertLink       *sql.Stmt
	upsertLabel      *sql.Stmt
	deleteSamples    *sql.Stmt
	insertSample     *sql.Stmt
	deleteKV         *sql.Stmt
	insertKV         *sql.Stmt
	syncMappingRow   *sql.Stmt
	updateProposal   *sql.Stmt
	stampProjectDone *sql.Stmt
}

func prepareStatements(db *sql.DB) (*statements, error) {
	s := &statements{}
	var err error

	prepare := func(dst **sql.Stmt, query string) {
		if err != nil {
			return
		}
		*dst, err = db.Prepare(query)
	}

	prepare(&s.upsertIssue, `
		INSERT INTO staging_jira_issues (
			id, issue_key, project_id, issue_type_id, status_id, status_category_key,
			priority_id, reporter_account_id, assignee_account_id, parent_account_id,
			summary, description_adf, description_html, due_date,
			time_original_estimate, time_remaining_estimate, time_spent,
			labels_json, fix_versions_json, components_json,
			raw_payload, created_at, updated_at, extracted_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			issue_key=excluded.issue_key, project_id=excluded.project_id,
			issue_type_id=excluded.issue_type_id, status_id=excluded.status_id,
			status_category_key=excluded.status_category_key, priority_id=excluded.priority_id,
			reporter_account_id=excluded.reporter_account_id, assignee_account_id=excluded.assignee_account_id,
			parent_account_id=excluded.parent_account_id, summary=excluded.summary,
			description_adf=excluded.description_adf, description_html=excluded.description_html,
			due_date=excluded.due_date, time_original_estimate=excluded.time_original_estimate,
			time_remaining_estimate=excluded.time_remaining_estimate, time_spent=excluded.time_spent,
			labels_json=excluded.labels_json, fix_versions_json=excluded.fix_versions_json,
			components_json=excluded.components_json, raw_payload=excluded.raw_payload,
			created_at=excluded.created_at, updated_at=excluded.updated_at,
			extracted_at=excluded.extracted_at
	`)

	prepare(&s.upsertAttachment, `
		INSERT INTO staging_jira_attachments (id, issue_id, filename, size_bytes, mime_type, content_url, created_at)
		VALUES (?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			filename=excluded.filename, size_bytes=excluded.size_bytes,
			mime_type=excluded.mime_type, content_url=excluded.content_url,
			created_at=excluded.created_at
	`)

	prepare(&s.upsertLink, `
		INSERT INTO staging_jira_issue_links (jira_link_id, source_issue_id, target_issue_id, link_type)
		VALUES (?,?,?,?)
		ON CONFLICT(jira_link_id) DO UPDATE SET
			source_issue_id=excluded.source_issue_id, target_issue_id=excluded.target_issue_id,
			link_type=excluded.link_type
	`)

	prepare(&s.upsertLabel, `
		INSERT INTO staging_jira_labels (name) VALUES (?) ON CONFLICT(name) DO NOTHING
	`)

	prepare(&s.deleteSamples, `DELETE FROM staging_jira_object_samples WHERE field_id = ? AND issue_key = ?`)
	prepare(&s.insertSample, `INSERT INTO staging_jira_object_samples (field_id, issue_key, ordinal, value) VALUES (?,?,?,?)`)
	prepare(&s.deleteKV, `DELETE FROM staging_jira_object_kv WHERE field_id = ? AND issue_key = ?`)
	prepare(&s.insertKV, `INSERT INTO staging_jira_object_kv (field_id, issue_key, path, ordinal, value) VALUES (?,?,?,?,?)`)

	prepare(&s.syncMappingRow, `
		INSERT INTO migration_mapping_issues (
			jira_issue_id, jira_issue_key, jira_project_id, jira_issue_type_id,
			jira_status_id, jira_priority_id, jira_reporter_account_id, jira_assignee_account_id,
			migration_status, created_at, last_updated_at
		) VALUES (?,?,?,?,?,?,?,?, 'PENDING_ANALYSIS', ?, ?)
		ON CONFLICT(jira_issue_id) DO UPDATE SET
			jira_project_id=excluded.jira_project_id, jira_issue_type_id=excluded.jira_issue_type_id,
			jira_status_id=excluded.jira_status_id, jira_priority_id=excluded.jira_priority_id,
			jira_reporter_account_id=excluded.jira_reporter_account_id,
			jira_assignee_account_id=excluded.jira_assignee_account_id,
			last_updated_at=excluded.last_updated_at
	`)

	prepare(&s.updateProposal, `
		UPDATE migration_mapping_issues SET
			redmine_project_id=?, redmine_tracker_id=?, redmine_status_id=?, redmine_priority_id=?,
			redmine_author_id=?, redmine_assignee_id=?,
			proposed_project_id=?, proposed_tracker_id=?, proposed_status_id=?, proposed_priority_id=?,
			proposed_author_id=?, proposed_assignee_id=?,
			proposed_subject=?, proposed_description=?, proposed_start_date=?, proposed_due_date=?,
			proposed_done_ratio=?, proposed_estimated_hours=?, proposed_is_private=?,
			proposed_custom_field_payload=?,
			migration_status=?, notes=?, automation_hash=?, last_updated_at=?
		WHERE id = ?
	`)

	prepare(&s.stampProjectDone, `UPDATE migration_mapping_projects SET issues_extracted_at = ? WHERE jira_project_id = ?`)

	if err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}
	return s, nil
}

func (s *statements) Close() {
	for _, stmt := range []*sql.Stmt{
		s.upsertIssue, s.upsertAttachment, s.upsertLink, s.upsertLabel,
		s.deleteSamples, s.insertSample, s.deleteKV, s.insertKV,
		s.syncMappingRow, s.updateProposal, s.stampProjectDone,
	} {
		if stmt != nil {
			stmt.Close()
		}
	}
}
