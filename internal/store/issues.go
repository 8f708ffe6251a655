package store

import (
	"context"
	"database/sql"
)

// UpsertJiraIssue idempotently writes a staging_jira_issues row (spec §4.1
// step 4: "on conflict update every column").
func (s *Store) UpsertJiraIssue(ctx context.Context, issue JiraIssue) error {
	_, err := s.stmts.upsertIssue.ExecContext(ctx,
		issue.ID, issue.IssueKey, issue.ProjectID, nullableString(issue.IssueTypeID),
		nullableString(issue.StatusID), nullableString(issue.StatusCategoryKey),
		nullableString(issue.PriorityID), nullableString(issue.ReporterAccountID),
		nullableString(issue.AssigneeAccountID), nullableString(issue.ParentAccountID),
		issue.Summary, nullableString(issue.DescriptionADF), nullableString(issue.DescriptionHTML),
		nullableString(issue.DueDate), issue.TimeOriginalEstimate, issue.TimeRemainingEstimate,
		issue.TimeSpent, nullableString(issue.LabelsJSON), nullableString(issue.FixVersionsJSON),
		nullableString(issue.ComponentsJSON), issue.RawPayload,
		nullableString(issue.CreatedAt), nullableString(issue.UpdatedAt), issue.ExtractedAt,
	)
	return err
}

// GetJiraIssueByID returns a single staging_jira_issues row, or
// sql.ErrNoRows if absent.
func (s *Store) GetJiraIssueByID(ctx context.Context, id string) (JiraIssue, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, issue_key, project_id, issue_type_id, status_id, status_category_key,
			priority_id, reporter_account_id, assignee_account_id, parent_account_id,
			summary, description_adf, description_html, due_date,
			time_original_estimate, time_remaining_estimate, time_spent,
			labels_json, fix_versions_json, components_json,
			raw_payload, created_at, updated_at, extracted_at
		FROM staging_jira_issues WHERE id = ?`, id)
	return scanJiraIssue(row)
}

func scanJiraIssue(row *sql.Row) (JiraIssue, error) {
	var i JiraIssue
	var issueType, statusID, statusCat, priorityID, reporter, assignee, parent sql.NullString
	var adf, html, due, createdAt, updatedAt sql.NullString
	var labels, fixVersions, components sql.NullString
	var origEst, remEst, spent sql.NullInt64

	err := row.Scan(&i.ID, &i.IssueKey, &i.ProjectID, &issueType, &statusID, &statusCat,
		&priorityID, &reporter, &assignee, &parent,
		&i.Summary, &adf, &html, &due,
		&origEst, &remEst, &spent,
		&labels, &fixVersions, &components,
		&i.RawPayload, &createdAt, &updatedAt, &i.ExtractedAt)
	if err != nil {
		return JiraIssue{}, err
	}
	i.IssueTypeID, i.StatusID, i.StatusCategoryKey = issueType.String, statusID.String, statusCat.String
	i.PriorityID, i.ReporterAccountID, i.AssigneeAccountID, i.ParentAccountID =
		priorityID.String, reporter.String, assignee.String, parent.String
	i.DescriptionADF, i.DescriptionHTML, i.DueDate = adf.String, html.String, due.String
	i.LabelsJSON, i.FixVersionsJSON, i.ComponentsJSON = labels.String, fixVersions.String, components.String
	i.CreatedAt, i.UpdatedAt = createdAt.String, updatedAt.String
	if origEst.Valid {
		v := origEst.Int64
		i.TimeOriginalEstimate = &v
	}
	if remEst.Valid {
		v := remEst.Int64
		i.TimeRemainingEstimate = &v
	}
	if spent.Valid {
		v := spent.Int64
		i.TimeSpent = &v
	}
	return i, nil
}

// ListJiraIssues returns the identity columns of every staged Jira issue,
// used by the Transformer's sync step (spec §4.2 step 1, "upsert a mapping
// row for every Jira issue currently in staging, copying Jira-side identity
// columns").
func (s *Store) ListJiraIssues(ctx context.Context) ([]JiraIssue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, issue_key, project_id, issue_type_id, status_id, priority_id,
			reporter_account_id, assignee_account_id
		FROM staging_jira_issues ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []JiraIssue
	for rows.Next() {
		var i JiraIssue
		var issueType, statusID, priorityID, reporter, assignee sql.NullString
		if err := rows.Scan(&i.ID, &i.IssueKey, &i.ProjectID, &issueType, &statusID, &priorityID, &reporter, &assignee); err != nil {
			return nil, err
		}
		i.IssueTypeID, i.StatusID, i.PriorityID = issueType.String, statusID.String, priorityID.String
		i.ReporterAccountID, i.AssigneeAccountID = reporter.String, assignee.String
		out = append(out, i)
	}
	return out, rows.Err()
}
