package store

import (
	"context"
	"database/sql"
)

// SyncMappingRow upserts one migration_mapping_issues row from a staged
// Jira issue's identity columns, implementing the Transformer's sync step
// (spec §4.2 step 1 and the invariant "every Jira issue ever extracted has
// exactly one IssueMapping row").
func (s *Store) SyncMappingRow(ctx context.Context, issue JiraIssue) error {
	now := Now()
	_, err := s.stmts.syncMappingRow.ExecContext(ctx,
		issue.ID, issue.IssueKey, issue.ProjectID, nullableString(issue.IssueTypeID),
		nullableString(issue.StatusID), nullableString(issue.PriorityID),
		nullableString(issue.ReporterAccountID), nullableString(issue.AssigneeAccountID),
		now, now,
	)
	return err
}

// reRunnableStatuses is the set of migration_status values the Transformer
// is allowed to reprocess (spec §4.2: "PENDING_ANALYSIS, READY_FOR_CREATION,
// MATCH_FOUND, CREATION_FAILED").
var reRunnableStatuses = []string{
	StatusPendingAnalysis, StatusReadyForCreation, StatusMatchFound, StatusCreationFailed,
}

// MappingRow pairs an IssueMapping with its source staging row, the single
// read the Transformer performs per issue (spec §4.2 step 3).
type MappingRow struct {
	Mapping IssueMapping
	Issue   JiraIssue
}

// ListMappingRowsForTransform returns every mapping row joined with its
// staged Jira issue, ordered by mapping id ascending (spec §5).
func (s *Store) ListMappingRowsForTransform(ctx context.Context) ([]MappingRow, error) {
	query := `
		SELECT
			m.id, m.jira_issue_id, m.jira_issue_key, m.jira_project_id, m.jira_issue_type_id,
			m.jira_status_id, m.jira_priority_id, m.jira_reporter_account_id, m.jira_assignee_account_id,
			m.redmine_project_id, m.redmine_tracker_id, m.redmine_status_id, m.redmine_priority_id,
			m.redmine_author_id, m.redmine_assignee_id, m.redmine_issue_id,
			m.proposed_project_id, m.proposed_tracker_id, m.proposed_status_id, m.proposed_priority_id,
			m.proposed_author_id, m.proposed_assignee_id,
			m.proposed_subject, m.proposed_description, m.proposed_start_date, m.proposed_due_date,
			m.proposed_done_ratio, m.proposed_estimated_hours, m.proposed_is_private,
			m.proposed_custom_field_payload, m.migration_status, m.notes, m.automation_hash,
			m.created_at, m.last_updated_at,
			i.id, i.issue_key, i.project_id, i.issue_type_id, i.status_id, i.status_category_key,
			i.priority_id, i.reporter_account_id, i.assignee_account_id, i.parent_account_id,
			i.summary, i.description_adf, i.description_html, i.due_date,
			i.time_original_estimate, i.time_remaining_estimate, i.time_spent,
			i.labels_json, i.fix_versions_json, i.components_json,
			i.raw_payload, i.created_at, i.updated_at, i.extracted_at
		FROM migration_mapping_issues m
		JOIN staging_jira_issues i ON i.id = m.jira_issue_id
		ORDER BY m.id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MappingRow
	for rows.Next() {
		var mr MappingRow
		var m IssueMapping
		var redmineProject, redmineTracker, redmineStatus, redminePriority, redmineAuthor, redmineAssignee, redmineIssue *int64
		var proposedProject, proposedTracker, proposedStatus, proposedPriority, proposedAuthor, proposedAssignee *int64
		var subject, description, startDate, dueDate, cfPayload, notes, hash sql.NullString
		var doneRatio *int64
		var estHours *float64
		var isPrivate *int

		var issueType, statusID, statusCat, priorityID, reporter, assignee, parent sql.NullString
		var adf, html, due, createdAt2, updatedAt2 sql.NullString
		var labels, fixVersions, components sql.NullString
		var origEst, remEst, spent sql.NullInt64

		err := rows.Scan(
			&m.ID, &m.JiraIssueID, &m.JiraIssueKey, &m.JiraProjectID, &m.JiraIssueTypeID,
			&m.JiraStatusID, &m.JiraPriorityID, &m.JiraReporterAccountID, &m.JiraAssigneeAccountID,
			&redmineProject, &redmineTracker, &redmineStatus, &redminePriority,
			&redmineAuthor, &redmineAssignee, &redmineIssue,
			&proposedProject, &proposedTracker, &proposedStatus, &proposedPriority,
			&proposedAuthor, &proposedAssignee,
			&subject, &description, &startDate, &dueDate,
			&doneRatio, &estHours, &isPrivate,
			&cfPayload, &m.MigrationStatus, &notes, &hash,
			&m.CreatedAt, &m.LastUpdatedAt,
			&mr.Issue.ID, &mr.Issue.IssueKey, &mr.Issue.ProjectID, &issueType, &statusID, &statusCat,
			&priorityID, &reporter, &assignee, &parent,
			&mr.Issue.Summary, &adf, &html, &due,
			&origEst, &remEst, &spent,
			&labels, &fixVersions, &components,
			&mr.Issue.RawPayload, &createdAt2, &updatedAt2, &mr.Issue.ExtractedAt,
		)
		if err != nil {
			return nil, err
		}

		m.RedmineProjectID, m.RedmineTrackerID, m.RedmineStatusID, m.RedminePriorityID =
			redmineProject, redmineTracker, redmineStatus, redminePriority
		m.RedmineAuthorID, m.RedmineAssigneeID, m.RedmineIssueID = redmineAuthor, redmineAssignee, redmineIssue
		m.ProposedProjectID, m.ProposedTrackerID, m.ProposedStatusID, m.ProposedPriorityID =
			proposedProject, proposedTracker, proposedStatus, proposedPriority
		m.ProposedAuthorID, m.ProposedAssigneeID = proposedAuthor, proposedAssignee
		m.ProposedSubject, m.ProposedDescription, m.ProposedStartDate, m.ProposedDueDate =
			subject.String, description.String, startDate.String, dueDate.String
		m.ProposedDoneRatio = doneRatio
		m.ProposedEstimatedHours = estHours
		if isPrivate != nil {
			v := *isPrivate != 0
			m.ProposedIsPrivate = &v
		}
		m.ProposedCustomFieldPayload = cfPayload.String
		m.Notes, m.AutomationHash = notes.String, hash.String

		mr.Issue.IssueTypeID, mr.Issue.StatusID, mr.Issue.StatusCategoryKey = issueType.String, statusID.String, statusCat.String
		mr.Issue.PriorityID, mr.Issue.ReporterAccountID, mr.Issue.AssigneeAccountID, mr.Issue.ParentAccountID =
			priorityID.String, reporter.String, assignee.String, parent.String
		mr.Issue.DescriptionADF, mr.Issue.DescriptionHTML, mr.Issue.DueDate = adf.String, html.String, due.String
		mr.Issue.LabelsJSON, mr.Issue.FixVersionsJSON, mr.Issue.ComponentsJSON = labels.String, fixVersions.String, components.String
		mr.Issue.CreatedAt, mr.Issue.UpdatedAt = createdAt2.String, updatedAt2.String
		if origEst.Valid {
			v := origEst.Int64
			mr.Issue.TimeOriginalEstimate = &v
		}
		if remEst.Valid {
			v := remEst.Int64
			mr.Issue.TimeRemainingEstimate = &v
		}
		if spent.Valid {
			v := spent.Int64
			mr.Issue.TimeSpent = &v
		}

		mr.Mapping = m
		out = append(out, mr)
	}
	return out, rows.Err()
}

// IsRerunnableStatus reports whether the Transformer may reprocess a row
// currently in this status (spec §4.2 step 3a).
func IsRerunnableStatus(status string) bool {
	for _, s := range reRunnableStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// UpdateProposal persists the Transformer's computed proposal for one
// mapping row (spec §4.2 step 3o).
func (s *Store) UpdateProposal(ctx context.Context, m IssueMapping) error {
	_, err := s.stmts.updateProposal.ExecContext(ctx,
		m.RedmineProjectID, m.RedmineTrackerID, m.RedmineStatusID, m.RedminePriorityID,
		m.RedmineAuthorID, m.RedmineAssigneeID,
		m.ProposedProjectID, m.ProposedTrackerID, m.ProposedStatusID, m.ProposedPriorityID,
		m.ProposedAuthorID, m.ProposedAssigneeID,
		nullableString(m.ProposedSubject), nullableString(m.ProposedDescription),
		nullableString(m.ProposedStartDate), nullableString(m.ProposedDueDate),
		m.ProposedDoneRatio, m.ProposedEstimatedHours, boolPtrToInt(m.ProposedIsPrivate),
		nullableString(m.ProposedCustomFieldPayload),
		m.MigrationStatus, nullableString(m.Notes), nullableString(m.AutomationHash),
		Now(), m.ID,
	)
	return err
}

func boolPtrToInt(b *bool) any {
	if b == nil {
		return nil
	}
	if *b {
		return 1
	}
	return 0
}

// ListReadyForCreation returns every mapping row with
// migration_status = READY_FOR_CREATION, ordered by mapping id (spec §4.3
// step 1, §5 "Pusher... iterate mapping rows in ascending mapping_id").
func (s *Store) ListReadyForCreation(ctx context.Context) ([]IssueMapping, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, jira_issue_id, jira_issue_key, jira_project_id,
			redmine_project_id, redmine_tracker_id, redmine_status_id, redmine_priority_id,
			redmine_author_id, redmine_assignee_id, redmine_issue_id,
			proposed_project_id, proposed_tracker_id, proposed_status_id, proposed_priority_id,
			proposed_author_id, proposed_assignee_id,
			proposed_subject, proposed_description, proposed_start_date, proposed_due_date,
			proposed_done_ratio, proposed_estimated_hours, proposed_is_private,
			proposed_custom_field_payload, migration_status, notes, automation_hash,
			created_at, last_updated_at
		FROM migration_mapping_issues
		WHERE migration_status = ?
		ORDER BY id ASC`, StatusReadyForCreation)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []IssueMapping
	for rows.Next() {
		m, err := scanFullMapping(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanFullMapping(rows *sql.Rows) (IssueMapping, error) {
	var m IssueMapping
	var redmineProject, redmineTracker, redmineStatus, redminePriority, redmineAuthor, redmineAssignee, redmineIssue *int64
	var proposedProject, proposedTracker, proposedStatus, proposedPriority, proposedAuthor, proposedAssignee *int64
	var subject, description, startDate, dueDate, cfPayload, notes, hash sql.NullString
	var doneRatio *int64
	var estHours *float64
	var isPrivate *int

	err := rows.Scan(
		&m.ID, &m.JiraIssueID, &m.JiraIssueKey, &m.JiraProjectID,
		&redmineProject, &redmineTracker, &redmineStatus, &redminePriority,
		&redmineAuthor, &redmineAssignee, &redmineIssue,
		&proposedProject, &proposedTracker, &proposedStatus, &proposedPriority,
		&proposedAuthor, &proposedAssignee,
		&subject, &description, &startDate, &dueDate,
		&doneRatio, &estHours, &isPrivate,
		&cfPayload, &m.MigrationStatus, &notes, &hash,
		&m.CreatedAt, &m.LastUpdatedAt,
	)
	if err != nil {
		return IssueMapping{}, err
	}
	m.RedmineProjectID, m.RedmineTrackerID, m.RedmineStatusID, m.RedminePriorityID = redmineProject, redmineTracker, redmineStatus, redminePriority
	m.RedmineAuthorID, m.RedmineAssigneeID, m.RedmineIssueID = redmineAuthor, redmineAssignee, redmineIssue
	m.ProposedProjectID, m.ProposedTrackerID, m.ProposedStatusID, m.ProposedPriorityID = proposedProject, proposedTracker, proposedStatus, proposedPriority
	m.ProposedAuthorID, m.ProposedAssigneeID = proposedAuthor, proposedAssignee
	m.ProposedSubject, m.ProposedDescription, m.ProposedStartDate, m.ProposedDueDate =
		subject.String, description.String, startDate.String, dueDate.String
	m.ProposedDoneRatio = doneRatio
	m.ProposedEstimatedHours = estHours
	if isPrivate != nil {
		v := *isPrivate != 0
		m.ProposedIsPrivate = &v
	}
	m.ProposedCustomFieldPayload = cfPayload.String
	m.Notes, m.AutomationHash = notes.String, hash.String
	return m, nil
}

// MarkCreationSuccess records a successful Redmine issue creation (spec
// §4.3 step 3, at-most-once create invariant).
func (s *Store) MarkCreationSuccess(ctx context.Context, mappingID, redmineIssueID int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE migration_mapping_issues
		SET migration_status = ?, redmine_issue_id = ?, notes = NULL, last_updated_at = ?
		WHERE id = ?`, StatusCreationSuccess, redmineIssueID, Now(), mappingID)
	return err
}

// MarkCreationFailed records a failed Redmine issue creation attempt.
func (s *Store) MarkCreationFailed(ctx context.Context, mappingID int64, note string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE migration_mapping_issues
		SET migration_status = ?, notes = ?, last_updated_at = ?
		WHERE id = ?`, StatusCreationFailed, note, Now(), mappingID)
	return err
}

// MarkManualIntervention routes a row to MANUAL_INTERVENTION_REQUIRED with
// an explanatory note (used by both Transformer and Pusher).
func (s *Store) MarkManualIntervention(ctx context.Context, mappingID int64, note string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE migration_mapping_issues
		SET migration_status = ?, notes = ?, last_updated_at = ?
		WHERE id = ?`, StatusManualIntervention, note, Now(), mappingID)
	return err
}
