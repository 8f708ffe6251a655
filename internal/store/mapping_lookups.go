package store

import "context"

// LoadProjectIndex reads the whole migration_mapping_projects table into an
// immutable {jira_project_id -> ResolvedMapping} index, consumed read-only
// for the lifetime of a Transformer run (spec §5 "in-memory lookups are
// immutable after load").
func (s *Store) LoadProjectIndex(ctx context.Context) (map[string]ResolvedMapping, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT jira_project_id, redmine_project_id, migration_status FROM migration_mapping_projects`)
	if err != nil {
		return nil, err
	}
	return scanResolvedIndex(rows)
}

// LoadTrackerIndex reads migration_mapping_trackers.
func (s *Store) LoadTrackerIndex(ctx context.Context) (map[string]ResolvedMapping, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT jira_issue_type_id, redmine_tracker_id, migration_status FROM migration_mapping_trackers`)
	if err != nil {
		return nil, err
	}
	return scanResolvedIndex(rows)
}

// LoadStatusIndex reads migration_mapping_statuses.
func (s *Store) LoadStatusIndex(ctx context.Context) (map[string]ResolvedMapping, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT jira_status_id, redmine_status_id, migration_status FROM migration_mapping_statuses`)
	if err != nil {
		return nil, err
	}
	return scanResolvedIndex(rows)
}

// LoadPriorityIndex reads migration_mapping_priorities.
func (s *Store) LoadPriorityIndex(ctx context.Context) (map[string]ResolvedMapping, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT jira_priority_id, redmine_priority_id, migration_status FROM migration_mapping_priorities`)
	if err != nil {
		return nil, err
	}
	return scanResolvedIndex(rows)
}

// LoadUserIndex reads migration_mapping_users.
func (s *Store) LoadUserIndex(ctx context.Context) (map[string]ResolvedMapping, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT jira_account_id, redmine_user_id, migration_status FROM migration_mapping_users`)
	if err != nil {
		return nil, err
	}
	return scanResolvedIndex(rows)
}

func scanResolvedIndex(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
	Close() error
}) (map[string]ResolvedMapping, error) {
	defer rows.Close()
	idx := make(map[string]ResolvedMapping)
	for rows.Next() {
		var jiraID string
		var redmineID *int64
		var status string
		if err := rows.Scan(&jiraID, &redmineID, &status); err != nil {
			return nil, err
		}
		rm := ResolvedMapping{MigrationStatus: status}
		if redmineID != nil {
			rm.RedmineID = *redmineID
		}
		idx[jiraID] = rm
	}
	return idx, rows.Err()
}

// LoadCustomFieldIndex reads every migration_mapping_custom_fields row.
func (s *Store) LoadCustomFieldIndex(ctx context.Context) (map[string]CustomFieldMapping, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT jira_field_id, redmine_custom_field_id, field_format, is_multiple,
			mapping_parent_custom_field_id, enumeration_json
		FROM migration_mapping_custom_fields`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	idx := make(map[string]CustomFieldMapping)
	for rows.Next() {
		var m CustomFieldMapping
		var parent, enumJSON *string
		var isMultiple int
		if err := rows.Scan(&m.JiraFieldID, &m.RedmineCustomFieldID, &m.FieldFormat, &isMultiple, &parent, &enumJSON); err != nil {
			return nil, err
		}
		m.IsMultiple = isMultiple != 0
		if parent != nil {
			m.MappingParentCustomFieldID = *parent
		}
		if enumJSON != nil {
			m.EnumerationJSON = *enumJSON
		}
		idx[m.JiraFieldID] = m
	}
	return idx, rows.Err()
}

// LoadCustomFieldChildIndex reads migration_mapping_custom_field_children,
// keyed by jira_child_option_id, for cascading field resolution (spec §4.4).
func (s *Store) LoadCustomFieldChildIndex(ctx context.Context) (map[string]CustomFieldChildMapping, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT jira_child_option_id, jira_child_field_id, parent_label, child_label
		FROM migration_mapping_custom_field_children`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	idx := make(map[string]CustomFieldChildMapping)
	for rows.Next() {
		var m CustomFieldChildMapping
		if err := rows.Scan(&m.JiraChildOptionID, &m.JiraChildFieldID, &m.ParentLabel, &m.ChildLabel); err != nil {
			return nil, err
		}
		idx[m.JiraChildOptionID] = m
	}
	return idx, rows.Err()
}
