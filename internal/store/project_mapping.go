package store

import "context"

// ListProjectsPendingExtraction returns every project mapping row whose
// issues_extracted_at is still NULL, ordered by project key (spec §4.1,
// §5 "Extractor processes projects in ORDER BY project_key").
func (s *Store) ListProjectsPendingExtraction(ctx context.Context) ([]ProjectMapping, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT jira_project_id, jira_project_key, redmine_project_id, migration_status
		FROM migration_mapping_projects
		WHERE issues_extracted_at IS NULL
		ORDER BY jira_project_key ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProjectMapping
	for rows.Next() {
		var p ProjectMapping
		var redmineID *int64
		if err := rows.Scan(&p.JiraProjectID, &p.JiraProjectKey, &redmineID, &p.MigrationStatus); err != nil {
			return nil, err
		}
		p.RedmineProjectID = redmineID
		out = append(out, p)
	}
	return out, rows.Err()
}

// StampProjectIssuesExtracted records that a full keyset pass over a
// project's issues completed without transport failure (spec §4.1 step 7).
func (s *Store) StampProjectIssuesExtracted(ctx context.Context, jiraProjectID string) error {
	_, err := s.stmts.stampProjectDone.ExecContext(ctx, Now(), jiraProjectID)
	return err
}

// UpsertProjectMapping is a convenience used by tests to seed project rows;
// in production this table is populated by the out-of-scope projects script.
func (s *Store) UpsertProjectMapping(ctx context.Context, p ProjectMapping) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO migration_mapping_projects (jira_project_id, jira_project_key, redmine_project_id, migration_status)
		VALUES (?,?,?,?)
		ON CONFLICT(jira_project_id) DO UPDATE SET
			jira_project_key=excluded.jira_project_key,
			redmine_project_id=excluded.redmine_project_id,
			migration_status=excluded.migration_status
	`, p.JiraProjectID, p.JiraProjectKey, p.RedmineProjectID, p.MigrationStatus)
	return err
}
