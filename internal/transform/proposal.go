package transform

import (
	"context"
	"math"
	"strings"

	"github.com/jcatrysse/jira2redmine-issues/internal/resolve"
	"github.com/jcatrysse/jira2redmine-issues/internal/store"
	"github.com/jcatrysse/jira2redmine-issues/internal/textutil"
	"github.com/tidwall/gjson"
)

// buildProposal implements spec §4.2 steps c-n: resolve Redmine ids, apply
// configured defaults, build the proposed description and custom field
// payload, and decide the row's next migration_status. The returned notes
// string is non-empty only when the row lands on
// MANUAL_INTERVENTION_REQUIRED.
func buildProposal(ctx context.Context, d Deps, row store.MappingRow) (store.IssueMapping, string) {
	m := row.Mapping
	issue := row.Issue

	var notes []string

	m.RedmineProjectID, m.ProposedProjectID = resolveWithDefault(d.Project, issue.ProjectID, d.Defaults.DefaultRedmineProjectID)
	if m.ProposedProjectID == nil {
		notes = append(notes, "project not mapped")
	}

	m.RedmineTrackerID, m.ProposedTrackerID = resolveWithDefault(d.Tracker, issue.IssueTypeID, d.Defaults.DefaultRedmineTrackerID)
	if m.ProposedTrackerID == nil {
		notes = append(notes, "tracker not mapped")
	}

	m.RedmineStatusID, m.ProposedStatusID = resolveWithDefault(d.Status, issue.StatusID, d.Defaults.DefaultRedmineStatusID)
	if m.ProposedStatusID == nil {
		notes = append(notes, "status not mapped")
	}

	m.RedminePriorityID, m.ProposedPriorityID = resolveWithDefault(d.Priority, issue.PriorityID, d.Defaults.DefaultRedminePriorityID)
	if issue.PriorityID != "" && m.ProposedPriorityID == nil {
		notes = append(notes, "priority not mapped")
	}

	m.RedmineAuthorID, m.ProposedAuthorID = resolveWithDefault(d.User, issue.ReporterAccountID, d.Defaults.DefaultRedmineAuthorID)
	if issue.ReporterAccountID != "" && m.ProposedAuthorID == nil {
		notes = append(notes, "reporter not mapped")
	}

	m.RedmineAssigneeID, m.ProposedAssigneeID = resolveWithDefault(d.User, issue.AssigneeAccountID, d.Defaults.DefaultRedmineAssigneeID)
	if issue.AssigneeAccountID != "" && m.ProposedAssigneeID == nil {
		notes = append(notes, "assignee not mapped")
	}

	refs, err := loadAttachmentRefs(ctx, d.Store, issue.ID)
	if err != nil {
		refs = nil
	}
	m.ProposedDescription = buildDescription(issue, refs)

	m.ProposedSubject = textutil.Truncate255(issue.Summary)
	m.ProposedStartDate = substr10(issue.CreatedAt)
	m.ProposedDueDate = issue.DueDate
	m.ProposedDoneRatio = doneRatio(issue.StatusCategoryKey)
	m.ProposedEstimatedHours = estimatedHours(issue.TimeOriginalEstimate)
	m.ProposedIsPrivate = isPrivate(issue.RawPayload, d.Defaults.DefaultIsPrivate)

	m.ProposedCustomFieldPayload = buildCustomFieldPayload(issue, d)

	switch {
	case m.RedmineIssueID != nil:
		m.MigrationStatus = store.StatusMatchFound
		m.Notes = ""
	case len(notes) > 0:
		m.MigrationStatus = store.StatusManualIntervention
		m.Notes = strings.Join(notes, "; ")
	default:
		m.MigrationStatus = store.StatusReadyForCreation
		m.Notes = ""
	}

	return m, m.Notes
}

// resolveWithDefault implements spec §4.2 steps c-d: resolve jiraID against
// index; the redmine_* column holds the raw resolution (nil when
// unresolved), while the proposed_* column falls back to def when
// resolution failed.
func resolveWithDefault(index map[string]store.ResolvedMapping, jiraID string, def *int64) (redmine, proposed *int64) {
	if id, ok := resolve.Resolve(index, jiraID); ok {
		v := id
		return &v, &v
	}
	if def != nil {
		v := *def
		return nil, &v
	}
	return nil, nil
}

func substr10(s string) string {
	if len(s) >= 10 {
		return s[:10]
	}
	return s
}

func doneRatio(statusCategoryKey string) *int64 {
	if strings.EqualFold(statusCategoryKey, "done") {
		v := int64(100)
		return &v
	}
	return nil
}

func estimatedHours(seconds *int64) *float64 {
	if seconds == nil {
		return nil
	}
	hours := math.Round(float64(*seconds)/3600*100) / 100
	return &hours
}

func isPrivate(rawPayload string, def *bool) *bool {
	if rawPayload != "" {
		v := gjson.Get(rawPayload, "fields.security")
		if v.Exists() && v.Type != gjson.Null {
			b := true
			return &b
		}
	}
	if def != nil {
		v := *def
		return &v
	}
	return nil
}
