package transform

import (
	"github.com/jcatrysse/jira2redmine-issues/internal/hashutil"
	"github.com/jcatrysse/jira2redmine-issues/internal/store"
)

// computeHash builds the ordered automation-managed field list (spec §3,
// §4.7) for one IssueMapping and hashes it. The same field order is used
// both to compute the "current" hash (before a rerun touches the row) and
// the "new" hash (after), so drift is only ever detected against the
// operator's own edits, never against field-order churn.
func computeHash(m store.IssueMapping) string {
	p := hashutil.Payload{}.
		Add("redmine_project_id", int64Ptr(m.RedmineProjectID)).
		Add("redmine_tracker_id", int64Ptr(m.RedmineTrackerID)).
		Add("redmine_status_id", int64Ptr(m.RedmineStatusID)).
		Add("redmine_priority_id", int64Ptr(m.RedminePriorityID)).
		Add("redmine_author_id", int64Ptr(m.RedmineAuthorID)).
		Add("redmine_assignee_id", int64Ptr(m.RedmineAssigneeID)).
		Add("redmine_issue_id", int64Ptr(m.RedmineIssueID)).
		Add("proposed_project_id", int64Ptr(m.ProposedProjectID)).
		Add("proposed_tracker_id", int64Ptr(m.ProposedTrackerID)).
		Add("proposed_status_id", int64Ptr(m.ProposedStatusID)).
		Add("proposed_priority_id", int64Ptr(m.ProposedPriorityID)).
		Add("proposed_author_id", int64Ptr(m.ProposedAuthorID)).
		Add("proposed_assignee_id", int64Ptr(m.ProposedAssigneeID)).
		Add("proposed_subject", stringOrNil(m.ProposedSubject)).
		Add("proposed_description", stringOrNil(m.ProposedDescription)).
		Add("proposed_start_date", stringOrNil(m.ProposedStartDate)).
		Add("proposed_due_date", stringOrNil(m.ProposedDueDate)).
		Add("proposed_done_ratio", int64Ptr(m.ProposedDoneRatio)).
		Add("proposed_estimated_hours", float64Ptr(m.ProposedEstimatedHours)).
		Add("proposed_is_private", boolPtr(m.ProposedIsPrivate)).
		Add("proposed_custom_field_payload", rawJSONOrNil(m.ProposedCustomFieldPayload))
	return hashutil.Hash(p)
}

func int64Ptr(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func float64Ptr(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func boolPtr(v *bool) any {
	if v == nil {
		return nil
	}
	return *v
}

func stringOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func rawJSONOrNil(s string) any {
	if s == "" {
		return nil
	}
	return hashutil.RawJSON(s)
}
