package push

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/jcatrysse/jira2redmine-issues/internal/store"
	"github.com/tidwall/gjson"
)

// issuePayload mirrors spec §4.3's Redmine create-issue body, marshaled
// with omitempty so null fields are simply absent rather than JSON null.
type issuePayload struct {
	ProjectID        int64        `json:"project_id"`
	TrackerID        int64        `json:"tracker_id"`
	StatusID         int64        `json:"status_id"`
	PriorityID       *int64       `json:"priority_id,omitempty"`
	Subject          string       `json:"subject"`
	Description      string       `json:"description,omitempty"`
	StartDate        string       `json:"start_date,omitempty"`
	DueDate          string       `json:"due_date,omitempty"`
	AssignedToID     *int64       `json:"assigned_to_id,omitempty"`
	DoneRatio        *int64       `json:"done_ratio,omitempty"`
	EstimatedHours   *float64     `json:"estimated_hours,omitempty"`
	IsPrivate        *int         `json:"is_private,omitempty"`
	CustomFields     []any        `json:"custom_fields,omitempty"`
	Uploads          []uploadItem `json:"uploads,omitempty"`
	AuthorID         *int64       `json:"author_id,omitempty"`
	CreatedOn        string       `json:"created_on,omitempty"`
	UpdatedOn        string       `json:"updated_on,omitempty"`
	ClosedOn         string       `json:"closed_on,omitempty"`
}

type createIssueRequest struct {
	Issue issuePayload `json:"issue"`
}

// buildPayload implements spec §4.3's Redmine payload construction. The
// default API omits author_id even when resolved (spec §9 Open Questions,
// "preserve current behaviour"); only the extended-API path includes it,
// via applyExtendedOverrides, alongside created_on/updated_on/closed_on.
func buildPayload(m store.IssueMapping, uploads []uploadItem, description string) createIssueRequest {
	p := issuePayload{
		ProjectID:      *m.ProposedProjectID,
		TrackerID:      *m.ProposedTrackerID,
		StatusID:       *m.ProposedStatusID,
		PriorityID:     m.ProposedPriorityID,
		Subject:        m.ProposedSubject,
		Description:    description,
		StartDate:      m.ProposedStartDate,
		DueDate:        m.ProposedDueDate,
		AssignedToID:   m.ProposedAssigneeID,
		DoneRatio:      m.ProposedDoneRatio,
		EstimatedHours: m.ProposedEstimatedHours,
		Uploads:        uploads,
	}
	if m.ProposedIsPrivate != nil {
		v := 0
		if *m.ProposedIsPrivate {
			v = 1
		}
		p.IsPrivate = &v
	}
	if m.ProposedCustomFieldPayload != "" {
		var cf []any
		if json.Unmarshal([]byte(m.ProposedCustomFieldPayload), &cf) == nil {
			p.CustomFields = cf
		}
	}
	return createIssueRequest{Issue: p}
}

// applyExtendedOverrides fetches the issue's raw payload to derive the
// author/timestamp overrides spec §4.3 reserves for extended-API pushes.
func applyExtendedOverrides(ctx context.Context, s *store.Store, m store.IssueMapping, req *createIssueRequest) error {
	req.Issue.AuthorID = m.ProposedAuthorID

	issue, err := s.GetJiraIssueByID(ctx, m.JiraIssueID)
	if err != nil {
		return err
	}
	req.Issue.CreatedOn = jiraTimestampToRedmine(issue.CreatedAt)
	req.Issue.UpdatedOn = jiraTimestampToRedmine(issue.UpdatedAt)

	if issue.RawPayload != "" {
		if resolved := gjson.Get(issue.RawPayload, "fields.resolutiondate"); resolved.Exists() && resolved.Type == gjson.String {
			req.Issue.ClosedOn = jiraTimestampToRedmine(resolved.String())
		}
	}
	return nil
}

// jiraTimestampToRedmine converts a Jira ISO-8601 timestamp, or the
// "YYYY-MM-DD HH:MM:SS" form already normalized in staging, to Redmine's
// extended-API "YYYY-MM-DDTHH:MM:SSZ" form.
func jiraTimestampToRedmine(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05.000-0700",
		"2006-01-02T15:04:05-0700",
		time.RFC3339,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format("2006-01-02T15:04:05Z")
		}
	}
	return s
}
