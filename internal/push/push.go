// Package push implements the Pusher (phase "push", spec §4.3): creating
// Redmine issues for every mapping row that reached READY_FOR_CREATION,
// carrying attachment associations and SharePoint links forward, and never
// double-creating an issue for the same Jira key.
package push

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jcatrysse/jira2redmine-issues/internal/redmineclient"
	"github.com/jcatrysse/jira2redmine-issues/internal/store"
)

// Deps bundles the collaborators one Pusher run needs.
type Deps struct {
	Store       *store.Store
	Redmine     *redmineclient.Client
	ConfirmPush bool
	DryRun      bool
	UseExtended bool
}

// Summary accumulates the per-run buckets for the final log line.
type Summary struct {
	Created int
	Blocked int
	Failed  int
}

// Run pushes every READY_FOR_CREATION row (spec §4.3).
func Run(ctx context.Context, d Deps) (Summary, error) {
	var sum Summary

	if d.UseExtended && !d.DryRun {
		if err := d.Redmine.ProbeExtendedAPI(ctx); err != nil {
			return sum, fmt.Errorf("extended-api health probe: %w", err)
		}
	}

	candidates, err := d.Store.ListReadyForCreation(ctx)
	if err != nil {
		return sum, fmt.Errorf("list ready-for-creation rows: %w", err)
	}

	for _, m := range candidates {
		if err := pushOne(ctx, d, m, &sum); err != nil {
			return sum, fmt.Errorf("push mapping row %d (%s): %w", m.ID, m.JiraIssueKey, err)
		}
	}

	return sum, nil
}

func pushOne(ctx context.Context, d Deps, m store.IssueMapping, sum *Summary) error {
	usable, err := d.Store.ListUsableAttachments(ctx, m.JiraIssueID)
	if err != nil {
		return err
	}

	blocked, err := countsBlock(ctx, d.Store, m, len(usable))
	if err != nil {
		return err
	}
	if blocked != "" {
		sum.Blocked++
		log.Printf("[blocked] %s: %s", m.JiraIssueKey, blocked)
		return d.Store.MarkManualIntervention(ctx, m.ID, blocked)
	}

	if m.ProposedProjectID == nil || m.ProposedTrackerID == nil || m.ProposedStatusID == nil {
		sum.Blocked++
		note := "project/tracker/status not fully resolved"
		log.Printf("[blocked] %s: %s", m.JiraIssueKey, note)
		return d.Store.MarkManualIntervention(ctx, m.ID, note)
	}

	decisions, tokens, sharepointLinks := classify(usable)

	description := appendSharePointLinks(m.ProposedDescription, sharepointLinks)

	payload := buildPayload(m, tokens, description)
	if d.UseExtended {
		if err := applyExtendedOverrides(ctx, d.Store, m, &payload); err != nil {
			return err
		}
	}

	path := d.Redmine.IssuesPath()
	if d.DryRun {
		pretty, _ := json.MarshalIndent(payload, "", "  ")
		log.Printf("[dry-run] POST %s\n%s", path, pretty)
		return nil
	}
	if !d.ConfirmPush {
		pretty, _ := json.MarshalIndent(payload, "", "  ")
		log.Printf("[preview] POST %s (pass --confirm-push to apply)\n%s", path, pretty)
		return nil
	}

	created, err := d.Redmine.CreateIssue(ctx, payload)
	if err != nil {
		sum.Failed++
		note := truncateNote(err.Error())
		log.Printf("[error] %s: create failed: %v", m.JiraIssueKey, err)
		return d.Store.MarkCreationFailed(ctx, m.ID, note)
	}
	if created.ID == 0 {
		sum.Failed++
		note := "redmine response missing issue.id"
		log.Printf("[error] %s: %s", m.JiraIssueKey, note)
		return d.Store.MarkCreationFailed(ctx, m.ID, note)
	}

	if err := d.Store.MarkCreationSuccess(ctx, m.ID, created.ID); err != nil {
		return err
	}
	if err := markAttachmentOutcomes(ctx, d.Store, decisions); err != nil {
		return err
	}
	sum.Created++
	log.Printf("[created] %s -> redmine issue %d", m.JiraIssueKey, created.ID)
	return nil
}

// countsBlock implements spec §4.3 step 2's readiness and consistency
// checks, returning a non-empty note when the row must be blocked.
func countsBlock(ctx context.Context, s *store.Store, m store.IssueMapping, usableCount int) (string, error) {
	pending, err := s.CountAttachmentsPendingDownloadOrUpload(ctx, m.JiraIssueID)
	if err != nil {
		return "", err
	}
	if pending > 0 {
		return fmt.Sprintf("%d attachment(s) not yet downloaded/uploaded", pending), nil
	}

	associating, err := s.CountAttachmentsPendingAssociation(ctx, m.JiraIssueID)
	if err != nil {
		return "", err
	}
	if associating != usableCount {
		return fmt.Sprintf("attachment count mismatch: %d pending association, %d usable", associating, usableCount), nil
	}
	return "", nil
}

func truncateNote(s string) string {
	const max = 300
	if len(s) > max {
		return s[:max]
	}
	return s
}
