// Package extract implements the Extractor (phase "jira", spec §4.1):
// per-project keyset pagination of Jira issue search into the staging
// database.
package extract

import (
	"context"
	"fmt"
	"log"

	"github.com/jcatrysse/jira2redmine-issues/internal/jiraclient"
	"github.com/jcatrysse/jira2redmine-issues/internal/store"
	"github.com/tidwall/gjson"
)

// Deps bundles the collaborators one Extractor run needs.
type Deps struct {
	Store                *store.Store
	Jira                 *jiraclient.Client
	JQLFilter            string
	BatchSize            int
	ObjectSchemaFieldIDs []string
}

// Summary accumulates per-run counters for the final log line.
type Summary struct {
	ProjectsProcessed int
	ProjectsFailed    int
	IssuesUpserted    int
}

// Run extracts every Jira project whose mapping row still has
// issues_extracted_at = NULL (spec §4.1).
func Run(ctx context.Context, d Deps) (Summary, error) {
	var sum Summary

	projects, err := d.Store.ListProjectsPendingExtraction(ctx)
	if err != nil {
		return sum, fmt.Errorf("list projects pending extraction: %w", err)
	}

	for _, p := range projects {
		if p.JiraProjectKey == "" {
			log.Printf("[warn] project %s has no jira_project_key, skipping", p.JiraProjectID)
			continue
		}
		n, err := extractProject(ctx, d, p)
		if err != nil {
			sum.ProjectsFailed++
			log.Printf("[error] extracting project %s: %v", p.JiraProjectKey, err)
			continue
		}
		sum.ProjectsProcessed++
		sum.IssuesUpserted += n
	}

	return sum, nil
}

// extractProject runs the full keyset pagination loop for one project and,
// on success, stamps the project mapping row (spec §4.1 steps 2-7).
func extractProject(ctx context.Context, d Deps, p store.ProjectMapping) (int, error) {
	batchSize := jiraclient.ClampBatchSize(d.BatchSize)
	lastSeenID := ""
	count := 0

	for {
		jql := jiraclient.BuildJQL(p.JiraProjectKey, d.JQLFilter, lastSeenID)
		result, err := d.Jira.Search(ctx, jql, batchSize)
		if err != nil {
			return count, fmt.Errorf("search: %w", err)
		}

		for _, raw := range result.Issues {
			issue := parseIssue(raw)
			lastSeenID = jiraclient.MaxInt64Str(lastSeenID, issue.ID)

			if err := d.Store.UpsertJiraIssue(ctx, issue); err != nil {
				return count, fmt.Errorf("upsert issue %s: %w", issue.IssueKey, err)
			}
			count++

			if err := upsertLabels(ctx, d.Store, raw); err != nil {
				return count, fmt.Errorf("upsert labels for %s: %w", issue.IssueKey, err)
			}
			if err := upsertLinks(ctx, d.Store, issue.ID, raw); err != nil {
				return count, fmt.Errorf("upsert links for %s: %w", issue.IssueKey, err)
			}
			if err := sampleObjectFields(ctx, d.Store, d.ObjectSchemaFieldIDs, issue.IssueKey, raw); err != nil {
				return count, fmt.Errorf("sample object fields for %s: %w", issue.IssueKey, err)
			}
		}

		effectivePageSize := batchSize
		if result.MaxResults > 0 {
			effectivePageSize = result.MaxResults
		}
		if len(result.Issues) < effectivePageSize {
			break
		}
	}

	if err := d.Store.StampProjectIssuesExtracted(ctx, p.JiraProjectID); err != nil {
		return count, fmt.Errorf("stamp extracted: %w", err)
	}
	return count, nil
}

func upsertLabels(ctx context.Context, s *store.Store, raw []byte) error {
	labels := gjson.GetBytes(raw, "fields.labels")
	if !labels.IsArray() {
		return nil
	}
	for _, l := range labels.Array() {
		if err := s.UpsertLabel(ctx, l.String()); err != nil {
			return err
		}
	}
	return nil
}

// upsertLinks canonicalizes each issuelinks entry to (source, target) in the
// outward direction (spec §3 JiraIssueLink): an outwardIssue makes the
// current issue the source; an inwardIssue makes the current issue the
// target.
func upsertLinks(ctx context.Context, s *store.Store, issueID string, raw []byte) error {
	links := gjson.GetBytes(raw, "fields.issuelinks")
	if !links.IsArray() {
		return nil
	}
	for _, l := range links.Array() {
		link := store.IssueLink{
			JiraLinkID: l.Get("id").String(),
			LinkType:   linkTypeName(l),
		}
		switch {
		case l.Get("outwardIssue").Exists():
			link.SourceIssueID = issueID
			link.TargetIssueID = l.Get("outwardIssue.id").String()
		case l.Get("inwardIssue").Exists():
			link.SourceIssueID = l.Get("inwardIssue.id").String()
			link.TargetIssueID = issueID
		default:
			continue
		}
		if err := s.UpsertIssueLink(ctx, link); err != nil {
			return err
		}
	}
	return nil
}

func linkTypeName(l gjson.Result) string {
	if v := l.Get("type.outward"); v.Exists() {
		return v.String()
	}
	return l.Get("type.name").String()
}

// sampleObjectFields implements spec §4.1 step 5: for every field configured
// as "object schema", replace its sample + KV rows with the current value.
func sampleObjectFields(ctx context.Context, s *store.Store, fieldIDs []string, issueKey string, raw []byte) error {
	for _, fieldID := range fieldIDs {
		v := gjson.GetBytes(raw, "fields."+fieldID)
		if !v.Exists() || v.Type == gjson.Null {
			continue
		}
		if err := s.ReplaceObjectSamples(ctx, fieldID, issueKey, sampleValues([]byte(v.Raw))); err != nil {
			return err
		}
		if err := s.ReplaceObjectKV(ctx, fieldID, issueKey, flattenObjectField([]byte(v.Raw))); err != nil {
			return err
		}
	}
	return nil
}
