// Package transform implements the Transformer (phase "transform", spec
// §4.2): reconciling staged Jira issues against the mapping tables into
// concrete Redmine proposals, while preserving manual operator overrides
// via the automation-hash compare-and-skip.
package transform

import (
	"context"
	"fmt"
	"log"

	"github.com/jcatrysse/jira2redmine-issues/internal/config"
	"github.com/jcatrysse/jira2redmine-issues/internal/customfield"
	"github.com/jcatrysse/jira2redmine-issues/internal/store"
)

// Deps bundles the collaborators one Transformer run needs: the store plus
// the eight read-only mapping indices loaded once per run (spec §5
// "in-memory lookups are immutable after load").
type Deps struct {
	Store           *store.Store
	Defaults        config.IssuesMigrationConfig
	Project         map[string]store.ResolvedMapping
	Tracker         map[string]store.ResolvedMapping
	Status          map[string]store.ResolvedMapping
	Priority        map[string]store.ResolvedMapping
	User            map[string]store.ResolvedMapping
	CustomFields    map[string]customfield.Mapping
	ChildIndex      map[string]store.CustomFieldChildMapping
	ChildLabelIndex map[string][]store.CustomFieldChildMapping
}

// LoadDeps builds a Deps by reading every mapping index from the store
// (spec §4.2 step 2 "Index loads").
func LoadDeps(ctx context.Context, s *store.Store, defaults config.IssuesMigrationConfig) (Deps, error) {
	d := Deps{Store: s, Defaults: defaults}

	var err error
	if d.Project, err = s.LoadProjectIndex(ctx); err != nil {
		return Deps{}, fmt.Errorf("load project index: %w", err)
	}
	if d.Tracker, err = s.LoadTrackerIndex(ctx); err != nil {
		return Deps{}, fmt.Errorf("load tracker index: %w", err)
	}
	if d.Status, err = s.LoadStatusIndex(ctx); err != nil {
		return Deps{}, fmt.Errorf("load status index: %w", err)
	}
	if d.Priority, err = s.LoadPriorityIndex(ctx); err != nil {
		return Deps{}, fmt.Errorf("load priority index: %w", err)
	}
	if d.User, err = s.LoadUserIndex(ctx); err != nil {
		return Deps{}, fmt.Errorf("load user index: %w", err)
	}

	rawCF, err := s.LoadCustomFieldIndex(ctx)
	if err != nil {
		return Deps{}, fmt.Errorf("load custom field index: %w", err)
	}
	d.CustomFields = make(map[string]customfield.Mapping, len(rawCF))
	for id, m := range rawCF {
		d.CustomFields[id] = customfield.Mapping{
			CustomFieldMapping: m,
			Enumeration:        customfield.DecodeEnumeration(m.EnumerationJSON),
		}
	}

	if d.ChildIndex, err = s.LoadCustomFieldChildIndex(ctx); err != nil {
		return Deps{}, fmt.Errorf("load custom field child index: %w", err)
	}
	d.ChildLabelIndex = customfield.BuildChildLabelIndex(d.ChildIndex)

	return d, nil
}

// Summary accumulates the per-run buckets spec §4.2 step 4 documents.
type Summary struct {
	Matched          int
	ReadyForCreation int
	ManualReview     int
	ManualOverrides  int
	Skipped          int
	Unchanged        int
	StatusCounts     map[string]int
}

func newSummary() Summary {
	return Summary{StatusCounts: make(map[string]int)}
}

// Run executes the full Transformer pass: the sync step, then one proposal
// pass over every mapping row (spec §4.2).
func Run(ctx context.Context, d Deps) (Summary, error) {
	sum := newSummary()

	issues, err := d.Store.ListJiraIssues(ctx)
	if err != nil {
		return sum, fmt.Errorf("list staged issues: %w", err)
	}
	for _, issue := range issues {
		if err := d.Store.SyncMappingRow(ctx, issue); err != nil {
			return sum, fmt.Errorf("sync mapping row for %s: %w", issue.IssueKey, err)
		}
	}

	rows, err := d.Store.ListMappingRowsForTransform(ctx)
	if err != nil {
		return sum, fmt.Errorf("list mapping rows: %w", err)
	}

	for _, row := range rows {
		if err := processRow(ctx, d, row, &sum); err != nil {
			return sum, fmt.Errorf("process mapping row %d (%s): %w", row.Mapping.ID, row.Mapping.JiraIssueKey, err)
		}
	}

	return sum, nil
}

func processRow(ctx context.Context, d Deps, row store.MappingRow, sum *Summary) error {
	m := row.Mapping

	if !store.IsRerunnableStatus(m.MigrationStatus) {
		sum.Skipped++
		return nil
	}

	if m.AutomationHash != "" {
		currentHash := computeHash(m)
		if currentHash != m.AutomationHash {
			log.Printf("[preserved] %s: manual edits detected, skipping automation", m.JiraIssueKey)
			sum.ManualOverrides++
			return nil
		}
	}

	oldHash := m.AutomationHash

	proposal, notes := buildProposal(ctx, d, row)
	newHash := computeHash(proposal)
	proposal.AutomationHash = newHash

	if oldHash != "" && newHash == oldHash {
		sum.Unchanged++
	}

	if err := d.Store.UpdateProposal(ctx, proposal); err != nil {
		return err
	}

	sum.StatusCounts[proposal.MigrationStatus]++
	switch proposal.MigrationStatus {
	case store.StatusMatchFound:
		sum.Matched++
	case store.StatusReadyForCreation:
		sum.ReadyForCreation++
	case store.StatusManualIntervention:
		sum.ManualReview++
		log.Printf("[manual] %s: %s", m.JiraIssueKey, notes)
	}
	return nil
}
