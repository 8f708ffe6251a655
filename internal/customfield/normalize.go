// Package customfield implements the Custom Field Normalizer (spec §4.4):
// turning a raw Jira custom field value plus its mapping row into a Redmine
// custom_fields payload entry.
package customfield

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jcatrysse/jira2redmine-issues/internal/docconv"
	"github.com/jcatrysse/jira2redmine-issues/internal/jiratypes"
	"github.com/jcatrysse/jira2redmine-issues/internal/store"
)

// PayloadEntry is one element of proposed_custom_field_payload: {id, value}
// where value is a single string unless the field is multi-valued (spec §3).
type PayloadEntry struct {
	ID    int64 `json:"id"`
	Value any   `json:"value"`
}

// Mapping bundles a custom field's own mapping row with the enumeration
// lookup already decoded from its JSON column, so callers don't repeatedly
// unmarshal it per issue.
type Mapping struct {
	store.CustomFieldMapping
	Enumeration map[string]string // normalized lowercase Jira value -> Redmine label
}

// Normalize computes the Redmine payload entry for one Jira custom field
// value, applying empty detection, label-manager extraction, multi-value
// handling, and per-format normalization (spec §4.4). Returns ok=false when
// the value is empty or fails to normalize to anything (field omitted).
func Normalize(m Mapping, raw []byte) (PayloadEntry, bool) {
	if jiratypes.IsEmptyValue(raw) {
		return PayloadEntry{}, false
	}

	if labels, ok := jiratypes.ExtractLabels(raw); ok {
		if len(labels) == 0 {
			return PayloadEntry{}, false
		}
		if m.IsMultiple {
			return PayloadEntry{ID: m.RedmineCustomFieldID, Value: dedupe(labels)}, true
		}
		return PayloadEntry{ID: m.RedmineCustomFieldID, Value: labels[0]}, true
	}

	var values []string
	for _, elem := range elementsFor(m.IsMultiple, raw) {
		v, ok := normalizeScalar(m, elem)
		if !ok {
			continue
		}
		values = append(values, v)
	}
	values = dedupe(values)
	if len(values) == 0 {
		return PayloadEntry{}, false
	}
	if m.IsMultiple {
		return PayloadEntry{ID: m.RedmineCustomFieldID, Value: values}, true
	}
	return PayloadEntry{ID: m.RedmineCustomFieldID, Value: values[0]}, true
}

// elementsFor implements spec §4.4's multi-value handling: when is_multiple
// and the raw is already a list, iterate every element; otherwise treat the
// whole raw value as a single element.
func elementsFor(isMultiple bool, raw []byte) [][]byte {
	if !isMultiple {
		return [][]byte{raw}
	}
	return jiratypes.AsList(raw)
}

func normalizeScalar(m Mapping, raw []byte) (string, bool) {
	format := strings.ToLower(m.FieldFormat)
	switch format {
	case "bool", "boolean":
		return normalizeBool(raw)
	case "int", "integer":
		return normalizeInt(raw)
	case "float", "decimal":
		return normalizeFloat(raw)
	case "date":
		return normalizeDate(raw)
	default:
		return normalizeDefault(raw, m.Enumeration)
	}
}

func normalizeBool(raw []byte) (string, bool) {
	s, ok := jiratypes.ScalarString(raw)
	if !ok {
		return "", false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return "1", true
	case "false", "0", "no":
		return "0", true
	default:
		return "", false
	}
}

func normalizeInt(raw []byte) (string, bool) {
	s, ok := jiratypes.ScalarString(raw)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return "", false
	}
	return strconv.FormatInt(n, 10), true
}

func normalizeFloat(raw []byte) (string, bool) {
	s, ok := jiratypes.ScalarString(raw)
	if !ok {
		return "", false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return "", false
	}
	out := strconv.FormatFloat(f, 'f', -1, 64)
	return out, true
}

func normalizeDate(raw []byte) (string, bool) {
	s, ok := jiratypes.ScalarString(raw)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if len(s) >= 10 {
		return s[:10], true
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return "", false
	}
	return strconv.FormatInt(ms, 10), true
}

func normalizeDefault(raw []byte, enumeration map[string]string) (string, bool) {
	if node, ok := jiratypes.ParseADF(raw); ok {
		s := strings.TrimSpace(docconv.ADFToPlaintext(node))
		if s == "" {
			return "", false
		}
		return substituteEnumeration(s, enumeration), true
	}

	s, ok := jiratypes.ScalarString(raw)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return "", false
	}
	return substituteEnumeration(s, enumeration), true
}

func substituteEnumeration(s string, enumeration map[string]string) string {
	if enumeration == nil {
		return s
	}
	if label, ok := enumeration[strings.ToLower(s)]; ok {
		return label
	}
	return s
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// PayloadGroup is one or two payload entries that must stay adjacent and in
// relative order: a single standard field's entry, or a cascading field's
// parent-then-child pair (spec §4.4, S6).
type PayloadGroup []PayloadEntry

// SortPayloadGroups orders groups by their first entry's field id, keeping
// each group's internal order intact, so cascading pairs are never split
// apart by the sort.
func SortPayloadGroups(groups []PayloadGroup) []PayloadEntry {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i][0].ID < groups[j][0].ID
	})
	var out []PayloadEntry
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
