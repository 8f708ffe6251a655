package extract

import (
	"strconv"
	"strings"
	"time"

	"github.com/jcatrysse/jira2redmine-issues/internal/store"
	"github.com/jcatrysse/jira2redmine-issues/internal/textutil"
	"github.com/tidwall/gjson"
)

// parseIssue turns one raw search-result issue (the `{id,key,fields,
// renderedFields}` shape spec §6 documents) into a staging_jira_issues row,
// applying the normalization rules of spec §4.1.
func parseIssue(raw []byte) store.JiraIssue {
	r := gjson.ParseBytes(raw)
	fields := r.Get("fields")

	id := r.Get("id").String()
	key := r.Get("key").String()

	issue := store.JiraIssue{
		ID:                id,
		IssueKey:          key,
		ProjectID:         fields.Get("project.id").String(),
		IssueTypeID:       fields.Get("issuetype.id").String(),
		StatusID:          fields.Get("status.id").String(),
		StatusCategoryKey: fields.Get("status.statusCategory.key").String(),
		PriorityID:        fields.Get("priority.id").String(),
		ReporterAccountID: fields.Get("reporter.accountId").String(),
		AssigneeAccountID: fields.Get("assignee.accountId").String(),
		ParentAccountID:   fields.Get("parent.id").String(),
		Summary:           normalizeSummary(fields.Get("summary").String(), key),
		DueDate:           normalizeDate(fields.Get("duedate").String()),
		CreatedAt:         normalizeTimestamp(fields.Get("created").String()),
		UpdatedAt:         normalizeTimestamp(fields.Get("updated").String()),
		RawPayload:        string(raw),
		ExtractedAt:       store.Now(),
	}

	if desc := fields.Get("description"); desc.Exists() && desc.IsObject() {
		issue.DescriptionADF = desc.Raw
	}
	if html := r.Get("renderedFields.description"); html.Exists() && html.Type == gjson.String {
		issue.DescriptionHTML = strings.TrimSpace(html.String())
	}

	issue.TimeOriginalEstimate = normalizeIntField(fields.Get("timeoriginalestimate"))
	issue.TimeRemainingEstimate = normalizeIntField(fields.Get("timeestimate"))
	issue.TimeSpent = normalizeIntField(fields.Get("timespent"))

	issue.LabelsJSON = jsonArrayOrEmpty(fields.Get("labels"))
	issue.FixVersionsJSON = idArrayOrEmpty(fields.Get("fixVersions"))
	issue.ComponentsJSON = idArrayOrEmpty(fields.Get("components"))

	return issue
}

// normalizeSummary implements spec §4.1: trim, truncate to 255 graphemes,
// substitute a placeholder when empty.
func normalizeSummary(summary, key string) string {
	s := strings.TrimSpace(summary)
	if s == "" {
		return "[No summary] " + key
	}
	return textutil.Truncate255(s)
}

// normalizeDate passes through a Jira YYYY-MM-DD date unchanged; blank stays
// blank.
func normalizeDate(s string) string {
	return strings.TrimSpace(s)
}

// normalizeTimestamp converts a Jira ISO-8601 timestamp to UTC
// "YYYY-MM-DD HH:MM:SS" (spec §4.1). Unparseable input is left as-is so the
// original value is never silently dropped.
func normalizeTimestamp(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range []string{
		"2006-01-02T15:04:05.000-0700",
		"2006-01-02T15:04:05-0700",
		time.RFC3339,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format("2006-01-02 15:04:05")
		}
	}
	return s
}

// normalizeIntField accepts an int, a finite float with zero fractional
// part, or a strict decimal string; anything else returns nil (spec §4.1
// "Integer time fields").
func normalizeIntField(v gjson.Result) *int64 {
	switch v.Type {
	case gjson.Number:
		f := v.Float()
		if f != float64(int64(f)) {
			return nil
		}
		n := int64(f)
		return &n
	case gjson.String:
		s := strings.TrimSpace(v.String())
		if s == "" {
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil
		}
		return &n
	}
	return nil
}

// jsonArrayOrEmpty renders a label array (plain strings) as a JSON array, or
// "" when absent/empty (spec §4.1 "JSON aggregates... empty becomes NULL").
func jsonArrayOrEmpty(v gjson.Result) string {
	if !v.IsArray() || len(v.Array()) == 0 {
		return ""
	}
	return v.Raw
}

// idArrayOrEmpty extracts the `.id` of each element of an array field
// (fixVersions, components) into a JSON array of strings, or "" when empty.
func idArrayOrEmpty(v gjson.Result) string {
	if !v.IsArray() {
		return ""
	}
	arr := v.Array()
	if len(arr) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(elem.Get("id").String())
		b.WriteByte('"')
	}
	b.WriteByte(']')
	return b.String()
}

// flattenObjectField flattens an arbitrary object-schema custom field value
// into (path, value) pairs (spec §3 JiraObjectKV, §4.1 step 5), one row per
// leaf scalar, array indices included in the path so repeated keys don't
// collide.
func flattenObjectField(raw []byte) []store.KV {
	r := gjson.ParseBytes(raw)
	var out []store.KV
	flattenValue("", r, &out)
	return out
}

func flattenValue(path string, v gjson.Result, out *[]store.KV) {
	switch {
	case v.IsObject():
		v.ForEach(func(key, val gjson.Result) bool {
			child := key.String()
			if path != "" {
				child = path + "." + child
			}
			flattenValue(child, val, out)
			return true
		})
	case v.IsArray():
		for i, elem := range v.Array() {
			child := path + "[" + strconv.Itoa(i) + "]"
			flattenValue(child, elem, out)
		}
	default:
		if path == "" {
			path = "value"
		}
		*out = append(*out, store.KV{Path: path, Value: v.String()})
	}
}

// sampleValues implements spec §4.1 step 5's "one per array element or one
// scalar" sampling rule for staging_jira_object_samples.
func sampleValues(raw []byte) []string {
	r := gjson.ParseBytes(raw)
	if r.IsArray() {
		arr := r.Array()
		out := make([]string, len(arr))
		for i, elem := range arr {
			out[i] = elem.Raw
		}
		return out
	}
	return []string{r.Raw}
}
