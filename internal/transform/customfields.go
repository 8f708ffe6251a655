package transform

import (
	"encoding/json"

	"github.com/jcatrysse/jira2redmine-issues/internal/customfield"
	"github.com/jcatrysse/jira2redmine-issues/internal/store"
	"github.com/tidwall/gjson"
)

const cascadingFormat = "depending_list"

// buildCustomFieldPayload implements spec §4.2 step m / §4.4: for every
// mapped custom field present in the issue's raw payload, normalize its
// value (or, for a cascading parent/child pair, resolve it against the
// child index) into one or two payload entries. Returns "" when nothing
// normalized, matching the NULL-on-empty-array convention used elsewhere.
func buildCustomFieldPayload(issue store.JiraIssue, d Deps) string {
	payload := gjson.Parse(issue.RawPayload)
	fields := payload.Get("fields")
	if !fields.Exists() {
		return ""
	}

	var groups []customfield.PayloadGroup
	for fieldID, m := range d.CustomFields {
		// A cascading field's parent row is synthetic: it never appears under
		// "fields" itself, only its child does.
		v := fields.Get(gjson.Escape(fieldID))
		if !v.Exists() {
			continue
		}
		raw := []byte(v.Raw)

		if m.FieldFormat == cascadingFormat {
			parent, ok := d.CustomFields[m.MappingParentCustomFieldID]
			if !ok {
				continue
			}
			pairs, ok := customfield.ResolveCascading(raw, parent.RedmineCustomFieldID, m.RedmineCustomFieldID, d.ChildIndex, d.ChildLabelIndex)
			if !ok {
				continue
			}
			groups = append(groups, customfield.PayloadGroup(pairs))
			continue
		}

		entry, ok := customfield.Normalize(m, raw)
		if !ok {
			continue
		}
		groups = append(groups, customfield.PayloadGroup{entry})
	}

	if len(groups) == 0 {
		return ""
	}
	entries := customfield.SortPayloadGroups(groups)

	out, err := json.Marshal(entries)
	if err != nil {
		return ""
	}
	return string(out)
}
