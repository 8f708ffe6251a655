package customfield

import (
	"strings"

	"github.com/jcatrysse/jira2redmine-issues/internal/jiratypes"
	"github.com/jcatrysse/jira2redmine-issues/internal/store"
)

// ResolveCascading implements spec §4.4's cascading-field resolution for a
// `depending_list` custom field: extract the child selection, resolve it
// against childIndex (by option id) or childLabelIndex (by label, only when
// unambiguous), and emit the parent+child payload pair.
//
// parentRedmineFieldID/childRedmineFieldID are the Redmine custom field ids
// of the parent and child columns.
func ResolveCascading(
	raw []byte,
	parentRedmineFieldID, childRedmineFieldID int64,
	childIndex map[string]store.CustomFieldChildMapping,
	childLabelIndex map[string][]store.CustomFieldChildMapping,
) ([]PayloadEntry, bool) {
	sel, ok := jiratypes.ExtractCascadingChild(raw)
	if !ok || !sel.OK() {
		return nil, false
	}

	child, resolved := childIndex[sel.ChildID]
	if !resolved {
		candidates, hasLabel := childLabelIndex[strings.ToLower(strings.TrimSpace(sel.ChildValue))]
		if !hasLabel || len(candidates) != 1 {
			return nil, false
		}
		child = candidates[0]
	}

	return []PayloadEntry{
		{ID: parentRedmineFieldID, Value: child.ParentLabel},
		{ID: childRedmineFieldID, Value: child.ChildLabel},
	}, true
}

// BuildChildLabelIndex groups a flat child-option index by lowercase
// child_label, the lookup spec §4.4 calls "child_label_lookup when exactly
// one candidate exists".
func BuildChildLabelIndex(childIndex map[string]store.CustomFieldChildMapping) map[string][]store.CustomFieldChildMapping {
	out := make(map[string][]store.CustomFieldChildMapping)
	for _, c := range childIndex {
		key := strings.ToLower(strings.TrimSpace(c.ChildLabel))
		out[key] = append(out[key], c)
	}
	return out
}
