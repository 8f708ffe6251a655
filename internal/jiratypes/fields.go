package jiratypes

import (
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/tidwall/gjson"
)

// IsEmptyValue reports whether a raw Jira field value counts as empty per
// spec §4.4: null, "", the literal "none" (case-insensitive), [], or an
// empty ADF doc.
func IsEmptyValue(raw []byte) bool {
	if len(raw) == 0 {
		return true
	}
	r := gjson.ParseBytes(raw)
	switch r.Type {
	case gjson.Null:
		return true
	case gjson.String:
		s := strings.TrimSpace(r.String())
		return s == "" || strings.EqualFold(s, "none")
	case gjson.JSON:
		if r.IsArray() {
			return len(r.Array()) == 0
		}
		if r.IsObject() {
			if node, ok := ParseADF(raw); ok {
				return node.IsEmptyDoc()
			}
			return len(r.Map()) == 0
		}
	}
	return false
}

// labelManager mirrors Jira's "{labels:[...]}" custom field shape (used by
// the "Labeler"/label-manager field type).
type labelManager struct {
	Labels []string `mapstructure:"labels"`
}

// ExtractLabels reports whether raw is a Jira label-manager object and, if
// so, returns its non-empty, non-"none", de-duplicated (order-preserving)
// label strings.
func ExtractLabels(raw []byte) ([]string, bool) {
	r := gjson.ParseBytes(raw)
	if !r.IsObject() || !r.Get("labels").IsArray() {
		return nil, false
	}
	var lm labelManager
	if err := mapstructure.Decode(r.Value(), &lm); err != nil {
		return nil, false
	}
	seen := make(map[string]struct{}, len(lm.Labels))
	out := make([]string, 0, len(lm.Labels))
	for _, l := range lm.Labels {
		l = strings.TrimSpace(l)
		if l == "" || strings.EqualFold(l, "none") {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out, true
}

// ScalarString extracts the scalar representation of a Jira field value per
// spec §4.4's default-format rule: a bare JSON string is returned as-is; an
// object form is probed for "value", "name", "label", "id" in that order.
// The second return is false when no scalar could be extracted.
func ScalarString(raw []byte) (string, bool) {
	r := gjson.ParseBytes(raw)
	switch r.Type {
	case gjson.String:
		return r.String(), true
	case gjson.Number:
		return r.Raw, true
	case gjson.True, gjson.False:
		return r.Raw, true
	}
	if r.IsObject() {
		for _, key := range []string{"value", "name", "label", "id"} {
			if v := r.Get(key); v.Exists() && v.Type == gjson.String {
				return v.String(), true
			}
		}
	}
	return "", false
}

// AsList normalizes a raw field value into a list of raw JSON elements: if
// it is already a JSON array, each element is returned; otherwise the whole
// value is wrapped as a single-element list. This implements the
// is_multiple handling from spec §4.4.
func AsList(raw []byte) [][]byte {
	r := gjson.ParseBytes(raw)
	if r.IsArray() {
		arr := r.Array()
		out := make([][]byte, len(arr))
		for i, elem := range arr {
			out[i] = []byte(elem.Raw)
		}
		return out
	}
	return [][]byte{raw}
}

// CascadingChildSelection mirrors Jira's cascading-select child shape:
// {id, value} either directly or nested under "child".
type CascadingChildSelection struct {
	ChildID    string
	ChildValue string
	ok         bool
}

// ExtractCascadingChild reads a cascading custom field's child selection.
func ExtractCascadingChild(raw []byte) (CascadingChildSelection, bool) {
	r := gjson.ParseBytes(raw)
	if !r.IsObject() {
		return CascadingChildSelection{}, false
	}
	child := r
	if c := r.Get("child"); c.Exists() && c.IsObject() {
		child = c
	}
	id := child.Get("id")
	val := child.Get("value")
	if !id.Exists() {
		return CascadingChildSelection{}, false
	}
	return CascadingChildSelection{
		ChildID:    id.String(),
		ChildValue: val.String(),
		ok:         true,
	}, true
}

// OK reports whether the selection was successfully resolved.
func (c CascadingChildSelection) OK() bool { return c.ok }
