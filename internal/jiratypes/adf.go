// Package jiratypes models the polymorphic JSON shapes Jira returns: the
// Atlassian Document Format (ADF) tree used for rich text, and the handful
// of scalar/object/array shapes Jira uses for custom field values. Rather
// than the "try four keys in order" style common in ad-hoc integrations, the
// helpers here expose an explicit capability set (IsEmptyValue, ExtractLabels,
// ScalarString, AsList, ExtractCascadingChild) so callers never guess.
package jiratypes

import "encoding/json"

// ADFNode is one node of an Atlassian Document Format tree. ADF trees can be
// deeply nested on degenerate input, so renderers over this type should walk
// it with an explicit stack rather than recursion (see internal/docconv).
type ADFNode struct {
	Type    string          `json:"type"`
	Text    string          `json:"text,omitempty"`
	Content []ADFNode       `json:"content,omitempty"`
	Attrs   map[string]any  `json:"attrs,omitempty"`
	Marks   []ADFMark       `json:"marks,omitempty"`
	raw     json.RawMessage `json:"-"`
}

type ADFMark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// ParseADF decodes a raw ADF document. An empty or null input yields a zero
// ADFNode with Type == "" and ok == false.
func ParseADF(raw []byte) (ADFNode, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return ADFNode{}, false
	}
	var node ADFNode
	if err := json.Unmarshal(raw, &node); err != nil {
		return ADFNode{}, false
	}
	node.raw = raw
	return node, node.Type != "" || len(node.Content) > 0
}

// IsEmptyDoc reports whether a "doc"-typed ADF node has no content at all,
// matching the empty-value detection in spec §4.4 ("an ADF doc with no
// content").
func (n ADFNode) IsEmptyDoc() bool {
	if n.Type != "doc" && n.Type != "" {
		return false
	}
	for _, child := range n.Content {
		if !child.isEffectivelyEmpty() {
			return false
		}
	}
	return true
}

func (n ADFNode) isEffectivelyEmpty() bool {
	if n.Text != "" {
		return false
	}
	if n.Type == "hardBreak" || n.Type == "rule" {
		return false
	}
	for _, child := range n.Content {
		if !child.isEffectivelyEmpty() {
			return false
		}
	}
	return true
}

// AttrInt reads an integer-valued attribute, tolerating the float64 that
// encoding/json produces for numeric JSON literals.
func (n ADFNode) AttrInt(key string, fallback int) int {
	v, ok := n.Attrs[key]
	if !ok {
		return fallback
	}
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	default:
		return fallback
	}
}

// AttrString reads a string-valued attribute.
func (n ADFNode) AttrString(key string) string {
	v, ok := n.Attrs[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
