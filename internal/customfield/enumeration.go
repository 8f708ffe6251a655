package customfield

import (
	"encoding/json"
	"strings"
)

// DecodeEnumeration parses a CustomFieldMapping's enumeration_json column
// ("jira value/label/option id" -> "redmine label", spec §3) into the
// normalized-lowercase-key map Normalize expects. An empty or invalid input
// yields a nil map (no substitution performed).
func DecodeEnumeration(raw string) map[string]string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var flat map[string]string
	if err := json.Unmarshal([]byte(raw), &flat); err != nil {
		return nil
	}
	out := make(map[string]string, len(flat))
	for k, v := range flat {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}
