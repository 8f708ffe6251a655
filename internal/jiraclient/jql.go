package jiraclient

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var trailingOrderBy = regexp.MustCompile(`(?i)\s*ORDER\s+BY\s+.*$`)

// BuildJQL assembles the Extractor's keyset JQL per spec §4.1 step 2:
// "project = \"<escaped key>\"" AND-ed with the optional configured filter
// (ORDER BY stripped) AND-ed with "id > last_seen_id" when set, suffixed
// "ORDER BY id ASC".
func BuildJQL(projectKey, configuredFilter string, lastSeenID string) string {
	clauses := []string{fmt.Sprintf("project = %q", projectKey)}

	if f := strings.TrimSpace(trailingOrderBy.ReplaceAllString(configuredFilter, "")); f != "" {
		clauses = append(clauses, "("+f+")")
	}
	if lastSeenID != "" {
		clauses = append(clauses, "id > "+lastSeenID)
	}

	return strings.Join(clauses, " AND ") + " ORDER BY id ASC"
}

// ClampBatchSize enforces the spec §4.1 step 2 bound on page size.
func ClampBatchSize(n int) int {
	if n < 1 {
		return 1
	}
	if n > 100 {
		return 100
	}
	return n
}

// MaxInt64Str returns the larger of two decimal integer strings, comparing
// numerically rather than lexically, for the Extractor's
// "last_seen_id := max(last_seen_id, int(id))" step (spec §4.1 step 4).
func MaxInt64Str(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	an, aerr := strconv.ParseInt(a, 10, 64)
	bn, berr := strconv.ParseInt(b, 10, 64)
	if aerr != nil || berr != nil {
		if len(b) != len(a) {
			if len(b) > len(a) {
				return b
			}
			return a
		}
		if b > a {
			return b
		}
		return a
	}
	if bn > an {
		return b
	}
	return a
}
