// Package textutil provides small Unicode-safe string helpers shared across
// the migration phases.
package textutil

import "github.com/rivo/uniseg"

// Truncate255 truncates s to at most 255 grapheme clusters, matching the
// proposed_subject invariant (spec §3). Truncation never splits a grapheme
// cluster, so combining marks and multi-rune emoji survive intact.
func Truncate255(s string) string {
	return TruncateGraphemes(s, 255)
}

// TruncateGraphemes truncates s to at most n grapheme clusters.
func TruncateGraphemes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	gr := uniseg.NewGraphemes(s)
	count := 0
	end := 0
	for gr.Next() {
		count++
		if count > n {
			return s[:end]
		}
		_, to := gr.Positions()
		end = to
	}
	return s
}

// CountGraphemes returns the number of grapheme clusters in s.
func CountGraphemes(s string) int {
	return uniseg.GraphemeClusterCount(s)
}
