package textutil

import "testing"

func TestTruncate255_Short(t *testing.T) {
	s := "Bug 1"
	if got := Truncate255(s); got != s {
		t.Fatalf("got %q, want %q", got, s)
	}
}

func TestTruncate255_ExactlyLimit(t *testing.T) {
	s := make([]rune, 255)
	for i := range s {
		s[i] = 'a'
	}
	in := string(s)
	if got := Truncate255(in); got != in {
		t.Fatalf("should not truncate exactly-255 input")
	}
}

func TestTruncate255_Over(t *testing.T) {
	s := make([]rune, 300)
	for i := range s {
		s[i] = 'a'
	}
	in := string(s)
	got := Truncate255(in)
	if CountGraphemes(got) != 255 {
		t.Fatalf("expected 255 graphemes, got %d", CountGraphemes(got))
	}
}

func TestTruncate255_DoesNotSplitGraphemeCluster(t *testing.T) {
	// family emoji: multiple runes joined by ZWJ form a single grapheme cluster.
	family := "\U0001F468‍\U0001F469‍\U0001F467‍\U0001F466"
	s := family
	for CountGraphemes(s) <= 255 {
		s += family
	}
	got := Truncate255(s)
	if CountGraphemes(got) > 255 {
		t.Fatalf("truncation exceeded 255 graphemes: %d", CountGraphemes(got))
	}
	// Result must be composed of whole family clusters, never a half emoji.
	if len(got)%len(family) != 0 {
		t.Fatalf("truncation split a grapheme cluster: len=%d", len(got))
	}
}
