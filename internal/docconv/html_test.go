package docconv

import (
	"strings"
	"testing"
)

func TestHTMLToMarkdown_Basic(t *testing.T) {
	got := HTMLToMarkdown("<p>Hello <strong>world</strong></p>", nil)
	if !strings.Contains(got, "Hello") || !strings.Contains(got, "world") {
		t.Errorf("got %q", got)
	}
}

func TestHTMLToMarkdown_Empty(t *testing.T) {
	if got := HTMLToMarkdown("", nil); got != "" {
		t.Errorf("expected empty result for empty input, got %q", got)
	}
}

func TestHTMLToMarkdown_ADFMacroFallback(t *testing.T) {
	got := HTMLToMarkdown("<!-- ADF macro --> ", nil)
	if got != "" {
		t.Errorf("expected empty result for ADF macro marker, got %q", got)
	}
}

func TestHTMLToMarkdown_RewritesAttachmentLink(t *testing.T) {
	refs := map[string]AttachmentRef{"55": {UniqueFilename: "55__log.txt"}}
	html := `<p>See <a href="/secure/attachment/55/log.txt">log</a></p>`
	got := HTMLToMarkdown(html, refs)
	if !strings.Contains(got, "55__log.txt") {
		t.Errorf("expected rewritten attachment reference, got %q", got)
	}
}

func TestHTMLToMarkdown_Table(t *testing.T) {
	html := `<table><tr><th>A</th><th>B</th></tr><tr><td>1</td><td>2</td></tr></table>`
	got := HTMLToMarkdown(html, nil)
	if !strings.Contains(got, "A") || !strings.Contains(got, "B") {
		t.Errorf("expected table header cells rendered, got %q", got)
	}
}
