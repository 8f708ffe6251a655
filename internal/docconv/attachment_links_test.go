package docconv

import (
	"strings"
	"testing"
)

func TestMapAttachmentURL_KnownID(t *testing.T) {
	refs := map[string]AttachmentRef{"12345": {UniqueFilename: "12345__screenshot.png"}}
	got := MapAttachmentURL("https://jira.example.com/secure/attachment/12345/screenshot.png", refs)
	if got != "12345__screenshot.png" {
		t.Errorf("got %q", got)
	}
}

func TestMapAttachmentURL_PrefersSharePoint(t *testing.T) {
	refs := map[string]AttachmentRef{"12345": {UniqueFilename: "12345__x.png", SharePointURL: "https://sharepoint.example.com/x.png"}}
	got := MapAttachmentURL("/attachment/12345", refs)
	if got != "https://sharepoint.example.com/x.png" {
		t.Errorf("got %q", got)
	}
}

func TestMapAttachmentURL_UnknownIDUnchanged(t *testing.T) {
	url := "/attachment/99999"
	got := MapAttachmentURL(url, map[string]AttachmentRef{})
	if got != url {
		t.Errorf("got %q, want unchanged %q", got, url)
	}
}

func TestMapAttachmentURL_LastResortNumericPattern(t *testing.T) {
	refs := map[string]AttachmentRef{"42": {UniqueFilename: "42__file.txt"}}
	got := MapAttachmentURL("/download/42/file.txt", refs)
	if got != "42__file.txt" {
		t.Errorf("got %q", got)
	}
}

func TestRewriteAttachmentLinks_MarkdownImage(t *testing.T) {
	refs := map[string]AttachmentRef{"7": {UniqueFilename: "7__diagram.png"}}
	text := `See ![diagram](https://jira.example.com/secure/attachment/7/diagram.png "diagram.png")`
	got := RewriteAttachmentLinks(text, refs)
	if !strings.Contains(got, "7__diagram.png") {
		t.Errorf("expected rewritten filename, got %q", got)
	}
}

func TestRewriteAttachmentLinks_SkipsSharePointURLs(t *testing.T) {
	refs := map[string]AttachmentRef{"7": {UniqueFilename: "7__diagram.png"}}
	text := `[doc](https://sharepoint.example.com/already-there.docx)`
	got := RewriteAttachmentLinks(text, refs)
	if got != text {
		t.Errorf("expected sharepoint link left untouched, got %q", got)
	}
}

func TestBuildUniqueFilename(t *testing.T) {
	cases := []struct{ id, original, want string }{
		{"100", "report.pdf", "100__report.pdf"},
		{"101", "my file (final).pdf", "101__my_file__final_.pdf"},
		{"102", "###", "102__attachment"},
	}
	for _, tc := range cases {
		got := BuildUniqueFilename(tc.id, tc.original)
		if got != tc.want {
			t.Errorf("BuildUniqueFilename(%q,%q) = %q, want %q", tc.id, tc.original, got, tc.want)
		}
	}
}
