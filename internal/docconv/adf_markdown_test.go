package docconv

import (
	"strings"
	"testing"

	"github.com/jcatrysse/jira2redmine-issues/internal/jiratypes"
)

func mustParseADF(t *testing.T, raw string) jiratypes.ADFNode {
	t.Helper()
	node, ok := jiratypes.ParseADF([]byte(raw))
	if !ok {
		t.Fatalf("ParseADF failed for %s", raw)
	}
	return node
}

func TestADFToMarkdown_ParagraphAndHeading(t *testing.T) {
	doc := mustParseADF(t, `{
		"type":"doc","content":[
			{"type":"heading","attrs":{"level":2},"content":[{"type":"text","text":"Title"}]},
			{"type":"paragraph","content":[{"type":"text","text":"Hello world"}]}
		]
	}`)
	got := ADFToMarkdown(doc)
	want := "## Title\n\nHello world"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestADFToMarkdown_HeadingLevelClamped(t *testing.T) {
	doc := mustParseADF(t, `{"type":"doc","content":[{"type":"heading","attrs":{"level":99},"content":[{"type":"text","text":"X"}]}]}`)
	got := ADFToMarkdown(doc)
	if !strings.HasPrefix(got, "###### X") {
		t.Errorf("expected clamped h6, got %q", got)
	}
}

func TestADFToMarkdown_BulletList(t *testing.T) {
	doc := mustParseADF(t, `{
		"type":"doc","content":[{"type":"bulletList","content":[
			{"type":"listItem","content":[{"type":"paragraph","content":[{"type":"text","text":"one"}]}]},
			{"type":"listItem","content":[{"type":"paragraph","content":[{"type":"text","text":"two"}]}]}
		]}]
	}`)
	got := ADFToMarkdown(doc)
	if !strings.Contains(got, "- one") || !strings.Contains(got, "- two") {
		t.Errorf("expected bullet items, got %q", got)
	}
}

func TestADFToMarkdown_Blockquote(t *testing.T) {
	doc := mustParseADF(t, `{"type":"doc","content":[{"type":"blockquote","content":[{"type":"paragraph","content":[{"type":"text","text":"quoted"}]}]}]}`)
	got := ADFToMarkdown(doc)
	if !strings.Contains(got, "> quoted") {
		t.Errorf("expected blockquote prefix, got %q", got)
	}
}

func TestADFToMarkdown_CodeBlock(t *testing.T) {
	doc := mustParseADF(t, `{"type":"doc","content":[{"type":"codeBlock","content":[{"type":"text","text":"x := 1"}]}]}`)
	got := ADFToMarkdown(doc)
	want := "```\nx := 1\n```"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestADFToMarkdown_Rule(t *testing.T) {
	doc := mustParseADF(t, `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"a"}]},{"type":"rule"},{"type":"paragraph","content":[{"type":"text","text":"b"}]}]}`)
	got := ADFToMarkdown(doc)
	if !strings.Contains(got, "---") {
		t.Errorf("expected horizontal rule, got %q", got)
	}
}

func TestADFToMarkdown_Table(t *testing.T) {
	doc := mustParseADF(t, `{
		"type":"doc","content":[{"type":"table","content":[
			{"type":"tableRow","content":[
				{"type":"tableHeader","content":[{"type":"paragraph","content":[{"type":"text","text":"A"}]}]},
				{"type":"tableHeader","content":[{"type":"paragraph","content":[{"type":"text","text":"B"}]}]}
			]},
			{"type":"tableRow","content":[
				{"type":"tableCell","content":[{"type":"paragraph","content":[{"type":"text","text":"1"}]}]},
				{"type":"tableCell","content":[{"type":"paragraph","content":[{"type":"text","text":"2"}]}]}
			]}
		]}]
	}`)
	got := ADFToMarkdown(doc)
	if !strings.Contains(got, "| A | B |") || !strings.Contains(got, "| 1 | 2 |") {
		t.Errorf("expected GFM table rows, got %q", got)
	}
}

func TestADFToMarkdown_TableColspanExpansion(t *testing.T) {
	doc := mustParseADF(t, `{
		"type":"doc","content":[{"type":"table","content":[
			{"type":"tableRow","content":[
				{"type":"tableHeader","attrs":{"colspan":2},"content":[{"type":"paragraph","content":[{"type":"text","text":"Wide"}]}]}
			]},
			{"type":"tableRow","content":[
				{"type":"tableCell","content":[{"type":"paragraph","content":[{"type":"text","text":"1"}]}]},
				{"type":"tableCell","content":[{"type":"paragraph","content":[{"type":"text","text":"2"}]}]}
			]}
		]}]
	}`)
	got := ADFToMarkdown(doc)
	if !strings.Contains(got, "| Wide |  |") {
		t.Errorf("expected colspan expansion with empty trailing cell, got %q", got)
	}
}

func TestADFToMarkdown_DeeplyNestedDoesNotOverflowStack(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"type":"doc","content":[`)
	depth := 5000
	for i := 0; i < depth; i++ {
		b.WriteString(`{"type":"blockquote","content":[`)
	}
	b.WriteString(`{"type":"paragraph","content":[{"type":"text","text":"deep"}]}`)
	for i := 0; i < depth; i++ {
		b.WriteString(`]}`)
	}
	b.WriteString(`]}`)

	doc := mustParseADF(t, b.String())
	got := ADFToMarkdown(doc)
	if !strings.Contains(got, "deep") {
		t.Errorf("expected deeply nested content to render, got len=%d", len(got))
	}
}

func TestADFToPlaintext(t *testing.T) {
	doc := mustParseADF(t, `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"hello"}]},{"type":"paragraph","content":[{"type":"text","text":"world"}]}]}`)
	got := ADFToPlaintext(doc)
	if !strings.Contains(got, "hello") || !strings.Contains(got, "world") {
		t.Errorf("got %q", got)
	}
}
