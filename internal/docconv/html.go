package docconv

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// adfMacroMarker is the literal Jira emits in rendered HTML when a field
// could only be expressed as an unsupported ADF macro (spec §4.5 "skip the
// input if after comment stripping it is empty AND contains the string
// 'ADF macro'").
const adfMacroMarker = "ADF macro"

var htmlConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

// HTMLToMarkdown converts Jira's server-rendered HTML description to
// Markdown, rewriting attachment links/images via refs along the way (spec
// §4.5 HTML → Markdown). Returns "" (NULL) when the input is empty or
// resolves to nothing renderable.
func HTMLToMarkdown(raw string, refs map[string]AttachmentRef) string {
	stripped := stripHTMLComments(raw)
	if strings.TrimSpace(stripped) == "" && strings.Contains(raw, adfMacroMarker) {
		return ""
	}

	doc, err := html.ParseFragment(strings.NewReader(raw), &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body})
	if err != nil {
		return ""
	}
	for _, n := range doc {
		rewriteAttachmentNodes(n, refs)
	}

	var b strings.Builder
	for _, n := range doc {
		if err := html.Render(&b, n); err != nil {
			return ""
		}
	}
	serialized := stripXMLProlog(b.String())

	md, err := htmlConverter.ConvertString(serialized)
	if err != nil {
		return ""
	}
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	return md
}

func stripHTMLComments(s string) string {
	for {
		start := strings.Index(s, "<!--")
		if start < 0 {
			return s
		}
		end := strings.Index(s[start:], "-->")
		if end < 0 {
			return s[:start]
		}
		s = s[:start] + s[start+end+3:]
	}
}

func stripXMLProlog(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "<?xml") {
		if i := strings.Index(s, "?>"); i >= 0 {
			return strings.TrimSpace(s[i+2:])
		}
	}
	return s
}

// rewriteAttachmentDOM rewrites attachment references found in <a>/<img>
// elements of a raw HTML fragment, used by RewriteAttachmentLinks' DOM pass
// over arbitrary text blobs (spec §4.6 step 1), independent of the full
// HTML→Markdown pipeline.
func rewriteAttachmentDOM(raw string, refs map[string]AttachmentRef) string {
	doc, err := html.ParseFragment(strings.NewReader(raw), &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body})
	if err != nil {
		return raw
	}
	for _, n := range doc {
		rewriteAttachmentNodes(n, refs)
	}
	var b strings.Builder
	for _, n := range doc {
		if err := html.Render(&b, n); err != nil {
			return raw
		}
	}
	return b.String()
}

// rewriteAttachmentNodes walks the tree rewriting <a href> and <img src>
// attachment references and stripping the preview/metadata attributes spec
// §4.5 steps 2-3 call out. Jira description HTML is shallow (not
// attacker-controlled depth like ADF), so plain recursion is fine here.
func rewriteAttachmentNodes(n *html.Node, refs map[string]AttachmentRef) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "a":
			rewriteAnchor(n, refs)
		case "img":
			rewriteImage(n, refs)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteAttachmentNodes(c, refs)
	}
}

func rewriteAnchor(n *html.Node, refs map[string]AttachmentRef) {
	href := attrValue(n, "href")
	linkedResourceID := attrValue(n, "data-linked-resource-id")

	id := firstAttachmentID(href, linkedResourceID)
	if id != "" {
		if ref, ok := refs[id]; ok {
			resolved := ref.UniqueFilename
			if ref.SharePointURL != "" {
				resolved = ref.SharePointURL
			}
			setAttr(n, "href", resolved)
			if strings.TrimSpace(textContent(n)) == "" {
				setTextContent(n, resolved)
			}
		}
	}
	removeAttrsWithPrefix(n, "file-preview-")
	removeAttr(n, "title")
	removeAttr(n, "data-linked-resource-id")
}

func rewriteImage(n *html.Node, refs map[string]AttachmentRef) {
	src := attrValue(n, "src")
	mediaID := attrValue(n, "data-media-services-id")
	attachID := attrValue(n, "data-attachment-id")

	id := firstAttachmentID(src, mediaID, attachID)
	if id != "" {
		if ref, ok := refs[id]; ok {
			resolved := ref.UniqueFilename
			if ref.SharePointURL != "" {
				resolved = ref.SharePointURL
			}
			setAttr(n, "src", resolved)
		}
	}
	removeAttr(n, "title")
	removeAttr(n, "alt")
	removeAttrsWithPrefix(n, "data-attachment-")
	removeAttrsWithPrefix(n, "data-media-services-")
}

// firstAttachmentID tries each candidate (URL-like, then bare id
// attributes) against the attachment patterns and returns the first match.
func firstAttachmentID(candidates ...string) string {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		for _, pattern := range attachmentURLPatterns {
			if m := pattern.FindStringSubmatch(c); m != nil {
				return m[1]
			}
		}
	}
	return ""
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			out = append(out, a)
		}
	}
	n.Attr = out
}

func removeAttrsWithPrefix(n *html.Node, prefix string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if !strings.HasPrefix(a.Key, prefix) {
			out = append(out, a)
		}
	}
	n.Attr = out
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func setTextContent(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}
