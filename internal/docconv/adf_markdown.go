// Package docconv renders Jira's two rich-text representations (Atlassian
// Document Format and server-rendered HTML) into Markdown, and provides the
// last-resort ADF-to-plaintext fallback and the attachment-link rewriting
// pass the Transformer applies to both (spec §4.5, §4.6).
package docconv

import (
	"strings"

	"github.com/jcatrysse/jira2redmine-issues/internal/jiratypes"
)

// ADFToMarkdown renders an Atlassian Document Format tree to Markdown.
// Traversal is iterative over an explicit stack of frames rather than
// recursive, because ADF trees can be hundreds of levels deep on
// pathological input (spec §9 Design Notes).
func ADFToMarkdown(doc jiratypes.ADFNode) string {
	out := renderFrameTree(doc)
	s, _ := out.(string)
	return postProcessMarkdown(s)
}

// adfFrame is one node awaiting render on the explicit traversal stack; it
// accumulates its children's already-rendered results before rendering
// itself.
type adfFrame struct {
	node         jiratypes.ADFNode
	nextChild    int
	childResults []any
}

func renderFrameTree(root jiratypes.ADFNode) any {
	stack := []*adfFrame{{node: root}}
	for {
		top := stack[len(stack)-1]
		if top.nextChild < len(top.node.Content) {
			child := top.node.Content[top.nextChild]
			top.nextChild++
			stack = append(stack, &adfFrame{node: child})
			continue
		}

		rendered := renderADFNode(top.node, top.childResults)
		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			return rendered
		}
		parent := stack[len(stack)-1]
		parent.childResults = append(parent.childResults, rendered)
	}
}

// tableCellResult is produced by tableCell/tableHeader nodes and consumed by
// their parent tableRow.
type tableCellResult struct {
	text    string
	colspan int
	header  bool
}

// tableRowResult is produced by tableRow nodes and consumed by their parent
// table.
type tableRowResult struct {
	cells []tableCellResult
}

func renderADFNode(n jiratypes.ADFNode, children []any) any {
	switch n.Type {
	case "", "doc":
		return joinStrings(children)

	case "paragraph":
		s := strings.TrimSpace(joinStrings(children))
		if s == "" {
			return "\n"
		}
		return s + "\n\n"

	case "text":
		return n.Text

	case "hardBreak":
		return "\n"

	case "heading":
		level := clamp(n.AttrInt("level", 1), 1, 6)
		return strings.Repeat("#", level) + " " + strings.TrimSpace(joinStrings(children)) + "\n\n"

	case "bulletList":
		return renderList(children, "- ")

	case "orderedList":
		return renderList(children, "1. ")

	case "listItem":
		s := strings.TrimSpace(joinStrings(children))
		lines := strings.Split(s, "\n")
		for i := 1; i < len(lines); i++ {
			if lines[i] != "" {
				lines[i] = "  " + lines[i]
			}
		}
		return strings.Join(lines, "\n")

	case "blockquote":
		s := strings.TrimRight(joinStrings(children), "\n")
		lines := strings.Split(s, "\n")
		for i, line := range lines {
			lines[i] = "> " + line
		}
		return strings.Join(lines, "\n") + "\n\n"

	case "rule":
		return "---\n\n"

	case "codeBlock":
		content := strings.TrimRight(joinStrings(children), "\n")
		return "```\n" + content + "\n```\n\n"

	case "table":
		return renderTable(children)

	case "tableRow":
		var cells []tableCellResult
		for _, c := range children {
			if tc, ok := c.(tableCellResult); ok {
				cells = append(cells, tc)
			}
		}
		return tableRowResult{cells: cells}

	case "tableCell":
		return tableCellResult{text: strings.TrimSpace(joinStrings(children)), colspan: clamp(n.AttrInt("colspan", 1), 1, 999)}

	case "tableHeader":
		return tableCellResult{text: strings.TrimSpace(joinStrings(children)), colspan: clamp(n.AttrInt("colspan", 1), 1, 999), header: true}

	default:
		return joinStrings(children)
	}
}

func renderList(children []any, prefix string) string {
	var b strings.Builder
	for _, c := range children {
		s, _ := c.(string)
		for _, line := range strings.Split(s, "\n") {
			if line == "" {
				continue
			}
			b.WriteString(prefix)
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	return b.String()
}

func joinStrings(children []any) string {
	var b strings.Builder
	for _, c := range children {
		if s, ok := c.(string); ok {
			b.WriteString(s)
		}
	}
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// renderTable builds a GFM table from the rendered rows, expanding colspans
// by duplicating the cell text followed by empty cells, normalizing every
// row to the max column count, escaping "|" in cell text, and synthesizing
// a blank header row when no cell of the first row carries text
// (spec §4.5 table rules).
func renderTable(children []any) string {
	var rows []tableRowResult
	for _, c := range children {
		if r, ok := c.(tableRowResult); ok {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return ""
	}

	expanded := make([][]string, len(rows))
	maxCols := 0
	for i, row := range rows {
		var cols []string
		for _, cell := range row.cells {
			text := strings.ReplaceAll(cell.text, "|", "\\|")
			cols = append(cols, text)
			for j := 1; j < cell.colspan; j++ {
				cols = append(cols, "")
			}
		}
		expanded[i] = cols
		if len(cols) > maxCols {
			maxCols = len(cols)
		}
	}
	for i := range expanded {
		for len(expanded[i]) < maxCols {
			expanded[i] = append(expanded[i], "")
		}
	}

	firstHasText := false
	for _, cell := range expanded[0] {
		if strings.TrimSpace(cell) != "" {
			firstHasText = true
			break
		}
	}

	var b strings.Builder
	writeRow := func(cols []string) {
		b.WriteString("|")
		for _, c := range cols {
			b.WriteString(" ")
			b.WriteString(c)
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}
	writeSeparator := func() {
		b.WriteString("|")
		for i := 0; i < maxCols; i++ {
			b.WriteString(" --- |")
		}
		b.WriteString("\n")
	}

	if !firstHasText {
		writeRow(make([]string, maxCols))
		writeSeparator()
		for _, row := range expanded {
			writeRow(row)
		}
	} else {
		writeRow(expanded[0])
		writeSeparator()
		for _, row := range expanded[1:] {
			writeRow(row)
		}
	}
	b.WriteString("\n")
	return b.String()
}

// postProcessMarkdown collapses 3+ consecutive newlines to 2 and trims the
// result (spec §4.5 "Collapse 3+ consecutive newlines to 2; trim").
func postProcessMarkdown(s string) string {
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(s)
}

// ADFToPlaintext is the last-resort renderer: a depth-first walk collecting
// every "text" node's content, inserting a newline per content-array entry
// boundary (spec §4.5). Returns "" (callers treat that as NULL) if nothing
// renders.
func ADFToPlaintext(doc jiratypes.ADFNode) string {
	var b strings.Builder
	walkPlaintext(doc, &b)
	return postProcessMarkdown(b.String())
}

func walkPlaintext(n jiratypes.ADFNode, b *strings.Builder) {
	// Iterative DFS with an explicit stack, mirroring ADFToMarkdown's
	// avoidance of recursion over attacker-controlled tree depth.
	type item struct {
		node    jiratypes.ADFNode
		isEntry bool // true if this frame should emit a newline boundary before children
	}
	stack := []item{{node: n}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.node.Text != "" {
			b.WriteString(top.node.Text)
		}
		if len(top.node.Content) > 0 {
			// push children in reverse so they're visited in original order
			for i := len(top.node.Content) - 1; i >= 0; i-- {
				stack = append(stack, item{node: top.node.Content[i]})
			}
			b.WriteString("\n")
		}
	}
}
