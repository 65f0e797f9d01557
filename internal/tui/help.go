package tui

import (
	_ "embed"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

//go:embed help.md
var helpSource []byte

// renderHelpOverlay renders the embedded help document centered in the content area.
func (m Model) renderHelpOverlay() string {
	body := strings.Join(helpLines(helpSource, m.styles), "\n")
	return lipgloss.Place(m.width, m.viewport.Height, lipgloss.Center, lipgloss.Center, m.styles.helpBox.Render(body))
}

// helpLines walks the markdown AST and turns headings, list items, and paragraphs into styled terminal lines. It understands exactly the structure help.md
// uses; other markup contributes its plain text.
func helpLines(src []byte, st styles) []string {
	root := goldmark.New().Parser().Parse(text.NewReader(src))

	var lines []string
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			if len(lines) > 0 {
				lines = append(lines, "")
			}
			lines = append(lines, st.helpHd.Render(inlineText(src, node, st)))
			return ast.WalkSkipChildren, nil
		case *ast.ListItem:
			lines = append(lines, "  "+inlineText(src, node, st))
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			lines = append(lines, inlineText(src, node, st))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return lines
}

// inlineText flattens a node's inline content to one styled line. Code spans get the key style; nested blocks and other inline markup contribute their
// text.
func inlineText(src []byte, n ast.Node, st styles) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.CodeSpan:
			var code strings.Builder
			for cc := c.FirstChild(); cc != nil; cc = cc.NextSibling() {
				if tt, ok := cc.(*ast.Text); ok {
					code.Write(tt.Segment.Value(src))
				}
			}
			b.WriteString(st.helpKey.Render(code.String()))
		default:
			b.WriteString(inlineText(src, c, st))
		}
	}
	return b.String()
}
