package ansitext

import (
	"strings"

	"github.com/codalotl/checkdeck/internal/q/uni"
)

// Text returns the concatenated text of spans with styling discarded.
func Text(spans []Span) string {
	var b strings.Builder
	for _, span := range spans {
		b.WriteString(span.Text)
	}
	return b.String()
}

// Width returns the display width of spans in terminal cells (assumes a single row: newlines would make the result meaningless).
func Width(spans []Span) int {
	width := 0
	for _, span := range spans {
		width += uni.TextWidth(span.Text)
	}
	return width
}

// SplitLines splits spans into rows on \n. The newline itself belongs to no row. Input ending in \n therefore yields a trailing empty row, which renders
// as a blank line.
func SplitLines(spans []Span) [][]Span {
	rows := [][]Span{nil}

	for _, span := range spans {
		text := span.Text
		for {
			idx := strings.IndexByte(text, '\n')
			if idx < 0 {
				break
			}
			if idx > 0 {
				rows[len(rows)-1] = append(rows[len(rows)-1], Span{Text: text[:idx], Style: span.Style})
			}
			rows = append(rows, nil)
			text = text[idx+1:]
		}
		if text != "" {
			rows[len(rows)-1] = append(rows[len(rows)-1], Span{Text: text, Style: span.Style})
		}
	}

	return rows
}

// CutSpans cuts a single row of spans to at most width display cells. Grapheme clusters are never split: a wide cluster straddling the boundary is dropped
// entirely, so the result may be narrower than width.
func CutSpans(spans []Span, width int) []Span {
	if width <= 0 {
		return nil
	}

	var out []Span
	remaining := width

	for _, span := range spans {
		w := uni.TextWidth(span.Text)
		if w <= remaining {
			out = append(out, span)
			remaining -= w
			continue
		}

		iter := uni.NewGraphemeIterator(span.Text)
		end := 0
		for iter.Next() {
			gw := iter.TextWidth()
			if gw > remaining {
				break
			}
			remaining -= gw
			end = iter.End()
		}
		if end > 0 {
			out = append(out, Span{Text: span.Text[:end], Style: span.Style})
		}
		break
	}

	return out
}
