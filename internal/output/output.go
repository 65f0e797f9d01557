// Package output turns a tool's raw terminal output into displayable rows: ANSI decoding, line/character truncation, and file:line link annotation.
//
// Truncation is a display projection only. Callers retain the raw text and re-run Process with zero Limits to show everything; the decoder always runs
// over the complete original, never over a previously cut copy.
package output

import (
	"unicode/utf8"

	"github.com/codalotl/checkdeck/internal/q/ansitext"
)

// Limits bound the displayed projection of an output. A non-positive limit disables that cut; the zero value shows everything.
type Limits struct {
	MaxLines int
	MaxChars int
}

// DefaultLimits are the standard display bounds for a tool card.
var DefaultLimits = Limits{MaxLines: 500, MaxChars: 100000}

// Result is the displayable projection of one tool output.
//
// TotalLines and TotalChars describe the full decoded text, not the projection, so callers can say how much was cut. Chars are text runes, not bytes and
// not display cells.
type Result struct {
	Rows       [][]ansitext.Span
	Truncated  bool
	TotalLines int
	TotalChars int
}

// Process decodes raw and applies lim. The line cut happens first; if the surviving text still exceeds the character budget it is cut mid-row,
// style-preserving. Either cut sets Truncated.
func Process(raw string, lim Limits) Result {
	rows := ansitext.SplitLines(ansitext.Decode(raw))

	res := Result{
		TotalLines: len(rows),
		TotalChars: countRunes(rows),
	}

	if lim.MaxLines > 0 && len(rows) > lim.MaxLines {
		rows = rows[:lim.MaxLines]
		res.Truncated = true
	}

	if lim.MaxChars > 0 && countRunes(rows) > lim.MaxChars {
		rows = cutRowsAtRunes(rows, lim.MaxChars)
		res.Truncated = true
	}

	res.Rows = rows
	return res
}

func countRunes(rows [][]ansitext.Span) int {
	count := 0
	for _, row := range rows {
		for _, span := range row {
			count += utf8.RuneCountInString(span.Text)
		}
	}
	return count
}

// cutRowsAtRunes keeps the first budget runes of rows. The row straddling the budget is cut mid-span; rows past it are dropped.
func cutRowsAtRunes(rows [][]ansitext.Span, budget int) [][]ansitext.Span {
	var out [][]ansitext.Span

	for _, row := range rows {
		if budget == 0 {
			break
		}
		n := 0
		for _, span := range row {
			n += utf8.RuneCountInString(span.Text)
		}
		if n <= budget {
			out = append(out, row)
			budget -= n
			continue
		}

		if cut := cutRowAtRunes(row, budget); len(cut) > 0 {
			out = append(out, cut)
		}
		break
	}

	return out
}

func cutRowAtRunes(row []ansitext.Span, budget int) []ansitext.Span {
	var out []ansitext.Span

	for _, span := range row {
		n := utf8.RuneCountInString(span.Text)
		if n <= budget {
			out = append(out, span)
			budget -= n
			continue
		}

		end := 0
		count := 0
		for i := range span.Text {
			if count == budget {
				end = i
				break
			}
			count++
		}
		if end > 0 {
			out = append(out, ansitext.Span{Text: span.Text[:end], Style: span.Style})
		}
		break
	}

	return out
}
