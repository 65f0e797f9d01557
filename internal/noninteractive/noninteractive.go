// Package noninteractive runs one full check run and prints a sequential report, for CI and scripting. It shares the interactive mode's stream plumbing
// (backend client, protocol parser, board) but writes each tool's result as it arrives instead of rendering cards.
package noninteractive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/codalotl/checkdeck/internal/backend"
	"github.com/codalotl/checkdeck/internal/board"
	"github.com/codalotl/checkdeck/internal/output"
	"github.com/codalotl/checkdeck/internal/protocol"
	"github.com/codalotl/checkdeck/internal/q/ansitext"
	"github.com/codalotl/checkdeck/internal/toolset"

	"golang.org/x/term"
)

type Options struct {
	// Client talks to the checker service. Required.
	Client *backend.Client

	// Root is the absolute path of the project directory to check.
	Root string

	// Session identifies this client to the backend across requests.
	Session string

	// Tools is the resolved tool registry. The backend decides what actually runs; the registry seeds the report and the pass/fail verdict.
	Tools []toolset.Tool

	// Limits bound each tool's printed output. The zero value prints everything.
	Limits output.Limits

	// NoColor forces plain text even when Out is a terminal.
	NoColor bool

	// If Out != nil, the report goes to Out; otherwise to Stdout. Output is styled only when Out is a terminal and NoColor is unset.
	Out io.Writer
}

// Run executes one full check run and reports each tool's result as it arrives, ending with a verdict line. It returns true when every enabled tool
// finished with exit code 0. A tool finding problems is a false verdict, not an error; errors mean the run itself could not complete (backend unreachable,
// stream cut short, context cancelled).
func Run(ctx context.Context, opts Options) (bool, error) {
	if opts.Client == nil {
		return false, errors.New("backend client is required")
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	styled := !opts.NoColor && isTerminal(out)

	deck := board.New(opts.Tools)
	if names := deck.EnabledNames(); len(names) > 0 {
		if err := writeLine(out, "checking with "+strings.Join(names, ", ")); err != nil {
			return false, err
		}
		if err := writeLine(out, ""); err != nil {
			return false, err
		}
	}

	stream, err := opts.Client.Start(ctx, backend.Request{Session: opts.Session, Root: opts.Root})
	if err != nil {
		return false, err
	}

	done := false
	for line := range stream.Lines() {
		if line.Err != nil {
			stream.Cancel()
			return false, line.Err
		}
		msg, ok := protocol.ParseLine(line.Text)
		if !ok {
			continue
		}
		switch m := msg.(type) {
		case protocol.Metadata:
			deck.ApplyMetadata(m, nil)
		case protocol.Result:
			if w, applied := deck.ApplyResult(m, nil); applied {
				if err := printWorker(out, w, opts.Limits, styled); err != nil {
					stream.Cancel()
					return false, err
				}
			}
		case protocol.Done:
			done = true
		}
		if done {
			break
		}
	}
	if !done {
		stream.Cancel()
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, errors.New("stream ended before done message")
	}
	stream.Close()

	return printVerdict(out, deck, styled)
}

func printWorker(out io.Writer, w *board.Worker, lim output.Limits, styled bool) error {
	if err := writeLine(out, renderLine(headerSpans(w), styled)); err != nil {
		return err
	}

	res := output.Process(w.DisplayRaw(), lim)
	omitted := res.TotalLines - len(res.Rows)

	rows := res.Rows
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	for _, row := range rows {
		if err := writeLine(out, renderLine(row, styled)); err != nil {
			return err
		}
	}

	if res.Truncated {
		label := fmt.Sprintf("… %d more lines", omitted)
		if omitted <= 0 {
			label = "… output truncated"
		}
		if err := writeLine(out, label); err != nil {
			return err
		}
	}
	return writeLine(out, "")
}

// printVerdict names every tool that finished nonzero or never reported, then writes the verdict line. The bool mirrors the verdict.
func printVerdict(out io.Writer, deck *board.Board, styled bool) (bool, error) {
	var failing []string
	for _, w := range deck.Workers {
		switch {
		case w.Status.Kind == board.StatusDone:
			if !passedCode(w.Status.Returncode) {
				failing = append(failing, w.Name)
			}
		case w.Enabled:
			// Enabled but no result by the time the stream finished.
			line := []ansitext.Span{
				{Text: w.Name, Style: ansitext.Style{Bold: true}},
				{Text: " · no result"},
			}
			if err := writeLine(out, renderLine(line, styled)); err != nil {
				return false, err
			}
			failing = append(failing, w.Name)
		}
	}

	if len(failing) == 0 {
		verdict := []ansitext.Span{{Text: "✓ all checks passed", Style: ansitext.Style{Fg: passColor()}}}
		return true, writeLine(out, renderLine(verdict, styled))
	}
	verdict := []ansitext.Span{{Text: "✗ failed: " + strings.Join(failing, ", "), Style: ansitext.Style{Fg: failColor()}}}
	return false, writeLine(out, renderLine(verdict, styled))
}

func headerSpans(w *board.Worker) []ansitext.Span {
	color := failColor()
	if passedCode(w.Status.Returncode) {
		color = passColor()
	}
	return []ansitext.Span{
		{Text: w.Name, Style: ansitext.Style{Bold: true}},
		{Text: " · "},
		{Text: exitText(w.Status.Returncode) + " · " + formatMS(w.Status.DurationMS), Style: ansitext.Style{Fg: color}},
	}
}

func renderLine(spans []ansitext.Span, styled bool) string {
	if styled {
		return ansitext.Encode(spans)
	}
	return ansitext.Text(spans)
}

func writeLine(out io.Writer, s string) error {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, err := io.WriteString(out, s)
	return err
}

func passedCode(rc *int) bool {
	return rc != nil && *rc == 0
}

// exitText labels a result's exit information. Negative codes are backend-synthesized failure markers, not real tool exits.
func exitText(rc *int) string {
	switch {
	case rc == nil:
		return "no exit code"
	case *rc == -1:
		return "tool missing"
	case *rc == -2:
		return "timed out"
	case *rc == -3:
		return "backend error"
	default:
		return fmt.Sprintf("exit %d", *rc)
	}
}

func formatMS(ms float64) string {
	if ms < 1000 {
		return fmt.Sprintf("%.0fms", ms)
	}
	return fmt.Sprintf("%.1fs", ms/1000)
}

func passColor() *ansitext.Color {
	c := ansitext.BasePalette[2]
	return &c
}

func failColor() *ansitext.Color {
	c := ansitext.BasePalette[1]
	return &c
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
