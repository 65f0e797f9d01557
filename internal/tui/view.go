package tui

import (
	"fmt"
	"strings"

	"github.com/codalotl/checkdeck/internal/board"
	"github.com/codalotl/checkdeck/internal/output"
	"github.com/codalotl/checkdeck/internal/q/ansitext"
	"github.com/codalotl/checkdeck/internal/runctl"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "starting checkdeck"
	}
	if m.width < minWidth || m.height < minHeight {
		return m.renderSizeWarning()
	}

	body := m.viewport.View()
	if m.showHelp {
		body = m.renderHelpOverlay()
	}
	return body + "\n" + m.renderStatusBar()
}

func (m Model) renderSizeWarning() string {
	warning := fmt.Sprintf("Terminal too small.\nMinimum: %dx%d\nCurrent: %dx%d\nPlease resize your terminal.", minWidth, minHeight, m.width, m.height)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, warning)
}

// refreshCards rebuilds the viewport content from the board and records each card's first line for focus-follows-scroll.
func (m *Model) refreshCards() {
	if !m.ready {
		return
	}

	m.cardTops = m.cardTops[:0]
	cards := make([]string, 0, len(m.board.Workers))
	line := 0
	for i, w := range m.board.Workers {
		card := m.renderCard(w, i == m.focused)
		m.cardTops = append(m.cardTops, line)
		line += lipgloss.Height(card)
		cards = append(cards, card)
	}
	m.viewport.SetContent(strings.Join(cards, "\n"))
}

func (m Model) renderCard(w *board.Worker, focused bool) string {
	frameWidth := maxInt(m.width-2, 20)
	innerWidth := frameWidth - 2

	lines := []string{m.renderCardHeader(w, innerWidth)}
	if !w.Collapsed && w.Status.Kind == board.StatusDone {
		lines = append(lines, m.renderCardBody(w, innerWidth)...)
	}

	frame := m.styles.card
	if focused {
		frame = m.styles.cardFocus
	}
	return frame.Width(frameWidth).Render(strings.Join(lines, "\n"))
}

func (m Model) renderCardHeader(w *board.Worker, width int) string {
	marker := "▾"
	if w.Collapsed {
		marker = "▸"
	}
	if w.Status.Kind == board.StatusDisabled {
		marker = " "
	}

	left := marker + " " + m.styles.cardTitle.Render(w.Name)
	if w.Version != "" {
		left += " " + m.styles.cardMeta.Render(w.Version)
	}

	status := m.renderStatus(w)
	gap := width - lipgloss.Width(left) - lipgloss.Width(status)
	if gap < 1 {
		return lipgloss.NewStyle().MaxWidth(width).Render(left + " " + status)
	}
	return left + strings.Repeat(" ", gap) + status
}

func (m Model) renderStatus(w *board.Worker) string {
	switch w.Status.Kind {
	case board.StatusDisabled:
		return m.styles.dim.Render("disabled")
	case board.StatusPending:
		if m.running() && m.runScope.Contains(w.Name) {
			return m.spinner.View() + " " + m.styles.dim.Render("running")
		}
		return m.styles.dim.Render("waiting")
	}

	rc := w.Status.Returncode
	glyph, style := "✗", m.styles.fail
	if rc != nil && *rc == 0 {
		glyph, style = "✓", m.styles.pass
	}
	return style.Render(glyph+" "+exitLabel(rc)) + m.styles.cardMeta.Render(" · "+formatDuration(w.Status.DurationMS))
}

func (m Model) renderCardBody(w *board.Worker, width int) []string {
	lim := m.cfg.Limits
	if m.showAll[w.Name] {
		lim = output.Limits{}
	}
	res := output.Process(w.DisplayRaw(), lim)
	rows := markLinks(res.Rows, output.Links(res.Rows, m.files.paths()))

	lines := make([]string, 0, len(rows)+1)
	for _, row := range rows {
		cut := ansitext.CutSpans(row, width)
		if m.styles.noColor {
			lines = append(lines, ansitext.Text(cut))
		} else {
			lines = append(lines, ansitext.Encode(cut))
		}
	}

	if res.Truncated {
		more := res.TotalLines - len(res.Rows)
		label := fmt.Sprintf("… %d more lines (a to show all)", more)
		if more <= 0 {
			label = "… truncated (a to show all)"
		}
		lines = append(lines, m.styles.footer.Render(label))
	}
	return lines
}

// markLinks underlines each link's byte range, splitting spans at range boundaries. Other styling is preserved.
func markLinks(rows [][]ansitext.Span, links []output.Link) [][]ansitext.Span {
	if len(links) == 0 {
		return rows
	}

	byRow := make(map[int][]output.Link)
	for _, l := range links {
		byRow[l.Row] = append(byRow[l.Row], l)
	}

	out := make([][]ansitext.Span, len(rows))
	for i, row := range rows {
		if rowLinks := byRow[i]; len(rowLinks) > 0 {
			out[i] = underlineRanges(row, rowLinks)
		} else {
			out[i] = row
		}
	}
	return out
}

func underlineRanges(row []ansitext.Span, links []output.Link) []ansitext.Span {
	var out []ansitext.Span
	offset := 0

	for _, span := range row {
		start := offset
		end := offset + len(span.Text)
		offset = end

		cursor := start
		for cursor < end {
			next := end
			inLink := false
			for _, l := range links {
				if l.Start <= cursor && cursor < l.End {
					inLink = true
					next = minInt(next, l.End)
				} else if l.Start > cursor {
					next = minInt(next, l.Start)
				}
			}
			piece := span.Text[cursor-start : next-start]
			if piece != "" {
				st := span.Style
				if inLink {
					st.Underline = true
				}
				out = append(out, ansitext.Span{Text: piece, Style: st})
			}
			cursor = next
		}
	}
	return out
}

func (m Model) renderStatusBar() string {
	segments := []string{
		m.styles.title.Render("checkdeck " + m.cfg.Version),
		m.renderState(),
	}
	if !m.doneAt.IsZero() && m.lastErr == nil {
		segments = append(segments, m.styles.statusBar.Render("ran "+m.doneAt.Format("15:04:05")))
	}
	if m.board.TempDir != "" {
		segments = append(segments, m.styles.statusBar.Render("tmp "+m.board.TempDir))
	}
	if len(m.cfg.Session) >= 8 {
		segments = append(segments, m.styles.statusBar.Render("session "+m.cfg.Session[:8]))
	}
	if m.watchErr != nil {
		segments = append(segments, m.styles.stateFail.Render("watch: "+m.watchErr.Error()))
	}
	if m.notice != "" {
		segments = append(segments, m.styles.notice.Render(m.notice))
	}

	bar := strings.Join(segments, m.styles.statusBar.Render(" · "))
	hints := m.help.View(m.keys)

	gap := m.width - lipgloss.Width(bar) - lipgloss.Width(hints)
	if gap >= 1 {
		return bar + strings.Repeat(" ", gap) + hints
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(bar)
}

func (m Model) renderState() string {
	if m.lastErr != nil {
		return m.styles.stateFail.Render("failed: " + m.lastErr.Error())
	}
	switch m.ctrl.State() {
	case runctl.Scheduled:
		return m.styles.stateRun.Render("scheduled")
	case runctl.InFlight:
		return m.styles.stateRun.Render("running")
	default:
		return m.styles.stateOK.Render("idle")
	}
}

// exitLabel renders a result's exit status. Negative codes are backend-synthesized failure markers rather than real tool exits.
func exitLabel(rc *int) string {
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

// formatDuration renders a tool runtime: whole milliseconds under a second, one-decimal seconds above.
func formatDuration(ms float64) string {
	if ms < 1000 {
		return fmt.Sprintf("%.0fms", ms)
	}
	return fmt.Sprintf("%.1fs", ms/1000)
}
