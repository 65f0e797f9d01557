package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestHelpLinesStructure(t *testing.T) {
	lines := helpLines(helpSource, newStyles(true))
	require.NotEmpty(t, lines)
	require.Equal(t, "checkdeck keys", lines[0])

	require.Contains(t, lines, "  r run every enabled checker")
	require.Contains(t, lines, "  enter / space collapse or expand the focused card")
	require.Contains(t, lines, "  q quit")

	// Each section heading gets a blank separator line.
	joined := strings.Join(lines, "\n")
	require.Contains(t, joined, "\n\nRuns\n")
	require.Contains(t, joined, "\n\nScrolling\n")
}

func TestRenderHelpOverlay(t *testing.T) {
	m := NewModel(testConfig())
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	overlay := m.renderHelpOverlay()
	require.Contains(t, overlay, "checkdeck keys")
	require.Contains(t, overlay, "╭") // boxed even without color
}
