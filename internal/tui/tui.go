// Package tui is the interactive card deck: one card per checker tool, a file watcher that schedules runs, and a stream reader that fills the cards in as
// results arrive. All state lives in the bubbletea model and is only touched from its Update loop; goroutines at the edges (watcher walks, the backend
// stream) communicate exclusively through messages.
package tui

import (
	"time"

	"github.com/codalotl/checkdeck/internal/backend"
	"github.com/codalotl/checkdeck/internal/output"
	"github.com/codalotl/checkdeck/internal/toolset"

	tea "github.com/charmbracelet/bubbletea"
)

// Config carries everything the TUI needs from the command layer.
type Config struct {
	Client *backend.Client

	// Root is the absolute path of the watched project directory.
	Root string

	// Session identifies this client instance to the backend across runs.
	Session string

	// Tools is the resolved tool registry, in display order.
	Tools []toolset.Tool

	// Limits bound each card's displayed output. The show-all toggle bypasses them per card.
	Limits output.Limits

	// Debounce is the quiescence delay between a change (file save or keypress) and the run it triggers.
	Debounce time.Duration

	// WatchInterval is how often the watcher re-scans the project for changed .py files.
	WatchInterval time.Duration

	// Ignore holds glob patterns (slash-separated, ** allowed) for paths the watcher skips.
	Ignore []string

	NoColor bool
	Version string
}

// RunWithConfig launches the TUI in an alternate screen buffer and blocks until the user quits.
func RunWithConfig(cfg Config) error {
	program := tea.NewProgram(NewModel(cfg), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := program.Run()
	return err
}
