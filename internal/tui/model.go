package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/codalotl/checkdeck/internal/backend"
	"github.com/codalotl/checkdeck/internal/board"
	"github.com/codalotl/checkdeck/internal/protocol"
	"github.com/codalotl/checkdeck/internal/q/ansitext"
	"github.com/codalotl/checkdeck/internal/runctl"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	minWidth  = 60
	minHeight = 12

	// maxStreamBatch caps how many stream lines one message carries so a single Update never stalls on a firehose.
	maxStreamBatch = 64

	noticeDuration = 2500 * time.Millisecond
)

type debounceFiredMsg struct{ gen int }

type watchTickMsg struct{}

type fsSnapshotMsg struct {
	files snapshot
	err   error
}

type runStartedMsg struct {
	runID  int
	stream *backend.Stream
	err    error
}

type streamLinesMsg struct {
	runID  int
	lines  []backend.Line
	closed bool
}

type noticeExpiredMsg struct{ id int }

// Model is the bubbletea model for the card deck. All fields are owned by the Update loop.
type Model struct {
	cfg    Config
	ctrl   *runctl.Controller
	board  *board.Board
	styles styles
	keys   keyMap

	// stream feeds the active run; nil between runs. runScope is the scope the active run was dispatched with.
	stream   *backend.Stream
	runScope runctl.Scope

	files    snapshot
	watchErr error

	width, height int
	ready         bool
	focused       int
	showAll       map[string]bool
	showHelp      bool
	quitting      bool

	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model

	// cardTops holds each card's first content line so focus changes can scroll it into view.
	cardTops []int

	lastErr  error
	doneAt   time.Time
	notice   string
	noticeID int

	initialDelay time.Duration
	initialGen   int
}

// NewModel builds the initial model. The first full run is requested here; Init arms its debounce timer.
func NewModel(cfg Config) Model {
	st := newStyles(cfg.NoColor)

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = st.spin

	h := help.New()
	if cfg.NoColor {
		plain := lipgloss.NewStyle()
		h.Styles = help.Styles{
			ShortKey:       plain,
			ShortDesc:      plain,
			ShortSeparator: plain,
			Ellipsis:       plain,
			FullKey:        plain,
			FullDesc:       plain,
			FullSeparator:  plain,
		}
	}

	m := Model{
		cfg:      cfg,
		ctrl:     runctl.NewController(cfg.Debounce),
		board:    board.New(cfg.Tools),
		styles:   st,
		keys:     defaultKeyMap(),
		showAll:  map[string]bool{},
		viewport: viewport.New(0, 0),
		spinner:  sp,
		help:     h,
	}
	m.initialDelay, m.initialGen = m.ctrl.Request(nil)
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		debounceCmd(m.initialDelay, m.initialGen),
		snapshotCmd(m.cfg.Root, m.cfg.Ignore),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = maxInt(msg.Height-1, 0)
		m.help.Width = msg.Width
		m.ready = true
		m.refreshCards()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		if !m.running() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshCards()
		return m, cmd

	case debounceFiredMsg:
		run, ok := m.ctrl.Fire(msg.gen)
		if !ok {
			return m, nil
		}
		return m, m.dispatchRun(run)

	case watchTickMsg:
		return m, snapshotCmd(m.cfg.Root, m.cfg.Ignore)

	case fsSnapshotMsg:
		return m.handleSnapshot(msg)

	case runStartedMsg:
		return m.handleRunStarted(msg)

	case streamLinesMsg:
		return m.handleStreamLines(msg)

	case noticeExpiredMsg:
		if msg.id == m.noticeID {
			m.notice = ""
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		if m.stream != nil {
			m.stream.Cancel()
			m.stream = nil
		}
		return m, tea.Quit
	}

	if m.showHelp {
		// Any other key closes the overlay.
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.Run):
		delay, gen := m.ctrl.Request(nil)
		return m, debounceCmd(delay, gen)

	case key.Matches(msg, m.keys.RunOne):
		w := m.focusedWorker()
		if w == nil || !w.Enabled {
			return m.withNotice("focused tool is disabled")
		}
		delay, gen := m.ctrl.Request(runctl.NewScope(w.Name))
		return m, debounceCmd(delay, gen)

	case key.Matches(msg, m.keys.Collapse):
		if w := m.focusedWorker(); w != nil {
			w.Collapsed = !w.Collapsed
			m.refreshCards()
		}

	case key.Matches(msg, m.keys.ShowAll):
		if w := m.focusedWorker(); w != nil {
			m.showAll[w.Name] = !m.showAll[w.Name]
			m.refreshCards()
		}

	case key.Matches(msg, m.keys.Up):
		m.moveFocus(-1)

	case key.Matches(msg, m.keys.Down):
		m.moveFocus(1)

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()

	case key.Matches(msg, m.keys.HalfUp):
		m.viewport.HalfViewUp()

	case key.Matches(msg, m.keys.HalfDown):
		m.viewport.HalfViewDown()

	case key.Matches(msg, m.keys.Yank):
		return m.yankFocused()
	}

	return m, nil
}

func (m Model) handleSnapshot(msg fsSnapshotMsg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{watchTickCmd(m.cfg.WatchInterval)}

	if msg.err != nil {
		m.watchErr = msg.err
		return m, tea.Batch(cmds...)
	}
	m.watchErr = nil

	// The first snapshot is the baseline; only later differences schedule a run.
	if m.files != nil && m.files.changed(msg.files) {
		delay, gen := m.ctrl.Request(nil)
		cmds = append(cmds, debounceCmd(delay, gen))
	}
	m.files = msg.files
	return m, tea.Batch(cmds...)
}

// dispatchRun cancels any previous stream, resets the affected cards, and opens the backend stream for run.
func (m *Model) dispatchRun(run runctl.Run) tea.Cmd {
	if m.stream != nil {
		m.stream.Cancel()
		m.stream = nil
	}
	m.lastErr = nil
	m.runScope = run.Scope
	m.board.ResetForRun(run.Scope)
	m.refreshCards()

	req := backend.Request{Session: m.cfg.Session, Root: m.cfg.Root}
	if run.Scope != nil {
		for _, name := range m.board.EnabledNames() {
			if run.Scope.Contains(name) {
				req.Tools = append(req.Tools, name)
			}
		}
	}
	return tea.Batch(startRunCmd(m.cfg.Client, req, run.ID), m.spinner.Tick)
}

func (m Model) handleRunStarted(msg runStartedMsg) (tea.Model, tea.Cmd) {
	if !m.ctrl.Accept(msg.runID) {
		// A newer request superseded this run while it was connecting.
		if msg.stream != nil {
			msg.stream.Cancel()
		}
		return m, nil
	}
	if msg.err != nil {
		m.failRun(msg.err)
		return m, nil
	}
	m.stream = msg.stream
	return m, waitForStreamLinesCmd(msg.runID, msg.stream)
}

func (m Model) handleStreamLines(msg streamLinesMsg) (tea.Model, tea.Cmd) {
	if !m.ctrl.Accept(msg.runID) {
		return m, nil
	}

	finished := false
	for _, line := range msg.lines {
		if line.Err != nil {
			m.failRun(line.Err)
			return m, nil
		}
		parsed, ok := protocol.ParseLine(line.Text)
		if !ok {
			continue
		}
		switch pm := parsed.(type) {
		case protocol.Metadata:
			if m.board.ApplyMetadata(pm, m.runScope) == board.EffectRebuild {
				m.focused = clampInt(m.focused, 0, maxInt(len(m.board.Workers)-1, 0))
			}
		case protocol.Result:
			m.board.ApplyResult(pm, m.runScope)
		case protocol.Done:
			m.ctrl.Finish(msg.runID)
			m.doneAt = time.Now()
			finished = true
		}
		if finished {
			break
		}
	}
	m.refreshCards()

	if finished || msg.closed {
		if !finished && m.ctrl.Accept(msg.runID) {
			m.failRun(errors.New("stream ended before done message"))
		}
		if m.stream != nil {
			m.stream.Close()
			m.stream = nil
		}
		return m, nil
	}
	return m, waitForStreamLinesCmd(msg.runID, m.stream)
}

// failRun marks the active run failed: its results stop being accepted and the error lands in the status bar. The next change schedules a fresh run.
func (m *Model) failRun(err error) {
	m.lastErr = err
	m.ctrl.CancelActive()
	if m.stream != nil {
		m.stream.Cancel()
		m.stream = nil
	}
	m.refreshCards()
}

func (m Model) yankFocused() (tea.Model, tea.Cmd) {
	w := m.focusedWorker()
	if w == nil || strings.TrimSpace(w.Raw) == "" {
		return m.withNotice("nothing to copy")
	}
	plain := ansitext.Text(ansitext.Decode(w.Raw))
	if err := clipboard.WriteAll(plain); err != nil {
		return m.withNotice("clipboard: " + err.Error())
	}
	return m.withNotice("copied " + w.Name + " output")
}

func (m Model) withNotice(text string) (tea.Model, tea.Cmd) {
	m.notice = text
	m.noticeID++
	return m, noticeCmd(m.noticeID)
}

func (m *Model) moveFocus(delta int) {
	if len(m.board.Workers) == 0 {
		return
	}
	m.focused = clampInt(m.focused+delta, 0, len(m.board.Workers)-1)
	m.refreshCards()
	m.scrollToFocused()
}

// scrollToFocused nudges the viewport so the focused card's first line is visible.
func (m *Model) scrollToFocused() {
	if m.focused >= len(m.cardTops) {
		return
	}
	top := m.cardTops[m.focused]
	if top < m.viewport.YOffset {
		m.viewport.SetYOffset(top)
		return
	}
	if top > m.viewport.YOffset+m.viewport.Height-1 {
		m.viewport.SetYOffset(top)
	}
}

func (m Model) running() bool {
	return m.ctrl.ActiveID() != 0
}

func (m Model) focusedWorker() *board.Worker {
	if m.focused < 0 || m.focused >= len(m.board.Workers) {
		return nil
	}
	return m.board.Workers[m.focused]
}

func debounceCmd(d time.Duration, gen int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return debounceFiredMsg{gen: gen} })
}

func watchTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg { return watchTickMsg{} })
}

func snapshotCmd(root string, ignore []string) tea.Cmd {
	return func() tea.Msg {
		files, err := takeSnapshot(root, ignore)
		return fsSnapshotMsg{files: files, err: err}
	}
}

func noticeCmd(id int) tea.Cmd {
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg { return noticeExpiredMsg{id: id} })
}

func startRunCmd(client *backend.Client, req backend.Request, runID int) tea.Cmd {
	return func() tea.Msg {
		stream, err := client.Start(context.Background(), req)
		return runStartedMsg{runID: runID, stream: stream, err: err}
	}
}

// waitForStreamLinesCmd blocks for the next stream line, then drains whatever else is immediately available, up to maxStreamBatch per message.
func waitForStreamLinesCmd(runID int, stream *backend.Stream) tea.Cmd {
	return func() tea.Msg {
		first, ok := <-stream.Lines()
		if !ok {
			return streamLinesMsg{runID: runID, closed: true}
		}
		lines := []backend.Line{first}
		for len(lines) < maxStreamBatch {
			select {
			case next, ok := <-stream.Lines():
				if !ok {
					return streamLinesMsg{runID: runID, lines: lines, closed: true}
				}
				lines = append(lines, next)
			default:
				return streamLinesMsg{runID: runID, lines: lines}
			}
		}
		return streamLinesMsg{runID: runID, lines: lines}
	}
}

func clampInt(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
