// Package board holds the per-tool display state an analysis run mutates: one worker per tool card, plus the run-wide context from the stream's metadata
// message. All mutation goes through Apply/Reset operations so the render layer can stay a pure projection of the board.
package board

import (
	"strings"

	"github.com/codalotl/checkdeck/internal/protocol"
	"github.com/codalotl/checkdeck/internal/runctl"
	"github.com/codalotl/checkdeck/internal/toolset"
)

const noOutputPlaceholder = "(no output)"

// StatusKind is a worker's lifecycle phase.
type StatusKind int

const (
	StatusPending StatusKind = iota
	StatusDisabled
	StatusDone
)

// Status is a worker's current phase plus, once Done, the exit information from its result message. Returncode stays nil when the backend reported none.
type Status struct {
	Kind       StatusKind
	Returncode *int
	DurationMS float64
}

// Worker is one tool card's state. Raw is the complete output as received; display projections are derived from it and never written back.
type Worker struct {
	Name      string
	Enabled   bool
	Collapsed bool
	Status    Status
	Raw       string
	Version   string
	Command   string
}

// DisplayRaw returns the text to render for a finished worker: the raw output, or a placeholder when it is empty or whitespace-only.
func (w *Worker) DisplayRaw() string {
	if strings.TrimSpace(w.Raw) == "" {
		return noOutputPlaceholder
	}
	return w.Raw
}

// Effect tells the render layer how much of the board an operation changed.
type Effect int

const (
	EffectNone Effect = iota
	EffectReset
	EffectRebuild
)

// Board is the ordered set of workers plus stream-level metadata.
type Board struct {
	Workers []*Worker

	TempDir      string
	RuffRepoPath string
	RepoPaths    map[string]string
}

// New builds a board from the resolved tool registry. Enabled tools start Pending (a run is expected immediately), disabled ones show as Disabled.
func New(tools []toolset.Tool) *Board {
	b := &Board{}
	for _, tool := range tools {
		b.Workers = append(b.Workers, &Worker{
			Name:    tool.Name,
			Enabled: tool.Enabled,
			Status:  initialStatus(tool.Enabled),
			Command: tool.Command,
		})
	}
	return b
}

func initialStatus(enabled bool) Status {
	if enabled {
		return Status{Kind: StatusPending}
	}
	return Status{Kind: StatusDisabled}
}

// Find returns the worker named name, or nil.
func (b *Board) Find(name string) *Worker {
	for _, w := range b.Workers {
		if w.Name == name {
			return w
		}
	}
	return nil
}

// Names returns the worker names in display order.
func (b *Board) Names() []string {
	names := make([]string, len(b.Workers))
	for i, w := range b.Workers {
		names[i] = w.Name
	}
	return names
}

// EnabledNames returns the names of enabled workers in display order.
func (b *Board) EnabledNames() []string {
	var names []string
	for _, w := range b.Workers {
		if w.Enabled {
			names = append(names, w.Name)
		}
	}
	return names
}

// ResetForRun puts the workers covered by scope back to Pending and clears their output. Out-of-scope workers keep their displayed state untouched.
// Disabled workers never reset (the backend won't run them).
func (b *Board) ResetForRun(scope runctl.Scope) {
	for _, w := range b.Workers {
		if !w.Enabled || !scope.Contains(w.Name) {
			continue
		}
		w.Status = Status{Kind: StatusPending}
		w.Raw = ""
	}
}

// ApplyMetadata records run-wide context and aligns the board with the declared worker set. A changed set (names or order) rebuilds the board from
// scratch; an unchanged set resets in-scope workers to Pending in place, keeping collapse flags. Out-of-scope workers stay untouched either way short of a
// rebuild.
func (b *Board) ApplyMetadata(m protocol.Metadata, scope runctl.Scope) Effect {
	if m.TempDir != "" {
		b.TempDir = m.TempDir
	}
	if m.RuffRepoPath != "" {
		b.RuffRepoPath = m.RuffRepoPath
	}
	if len(m.PythonToolRepoPaths) > 0 {
		b.RepoPaths = m.PythonToolRepoPaths
	}

	order := m.ToolOrder
	if len(order) == 0 {
		order = b.Names()
	}

	enabled := func(name string, current bool) bool {
		if len(m.EnabledTools) == 0 {
			return current
		}
		for _, n := range m.EnabledTools {
			if n == name {
				return true
			}
		}
		return false
	}

	if !sameNames(order, b.Names()) {
		workers := make([]*Worker, 0, len(order))
		for _, name := range order {
			on := enabled(name, true)
			w := &Worker{
				Name:    name,
				Enabled: on,
				Status:  initialStatus(on),
				Version: m.ToolVersions[name],
			}
			if prev := b.Find(name); prev != nil {
				w.Command = prev.Command
				if w.Version == "" {
					w.Version = prev.Version
				}
			}
			workers = append(workers, w)
		}
		b.Workers = workers
		return EffectRebuild
	}

	for _, w := range b.Workers {
		if v := m.ToolVersions[w.Name]; v != "" {
			w.Version = v
		}
		if !scope.Contains(w.Name) {
			continue
		}
		w.Enabled = enabled(w.Name, w.Enabled)
		if w.Enabled {
			w.Status = Status{Kind: StatusPending}
			w.Raw = ""
		} else {
			w.Status = Status{Kind: StatusDisabled}
			w.Raw = ""
		}
	}
	return EffectReset
}

// ApplyResult stores a finished tool's output. Results for tools outside the run's scope, or unknown to the board, are ignored. Returns the updated worker
// when applied.
func (b *Board) ApplyResult(r protocol.Result, scope runctl.Scope) (*Worker, bool) {
	if !scope.Contains(r.Tool) {
		return nil, false
	}
	w := b.Find(r.Tool)
	if w == nil {
		return nil, false
	}

	w.Raw = r.Data.Output
	w.Status = Status{
		Kind:       StatusDone,
		Returncode: r.Data.Returncode,
		DurationMS: r.Data.DurationMS,
	}
	if r.Data.Command != "" {
		w.Command = r.Data.Command
	}
	return w, true
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
