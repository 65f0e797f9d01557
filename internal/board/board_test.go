package board

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codalotl/checkdeck/internal/protocol"
	"github.com/codalotl/checkdeck/internal/runctl"
	"github.com/codalotl/checkdeck/internal/toolset"
)

func newTestBoard(t *testing.T) *Board {
	t.Helper()
	tools, err := toolset.Resolve(nil, nil)
	require.NoError(t, err)
	return New(tools)
}

func intp(v int) *int {
	return &v
}

func result(tool, output string, rc int) protocol.Result {
	return protocol.Result{
		Tool: tool,
		Data: protocol.ResultData{
			Command:    "uvx " + tool + " .",
			Returncode: intp(rc),
			DurationMS: 120,
			Output:     output,
		},
	}
}

func TestNewBoard(t *testing.T) {
	b := newTestBoard(t)

	require.Equal(t, []string{"mypy", "pyright", "pyrefly", "ty", "ruff"}, b.Names())
	require.Equal(t, []string{"mypy", "pyright", "pyrefly", "ty"}, b.EnabledNames())
	require.Equal(t, StatusPending, b.Find("mypy").Status.Kind)
	require.Equal(t, StatusDisabled, b.Find("ruff").Status.Kind)
}

func TestApplyResult(t *testing.T) {
	b := newTestBoard(t)

	w, ok := b.ApplyResult(result("mypy", "main.py:1: error\n", 1), nil)
	require.True(t, ok)
	require.Equal(t, StatusDone, w.Status.Kind)
	require.Equal(t, 1, *w.Status.Returncode)
	require.Equal(t, 120.0, w.Status.DurationMS)
	require.Equal(t, "main.py:1: error\n", w.Raw)
	require.Equal(t, "uvx mypy .", w.Command)
}

func TestApplyResultOutsideScopeIgnored(t *testing.T) {
	b := newTestBoard(t)

	_, ok := b.ApplyResult(result("pyright", "x", 0), runctl.NewScope("mypy"))
	require.False(t, ok)
	require.Equal(t, StatusPending, b.Find("pyright").Status.Kind)
	require.Empty(t, b.Find("pyright").Raw)
}

func TestApplyResultUnknownToolIgnored(t *testing.T) {
	b := newTestBoard(t)

	_, ok := b.ApplyResult(result("eslint", "x", 0), nil)
	require.False(t, ok)
}

func TestResetForRunScoped(t *testing.T) {
	b := newTestBoard(t)

	b.ApplyResult(result("mypy", "old mypy output", 1), nil)
	b.ApplyResult(result("pyright", "old pyright output", 0), nil)

	before := *b.Find("pyright")
	b.ResetForRun(runctl.NewScope("mypy"))

	require.Equal(t, StatusPending, b.Find("mypy").Status.Kind)
	require.Empty(t, b.Find("mypy").Raw)
	require.Equal(t, before, *b.Find("pyright"), "out-of-scope worker must be untouched")
}

func TestResetForRunSkipsDisabled(t *testing.T) {
	b := newTestBoard(t)

	b.ResetForRun(nil)
	require.Equal(t, StatusDisabled, b.Find("ruff").Status.Kind)
}

func TestApplyMetadataSameSetResetsInPlace(t *testing.T) {
	b := newTestBoard(t)
	b.Find("mypy").Collapsed = true
	b.ApplyResult(result("mypy", "stale", 1), nil)

	effect := b.ApplyMetadata(protocol.Metadata{
		ToolOrder:    []string{"mypy", "pyright", "pyrefly", "ty", "ruff"},
		EnabledTools: []string{"mypy", "pyright", "pyrefly", "ty"},
		ToolVersions: map[string]string{"mypy": "1.11.0"},
		TempDir:      "/tmp/checkdeck-xyz",
	}, nil)

	require.Equal(t, EffectReset, effect)
	require.True(t, b.Find("mypy").Collapsed, "collapse flags survive an in-place reset")
	require.Equal(t, StatusPending, b.Find("mypy").Status.Kind)
	require.Empty(t, b.Find("mypy").Raw)
	require.Equal(t, "1.11.0", b.Find("mypy").Version)
	require.Equal(t, "/tmp/checkdeck-xyz", b.TempDir)
	require.Equal(t, StatusDisabled, b.Find("ruff").Status.Kind)
}

func TestApplyMetadataScopedResetLeavesOthers(t *testing.T) {
	b := newTestBoard(t)
	b.ApplyResult(result("pyright", "keep me", 0), nil)

	effect := b.ApplyMetadata(protocol.Metadata{
		ToolOrder: []string{"mypy", "pyright", "pyrefly", "ty", "ruff"},
	}, runctl.NewScope("mypy"))

	require.Equal(t, EffectReset, effect)
	require.Equal(t, StatusDone, b.Find("pyright").Status.Kind)
	require.Equal(t, "keep me", b.Find("pyright").Raw)
	require.Equal(t, StatusPending, b.Find("mypy").Status.Kind)
}

func TestApplyMetadataChangedSetRebuilds(t *testing.T) {
	b := newTestBoard(t)
	b.Find("mypy").Collapsed = true
	b.ApplyResult(result("mypy", "old", 1), nil)

	effect := b.ApplyMetadata(protocol.Metadata{
		ToolOrder:    []string{"ty", "mypy"},
		EnabledTools: []string{"ty", "mypy"},
	}, nil)

	require.Equal(t, EffectRebuild, effect)
	require.Equal(t, []string{"ty", "mypy"}, b.Names())
	require.False(t, b.Find("mypy").Collapsed, "a rebuild starts from scratch")
	require.Empty(t, b.Find("mypy").Raw)
	require.Equal(t, StatusPending, b.Find("mypy").Status.Kind)
}

func TestApplyMetadataRebuildKeepsKnownCommands(t *testing.T) {
	b := newTestBoard(t)

	b.ApplyMetadata(protocol.Metadata{ToolOrder: []string{"ty", "mypy"}}, nil)
	require.Equal(t, "uvx mypy .", b.Find("mypy").Command)
}

func TestDisplayRaw(t *testing.T) {
	w := &Worker{Raw: ""}
	require.Equal(t, "(no output)", w.DisplayRaw())

	w.Raw = "  \n\t"
	require.Equal(t, "(no output)", w.DisplayRaw())

	w.Raw = "main.py:1: error\n"
	require.Equal(t, "main.py:1: error\n", w.DisplayRaw())
}
