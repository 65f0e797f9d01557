package tui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0o644))
}

func TestTakeSnapshotCollectsPythonFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py")
	writeFile(t, root, "pkg/util.py")
	writeFile(t, root, "notes.txt")
	writeFile(t, root, ".venv/lib/dep.py")
	writeFile(t, root, "pkg/__pycache__/util.cpython-312.py")

	snap, err := takeSnapshot(root, []string{".venv/**", "**/__pycache__/**"})
	require.NoError(t, err)
	require.Equal(t, []string{"app.py", "pkg/util.py"}, snap.paths())
}

func TestTakeSnapshotIgnoresMatchingFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py")
	writeFile(t, root, "gen/models_gen.py")
	writeFile(t, root, "scratch_gen.py")

	snap, err := takeSnapshot(root, []string{"**/*_gen.py"})
	require.NoError(t, err)
	require.Equal(t, []string{"app.py"}, snap.paths())
}

func TestTakeSnapshotMissingRoot(t *testing.T) {
	_, err := takeSnapshot(filepath.Join(t.TempDir(), "gone"), nil)
	require.Error(t, err)
}

func TestSnapshotChanged(t *testing.T) {
	base := time.Now()

	cases := []struct {
		name string
		a, b snapshot
		want bool
	}{
		{name: "bothEmpty", a: snapshot{}, b: snapshot{}, want: false},
		{name: "identical", a: snapshot{"a.py": base}, b: snapshot{"a.py": base}, want: false},
		{name: "mtimeMoved", a: snapshot{"a.py": base}, b: snapshot{"a.py": base.Add(time.Second)}, want: true},
		{name: "fileAdded", a: snapshot{"a.py": base}, b: snapshot{"a.py": base, "b.py": base}, want: true},
		{name: "fileRemoved", a: snapshot{"a.py": base, "b.py": base}, b: snapshot{"b.py": base}, want: true},
		{name: "renamed", a: snapshot{"a.py": base}, b: snapshot{"b.py": base}, want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.a.changed(tc.b))
			require.Equal(t, tc.want, tc.b.changed(tc.a))
		})
	}
}

func TestIgnoredDirCoversPruneForms(t *testing.T) {
	patterns := []string{".venv/**", "**/__pycache__/**", "build"}

	require.True(t, ignoredDir(".venv", patterns))
	require.True(t, ignoredDir("__pycache__", patterns))
	require.True(t, ignoredDir("pkg/__pycache__", patterns))
	require.True(t, ignoredDir("build", patterns))
	require.False(t, ignoredDir("pkg", patterns))
	require.False(t, ignoredDir("venv2", patterns))
}
