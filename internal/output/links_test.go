package output

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codalotl/checkdeck/internal/q/ansitext"
)

func rowsOf(raw string) [][]ansitext.Span {
	return ansitext.SplitLines(ansitext.Decode(raw))
}

func TestLinksBasic(t *testing.T) {
	rows := rowsOf("main.py:3: error: bad type\nall done\n")

	links := Links(rows, []string{"main.py"})
	require.Len(t, links, 1)
	require.Equal(t, Link{File: "main.py", Line: 3, Col: 0, Row: 0, Start: 0, End: 9}, links[0])
}

func TestLinksWithColumn(t *testing.T) {
	rows := rowsOf("  helpers.py:12:8: warning: unused")

	links := Links(rows, []string{"helpers.py"})
	require.Len(t, links, 1)
	require.Equal(t, "helpers.py", links[0].File)
	require.Equal(t, 12, links[0].Line)
	require.Equal(t, 8, links[0].Col)
	require.Equal(t, 2, links[0].Start)
	require.Equal(t, 17, links[0].End)
}

func TestLinksMatchAcrossStyleChanges(t *testing.T) {
	rows := rowsOf("\x1b[1mmain.py\x1b[0m:3:1: \x1b[31merror\x1b[0m")

	links := Links(rows, []string{"main.py"})
	require.Len(t, links, 1)
	require.Equal(t, 3, links[0].Line)
	require.Equal(t, 1, links[0].Col)
}

func TestLinksMultipleRowsAndFiles(t *testing.T) {
	rows := rowsOf("main.py:1: x\nhelpers.py:2:3: y\nno refs here\nmain.py:9 trailing")

	links := Links(rows, []string{"main.py", "helpers.py"})
	require.Len(t, links, 3)

	require.Equal(t, 0, links[0].Row)
	require.Equal(t, "main.py", links[0].File)
	require.Equal(t, 1, links[1].Row)
	require.Equal(t, "helpers.py", links[1].File)
	require.Equal(t, 3, links[2].Row)
	require.Equal(t, 9, links[2].Line)
}

func TestLinksPreferLongerName(t *testing.T) {
	rows := rowsOf("domain.py:7:2: err")

	links := Links(rows, []string{"main.py", "domain.py"})
	require.Len(t, links, 1)
	require.Equal(t, "domain.py", links[0].File)
	require.Equal(t, 0, links[0].Start)
}

func TestLinksEscapeRegexMetacharacters(t *testing.T) {
	rows := rowsOf("pkg(v2)+x.py:4: boom")

	links := Links(rows, []string{"pkg(v2)+x.py"})
	require.Len(t, links, 1)
	require.Equal(t, "pkg(v2)+x.py", links[0].File)
	require.Equal(t, 4, links[0].Line)
}

func TestLinksRequireLineNumber(t *testing.T) {
	rows := rowsOf("see main.py for details")

	require.Empty(t, Links(rows, []string{"main.py"}))
}

func TestLinksNoFiles(t *testing.T) {
	rows := rowsOf("main.py:3: error")

	require.Empty(t, Links(rows, nil))
	require.Empty(t, Links(rows, []string{""}))
}
