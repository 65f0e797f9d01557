package semver_test

import (
	"testing"

	"github.com/codalotl/checkdeck/internal/q/semver"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  semver.Version
	}{
		{name: "plain", input: "1.2.3", want: semver.Version{Major: 1, Minor: 2, Patch: 3}},
		{name: "vPrefix", input: "v0.3.0", want: semver.Version{Minor: 3}},
		{name: "surroundingSpace", input: "  2.0.1\n", want: semver.Version{Major: 2, Patch: 1}},
		{name: "preRelease", input: "1.0.0-rc.1", want: semver.Version{Major: 1, Pre: []string{"rc", "1"}}},
		{name: "hyphenInsideIdentifier", input: "1.0.0-rc-next", want: semver.Version{Major: 1, Pre: []string{"rc-next"}}},
		{name: "buildMetadata", input: "1.0.0+linux.amd64", want: semver.Version{Major: 1, Build: []string{"linux", "amd64"}}},
		{name: "preAndBuild", input: "0.3.0-beta+5", want: semver.Version{Minor: 3, Pre: []string{"beta"}, Build: []string{"5"}}},
		{name: "bigNumbers", input: "10.20.30", want: semver.Version{Major: 10, Minor: 20, Patch: 30}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := semver.Parse(tc.input)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{"", "   ", "1", "1.2", "1.2.3.4", "a.b.c", "1.2.x", "-1.2.3", "1.2.3-", "1.2.3-rc..1", "version two"} {
		t.Run(input, func(t *testing.T) {
			_, err := semver.Parse(input)
			require.Error(t, err, "input %q", input)
		})
	}
}

func TestCompare(t *testing.T) {
	ordered := []string{
		"0.1.0",
		"0.3.0-alpha",
		"0.3.0-alpha.1",
		"0.3.0-alpha.beta",
		"0.3.0-rc.1",
		"0.3.0-rc.2",
		"0.3.0",
		"0.3.1",
		"0.10.0",
		"1.0.0",
	}
	for i := 1; i < len(ordered); i++ {
		lo, err := semver.Parse(ordered[i-1])
		require.NoError(t, err)
		hi, err := semver.Parse(ordered[i])
		require.NoError(t, err)
		require.Equal(t, -1, lo.Compare(hi), "%s < %s", ordered[i-1], ordered[i])
		require.Equal(t, 1, hi.Compare(lo), "%s > %s", ordered[i], ordered[i-1])
		require.True(t, lo.LessThan(hi))
		require.False(t, hi.LessThan(lo))
	}
}

func TestCompareIgnoresBuildMetadata(t *testing.T) {
	a, err := semver.Parse("1.0.0+linux")
	require.NoError(t, err)
	b, err := semver.Parse("1.0.0+darwin")
	require.NoError(t, err)
	require.Equal(t, 0, a.Compare(b))
	require.True(t, a.Equal(b))
}

func TestNumericIdentifiersSortBelowAlphanumeric(t *testing.T) {
	num, err := semver.Parse("1.0.0-1")
	require.NoError(t, err)
	alpha, err := semver.Parse("1.0.0-alpha")
	require.NoError(t, err)
	require.True(t, num.LessThan(alpha))
}

func TestString(t *testing.T) {
	for _, s := range []string{"0.0.0", "1.2.3", "1.0.0-rc.1", "1.0.0+linux", "0.3.0-beta+5"} {
		v, err := semver.Parse(s)
		require.NoError(t, err)
		require.Equal(t, s, v.String())
	}
}
