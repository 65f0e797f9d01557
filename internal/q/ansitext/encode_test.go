package ansitext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodePlainSpansHaveNoEscapes(t *testing.T) {
	out := Encode([]Span{{Text: "plain"}, {Text: " text"}})
	require.Equal(t, "plain text", out)
	require.False(t, strings.ContainsRune(out, esc))
}

func TestEncodeEmitsResetAfterStyledTail(t *testing.T) {
	out := Encode([]Span{{Text: "x", Style: Style{Bold: true}}})
	require.True(t, strings.HasSuffix(out, "\x1b[0m"))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "plain",
			raw:  "just text",
		},
		{
			name: "paletteColors",
			raw:  "\x1b[31mred\x1b[0m \x1b[102mgreenbg\x1b[0m",
		},
		{
			name: "attributes",
			raw:  "\x1b[1;3;4mdecorated\x1b[0m plain",
		},
		{
			name: "cube256",
			raw:  "\x1b[38;5;202morange\x1b[0m",
		},
		{
			name: "truecolor",
			raw:  "\x1b[38;2;12;34;56mdeep\x1b[0m",
		},
		{
			name: "multiline",
			raw:  "\x1b[31ma\nb\x1b[0m\nc\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := Decode(tt.raw)
			require.Equal(t, spans, Decode(Encode(spans)))
		})
	}
}

func TestStyleSGR(t *testing.T) {
	require.Equal(t, "\x1b[0m", Style{}.SGR())
	require.Equal(t, "\x1b[0;1m", Style{Bold: true}.SGR())
	require.Equal(t, "\x1b[0;38;2;205;0;0m", Style{Fg: palette(1)}.SGR())
	require.Equal(t, "\x1b[0;2;48;2;0;0;0m", Style{Dim: true, Bg: rgb(0, 0, 0)}.SGR())
}
