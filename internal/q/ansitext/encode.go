package ansitext

import (
	"strconv"
	"strings"
)

// Encode renders spans as a single string with embedded SGR escape sequences, ending in a reset if any style is active. Colors are emitted in truecolor
// form, so Decode(Encode(spans)) reproduces the same text and styles. Use Text to render without styling.
func Encode(spans []Span) string {
	var b strings.Builder
	var prev Style

	for _, span := range spans {
		if !span.Style.Equal(prev) {
			b.WriteString(span.Style.SGR())
			prev = span.Style
		}
		b.WriteString(span.Text)
	}
	if !prev.IsDefault() {
		b.WriteString("\x1b[0m")
	}

	return b.String()
}

// SGR returns the escape sequence that switches a terminal from any rendition to s. The sequence always begins with a full reset so it does not depend on
// the terminal's current state.
func (s Style) SGR() string {
	var b strings.Builder
	b.WriteString("\x1b[0")

	if s.Bold {
		b.WriteString(";1")
	}
	if s.Dim {
		b.WriteString(";2")
	}
	if s.Italic {
		b.WriteString(";3")
	}
	if s.Underline {
		b.WriteString(";4")
	}
	if s.Fg != nil {
		writeColorParams(&b, ";38;2;", s.Fg)
	}
	if s.Bg != nil {
		writeColorParams(&b, ";48;2;", s.Bg)
	}

	b.WriteByte('m')
	return b.String()
}

func writeColorParams(b *strings.Builder, prefix string, c *Color) {
	b.WriteString(prefix)
	b.WriteString(strconv.Itoa(int(c.R)))
	b.WriteByte(';')
	b.WriteString(strconv.Itoa(int(c.G)))
	b.WriteByte(';')
	b.WriteString(strconv.Itoa(int(c.B)))
}
