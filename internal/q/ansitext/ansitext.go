package ansitext

import (
	"strconv"
	"strings"
)

const esc = '\x1b'

// Color is a fully resolved terminal color. Palette indices and truecolor parameters both resolve to an RGB triple at decode time, so equality is plain
// value equality regardless of how the color was specified on the wire.
type Color struct {
	R, G, B uint8
}

// Style is the rendition state of a run of text. The zero value is the terminal's default rendition (no colors, no attributes).
type Style struct {
	Fg        *Color
	Bg        *Color
	Bold      bool
	Dim       bool
	Italic    bool
	Underline bool
}

// Equal reports whether two styles render identically.
func (s Style) Equal(o Style) bool {
	return colorsEqual(s.Fg, o.Fg) && colorsEqual(s.Bg, o.Bg) &&
		s.Bold == o.Bold && s.Dim == o.Dim && s.Italic == o.Italic && s.Underline == o.Underline
}

// IsDefault reports whether s is the terminal's default rendition.
func (s Style) IsDefault() bool {
	return s.Equal(Style{})
}

func colorsEqual(a, b *Color) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Span is a maximal run of text sharing one style. Adjacent runs with equal styles are merged; a span never crosses a style change.
type Span struct {
	Text  string
	Style Style
}

// Decode converts raw terminal output into styled spans. Non-SGR escape sequences (OSC, cursor movement, charset selection) are stripped; SGR sequences
// update a running style that applies to the text that follows. Newlines are normalized (\r\n and bare \r become \n) and survive inside span text.
//
// Decode never fails: malformed sequences are stripped or passed through as literal text. If nothing visible remains, a single default-styled space is
// returned so that empty output still occupies a cell.
func Decode(raw string) []Span {
	cleaned := normalizeNewlines(raw)
	cleaned = stripOSC(cleaned)
	cleaned = stripCSIKeepSGR(cleaned)
	cleaned = stripCharsetSelectors(cleaned)
	cleaned = stripSingleCharEscapes(cleaned)

	spans := scanStyled(cleaned)
	if len(spans) == 0 {
		return []Span{{Text: " "}}
	}
	return spans
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// stripOSC removes ESC ] ... sequences terminated by BEL or ESC \ (ST). An unterminated sequence swallows the rest of the input.
func stripOSC(s string) string {
	if !strings.ContainsRune(s, esc) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		if s[i] != esc || i+1 >= len(s) || s[i+1] != ']' {
			b.WriteByte(s[i])
			i++
			continue
		}

		j := i + 2
		for j < len(s) {
			if s[j] == '\a' {
				j++
				break
			}
			if s[j] == esc && j+1 < len(s) && s[j+1] == '\\' {
				j += 2
				break
			}
			j++
		}
		i = j
	}

	return b.String()
}

// stripCSIKeepSGR removes ESC [ ... sequences whose final byte is anything other than 'm'. SGR sequences are kept for the styling pass. An unterminated
// sequence swallows the rest of the input.
func stripCSIKeepSGR(s string) string {
	if !strings.ContainsRune(s, esc) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		if s[i] != esc || i+1 >= len(s) || s[i+1] != '[' {
			b.WriteByte(s[i])
			i++
			continue
		}

		j := i + 2
		for j < len(s) && (s[j] < 0x40 || s[j] > 0x7e) { // Scan to the final byte of the CSI sequence
			j++
		}
		if j < len(s) {
			j++
			if s[j-1] == 'm' {
				b.WriteString(s[i:j])
			}
		}
		i = j
	}

	return b.String()
}

// stripCharsetSelectors removes ISO-2022 charset designation sequences: ESC followed by one of ( ) * + - . / and a final byte.
func stripCharsetSelectors(s string) string {
	if !strings.ContainsRune(s, esc) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		if s[i] == esc && i+1 < len(s) && strings.IndexByte("()*+-./", s[i+1]) >= 0 {
			if i+2 < len(s) {
				i += 3
			} else {
				i = len(s)
			}
			continue
		}
		b.WriteByte(s[i])
		i++
	}

	return b.String()
}

// stripSingleCharEscapes removes two-byte sequences: ESC followed by a byte in @-Z or \-_. SGR sequences were already kept aside ('[' is in neither range).
func stripSingleCharEscapes(s string) string {
	if !strings.ContainsRune(s, esc) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		if s[i] == esc && i+1 < len(s) {
			c := s[i+1]
			if (c >= '@' && c <= 'Z') || (c >= '\\' && c <= '_') {
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}

	return b.String()
}

// scanStyled walks preprocessed text, applying SGR sequences to a running style and emitting a span per maximal run of identically styled text. A stray ESC
// that doesn't introduce an SGR sequence is literal text at this point.
func scanStyled(s string) []Span {
	var spans []Span
	var style Style
	segStart := 0

	flush := func(end int) {
		if end > segStart {
			spans = appendSpan(spans, s[segStart:end], style)
		}
	}

	for i := 0; i < len(s); {
		if s[i] != esc {
			i++
			continue
		}

		params, length, ok := parseSGR(s[i:])
		if !ok {
			i++
			continue
		}

		flush(i)
		style = applySGR(style, params)
		i += length
		segStart = i
	}
	flush(len(s))

	return spans
}

func appendSpan(spans []Span, text string, style Style) []Span {
	if n := len(spans); n > 0 && spans[n-1].Style.Equal(style) {
		spans[n-1].Text += text
		return spans
	}
	return append(spans, Span{Text: text, Style: style})
}

// sgrParam is one parameter slot of an SGR sequence. Unparseable tokens keep their slot (ok=false) so that multi-slot directives like 38;2;r;g;b consume
// the right number of parameters.
type sgrParam struct {
	value int
	ok    bool
}

// parseSGR parses an SGR sequence (ESC [ params m) at the start of s. Returns the parameter slots, the byte length of the sequence, and whether a complete
// SGR sequence was present.
func parseSGR(s string) (params []sgrParam, length int, ok bool) {
	if len(s) < 2 || s[0] != esc || s[1] != '[' {
		return nil, 0, false
	}

	j := 2
	for j < len(s) && (s[j] < 0x40 || s[j] > 0x7e) {
		j++
	}
	if j >= len(s) || s[j] != 'm' {
		return nil, 0, false
	}

	raw := s[2:j]
	if raw == "" {
		return []sgrParam{{value: 0, ok: true}}, j + 1, true
	}

	for _, tok := range strings.Split(raw, ";") {
		if tok == "" {
			params = append(params, sgrParam{value: 0, ok: true})
			continue
		}
		v, err := strconv.Atoi(tok)
		params = append(params, sgrParam{value: v, ok: err == nil})
	}
	return params, j + 1, true
}

// applySGR applies parameter slots to style, left to right. Unknown codes and unparseable tokens are no-ops that consume their slot.
func applySGR(style Style, params []sgrParam) Style {
	for i := 0; i < len(params); i++ {
		p := params[i]
		if !p.ok {
			continue
		}

		switch {
		case p.value == 0:
			style = Style{}
		case p.value == 1:
			style.Bold = true
		case p.value == 2:
			style.Dim = true
		case p.value == 3:
			style.Italic = true
		case p.value == 4:
			style.Underline = true
		case p.value == 22:
			style.Bold = false
			style.Dim = false
		case p.value == 23:
			style.Italic = false
		case p.value == 24:
			style.Underline = false
		case p.value >= 30 && p.value <= 37:
			style.Fg = paletteColor(p.value - 30)
		case p.value >= 90 && p.value <= 97:
			style.Fg = paletteColor(p.value - 90 + 8)
		case p.value == 39:
			style.Fg = nil
		case p.value >= 40 && p.value <= 47:
			style.Bg = paletteColor(p.value - 40)
		case p.value >= 100 && p.value <= 107:
			style.Bg = paletteColor(p.value - 100 + 8)
		case p.value == 49:
			style.Bg = nil
		case p.value == 38 || p.value == 48:
			color, consumed := extendedColor(params[i+1:])
			if color != nil {
				if p.value == 38 {
					style.Fg = color
				} else {
					style.Bg = color
				}
			}
			i += consumed
		}
	}
	return style
}

// extendedColor resolves the parameters following a 38 or 48 code: "5;index" for the 256-color palette or "2;r;g;b" for truecolor. Returns the resolved
// color (nil if the directive is malformed or out of range) and how many slots were consumed.
func extendedColor(rest []sgrParam) (*Color, int) {
	if len(rest) == 0 {
		return nil, 0
	}

	mode := rest[0]
	if !mode.ok {
		return nil, 1
	}

	switch mode.value {
	case 5:
		if len(rest) < 2 {
			return nil, len(rest)
		}
		index := rest[1]
		if !index.ok {
			return nil, 2
		}
		return color256(index.value), 2
	case 2:
		if len(rest) < 4 {
			return nil, len(rest)
		}
		for _, ch := range rest[1:4] {
			if !ch.ok {
				return nil, 4
			}
		}
		return &Color{
			R: clampChannel(rest[1].value),
			G: clampChannel(rest[2].value),
			B: clampChannel(rest[3].value),
		}, 4
	default:
		return nil, 1
	}
}

func clampChannel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
