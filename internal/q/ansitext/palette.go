package ansitext

// BasePalette is the 16-entry base+bright color table (SGR codes 30-37 and 90-97), with xterm's default RGB values. Tool output rendered against other
// palettes will still be legible, but exact values matter for anything comparing colors across programs.
var BasePalette = [16]Color{
	{0, 0, 0},       // black
	{205, 0, 0},     // red
	{0, 205, 0},     // green
	{205, 205, 0},   // yellow
	{0, 0, 238},     // blue
	{205, 0, 205},   // magenta
	{0, 205, 205},   // cyan
	{229, 229, 229}, // white
	{127, 127, 127}, // bright black
	{255, 0, 0},     // bright red
	{0, 255, 0},     // bright green
	{255, 255, 0},   // bright yellow
	{92, 92, 255},   // bright blue
	{255, 0, 255},   // bright magenta
	{0, 255, 255},   // bright cyan
	{255, 255, 255}, // bright white
}

// cubeLevels are the channel values of the 6x6x6 color cube occupying palette indices 16-231.
var cubeLevels = [6]uint8{0, 95, 135, 175, 215, 255}

func paletteColor(index int) *Color {
	c := BasePalette[index]
	return &c
}

// color256 resolves an 8-bit palette index: 0-15 base table, 16-231 color cube, 232-255 grayscale ramp. Out-of-range indices resolve to nil (directive
// ignored).
func color256(index int) *Color {
	switch {
	case index < 0 || index > 255:
		return nil
	case index < 16:
		return paletteColor(index)
	case index < 232:
		n := index - 16
		return &Color{
			R: cubeLevels[n/36],
			G: cubeLevels[n/6%6],
			B: cubeLevels[n%6],
		}
	default:
		v := uint8(8 + (index-232)*10)
		return &Color{R: v, G: v, B: v}
	}
}
