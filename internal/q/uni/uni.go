// Package uni measures and iterates text the way a terminal renders it: grapheme clusters, not runes, with widths in cells.
package uni

import (
	"github.com/clipperhouse/uax29/v2/graphemes"
	"github.com/mattn/go-runewidth"
)

// cond measures terminal cell widths assuming a non-East-Asian locale, which keeps ambiguous-width code points narrow.
var cond = func() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false
	c.StrictEmojiNeutral = true
	return c
}()

// TextWidth returns the display width of str in terminal cells for monospace fonts.
func TextWidth(str string) int {
	return cond.StringWidth(str)
}

// GraphemeIterator iterates over the grapheme clusters of a string.
type GraphemeIterator struct {
	iter graphemes.Iterator[string]
}

// NewGraphemeIterator returns an iterator over the grapheme clusters of str.
func NewGraphemeIterator(str string) *GraphemeIterator {
	return &GraphemeIterator{iter: graphemes.FromString(str)}
}

func (iter *GraphemeIterator) Next() bool {
	return iter.iter.Next()
}

// Value returns the current grapheme cluster.
func (iter *GraphemeIterator) Value() string {
	return iter.iter.Value()
}

// Start returns the byte position of the current cluster in the original string.
func (iter *GraphemeIterator) Start() int {
	return iter.iter.Start()
}

// End returns the byte position after the current cluster in the original string. Allows slicing the original as [Start(), End()).
func (iter *GraphemeIterator) End() int {
	return iter.iter.End()
}

// TextWidth returns the display width of the current cluster.
func (iter *GraphemeIterator) TextWidth() int {
	return TextWidth(iter.iter.Value())
}
