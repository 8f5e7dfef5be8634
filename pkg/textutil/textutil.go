// Package textutil formats help text into fixed-width columns. Widths are measured in terminal
// cells, so wide runes count double.
package textutil

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Wrap splits text into lines no wider than width, breaking on whitespace. A single word longer
// than width is kept whole on its own line.
func Wrap(text string, width int) []string {
	var (
		lines     []string
		line      strings.Builder
		lineWidth int
	)
	for _, word := range strings.Fields(text) {
		wordWidth := runewidth.StringWidth(word)
		if lineWidth > 0 && lineWidth+1+wordWidth > width {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
		if lineWidth > 0 {
			line.WriteByte(' ')
			lineWidth++
		}
		line.WriteString(word)
		lineWidth += wordWidth
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

// Pad right-pads s with spaces to width. Strings already at least width wide are returned as is.
func Pad(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
