package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// WrappedHeight returns how many terminal rows text occupies at the given
// width. Every "\n"-separated line takes at least one row; lines wider than
// the terminal wrap at the column limit, the way the terminal itself wraps
// them (by cells, not by words).
func WrappedHeight(text string, cols int) int {
	return wrappedHeightAt(1, text, cols)
}

// wrappedHeightAt is WrappedHeight for text whose first line starts at
// column col instead of column 1.
func wrappedHeightAt(col int, text string, cols int) int {
	if cols <= 0 {
		cols = 1
	}

	height := 0
	offset := max(col-1, 0)
	for _, line := range strings.Split(text, "\n") {
		width := offset + ansi.StringWidth(line)
		offset = 0
		if width == 0 {
			height++
			continue
		}
		height += (width + cols - 1) / cols
	}
	return height
}

// BlockHeight is the number of rows the search block occupies when drawn
// from column col: the prompt line, which shares its first row with
// whatever is left of col, followed by the match line.
func BlockHeight(col int, promptLine, matchLine string, cols int) int {
	return wrappedHeightAt(col, promptLine, cols) + WrappedHeight(matchLine, cols)
}

// ParkPosition returns the cell that follows width cells written from
// (row, col), wrapping at cols.
func ParkPosition(row, col, width, cols int) (int, int) {
	if cols <= 0 {
		cols = 1
	}
	offset := max(col-1, 0) + width
	return row + offset/cols, offset%cols + 1
}

// AdjustAnchor returns the row the block starts on after drawing a block of
// height rows from row on a terminal with the given number of rows. When the
// block runs past the bottom the terminal scrolls, so the anchor moves up by
// exactly the overflow. It never goes above row 1.
func AdjustAnchor(row, height, rows int) int {
	bottom := row + height - 1
	if bottom > rows {
		row -= bottom - rows
	}
	return max(row, 1)
}
