package state

import "github.com/glabrego/xkcd-cli/internal/xkcd"

func ClampCursor(cursor, size int) int {
	if size <= 0 {
		return 0
	}
	if cursor >= size {
		return size - 1
	}
	if cursor < 0 {
		return 0
	}
	return cursor
}

func PageStep(height int, hasStatus bool) int {
	if height <= 0 {
		return 10
	}
	headerLines := 6
	if hasStatus {
		headerLines += 2
	}
	step := height - headerLines
	if step < 3 {
		step = 3
	}
	return step
}

// CenteredWindow returns the [start, end) slice of totalRows that keeps
// cursor near the middle of a view height rows tall.
func CenteredWindow(totalRows, cursor, height int) (int, int) {
	if totalRows <= 0 {
		return 0, 0
	}
	if height <= 0 || totalRows <= height {
		return 0, totalRows
	}
	cursor = ClampCursor(cursor, totalRows)
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	maxStart := totalRows - height
	if start > maxStart {
		start = maxStart
	}
	return start, start + height
}

func IndexByNum(comics []xkcd.Comic, num int) int {
	for i, comic := range comics {
		if comic.Num == num {
			return i
		}
	}
	return -1
}

// CursorForNum keeps the cursor on num when the list still holds it and
// clamps it otherwise.
func CursorForNum(comics []xkcd.Comic, num, fallback int) int {
	if i := IndexByNum(comics, num); i >= 0 {
		return i
	}
	return ClampCursor(fallback, len(comics))
}

// AtListEnd reports whether cursor sits on the last row, which is when the
// list should be extended.
func AtListEnd(cursor, size int) bool {
	return size > 0 && cursor >= size-1
}
