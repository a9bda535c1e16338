package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/glabrego/xkcd-cli/internal/dates"
	tuitheme "github.com/glabrego/xkcd-cli/internal/tui/theme"
	"github.com/glabrego/xkcd-cli/internal/xkcd"
)

type ComicLineParams struct {
	Comic  xkcd.Comic
	Locale string
	Saved  bool
	Active bool
	Width  int
}

// RenderComicLine lays out "> #353 Python      [5. desember 2007]" to Width
// columns, truncating the title first.
func RenderComicLine(p ComicLineParams, th tuitheme.Theme) string {
	cursorMarker := " "
	if p.Active {
		cursorMarker = ">"
	}
	savedMarker := " "
	if p.Saved {
		savedMarker = "*"
	}

	prefix := fmt.Sprintf("  %s%s ", cursorMarker, savedMarker)
	number := fmt.Sprintf("#%-5d", p.Comic.Num)
	dateLabel := "[" + dates.MustFormat(p.Comic.Day, p.Comic.Month, p.Comic.Year, p.Locale) + "]"

	available := p.Width - visibleLen(prefix) - visibleLen(number) - 2 - visibleLen(dateLabel)
	if available < 1 {
		available = 1
	}
	label := strings.TrimSpace(p.Comic.DisplayTitle())
	if label == "" {
		label = "(untitled)"
	}
	label = truncateRunes(label, available)

	gap := p.Width - visibleLen(prefix) - visibleLen(number) - 1 - visibleLen(label) - visibleLen(dateLabel)
	if gap < 1 {
		gap = 1
	}
	line := prefix +
		th.Number.Render(number) + " " +
		th.StyleComicTitle(p.Comic, p.Saved, label) +
		strings.Repeat(" ", gap) +
		th.MetaLabel.Render(dateLabel)
	return th.RenderActiveLine(p.Active, line)
}

func RenderSectionLine(label string, count, width int, th tuitheme.Theme) string {
	left := th.Section.Render("■ " + label)
	if count <= 0 {
		return left
	}
	right := th.Number.Render(fmt.Sprintf("%d", count))
	gap := width - visibleLen(left) - visibleLen(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func truncateRunes(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return strings.Repeat(".", maxLen)
	}
	return runewidth.Truncate(s, maxLen, "...")
}

func visibleLen(s string) int {
	return lipgloss.Width(s)
}
