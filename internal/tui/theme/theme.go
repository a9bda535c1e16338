package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/glabrego/xkcd-cli/internal/xkcd"
)

type Theme struct {
	Title      lipgloss.Style
	ModePill   lipgloss.Style
	Section    lipgloss.Style
	Number     lipgloss.Style
	ActiveLine lipgloss.Style
	MetaLabel  lipgloss.Style
	MetaValue  lipgloss.Style
	AltText    lipgloss.Style
	StateIdle  lipgloss.Style
	StateWarn  lipgloss.Style
	StateLoad  lipgloss.Style

	TitlePlain     lipgloss.Style
	TitleSaved     lipgloss.Style
	TitleExplained lipgloss.Style
	TitleBoth      lipgloss.Style
}

func Default() Theme {
	cpRosewater := lipgloss.Color("#f5e0dc")
	cpMauve := lipgloss.Color("#cba6f7")
	cpRed := lipgloss.Color("#f38ba8")
	cpPeach := lipgloss.Color("#fab387")
	cpYellow := lipgloss.Color("#f9e2af")
	cpGreen := lipgloss.Color("#a6e3a1")
	cpTeal := lipgloss.Color("#94e2d5")
	cpLavender := lipgloss.Color("#b4befe")
	cpText := lipgloss.Color("#cdd6f4")
	cpSubtext1 := lipgloss.Color("#bac2de")
	cpOverlay1 := lipgloss.Color("#7f849c")
	cpSurface0 := lipgloss.Color("#313244")

	return Theme{
		Title:          lipgloss.NewStyle().Bold(true).Foreground(cpMauve),
		ModePill:       lipgloss.NewStyle().Foreground(cpLavender).Background(cpSurface0).Padding(0, 1),
		Section:        lipgloss.NewStyle().Bold(true).Foreground(cpTeal),
		Number:         lipgloss.NewStyle().Foreground(cpYellow).Bold(true),
		ActiveLine:     lipgloss.NewStyle().Background(cpSurface0).Foreground(cpText),
		MetaLabel:      lipgloss.NewStyle().Foreground(cpOverlay1),
		MetaValue:      lipgloss.NewStyle().Foreground(cpSubtext1),
		AltText:        lipgloss.NewStyle().Italic(true).Foreground(cpSubtext1),
		StateIdle:      lipgloss.NewStyle().Foreground(cpGreen),
		StateWarn:      lipgloss.NewStyle().Foreground(cpRed),
		StateLoad:      lipgloss.NewStyle().Foreground(cpPeach),
		TitlePlain:     lipgloss.NewStyle().Foreground(cpText),
		TitleSaved:     lipgloss.NewStyle().Bold(true).Foreground(cpLavender),
		TitleExplained: lipgloss.NewStyle().Italic(true).Foreground(cpText),
		TitleBoth:      lipgloss.NewStyle().Bold(true).Italic(true).Foreground(cpRosewater),
	}
}

// StyleComicTitle marks saved comics and comics whose explanation is loaded.
func (t Theme) StyleComicTitle(comic xkcd.Comic, saved bool, title string) string {
	if title == "" {
		return title
	}
	explained := comic.Explanation != ""
	switch {
	case saved && explained:
		return t.TitleBoth.Render(title)
	case saved:
		return t.TitleSaved.Render(title)
	case explained:
		return t.TitleExplained.Render(title)
	default:
		return t.TitlePlain.Render(title)
	}
}

func (t Theme) RenderActiveLine(active bool, line string) string {
	if !active {
		return line
	}
	return t.ActiveLine.Render(line)
}
