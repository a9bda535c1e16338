package view

import (
	"fmt"
	"strings"

	tuitheme "github.com/glabrego/xkcd-cli/internal/tui/theme"
)

func Toolbar(inDetail bool) string {
	if inDetail {
		return "j/k scroll | [ ] prev/next | e explain | s save | o open | y copy | esc back | ? help"
	}
	return "j/k move | enter open | [ ] step | / search | tab filter | n more | r random | s save | ? help"
}

// HelpLines lists every key binding for the help overlay.
func HelpLines() []string {
	return []string{
		"List",
		"  j/k, arrows     move",
		"  g/G             top/bottom",
		"  pgup/pgdown     jump a page",
		"  enter           show comic",
		"  tab, 1/2/3      newest / oldest / random",
		"  n               load more of the current list",
		"  r               fetch another random comic",
		"  /               search (a number jumps to that comic)",
		"  ctrl+l          clear search results",
		"  S               toggle saved comics",
		"",
		"Comic",
		"  [ ]             previous / next comic",
		"  < >             first / latest comic",
		"  j/k             scroll",
		"  e               load explanation",
		"  t               toggle transcript",
		"  i               toggle image preview",
		"  s               save or unsave",
		"  o / y           open / copy link",
		"  esc, backspace  back to list",
		"",
		"  ?               close help",
		"  q, ctrl+c       quit",
	}
}

func Footer(mode, list string, shown, newest int, searchQuery string, searchFailures int, th tuitheme.Theme) string {
	parts := []string{
		th.MetaLabel.Render("mode") + " " + th.MetaValue.Render(mode),
		th.MetaLabel.Render("list") + " " + th.MetaValue.Render(list),
		th.MetaValue.Render(fmt.Sprintf("%d shown", shown)),
	}
	if newest > 0 {
		parts = append(parts, th.MetaLabel.Render("latest")+" "+th.MetaValue.Render(fmt.Sprintf("#%d", newest)))
	}
	if searchQuery != "" {
		parts = append(parts, th.MetaLabel.Render("search")+" "+th.MetaValue.Render(fmt.Sprintf("%q", searchQuery)))
	}
	if searchFailures > 0 {
		parts = append(parts, th.StateWarn.Render(fmt.Sprintf("%d failed", searchFailures)))
	}
	return strings.Join(parts, " • ")
}

func Message(loading bool, hasWarning bool, status, warning, spinner string, th tuitheme.Theme) string {
	state := "idle"
	if loading {
		state = "loading"
	}
	if hasWarning {
		state = "warning"
	}
	main := "Ready"
	if status != "" {
		main = status
	} else if hasWarning {
		main = warning
	}
	stateLabel := th.StateIdle.Render("state")
	switch state {
	case "warning":
		stateLabel = th.StateWarn.Render("state")
	case "loading":
		stateLabel = th.StateLoad.Render("state")
		if spinner != "" {
			state = spinner + " " + state
		}
	}
	return fmt.Sprintf("%s: %s | %s", stateLabel, state, th.MetaValue.Render(main))
}
