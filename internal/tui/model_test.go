package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/xkcd-cli/internal/app"
	tuiactions "github.com/glabrego/xkcd-cli/internal/tui/actions"
	"github.com/glabrego/xkcd-cli/internal/xkcd"
)

type fakeComics struct {
	latest int
}

func (f fakeComics) Latest(ctx context.Context) (xkcd.Comic, error) {
	return f.Get(ctx, f.latest)
}

func (f fakeComics) Get(_ context.Context, num int) (xkcd.Comic, error) {
	if num < 1 || num > f.latest {
		return xkcd.Comic{}, fmt.Errorf("comic %d: not found", num)
	}
	return xkcd.Comic{
		Num:       num,
		Title:     fmt.Sprintf("Comic %d", num),
		Day:       "24",
		Month:     "7",
		Year:      "2009",
		Permalink: fmt.Sprintf("https://xkcd.com/%d/", num),
	}, nil
}

type fakeSearcher struct {
	nums []int
	err  error
}

func (f fakeSearcher) Search(context.Context, string) ([]int, error) {
	return f.nums, f.err
}

type fakeExplainer struct{}

func (fakeExplainer) Resolve(_ context.Context, num int, _ string) (string, error) {
	return fmt.Sprintf("Comic %d is about estimation.", num), nil
}

type fakeLibrary struct {
	comics []xkcd.Comic
}

func (f *fakeLibrary) Save(_ context.Context, comics ...xkcd.Comic) error {
	f.comics = append(f.comics, comics...)
	return nil
}

func (f *fakeLibrary) Delete(_ context.Context, num int) error {
	for i, c := range f.comics {
		if c.Num == num {
			f.comics = append(f.comics[:i], f.comics[i+1:]...)
			return nil
		}
	}
	return errors.New("not saved")
}

func (f *fakeLibrary) List(context.Context, int) ([]xkcd.Comic, error) {
	return append([]xkcd.Comic(nil), f.comics...), nil
}

func newTestModel(latest int, searcher fakeSearcher) (Model, *app.Controller) {
	ctrl := app.NewController(nil, fakeComics{latest: latest}, searcher, fakeExplainer{})
	return NewModel(ctrl, Options{Locale: "en-US"}), ctrl
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends k and runs the resulting command once, feeding its message
// back into the model.
func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	next, cmd := m.Update(key(k))
	m = next.(Model)
	if cmd == nil {
		return m
	}
	msg := cmd()
	if _, ok := msg.(tea.BatchMsg); ok {
		return m
	}
	next, _ = m.Update(msg)
	return next.(Model)
}

func loadNewest(t *testing.T, m Model, ctrl *app.Controller) Model {
	t.Helper()
	next, _ := m.Update(tuiactions.FetchNewestCmd(ctrl)())
	return next.(Model)
}

func TestModel_InitialFetchShowsNewest(t *testing.T) {
	m, ctrl := newTestModel(3, fakeSearcher{})
	m.pending = 1
	m = loadNewest(t, m, ctrl)

	view := m.View()
	if !strings.Contains(view, "#3") || !strings.Contains(view, "Comic 3") {
		t.Fatalf("expected newest comic in view, got:\n%s", view)
	}
	if !strings.Contains(view, "[July 24, 2009]") {
		t.Fatalf("expected formatted date in view, got:\n%s", view)
	}
	if m.loading() {
		t.Fatal("expected loading to finish")
	}
}

func TestModel_LoadMoreAndBrowseDetail(t *testing.T) {
	m, ctrl := newTestModel(3, fakeSearcher{})
	m = loadNewest(t, m, ctrl)

	m = press(t, m, "n")
	if got := len(m.visibleComics()); got != 2 {
		t.Fatalf("expected 2 comics after load more, got %d", got)
	}

	m = press(t, m, "j")
	if got := len(m.visibleComics()); got != 3 || m.cursor != 2 {
		t.Fatalf("expected scrolling past the end to load comic 1, got %d comics cursor=%d", got, m.cursor)
	}
	m = press(t, m, "j")
	if got := len(m.visibleComics()); got != 3 || m.cursor != 2 {
		t.Fatalf("expected list to stop at comic 1, got %d comics cursor=%d", got, m.cursor)
	}

	m = press(t, m, "k")
	m = press(t, m, "enter")
	if !m.inDetail {
		t.Fatal("expected detail mode")
	}
	if view := m.View(); !strings.Contains(view, "#2 Comic 2") {
		t.Fatalf("expected comic 2 detail, got:\n%s", view)
	}

	m = press(t, m, "]")
	if view := m.View(); !strings.Contains(view, "#3 Comic 3") {
		t.Fatalf("expected step to comic 3, got:\n%s", view)
	}

	m = press(t, m, "e")
	if view := m.View(); !strings.Contains(view, "Comic 3 is about estimation.") {
		t.Fatalf("expected explanation in detail, got:\n%s", view)
	}

	m = press(t, m, "esc")
	if m.inDetail || m.cursor != 0 {
		t.Fatalf("expected list with cursor on comic 3, got inDetail=%v cursor=%d", m.inDetail, m.cursor)
	}
}

func TestModel_ScrollPastEndLoadsMore(t *testing.T) {
	m, ctrl := newTestModel(5, fakeSearcher{})
	m = loadNewest(t, m, ctrl)

	next, cmd := m.Update(key("j"))
	m = next.(Model)
	if cmd == nil || m.pending != 1 {
		t.Fatalf("expected load-more dispatch, got cmd=%v pending=%d", cmd != nil, m.pending)
	}
	next, _ = m.Update(cmd())
	m = next.(Model)
	if got := len(m.visibleComics()); got != 2 {
		t.Fatalf("expected 2 comics after scrolling, got %d", got)
	}

	m = press(t, m, "k")
	if next, cmd = m.Update(key("j")); cmd != nil {
		t.Fatal("moving onto the last row must not load more")
	}
	m = next.(Model)
	if m.cursor != 1 {
		t.Fatalf("expected cursor on last row, got %d", m.cursor)
	}
}

func TestModel_ScrollDoesNotExtendSearchResults(t *testing.T) {
	m, _ := newTestModel(700, fakeSearcher{nums: []int{612}})
	m.search.SetValue("estimation")
	m.searching = true
	m = press(t, m, "enter")

	if _, cmd := m.Update(key("j")); cmd != nil {
		t.Fatal("expected no load-more for search results")
	}
}

func TestModel_SearchShowsResults(t *testing.T) {
	m, ctrl := newTestModel(700, fakeSearcher{nums: []int{612, 303}})
	m = loadNewest(t, m, ctrl)

	next, _ := m.Update(key("/"))
	m = next.(Model)
	if !m.searching {
		t.Fatal("expected search input to open")
	}
	for _, r := range "estimation" {
		next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	m = press(t, m, "enter")

	if m.searching || m.searchQuery != "estimation" {
		t.Fatalf("unexpected search state: searching=%v query=%q", m.searching, m.searchQuery)
	}
	view := m.View()
	for _, want := range []string{"Comic 612", "Comic 303", `search "estimation"`} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view, got:\n%s", want, view)
		}
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	m = next.(Model)
	if m.source != sourceBrowse || m.searchQuery != "" {
		t.Fatalf("expected search cleared, got source=%v query=%q", m.source, m.searchQuery)
	}
}

func TestModel_SearchWithoutResultsWarns(t *testing.T) {
	m, _ := newTestModel(700, fakeSearcher{nums: []int{}})

	next, _ := m.Update(key("/"))
	m = next.(Model)
	m.search.SetValue("zzzz")
	m = press(t, m, "enter")

	if view := m.View(); !strings.Contains(view, "No comic found.") {
		t.Fatalf("expected no-results warning, got:\n%s", view)
	}
}

func TestModel_SupersededResultIsNotAnError(t *testing.T) {
	m, _ := newTestModel(10, fakeSearcher{})
	m.pending = 1

	next, _ := m.Update(tuiactions.ControllerDoneMsg{Op: tuiactions.OpSearch, Err: app.ErrSuperseded})
	m = next.(Model)
	if m.err != nil || m.pending != 0 {
		t.Fatalf("expected superseded result to be dropped, got err=%v pending=%d", m.err, m.pending)
	}

	next, _ = m.Update(tuiactions.ControllerDoneMsg{Op: tuiactions.OpNewest, Err: errors.New("network down")})
	m = next.(Model)
	if view := m.View(); !strings.Contains(view, "network down") {
		t.Fatalf("expected error in view, got:\n%s", view)
	}
}

func TestModel_FilterSwitch(t *testing.T) {
	m, ctrl := newTestModel(5, fakeSearcher{})
	m = loadNewest(t, m, ctrl)

	m = press(t, m, "2")
	if m.state.Filter != app.FilterOldest {
		t.Fatalf("expected oldest filter, got %q", m.state.Filter)
	}
	if view := m.View(); !strings.Contains(view, "Comic 1") {
		t.Fatalf("expected oldest comic in view, got:\n%s", view)
	}

	m = press(t, m, "tab")
	if m.state.Filter != app.FilterRandom || len(m.visibleComics()) != 1 {
		t.Fatalf("expected one random comic, got filter=%q comics=%d", m.state.Filter, len(m.visibleComics()))
	}
}

func TestModel_ToggleSaved(t *testing.T) {
	lib := &fakeLibrary{}
	ctrl := app.NewController(nil, fakeComics{latest: 3}, fakeSearcher{}, fakeExplainer{})
	m := NewModel(ctrl, Options{Library: lib, Locale: "nb-NO"})
	m = loadNewest(t, m, ctrl)

	m = press(t, m, "s")
	if !m.saved[3] || len(lib.comics) != 1 {
		t.Fatalf("expected comic 3 saved, got saved=%v lib=%v", m.saved, lib.comics)
	}
	if !strings.Contains(m.status, "Saved #3") {
		t.Fatalf("unexpected status: %q", m.status)
	}

	next, _ := m.Update(tuiactions.LoadSavedCmd(lib, savedListLimit)())
	m = next.(Model)
	m = press(t, m, "S")
	if m.source != sourceSaved {
		t.Fatal("expected saved list")
	}
	if view := m.View(); !strings.Contains(view, "Comic 3") || !strings.Contains(view, "24. juli 2009") {
		t.Fatalf("expected saved comic in view, got:\n%s", view)
	}
}

func TestModel_OpenURLFallsBackToCopy(t *testing.T) {
	m, ctrl := newTestModel(3, fakeSearcher{})
	m = loadNewest(t, m, ctrl)

	var copied string
	m.openURLFn = func(string) error { return errors.New("no browser") }
	m.copyURLFn = func(u string) error {
		copied = u
		return nil
	}

	m = press(t, m, "o")
	if copied != "https://xkcd.com/3/" {
		t.Fatalf("expected permalink copied, got %q", copied)
	}
	if !strings.Contains(m.status, "copied") {
		t.Fatalf("unexpected status: %q", m.status)
	}
}

func TestModel_StepStopsAtLatest(t *testing.T) {
	m, ctrl := newTestModel(3, fakeSearcher{})
	m = loadNewest(t, m, ctrl)

	next, cmd := m.Update(key("]"))
	m = next.(Model)
	if m.pending != 0 || m.status != "Already at the latest comic" {
		t.Fatalf("expected boundary status without a fetch, got pending=%d status=%q", m.pending, m.status)
	}
	if cmd == nil {
		t.Fatal("expected status clear command")
	}
}

func TestModel_JumpToFirstComic(t *testing.T) {
	m, ctrl := newTestModel(4, fakeSearcher{})
	m = loadNewest(t, m, ctrl)

	m = press(t, m, "<")
	if m.state.Filter != app.FilterOldest || m.state.CurrentComicNumber != 1 {
		t.Fatalf("expected oldest list at comic 1, got filter=%q current=%d", m.state.Filter, m.state.CurrentComicNumber)
	}
	if view := m.View(); !strings.Contains(view, "Oldest comics") {
		t.Fatalf("expected oldest section header, got:\n%s", view)
	}

	m = press(t, m, "[")
	if m.status != "Already at the first comic" {
		t.Fatalf("unexpected status: %q", m.status)
	}
}

func TestModel_StartComicOpensDetail(t *testing.T) {
	ctrl := app.NewController(nil, fakeComics{latest: 700}, fakeSearcher{}, fakeExplainer{})
	m := NewModel(ctrl, Options{Locale: "en-US", StartComic: 353})
	if !m.inDetail || m.source != sourceSearch {
		t.Fatalf("expected detail over search results, got inDetail=%v source=%v", m.inDetail, m.source)
	}

	next, _ := m.Update(tuiactions.FetchByNumberCmd(ctrl, 353)())
	m = next.(Model)
	if view := m.View(); !strings.Contains(view, "#353 Comic 353") {
		t.Fatalf("expected comic 353 detail, got:\n%s", view)
	}
	if m.state.NewestComicNumber != 0 {
		t.Fatalf("expected newest to stay unknown, got %d", m.state.NewestComicNumber)
	}
}

func TestModel_HelpAndQuit(t *testing.T) {
	m, _ := newTestModel(3, fakeSearcher{})

	m = press(t, m, "?")
	if !m.showHelp || !strings.Contains(m.View(), "previous / next comic") {
		t.Fatalf("expected help view, got:\n%s", m.View())
	}

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}
