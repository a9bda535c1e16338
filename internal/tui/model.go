package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/xkcd-cli/internal/app"
	"github.com/glabrego/xkcd-cli/internal/render/wikitext"
	tuiactions "github.com/glabrego/xkcd-cli/internal/tui/actions"
	"github.com/glabrego/xkcd-cli/internal/tui/platform"
	tuistate "github.com/glabrego/xkcd-cli/internal/tui/state"
	tuitheme "github.com/glabrego/xkcd-cli/internal/tui/theme"
	tuiview "github.com/glabrego/xkcd-cli/internal/tui/view"
	"github.com/glabrego/xkcd-cli/internal/xkcd"
)

const (
	savedListLimit = 500
	statusTimeout  = 4 * time.Second
)

// Controller is the app.Controller surface the model needs.
type Controller interface {
	tuiactions.Controller
	Snapshot() app.State
	Select(comic xkcd.Comic)
}

type Options struct {
	Library tuiactions.Library
	Images  tuiactions.ImageFetcher
	Locale  string
	Log     *slog.Logger
	// StartComic opens that comic instead of the newest one.
	StartComic int
}

type clearStatusMsg struct {
	id int
}

type listSource int

const (
	sourceBrowse listSource = iota
	sourceSearch
	sourceSaved
)

type Model struct {
	ctrl    Controller
	library tuiactions.Library
	images  tuiactions.ImageFetcher
	locale  string
	log     *slog.Logger
	th      tuitheme.Theme

	state       app.State
	source      listSource
	savedComics []xkcd.Comic
	saved       map[int]bool
	searchQuery string
	startComic  int

	cursor         int
	inDetail       bool
	detailTop      int
	showHelp       bool
	showTranscript bool
	showPreview    bool
	searching      bool
	search         textinput.Model
	spinner        spinner.Model

	pending  int
	width    int
	height   int
	status   string
	statusID int
	err      error

	explainLoading      map[int]bool
	explainErr          map[int]string
	imagePreview        map[int]string
	imagePreviewErr     map[int]string
	imagePreviewLoading map[int]bool

	openURLFn     func(string) error
	copyURLFn     func(string) error
	renderImageFn func([]byte, int) (string, error)
}

func NewModel(ctrl Controller, opts Options) Model {
	log := opts.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	search := textinput.New()
	search.Placeholder = "search comics, or a comic number"
	search.Prompt = "/ "
	search.CharLimit = 200

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctrl:                ctrl,
		library:             opts.Library,
		images:              opts.Images,
		locale:              opts.Locale,
		log:                 log,
		th:                  tuitheme.Default(),
		saved:               make(map[int]bool),
		search:              search,
		spinner:             sp,
		explainLoading:      make(map[int]bool),
		explainErr:          make(map[int]string),
		imagePreview:        make(map[int]string),
		imagePreviewErr:     make(map[int]string),
		imagePreviewLoading: make(map[int]bool),
		openURLFn:           platform.OpenURLInBrowser,
		copyURLFn:           platform.CopyURLToClipboard,
		renderImageFn:       tuiview.RenderInlineImagePreview,
	}
	if ctrl != nil {
		m.state = ctrl.Snapshot()
	}
	if opts.StartComic > 0 {
		m.startComic = opts.StartComic
		m.source = sourceSearch
		m.searchQuery = strconv.Itoa(opts.StartComic)
		m.inDetail = true
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	switch {
	case m.ctrl == nil:
	case m.startComic > 0:
		cmds = append(cmds, tuiactions.FetchByNumberCmd(m.ctrl, m.startComic))
	default:
		cmds = append(cmds, tuiactions.FetchNewestCmd(m.ctrl))
	}
	if m.library != nil {
		cmds = append(cmds, tuiactions.LoadSavedCmd(m.library, savedListLimit))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.search.Width = max(10, msg.Width-4)
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tuiactions.ControllerDoneMsg:
		return m.handleControllerDone(msg)
	case tuiactions.ExplanationMsg:
		delete(m.explainLoading, msg.Num)
		if msg.Err != nil {
			m.explainErr[msg.Num] = msg.Err.Error()
			m.log.Warn("explanation failed", "num", msg.Num, "error", msg.Err)
			return m, nil
		}
		delete(m.explainErr, msg.Num)
		m.refresh()
		if m.saved[msg.Num] && m.library != nil {
			if comic, ok := m.comicByNum(msg.Num); ok {
				comic.Explanation = msg.Text
				return m, tuiactions.ToggleSavedCmd(m.library, comic, false)
			}
		}
		return m, nil
	case tuiactions.SavedListMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.savedComics = msg.Comics
		m.saved = make(map[int]bool, len(msg.Comics))
		for _, comic := range msg.Comics {
			m.saved[comic.Num] = true
		}
		m.clampCursor()
		return m, nil
	case tuiactions.SaveToggledMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.saved[msg.Num] = msg.Saved
		cmds := []tea.Cmd{tuiactions.LoadSavedCmd(m.library, savedListLimit)}
		if msg.Status != "" {
			cmds = append(cmds, m.setStatus(msg.Status))
		}
		return m, tea.Batch(cmds...)
	case tuiactions.ImagePreviewMsg:
		delete(m.imagePreviewLoading, msg.Num)
		if msg.Err != nil {
			m.imagePreviewErr[msg.Num] = msg.Err.Error()
			return m, nil
		}
		delete(m.imagePreviewErr, msg.Num)
		m.imagePreview[msg.Num] = msg.Preview
		return m, nil
	case tuiactions.OpenURLSuccessMsg:
		m.err = nil
		cmd := m.setStatus(msg.Status)
		return m, cmd
	case tuiactions.OpenURLErrorMsg:
		m.err = msg.Err
		return m, nil
	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
		}
		return m, nil
	}
	if m.searching {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "?":
		m.showHelp = !m.showHelp
		return m, nil
	}
	if m.showHelp {
		if msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}
	if m.inDetail {
		return m.handleDetailKey(msg)
	}

	switch msg.String() {
	case "up", "k":
		m.moveCursorBy(-1)
		return m, nil
	case "down", "j":
		return m.scrollDown(1)
	case "g":
		m.cursor = 0
		return m, nil
	case "G":
		m.cursor = max(0, len(m.visibleComics())-1)
		return m, nil
	case "pgup", "ctrl+b":
		m.moveCursorBy(-tuistate.PageStep(m.height, m.status != ""))
		return m, nil
	case "pgdown", "ctrl+f":
		return m.scrollDown(tuistate.PageStep(m.height, m.status != ""))
	case "enter":
		comic, ok := m.highlighted()
		if !ok {
			return m, nil
		}
		m.ctrl.Select(comic)
		m.refresh()
		m.inDetail = true
		m.detailTop = 0
		cmd := m.ensureImagePreviewCmd()
		return m, cmd
	case "/":
		m.searching = true
		m.search.SetValue("")
		cmd := m.search.Focus()
		return m, cmd
	case "ctrl+l":
		if m.source == sourceSearch {
			m.source = sourceBrowse
			m.searchQuery = ""
			m.cursor = 0
		}
		return m, nil
	case "tab":
		return m.switchFilter(m.state.Filter.Next())
	case "1":
		return m.switchFilter(app.FilterNewest)
	case "2":
		return m.switchFilter(app.FilterOldest)
	case "3":
		return m.switchFilter(app.FilterRandom)
	case "r":
		if m.source == sourceBrowse && m.state.Filter == app.FilterRandom {
			return m.dispatch(tuiactions.FetchRandomCmd(m.ctrl))
		}
		return m.switchFilter(app.FilterRandom)
	case "n":
		if m.source != sourceBrowse {
			return m, nil
		}
		return m.dispatch(tuiactions.LoadMoreCmd(m.ctrl, m.state.Filter))
	case "S":
		if m.library == nil {
			cmd := m.setStatus("Saved comics are not available")
			return m, cmd
		}
		if m.source == sourceSaved {
			m.source = sourceBrowse
		} else {
			m.source = sourceSaved
		}
		m.cursor = 0
		return m, tuiactions.LoadSavedCmd(m.library, savedListLimit)
	case "[":
		return m.stepPrevious()
	case "]":
		return m.stepNext()
	case "<":
		return m.jump(tuiactions.FetchOldestCmd(m.ctrl), app.FilterOldest)
	case ">":
		return m.jump(tuiactions.FetchNewestCmd(m.ctrl), app.FilterNewest)
	case "s":
		comic, ok := m.highlighted()
		if !ok {
			return m, nil
		}
		return m.toggleSaved(comic)
	case "o":
		comic, ok := m.highlighted()
		if !ok {
			return m, nil
		}
		return m.openURL(comic)
	case "y":
		comic, ok := m.highlighted()
		if !ok {
			return m, nil
		}
		return m.copyURL(comic)
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	comic, ok := m.detailComic()
	switch msg.String() {
	case "esc", "backspace":
		m.inDetail = false
		m.detailTop = 0
		m.syncCursor()
		return m, nil
	case "up", "k":
		if m.detailTop > 0 {
			m.detailTop--
		}
		return m, nil
	case "down", "j":
		maxTop := tuiview.DetailMaxTop(len(m.detailLines()), m.detailBodyHeight())
		if m.detailTop < maxTop {
			m.detailTop++
		}
		return m, nil
	case "[":
		m.detailTop = 0
		return m.stepPrevious()
	case "]":
		m.detailTop = 0
		return m.stepNext()
	case "<":
		m.detailTop = 0
		return m.jump(tuiactions.FetchOldestCmd(m.ctrl), app.FilterOldest)
	case ">":
		m.detailTop = 0
		return m.jump(tuiactions.FetchNewestCmd(m.ctrl), app.FilterNewest)
	case "t":
		m.showTranscript = !m.showTranscript
		return m, nil
	case "i":
		m.showPreview = !m.showPreview
		cmd := m.ensureImagePreviewCmd()
		return m, cmd
	}
	if !ok {
		return m, nil
	}
	switch msg.String() {
	case "e":
		if comic.Explanation != "" || m.explainLoading[comic.Num] {
			return m, nil
		}
		m.explainLoading[comic.Num] = true
		delete(m.explainErr, comic.Num)
		return m, tuiactions.ExplainCmd(m.ctrl, comic.Num)
	case "s":
		return m.toggleSaved(comic)
	case "o":
		return m.openURL(comic)
	case "y":
		return m.copyURL(comic)
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		query := strings.TrimSpace(m.search.Value())
		if query == "" {
			return m, nil
		}
		m.source = sourceSearch
		m.searchQuery = query
		m.cursor = 0
		return m.dispatch(tuiactions.SearchCmd(m.ctrl, query))
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) handleControllerDone(msg tuiactions.ControllerDoneMsg) (tea.Model, tea.Cmd) {
	if m.pending > 0 {
		m.pending--
	}
	m.refresh()
	m.log.Debug("controller operation done", "op", msg.Op, "duration", msg.Duration, "error", msg.Err, "state", m.Summary())

	if msg.Err != nil {
		if !errors.Is(msg.Err, app.ErrSuperseded) {
			m.err = msg.Err
		}
		return m, nil
	}
	m.err = nil
	m.syncCursor()
	if m.inDetail {
		cmd := m.ensureImagePreviewCmd()
		return m, cmd
	}
	return m, nil
}

func (m Model) dispatch(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if m.ctrl == nil {
		return m, nil
	}
	m.pending++
	m.err = nil
	return m, cmd
}

// scrollDown moves the cursor and extends the browse list when the cursor
// was already on its last row.
func (m Model) scrollDown(delta int) (tea.Model, tea.Cmd) {
	atEnd := tuistate.AtListEnd(m.cursor, len(m.visibleComics()))
	m.moveCursorBy(delta)
	if !atEnd || m.source != sourceBrowse || m.pending > 0 {
		return m, nil
	}
	return m.dispatch(tuiactions.LoadMoreCmd(m.ctrl, m.state.Filter))
}

func (m Model) stepPrevious() (tea.Model, tea.Cmd) {
	if m.state.IsOldest() {
		cmd := m.setStatus("Already at the first comic")
		return m, cmd
	}
	return m.dispatch(tuiactions.StepPreviousCmd(m.ctrl))
}

func (m Model) stepNext() (tea.Model, tea.Cmd) {
	if m.state.IsNewest() {
		cmd := m.setStatus("Already at the latest comic")
		return m, cmd
	}
	return m.dispatch(tuiactions.StepNextCmd(m.ctrl))
}

// jump restarts the list for f from its first comic.
func (m Model) jump(cmd tea.Cmd, f app.Filter) (tea.Model, tea.Cmd) {
	if m.source != sourceBrowse || m.state.Filter != f {
		return m.switchFilter(f)
	}
	m.cursor = 0
	return m.dispatch(cmd)
}

func (m Model) switchFilter(f app.Filter) (tea.Model, tea.Cmd) {
	m.source = sourceBrowse
	m.searchQuery = ""
	m.cursor = 0
	return m.dispatch(tuiactions.SetFilterCmd(m.ctrl, f))
}

func (m Model) toggleSaved(comic xkcd.Comic) (tea.Model, tea.Cmd) {
	if m.library == nil {
		cmd := m.setStatus("Saved comics are not available")
		return m, cmd
	}
	return m, tuiactions.ToggleSavedCmd(m.library, comic, m.saved[comic.Num])
}

func (m Model) openURL(comic xkcd.Comic) (tea.Model, tea.Cmd) {
	u, err := platform.ValidateComicURL(comic.Permalink)
	if err != nil {
		m.err = err
		return m, nil
	}
	return m, tuiactions.OpenURLCmd(u, m.openURLFn, m.copyURLFn)
}

func (m Model) copyURL(comic xkcd.Comic) (tea.Model, tea.Cmd) {
	u, err := platform.ValidateComicURL(comic.Permalink)
	if err != nil {
		m.err = err
		return m, nil
	}
	return m, tuiactions.CopyURLCmd(u, m.copyURLFn)
}

func (m *Model) setStatus(status string) tea.Cmd {
	m.statusID++
	m.status = status
	id := m.statusID
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

func (m *Model) ensureImagePreviewCmd() tea.Cmd {
	if !m.showPreview || m.images == nil {
		return nil
	}
	comic, ok := m.detailComic()
	if !ok || comic.ImageURL == "" {
		return nil
	}
	if _, ok := m.imagePreview[comic.Num]; ok {
		return nil
	}
	if m.imagePreviewLoading[comic.Num] {
		return nil
	}
	m.imagePreviewLoading[comic.Num] = true
	delete(m.imagePreviewErr, comic.Num)
	return tuiactions.ImagePreviewCmd(m.images, comic, m.contentWidth(), m.renderImageFn)
}

func (m *Model) refresh() {
	if m.ctrl != nil {
		m.state = m.ctrl.Snapshot()
	}
}

func (m Model) visibleComics() []xkcd.Comic {
	switch m.source {
	case sourceSearch:
		return m.state.SearchResults
	case sourceSaved:
		return m.savedComics
	default:
		return m.state.CurrentComics()
	}
}

func (m Model) highlighted() (xkcd.Comic, bool) {
	comics := m.visibleComics()
	if len(comics) == 0 {
		return xkcd.Comic{}, false
	}
	return comics[tuistate.ClampCursor(m.cursor, len(comics))], true
}

func (m Model) detailComic() (xkcd.Comic, bool) {
	if m.state.Current == nil {
		return xkcd.Comic{}, false
	}
	return *m.state.Current, true
}

func (m Model) comicByNum(num int) (xkcd.Comic, bool) {
	if m.state.Current != nil && m.state.Current.Num == num {
		return *m.state.Current, true
	}
	for _, list := range [][]xkcd.Comic{m.state.Newest, m.state.Oldest, m.state.Random, m.state.SearchResults, m.savedComics} {
		if i := tuistate.IndexByNum(list, num); i >= 0 {
			return list[i], true
		}
	}
	return xkcd.Comic{}, false
}

// syncCursor follows the controller's current comic when the visible list
// holds it.
func (m *Model) syncCursor() {
	m.cursor = tuistate.CursorForNum(m.visibleComics(), m.state.CurrentComicNumber, m.cursor)
}

func (m *Model) clampCursor() {
	m.cursor = tuistate.ClampCursor(m.cursor, len(m.visibleComics()))
}

func (m *Model) moveCursorBy(delta int) {
	m.cursor = tuistate.ClampCursor(m.cursor+delta, len(m.visibleComics()))
}

func (m Model) loading() bool {
	return m.pending > 0 || len(m.explainLoading) > 0 || m.state.Loading
}

func (m Model) sourceLabel() string {
	switch m.source {
	case sourceSearch:
		return "search"
	case sourceSaved:
		return "saved"
	default:
		return string(m.state.Filter)
	}
}

func (m Model) sectionLabel() string {
	switch m.source {
	case sourceSearch:
		return "Search results"
	case sourceSaved:
		return "Saved comics"
	}
	switch m.state.Filter {
	case app.FilterOldest:
		return "Oldest comics"
	case app.FilterRandom:
		return "Random comics"
	default:
		return "Newest comics"
	}
}

// kittyCleanup deletes kitty graphics left on screen once no preview is
// being shown.
func (m Model) kittyCleanup() string {
	if m.inDetail && m.showPreview {
		return ""
	}
	for _, raw := range m.imagePreview {
		if tuiview.ContainsKittyGraphicsEscape(raw) {
			return tuiview.ClearKittyGraphicsSequence()
		}
	}
	return ""
}

func (m Model) warningText() string {
	if m.err == nil {
		return ""
	}
	if errors.Is(m.err, app.ErrNoResults) {
		return app.NoResultsMessage
	}
	return m.err.Error()
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.kittyCleanup())
	b.WriteString(m.th.Title.Render("xkcd") + " " + m.th.ModePill.Render(m.sourceLabel()))
	b.WriteString("\n")

	switch {
	case m.showHelp:
		b.WriteString("Help (? to close)\n\n")
		b.WriteString(strings.Join(tuiview.HelpLines(), "\n"))
		b.WriteString("\n")
	case m.inDetail:
		b.WriteString(tuiview.Toolbar(true))
		b.WriteString("\n\n")
		b.WriteString(m.detailView())
	default:
		b.WriteString(tuiview.Toolbar(false))
		b.WriteString("\n\n")
		if m.searching {
			b.WriteString(m.search.View())
			b.WriteString("\n")
		}
		b.WriteString(m.listView())
	}

	b.WriteString("\n")
	b.WriteString(tuiview.Message(m.loading(), m.err != nil, m.status, m.warningText(), m.spinner.View(), m.th))
	b.WriteString("\n")
	mode := "list"
	if m.inDetail {
		mode = "detail"
	}
	b.WriteString(tuiview.Footer(mode, m.sourceLabel(), len(m.visibleComics()), m.state.NewestComicNumber, m.searchQuery, m.state.SearchFailures, m.th))
	b.WriteString("\n")
	return b.String()
}

func (m Model) listView() string {
	comics := m.visibleComics()
	if len(comics) == 0 {
		if m.loading() {
			return "Loading comics...\n"
		}
		if m.source == sourceSaved {
			return "No saved comics. Press s on a comic to save it.\n"
		}
		return "No comics to show.\n"
	}

	cursor := tuistate.ClampCursor(m.cursor, len(comics))
	start, end := tuistate.CenteredWindow(len(comics), cursor, m.listBodyHeight())
	header := tuiview.RenderSectionLine(m.sectionLabel(), len(comics), m.contentWidth(), m.th)
	return header + "\n" + tuiview.RenderListBody(tuiview.ListRenderInput{
		Count:  len(comics),
		Start:  start,
		End:    end,
		Cursor: cursor,
		RenderLine: func(i int, active bool) string {
			return tuiview.RenderComicLine(tuiview.ComicLineParams{
				Comic:  comics[i],
				Locale: m.locale,
				Saved:  m.saved[comics[i].Num],
				Active: active,
				Width:  m.contentWidth(),
			}, m.th)
		},
	})
}

func (m Model) detailView() string {
	if _, ok := m.detailComic(); !ok {
		return "No comic selected.\n"
	}
	return tuiview.RenderDetailLines(m.detailLines(), m.detailTop, m.detailBodyHeight())
}

func (m Model) detailLines() []string {
	comic, ok := m.detailComic()
	if !ok {
		return nil
	}
	preview := tuiview.InlineImagePreviewState{
		Enabled: m.showPreview,
		Loading: m.imagePreviewLoading[comic.Num],
		Raw:     m.imagePreview[comic.Num],
		Err:     m.imagePreviewErr[comic.Num],
	}
	explanation := tuiview.ExplanationState{
		Loading: m.explainLoading[comic.Num],
		Err:     m.explainErr[comic.Num],
	}
	opts := tuiview.DetailOptions{
		ContentWidth:     m.contentWidth() - 2,
		HorizontalMargin: 2,
		Locale:           m.locale,
		ShowTranscript:   m.showTranscript,
	}
	return tuiview.DetailLines(comic, opts, wikitext.Wrap, preview, explanation)
}

func (m Model) contentWidth() int {
	if m.width > 0 {
		return m.width - 1
	}
	return 100
}

func (m Model) listBodyHeight() int {
	if m.height <= 0 {
		return 0
	}
	used := 8
	if m.searching {
		used++
	}
	return max(3, m.height-used)
}

func (m Model) detailBodyHeight() int {
	if m.height > 0 {
		if h := m.height - 7; h > 3 {
			return h
		}
	}
	return 16
}

// Summary is a one-line description of the model state, used in logs.
func (m Model) Summary() string {
	return fmt.Sprintf("source=%s shown=%d current=%d newest=%d", m.sourceLabel(), len(m.visibleComics()), m.state.CurrentComicNumber, m.state.NewestComicNumber)
}
