package actions

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/xkcd-cli/internal/app"
	"github.com/glabrego/xkcd-cli/internal/xkcd"
)

const (
	defaultTimeout = 10 * time.Second
	searchTimeout  = 20 * time.Second
	imageMaxBytes  = 5 * 1024 * 1024
)

// Controller is the part of app.Controller the TUI drives.
type Controller interface {
	FetchNewest(ctx context.Context) error
	FetchOldest(ctx context.Context) error
	FetchRandom(ctx context.Context) error
	FetchByNumber(ctx context.Context, n int) error
	FetchBySearchQuery(ctx context.Context, q string) error
	StepPrevious(ctx context.Context) error
	StepNext(ctx context.Context) error
	SetFilter(ctx context.Context, f app.Filter) error
	LoadMore(ctx context.Context, f app.Filter) error
	ResolveExplanation(ctx context.Context, num int) (string, error)
}

// Library stores comics the user saved.
type Library interface {
	Save(ctx context.Context, comics ...xkcd.Comic) error
	Delete(ctx context.Context, num int) error
	List(ctx context.Context, limit int) ([]xkcd.Comic, error)
}

type ImageFetcher interface {
	GetBytes(ctx context.Context, rawURL, what string, limit int) ([]byte, error)
}

type Op string

const (
	OpNewest   Op = "newest"
	OpOldest   Op = "oldest"
	OpRandom   Op = "random"
	OpNumber   Op = "number"
	OpSearch   Op = "search"
	OpPrevious Op = "previous"
	OpNext     Op = "next"
	OpFilter   Op = "filter"
	OpMore     Op = "more"
)

// ControllerDoneMsg reports that a controller operation finished; the model
// reads the new state from a snapshot.
type ControllerDoneMsg struct {
	Op       Op
	Err      error
	Duration time.Duration
}

type ExplanationMsg struct {
	Num  int
	Text string
	Err  error
}

type SavedListMsg struct {
	Comics []xkcd.Comic
	Err    error
}

type SaveToggledMsg struct {
	Num    int
	Saved  bool
	Status string
	Err    error
}

type ImagePreviewMsg struct {
	Num     int
	Preview string
	Err     error
}

type OpenURLSuccessMsg struct {
	Status string
	Opened bool
}

type OpenURLErrorMsg struct {
	Err error
}

func run(op Op, timeout time.Duration, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		start := time.Now()

		err := fn(ctx)
		return ControllerDoneMsg{Op: op, Err: err, Duration: time.Since(start)}
	}
}

func FetchNewestCmd(c Controller) tea.Cmd {
	return run(OpNewest, defaultTimeout, c.FetchNewest)
}

func FetchOldestCmd(c Controller) tea.Cmd {
	return run(OpOldest, defaultTimeout, c.FetchOldest)
}

func FetchRandomCmd(c Controller) tea.Cmd {
	return run(OpRandom, defaultTimeout, c.FetchRandom)
}

func FetchByNumberCmd(c Controller, n int) tea.Cmd {
	return run(OpNumber, defaultTimeout, func(ctx context.Context) error {
		return c.FetchByNumber(ctx, n)
	})
}

func SearchCmd(c Controller, query string) tea.Cmd {
	return run(OpSearch, searchTimeout, func(ctx context.Context) error {
		return c.FetchBySearchQuery(ctx, query)
	})
}

func StepPreviousCmd(c Controller) tea.Cmd {
	return run(OpPrevious, defaultTimeout, c.StepPrevious)
}

func StepNextCmd(c Controller) tea.Cmd {
	return run(OpNext, defaultTimeout, c.StepNext)
}

func SetFilterCmd(c Controller, f app.Filter) tea.Cmd {
	return run(OpFilter, defaultTimeout, func(ctx context.Context) error {
		return c.SetFilter(ctx, f)
	})
}

func LoadMoreCmd(c Controller, f app.Filter) tea.Cmd {
	return run(OpMore, defaultTimeout, func(ctx context.Context) error {
		return c.LoadMore(ctx, f)
	})
}

func ExplainCmd(c Controller, num int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()

		text, err := c.ResolveExplanation(ctx, num)
		return ExplanationMsg{Num: num, Text: text, Err: err}
	}
}

func LoadSavedCmd(lib Library, limit int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()

		comics, err := lib.List(ctx, limit)
		return SavedListMsg{Comics: comics, Err: err}
	}
}

// ToggleSavedCmd saves comic, or removes it when currentlySaved.
func ToggleSavedCmd(lib Library, comic xkcd.Comic, currentlySaved bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()

		if currentlySaved {
			if err := lib.Delete(ctx, comic.Num); err != nil {
				return SaveToggledMsg{Num: comic.Num, Saved: true, Err: err}
			}
			return SaveToggledMsg{Num: comic.Num, Saved: false, Status: fmt.Sprintf("Removed #%d from saved comics", comic.Num)}
		}
		if err := lib.Save(ctx, comic); err != nil {
			return SaveToggledMsg{Num: comic.Num, Saved: false, Err: err}
		}
		return SaveToggledMsg{Num: comic.Num, Saved: true, Status: fmt.Sprintf("Saved #%d", comic.Num)}
	}
}

// ImagePreviewCmd downloads the comic image and renders it with render.
func ImagePreviewCmd(fetch ImageFetcher, comic xkcd.Comic, width int, render func([]byte, int) (string, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()

		data, err := fetch.GetBytes(ctx, comic.ImageURL, fmt.Sprintf("image of comic %d", comic.Num), imageMaxBytes)
		if err != nil {
			return ImagePreviewMsg{Num: comic.Num, Err: err}
		}
		preview, err := render(data, width)
		if err != nil {
			return ImagePreviewMsg{Num: comic.Num, Err: err}
		}
		return ImagePreviewMsg{Num: comic.Num, Preview: preview}
	}
}

func OpenURLCmd(url string, openFn, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if openFn != nil {
			if err := openFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Opened comic in browser", Opened: true}
			}
		}
		if copyFn != nil {
			if err := copyFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Could not open browser, link copied to clipboard"}
			}
		}
		return OpenURLErrorMsg{Err: fmt.Errorf("could not open link or copy it to clipboard")}
	}
}

func CopyURLCmd(url string, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if copyFn != nil {
			if err := copyFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Link copied to clipboard"}
			}
		}
		return OpenURLErrorMsg{Err: fmt.Errorf("could not copy link to clipboard")}
	}
}
