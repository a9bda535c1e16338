package app

import "github.com/glabrego/xkcd-cli/internal/xkcd"

// Filter selects which browse list is shown.
type Filter string

const (
	FilterNewest Filter = "newest"
	FilterOldest Filter = "oldest"
	FilterRandom Filter = "random"
)

var Filters = []Filter{FilterNewest, FilterOldest, FilterRandom}

func (f Filter) Valid() bool {
	switch f {
	case FilterNewest, FilterOldest, FilterRandom:
		return true
	}
	return false
}

// Next cycles newest, oldest, random.
func (f Filter) Next() Filter {
	for i, candidate := range Filters {
		if candidate == f {
			return Filters[(i+1)%len(Filters)]
		}
	}
	return FilterNewest
}

// State is a point-in-time copy of the controller.
type State struct {
	Newest        []xkcd.Comic
	Oldest        []xkcd.Comic
	Random        []xkcd.Comic
	SearchResults []xkcd.Comic

	Filter             Filter
	CurrentComicNumber int
	NewestComicNumber  int
	Current            *xkcd.Comic

	Loading        bool
	ErrorMessage   string
	Err            error
	SearchFailures int
}

// CurrentComics is the list selected by Filter.
func (s State) CurrentComics() []xkcd.Comic {
	switch s.Filter {
	case FilterOldest:
		return s.Oldest
	case FilterRandom:
		return s.Random
	default:
		return s.Newest
	}
}

func (s State) IsNewest() bool {
	return s.NewestComicNumber > 0 && s.CurrentComicNumber == s.NewestComicNumber
}

func (s State) IsOldest() bool {
	return s.CurrentComicNumber == 1
}
