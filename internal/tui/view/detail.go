package view

import (
	"fmt"
	"strings"

	"github.com/glabrego/xkcd-cli/internal/dates"
	"github.com/glabrego/xkcd-cli/internal/xkcd"
)

type WrapFunc func(string, int) []string

func DetailMetaLines(comic xkcd.Comic, locale string, width int, wrap WrapFunc) []string {
	title := comic.DisplayTitle()
	lines := make([]string, 0, 16)
	lines = append(lines, wrap(fmt.Sprintf("#%d %s", comic.Num, title), width)...)
	lines = append(lines, strings.Repeat("=", max(1, min(width, len([]rune(title))+len(fmt.Sprint(comic.Num))+2))))
	lines = append(lines, "")

	lines = append(lines, "Published: "+dates.MustFormat(comic.Day, comic.Month, comic.Year, locale))
	if comic.Permalink != "" {
		lines = append(lines, wrap("Link: "+comic.Permalink, width)...)
	}
	if comic.ImageURL != "" {
		lines = append(lines, wrap("Image: "+comic.ImageURL, width)...)
	}
	if comic.Link != "" {
		lines = append(lines, wrap("See also: "+comic.Link, width)...)
	}
	if comic.News != "" {
		lines = append(lines, wrap("News: "+comic.News, width)...)
	}
	return lines
}
