package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/glabrego/xkcd-cli/internal/dates"
	"github.com/glabrego/xkcd-cli/internal/render/wikitext"
	"github.com/glabrego/xkcd-cli/internal/xkcd"
)

const printWidth = 80

// printComic writes the plain-text card used by show and saved.
func printComic(w io.Writer, c xkcd.Comic, locale string) {
	fmt.Fprintf(w, "#%d %s\n", c.Num, c.DisplayTitle())
	fmt.Fprintf(w, "Published: %s\n", dates.MustFormat(c.Day, c.Month, c.Year, locale))
	if c.Permalink != "" {
		fmt.Fprintf(w, "Link:      %s\n", c.Permalink)
	}
	if c.ImageURL != "" {
		fmt.Fprintf(w, "Image:     %s\n", c.ImageURL)
	}
	if c.AltText != "" {
		fmt.Fprintln(w)
		for _, line := range wikitext.Wrap(c.AltText, printWidth) {
			fmt.Fprintln(w, line)
		}
	}
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// printSummary writes one table row per comic.
func printSummary(w io.Writer, comics []xkcd.Comic, locale string) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Title", "Published"})
	for _, c := range comics {
		t.AppendRow(table.Row{c.Num, c.DisplayTitle(), dates.MustFormat(c.Day, c.Month, c.Year, locale)})
	}
	t.Render()
}

func printExplanation(w io.Writer, text string) {
	fmt.Fprintln(w, strings.Repeat("-", printWidth))
	for _, line := range wikitext.DisplayLines(text, printWidth) {
		fmt.Fprintln(w, line)
	}
}
