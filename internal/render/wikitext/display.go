package wikitext

import (
	"regexp"
	"strings"
	"unicode/utf8"

	nethtml "golang.org/x/net/html"
)

var (
	reHeading  = regexp.MustCompile(`^(={2,6})\s*(.*?)\s*={2,6}$`)
	reListItem = regexp.MustCompile(`^([*#:]+)\s*(.*)$`)
	reEmphasis = regexp.MustCompile(`'{2,}`)
)

// DisplayLines lays out cleaned explanation text for a terminal of the given
// width: residual inline HTML is dropped, headings are underlined and list
// items get bullets.
func DisplayLines(text string, width int) []string {
	text = reEmphasis.ReplaceAllString(stripHTML(text), "")

	lines := make([]string, 0, 32)
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			lines = append(lines, "")
			continue
		}
		if m := reHeading.FindStringSubmatch(line); m != nil {
			title := normalizeInlineText(m[2])
			lines = append(lines, "", title, strings.Repeat("-", max(1, min(width, utf8.RuneCountInString(title)))))
			continue
		}
		if m := reListItem.FindStringSubmatch(line); m != nil {
			depth := len(m[1])
			first := strings.Repeat("  ", depth-1) + "• "
			rest := strings.Repeat(" ", utf8.RuneCountInString(first))
			lines = append(lines, wrapPrefixedText(m[2], width, first, rest)...)
			continue
		}
		lines = append(lines, wrapPrefixedText(line, width, "", "")...)
	}
	return trimBlankLines(lines)
}

// Wrap word-wraps plain text to width runes per line.
func Wrap(text string, width int) []string {
	return wrapText(normalizeInlineText(text), width)
}

// stripHTML keeps the text content of inline tags and drops <ref> footnotes.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	z := nethtml.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	inRef := 0
	for {
		switch z.Next() {
		case nethtml.ErrorToken:
			return b.String()
		case nethtml.TextToken:
			if inRef == 0 {
				b.Write(z.Text())
			}
		case nethtml.StartTagToken:
			if name, _ := z.TagName(); string(name) == "ref" {
				inRef++
			}
		case nethtml.EndTagToken:
			if name, _ := z.TagName(); string(name) == "ref" && inRef > 0 {
				inRef--
			}
		}
	}
}

func normalizeInlineText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func wrapPrefixedText(text string, width int, firstPrefix, restPrefix string) []string {
	text = normalizeInlineText(text)
	if text == "" {
		return nil
	}
	if width < 1 {
		return []string{firstPrefix + text}
	}
	firstWidth := max(1, width-utf8.RuneCountInString(firstPrefix))
	restWidth := max(1, width-utf8.RuneCountInString(restPrefix))

	out := make([]string, 0, 4)
	for i, line := range wrapText(text, firstWidth) {
		if i == 0 {
			out = append(out, firstPrefix+line)
			continue
		}
		// restPrefix may be wider than firstPrefix.
		for _, rest := range wrapText(line, restWidth) {
			out = append(out, restPrefix+rest)
		}
	}
	return out
}

func trimBlankLines(lines []string) []string {
	if len(lines) == 0 {
		return lines
	}
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	end := len(lines) - 1
	for end >= start && strings.TrimSpace(lines[end]) == "" {
		end--
	}
	if end < start {
		return nil
	}
	out := make([]string, 0, end-start+1)
	prevBlank := false
	for i := start; i <= end; i++ {
		blank := strings.TrimSpace(lines[i]) == ""
		if blank && prevBlank {
			continue
		}
		out = append(out, lines[i])
		prevBlank = blank
	}
	return out
}

func wrapText(text string, width int) []string {
	if width < 1 {
		return []string{text}
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	out := make([]string, 0, 4)
	line := ""
	lineLen := 0
	for _, word := range words {
		for utf8.RuneCountInString(word) > width {
			if line != "" {
				out = append(out, line)
				line, lineLen = "", 0
			}
			runes := []rune(word)
			out = append(out, string(runes[:width]))
			word = string(runes[width:])
		}
		wordLen := utf8.RuneCountInString(word)
		if line == "" {
			line, lineLen = word, wordLen
			continue
		}
		if lineLen+1+wordLen <= width {
			line += " " + word
			lineLen += 1 + wordLen
			continue
		}
		out = append(out, line)
		line, lineLen = word, wordLen
	}
	if line != "" {
		out = append(out, line)
	}
	return out
}
