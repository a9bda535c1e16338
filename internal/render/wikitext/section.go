package wikitext

import "strings"

const (
	// NotFound is returned in place of a section that could not be located.
	NotFound = "Explanation not found."

	ExplanationMarker = "==Explanation=="
	TranscriptMarker  = "==Transcript=="
)

// ExtractSection returns the trimmed text strictly between start and the
// first end that follows it, or NotFound when either marker is missing.
func ExtractSection(wikitext, start, end string) string {
	i := strings.Index(wikitext, start)
	if i < 0 {
		return NotFound
	}
	rest := wikitext[i+len(start):]
	j := strings.Index(rest, end)
	if j < 0 {
		return NotFound
	}
	return strings.TrimSpace(rest[:j])
}

func ExtractExplanation(wikitext string) string {
	return ExtractSection(wikitext, ExplanationMarker, TranscriptMarker)
}

// Explanation extracts and cleans the explanation section of a page.
func Explanation(wikitext string) string {
	section := ExtractExplanation(wikitext)
	if section == NotFound {
		return NotFound
	}
	return strings.TrimSpace(Clean(section))
}
