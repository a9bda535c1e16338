package view

import (
	"strings"

	"github.com/glabrego/xkcd-cli/internal/render/wikitext"
	"github.com/glabrego/xkcd-cli/internal/xkcd"
)

type InlineImagePreviewState struct {
	Enabled bool
	Loading bool
	Raw     string
	Err     string
}

type ExplanationState struct {
	Loading bool
	Err     string
}

type DetailOptions struct {
	ContentWidth     int
	HorizontalMargin int
	Locale           string
	ShowTranscript   bool
}

func DetailLines(
	comic xkcd.Comic,
	opts DetailOptions,
	wrap WrapFunc,
	preview InlineImagePreviewState,
	explanation ExplanationState,
) []string {
	width := opts.ContentWidth
	lines := DetailMetaLines(comic, opts.Locale, width, wrap)
	lines = appendInlineImagePreview(lines, preview, width)

	if alt := strings.TrimSpace(comic.AltText); alt != "" {
		lines = append(lines, "", "Alt text")
		lines = append(lines, wrap(alt, width)...)
	}
	if opts.ShowTranscript {
		lines = append(lines, "", "Transcript")
		lines = append(lines, transcriptLines(comic.Transcript, width, wrap)...)
	}
	lines = appendExplanation(lines, comic.Explanation, explanation, width)
	return leftPadLines(lines, opts.HorizontalMargin)
}

func DetailMaxTop(linesLen, bodyHeight int) int {
	maxTop := linesLen - bodyHeight
	if maxTop < 0 {
		return 0
	}
	return maxTop
}

func RenderDetailLines(lines []string, top, maxLines int) string {
	if len(lines) == 0 {
		return ""
	}
	if top < 0 {
		top = 0
	}
	if top > len(lines)-1 {
		top = len(lines) - 1
	}
	end := len(lines)
	if maxLines > 0 && top+maxLines < end {
		end = top + maxLines
	}
	return strings.Join(lines[top:end], "\n") + "\n"
}

func transcriptLines(transcript string, width int, wrap WrapFunc) []string {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return []string{"(no transcript)"}
	}
	out := make([]string, 0, 8)
	for _, line := range strings.Split(transcript, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, wrap(line, width)...)
	}
	return out
}

func appendExplanation(lines []string, text string, state ExplanationState, width int) []string {
	switch {
	case state.Loading:
		return append(lines, "", "Explanation", "Loading explanation...")
	case state.Err != "":
		return append(lines, "", "Explanation", "Explanation unavailable: "+state.Err)
	case strings.TrimSpace(text) == "":
		return append(lines, "", "Press e to load the explanation.")
	}
	lines = append(lines, "", "Explanation", strings.Repeat("-", min(width, len("Explanation"))))
	return append(lines, wikitext.DisplayLines(text, width)...)
}

func appendInlineImagePreview(lines []string, preview InlineImagePreviewState, contentWidth int) []string {
	if !preview.Enabled {
		return lines
	}
	previewLines := make([]string, 0, 3)
	if preview.Loading {
		previewLines = append(previewLines, "Loading image preview...")
	}
	if len(previewLines) == 0 {
		if previewRaw := strings.TrimSpace(preview.Raw); previewRaw != "" {
			if ContainsKittyGraphicsEscape(preview.Raw) {
				previewLines = append(previewLines, strings.TrimRight(preview.Raw, "\r\n"))
			} else {
				previewSplit := strings.Split(strings.TrimRight(preview.Raw, "\r\n"), "\n")
				previewLines = centerLines(previewSplit, contentWidth)
			}
		}
	}
	if len(previewLines) == 0 {
		if errMsg := strings.TrimSpace(preview.Err); errMsg != "" {
			previewLines = append(previewLines, "Image preview unavailable: "+errMsg)
		}
	}
	if len(previewLines) == 0 {
		return lines
	}
	out := append(lines, "")
	return append(out, previewLines...)
}

func leftPadLines(lines []string, padding int) []string {
	if padding <= 0 || len(lines) == 0 {
		return lines
	}
	prefix := strings.Repeat(" ", padding)
	out := make([]string, len(lines))
	for i, line := range lines {
		if ContainsKittyGraphicsEscape(line) || line == "" {
			out[i] = line
			continue
		}
		out[i] = prefix + line
	}
	return out
}

func centerLines(lines []string, width int) []string {
	if width <= 0 || len(lines) == 0 {
		return lines
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		visible := visibleLen(line)
		if visible >= width {
			out[i] = line
			continue
		}
		pad := (width - visible) / 2
		out[i] = strings.Repeat(" ", pad) + line
	}
	return out
}
