// Package words reduces free text to English stems for the saved comic index.
package words

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball/english"
)

var wordRe = regexp.MustCompile(`[a-z0-9]+`)

// Normalize lowercases phrase, drops stop words and stems the rest. Order is
// kept and duplicates are removed.
func Normalize(phrase string) []string {
	if phrase == "" {
		return nil
	}
	tokens := wordRe.FindAllString(strings.ToLower(phrase), -1)

	out := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if english.IsStopWord(t) {
			continue
		}
		stem := english.Stem(t, true)
		if stem == "" {
			continue
		}
		if _, ok := seen[stem]; ok {
			continue
		}
		seen[stem] = struct{}{}
		out = append(out, stem)
	}
	return out
}
