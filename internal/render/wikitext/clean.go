// Package wikitext turns explainxkcd wiki markup into plain text.
//
// The rules target that wiki's conventions only. Anything not recognized is
// left in place.
package wikitext

import "regexp"

type substitution struct {
	pattern     *regexp.Regexp
	replacement string
}

// cleanRules run in order; each one sees the output of the previous.
var cleanRules = []substitution{
	{regexp.MustCompile(`\{\{citation.*?\}\}`), ""},
	{regexp.MustCompile(`\[\[:Category:.*?\]\]`), ""},
	{regexp.MustCompile(`\{\{incomplete.*?\}\}`), ""},
	// [[target|display]] and [[target]]
	{regexp.MustCompile(`\[\[(?:[^|\]]*\|)?([^|\]]+)\]\]`), "${1}"},
	// {{w|a}}, {{w|a|b}} and {{w|a|b|c}} all keep the first argument.
	{regexp.MustCompile(`\{\{w\|([^|}]+)(?:\|[^|}]*){0,2}\}\}`), "${1}"},
	{regexp.MustCompile(`(?i)<br\s*/?>`), ""},
	// Two external links wrapped onto consecutive lines collapse into one.
	{regexp.MustCompile(`\[https?://[^\s\]]*\s([^\]]+)\][ \t]*\n\[https?://[^\s\]]*\s([^\]]+)\]`), "${1} ${2}"},
	{regexp.MustCompile(`\[https?://[^\s\]]*\s([^\]]+)\]`), "${1}"},
}

// Clean strips the wiki markup explanations are written in. It never fails;
// input without markup is returned unchanged.
func Clean(raw string) string {
	out := raw
	for _, rule := range cleanRules {
		out = rule.pattern.ReplaceAllString(out, rule.replacement)
	}
	return out
}
