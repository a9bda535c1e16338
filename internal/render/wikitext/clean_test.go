package wikitext

import (
	"strings"
	"testing"
)

func TestClean_IsIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain text with no markup",
		"Foo {{w|Bar}} baz",
		"[[Foo|bar baz]] and [[Foo]]",
		"{{w|A|B|C}} {{w|A|B}} {{w|A}}",
		"Cueball{{citation needed}} says hi[[:Category:Comics]]",
		"{{incomplete|reason}}one<br>two",
		"[https://a.example one]\n[https://b.example two] and [http://c.example three]",
		"[[Foo",
		"{{w|unterminated",
	}
	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Fatalf("Clean not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestClean_MultiArgumentTemplateKeepsFirstArgument(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "{{w|A}}", want: "A"},
		{in: "{{w|A|B}}", want: "A"},
		{in: "{{w|A|B|C}}", want: "A"},
		{in: "x {{w|A|B}} y {{w|C}} z", want: "x A y C z"},
	}
	for _, tc := range tests {
		if got := Clean(tc.in); got != tc.want {
			t.Fatalf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
		}
		if strings.Contains(Clean(tc.in), "|") {
			t.Fatalf("Clean(%q) left an argument separator behind", tc.in)
		}
	}
}

func TestClean_WrappedExternalLinks(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "[https://a.example one]\n[https://b.example two]", want: "one two"},
		{in: "[https://a.example one] \n[https://b.example two]", want: "one two"},
		{in: "[https://a.example one]\t\n[https://b.example two]", want: "one two"},
		{in: "[https://a.example one]\n\n[https://b.example two]", want: "one\n\ntwo"},
	}
	for _, tc := range tests {
		if got := Clean(tc.in); got != tc.want {
			t.Fatalf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestClean_MalformedInputIsReturned(t *testing.T) {
	for _, in := range []string{"[[", "]]", "{{", "}}", "[[|]]", "{{w|}}", "[https://x]"} {
		_ = Clean(in)
	}
	if got := Clean("[[|]]"); got != "[[|]]" {
		t.Fatalf("expected empty link to stay, got %q", got)
	}
}

func TestExplanation_ExtractThenClean(t *testing.T) {
	got := Explanation("==Explanation==\nFoo {{w|Bar}} baz\n==Transcript==\nignored")
	if got != "Foo Bar baz" {
		t.Fatalf("unexpected explanation %q", got)
	}
}

func TestExtractSection_Sentinel(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "neither marker", in: "hello"},
		{name: "start only", in: "==Explanation== hello"},
		{name: "end only", in: "hello ==Transcript=="},
		{name: "reversed", in: "==Transcript== hello ==Explanation=="},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractExplanation(tc.in); got != NotFound {
				t.Fatalf("expected sentinel, got %q", got)
			}
		})
	}
}

func TestExtractSection_CustomMarkers(t *testing.T) {
	got := ExtractSection("<a>  inner  </a><a>second</a>", "<a>", "</a>")
	if got != "inner" {
		t.Fatalf("unexpected section %q", got)
	}
}

func TestDisplayLines_WrapsToWidth(t *testing.T) {
	lines := DisplayLines(strings.Repeat("word ", 40), 20)
	if len(lines) < 2 {
		t.Fatalf("expected wrapped lines, got %d", len(lines))
	}
	for _, line := range lines {
		if len([]rune(line)) > 20 {
			t.Fatalf("line exceeds width: %q", line)
		}
	}
}

func TestDisplayLines_EmptyInput(t *testing.T) {
	if lines := DisplayLines("", 40); len(lines) != 0 {
		t.Fatalf("expected no lines, got %#v", lines)
	}
	if lines := DisplayLines("\n\n  \n", 40); len(lines) != 0 {
		t.Fatalf("expected blank input to collapse, got %#v", lines)
	}
}

func TestTrimBlankLines(t *testing.T) {
	got := trimBlankLines([]string{"", "a", "", "", "b", " "})
	want := []string{"a", "", "b"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("trimBlankLines = %#v, want %#v", got, want)
	}
}
