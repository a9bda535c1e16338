// Package explain fetches community explanations from the explainxkcd wiki.
package explain

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/glabrego/xkcd-cli/internal/render/wikitext"
	"github.com/glabrego/xkcd-cli/internal/transport"
)

const DefaultWikiBaseURL = "https://www.explainxkcd.com/wiki"

type Config struct {
	WikiBaseURL string
}

type JSONGetter interface {
	GetJSON(ctx context.Context, rawURL, what string, out any) error
}

type Resolver struct {
	baseURL string
	http    JSONGetter
}

func NewResolver(cfg Config, http JSONGetter) *Resolver {
	base := cfg.WikiBaseURL
	if base == "" {
		base = DefaultWikiBaseURL
	}
	return &Resolver{baseURL: strings.TrimRight(base, "/"), http: http}
}

type parseResponse struct {
	Parse *struct {
		Title    string `json:"title"`
		PageID   int    `json:"pageid"`
		Wikitext struct {
			Text string `json:"*"`
		} `json:"wikitext"`
	} `json:"parse"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// PageURL builds the MediaWiki parse request for a comic's explanation page.
func (r *Resolver) PageURL(num int, title string) string {
	q := make(url.Values)
	q.Set("action", "parse")
	q.Set("page", PageTitle(num, title))
	q.Set("prop", "wikitext")
	q.Set("sectiontitle", "Explanation")
	q.Set("format", "json")
	return r.baseURL + "/api.php?" + q.Encode()
}

// PageTitle is the wiki page name, e.g. "614:_Woodpecker".
func PageTitle(num int, title string) string {
	return strconv.Itoa(num) + ":_" + strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
}

// Resolve returns the cleaned explanation of a comic. A page without an
// explanation section resolves to wikitext.NotFound, not an error.
func (r *Resolver) Resolve(ctx context.Context, num int, title string) (string, error) {
	what := fmt.Sprintf("explanation %d", num)

	var resp parseResponse
	if err := r.http.GetJSON(ctx, r.PageURL(num, title), what, &resp); err != nil {
		return "", err
	}
	if resp.Parse == nil {
		if resp.Error != nil {
			return "", fmt.Errorf("%w %s response: %s: %s", transport.ErrDecode, what, resp.Error.Code, resp.Error.Info)
		}
		return "", fmt.Errorf("%w %s response: missing parse object", transport.ErrDecode, what)
	}
	return wikitext.Explanation(resp.Parse.Wikitext.Text), nil
}
