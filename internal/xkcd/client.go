package xkcd

import (
	"context"
	"fmt"
	"strings"

	"github.com/glabrego/xkcd-cli/internal/transport"
)

const DefaultBaseURL = "https://xkcd.com"

// Comic is one archive entry. Explanation stays empty until resolved.
type Comic struct {
	Num         int    `json:"num"`
	Title       string `json:"title"`
	SafeTitle   string `json:"safe_title"`
	AltText     string `json:"alt"`
	ImageURL    string `json:"img"`
	Link        string `json:"link"`
	News        string `json:"news"`
	Transcript  string `json:"transcript"`
	Day         string `json:"day"`
	Month       string `json:"month"`
	Year        string `json:"year"`
	Permalink   string `json:"permalink,omitempty"`
	Explanation string `json:"explanation,omitempty"`
}

// DisplayTitle prefers the safe title the archive publishes for rendering.
func (c Comic) DisplayTitle() string {
	if c.SafeTitle != "" {
		return c.SafeTitle
	}
	return c.Title
}

type JSONGetter interface {
	GetJSON(ctx context.Context, rawURL, what string, out any) error
}

type Client struct {
	baseURL string
	http    JSONGetter
}

func NewClient(baseURL string, http JSONGetter) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http,
	}
}

// Latest fetches the most recently published comic.
func (c *Client) Latest(ctx context.Context) (Comic, error) {
	return c.fetch(ctx, c.baseURL+"/info.0.json", "latest comic")
}

func (c *Client) Get(ctx context.Context, num int) (Comic, error) {
	if num < 1 {
		return Comic{}, fmt.Errorf("comic number must be positive: %d", num)
	}
	return c.fetch(ctx, fmt.Sprintf("%s/%d/info.0.json", c.baseURL, num), fmt.Sprintf("comic %d", num))
}

// Permalink is the public page of comic num.
func (c *Client) Permalink(num int) string {
	return fmt.Sprintf("%s/%d/", c.baseURL, num)
}

func (c *Client) fetch(ctx context.Context, rawURL, what string) (Comic, error) {
	var comic Comic
	if err := c.http.GetJSON(ctx, rawURL, what, &comic); err != nil {
		return Comic{}, err
	}
	if comic.Num < 1 {
		return Comic{}, fmt.Errorf("%w %s response: missing comic number", transport.ErrDecode, what)
	}
	comic.Permalink = c.Permalink(comic.Num)
	return comic, nil
}
