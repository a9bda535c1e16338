// Package search resolves free-text queries to comic numbers through a
// Typesense multi-search endpoint.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultEndpoint   = "https://qtg5aekc2iosjh93p.a1.typesense.net/multi_search"
	DefaultCollection = "xkcd"
	DefaultQueryBy    = "title,altTitle,transcript"
)

var ErrNoCredentials = errors.New("search API key is not configured")

type Config struct {
	Endpoint   string
	APIKey     string
	Collection string
	QueryBy    string
}

type JSONPoster interface {
	PostJSON(ctx context.Context, rawURL, what string, body, out any) error
}

type Resolver struct {
	cfg  Config
	http JSONPoster
}

func NewResolver(cfg Config, http JSONPoster) *Resolver {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.QueryBy == "" {
		cfg.QueryBy = DefaultQueryBy
	}
	return &Resolver{cfg: cfg, http: http}
}

type MultiSearchRequest struct {
	Searches []Params `json:"searches"`
}

type Params struct {
	Collection string `json:"collection"`
	Q          string `json:"q"`
	QueryBy    string `json:"query_by"`
}

type multiSearchResponse struct {
	Results []struct {
		Hits []struct {
			Document Document `json:"document"`
		} `json:"hits"`
	} `json:"results"`
}

// Document is the indexed comic as the search backend returns it.
type Document struct {
	ID               documentID `json:"id"`
	Title            string     `json:"title"`
	AltTitle         string     `json:"altTitle,omitempty"`
	ImageURL         string     `json:"imageUrl,omitempty"`
	PublishDateDay   string     `json:"publishDateDay,omitempty"`
	PublishDateMonth string     `json:"publishDateMonth,omitempty"`
	PublishDateYear  string     `json:"publishDateYear,omitempty"`
	Topics           []string   `json:"topics,omitempty"`
	Transcript       string     `json:"transcript,omitempty"`
}

// documentID accepts the id as a JSON string or a bare number.
type documentID string

func (d *documentID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*d = documentID(s)
		return nil
	}
	*d = documentID(strings.TrimSpace(string(b)))
	return nil
}

func (r *Resolver) Request(query string) MultiSearchRequest {
	return MultiSearchRequest{Searches: []Params{{
		Collection: r.cfg.Collection,
		Q:          query,
		QueryBy:    r.cfg.QueryBy,
	}}}
}

func (r *Resolver) endpointURL() string {
	q := make(url.Values)
	q.Set("use_cache", "true")
	q.Set("x-typesense-api-key", r.cfg.APIKey)
	sep := "?"
	if strings.Contains(r.cfg.Endpoint, "?") {
		sep = "&"
	}
	return r.cfg.Endpoint + sep + q.Encode()
}

// Search returns comic numbers in the backend's relevance order. Documents
// whose id is not an integer are skipped. A blank query or no hits yields an
// empty slice.
func (r *Resolver) Search(ctx context.Context, query string) ([]int, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []int{}, nil
	}
	if r.cfg.APIKey == "" {
		return nil, ErrNoCredentials
	}

	var resp multiSearchResponse
	if err := r.http.PostJSON(ctx, r.endpointURL(), "search "+strconv.Quote(query), r.Request(query), &resp); err != nil {
		return nil, err
	}

	nums := make([]int, 0, 16)
	seen := make(map[int]struct{})
	for _, result := range resp.Results {
		for _, hit := range result.Hits {
			num, err := strconv.Atoi(string(hit.Document.ID))
			if err != nil || num < 1 {
				continue
			}
			if _, dup := seen[num]; dup {
				continue
			}
			seen[num] = struct{}{}
			nums = append(nums, num)
		}
	}
	return nums, nil
}
