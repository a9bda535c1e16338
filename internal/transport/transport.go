// Package transport is the fetch-and-decode primitive shared by the comic,
// explanation and search clients.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout  = 10 * time.Second
	maxErrorBodyLen = 4096
)

var (
	ErrRequest  = errors.New("request failed")
	ErrStatus   = errors.New("status")
	ErrNotFound = errors.New("not found")
	ErrDecode   = errors.New("decode")
)

// Options tune the underlying HTTP client. Zero values fall back to
// defaults; a non-positive RequestsPerSecond disables rate limiting.
type Options struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	UserAgent         string
	HTTPClient        *http.Client
}

type Client struct {
	log  *slog.Logger
	http *resty.Client
}

func New(log *slog.Logger, opts Options) *Client {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	var httpClient *resty.Client
	if opts.HTTPClient != nil {
		httpClient = resty.NewWithClient(opts.HTTPClient)
	} else {
		httpClient = resty.New()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient.SetTimeout(timeout)
	if opts.UserAgent != "" {
		httpClient.SetHeader("User-Agent", opts.UserAgent)
	}
	httpClient.SetHeader("Accept", "application/json")

	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}

	return &Client{log: log, http: httpClient}
}

// GetJSON issues a GET to rawURL and decodes the JSON body into out.
// what names the resource in error messages, e.g. "comic 42".
func (c *Client) GetJSON(ctx context.Context, rawURL, what string, out any) error {
	req := c.http.R().SetContext(ctx)
	body, err := c.execute(req, http.MethodGet, rawURL, what)
	if err != nil {
		return err
	}
	return decode(body, what, out)
}

// PostJSON marshals body as JSON, POSTs it to rawURL and decodes the
// response into out.
func (c *Client) PostJSON(ctx context.Context, rawURL, what string, body, out any) error {
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body)
	respBody, err := c.execute(req, http.MethodPost, rawURL, what)
	if err != nil {
		return err
	}
	return decode(respBody, what, out)
}

// GetBytes downloads rawURL and returns at most limit bytes of the body.
func (c *Client) GetBytes(ctx context.Context, rawURL, what string, limit int) ([]byte, error) {
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "*/*")
	body, err := c.execute(req, http.MethodGet, rawURL, what)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(body) > limit {
		return nil, fmt.Errorf("%s is larger than %d bytes", what, limit)
	}
	return body, nil
}

func (c *Client) execute(req *resty.Request, method, rawURL, what string) ([]byte, error) {
	start := time.Now()
	resp, err := req.Execute(method, rawURL)
	if err != nil {
		c.log.Debug("request failed", "resource", what, "method", method, "error", err)
		return nil, fmt.Errorf("%s %w: %w", what, ErrRequest, err)
	}
	c.log.Debug("request done",
		"resource", what,
		"method", method,
		"status", resp.StatusCode(),
		"duration", time.Since(start),
	)

	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%s failed with %w %d: %w", what, ErrStatus, resp.StatusCode(), ErrNotFound)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, fmt.Errorf("%s failed with %w %d: %s", what, ErrStatus, resp.StatusCode(), errorBody(resp.Body()))
	}
	return resp.Body(), nil
}

func decode(body []byte, what string, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w %s response: %w", ErrDecode, what, err)
	}
	return nil
}

func errorBody(body []byte) string {
	if len(body) > maxErrorBodyLen {
		body = body[:maxErrorBodyLen]
	}
	return strings.TrimSpace(string(body))
}
