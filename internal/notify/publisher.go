package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/glabrego/xkcd-cli/internal/xkcd"
)

const NewComicSubject = "xkcd.comic.new"

type Event struct {
	Num       int    `json:"num"`
	Title     string `json:"title"`
	ImageURL  string `json:"img"`
	Permalink string `json:"permalink"`
}

func eventFor(c xkcd.Comic) Event {
	return Event{Num: c.Num, Title: c.DisplayTitle(), ImageURL: c.ImageURL, Permalink: c.Permalink}
}

// NATSPublisher announces new comics on NewComicSubject.
type NATSPublisher struct {
	log *slog.Logger
	nc  *nats.Conn
}

func NewNATSPublisher(log *slog.Logger, addr string) (*NATSPublisher, error) {
	nc, err := nats.Connect(addr, nats.Name("xkcd-cli"))
	if err != nil {
		log.Error("failed to connect to nats", "address", addr, "error", err)
		return nil, fmt.Errorf("connect to nats %s: %w", addr, err)
	}
	return &NATSPublisher{log: log, nc: nc}, nil
}

func (p *NATSPublisher) Close() {
	if p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.log.Error("failed to drain nats connection", "error", err)
	}
}

func (p *NATSPublisher) PublishNewComic(_ context.Context, comic xkcd.Comic) error {
	data, err := json.Marshal(eventFor(comic))
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.nc.Publish(NewComicSubject, data); err != nil {
		return fmt.Errorf("publish %s: %w", NewComicSubject, err)
	}
	if err := p.nc.Flush(); err != nil {
		p.log.Warn("failed to flush nats connection", "error", err)
	}
	return nil
}

// LogPublisher only logs; it is used when no broker is configured.
type LogPublisher struct {
	Log *slog.Logger
}

func (p LogPublisher) PublishNewComic(_ context.Context, comic xkcd.Comic) error {
	e := eventFor(comic)
	p.Log.Info("new comic published", "num", e.Num, "title", e.Title, "permalink", e.Permalink)
	return nil
}
