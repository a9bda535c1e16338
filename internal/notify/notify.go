// Package notify detects newly published comics and announces them.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/glabrego/xkcd-cli/internal/xkcd"
)

type LatestFetcher interface {
	Latest(ctx context.Context) (xkcd.Comic, error)
}

type Store interface {
	LastComicNum(ctx context.Context) (int, error)
	SetLastComicNum(ctx context.Context, num int) error
}

type Publisher interface {
	PublishNewComic(ctx context.Context, comic xkcd.Comic) error
}

type Checker struct {
	log    *slog.Logger
	comics LatestFetcher
	store  Store
	pub    Publisher
}

func NewChecker(log *slog.Logger, comics LatestFetcher, store Store, pub Publisher) *Checker {
	return &Checker{log: log, comics: comics, store: store, pub: pub}
}

// Check fetches the latest comic and publishes it when it is newer than the
// last one recorded, or when nothing has been recorded yet.
func (c *Checker) Check(ctx context.Context) (xkcd.Comic, bool, error) {
	latest, err := c.comics.Latest(ctx)
	if err != nil {
		return xkcd.Comic{}, false, fmt.Errorf("fetch latest comic: %w", err)
	}
	last, err := c.store.LastComicNum(ctx)
	if err != nil {
		return xkcd.Comic{}, false, fmt.Errorf("load last comic number: %w", err)
	}
	if last != 0 && latest.Num <= last {
		c.log.Debug("no new comic", "latest", latest.Num, "last", last)
		return latest, false, nil
	}

	if err := c.store.SetLastComicNum(ctx, latest.Num); err != nil {
		return xkcd.Comic{}, false, fmt.Errorf("save last comic number: %w", err)
	}
	c.log.Info("new comic", "num", latest.Num, "title", latest.DisplayTitle(), "previous", last)
	if err := c.pub.PublishNewComic(ctx, latest); err != nil {
		return latest, true, fmt.Errorf("publish comic %d: %w", latest.Num, err)
	}
	return latest, true, nil
}

// Watcher runs Check on a fixed interval.
type Watcher struct {
	log      *slog.Logger
	checker  *Checker
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewWatcher(log *slog.Logger, checker *Checker, interval time.Duration) *Watcher {
	return &Watcher{log: log, checker: checker, interval: interval}
}

// Start checks once immediately and then on every tick until ctx is done or
// Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})

	go func() {
		defer close(w.done)
		w.check(ctx)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				w.log.Info("watcher stopped")
				return
			case <-ticker.C:
				w.check(ctx)
			}
		}
	}()
}

func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}
}

func (w *Watcher) check(ctx context.Context) {
	if _, _, err := w.checker.Check(ctx); err != nil && ctx.Err() == nil {
		w.log.Error("new comic check failed", "error", err)
	}
}
