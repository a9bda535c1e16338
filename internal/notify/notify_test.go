package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/glabrego/xkcd-cli/internal/xkcd"
)

type fakeLatest struct {
	mu    sync.Mutex
	comic xkcd.Comic
	err   error
	calls int
}

func (f *fakeLatest) Latest(context.Context) (xkcd.Comic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.comic, f.err
}

func (f *fakeLatest) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeStore struct {
	mu   sync.Mutex
	last int
}

func (f *fakeStore) LastComicNum(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last, nil
}

func (f *fakeStore) SetLastComicNum(_ context.Context, num int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = num
	return nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published []int
	err       error
}

func (f *fakePublisher) PublishNewComic(_ context.Context, c xkcd.Comic) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, c.Num)
	return f.err
}

func (f *fakePublisher) nums() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.published...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestChecker_Check(t *testing.T) {
	tests := []struct {
		name      string
		stored    int
		latest    int
		wantNew   bool
		wantStore int
	}{
		{name: "nothing stored", stored: 0, latest: 3000, wantNew: true, wantStore: 3000},
		{name: "newer comic", stored: 2999, latest: 3000, wantNew: true, wantStore: 3000},
		{name: "same comic", stored: 3000, latest: 3000, wantNew: false, wantStore: 3000},
		{name: "stored ahead", stored: 3001, latest: 3000, wantNew: false, wantStore: 3001},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{last: tc.stored}
			pub := &fakePublisher{}
			c := NewChecker(discardLogger(), &fakeLatest{comic: xkcd.Comic{Num: tc.latest}}, store, pub)

			comic, isNew, err := c.Check(context.Background())
			require.NoError(t, err)
			require.Equal(t, tc.latest, comic.Num)
			require.Equal(t, tc.wantNew, isNew)
			require.Equal(t, tc.wantStore, store.last)
			if tc.wantNew {
				require.Equal(t, []int{tc.latest}, pub.nums())
			} else {
				require.Empty(t, pub.nums())
			}
		})
	}
}

func TestChecker_FetchErrorLeavesStoreUntouched(t *testing.T) {
	store := &fakeStore{last: 10}
	c := NewChecker(discardLogger(), &fakeLatest{err: errors.New("offline")}, store, &fakePublisher{})

	_, _, err := c.Check(context.Background())
	require.Error(t, err)
	require.Equal(t, 10, store.last)
}

func TestChecker_PublishError(t *testing.T) {
	store := &fakeStore{}
	c := NewChecker(discardLogger(), &fakeLatest{comic: xkcd.Comic{Num: 5}}, store, &fakePublisher{err: errors.New("broker down")})

	_, isNew, err := c.Check(context.Background())
	require.Error(t, err)
	require.True(t, isNew)
	require.Equal(t, 5, store.last)
}

func TestWatcher_PublishesOncePerNewComic(t *testing.T) {
	latest := &fakeLatest{comic: xkcd.Comic{Num: 100}}
	pub := &fakePublisher{}
	w := NewWatcher(discardLogger(), NewChecker(discardLogger(), latest, &fakeStore{}, pub), 5*time.Millisecond)

	w.Start(context.Background())
	require.Eventually(t, func() bool { return latest.callCount() >= 3 }, 2*time.Second, 5*time.Millisecond)
	w.Stop()

	require.Equal(t, []int{100}, pub.nums())
}

func TestWatcher_StopsWithContext(t *testing.T) {
	latest := &fakeLatest{comic: xkcd.Comic{Num: 1}}
	w := NewWatcher(discardLogger(), NewChecker(discardLogger(), latest, &fakeStore{}, &fakePublisher{}), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	require.Eventually(t, func() bool { return latest.callCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-w.done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
