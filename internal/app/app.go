package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/glabrego/xkcd-cli/internal/xkcd"
)

const (
	DefaultFetchConcurrency = 4
	NoResultsMessage        = "No comic found."
)

var (
	ErrNoResults    = errors.New("no comic found")
	ErrInvalidInput = errors.New("invalid comic number")
	ErrSuperseded   = errors.New("superseded by a newer request")
	ErrUnknownComic = errors.New("comic not loaded")
	ErrAllFailed    = errors.New("every fetch failed")
)

type ComicClient interface {
	Latest(ctx context.Context) (xkcd.Comic, error)
	Get(ctx context.Context, num int) (xkcd.Comic, error)
}

type Searcher interface {
	Search(ctx context.Context, query string) ([]int, error)
}

type Explainer interface {
	Resolve(ctx context.Context, num int, title string) (string, error)
}

// LatestRecorder persists the newest comic number seen while browsing.
type LatestRecorder interface {
	SetLastComicNum(ctx context.Context, num int) error
}

type lane int

const (
	laneBrowse lane = iota
	laneSearch
	laneCount
)

type laneState struct {
	gen    uint64
	cancel context.CancelFunc
}

// Controller owns the browse state: the fetched comics, the lists built from
// them and the cursor. It is safe for concurrent use.
//
// Operations run in one of two lanes, browse and search. Starting an
// operation cancels the one in flight on the same lane, and results that
// arrive for a superseded operation are dropped.
type Controller struct {
	log      *slog.Logger
	comics   ComicClient
	searcher Searcher
	explain  Explainer
	latest   LatestRecorder
	randIntn func(n int) int
	parallel int

	mu        sync.Mutex
	cache     map[int]xkcd.Comic
	newest    []int
	oldest    []int
	random    []int
	results   []int
	filter    Filter
	cursor    int
	newestNum int
	loading   int
	err       error
	failures  int
	lanes     [laneCount]laneState
}

func NewController(log *slog.Logger, comics ComicClient, searcher Searcher, explain Explainer) *Controller {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		log:      log,
		comics:   comics,
		searcher: searcher,
		explain:  explain,
		randIntn: rand.IntN,
		parallel: DefaultFetchConcurrency,
		cache:    make(map[int]xkcd.Comic),
		filter:   FilterNewest,
	}
}

func (c *Controller) SetLatestRecorder(r LatestRecorder) { c.latest = r }

// SetRand replaces the sampler used by FetchRandom; intn returns a value in
// [0, n).
func (c *Controller) SetRand(intn func(n int) int) { c.randIntn = intn }

func (c *Controller) SetFetchConcurrency(n int) {
	if n > 0 {
		c.parallel = n
	}
}

// Snapshot returns a consistent copy of the state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		Newest:             c.comicsFor(c.newest),
		Oldest:             c.comicsFor(c.oldest),
		Random:             c.comicsFor(c.random),
		SearchResults:      c.comicsFor(c.results),
		Filter:             c.filter,
		CurrentComicNumber: c.cursor,
		NewestComicNumber:  c.newestNum,
		Loading:            c.loading > 0,
		Err:                c.err,
		SearchFailures:     c.failures,
	}
	if c.err != nil {
		s.ErrorMessage = errorMessage(c.err)
	}
	if comic, ok := c.cache[c.cursor]; ok {
		s.Current = &comic
	}
	return s
}

// Current returns the comic under the cursor.
func (c *Controller) Current() (xkcd.Comic, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	comic, ok := c.cache[c.cursor]
	return comic, ok
}

// Select makes comic current, caching it when it was loaded elsewhere, e.g.
// from the saved comics.
func (c *Controller) Select(comic xkcd.Comic) {
	if comic.Num < 1 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.cache[comic.Num]; ok {
		if cached.Explanation == "" && comic.Explanation != "" {
			cached.Explanation = comic.Explanation
			c.cache[comic.Num] = cached
		}
	} else {
		c.store(comic)
	}
	c.cursor = comic.Num
}

// FetchNewest loads the latest comic and restarts the newest list from it.
func (c *Controller) FetchNewest(ctx context.Context) error {
	ctx, gen, done := c.begin(ctx, laneBrowse)
	defer done()

	comic, err := c.fetchLatest(ctx)
	if err != nil {
		return c.fail(laneBrowse, gen, fmt.Errorf("fetch newest comic: %w", err))
	}
	return c.commit(laneBrowse, gen, func() {
		c.applyLatest(comic)
		c.newest = []int{comic.Num}
		c.cursor = comic.Num
	})
}

// FetchOldest loads comic #1 and restarts the oldest list from it.
func (c *Controller) FetchOldest(ctx context.Context) error {
	ctx, gen, done := c.begin(ctx, laneBrowse)
	defer done()

	comic, err := c.lookup(ctx, 1)
	if err != nil {
		return c.fail(laneBrowse, gen, fmt.Errorf("fetch oldest comic: %w", err))
	}
	return c.commit(laneBrowse, gen, func() {
		c.store(comic)
		c.oldest = []int{comic.Num}
		c.cursor = comic.Num
	})
}

// FetchRandom samples a comic uniformly from [1, newest] and appends it to
// the random list. The newest number is fetched first when unknown.
func (c *Controller) FetchRandom(ctx context.Context) error {
	ctx, gen, done := c.begin(ctx, laneBrowse)
	defer done()

	newest, err := c.ensureNewest(ctx, gen)
	if err != nil {
		return c.fail(laneBrowse, gen, fmt.Errorf("fetch random comic: %w", err))
	}
	idx := c.randIntn(newest) % newest
	if idx < 0 {
		idx += newest
	}
	num := idx + 1

	comic, err := c.lookup(ctx, num)
	if err != nil {
		return c.fail(laneBrowse, gen, fmt.Errorf("fetch random comic %d: %w", num, err))
	}
	return c.commit(laneBrowse, gen, func() {
		c.store(comic)
		c.random = append(c.random, comic.Num)
		c.cursor = comic.Num
	})
}

// FetchByNumber replaces the search results with comic n. Numbers outside
// [1, newest] fail with ErrInvalidInput before any request; the upper bound
// applies only once the newest number is known.
func (c *Controller) FetchByNumber(ctx context.Context, n int) error {
	ctx, gen, done := c.begin(ctx, laneSearch)
	defer done()

	if err := c.validateNumber(n); err != nil {
		return c.fail(laneSearch, gen, err)
	}
	comic, err := c.lookup(ctx, n)
	if err != nil {
		return c.fail(laneSearch, gen, fmt.Errorf("fetch comic %d: %w", n, err))
	}
	return c.commit(laneSearch, gen, func() {
		c.store(comic)
		c.results = []int{comic.Num}
		c.failures = 0
		c.cursor = comic.Num
	})
}

// FetchByNumbers fetches ns concurrently and replaces the search results with
// the comics that succeeded, in request order. Failures are counted in
// State.SearchFailures; an error is returned only when every fetch failed.
func (c *Controller) FetchByNumbers(ctx context.Context, ns []int) error {
	ctx, gen, done := c.begin(ctx, laneSearch)
	defer done()
	return c.fetchMany(ctx, gen, ns)
}

// FetchBySearchQuery resolves q to comic numbers and fetches them. A query
// that is a valid comic number jumps straight to that comic.
func (c *Controller) FetchBySearchQuery(ctx context.Context, q string) error {
	q = strings.TrimSpace(q)
	if n, err := strconv.Atoi(q); err == nil && c.validateNumber(n) == nil {
		return c.FetchByNumber(ctx, n)
	}

	ctx, gen, done := c.begin(ctx, laneSearch)
	defer done()

	nums, err := c.searcher.Search(ctx, q)
	if err != nil {
		return c.fail(laneSearch, gen, fmt.Errorf("search %q: %w", q, err))
	}
	if len(nums) == 0 {
		err := c.commit(laneSearch, gen, func() {
			c.results = nil
			c.failures = 0
		})
		if err != nil {
			return err
		}
		return c.fail(laneSearch, gen, fmt.Errorf("search %q: %w", q, ErrNoResults))
	}
	return c.fetchMany(ctx, gen, nums)
}

// StepPrevious moves the cursor to the comic before it. It does nothing at
// comic #1. The comic also extends the newest list when it continues it.
func (c *Controller) StepPrevious(ctx context.Context) error {
	return c.step(ctx, -1)
}

// StepNext moves the cursor to the comic after it. It does nothing at the
// newest comic. The comic also extends the oldest list when it continues it.
func (c *Controller) StepNext(ctx context.Context) error {
	return c.step(ctx, +1)
}

func (c *Controller) step(ctx context.Context, delta int) error {
	ctx, gen, done := c.begin(ctx, laneBrowse)
	defer done()

	c.mu.Lock()
	cursor := c.cursor
	c.mu.Unlock()

	if cursor == 0 {
		comic, err := c.fetchLatest(ctx)
		if err != nil {
			return c.fail(laneBrowse, gen, fmt.Errorf("fetch newest comic: %w", err))
		}
		if err := c.commit(laneBrowse, gen, func() {
			c.applyLatest(comic)
			if len(c.newest) == 0 {
				c.newest = []int{comic.Num}
			}
			c.cursor = comic.Num
		}); err != nil {
			return err
		}
		cursor = comic.Num
	}

	target := cursor + delta
	c.mu.Lock()
	atBoundary := target < 1 || (delta > 0 && c.newestNum != 0 && cursor >= c.newestNum)
	c.mu.Unlock()
	if atBoundary {
		return nil
	}

	comic, err := c.lookup(ctx, target)
	if err != nil {
		return c.fail(laneBrowse, gen, fmt.Errorf("fetch comic %d: %w", target, err))
	}
	return c.commit(laneBrowse, gen, func() {
		c.store(comic)
		if delta < 0 {
			c.newest = extendDown(c.newest, comic.Num)
		} else {
			c.oldest = extendUp(c.oldest, comic.Num)
		}
		c.cursor = comic.Num
	})
}

// SetFilter switches the browse list and loads it when empty.
func (c *Controller) SetFilter(ctx context.Context, f Filter) error {
	if !f.Valid() {
		return fmt.Errorf("unknown filter %q", f)
	}
	_, gen, done := c.begin(ctx, laneBrowse)
	empty := false
	err := c.commit(laneBrowse, gen, func() {
		c.filter = f
		empty = len(c.listFor(f)) == 0
	})
	done()
	if err != nil || !empty {
		return err
	}
	return c.initial(ctx, f)
}

// LoadMore continues list f: another random sample, or the next comic past
// the tail of the newest or oldest list. It does nothing at either end of
// the archive.
func (c *Controller) LoadMore(ctx context.Context, f Filter) error {
	if !f.Valid() {
		return fmt.Errorf("unknown filter %q", f)
	}
	if f == FilterRandom {
		return c.FetchRandom(ctx)
	}

	c.mu.Lock()
	list := c.listFor(f)
	tail := 0
	if len(list) > 0 {
		tail = list[len(list)-1]
	}
	newestNum := c.newestNum
	c.mu.Unlock()

	if tail == 0 {
		return c.initial(ctx, f)
	}

	next := tail - 1
	if f == FilterOldest {
		next = tail + 1
	}
	if next < 1 || (f == FilterOldest && newestNum != 0 && next > newestNum) {
		return nil
	}

	ctx, gen, done := c.begin(ctx, laneBrowse)
	defer done()

	comic, err := c.lookup(ctx, next)
	if err != nil {
		return c.fail(laneBrowse, gen, fmt.Errorf("fetch comic %d: %w", next, err))
	}
	return c.commit(laneBrowse, gen, func() {
		c.store(comic)
		if f == FilterNewest {
			c.newest = extendDown(c.newest, comic.Num)
		} else {
			c.oldest = extendUp(c.oldest, comic.Num)
		}
		c.cursor = comic.Num
	})
}

// ResolveExplanation fetches the explanation of a loaded comic and stores it
// on the cached comic, so every list holding that number sees it.
func (c *Controller) ResolveExplanation(ctx context.Context, num int) (string, error) {
	c.mu.Lock()
	comic, ok := c.cache[num]
	if ok && comic.Explanation != "" {
		c.mu.Unlock()
		return comic.Explanation, nil
	}
	c.loading++
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.loading--
		c.mu.Unlock()
	}()

	if !ok {
		return "", fmt.Errorf("explain comic %d: %w", num, ErrUnknownComic)
	}

	text, err := c.explain.Resolve(ctx, num, comic.Title)
	if err != nil {
		err = fmt.Errorf("explain comic %d: %w", num, err)
		c.log.Warn("explanation failed", "num", num, "error", err)
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		return "", err
	}

	c.mu.Lock()
	comic = c.cache[num]
	comic.Explanation = text
	c.cache[num] = comic
	c.mu.Unlock()
	return text, nil
}

// ClearError drops the current error message.
func (c *Controller) ClearError() {
	c.mu.Lock()
	c.err = nil
	c.mu.Unlock()
}

func (c *Controller) initial(ctx context.Context, f Filter) error {
	switch f {
	case FilterRandom:
		return c.FetchRandom(ctx)
	case FilterOldest:
		return c.FetchOldest(ctx)
	default:
		return c.FetchNewest(ctx)
	}
}

func (c *Controller) fetchMany(ctx context.Context, gen uint64, ns []int) error {
	nums := dedupe(ns)
	fetched := make([]*xkcd.Comic, len(nums))
	errs := make([]error, len(nums))

	var g errgroup.Group
	g.SetLimit(c.parallel)
	for i, n := range nums {
		g.Go(func() error {
			comic, err := c.lookup(ctx, n)
			if err != nil {
				errs[i] = fmt.Errorf("fetch comic %d: %w", n, err)
				return nil
			}
			fetched[i] = &comic
			return nil
		})
	}
	_ = g.Wait()

	var firstErr error
	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if failed > 0 {
		c.log.Warn("some comics failed to load", "requested", len(nums), "failed", failed, "error", firstErr)
	}
	if len(nums) > 0 && failed == len(nums) {
		return c.fail(laneSearch, gen, fmt.Errorf("fetch %d comics: %w: %w", len(nums), ErrAllFailed, firstErr))
	}

	return c.commit(laneSearch, gen, func() {
		c.results = make([]int, 0, len(nums)-failed)
		for _, comic := range fetched {
			if comic == nil {
				continue
			}
			c.store(*comic)
			c.results = append(c.results, comic.Num)
		}
		c.failures = failed
		if len(c.results) > 0 {
			c.cursor = c.results[0]
		}
	})
}

// ensureNewest returns the newest comic number, fetching it when unknown.
func (c *Controller) ensureNewest(ctx context.Context, gen uint64) (int, error) {
	c.mu.Lock()
	newest := c.newestNum
	c.mu.Unlock()
	if newest > 0 {
		return newest, nil
	}

	comic, err := c.fetchLatest(ctx)
	if err != nil {
		return 0, err
	}
	if err := c.commit(laneBrowse, gen, func() {
		c.applyLatest(comic)
		if len(c.newest) == 0 {
			c.newest = []int{comic.Num}
		}
	}); err != nil {
		return 0, err
	}
	return comic.Num, nil
}

func (c *Controller) fetchLatest(ctx context.Context) (xkcd.Comic, error) {
	comic, err := c.comics.Latest(ctx)
	if err != nil {
		return xkcd.Comic{}, err
	}
	if c.latest != nil {
		if err := c.latest.SetLastComicNum(ctx, comic.Num); err != nil {
			c.log.Warn("failed to record latest comic", "num", comic.Num, "error", err)
		}
	}
	return comic, nil
}

// applyLatest must be called with c.mu held.
func (c *Controller) applyLatest(comic xkcd.Comic) {
	c.store(comic)
	if comic.Num > c.newestNum {
		c.newestNum = comic.Num
	}
}

// store caches a fetched comic without losing an explanation resolved while
// it was in flight. c.mu must be held.
func (c *Controller) store(comic xkcd.Comic) {
	if prev, ok := c.cache[comic.Num]; ok && comic.Explanation == "" {
		comic.Explanation = prev.Explanation
	}
	c.cache[comic.Num] = comic
}

// lookup serves comic num from the cache or fetches it.
func (c *Controller) lookup(ctx context.Context, num int) (xkcd.Comic, error) {
	c.mu.Lock()
	comic, ok := c.cache[num]
	c.mu.Unlock()
	if ok {
		return comic, nil
	}
	return c.comics.Get(ctx, num)
}

func (c *Controller) validateNumber(n int) error {
	c.mu.Lock()
	newest := c.newestNum
	c.mu.Unlock()
	if n < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidInput, n)
	}
	if newest > 0 && n > newest {
		return fmt.Errorf("%w: %d is past the newest comic %d", ErrInvalidInput, n, newest)
	}
	return nil
}

// begin starts an operation on l, cancelling the one in flight there.
func (c *Controller) begin(ctx context.Context, l lane) (context.Context, uint64, func()) {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	ls := &c.lanes[l]
	if ls.cancel != nil {
		ls.cancel()
	}
	ls.gen++
	gen := ls.gen
	ls.cancel = cancel
	c.loading++
	c.mu.Unlock()

	return ctx, gen, func() {
		cancel()
		c.mu.Lock()
		c.loading--
		if c.lanes[l].gen == gen {
			c.lanes[l].cancel = nil
		}
		c.mu.Unlock()
	}
}

// commit applies fn under the lock when gen is still current on l.
func (c *Controller) commit(l lane, gen uint64, fn func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lanes[l].gen != gen {
		return ErrSuperseded
	}
	fn()
	c.err = nil
	return nil
}

// fail records err when gen is still current on l.
func (c *Controller) fail(l lane, gen uint64, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lanes[l].gen != gen {
		return ErrSuperseded
	}
	c.err = err
	c.log.Debug("operation failed", "error", err)
	return err
}

func (c *Controller) listFor(f Filter) []int {
	switch f {
	case FilterRandom:
		return c.random
	case FilterOldest:
		return c.oldest
	default:
		return c.newest
	}
}

func (c *Controller) comicsFor(nums []int) []xkcd.Comic {
	out := make([]xkcd.Comic, 0, len(nums))
	for _, n := range nums {
		if comic, ok := c.cache[n]; ok {
			out = append(out, comic)
		}
	}
	return out
}

func extendDown(list []int, num int) []int {
	if len(list) > 0 && list[len(list)-1] == num+1 {
		return append(list, num)
	}
	return list
}

func extendUp(list []int, num int) []int {
	if len(list) > 0 && list[len(list)-1] == num-1 {
		return append(list, num)
	}
	return list
}

func dedupe(ns []int) []int {
	out := make([]int, 0, len(ns))
	seen := make(map[int]struct{}, len(ns))
	for _, n := range ns {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func errorMessage(err error) string {
	if errors.Is(err, ErrNoResults) {
		return NoResultsMessage
	}
	return err.Error()
}
