// Package pagination drives infinite scrolling of the result list.
//
// The controller moves Idle -> Loading on a load-more trigger, Loading -> Idle when a
// page arrives and more are available, and Loading -> Exhausted on the last page. At
// most one page request is in flight for the current query. Changing the query clears
// the visible list, refetches from the first page and discards late pages of the
// previous query.
package pagination

import (
	"context"
	"log"
	"slices"
	"sync"

	"github.com/matst80/slask-storefront/pkg/query"
	"github.com/matst80/slask-storefront/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pageFetches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_page_fetches_total",
		Help: "The total number of issued result page requests",
	})
	pageFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_page_fetch_errors_total",
		Help: "The total number of failed result page requests",
	})
	stalePages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_stale_pages_discarded_total",
		Help: "The total number of pages discarded because the query changed",
	})
	droppedTriggers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_load_more_dropped_total",
		Help: "The total number of load more triggers dropped while not idle",
	})
)

type State int32

const (
	Idle State = iota
	Loading
	Exhausted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Exhausted:
		return "exhausted"
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Fetcher is the result-fetching port.
type Fetcher interface {
	FetchPage(ctx context.Context, q *query.Fragment, from, size int) (*types.ResultPage, error)
}

type Snapshot struct {
	State State        `json:"state"`
	Items []types.Item `json:"items"`
	Total int          `json:"total"`
	Took  int          `json:"took"`
	Page  int          `json:"page,omitempty"`
	Pages int          `json:"pages,omitempty"`
	Error string       `json:"error,omitempty"`
}

type Controller struct {
	mu         sync.Mutex
	wg         sync.WaitGroup
	fetcher    Fetcher
	pageSize   int
	state      State
	query      *query.Fragment
	generation uint64
	items      []types.Item
	total      int
	took       int
	next       int
	lastErr    error
	cancel     context.CancelFunc
	onChange   func(Snapshot)
}

func NewController(fetcher Fetcher, pageSize int) *Controller {
	if pageSize <= 0 {
		pageSize = 9
	}
	return &Controller{
		fetcher:  fetcher,
		pageSize: pageSize,
		state:    Idle,
	}
}

// OnChange registers a callback invoked after every applied page.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// SetQuery replaces the composite query. Accumulated pages are dropped and the first
// page of the new query is requested. Setting an equal query is a no-op.
func (c *Controller) SetQuery(ctx context.Context, q *query.Fragment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation > 0 && c.query.Equal(q) {
		return
	}
	c.generation++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.query = q
	c.items = nil
	c.total = 0
	c.took = 0
	c.next = 0
	c.lastErr = nil
	c.state = Loading
	c.start(ctx, c.generation, 0)
}

// LoadMore requests the next page. It only acts while Idle; triggers while Loading or
// Exhausted are dropped, not queued.
func (c *Controller) LoadMore(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Idle {
		droppedTriggers.Inc()
		return false
	}
	if c.generation == 0 {
		c.generation++
	}
	c.state = Loading
	c.start(ctx, c.generation, c.next)
	return true
}

// OnViewport loads more when the viewport reached the bottom.
func (c *Controller) OnViewport(ctx context.Context, v Viewport) bool {
	if !v.ReachedBottom() {
		return false
	}
	return c.LoadMore(ctx)
}

// Watch consumes a viewport monitor until the context ends or the monitor closes.
func (c *Controller) Watch(ctx context.Context, monitor ViewportMonitor) {
	changes := monitor.Viewports()
	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-changes:
			if !ok {
				return
			}
			c.OnViewport(ctx, v)
		}
	}
}

// start must be called with the lock held.
func (c *Controller) start(ctx context.Context, generation uint64, from int) {
	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	q := c.query
	size := c.pageSize
	pageFetches.Inc()
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		page, err := c.fetcher.FetchPage(fetchCtx, q, from, size)
		c.complete(generation, from, page, err)
	}()
}

func (c *Controller) complete(generation uint64, from int, page *types.ResultPage, err error) {
	c.mu.Lock()
	if generation != c.generation {
		c.mu.Unlock()
		stalePages.Inc()
		return
	}
	c.cancel = nil
	if err == nil && page == nil {
		err = errEmptyPage
	}
	if err != nil {
		pageFetchErrors.Inc()
		log.Printf("Failed to fetch result page at %d: %v", from, err)
		c.lastErr = err
		c.state = Idle
	} else {
		c.lastErr = nil
		c.items = append(c.items, page.Items...)
		c.total = page.Total
		c.took = page.Took
		c.next = from + len(page.Items)
		if len(page.Items) > 0 && c.next < page.Total {
			c.state = Idle
		} else {
			c.state = Exhausted
		}
	}
	snapshot := c.snapshot()
	onChange := c.onChange
	c.mu.Unlock()

	if onChange != nil {
		onChange(snapshot)
	}
}

func (c *Controller) snapshot() Snapshot {
	s := Snapshot{
		State: c.state,
		Items: slices.Clone(c.items),
		Total: c.total,
		Took:  c.took,
	}
	if c.lastErr != nil {
		s.Error = c.lastErr.Error()
	}
	return s
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Wait blocks until no page request is running.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels the running request and discards whatever it returns.
func (c *Controller) Close() {
	c.mu.Lock()
	c.generation++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}
