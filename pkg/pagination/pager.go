package pagination

import (
	"context"
	"log"
	"slices"
	"sync"

	"github.com/matst80/slask-storefront/pkg/query"
	"github.com/matst80/slask-storefront/pkg/types"
)

// Pager serves numbered pages when infinite scrolling is turned off. Each page
// replaces the visible list; a changed query starts again at page 0.
type Pager struct {
	mu         sync.Mutex
	wg         sync.WaitGroup
	fetcher    Fetcher
	pageSize   int
	state      State
	query      *query.Fragment
	generation uint64
	page       int
	items      []types.Item
	total      int
	took       int
	lastErr    error
	cancel     context.CancelFunc
}

func NewPager(fetcher Fetcher, pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = 9
	}
	return &Pager{fetcher: fetcher, pageSize: pageSize, state: Idle}
}

func (p *Pager) SetQuery(ctx context.Context, q *query.Fragment) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.generation > 0 && p.query.Equal(q) {
		return
	}
	p.query = q
	p.items = nil
	p.total = 0
	p.took = 0
	p.lastErr = nil
	p.load(ctx, 0)
}

// GotoPage loads a zero based page. Pages beyond the known total are rejected; until
// a page with hits arrived only page 0 can be requested.
func (p *Pager) GotoPage(ctx context.Context, page int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if page < 0 || (page > 0 && page >= p.pages()) {
		return false
	}
	p.load(ctx, page)
	return true
}

func (p *Pager) pages() int {
	return (p.total + p.pageSize - 1) / p.pageSize
}

// load must be called with the lock held.
func (p *Pager) load(ctx context.Context, page int) {
	p.generation++
	if p.cancel != nil {
		p.cancel()
	}
	p.page = page
	p.state = Loading
	generation := p.generation
	q := p.query
	from := page * p.pageSize
	size := p.pageSize

	fetchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	pageFetches.Inc()
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer cancel()
		result, err := p.fetcher.FetchPage(fetchCtx, q, from, size)
		p.complete(generation, result, err)
	}()
}

func (p *Pager) complete(generation uint64, result *types.ResultPage, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if generation != p.generation {
		stalePages.Inc()
		return
	}
	p.cancel = nil
	p.state = Idle
	if err == nil && result == nil {
		err = errEmptyPage
	}
	if err != nil {
		pageFetchErrors.Inc()
		log.Printf("Failed to fetch result page %d: %v", p.page, err)
		p.lastErr = err
		return
	}
	p.lastErr = nil
	p.items = result.Items
	p.total = result.Total
	p.took = result.Took
}

func (p *Pager) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := Snapshot{
		State: p.state,
		Items: slices.Clone(p.items),
		Total: p.total,
		Took:  p.took,
		Page:  p.page,
		Pages: p.pages(),
	}
	if p.lastErr != nil {
		s.Error = p.lastErr.Error()
	}
	return s
}

func (p *Pager) Wait() {
	p.wg.Wait()
}

func (p *Pager) Close() {
	p.mu.Lock()
	p.generation++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()
	p.wg.Wait()
}
