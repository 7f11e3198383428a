package pagination

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matst80/slask-storefront/pkg/query"
	"github.com/matst80/slask-storefront/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reply struct {
	page *types.ResultPage
	err  error
}

type call struct {
	q     *query.Fragment
	from  int
	size  int
	reply chan reply
}

// fakeFetcher hands every request to the test, which answers it explicitly.
type fakeFetcher struct {
	calls chan call
	count atomic.Int32
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{calls: make(chan call, 16)}
}

func (f *fakeFetcher) FetchPage(ctx context.Context, q *query.Fragment, from, size int) (*types.ResultPage, error) {
	f.count.Add(1)
	c := call{q: q, from: from, size: size, reply: make(chan reply, 1)}
	f.calls <- c
	r := <-c.reply
	return r.page, r.err
}

func (f *fakeFetcher) next(t *testing.T) call {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(time.Second):
		t.Fatal("Expected a page request")
	}
	return call{}
}

func (f *fakeFetcher) expectNone(t *testing.T) {
	t.Helper()
	select {
	case c := <-f.calls:
		t.Fatalf("Unexpected page request from %d", c.from)
	case <-time.After(20 * time.Millisecond):
	}
}

func page(prefix string, from, n, total int) *types.ResultPage {
	items := make([]types.Item, n)
	for i := range items {
		items[i] = types.Item{Id: fmt.Sprintf("%s%d", prefix, from+i)}
	}
	return &types.ResultPage{Items: items, Total: total, Next: from + n}
}

func ids(items []types.Item) []string {
	result := make([]string, len(items))
	for i, item := range items {
		result[i] = item.Id
	}
	return result
}

func TestLoadsPagesUntilExhausted(t *testing.T) {
	ctx := context.Background()
	f := newFakeFetcher()
	c := NewController(f, 2)

	c.SetQuery(ctx, nil)
	assert.Equal(t, Loading, c.State())
	first := f.next(t)
	assert.Equal(t, 0, first.from)
	assert.Equal(t, 2, first.size)
	first.reply <- reply{page: page("a", 0, 2, 3)}
	c.Wait()
	assert.Equal(t, Idle, c.State())

	require.True(t, c.LoadMore(ctx))
	second := f.next(t)
	assert.Equal(t, 2, second.from)
	second.reply <- reply{page: page("a", 2, 1, 3)}
	c.Wait()

	assert.Equal(t, Exhausted, c.State())
	assert.Equal(t, []string{"a0", "a1", "a2"}, ids(c.Snapshot().Items))
	assert.False(t, c.LoadMore(ctx), "exhausted is terminal for the query")
	f.expectNone(t)
}

func TestRepeatedTriggersWhileLoading(t *testing.T) {
	ctx := context.Background()
	f := newFakeFetcher()
	c := NewController(f, 5)
	c.SetQuery(ctx, nil)
	first := f.next(t)

	bottom := Viewport{ScrollTop: 500, VisibleHeight: 500, ScrollHeight: 1000}
	for range 20 {
		assert.False(t, c.OnViewport(ctx, bottom))
	}
	f.expectNone(t)
	assert.Equal(t, int32(1), f.count.Load())

	first.reply <- reply{page: page("a", 0, 5, 50)}
	c.Wait()
	assert.True(t, c.OnViewport(ctx, bottom))
	assert.False(t, c.OnViewport(ctx, bottom))
	f.next(t).reply <- reply{page: page("a", 5, 5, 50)}
	c.Wait()
	assert.Equal(t, int32(2), f.count.Load())
}

func TestQueryChangeDiscardsLatePage(t *testing.T) {
	ctx := context.Background()
	f := newFakeFetcher()
	c := NewController(f, 2)

	oldQuery := query.Terms("color", "red")
	newQuery := query.Terms("color", "blue")

	c.SetQuery(ctx, oldQuery)
	stale := f.next(t)
	c.SetQuery(ctx, newQuery)
	fresh := f.next(t)
	assert.True(t, fresh.q.Equal(newQuery))

	fresh.reply <- reply{page: page("new", 0, 2, 4)}
	stale.reply <- reply{page: page("old", 0, 2, 10)}
	c.Wait()

	snapshot := c.Snapshot()
	assert.Equal(t, []string{"new0", "new1"}, ids(snapshot.Items))
	assert.Equal(t, 4, snapshot.Total)
	assert.Equal(t, Idle, snapshot.State)
}

func TestQueryChangeResetsExhausted(t *testing.T) {
	ctx := context.Background()
	f := newFakeFetcher()
	c := NewController(f, 2)
	c.SetQuery(ctx, query.Terms("size", "M"))
	f.next(t).reply <- reply{page: page("m", 0, 1, 1)}
	c.Wait()
	require.Equal(t, Exhausted, c.State())

	c.SetQuery(ctx, query.Terms("size", "M"))
	f.expectNone(t)

	c.SetQuery(ctx, query.Terms("size", "L"))
	assert.Equal(t, Loading, c.State())
	assert.Empty(t, c.Snapshot().Items)
	f.next(t).reply <- reply{page: page("l", 0, 2, 6)}
	c.Wait()
	assert.Equal(t, Idle, c.State())
}

func TestFailedFetchReturnsToIdle(t *testing.T) {
	ctx := context.Background()
	f := newFakeFetcher()
	c := NewController(f, 2)
	changes := make(chan Snapshot, 4)
	c.OnChange(func(s Snapshot) { changes <- s })

	c.SetQuery(ctx, nil)
	f.next(t).reply <- reply{err: errors.New("connection refused")}
	c.Wait()
	assert.Equal(t, Idle, c.State())
	assert.EqualError(t, c.Err(), "connection refused")
	assert.Equal(t, "connection refused", (<-changes).Error)

	require.True(t, c.LoadMore(ctx), "retry on next trigger")
	retry := f.next(t)
	assert.Equal(t, 0, retry.from)
	retry.reply <- reply{page: page("a", 0, 2, 2)}
	c.Wait()
	assert.NoError(t, c.Err())
	assert.Equal(t, Exhausted, c.State())
}

func TestViewportPredicate(t *testing.T) {
	assert.True(t, Viewport{ScrollTop: 600, VisibleHeight: 400, ScrollHeight: 1000}.ReachedBottom())
	assert.True(t, Viewport{ScrollTop: 700, VisibleHeight: 400, ScrollHeight: 1000}.ReachedBottom())
	assert.False(t, Viewport{ScrollTop: 599, VisibleHeight: 400, ScrollHeight: 1000}.ReachedBottom())
}

func TestWatchMonitor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := newFakeFetcher()
	c := NewController(f, 2)
	c.SetQuery(ctx, nil)
	f.next(t).reply <- reply{page: page("a", 0, 2, 10)}
	c.Wait()

	monitor := make(ChannelMonitor, 4)
	done := make(chan struct{})
	go func() {
		c.Watch(ctx, monitor)
		close(done)
	}()
	monitor <- Viewport{ScrollTop: 0, VisibleHeight: 100, ScrollHeight: 1000}
	monitor <- Viewport{ScrollTop: 900, VisibleHeight: 100, ScrollHeight: 1000}
	next := f.next(t)
	assert.Equal(t, 2, next.from)
	next.reply <- reply{page: page("a", 2, 2, 10)}
	close(monitor)
	<-done
	c.Wait()
	assert.Len(t, c.Snapshot().Items, 4)
}
