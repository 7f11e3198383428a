package session

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matst80/slask-storefront/pkg/backend"
	"github.com/matst80/slask-storefront/pkg/pagination"
	"github.com/matst80/slask-storefront/pkg/preferences"
	"github.com/matst80/slask-storefront/pkg/query"
	"github.com/matst80/slask-storefront/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storefront = `{
	"globalSettings": {"currency": "kr"},
	"appbaseSettings": {"index": "shop", "credentials": "user:pass", "url": "https://search.example.com"},
	"resultSettings": {"rsConfig": {"size": 2}, "fields": {"price": "variants.price"}},
	"searchSettings": {"rsConfig": {"debounce": 20}, "showPopularSearches": true},
	"facetSettings": {
		"dynamicFacets": [{"rsConfig": {"componentId": "brand", "dataField": "vendor"}}],
		"staticFacets": [{"name": "color"}, {"name": "size"}, {"name": "price"}]
	},
	"exportType": "shopify"
}`

type fakeBackend struct {
	mu           sync.Mutex
	catalog      []types.Item
	queries      []*query.Fragment
	options      map[types.FacetId]*backend.Options
	optionQuery  *query.Fragment
	suggestions  []types.Item
	suggestCalls atomic.Int32
	suggestText  string
	suggestErr   error
}

func (b *fakeBackend) FetchPage(ctx context.Context, q *query.Fragment, from, size int) (*types.ResultPage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queries = append(b.queries, q)
	end := min(from+size, len(b.catalog))
	start := min(from, end)
	return &types.ResultPage{
		Items: b.catalog[start:end],
		Total: len(b.catalog),
		Next:  end,
		Took:  3,
	}, nil
}

func (b *fakeBackend) FetchOptions(ctx context.Context, f *types.FacetConfig, q *query.Fragment) (*backend.Options, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.optionQuery = q
	options, ok := b.options[f.Id]
	if !ok {
		return nil, backend.ErrTransport
	}
	return options, nil
}

func (b *fakeBackend) Suggest(ctx context.Context, q *query.Fragment, size int) ([]types.Item, error) {
	b.suggestCalls.Add(1)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.suggestText = q.Text
	return b.suggestions, b.suggestErr
}

func (b *fakeBackend) lastQuery() *query.Fragment {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queries) == 0 {
		return nil
	}
	return b.queries[len(b.queries)-1]
}

type staticPopular struct {
	release chan struct{}
	entries []types.PopularSearchEntry
}

func (p *staticPopular) Fetch(ctx context.Context, indexId, credentials, baseUrl string) []types.PopularSearchEntry {
	if p.release != nil {
		<-p.release
	}
	return p.entries
}

func catalog(n int) []types.Item {
	items := make([]types.Item, n)
	for i := range items {
		items[i] = types.Item{
			Id: fmt.Sprintf("p%d", i),
			Source: map[string]any{
				"title":    fmt.Sprintf("Product %d", i),
				"handle":   fmt.Sprintf("product-%d", i),
				"image":    map[string]any{"src": "https://cdn.example.com/p.png"},
				"variants": []any{map[string]any{"price": 10.5}},
			},
		}
	}
	return items
}

func newSession(t *testing.T, doc string, b *fakeBackend, popular PopularSource) *Session {
	t.Helper()
	prefs, err := preferences.Resolve([]byte(doc))
	require.NoError(t, err)
	s := New("test", prefs, b, popular)
	t.Cleanup(s.Close)
	s.Wait()
	return s
}

func TestFirstPageAndCards(t *testing.T) {
	b := &fakeBackend{catalog: catalog(5)}
	s := newSession(t, storefront, b, nil)

	r := s.Results()
	assert.Equal(t, pagination.Idle, r.State)
	require.Len(t, r.Cards, 2)
	assert.Equal(t, Card{
		Id:    "p0",
		Title: "Product 0",
		Image: "https://cdn.example.com/p.png",
		Url:   "/products/product-0",
		Price: "kr 10.5",
	}, r.Cards[0])
	assert.Equal(t, "5 products found in 3 ms", r.Stats)
	assert.Empty(t, r.Message)
	assert.JSONEq(t, `{"term": {"type": "products"}}`, b.lastQuery().String())
}

func TestInfiniteScroll(t *testing.T) {
	b := &fakeBackend{catalog: catalog(5)}
	s := newSession(t, storefront, b, nil)

	loaded, err := s.OnViewport(pagination.Viewport{ScrollTop: 0, VisibleHeight: 100, ScrollHeight: 500})
	require.NoError(t, err)
	assert.False(t, loaded)

	for range 3 {
		_, err = s.OnViewport(pagination.Viewport{ScrollTop: 400, VisibleHeight: 100, ScrollHeight: 500})
		require.NoError(t, err)
		s.Wait()
	}
	r := s.Results()
	assert.Len(t, r.Cards, 5)
	assert.Equal(t, pagination.Exhausted, r.State)

	_, err = s.GotoPage(1)
	assert.ErrorIs(t, err, ErrInfiniteScroll)
}

func TestSelectRefreshesResults(t *testing.T) {
	b := &fakeBackend{catalog: catalog(5)}
	s := newSession(t, storefront, b, nil)

	require.NoError(t, s.Select(types.ColorId, types.Selection{Values: []string{"Red"}}))
	s.Wait()
	q := b.lastQuery().String()
	assert.Contains(t, q, `"variants.option2.keyword":["Red"]`)
	assert.Contains(t, q, `"type":"products"`)
	assert.Len(t, s.Results().Cards, 2, "list restarts at the first page")

	assert.ErrorIs(t, s.Select("unknown", types.Selection{Values: []string{"x"}}), ErrUnknownFacet)

	require.NoError(t, s.Select(types.ColorId, types.Selection{}))
	assert.False(t, s.Selections().HasField(types.ColorId))
}

func TestFacetQueryExcludesOwnSelection(t *testing.T) {
	b := &fakeBackend{catalog: catalog(1)}
	s := newSession(t, storefront, b, nil)

	require.NoError(t, s.Select(types.ColorId, types.Selection{Values: []string{"Red"}}))
	require.NoError(t, s.Select(types.SizeId, types.Selection{Values: []string{"M"}}))

	q, err := s.FacetQuery(types.ColorId)
	require.NoError(t, err)
	assert.JSONEq(t, `{"terms": {"variants.option1.keyword": ["M"]}}`, q.String())

	comp, err := s.Compose(types.ColorId)
	require.NoError(t, err)
	assert.JSONEq(t, `{"terms": {"variants.option2.keyword": ["Red"]}}`, comp.Own.String())

	_, err = s.FacetQuery("unknown")
	assert.ErrorIs(t, err, ErrUnknownFacet)
}

func TestFacetOptionsNormalizeSwatches(t *testing.T) {
	b := &fakeBackend{catalog: catalog(1), options: map[types.FacetId]*backend.Options{
		types.ColorId: {Values: []types.FacetOption{{Key: "Red", Count: 3}, {Key: "red", Count: 2}, {Key: "BLUE", Count: 1}}},
		types.SizeId:  {Values: []types.FacetOption{{Key: "M", Count: 3}, {Key: "m", Count: 2}}},
		types.PriceId: {Range: &backend.RangeBounds{Min: 5, Max: 50}},
	}}
	s := newSession(t, storefront, b, nil)
	require.NoError(t, s.Select(types.ColorId, types.Selection{Values: []string{"red"}}))

	color, err := s.FacetOptions(context.Background(), types.ColorId)
	require.NoError(t, err)
	assert.Equal(t, []types.FacetOption{{Key: "Red", Count: 3}, {Key: "BLUE", Count: 1}}, color.Options)
	assert.Equal(t, []string{"red"}, color.Selected.Values, "selection keeps its casing")
	assert.Equal(t, []types.FacetId{"brand", types.SizeId, types.PriceId}, color.DependsOn)

	size, err := s.FacetOptions(context.Background(), types.SizeId)
	require.NoError(t, err)
	assert.Len(t, size.Options, 2, "only swatch facets are normalized")
	assert.Contains(t, b.optionQuery.String(), "variants.option2.keyword")

	price, err := s.FacetOptions(context.Background(), types.PriceId)
	require.NoError(t, err)
	assert.Equal(t, &types.RangeSelection{Min: 5, Max: 50}, price.Bounds)

	_, err = s.FacetOptions(context.Background(), "brand")
	assert.ErrorIs(t, err, backend.ErrTransport)
}

func TestSuggestionFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	b := &fakeBackend{catalog: catalog(3), suggestErr: backend.ErrTransport}
	s := newSession(t, storefront, b, nil)

	s.SearchNow("shirt")
	s.Wait()
	assert.Empty(t, s.Suggestions())
	assert.Len(t, s.Results().Cards, 2, "results still load without suggestions")
	assert.Contains(t, buf.String(), "Failed to fetch suggestions")
}

func TestSearchSuggestions(t *testing.T) {
	b := &fakeBackend{catalog: catalog(3), suggestions: []types.Item{
		{Id: "1", Source: map[string]any{"title": "Red shirt", "handle": "red-shirt", "product_type": "Shirts"}},
		{Id: "2", Source: map[string]any{"title": "Shirts", "type": "collections"}},
	}}
	s := newSession(t, storefront, b, nil)

	s.SearchNow("shirt")
	s.Wait()
	assert.Equal(t, []Suggestion{{Id: "1", Label: "Red shirt", Category: "Shirts", Url: "/products/red-shirt"}}, s.Suggestions())
	assert.Contains(t, b.lastQuery().String(), `"query":"shirt"`)

	s.SearchNow("   ")
	s.Wait()
	assert.Empty(t, s.Suggestions())
	assert.NotContains(t, b.lastQuery().String(), "multi_match")
	assert.Equal(t, int32(1), b.suggestCalls.Load(), "empty text fetches no suggestions")
}

func TestSearchIsDebounced(t *testing.T) {
	b := &fakeBackend{catalog: catalog(3)}
	s := newSession(t, storefront, b, nil)

	for _, text := range []string{"s", "sh", "shi", "shirt"} {
		s.Search(text)
	}
	assert.Eventually(t, func() bool {
		return b.suggestCalls.Load() == 1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), b.suggestCalls.Load())
	b.mu.Lock()
	assert.Equal(t, "shirt", b.suggestText)
	b.mu.Unlock()
	assert.Equal(t, "shirt", s.Selections()[types.SearchId].Text)
}

func TestNumberedPages(t *testing.T) {
	doc := strings.Replace(storefront, `"size": 2`, `"size": 2, "pagination": false`, 1)
	b := &fakeBackend{catalog: catalog(5)}
	s := newSession(t, doc, b, nil)
	assert.False(t, s.InfiniteScroll())

	ok, err := s.GotoPage(2)
	require.NoError(t, err)
	require.True(t, ok)
	s.Wait()
	r := s.Results()
	assert.Equal(t, 2, r.Page)
	assert.Equal(t, 3, r.Pages)
	require.Len(t, r.Cards, 1)
	assert.Equal(t, "p4", r.Cards[0].Id)

	_, err = s.LoadMore()
	assert.ErrorIs(t, err, ErrNumberedPages)
	_, err = s.OnViewport(pagination.Viewport{})
	assert.ErrorIs(t, err, ErrNumberedPages)
}

func TestNoResultsMessage(t *testing.T) {
	s := newSession(t, storefront, &fakeBackend{}, nil)
	r := s.Results()
	assert.Empty(t, r.Cards)
	assert.Equal(t, preferences.DefaultNoResults, r.Message)
	assert.Empty(t, r.Stats)
}

func TestPopularSearches(t *testing.T) {
	popular := &staticPopular{entries: []types.PopularSearchEntry{{Term: "shirt", Count: 4}}}
	s := newSession(t, storefront, &fakeBackend{}, popular)
	assert.Eventually(t, func() bool {
		return len(s.Popular()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestPopularSearchesIgnoredAfterClose(t *testing.T) {
	popular := &staticPopular{release: make(chan struct{}), entries: []types.PopularSearchEntry{{Term: "shirt", Count: 4}}}
	s := newSession(t, storefront, &fakeBackend{}, popular)
	s.Close()
	close(popular.release)
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, s.Popular())
}

func TestPopularSearchesDisabled(t *testing.T) {
	doc := strings.Replace(storefront, `"showPopularSearches": true`, `"showPopularSearches": false`, 1)
	popular := &staticPopular{entries: []types.PopularSearchEntry{{Term: "shirt", Count: 4}}}
	s := newSession(t, doc, &fakeBackend{}, popular)
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, s.Popular())
}

func TestResultStats(t *testing.T) {
	assert.Equal(t, "12 products found in 4 ms", ResultStats(preferences.DefaultResultStats, 12, 4))
	assert.Equal(t, "no placeholders", ResultStats("no placeholders", 1, 1))
}
