// Package session holds the state of one shopper browsing a storefront: the resolved
// preferences, the facet list and its dependency graph, the current selections and
// the result list they drive.
package session

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/matst80/slask-storefront/pkg/facet"
	"github.com/matst80/slask-storefront/pkg/graph"
	"github.com/matst80/slask-storefront/pkg/pagination"
	"github.com/matst80/slask-storefront/pkg/query"
	"github.com/matst80/slask-storefront/pkg/telemetry"
	"github.com/matst80/slask-storefront/pkg/types"
)

const DefaultSuggestionSize = 10

type Session struct {
	Id      string
	Created time.Time

	prefs    *types.Preferences
	facets   facet.Facets
	graph    *graph.Graph
	composer *query.Composer
	backend  Backend

	results    resultList
	controller *pagination.Controller
	pager      *pagination.Pager
	debouncer  *query.Debouncer

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	selections  types.Selections
	suggestSeq  uint64
	suggestions []Suggestion
	popular     []types.PopularSearchEntry
	lastSeen    time.Time
	closed      bool
}

// New builds the facet list and dependency graph once and requests the first result
// page. When popular searches are enabled they are fetched in the background.
func New(id string, prefs *types.Preferences, b Backend, popular PopularSource) *Session {
	facets := facet.BuildFacets(prefs)
	g := graph.BuildEdges(facets, prefs)
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		Id:         id,
		Created:    time.Now(),
		prefs:      prefs,
		facets:     facets,
		graph:      g,
		composer:   query.NewComposer(facets, g, prefs),
		backend:    b,
		ctx:        ctx,
		cancel:     cancel,
		selections: types.Selections{},
		lastSeen:   time.Now(),
	}

	size := prefs.ResultSettings.RsConfig.Size
	if prefs.ResultSettings.RsConfig.Pagination {
		s.controller = pagination.NewController(b, size)
		s.results = s.controller
	} else {
		s.pager = pagination.NewPager(b, size)
		s.results = s.pager
	}
	debounce := time.Duration(prefs.SearchSettings.RsConfig.Debounce) * time.Millisecond
	s.debouncer = query.NewDebouncer(debounce, s.applySearch)

	if popular != nil && prefs.SearchSettings.ShowPopularSearches {
		go s.fetchPopular(popular)
	}

	s.results.SetQuery(s.ctx, s.composer.ForResults(s.selections))
	return s
}

func (s *Session) fetchPopular(popular PopularSource) {
	settings := s.prefs.AppbaseSettings
	entries := popular.Fetch(s.ctx, settings.Index, settings.Credentials, settings.Url)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.popular = entries
}

func (s *Session) Preferences() *types.Preferences {
	return s.prefs
}

func (s *Session) Graph() *graph.Graph {
	return s.graph
}

// InfiniteScroll reports whether results grow by loading more instead of by page number.
func (s *Session) InfiniteScroll() bool {
	return s.controller != nil
}

// Select replaces the selection of a facet and refreshes the result list. An empty
// selection clears the facet.
func (s *Session) Select(id types.FacetId, selection types.Selection) error {
	if id == types.SearchId {
		s.SearchNow(selection.Text)
		return nil
	}
	if _, ok := s.facets.Get(id); !ok {
		return ErrUnknownFacet
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.touch()
	if selection.IsEmpty() {
		delete(s.selections, id)
	} else {
		s.selections[id] = selection.Clone()
	}
	telemetry.AddBreadcrumb(s.ctx, "select", string(id))
	s.refresh()
	return nil
}

// ClearAll drops every facet selection and keeps the search text.
func (s *Session) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.touch()
	search, hasSearch := s.selections[types.SearchId]
	s.selections = types.Selections{}
	if hasSearch {
		s.selections[types.SearchId] = search
	}
	s.refresh()
}

// Search debounces keyword input; the query is emitted once typing paused.
func (s *Session) Search(text string) {
	s.mu.Lock()
	s.touch()
	s.mu.Unlock()
	s.debouncer.Push(text)
}

// SearchNow applies keyword input without waiting for the debounce delay.
func (s *Session) SearchNow(text string) {
	s.debouncer.Flush(text)
}

func (s *Session) applySearch(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		delete(s.selections, types.SearchId)
	} else {
		s.selections[types.SearchId] = types.Selection{Text: text}
	}
	s.suggestSeq++
	seq := s.suggestSeq
	s.suggestions = nil
	s.refresh()
	s.mu.Unlock()

	if text == "" {
		return
	}
	suggestions, err := s.fetchSuggestions(text)
	if err != nil {
		log.Printf("Failed to fetch suggestions: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq != s.suggestSeq {
		return
	}
	s.suggestions = suggestions
}

// refresh must be called with the lock held.
func (s *Session) refresh() {
	s.results.SetQuery(s.ctx, s.composer.ForResults(s.selections))
}

func (s *Session) touch() {
	s.lastSeen = time.Now()
}

// Selections returns a copy of the current selections.
func (s *Session) Selections() types.Selections {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selections.Clone()
}

// ResultQuery is the composite query currently driving the result list.
func (s *Session) ResultQuery() *query.Fragment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.composer.ForResults(s.selections)
}

// FacetQuery is the query a facet sends for its options.
func (s *Session) FacetQuery(id types.FacetId) (*query.Fragment, error) {
	if _, ok := s.facets.Get(id); !ok {
		return nil, ErrUnknownFacet
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.composer.ForFacet(id, s.selections.WithOut(id)), nil
}

// Compose returns what a facet contributes and what it queries for the current selections.
func (s *Session) Compose(id types.FacetId) (query.Composition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.composer.Compose(id, s.selections[id], s.selections)
	if err != nil {
		return c, ErrUnknownFacet
	}
	return c, nil
}

// LoadMore requests the next page in infinite scroll mode.
func (s *Session) LoadMore() (bool, error) {
	if s.controller == nil {
		return false, ErrNumberedPages
	}
	s.mu.Lock()
	s.touch()
	s.mu.Unlock()
	return s.controller.LoadMore(s.ctx), nil
}

// OnViewport feeds a viewport change to the infinite scroll controller.
func (s *Session) OnViewport(v pagination.Viewport) (bool, error) {
	if s.controller == nil {
		return false, ErrNumberedPages
	}
	s.mu.Lock()
	s.touch()
	s.mu.Unlock()
	return s.controller.OnViewport(s.ctx, v), nil
}

// GotoPage loads a zero based page in numbered mode.
func (s *Session) GotoPage(page int) (bool, error) {
	if s.pager == nil {
		return false, ErrInfiniteScroll
	}
	s.mu.Lock()
	s.touch()
	s.mu.Unlock()
	return s.pager.GotoPage(s.ctx, page), nil
}

// Popular returns the popular searches once they arrived.
func (s *Session) Popular() []types.PopularSearchEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.popular == nil {
		return []types.PopularSearchEntry{}
	}
	return s.popular
}

// Suggestions returns the suggestions for the current search text. Without search
// text there are none.
func (s *Session) Suggestions() []Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.selections.HasField(types.SearchId) || s.suggestions == nil {
		return []Suggestion{}
	}
	return s.suggestions
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Wait blocks until no page request is running.
func (s *Session) Wait() {
	s.results.Wait()
}

// Close cancels running requests. Results arriving afterwards are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.debouncer.Stop()
	s.cancel()
	s.results.Close()
}
