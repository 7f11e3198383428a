package session

import (
	"context"

	"github.com/matst80/slask-storefront/pkg/backend"
	"github.com/matst80/slask-storefront/pkg/pagination"
	"github.com/matst80/slask-storefront/pkg/query"
	"github.com/matst80/slask-storefront/pkg/types"
)

// Backend is the search service a session talks to. backend.Client implements it.
type Backend interface {
	pagination.Fetcher
	FetchOptions(ctx context.Context, f *types.FacetConfig, q *query.Fragment) (*backend.Options, error)
	Suggest(ctx context.Context, q *query.Fragment, size int) ([]types.Item, error)
}

// PopularSource returns ranked popular searches and never fails.
// analytics.PopularSearchFetcher implements it.
type PopularSource interface {
	Fetch(ctx context.Context, indexId, credentials, baseUrl string) []types.PopularSearchEntry
}

// resultList is either the infinite scroll controller or the numbered pager.
type resultList interface {
	query.ResultList
	Snapshot() pagination.Snapshot
	Wait()
	Close()
}

var (
	_ Backend    = (*backend.Client)(nil)
	_ resultList = (*pagination.Controller)(nil)
	_ resultList = (*pagination.Pager)(nil)
)
