package analytics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/matst80/slask-storefront/pkg/common"
	"github.com/matst80/slask-storefront/pkg/common/jsoncompat"
	"github.com/matst80/slask-storefront/pkg/telemetry"
	"github.com/matst80/slask-storefront/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MaxPopularSearches is the number of entries kept after ranking.
const MaxPopularSearches = 5

var (
	ErrRequestFailed     = errors.New("popular searches request failed")
	ErrMalformedResponse = errors.New("malformed popular searches response")
)

var (
	popularFetches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_popular_search_fetches_total",
		Help: "The total number of popular search fetches",
	})
	popularFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_popular_search_failures_total",
		Help: "The total number of popular search fetches that degraded to an empty list",
	})
)

// Cache stores ranked entries between fetches. storage.Cache satisfies it.
type Cache interface {
	Get(ctx context.Context, key string, out any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

type PopularSearchFetcher struct {
	HttpClient *http.Client
	Reporter   telemetry.Reporter
	Cache      Cache
	CacheTTL   time.Duration
}

func NewPopularSearchFetcher(reporter telemetry.Reporter) *PopularSearchFetcher {
	if reporter == nil {
		reporter = telemetry.LogReporter{}
	}
	return &PopularSearchFetcher{
		HttpClient: &http.Client{Timeout: 10 * time.Second},
		Reporter:   reporter,
	}
}

type popularResponse struct {
	PopularSearches []types.PopularSearchEntry `json:"popularSearches"`
}

type popularError struct {
	PopularSearches struct {
		Message string `json:"message"`
	} `json:"popularSearches"`
}

// Fetch returns up to MaxPopularSearches entries, highest count first. Failures are
// reported and degrade to an empty list; they are never returned.
func (f *PopularSearchFetcher) Fetch(ctx context.Context, indexId, credentials, baseUrl string) []types.PopularSearchEntry {
	popularFetches.Inc()
	key := cacheKey(baseUrl, indexId)
	if f.Cache != nil {
		var cached []types.PopularSearchEntry
		if err := f.Cache.Get(ctx, key, &cached); err == nil {
			return cached
		}
	}

	entries, err := f.request(ctx, indexId, credentials, baseUrl)
	if err != nil {
		popularFailures.Inc()
		f.report(ctx, err)
		return []types.PopularSearchEntry{}
	}
	ranked := Rank(entries)

	if f.Cache != nil && f.CacheTTL > 0 {
		if err = f.Cache.Set(ctx, key, ranked, f.CacheTTL); err != nil {
			log.Printf("Failed to cache popular searches: %v", err)
		}
	}
	return ranked
}

func (f *PopularSearchFetcher) report(ctx context.Context, err error) {
	if f.Reporter == nil {
		telemetry.LogReporter{}.Report(ctx, "popular searches", err)
		return
	}
	f.Reporter.Report(ctx, "popular searches", err)
}

func (f *PopularSearchFetcher) request(ctx context.Context, indexId, credentials, baseUrl string) ([]types.PopularSearchEntry, error) {
	endpoint := fmt.Sprintf("%s/_analytics/%s/popular-searches", strings.TrimSuffix(baseUrl, "/"), url.PathEscape(indexId))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	common.SetBasicAuth(req, credentials)

	client := f.HttpClient
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	if res.StatusCode >= 400 {
		var diagnostic popularError
		if jsoncompat.Unmarshal(body, &diagnostic) == nil && diagnostic.PopularSearches.Message != "" {
			return nil, fmt.Errorf("%w: status %d: %s", ErrRequestFailed, res.StatusCode, diagnostic.PopularSearches.Message)
		}
		return nil, fmt.Errorf("%w: status %d", ErrRequestFailed, res.StatusCode)
	}

	var parsed popularResponse
	if err = jsoncompat.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return parsed.PopularSearches, nil
}

// Rank orders entries by count, highest first, keeping the incoming order for equal
// counts, and keeps at most MaxPopularSearches.
func Rank(entries []types.PopularSearchEntry) []types.PopularSearchEntry {
	ranked := slices.Clone(entries)
	slices.SortStableFunc(ranked, func(a, b types.PopularSearchEntry) int {
		return b.Count - a.Count
	})
	if len(ranked) > MaxPopularSearches {
		ranked = ranked[:MaxPopularSearches]
	}
	if ranked == nil {
		return []types.PopularSearchEntry{}
	}
	return ranked
}

func cacheKey(baseUrl, indexId string) string {
	return "storefront:popular:" + strings.TrimSuffix(baseUrl, "/") + ":" + indexId
}
