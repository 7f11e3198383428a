package backend

import (
	"context"
	"fmt"

	"github.com/matst80/slask-storefront/pkg/query"
	"github.com/matst80/slask-storefront/pkg/types"
)

// FetchPage implements the pagination fetcher port.
func (c *Client) FetchPage(ctx context.Context, q *query.Fragment, from, size int) (*types.ResultPage, error) {
	resp, err := c.search(ctx, "page", map[string]any{
		"query":            q.Source(),
		"from":             from,
		"size":             size,
		"track_total_hits": true,
	})
	if err != nil {
		return nil, err
	}
	return &types.ResultPage{
		Items: resp.Hits.Hits,
		Total: int(resp.Hits.Total),
		Next:  from + len(resp.Hits.Hits),
		Took:  resp.Took,
	}, nil
}

// Suggest returns the top hits for a keyword query.
func (c *Client) Suggest(ctx context.Context, q *query.Fragment, size int) ([]types.Item, error) {
	resp, err := c.search(ctx, "suggest", map[string]any{
		"query": q.Source(),
		"size":  size,
	})
	if err != nil {
		return nil, err
	}
	return resp.Hits.Hits, nil
}

type RangeBounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Options is the option list of a term facet or the bounds of a range facet.
type Options struct {
	Values []types.FacetOption `json:"values,omitempty"`
	Range  *RangeBounds        `json:"range,omitempty"`
}

// FetchOptions aggregates the values of a facet under the facet's query.
func (c *Client) FetchOptions(ctx context.Context, f *types.FacetConfig, q *query.Fragment) (*Options, error) {
	aggs := map[string]any{}
	minKey, maxKey := string(f.Id)+"_min", string(f.Id)+"_max"
	if f.Kind == types.Range {
		aggs[minKey] = map[string]any{"min": map[string]any{"field": f.DataField}}
		aggs[maxKey] = map[string]any{"max": map[string]any{"field": f.DataField}}
	} else {
		aggs[string(f.Id)] = map[string]any{"terms": map[string]any{
			"field": f.DataField,
			"size":  f.Size,
			"order": map[string]any{"_count": "desc"},
		}}
	}
	resp, err := c.search(ctx, "options", map[string]any{
		"query": q.Source(),
		"size":  0,
		"aggs":  aggs,
	})
	if err != nil {
		return nil, err
	}

	if f.Kind == types.Range {
		low, okLow := resp.Aggregations[minKey]
		high, okHigh := resp.Aggregations[maxKey]
		if !okLow || !okHigh {
			return nil, fmt.Errorf("%w: missing range aggregation", ErrMalformedResponse)
		}
		if low.Value == nil || high.Value == nil {
			return &Options{}, nil
		}
		return &Options{Range: &RangeBounds{Min: *low.Value, Max: *high.Value}}, nil
	}

	agg, ok := resp.Aggregations[string(f.Id)]
	if !ok {
		return nil, fmt.Errorf("%w: missing aggregation %s", ErrMalformedResponse, f.Id)
	}
	values := make([]types.FacetOption, 0, len(agg.Buckets))
	for _, b := range agg.Buckets {
		values = append(values, types.FacetOption{Key: b.keyString(), Count: b.DocCount})
	}
	return &Options{Values: values}, nil
}
