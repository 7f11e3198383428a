package backend

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matst80/slask-storefront/pkg/query"
	"github.com/matst80/slask-storefront/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(types.AppbaseSettings{Index: "shop", Credentials: "user:secret", Url: srv.URL + "/"}, 0)
}

func TestFetchPage(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shop/_search", r.URL.Path)
		assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("user:secret")), r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{"took": 7, "hits": {"total": {"value": 25}, "hits": [
			{"_id": "1", "_source": {"title": "Shirt"}},
			{"_id": "2", "_source": {"title": "Shoe"}}
		]}}`))
	})

	page, err := c.FetchPage(context.Background(), query.Terms("color", "red"), 10, 2)
	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 12, page.Next)
	assert.Equal(t, 7, page.Took)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Shirt", page.Items[0].LookupString("title"))

	assert.Equal(t, float64(10), body["from"])
	assert.Equal(t, float64(2), body["size"])
	assert.Equal(t, true, body["track_total_hits"])
	assert.Contains(t, body["query"], "terms")
}

func TestFetchPageMatchAllAndPlainTotal(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body["query"], "match_all")
		w.Write([]byte(`{"took": 1, "hits": {"total": 3, "hits": []}}`))
	})
	page, err := c.FetchPage(context.Background(), nil, 0, 9)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.False(t, page.HasMore())
}

func TestFetchPageFailures(t *testing.T) {
	unauthorized := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	_, err := unauthorized.FetchPage(context.Background(), nil, 0, 9)
	assert.ErrorIs(t, err, ErrTransport)

	malformed := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected": true}`))
	})
	_, err = malformed.FetchPage(context.Background(), nil, 0, 9)
	assert.ErrorIs(t, err, ErrMalformedResponse)

	garbage := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	})
	_, err = garbage.FetchPage(context.Background(), nil, 0, 9)
	assert.ErrorIs(t, err, ErrMalformedResponse)

	down := NewClient(types.AppbaseSettings{Index: "shop", Url: "http://127.0.0.1:1"}, 0)
	_, err = down.FetchPage(context.Background(), nil, 0, 9)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestFetchOptions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		aggs := body["aggs"].(map[string]any)
		if _, ok := aggs["color"]; ok {
			w.Write([]byte(`{"hits": {"total": 0, "hits": []}, "aggregations": {"color": {"buckets": [
				{"key": "Red", "doc_count": 4}, {"key": "red", "doc_count": 2}, {"key": 42, "doc_count": 1}
			]}}}`))
			return
		}
		w.Write([]byte(`{"hits": {"total": 0, "hits": []}, "aggregations": {
			"price_min": {"value": 9.5}, "price_max": {"value": 120}
		}}`))
	})

	color := &types.FacetConfig{Id: types.ColorId, Kind: types.TermList, DataField: "variants.option2.keyword", Size: 50}
	options, err := c.FetchOptions(context.Background(), color, nil)
	require.NoError(t, err)
	assert.Equal(t, []types.FacetOption{{Key: "Red", Count: 4}, {Key: "red", Count: 2}, {Key: "42", Count: 1}}, options.Values)

	price := &types.FacetConfig{Id: types.PriceId, Kind: types.Range, DataField: "variants.price"}
	options, err = c.FetchOptions(context.Background(), price, nil)
	require.NoError(t, err)
	assert.Equal(t, &RangeBounds{Min: 9.5, Max: 120}, options.Range)
}
