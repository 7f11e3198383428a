// Package backend talks to the Elasticsearch compatible search service behind a
// storefront. The service itself is opaque; this package only sends composed queries
// and reads hits, totals, timings and aggregations.
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matst80/slask-storefront/pkg/common"
	"github.com/matst80/slask-storefront/pkg/common/jsoncompat"
	"github.com/matst80/slask-storefront/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ErrTransport         = errors.New("search backend request failed")
	ErrMalformedResponse = errors.New("malformed search backend response")
)

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "storefront_backend_request_seconds",
	Help:    "Duration of search backend requests",
	Buckets: prometheus.DefBuckets,
}, []string{"operation", "status"})

type Client struct {
	BaseUrl     string
	Index       string
	Credentials string
	HttpClient  *http.Client
}

func NewClient(settings types.AppbaseSettings, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseUrl:     strings.TrimSuffix(settings.Url, "/"),
		Index:       settings.Index,
		Credentials: settings.Credentials,
		HttpClient:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) searchUrl() string {
	return fmt.Sprintf("%s/%s/_search", c.BaseUrl, c.Index)
}

// search posts a request body and decodes the response. Transport errors, error
// statuses and undecodable bodies are all reported as errors.
func (c *Client) search(ctx context.Context, operation string, body map[string]any) (*searchResponse, error) {
	start := time.Now()
	status := "error"
	defer func() {
		requestDuration.WithLabelValues(operation, status).Observe(time.Since(start).Seconds())
	}()

	data, err := jsoncompat.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.searchUrl(), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	common.SetBasicAuth(req, c.Credentials)

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: status %d", ErrTransport, resp.StatusCode)
	}

	var result searchResponse
	if err := jsoncompat.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if result.Hits == nil {
		return nil, fmt.Errorf("%w: missing hits", ErrMalformedResponse)
	}
	status = "ok"
	return &result, nil
}
