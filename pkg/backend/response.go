package backend

import (
	"fmt"
	"strconv"

	"github.com/matst80/slask-storefront/pkg/common/jsoncompat"
	"github.com/matst80/slask-storefront/pkg/types"
)

type searchResponse struct {
	Took         int                    `json:"took"`
	Hits         *hits                  `json:"hits"`
	Aggregations map[string]aggregation `json:"aggregations"`
}

type hits struct {
	Total total        `json:"total"`
	Hits  []types.Item `json:"hits"`
}

// total accepts both `"total": 12` and `"total": {"value": 12}`.
type total int

func (t *total) UnmarshalJSON(data []byte) error {
	var n int
	if err := jsoncompat.Unmarshal(data, &n); err == nil {
		*t = total(n)
		return nil
	}
	var wrapped struct {
		Value int `json:"value"`
	}
	if err := jsoncompat.Unmarshal(data, &wrapped); err != nil {
		return fmt.Errorf("unexpected total: %s", string(data))
	}
	*t = total(wrapped.Value)
	return nil
}

type aggregation struct {
	Buckets []bucket `json:"buckets"`
	Value   *float64 `json:"value"`
}

type bucket struct {
	Key      any `json:"key"`
	DocCount int `json:"doc_count"`
}

func (b bucket) keyString() string {
	switch k := b.Key.(type) {
	case string:
		return k
	case float64:
		return strconv.FormatFloat(k, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(k)
	}
	return fmt.Sprint(b.Key)
}
