package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/schema"
	"github.com/matst80/slask-storefront/pkg/types"
)

// QueryRequest is the query string form of a set of selections:
//
//	?q=shirt&str=color:Red||Blue&rng=price:10-50&page=1
type QueryRequest struct {
	Query      string           `schema:"q"`
	Page       int              `schema:"page"`
	Selections types.Selections `schema:"-"`
}

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

func GetQueryFromRequest(r *http.Request) (*QueryRequest, error) {
	return ParseQueryValues(r.URL.Query())
}

// ParseQueryValues decodes the search, page and selection parameters of a query string.
func ParseQueryValues(query url.Values) (*QueryRequest, error) {
	result := &QueryRequest{Selections: types.Selections{}}
	if err := decoder.Decode(result, query); err != nil {
		return nil, err
	}
	if result.Page < 0 {
		result.Page = 0
	}
	decodeSelectionsFromRequest(query, result.Selections)
	if text := strings.TrimSpace(result.Query); text != "" {
		result.Selections[types.SearchId] = types.Selection{Text: text}
	}
	return result, nil
}

// decodeSelectionsFromRequest reads str (id:value||value) and rng (id:min-max)
// parameters. Malformed entries are skipped.
func decodeSelectionsFromRequest(query url.Values, result types.Selections) {
	for _, v := range query["str"] {
		id, value, found := strings.Cut(v, ":")
		if !found || id == "" || value == "" {
			continue
		}
		sel := result[types.FacetId(id)]
		for part := range strings.SplitSeq(value, "||") {
			if part != "" {
				sel.Values = append(sel.Values, part)
			}
		}
		if len(sel.Values) > 0 {
			result[types.FacetId(id)] = sel
		}
	}

	for _, v := range query["rng"] {
		id, bounds, found := strings.Cut(v, ":")
		if !found || id == "" {
			continue
		}
		var min, max float64
		if _, err := fmt.Sscanf(bounds, "%f-%f", &min, &max); err != nil {
			continue
		}
		result[types.FacetId(id)] = types.Selection{Range: &types.RangeSelection{Min: min, Max: max}}
	}
}
