package server

import (
	"encoding/json"
	"net/http"

	"github.com/matst80/slask-storefront/pkg/facet"
	"github.com/matst80/slask-storefront/pkg/graph"
	"github.com/matst80/slask-storefront/pkg/query"
	"github.com/matst80/slask-storefront/pkg/types"
)

type FacetsResponse struct {
	Facets      []facet.JsonFacet      `json:"facets"`
	Edges       []types.DependencyEdge `json:"edges"`
	Result      []types.FacetId        `json:"result"`
	DefaultOpen []types.FacetId        `json:"defaultOpen"`
}

type QueryResponse struct {
	Result *query.Fragment                     `json:"result"`
	Facets map[types.FacetId]query.Composition `json:"facets"`
}

func (ws *WebServer) GetPreferences(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	prefs, _ := ws.Storefront.Current()
	return enc.Encode(prefs)
}

func (ws *WebServer) GetFacets(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	prefs, _ := ws.Storefront.Current()
	facets := facet.BuildFacets(prefs)
	g := graph.BuildEdges(facets, prefs)

	described := make([]facet.JsonFacet, 0, len(facets))
	for _, f := range facets {
		described = append(described, facet.JsonFacet{FacetConfig: f, DependsOn: g.DependenciesOf(f.Id)})
	}
	return enc.Encode(FacetsResponse{
		Facets:      described,
		Edges:       g.Edges(),
		Result:      g.ResultDependencies(),
		DefaultOpen: g.DefaultOpen(),
	})
}

func composerFor(prefs *types.Preferences) (*query.Composer, facet.Facets) {
	facets := facet.BuildFacets(prefs)
	return query.NewComposer(facets, graph.BuildEdges(facets, prefs), prefs), facets
}

// GetQuery composes the result query and every facet query for the selections in
// the query string without fetching anything.
func (ws *WebServer) GetQuery(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	req, err := GetQueryFromRequest(r)
	if err != nil {
		return badRequest(err)
	}
	prefs, _ := ws.Storefront.Current()
	composer, facets := composerFor(prefs)

	compositions := make(map[types.FacetId]query.Composition, len(facets))
	for _, id := range facets.Ids() {
		c, err := composer.Compose(id, req.Selections[id], req.Selections)
		if err != nil {
			return err
		}
		compositions[id] = c
	}
	return enc.Encode(QueryResponse{
		Result: composer.ForResults(req.Selections),
		Facets: compositions,
	})
}

// GetResults fetches one page for the selections in the query string.
func (ws *WebServer) GetResults(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	req, err := GetQueryFromRequest(r)
	if err != nil {
		return badRequest(err)
	}
	prefs, b := ws.Storefront.Current()
	composer, _ := composerFor(prefs)

	size := prefs.ResultSettings.RsConfig.Size
	page, err := b.FetchPage(r.Context(), composer.ForResults(req.Selections), req.Page*size, size)
	if err != nil {
		return captureBackendError(r, err)
	}
	return enc.Encode(page)
}

func (ws *WebServer) GetPopular(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	prefs, _ := ws.Storefront.Current()
	if ws.Popular == nil || !prefs.SearchSettings.ShowPopularSearches {
		return enc.Encode([]types.PopularSearchEntry{})
	}
	settings := prefs.AppbaseSettings
	return enc.Encode(ws.Popular.Fetch(r.Context(), settings.Index, settings.Credentials, settings.Url))
}
