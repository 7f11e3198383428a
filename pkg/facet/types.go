package facet

import "github.com/matst80/slask-storefront/pkg/types"

// Facets is the ordered facet list of a storefront.
type Facets []types.FacetConfig

func (f Facets) Get(id types.FacetId) (*types.FacetConfig, bool) {
	for i := range f {
		if f[i].Id == id {
			return &f[i], true
		}
	}
	return nil, false
}

func (f Facets) Ids() []types.FacetId {
	ids := make([]types.FacetId, len(f))
	for i, facet := range f {
		ids[i] = facet.Id
	}
	return ids
}

// JsonFacet is a facet together with its current selection and normalized options.
type JsonFacet struct {
	types.FacetConfig
	DependsOn []types.FacetId       `json:"dependsOn"`
	Selected  *types.Selection      `json:"selected,omitempty"`
	Options   []types.FacetOption   `json:"options,omitempty"`
	Bounds    *types.RangeSelection `json:"bounds,omitempty"`
}
