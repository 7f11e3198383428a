package query

import (
	"errors"

	"github.com/matst80/slask-storefront/pkg/facet"
	"github.com/matst80/slask-storefront/pkg/graph"
	"github.com/matst80/slask-storefront/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ErrUnknownFacet = errors.New("unknown facet")

var composedQueries = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "storefront_composed_queries_total",
	Help: "The total number of composed facet and result queries",
}, []string{"target"})

// Record type used to scope results to products for platform exports.
const (
	RecordTypeField = "type"
	RecordTypeValue = "products"
)

// Composition is the outcome for one facet: Own is what the facet contributes to the
// queries depending on it, Query is what the facet itself sends.
type Composition struct {
	Id    types.FacetId `json:"id"`
	Own   *Fragment     `json:"own"`
	Query *Fragment     `json:"query"`
}

type Composer struct {
	facets       facet.Facets
	graph        *graph.Graph
	searchFields []string
	recordScope  bool
}

func NewComposer(facets facet.Facets, g *graph.Graph, prefs *types.Preferences) *Composer {
	return &Composer{
		facets:       facets,
		graph:        g,
		searchFields: prefs.SearchSettings.RsConfig.DataField,
		recordScope:  prefs.RequiresRecordScope(),
	}
}

// Own returns the fragment a facet contributes for its selection, nil when the
// selection does not constrain anything.
func (c *Composer) Own(f *types.FacetConfig, selection types.Selection) *Fragment {
	switch f.Kind {
	case types.Search:
		return Match(c.searchFields, selection.Text)
	case types.Range:
		if selection.Range == nil {
			return nil
		}
		if f.HasCustomQuery() {
			return Raw(f.CustomQuery)
		}
		return Between(f.DataField, selection.Range.Min, selection.Range.Max)
	default:
		if len(selection.Values) == 0 {
			return nil
		}
		if f.HasCustomQuery() {
			return Raw(f.CustomQuery)
		}
		return Terms(f.DataField, selection.Values...)
	}
}

// Keyword is the contribution of the search box.
func (c *Composer) Keyword(text string) *Fragment {
	return Match(c.searchFields, text)
}

// RecordScope is the constant product record filter, nil when the export does not need it.
func (c *Composer) RecordScope() *Fragment {
	if !c.recordScope {
		return nil
	}
	return Term(RecordTypeField, RecordTypeValue)
}

// Compose computes a facet's own fragment from its selection and its query from the
// selections of its dependencies. A selection for the facet itself among the
// dependency selections is ignored.
func (c *Composer) Compose(id types.FacetId, selection types.Selection, dependencySelections types.Selections) (Composition, error) {
	if id == types.SearchId {
		return Composition{Id: id, Own: c.Keyword(selection.Text)}, nil
	}
	f, ok := c.facets.Get(id)
	if !ok {
		return Composition{}, ErrUnknownFacet
	}
	return Composition{
		Id:    id,
		Own:   c.Own(f, selection),
		Query: c.ForFacet(id, dependencySelections.WithOut(id)),
	}, nil
}

// ForFacet is the option query of a facet: the keyword AND every dependency's selection.
func (c *Composer) ForFacet(id types.FacetId, selections types.Selections) *Fragment {
	composedQueries.WithLabelValues("facet").Inc()
	parts := []*Fragment{c.Keyword(selections[types.SearchId].Text)}
	for _, dep := range c.graph.DependenciesOf(id) {
		parts = append(parts, c.dependency(dep, selections))
	}
	return And(parts...)
}

// ForResults is the composite query of the result list.
func (c *Composer) ForResults(selections types.Selections) *Fragment {
	composedQueries.WithLabelValues("result").Inc()
	parts := []*Fragment{c.Keyword(selections[types.SearchId].Text)}
	for _, dep := range c.graph.ResultDependencies() {
		parts = append(parts, c.dependency(dep, selections))
	}
	return And(parts...)
}

func (c *Composer) dependency(id types.FacetId, selections types.Selections) *Fragment {
	if id == types.ProductFilter {
		return c.RecordScope()
	}
	f, ok := c.facets.Get(id)
	if !ok {
		return nil
	}
	return c.Own(f, selections[id])
}
