package query

import (
	"context"

	"github.com/matst80/slask-storefront/pkg/types"
)

// FacetComponent produces the fragments of a facet from its selection and the
// selections of the facets it depends on.
type FacetComponent interface {
	Compose(id types.FacetId, selection types.Selection, dependencySelections types.Selections) (Composition, error)
}

// ResultList consumes the composite query of the result list.
type ResultList interface {
	SetQuery(ctx context.Context, q *Fragment)
}

var _ FacetComponent = (*Composer)(nil)
