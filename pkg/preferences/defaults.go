package preferences

import "github.com/matst80/slask-storefront/pkg/types"

const (
	DefaultCurrency        = "$"
	DefaultPageSize        = 9
	DefaultFacetSize       = 50
	DefaultDebounce        = 100
	DefaultSearchField     = "title"
	DefaultCategoryField   = "product_type.keyword"
	DefaultPlaceholder     = "Search for products..."
	DefaultNoResults       = "No Results Found!"
	DefaultResultStats     = "[count] products found in [time] ms"
	DefaultOptionsLoading  = "Loading options"
	DefaultOptionsNotFound = "No items Found"
)

var defaultResultFields = types.ResultFields{
	Title:       "title",
	Description: "body_html",
	Image:       "image.src",
	Handle:      "handle",
}

type staticDefaults struct {
	dataField string
	messages  types.FacetMessages
}

// Data fields and messages used when a static facet leaves them out.
var staticFacetDefaults = map[string]staticDefaults{
	string(types.CollectionId): {
		dataField: "collections",
		messages:  types.FacetMessages{Loading: "Loading collections", NoResults: "No items Found"},
	},
	string(types.ColorId): {
		dataField: "variants.option2",
		messages:  types.FacetMessages{Loading: "Loading colors", NoResults: "Fetching Colors"},
	},
	string(types.SizeId): {
		dataField: "variants.option1",
		messages:  types.FacetMessages{Loading: "Loading sizes", NoResults: "No sizes Found"},
	},
	string(types.PriceId): {
		dataField: "variants.price",
		messages:  types.FacetMessages{Loading: "", NoResults: "No items Found"},
	},
}
