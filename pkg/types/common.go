package types

type FacetId string

type FacetKind string

const (
	TermList FacetKind = "term"
	Range    FacetKind = "range"
	Search   FacetKind = "search"
)

const (
	SearchId      FacetId = "search"
	ResultId      FacetId = "result"
	ProductFilter FacetId = "filter_by_product"

	CollectionId FacetId = "collection"
	ColorId      FacetId = "color"
	SizeId       FacetId = "size"
	PriceId      FacetId = "price"
)

// FacetConfig is a facet definition derived from the preferences document.
type FacetConfig struct {
	Id           FacetId        `json:"id"`
	Title        string         `json:"title,omitempty"`
	DataField    string         `json:"dataField"`
	Kind         FacetKind      `json:"kind"`
	Static       bool           `json:"static,omitempty"`
	Size         int            `json:"size,omitempty"`
	Messages     FacetMessages  `json:"messages"`
	CustomQuery  map[string]any `json:"customQuery,omitempty"`
	Affects      []FacetId      `json:"affects,omitempty"`
	Swatch       bool           `json:"swatch,omitempty"`
	ShowCheckbox bool           `json:"showCheckbox"`
	ShowCount    bool           `json:"showCount"`
}

// DeclaresAffects reports whether the preferences named the facets this one affects.
func (f *FacetConfig) DeclaresAffects() bool {
	return f.Affects != nil
}

func (f *FacetConfig) HasCustomQuery() bool {
	return len(f.CustomQuery) > 0
}

// DependencyEdge means the query of From must include the current selection of On.
type DependencyEdge struct {
	From FacetId `json:"from"`
	On   FacetId `json:"on"`
}

type FacetOption struct {
	Key   string `json:"key"`
	Count int    `json:"doc_count"`
}

type PopularSearchEntry struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}
