package types

// Preferences is the resolved merchant preferences document. The json tags mirror the
// raw document paths so a resolved document can be fed back into the resolver unchanged.
type Preferences struct {
	ThemeSettings   ThemeSettings   `json:"themeSettings"`
	GlobalSettings  GlobalSettings  `json:"globalSettings"`
	AppbaseSettings AppbaseSettings `json:"appbaseSettings"`
	ResultSettings  ResultSettings  `json:"resultSettings"`
	SearchSettings  SearchSettings  `json:"searchSettings"`
	FacetSettings   FacetSettings   `json:"facetSettings"`
	ExportType      string          `json:"exportType"`
}

type ThemeSettings struct {
	Type     string         `json:"type"`
	RsConfig map[string]any `json:"rsConfig,omitempty"`
}

func (t ThemeSettings) IsMinimal() bool {
	return t.Type == ThemeMinimal
}

type GlobalSettings struct {
	Currency            string `json:"currency"`
	CustomCss           string `json:"customCss"`
	ShowSelectedFilters bool   `json:"showSelectedFilters"`
}

// AppbaseSettings points at the search backend. Credentials are "user:password" and are
// passed through as-is.
type AppbaseSettings struct {
	Index       string `json:"index"`
	Credentials string `json:"credentials"`
	Url         string `json:"url"`
}

func (a AppbaseSettings) IsComplete() bool {
	return a.Index != "" && a.Url != ""
}

type ResultFields struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Handle      string `json:"handle"`
	Price       string `json:"price"`
}

type ResultConfig struct {
	Pagination bool `json:"pagination"`
	Size       int  `json:"size"`
}

type ResultMessages struct {
	NoResults   string `json:"noResults"`
	ResultStats string `json:"resultStats"`
}

type ResultSettings struct {
	Fields          ResultFields   `json:"fields"`
	RsConfig        ResultConfig   `json:"rsConfig"`
	CustomMessages  ResultMessages `json:"customMessages"`
	ShowDescription bool           `json:"showDescription"`
}

type SearchConfig struct {
	DataField     []string `json:"dataField"`
	CategoryField string   `json:"categoryField"`
	Placeholder   string   `json:"placeholder"`
	Debounce      int      `json:"debounce"`
}

type SearchSettings struct {
	RsConfig            SearchConfig `json:"rsConfig"`
	CustomSuggestions   []string     `json:"customSuggestions"`
	ShowPopularSearches bool         `json:"showPopularSearches"`
}

type FacetConfigRaw struct {
	ComponentId string `json:"componentId"`
	DataField   string `json:"dataField"`
	Title       string `json:"title"`
	Size        int    `json:"size"`
}

type FacetMessages struct {
	Loading   string `json:"loading"`
	NoResults string `json:"noResults"`
}

// FacetSetting is one entry of facetSettings.dynamicFacets or facetSettings.staticFacets.
// A nil Affects means the facet declared no relation.
type FacetSetting struct {
	Name           string         `json:"name,omitempty"`
	RsConfig       FacetConfigRaw `json:"rsConfig"`
	CustomMessages FacetMessages  `json:"customMessages"`
	CustomQuery    map[string]any `json:"customQuery,omitempty"`
	Affects        []string       `json:"affects"`
}

type FacetSettings struct {
	DynamicFacets []FacetSetting `json:"dynamicFacets"`
	StaticFacets  []FacetSetting `json:"staticFacets"`
}

// Static returns the named static facet, if configured.
func (f FacetSettings) Static(name string) (*FacetSetting, bool) {
	for i := range f.StaticFacets {
		if f.StaticFacets[i].Name == name {
			return &f.StaticFacets[i], true
		}
	}
	return nil, false
}

const (
	ThemeClassic = "classic"
	ThemeMinimal = "minimal"

	ExportShopify = "shopify"
	ExportOther   = "other"
)

// RequiresRecordScope reports whether the export type needs results scoped to product records.
func (p *Preferences) RequiresRecordScope() bool {
	return p.ExportType == ExportShopify
}
