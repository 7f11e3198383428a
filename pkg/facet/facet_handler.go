package facet

import (
	"strings"

	"github.com/matst80/slask-storefront/pkg/types"
)

// KeywordSuffix marks the exact-match sub field of a text field.
const KeywordSuffix = ".keyword"

// NormalizeField makes a data field exact-match by appending KeywordSuffix when it is
// not already the trailing segment. Nested path segments are left untouched.
func NormalizeField(field string) string {
	if strings.HasSuffix(field, KeywordSuffix) {
		return field
	}
	return field + KeywordSuffix
}

// Static facets follow the dynamic ones in this fixed order.
var staticOrder = []types.FacetId{
	types.CollectionId,
	types.ColorId,
	types.SizeId,
	types.PriceId,
}

var reservedIds = map[types.FacetId]struct{}{
	types.SearchId:      {},
	types.ResultId:      {},
	types.ProductFilter: {},
}

// BuildFacets returns the ordered facet list: dynamic facets in declared order, then the
// configured static facets. The search box is not a list facet and never appears here.
// Later facets reusing an id that is already taken are skipped.
func BuildFacets(prefs *types.Preferences) Facets {
	showControls := !prefs.ThemeSettings.IsMinimal()
	result := make(Facets, 0, len(prefs.FacetSettings.DynamicFacets)+len(staticOrder))
	seen := make(map[types.FacetId]struct{})

	add := func(f types.FacetConfig) {
		if _, reserved := reservedIds[f.Id]; reserved {
			return
		}
		if _, dup := seen[f.Id]; dup {
			return
		}
		seen[f.Id] = struct{}{}
		f.ShowCheckbox = showControls
		f.ShowCount = showControls
		result = append(result, f)
	}

	for _, setting := range prefs.FacetSettings.DynamicFacets {
		add(fromSetting(setting, types.TermList))
	}

	for _, id := range staticOrder {
		setting, ok := prefs.FacetSettings.Static(string(id))
		if !ok {
			continue
		}
		kind := types.TermList
		if id == types.PriceId {
			kind = types.Range
		}
		f := fromSetting(*setting, kind)
		f.Static = true
		f.Swatch = id == types.ColorId
		add(f)
	}
	return result
}

func fromSetting(setting types.FacetSetting, kind types.FacetKind) types.FacetConfig {
	field := setting.RsConfig.DataField
	if kind == types.TermList {
		field = NormalizeField(field)
	}
	var affects []types.FacetId
	if setting.Affects != nil {
		affects = make([]types.FacetId, 0, len(setting.Affects))
		for _, a := range setting.Affects {
			affects = append(affects, types.FacetId(a))
		}
	}
	return types.FacetConfig{
		Id:          types.FacetId(setting.RsConfig.ComponentId),
		Title:       setting.RsConfig.Title,
		DataField:   field,
		Kind:        kind,
		Size:        setting.RsConfig.Size,
		Messages:    setting.CustomMessages,
		CustomQuery: setting.CustomQuery,
		Affects:     affects,
	}
}
