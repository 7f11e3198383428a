// Package preferences turns a merchant preferences document into typed settings.
//
// Every recognized path falls back to a documented default when it is missing or has
// the wrong type. Resolution only fails when the document is not a mapping at the top
// level. A resolved document marshalled back to JSON resolves to the same value.
package preferences

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matst80/slask-storefront/pkg/common/jsoncompat"
	"github.com/matst80/slask-storefront/pkg/types"
)

var (
	ErrNotMapping     = errors.New("preferences document is not a mapping")
	ErrMissingBackend = errors.New("preferences lack backend settings")
)

// Resolve decodes a JSON document and resolves it.
func Resolve(data []byte) (*types.Preferences, error) {
	var raw any
	if err := jsoncompat.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode preferences: %w", err)
	}
	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, ErrNotMapping
	}
	return ResolveDocument(doc), nil
}

// ResolveDocument resolves an already decoded document.
func ResolveDocument(doc map[string]any) *types.Preferences {
	return &types.Preferences{
		ThemeSettings: types.ThemeSettings{
			Type:     getString(doc, "themeSettings.type", types.ThemeClassic),
			RsConfig: getMap(doc, "themeSettings.rsConfig"),
		},
		GlobalSettings: types.GlobalSettings{
			Currency:            getString(doc, "globalSettings.currency", DefaultCurrency),
			CustomCss:           getString(doc, "globalSettings.customCss", ""),
			ShowSelectedFilters: getBool(doc, "globalSettings.showSelectedFilters", false),
		},
		AppbaseSettings: types.AppbaseSettings{
			Index:       getString(doc, "appbaseSettings.index", ""),
			Credentials: getString(doc, "appbaseSettings.credentials", ""),
			Url:         strings.TrimSuffix(getString(doc, "appbaseSettings.url", ""), "/"),
		},
		ResultSettings: resolveResults(doc),
		SearchSettings: resolveSearch(doc),
		FacetSettings: types.FacetSettings{
			DynamicFacets: resolveDynamicFacets(getList(doc, "facetSettings.dynamicFacets")),
			StaticFacets:  resolveStaticFacets(getList(doc, "facetSettings.staticFacets")),
		},
		ExportType: getString(doc, "exportType", types.ExportOther),
	}
}

// Validate checks the settings needed to reach the backend.
func Validate(p *types.Preferences) error {
	if !p.AppbaseSettings.IsComplete() {
		return ErrMissingBackend
	}
	return nil
}

func resolveResults(doc map[string]any) types.ResultSettings {
	return types.ResultSettings{
		Fields: types.ResultFields{
			Title:       getString(doc, "resultSettings.fields.title", defaultResultFields.Title),
			Description: getString(doc, "resultSettings.fields.description", defaultResultFields.Description),
			Image:       getString(doc, "resultSettings.fields.image", defaultResultFields.Image),
			Handle:      getString(doc, "resultSettings.fields.handle", defaultResultFields.Handle),
			Price:       getString(doc, "resultSettings.fields.price", defaultResultFields.Price),
		},
		RsConfig: types.ResultConfig{
			Pagination: getBool(doc, "resultSettings.rsConfig.pagination", true),
			Size:       getPositiveInt(doc, "resultSettings.rsConfig.size", DefaultPageSize),
		},
		CustomMessages: types.ResultMessages{
			NoResults:   getString(doc, "resultSettings.customMessages.noResults", DefaultNoResults),
			ResultStats: getString(doc, "resultSettings.customMessages.resultStats", DefaultResultStats),
		},
		ShowDescription: getBool(doc, "resultSettings.showDescription", false),
	}
}

func resolveSearch(doc map[string]any) types.SearchSettings {
	fields := getStringList(doc, "searchSettings.rsConfig.dataField")
	if len(fields) == 0 {
		fields = []string{DefaultSearchField}
	}
	return types.SearchSettings{
		RsConfig: types.SearchConfig{
			DataField:     fields,
			CategoryField: getString(doc, "searchSettings.rsConfig.categoryField", DefaultCategoryField),
			Placeholder:   getString(doc, "searchSettings.rsConfig.placeholder", DefaultPlaceholder),
			Debounce:      getPositiveInt(doc, "searchSettings.rsConfig.debounce", DefaultDebounce),
		},
		CustomSuggestions:   getStringList(doc, "searchSettings.customSuggestions"),
		ShowPopularSearches: getBool(doc, "searchSettings.showPopularSearches", false),
	}
}

func resolveDynamicFacets(entries []any) []types.FacetSetting {
	result := make([]types.FacetSetting, 0, len(entries))
	for _, entry := range entries {
		raw, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		id := getString(raw, "rsConfig.componentId", "")
		field := getString(raw, "rsConfig.dataField", "")
		if id == "" || field == "" {
			continue
		}
		result = append(result, types.FacetSetting{
			Name: getString(raw, "name", ""),
			RsConfig: types.FacetConfigRaw{
				ComponentId: id,
				DataField:   field,
				Title:       getString(raw, "rsConfig.title", id),
				Size:        getPositiveInt(raw, "rsConfig.size", DefaultFacetSize),
			},
			CustomMessages: types.FacetMessages{
				Loading:   getString(raw, "customMessages.loading", DefaultOptionsLoading),
				NoResults: getString(raw, "customMessages.noResults", DefaultOptionsNotFound),
			},
			CustomQuery: getMap(raw, "customQuery"),
			Affects:     getStringList(raw, "affects"),
		})
	}
	return result
}

func resolveStaticFacets(entries []any) []types.FacetSetting {
	result := make([]types.FacetSetting, 0, len(entries))
	for _, entry := range entries {
		raw, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		name := getString(raw, "name", "")
		if name == "" {
			continue
		}
		defaults, known := staticFacetDefaults[name]
		if !known {
			defaults = staticDefaults{
				dataField: name,
				messages:  types.FacetMessages{Loading: DefaultOptionsLoading, NoResults: DefaultOptionsNotFound},
			}
		}
		result = append(result, types.FacetSetting{
			Name: name,
			RsConfig: types.FacetConfigRaw{
				ComponentId: getString(raw, "rsConfig.componentId", name),
				DataField:   getString(raw, "rsConfig.dataField", defaults.dataField),
				Title:       getString(raw, "rsConfig.title", titleCase(name)),
				Size:        getPositiveInt(raw, "rsConfig.size", DefaultFacetSize),
			},
			CustomMessages: types.FacetMessages{
				Loading:   getString(raw, "customMessages.loading", defaults.messages.Loading),
				NoResults: getString(raw, "customMessages.noResults", defaults.messages.NoResults),
			},
			CustomQuery: getMap(raw, "customQuery"),
			Affects:     getStringList(raw, "affects"),
		})
	}
	return result
}

func titleCase(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
