package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/matst80/slask-storefront/pkg/facet"
	"github.com/matst80/slask-storefront/pkg/types"
)

// Suggestion is one search-as-you-type hit.
type Suggestion struct {
	Id       string `json:"id"`
	Label    string `json:"label"`
	Category string `json:"category,omitempty"`
	Url      string `json:"url,omitempty"`
}

// collection records are storefront collections, not products.
const collectionRecordType = "collections"

func (s *Session) fetchSuggestions(text string) ([]Suggestion, error) {
	q := s.composer.Keyword(text)
	items, err := s.backend.Suggest(s.ctx, q, DefaultSuggestionSize)
	if err != nil {
		return nil, err
	}
	fields := s.prefs.ResultSettings.Fields
	categoryPath := strings.TrimSuffix(s.prefs.SearchSettings.RsConfig.CategoryField, facet.KeywordSuffix)

	suggestions := make([]Suggestion, 0, len(items))
	for i := range items {
		item := &items[i]
		if item.LookupString("type") == collectionRecordType {
			continue
		}
		suggestion := Suggestion{
			Id:       item.Id,
			Label:    item.LookupString(fields.Title),
			Category: item.LookupString(categoryPath),
		}
		if handle := item.LookupString(fields.Handle); handle != "" {
			suggestion.Url = ProductUrl(handle)
		}
		suggestions = append(suggestions, suggestion)
	}
	return suggestions, nil
}

// Facets describes every facet with its dependencies and current selection.
func (s *Session) Facets() []facet.JsonFacet {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]facet.JsonFacet, 0, len(s.facets))
	for _, f := range s.facets {
		result = append(result, s.describe(f))
	}
	return result
}

// describe must be called with the lock held.
func (s *Session) describe(f types.FacetConfig) facet.JsonFacet {
	jf := facet.JsonFacet{
		FacetConfig: f,
		DependsOn:   s.graph.DependenciesOf(f.Id),
	}
	if sel, ok := s.selections[f.Id]; ok {
		selected := sel.Clone()
		jf.Selected = &selected
	}
	return jf
}

// FacetOptions fetches the options of a facet under the selections of the facets it
// depends on. Swatch facets get case-insensitive duplicates collapsed; the
// selection itself is never rewritten.
func (s *Session) FacetOptions(ctx context.Context, id types.FacetId) (facet.JsonFacet, error) {
	f, ok := s.facets.Get(id)
	if !ok {
		return facet.JsonFacet{}, ErrUnknownFacet
	}
	s.mu.Lock()
	s.touch()
	q := s.composer.ForFacet(id, s.selections.WithOut(id))
	jf := s.describe(*f)
	s.mu.Unlock()

	options, err := s.backend.FetchOptions(ctx, f, q)
	if err != nil {
		return jf, fmt.Errorf("fetch options of %s: %w", id, err)
	}
	jf.Options = facet.NormalizeFor(f, options.Values)
	if options.Range != nil {
		jf.Bounds = &types.RangeSelection{Min: options.Range.Min, Max: options.Range.Max}
	}
	return jf, nil
}
