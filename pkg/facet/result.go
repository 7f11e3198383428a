package facet

import (
	"strings"

	"github.com/matst80/slask-storefront/pkg/types"
)

// Normalize collapses options whose keys are equal ignoring case. The first occurrence
// keeps its casing, position and metadata; counts of collapsed duplicates are dropped.
func Normalize(options []types.FacetOption) []types.FacetOption {
	seen := make(map[string]struct{}, len(options))
	result := make([]types.FacetOption, 0, len(options))
	for _, option := range options {
		key := strings.ToLower(option.Key)
		if _, found := seen[key]; found {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, option)
	}
	return result
}

// NormalizeFor only normalizes swatch facets; other option lists are returned as-is.
func NormalizeFor(f *types.FacetConfig, options []types.FacetOption) []types.FacetOption {
	if f == nil || !f.Swatch {
		return options
	}
	return Normalize(options)
}
