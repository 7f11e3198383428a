// Package graph computes which facet selections constrain which queries.
package graph

import (
	"slices"

	"github.com/matst80/slask-storefront/pkg/facet"
	"github.com/matst80/slask-storefront/pkg/types"
)

// Graph is the read-only dependency edge map of a session. It is built once and is
// safe for concurrent reads.
type Graph struct {
	order  []types.FacetId
	edges  map[types.FacetId][]types.FacetId
	result []types.FacetId
}

// BuildEdges computes, for every facet F, the other facets whose selection must be
// ANDed into F's query. A facet G constrains F when G declares no affects relation
// (full mesh default) or when its relation names F. A facet never depends on itself.
// The result list depends on every facet, plus the product record filter when the
// export type requires scoping. Dependency order follows facet declaration order.
func BuildEdges(facets facet.Facets, prefs *types.Preferences) *Graph {
	g := &Graph{
		order:  facets.Ids(),
		edges:  make(map[types.FacetId][]types.FacetId, len(facets)),
		result: make([]types.FacetId, 0, len(facets)+1),
	}
	for _, f := range facets {
		deps := make([]types.FacetId, 0, len(facets))
		for _, other := range facets {
			if other.Id == f.Id {
				continue
			}
			if affects(&other, f.Id) {
				deps = append(deps, other.Id)
			}
		}
		g.edges[f.Id] = deps
		g.result = append(g.result, f.Id)
	}
	if prefs != nil && prefs.RequiresRecordScope() {
		g.result = append(g.result, types.ProductFilter)
	}
	return g
}

func affects(source *types.FacetConfig, target types.FacetId) bool {
	if !source.DeclaresAffects() {
		return true
	}
	return slices.Contains(source.Affects, target)
}

// DependenciesOf returns the facets constraining the given facet's query.
func (g *Graph) DependenciesOf(id types.FacetId) []types.FacetId {
	if id == types.ResultId {
		return g.ResultDependencies()
	}
	return slices.Clone(g.edges[id])
}

func (g *Graph) ResultDependencies() []types.FacetId {
	return slices.Clone(g.result)
}

// DependsOn reports whether the query of from includes the selection of on.
func (g *Graph) DependsOn(from, on types.FacetId) bool {
	if from == types.ResultId {
		return slices.Contains(g.result, on)
	}
	return slices.Contains(g.edges[from], on)
}

// Affected lists the facets whose query changes when the selection of id changes, in
// declaration order. The result list is not included.
func (g *Graph) Affected(id types.FacetId) []types.FacetId {
	result := make([]types.FacetId, 0)
	for _, from := range g.order {
		if slices.Contains(g.edges[from], id) {
			result = append(result, from)
		}
	}
	return result
}

// Edges lists every edge, facets first in declaration order, then the result list.
func (g *Graph) Edges() []types.DependencyEdge {
	result := make([]types.DependencyEdge, 0)
	for _, from := range g.order {
		for _, on := range g.edges[from] {
			result = append(result, types.DependencyEdge{From: from, On: on})
		}
	}
	for _, on := range g.result {
		result = append(result, types.DependencyEdge{From: types.ResultId, On: on})
	}
	return result
}

// DefaultOpen is the order in which collapsible facet panels start open.
func (g *Graph) DefaultOpen() []types.FacetId {
	return slices.Clone(g.order)
}

func (g *Graph) Len() int {
	return len(g.edges)
}
