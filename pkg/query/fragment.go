// Package query composes backend query fragments from facet selections.
//
// Fragments inside one term-list facet are ORed (a terms match), fragments of
// different facets are ANDed. A nil fragment means "no constraint".
package query

import (
	"reflect"
	"strings"

	"github.com/matst80/slask-storefront/pkg/common/jsoncompat"
)

type Kind string

const (
	TermKind  Kind = "term"
	TermsKind Kind = "terms"
	RangeKind Kind = "range"
	MatchKind Kind = "match"
	BoolKind  Kind = "bool"
	RawKind   Kind = "raw"
)

type Fragment struct {
	Kind   Kind
	Field  string
	Fields []string
	Values []string
	Min    *float64
	Max    *float64
	Text   string
	Must   []*Fragment
	Raw    map[string]any
}

func Term(field, value string) *Fragment {
	return &Fragment{Kind: TermKind, Field: field, Values: []string{value}}
}

// Terms matches documents whose field equals any of the values.
func Terms(field string, values ...string) *Fragment {
	if len(values) == 0 {
		return nil
	}
	return &Fragment{Kind: TermsKind, Field: field, Values: values}
}

// Between is an inclusive range. Reversed bounds are swapped.
func Between(field string, min, max float64) *Fragment {
	if min > max {
		min, max = max, min
	}
	return &Fragment{Kind: RangeKind, Field: field, Min: &min, Max: &max}
}

// Match is a keyword match over the given fields. Blank text is no constraint.
func Match(fields []string, text string) *Fragment {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return &Fragment{Kind: MatchKind, Fields: fields, Text: text}
}

func Raw(q map[string]any) *Fragment {
	if len(q) == 0 {
		return nil
	}
	return &Fragment{Kind: RawKind, Raw: q}
}

// And combines fragments with logical AND. Nil fragments are skipped and nested
// conjunctions are flattened; no fragments left yields nil.
func And(fragments ...*Fragment) *Fragment {
	must := make([]*Fragment, 0, len(fragments))
	for _, f := range fragments {
		if f == nil {
			continue
		}
		if f.Kind == BoolKind {
			must = append(must, f.Must...)
			continue
		}
		must = append(must, f)
	}
	switch len(must) {
	case 0:
		return nil
	case 1:
		return must[0]
	}
	return &Fragment{Kind: BoolKind, Must: must}
}

func (f *Fragment) Equal(other *Fragment) bool {
	return reflect.DeepEqual(f, other)
}

// Source renders the fragment in the backend query DSL. A nil fragment matches all.
func (f *Fragment) Source() map[string]any {
	if f == nil {
		return map[string]any{"match_all": map[string]any{}}
	}
	switch f.Kind {
	case TermKind:
		return map[string]any{"term": map[string]any{f.Field: f.Values[0]}}
	case TermsKind:
		return map[string]any{"terms": map[string]any{f.Field: f.Values}}
	case RangeKind:
		bounds := map[string]any{}
		if f.Min != nil {
			bounds["gte"] = *f.Min
		}
		if f.Max != nil {
			bounds["lte"] = *f.Max
		}
		return map[string]any{"range": map[string]any{f.Field: bounds}}
	case MatchKind:
		return map[string]any{"multi_match": map[string]any{
			"query":    f.Text,
			"fields":   f.Fields,
			"type":     "cross_fields",
			"operator": "and",
		}}
	case BoolKind:
		must := make([]map[string]any, len(f.Must))
		for i, m := range f.Must {
			must[i] = m.Source()
		}
		return map[string]any{"bool": map[string]any{"must": must}}
	case RawKind:
		return f.Raw
	}
	return map[string]any{}
}

func (f *Fragment) MarshalJSON() ([]byte, error) {
	return jsoncompat.Marshal(f.Source())
}

func (f *Fragment) String() string {
	data, err := f.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(data)
}
