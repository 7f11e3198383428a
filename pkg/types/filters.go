package types

import (
	"slices"
	"strings"
)

type RangeSelection struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Selection is the user choice for one facet. Only the part matching the facet kind is read.
type Selection struct {
	Values []string        `json:"values,omitempty"`
	Range  *RangeSelection `json:"range,omitempty"`
	Text   string          `json:"text,omitempty"`
}

func (s Selection) IsEmpty() bool {
	return len(s.Values) == 0 && s.Range == nil && strings.TrimSpace(s.Text) == ""
}

func (s Selection) Equal(other Selection) bool {
	if !slices.Equal(s.Values, other.Values) || s.Text != other.Text {
		return false
	}
	if s.Range == nil || other.Range == nil {
		return s.Range == other.Range
	}
	return *s.Range == *other.Range
}

type Selections map[FacetId]Selection

// WithOut returns the selections without the given facet, so a facet is never
// constrained by its own choice.
func (s Selections) WithOut(id FacetId) Selections {
	result := make(Selections, len(s))
	for key, sel := range s {
		if key != id {
			result[key] = sel
		}
	}
	return result
}

func (s Selections) Clone() Selections {
	result := make(Selections, len(s))
	for key, sel := range s {
		result[key] = sel.Clone()
	}
	return result
}

func (s Selection) Clone() Selection {
	c := Selection{Values: slices.Clone(s.Values), Text: s.Text}
	if s.Range != nil {
		r := *s.Range
		c.Range = &r
	}
	return c
}

func (s Selections) HasField(id FacetId) bool {
	sel, ok := s[id]
	return ok && !sel.IsEmpty()
}
