package facet

import (
	"reflect"
	"strings"
	"testing"

	"github.com/matst80/slask-storefront/pkg/types"
)

func keys(options []types.FacetOption) []string {
	result := make([]string, len(options))
	for i, o := range options {
		result[i] = o.Key
	}
	return result
}

func TestNormalizeColors(t *testing.T) {
	options := []types.FacetOption{
		{Key: "Red", Count: 3},
		{Key: "red", Count: 7},
		{Key: "BLUE", Count: 1},
	}
	got := Normalize(options)
	if !reflect.DeepEqual(keys(got), []string{"Red", "BLUE"}) {
		t.Errorf("Expected [Red BLUE] but got %v", keys(got))
	}
	if got[0].Count != 3 {
		t.Errorf("Expected representative count to be kept (3) but got %d", got[0].Count)
	}
	if options[1].Key != "red" {
		t.Errorf("Expected input to be untouched")
	}
}

func TestNormalizeHasNoCaseDuplicates(t *testing.T) {
	options := []types.FacetOption{
		{Key: "navy"}, {Key: "Green"}, {Key: "NAVY"}, {Key: "green"}, {Key: "Navy"}, {Key: "white"},
	}
	got := Normalize(options)
	seen := map[string]bool{}
	for _, o := range got {
		k := strings.ToLower(o.Key)
		if seen[k] {
			t.Errorf("Duplicate key %s in %v", o.Key, keys(got))
		}
		seen[k] = true
	}
	if !reflect.DeepEqual(keys(got), []string{"navy", "Green", "white"}) {
		t.Errorf("Expected first casing in first order but got %v", keys(got))
	}
}

func TestNormalizeForSkipsNonSwatch(t *testing.T) {
	options := []types.FacetOption{{Key: "M"}, {Key: "m"}}
	size := &types.FacetConfig{Id: types.SizeId}
	if got := NormalizeFor(size, options); len(got) != 2 {
		t.Errorf("Expected size options to be untouched but got %v", keys(got))
	}
	color := &types.FacetConfig{Id: types.ColorId, Swatch: true}
	if got := NormalizeFor(color, options); len(got) != 1 {
		t.Errorf("Expected color options to collapse but got %v", keys(got))
	}
}
