package server

import (
	"net/url"
	"testing"

	"github.com/matst80/slask-storefront/pkg/types"
)

func TestParseQueryValues(t *testing.T) {
	query := url.Values{
		"q":    []string{" red shirt "},
		"page": []string{"2"},
		"str":  []string{"color:Red||Blue", "brand:Acme", "broken", "size:"},
		"rng":  []string{"price:10-50.5", "price2:nope"},
	}
	r, err := ParseQueryValues(query)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if r.Page != 2 {
		t.Errorf("Expected page to be 2, got %v", r.Page)
	}
	if got := r.Selections[types.SearchId].Text; got != "red shirt" {
		t.Errorf("Expected search text to be trimmed, got %q", got)
	}
	color := r.Selections[types.ColorId].Values
	if len(color) != 2 || color[0] != "Red" || color[1] != "Blue" {
		t.Errorf("Expected color to be [Red Blue], got %v", color)
	}
	if r.Selections["brand"].Values[0] != "Acme" {
		t.Errorf("Expected brand to be Acme, got %v", r.Selections["brand"])
	}
	price := r.Selections[types.PriceId].Range
	if price == nil || price.Min != 10 || price.Max != 50.5 {
		t.Errorf("Expected price range 10-50.5, got %v", price)
	}
	if _, ok := r.Selections["price2"]; ok {
		t.Errorf("Expected malformed range to be skipped")
	}
	if _, ok := r.Selections[types.SizeId]; ok {
		t.Errorf("Expected empty string filter to be skipped")
	}
	if len(r.Selections) != 4 {
		t.Errorf("Expected 4 selections, got %d", len(r.Selections))
	}
}

func TestParseQueryRejectsBadPage(t *testing.T) {
	if _, err := ParseQueryValues(url.Values{"page": []string{"two"}}); err == nil {
		t.Errorf("Expected error for non numeric page")
	}
}
