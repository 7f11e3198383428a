package types

// Item is one search hit as returned by the backend.
type Item struct {
	Id     string         `json:"_id"`
	Source map[string]any `json:"_source"`
}

// ResultPage is one page of hits. Next is the offset of the following page.
type ResultPage struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
	Next  int    `json:"next"`
	Took  int    `json:"took"`
}

func (p *ResultPage) HasMore() bool {
	return len(p.Items) > 0 && p.Next < p.Total
}

// Lookup resolves a dotted path ("image.src") in the item source. Arrays are
// traversed by their first element.
func (i *Item) Lookup(path string) any {
	if path == "" {
		return nil
	}
	return LookupPath(i.Source, path)
}

func (i *Item) LookupString(path string) string {
	v, ok := i.Lookup(path).(string)
	if !ok {
		return ""
	}
	return v
}
