package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matst80/slask-storefront/pkg/pagination"
	"github.com/matst80/slask-storefront/pkg/types"
)

// Card is a result item mapped through the configured result fields.
type Card struct {
	Id          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Url         string `json:"url,omitempty"`
	Price       string `json:"price,omitempty"`
}

type Results struct {
	State   pagination.State `json:"state"`
	Cards   []Card           `json:"cards"`
	Total   int              `json:"total"`
	Took    int              `json:"took"`
	Page    int              `json:"page"`
	Pages   int              `json:"pages,omitempty"`
	Stats   string           `json:"stats,omitempty"`
	Message string           `json:"message,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// Results maps the visible result list to cards together with the display messages.
func (s *Session) Results() Results {
	snapshot := s.results.Snapshot()
	settings := s.prefs.ResultSettings

	cards := make([]Card, 0, len(snapshot.Items))
	for i := range snapshot.Items {
		cards = append(cards, s.card(&snapshot.Items[i]))
	}
	r := Results{
		State: snapshot.State,
		Cards: cards,
		Total: snapshot.Total,
		Took:  snapshot.Took,
		Page:  snapshot.Page,
		Pages: snapshot.Pages,
		Error: snapshot.Error,
	}
	if snapshot.State != pagination.Loading {
		if len(cards) == 0 {
			r.Message = settings.CustomMessages.NoResults
		} else {
			r.Stats = ResultStats(settings.CustomMessages.ResultStats, snapshot.Total, snapshot.Took)
		}
	}
	return r
}

// ResultStats fills the [count] and [time] placeholders of a stats template.
func ResultStats(template string, count, took int) string {
	return strings.NewReplacer(
		"[count]", strconv.Itoa(count),
		"[time]", strconv.Itoa(took),
	).Replace(template)
}

func (s *Session) card(item *types.Item) Card {
	fields := s.prefs.ResultSettings.Fields
	c := Card{
		Id:    item.Id,
		Title: item.LookupString(fields.Title),
		Image: item.LookupString(fields.Image),
	}
	if s.prefs.ResultSettings.ShowDescription {
		c.Description = item.LookupString(fields.Description)
	}
	if handle := item.LookupString(fields.Handle); handle != "" {
		c.Url = ProductUrl(handle)
	}
	if fields.Price != "" {
		c.Price = formatPrice(s.prefs.GlobalSettings.Currency, item.Lookup(fields.Price))
	}
	return c
}

func ProductUrl(handle string) string {
	return "/products/" + handle
}

func formatPrice(currency string, value any) string {
	var amount string
	switch v := value.(type) {
	case nil:
		return ""
	case float64:
		amount = strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		if v == "" {
			return ""
		}
		amount = v
	default:
		amount = fmt.Sprint(v)
	}
	return currency + " " + amount
}
