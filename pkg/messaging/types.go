package messaging

import "encoding/json"

type ChangeTopic string

const (
	PreferencesChanged ChangeTopic = "preferences_changed"
)

// PreferencesChange carries a complete raw preferences document. Receivers resolve
// it themselves so defaults stay local to the consumer.
type PreferencesChange struct {
	Storefront string          `json:"storefront"`
	Document   json.RawMessage `json:"document"`
}
