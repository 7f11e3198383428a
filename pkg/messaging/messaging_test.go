package messaging

import (
	"testing"

	"github.com/matst80/slask-storefront/pkg/common/jsoncompat"
	"github.com/matst80/slask-storefront/pkg/preferences"
	"github.com/matst80/slask-storefront/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetName(t *testing.T) {
	assert.Equal(t, "shop_preferences_changed", getName("shop", PreferencesChanged))
}

func TestDecodePreferences(t *testing.T) {
	body, err := jsoncompat.Marshal(PreferencesChange{
		Storefront: "shop",
		Document:   []byte(`{"globalSettings": {"currency": "kr"}}`),
	})
	require.NoError(t, err)

	name, p, err := DecodePreferences(body)
	require.NoError(t, err)
	assert.Equal(t, "shop", name)
	assert.Equal(t, "kr", p.GlobalSettings.Currency)
}

func TestDecodePreferencesRejectsBadDocuments(t *testing.T) {
	_, _, err := DecodePreferences([]byte(`{`))
	assert.Error(t, err)

	_, _, err = DecodePreferences([]byte(`{"storefront": "shop", "document": [1, 2]}`))
	assert.Error(t, err)
}

const validDocument = `{"appbaseSettings": {"index": "shop", "credentials": "user:pass", "url": "https://search.example.com"}}`

func TestPreferencesHandlerAppliesValidDocument(t *testing.T) {
	var applied []*types.Preferences
	handle := preferencesHandler("shop", func(p *types.Preferences) { applied = append(applied, p) })

	require.NoError(t, handle([]byte(`{"storefront": "shop", "document": `+validDocument+`}`)))
	require.Len(t, applied, 1)
	assert.Equal(t, "shop", applied[0].AppbaseSettings.Index)

	require.NoError(t, handle([]byte(`{"storefront": "other", "document": `+validDocument+`}`)))
	assert.Len(t, applied, 1, "changes for other storefronts are ignored")
}

func TestPreferencesHandlerRejectsDocumentWithoutBackend(t *testing.T) {
	applied := false
	handle := preferencesHandler("default", func(*types.Preferences) { applied = true })

	err := handle([]byte(`{"storefront": "default", "document": {"themeSettings": {"type": "minimal"}}}`))
	assert.ErrorIs(t, err, preferences.ErrMissingBackend)
	assert.False(t, applied)

	assert.Error(t, handle([]byte(`{"storefront": "default", "document": [1]}`)))
	assert.False(t, applied)
}
