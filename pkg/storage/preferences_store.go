package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/matst80/slask-storefront/pkg/common/jsoncompat"
	"github.com/matst80/slask-storefront/pkg/preferences"
	"github.com/matst80/slask-storefront/pkg/types"
	"github.com/redis/go-redis/v9"
)

const preferencesKeyPrefix = "storefront:preferences:"

var ErrNoPreferences = errors.New("no preferences stored")

// PreferencesStore keeps the raw preferences document of each storefront in redis.
type PreferencesStore struct {
	client *redis.Client
}

func NewPreferencesStore(client *redis.Client) *PreferencesStore {
	return &PreferencesStore{client: client}
}

func preferencesKey(storefront string) string {
	return preferencesKeyPrefix + storefront
}

// Load resolves the stored document so callers always see a complete record.
func (s *PreferencesStore) Load(ctx context.Context, storefront string) (*types.Preferences, error) {
	data, err := s.client.Get(ctx, preferencesKey(storefront)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoPreferences
	}
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	return preferences.Resolve(data)
}

func (s *PreferencesStore) Save(ctx context.Context, storefront string, p *types.Preferences) error {
	data, err := jsoncompat.Marshal(p)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, preferencesKey(storefront), data, 0).Err()
}
