package storage

import (
	"context"
	"sync"
	"time"

	"github.com/matst80/slask-storefront/pkg/common/jsoncompat"
	"github.com/redis/go-redis/v9"
)

// localTTL bounds how long a value is served from memory before redis is asked again.
const localTTL = time.Minute

type localEntry struct {
	expires time.Time
	data    []byte
}

// Cache is a JSON value cache backed by redis with a short lived in-memory layer.
type Cache struct {
	client *redis.Client
	mu     sync.RWMutex
	local  map[string]localEntry
}

// Connect parses a redis url (redis://host:port/db) and applies password when set.
func Connect(url, password string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if password != "" {
		opts.Password = password
	}
	return redis.NewClient(opts), nil
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client, local: make(map[string]localEntry)}
}

func (c *Cache) Get(ctx context.Context, key string, out any) error {
	c.mu.RLock()
	entry, found := c.local[key]
	c.mu.RUnlock()
	if found {
		if time.Now().Before(entry.expires) {
			return jsoncompat.Unmarshal(entry.data, out)
		}
		c.mu.Lock()
		delete(c.local, key)
		c.mu.Unlock()
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	if err = jsoncompat.Unmarshal(data, out); err != nil {
		return err
	}
	c.remember(key, data, localTTL)
	return nil
}

func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := jsoncompat.Marshal(value)
	if err != nil {
		return err
	}
	c.remember(key, data, min(expiration, localTTL))
	return c.client.Set(ctx, key, data, expiration).Err()
}

func (c *Cache) remember(key string, data []byte, ttl time.Duration) {
	c.mu.Lock()
	c.local[key] = localEntry{expires: time.Now().Add(ttl), data: data}
	c.mu.Unlock()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
