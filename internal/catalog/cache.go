package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// listingTTL is how long a computed listing stays valid. Fixed at six hours.
const listingTTL = 21600 * time.Second

// Cache stores computed listings in Redis, scoped per user and kind.
type Cache struct {
	client *redis.Client
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func listingKey(kind Kind, user string) string {
	return "has_role:" + string(kind) + ":" + user
}

// Get returns the cached listing for the user. An absent or empty value
// counts as a miss.
func (c *Cache) Get(ctx context.Context, kind Kind, user string) (Listing, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	payload, err := c.client.Get(ctx, listingKey(kind, user)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var listing Listing
	if err := json.Unmarshal(payload, &listing); err != nil {
		return nil, false, err
	}
	if len(listing) == 0 {
		return nil, false, nil
	}
	return listing, true, nil
}

// Set stores the listing under the fixed TTL.
func (c *Cache) Set(ctx context.Context, kind Kind, user string, listing Listing) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(listing)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, listingKey(kind, user), payload, listingTTL).Err()
}
