package settings

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DocumentCache keeps assembled settings documents in Redis so repeated boot
// builds skip the singles table.
type DocumentCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDocumentCache instantiates the cache helper.
func NewDocumentCache(client *redis.Client, ttl time.Duration) *DocumentCache {
	return &DocumentCache{client: client, ttl: ttl}
}

func documentKey(doctype string) string {
	return "doc:" + doctype
}

// Fetch loads a cached document or populates it using the loader.
func (c *DocumentCache) Fetch(ctx context.Context, doctype string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if loader == nil {
		return errors.New("settings: loader required")
	}
	if c == nil || c.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}
	key := documentKey(doctype)
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if err != redis.Nil {
		return err
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Invalidate drops a cached document after a settings change.
func (c *DocumentCache) Invalidate(ctx context.Context, doctype string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, documentKey(doctype)).Err()
}
