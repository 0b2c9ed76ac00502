// Package cache keeps resolved reference ids in redis so repeated list
// requests filtering by the same customer skip the users lookup.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/Warky-Devs/backoffice/pkg/common"
	"github.com/Warky-Devs/backoffice/pkg/logger"
)

const keyPrefix = "backoffice:ref"

// RefCache decorates a ReferenceLookup. Only found ids are cached, so a
// newly created user is visible to the next request.
type RefCache struct {
	client     redis.Cmdable
	next       common.ReferenceLookup
	collection string
	ttl        time.Duration
}

// NewRefCache wraps next. A nil client or a non-positive ttl disables caching.
func NewRefCache(client redis.Cmdable, collection string, ttl time.Duration, next common.ReferenceLookup) *RefCache {
	return &RefCache{client: client, next: next, collection: collection, ttl: ttl}
}

func (c *RefCache) enabled() bool {
	return c.client != nil && c.ttl > 0
}

// Key is the redis key a predicate's resolved id is stored under
func (c *RefCache) Key(p common.Predicate) string {
	value := p.Pattern
	if p.Kind == common.KindExact {
		value = fmt.Sprint(p.Value)
	}
	if p.Kind == common.KindSubstring && p.CaseInsensitive {
		value = strings.ToLower(value)
	}
	return strings.Join([]string{keyPrefix, c.collection, p.Field, p.Kind.String(), value}, ":")
}

func (c *RefCache) ResolveID(ctx context.Context, predicate common.Predicate) (string, bool, error) {
	if !c.enabled() {
		return c.next.ResolveID(ctx, predicate)
	}

	key := c.Key(predicate)
	id, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		return id, true, nil
	case errors.Is(err, redis.Nil):
	case ctx.Err() != nil:
		return "", false, ctx.Err()
	default:
		logger.Warn("ref cache get %s: %v", key, err)
	}

	id, found, err := c.next.ResolveID(ctx, predicate)
	if err != nil || !found {
		return id, found, err
	}
	if err := c.client.Set(ctx, key, id, c.ttl).Err(); err != nil {
		logger.Warn("ref cache set %s: %v", key, err)
	}
	return id, true, nil
}
