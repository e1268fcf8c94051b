package orders

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/models"
)

// LocalIndex is an in-memory set of orders that can answer lookups before
// the network is asked, e.g. a live feed.
type LocalIndex interface {
	Lookup(number int) (models.Order, bool)
}

type indexedFinder struct {
	next    Finder
	indexes []LocalIndex
}

// WithIndexes answers from the first index holding the number and falls
// back to next otherwise.
func WithIndexes(next Finder, indexes ...LocalIndex) Finder {
	return &indexedFinder{next: next, indexes: indexes}
}

func (f *indexedFinder) OrderByNumber(ctx context.Context, number int) (models.Order, error) {
	for _, idx := range f.indexes {
		if order, ok := idx.Lookup(number); ok {
			return order, nil
		}
	}
	return f.next.OrderByNumber(ctx, number)
}

// Cache is the key/value store behind CachedFinder
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	GenerateKey(operation, key string) string
}

type cachedFinder struct {
	next  Finder
	cache Cache
	ttl   time.Duration
}

// WithCache caches finished orders. Only done orders are stored since
// their status can no longer change; cache failures fall through to next.
func WithCache(next Finder, cache Cache, ttl time.Duration) Finder {
	return &cachedFinder{next: next, cache: cache, ttl: ttl}
}

func (f *cachedFinder) OrderByNumber(ctx context.Context, number int) (models.Order, error) {
	key := f.cache.GenerateKey("order", strconv.Itoa(number))

	raw, err := f.cache.Get(ctx, key)
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("Order cache read failed")
	} else if raw != "" {
		var order models.Order
		if err := json.Unmarshal([]byte(raw), &order); err == nil {
			return order, nil
		}
		log.WithField("key", key).Warn("Discarding malformed cached order")
	}

	order, err := f.next.OrderByNumber(ctx, number)
	if err != nil {
		return order, err
	}
	if order.Status == models.OrderDone {
		payload, err := json.Marshal(order)
		if err == nil {
			err = f.cache.Set(ctx, key, string(payload), f.ttl)
		}
		if err != nil {
			log.WithError(err).WithField("key", key).Warn("Order cache write failed")
		}
	}
	return order, nil
}

// IsNotFound reports whether err is the not-found outcome rather than a
// transport failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
