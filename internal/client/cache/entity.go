// Package cache mirrors backend collections on the client.
//
// EntityCache keeps the last known collection in a replay-latest stream and
// applies every successful create, update and delete to it locally, so all
// subscribers see the change without a reload. Changes are applied only after
// the server confirms them; a failed call leaves the collection untouched and
// returns the error.
//
// Calls are not coalesced or cancelled. When two writes to the same entity
// overlap, the response that arrives last is the one left in the cache.
package cache

import (
	"context"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/garagekeeper/internal/client/observable"
	"github.com/dmitrijs2005/garagekeeper/internal/client/policy"
	"github.com/dmitrijs2005/garagekeeper/internal/logging"
)

// Entity is a record with a server-assigned id.
type Entity interface {
	EntityID() int64
}

// Endpoint is the backend surface for one resource collection. P is the
// create/update payload.
type Endpoint[T Entity, P any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, variant policy.WriteVariant, payload P) (T, error)
	Update(ctx context.Context, id int64, payload P) (T, error)
	Delete(ctx context.Context, id int64) error
}

type EntityCache[T Entity, P any] struct {
	endpoint Endpoint[T, P]
	items    *observable.Subject[[]T]
	log      logging.Logger
}

func New[T Entity, P any](name string, endpoint Endpoint[T, P], log logging.Logger) *EntityCache[T, P] {
	if log == nil {
		log = logging.Nop()
	}
	return &EntityCache[T, P]{
		endpoint: endpoint,
		items:    observable.NewSubject([]T{}),
		log:      log.With("cache", name),
	}
}

// Stream exposes the collection. Published slices are shared between
// subscribers and must be treated as read-only.
func (c *EntityCache[T, P]) Stream() observable.Stream[[]T] {
	return c.items
}

// Subscribe is Stream().Subscribe.
func (c *EntityCache[T, P]) Subscribe(fn func([]T)) *observable.Subscription {
	return c.items.Subscribe(fn)
}

// Items returns a private copy of the current collection.
func (c *EntityCache[T, P]) Items() []T {
	return slices.Clone(c.items.Value())
}

// Find returns the cached element with id, if any.
func (c *EntityCache[T, P]) Find(id int64) (T, bool) {
	for _, item := range c.items.Value() {
		if item.EntityID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Load fetches the full collection and replaces the cache with it.
func (c *EntityCache[T, P]) Load(ctx context.Context) ([]T, error) {
	items, err := c.endpoint.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	fresh := slices.Clone(items)
	if fresh == nil {
		fresh = []T{}
	}
	c.items.Publish(fresh)
	c.log.Debug(ctx, "collection replaced", "count", len(fresh))
	return slices.Clone(fresh), nil
}

// Create issues the create call selected by variant and appends the
// server-returned entity.
func (c *EntityCache[T, P]) Create(ctx context.Context, payload P, variant policy.WriteVariant) (T, error) {
	created, err := c.endpoint.Create(ctx, variant, payload)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("create: %w", err)
	}
	c.items.Update(func(cur []T) []T {
		next := make([]T, 0, len(cur)+1)
		next = append(next, cur...)
		return append(next, created)
	})
	c.log.Debug(ctx, "entity appended", "id", created.EntityID(), "variant", variant.String())
	return created, nil
}

// Update replaces the element(s) with id by the server-returned entity. An id
// that is not cached leaves the collection as it is.
func (c *EntityCache[T, P]) Update(ctx context.Context, id int64, payload P) (T, error) {
	updated, err := c.endpoint.Update(ctx, id, payload)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("update %d: %w", id, err)
	}
	c.items.Update(func(cur []T) []T {
		next := slices.Clone(cur)
		for i := range next {
			if next[i].EntityID() == id {
				next[i] = updated
			}
		}
		return next
	})
	c.log.Debug(ctx, "entity replaced", "id", id)
	return updated, nil
}

// Delete removes the element(s) with id once the server confirms.
func (c *EntityCache[T, P]) Delete(ctx context.Context, id int64) error {
	if err := c.endpoint.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %d: %w", id, err)
	}
	c.items.Update(func(cur []T) []T {
		return slices.DeleteFunc(slices.Clone(cur), func(item T) bool {
			return item.EntityID() == id
		})
	})
	c.log.Debug(ctx, "entity removed", "id", id)
	return nil
}

// Reset empties the cache without a network call, e.g. after logout.
func (c *EntityCache[T, P]) Reset() {
	c.items.Publish([]T{})
}
