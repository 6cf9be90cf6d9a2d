package syncstore

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/nurpe/maintenance-tracker/internal/model"
	"github.com/nurpe/maintenance-tracker/internal/remote"
)

// Collection is the cached view of one entity kind. The cache only changes
// after the remote store has confirmed the operation.
type Collection[T any, D any] struct {
	remote  remote.Store
	codec   codec[T]
	build   func(D) (T, error)
	tracker *Tracker
	log     zerolog.Logger

	mu    sync.RWMutex
	items []T
}

func newCollection[T any, D any](rs remote.Store, c codec[T], build func(D) (T, error), tracker *Tracker, log zerolog.Logger) *Collection[T, D] {
	return &Collection[T, D]{
		remote:  rs,
		codec:   c,
		build:   build,
		tracker: tracker,
		log:     log.With().Str("collection", c.collection).Logger(),
	}
}

func (c *Collection[T, D]) Name() string {
	return c.codec.collection
}

// List returns a snapshot in load order followed by creation order.
func (c *Collection[T, D]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

func (c *Collection[T, D]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Collection[T, D]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Load replaces the cache with the remote collection. On failure the cache is
// left as it was.
func (c *Collection[T, D]) Load(ctx context.Context) error {
	rows, err := c.remote.Select(context.WithoutCancel(ctx), c.codec.collection)
	if err != nil {
		return wrapRemote(OpSelect, c.codec.collection, err)
	}
	items := make([]T, 0, len(rows))
	for _, row := range rows {
		item, err := c.codec.decode(row)
		if err != nil {
			return err
		}
		items = append(items, item)
	}
	c.replace(items)
	c.log.Debug().Int("count", len(items)).Msg("collection loaded")
	return nil
}

func (c *Collection[T, D]) Create(ctx context.Context, draft D) (T, error) {
	var zero T
	entity, err := c.build(draft)
	if err != nil {
		return zero, err
	}

	mutation := c.tracker.begin(c.codec.collection, OpCreate, "")
	saved, err := c.insert(ctx, entity)
	if err != nil {
		c.tracker.fail(mutation, "", err)
		c.log.Error().Err(err).Msg("create failed")
		return zero, err
	}
	c.add(saved)

	id := *c.codec.id(&saved)
	c.tracker.confirm(mutation, id)
	c.log.Info().Str("id", id).Msg("created")
	return saved, nil
}

// Update replaces the record wholesale with what the remote store returns.
func (c *Collection[T, D]) Update(ctx context.Context, id string, draft D) (T, error) {
	var zero T
	if id == "" {
		return zero, &model.ValidationError{Fields: map[string]string{"id": "is required"}}
	}
	entity, err := c.build(draft)
	if err != nil {
		return zero, err
	}

	mutation := c.tracker.begin(c.codec.collection, OpUpdate, id)
	row, err := c.remote.Update(context.WithoutCancel(ctx), c.codec.collection, id, c.codec.encode(entity))
	if err != nil {
		rerr := wrapRemote(OpUpdate, c.codec.collection, err)
		c.tracker.fail(mutation, id, rerr)
		c.log.Error().Err(rerr).Str("id", id).Msg("update failed")
		return zero, rerr
	}
	saved, err := c.codec.decode(row)
	if err != nil {
		c.tracker.fail(mutation, id, err)
		return zero, err
	}
	if _, ok := c.update(id, func(item *T) { *item = saved }); !ok {
		c.log.Warn().Str("id", id).Msg("deleted while update was in flight, cache left unchanged")
	}

	c.tracker.confirm(mutation, id)
	c.log.Info().Str("id", id).Msg("updated")
	return saved, nil
}

func (c *Collection[T, D]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return &model.ValidationError{Fields: map[string]string{"id": "is required"}}
	}

	mutation := c.tracker.begin(c.codec.collection, OpDelete, id)
	if err := c.remote.Delete(context.WithoutCancel(ctx), c.codec.collection, id); err != nil {
		rerr := wrapRemote(OpDelete, c.codec.collection, err)
		c.tracker.fail(mutation, id, rerr)
		c.log.Error().Err(rerr).Str("id", id).Msg("delete failed")
		return rerr
	}
	c.remove(id)

	c.tracker.confirm(mutation, id)
	c.log.Info().Str("id", id).Msg("deleted")
	return nil
}

// insert performs the remote write without touching the cache.
func (c *Collection[T, D]) insert(ctx context.Context, entity T) (T, error) {
	var zero T
	row, err := c.remote.Insert(context.WithoutCancel(ctx), c.codec.collection, c.codec.encode(entity))
	if err != nil {
		return zero, wrapRemote(OpCreate, c.codec.collection, err)
	}
	return c.codec.decode(row)
}

func (c *Collection[T, D]) add(entity T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, entity)
}

// update changes the cached entry in place. An entry that is no longer cached
// was deleted, so it is not brought back.
func (c *Collection[T, D]) update(id string, fn func(*T)) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		var zero T
		return zero, false
	}
	fn(&c.items[i])
	return c.items[i], true
}

func (c *Collection[T, D]) remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		c.items = slices.Delete(c.items, i, i+1)
	}
}

func (c *Collection[T, D]) replace(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
}

// indexOf expects the caller to hold mu.
func (c *Collection[T, D]) indexOf(id string) int {
	for i := range c.items {
		if *c.codec.id(&c.items[i]) == id {
			return i
		}
	}
	return -1
}
