package hooks

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Source binds a collection to the data store calls of one table. List
// receives the parent id for sprint scoped tables and "" otherwise. Update may
// be nil for append-only tables.
type Source[T Identified, I, P any] struct {
	Noun   string
	List   func(ctx context.Context, parentID string) ([]T, error)
	Insert func(ctx context.Context, in I) (T, error)
	Update func(ctx context.Context, id string, patch P) (T, error)
	Delete func(ctx context.Context, id string) error
}

// Collection mirrors one table and writes through to the data store.
type Collection[T Identified, I, P any] struct {
	src    Source[T, I, P]
	mirror Mirror[T]
	flight singleflight.Group

	mu      sync.RWMutex
	loading int
	loaded  bool
	err     string
}

// NewCollection builds a collection over src.
func NewCollection[T Identified, I, P any](src Source[T, I, P]) *Collection[T, I, P] {
	return &Collection[T, I, P]{src: src}
}

// Mirror exposes the in-memory rows.
func (c *Collection[T, I, P]) Mirror() *Mirror[T] {
	return &c.mirror
}

// Rows returns a copy of the mirrored rows.
func (c *Collection[T, I, P]) Rows() []T {
	return c.mirror.Rows()
}

// Loading reports whether a fetch is in flight.
func (c *Collection[T, I, P]) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading > 0
}

// Loaded reports whether a fetch has succeeded at least once.
func (c *Collection[T, I, P]) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Err returns the message of the last failure, or "".
func (c *Collection[T, I, P]) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

func (c *Collection[T, I, P]) setErr(msg string) {
	c.mu.Lock()
	c.err = msg
	c.mu.Unlock()
}

func (c *Collection[T, I, P]) fail(op string, err error) error {
	oe := opError(op+" "+c.src.Noun, err)
	c.setErr(oe.Error())
	return oe
}

// Fetch loads every row and replaces the mirror. On failure the previous
// mirror is kept.
func (c *Collection[T, I, P]) Fetch(ctx context.Context) error {
	return c.FetchFor(ctx, "", nil)
}

// FetchFor loads the rows belonging to parentID. When accept is non-nil the
// result is only applied if accept still returns true once the rows arrive.
// Concurrent fetches for the same parent share one request.
func (c *Collection[T, I, P]) FetchFor(ctx context.Context, parentID string, accept func() bool) error {
	c.mu.Lock()
	c.loading++
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.loading--
		c.mu.Unlock()
	}()

	v, err := c.share(ctx, "fetch:"+parentID, func(ctx context.Context) (any, error) {
		return c.src.List(ctx, parentID)
	})
	if err != nil {
		return c.fail("fetch", err)
	}
	if accept != nil && !accept() {
		return nil
	}
	c.mirror.Replace(v.([]T))
	c.mu.Lock()
	c.loaded = true
	c.err = ""
	c.mu.Unlock()
	return nil
}

// Create inserts one row and places it at the front of the mirror.
func (c *Collection[T, I, P]) Create(ctx context.Context, in I) (T, error) {
	row, err := c.src.Insert(ctx, in)
	if err != nil {
		var zero T
		return zero, c.fail("create", err)
	}
	c.mirror.Prepend(row)
	return row, nil
}

// Update writes patch and replaces the mirrored row with the stored one.
func (c *Collection[T, I, P]) Update(ctx context.Context, id string, patch P) (T, error) {
	if c.src.Update == nil {
		var zero T
		return zero, c.fail("update", fmt.Errorf("%s cannot be edited", c.src.Noun))
	}
	return c.Apply(ctx, "update", func(ctx context.Context) (T, error) {
		return c.src.Update(ctx, id, patch)
	})
}

// Apply runs a single-row write and patches the mirror with its result.
func (c *Collection[T, I, P]) Apply(ctx context.Context, op string, write func(context.Context) (T, error)) (T, error) {
	row, err := write(ctx)
	if err != nil {
		var zero T
		return zero, c.fail(op, err)
	}
	c.mirror.Patch(row)
	return row, nil
}

// Delete removes a row remotely and then from the mirror. Concurrent deletes
// of the same id share one request.
func (c *Collection[T, I, P]) Delete(ctx context.Context, id string) error {
	if c.src.Delete == nil {
		return c.fail("delete", fmt.Errorf("%s cannot be deleted", c.src.Noun))
	}
	_, err := c.share(ctx, "delete:"+id, func(ctx context.Context) (any, error) {
		if err := c.src.Delete(ctx, id); err != nil {
			return nil, err
		}
		c.mirror.Remove(id)
		return nil, nil
	})
	if err != nil {
		return c.fail("delete", err)
	}
	return nil
}

// share runs fn once for every concurrent caller using key. The shared call
// is detached from any single caller's cancellation; each caller stops
// waiting when its own ctx is done.
func (c *Collection[T, I, P]) share(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(key, func() (any, error) {
		return fn(detached)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}
