package store

import (
	"context"
	"slices"
)

// Collection keeps a repository's entities in memory, assigns IDs from its
// own Sequencer and persists the full slice after every mutation.
//
// Collection is not safe for concurrent use; callers serialize access.
type Collection[T any] struct {
	repo  *Repository[T]
	seq   Sequencer
	idOf  func(*T) *int64
	items []T
}

// NewCollection builds an empty collection. idOf returns a pointer to the ID
// field of an entity.
func NewCollection[T any](repo *Repository[T], idOf func(*T) *int64) *Collection[T] {
	return &Collection[T]{repo: repo, idOf: idOf}
}

// Load replaces the in-memory items with the repository contents and reseeds
// the sequencer with the highest loaded ID. Loading an empty store keeps the
// current high-water mark.
func (c *Collection[T]) Load(ctx context.Context) int {
	c.items = c.repo.LoadAll(ctx)

	var max int64
	for i := range c.items {
		if id := *c.idOf(&c.items[i]); id > max {
			max = id
		}
	}
	if len(c.items) > 0 {
		c.seq.Reseed(max)
	}
	return len(c.items)
}

func (c *Collection[T]) Sequencer() *Sequencer {
	return &c.seq
}

// Insert assigns the next ID to item, appends it and persists. When the save
// fails in strict mode the item is dropped again.
func (c *Collection[T]) Insert(ctx context.Context, item T) (T, error) {
	*c.idOf(&item) = c.seq.Next()
	c.items = append(c.items, item)

	if err := c.repo.SaveAll(ctx, c.items); err != nil {
		c.items = c.items[:len(c.items)-1]
		var zero T
		return zero, err
	}
	return item, nil
}

func (c *Collection[T]) Find(id int64) (T, bool) {
	if i := c.index(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Remove deletes the first entity with the given ID. Nothing is persisted when
// no entity matched.
func (c *Collection[T]) Remove(ctx context.Context, id int64) (bool, error) {
	i := c.index(id)
	if i < 0 {
		return false, nil
	}

	prev := c.items
	c.items = slices.Delete(slices.Clone(c.items), i, i+1)
	if err := c.repo.SaveAll(ctx, c.items); err != nil {
		c.items = prev
		return false, err
	}
	return true, nil
}

// Replace overwrites the stored entity carrying item's ID.
func (c *Collection[T]) Replace(ctx context.Context, item T) (bool, error) {
	i := c.index(*c.idOf(&item))
	if i < 0 {
		return false, nil
	}

	prev := c.items[i]
	c.items[i] = item
	if err := c.repo.SaveAll(ctx, c.items); err != nil {
		c.items[i] = prev
		return false, err
	}
	return true, nil
}

func (c *Collection[T]) All() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection[T]) Len() int {
	return len(c.items)
}

func (c *Collection[T]) index(id int64) int {
	for i := range c.items {
		if *c.idOf(&c.items[i]) == id {
			return i
		}
	}
	return -1
}
