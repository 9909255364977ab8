/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package store

import (
	"context"
	"sync"

	"github.com/botobag/socialgraph/model"

	"github.com/google/uuid"
)

// MemoryCollection is a Collection kept in process memory. It is safe for concurrent use.
type MemoryCollection[T Record[T]] struct {
	name string

	// mutex guards records and order.
	mutex   sync.RWMutex
	records map[string]T
	order   []string
}

var _ Collection[*model.User] = (*MemoryCollection[*model.User])(nil)

// NewMemoryCollection creates an empty MemoryCollection.
func NewMemoryCollection[T Record[T]](name string) *MemoryCollection[T] {
	return &MemoryCollection[T]{
		name:    name,
		records: map[string]T{},
	}
}

// Name implements Collection.
func (c *MemoryCollection[T]) Name() string {
	return c.name
}

func (c *MemoryCollection[T]) fail(op string, id string, filters []Filter, err error) error {
	return &RecordError{
		Collection: c.name,
		Op:         op,
		ID:         id,
		Filters:    filters,
		Err:        err,
	}
}

// FindOne implements Collection.
func (c *MemoryCollection[T]) FindOne(ctx context.Context, filter Filter) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, c.fail("FindOne", "", []Filter{filter}, err)
	}

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	for _, id := range c.order {
		record := c.records[id]
		if filter.Match(record) {
			return record.Clone(), nil
		}
	}

	return zero, c.fail("FindOne", "", []Filter{filter}, ErrNotFound)
}

// FindMany implements Collection.
func (c *MemoryCollection[T]) FindMany(ctx context.Context, filters ...Filter) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, c.fail("FindMany", "", filters, err)
	}

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	result := []T{}
	for _, id := range c.order {
		record := c.records[id]
		if matchAll(record, filters) {
			result = append(result, record.Clone())
		}
	}
	return result, nil
}

// Create implements Collection.
func (c *MemoryCollection[T]) Create(ctx context.Context, record T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, c.fail("Create", record.GetID(), nil, err)
	}

	stored := record.Clone()
	if len(stored.GetID()) == 0 {
		stored.SetID(uuid.NewString())
	}
	id := stored.GetID()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.records[id]; exists {
		return zero, c.fail("Create", id, nil, ErrAlreadyExists)
	}
	c.records[id] = stored
	c.order = append(c.order, id)

	return stored.Clone(), nil
}

// Change implements Collection.
func (c *MemoryCollection[T]) Change(ctx context.Context, id string, patch Patch[T]) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, c.fail("Change", id, nil, err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	current, exists := c.records[id]
	if !exists {
		return zero, c.fail("Change", id, nil, ErrNotFound)
	}

	updated := current.Clone()
	patch.Apply(updated)
	// The id is immutable.
	updated.SetID(id)
	c.records[id] = updated

	return updated.Clone(), nil
}

// Delete implements Collection.
func (c *MemoryCollection[T]) Delete(ctx context.Context, id string) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, c.fail("Delete", id, nil, err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	record, exists := c.records[id]
	if !exists {
		return zero, c.fail("Delete", id, nil, ErrNotFound)
	}
	delete(c.records, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}

	return record, nil
}

// Len returns the number of stored records.
func (c *MemoryCollection[T]) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.order)
}
