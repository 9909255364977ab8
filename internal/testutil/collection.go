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

package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/botobag/socialgraph/store"
)

// Call records a read made through a CountingCollection.
type Call struct {
	// Op is "FindOne" or "FindMany".
	Op string

	// Filters given to the call
	Filters []store.Filter
}

// CountingCollection wraps a store.Collection and records every read made through it.
type CountingCollection[T store.Record[T]] struct {
	store.Collection[T]

	mutex sync.Mutex
	calls []Call
}

// NewCountingCollection wraps c.
func NewCountingCollection[T store.Record[T]](c store.Collection[T]) *CountingCollection[T] {
	return &CountingCollection[T]{
		Collection: c,
	}
}

func (c *CountingCollection[T]) record(op string, filters []store.Filter) {
	c.mutex.Lock()
	c.calls = append(c.calls, Call{
		Op:      op,
		Filters: filters,
	})
	c.mutex.Unlock()
}

// FindOne implements store.Collection.
func (c *CountingCollection[T]) FindOne(ctx context.Context, filter store.Filter) (T, error) {
	c.record("FindOne", []store.Filter{filter})
	return c.Collection.FindOne(ctx, filter)
}

// FindMany implements store.Collection.
func (c *CountingCollection[T]) FindMany(ctx context.Context, filters ...store.Filter) ([]T, error) {
	c.record("FindMany", filters)
	return c.Collection.FindMany(ctx, filters...)
}

// Calls returns the recorded reads in order.
func (c *CountingCollection[T]) Calls() []Call {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	calls := make([]Call, len(c.calls))
	copy(calls, c.calls)
	return calls
}

// NumReads returns the number of recorded reads.
func (c *CountingCollection[T]) NumReads() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.calls)
}

// Reset forgets the recorded reads.
func (c *CountingCollection[T]) Reset() {
	c.mutex.Lock()
	c.calls = nil
	c.mutex.Unlock()
}

// ErrInjected is the cause of failures reported by a FaultyCollection.
var ErrInjected = errors.New("injected failure")

// FailFunc decides whether a call to a FaultyCollection fails. id is empty for FindMany and for
// FindOne.
type FailFunc func(op string, id string) bool

// FailNth returns a FailFunc that fails only the n-th (1-based) call of the given op.
func FailNth(op string, n int) FailFunc {
	var (
		mutex sync.Mutex
		count int
	)
	return func(calledOp string, id string) bool {
		if calledOp != op {
			return false
		}
		mutex.Lock()
		defer mutex.Unlock()
		count++
		return count == n
	}
}

// FailOnID returns a FailFunc that fails every call of the given op addressing the record id.
func FailOnID(op string, id string) FailFunc {
	return func(calledOp string, calledID string) bool {
		return calledOp == op && calledID == id
	}
}

// FaultyCollection wraps a store.Collection and fails the calls selected by its FailFunc with a
// *store.RecordError caused by ErrInjected. A failed call has no effect.
type FaultyCollection[T store.Record[T]] struct {
	store.Collection[T]

	mutex sync.Mutex
	fail  FailFunc
}

// NewFaultyCollection wraps c. No call fails until FailWhen is called.
func NewFaultyCollection[T store.Record[T]](c store.Collection[T]) *FaultyCollection[T] {
	return &FaultyCollection[T]{
		Collection: c,
	}
}

// FailWhen sets the FailFunc. Passing nil stops injecting failures.
func (c *FaultyCollection[T]) FailWhen(fail FailFunc) {
	c.mutex.Lock()
	c.fail = fail
	c.mutex.Unlock()
}

func (c *FaultyCollection[T]) check(op string, id string) error {
	c.mutex.Lock()
	fail := c.fail
	c.mutex.Unlock()

	if fail == nil || !fail(op, id) {
		return nil
	}
	return &store.RecordError{
		Collection: c.Name(),
		Op:         op,
		ID:         id,
		Err:        ErrInjected,
	}
}

// FindOne implements store.Collection.
func (c *FaultyCollection[T]) FindOne(ctx context.Context, filter store.Filter) (T, error) {
	if err := c.check("FindOne", ""); err != nil {
		var zero T
		return zero, err
	}
	return c.Collection.FindOne(ctx, filter)
}

// FindMany implements store.Collection.
func (c *FaultyCollection[T]) FindMany(ctx context.Context, filters ...store.Filter) ([]T, error) {
	if err := c.check("FindMany", ""); err != nil {
		return nil, err
	}
	return c.Collection.FindMany(ctx, filters...)
}

// Create implements store.Collection.
func (c *FaultyCollection[T]) Create(ctx context.Context, record T) (T, error) {
	if err := c.check("Create", record.GetID()); err != nil {
		var zero T
		return zero, err
	}
	return c.Collection.Create(ctx, record)
}

// Change implements store.Collection.
func (c *FaultyCollection[T]) Change(ctx context.Context, id string, patch store.Patch[T]) (T, error) {
	if err := c.check("Change", id); err != nil {
		var zero T
		return zero, err
	}
	return c.Collection.Change(ctx, id, patch)
}

// Delete implements store.Collection.
func (c *FaultyCollection[T]) Delete(ctx context.Context, id string) (T, error) {
	if err := c.check("Delete", id); err != nil {
		var zero T
		return zero, err
	}
	return c.Collection.Delete(ctx, id)
}
