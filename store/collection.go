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
)

// Fielder exposes record fields by key for filtering.
type Fielder interface {
	Field(key string) (interface{}, bool)
}

// Record is implemented by the pointer types of the model entities (e.g., *model.User).
type Record[T any] interface {
	Fielder

	GetID() string
	SetID(id string)

	// Clone makes a deep copy.
	Clone() T
}

// Patch changes fields of a record in place. It is applied to a private copy of the stored record.
type Patch[T any] interface {
	Apply(record T)
}

// Collection is the access interface to the records of one entity kind.
type Collection[T Record[T]] interface {
	// Name of the collection (e.g., "users") used in error messages
	Name() string

	// FindOne returns the first record matching the filter. It fails with ErrNotFound if there is
	// no such record.
	FindOne(ctx context.Context, filter Filter) (T, error)

	// FindMany returns the records matching every given filter in insertion order. Passing no
	// filters returns all records.
	FindMany(ctx context.Context, filters ...Filter) ([]T, error)

	// Create stores a copy of record. A fresh id is assigned if record doesn't have one. It fails
	// with ErrAlreadyExists if the id is taken.
	Create(ctx context.Context, record T) (T, error)

	// Change applies patch to the record with the given id and returns the updated record. It fails
	// with ErrNotFound if there is no such record.
	Change(ctx context.Context, id string, patch Patch[T]) (T, error)

	// Delete removes the record with the given id and returns it. It fails with ErrNotFound if there
	// is no such record.
	Delete(ctx context.Context, id string) (T, error)
}
