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
	"errors"
	"fmt"
)

// Conditions reported by a Collection. Test with errors.Is.
var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// RecordError describes a failed Collection call.
type RecordError struct {
	// Name of the collection, e.g. "users"
	Collection string

	// Op is the Collection method that failed.
	Op string

	// Id of the record if the call addressed a single record
	ID string

	// Filters given to the call if any
	Filters []Filter

	// Err is either ErrNotFound, ErrAlreadyExists or a storage failure.
	Err error
}

// Error implements Go's error interface.
func (e *RecordError) Error() string {
	switch {
	case len(e.ID) > 0:
		return fmt.Sprintf("%s.%s(%s): %v", e.Collection, e.Op, e.ID, e.Err)
	case len(e.Filters) > 0:
		return fmt.Sprintf("%s.%s(%v): %v", e.Collection, e.Op, e.Filters, e.Err)
	}
	return fmt.Sprintf("%s.%s: %v", e.Collection, e.Op, e.Err)
}

// Unwrap returns e.Err.
func (e *RecordError) Unwrap() error {
	return e.Err
}
