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
	"fmt"

	"github.com/botobag/socialgraph/model"
)

type filterOp uint8

const (
	opEquals filterOp = iota + 1
	opEqualsAnyOf
	opInArray
)

// Filter selects records by the value of one of their fields. Construct one with Equals,
// EqualsAnyOf or InArray.
type Filter struct {
	Key string

	op     filterOp
	value  interface{}
	values []string
}

// Equals matches records whose field equals value. A list field matches a []string value with the
// same elements in the same order.
func Equals(key string, value interface{}) Filter {
	if id, ok := value.(model.MemberTypeID); ok {
		value = string(id)
	}
	return Filter{
		Key:   key,
		op:    opEquals,
		value: value,
	}
}

// EqualsAnyOf matches records whose (string) field is one of values.
func EqualsAnyOf(key string, values ...string) Filter {
	return Filter{
		Key:    key,
		op:     opEqualsAnyOf,
		values: values,
	}
}

// InArray matches records whose list field contains value.
func InArray(key string, value string) Filter {
	return Filter{
		Key:   key,
		op:    opInArray,
		value: value,
	}
}

// Match returns true if the record satisfies the filter. Unknown keys never match.
func (f Filter) Match(record Fielder) bool {
	field, ok := record.Field(f.Key)
	if !ok {
		return false
	}

	switch f.op {
	case opEquals:
		if list, ok := field.([]string); ok {
			want, ok := f.value.([]string)
			if !ok || len(want) != len(list) {
				return false
			}
			for i := range list {
				if list[i] != want[i] {
					return false
				}
			}
			return true
		}
		return field == f.value

	case opEqualsAnyOf:
		s, ok := field.(string)
		if !ok {
			return false
		}
		for _, v := range f.values {
			if v == s {
				return true
			}
		}

	case opInArray:
		list, ok := field.([]string)
		if !ok {
			return false
		}
		for _, v := range list {
			if v == f.value {
				return true
			}
		}
	}

	return false
}

// String implements fmt.Stringer.
func (f Filter) String() string {
	switch f.op {
	case opEquals:
		return fmt.Sprintf("%s == %v", f.Key, f.value)
	case opEqualsAnyOf:
		return fmt.Sprintf("%s in %v", f.Key, f.values)
	case opInArray:
		return fmt.Sprintf("%v in %s", f.value, f.Key)
	}
	return fmt.Sprintf("%s ?", f.Key)
}

func matchAll(record Fielder, filters []Filter) bool {
	for _, f := range filters {
		if !f.Match(record) {
			return false
		}
	}
	return true
}
