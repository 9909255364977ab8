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

package model

// MemberTypeID identifies a MemberType. The set of values is closed.
type MemberTypeID string

// Enumeration of MemberTypeID
const (
	MemberTypeBasic    MemberTypeID = "basic"
	MemberTypeBusiness MemberTypeID = "business"
)

// MemberTypeIDs lists every valid MemberTypeID.
var MemberTypeIDs = []MemberTypeID{MemberTypeBasic, MemberTypeBusiness}

// Valid returns true if id is one of MemberTypeIDs.
func (id MemberTypeID) Valid() bool {
	switch id {
	case MemberTypeBasic, MemberTypeBusiness:
		return true
	}
	return false
}

// MemberType describes the benefits of a membership level.
type MemberType struct {
	ID              MemberTypeID `json:"id"`
	Discount        int          `json:"discount"`
	MonthPostsLimit int          `json:"monthPostsLimit"`
}

// GetID returns string(m.ID).
func (m *MemberType) GetID() string {
	return string(m.ID)
}

// SetID sets m.ID.
func (m *MemberType) SetID(id string) {
	m.ID = MemberTypeID(id)
}

// Field returns the value of the field with the given key as used by store filters.
func (m *MemberType) Field(key string) (interface{}, bool) {
	switch key {
	case "id":
		return string(m.ID), true
	case "discount":
		return m.Discount, true
	case "monthPostsLimit":
		return m.MonthPostsLimit, true
	}
	return nil, false
}

// Clone makes a copy of the member type.
func (m *MemberType) Clone() *MemberType {
	c := *m
	return &c
}

// MemberTypePatch specifies changes to a MemberType.
type MemberTypePatch struct {
	Discount        *int
	MonthPostsLimit *int
}

// Apply implements store.Patch.
func (patch MemberTypePatch) Apply(m *MemberType) {
	if patch.Discount != nil {
		m.Discount = *patch.Discount
	}
	if patch.MonthPostsLimit != nil {
		m.MonthPostsLimit = *patch.MonthPostsLimit
	}
}
