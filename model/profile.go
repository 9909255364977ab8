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

// Profile carries the personal details of a User. A user has at most one profile.
type Profile struct {
	ID           string       `json:"id"`
	UserID       string       `json:"userId"`
	Avatar       string       `json:"avatar"`
	Sex          string       `json:"sex"`
	Birthday     int          `json:"birthday"`
	Country      string       `json:"country"`
	Street       string       `json:"street"`
	City         string       `json:"city"`
	MemberTypeID MemberTypeID `json:"memberTypeId"`
}

// GetID returns p.ID.
func (p *Profile) GetID() string {
	return p.ID
}

// SetID sets p.ID.
func (p *Profile) SetID(id string) {
	p.ID = id
}

// Field returns the value of the field with the given key as used by store filters.
func (p *Profile) Field(key string) (interface{}, bool) {
	switch key {
	case "id":
		return p.ID, true
	case "userId":
		return p.UserID, true
	case "avatar":
		return p.Avatar, true
	case "sex":
		return p.Sex, true
	case "birthday":
		return p.Birthday, true
	case "country":
		return p.Country, true
	case "street":
		return p.Street, true
	case "city":
		return p.City, true
	case "memberTypeId":
		return string(p.MemberTypeID), true
	}
	return nil, false
}

// Clone makes a copy of the profile.
func (p *Profile) Clone() *Profile {
	c := *p
	return &c
}

// ProfilePatch specifies changes to a Profile. The owner of a profile cannot be changed.
type ProfilePatch struct {
	Avatar       *string
	Sex          *string
	Birthday     *int
	Country      *string
	Street       *string
	City         *string
	MemberTypeID *MemberTypeID
}

// Apply implements store.Patch.
func (patch ProfilePatch) Apply(p *Profile) {
	if patch.Avatar != nil {
		p.Avatar = *patch.Avatar
	}
	if patch.Sex != nil {
		p.Sex = *patch.Sex
	}
	if patch.Birthday != nil {
		p.Birthday = *patch.Birthday
	}
	if patch.Country != nil {
		p.Country = *patch.Country
	}
	if patch.Street != nil {
		p.Street = *patch.Street
	}
	if patch.City != nil {
		p.City = *patch.City
	}
	if patch.MemberTypeID != nil {
		p.MemberTypeID = *patch.MemberTypeID
	}
}
