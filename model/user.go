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

// User is a member of the social network.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`

	// Ids of the users this user is subscribed to. The list never contains the user's own id nor
	// duplicates. Edges are maintained symmetrically by graph.Mutator.
	SubscribedToUserIDs []string `json:"subscribedToUserIds"`
}

// GetID returns u.ID.
func (u *User) GetID() string {
	return u.ID
}

// SetID sets u.ID.
func (u *User) SetID(id string) {
	u.ID = id
}

// Field returns the value of the field with the given key as used by store filters.
func (u *User) Field(key string) (interface{}, bool) {
	switch key {
	case "id":
		return u.ID, true
	case "firstName":
		return u.FirstName, true
	case "lastName":
		return u.LastName, true
	case "email":
		return u.Email, true
	case "subscribedToUserIds":
		return u.SubscribedToUserIDs, true
	}
	return nil, false
}

// Clone makes a deep copy of the user.
func (u *User) Clone() *User {
	c := *u
	if u.SubscribedToUserIDs != nil {
		c.SubscribedToUserIDs = make([]string, len(u.SubscribedToUserIDs))
		copy(c.SubscribedToUserIDs, u.SubscribedToUserIDs)
	}
	return &c
}

// IsSubscribedTo returns true if id is in u.SubscribedToUserIDs.
func (u *User) IsSubscribedTo(id string) bool {
	for _, subscribed := range u.SubscribedToUserIDs {
		if subscribed == id {
			return true
		}
	}
	return false
}

// UserPatch specifies changes to a User. Nil fields are left untouched.
type UserPatch struct {
	FirstName           *string
	LastName            *string
	Email               *string
	SubscribedToUserIDs *[]string
}

// Apply implements store.Patch.
func (patch UserPatch) Apply(u *User) {
	if patch.FirstName != nil {
		u.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		u.LastName = *patch.LastName
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.SubscribedToUserIDs != nil {
		ids := make([]string, len(*patch.SubscribedToUserIDs))
		copy(ids, *patch.SubscribedToUserIDs)
		u.SubscribedToUserIDs = ids
	}
}

// SetSubscriptions returns a UserPatch that replaces the subscription list with ids.
func SetSubscriptions(ids []string) UserPatch {
	if ids == nil {
		ids = []string{}
	}
	return UserPatch{SubscribedToUserIDs: &ids}
}

// AppendID returns a copy of ids with id appended.
func AppendID(ids []string, id string) []string {
	result := make([]string, 0, len(ids)+1)
	result = append(result, ids...)
	return append(result, id)
}

// RemoveID returns a copy of ids with every occurrence of id removed.
func RemoveID(ids []string, id string) []string {
	result := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			result = append(result, v)
		}
	}
	return result
}
