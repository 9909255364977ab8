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

// Post is a piece of content owned by a User.
type Post struct {
	ID      string `json:"id"`
	UserID  string `json:"userId"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// GetID returns p.ID.
func (p *Post) GetID() string {
	return p.ID
}

// SetID sets p.ID.
func (p *Post) SetID(id string) {
	p.ID = id
}

// Field returns the value of the field with the given key as used by store filters.
func (p *Post) Field(key string) (interface{}, bool) {
	switch key {
	case "id":
		return p.ID, true
	case "userId":
		return p.UserID, true
	case "title":
		return p.Title, true
	case "content":
		return p.Content, true
	}
	return nil, false
}

// Clone makes a copy of the post.
func (p *Post) Clone() *Post {
	c := *p
	return &c
}

// PostPatch specifies changes to a Post. The owner of a post cannot be changed.
type PostPatch struct {
	Title   *string
	Content *string
}

// Apply implements store.Patch.
func (patch PostPatch) Apply(p *Post) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
}
