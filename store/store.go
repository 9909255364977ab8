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
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/botobag/socialgraph/model"

	"github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store groups the four collections of the social network.
type Store struct {
	Users       Collection[*model.User]
	Posts       Collection[*model.Post]
	Profiles    Collection[*model.Profile]
	MemberTypes Collection[*model.MemberType]
}

// DefaultMemberTypes returns the member types a new Store is seeded with.
func DefaultMemberTypes() []*model.MemberType {
	return []*model.MemberType{
		{
			ID:              model.MemberTypeBasic,
			Discount:        0,
			MonthPostsLimit: 20,
		},
		{
			ID:              model.MemberTypeBusiness,
			Discount:        5,
			MonthPostsLimit: 100,
		},
	}
}

// NewEmpty creates a Store with empty in-memory collections.
func NewEmpty() *Store {
	return &Store{
		Users:       NewMemoryCollection[*model.User]("users"),
		Posts:       NewMemoryCollection[*model.Post]("posts"),
		Profiles:    NewMemoryCollection[*model.Profile]("profiles"),
		MemberTypes: NewMemoryCollection[*model.MemberType]("memberTypes"),
	}
}

// New creates a Store with in-memory collections and seeds DefaultMemberTypes.
func New() *Store {
	s := NewEmpty()
	ctx := context.Background()
	for _, memberType := range DefaultMemberTypes() {
		// Cannot fail on an empty collection.
		s.MemberTypes.Create(ctx, memberType)
	}
	return s
}

// snapshot is the JSON document written by Dump.
type snapshot struct {
	Users       []*model.User       `json:"users"`
	Posts       []*model.Post       `json:"posts"`
	Profiles    []*model.Profile    `json:"profiles"`
	MemberTypes []*model.MemberType `json:"memberTypes"`
}

// Dump writes all records in s to w as JSON.
func (s *Store) Dump(ctx context.Context, w io.Writer) error {
	var (
		snap snapshot
		err  error
	)

	if snap.Users, err = s.Users.FindMany(ctx); err != nil {
		return err
	}
	if snap.Posts, err = s.Posts.FindMany(ctx); err != nil {
		return err
	}
	if snap.Profiles, err = s.Profiles.FindMany(ctx); err != nil {
		return err
	}
	if snap.MemberTypes, err = s.MemberTypes.FindMany(ctx); err != nil {
		return err
	}

	data, err := json.MarshalIndent(&snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// Restore creates an in-memory Store from a JSON document written by Dump. DefaultMemberTypes are
// seeded if the document doesn't contain any member type.
func Restore(ctx context.Context, r io.Reader) (*Store, error) {
	var snap snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	if len(snap.MemberTypes) == 0 {
		snap.MemberTypes = DefaultMemberTypes()
	}

	s := NewEmpty()
	if err := restoreInto(ctx, s.Users, snap.Users); err != nil {
		return nil, err
	}
	if err := restoreInto(ctx, s.Posts, snap.Posts); err != nil {
		return nil, err
	}
	if err := restoreInto(ctx, s.Profiles, snap.Profiles); err != nil {
		return nil, err
	}
	if err := restoreInto(ctx, s.MemberTypes, snap.MemberTypes); err != nil {
		return nil, err
	}

	return s, nil
}

func restoreInto[T Record[T]](ctx context.Context, c Collection[T], records []T) error {
	for _, record := range records {
		if _, err := c.Create(ctx, record); err != nil {
			return fmt.Errorf("restore snapshot: %w", err)
		}
	}
	return nil
}

// Load reads a Store from the snapshot file at path. The returned error wraps fs.ErrNotExist if the
// file doesn't exist.
func Load(ctx context.Context, path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Restore(ctx, f)
}

// Save writes a snapshot of s to path. The file is replaced atomically.
func (s *Store) Save(ctx context.Context, path string) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpPath := f.Name()

	if err := s.Dump(ctx, f); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, path)
}
