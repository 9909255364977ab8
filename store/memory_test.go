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

package store_test

import (
	"context"
	"errors"

	"github.com/botobag/socialgraph/model"
	"github.com/botobag/socialgraph/store"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("MemoryCollection", func() {
	var (
		ctx   context.Context
		users *store.MemoryCollection[*model.User]
	)

	BeforeEach(func() {
		ctx = context.Background()
		users = store.NewMemoryCollection[*model.User]("users")
	})

	create := func(user *model.User) *model.User {
		created, err := users.Create(ctx, user)
		Expect(err).ShouldNot(HaveOccurred())
		return created
	}

	It("assigns an id to a record created without one", func() {
		user := create(&model.User{FirstName: "Ada"})
		Expect(user.ID).ShouldNot(BeEmpty())
		Expect(users.Len()).Should(Equal(1))
	})

	It("keeps the id of a record created with one", func() {
		user := create(&model.User{ID: "u1"})
		Expect(user.ID).Should(Equal("u1"))

		_, err := users.Create(ctx, &model.User{ID: "u1"})
		Expect(errors.Is(err, store.ErrAlreadyExists)).Should(BeTrue())
		Expect(err).Should(MatchError("users.Create(u1): record already exists"))
	})

	It("finds one record by filter", func() {
		create(&model.User{ID: "u1", Email: "a@example.com"})
		create(&model.User{ID: "u2", Email: "b@example.com"})

		user, err := users.FindOne(ctx, store.Equals("email", "b@example.com"))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(user.ID).Should(Equal("u2"))

		_, err = users.FindOne(ctx, store.Equals("email", "c@example.com"))
		Expect(errors.Is(err, store.ErrNotFound)).Should(BeTrue())

		_, err = users.FindOne(ctx, store.Equals("unknown", "u1"))
		Expect(errors.Is(err, store.ErrNotFound)).Should(BeTrue())
	})

	It("finds many records in insertion order", func() {
		create(&model.User{ID: "u3"})
		create(&model.User{ID: "u1", SubscribedToUserIDs: []string{"u3"}})
		create(&model.User{ID: "u2", SubscribedToUserIDs: []string{"u1", "u3"}})

		all, err := users.FindMany(ctx)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(ids(all)).Should(Equal([]string{"u3", "u1", "u2"}))

		some, err := users.FindMany(ctx, store.EqualsAnyOf("id", "u2", "u3", "missing"))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(ids(some)).Should(Equal([]string{"u3", "u2"}))

		followers, err := users.FindMany(ctx, store.InArray("subscribedToUserIds", "u3"))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(ids(followers)).Should(Equal([]string{"u1", "u2"}))

		exact, err := users.FindMany(ctx, store.Equals("subscribedToUserIds", []string{"u1", "u3"}))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(ids(exact)).Should(Equal([]string{"u2"}))

		none, err := users.FindMany(ctx, store.InArray("subscribedToUserIds", "u2"))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(none).Should(BeEmpty())
	})

	It("combines filters with and", func() {
		create(&model.User{ID: "u1", FirstName: "Ada", LastName: "Lovelace"})
		create(&model.User{ID: "u2", FirstName: "Ada", LastName: "Byron"})

		found, err := users.FindMany(ctx, store.Equals("firstName", "Ada"), store.Equals("lastName", "Byron"))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(ids(found)).Should(Equal([]string{"u2"}))
	})

	It("isolates stored records from callers", func() {
		user := &model.User{ID: "u1", SubscribedToUserIDs: []string{"u2"}}
		create(user)

		// Mutating the argument doesn't change the stored record.
		user.SubscribedToUserIDs[0] = "changed"

		found, err := users.FindOne(ctx, store.Equals("id", "u1"))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(found.SubscribedToUserIDs).Should(Equal([]string{"u2"}))

		// Neither does mutating a returned record.
		found.SubscribedToUserIDs = append(found.SubscribedToUserIDs, "u3")
		again, err := users.FindOne(ctx, store.Equals("id", "u1"))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(again.SubscribedToUserIDs).Should(Equal([]string{"u2"}))
	})

	It("changes a record with a patch", func() {
		create(&model.User{ID: "u1", FirstName: "Ada", LastName: "Lovelace"})

		name := "Augusta"
		updated, err := users.Change(ctx, "u1", model.UserPatch{FirstName: &name})
		Expect(err).ShouldNot(HaveOccurred())
		Expect(updated.FirstName).Should(Equal("Augusta"))
		Expect(updated.LastName).Should(Equal("Lovelace"))

		updated, err = users.Change(ctx, "u1", model.SetSubscriptions(nil))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(updated.SubscribedToUserIDs).Should(Equal([]string{}))

		_, err = users.Change(ctx, "missing", model.UserPatch{FirstName: &name})
		Expect(errors.Is(err, store.ErrNotFound)).Should(BeTrue())
	})

	It("deletes a record", func() {
		create(&model.User{ID: "u1"})
		create(&model.User{ID: "u2"})

		deleted, err := users.Delete(ctx, "u1")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(deleted.ID).Should(Equal("u1"))

		all, err := users.FindMany(ctx)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(ids(all)).Should(Equal([]string{"u2"}))

		_, err = users.Delete(ctx, "u1")
		Expect(errors.Is(err, store.ErrNotFound)).Should(BeTrue())
		Expect(err).Should(MatchError("users.Delete(u1): record not found"))
	})

	It("fails when the context is done", func() {
		ctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := users.FindMany(ctx)
		Expect(errors.Is(err, context.Canceled)).Should(BeTrue())

		_, err = users.Create(ctx, &model.User{ID: "u1"})
		Expect(errors.Is(err, context.Canceled)).Should(BeTrue())
		Expect(users.Len()).Should(Equal(0))
	})
})

var _ = Describe("Filter", func() {
	It("matches member type ids by their string value", func() {
		profile := &model.Profile{ID: "p1", MemberTypeID: model.MemberTypeBusiness}
		Expect(store.Equals("memberTypeId", model.MemberTypeBusiness).Match(profile)).Should(BeTrue())
		Expect(store.Equals("memberTypeId", "business").Match(profile)).Should(BeTrue())
		Expect(store.Equals("memberTypeId", model.MemberTypeBasic).Match(profile)).Should(BeFalse())
	})

	It("prints itself", func() {
		Expect(store.Equals("id", "u1").String()).Should(Equal("id == u1"))
		Expect(store.EqualsAnyOf("id", "u1", "u2").String()).Should(Equal("id in [u1 u2]"))
		Expect(store.InArray("subscribedToUserIds", "u1").String()).Should(Equal("u1 in subscribedToUserIds"))
	})
})

func ids(users []*model.User) []string {
	result := make([]string, 0, len(users))
	for _, user := range users {
		result = append(result, user.ID)
	}
	return result
}
