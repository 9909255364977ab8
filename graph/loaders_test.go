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

package graph_test

import (
	"context"

	"github.com/botobag/socialgraph/graph"
	"github.com/botobag/socialgraph/internal/testutil"
	"github.com/botobag/socialgraph/model"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Loaders", func() {
	var (
		f       *fixture
		ctx     context.Context
		loaders *graph.Loaders
	)

	BeforeEach(func() {
		f = newFixture()
		ctx = context.Background()

		var err error
		loaders, err = graph.NewLoaders(f.store, graph.LoadersConfig{})
		Expect(err).ShouldNot(HaveOccurred())

		f.resetCounts()
	})

	It("fetches every requested user in one batch", func() {
		thunks := []graph.Thunk{
			loaders.User(ctx, "u1"),
			loaders.User(ctx, "u2"),
			loaders.User(ctx, "u3"),
			loaders.User(ctx, "u1"),
		}
		Expect(f.users.NumReads()).Should(Equal(0))

		var names []string
		for _, thunk := range thunks {
			value, err := thunk()
			Expect(err).ShouldNot(HaveOccurred())
			names = append(names, value.(*model.User).FirstName)
		}
		Expect(names).Should(Equal([]string{"Ann", "Bob", "Cid", "Ann"}))

		calls := f.users.Calls()
		Expect(calls).Should(HaveLen(1))
		Expect(calls[0].Op).Should(Equal("FindMany"))
		Expect(calls[0].Filters).Should(HaveLen(1))
		Expect(calls[0].Filters[0].String()).Should(Equal("id in [u1 u2 u3]"))
	})

	It("serves repeated loads from its cache", func() {
		user, err := loaders.LoadUser(ctx, "u1")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(user.ID).Should(Equal("u1"))

		again, err := loaders.LoadUser(ctx, "u1")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(again).Should(Equal(user))

		Expect(f.users.NumReads()).Should(Equal(1))
	})

	It("fails only the keys that have no record", func() {
		found := loaders.User(ctx, "u2")
		missing := loaders.User(ctx, "ghost")

		user, err := found()
		Expect(err).ShouldNot(HaveOccurred())
		Expect(user.(*model.User).ID).Should(Equal("u2"))

		_, err = missing()
		Expect(err).Should(MatchError(`user "ghost" not found`))
		Expect(graph.IsKind(err, graph.ErrKindNotFound)).Should(BeTrue())

		Expect(f.users.NumReads()).Should(Equal(1))
	})

	It("reports a storage failure to every key in the batch", func() {
		f.faultyUsers.FailWhen(testutil.FailNth("FindMany", 1))

		thunks := []graph.Thunk{
			loaders.User(ctx, "u1"),
			loaders.User(ctx, "u2"),
		}
		for _, thunk := range thunks {
			_, err := thunk()
			Expect(err).Should(HaveOccurred())
			Expect(err.Error()).Should(HavePrefix("storage failure"))
			Expect(graph.IsKind(err, graph.ErrKindStorage)).Should(BeTrue())
		}

		Expect(f.users.NumReads()).Should(Equal(1))
	})

	It("dispatches every pending loader when one value is requested", func() {
		user := loaders.User(ctx, "u1")
		posts := loaders.PostsByUser(ctx, "u1")
		profile := loaders.ProfileByUser(ctx, "u1")

		_, err := user()
		Expect(err).ShouldNot(HaveOccurred())
		Expect(loaders.HasPending()).Should(BeFalse())

		Expect(f.posts.NumReads()).Should(Equal(1))
		Expect(f.profiles.NumReads()).Should(Equal(1))

		_, err = posts()
		Expect(err).ShouldNot(HaveOccurred())
		_, err = profile()
		Expect(err).ShouldNot(HaveOccurred())

		Expect(f.posts.NumReads()).Should(Equal(1))
		Expect(f.profiles.NumReads()).Should(Equal(1))
	})

	It("groups posts by owner", func() {
		ofAnn := loaders.PostsByUser(ctx, "u1")
		ofBob := loaders.PostsByUser(ctx, "u2")
		ofCid := loaders.PostsByUser(ctx, "u3")

		titles := func(thunk graph.Thunk) []string {
			value, err := thunk()
			Expect(err).ShouldNot(HaveOccurred())
			var titles []string
			for _, post := range value.([]*model.Post) {
				titles = append(titles, post.Title)
			}
			return titles
		}

		Expect(titles(ofAnn)).Should(Equal([]string{"Hello", "World"}))
		Expect(titles(ofBob)).Should(Equal([]string{"Hi"}))

		value, err := ofCid()
		Expect(err).ShouldNot(HaveOccurred())
		Expect(value).Should(BeEmpty())

		Expect(f.posts.NumReads()).Should(Equal(1))
		Expect(f.posts.Calls()[0].Filters[0].String()).Should(Equal("userId in [u1 u2 u3]"))
	})

	It("loads nil profile for a user without one", func() {
		profile, err := loaders.LoadProfileByUser(ctx, "u3")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(profile).Should(BeNil())

		profile, err = loaders.LoadProfileByUser(ctx, "u2")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(profile.ID).Should(Equal("pr2"))

		// Both lookups made separately.
		Expect(f.profiles.NumReads()).Should(Equal(2))
	})

	It("loads member types by id", func() {
		value, err := loaders.MemberType(ctx, model.MemberTypeBusiness)()
		Expect(err).ShouldNot(HaveOccurred())
		Expect(value.(*model.MemberType).Discount).Should(Equal(5))

		_, err = loaders.MemberType(ctx, "gold")()
		Expect(err).Should(MatchError(`member type "gold" not found`))
	})

	It("loads member types of users through their profiles in one batch each", func() {
		thunks := []graph.Thunk{
			loaders.MemberTypeByUser(ctx, "u1"),
			loaders.MemberTypeByUser(ctx, "u2"),
			loaders.MemberTypeByUser(ctx, "u3"),
		}

		var ids []interface{}
		for _, thunk := range thunks {
			value, err := thunk()
			Expect(err).ShouldNot(HaveOccurred())
			if value == nil {
				ids = append(ids, nil)
			} else {
				ids = append(ids, value.(*model.MemberType).ID)
			}
		}
		Expect(ids).Should(Equal([]interface{}{model.MemberTypeBasic, model.MemberTypeBusiness, nil}))

		Expect(f.profiles.NumReads()).Should(Equal(1))
		Expect(f.memberTypes.Calls()).Should(HaveLen(1))
		Expect(f.memberTypes.Calls()[0].Filters[0].String()).Should(Equal("id in [basic business]"))
	})

	It("resolves member types of users from cached profiles and member types", func() {
		_, err := loaders.LoadProfileByUser(ctx, "u1")
		Expect(err).ShouldNot(HaveOccurred())
		_, err = loaders.MemberType(ctx, model.MemberTypeBasic)()
		Expect(err).ShouldNot(HaveOccurred())
		f.resetCounts()

		value, err := loaders.MemberTypeByUser(ctx, "u1")()
		Expect(err).ShouldNot(HaveOccurred())
		Expect(value.(*model.MemberType).ID).Should(Equal(model.MemberTypeBasic))
		Expect(f.profiles.NumReads()).Should(Equal(0))
		Expect(f.memberTypes.NumReads()).Should(Equal(0))
	})

	It("fails member types of users whose profiles fail to load", func() {
		f.faultyProfiles.FailWhen(func(op string, id string) bool {
			return op == "FindMany"
		})

		_, err := loaders.MemberTypeByUser(ctx, "u1")()
		Expect(graph.IsKind(err, graph.ErrKindStorage)).Should(BeTrue())
		Expect(f.memberTypes.NumReads()).Should(Equal(0))
	})

	It("splits batches larger than the maximum batch size", func() {
		limited, err := graph.NewLoaders(f.store, graph.LoadersConfig{
			MaxBatchSize: 2,
		})
		Expect(err).ShouldNot(HaveOccurred())

		thunks := limited.UserList(ctx, []string{"u1", "u2", "u3"})
		for _, thunk := range thunks {
			_, err := thunk()
			Expect(err).ShouldNot(HaveOccurred())
		}

		Expect(f.users.NumReads()).Should(Equal(2))
	})

	It("reloads after ClearAll", func() {
		_, err := loaders.LoadUser(ctx, "u1")
		Expect(err).ShouldNot(HaveOccurred())

		_, err = f.store.Users.Change(ctx, "u1", model.UserPatch{FirstName: strPtr("Anna")})
		Expect(err).ShouldNot(HaveOccurred())

		cached, err := loaders.LoadUser(ctx, "u1")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(cached.FirstName).Should(Equal("Ann"))

		loaders.ClearAll()

		fresh, err := loaders.LoadUser(ctx, "u1")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(fresh.FirstName).Should(Equal("Anna"))
	})

	It("shares nothing between two sets", func() {
		other, err := graph.NewLoaders(f.store, graph.LoadersConfig{})
		Expect(err).ShouldNot(HaveOccurred())

		_, err = loaders.LoadUser(ctx, "u1")
		Expect(err).ShouldNot(HaveOccurred())

		_, err = f.store.Users.Change(ctx, "u1", model.UserPatch{Email: strPtr("ann@example.org")})
		Expect(err).ShouldNot(HaveOccurred())

		user, err := other.LoadUser(ctx, "u1")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(user.Email).Should(Equal("ann@example.org"))

		user, err = loaders.LoadUser(ctx, "u1")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(user.Email).Should(Equal("ann@example.com"))
	})

	It("keeps a copy of primed values", func() {
		primed := &model.User{ID: "u9", FirstName: "Zed", SubscribedToUserIDs: []string{}}
		loaders.PrimeUser(primed)
		primed.FirstName = "Changed"

		user, err := loaders.LoadUser(ctx, "u9")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(user.FirstName).Should(Equal("Zed"))
		Expect(f.users.NumReads()).Should(Equal(0))
	})

	It("ignores invalidation on nil set", func() {
		var none *graph.Loaders
		Expect(func() {
			none.PrimeUser(&model.User{ID: "u1"})
			none.ForgetUser("u1")
			none.PrimePost(&model.Post{ID: "p1", UserID: "u1"})
			none.ForgetPost("p1", "u1")
			none.ForgetPostsByUser("u1")
			none.PrimeProfile(&model.Profile{ID: "pr1", UserID: "u1"})
			none.ForgetProfile("pr1", "u1")
			none.PrimeMemberType(&model.MemberType{ID: model.MemberTypeBasic})
		}).ShouldNot(Panic())
	})

	It("is carried by context", func() {
		Expect(graph.LoadersFromContext(ctx)).Should(BeNil())
		Expect(graph.LoadersFromContext(graph.WithLoaders(ctx, loaders))).Should(BeIdenticalTo(loaders))
	})
})

func strPtr(s string) *string {
	return &s
}

func intPtr(n int) *int {
	return &n
}
