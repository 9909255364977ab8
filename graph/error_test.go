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
	"errors"
	"fmt"

	"github.com/botobag/socialgraph/graph"
	"github.com/botobag/socialgraph/internal/testutil"
	"github.com/botobag/socialgraph/store"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("Error", func() {
	It("builds an error from arguments", func() {
		cause := errors.New("disk on fire")
		err := graph.NewError("cannot save", graph.Op("graph.Test"), graph.ErrKindStorage, cause)

		var e *graph.Error
		Expect(errors.As(err, &e)).Should(BeTrue())
		Expect(e.Message).Should(Equal("cannot save"))
		Expect(e.Op).Should(Equal(graph.Op("graph.Test")))
		Expect(e.Kind).Should(Equal(graph.ErrKindStorage))
		Expect(e.Err).Should(BeIdenticalTo(cause))
		Expect(errors.Is(err, cause)).Should(BeTrue())
	})

	It("rejects arguments of unknown type", func() {
		err := graph.NewError("oops", 42)
		Expect(err).Should(MatchError("unknown type int, value 42 in error call"))
	})

	It("appends the message of a foreign cause", func() {
		err := graph.NewError("cannot save", errors.New("disk on fire"))
		Expect(err).Should(MatchError("cannot save: disk on fire"))
	})

	It("hides the message of a wrapped Error", func() {
		inner := graph.NewError(`user "u1" not found`, graph.ErrKindNotFound)
		err := graph.NewError("", graph.Op("graph.Outer"), inner)
		Expect(err).Should(MatchError(`user "u1" not found`))
		Expect(graph.KindOf(err)).Should(Equal(graph.ErrKindNotFound))

		err = graph.NewError("lookup failed", inner)
		Expect(err).Should(MatchError("lookup failed"))
	})

	It("prints details of the chain", func() {
		inner := graph.NewError("inner", graph.Op("b"), graph.ErrKindNotFound)
		outer := graph.NewError("m", graph.Op("a"), graph.ErrKindNotFound, inner)
		Expect(outer.(*graph.Error).Detail()).Should(Equal("a: m: not found:\n  b: inner"))
	})

	It("reports a code in extensions", func() {
		err := graph.NewError("duplicate", graph.ErrKindAlreadyExists).(*graph.Error)
		Expect(err.Extensions()).Should(Equal(map[string]interface{}{
			"code": "ALREADY_EXISTS",
		}))

		plain := graph.NewError("plain").(*graph.Error)
		Expect(plain.Extensions()).Should(BeNil())
	})

	DescribeTable("KindOf",
		func(err error, kind graph.ErrKind) {
			Expect(graph.KindOf(err)).Should(Equal(kind))
			Expect(graph.IsKind(err, kind)).Should(BeTrue())
		},
		Entry("store not found", &store.RecordError{Collection: "users", Op: "Change", ID: "u1", Err: store.ErrNotFound},
			graph.ErrKindNotFound),
		Entry("store already exists", fmt.Errorf("create: %w", &store.RecordError{
			Collection: "users", Op: "Create", ID: "u1", Err: store.ErrAlreadyExists,
		}), graph.ErrKindAlreadyExists),
		Entry("store failure", &store.RecordError{Collection: "posts", Op: "FindMany", Err: testutil.ErrInjected},
			graph.ErrKindStorage),
		Entry("foreign error", errors.New("boom"), graph.ErrKindOther),
		Entry("kind pulled from cause", graph.NewError("wrapped",
			&store.RecordError{Collection: "users", Op: "Delete", ID: "u1", Err: store.ErrNotFound}),
			graph.ErrKindNotFound),
	)

	It("has a code for every kind but other", func() {
		Expect(graph.ErrKindOther.Code()).Should(BeEmpty())
		for kind, code := range map[graph.ErrKind]string{
			graph.ErrKindNotFound:      "NOT_FOUND",
			graph.ErrKindAlreadyExists: "ALREADY_EXISTS",
			graph.ErrKindSelfReference: "SELF_REFERENCE",
			graph.ErrKindBadRequest:    "BAD_REQUEST",
			graph.ErrKindValidation:    "VALIDATION_FAILED",
			graph.ErrKindStorage:       "STORAGE_ERROR",
		} {
			Expect(kind.Code()).Should(Equal(code))
		}
	})

	It("is not of any kind when nil", func() {
		Expect(graph.IsKind(nil, graph.ErrKindOther)).Should(BeFalse())
	})
})
