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
	"fmt"
	"strings"

	"github.com/botobag/socialgraph/graph"
	. "github.com/botobag/socialgraph/internal/testutil"
	"github.com/botobag/socialgraph/internal/util"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// nestedSubscriptions returns a query that selects users and then subscribedToUser n-1 times, which
// has depth n.
func nestedSubscriptions(n int) string {
	var b strings.Builder
	b.WriteString("{ users {")
	for i := 1; i < n; i++ {
		b.WriteString(" subscribedToUser {")
	}
	b.WriteString(" id")
	for i := 0; i < n; i++ {
		b.WriteString(" }")
	}
	b.WriteString(" }")
	return b.String()
}

func mustParse(query string) *ast.Document {
	doc, err := parser.Parse(parser.ParseParams{
		Source: query,
	})
	Expect(err).ShouldNot(HaveOccurred())
	return doc
}

var _ = Describe("QueryDepth", func() {
	depthOf := func(query string) int {
		depth, err := graph.QueryDepth(mustParse(query), "")
		Expect(err).ShouldNot(HaveOccurred())
		return depth
	}

	It("counts fields with selection sets", func() {
		Expect(depthOf(`{ users { id } }`)).Should(Equal(1))
		Expect(depthOf(`{ users { id posts { title } } }`)).Should(Equal(2))
		Expect(depthOf(nestedSubscriptions(7))).Should(Equal(7))
	})

	It("takes the deepest path", func() {
		Expect(depthOf(util.Dedent(`
			{
				users {
					id
					profile { city }
					posts {
						user {
							profile {
								memberType { discount }
							}
						}
					}
				}
				memberTypes { id }
			}
		`))).Should(Equal(5))
	})

	It("follows fragments without adding a level", func() {
		Expect(depthOf(util.Dedent(`
			{
				users { ...UserFields }
			}

			fragment UserFields on User {
				posts { title }
				... on User {
					profile { memberType { id } }
				}
			}
		`))).Should(Equal(3))
	})

	It("stops at fragment cycles", func() {
		Expect(depthOf(util.Dedent(`
			{
				users { ...A }
			}

			fragment A on User {
				subscribedToUser { ...B }
			}

			fragment B on User {
				posts { title }
				...A
			}
		`))).Should(Equal(3))
	})

	It("expands each fragment once", func() {
		var b strings.Builder
		b.WriteString("{ users { ...F0 } }\n")
		const numFragments = 30
		for i := 0; i < numFragments; i++ {
			fmt.Fprintf(&b, "fragment F%d on User { subscribedToUser { id } ...F%d ...F%d ...F%d }\n", i, i+1, i+1, i+1)
		}
		fmt.Fprintf(&b, "fragment F%d on User { posts { title } }\n", numFragments)

		Expect(depthOf(b.String())).Should(Equal(2))
	})

	It("ignores introspection fields", func() {
		Expect(depthOf(`{ __schema { types { fields { name } } } }`)).Should(Equal(0))
		Expect(depthOf(`{ users { __typename id } }`)).Should(Equal(1))
	})

	It("selects the named operation", func() {
		doc := mustParse(`query Shallow { users { id } } query Deep { users { posts { id } } }`)

		depth, err := graph.QueryDepth(doc, "Deep")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(depth).Should(Equal(2))

		_, err = graph.QueryDepth(doc, "")
		Expect(err).Should(MatchError("must provide operation name if document contains multiple operations"))

		_, err = graph.QueryDepth(doc, "Other")
		Expect(err).Should(MatchError(`unknown operation named "Other"`))
	})
})

var _ = Describe("DepthLimitRule", func() {
	var (
		f        *fixture
		executor *graph.Executor
		ctx      context.Context
	)

	BeforeEach(func() {
		f = newFixture()
		ctx = context.Background()

		var err error
		executor, err = graph.NewExecutor(f.store)
		Expect(err).ShouldNot(HaveOccurred())

		f.resetCounts()
	})

	It("accepts an operation at the maximum depth", func() {
		result := executor.Execute(ctx, graph.Request{
			Query: nestedSubscriptions(graph.DefaultMaxDepth),
		})
		Expect(result.Errors).Should(BeEmpty())
		Expect(result.Data).ShouldNot(BeNil())
	})

	It("accepts a shallower operation", func() {
		result := executor.Execute(ctx, graph.Request{
			Query: nestedSubscriptions(5),
		})
		Expect(result.Errors).Should(BeEmpty())
	})

	It("rejects a deeper operation before execution", func() {
		result := executor.Execute(ctx, graph.Request{
			Query: nestedSubscriptions(7),
		})
		Expect(result.Data).Should(BeNil())
		Expect(result).Should(ConsistOfGraphQLErrors(
			MatchGraphQLError(MessageEqual("Operation has depth 7 which exceeds the maximum depth 6.")),
		))

		Expect(f.users.NumReads()).Should(Equal(0))
	})

	It("names the rejected operation", func() {
		result := executor.Execute(ctx, graph.Request{
			Query: "query Deep " + nestedSubscriptions(8),
		})
		Expect(result.Data).Should(BeNil())
		Expect(result).Should(ConsistOfGraphQLErrors(
			MatchGraphQLError(MessageEqual(`Operation "Deep" has depth 8 which exceeds the maximum depth 6.`)),
		))
	})

	It("counts depth through fragments", func() {
		result := executor.Execute(ctx, graph.Request{
			Query: util.Dedent(`
				{
					users { ...Deep }
				}

				fragment Deep on User {
					subscribedToUser {
						subscribedToUser {
							subscribedToUser {
								subscribedToUser {
									subscribedToUser {
										subscribedToUser { id }
									}
								}
							}
						}
					}
				}
			`),
		})
		Expect(result.Data).Should(BeNil())
		Expect(result).Should(ConsistOfGraphQLErrors(
			MatchGraphQLError(MessageContainSubstring("has depth 7")),
		))
	})

	It("applies a configured maximum", func() {
		shallow, err := graph.NewExecutor(f.store, graph.WithMaxDepth(1))
		Expect(err).ShouldNot(HaveOccurred())

		result := shallow.Execute(ctx, graph.Request{
			Query: `{ users { posts { id } } }`,
		})
		Expect(result.Data).Should(BeNil())
		Expect(result).Should(ConsistOfGraphQLErrors(
			MatchGraphQLError(MessageEqual("Operation has depth 2 which exceeds the maximum depth 1.")),
		))
	})
})
