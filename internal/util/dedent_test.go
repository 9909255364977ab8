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

package util_test

import (
	"strings"

	"github.com/botobag/socialgraph/internal/util"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Dedent", func() {
	It("removes the indentation shared by all lines", func() {
		output := util.Dedent(`
      {
        users {
          id
        }
      }
    `)

		Expect(output).Should(Equal(strings.Join([]string{
			"{",
			"  users {",
			"    id",
			"  }",
			"}",
			"",
		}, "\n")))
	})

	It("keeps lines that are less indented than the first one", func() {
		output := util.Dedent(`
          users {
            id
        }`)

		Expect(output).Should(Equal(strings.Join([]string{
			"  users {",
			"    id",
			"}",
		}, "\n")))
	})

	It("empties blank lines and keeps trailing newlines", func() {
		output := util.Dedent(`
      query A { users { id } }

      query B { posts { id } }

    `)

		Expect(output).Should(Equal(strings.Join([]string{
			"query A { users { id } }",
			"",
			"query B { posts { id } }",
			"",
			"",
		}, "\n")))
	})

	It("removes indentation using tabs", func() {
		output := util.Dedent("\n\t\t{\n\t\t  user(id: \"u1\") { id }\n\t\t}\n\t")

		Expect(output).Should(Equal(strings.Join([]string{
			"{",
			`  user(id: "u1") { id }`,
			"}",
			"",
		}, "\n")))
	})

	It("does not escape special characters", func() {
		output := util.Dedent(`
      { post(id: "wi\th de\fault") { id } }
    `)

		Expect(output).Should(Equal(`{ post(id: "wi\th de\fault") { id } }` + "\n"))
	})

	It("works on text without leading newline or indentation", func() {
		Expect(util.Dedent("{ users { id } }")).Should(Equal("{ users { id } }"))
	})

	It("works on empty string", func() {
		Expect(util.Dedent("")).Should(Equal(""))
	})
})
