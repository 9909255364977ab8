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

package util

import (
	"strings"
)

// Dedent fixes indentation of a raw string literal. Leading newlines and trailing spaces and tabs
// are dropped, then the whitespace prefix shared by all non-blank lines is removed from each line.
// Blank lines become empty.
func Dedent(s string) string {
	s = strings.TrimLeft(s, "\n")
	s = strings.TrimRight(s, " \t")

	lines := strings.Split(s, "\n")

	var (
		indent    string
		hasIndent bool
	)
	for _, line := range lines {
		content := strings.TrimLeft(line, " \t")
		if len(content) == 0 {
			continue
		}
		lineIndent := line[:len(line)-len(content)]
		if !hasIndent {
			indent, hasIndent = lineIndent, true
		} else {
			indent = commonPrefix(indent, lineIndent)
		}
	}

	for i, line := range lines {
		if len(strings.TrimLeft(line, " \t")) == 0 {
			lines[i] = ""
		} else {
			lines[i] = line[len(indent):]
		}
	}

	return strings.Join(lines, "\n")
}

func commonPrefix(a string, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}
