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

package testutil

import (
	"fmt"

	"github.com/json-iterator/go"
	"github.com/onsi/gomega"
	"github.com/onsi/gomega/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type serializeToJSONMatcher struct {
	expected string
	encoded  string
}

// SerializeToJSON returns a Gomega matcher that serializes actual value into JSON and compares the
// result with the expected JSON document. Key order and whitespace don't matter.
//
//		Expect(result.Data).Should(SerializeToJSON(`{"user": {"id": "u1"}}`))
func SerializeToJSON(expected string) types.GomegaMatcher {
	return &serializeToJSONMatcher{
		expected: expected,
	}
}

// Match implements types.GomegaMatcher.
func (matcher *serializeToJSONMatcher) Match(actual interface{}) (success bool, err error) {
	encoded, err := json.Marshal(actual)
	if err != nil {
		return false, fmt.Errorf("SerializeToJSON matcher cannot encode actual into JSON: %s", err)
	}
	matcher.encoded = string(encoded)
	return gomega.MatchJSON(matcher.expected).Match(matcher.encoded)
}

// FailureMessage implements types.GomegaMatcher.
func (matcher *serializeToJSONMatcher) FailureMessage(actual interface{}) (message string) {
	return fmt.Sprintf("Expected\n\t%s\nto serialize to JSON value as\n\t%s", matcher.encoded, matcher.expected)
}

// NegatedFailureMessage implements types.GomegaMatcher.
func (matcher *serializeToJSONMatcher) NegatedFailureMessage(actual interface{}) (message string) {
	return fmt.Sprintf("Expected\n\t%s\nnot to serialize to JSON value as\n\t%s", matcher.encoded, matcher.expected)
}
