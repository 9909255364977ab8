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

package graph

import (
	"fmt"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/kinds"
	"github.com/graphql-go/graphql/language/visitor"
)

// DefaultMaxDepth is the maximum depth of an operation accepted by an Executor unless configured
// otherwise.
const DefaultMaxDepth = 6

// depthCounter computes the depth of selection sets in a document. The depth of a selection set is
// the number of fields with a selection set on its deepest path. Fragment spreads and inline
// fragments are followed without adding a level. Introspection fields (those start with "__") are
// not counted.
type depthCounter struct {
	fragments map[string]*ast.FragmentDefinition

	// Fragments being expanded on the current path. A spread of one of them is a cycle and
	// contributes nothing.
	visiting map[string]bool

	// Depth of each fragment already expanded
	depths map[string]int
}

func newDepthCounter(doc *ast.Document) *depthCounter {
	c := &depthCounter{
		fragments: map[string]*ast.FragmentDefinition{},
		visiting:  map[string]bool{},
		depths:    map[string]int{},
	}
	for _, definition := range doc.Definitions {
		if fragment, ok := definition.(*ast.FragmentDefinition); ok && fragment.Name != nil {
			c.fragments[fragment.Name.Value] = fragment
		}
	}
	return c
}

func (c *depthCounter) selectionSet(set *ast.SelectionSet) int {
	if set == nil {
		return 0
	}

	max := 0
	for _, selection := range set.Selections {
		depth := 0

		switch selection := selection.(type) {
		case *ast.Field:
			if selection.Name != nil && strings.HasPrefix(selection.Name.Value, "__") {
				continue
			}
			if selection.SelectionSet != nil {
				depth = 1 + c.selectionSet(selection.SelectionSet)
			}

		case *ast.InlineFragment:
			depth = c.selectionSet(selection.SelectionSet)

		case *ast.FragmentSpread:
			if selection.Name == nil {
				continue
			}
			depth = c.fragment(selection.Name.Value)
		}

		if depth > max {
			max = depth
		}
	}

	return max
}

// fragment returns the depth of the named fragment, expanding it at most once per document.
func (c *depthCounter) fragment(name string) int {
	if depth, ok := c.depths[name]; ok {
		return depth
	}
	fragment, exists := c.fragments[name]
	if !exists || c.visiting[name] {
		return 0
	}
	c.visiting[name] = true
	depth := c.selectionSet(fragment.SelectionSet)
	delete(c.visiting, name)
	c.depths[name] = depth
	return depth
}

// OperationDepth returns the depth of the operation in doc.
func OperationDepth(doc *ast.Document, operation *ast.OperationDefinition) int {
	return newDepthCounter(doc).selectionSet(operation.SelectionSet)
}

// QueryDepth returns the depth of the operation with the given name in doc. If operationName is
// empty, doc must contain exactly one operation.
func QueryDepth(doc *ast.Document, operationName string) (int, error) {
	var (
		operation     *ast.OperationDefinition
		numOperations int
	)

	for _, definition := range doc.Definitions {
		def, ok := definition.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		numOperations++
		if len(operationName) == 0 || (def.Name != nil && def.Name.Value == operationName) {
			operation = def
		}
	}

	switch {
	case operation == nil && len(operationName) > 0:
		return 0, fmt.Errorf(`unknown operation named "%s"`, operationName)
	case operation == nil:
		return 0, fmt.Errorf("document does not contain any operation")
	case len(operationName) == 0 && numOperations > 1:
		return 0, fmt.Errorf("must provide operation name if document contains multiple operations")
	}

	return OperationDepth(doc, operation), nil
}

// DepthLimitRule creates a validation rule that rejects operations deeper than maxDepth. It runs
// with graphql-go's validation so a rejected document never reaches execution.
func DepthLimitRule(maxDepth int) graphql.ValidationRuleFn {
	return func(context *graphql.ValidationContext) *graphql.ValidationRuleInstance {
		visitorOpts := &visitor.VisitorOptions{
			KindFuncMap: map[string]visitor.NamedVisitFuncs{
				kinds.OperationDefinition: {
					Kind: func(p visitor.VisitFuncParams) (string, interface{}) {
						operation, ok := p.Node.(*ast.OperationDefinition)
						if !ok || operation == nil {
							return visitor.ActionNoChange, nil
						}

						depth := OperationDepth(context.Document(), operation)
						if depth > maxDepth {
							message := depthLimitMessage(operation, depth, maxDepth)
							context.ReportError(gqlerrors.NewError(
								message,
								[]ast.Node{operation},
								"",
								nil,
								[]int{},
								NewError(message, Op("graph.DepthLimitRule"), ErrKindValidation),
							))
						}
						return visitor.ActionNoChange, nil
					},
				},
			},
		}
		return &graphql.ValidationRuleInstance{
			VisitorOpts: visitorOpts,
		}
	}
}

func depthLimitMessage(operation *ast.OperationDefinition, depth int, maxDepth int) string {
	if operation.Name != nil && len(operation.Name.Value) > 0 {
		return fmt.Sprintf(`Operation "%s" has depth %d which exceeds the maximum depth %d.`,
			operation.Name.Value, depth, maxDepth)
	}
	return fmt.Sprintf("Operation has depth %d which exceeds the maximum depth %d.", depth, maxDepth)
}
