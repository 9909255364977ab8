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
	"context"
	"log/slog"
	"time"

	"github.com/botobag/socialgraph/store"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
)

// DefaultDocumentCacheSize is the capacity of the document cache created by NewExecutor unless
// WithDocumentCache is given.
const DefaultDocumentCacheSize = 128

// Request is a GraphQL request.
type Request struct {
	// Query is the GraphQL document.
	Query string `json:"query"`

	// Values of the variables defined in the operation
	Variables map[string]interface{} `json:"variables,omitempty"`

	// Name of the operation to execute. Required if Query contains multiple operations.
	OperationName string `json:"operationName,omitempty"`
}

// Result is the response to a Request. Data is nil if the request was rejected before execution.
type Result = graphql.Result

//===----------------------------------------------------------------------------------------====//
// Request context
//===----------------------------------------------------------------------------------------====//

type loadersKey struct{}

// WithLoaders returns a copy of ctx that carries loaders. Resolvers and the Mutator find the
// Loaders of the request with LoadersFromContext.
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey{}, loaders)
}

// LoadersFromContext returns the Loaders carried by ctx or nil if there's none.
func LoadersFromContext(ctx context.Context) *Loaders {
	if ctx == nil {
		return nil
	}
	loaders, _ := ctx.Value(loadersKey{}).(*Loaders)
	return loaders
}

//===----------------------------------------------------------------------------------------====//
// Executor
//===----------------------------------------------------------------------------------------====//

// Executor runs GraphQL requests against a store. Each request is served by a fresh Loaders set
// unless the caller supplies one with ExecuteWithLoaders. An Executor is safe for concurrent use.
type Executor struct {
	store   *store.Store
	schema  graphql.Schema
	rules   []graphql.ValidationRuleFn
	mutator *Mutator

	documentCache DocumentCache
	logger        *slog.Logger
	metrics       *Metrics
	maxDepth      int
	maxBatchSize  uint
}

// Option configures an Executor.
type Option func(e *Executor)

// WithMaxDepth sets the maximum depth of an operation. Default is DefaultMaxDepth.
func WithMaxDepth(maxDepth int) Option {
	return func(e *Executor) {
		e.maxDepth = maxDepth
	}
}

// WithDocumentCache sets the cache of validated documents. A nil cache disables caching.
func WithDocumentCache(cache DocumentCache) Option {
	return func(e *Executor) {
		e.documentCache = cache
	}
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithMetrics enables metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(e *Executor) {
		e.metrics = metrics
	}
}

// WithMaxBatchSize limits the number of keys in one repository fetch made by a loader. Default is
// 0 which means unlimited.
func WithMaxBatchSize(maxBatchSize uint) Option {
	return func(e *Executor) {
		e.maxBatchSize = maxBatchSize
	}
}

// noDocumentCache marks that WithDocumentCache(nil) was given.
type noDocumentCache struct{}

func (noDocumentCache) Get(string) (*ast.Document, bool) { return nil, false }
func (noDocumentCache) Add(string, *ast.Document)        {}

// NewExecutor creates an Executor serving s.
func NewExecutor(s *store.Store, opts ...Option) (*Executor, error) {
	e := &Executor{
		store:    s,
		maxDepth: DefaultMaxDepth,
		logger:   slog.Default(),
	}

	defaultCache, err := NewLRUDocumentCache(DefaultDocumentCacheSize)
	if err != nil {
		return nil, err
	}
	e.documentCache = defaultCache

	for _, opt := range opts {
		opt(e)
	}
	if e.documentCache == nil {
		e.documentCache = noDocumentCache{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	e.mutator = NewMutator(s, e.logger, e.metrics)

	e.schema, err = newSchema(&resolver{
		store:   s,
		mutator: e.mutator,
	})
	if err != nil {
		return nil, err
	}

	e.rules = make([]graphql.ValidationRuleFn, 0, len(graphql.SpecifiedRules)+1)
	e.rules = append(e.rules, graphql.SpecifiedRules...)
	e.rules = append(e.rules, DepthLimitRule(e.maxDepth))

	return e, nil
}

// Schema returns the schema served by e.
func (e *Executor) Schema() graphql.Schema {
	return e.schema
}

// Mutator returns the Mutator used by the Mutation type.
func (e *Executor) Mutator() *Mutator {
	return e.mutator
}

// NewLoaders creates a Loaders set configured like the ones Execute creates.
func (e *Executor) NewLoaders() (*Loaders, error) {
	return NewLoaders(e.store, LoadersConfig{
		MaxBatchSize: e.maxBatchSize,
		Logger:       e.logger,
		Metrics:      e.metrics,
	})
}

// Execute runs req with a fresh Loaders set which is discarded afterwards.
func (e *Executor) Execute(ctx context.Context, req Request) *Result {
	loaders, err := e.NewLoaders()
	if err != nil {
		e.metrics.observeExecution("error")
		return &Result{
			Errors: gqlerrors.FormatErrors(err),
		}
	}
	return e.ExecuteWithLoaders(ctx, loaders, req)
}

// ExecuteWithLoaders runs req with a caller-owned Loaders set. Values cached by previous executions
// with the same set are visible unless the caller calls loaders.ClearAll first.
func (e *Executor) ExecuteWithLoaders(ctx context.Context, loaders *Loaders, req Request) *Result {
	start := time.Now()

	document, rejected := e.prepare(req.Query)
	if rejected != nil {
		e.metrics.observeExecution("rejected")
		e.logger.Debug("request rejected",
			slog.String("operation", req.OperationName),
			slog.Int("errors", len(rejected.Errors)))
		return rejected
	}

	result := graphql.Execute(graphql.ExecuteParams{
		Schema:        e.schema,
		AST:           document,
		Args:          req.Variables,
		OperationName: req.OperationName,
		Context:       WithLoaders(ctx, loaders),
	})

	outcome := "ok"
	switch {
	case result.HasErrors() && result.Data == nil:
		outcome = "error"
	case result.HasErrors():
		outcome = "partial"
	}
	e.metrics.observeExecution(outcome)
	e.logger.Debug("request executed",
		slog.String("operation", req.OperationName),
		slog.String("outcome", outcome),
		slog.Int("errors", len(result.Errors)),
		slog.Duration("elapsed", time.Since(start)))

	return result
}

// prepare returns the parsed and validated document for query. If the query is rejected, it returns
// the result to be sent instead.
func (e *Executor) prepare(query string) (*ast.Document, *Result) {
	if document, ok := e.documentCache.Get(query); ok {
		e.metrics.observeDocumentCache(true)
		return document, nil
	}
	e.metrics.observeDocumentCache(false)

	document, err := parser.Parse(parser.ParseParams{
		Source: query,
	})
	if err != nil {
		return nil, &Result{
			Errors: gqlerrors.FormatErrors(err),
		}
	}

	validation := graphql.ValidateDocument(&e.schema, document, e.rules)
	if !validation.IsValid {
		return nil, &Result{
			Errors: validation.Errors,
		}
	}

	e.documentCache.Add(query, document)
	return document, nil
}

// IsMutation returns true if the operation selected by req is a mutation. It returns false if req
// is rejected.
func (e *Executor) IsMutation(req Request) bool {
	document, rejected := e.prepare(req.Query)
	if rejected != nil {
		return false
	}

	for _, definition := range document.Definitions {
		operation, ok := definition.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if len(req.OperationName) == 0 || (operation.Name != nil && operation.Name.Value == req.OperationName) {
			return operation.Operation == ast.OperationTypeMutation
		}
	}
	return false
}
