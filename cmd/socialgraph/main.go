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

// Command socialgraph executes one GraphQL document against a snapshot of the social network.
//
//	socialgraph -store db.json -query q.graphql [-variables '{"id": "u1"}'] [-operation Name]
//	            [-config socialgraph.yaml]
//
// The result is printed to stdout as JSON. If the operation is a mutation that completed without
// errors, the snapshot is written back. A missing snapshot file starts an empty network.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/botobag/socialgraph/graph"
	"github.com/botobag/socialgraph/internal/config"
	"github.com/botobag/socialgraph/store"

	"github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// errResultHasErrors makes the command exit with a non-zero status after the result is printed.
var errResultHasErrors = errors.New("result contains errors")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()

	switch {
	case err == nil:
	case errors.Is(err, errResultHasErrors):
		os.Exit(1)
	case errors.Is(err, flag.ErrHelp):
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "socialgraph:", err)
		os.Exit(1)
	}
}

type options struct {
	configPath    string
	storePath     string
	queryPath     string
	variables     string
	operationName string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	flags := flag.NewFlagSet("socialgraph", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&opts.configPath, "config", "", "path of the YAML configuration file")
	flags.StringVar(&opts.storePath, "store", "", "path of the JSON snapshot (overrides the configuration)")
	flags.StringVar(&opts.queryPath, "query", "-", `path of the GraphQL document or "-" for stdin`)
	flags.StringVar(&opts.variables, "variables", "", "values of the operation variables as a JSON object")
	flags.StringVar(&opts.operationName, "operation", "", "name of the operation to execute")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if flags.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", flags.Args())
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if len(opts.storePath) > 0 {
		cfg.Store = opts.storePath
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: level,
	}))

	req, err := readRequest(opts, stdin)
	if err != nil {
		return err
	}

	s, err := store.Load(ctx, cfg.Store)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Info("snapshot not found, starting with an empty network", slog.String("store", cfg.Store))
		s = store.New()
	case err != nil:
		return fmt.Errorf("load %s: %w", cfg.Store, err)
	}

	executorOpts := []graph.Option{
		graph.WithLogger(logger),
		graph.WithMaxDepth(cfg.MaxDepth),
		graph.WithMaxBatchSize(cfg.MaxBatchSize),
	}

	if cfg.DocumentCacheSize > 0 {
		cache, err := graph.NewLRUDocumentCache(cfg.DocumentCacheSize)
		if err != nil {
			return err
		}
		executorOpts = append(executorOpts, graph.WithDocumentCache(cache))
	} else {
		executorOpts = append(executorOpts, graph.WithDocumentCache(nil))
	}

	var registry *prometheus.Registry
	if cfg.Metrics {
		registry = prometheus.NewRegistry()
		metrics, err := graph.NewMetrics(registry)
		if err != nil {
			return err
		}
		executorOpts = append(executorOpts, graph.WithMetrics(metrics))
	}

	executor, err := graph.NewExecutor(s, executorOpts...)
	if err != nil {
		return err
	}

	result := executor.Execute(ctx, req)

	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	if registry != nil {
		if err := writeMetrics(registry, stderr); err != nil {
			return err
		}
	}

	if result.HasErrors() {
		return errResultHasErrors
	}

	if executor.IsMutation(req) {
		if err := s.Save(ctx, cfg.Store); err != nil {
			return fmt.Errorf("save %s: %w", cfg.Store, err)
		}
		logger.Debug("snapshot saved", slog.String("store", cfg.Store))
	}

	return nil
}

// readRequest builds the request from the query file and the flags.
func readRequest(opts *options, stdin io.Reader) (graph.Request, error) {
	var (
		query []byte
		err   error
	)
	if opts.queryPath == "-" {
		query, err = io.ReadAll(stdin)
	} else {
		query, err = os.ReadFile(opts.queryPath)
	}
	if err != nil {
		return graph.Request{}, fmt.Errorf("read query: %w", err)
	}

	req := graph.Request{
		Query:         string(query),
		OperationName: opts.operationName,
	}

	if len(opts.variables) > 0 {
		if err := json.Unmarshal([]byte(opts.variables), &req.Variables); err != nil {
			return graph.Request{}, fmt.Errorf("parse variables: %w", err)
		}
	}

	return req, nil
}

// writeMetrics prints the gathered metrics in the Prometheus text format.
func writeMetrics(registry *prometheus.Registry, w io.Writer) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	encoder := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := encoder.Encode(family); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
