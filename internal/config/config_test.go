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

package config_test

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/botobag/socialgraph/internal/config"
	"github.com/botobag/socialgraph/internal/util"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "socialgraph-config")
		Expect(err).ShouldNot(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	writeFile := func(content string) string {
		path := filepath.Join(dir, "socialgraph.yaml")
		Expect(os.WriteFile(path, []byte(util.Dedent(content)), 0o644)).Should(Succeed())
		return path
	}

	envOf := func(vars map[string]string) func(string) (string, bool) {
		return func(key string) (string, bool) {
			v, ok := vars[key]
			return v, ok
		}
	}

	It("has defaults", func() {
		cfg, err := config.Load("")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(cfg).Should(Equal(&config.Config{
			Store:             "socialgraph.json",
			MaxDepth:          6,
			MaxBatchSize:      0,
			DocumentCacheSize: 128,
			LogLevel:          "info",
			Metrics:           false,
		}))
	})

	It("reads YAML over the defaults", func() {
		cfg, err := config.Load(writeFile(`
			store: /var/lib/socialgraph/db.json
			maxBatchSize: 50
			logLevel: debug
		`))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(cfg.Store).Should(Equal("/var/lib/socialgraph/db.json"))
		Expect(cfg.MaxBatchSize).Should(Equal(uint(50)))
		Expect(cfg.MaxDepth).Should(Equal(6))

		level, err := cfg.SlogLevel()
		Expect(err).ShouldNot(HaveOccurred())
		Expect(level).Should(Equal(slog.LevelDebug))
	})

	It("accepts an empty file", func() {
		cfg, err := config.Load(writeFile(""))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(cfg).Should(Equal(config.Default()))
	})

	It("rejects unknown keys", func() {
		_, err := config.Load(writeFile(`
			maxDepht: 3
		`))
		Expect(err).Should(HaveOccurred())
		Expect(err.Error()).Should(ContainSubstring("maxDepht"))
	})

	It("fails on a missing file", func() {
		_, err := config.Load(filepath.Join(dir, "missing.yaml"))
		Expect(err).Should(HaveOccurred())
		Expect(errors.Is(err, os.ErrNotExist)).Should(BeTrue())
	})

	It("lets environment variables win", func() {
		cfg := config.Default()
		cfg.MaxDepth = 4

		Expect(cfg.ApplyEnv(envOf(map[string]string{
			"SOCIALGRAPH_STORE":               "env.json",
			"SOCIALGRAPH_MAX_DEPTH":           "8",
			"SOCIALGRAPH_MAX_BATCH_SIZE":      "10",
			"SOCIALGRAPH_DOCUMENT_CACHE_SIZE": "0",
			"SOCIALGRAPH_LOG_LEVEL":           "warn",
			"SOCIALGRAPH_METRICS":             "true",
			"MAX_DEPTH":                       "1",
		}))).Should(Succeed())

		Expect(cfg).Should(Equal(&config.Config{
			Store:             "env.json",
			MaxDepth:          8,
			MaxBatchSize:      10,
			DocumentCacheSize: 0,
			LogLevel:          "warn",
			Metrics:           true,
		}))
	})

	It("ignores empty environment variables", func() {
		cfg := config.Default()
		Expect(cfg.ApplyEnv(envOf(map[string]string{
			"SOCIALGRAPH_STORE": "",
		}))).Should(Succeed())
		Expect(cfg.Store).Should(Equal("socialgraph.json"))
	})

	It("rejects malformed environment variables", func() {
		cfg := config.Default()
		err := cfg.ApplyEnv(envOf(map[string]string{
			"SOCIALGRAPH_MAX_DEPTH": "deep",
		}))
		Expect(err).Should(HaveOccurred())
		Expect(err.Error()).Should(HavePrefix("SOCIALGRAPH_MAX_DEPTH"))
	})

	It("reads the process environment", func() {
		Expect(os.Setenv("SOCIALGRAPH_MAX_BATCH_SIZE", "7")).Should(Succeed())
		defer os.Unsetenv("SOCIALGRAPH_MAX_BATCH_SIZE")

		cfg, err := config.Load("")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(cfg.MaxBatchSize).Should(Equal(uint(7)))
	})

	It("validates settings", func() {
		cfg := config.Default()
		cfg.MaxDepth = 0
		Expect(cfg.Validate()).Should(MatchError("maxDepth must be at least 1, got 0"))

		cfg = config.Default()
		cfg.LogLevel = "loud"
		Expect(cfg.Validate()).Should(MatchError(`invalid logLevel "loud"`))

		cfg = config.Default()
		cfg.Store = " "
		Expect(cfg.Validate()).Should(MatchError("store path is required"))
	})
})
