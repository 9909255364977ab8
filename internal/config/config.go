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

// Package config loads the settings of the socialgraph command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/botobag/socialgraph/graph"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to the names of environment variables that override settings.
const EnvPrefix = "SOCIALGRAPH_"

// Config contains the settings of the socialgraph command. Values are taken from defaults, then a
// YAML file, then environment variables, the latter winning.
type Config struct {
	// Path of the JSON snapshot the store is loaded from and saved to ($SOCIALGRAPH_STORE)
	Store string `yaml:"store"`

	// Maximum depth of an operation ($SOCIALGRAPH_MAX_DEPTH)
	MaxDepth int `yaml:"maxDepth"`

	// Maximum number of keys in one repository fetch; 0 means unlimited
	// ($SOCIALGRAPH_MAX_BATCH_SIZE)
	MaxBatchSize uint `yaml:"maxBatchSize"`

	// Number of validated documents to cache; 0 disables the cache
	// ($SOCIALGRAPH_DOCUMENT_CACHE_SIZE)
	DocumentCacheSize uint `yaml:"documentCacheSize"`

	// One of "debug", "info", "warn" and "error" ($SOCIALGRAPH_LOG_LEVEL)
	LogLevel string `yaml:"logLevel"`

	// Print metrics to stderr after execution ($SOCIALGRAPH_METRICS)
	Metrics bool `yaml:"metrics"`
}

// Default returns the default settings.
func Default() *Config {
	return &Config{
		Store:             "socialgraph.json",
		MaxDepth:          graph.DefaultMaxDepth,
		MaxBatchSize:      0,
		DocumentCacheSize: graph.DefaultDocumentCacheSize,
		LogLevel:          "info",
		Metrics:           false,
	}
}

// Load reads settings from the YAML file at path (skipped if path is empty) over the defaults and
// applies environment overrides.
func Load(path string) (*Config, error) {
	config := Default()

	if len(path) > 0 {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := config.decode(data); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	if err := config.applyEnv(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return config, nil
}

// decode overlays the YAML document in data. Unknown keys are rejected.
func (config *Config) decode(data []byte) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

type lookupEnvFunc func(key string) (string, bool)

func (config *Config) applyEnv(lookup lookupEnvFunc) error {
	getEnv := func(key string) (string, bool) {
		v, ok := lookup(EnvPrefix + key)
		if !ok || len(v) == 0 {
			return "", false
		}
		return v, true
	}

	if v, ok := getEnv("STORE"); ok {
		config.Store = v
	}

	if v, ok := getEnv("MAX_DEPTH"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMAX_DEPTH: %w", EnvPrefix, err)
		}
		config.MaxDepth = n
	}

	if v, ok := getEnv("MAX_BATCH_SIZE"); ok {
		n, err := strconv.ParseUint(v, 10, 0)
		if err != nil {
			return fmt.Errorf("%sMAX_BATCH_SIZE: %w", EnvPrefix, err)
		}
		config.MaxBatchSize = uint(n)
	}

	if v, ok := getEnv("DOCUMENT_CACHE_SIZE"); ok {
		n, err := strconv.ParseUint(v, 10, 0)
		if err != nil {
			return fmt.Errorf("%sDOCUMENT_CACHE_SIZE: %w", EnvPrefix, err)
		}
		config.DocumentCacheSize = uint(n)
	}

	if v, ok := getEnv("LOG_LEVEL"); ok {
		config.LogLevel = v
	}

	if v, ok := getEnv("METRICS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sMETRICS: %w", EnvPrefix, err)
		}
		config.Metrics = b
	}

	return nil
}

// Validate checks the settings.
func (config *Config) Validate() error {
	if len(strings.TrimSpace(config.Store)) == 0 {
		return errors.New("store path is required")
	}
	if config.MaxDepth < 1 {
		return fmt.Errorf("maxDepth must be at least 1, got %d", config.MaxDepth)
	}
	if _, err := config.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel returns LogLevel as a slog.Level.
func (config *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(config.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid logLevel %q", config.LogLevel)
	}
	return level, nil
}
