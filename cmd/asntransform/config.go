// Copyright 2023 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bradfitz/gomemcache/memcache"
	"github.com/bufbuild/asntransform"
	"github.com/bufbuild/asntransform/archive"
	"github.com/bufbuild/asntransform/archive/filearchive"
	"github.com/bufbuild/asntransform/archive/memcachearchive"
	"github.com/bufbuild/asntransform/archive/redisarchive"
	"github.com/gomodule/redigo/redis"
	"github.com/rs/zerolog"
)

const defaultMaxOutput = 65535

// config holds the settings shared by every subcommand.
type config struct {
	MaxOutput     int
	StripRegional bool
	LogLevel      zerolog.Level
	ListenAddr    string
	Archive       archiveConfig
}

type archiveConfig struct {
	// Kind is "file", "memcache", "redis", or empty for no archive.
	Kind       string
	Path       string
	Addr       string
	KeyPrefix  string
	Expiration time.Duration
}

func defaultConfig() config {
	return config{
		MaxOutput:  defaultMaxOutput,
		LogLevel:   zerolog.InfoLevel,
		ListenAddr: "localhost:8080",
	}
}

// config.toml key mapping to runtime settings.
type fileConfig struct {
	MaxOutput     int    `toml:"max_output"`
	StripRegional bool   `toml:"strip_regional"`
	LogLevel      string `toml:"log_level"`
	ListenAddr    string `toml:"listen_addr"`
	Archive       struct {
		Kind       string `toml:"kind"`
		Path       string `toml:"path"`
		Addr       string `toml:"addr"`
		KeyPrefix  string `toml:"key_prefix"`
		Expiration string `toml:"expiration"`
	} `toml:"archive"`
}

// loadConfig overlays the settings defined in the TOML file at path on the
// defaults. An empty path gives the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("max_output") {
		cfg.MaxOutput = raw.MaxOutput
	}
	if meta.IsDefined("strip_regional") {
		cfg.StripRegional = raw.StripRegional
	}
	if meta.IsDefined("log_level") {
		level, err := zerolog.ParseLevel(strings.TrimSpace(raw.LogLevel))
		if err != nil {
			return config{}, fmt.Errorf("load config: log_level: %w", err)
		}
		cfg.LogLevel = level
	}
	if meta.IsDefined("listen_addr") {
		cfg.ListenAddr = strings.TrimSpace(raw.ListenAddr)
	}
	if meta.IsDefined("archive", "kind") {
		cfg.Archive.Kind = strings.TrimSpace(raw.Archive.Kind)
	}
	if meta.IsDefined("archive", "path") {
		cfg.Archive.Path = strings.TrimSpace(raw.Archive.Path)
	}
	if meta.IsDefined("archive", "addr") {
		cfg.Archive.Addr = strings.TrimSpace(raw.Archive.Addr)
	}
	if meta.IsDefined("archive", "key_prefix") {
		cfg.Archive.KeyPrefix = raw.Archive.KeyPrefix
	}
	if meta.IsDefined("archive", "expiration") {
		expiration, err := time.ParseDuration(strings.TrimSpace(raw.Archive.Expiration))
		if err != nil {
			return config{}, fmt.Errorf("load config: archive.expiration: %w", err)
		}
		cfg.Archive.Expiration = expiration
	}

	if err := cfg.validate(); err != nil {
		return config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c config) validate() error {
	if c.MaxOutput < 0 {
		return fmt.Errorf("max_output (%d) cannot be negative", c.MaxOutput)
	}
	if c.Archive.Expiration < 0 {
		return fmt.Errorf("archive expiration (%v) cannot be negative", c.Archive.Expiration)
	}
	switch c.Archive.Kind {
	case "":
	case "file":
		if c.Archive.Path == "" {
			return errors.New("archive kind \"file\" requires a path")
		}
	case "memcache", "redis":
		if c.Archive.Addr == "" {
			return fmt.Errorf("archive kind %q requires an addr", c.Archive.Kind)
		}
	default:
		return fmt.Errorf("unsupported archive kind %q (expected file, memcache or redis)", c.Archive.Kind)
	}
	return nil
}

// openArchive connects the configured archive backend. It returns nil when
// no archive is configured. Every backend is verified, so a result that
// does not match its key is never saved or returned.
func openArchive(cfg archiveConfig) (asntransform.Archive, func() error, error) {
	noop := func() error { return nil }
	var (
		store asntransform.Archive
		err   error
	)
	closer := noop
	switch cfg.Kind {
	case "":
		return nil, noop, nil
	case "file":
		store, err = filearchive.New(filearchive.Config{Path: cfg.Path})
	case "memcache":
		store, err = memcachearchive.New(memcachearchive.Config{
			Client:            memcache.New(cfg.Addr),
			KeyPrefix:         cfg.KeyPrefix,
			ExpirationSeconds: int32(cfg.Expiration / time.Second),
		})
	case "redis":
		pool := &redis.Pool{
			MaxIdle:     4,
			IdleTimeout: time.Minute,
			DialContext: func(ctx context.Context) (redis.Conn, error) {
				return redis.DialContext(ctx, "tcp", cfg.Addr)
			},
		}
		closer = pool.Close
		store, err = redisarchive.New(redisarchive.Config{
			Client:     pool,
			KeyPrefix:  cfg.KeyPrefix,
			Expiration: cfg.Expiration,
		})
	default:
		err = fmt.Errorf("unsupported archive kind %q", cfg.Kind)
	}
	if err != nil {
		_ = closer()
		return nil, noop, err
	}
	return archive.Verified(store), closer, nil
}
