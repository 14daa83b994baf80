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

// Package redisarchive provides an implementation of asntransform.Archive
// that is backed by a Redis instance: https://redis.io/.
package redisarchive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bufbuild/asntransform"
	"github.com/bufbuild/asntransform/archive"
	"github.com/gomodule/redigo/redis"
)

type Config struct {
	Client     *redis.Pool
	KeyPrefix  string
	Expiration time.Duration
}

func New(config Config) (asntransform.Archive, error) {
	// validate config
	if config.Client == nil {
		return nil, errors.New("client cannot be nil")
	}
	if config.Expiration < 0 {
		return nil, fmt.Errorf("expiration (%v) cannot be negative", config.Expiration)
	}
	return (*redisArchive)(&config), nil
}

type redisArchive Config

func (a *redisArchive) Load(ctx context.Context, key string) ([]byte, error) {
	conn, err := a.Client.GetContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = conn.Close()
	}()
	data, err := redis.Bytes(redis.DoContext(conn, ctx, "get", a.KeyPrefix+key))
	if errors.Is(err, redis.ErrNil) {
		return nil, fmt.Errorf("%s: %w", key, archive.ErrNotFound)
	}
	return data, err
}

// Save only writes keys that are not already present. Existing keys have
// their expiration refreshed instead.
func (a *redisArchive) Save(ctx context.Context, key string, data []byte) error {
	conn, err := a.Client.GetContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close()
	}()

	args := []any{a.KeyPrefix + key, data, "nx"}
	millis := a.expirationMillis()
	if millis > 0 {
		args = append(args, "px", millis)
	}
	reply, err := redis.DoContext(conn, ctx, "set", args...)
	if err != nil {
		return err
	}
	if reply == nil && millis > 0 {
		_, err = redis.DoContext(conn, ctx, "pexpire", a.KeyPrefix+key, millis)
	}
	return err
}

func (a *redisArchive) expirationMillis() int {
	if a.Expiration == 0 {
		return 0
	}
	return int(a.Expiration.Milliseconds())
}
