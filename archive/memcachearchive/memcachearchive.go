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

// Package memcachearchive provides an implementation of asntransform.Archive
// that is backed by a memcached instance: https://memcached.org/.
//
// Memcached may evict entries at any time, so this suits short-lived
// archives, such as sharing recent results between replicas.
package memcachearchive

import (
	"context"
	"errors"
	"fmt"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/bufbuild/asntransform"
	"github.com/bufbuild/asntransform/archive"
)

// maxKeyLen is memcached's limit on key length.
const maxKeyLen = 250

type Config struct {
	Client            *memcache.Client
	KeyPrefix         string
	ExpirationSeconds int32
}

func New(config Config) (asntransform.Archive, error) {
	// validate config
	if config.Client == nil {
		return nil, errors.New("client cannot be nil")
	}
	if config.ExpirationSeconds < 0 {
		return nil, fmt.Errorf("expiration seconds (%d) cannot be negative", config.ExpirationSeconds)
	}
	return (*memcacheArchive)(&config), nil
}

type memcacheArchive Config

func (a *memcacheArchive) Load(_ context.Context, key string) ([]byte, error) {
	fullKey, err := a.key(key)
	if err != nil {
		return nil, err
	}
	item, err := a.Client.Get(fullKey)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, fmt.Errorf("%s: %w", key, archive.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return item.Value, nil
}

func (a *memcacheArchive) Save(_ context.Context, key string, data []byte) error {
	fullKey, err := a.key(key)
	if err != nil {
		return err
	}
	item := &memcache.Item{
		Key:        fullKey,
		Value:      data,
		Expiration: a.ExpirationSeconds,
	}
	// Content keys never change meaning, so an existing entry is kept.
	err = a.Client.Add(item)
	if errors.Is(err, memcache.ErrNotStored) {
		return a.Client.Touch(fullKey, a.ExpirationSeconds)
	}
	return err
}

func (a *memcacheArchive) key(key string) (string, error) {
	fullKey := a.KeyPrefix + key
	if len(fullKey) > maxKeyLen {
		return "", fmt.Errorf("key %q is longer than %d bytes", fullKey, maxKeyLen)
	}
	return fullKey, nil
}
