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

// Package archive holds what the archive backends share. The backends live
// in sub-packages: filearchive stores results on a local volume,
// memcachearchive and redisarchive in a shared server. All of them
// implement asntransform.Archive.
package archive

import (
	"context"
	"errors"
	"fmt"

	"github.com/bufbuild/asntransform"
)

var (
	// ErrNotFound is returned by Load when nothing is saved under a key.
	ErrNotFound = errors.New("not found in archive")
	// ErrCorrupt is returned by a verified archive when loaded data does
	// not hash to the key it was loaded from.
	ErrCorrupt = errors.New("archived data does not match its key")
)

// Verified wraps an archive so that every Load checks the loaded data
// against its content key (see asntransform.ArchiveKey) and every Save
// refuses data saved under a key that is not its own.
func Verified(a asntransform.Archive) asntransform.Archive {
	return verified{archive: a}
}

type verified struct {
	archive asntransform.Archive
}

func (v verified) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := v.archive.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := checkKey(key, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (v verified) Save(ctx context.Context, key string, data []byte) error {
	if err := checkKey(key, data); err != nil {
		return err
	}
	return v.archive.Save(ctx, key, data)
}

func checkKey(key string, data []byte) error {
	want, err := asntransform.ArchiveKey(data)
	if err != nil {
		return err
	}
	if want != key {
		return fmt.Errorf("%s: %w (content is %s)", key, ErrCorrupt, want)
	}
	return nil
}
