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

package asntransform

import (
	"context"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Archive is a content store for conversion results. The archive package
// and its sub-packages provide implementations backed by the filesystem,
// memcached and Redis.
//
// Results are only ever written by the [Converter]; conversions never read
// them back.
type Archive interface {
	// Load returns the data saved under key.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save stores data under key.
	Save(ctx context.Context, key string, data []byte) error
}

// ArchiveKey returns the content identifier data is archived under: a
// CIDv1 string with the "raw" multicodec and a sha2-256 multihash.
func ArchiveKey(data []byte) (string, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return "", err
	}
	return cid.NewCidV1(cid.Raw, sum).String(), nil
}
