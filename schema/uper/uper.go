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

// Package uper implements the unaligned variant of the ASN.1 Packed
// Encoding Rules (ITU-T X.691, UNALIGNED BASIC-PER) over schema types.
//
// Values are encoded as complete encodings: octet aligned at the end and
// never shorter than one octet. Length determinants of 16384 or more, which
// require fragmentation, are not supported. Extension additions found in a
// SEQUENCE while decoding are skipped; encoders only ever produce root
// values.
package uper

import (
	"errors"
	"fmt"

	"github.com/bufbuild/asntransform/schema"
)

var (
	// ErrTruncated indicates that the input ended inside a value.
	ErrTruncated = errors.New("uper: input truncated")
	// ErrInvalid indicates bits that do not form a valid encoding of the type.
	ErrInvalid = errors.New("uper: invalid encoding")
	// ErrUnsupported indicates a valid encoding this package does not handle.
	ErrUnsupported = errors.New("uper: unsupported encoding")
	// ErrValue indicates a value that cannot be encoded as the given type.
	ErrValue = errors.New("uper: value cannot be encoded")
)

func errTruncatedAt(pos int) error {
	return fmt.Errorf("%w at bit %d", ErrTruncated, pos)
}

func errTooWide(count int) error {
	return fmt.Errorf("%w: %d-bit field", ErrUnsupported, count)
}

// Marshal returns the complete unaligned PER encoding of v as type t.
func Marshal(t *schema.Type, v any) ([]byte, error) {
	var enc encoder
	if err := enc.encode(t, v, nil); err != nil {
		return nil, err
	}
	return enc.w.complete(), nil
}

// Unmarshal decodes a complete unaligned PER encoding of type t. Trailing
// padding after the value is ignored.
func Unmarshal(t *schema.Type, data []byte) (any, error) {
	dec := decoder{r: bitReader{buf: data}}
	return dec.decode(t, nil)
}
