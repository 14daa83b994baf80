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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeHex(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", EncodeHex(nil))
	assert.Equal(t, "00ff10ab", EncodeHex([]byte{0x00, 0xff, 0x10, 0xab}))
}

func TestDecodeHex(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name   string
		input  string
		want   []byte
		err    error
		offset int
	}{
		{name: "empty", input: "", want: []byte{}},
		{name: "lowercase", input: "00ff10ab", want: []byte{0x00, 0xff, 0x10, 0xab}},
		{name: "uppercase", input: "00FF10AB", want: []byte{0x00, 0xff, 0x10, 0xab}},
		{name: "mixed case", input: "aBcD", want: []byte{0xab, 0xcd}},
		{name: "odd length", input: "abc", err: ErrOddLengthHex, offset: 2},
		{name: "invalid digit", input: "0g", err: ErrInvalidHexDigit, offset: 1},
		{name: "invalid before odd length", input: "ab!", err: ErrInvalidHexDigit, offset: 2},
		{name: "prefix", input: "0x00", err: ErrInvalidHexDigit, offset: 1},
		{name: "newline", input: "00\n", err: ErrInvalidHexDigit, offset: 2},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			got, err := DecodeHex(testCase.input)
			if testCase.err != nil {
				require.ErrorIs(t, err, testCase.err)
				var hexErr *HexError
				require.ErrorAs(t, err, &hexErr)
				assert.Equal(t, testCase.offset, hexErr.Offset)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestHex_RoundTrip(t *testing.T) {
	t.Parallel()
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	text := EncodeHex(data)
	assert.Len(t, text, 2*len(data))
	got, err := DecodeHex(text)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}
