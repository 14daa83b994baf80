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

import "encoding/hex"

// EncodeHex returns the lowercase hex text of b: exactly two characters
// per byte, most significant nibble first. A nil slice encodes as "".
func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

// DecodeHex returns the bytes represented by hex text. Both letter cases
// are accepted. Any character outside [0-9a-fA-F] fails with
// [ErrInvalidHexDigit]; an odd number of digits fails with
// [ErrOddLengthHex]. The returned error is a *HexError.
func DecodeHex(text string) ([]byte, error) {
	for i := 0; i < len(text); i++ {
		if !isHexDigit(text[i]) {
			return nil, &HexError{Err: ErrInvalidHexDigit, Offset: i, Char: text[i]}
		}
	}
	if len(text)%2 != 0 {
		return nil, &HexError{Err: ErrOddLengthHex, Offset: len(text) - 1, Char: text[len(text)-1]}
	}
	out := make([]byte, len(text)/2)
	if _, err := hex.Decode(out, []byte(text)); err != nil {
		return nil, &HexError{Err: ErrInvalidHexDigit, Cause: err}
	}
	return out, nil
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
