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

package schema

// Record is the value of a SEQUENCE. Absent OPTIONAL components have no key.
type Record map[string]any

// Enum is the value of an ENUMERATED, held as its identifier.
type Enum string

// Null is the value of NULL.
type Null struct{}

// Choice is the value of a CHOICE: the chosen alternative and its value.
type Choice struct {
	Name  string
	Value any
}

// BitString is the value of a BIT STRING. Bits are packed most significant
// bit first; Length is the number of significant bits.
type BitString struct {
	Bytes  []byte
	Length int
}

// At reports whether bit i is set.
func (b BitString) At(i int) bool {
	if i < 0 || i >= b.Length || i/8 >= len(b.Bytes) {
		return false
	}
	return b.Bytes[i/8]&(0x80>>(i%8)) != 0
}

// NewBitString builds a BitString of the given length from bit flags.
func NewBitString(bits ...bool) BitString {
	out := BitString{Bytes: make([]byte, (len(bits)+7)/8), Length: len(bits)}
	for i, set := range bits {
		if set {
			out.Bytes[i/8] |= 0x80 >> (i % 8)
		}
	}
	return out
}

// OpenValue is the value of an open type. When the information object set
// knows the carried type, Type and Value are set. Otherwise Raw holds the
// unaligned PER complete encoding of the carried value, which the text
// syntaxes render as hex.
type OpenValue struct {
	Type  *Type
	Value any
	Raw   []byte
}
