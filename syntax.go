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

import "fmt"

// Syntax is a transfer syntax a message can be converted from or to.
type Syntax int

const (
	// SyntaxUPER is the unaligned Packed Encoding Rules, a bit-packed
	// binary encoding. It is represented as hex wherever it crosses a
	// text boundary.
	SyntaxUPER Syntax = iota + 1
	// SyntaxXER is the canonical XML Encoding Rules.
	SyntaxXER
	// SyntaxJER is the JSON Encoding Rules, minified.
	SyntaxJER
)

var syntaxNames = map[Syntax]string{ //nolint:gochecknoglobals
	SyntaxUPER: "uper",
	SyntaxXER:  "xer",
	SyntaxJER:  "jer",
}

// ParseSyntax resolves a syntax abbreviation: "uper", "xer" or "jer". The
// match is exact and case-sensitive.
func ParseSyntax(abbrev string) (Syntax, error) {
	for syntax, name := range syntaxNames {
		if name == abbrev {
			return syntax, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", abbrev, ErrUnknownSyntax)
}

// Syntaxes returns every supported syntax.
func Syntaxes() []Syntax {
	return []Syntax{SyntaxUPER, SyntaxXER, SyntaxJER}
}

// IsBinary reports whether the syntax needs hex to travel as text.
func (s Syntax) IsBinary() bool {
	return s == SyntaxUPER
}

func (s Syntax) String() string {
	if name, ok := syntaxNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Syntax(%d)", int(s))
}
