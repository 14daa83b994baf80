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
	"github.com/bufbuild/asntransform/schema"
	"github.com/bufbuild/asntransform/schema/jer"
	"github.com/bufbuild/asntransform/schema/uper"
	"github.com/bufbuild/asntransform/schema/xer"
)

// InputFormat decodes the bytes of one transfer syntax into a value of the
// given type.
type InputFormat interface {
	Unmarshal(t *schema.Type, data []byte) (any, error)
}

// OutputFormat encodes a value of the given type into one transfer syntax.
type OutputFormat interface {
	Marshal(t *schema.Type, v any) ([]byte, error)
}

// Format is both halves of a transfer syntax codec.
type Format interface {
	InputFormat
	OutputFormat
}

type funcFormat struct {
	unmarshal func(*schema.Type, []byte) (any, error)
	marshal   func(*schema.Type, any) ([]byte, error)
}

func (f funcFormat) Unmarshal(t *schema.Type, data []byte) (any, error) {
	return f.unmarshal(t, data)
}

func (f funcFormat) Marshal(t *schema.Type, v any) ([]byte, error) {
	return f.marshal(t, v)
}

// FormatOf builds a Format from a pair of functions, for syntaxes
// implemented outside this module.
func FormatOf(
	unmarshal func(*schema.Type, []byte) (any, error),
	marshal func(*schema.Type, any) ([]byte, error),
) Format {
	return funcFormat{unmarshal: unmarshal, marshal: marshal}
}

// UPERFormat convenience method for the unaligned PER format.
func UPERFormat() Format {
	return FormatOf(uper.Unmarshal, uper.Marshal)
}

// XERFormat convenience method for the canonical XER format.
func XERFormat() Format {
	return FormatOf(xer.Unmarshal, xer.Marshal)
}

// JERFormat convenience method for the minified JER format.
func JERFormat() Format {
	return FormatOf(jer.Unmarshal, jer.Marshal)
}

// DefaultFormats maps every [Syntax] to the format this module provides
// for it.
func DefaultFormats() map[Syntax]Format {
	return map[Syntax]Format{
		SyntaxUPER: UPERFormat(),
		SyntaxXER:  XERFormat(),
		SyntaxJER:  JERFormat(),
	}
}
