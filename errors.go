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
	"errors"
	"fmt"
	"strings"

	"github.com/bufbuild/asntransform/schema"
)

var (
	// ErrUnknownMessageType indicates a type name absent from the registry.
	ErrUnknownMessageType = errors.New("unknown message type")
	// ErrUnknownSyntax indicates a syntax abbreviation other than "uper",
	// "xer" or "jer".
	ErrUnknownSyntax = errors.New("unknown transfer syntax")
	// ErrDecode indicates input that the source syntax cannot decode.
	ErrDecode = errors.New("decode failed")
	// ErrConstraintViolation indicates a decoded value that breaks the
	// constraints of its type.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrEncode indicates a value the target syntax could not encode.
	ErrEncode = errors.New("encode failed")
	// ErrInvalidHexDigit indicates a character outside [0-9a-fA-F] in hex text.
	ErrInvalidHexDigit = errors.New("invalid hex digit")
	// ErrOddLengthHex indicates hex text with an odd number of digits.
	ErrOddLengthHex = errors.New("odd length hex text")
	// ErrOutputTruncated is reported, never returned, when an output buffer
	// is smaller than the encoding it receives.
	ErrOutputTruncated = errors.New("output truncated")
)

// HexError reports malformed hex text.
type HexError struct {
	Err    error
	Offset int
	Char   byte
	Cause  error
}

func (e *HexError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: %v", e.Err, e.Cause)
	}
	return fmt.Sprintf("%v: %q at offset %d", e.Err, e.Char, e.Offset)
}

func (e *HexError) Unwrap() error {
	return e.Err
}

// ConversionError describes why a conversion failed. Err is one of the
// package's sentinel errors and Cause is the underlying failure, if any;
// both are reachable with errors.Is and errors.As.
type ConversionError struct {
	Err error
	// Op is the pipeline step that failed: "resolve", "hex", "decode",
	// "check" or "encode".
	Op       string
	TypeName string
	// Syntax is the abbreviation of the syntax involved, when there is one.
	Syntax string
	Cause  error
}

func (e *ConversionError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Op)
	if e.TypeName != "" {
		sb.WriteString(" ")
		sb.WriteString(e.TypeName)
	}
	if e.Syntax != "" {
		sb.WriteString(" (")
		sb.WriteString(e.Syntax)
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	sb.WriteString(e.Err.Error())
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *ConversionError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// Diagnostic returns the message of the underlying failure. For constraint
// violations it is bounded to schema.MaxDiagnosticLen bytes.
func (e *ConversionError) Diagnostic() string {
	var constraintErr *schema.ConstraintError
	if errors.As(e.Cause, &constraintErr) {
		return constraintErr.Diagnostic()
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Err.Error()
}
