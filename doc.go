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

// Package asntransform converts SAE J2735 V2X messages between the three
// ASN.1 transfer syntaxes that roadside and vehicle equipment exchange:
// unaligned PER (UPER), the canonical XML Encoding Rules (XER) and the
// JSON Encoding Rules (JER).
//
// A [Converter] takes the name of a message type, the source and target
// syntax abbreviations ("uper", "xer" or "jer") and the message. It decodes
// the input, checks the decoded value against the type's constraints and
// encodes it in the target syntax. Decoders never enforce value
// constraints, so a value that is well formed but out of range is reported
// as [ErrConstraintViolation] rather than a decode failure.
//
// UPER is binary. [Converter.Convert] and [Converter.ConvertBytes] move raw
// bytes, while [Converter.ConvertString] carries UPER as hex text on both
// sides, the way J2735 payloads usually travel in logs and message brokers.
//
// Output that does not fit the caller's buffer is truncated and reported
// as a warning, not as an error. The length of the full encoding is always
// returned so callers can detect it.
//
// The message set lives in the j2735 package, and the codecs for each
// syntax live under schema. Other message sets can be converted by giving
// the Converter a [SchemaCodec] over a different [schema.Registry].
package asntransform
