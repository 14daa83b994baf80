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

// Package schema describes ASN.1 message types and the generic values that
// the transfer syntax codecs produce and consume.
//
// A [Type] is a static, immutable descriptor. Types are assembled in Go code
// (see package j2735) and collected into a [Registry], which is the only way
// the conversion pipeline finds them. Values are plain Go data:
//
//	INTEGER         int64
//	BOOLEAN         bool
//	ENUMERATED      Enum
//	BIT STRING      BitString
//	OCTET STRING    []byte
//	IA5String       string
//	NULL            Null
//	SEQUENCE        Record
//	SEQUENCE OF     []any
//	CHOICE          Choice
//	open type       *OpenValue
//
// Decoders never range-check values. [Check] is the single place where the
// semantic constraints declared on a Type are enforced.
package schema

import "fmt"

// Kind identifies the ASN.1 built-in type a [Type] is derived from.
type Kind int

const (
	Integer Kind = iota + 1
	Boolean
	Enumerated
	BitStringKind
	OctetString
	IA5String
	NullKind
	Sequence
	SequenceOf
	ChoiceKind
	OpenType
)

var kindNames = map[Kind]string{ //nolint:gochecknoglobals
	Integer:       "INTEGER",
	Boolean:       "BOOLEAN",
	Enumerated:    "ENUMERATED",
	BitStringKind: "BIT_STRING",
	OctetString:   "OCTET_STRING",
	IA5String:     "IA5String",
	NullKind:      "NULL",
	Sequence:      "SEQUENCE",
	SequenceOf:    "SEQUENCE_OF",
	ChoiceKind:    "CHOICE",
	OpenType:      "OPEN_TYPE",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Range is an inclusive lower..upper bound, used both for value constraints
// on INTEGER and for SIZE constraints.
type Range struct {
	Lower, Upper int64
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v int64) bool {
	return v >= r.Lower && v <= r.Upper
}

// Fixed reports whether the range admits exactly one value.
func (r Range) Fixed() bool {
	return r.Lower == r.Upper
}

func (r Range) String() string {
	return fmt.Sprintf("%d..%d", r.Lower, r.Upper)
}

// Type describes one ASN.1 type. Only the attributes relevant to Kind are
// consulted; the rest are left zero.
type Type struct {
	// Name is the type reference name. It names PDUs in a Registry and
	// is used as the XER element name of SEQUENCE OF items. Anonymous
	// inner types leave it empty.
	Name string
	Kind Kind
	// Range is the value constraint of an INTEGER. Nil means unconstrained.
	Range *Range
	// Size is the SIZE constraint of a string or SEQUENCE OF. Nil means
	// unconstrained.
	Size *Range
	// Extensible is set when the type (SEQUENCE, CHOICE, ENUMERATED) or its
	// constraint (INTEGER, SIZE) carries an extension marker.
	Extensible bool
	// Items are the root identifiers of an ENUMERATED, numbered from zero,
	// or the named bits of a BIT STRING.
	Items []string
	// Fields are the components of a SEQUENCE or the alternatives of a
	// CHOICE, in definition order.
	Fields []Field
	// Elem is the element type of a SEQUENCE OF.
	Elem *Type
	// Open resolves the actual type of an open type value.
	Open *OpenTable
}

// Field is a SEQUENCE component or CHOICE alternative.
type Field struct {
	Name     string
	Type     *Type
	Optional bool
}

// OpenTable maps the value of a sibling INTEGER component (Key) to the
// type carried in an open type, as an information object set does.
type OpenTable struct {
	Key   string
	Types map[int64]*Type
}

// Resolve returns the type registered for the given id, or nil.
func (o *OpenTable) Resolve(id int64) *Type {
	if o == nil {
		return nil
	}
	return o.Types[id]
}

// IDOf returns the id under which t is registered in the table.
func (o *OpenTable) IDOf(t *Type) (int64, bool) {
	if o == nil {
		return 0, false
	}
	for id, candidate := range o.Types {
		if candidate == t {
			return id, true
		}
	}
	return 0, false
}

// ByName returns the table entry whose type has the given name.
func (o *OpenTable) ByName(name string) *Type {
	if o == nil {
		return nil
	}
	for _, candidate := range o.Types {
		if candidate.Name == name {
			return candidate
		}
	}
	return nil
}

// Field returns the component or alternative with the given name.
func (t *Type) Field(name string) (Field, int, bool) {
	for i, f := range t.Fields {
		if f.Name == name {
			return f, i, true
		}
	}
	return Field{}, -1, false
}

// ItemIndex returns the position of an ENUMERATED identifier.
func (t *Type) ItemIndex(item string) int {
	for i, it := range t.Items {
		if it == item {
			return i
		}
	}
	return -1
}

// TagName is the element name used for a value of t when no component
// name applies, e.g. for SEQUENCE OF items in XER.
func (t *Type) TagName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Kind.String()
}

func (t *Type) String() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Kind.String()
}
