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

// Constructors for the common shapes of type definitions. They keep the
// static message set definitions close to their ASN.1 source.

// IntegerType is INTEGER (lower..upper).
func IntegerType(name string, lower, upper int64) *Type {
	return &Type{Name: name, Kind: Integer, Range: &Range{Lower: lower, Upper: upper}}
}

// BooleanType is BOOLEAN.
func BooleanType(name string) *Type {
	return &Type{Name: name, Kind: Boolean}
}

// EnumType is ENUMERATED { items... [, ...] } with items numbered from zero.
func EnumType(name string, extensible bool, items ...string) *Type {
	return &Type{Name: name, Kind: Enumerated, Extensible: extensible, Items: items}
}

// BitStringType is BIT STRING { named... } (SIZE(lower..upper)).
func BitStringType(name string, lower, upper int64, named ...string) *Type {
	return &Type{Name: name, Kind: BitStringKind, Size: &Range{Lower: lower, Upper: upper}, Items: named}
}

// OctetStringType is OCTET STRING (SIZE(lower..upper)).
func OctetStringType(name string, lower, upper int64) *Type {
	return &Type{Name: name, Kind: OctetString, Size: &Range{Lower: lower, Upper: upper}}
}

// IA5StringType is IA5String (SIZE(lower..upper)).
func IA5StringType(name string, lower, upper int64) *Type {
	return &Type{Name: name, Kind: IA5String, Size: &Range{Lower: lower, Upper: upper}}
}

// NullType is NULL.
func NullType(name string) *Type {
	return &Type{Name: name, Kind: NullKind}
}

// SequenceType is SEQUENCE { fields... [, ...] }.
func SequenceType(name string, extensible bool, fields ...Field) *Type {
	return &Type{Name: name, Kind: Sequence, Extensible: extensible, Fields: fields}
}

// SequenceOfType is SEQUENCE (SIZE(lower..upper)) OF elem.
func SequenceOfType(name string, lower, upper int64, elem *Type) *Type {
	return &Type{Name: name, Kind: SequenceOf, Size: &Range{Lower: lower, Upper: upper}, Elem: elem}
}

// ChoiceType is CHOICE { alternatives... [, ...] }.
func ChoiceType(name string, extensible bool, alternatives ...Field) *Type {
	return &Type{Name: name, Kind: ChoiceKind, Extensible: extensible, Fields: alternatives}
}

// OpenTypeOf is an open type whose actual type is selected by the value
// of the sibling component key.
func OpenTypeOf(key string, types map[int64]*Type) *Type {
	return &Type{Kind: OpenType, Open: &OpenTable{Key: key, Types: types}}
}

// Required is a mandatory SEQUENCE component or a CHOICE alternative.
func Required(name string, t *Type) Field {
	return Field{Name: name, Type: t}
}

// Optional is an OPTIONAL SEQUENCE component.
func Optional(name string, t *Type) Field {
	return Field{Name: name, Type: t, Optional: true}
}
