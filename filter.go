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
	"reflect"

	"github.com/bufbuild/asntransform/schema"
)

// Filters is a slice of filters. When there is more than one element, they
// are applied in order. In other words, the first filter is evaluated first.
// The result of that is then provided as input to the second, and so on.
type Filters []Filter

// do runs the filters in order. When a filter returns a value other than
// the one it was given, replaced, if not nil, receives the value given.
func (f Filters) do(t *schema.Type, v any, replaced func(any)) any {
	for _, filter := range f {
		next := filter(t, v)
		if replaced != nil && !sameValue(v, next) {
			replaced(v)
		}
		v = next
	}
	return v
}

// sameValue reports whether a and b are the same value: the same map,
// slice or pointer, or equal comparable values.
func sameValue(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Map, reflect.Pointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	return va.Comparable() && vb.Comparable() && va.Equal(vb)
}

// Filter provides a way for user-provided logic to alter the value being
// converted. It runs after decoding and before constraint checking, so
// whatever it returns must still satisfy the type's constraints. It can
// return a derived value, or it can mutate the given value and return it.
type Filter func(t *schema.Type, v any) any

// Redact returns a Filter that removes OPTIONAL components from a value. It
// invokes the given predicate for each OPTIONAL component present in the
// value (including in nested values and in the messages carried by open
// types) and removes the component if the predicate returns true.
// Mandatory components are never removed.
func Redact(predicate func(schema.Field) bool) Filter {
	return func(t *schema.Type, v any) any {
		redactValue(t, v, predicate)
		return v
	}
}

// IsRegionalExtension can be used as a predicate, with [Redact], to drop
// the region specific "regional" extension lists that most J2735
// structures may carry.
func IsRegionalExtension(f schema.Field) bool {
	return f.Name == "regional" && f.Type.Kind == schema.SequenceOf
}

// IsUnresolvedOpenType can be used as a predicate, with [Redact], to drop
// OPTIONAL components whose content stays encoded because no type is
// registered for it, such as BSM part II extensions.
func IsUnresolvedOpenType(f schema.Field) bool {
	elem := f.Type
	if elem.Kind == schema.SequenceOf {
		elem = elem.Elem
	}
	if elem.Kind != schema.Sequence {
		return false
	}
	for _, inner := range elem.Fields {
		if inner.Type.Kind == schema.OpenType && (inner.Type.Open == nil || len(inner.Type.Open.Types) == 0) {
			return true
		}
	}
	return false
}

func redactValue(t *schema.Type, v any, redaction func(schema.Field) bool) {
	switch t.Kind {
	case schema.Sequence:
		rec, ok := v.(schema.Record)
		if !ok {
			return
		}
		for _, f := range t.Fields {
			val, present := rec[f.Name]
			if !present {
				continue
			}
			if f.Optional && redaction(f) {
				schema.Release(f.Type, val)
				delete(rec, f.Name)
				continue
			}
			redactValue(f.Type, val, redaction)
		}
	case schema.SequenceOf:
		items, ok := v.([]any)
		if !ok {
			return
		}
		for _, item := range items {
			redactValue(t.Elem, item, redaction)
		}
	case schema.ChoiceKind:
		c, ok := v.(schema.Choice)
		if !ok {
			return
		}
		if alt, _, found := t.Field(c.Name); found {
			redactValue(alt.Type, c.Value, redaction)
		}
	case schema.OpenType:
		if ov, ok := v.(*schema.OpenValue); ok && ov != nil && ov.Type != nil {
			redactValue(ov.Type, ov.Value, redaction)
		}
	}
}
