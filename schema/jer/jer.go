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

// Package jer implements the JSON Encoding Rules (ITU-T X.697) over schema
// types, producing minified output.
//
// SEQUENCE components are written in definition order. ENUMERATED values
// are identifier strings. OCTET STRING and fixed-size BIT STRING values are
// upper-case hex strings; other BIT STRING values are objects carrying the
// hex "value" and the bit "length". A CHOICE, or an open type whose carried
// type is known, is an object with a single member named after the
// alternative or the carried type. An open type whose carried type is
// unknown is the hex string of its PER encoding.
package jer

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bufbuild/asntransform/schema"
)

var (
	// ErrSyntax indicates input that is not valid JSON, or JSON whose shape
	// does not match the expected type.
	ErrSyntax = errors.New("jer: malformed input")
	// ErrValue indicates a value that cannot be encoded as the given type.
	ErrValue = errors.New("jer: value cannot be encoded")
)

// Marshal returns the minified JER encoding of v as type t.
func Marshal(t *schema.Type, v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := encoder{buf: &buf, str: json.NewEncoder(&buf)}
	enc.str.SetEscapeHTML(false)
	if err := enc.encode(t, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a JER document holding a single value of type t.
func Unmarshal(t *schema.Type, data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: data after the top-level value", ErrSyntax)
	}
	return decode(t, doc, nil)
}

// fixedBits reports whether BIT STRING values of t are written as plain hex.
func fixedBits(t *schema.Type) bool {
	return t.Size != nil && t.Size.Fixed() && !t.Extensible
}

func upperHex(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

type encoder struct {
	buf *bytes.Buffer
	str *json.Encoder
}

func mismatch(t *schema.Type, v any) error {
	return fmt.Errorf("%w: %v cannot hold %T", ErrValue, t, v)
}

func (e *encoder) string(s string) error {
	if err := e.str.Encode(s); err != nil {
		return err
	}
	// Encode terminates every value with a newline.
	e.buf.Truncate(e.buf.Len() - 1)
	return nil
}

//nolint:gocyclo
func (e *encoder) encode(t *schema.Type, v any) error {
	switch t.Kind {
	case schema.Integer:
		n, ok := v.(int64)
		if !ok {
			return mismatch(t, v)
		}
		e.buf.WriteString(strconv.FormatInt(n, 10))
	case schema.Boolean:
		b, ok := v.(bool)
		if !ok {
			return mismatch(t, v)
		}
		e.buf.WriteString(strconv.FormatBool(b))
	case schema.Enumerated:
		item, ok := v.(schema.Enum)
		if !ok {
			return mismatch(t, v)
		}
		return e.string(string(item))
	case schema.BitStringKind:
		b, ok := v.(schema.BitString)
		if !ok {
			return mismatch(t, v)
		}
		used := b.Bytes
		if n := (b.Length + 7) / 8; n < len(used) {
			used = used[:n]
		}
		if fixedBits(t) {
			return e.string(upperHex(used))
		}
		e.buf.WriteString(`{"value":"`)
		e.buf.WriteString(upperHex(used))
		e.buf.WriteString(`","length":`)
		e.buf.WriteString(strconv.Itoa(b.Length))
		e.buf.WriteByte('}')
	case schema.OctetString:
		b, ok := v.([]byte)
		if !ok {
			return mismatch(t, v)
		}
		return e.string(upperHex(b))
	case schema.IA5String:
		s, ok := v.(string)
		if !ok {
			return mismatch(t, v)
		}
		return e.string(s)
	case schema.NullKind:
		if _, ok := v.(schema.Null); !ok {
			return mismatch(t, v)
		}
		e.buf.WriteString("null")
	case schema.Sequence:
		rec, ok := v.(schema.Record)
		if !ok {
			return mismatch(t, v)
		}
		e.buf.WriteByte('{')
		first := true
		for _, f := range t.Fields {
			val, present := rec[f.Name]
			if !present {
				continue
			}
			if !first {
				e.buf.WriteByte(',')
			}
			first = false
			if err := e.member(f.Name, f.Type, val); err != nil {
				return err
			}
		}
		e.buf.WriteByte('}')
	case schema.SequenceOf:
		items, ok := v.([]any)
		if !ok {
			return mismatch(t, v)
		}
		e.buf.WriteByte('[')
		for i, item := range items {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			if err := e.encode(t.Elem, item); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		e.buf.WriteByte(']')
	case schema.ChoiceKind:
		c, ok := v.(schema.Choice)
		if !ok {
			return mismatch(t, v)
		}
		alt, _, found := t.Field(c.Name)
		if !found {
			return fmt.Errorf("%w: %q is not an alternative of %v", ErrValue, c.Name, t)
		}
		e.buf.WriteByte('{')
		if err := e.member(alt.Name, alt.Type, c.Value); err != nil {
			return err
		}
		e.buf.WriteByte('}')
	case schema.OpenType:
		ov, ok := v.(*schema.OpenValue)
		if !ok || ov == nil {
			return mismatch(t, v)
		}
		if ov.Type == nil {
			return e.string(upperHex(ov.Raw))
		}
		e.buf.WriteByte('{')
		if err := e.member(ov.Type.TagName(), ov.Type, ov.Value); err != nil {
			return err
		}
		e.buf.WriteByte('}')
	default:
		return fmt.Errorf("%w: type kind %v", ErrValue, t.Kind)
	}
	return nil
}

func (e *encoder) member(name string, t *schema.Type, v any) error {
	if err := e.string(name); err != nil {
		return err
	}
	e.buf.WriteByte(':')
	if err := e.encode(t, v); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func shape(t *schema.Type, v any) error {
	if v == nil {
		return fmt.Errorf("%w: %v cannot be null", ErrSyntax, t)
	}
	return fmt.Errorf("%w: %v cannot be read from a JSON %s", ErrSyntax, t, jsonKind(v))
}

func jsonKind(v any) string {
	switch v.(type) {
	case json.Number:
		return "number"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

//nolint:gocyclo
func decode(t *schema.Type, v any, parent schema.Record) (any, error) {
	switch t.Kind {
	case schema.Integer:
		num, ok := v.(json.Number)
		if !ok {
			return nil, shape(t, v)
		}
		n, err := num.Int64()
		if err != nil {
			return nil, fmt.Errorf("%w: invalid INTEGER %s", ErrSyntax, num)
		}
		return n, nil
	case schema.Boolean:
		b, ok := v.(bool)
		if !ok {
			return nil, shape(t, v)
		}
		return b, nil
	case schema.Enumerated:
		s, ok := v.(string)
		if !ok {
			return nil, shape(t, v)
		}
		return schema.Enum(s), nil
	case schema.BitStringKind:
		return decodeBits(t, v)
	case schema.OctetString:
		s, ok := v.(string)
		if !ok {
			return nil, shape(t, v)
		}
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid OCTET STRING: %v", ErrSyntax, err)
		}
		return b, nil
	case schema.IA5String:
		s, ok := v.(string)
		if !ok {
			return nil, shape(t, v)
		}
		return s, nil
	case schema.NullKind:
		if v != nil {
			return nil, shape(t, v)
		}
		return schema.Null{}, nil
	case schema.Sequence:
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, shape(t, v)
		}
		for name := range obj {
			if _, _, found := t.Field(name); !found {
				return nil, fmt.Errorf("%w: unknown component %q of %v", ErrSyntax, name, t)
			}
		}
		rec := make(schema.Record, len(obj))
		for _, f := range t.Fields {
			member, present := obj[f.Name]
			if !present {
				continue
			}
			val, err := decode(f.Type, member, rec)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.Name, err)
			}
			rec[f.Name] = val
		}
		return rec, nil
	case schema.SequenceOf:
		arr, ok := v.([]any)
		if !ok {
			return nil, shape(t, v)
		}
		items := make([]any, 0, len(arr))
		for i, elem := range arr {
			item, err := decode(t.Elem, elem, nil)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			items = append(items, item)
		}
		return items, nil
	case schema.ChoiceKind:
		name, member, err := single(t, v)
		if err != nil {
			return nil, err
		}
		alt, _, found := t.Field(name)
		if !found {
			return nil, fmt.Errorf("%w: unknown alternative %q of %v", ErrSyntax, name, t)
		}
		val, err := decode(alt.Type, member, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return schema.Choice{Name: name, Value: val}, nil
	case schema.OpenType:
		return decodeOpen(t, v, parent)
	default:
		return nil, fmt.Errorf("%w: type kind %v", ErrSyntax, t.Kind)
	}
}

// single unpacks an object that must have exactly one member.
func single(t *schema.Type, v any) (string, any, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return "", nil, shape(t, v)
	}
	if len(obj) != 1 {
		return "", nil, fmt.Errorf("%w: %v needs exactly one member, found %d", ErrSyntax, t, len(obj))
	}
	for name, member := range obj {
		return name, member, nil
	}
	return "", nil, nil
}

func decodeBits(t *schema.Type, v any) (any, error) {
	switch v := v.(type) {
	case string:
		b, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid BIT STRING: %v", ErrSyntax, err)
		}
		length := len(b) * 8
		if fixedBits(t) && int(t.Size.Lower) <= length {
			length = int(t.Size.Lower)
		}
		return schema.BitString{Bytes: b, Length: length}, nil
	case map[string]any:
		value, ok := v["value"].(string)
		if !ok {
			return nil, fmt.Errorf("%w: BIT STRING object needs a \"value\" string", ErrSyntax)
		}
		num, ok := v["length"].(json.Number)
		if !ok {
			return nil, fmt.Errorf("%w: BIT STRING object needs a \"length\" number", ErrSyntax)
		}
		b, err := hex.DecodeString(value)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid BIT STRING: %v", ErrSyntax, err)
		}
		length, err := num.Int64()
		if err != nil || length < 0 || length > int64(len(b))*8 {
			return nil, fmt.Errorf("%w: BIT STRING length %s does not fit %d octets", ErrSyntax, num, len(b))
		}
		return schema.BitString{Bytes: b, Length: int(length)}, nil
	default:
		return nil, shape(t, v)
	}
}

func decodeOpen(t *schema.Type, v any, parent schema.Record) (any, error) {
	if s, ok := v.(string); ok {
		raw, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid open type encoding: %v", ErrSyntax, err)
		}
		return &schema.OpenValue{Raw: raw}, nil
	}
	name, member, err := single(t, v)
	if err != nil {
		return nil, err
	}
	var actual *schema.Type
	if t.Open != nil && parent != nil {
		if id, ok := parent[t.Open.Key].(int64); ok {
			if want := t.Open.Resolve(id); want != nil && want.TagName() == name {
				actual = want
			}
		}
	}
	if actual == nil {
		actual = t.Open.ByName(name)
	}
	if actual == nil {
		return nil, fmt.Errorf("%w: unknown carried type %q", ErrSyntax, name)
	}
	val, err := decode(actual, member, nil)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", actual, err)
	}
	return &schema.OpenValue{Type: actual, Value: val}, nil
}
