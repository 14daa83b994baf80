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

// Package xer implements the canonical XML Encoding Rules (ITU-T X.693,
// CANONICAL-XER) over schema types.
//
// The encoder emits no whitespace and no XML declaration. BOOLEAN, ENUMERATED
// and NULL values use the empty-element form, OCTET STRING is upper-case hex
// and BIT STRING is a run of 0 and 1 characters. A CHOICE or an open type
// value is an element named after the chosen alternative or the carried type,
// nested inside the element of the component. An open type whose carried
// type is unknown holds the hex of its PER encoding as text.
package xer

import (
	"bytes"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bufbuild/asntransform/schema"
)

// ErrValue indicates a value that cannot be encoded as the given type.
var ErrValue = errors.New("xer: value cannot be encoded")

// Marshal returns the canonical XER encoding of v as type t.
func Marshal(t *schema.Type, v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := encoder{buf: &buf}
	if err := enc.element(t.TagName(), t, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type encoder struct {
	buf *bytes.Buffer
}

func mismatch(t *schema.Type, v any) error {
	return fmt.Errorf("%w: %v cannot hold %T", ErrValue, t, v)
}

// controlNames are the X.693 escape elements for the IA5 control
// characters 0x00 to 0x1F.
var controlNames = [...]string{
	"nul", "soh", "stx", "etx", "eot", "enq", "ack", "bel",
	"bs", "ht", "lf", "vt", "ff", "cr", "so", "si",
	"dle", "dc1", "dc2", "dc3", "dc4", "nak", "syn", "etb",
	"can", "em", "sub", "esc", "is4", "is3", "is2", "is1",
}

const delName = "del"

var controlCodes = func() map[string]byte {
	codes := make(map[string]byte, len(controlNames)+1)
	for i, name := range controlNames {
		codes[name] = byte(i)
	}
	codes[delName] = 0x7f
	return codes
}()

// escapeIA5 escapes s as XML character data, writing each control
// character as its escape element.
func escapeIA5(s string) (string, error) {
	var buf bytes.Buffer
	last := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != 0x7f {
			continue
		}
		if err := xml.EscapeText(&buf, []byte(s[last:i])); err != nil {
			return "", err
		}
		buf.WriteByte('<')
		if c == 0x7f {
			buf.WriteString(delName)
		} else {
			buf.WriteString(controlNames[c])
		}
		buf.WriteString("/>")
		last = i + 1
	}
	if err := xml.EscapeText(&buf, []byte(s[last:])); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *encoder) open(name string) {
	e.buf.WriteByte('<')
	e.buf.WriteString(name)
	e.buf.WriteByte('>')
}

func (e *encoder) close(name string) {
	e.buf.WriteString("</")
	e.buf.WriteString(name)
	e.buf.WriteByte('>')
}

func (e *encoder) empty(name string) {
	e.buf.WriteByte('<')
	e.buf.WriteString(name)
	e.buf.WriteString("/>")
}

func (e *encoder) text(name, content string) {
	if content == "" {
		e.empty(name)
		return
	}
	e.open(name)
	e.buf.WriteString(content)
	e.close(name)
}

// nested writes <name>inner</name>, or <name/> if inner writes nothing.
func (e *encoder) nested(name string, inner func() error) error {
	start := e.buf.Len()
	e.open(name)
	bodyStart := e.buf.Len()
	if err := inner(); err != nil {
		return err
	}
	if e.buf.Len() == bodyStart {
		e.buf.Truncate(start)
		e.empty(name)
		return nil
	}
	e.close(name)
	return nil
}

//nolint:gocyclo
func (e *encoder) element(name string, t *schema.Type, v any) error {
	switch t.Kind {
	case schema.Integer:
		n, ok := v.(int64)
		if !ok {
			return mismatch(t, v)
		}
		e.text(name, strconv.FormatInt(n, 10))
	case schema.Boolean:
		b, ok := v.(bool)
		if !ok {
			return mismatch(t, v)
		}
		e.open(name)
		e.empty(strconv.FormatBool(b))
		e.close(name)
	case schema.Enumerated:
		item, ok := v.(schema.Enum)
		if !ok {
			return mismatch(t, v)
		}
		e.open(name)
		e.empty(string(item))
		e.close(name)
	case schema.BitStringKind:
		b, ok := v.(schema.BitString)
		if !ok {
			return mismatch(t, v)
		}
		var sb strings.Builder
		for i := 0; i < b.Length; i++ {
			if b.At(i) {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		e.text(name, sb.String())
	case schema.OctetString:
		b, ok := v.([]byte)
		if !ok {
			return mismatch(t, v)
		}
		e.text(name, strings.ToUpper(hex.EncodeToString(b)))
	case schema.IA5String:
		s, ok := v.(string)
		if !ok {
			return mismatch(t, v)
		}
		escaped, err := escapeIA5(s)
		if err != nil {
			return err
		}
		e.text(name, escaped)
	case schema.NullKind:
		if _, ok := v.(schema.Null); !ok {
			return mismatch(t, v)
		}
		e.empty(name)
	case schema.Sequence:
		rec, ok := v.(schema.Record)
		if !ok {
			return mismatch(t, v)
		}
		return e.nested(name, func() error {
			for _, f := range t.Fields {
				val, present := rec[f.Name]
				if !present {
					continue
				}
				if err := e.element(f.Name, f.Type, val); err != nil {
					return fmt.Errorf("%s: %w", f.Name, err)
				}
			}
			return nil
		})
	case schema.SequenceOf:
		items, ok := v.([]any)
		if !ok {
			return mismatch(t, v)
		}
		return e.nested(name, func() error {
			for i, item := range items {
				if err := e.item(t.Elem, item); err != nil {
					return fmt.Errorf("[%d]: %w", i, err)
				}
			}
			return nil
		})
	case schema.ChoiceKind:
		c, ok := v.(schema.Choice)
		if !ok {
			return mismatch(t, v)
		}
		alt, _, found := t.Field(c.Name)
		if !found {
			return fmt.Errorf("%w: %q is not an alternative of %v", ErrValue, c.Name, t)
		}
		return e.nested(name, func() error {
			return e.element(alt.Name, alt.Type, c.Value)
		})
	case schema.OpenType:
		ov, ok := v.(*schema.OpenValue)
		if !ok || ov == nil {
			return mismatch(t, v)
		}
		if ov.Type == nil {
			e.text(name, strings.ToUpper(hex.EncodeToString(ov.Raw)))
			return nil
		}
		return e.nested(name, func() error {
			return e.element(ov.Type.TagName(), ov.Type, ov.Value)
		})
	default:
		return fmt.Errorf("%w: type kind %v", ErrValue, t.Kind)
	}
	return nil
}

// item writes one SEQUENCE OF element. Anonymous BOOLEAN and ENUMERATED
// items are written in the value-list form, without a wrapping element.
func (e *encoder) item(t *schema.Type, v any) error {
	if t.Name == "" {
		switch t.Kind {
		case schema.Boolean:
			b, ok := v.(bool)
			if !ok {
				return mismatch(t, v)
			}
			e.empty(strconv.FormatBool(b))
			return nil
		case schema.Enumerated:
			item, ok := v.(schema.Enum)
			if !ok {
				return mismatch(t, v)
			}
			e.empty(string(item))
			return nil
		}
	}
	return e.element(t.TagName(), t, v)
}
