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

package uper

import (
	"fmt"

	"github.com/bufbuild/asntransform/schema"
)

type encoder struct {
	w bitWriter
}

func mismatch(t *schema.Type, v any) error {
	return fmt.Errorf("%w: %v cannot hold %T", ErrValue, t, v)
}

//nolint:gocyclo
func (e *encoder) encode(t *schema.Type, v any, parent schema.Record) error {
	switch t.Kind {
	case schema.Integer:
		n, ok := v.(int64)
		if !ok {
			return mismatch(t, v)
		}
		return e.integer(t, n)
	case schema.Boolean:
		b, ok := v.(bool)
		if !ok {
			return mismatch(t, v)
		}
		e.w.writeBit(b)
	case schema.Enumerated:
		item, ok := v.(schema.Enum)
		if !ok {
			return mismatch(t, v)
		}
		idx := t.ItemIndex(string(item))
		if idx < 0 {
			return fmt.Errorf("%w: %q is not an identifier of %v", ErrValue, string(item), t)
		}
		if t.Extensible {
			e.w.writeBit(false)
		}
		e.constrainedWhole(uint64(idx), uint64(len(t.Items)-1))
	case schema.BitStringKind:
		b, ok := v.(schema.BitString)
		if !ok {
			return mismatch(t, v)
		}
		if err := e.length(t.Size, t.Extensible, b.Length); err != nil {
			return err
		}
		for i := 0; i < b.Length; i++ {
			e.w.writeBit(b.At(i))
		}
	case schema.OctetString:
		b, ok := v.([]byte)
		if !ok {
			return mismatch(t, v)
		}
		if err := e.length(t.Size, t.Extensible, len(b)); err != nil {
			return err
		}
		e.w.writeBytes(b)
	case schema.IA5String:
		s, ok := v.(string)
		if !ok {
			return mismatch(t, v)
		}
		if err := e.length(t.Size, t.Extensible, len(s)); err != nil {
			return err
		}
		for i := 0; i < len(s); i++ {
			if s[i] > 0x7f {
				return fmt.Errorf("%w: non-IA5 character 0x%02x", ErrValue, s[i])
			}
			e.w.writeBits(uint64(s[i]), 7)
		}
	case schema.NullKind:
		if _, ok := v.(schema.Null); !ok {
			return mismatch(t, v)
		}
	case schema.Sequence:
		return e.sequence(t, v)
	case schema.SequenceOf:
		items, ok := v.([]any)
		if !ok {
			return mismatch(t, v)
		}
		if err := e.length(t.Size, t.Extensible, len(items)); err != nil {
			return err
		}
		for i, item := range items {
			if err := e.encode(t.Elem, item, nil); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
	case schema.ChoiceKind:
		c, ok := v.(schema.Choice)
		if !ok {
			return mismatch(t, v)
		}
		alt, idx, found := t.Field(c.Name)
		if !found {
			return fmt.Errorf("%w: %q is not an alternative of %v", ErrValue, c.Name, t)
		}
		if t.Extensible {
			e.w.writeBit(false)
		}
		e.constrainedWhole(uint64(idx), uint64(len(t.Fields)-1))
		if err := e.encode(alt.Type, c.Value, nil); err != nil {
			return fmt.Errorf("%s: %w", c.Name, err)
		}
	case schema.OpenType:
		return e.open(v)
	default:
		return fmt.Errorf("%w: type kind %v", ErrUnsupported, t.Kind)
	}
	return nil
}

func (e *encoder) sequence(t *schema.Type, v any) error {
	rec, ok := v.(schema.Record)
	if !ok {
		return mismatch(t, v)
	}
	if t.Extensible {
		e.w.writeBit(false)
	}
	for _, f := range t.Fields {
		if f.Optional {
			_, present := rec[f.Name]
			e.w.writeBit(present)
		}
	}
	for _, f := range t.Fields {
		val, present := rec[f.Name]
		if !present {
			if !f.Optional {
				return fmt.Errorf("%w: mandatory component %q missing", ErrValue, f.Name)
			}
			continue
		}
		if err := e.encode(f.Type, val, rec); err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
	}
	return nil
}

func (e *encoder) open(v any) error {
	ov, ok := v.(*schema.OpenValue)
	if !ok || ov == nil {
		return fmt.Errorf("%w: open type cannot hold %T", ErrValue, v)
	}
	inner := ov.Raw
	if ov.Type != nil {
		var err error
		if inner, err = Marshal(ov.Type, ov.Value); err != nil {
			return fmt.Errorf("%v: %w", ov.Type, err)
		}
	}
	if len(inner) == 0 {
		inner = []byte{0}
	}
	if err := e.lengthDeterminant(len(inner)); err != nil {
		return err
	}
	e.w.writeBytes(inner)
	return nil
}

func (e *encoder) integer(t *schema.Type, n int64) error {
	if t.Range == nil {
		return e.unconstrained(n)
	}
	if t.Extensible {
		inRoot := t.Range.Contains(n)
		e.w.writeBit(!inRoot)
		if !inRoot {
			return e.unconstrained(n)
		}
	}
	if !t.Range.Contains(n) {
		return fmt.Errorf("%w: %d outside %v", ErrValue, n, *t.Range)
	}
	e.constrainedWhole(uint64(n-t.Range.Lower), uint64(t.Range.Upper-t.Range.Lower))
	return nil
}

func (e *encoder) constrainedWhole(offset, span uint64) {
	if span == 0 {
		return
	}
	e.w.writeBits(offset, rangeBits(span))
}

func (e *encoder) unconstrained(n int64) error {
	size := 1
	for ; size < 8; size++ {
		limit := int64(1) << (8*size - 1)
		if n >= -limit && n < limit {
			break
		}
	}
	octets := make([]byte, size)
	for i := size - 1; i >= 0; i-- {
		octets[i] = byte(n)
		n >>= 8
	}
	if err := e.lengthDeterminant(size); err != nil {
		return err
	}
	e.w.writeBytes(octets)
	return nil
}

func (e *encoder) lengthDeterminant(n int) error {
	switch {
	case n < 0:
		return fmt.Errorf("%w: negative length %d", ErrValue, n)
	case n < 128:
		e.w.writeBits(uint64(n), 8)
	case n < 16384:
		e.w.writeBits(0b10, 2)
		e.w.writeBits(uint64(n), 14)
	default:
		return fmt.Errorf("%w: length %d needs fragmentation", ErrUnsupported, n)
	}
	return nil
}

func (e *encoder) length(size *schema.Range, extensible bool, n int) error {
	if size == nil {
		return e.lengthDeterminant(n)
	}
	if extensible {
		inRoot := size.Contains(int64(n))
		e.w.writeBit(!inRoot)
		if !inRoot {
			return e.lengthDeterminant(n)
		}
	}
	if !size.Contains(int64(n)) {
		return fmt.Errorf("%w: size %d outside %v", ErrValue, n, *size)
	}
	if size.Upper >= 65536 {
		return e.lengthDeterminant(n)
	}
	e.constrainedWhole(uint64(int64(n)-size.Lower), uint64(size.Upper-size.Lower))
	return nil
}
