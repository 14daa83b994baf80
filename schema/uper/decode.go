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

type decoder struct {
	r bitReader
}

//nolint:gocyclo
func (d *decoder) decode(t *schema.Type, parent schema.Record) (any, error) {
	switch t.Kind {
	case schema.Integer:
		return d.integer(t)
	case schema.Boolean:
		return d.r.readBit()
	case schema.Enumerated:
		if t.Extensible {
			ext, err := d.r.readBit()
			if err != nil {
				return nil, err
			}
			if ext {
				idx, err := d.normallySmall()
				if err != nil {
					return nil, err
				}
				return nil, fmt.Errorf("%w: extension value %d of %v", ErrUnsupported, idx, t)
			}
		}
		idx, err := d.constrainedWhole(uint64(len(t.Items) - 1))
		if err != nil {
			return nil, err
		}
		if idx >= uint64(len(t.Items)) {
			return nil, fmt.Errorf("%w: enumeration index %d of %v", ErrInvalid, idx, t)
		}
		return schema.Enum(t.Items[idx]), nil
	case schema.BitStringKind:
		n, err := d.length(t.Size, t.Extensible)
		if err != nil {
			return nil, err
		}
		if d.r.remaining() < n {
			return nil, errTruncatedAt(d.r.pos)
		}
		out := schema.BitString{Bytes: make([]byte, (n+7)/8), Length: n}
		for i := 0; i < n; i++ {
			set, err := d.r.readBit()
			if err != nil {
				return nil, err
			}
			if set {
				out.Bytes[i/8] |= 0x80 >> (i % 8)
			}
		}
		return out, nil
	case schema.OctetString:
		n, err := d.length(t.Size, t.Extensible)
		if err != nil {
			return nil, err
		}
		return d.r.readBytes(n)
	case schema.IA5String:
		n, err := d.length(t.Size, t.Extensible)
		if err != nil {
			return nil, err
		}
		if d.r.remaining() < n*7 {
			return nil, errTruncatedAt(d.r.pos)
		}
		chars := make([]byte, n)
		for i := range chars {
			c, err := d.r.readBits(7)
			if err != nil {
				return nil, err
			}
			chars[i] = byte(c)
		}
		return string(chars), nil
	case schema.NullKind:
		return schema.Null{}, nil
	case schema.Sequence:
		return d.sequence(t)
	case schema.SequenceOf:
		n, err := d.length(t.Size, t.Extensible)
		if err != nil {
			return nil, err
		}
		items := make([]any, 0, n)
		for i := 0; i < n; i++ {
			item, err := d.decode(t.Elem, nil)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			items = append(items, item)
		}
		return items, nil
	case schema.ChoiceKind:
		return d.choice(t)
	case schema.OpenType:
		return d.open(t, parent)
	default:
		return nil, fmt.Errorf("%w: type kind %v", ErrUnsupported, t.Kind)
	}
}

func (d *decoder) sequence(t *schema.Type) (any, error) {
	extended := false
	if t.Extensible {
		var err error
		if extended, err = d.r.readBit(); err != nil {
			return nil, err
		}
	}
	present := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		if !f.Optional {
			present[f.Name] = true
			continue
		}
		bit, err := d.r.readBit()
		if err != nil {
			return nil, err
		}
		present[f.Name] = bit
	}
	rec := make(schema.Record, len(t.Fields))
	for _, f := range t.Fields {
		if !present[f.Name] {
			continue
		}
		val, err := d.decode(f.Type, rec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		rec[f.Name] = val
	}
	if extended {
		if err := d.skipExtensions(); err != nil {
			return nil, fmt.Errorf("%v extensions: %w", t, err)
		}
	}
	return rec, nil
}

// skipExtensions consumes the extension addition bitmap and every present
// addition, each of which is wrapped as an open type.
func (d *decoder) skipExtensions() error {
	count, err := d.normallySmallLength()
	if err != nil {
		return err
	}
	bitmap := make([]bool, count)
	for i := range bitmap {
		if bitmap[i], err = d.r.readBit(); err != nil {
			return err
		}
	}
	for _, present := range bitmap {
		if !present {
			continue
		}
		n, err := d.lengthDeterminant()
		if err != nil {
			return err
		}
		if _, err := d.r.readBytes(n); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) choice(t *schema.Type) (any, error) {
	if t.Extensible {
		ext, err := d.r.readBit()
		if err != nil {
			return nil, err
		}
		if ext {
			idx, err := d.normallySmall()
			if err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: extension alternative %d of %v", ErrUnsupported, idx, t)
		}
	}
	idx, err := d.constrainedWhole(uint64(len(t.Fields) - 1))
	if err != nil {
		return nil, err
	}
	if idx >= uint64(len(t.Fields)) {
		return nil, fmt.Errorf("%w: alternative index %d of %v", ErrInvalid, idx, t)
	}
	alt := t.Fields[idx]
	val, err := d.decode(alt.Type, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", alt.Name, err)
	}
	return schema.Choice{Name: alt.Name, Value: val}, nil
}

func (d *decoder) open(t *schema.Type, parent schema.Record) (any, error) {
	n, err := d.lengthDeterminant()
	if err != nil {
		return nil, err
	}
	inner, err := d.r.readBytes(n)
	if err != nil {
		return nil, err
	}
	var actual *schema.Type
	if t.Open != nil && parent != nil {
		if id, ok := parent[t.Open.Key].(int64); ok {
			actual = t.Open.Resolve(id)
		}
	}
	if actual == nil {
		return &schema.OpenValue{Raw: inner}, nil
	}
	val, err := Unmarshal(actual, inner)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", actual, err)
	}
	return &schema.OpenValue{Type: actual, Value: val}, nil
}

func (d *decoder) integer(t *schema.Type) (int64, error) {
	if t.Range == nil {
		return d.unconstrained()
	}
	if t.Extensible {
		ext, err := d.r.readBit()
		if err != nil {
			return 0, err
		}
		if ext {
			return d.unconstrained()
		}
	}
	offset, err := d.constrainedWhole(uint64(t.Range.Upper - t.Range.Lower))
	if err != nil {
		return 0, err
	}
	return t.Range.Lower + int64(offset), nil
}

func (d *decoder) constrainedWhole(span uint64) (uint64, error) {
	if span == 0 {
		return 0, nil
	}
	return d.r.readBits(rangeBits(span))
}

func (d *decoder) unconstrained() (int64, error) {
	n, err := d.lengthDeterminant()
	if err != nil {
		return 0, err
	}
	if n == 0 || n > 8 {
		return 0, fmt.Errorf("%w: %d-octet integer", ErrUnsupported, n)
	}
	octets, err := d.r.readBytes(n)
	if err != nil {
		return 0, err
	}
	v := int64(int8(octets[0]))
	for _, b := range octets[1:] {
		v = v<<8 | int64(b)
	}
	return v, nil
}

func (d *decoder) lengthDeterminant() (int, error) {
	long, err := d.r.readBit()
	if err != nil {
		return 0, err
	}
	if !long {
		n, err := d.r.readBits(7)
		return int(n), err
	}
	fragmented, err := d.r.readBit()
	if err != nil {
		return 0, err
	}
	if fragmented {
		return 0, fmt.Errorf("%w: fragmented length", ErrUnsupported)
	}
	n, err := d.r.readBits(14)
	return int(n), err
}

func (d *decoder) length(size *schema.Range, extensible bool) (int, error) {
	if size == nil {
		return d.lengthDeterminant()
	}
	if extensible {
		ext, err := d.r.readBit()
		if err != nil {
			return 0, err
		}
		if ext {
			return d.lengthDeterminant()
		}
	}
	if size.Upper >= 65536 {
		return d.lengthDeterminant()
	}
	offset, err := d.constrainedWhole(uint64(size.Upper - size.Lower))
	if err != nil {
		return 0, err
	}
	return int(size.Lower) + int(offset), nil
}

// normallySmall reads a normally small non-negative whole number.
func (d *decoder) normallySmall() (uint64, error) {
	large, err := d.r.readBit()
	if err != nil {
		return 0, err
	}
	if !large {
		return d.r.readBits(6)
	}
	n, err := d.lengthDeterminant()
	if err != nil {
		return 0, err
	}
	if n == 0 || n > 8 {
		return 0, fmt.Errorf("%w: %d-octet whole number", ErrUnsupported, n)
	}
	return d.r.readBits(8 * n)
}

// normallySmallLength reads a normally small length, which encodes n-1.
func (d *decoder) normallySmallLength() (int, error) {
	large, err := d.r.readBit()
	if err != nil {
		return 0, err
	}
	if !large {
		n, err := d.r.readBits(6)
		return int(n) + 1, err
	}
	return d.lengthDeterminant()
}
