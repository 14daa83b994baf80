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

import (
	"fmt"
	"strconv"
)

// MaxDiagnosticLen bounds the length of a constraint diagnostic.
const MaxDiagnosticLen = 256

// ConstraintError reports the first constraint a value violates.
type ConstraintError struct {
	// Path locates the offending value, e.g. "SPAT.intersections[0].revision".
	Path   string
	Reason string
}

func (e *ConstraintError) Error() string {
	return e.Diagnostic()
}

// Diagnostic returns the human-readable message, never longer than
// MaxDiagnosticLen bytes.
func (e *ConstraintError) Diagnostic() string {
	msg := e.Path + ": " + e.Reason
	if len(msg) > MaxDiagnosticLen {
		msg = msg[:MaxDiagnosticLen]
	}
	return msg
}

// Check validates v against the constraints declared by t: value ranges,
// SIZE constraints, the IA5 alphabet, enumeration identifiers, mandatory
// components, CHOICE alternatives and open type consistency. It returns nil
// or a *ConstraintError.
func Check(t *Type, v any) error {
	return check(t, v, t.TagName(), nil)
}

func violation(path, format string, args ...any) error {
	return &ConstraintError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

//nolint:gocyclo
func check(t *Type, v any, path string, parent Record) error {
	switch t.Kind {
	case Integer:
		n, ok := v.(int64)
		if !ok {
			return violation(path, "expected INTEGER, got %T", v)
		}
		if t.Range != nil && !t.Extensible && !t.Range.Contains(n) {
			return violation(path, "value %d out of range (%v)", n, *t.Range)
		}
	case Boolean:
		if _, ok := v.(bool); !ok {
			return violation(path, "expected BOOLEAN, got %T", v)
		}
	case Enumerated:
		e, ok := v.(Enum)
		if !ok {
			return violation(path, "expected ENUMERATED, got %T", v)
		}
		if t.ItemIndex(string(e)) < 0 {
			return violation(path, "unknown enumeration identifier %q", string(e))
		}
	case BitStringKind:
		b, ok := v.(BitString)
		if !ok {
			return violation(path, "expected BIT STRING, got %T", v)
		}
		if b.Length < 0 || len(b.Bytes)*8 < b.Length {
			return violation(path, "bit length %d does not fit %d octets", b.Length, len(b.Bytes))
		}
		return checkSize(t, b.Length, path)
	case OctetString:
		b, ok := v.([]byte)
		if !ok {
			return violation(path, "expected OCTET STRING, got %T", v)
		}
		return checkSize(t, len(b), path)
	case IA5String:
		s, ok := v.(string)
		if !ok {
			return violation(path, "expected IA5String, got %T", v)
		}
		for i := 0; i < len(s); i++ {
			if s[i] > 0x7f {
				return violation(path, "character 0x%02x at offset %d is not in the IA5 alphabet", s[i], i)
			}
		}
		return checkSize(t, len(s), path)
	case NullKind:
		if _, ok := v.(Null); !ok {
			return violation(path, "expected NULL, got %T", v)
		}
	case Sequence:
		return checkSequence(t, v, path)
	case SequenceOf:
		items, ok := v.([]any)
		if !ok {
			return violation(path, "expected SEQUENCE OF, got %T", v)
		}
		if err := checkSize(t, len(items), path); err != nil {
			return err
		}
		for i, item := range items {
			if err := check(t.Elem, item, path+"["+strconv.Itoa(i)+"]", nil); err != nil {
				return err
			}
		}
	case ChoiceKind:
		c, ok := v.(Choice)
		if !ok {
			return violation(path, "expected CHOICE, got %T", v)
		}
		alt, _, found := t.Field(c.Name)
		if !found {
			return violation(path, "unknown alternative %q", c.Name)
		}
		return check(alt.Type, c.Value, path+"."+c.Name, nil)
	case OpenType:
		return checkOpen(t, v, path, parent)
	default:
		return violation(path, "unsupported type kind %v", t.Kind)
	}
	return nil
}

func checkSequence(t *Type, v any, path string) error {
	rec, ok := v.(Record)
	if !ok {
		return violation(path, "expected SEQUENCE, got %T", v)
	}
	for name := range rec {
		if _, _, found := t.Field(name); !found {
			return violation(path, "unknown component %q", name)
		}
	}
	for _, f := range t.Fields {
		val, present := rec[f.Name]
		if !present {
			if !f.Optional {
				return violation(path, "mandatory component %q is missing", f.Name)
			}
			continue
		}
		if err := check(f.Type, val, path+"."+f.Name, rec); err != nil {
			return err
		}
	}
	return nil
}

func checkOpen(t *Type, v any, path string, parent Record) error {
	ov, ok := v.(*OpenValue)
	if !ok || ov == nil {
		return violation(path, "expected open type value, got %T", v)
	}
	if ov.Type == nil {
		if len(ov.Raw) == 0 {
			return violation(path, "open type carries no value")
		}
		return nil
	}
	if t.Open != nil && parent != nil {
		id, _ := parent[t.Open.Key].(int64)
		if want := t.Open.Resolve(id); want != ov.Type {
			return violation(path, "carried type %v does not match %s %d", ov.Type, t.Open.Key, id)
		}
	}
	return check(ov.Type, ov.Value, path+"."+ov.Type.TagName(), nil)
}

func checkSize(t *Type, n int, path string) error {
	if t.Size != nil && !t.Extensible && !t.Size.Contains(int64(n)) {
		return violation(path, "size %d out of range (%v)", n, *t.Size)
	}
	return nil
}
