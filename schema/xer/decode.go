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

package xer

import (
	"bytes"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bufbuild/asntransform/schema"
)

// ErrSyntax indicates input that is not well-formed XML, or XML whose
// structure does not match the expected type.
var ErrSyntax = errors.New("xer: malformed input")

// element is one node of the parsed document.
type element struct {
	name     string
	children []*element
	text     strings.Builder

	// offsets holds, per child, the length of text when the child began.
	offsets []int
}

func (e *element) content() string {
	return strings.TrimSpace(e.text.String())
}

// Unmarshal decodes an XER document holding a single value of type t. Both
// canonical and basic XER are accepted: whitespace between elements is
// ignored, and the value-list forms of BOOLEAN and ENUMERATED may also be
// written as text.
func Unmarshal(t *schema.Type, data []byte) (any, error) {
	root, err := parse(data)
	if err != nil {
		return nil, err
	}
	if root.name != t.TagName() {
		return nil, fmt.Errorf("%w: root element <%s>, expected <%s>", ErrSyntax, root.name, t.TagName())
	}
	return decode(t, root, nil)
}

func parse(data []byte) (*element, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	var (
		root  *element
		stack []*element
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			node := &element{name: tok.Name.Local}
			switch {
			case len(stack) > 0:
				top := stack[len(stack)-1]
				top.children = append(top.children, node)
				top.offsets = append(top.offsets, top.text.Len())
			case root != nil:
				return nil, fmt.Errorf("%w: more than one root element", ErrSyntax)
			default:
				root = node
			}
			stack = append(stack, node)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(tok)
			} else if len(bytes.TrimSpace(tok)) > 0 {
				return nil, fmt.Errorf("%w: text outside the root element", ErrSyntax)
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrSyntax)
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("%w: element <%s> is not closed", ErrSyntax, stack[len(stack)-1].name)
	}
	return root, nil
}

func structural(el *element, format string, args ...any) error {
	return fmt.Errorf("%w: <%s>: %s", ErrSyntax, el.name, fmt.Sprintf(format, args...))
}

func leaf(el *element) error {
	if len(el.children) > 0 {
		return structural(el, "unexpected child <%s>", el.children[0].name)
	}
	return nil
}

//nolint:gocyclo
func decode(t *schema.Type, el *element, parent schema.Record) (any, error) {
	switch t.Kind {
	case schema.Integer:
		if err := leaf(el); err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(el.content(), 10, 64)
		if err != nil {
			return nil, structural(el, "invalid INTEGER %q", el.content())
		}
		return n, nil
	case schema.Boolean:
		word, err := identifier(el)
		if err != nil {
			return nil, err
		}
		switch word {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, structural(el, "invalid BOOLEAN %q", word)
	case schema.Enumerated:
		word, err := identifier(el)
		if err != nil {
			return nil, err
		}
		return schema.Enum(word), nil
	case schema.BitStringKind:
		if err := leaf(el); err != nil {
			return nil, err
		}
		digits := stripSpace(el.text.String())
		flags := make([]bool, len(digits))
		for i, c := range digits {
			switch c {
			case '0':
			case '1':
				flags[i] = true
			default:
				return nil, structural(el, "invalid BIT STRING character %q", c)
			}
		}
		return schema.NewBitString(flags...), nil
	case schema.OctetString:
		if err := leaf(el); err != nil {
			return nil, err
		}
		b, err := hex.DecodeString(stripSpace(el.text.String()))
		if err != nil {
			return nil, structural(el, "invalid OCTET STRING: %v", err)
		}
		return b, nil
	case schema.IA5String:
		return decodeIA5(el)
	case schema.NullKind:
		if err := leaf(el); err != nil {
			return nil, err
		}
		if el.content() != "" {
			return nil, structural(el, "NULL has content")
		}
		return schema.Null{}, nil
	case schema.Sequence:
		return decodeSequence(t, el)
	case schema.SequenceOf:
		if el.content() != "" {
			return nil, structural(el, "unexpected text in SEQUENCE OF")
		}
		items := make([]any, 0, len(el.children))
		for i, child := range el.children {
			item, err := decodeItem(t.Elem, child)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			items = append(items, item)
		}
		return items, nil
	case schema.ChoiceKind:
		if len(el.children) != 1 {
			return nil, structural(el, "CHOICE needs exactly one alternative, found %d", len(el.children))
		}
		child := el.children[0]
		alt, _, found := t.Field(child.name)
		if !found {
			return nil, structural(el, "unknown alternative <%s>", child.name)
		}
		val, err := decode(alt.Type, child, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", alt.Name, err)
		}
		return schema.Choice{Name: alt.Name, Value: val}, nil
	case schema.OpenType:
		return decodeOpen(t, el, parent)
	default:
		return nil, fmt.Errorf("%w: type kind %v", ErrSyntax, t.Kind)
	}
}

// decodeIA5 reads character text in which control characters appear as
// empty escape elements, such as <nul/> or <del/>.
func decodeIA5(el *element) (any, error) {
	text := el.text.String()
	if len(el.children) == 0 {
		return text, nil
	}
	var sb strings.Builder
	last := 0
	for i, child := range el.children {
		c, ok := controlCodes[child.name]
		if !ok || len(child.children) > 0 || child.text.Len() > 0 {
			return nil, structural(el, "unexpected child <%s>", child.name)
		}
		sb.WriteString(text[last:el.offsets[i]])
		sb.WriteByte(c)
		last = el.offsets[i]
	}
	sb.WriteString(text[last:])
	return sb.String(), nil
}

// identifier returns the value of a BOOLEAN or ENUMERATED element, written
// either as a single empty child element or as text.
func identifier(el *element) (string, error) {
	switch len(el.children) {
	case 0:
		if word := el.content(); word != "" {
			return word, nil
		}
		return "", structural(el, "missing value")
	case 1:
		child := el.children[0]
		if len(child.children) > 0 || child.content() != "" {
			return "", structural(el, "value element <%s> is not empty", child.name)
		}
		if el.content() != "" {
			return "", structural(el, "unexpected text beside <%s/>", child.name)
		}
		return child.name, nil
	default:
		return "", structural(el, "more than one value")
	}
}

func decodeSequence(t *schema.Type, el *element) (any, error) {
	if el.content() != "" {
		return nil, structural(el, "unexpected text in SEQUENCE")
	}
	byName := make(map[string]*element, len(el.children))
	for _, child := range el.children {
		if _, _, found := t.Field(child.name); !found {
			return nil, structural(el, "unknown component <%s>", child.name)
		}
		if _, dup := byName[child.name]; dup {
			return nil, structural(el, "component <%s> repeated", child.name)
		}
		byName[child.name] = child
	}
	rec := make(schema.Record, len(byName))
	// Components are decoded in definition order so that an open type sees
	// the component that selects its type.
	for _, f := range t.Fields {
		child, present := byName[f.Name]
		if !present {
			continue
		}
		val, err := decode(f.Type, child, rec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		rec[f.Name] = val
	}
	return rec, nil
}

func decodeItem(t *schema.Type, el *element) (any, error) {
	if t.Name == "" && len(el.children) == 0 && el.content() == "" {
		switch t.Kind {
		case schema.Boolean:
			switch el.name {
			case "true":
				return true, nil
			case "false":
				return false, nil
			}
		case schema.Enumerated:
			return schema.Enum(el.name), nil
		}
	}
	if el.name != t.TagName() {
		return nil, structural(el, "expected <%s>", t.TagName())
	}
	return decode(t, el, nil)
}

func decodeOpen(t *schema.Type, el *element, parent schema.Record) (any, error) {
	switch len(el.children) {
	case 0:
		raw, err := hex.DecodeString(stripSpace(el.text.String()))
		if err != nil {
			return nil, structural(el, "invalid open type encoding: %v", err)
		}
		return &schema.OpenValue{Raw: raw}, nil
	case 1:
	default:
		return nil, structural(el, "open type holds %d values", len(el.children))
	}
	child := el.children[0]
	var actual *schema.Type
	if t.Open != nil && parent != nil {
		if id, ok := parent[t.Open.Key].(int64); ok {
			if want := t.Open.Resolve(id); want != nil && want.TagName() == child.name {
				actual = want
			}
		}
	}
	if actual == nil {
		actual = t.Open.ByName(child.name)
	}
	if actual == nil {
		return nil, structural(el, "unknown carried type <%s>", child.name)
	}
	val, err := decode(actual, child, nil)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", actual, err)
	}
	return &schema.OpenValue{Type: actual, Value: val}, nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
}
