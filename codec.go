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
	"fmt"

	"github.com/bufbuild/asntransform/j2735"
	"github.com/bufbuild/asntransform/schema"
)

// SchemaCodec is everything the [Converter] needs to know about a message
// set: how to find a type by name, how to read and write each syntax, how to
// validate a decoded value and how to dispose of it.
type SchemaCodec interface {
	// FindType resolves a PDU name. Names are matched exactly.
	FindType(name string) (*schema.Type, error)
	// Decode reads data in syntax s as a value of type t. Decoding only
	// checks structure; it never enforces value constraints.
	Decode(s Syntax, t *schema.Type, data []byte) (any, error)
	// CheckConstraints validates a decoded value against its type.
	CheckConstraints(t *schema.Type, v any) error
	// Encode writes v in syntax s.
	Encode(s Syntax, t *schema.Type, v any) ([]byte, error)
	// Release disposes of a value returned by Decode. It is called exactly
	// once per decoded value, including partially decoded ones.
	Release(t *schema.Type, v any)
}

// RegistryCodec is a SchemaCodec over a [schema.Registry] and one [Format]
// per syntax.
type RegistryCodec struct {
	registry *schema.Registry
	formats  map[Syntax]Format
}

// NewSchemaCodec returns a codec that resolves types in registry and
// reads and writes the syntaxes present in formats.
func NewSchemaCodec(registry *schema.Registry, formats map[Syntax]Format) *RegistryCodec {
	copied := make(map[Syntax]Format, len(formats))
	for syntax, format := range formats {
		copied[syntax] = format
	}
	return &RegistryCodec{registry: registry, formats: copied}
}

// DefaultSchemaCodec returns the codec for the J2735 message set in all
// three syntaxes.
func DefaultSchemaCodec() *RegistryCodec {
	return NewSchemaCodec(j2735.Registry, DefaultFormats())
}

// FindType implements SchemaCodec.
func (c *RegistryCodec) FindType(name string) (*schema.Type, error) {
	return c.registry.Lookup(name)
}

// Decode implements SchemaCodec.
func (c *RegistryCodec) Decode(s Syntax, t *schema.Type, data []byte) (any, error) {
	format, err := c.format(s)
	if err != nil {
		return nil, err
	}
	return format.Unmarshal(t, data)
}

// CheckConstraints implements SchemaCodec.
func (c *RegistryCodec) CheckConstraints(t *schema.Type, v any) error {
	return schema.Check(t, v)
}

// Encode implements SchemaCodec.
func (c *RegistryCodec) Encode(s Syntax, t *schema.Type, v any) ([]byte, error) {
	format, err := c.format(s)
	if err != nil {
		return nil, err
	}
	return format.Marshal(t, v)
}

// Release implements SchemaCodec.
func (c *RegistryCodec) Release(t *schema.Type, v any) {
	schema.Release(t, v)
}

// Names lists the PDUs the codec can convert.
func (c *RegistryCodec) Names() []string {
	return c.registry.Names()
}

func (c *RegistryCodec) format(s Syntax) (Format, error) {
	format, ok := c.formats[s]
	if !ok || format == nil {
		return nil, fmt.Errorf("no format for %v: %w", s, ErrUnknownSyntax)
	}
	return format, nil
}
