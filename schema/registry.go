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
	"errors"
	"fmt"
	"sort"
)

// ErrTypeNotFound is returned by [Registry.Lookup] when no PDU has the
// requested name.
var ErrTypeNotFound = errors.New("type not found")

// Registry is an immutable, indexed set of PDU types. It is built once and
// is safe for concurrent lookups.
type Registry struct {
	types map[string]*Type
	names []string
}

// NewRegistry indexes the given PDU types by name. Every type must have a
// non-empty, unique name.
func NewRegistry(types ...*Type) (*Registry, error) {
	reg := &Registry{types: make(map[string]*Type, len(types))}
	for _, t := range types {
		if t == nil {
			return nil, errors.New("nil type")
		}
		if t.Name == "" {
			return nil, fmt.Errorf("%v type has no name", t.Kind)
		}
		if _, dup := reg.types[t.Name]; dup {
			return nil, fmt.Errorf("type %q registered twice", t.Name)
		}
		reg.types[t.Name] = t
		reg.names = append(reg.names, t.Name)
	}
	sort.Strings(reg.names)
	return reg, nil
}

// MustRegistry is like NewRegistry but panics on error. It is meant for
// package-level registries assembled from static definitions.
func MustRegistry(types ...*Type) *Registry {
	reg, err := NewRegistry(types...)
	if err != nil {
		panic(err)
	}
	return reg
}

// Lookup finds a PDU type by exact, case-sensitive name.
func (r *Registry) Lookup(name string) (*Type, error) {
	if r != nil {
		if t, ok := r.types[name]; ok {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", name, ErrTypeNotFound)
}

// Names returns the registered PDU names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}
