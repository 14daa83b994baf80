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

// Release tears down a decoded value: byte payloads are zeroed and records
// and lists are emptied, so that nothing can read the value afterwards.
// It is safe on partially built values and on nil.
func Release(_ *Type, v any) {
	scrub(v)
}

func scrub(v any) {
	switch x := v.(type) {
	case []byte:
		clear(x)
	case BitString:
		clear(x.Bytes)
	case Record:
		for name, field := range x {
			scrub(field)
			delete(x, name)
		}
	case []any:
		for i := range x {
			scrub(x[i])
			x[i] = nil
		}
	case Choice:
		scrub(x.Value)
	case *Choice:
		if x != nil {
			scrub(x.Value)
			x.Value = nil
		}
	case *OpenValue:
		if x != nil {
			scrub(x.Value)
			clear(x.Raw)
			x.Type, x.Value, x.Raw = nil, nil, nil
		}
	}
}
