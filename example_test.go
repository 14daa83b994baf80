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
	"context"
	"fmt"
	"log"
)

const spatJSON = `{"intersections":[{"id":{"id":1201},"revision":3,"status":"0000",` +
	`"states":[{"signalGroup":2,"state-time-speed":[{"eventState":"stop-And-Remain"}]}]}]}`

func Example() {
	converter := &Converter{}
	ctx := context.Background()
	encoded, n, err := converter.ConvertString(ctx, "SPAT", "jer", "uper", spatJSON, 1024)
	if err != nil {
		log.Fatalf("Converting message: %v\n", err)
		return
	}
	fmt.Printf("Converted message (%d bytes): %s\n", n, encoded)
	// Output: Converted message (11 bytes): 0000025883000000002003
}

func ExampleConverter_ConvertString_truncated() {
	converter := &Converter{}
	encoded, n, err := converter.ConvertString(context.Background(), "SPAT", "jer", "uper", spatJSON, 8)
	if err != nil {
		log.Fatalf("Converting message: %v\n", err)
		return
	}
	fmt.Printf("%s (encoding is %d bytes)\n", encoded, n)
	// Output: 00000258 (encoding is 11 bytes)
}
