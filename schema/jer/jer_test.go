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

package jer

import (
	"encoding/json"
	"testing"

	"github.com/bufbuild/asntransform/internal/messagetesting"
	"github.com/bufbuild/asntransform/j2735"
	"github.com/bufbuild/asntransform/schema"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_Minified(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		typ  *schema.Type
		val  any
		want string
	}{
		{
			name: "sequence in component order",
			typ:  j2735.VehicleSize,
			val:  schema.Record{"length": int64(500), "width": int64(200)},
			want: `{"width":200,"length":500}`,
		},
		{
			name: "fixed bit string and enumerations",
			typ:  j2735.BrakeSystemStatus,
			val:  messagetesting.BasicSafetyMessage()["coreData"].(schema.Record)["brakes"],
			want: `{"wheelBrakes":"50","traction":"on","abs":"engaged","scs":"off","brakeBoost":"unavailable","auxBrakes":"off"}`,
		},
		{
			name: "variable bit string",
			typ:  &schema.Type{Name: "Flags", Kind: schema.BitStringKind},
			val:  schema.NewBitString(true, true, false),
			want: `{"value":"C0","length":3}`,
		},
		{
			name: "list of numbers",
			typ:  j2735.IntersectionState.Fields[6].Type,
			val:  []any{int64(1), int64(2), int64(5)},
			want: `[1,2,5]`,
		},
		{
			name: "text is not html escaped",
			typ:  j2735.DescriptiveName,
			val:  "Main & <1st>",
			want: `"Main & <1st>"`,
		},
		{
			name: "booleans",
			typ:  j2735.ConnectionManeuverAssist,
			val:  schema.Record{"connectionID": int64(9), "waitOnStop": true, "pedBicycleDetect": false},
			want: `{"connectionID":9,"waitOnStop":true,"pedBicycleDetect":false}`,
		},
		{
			name: "unknown open type",
			typ:  j2735.MessageFrame,
			val: schema.Record{
				"messageId": int64(18),
				"value":     &schema.OpenValue{Raw: []byte{0xca, 0xfe}},
			},
			want: `{"messageId":18,"value":"CAFE"}`,
		},
		{
			name: "choice and null",
			typ: schema.ChoiceType("Position", false,
				schema.Required("lat", j2735.Latitude),
				schema.Required("none", schema.NullType("")),
			),
			val:  schema.Choice{Name: "none", Value: schema.Null{}},
			want: `{"none":null}`,
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			got, err := Marshal(testCase.typ, testCase.val)
			require.NoError(t, err)
			assert.Equal(t, testCase.want, string(got))
		})
	}
}

func TestMarshal_MessageFrame(t *testing.T) {
	t.Parallel()
	got, err := Marshal(j2735.MessageFrame, messagetesting.BSMFrame())
	require.NoError(t, err)
	assert.Contains(t, string(got), `{"messageId":20,"value":{"BasicSafetyMessage":{"coreData":{"msgCnt":12,"id":"01020304",`)
	assert.True(t, json.Valid(got))
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		typ  *schema.Type
		val  func() schema.Record
	}{
		{name: "BasicSafetyMessage", typ: j2735.BasicSafetyMessage, val: messagetesting.BasicSafetyMessageWithExtensions},
		{name: "SPAT", typ: j2735.SPAT, val: messagetesting.SPAT},
		{name: "MessageFrame BSM", typ: j2735.MessageFrame, val: messagetesting.BSMFrame},
		{name: "MessageFrame SPAT", typ: j2735.MessageFrame, val: messagetesting.SPATFrame},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			data, err := Marshal(testCase.typ, testCase.val())
			require.NoError(t, err)
			decoded, err := Unmarshal(testCase.typ, data)
			require.NoError(t, err)
			if diff := cmp.Diff(any(testCase.val()), decoded); diff != "" {
				t.Errorf("decoded value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnmarshal_Errors(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		typ  *schema.Type
		doc  string
	}{
		{name: "empty", typ: j2735.SPAT, doc: ``},
		{name: "truncated", typ: j2735.VehicleSize, doc: `{"width":1`},
		{name: "trailing data", typ: j2735.VehicleSize, doc: `{"width":1}{}`},
		{name: "trailing brace", typ: j2735.VehicleSize, doc: `{"width":1}}`},
		{name: "unknown member", typ: j2735.VehicleSize, doc: `{"height":1}`},
		{name: "wrong shape", typ: j2735.VehicleSize, doc: `[1,2]`},
		{name: "fractional integer", typ: j2735.VehicleSize, doc: `{"width":1.5}`},
		{name: "string integer", typ: j2735.VehicleSize, doc: `{"width":"1"}`},
		{name: "bad hex", typ: j2735.TemporaryID, doc: `"XYZ1"`},
		{name: "bit string without length", typ: &schema.Type{Kind: schema.BitStringKind}, doc: `{"value":"C0"}`},
		{name: "bit string too long", typ: &schema.Type{Kind: schema.BitStringKind}, doc: `{"value":"C0","length":9}`},
		{name: "choice with two members", typ: schema.ChoiceType("C", false, schema.Required("a", schema.NullType("")), schema.Required("b", schema.NullType(""))), doc: `{"a":null,"b":null}`},
		{name: "unknown carried type", typ: j2735.MessageFrame, doc: `{"messageId":2,"value":{"MapData":{}}}`},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			_, err := Unmarshal(testCase.typ, []byte(testCase.doc))
			require.ErrorIs(t, err, ErrSyntax)
		})
	}
}

func TestUnmarshal_NoRangeChecks(t *testing.T) {
	t.Parallel()
	decoded, err := Unmarshal(j2735.VehicleSize, []byte(`{"width":5000}`))
	require.NoError(t, err)
	assert.Equal(t, schema.Record{"width": int64(5000)}, decoded)
}
