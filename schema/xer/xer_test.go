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
	"testing"

	"github.com/bufbuild/asntransform/internal/messagetesting"
	"github.com/bufbuild/asntransform/j2735"
	"github.com/bufbuild/asntransform/schema"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_Canonical(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		typ  *schema.Type
		val  any
		want string
	}{
		{
			name: "sequence",
			typ:  j2735.VehicleSize,
			val:  schema.Record{"width": int64(200), "length": int64(500)},
			want: `<VehicleSize><width>200</width><length>500</length></VehicleSize>`,
		},
		{
			name: "bit string and enumerations",
			typ:  j2735.BrakeSystemStatus,
			val:  messagetesting.BasicSafetyMessage()["coreData"].(schema.Record)["brakes"],
			want: `<BrakeSystemStatus><wheelBrakes>01010</wheelBrakes><traction><on/></traction>` +
				`<abs><engaged/></abs><scs><off/></scs><brakeBoost><unavailable/></brakeBoost>` +
				`<auxBrakes><off/></auxBrakes></BrakeSystemStatus>`,
		},
		{
			name: "booleans and optional components",
			typ:  j2735.ConnectionManeuverAssist,
			val:  schema.Record{"connectionID": int64(9), "waitOnStop": true},
			want: `<ConnectionManeuverAssist><connectionID>9</connectionID><waitOnStop><true/></waitOnStop></ConnectionManeuverAssist>`,
		},
		{
			name: "named items",
			typ:  j2735.IntersectionState.Fields[6].Type,
			val:  []any{int64(1), int64(2)},
			want: `<EnabledLaneList><LaneID>1</LaneID><LaneID>2</LaneID></EnabledLaneList>`,
		},
		{
			name: "escaped text",
			typ:  j2735.DescriptiveName,
			val:  "Main & 1st",
			want: `<DescriptiveName>Main &amp; 1st</DescriptiveName>`,
		},
		{
			name: "control characters",
			typ:  j2735.DescriptiveName,
			val:  "a\x01b\tc\x7f",
			want: `<DescriptiveName>a<soh/>b<ht/>c<del/></DescriptiveName>`,
		},
		{
			name: "octet string",
			typ:  j2735.TemporaryID,
			val:  []byte{0xde, 0xad, 0xbe, 0xef},
			want: `<TemporaryID>DEADBEEF</TemporaryID>`,
		},
		{
			name: "unknown open type",
			typ:  j2735.MessageFrame,
			val: schema.Record{
				"messageId": int64(18),
				"value":     &schema.OpenValue{Raw: []byte{0xca, 0xfe}},
			},
			want: `<MessageFrame><messageId>18</messageId><value>CAFE</value></MessageFrame>`,
		},
		{
			name: "choice",
			typ: schema.ChoiceType("Position", false,
				schema.Required("lat", j2735.Latitude),
				schema.Required("none", schema.NullType("")),
			),
			val:  schema.Choice{Name: "none", Value: schema.Null{}},
			want: `<Position><none/></Position>`,
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
	got, err := Marshal(j2735.MessageFrame, messagetesting.SPATFrame())
	require.NoError(t, err)
	assert.Contains(t, string(got), `<MessageFrame><messageId>19</messageId><value><SPAT><timeStamp>220000</timeStamp>`)
	assert.Contains(t, string(got), `<eventState><protected-Movement-Allowed/></eventState>`)
	assert.NotContains(t, string(got), "\n")
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

func TestRoundTrip_ControlCharacters(t *testing.T) {
	t.Parallel()
	testCases := []string{
		"a\x01b",
		"\x00",
		"\r\n & <\x1f>",
		"line\nbreak\x7f",
	}
	for _, name := range testCases {
		name := name
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			val := messagetesting.SPAT()
			val["name"] = name
			require.NoError(t, schema.Check(j2735.SPAT, val))
			data, err := Marshal(j2735.SPAT, val)
			require.NoError(t, err)
			assert.NotContains(t, string(data), "\uFFFD")
			decoded, err := Unmarshal(j2735.SPAT, data)
			require.NoError(t, err)
			assert.Equal(t, name, decoded.(schema.Record)["name"])
			require.NoError(t, schema.Check(j2735.SPAT, decoded))
		})
	}
}

func TestUnmarshal_BasicXER(t *testing.T) {
	t.Parallel()
	doc := `<?xml version="1.0"?>
<BrakeSystemStatus>
  <wheelBrakes>0 1010</wheelBrakes>
  <traction>on</traction>
  <abs><engaged/></abs>
  <scs><off/></scs>
  <brakeBoost><unavailable/></brakeBoost>
  <auxBrakes>
    <off/>
  </auxBrakes>
</BrakeSystemStatus>
`
	decoded, err := Unmarshal(j2735.BrakeSystemStatus, []byte(doc))
	require.NoError(t, err)
	want := messagetesting.BasicSafetyMessage()["coreData"].(schema.Record)["brakes"]
	if diff := cmp.Diff(want, decoded); diff != "" {
		t.Errorf("decoded value mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshal_NoRangeChecks(t *testing.T) {
	t.Parallel()
	decoded, err := Unmarshal(j2735.VehicleSize, []byte(`<VehicleSize><width>5000</width><length>1</length></VehicleSize>`))
	require.NoError(t, err)
	assert.Equal(t, schema.Record{"width": int64(5000), "length": int64(1)}, decoded)
}

func TestUnmarshal_Errors(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		typ  *schema.Type
		doc  string
	}{
		{name: "empty", typ: j2735.SPAT, doc: ``},
		{name: "unbalanced", typ: j2735.SPAT, doc: `<SPAT><intersections></SPAT>`},
		{name: "unclosed", typ: j2735.SPAT, doc: `<SPAT><intersections>`},
		{name: "wrong root", typ: j2735.SPAT, doc: `<BasicSafetyMessage/>`},
		{name: "two roots", typ: j2735.VehicleSize, doc: `<VehicleSize/><VehicleSize/>`},
		{name: "unknown component", typ: j2735.VehicleSize, doc: `<VehicleSize><height>1</height></VehicleSize>`},
		{name: "repeated component", typ: j2735.VehicleSize, doc: `<VehicleSize><width>1</width><width>1</width></VehicleSize>`},
		{name: "bad integer", typ: j2735.VehicleSize, doc: `<VehicleSize><width>wide</width></VehicleSize>`},
		{name: "bad bit string", typ: j2735.BrakeAppliedStatus, doc: `<BrakeAppliedStatus>01210</BrakeAppliedStatus>`},
		{name: "bad octets", typ: j2735.TemporaryID, doc: `<TemporaryID>XYZ1</TemporaryID>`},
		{name: "bad boolean", typ: schema.BooleanType("Flag"), doc: `<Flag><maybe/></Flag>`},
		{name: "wrong item element", typ: j2735.IntersectionState.Fields[6].Type, doc: `<EnabledLaneList><Lane>1</Lane></EnabledLaneList>`},
		{name: "unknown escape in text", typ: j2735.DescriptiveName, doc: `<DescriptiveName>a<bell/>b</DescriptiveName>`},
		{name: "escape with content", typ: j2735.DescriptiveName, doc: `<DescriptiveName>a<soh>x</soh></DescriptiveName>`},
		{name: "unknown carried type", typ: j2735.MessageFrame, doc: `<MessageFrame><messageId>2</messageId><value><MapData/></value></MessageFrame>`},
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
