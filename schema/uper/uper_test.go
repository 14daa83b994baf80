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
	"encoding/hex"
	"testing"

	"github.com/bufbuild/asntransform/internal/messagetesting"
	"github.com/bufbuild/asntransform/j2735"
	"github.com/bufbuild/asntransform/schema"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_KnownEncodings(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		typ  *schema.Type
		val  any
		want string
	}{
		{
			name: "constrained integer",
			typ:  schema.IntegerType("", -1, 6),
			val:  int64(3),
			want: "80",
		},
		{
			name: "full octet integer",
			typ:  schema.IntegerType("", 0, 255),
			val:  int64(0x12),
			want: "12",
		},
		{
			name: "unconstrained negative integer",
			typ:  &schema.Type{Kind: schema.Integer},
			val:  int64(-1),
			want: "01ff",
		},
		{
			name: "unconstrained integer needing sign octet",
			typ:  &schema.Type{Kind: schema.Integer},
			val:  int64(128),
			want: "020080",
		},
		{
			name: "boolean",
			typ:  schema.BooleanType(""),
			val:  true,
			want: "80",
		},
		{
			name: "ia5 string",
			typ:  schema.IA5StringType("", 1, 63),
			val:  "AB",
			want: "060c20",
		},
		{
			name: "empty encoding is one octet",
			typ:  schema.NullType(""),
			val:  schema.Null{},
			want: "00",
		},
		{
			name: "fixed size octet string",
			typ:  j2735.TemporaryID,
			val:  []byte{0xde, 0xad, 0xbe, 0xef},
			want: "deadbeef",
		},
		{
			name: "enumerated",
			typ:  j2735.TransmissionState,
			val:  schema.Enum("unavailable"),
			want: "e0",
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			got, err := Marshal(testCase.typ, testCase.val)
			require.NoError(t, err)
			assert.Equal(t, testCase.want, hex.EncodeToString(got))
		})
	}
}

func TestMarshal_MessageFrame(t *testing.T) {
	t.Parallel()
	data, err := Marshal(j2735.MessageFrame, messagetesting.BSMFrame())
	require.NoError(t, err)
	// extension bit and 15-bit messageId 20, then the 37-octet BSM.
	assert.Equal(t, "001425", hex.EncodeToString(data[:3]))
	assert.Len(t, data, 40)

	data, err = Marshal(j2735.MessageFrame, messagetesting.SPATFrame())
	require.NoError(t, err)
	assert.Equal(t, "0013", hex.EncodeToString(data[:2]))
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		typ  *schema.Type
		val  func() schema.Record
	}{
		{name: "BasicSafetyMessage", typ: j2735.BasicSafetyMessage, val: messagetesting.BasicSafetyMessage},
		{name: "BasicSafetyMessage extensions", typ: j2735.BasicSafetyMessage, val: messagetesting.BasicSafetyMessageWithExtensions},
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
			again, err := Marshal(testCase.typ, decoded)
			require.NoError(t, err)
			assert.Equal(t, data, again)
		})
	}
}

func TestUnmarshal_UnknownOpenTypeKeepsEncoding(t *testing.T) {
	t.Parallel()
	frame := schema.Record{
		"messageId": int64(18),
		"value":     &schema.OpenValue{Raw: []byte{0xca, 0xfe}},
	}
	data, err := Marshal(j2735.MessageFrame, frame)
	require.NoError(t, err)
	decoded, err := Unmarshal(j2735.MessageFrame, data)
	require.NoError(t, err)
	rec, ok := decoded.(schema.Record)
	require.True(t, ok)
	value, ok := rec["value"].(*schema.OpenValue)
	require.True(t, ok)
	assert.Nil(t, value.Type)
	assert.Equal(t, []byte{0xca, 0xfe}, value.Raw)
}

func TestUnmarshal_Truncated(t *testing.T) {
	t.Parallel()
	data, err := Marshal(j2735.MessageFrame, messagetesting.BSMFrame())
	require.NoError(t, err)
	for _, size := range []int{0, 1, 3, 10, len(data) - 1} {
		_, err := Unmarshal(j2735.MessageFrame, data[:size])
		require.ErrorIs(t, err, ErrTruncated, "size %d", size)
	}
}

func TestUnmarshal_SkipsExtensionAdditions(t *testing.T) {
	t.Parallel()
	typ := schema.SequenceType("Extended", true,
		schema.Required("a", schema.IntegerType("", 0, 255)),
	)
	var w bitWriter
	w.writeBit(true)     // extensions present
	w.writeBits(5, 8)    // a
	w.writeBit(false)    // normally small length
	w.writeBits(1, 6)    // two additions
	w.writeBits(0b10, 2) // only the first is present
	w.writeBits(2, 8)    // open type length
	w.writeBytes([]byte{0xff, 0xee})

	decoded, err := Unmarshal(typ, w.complete())
	require.NoError(t, err)
	assert.Equal(t, schema.Record{"a": int64(5)}, decoded)
}

func TestUnmarshal_Unsupported(t *testing.T) {
	t.Parallel()
	t.Run("enumeration extension", func(t *testing.T) {
		t.Parallel()
		typ := schema.EnumType("", true, "a", "b")
		var w bitWriter
		w.writeBit(true)
		w.writeBit(false)
		w.writeBits(3, 6)
		_, err := Unmarshal(typ, w.complete())
		require.ErrorIs(t, err, ErrUnsupported)
	})
	t.Run("fragmented length", func(t *testing.T) {
		t.Parallel()
		_, err := Unmarshal(&schema.Type{Kind: schema.OctetString}, []byte{0xc1, 0x00})
		require.ErrorIs(t, err, ErrUnsupported)
	})
}

func TestUnmarshal_InvalidEnumerationIndex(t *testing.T) {
	t.Parallel()
	// Three identifiers need two bits, leaving index 3 unassigned.
	typ := schema.EnumType("", false, "a", "b", "c")
	_, err := Unmarshal(typ, []byte{0xc0})
	require.ErrorIs(t, err, ErrInvalid)
}

func TestMarshal_InvalidValues(t *testing.T) {
	t.Parallel()
	_, err := Marshal(j2735.MsgCount, int64(128))
	require.ErrorIs(t, err, ErrValue)
	_, err = Marshal(j2735.MsgCount, "12")
	require.ErrorIs(t, err, ErrValue)
	_, err = Marshal(j2735.TransmissionState, schema.Enum("hover"))
	require.ErrorIs(t, err, ErrValue)
	_, err = Marshal(j2735.VehicleSize, schema.Record{"width": int64(1)})
	require.ErrorIs(t, err, ErrValue)
}
