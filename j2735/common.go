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

// Package j2735 defines the subset of the SAE J2735 (2016) V2X message set
// that asntransform converts: the MessageFrame envelope, the
// BasicSafetyMessage and the signal phase and timing message (SPAT).
//
// Definitions mirror the ASN.1 module DSRC. Data elements keep their
// J2735 names so that XER output names SEQUENCE OF items the way other
// J2735 toolchains do.
package j2735

import "github.com/bufbuild/asntransform/schema"

// Data elements shared by several messages.
var (
	MsgCount        = schema.IntegerType("MsgCount", 0, 127)
	DSecond         = schema.IntegerType("DSecond", 0, 65535)
	MinuteOfTheYear = schema.IntegerType("MinuteOfTheYear", 0, 527040)
	DescriptiveName = schema.IA5StringType("DescriptiveName", 1, 63)
	RegionID        = schema.IntegerType("RegionId", 0, 255)

	// RegionalExtension carries region specific content. No regional
	// content types are registered, so the value always stays encoded.
	RegionalExtension = schema.SequenceType("RegionalExtension", false,
		schema.Required("regionId", RegionID),
		schema.Required("regExtValue", schema.OpenTypeOf("regionId", nil)),
	)
)

// regionalList is the "regional SEQUENCE (SIZE(1..4)) OF RegionalExtension"
// component that most J2735 structures end with.
func regionalList() *schema.Type {
	return schema.SequenceOfType("", 1, 4, RegionalExtension)
}
