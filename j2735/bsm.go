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

package j2735

import "github.com/bufbuild/asntransform/schema"

var (
	TemporaryID = schema.OctetStringType("TemporaryID", 4, 4)
	Latitude    = schema.IntegerType("Latitude", -900000000, 900000001)
	Longitude   = schema.IntegerType("Longitude", -1799999999, 1800000001)
	Elevation   = schema.IntegerType("Elevation", -4096, 61439)

	PositionalAccuracy = schema.SequenceType("PositionalAccuracy", false,
		schema.Required("semiMajor", schema.IntegerType("SemiMajorAxisAccuracy", 0, 255)),
		schema.Required("semiMinor", schema.IntegerType("SemiMinorAxisAccuracy", 0, 255)),
		schema.Required("orientation", schema.IntegerType("SemiMajorAxisOrientation", 0, 65535)),
	)

	TransmissionState = schema.EnumType("TransmissionState", false,
		"neutral", "park", "forwardGears", "reverseGears",
		"reserved1", "reserved2", "reserved3", "unavailable",
	)

	Speed              = schema.IntegerType("Speed", 0, 8191)
	Heading            = schema.IntegerType("Heading", 0, 28800)
	SteeringWheelAngle = schema.IntegerType("SteeringWheelAngle", -126, 127)
	Acceleration       = schema.IntegerType("Acceleration", -2000, 2001)

	AccelerationSet4Way = schema.SequenceType("AccelerationSet4Way", false,
		schema.Required("long", Acceleration),
		schema.Required("lat", Acceleration),
		schema.Required("vert", schema.IntegerType("VerticalAcceleration", -127, 127)),
		schema.Required("yaw", schema.IntegerType("YawRate", -32767, 32767)),
	)

	BrakeAppliedStatus = schema.BitStringType("BrakeAppliedStatus", 5, 5,
		"unavailable", "leftFront", "leftRear", "rightFront", "rightRear",
	)

	BrakeSystemStatus = schema.SequenceType("BrakeSystemStatus", false,
		schema.Required("wheelBrakes", BrakeAppliedStatus),
		schema.Required("traction", schema.EnumType("TractionControlStatus", false,
			"unavailable", "off", "on", "engaged")),
		schema.Required("abs", schema.EnumType("AntiLockBrakeStatus", false,
			"unavailable", "off", "on", "engaged")),
		schema.Required("scs", schema.EnumType("StabilityControlStatus", false,
			"unavailable", "off", "on", "engaged")),
		schema.Required("brakeBoost", schema.EnumType("BrakeBoostApplied", false,
			"unavailable", "off", "on")),
		schema.Required("auxBrakes", schema.EnumType("AuxiliaryBrakeStatus", false,
			"unavailable", "off", "on", "reserved")),
	)

	VehicleSize = schema.SequenceType("VehicleSize", false,
		schema.Required("width", schema.IntegerType("VehicleWidth", 0, 1023)),
		schema.Required("length", schema.IntegerType("VehicleLength", 0, 4095)),
	)

	BSMcoreData = schema.SequenceType("BSMcoreData", false,
		schema.Required("msgCnt", MsgCount),
		schema.Required("id", TemporaryID),
		schema.Required("secMark", DSecond),
		schema.Required("lat", Latitude),
		schema.Required("long", Longitude),
		schema.Required("elev", Elevation),
		schema.Required("accuracy", PositionalAccuracy),
		schema.Required("transmission", TransmissionState),
		schema.Required("speed", Speed),
		schema.Required("heading", Heading),
		schema.Required("angle", SteeringWheelAngle),
		schema.Required("accelSet", AccelerationSet4Way),
		schema.Required("brakes", BrakeSystemStatus),
		schema.Required("size", VehicleSize),
	)

	// PartIIcontent carries one of the optional BSM part II extensions,
	// selected by partII-Id. Their content is kept encoded.
	PartIIcontent = schema.SequenceType("PartIIcontent", false,
		schema.Required("partII-Id", schema.IntegerType("PartII-Id", 0, 63)),
		schema.Required("partII-Value", schema.OpenTypeOf("partII-Id", nil)),
	)

	BasicSafetyMessage = schema.SequenceType("BasicSafetyMessage", true,
		schema.Required("coreData", BSMcoreData),
		schema.Optional("partII", schema.SequenceOfType("", 1, 8, PartIIcontent)),
		schema.Optional("regional", regionalList()),
	)
)
