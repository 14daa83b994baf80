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
	TimeMark   = schema.IntegerType("TimeMark", 0, 36001)
	ZoneLength = schema.IntegerType("ZoneLength", 0, 10000)
	LaneID     = schema.IntegerType("LaneID", 0, 255)

	IntersectionReferenceID = schema.SequenceType("IntersectionReferenceID", false,
		schema.Optional("region", schema.IntegerType("RoadRegulatorID", 0, 65535)),
		schema.Required("id", schema.IntegerType("IntersectionID", 0, 65535)),
	)

	IntersectionStatusObject = schema.BitStringType("IntersectionStatusObject", 16, 16,
		"manualControlIsEnabled", "stopTimeIsActivated", "failureFlash",
		"preemptIsActive", "signalPriorityIsActive", "fixedTimeOperation",
		"trafficDependentOperation", "standbyOperation", "failureMode", "off",
		"recentMAPmessageUpdate", "recentChangeInMAPassignedLanesIDsUsed",
		"noValidMAPisAvailableAtThisTime", "noValidSPATisAvailableAtThisTime",
	)

	MovementPhaseState = schema.EnumType("MovementPhaseState", false,
		"unavailable", "dark", "stop-Then-Proceed", "stop-And-Remain",
		"pre-Movement", "permissive-Movement-Allowed", "protected-Movement-Allowed",
		"permissive-clearance", "protected-clearance", "caution-Conflicting-Traffic",
	)

	TimeChangeDetails = schema.SequenceType("TimeChangeDetails", false,
		schema.Optional("startTime", TimeMark),
		schema.Required("minEndTime", TimeMark),
		schema.Optional("maxEndTime", TimeMark),
		schema.Optional("likelyTime", TimeMark),
		schema.Optional("confidence", schema.IntegerType("TimeIntervalConfidence", 0, 15)),
		schema.Optional("nextTime", TimeMark),
	)

	AdvisorySpeed = schema.SequenceType("AdvisorySpeed", true,
		schema.Required("type", schema.EnumType("AdvisorySpeedType", true,
			"none", "greenwave", "ecoDrive", "transit")),
		schema.Optional("speed", schema.IntegerType("SpeedAdvice", 0, 500)),
		schema.Optional("confidence", schema.EnumType("SpeedConfidence", false,
			"unavailable", "prec100ms", "prec10ms", "prec5ms",
			"prec1ms", "prec0-1ms", "prec0-05ms", "prec0-01ms")),
		schema.Optional("distance", ZoneLength),
		schema.Optional("class", schema.IntegerType("RestrictionClassID", 0, 255)),
		schema.Optional("regional", regionalList()),
	)

	ConnectionManeuverAssist = schema.SequenceType("ConnectionManeuverAssist", true,
		schema.Required("connectionID", schema.IntegerType("LaneConnectionID", 0, 255)),
		schema.Optional("queueLength", ZoneLength),
		schema.Optional("availableStorageLength", ZoneLength),
		schema.Optional("waitOnStop", schema.BooleanType("WaitOnStopline")),
		schema.Optional("pedBicycleDetect", schema.BooleanType("PedestrianBicycleDetect")),
		schema.Optional("regional", regionalList()),
	)

	MovementEvent = schema.SequenceType("MovementEvent", true,
		schema.Required("eventState", MovementPhaseState),
		schema.Optional("timing", TimeChangeDetails),
		schema.Optional("speeds", schema.SequenceOfType("AdvisorySpeedList", 1, 16, AdvisorySpeed)),
		schema.Optional("regional", regionalList()),
	)

	MovementState = schema.SequenceType("MovementState", true,
		schema.Optional("movementName", DescriptiveName),
		schema.Required("signalGroup", schema.IntegerType("SignalGroupID", 0, 255)),
		schema.Required("state-time-speed", schema.SequenceOfType("MovementEventList", 1, 16, MovementEvent)),
		schema.Optional("maneuverAssistList", maneuverAssistList()),
		schema.Optional("regional", regionalList()),
	)

	IntersectionState = schema.SequenceType("IntersectionState", true,
		schema.Optional("name", DescriptiveName),
		schema.Required("id", IntersectionReferenceID),
		schema.Required("revision", MsgCount),
		schema.Required("status", IntersectionStatusObject),
		schema.Optional("moy", MinuteOfTheYear),
		schema.Optional("timeStamp", DSecond),
		schema.Optional("enabledLanes", schema.SequenceOfType("EnabledLaneList", 1, 16, LaneID)),
		schema.Required("states", schema.SequenceOfType("MovementList", 1, 255, MovementState)),
		schema.Optional("maneuverAssistList", maneuverAssistList()),
		schema.Optional("regional", regionalList()),
	)

	SPAT = schema.SequenceType("SPAT", true,
		schema.Optional("timeStamp", MinuteOfTheYear),
		schema.Optional("name", DescriptiveName),
		schema.Required("intersections", schema.SequenceOfType("IntersectionStateList", 1, 32, IntersectionState)),
		schema.Optional("regional", regionalList()),
	)
)

func maneuverAssistList() *schema.Type {
	return schema.SequenceOfType("ManeuverAssistList", 1, 16, ConnectionManeuverAssist)
}
