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

// Package messagetesting builds sample J2735 values for tests. Every call
// returns a fresh value, since conversions release what they decode.
package messagetesting

import (
	"github.com/bufbuild/asntransform/j2735"
	"github.com/bufbuild/asntransform/schema"
)

// BasicSafetyMessage returns a BSM holding only core data.
func BasicSafetyMessage() schema.Record {
	return schema.Record{
		"coreData": schema.Record{
			"msgCnt":  int64(12),
			"id":      []byte{0x01, 0x02, 0x03, 0x04},
			"secMark": int64(36879),
			"lat":     int64(404400000),
			"long":    int64(-797500000),
			"elev":    int64(2400),
			"accuracy": schema.Record{
				"semiMajor":   int64(40),
				"semiMinor":   int64(30),
				"orientation": int64(65535),
			},
			"transmission": schema.Enum("forwardGears"),
			"speed":        int64(1250),
			"heading":      int64(14400),
			"angle":        int64(-3),
			"accelSet": schema.Record{
				"long": int64(150),
				"lat":  int64(-10),
				"vert": int64(0),
				"yaw":  int64(120),
			},
			"brakes": schema.Record{
				"wheelBrakes": schema.NewBitString(false, true, false, true, false),
				"traction":    schema.Enum("on"),
				"abs":         schema.Enum("engaged"),
				"scs":         schema.Enum("off"),
				"brakeBoost":  schema.Enum("unavailable"),
				"auxBrakes":   schema.Enum("off"),
			},
			"size": schema.Record{
				"width":  int64(200),
				"length": int64(500),
			},
		},
	}
}

// BasicSafetyMessageWithExtensions returns a BSM that also carries a part
// II extension and a regional extension, both kept encoded.
func BasicSafetyMessageWithExtensions() schema.Record {
	bsm := BasicSafetyMessage()
	bsm["partII"] = []any{
		schema.Record{
			"partII-Id":    int64(0),
			"partII-Value": &schema.OpenValue{Raw: []byte{0x0c, 0x80}},
		},
	}
	bsm["regional"] = []any{
		schema.Record{
			"regionId":    int64(128),
			"regExtValue": &schema.OpenValue{Raw: []byte{0x42}},
		},
	}
	return bsm
}

// SPAT returns a signal phase and timing message for one intersection with
// two signal groups.
func SPAT() schema.Record {
	return schema.Record{
		"timeStamp": int64(220000),
		"name":      "Main & 1st",
		"intersections": []any{
			schema.Record{
				"id": schema.Record{
					"region": int64(7),
					"id":     int64(1201),
				},
				"revision":     int64(3),
				"status":       schema.NewBitString(make([]bool, 16)...),
				"moy":          int64(220000),
				"timeStamp":    int64(35000),
				"enabledLanes": []any{int64(1), int64(2), int64(5)},
				"states": []any{
					schema.Record{
						"signalGroup": int64(2),
						"state-time-speed": []any{
							schema.Record{
								"eventState": schema.Enum("protected-Movement-Allowed"),
								"timing": schema.Record{
									"minEndTime": int64(12000),
									"maxEndTime": int64(12300),
									"confidence": int64(14),
								},
								"speeds": []any{
									schema.Record{
										"type":       schema.Enum("greenwave"),
										"speed":      int64(250),
										"confidence": schema.Enum("prec1ms"),
									},
								},
							},
						},
					},
					schema.Record{
						"movementName": "left turn",
						"signalGroup":  int64(4),
						"state-time-speed": []any{
							schema.Record{
								"eventState": schema.Enum("stop-And-Remain"),
								"timing": schema.Record{
									"startTime":  int64(11000),
									"minEndTime": int64(12500),
								},
							},
						},
						"maneuverAssistList": []any{
							schema.Record{
								"connectionID":     int64(9),
								"queueLength":      int64(35),
								"waitOnStop":       true,
								"pedBicycleDetect": false,
							},
						},
					},
				},
			},
		},
	}
}

// MessageFrame wraps a message in the envelope, keyed by its message id.
func MessageFrame(id int64, msg schema.Record) schema.Record {
	return schema.Record{
		"messageId": id,
		"value": &schema.OpenValue{
			Type:  j2735.MessageFrame.Fields[1].Type.Open.Resolve(id),
			Value: msg,
		},
	}
}

// BSMFrame is a MessageFrame carrying BasicSafetyMessage().
func BSMFrame() schema.Record {
	return MessageFrame(j2735.BasicSafetyMessageID, BasicSafetyMessage())
}

// SPATFrame is a MessageFrame carrying SPAT().
func SPATFrame() schema.Record {
	return MessageFrame(j2735.SignalPhaseAndTimingMessageID, SPAT())
}
