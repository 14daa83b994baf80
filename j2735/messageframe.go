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

// DSRCmsgID values of the messages carried in a MessageFrame.
const (
	SignalPhaseAndTimingMessageID int64 = 19
	BasicSafetyMessageID          int64 = 20
)

var (
	DSRCmsgID = schema.IntegerType("DSRCmsgID", 0, 32767)

	// MessageFrame is the envelope every J2735 message travels in. The
	// value component is decoded as the message selected by messageId.
	MessageFrame = schema.SequenceType("MessageFrame", true,
		schema.Required("messageId", DSRCmsgID),
		schema.Required("value", schema.OpenTypeOf("messageId", map[int64]*schema.Type{
			SignalPhaseAndTimingMessageID: SPAT,
			BasicSafetyMessageID:          BasicSafetyMessage,
		})),
	)
)

// Registry holds the PDUs that can be converted by name.
var Registry = schema.MustRegistry( //nolint:gochecknoglobals
	MessageFrame,
	BasicSafetyMessage,
	SPAT,
)
