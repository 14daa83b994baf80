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
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for conversion events.
var (
	SignalConvertStart    = capitan.NewSignal("asntransform.convert.start", "Conversion beginning")
	SignalConvertComplete = capitan.NewSignal("asntransform.convert.complete", "Conversion finished")
	SignalOutputTruncated = capitan.NewSignal("asntransform.convert.truncated", "Output cut to the caller's buffer")
	SignalArchiveSaved    = capitan.NewSignal("asntransform.archive.saved", "Conversion result archived")
)

// Keys for typed event data.
var (
	KeyTypeName = capitan.NewStringKey("type_name")
	KeyFrom     = capitan.NewStringKey("from")
	KeyTo       = capitan.NewStringKey("to")
	KeySize     = capitan.NewIntKey("size")
	KeyEncoded  = capitan.NewIntKey("encoded")
	KeyMax      = capitan.NewIntKey("max")
	KeyKey      = capitan.NewStringKey("key")
	KeyDuration = capitan.NewDurationKey("duration")
	KeyError    = capitan.NewErrorKey("error")
)

func emitConvertStart(ctx context.Context, typeName, from, to string, size int) {
	capitan.Emit(ctx, SignalConvertStart,
		KeyTypeName.Field(typeName),
		KeyFrom.Field(from),
		KeyTo.Field(to),
		KeySize.Field(size),
	)
}

func emitConvertComplete(ctx context.Context, typeName, from, to string, encoded int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyFrom.Field(from),
		KeyTo.Field(to),
		KeyEncoded.Field(encoded),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalConvertComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalConvertComplete, fields...)
	}
}

func emitOutputTruncated(ctx context.Context, typeName, to string, limit, encoded int) {
	capitan.Emit(ctx, SignalOutputTruncated,
		KeyTypeName.Field(typeName),
		KeyTo.Field(to),
		KeyMax.Field(limit),
		KeyEncoded.Field(encoded),
	)
}

func emitArchiveSaved(ctx context.Context, typeName, key string, size int) {
	capitan.Emit(ctx, SignalArchiveSaved,
		KeyTypeName.Field(typeName),
		KeyKey.Field(key),
		KeySize.Field(size),
	)
}
