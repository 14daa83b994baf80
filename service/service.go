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

// Package service exposes a Converter over Connect, so that other
// processes can convert J2735 messages over HTTP with the Connect, gRPC or
// gRPC-Web protocols.
//
// Requests and responses are google.protobuf.Struct messages, so clients
// need no generated code. A Convert request has the string fields "pdu",
// "from", "to" and "payload", and optionally the bool "archive". UPER
// payloads travel as hex text in both directions. The response has
// "payload", "encoded_length" and "truncated", plus "archive_key" when the
// request asked for the result to be archived.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bufbuild/asntransform"
	"github.com/bufbuild/connect-go"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName is the fully-qualified name of the conversion service.
	ServiceName = "asntransform.v1.ConvertService"
	// ConvertProcedure converts one message.
	ConvertProcedure = "/" + ServiceName + "/Convert"
	// TypesProcedure lists the message types that can be converted.
	TypesProcedure = "/" + ServiceName + "/Types"
)

// DefaultMaxOutput is the output limit used when Handler.MaxOutput is zero.
const DefaultMaxOutput = 65535

// Handler serves conversion requests.
type Handler struct {
	// Converter runs each request. Required.
	Converter *asntransform.Converter
	// MaxOutput caps the length of the payload in each response. Longer
	// results are truncated and flagged as such. Defaults to
	// DefaultMaxOutput.
	MaxOutput int
	// Logger receives a record of each request. If nil, nothing is logged.
	Logger *zerolog.Logger
}

// NewHandler returns the path the service is mounted on and its HTTP
// handler, ready to be registered with an http.ServeMux.
func NewHandler(h *Handler, options ...connect.HandlerOption) (string, http.Handler) {
	if h.Logger != nil {
		options = append([]connect.HandlerOption{connect.WithInterceptors(NewLoggingInterceptor(h.Logger))}, options...)
	}
	mux := http.NewServeMux()
	mux.Handle(ConvertProcedure, connect.NewUnaryHandler(ConvertProcedure, h.Convert, options...))
	mux.Handle(TypesProcedure, connect.NewUnaryHandler(TypesProcedure, h.Types, options...))
	return "/" + ServiceName + "/", mux
}

// Convert converts the payload of a request.
func (h *Handler) Convert(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	var fields convertRequest
	if err := fields.parse(req.Msg); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	maxOutput := h.MaxOutput
	if maxOutput <= 0 {
		maxOutput = DefaultMaxOutput
	}

	var (
		payload    string
		encodedLen int
		key        string
		err        error
	)
	if fields.archive {
		payload, encodedLen, key, err = h.Converter.ConvertStringAndArchive(ctx, fields.pdu, fields.from, fields.to, fields.payload, maxOutput)
	} else {
		payload, encodedLen, err = h.Converter.ConvertString(ctx, fields.pdu, fields.from, fields.to, fields.payload, maxOutput)
	}
	if err != nil {
		return nil, connectError(err)
	}

	out := map[string]any{
		"payload":        payload,
		"encoded_length": encodedLen,
		"truncated":      isTruncated(fields.to, payload, encodedLen),
	}
	if key != "" {
		out["archive_key"] = key
	}
	msg, err := structpb.NewStruct(out)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}

// Types lists the message types the converter knows.
func (h *Handler) Types(_ context.Context, _ *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	names := h.Converter.Types()
	list := make([]any, len(names))
	for i, name := range names {
		list[i] = name
	}
	msg, err := structpb.NewStruct(map[string]any{"types": list})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}

type convertRequest struct {
	pdu, from, to, payload string
	archive                bool
}

func (r *convertRequest) parse(msg *structpb.Struct) error {
	fields := msg.GetFields()
	for name, dst := range map[string]*string{"pdu": &r.pdu, "from": &r.from, "to": &r.to, "payload": &r.payload} {
		value, ok := fields[name]
		if !ok {
			return fmt.Errorf("missing field %q", name)
		}
		str, ok := value.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return fmt.Errorf("field %q must be a string", name)
		}
		*dst = str.StringValue
	}
	if value, ok := fields["archive"]; ok {
		flag, ok := value.GetKind().(*structpb.Value_BoolValue)
		if !ok {
			return errors.New(`field "archive" must be a bool`)
		}
		r.archive = flag.BoolValue
	}
	return nil
}

func isTruncated(to, payload string, encodedLen int) bool {
	if to == asntransform.SyntaxUPER.String() {
		return len(payload) < 2*encodedLen
	}
	return len(payload) < encodedLen
}

// connectError maps conversion failures to Connect codes. Anything the
// caller sent wrong is InvalidArgument.
func connectError(err error) *connect.Error {
	var code connect.Code
	switch {
	case errors.Is(err, asntransform.ErrUnknownMessageType),
		errors.Is(err, asntransform.ErrUnknownSyntax),
		errors.Is(err, asntransform.ErrInvalidHexDigit),
		errors.Is(err, asntransform.ErrOddLengthHex),
		errors.Is(err, asntransform.ErrDecode),
		errors.Is(err, asntransform.ErrConstraintViolation):
		code = connect.CodeInvalidArgument
	case errors.Is(err, asntransform.ErrNoArchive):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, asntransform.ErrEncode):
		code = connect.CodeInternal
	default:
		// archive backends
		code = connect.CodeUnavailable
	}
	return connect.NewError(code, err)
}
