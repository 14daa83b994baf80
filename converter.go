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
	stderrors "errors"
	"strings"
	"sync"
	"time"

	"github.com/bufbuild/asntransform/schema"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ErrNoArchive is returned by [Converter.ConvertAndArchive] when the
// converter has no Archive.
var ErrNoArchive = stderrors.New("converter has no archive")

var defaultCodec = sync.OnceValue(DefaultSchemaCodec) //nolint:gochecknoglobals

// Converter allows callers to convert a message from one transfer syntax to
// another. The zero value converts the J2735 message set and logs nothing.
// A Converter is safe for concurrent use once its fields are set.
type Converter struct {
	// Codec resolves message types and reads, validates and writes their
	// values. If nil, this defaults to [DefaultSchemaCodec].
	Codec SchemaCodec
	// Filters are a set of user-supplied actions which will be performed on
	// every decoded value before it is validated and encoded, meaning the
	// output value can be modified according to some set of rules.
	Filters Filters
	// Logger receives a record of every failed conversion and every
	// truncated output. If nil, nothing is logged.
	Logger *zerolog.Logger
	// Archive, if set, receives the results of ConvertAndArchive.
	Archive Archive
}

func (c *Converter) codec() SchemaCodec {
	if c.Codec != nil {
		return c.Codec
	}
	return defaultCodec()
}

func (c *Converter) logger() *zerolog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	nop := zerolog.Nop()
	return &nop
}

// Convert decodes input as a typeName message in the from syntax, checks
// it against the type's constraints and returns its encoding in the to
// syntax. UPER input and output are raw bytes, not hex.
func (c *Converter) Convert(ctx context.Context, typeName, from, to string, input []byte) ([]byte, error) {
	t, src, dst, err := c.resolve(typeName, from, to)
	if err != nil {
		c.logFailure(err, typeName, from, to)
		return nil, err
	}
	return c.convert(ctx, t, src, dst, input)
}

// ConvertBytes is Convert with a caller-supplied output buffer. At most
// len(output) bytes are written. It returns the length of the full
// encoding, so a result larger than len(output) means the output was
// truncated; truncation is logged but is not an error. Nothing is written
// to output when an error is returned.
func (c *Converter) ConvertBytes(ctx context.Context, typeName, from, to string, input, output []byte) (int, error) {
	encoded, err := c.Convert(ctx, typeName, from, to, input)
	if err != nil {
		return 0, err
	}
	c.deliver(ctx, typeName, to, output, encoded)
	return len(encoded), nil
}

// ConvertString converts a message held as text. The input ends at its
// first NUL character, if any. UPER travels as hex text on both sides.
//
// The result holds at most maxLen bytes, truncated with a logged warning
// otherwise. The returned length is that of the full encoding before any
// hex expansion, as ConvertBytes would return with a maxLen byte buffer.
// For UPER output, the hex text is complete when twice that length fits
// in maxLen.
func (c *Converter) ConvertString(ctx context.Context, typeName, from, to, input string, maxLen int) (string, int, error) {
	text, n, _, err := c.convertString(ctx, typeName, from, to, input, maxLen, false)
	return text, n, err
}

// ConvertStringAndArchive is ConvertString that also saves the full
// result in the converter's Archive, whatever maxLen is. It returns the
// key the result was saved under as well.
func (c *Converter) ConvertStringAndArchive(ctx context.Context, typeName, from, to, input string, maxLen int) (string, int, string, error) {
	if c.Archive == nil {
		return "", 0, "", ErrNoArchive
	}
	return c.convertString(ctx, typeName, from, to, input, maxLen, true)
}

// ConvertAndArchive converts like Convert and saves the result in the
// converter's Archive. It returns the result and the key it was saved
// under, see [ArchiveKey].
func (c *Converter) ConvertAndArchive(ctx context.Context, typeName, from, to string, input []byte) ([]byte, string, error) {
	if c.Archive == nil {
		return nil, "", ErrNoArchive
	}
	encoded, err := c.Convert(ctx, typeName, from, to, input)
	if err != nil {
		return nil, "", err
	}
	key, err := c.save(ctx, typeName, encoded)
	if err != nil {
		return nil, "", err
	}
	return encoded, key, nil
}

// Types lists the message types the converter's codec can resolve, when
// the codec can enumerate them.
func (c *Converter) Types() []string {
	if lister, ok := c.codec().(interface{ Names() []string }); ok {
		return lister.Names()
	}
	return nil
}

func (c *Converter) convertString(ctx context.Context, typeName, from, to, input string, maxLen int, archive bool) (string, int, string, error) {
	if end := strings.IndexByte(input, 0); end >= 0 {
		input = input[:end]
	}
	if maxLen < 0 {
		maxLen = 0
	}
	t, src, dst, err := c.resolve(typeName, from, to)
	if err != nil {
		c.logFailure(err, typeName, from, to)
		return "", 0, "", err
	}
	payload := []byte(input)
	if src.IsBinary() {
		if payload, err = DecodeHex(input); err != nil {
			var hexErr *HexError
			sentinel := ErrInvalidHexDigit
			if stderrors.As(err, &hexErr) {
				sentinel = hexErr.Err
			}
			err = &ConversionError{Err: sentinel, Op: "hex", TypeName: typeName, Syntax: from, Cause: err}
			c.logFailure(err, typeName, from, to)
			return "", 0, "", err
		}
	}
	encoded, err := c.convert(ctx, t, src, dst, payload)
	if err != nil {
		return "", 0, "", err
	}
	var key string
	if archive {
		if key, err = c.save(ctx, typeName, encoded); err != nil {
			return "", 0, "", err
		}
	}
	if dst.IsBinary() {
		// Only the hex digits that fit are produced.
		text := EncodeHex(encoded[:min(len(encoded), maxLen/2+maxLen%2)])
		if 2*len(encoded) > maxLen {
			c.truncated(ctx, typeName, to, maxLen, 2*len(encoded))
			text = text[:maxLen]
		}
		return text, len(encoded), key, nil
	}
	buf := make([]byte, min(maxLen, len(encoded)))
	c.deliver(ctx, typeName, to, buf, encoded)
	return string(buf), len(encoded), key, nil
}

func (c *Converter) save(ctx context.Context, typeName string, encoded []byte) (string, error) {
	key, err := ArchiveKey(encoded)
	if err != nil {
		return "", errors.Wrap(err, "archive key cannot be computed")
	}
	if err := c.Archive.Save(ctx, key, encoded); err != nil {
		c.logger().Error().Err(err).Str("type_name", typeName).Str("key", key).Msg("archive save failed")
		return "", errors.Wrapf(err, "result cannot be archived under %s", key)
	}
	emitArchiveSaved(ctx, typeName, key, len(encoded))
	return key, nil
}

func (c *Converter) resolve(typeName, from, to string) (*schema.Type, Syntax, Syntax, error) {
	t, err := c.codec().FindType(typeName)
	if err != nil {
		return nil, 0, 0, &ConversionError{
			Err:      ErrUnknownMessageType,
			Op:       "resolve",
			TypeName: typeName,
			Cause:    errors.Wrapf(err, "message type '%s' is not in the registry", typeName),
		}
	}
	src, err := ParseSyntax(from)
	if err != nil {
		return nil, 0, 0, &ConversionError{Err: ErrUnknownSyntax, Op: "resolve", TypeName: typeName, Syntax: from}
	}
	dst, err := ParseSyntax(to)
	if err != nil {
		return nil, 0, 0, &ConversionError{Err: ErrUnknownSyntax, Op: "resolve", TypeName: typeName, Syntax: to}
	}
	return t, src, dst, nil
}

func (c *Converter) convert(ctx context.Context, t *schema.Type, src, dst Syntax, input []byte) (encoded []byte, err error) {
	start := time.Now()
	emitConvertStart(ctx, t.Name, src.String(), dst.String(), len(input))
	defer func() {
		emitConvertComplete(ctx, t.Name, src.String(), dst.String(), len(encoded), time.Since(start), err)
		if err != nil {
			c.logFailure(err, t.Name, src.String(), dst.String())
		}
	}()
	return c.transcode(t, src, dst, input)
}

// transcode runs decode, filters, constraint check and encode. The decoded
// value, and every value a filter replaced it with, is released when it
// returns, whatever the outcome.
func (c *Converter) transcode(t *schema.Type, src, dst Syntax, input []byte) ([]byte, error) {
	codec := c.codec()
	value, err := codec.Decode(src, t, input)
	var replaced []any
	defer func() {
		codec.Release(t, value)
		for _, v := range replaced {
			codec.Release(t, v)
		}
	}()
	if err != nil {
		return nil, &ConversionError{
			Err:      ErrDecode,
			Op:       "decode",
			TypeName: t.Name,
			Syntax:   src.String(),
			Cause:    errors.Wrapf(err, "input cannot be unmarshaled to %s", t.Name),
		}
	}

	// apply filters
	value = c.Filters.do(t, value, func(v any) {
		replaced = append(replaced, v)
	})

	if err := codec.CheckConstraints(t, value); err != nil {
		return nil, &ConversionError{Err: ErrConstraintViolation, Op: "check", TypeName: t.Name, Cause: err}
	}
	data, err := codec.Encode(dst, t, value)
	if err == nil && len(data) == 0 {
		err = stderrors.New("no bytes produced")
	}
	if err != nil {
		return nil, &ConversionError{
			Err:      ErrEncode,
			Op:       "encode",
			TypeName: t.Name,
			Syntax:   dst.String(),
			Cause:    errors.Wrapf(err, "%s value cannot be marshaled", t.Name),
		}
	}
	return data, nil
}

// deliver copies as much of encoded as fits into output and returns the
// number of bytes copied.
func (c *Converter) deliver(ctx context.Context, typeName, to string, output, encoded []byte) int {
	n := copy(output, encoded)
	if n < len(encoded) {
		c.truncated(ctx, typeName, to, len(output), len(encoded))
	}
	return n
}

func (c *Converter) truncated(ctx context.Context, typeName, to string, limit, encoded int) {
	c.logger().Warn().
		Err(ErrOutputTruncated).
		Str("type_name", typeName).
		Str("to", to).
		Int("max", limit).
		Int("encoded", encoded).
		Msgf("truncating output, max buffer size %d is too small", limit)
	emitOutputTruncated(ctx, typeName, to, limit, encoded)
}

func (c *Converter) logFailure(err error, typeName, from, to string) {
	c.logger().Error().
		Err(err).
		Str("type_name", typeName).
		Str("from", from).
		Str("to", to).
		Msg("conversion failed")
}
