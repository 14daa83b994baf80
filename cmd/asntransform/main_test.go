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

package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/bufbuild/asntransform"
	"github.com/bufbuild/asntransform/archive/filearchive"
	"github.com/bufbuild/asntransform/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	spatHex  = "0000025883000000002003"
	spatJSON = `{"intersections":[{"id":{"id":1201},"revision":3,"status":"0000",` +
		`"states":[{"signalGroup":2,"state-time-speed":[{"eventState":"stop-And-Remain"}]}]}]}`
)

func TestReadLine(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name, input, want string
	}{
		{name: "lf", input: "abc\n", want: "abc"},
		{name: "crlf", input: "abc\r\n", want: "abc"},
		{name: "no line ending", input: "abc", want: "abc"},
		{name: "only first line", input: "abc\ndef\n", want: "abc"},
		{name: "empty", input: "", want: ""},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			got, err := readLine(strings.NewReader(testCase.input))
			require.NoError(t, err)
			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestConvertLine(t *testing.T) {
	t.Parallel()
	t.Run("uper to jer", func(t *testing.T) {
		t.Parallel()
		var stdout, stderr bytes.Buffer
		logger := newLogger(&stderr, zerolog.DebugLevel)
		converter := newConverter(defaultConfig(), logger, nil)
		err := convertLine(context.Background(), converter, logger, defaultMaxOutput, "uper", "jer", "SPAT", strings.NewReader(spatHex+"\r\n"), &stdout)
		require.NoError(t, err)
		assert.Equal(t, spatJSON+"\n", stdout.String())
		assert.Contains(t, stderr.String(), "converting")
	})
	t.Run("truncated", func(t *testing.T) {
		t.Parallel()
		var stdout, stderr bytes.Buffer
		logger := newLogger(&stderr, zerolog.InfoLevel)
		converter := newConverter(defaultConfig(), logger, nil)
		err := convertLine(context.Background(), converter, logger, 6, "jer", "uper", "SPAT", strings.NewReader(spatJSON+"\n"), &stdout)
		require.NoError(t, err)
		assert.Equal(t, spatHex[:6]+"\n", stdout.String())
		assert.Contains(t, stderr.String(), "truncating output")
	})
	t.Run("archived", func(t *testing.T) {
		t.Parallel()
		var stdout, stderr bytes.Buffer
		logger := newLogger(&stderr, zerolog.InfoLevel)
		store, err := filearchive.New(filearchive.Config{Path: t.TempDir()})
		require.NoError(t, err)
		converter := newConverter(defaultConfig(), logger, store)
		err = convertLine(context.Background(), converter, logger, defaultMaxOutput, "jer", "uper", "SPAT", strings.NewReader(spatJSON+"\n"), &stdout)
		require.NoError(t, err)
		assert.Equal(t, spatHex+"\n", stdout.String())
		assert.Contains(t, stderr.String(), "result archived")
	})
	t.Run("failure writes nothing", func(t *testing.T) {
		t.Parallel()
		var stdout, stderr bytes.Buffer
		logger := newLogger(&stderr, zerolog.InfoLevel)
		converter := newConverter(defaultConfig(), logger, nil)
		err := convertLine(context.Background(), converter, logger, defaultMaxOutput, "uper", "jer", "SPAT", strings.NewReader("0\n"), &stdout)
		require.ErrorIs(t, err, asntransform.ErrOddLengthHex)
		assert.Empty(t, stdout.String())
	})
}

func TestNewConverter_StripRegional(t *testing.T) {
	t.Parallel()
	cfg := defaultConfig()
	cfg.StripRegional = true
	converter := newConverter(cfg, newLogger(&bytes.Buffer{}, zerolog.InfoLevel), nil)
	require.Len(t, converter.Filters, 1)

	input := `{"intersections":[{"id":{"id":1201},"revision":3,"status":"0000",` +
		`"states":[{"signalGroup":2,"state-time-speed":[{"eventState":"stop-And-Remain"}]}],` +
		`"regional":[{"regionId":1,"regExtValue":"00"}]}]}`
	got, _, err := converter.ConvertString(context.Background(), "SPAT", "jer", "jer", input, defaultMaxOutput)
	require.NoError(t, err)
	assert.Equal(t, spatJSON, got)
}

func TestInspect(t *testing.T) {
	t.Parallel()
	codec := asntransform.DefaultSchemaCodec()
	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		require.NoError(t, inspect(codec, "uper", "SPAT", strings.NewReader(spatHex+"\n"), &out))
		assert.True(t, strings.HasPrefix(out.String(), "SPAT "))
		assert.Contains(t, out.String(), "stop-And-Remain")
		assert.NotContains(t, out.String(), "constraint violation")
	})
	t.Run("constraint violation", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		input := strings.Replace(spatJSON, `"revision":3`, `"revision":200`, 1)
		require.NoError(t, inspect(codec, "jer", "SPAT", strings.NewReader(input), &out))
		assert.Contains(t, out.String(), "constraint violation")
	})
	t.Run("errors", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		require.ErrorIs(t, inspect(codec, "ber", "SPAT", strings.NewReader(spatHex), &out), asntransform.ErrUnknownSyntax)
		require.ErrorIs(t, inspect(codec, "uper", "MapData", strings.NewReader(spatHex), &out), asntransform.ErrUnknownMessageType)
		require.ErrorIs(t, inspect(codec, "xer", "SPAT", strings.NewReader("<SPAT>"), &out), asntransform.ErrDecode)
		assert.Empty(t, out.String())
	})
}

func TestServeToken(t *testing.T) {
	t.Setenv(service.TokenEnvVar, "")
	assert.Equal(t, "flag", serveToken("flag", "localhost:8080"))
	assert.Empty(t, serveToken("", "localhost:8080"))

	t.Setenv(service.TokenEnvVar, "local@localhost,remote@example.com")
	assert.Equal(t, "flag", serveToken("flag", "localhost:8080"))
	assert.Equal(t, "local", serveToken("", "localhost:8080"))
	assert.Equal(t, "remote", serveToken("", "example.com"))
	assert.Empty(t, serveToken("", ":8080"))
}
