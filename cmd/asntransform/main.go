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

// Command asntransform converts J2735 messages between UPER, XER and JER.
//
// The convert subcommand reads one message per invocation from standard
// input, one line long, and writes the result followed by a newline to
// standard output. UPER is read and written as hex text. Diagnostics go to
// standard error.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bufbuild/asntransform"
	"github.com/bufbuild/asntransform/service"
	"github.com/bufbuild/connect-go"
	"github.com/creachadair/command"
	"github.com/creachadair/flax"
	"github.com/kr/pretty"
	"github.com/rs/zerolog"
)

var globalArgs struct {
	Config        string `flag:"config,Path of a TOML configuration file"`
	MaxOutput     int    `flag:"max-output,Maximum length of the output in bytes (default 65535)"`
	StripRegional bool   `flag:"strip-regional,Remove regional extensions before encoding"`
	ArchiveDir    string `flag:"archive-dir,Save every result in this directory, named by content hash"`
	Verbose       bool   `flag:"verbose,Log debug output on stderr"`
}

var serveArgs struct {
	Addr  string `flag:"addr,Address to listen on (default localhost:8080)"`
	Token string `flag:"token,Require this bearer token from clients (default from $ASNTRANSFORM_TOKEN)"`
}

func main() {
	root := &command.C{
		Name:     "asntransform",
		Usage:    "command args...",
		Help:     "Convert J2735 V2X messages between UPER (as hex), XER and JER.",
		SetFlags: command.Flags(flax.MustBind, &globalArgs),
		Commands: []*command.C{
			{
				Name:  "convert",
				Usage: "convert <from> <to> <pdu>",
				Help: `Convert one message read from stdin.

The message is the first line of standard input, without its line ending.
<from> and <to> are transfer syntaxes: uper, xer or jer. UPER is read and
written as hex text. <pdu> is a message type name, see "types".

Output longer than --max-output bytes is truncated, with a warning on
stderr.`,
				Run: runConvert,
			},
			{
				Name:  "inspect",
				Usage: "inspect <syntax> <pdu>",
				Help: `Decode a message read from stdin and print its structure.

The whole of standard input is read. Constraint violations are reported
after the value.`,
				Run: runInspect,
			},
			{
				Name:  "types",
				Usage: "types",
				Help:  "List the message types that can be converted.",
				Run:   runTypes,
			},
			{
				Name:     "serve",
				Usage:    "serve",
				Help:     "Serve conversions over Connect, gRPC and gRPC-Web.",
				SetFlags: command.Flags(flax.MustBind, &serveArgs),
				Run:      runServe,
			},
			command.HelpCommand(nil),
			command.VersionCommand(),
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	env := root.NewEnv(nil).SetContext(ctx)
	command.RunOrFail(env, os.Args[1:])
}

// setup loads the configuration, applies flags over it and builds the
// logger and converter every subcommand uses.
func setup() (config, *zerolog.Logger, *asntransform.Converter, func() error, error) {
	cfg, err := loadConfig(globalArgs.Config)
	if err != nil {
		return config{}, nil, nil, nil, err
	}
	if globalArgs.MaxOutput > 0 {
		cfg.MaxOutput = globalArgs.MaxOutput
	}
	if globalArgs.StripRegional {
		cfg.StripRegional = true
	}
	if globalArgs.ArchiveDir != "" {
		cfg.Archive = archiveConfig{Kind: "file", Path: globalArgs.ArchiveDir}
	}
	if globalArgs.Verbose {
		cfg.LogLevel = zerolog.DebugLevel
	}
	if err := cfg.validate(); err != nil {
		return config{}, nil, nil, nil, err
	}

	logger := newLogger(os.Stderr, cfg.LogLevel)
	store, closer, err := openArchive(cfg.Archive)
	if err != nil {
		return config{}, nil, nil, nil, fmt.Errorf("opening archive: %w", err)
	}
	return cfg, logger, newConverter(cfg, logger, store), closer, nil
}

func newLogger(out io.Writer, level zerolog.Level) *zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).Level(level).With().Timestamp().Str("app", "asntransform").Logger()
	return &logger
}

func newConverter(cfg config, logger *zerolog.Logger, store asntransform.Archive) *asntransform.Converter {
	converter := &asntransform.Converter{
		Logger:  logger,
		Archive: store,
	}
	if cfg.StripRegional {
		converter.Filters = append(converter.Filters, asntransform.Redact(asntransform.IsRegionalExtension))
	}
	return converter
}

func runConvert(env *command.Env) error {
	if len(env.Args) != 3 {
		return env.Usagef("convert requires exactly three arguments: <from> <to> <pdu>")
	}
	cfg, logger, converter, closer, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		_ = closer()
	}()
	return convertLine(env.Context(), converter, logger, cfg.MaxOutput, env.Args[0], env.Args[1], env.Args[2], os.Stdin, os.Stdout)
}

// convertLine converts the first line of in and writes the result, plus a
// newline, to out.
func convertLine(
	ctx context.Context,
	converter *asntransform.Converter,
	logger *zerolog.Logger,
	maxOutput int,
	from, to, pdu string,
	in io.Reader,
	out io.Writer,
) error {
	line, err := readLine(in)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	logger.Debug().Str("pdu", pdu).Str("from", from).Str("to", to).Str("input", line).Msg("converting")

	var (
		result string
		key    string
	)
	if converter.Archive != nil {
		result, _, key, err = converter.ConvertStringAndArchive(ctx, pdu, from, to, line, maxOutput)
	} else {
		result, _, err = converter.ConvertString(ctx, pdu, from, to, line, maxOutput)
	}
	if err != nil {
		return err
	}
	if key != "" {
		logger.Info().Str("key", key).Msg("result archived")
	}
	_, err = fmt.Fprintln(out, result)
	return err
}

// readLine returns the first line of r without its line ending.
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runInspect(env *command.Env) error {
	if len(env.Args) != 2 {
		return env.Usagef("inspect requires exactly two arguments: <syntax> <pdu>")
	}
	return inspect(asntransform.DefaultSchemaCodec(), env.Args[0], env.Args[1], os.Stdin, os.Stdout)
}

func inspect(codec asntransform.SchemaCodec, syntaxName, pdu string, in io.Reader, out io.Writer) error {
	syntax, err := asntransform.ParseSyntax(syntaxName)
	if err != nil {
		return err
	}
	t, err := codec.FindType(pdu)
	if err != nil {
		return fmt.Errorf("%w: %w", asntransform.ErrUnknownMessageType, err)
	}
	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	data := []byte(strings.TrimRight(string(raw), "\r\n"))
	if syntax.IsBinary() {
		if data, err = asntransform.DecodeHex(string(data)); err != nil {
			return err
		}
	}
	value, err := codec.Decode(syntax, t, data)
	defer codec.Release(t, value)
	if err != nil {
		return fmt.Errorf("%w: %w", asntransform.ErrDecode, err)
	}
	fmt.Fprintf(out, "%s %# v\n", t.Name, pretty.Formatter(value))
	if err := codec.CheckConstraints(t, value); err != nil {
		fmt.Fprintf(out, "constraint violation: %v\n", err)
	}
	return nil
}

func runTypes(env *command.Env) error {
	if len(env.Args) != 0 {
		return env.Usagef("types takes no arguments")
	}
	for _, name := range (&asntransform.Converter{}).Types() {
		fmt.Println(name)
	}
	return nil
}

// serveToken returns the bearer token clients must present: the --token
// flag if set, otherwise the environment's token for the listen host. An
// empty result leaves the service open.
func serveToken(flagToken, addr string) string {
	if flagToken != "" {
		return flagToken
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	token, err := service.TokenFromEnvironment(host)
	if err != nil {
		return ""
	}
	return token
}

func runServe(env *command.Env) error {
	cfg, logger, converter, closer, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		_ = closer()
	}()
	addr := cfg.ListenAddr
	if serveArgs.Addr != "" {
		addr = serveArgs.Addr
	}

	var options []connect.HandlerOption
	if token := serveToken(serveArgs.Token, addr); token != "" {
		options = append(options, connect.WithInterceptors(service.NewTokenCheckInterceptor(token)))
	}
	mux := http.NewServeMux()
	mux.Handle(service.NewHandler(&service.Handler{
		Converter: converter,
		MaxOutput: cfg.MaxOutput,
		Logger:    logger,
	}, options...))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return env.Context() },
	}
	go func() {
		<-env.Context().Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}()
	logger.Info().Str("addr", listener.Addr().String()).Msg("serving")
	if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
