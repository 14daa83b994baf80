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

package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bufbuild/connect-go"
	"github.com/rs/zerolog"
)

// TokenEnvVar names the environment variable that TokenFromEnvironment
// consults.
const TokenEnvVar = "ASNTRANSFORM_TOKEN"

var errUnauthenticated = errors.New("missing or invalid bearer token")

// NewAuthInterceptor accepts a token and returns an interceptor which can
// be used when creating a Connect client so that every call to the
// conversion service is authenticated.
//
// To get a token from the environment, see TokenFromEnvironment.
func NewAuthInterceptor(token string) connect.Interceptor {
	bearerAuthValue := fmt.Sprintf("Bearer %s", token)
	return connect.UnaryInterceptorFunc(func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, request connect.AnyRequest) (connect.AnyResponse, error) {
			request.Header().Set("Authorization", bearerAuthValue)
			return next(ctx, request)
		}
	})
}

// NewTokenCheckInterceptor returns a handler interceptor that rejects
// calls whose bearer token is not one of tokens.
func NewTokenCheckInterceptor(tokens ...string) connect.Interceptor {
	allowed := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		allowed[token] = struct{}{}
	}
	return connect.UnaryInterceptorFunc(func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, request connect.AnyRequest) (connect.AnyResponse, error) {
			token, ok := strings.CutPrefix(request.Header().Get("Authorization"), "Bearer ")
			if _, known := allowed[token]; !ok || !known {
				return nil, connect.NewError(connect.CodeUnauthenticated, errUnauthenticated)
			}
			return next(ctx, request)
		}
	})
}

// NewLoggingInterceptor returns a handler interceptor that logs every call
// with its outcome and duration. Failed calls are logged at warn level.
func NewLoggingInterceptor(logger *zerolog.Logger) connect.Interceptor {
	return connect.UnaryInterceptorFunc(func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, request connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			response, err := next(ctx, request)
			event := logger.Debug()
			if err != nil {
				event = logger.Warn().Err(err)
			}
			event.
				Str("procedure", request.Spec().Procedure).
				Str("peer", request.Peer().Addr).
				Str("code", connect.CodeOf(err).String()).
				Dur("duration", time.Since(start)).
				Msg("rpc")
			return response, err
		}
	})
}

// TokenFromEnvironment returns the token to use with the conversion
// service at host by inspecting the ASNTRANSFORM_TOKEN environment
// variable. The variable holds either a single token or a comma-separated
// list of "token@host" entries.
func TokenFromEnvironment(host string) (string, error) {
	envToken := os.Getenv(TokenEnvVar)
	if envToken == "" {
		return "", fmt.Errorf("no %s environment variable set", TokenEnvVar)
	}
	tok := parseToken(envToken, host)
	if tok == "" {
		return "", fmt.Errorf("%s environment variable did not include a token for host %q", TokenEnvVar, host)
	}
	return tok, nil
}

func parseToken(envVar, host string) string {
	isMultiToken := strings.ContainsAny(envVar, "@,")
	if !isMultiToken {
		return envVar
	}
	suffix := "@" + host
	for _, tokenConfig := range strings.Split(envVar, ",") {
		token, found := strings.CutSuffix(tokenConfig, suffix)
		if !found {
			// did not have the right suffix
			continue
		}
		return token
	}
	return ""
}
