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

// Package archivetesting runs the checks every archive backend must pass.
package archivetesting

import (
	"context"
	"crypto/rand"
	"testing"

	"github.com/bufbuild/asntransform"
	"github.com/stretchr/testify/require"
)

// RunSimpleArchiveTests saves and loads a few random results through a
// and returns them by key. notFound is the error Load must match for a key
// that was never saved.
//
//nolint:revive // okay that ctx is second; prefer t to be first
func RunSimpleArchiveTests(t *testing.T, ctx context.Context, a asntransform.Archive, notFound error) map[string][]byte {
	t.Helper()

	// Random content gives random keys, so concurrent runs against a shared
	// server do not see each other's entries.
	entries := make(map[string][]byte, 3)
	keys := make([]string, 0, 3)
	for _, size := range []int{1, 40, 1000} {
		val := make([]byte, size)
		_, err := rand.Read(val)
		require.NoError(t, err)
		key, err := asntransform.ArchiveKey(val)
		require.NoError(t, err)
		entries[key] = val
		keys = append(keys, key)
	}
	first, second, third := keys[0], keys[1], keys[2]

	// load fails since nothing exists
	_, err := a.Load(ctx, first)
	require.ErrorIs(t, err, notFound)
	require.NoError(t, a.Save(ctx, first, entries[first]))
	loaded, err := a.Load(ctx, first)
	require.NoError(t, err)
	require.Equal(t, entries[first], loaded)

	// another key
	_, err = a.Load(ctx, second)
	require.ErrorIs(t, err, notFound)
	require.NoError(t, a.Save(ctx, second, entries[second]))
	loaded, err = a.Load(ctx, second)
	require.NoError(t, err)
	require.Equal(t, entries[second], loaded)

	// first key unchanged
	loaded, err = a.Load(ctx, first)
	require.NoError(t, err)
	require.Equal(t, entries[first], loaded)

	// saving the same content twice is harmless
	require.NoError(t, a.Save(ctx, third, entries[third]))
	require.NoError(t, a.Save(ctx, third, entries[third]))
	loaded, err = a.Load(ctx, third)
	require.NoError(t, err)
	require.Equal(t, entries[third], loaded)

	return entries
}
