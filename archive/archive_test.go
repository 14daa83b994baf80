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

package archive

import (
	"context"
	"sync"
	"testing"

	"github.com/bufbuild/asntransform"
	"github.com/bufbuild/asntransform/archive/internal/archivetesting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapArchive struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *mapArchive) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (m *mapArchive) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func TestVerified(t *testing.T) {
	t.Parallel()
	t.Run("simple", func(t *testing.T) {
		t.Parallel()
		archivetesting.RunSimpleArchiveTests(t, context.Background(), Verified(&mapArchive{}), ErrNotFound)
	})
	t.Run("rejects mismatched save", func(t *testing.T) {
		t.Parallel()
		store := &mapArchive{}
		key, err := asntransform.ArchiveKey([]byte("one"))
		require.NoError(t, err)
		err = Verified(store).Save(context.Background(), key, []byte("two"))
		require.ErrorIs(t, err, ErrCorrupt)
		assert.Empty(t, store.data)
	})
	t.Run("rejects corrupted load", func(t *testing.T) {
		t.Parallel()
		store := &mapArchive{}
		key, err := asntransform.ArchiveKey([]byte("one"))
		require.NoError(t, err)
		require.NoError(t, store.Save(context.Background(), key, []byte("two")))
		_, err = Verified(store).Load(context.Background(), key)
		require.ErrorIs(t, err, ErrCorrupt)
	})
}
