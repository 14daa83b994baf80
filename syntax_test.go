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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSyntax(t *testing.T) {
	t.Parallel()
	for _, syntax := range Syntaxes() {
		got, err := ParseSyntax(syntax.String())
		require.NoError(t, err)
		assert.Equal(t, syntax, got)
	}
	for _, abbrev := range []string{"", "ber", "per", "UPER", "Jer", " xer"} {
		_, err := ParseSyntax(abbrev)
		assert.ErrorIs(t, err, ErrUnknownSyntax, abbrev)
	}
}

func TestSyntax(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"uper", "xer", "jer"}, []string{SyntaxUPER.String(), SyntaxXER.String(), SyntaxJER.String()})
	assert.True(t, SyntaxUPER.IsBinary())
	assert.False(t, SyntaxXER.IsBinary())
	assert.False(t, SyntaxJER.IsBinary())
	assert.Equal(t, "Syntax(9)", Syntax(9).String())
}
