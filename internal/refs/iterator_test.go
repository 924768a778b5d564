// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package refs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainNames(t *testing.T, it *Iterator) []string {
	t.Helper()
	var names []string
	for {
		name, err := it.NextName()
		if errors.Is(err, ErrIterEnd) {
			return names
		}
		require.NoError(t, err)
		names = append(names, name)
	}
}

func TestIterator_MergesLooseAndPacked(t *testing.T) {
	b := newTestBackend(t)
	oid := mustOID(t, "1111111111111111111111111111111111111111")
	require.NoError(t, b.Write(NewDirect("refs/heads/loose", oid), false))
	require.NoError(t, b.Write(NewDirect("refs/heads/packed", oid), false))
	require.NoError(t, b.Compress())
	require.NoError(t, b.Write(NewDirect("refs/heads/loose", oid), true))

	it, err := b.Iterate("")
	require.NoError(t, err)
	names := drainNames(t, it)

	assert.ElementsMatch(t, []string{"refs/heads/loose", "refs/heads/packed"}, names)
}

func TestIterator_LooseShadowsPacked(t *testing.T) {
	b := newTestBackend(t)
	oid1 := mustOID(t, "1111111111111111111111111111111111111111")
	oid2 := mustOID(t, "2222222222222222222222222222222222222222")
	require.NoError(t, b.Write(NewDirect("refs/heads/main", oid1), false))
	require.NoError(t, b.Compress())
	require.NoError(t, b.Write(NewDirect("refs/heads/main", oid2), true))

	it, err := b.Iterate("")
	require.NoError(t, err)

	var seen int
	for {
		ref, err := it.Next()
		if errors.Is(err, ErrIterEnd) {
			break
		}
		require.NoError(t, err)
		if ref.Name() == "refs/heads/main" {
			seen++
			assert.Equal(t, oid2, ref.Oid(), "loose value must shadow the stale packed entry")
		}
	}
	assert.Equal(t, 1, seen, "a shadowed packed entry must not be yielded twice")
}

func TestIterator_GlobFilter(t *testing.T) {
	b := newTestBackend(t)
	oid := mustOID(t, "1111111111111111111111111111111111111111")
	require.NoError(t, b.Write(NewDirect("refs/heads/main", oid), false))
	require.NoError(t, b.Write(NewDirect("refs/tags/v1", oid), false))

	it, err := b.Iterate("refs/tags/*")
	require.NoError(t, err)
	names := drainNames(t, it)
	assert.Equal(t, []string{"refs/tags/v1"}, names)
}

func TestIterator_EmptyYieldsImmediateEnd(t *testing.T) {
	b := newTestBackend(t)
	it, err := b.Iterate("")
	require.NoError(t, err)
	_, err = it.Next()
	assert.ErrorIs(t, err, ErrIterEnd)
}
