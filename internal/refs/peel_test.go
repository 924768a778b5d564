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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectDB struct {
	objects map[OID]ObjectInfo
}

func (f *fakeObjectDB) Lookup(oid OID) (ObjectInfo, error) {
	info, ok := f.objects[oid]
	if !ok {
		return ObjectInfo{}, fmt.Errorf("no such object %s", oid)
	}
	return info, nil
}

func TestResolvePeel_NonTagMarksCannotPeel(t *testing.T) {
	commit := mustOID(t, "1111111111111111111111111111111111111111")
	db := &fakeObjectDB{objects: map[OID]ObjectInfo{commit: {Kind: ObjectCommit}}}

	e := &PackedEntry{Name: "refs/heads/main", Oid: commit}
	require.NoError(t, ResolvePeel(db, e))
	assert.True(t, e.Flags.Has(FlagCannotPeel))
	assert.False(t, e.Flags.Has(FlagHasPeel))
}

func TestResolvePeel_SingleTagPeelsToCommit(t *testing.T) {
	commit := mustOID(t, "1111111111111111111111111111111111111111")
	tag := mustOID(t, "2222222222222222222222222222222222222222")
	db := &fakeObjectDB{objects: map[OID]ObjectInfo{
		commit: {Kind: ObjectCommit},
		tag:    {Kind: ObjectTag, TagTarget: commit},
	}}

	e := &PackedEntry{Name: "refs/tags/v1", Oid: tag}
	require.NoError(t, ResolvePeel(db, e))
	assert.True(t, e.Flags.Has(FlagHasPeel))
	assert.Equal(t, commit, e.Peel)
}

func TestResolvePeel_ChainedTagsWalkToFinalCommit(t *testing.T) {
	commit := mustOID(t, "1111111111111111111111111111111111111111")
	tag1 := mustOID(t, "2222222222222222222222222222222222222222")
	tag2 := mustOID(t, "3333333333333333333333333333333333333333")
	db := &fakeObjectDB{objects: map[OID]ObjectInfo{
		commit: {Kind: ObjectCommit},
		tag1:   {Kind: ObjectTag, TagTarget: commit},
		tag2:   {Kind: ObjectTag, TagTarget: tag1},
	}}

	e := &PackedEntry{Name: "refs/tags/nested", Oid: tag2}
	require.NoError(t, ResolvePeel(db, e))
	assert.Equal(t, commit, e.Peel)
}

func TestResolvePeel_IdempotentWhenAlreadyResolved(t *testing.T) {
	db := &fakeObjectDB{objects: map[OID]ObjectInfo{}}
	e := &PackedEntry{Name: "refs/tags/v1", Flags: FlagCannotPeel}
	require.NoError(t, ResolvePeel(db, e))
	assert.True(t, e.Flags.Has(FlagCannotPeel))
}

func TestResolvePeel_LookupFailurePropagates(t *testing.T) {
	db := &fakeObjectDB{objects: map[OID]ObjectInfo{}}
	e := &PackedEntry{Name: "refs/tags/v1", Oid: mustOID(t, "1111111111111111111111111111111111111111")}
	err := ResolvePeel(db, e)
	assert.Error(t, err)
	assert.False(t, e.Flags.Has(FlagHasPeel))
	assert.False(t, e.Flags.Has(FlagCannotPeel))
}
