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

package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/googlecloudplatform/refdb/internal/objectdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runRootCmd executes rootCmd once with the given args against a fresh
// stdout/stderr buffer, returning what the command printed. Subcommand flag
// variables are reset first, so a flag set by an earlier call does not leak
// into this one.
func runRootCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	updateRefForce, updateRefOld, renameRefForce, forEachRefGlob = false, "", false, ""
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_UpdateShowForEachRefRoundTrip(t *testing.T) {
	root := t.TempDir()
	oid := strings.Repeat("a", 40)

	_, err := runRootCmd(t, "update-ref", "refs/heads/main", oid, "--root", root)
	require.NoError(t, err)

	out, err := runRootCmd(t, "show-ref", "refs/heads/main", "--root", root)
	require.NoError(t, err)
	assert.Equal(t, oid+"\trefs/heads/main\n", out)

	out, err = runRootCmd(t, "for-each-ref", "--root", root)
	require.NoError(t, err)
	assert.Equal(t, oid+"\trefs/heads/main\n", out)
}

func TestRootCmd_ShowRefMissingNameFails(t *testing.T) {
	root := t.TempDir()
	out, err := runRootCmd(t, "show-ref", "refs/heads/does-not-exist", "--root", root)
	assert.Error(t, err)
	assert.Empty(t, out)
}

func TestRootCmd_UpdateRefWithoutForceRejectsExisting(t *testing.T) {
	root := t.TempDir()
	oid := strings.Repeat("b", 40)

	_, err := runRootCmd(t, "update-ref", "refs/heads/dev", oid, "--root", root, "--force=false")
	require.NoError(t, err)

	_, err = runRootCmd(t, "update-ref", "refs/heads/dev", oid, "--root", root, "--force=false")
	assert.Error(t, err)

	_, err = runRootCmd(t, "update-ref", "refs/heads/dev", oid, "--root", root, "--force=true")
	assert.NoError(t, err)
}

func TestRootCmd_UpdateRefOldGuardsCompareAndSwap(t *testing.T) {
	root := t.TempDir()
	first := strings.Repeat("e", 40)
	second := strings.Repeat("f", 40)

	_, err := runRootCmd(t, "update-ref", "refs/heads/cas", first, "--root", root, "--force=false")
	require.NoError(t, err)

	_, err = runRootCmd(t, "update-ref", "refs/heads/cas", second, "--root", root, "--old", strings.Repeat("0", 40))
	assert.Error(t, err, "a stale --old value must reject the update")

	out, err := runRootCmd(t, "show-ref", "refs/heads/cas", "--root", root)
	require.NoError(t, err)
	assert.Equal(t, first+"\trefs/heads/cas\n", out, "a rejected compare-and-swap must leave the value in place")

	_, err = runRootCmd(t, "update-ref", "refs/heads/cas", second, "--root", root, "--old", first)
	require.NoError(t, err)

	out, err = runRootCmd(t, "show-ref", "refs/heads/cas", "--root", root)
	require.NoError(t, err)
	assert.Equal(t, second+"\trefs/heads/cas\n", out)
}

func TestRootCmd_UpdateRefSymbolicTarget(t *testing.T) {
	root := t.TempDir()
	oid := strings.Repeat("1", 40)

	_, err := runRootCmd(t, "update-ref", "refs/heads/main", oid, "--root", root, "--force=false")
	require.NoError(t, err)

	_, err = runRootCmd(t, "update-ref", "HEAD", "ref:refs/heads/main", "--root", root, "--force=true")
	require.NoError(t, err)

	out, err := runRootCmd(t, "show-ref", "HEAD", "--root", root)
	require.NoError(t, err)
	assert.Equal(t, "ref: refs/heads/main\tHEAD\n", out)
}

func TestRootCmd_DeleteRefRemovesIt(t *testing.T) {
	root := t.TempDir()
	oid := strings.Repeat("c", 40)

	_, err := runRootCmd(t, "update-ref", "refs/heads/tmp", oid, "--root", root, "--force=false")
	require.NoError(t, err)

	_, err = runRootCmd(t, "delete-ref", "refs/heads/tmp", "--root", root)
	require.NoError(t, err)

	_, err = runRootCmd(t, "show-ref", "refs/heads/tmp", "--root", root)
	assert.Error(t, err)
}

func TestRootCmd_PackRefsCompletesWithoutError(t *testing.T) {
	root := t.TempDir()
	// pack-refs peels every entry through the object store, so the ref must
	// point at an object that is actually stored there.
	commit, err := objectdb.NewStore(root).PutCommit([]byte("tree " + strings.Repeat("0", 40) + "\n"))
	require.NoError(t, err)
	oid := commit.String()

	_, err = runRootCmd(t, "update-ref", "refs/heads/pack-me", oid, "--root", root, "--force=false")
	require.NoError(t, err)

	_, err = runRootCmd(t, "pack-refs", "--root", root)
	require.NoError(t, err)

	out, err := runRootCmd(t, "show-ref", "refs/heads/pack-me", "--root", root)
	require.NoError(t, err)
	assert.Equal(t, oid+"\trefs/heads/pack-me\n", out)
}
