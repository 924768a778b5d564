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

package reponame

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandNamespace_Empty(t *testing.T) {
	assert.Equal(t, "", ExpandNamespace(""))
}

func TestExpandNamespace_SingleSegment(t *testing.T) {
	assert.Equal(t, "refs/namespaces/foo/", ExpandNamespace("foo"))
}

func TestExpandNamespace_NestedSegments(t *testing.T) {
	assert.Equal(t, "refs/namespaces/a/refs/namespaces/b/refs/namespaces/c/", ExpandNamespace("a/b/c"))
}

func TestExpandNamespace_SkipsEmptySegments(t *testing.T) {
	assert.Equal(t, "refs/namespaces/a/refs/namespaces/b/", ExpandNamespace("a//b/"))
}

func TestRoot_NoNamespaceIsRepoPath(t *testing.T) {
	assert.Equal(t, filepath.Clean("/srv/repo"), Root("/srv/repo", ""))
}

func TestRoot_NamespaceJoinedUnderRepoPath(t *testing.T) {
	got := Root("/srv/repo", "a/b")
	want := filepath.Join("/srv/repo", "refs", "namespaces", "a", "refs", "namespaces", "b")
	assert.Equal(t, want, got)
}

func TestEnsureRoot_CreatesRefsDir(t *testing.T) {
	root := filepath.Join(t.TempDir(), "repo")
	require.NoError(t, EnsureRoot(root))

	fi, err := os.Stat(filepath.Join(root, "refs"))
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
}

func TestEnsureRoot_IdempotentOnExisting(t *testing.T) {
	root := filepath.Join(t.TempDir(), "repo")
	require.NoError(t, EnsureRoot(root))
	require.NoError(t, EnsureRoot(root))
}
