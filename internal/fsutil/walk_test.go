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

package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalkLoose_MissingRefsDirYieldsNil(t *testing.T) {
	names, err := WalkLoose(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, names)
}

func TestWalkLoose_EnumeratesNestedNames(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "refs", "heads"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "refs", "tags"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "refs", "heads", "main"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "refs", "tags", "v1"), []byte("x"), 0o644))

	names, err := WalkLoose(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"refs/heads/main", "refs/tags/v1"}, names)
}

func TestWalkLoose_SkipsLockAndTempFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "refs", "heads"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "refs", "heads", "main"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "refs", "heads", "main.lock"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "refs", "heads", "main.tmp-abc123"), []byte("x"), 0o644))

	names, err := WalkLoose(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"refs/heads/main"}, names)
}
