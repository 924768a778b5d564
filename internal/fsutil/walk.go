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
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// WalkLoose enumerates the loose reference files under repoRoot/refs,
// returning their names relative to repoRoot with '/' separators (e.g.
// "refs/heads/main"). Files ending in ".lock" or containing the atomic
// writer's ".tmp-" infix are skipped; they are writer bookkeeping, never
// reference content.
func WalkLoose(repoRoot string) ([]string, error) {
	refsDir := filepath.Join(repoRoot, "refs")
	if _, err := os.Stat(refsDir); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	var names []string
	err := filepath.WalkDir(refsDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".lock") || strings.Contains(d.Name(), ".tmp-") {
			return nil
		}

		rel, rerr := filepath.Rel(repoRoot, p)
		if rerr != nil {
			return rerr
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return names, nil
}
