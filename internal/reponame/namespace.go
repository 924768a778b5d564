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

// Package reponame resolves the repository namespace layout the reference
// backend is rooted at: a namespace string "a/b/c" expands to nested
// refs/namespaces/<segment>/ prefixes.
package reponame

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandNamespace turns a namespace string into its nested
// refs/namespaces/... prefix. An empty namespace expands to "".
func ExpandNamespace(namespace string) string {
	if namespace == "" {
		return ""
	}

	var b strings.Builder
	for _, seg := range strings.Split(namespace, "/") {
		if seg == "" {
			continue
		}
		b.WriteString("refs/namespaces/")
		b.WriteString(seg)
		b.WriteString("/")
	}
	return b.String()
}

// Root returns the directory a Backend should be rooted at for the given
// repository path and namespace.
func Root(repoPath, namespace string) string {
	return filepath.Join(repoPath, filepath.FromSlash(ExpandNamespace(namespace)))
}

// EnsureRoot creates root/refs (and therefore root itself) if absent. cmd's
// openBackend calls this before constructing a Backend.
func EnsureRoot(root string) error {
	return os.MkdirAll(filepath.Join(root, "refs"), 0o755)
}
