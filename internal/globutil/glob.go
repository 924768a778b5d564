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

// Package globutil wraps the pattern matching used to filter reference
// iteration ("refs/tags/*" and the like). It exists so the iterator does
// not need to know whether the underlying matcher is path.Match or
// something richer in the future.
package globutil

import "path"

// Match reports whether name satisfies pattern. An empty pattern always
// matches. Matching follows path.Match: '*' does not cross a '/' boundary.
func Match(pattern, name string) (bool, error) {
	if pattern == "" {
		return true, nil
	}
	return path.Match(pattern, name)
}
