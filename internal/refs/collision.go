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

import "strings"

// CheckCollision enforces the no-prefix invariant before a write or rename
// proceeds: no reference name may be a path-prefix of another. old is the
// reference being renamed away from (pass "" for a plain write); it is
// exempted from the collision scan against itself. exists reports whether
// name is already present (loose or packed); it is only consulted when
// force is false.
//
// This inspects the packed cache only. A loose-vs-loose collision across
// sibling hierarchies is instead caught implicitly by the directory-write
// step failing when a name would need to be both a file and a directory;
// see the decision recorded in DESIGN.md.
func CheckCollision(cache *Cache, name, old string, force bool, exists func(string) (bool, error)) error {
	if !force {
		ok, err := exists(name)
		if err != nil {
			return err
		}
		if ok {
			return alreadyExistsErr(name)
		}
	}

	for _, e := range cache.Snapshot() {
		if e.Name == old {
			continue
		}
		if collides(name, e.Name) {
			return collisionErr(name, e.Name)
		}
	}

	return nil
}

// collides reports whether a and b are the same name up to a '/' boundary
// prefix relationship, e.g. "refs/heads/x" collides with "refs/heads/x/y"
// but not with "refs/heads/xy".
func collides(a, b string) bool {
	if a == b {
		return false
	}
	if len(a) < len(b) {
		return strings.HasPrefix(b, a+"/")
	}
	return strings.HasPrefix(a, b+"/")
}
