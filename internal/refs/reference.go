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

// Reference is a tagged union: either a direct pointer at an OID, or a
// symbolic pointer at another reference name. Exactly one of (oid) and
// (target) is meaningful at a time, selected by symbolic.
type Reference struct {
	name     string
	oid      OID
	peel     OID
	hasPeel  bool
	target   string
	symbolic bool
}

// NewDirect builds a direct reference. The optional peel is attached with
// WithPeel; most callers that don't care about tag peeling can ignore it.
func NewDirect(name string, oid OID) Reference {
	return Reference{name: name, oid: oid}
}

// NewSymbolic builds a symbolic reference pointing at target. target need
// not currently exist: following it is best-effort.
func NewSymbolic(name, target string) Reference {
	return Reference{name: name, target: target, symbolic: true}
}

func (r Reference) Name() string { return r.name }

func (r Reference) IsSymbolic() bool { return r.symbolic }

// Oid panics if called on a symbolic reference; callers should check
// IsSymbolic first.
func (r Reference) Oid() OID {
	if r.symbolic {
		panic("refs: Oid() called on symbolic reference " + r.name)
	}
	return r.oid
}

// Target panics if called on a direct reference.
func (r Reference) Target() string {
	if !r.symbolic {
		panic("refs: Target() called on direct reference " + r.name)
	}
	return r.target
}

// Peel returns the resolved non-tag target and whether it is known. Only
// meaningful for direct references.
func (r Reference) Peel() (OID, bool) {
	return r.peel, r.hasPeel
}

// WithPeel returns a copy of the direct reference with its peel populated.
func (r Reference) WithPeel(oid OID) Reference {
	r.peel = oid
	r.hasPeel = true
	return r
}

// WithName returns a copy of the reference renamed, preserving its value.
// Used by Rename, which looks up the old value and re-writes it under a new
// name.
func (r Reference) WithName(name string) Reference {
	r.name = name
	return r
}
