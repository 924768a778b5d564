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

// ObjectKind classifies an object as returned by the object database
// collaborator. Only ObjectTag carries a TagTarget.
type ObjectKind int

const (
	ObjectCommit ObjectKind = iota
	ObjectTree
	ObjectBlob
	ObjectTag
)

// ObjectInfo is the collaborator's answer to a Lookup call: the object's
// kind and, for a tag, the oid it points at.
type ObjectInfo struct {
	Kind      ObjectKind
	TagTarget OID
}

// ObjectDatabase is the single collaborator interface this package needs
// from the (out of scope) object database: resolve an oid to its kind and,
// for tags, its target. Implementations must treat Lookup as read-only.
type ObjectDatabase interface {
	Lookup(oid OID) (ObjectInfo, error)
}

// ResolvePeel is idempotent per entry: it does nothing if e already carries
// FlagHasPeel or FlagCannotPeel. Otherwise it walks the tag chain starting
// at e.Oid until it reaches a non-tag object, recording that object as
// e.Peel with FlagHasPeel, or marks e.Flags with FlagCannotPeel if e.Oid is
// not itself a tag. An object lookup failure anywhere in the chain is
// fatal: the entry is left unresolved and the error propagates to the
// caller (compress aborts without committing a packed file).
func ResolvePeel(db ObjectDatabase, e *PackedEntry) error {
	if e.Flags.Has(FlagHasPeel) || e.Flags.Has(FlagCannotPeel) {
		return nil
	}

	cur := e.Oid
	info, err := db.Lookup(cur)
	if err != nil {
		return objectLookupErr(cur, err)
	}

	if info.Kind != ObjectTag {
		e.Flags |= FlagCannotPeel
		return nil
	}

	for info.Kind == ObjectTag {
		cur = info.TagTarget
		info, err = db.Lookup(cur)
		if err != nil {
			return objectLookupErr(cur, err)
		}
	}

	e.Peel = cur
	e.Flags |= FlagHasPeel
	return nil
}
