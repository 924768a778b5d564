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

// EntryFlags is an independent bit set, not an enum: was_loose crosses
// freely with has_peel/cannot_peel, and shadowed is orthogonal to both.
type EntryFlags uint8

const (
	// FlagHasPeel marks that Peel is populated and authoritative.
	FlagHasPeel EntryFlags = 1 << iota

	// FlagCannotPeel marks that peeling was attempted, or declared
	// impossible by the packed file header, and will not be retried.
	FlagCannotPeel

	// FlagWasLoose marks that this entry originated from a loose file
	// absorbed during the current compaction and is scheduled for
	// on-disk deletion once the new packed file is committed.
	FlagWasLoose

	// FlagShadowed marks that, during iteration, a loose file with the
	// same name overrides this entry.
	FlagShadowed
)

func (f EntryFlags) Has(flag EntryFlags) bool { return f&flag != 0 }

// PackedEntry is one record of the packed-refs file: a name, the object it
// points at directly, and (if known) the non-tag object it peels to.
type PackedEntry struct {
	Name  string
	Oid   OID
	Peel  OID
	Flags EntryFlags
}
