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

import "fmt"

// ErrorKind classifies the failures this package can return. Callers should
// compare with errors.Is against the sentinel Err* values below rather than
// switching on Kind directly.
type ErrorKind int

const (
	KindUnspecified ErrorKind = iota
	KindNotFound
	KindAlreadyExists
	KindCollision
	KindCorrupt
	KindIo
	KindObjectLookup
	KindIterEnd
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindAlreadyExists:
		return "AlreadyExists"
	case KindCollision:
		return "Collision"
	case KindCorrupt:
		return "Corrupt"
	case KindIo:
		return "Io"
	case KindObjectLookup:
		return "ObjectLookup"
	case KindIterEnd:
		return "IterEnd"
	default:
		return "Unspecified"
	}
}

// Error is the concrete error type surfaced by every operation in this
// package. Name/Path/Oid are populated when relevant to the Kind; Err holds
// the underlying cause, if any.
type Error struct {
	Kind  ErrorKind
	Name  string
	Other string
	Where string
	Path  string
	Oid   OID
	Err   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("reference not found: %s", e.Name)
	case KindAlreadyExists:
		return fmt.Sprintf("reference already exists: %s", e.Name)
	case KindCollision:
		return fmt.Sprintf("reference name collision: %s conflicts with %s", e.Name, e.Other)
	case KindCorrupt:
		if e.Path != "" {
			return fmt.Sprintf("corrupt reference data (%s): %s: %v", e.Where, e.Path, e.Err)
		}
		return fmt.Sprintf("corrupt reference data (%s): %v", e.Where, e.Err)
	case KindIo:
		return fmt.Sprintf("reference database io error: %v", e.Err)
	case KindObjectLookup:
		return fmt.Sprintf("object lookup failed for %s: %v", e.Oid, e.Err)
	case KindIterEnd:
		return "iterator exhausted"
	default:
		return fmt.Sprintf("reference database error: %v", e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, refs.ErrNotFound) (etc.) work without callers
// needing to know this package's internal field layout.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinel values for use with errors.Is.
var (
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrAlreadyExists = &Error{Kind: KindAlreadyExists}
	ErrCollision     = &Error{Kind: KindCollision}
	ErrCorrupt       = &Error{Kind: KindCorrupt}
	ErrIo            = &Error{Kind: KindIo}
	ErrObjectLookup  = &Error{Kind: KindObjectLookup}
	ErrIterEnd       = &Error{Kind: KindIterEnd}
)

func notFoundErr(name string) error {
	return &Error{Kind: KindNotFound, Name: name}
}

func alreadyExistsErr(name string) error {
	return &Error{Kind: KindAlreadyExists, Name: name}
}

func collisionErr(name, other string) error {
	return &Error{Kind: KindCollision, Name: name, Other: other}
}

func corruptErr(where, path string, cause error) error {
	return &Error{Kind: KindCorrupt, Where: where, Path: path, Err: cause}
}

func ioErr(cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: KindIo, Err: cause}
}

func objectLookupErr(oid OID, cause error) error {
	return &Error{Kind: KindObjectLookup, Oid: oid, Err: cause}
}

func iterEndErr() error {
	return ErrIterEnd
}
