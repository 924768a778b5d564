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

import "encoding/hex"

// OID is a 160-bit object identifier, the hash naming an immutable object
// in the collaborating object database.
type OID [20]byte

// ZeroOID is the all-zero identifier, used as the zero value for fields that
// have not been populated (e.g. an unresolved peel).
var ZeroOID OID

// ParseOID accepts exactly 40 lowercase hex characters and nothing else.
// Any other length, case, or character is a format error: the packed and
// loose codecs both surface this as a Corrupt error, not as a generic parse
// failure, since the caller always knows the path/line involved.
func ParseOID(s string) (OID, error) {
	var o OID
	if len(s) != 40 {
		return o, errBadOID(s)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		isDigit := c >= '0' && c <= '9'
		isLowerHex := c >= 'a' && c <= 'f'
		if !isDigit && !isLowerHex {
			return o, errBadOID(s)
		}
	}
	if _, err := hex.Decode(o[:], []byte(s)); err != nil {
		return o, errBadOID(s)
	}
	return o, nil
}

func (o OID) String() string {
	return hex.EncodeToString(o[:])
}

func (o OID) IsZero() bool {
	return o == ZeroOID
}

type oidFormatError struct {
	raw string
}

func (e *oidFormatError) Error() string {
	return "malformed object id: " + e.raw
}

func errBadOID(raw string) error {
	return &Error{Kind: KindCorrupt, Where: "oid", Err: &oidFormatError{raw: raw}}
}
