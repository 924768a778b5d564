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

import (
	"bytes"
	"strings"
)

const symbolicPrefix = "ref: "

// ParseLoose decodes the content of a single loose reference file. name is
// the reference name the file was read for, used to build the returned
// Reference; path is recorded in any Corrupt error.
func ParseLoose(name, path string, data []byte) (Reference, error) {
	if bytes.HasPrefix(data, []byte(symbolicPrefix)) {
		target := strings.TrimRight(string(data[len(symbolicPrefix):]), " \t\r\n")
		return NewSymbolic(name, target), nil
	}

	if len(data) < 40 {
		return Reference{}, corruptErr("loose-ref", path, errTruncatedLoose)
	}

	oid, err := ParseOID(string(data[:40]))
	if err != nil {
		return Reference{}, corruptErr("loose-ref", path, err)
	}

	if len(data) > 40 {
		switch data[40] {
		case ' ', '\t', '\r', '\n':
			// fine
		default:
			return Reference{}, corruptErr("loose-ref", path, errTrailingGarbage)
		}
	}

	return NewDirect(name, oid), nil
}

// EncodeLoose renders a Reference as loose-file content.
func EncodeLoose(ref Reference) []byte {
	if ref.IsSymbolic() {
		return []byte(symbolicPrefix + ref.Target() + "\n")
	}
	return []byte(ref.Oid().String() + "\n")
}

var (
	errTruncatedLoose  = &packedFormatError{"loose reference file shorter than an oid and not a symbolic ref"}
	errTrailingGarbage = &packedFormatError{"loose reference file has trailing non-whitespace after the oid"}
)
