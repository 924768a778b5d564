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
	"sort"
	"strings"
)

// PeelMode records which peeling guarantee, if any, a packed-refs file's
// traits header claims for the entries it contains.
type PeelMode int

const (
	PeelNone PeelMode = iota
	PeelStandard
	PeelFully
)

const tracesHeaderPrefix = "# pack-refs with: "

// ParsePacked parses the packed-refs text format described in the traits
// header plus the entry/peel-line grammar. It never returns a partial
// result: on any malformed input it returns (nil, PeelNone, Corrupt).
//
// The three implicit parser states are: pre-header (only at offset 0),
// in-header-comments (any further '#'-prefixed lines before the first
// entry), and in-entries (where a '^' line is legal only immediately after
// an entry line).
func ParsePacked(data []byte) ([]PackedEntry, PeelMode, error) {
	mode := PeelNone
	pos := 0
	n := len(data)

	if n > 0 && data[0] == '#' {
		nl := bytes.IndexByte(data, '\n')
		if nl < 0 {
			return nil, PeelNone, corruptErr("traits-header", "", errNoTerminator)
		}
		line := trimCR(data[pos:nl])
		if bytes.HasPrefix(line, []byte(tracesHeaderPrefix)) {
			for _, t := range bytes.Fields(line[len(tracesHeaderPrefix):]) {
				switch string(t) {
				case "peeled":
					if mode == PeelNone {
						mode = PeelStandard
					}
				case "fully-peeled":
					mode = PeelFully
				}
			}
		}
		pos = nl + 1
	}

	// Skip any further comment lines preceding the first entry.
	for pos < n && data[pos] == '#' {
		nl := bytes.IndexByte(data[pos:], '\n')
		if nl < 0 {
			pos = n
			break
		}
		pos += nl + 1
	}

	var entries []PackedEntry
	var last *PackedEntry

	for pos < n {
		var line []byte
		if nl := bytes.IndexByte(data[pos:], '\n'); nl < 0 {
			line = data[pos:]
			pos = n
		} else {
			line = data[pos : pos+nl]
			pos += nl + 1
		}
		line = trimCR(line)

		if len(line) == 0 {
			continue
		}

		if line[0] == '^' {
			if last == nil {
				return nil, PeelNone, corruptErr("peel-line", "", errOrphanPeel)
			}
			oid, err := ParseOID(string(line[1:]))
			if err != nil {
				return nil, PeelNone, corruptErr("peel-line", "", err)
			}
			last.Peel = oid
			last.Flags |= FlagHasPeel
			last = nil
			continue
		}

		if len(line) < 42 || line[40] != ' ' {
			return nil, PeelNone, corruptErr("entry-line", "", errMalformedEntry)
		}
		oid, err := ParseOID(string(line[:40]))
		if err != nil {
			return nil, PeelNone, corruptErr("entry-line", "", err)
		}
		name := string(line[41:])
		if name == "" {
			return nil, PeelNone, corruptErr("entry-line", "", errEmptyName)
		}

		entries = append(entries, PackedEntry{Name: name, Oid: oid})
		last = &entries[len(entries)-1]
	}

	for i := range entries {
		e := &entries[i]
		if e.Flags.Has(FlagHasPeel) {
			continue
		}
		switch mode {
		case PeelFully:
			e.Flags |= FlagCannotPeel
		case PeelStandard:
			if strings.HasPrefix(e.Name, "refs/tags/") {
				e.Flags |= FlagCannotPeel
			}
		}
	}

	return entries, mode, nil
}

// EmitPacked renders entries as the packed-refs text format. The writer
// always produces fully-peeled output: it is the caller's job (see the
// peel resolver) to ensure every entry already carries FlagHasPeel or
// FlagCannotPeel before calling this, so that claim is truthful.
func EmitPacked(entries []PackedEntry) []byte {
	sorted := make([]PackedEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var buf bytes.Buffer
	buf.WriteString(tracesHeaderPrefix)
	buf.WriteString("peeled fully-peeled \n")

	for _, e := range sorted {
		buf.WriteString(e.Oid.String())
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte('\n')
		if e.Flags.Has(FlagHasPeel) {
			buf.WriteByte('^')
			buf.WriteString(e.Peel.String())
			buf.WriteByte('\n')
		}
	}

	return buf.Bytes()
}

func trimCR(line []byte) []byte {
	if len(line) > 0 && line[len(line)-1] == '\r' {
		return line[:len(line)-1]
	}
	return line
}

type packedFormatError struct{ msg string }

func (e *packedFormatError) Error() string { return e.msg }

var (
	errNoTerminator   = &packedFormatError{"traits header has no terminating newline"}
	errOrphanPeel     = &packedFormatError{"peel line without a preceding entry"}
	errMalformedEntry = &packedFormatError{"entry line is not \"<40-hex-oid> <name>\""}
	errEmptyName      = &packedFormatError{"entry line has an empty name"}
)
