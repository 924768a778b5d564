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
	"os"
	"path/filepath"

	"github.com/googlecloudplatform/refdb/internal/fsutil"
	"github.com/googlecloudplatform/refdb/internal/globutil"
)

// Iterator walks the merged, shadow-aware, glob-filtered namespace: every
// loose name first, then every non-shadowed packed entry. It captures an
// independent snapshot of both stores at construction time (not a live
// view of the cache) so that a cache rebuild triggered by some other call
// mid-walk cannot invalidate it.
type Iterator struct {
	root string
	glob string

	looseNames []string
	looseIdx   int

	packed    []PackedEntry
	packedIdx int
	shadowed  map[string]bool
}

// NewIterator snapshots the loose names under root/refs and the current
// packed cache, marking any packed entry shadowed by a same-named loose
// file.
func NewIterator(b *Backend, glob string) (*Iterator, error) {
	if err := b.cache.Refresh(); err != nil {
		return nil, err
	}

	names, err := fsutil.WalkLoose(b.root)
	if err != nil {
		return nil, ioErr(err)
	}

	filtered := make([]string, 0, len(names))
	shadow := make(map[string]bool, len(names))
	for _, n := range names {
		ok, merr := globutil.Match(glob, n)
		if merr != nil {
			return nil, ioErr(merr)
		}
		if !ok {
			continue
		}
		filtered = append(filtered, n)
		shadow[n] = true
	}

	return &Iterator{
		root:       b.root,
		glob:       glob,
		looseNames: filtered,
		packed:     b.cache.Snapshot(),
		shadowed:   shadow,
	}, nil
}

// Next yields the next reference in the merged namespace, or ErrIterEnd
// when exhausted. A loose file that fails to read or parse between
// snapshot and read is silently skipped: it was either removed by a
// concurrent writer or is mid-write, and will show up correctly on the
// next Iterate call.
func (it *Iterator) Next() (Reference, error) {
	for it.looseIdx < len(it.looseNames) {
		name := it.looseNames[it.looseIdx]
		it.looseIdx++

		data, err := os.ReadFile(it.path(name))
		if err != nil {
			continue
		}
		ref, perr := ParseLoose(name, it.path(name), data)
		if perr != nil {
			continue
		}
		return ref, nil
	}

	for it.packedIdx < len(it.packed) {
		e := it.packed[it.packedIdx]
		it.packedIdx++

		if it.shadowed[e.Name] {
			continue
		}
		ok, err := globutil.Match(it.glob, e.Name)
		if err != nil || !ok {
			continue
		}

		ref := NewDirect(e.Name, e.Oid)
		if e.Flags.Has(FlagHasPeel) {
			ref = ref.WithPeel(e.Peel)
		}
		return ref, nil
	}

	return Reference{}, iterEndErr()
}

// NextName is Next returning only the name, for callers (like for-each-ref
// listings) that only need names. Each loose file is still read and parsed
// as Next does.
func (it *Iterator) NextName() (string, error) {
	ref, err := it.Next()
	if err != nil {
		return "", err
	}
	return ref.Name(), nil
}

// Close releases the iterator. There is currently nothing to release —
// the snapshot is plain Go memory — but the method exists so callers have
// a symmetric construct/free pair to hold onto if that ever changes.
func (it *Iterator) Close() error { return nil }

func (it *Iterator) path(name string) string {
	return filepath.Join(it.root, filepath.FromSlash(name))
}
