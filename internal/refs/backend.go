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

// Package refs implements the filesystem-backed, dual-store (loose +
// packed) reference database: the packed-refs codec, the loose-file
// codec, the mtime-staleness cache over packed entries, the path-collision
// invariant, the peel resolver, the compaction algorithm, and the merged
// iterator.
//
// A Backend is not safe for concurrent use from multiple goroutines: like
// the reference databases it is modeled on, it is single-threaded
// cooperative from its own perspective. Safety against concurrent
// *processes* relies entirely on the atomic-rename discipline in
// internal/fsutil.
package refs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/googlecloudplatform/refdb/internal/fsutil"
	"github.com/googlecloudplatform/refdb/internal/logger"
	"github.com/googlecloudplatform/refdb/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// Backend is the C5 operation set: exists, lookup, write, delete, rename,
// compress, plus iterator construction.
type Backend struct {
	root        string
	objects     ObjectDatabase
	cache       *Cache
	mode        fs.FileMode
	lockTimeout time.Duration
	metrics     metrics.OpsMetricHandle
}

// Option configures a Backend at construction time.
type Option func(*Backend)

// WithFileMode overrides the default loose/packed file mode (0644).
func WithFileMode(mode fs.FileMode) Option {
	return func(b *Backend) { b.mode = mode }
}

// WithLockTimeout overrides how long a ".lock" file must sit unmodified
// before AtomicWrite reclaims it as abandoned. Zero disables reclamation.
func WithLockTimeout(d time.Duration) Option {
	return func(b *Backend) { b.lockTimeout = d }
}

// WithMetrics overrides the default no-op metrics handle, wiring the
// backend's internal events (cache refreshes, absorbed loose files,
// detected corruption) into the given handle alongside the per-operation
// counters cmd/ already records around each subcommand.
func WithMetrics(h metrics.OpsMetricHandle) Option {
	return func(b *Backend) { b.metrics = h }
}

// NewBackend creates a backend rooted at root (which must already contain,
// or be prepared to contain, "packed-refs" and a "refs/" subtree — see
// internal/reponame for namespace expansion and directory preparation).
func NewBackend(root string, objects ObjectDatabase, opts ...Option) *Backend {
	b := &Backend{
		root:        root,
		objects:     objects,
		cache:       NewCache(filepath.Join(root, "packed-refs")),
		mode:        0o644,
		lockTimeout: 30 * time.Second,
		metrics:     metrics.NewNoopMetrics(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// logOutcome logs nothing on success (the entry line already marked the
// attempt) and otherwise logs at WARNING for the recoverable error kinds a
// caller is expected to routinely hit (NotFound, AlreadyExists, Collision)
// or ERROR for everything else.
func logOutcome(op, name string, err error) {
	if err == nil {
		return
	}
	var refErr *Error
	if errors.As(err, &refErr) {
		switch refErr.Kind {
		case KindNotFound, KindAlreadyExists, KindCollision:
			logger.Warnf("%s %s: %v", op, name, err)
			return
		}
	}
	logger.Errorf("%s %s: %v", op, name, err)
}

// noteCorrupt records a Corrupt-kind failure against the given source
// (e.g. "packed-refs", "loose-ref") on the backend's metrics handle; any
// other error kind is ignored.
func (b *Backend) noteCorrupt(err error, where string) {
	var refErr *Error
	if errors.As(err, &refErr) && refErr.Kind == KindCorrupt {
		b.metrics.CorruptDetected(context.Background(), where)
	}
}

// refreshCache refreshes the packed-refs cache, recording a cache-refresh
// metric on success and a corruption metric if the refresh failed because
// the packed file itself was unreadable as packed-refs.
func (b *Backend) refreshCache() error {
	if err := b.cache.Refresh(); err != nil {
		b.noteCorrupt(err, "packed-refs")
		return err
	}
	b.metrics.CacheRefresh(context.Background())
	return nil
}

func (b *Backend) packedPath() string { return filepath.Join(b.root, "packed-refs") }

func (b *Backend) loosePath(name string) string {
	return filepath.Join(b.root, filepath.FromSlash(name))
}

// Exists reports whether name is present in either store.
func (b *Backend) Exists(name string) (bool, error) {
	if err := b.refreshCache(); err != nil {
		return false, err
	}

	if _, err := os.Lstat(b.loosePath(name)); err == nil {
		return true, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, ioErr(err)
	}

	_, ok := b.cache.Get(name)
	return ok, nil
}

// Lookup resolves name, preferring the loose store; NotFound if absent
// from both.
func (b *Backend) Lookup(name string) (ref Reference, err error) {
	logger.Debugf("lookup %s", name)
	defer func() { logOutcome("lookup", name, err) }()

	data, rerr := os.ReadFile(b.loosePath(name))
	if rerr == nil {
		ref, err = ParseLoose(name, b.loosePath(name), data)
		if err != nil {
			b.noteCorrupt(err, "loose-ref")
		}
		return ref, err
	}
	if !errors.Is(rerr, os.ErrNotExist) {
		err = ioErr(rerr)
		return Reference{}, err
	}

	if err = b.refreshCache(); err != nil {
		return Reference{}, err
	}
	entry, ok := b.cache.Get(name)
	if !ok {
		err = notFoundErr(name)
		return Reference{}, err
	}

	ref = NewDirect(name, entry.Oid)
	if entry.Flags.Has(FlagHasPeel) {
		ref = ref.WithPeel(entry.Peel)
	}
	return ref, nil
}

// Write stores ref as a loose file. The packed entry, if any, is left
// alone: it is simply shadowed until the next Compress.
func (b *Backend) Write(ref Reference, force bool) (err error) {
	logger.Debugf("write %s", ref.Name())
	defer func() { logOutcome("write", ref.Name(), err) }()

	if err = b.refreshCache(); err != nil {
		return err
	}
	if err = CheckCollision(b.cache, ref.Name(), "", force, b.Exists); err != nil {
		return err
	}

	path := b.loosePath(ref.Name())
	if derr := fsutil.RemoveEmptyDirCollision(path); derr != nil {
		var dirErr *fsutil.DirCollisionError
		if errors.As(derr, &dirErr) {
			err = collisionErr(ref.Name(), ref.Name()+"/...")
			return err
		}
		err = ioErr(derr)
		return err
	}

	if werr := fsutil.AtomicWrite(path, EncodeLoose(ref), b.mode, b.lockTimeout); werr != nil {
		err = ioErr(werr)
		return err
	}
	return nil
}

// Delete removes name from whichever store(s) hold it. NotFound if it was
// in neither. The loose unlink happens before the packed removal, so a
// failure between the two can leave the packed entry present with the
// loose copy already gone.
func (b *Backend) Delete(name string) (err error) {
	logger.Debugf("delete %s", name)
	defer func() { logOutcome("delete", name, err) }()

	loosePresent, uerr := unlinkIfExists(b.loosePath(name))
	if uerr != nil {
		err = ioErr(uerr)
		return err
	}

	if err = b.refreshCache(); err != nil {
		return err
	}
	_, packedPresent := b.cache.Get(name)

	if !loosePresent && !packedPresent {
		err = notFoundErr(name)
		return err
	}

	if packedPresent {
		b.cache.Delete(name)
		if werr := b.writePackedFile(b.cache.Snapshot()); werr != nil {
			err = werr
			return err
		}
	}

	return nil
}

// Rename moves old to new, carrying over its value. Deleting old and
// writing new are not atomic as a pair: a failure after the delete
// surfaces to the caller with old already gone.
func (b *Backend) Rename(old, newName string, force bool) (err error) {
	logger.Debugf("rename %s -> %s", old, newName)
	defer func() { logOutcome("rename", old, err) }()

	if err = b.refreshCache(); err != nil {
		return err
	}
	if err = CheckCollision(b.cache, newName, old, force, b.Exists); err != nil {
		return err
	}

	ref, lerr := b.Lookup(old)
	if lerr != nil {
		err = lerr
		return err
	}

	if derr := b.Delete(old); derr != nil {
		err = derr
		return err
	}

	if werr := b.Write(ref.WithName(newName), true); werr != nil {
		err = werr
		return err
	}
	return nil
}

// Compress folds every loose reference into the packed file and deletes
// the loose originals it absorbed, peeling tags along the way. The stage
// names in the comments below (cache-loaded, loose-absorbed,
// peels-resolved, packfile-committed, loose-pruned) mark the points at
// which a crash leaves the backend in a well-defined, still-consistent
// state.
func (b *Backend) Compress() (err error) {
	logger.Debugf("compress")
	defer func() { logOutcome("compress", "", err) }()

	// cache-loaded
	if err = b.refreshCache(); err != nil {
		return err
	}

	looseNames, werr := fsutil.WalkLoose(b.root)
	if werr != nil {
		err = ioErr(werr)
		return err
	}

	// loose-absorbed: read every loose file concurrently, then apply the
	// results to the cache sequentially (map mutation is not safe to do
	// from the goroutines themselves).
	type absorbed struct {
		name    string
		entry   PackedEntry
		skip    bool
	}
	results := make([]absorbed, len(looseNames))

	g := new(errgroup.Group)
	g.SetLimit(max(1, runtime.GOMAXPROCS(0)))
	for i, name := range looseNames {
		i, name := i, name
		g.Go(func() error {
			data, rerr := os.ReadFile(b.loosePath(name))
			if errors.Is(rerr, os.ErrNotExist) {
				results[i] = absorbed{name: name, skip: true}
				return nil
			}
			if rerr != nil {
				return ioErr(rerr)
			}

			ref, perr := ParseLoose(name, b.loosePath(name), data)
			if perr != nil {
				return perr
			}
			if ref.IsSymbolic() {
				// Symbolic references are never packed; they stay loose
				// forever (e.g. HEAD).
				results[i] = absorbed{name: name, skip: true}
				return nil
			}

			results[i] = absorbed{
				name:  name,
				entry: PackedEntry{Name: name, Oid: ref.Oid(), Flags: FlagWasLoose},
			}
			return nil
		})
	}
	if gerr := g.Wait(); gerr != nil {
		b.noteCorrupt(gerr, "loose-ref")
		err = gerr
		return err
	}

	var toDelete []string
	for _, r := range results {
		if r.skip {
			continue
		}
		b.cache.Upsert(r.entry)
		toDelete = append(toDelete, r.name)
	}

	// peels-resolved
	entries := b.cache.Snapshot()
	for i := range entries {
		if perr := ResolvePeel(b.objects, &entries[i]); perr != nil {
			err = perr
			return err
		}
	}

	// packfile-committed
	if werr := b.writePackedFile(entries); werr != nil {
		err = werr
		return err
	}

	// loose-pruned: best-effort, aggregated.
	var delErrs []error
	for _, name := range toDelete {
		if rmErr := os.Remove(b.loosePath(name)); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			delErrs = append(delErrs, rmErr)
		}
	}
	if len(delErrs) > 0 {
		err = ioErr(errors.Join(delErrs...))
		return err
	}

	b.metrics.CompressTotal(context.Background())
	b.metrics.CompressLooseAbsorbed(context.Background(), int64(len(toDelete)))
	return nil
}

// writePackedFile emits entries, atomically replaces the packed file, and
// refreshes the cache from the file it just wrote so Mtime() reflects
// reality for the next Refresh.
func (b *Backend) writePackedFile(entries []PackedEntry) error {
	if err := fsutil.AtomicWrite(b.packedPath(), EmitPacked(entries), b.mode, b.lockTimeout); err != nil {
		return ioErr(err)
	}
	return b.refreshCache()
}

// Head looks up the well-known HEAD reference, reporting whether it is
// detached (i.e. not symbolic). A symbolic HEAD's target is not resolved.
func (b *Backend) Head() (target Reference, detached bool, err error) {
	head, err := b.Lookup("HEAD")
	if err != nil {
		return Reference{}, false, err
	}
	if !head.IsSymbolic() {
		return head, true, nil
	}
	return head, false, nil
}

// Iterate returns an Iterator snapshotting the current merged namespace,
// optionally restricted to names matching glob (pass "" for no filter).
func (b *Backend) Iterate(glob string) (*Iterator, error) {
	return NewIterator(b, glob)
}

func unlinkIfExists(path string) (existed bool, err error) {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
