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

// Package fsutil holds the filesystem primitives shared by the loose and
// packed reference writers: atomic write-via-rename with a lock file, and
// the recursive walk used to enumerate loose references.
package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// AtomicWrite writes content to path using the lock-file discipline: it
// creates path+".lock" (failing if one is already held and not stale past
// lockTimeout), writes content to a uniquely-named temporary file, fsyncs
// it, renames it into place, and always removes the lock file on every
// exit path — success, write failure, or panic during write.
func AtomicWrite(path string, content []byte, mode os.FileMode, lockTimeout time.Duration) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir for %s: %w", path, err)
	}

	lockPath := path + ".lock"
	if err := acquireLock(lockPath, lockTimeout); err != nil {
		return err
	}
	defer func() {
		if rerr := os.Remove(lockPath); rerr != nil && !errors.Is(rerr, os.ErrNotExist) && err == nil {
			err = fmt.Errorf("release lock %s: %w", lockPath, rerr)
		}
	}()

	tmp := path + ".tmp-" + uuid.NewString()
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}

	writeErr := func() error {
		defer f.Close()
		if _, werr := f.Write(content); werr != nil {
			return werr
		}
		return f.Sync()
	}()
	if writeErr != nil {
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", path, writeErr)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s into place: %w", path, err)
	}

	return nil
}

// acquireLock creates lockPath exclusively. A lock file older than timeout
// is treated as abandoned by a crashed writer and reclaimed once; a lock
// file younger than timeout (or timeout == 0) fails the caller outright.
func acquireLock(lockPath string, timeout time.Duration) error {
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err == nil {
		return f.Close()
	}
	if !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("create lock %s: %w", lockPath, err)
	}

	if timeout > 0 {
		if fi, statErr := os.Stat(lockPath); statErr == nil && time.Since(fi.ModTime()) > timeout {
			if rerr := os.Remove(lockPath); rerr == nil {
				return acquireLock(lockPath, 0)
			}
		}
	}

	return fmt.Errorf("lock held: %s", lockPath)
}

// RemoveEmptyDirCollision implements the loose-writer's collision-removal
// step: if path exists as an empty directory, it is removed to make way
// for a file write. A non-empty directory at path is a genuine collision.
func RemoveEmptyDirCollision(path string) error {
	fi, err := os.Lstat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !fi.IsDir() {
		return nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", path, err)
	}
	if len(entries) > 0 {
		return &DirCollisionError{Path: path}
	}

	return os.Remove(path)
}

// DirCollisionError reports that a non-empty directory occupies the path a
// loose reference write needs.
type DirCollisionError struct{ Path string }

func (e *DirCollisionError) Error() string {
	return fmt.Sprintf("non-empty directory in the way of %s", e.Path)
}
