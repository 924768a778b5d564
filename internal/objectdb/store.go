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

// Package objectdb is a minimal filesystem-backed object database, playing
// the role of the out-of-scope collaborator the reference backend consumes
// only via a single Lookup(oid) call. It exists so the peel resolver and
// the CLI have something real to talk to in tests and demos; production
// deployments of the reference database are expected to plug in whatever
// object store the surrounding system already has.
//
// Objects are stored the way the system this is modeled on stores its own
// loose objects: zlib-deflated, under objects/<oid[:2]>/<oid[2:]>, fanned
// out by the first byte of the hash to keep any one directory small.
package objectdb

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"crypto/sha1" //nolint:gosec // 160-bit content address, not a security boundary.
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/googlecloudplatform/refdb/internal/fsutil"
	"github.com/googlecloudplatform/refdb/internal/refs"
)

var kindNames = map[refs.ObjectKind]string{
	refs.ObjectCommit: "commit",
	refs.ObjectTree:   "tree",
	refs.ObjectBlob:   "blob",
	refs.ObjectTag:    "tag",
}

var kindsByName = func() map[string]refs.ObjectKind {
	m := make(map[string]refs.ObjectKind, len(kindNames))
	for k, v := range kindNames {
		m[v] = k
	}
	return m
}()

// Store is a filesystem-backed object database rooted at a directory
// containing an "objects/" subtree.
type Store struct {
	root string
}

// NewStore creates a Store rooted at root. The objects directory is
// created lazily on first Put.
func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) path(oid refs.OID) string {
	hex := oid.String()
	return filepath.Join(s.root, "objects", hex[:2], hex[2:])
}

// Lookup implements refs.ObjectDatabase.
func (s *Store) Lookup(oid refs.OID) (refs.ObjectInfo, error) {
	f, err := os.Open(s.path(oid))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return refs.ObjectInfo{}, fmt.Errorf("object %s: %w", oid, os.ErrNotExist)
		}
		return refs.ObjectInfo{}, err
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return refs.ObjectInfo{}, fmt.Errorf("object %s: %w", oid, err)
	}
	defer zr.Close()

	r := bufio.NewReader(zr)
	kindWord, err := r.ReadString(' ')
	if err != nil {
		return refs.ObjectInfo{}, fmt.Errorf("object %s: malformed header: %w", oid, err)
	}
	kindWord = strings.TrimSuffix(kindWord, " ")
	kind, ok := kindsByName[kindWord]
	if !ok {
		return refs.ObjectInfo{}, fmt.Errorf("object %s: unknown kind %q", oid, kindWord)
	}

	sizeWord, err := r.ReadString(0)
	if err != nil && err != io.EOF {
		return refs.ObjectInfo{}, fmt.Errorf("object %s: malformed header: %w", oid, err)
	}
	sizeWord = strings.TrimSuffix(sizeWord, "\x00")
	if _, err := strconv.Atoi(sizeWord); err != nil {
		return refs.ObjectInfo{}, fmt.Errorf("object %s: malformed size %q", oid, sizeWord)
	}

	info := refs.ObjectInfo{Kind: kind}
	if kind == refs.ObjectTag {
		line, err := r.ReadString('\n')
		if err != nil {
			return refs.ObjectInfo{}, fmt.Errorf("object %s: malformed tag body: %w", oid, err)
		}
		const objectPrefix = "object "
		if !strings.HasPrefix(line, objectPrefix) {
			return refs.ObjectInfo{}, fmt.Errorf("object %s: tag body missing object line", oid)
		}
		target, err := refs.ParseOID(strings.TrimSpace(strings.TrimPrefix(line, objectPrefix)))
		if err != nil {
			return refs.ObjectInfo{}, fmt.Errorf("object %s: %w", oid, err)
		}
		info.TagTarget = target
	}

	return info, nil
}

// PutBlob, PutTree, and PutCommit each store an opaque payload under the
// given kind and return its content-derived oid.
func (s *Store) PutBlob(payload []byte) (refs.OID, error) { return s.put(refs.ObjectBlob, payload) }
func (s *Store) PutTree(payload []byte) (refs.OID, error) { return s.put(refs.ObjectTree, payload) }
func (s *Store) PutCommit(payload []byte) (refs.OID, error) {
	return s.put(refs.ObjectCommit, payload)
}

// PutTag stores a tag object pointing at target and returns its oid. The
// tag body always begins with "object <target-hex>\n", mirroring the
// well-known tag object format this store's layout is modeled on.
func (s *Store) PutTag(target refs.OID, body []byte) (refs.OID, error) {
	full := append([]byte("object "+target.String()+"\n"), body...)
	return s.put(refs.ObjectTag, full)
}

func (s *Store) put(kind refs.ObjectKind, payload []byte) (refs.OID, error) {
	header := fmt.Sprintf("%s %d\x00", kindNames[kind], len(payload))
	full := append([]byte(header), payload...)

	h := sha1.New() //nolint:gosec
	h.Write(full)
	var oid refs.OID
	copy(oid[:], h.Sum(nil))

	path := s.path(oid)
	if _, err := os.Stat(path); err == nil {
		return oid, nil // content-addressed: already present.
	}

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(full); err != nil {
		return oid, err
	}
	if err := zw.Close(); err != nil {
		return oid, err
	}

	if err := fsutil.AtomicWrite(path, buf.Bytes(), 0o444, 0); err != nil {
		return oid, fmt.Errorf("store object %s: %w", oid, err)
	}
	return oid, nil
}
