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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReference_DirectAccessors(t *testing.T) {
	oid := mustOID(t, "1111111111111111111111111111111111111111")
	ref := NewDirect("refs/heads/main", oid)

	assert.False(t, ref.IsSymbolic())
	assert.Equal(t, oid, ref.Oid())
	_, ok := ref.Peel()
	assert.False(t, ok)
}

func TestReference_OidPanicsOnSymbolic(t *testing.T) {
	ref := NewSymbolic("HEAD", "refs/heads/main")
	assert.Panics(t, func() { ref.Oid() })
}

func TestReference_TargetPanicsOnDirect(t *testing.T) {
	ref := NewDirect("refs/heads/main", mustOID(t, "1111111111111111111111111111111111111111"))
	assert.Panics(t, func() { ref.Target() })
}

func TestReference_WithPeelAndWithName(t *testing.T) {
	oid := mustOID(t, "1111111111111111111111111111111111111111")
	peel := mustOID(t, "2222222222222222222222222222222222222222")

	ref := NewDirect("refs/tags/v1", oid).WithPeel(peel)
	got, ok := ref.Peel()
	assert.True(t, ok)
	assert.Equal(t, peel, got)

	renamed := ref.WithName("refs/tags/v2")
	assert.Equal(t, "refs/tags/v2", renamed.Name())
	assert.Equal(t, oid, renamed.Oid())
}
