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

package cfg

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOctal_UnmarshalAndString(t *testing.T) {
	var o Octal
	require.NoError(t, o.UnmarshalText([]byte("644")))
	assert.Equal(t, Octal(0o644), o)
	assert.Equal(t, "644", o.String())

	text, err := o.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "644", string(text))
}

func TestOctal_UnmarshalRejectsNonOctal(t *testing.T) {
	var o Octal
	assert.Error(t, o.UnmarshalText([]byte("999")))
}

func TestLogSeverity_UnmarshalUppercasesAndValidates(t *testing.T) {
	var s LogSeverity
	require.NoError(t, s.UnmarshalText([]byte("debug")))
	assert.Equal(t, LogSeverity(DEBUG), s)
}

func TestLogSeverity_UnmarshalRejectsUnknown(t *testing.T) {
	var s LogSeverity
	assert.Error(t, s.UnmarshalText([]byte("VERBOSE")))
}

func TestResolvedPath_UnmarshalEmptyStaysEmpty(t *testing.T) {
	var p ResolvedPath
	require.NoError(t, p.UnmarshalText([]byte("")))
	assert.Equal(t, ResolvedPath(""), p)
}

func TestResolvedPath_UnmarshalMakesAbsolute(t *testing.T) {
	var p ResolvedPath
	require.NoError(t, p.UnmarshalText([]byte("relative/dir")))
	assert.True(t, filepath.IsAbs(string(p)))
}
