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
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeHook_DecodesOctalFromString(t *testing.T) {
	var out struct {
		Mode Octal `mapstructure:"mode"`
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: DecodeHook(),
		Result:     &out,
	})
	require.NoError(t, err)
	require.NoError(t, dec.Decode(map[string]any{"mode": "644"}))
	assert.Equal(t, Octal(0o644), out.Mode)
}

func TestDecodeHook_DecodesResolvedPathFromString(t *testing.T) {
	var out struct {
		Path ResolvedPath `mapstructure:"path"`
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: DecodeHook(),
		Result:     &out,
	})
	require.NoError(t, err)
	require.NoError(t, dec.Decode(map[string]any{"path": "relative"}))
	assert.True(t, filepath.IsAbs(string(out.Path)))
}

func TestDecodeHook_DecodesDurationAndSlice(t *testing.T) {
	var out struct {
		Timeout time.Duration `mapstructure:"timeout"`
		Tags    []string      `mapstructure:"tags"`
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: DecodeHook(),
		Result:     &out,
	})
	require.NoError(t, err)
	require.NoError(t, dec.Decode(map[string]any{"timeout": "30s", "tags": "a,b,c"}))
	assert.Equal(t, 30*time.Second, out.Timeout)
	assert.Equal(t, []string{"a", "b", "c"}, out.Tags)
}
