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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveLockTimeout_DefaultsWhenZero(t *testing.T) {
	c := &Config{}
	assert.Equal(t, DefaultLockTimeoutSeconds*time.Second, EffectiveLockTimeout(c))
}

func TestEffectiveLockTimeout_HonorsConfiguredValue(t *testing.T) {
	c := &Config{Refs: RefsConfig{LockTimeout: 5 * time.Second}}
	assert.Equal(t, 5*time.Second, EffectiveLockTimeout(c))
}

func TestEffectiveObjectFileMode_DefaultsWhenZero(t *testing.T) {
	c := &Config{}
	assert.Equal(t, DefaultObjectFileMode, EffectiveObjectFileMode(c))
}

func TestEffectiveObjectFileMode_HonorsConfiguredValue(t *testing.T) {
	c := &Config{Refs: RefsConfig{ObjectFileMode: 0o600}}
	assert.Equal(t, Octal(0o600), EffectiveObjectFileMode(c))
}

func TestConfig_StringIncludesKeyFields(t *testing.T) {
	c := Config{
		Repository: RepositoryConfig{Root: "/srv/repo", Namespace: "team-a"},
		Refs:       RefsConfig{ObjectFileMode: 0o644, LockTimeout: 30 * time.Second},
		Logging:    LoggingConfig{Severity: INFO, Format: "text"},
		Metrics:    MetricsConfig{Enabled: true},
	}

	s := c.String()
	assert.Contains(t, s, "root=/srv/repo")
	assert.Contains(t, s, `namespace="team-a"`)
	assert.Contains(t, s, "metrics=true")
}

func TestGetDefaultLoggingConfig(t *testing.T) {
	d := GetDefaultLoggingConfig()
	assert.Equal(t, INFO, d.Severity)
	assert.Equal(t, "text", d.Format)
	assert.True(t, d.LogRotate.Compress)
}
