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

import "time"

// EffectiveLockTimeout returns the configured lock-reclaim timeout, or
// DefaultLockTimeoutSeconds if it was left at its zero value.
func EffectiveLockTimeout(c *Config) time.Duration {
	if c.Refs.LockTimeout == 0 {
		return DefaultLockTimeoutSeconds * time.Second
	}
	return c.Refs.LockTimeout
}

// EffectiveObjectFileMode returns the configured file mode, or
// DefaultObjectFileMode if it was left unset.
func EffectiveObjectFileMode(c *Config) Octal {
	if c.Refs.ObjectFileMode == 0 {
		return DefaultObjectFileMode
	}
	return c.Refs.ObjectFileMode
}
