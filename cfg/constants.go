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

const (
	// Logging-level constants, mirrored by internal/config for callers that
	// predate this package.

	TRACE   string = "TRACE"
	DEBUG   string = "DEBUG"
	INFO    string = "INFO"
	WARNING string = "WARNING"
	ERROR   string = "ERROR"
	OFF     string = "OFF"
)

const (
	// DefaultObjectFileMode is the permission bits used for loose and
	// packed reference files when refs.object-file-mode is unset.
	DefaultObjectFileMode Octal = 0o644

	// DefaultLockTimeoutSeconds is how long a stale ".lock" file must sit
	// unmodified before a write reclaims it.
	DefaultLockTimeoutSeconds = 30
)
