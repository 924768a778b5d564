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

import "fmt"

// String renders the resolved configuration for a single startup log line,
// omitting nothing since none of these fields are secret.
func (c Config) String() string {
	return fmt.Sprintf(
		"root=%s namespace=%q object-file-mode=%s lock-timeout=%s log-severity=%s log-format=%s log-file=%s metrics=%t",
		c.Repository.Root, c.Repository.Namespace, c.Refs.ObjectFileMode, c.Refs.LockTimeout,
		c.Logging.Severity, c.Logging.Format, c.Logging.FilePath, c.Metrics.Enabled,
	)
}
