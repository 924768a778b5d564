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

package config

// LogConfig is the legacy logging configuration surface, predating the
// viper-backed cfg package. internal/logger accepts both so that a caller
// migrating piecemeal from one to the other keeps working either way.
type LogConfig struct {
	Severity        string
	File            string
	Format          string
	LogRotateConfig LogRotateConfig
}
