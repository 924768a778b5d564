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

package cmd

import (
	"github.com/googlecloudplatform/refdb/internal/logger"
	"github.com/spf13/cobra"
)

var packRefsCmd = &cobra.Command{
	Use:   "pack-refs",
	Short: "Fold every loose reference into the packed file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		done := recordOp("pack-refs")
		defer func() { done(err) }()

		backend, err := openBackend()
		if err != nil {
			return err
		}

		if err := backend.Compress(); err != nil {
			return err
		}

		logger.Infof("pack-refs: compaction complete")
		return nil
	},
}
