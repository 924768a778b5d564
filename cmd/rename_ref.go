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

import "github.com/spf13/cobra"

var renameRefForce bool

var renameRefCmd = &cobra.Command{
	Use:   "rename-ref <old> <new>",
	Short: "Rename a reference, carrying over its value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		done := recordOp("rename-ref")
		defer func() { done(err) }()

		backend, err := openBackend()
		if err != nil {
			return err
		}
		return backend.Rename(args[0], args[1], renameRefForce)
	},
}

func init() {
	renameRefCmd.Flags().BoolVar(&renameRefForce, "force", false, "Overwrite the new name if it already exists; the path-collision check still applies.")
}
