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
	"errors"
	"fmt"

	"github.com/googlecloudplatform/refdb/internal/refs"
	"github.com/spf13/cobra"
)

var forEachRefGlob string

var forEachRefCmd = &cobra.Command{
	Use:   "for-each-ref",
	Short: "List every reference in the merged namespace, one per line",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		done := recordOp("for-each-ref")
		defer func() { done(err) }()

		backend, err := openBackend()
		if err != nil {
			return err
		}

		it, err := backend.Iterate(forEachRefGlob)
		if err != nil {
			return err
		}
		defer it.Close()

		for {
			ref, err := it.Next()
			if errors.Is(err, refs.ErrIterEnd) {
				return nil
			}
			if err != nil {
				return err
			}

			if ref.IsSymbolic() {
				fmt.Fprintf(cmd.OutOrStdout(), "ref: %s\t%s\n", ref.Target(), ref.Name())
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", ref.Oid(), ref.Name())
		}
	},
}

func init() {
	forEachRefCmd.Flags().StringVar(&forEachRefGlob, "glob", "", "Restrict output to names matching this shell glob.")
}
