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
	"fmt"

	"github.com/spf13/cobra"
)

var showRefCmd = &cobra.Command{
	Use:   "show-ref <name>",
	Short: "Resolve a single reference and print its value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		done := recordOp("show-ref")
		defer func() { done(err) }()

		backend, err := openBackend()
		if err != nil {
			return err
		}

		ref, err := backend.Lookup(args[0])
		if err != nil {
			return err
		}

		if ref.IsSymbolic() {
			fmt.Fprintf(cmd.OutOrStdout(), "ref: %s\t%s\n", ref.Target(), ref.Name())
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s", ref.Oid(), ref.Name())
		if peel, ok := ref.Peel(); ok {
			fmt.Fprintf(cmd.OutOrStdout(), "\t^%s", peel)
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}
