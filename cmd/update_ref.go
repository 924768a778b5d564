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
	"strings"

	"github.com/googlecloudplatform/refdb/internal/refs"
	"github.com/spf13/cobra"
)

var (
	updateRefForce bool
	updateRefOld   string
)

var updateRefCmd = &cobra.Command{
	Use:   "update-ref <name> <oid|ref:target> [--old <oid>] [--force]",
	Short: "Create or overwrite a direct or symbolic reference",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		done := recordOp("update-ref")
		defer func() { done(err) }()

		backend, err := openBackend()
		if err != nil {
			return err
		}

		name, target := args[0], args[1]

		var ref refs.Reference
		if symTarget, ok := strings.CutPrefix(target, "ref:"); ok {
			ref = refs.NewSymbolic(name, symTarget)
		} else {
			oid, perr := refs.ParseOID(target)
			if perr != nil {
				return perr
			}
			ref = refs.NewDirect(name, oid)
		}

		force := updateRefForce
		if updateRefOld != "" {
			oldOid, perr := refs.ParseOID(updateRefOld)
			if perr != nil {
				return perr
			}
			current, lerr := backend.Lookup(name)
			if lerr != nil {
				return lerr
			}
			if current.IsSymbolic() || current.Oid() != oldOid {
				return fmt.Errorf("update-ref: %s does not currently point at %s", name, updateRefOld)
			}
			// The compare-and-swap check above already confirmed it is safe
			// to overwrite name, so the write itself bypasses the ordinary
			// existence guard.
			force = true
		}

		return backend.Write(ref, force)
	},
}

func init() {
	updateRefCmd.Flags().BoolVar(&updateRefForce, "force", false, "Overwrite the reference if it already exists; the path-collision check still applies.")
	updateRefCmd.Flags().StringVar(&updateRefOld, "old", "", "Only update if the reference currently resolves to this oid (compare-and-swap).")
}
