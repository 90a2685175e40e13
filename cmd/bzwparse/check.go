/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"

	"bzwparse/internal/bzw"
	"bzwparse/internal/crash"
	"bzwparse/internal/world"

	"github.com/spf13/cobra"
)

func (a *app) checkCmd() *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Parse files and report errors, skipped blocks and broken links",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.schema()
			if err != nil {
				return err
			}
			failed := false
			for _, path := range args {
				if !a.check(cmd, s, path, quiet) {
					failed = true
				}
			}
			if failed {
				return errFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print problems only")
	return cmd
}

// check reports on one file and returns false when it has fatal problems.
// Skipped blocks under the permissive policy are warnings.
func (a *app) check(cmd *cobra.Command, s *bzw.Schema, path string, quiet bool) bool {
	defer crash.Recover(path)
	doc, err := a.parseFile(cmd.Context(), s, path)
	if doc == nil {
		fmt.Fprintf(a.stdout, "%s: %v\n", path, err)
		return false
	}
	for _, d := range doc.Diagnostics() {
		fmt.Fprintf(a.stdout, "%s: warning: %s\n", path, d)
	}
	if err != nil {
		fmt.Fprintf(a.stdout, "%s: error: %v\n", path, err)
		return false
	}
	ok := true
	if a.builtin() {
		sum := world.Summarize(doc)
		for _, p := range sum.Validate() {
			fmt.Fprintf(a.stdout, "%s: error: %s\n", path, p)
			ok = false
		}
		if ok && !quiet {
			fmt.Fprintf(a.stdout, "%s: ok, %d objects\n", path, sum.Total())
		}
	} else if !quiet {
		fmt.Fprintf(a.stdout, "%s: ok, %d objects\n", path, doc.Objects().Len())
	}
	return ok
}
