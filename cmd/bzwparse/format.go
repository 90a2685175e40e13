/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"fmt"
	"os"

	"bzwparse/internal/bzw"
	"bzwparse/internal/crash"

	"github.com/spf13/cobra"
)

func (a *app) fmtCmd() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: "Print a file in canonical form",
		Long: "Parse a file and print it back with two-space indentation, one field per line " +
			"and comments removed. Blocks skipped under the permissive policy are dropped.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			defer crash.Recover(path)
			s, err := a.schema()
			if err != nil {
				return err
			}
			doc, err := a.parseFile(cmd.Context(), s, path)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := bzw.Write(&buf, doc); err != nil {
				return err
			}
			if !write {
				_, err := a.stdout.Write(buf.Bytes())
				return err
			}
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, buf.Bytes(), info.Mode().Perm()); err != nil {
				return fmt.Errorf("rewrite %s: %w", path, err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "rewrite the file in place")
	return cmd
}
