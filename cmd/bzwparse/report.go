/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bzwparse/internal/crash"
	"bzwparse/internal/export"
	"bzwparse/internal/world"

	"github.com/spf13/cobra"
)

func (a *app) reportCmd() *cobra.Command {
	var out, title, author string
	cmd := &cobra.Command{
		Use:   "report <file>",
		Short: "Write a PDF summary of a map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			defer crash.Recover(path)
			if !a.builtin() {
				return errors.New("report needs the built-in world grammar")
			}
			if out == "" {
				out = strings.TrimSuffix(path, filepath.Ext(path)) + ".pdf"
			}
			if title == "" {
				title = filepath.Base(path)
			}
			s, err := a.schema()
			if err != nil {
				return err
			}
			doc, err := a.parseFile(cmd.Context(), s, path)
			if err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			werr := export.WriteReportPDF(f, world.Summarize(doc), export.ReportOptions{Title: title, Author: author})
			if cerr := f.Close(); werr == nil {
				werr = cerr
			}
			if werr != nil {
				return werr
			}
			fmt.Fprintf(a.stdout, "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "PDF path (default is the input with a .pdf extension)")
	cmd.Flags().StringVar(&title, "title", "", "report title (default is the file name)")
	cmd.Flags().StringVar(&author, "author", "", "PDF author metadata")
	return cmd
}
