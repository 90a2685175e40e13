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
	"path/filepath"
	"text/tabwriter"

	"bzwparse/internal/bzw"
	"bzwparse/internal/crash"
	"bzwparse/internal/storage"

	"github.com/spf13/cobra"
)

func (a *app) indexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Store parsed maps in the index database and query it",
		Long: "The index lives in the database configured under index.driver and index.dsn " +
			"(SQLite by default, or PostgreSQL through pgx).",
	}
	cmd.AddCommand(a.indexAddCmd(), a.indexListCmd(), a.indexFindCmd())
	return cmd
}

func (a *app) openIndex(cmd *cobra.Command) (*storage.Index, error) {
	return storage.OpenIndex(cmd.Context(), a.cfg.Index.Driver, a.cfg.Index.DSN)
}

func (a *app) indexAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <file>...",
		Short: "Parse files and store them, replacing earlier entries for the same path",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.schema()
			if err != nil {
				return err
			}
			ix, err := a.openIndex(cmd)
			if err != nil {
				return err
			}
			defer ix.Close()
			for _, path := range args {
				if err := a.indexFile(cmd, ix, s, path); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (a *app) indexFile(cmd *cobra.Command, ix *storage.Index, s *bzw.Schema, path string) error {
	defer crash.Recover(path)
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	// Failed parses are stored too, with what was read before the error.
	doc, perr := a.parseFile(cmd.Context(), s, path)
	if doc == nil {
		return perr
	}
	id, err := ix.SaveDocument(cmd.Context(), abs, doc)
	if err != nil {
		return err
	}
	status := "ok"
	if perr != nil {
		status = perr.Error()
	}
	fmt.Fprintf(a.stdout, "%d\t%s\t%s\n", id, abs, status)
	return nil
}

func (a *app) indexListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List indexed documents, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, err := a.openIndex(cmd)
			if err != nil {
				return err
			}
			defer ix.Close()
			docs, err := ix.Documents(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSOURCE\tOK\tSKIPPED\tPARSED")
			for _, d := range docs {
				fmt.Fprintf(w, "%d\t%s\t%t\t%d\t%s\n", d.ID, d.Source, d.OK, d.Diagnostics, d.ParsedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}

func (a *app) indexFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <kind> [name]",
		Short: "Find objects by kind and optional name across indexed documents",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 2 {
				name = args[1]
			}
			ix, err := a.openIndex(cmd)
			if err != nil {
				return err
			}
			defer ix.Close()
			objs, err := ix.FindObjects(cmd.Context(), args[0], name)
			if err != nil {
				return err
			}
			sources := make(map[int64]string)
			if docs, err := ix.Documents(cmd.Context()); err == nil {
				for _, d := range docs {
					sources[d.ID] = d.Source
				}
			}
			for _, o := range objs {
				fmt.Fprintf(a.stdout, "%s:%d: %s %s\n", sources[o.DocumentID], o.Line, o.Kind, o.Name)
			}
			return nil
		},
	}
}
