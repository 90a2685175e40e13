/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bzwparse/internal/crash"
	"bzwparse/internal/export"

	"github.com/spf13/cobra"
)

func (a *app) jsonCmd() *cobra.Command {
	var validate bool
	cmd := &cobra.Command{
		Use:   "json <file>",
		Short: "Print a parsed file as JSON",
		Args:  cobra.ExactArgs(1),
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
			b, err := export.MarshalJSON(doc)
			if err != nil {
				return err
			}
			if validate {
				if err := export.Validate(s, b); err != nil {
					return err
				}
			}
			_, err = a.stdout.Write(append(b, '\n'))
			return err
		},
	}
	cmd.Flags().BoolVar(&validate, "validate", false, "check the output against the derived JSON Schema")
	return cmd
}

func (a *app) jsonSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "jsonschema",
		Short: "Print the JSON Schema that json output conforms to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.schema()
			if err != nil {
				return err
			}
			b, err := export.JSONSchema(s)
			if err != nil {
				return err
			}
			_, err = a.stdout.Write(append(b, '\n'))
			return err
		},
	}
}
