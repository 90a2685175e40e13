/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Command bzwparse parses BZW map files against the built-in world grammar
// or a declarative schema file, and checks, formats, exports, indexes or
// reports on them.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"bzwparse/internal/bzw"
	"bzwparse/internal/config"
	"bzwparse/internal/crash"
	applog "bzwparse/internal/log"
	"bzwparse/internal/schemafile"
	"bzwparse/internal/world"

	"github.com/spf13/cobra"
)

// errFailed signals a non-zero exit after the command already printed why.
var errFailed = errors.New("failed")

// app carries the global flags and what PersistentPreRunE derives from them.
type app struct {
	schemaPath string
	policy     string
	configPath string

	cfg    config.AppConfig
	stdout io.Writer
	stderr io.Writer
	log    *slog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:           "bzwparse <command>",
		Short:         "Parse and inspect BZW map files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			applog.Init(cfg.LogOptions())
			a.log = applog.WithComponent("cli")
			a.log.Debug("start", slog.String("cmd", cmd.Name()), slog.Int("args", len(args)))
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&a.schemaPath, "schema", "", "schema file (.hcl, .yaml); default is the built-in world grammar")
	root.PersistentFlags().StringVar(&a.policy, "policy", "", "error policy: strict or permissive (overrides config and schema file)")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default is the per-user config.yaml)")

	root.AddCommand(
		a.checkCmd(),
		a.fmtCmd(),
		a.jsonCmd(),
		a.jsonSchemaCmd(),
		a.indexCmd(),
		a.reportCmd(),
		a.versionCmd(),
		a.configCmd(),
	)
	return root
}

// builtin reports whether the world grammar is in use.
func (a *app) builtin() bool { return a.schemaPath == "" }

// schema loads the grammar selected by the flags and config.
func (a *app) schema() (*bzw.Schema, error) {
	var (
		s   *bzw.Schema
		err error
	)
	if a.builtin() {
		opts, oerr := a.cfg.ParserOptions()
		if oerr != nil {
			return nil, oerr
		}
		if opts == bzw.DefaultOptions() {
			s, err = world.Default()
		} else {
			s, err = world.Schema(opts)
		}
	} else {
		s, err = schemafile.Load(a.schemaPath)
	}
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	if a.policy != "" {
		p, err := bzw.ParsePolicy(a.policy)
		if err != nil {
			return nil, err
		}
		s = s.WithPolicy(p)
	}
	return s, nil
}

// parseFile parses path with s. A fatal parse error is returned together
// with the partial document.
func (a *app) parseFile(ctx context.Context, s *bzw.Schema, path string) (*bzw.Document, error) {
	ctx = applog.ContextWithInput(ctx, path)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := bzw.NewParser(s).Parse(f)
	if err != nil {
		a.log.InfoContext(ctx, "parse failed", slog.Any("err", err))
		return doc, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	a.log.DebugContext(ctx, "parsed", slog.Int("objects", doc.Objects().Len()), slog.Int("diagnostics", len(doc.Diagnostics())))
	return doc, nil
}

func main() {
	defer crash.Recover("")
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(stderr, "bzwparse: %v\n", err)
		}
		return 1
	}
	return 0
}
