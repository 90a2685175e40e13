/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package schemafile builds bzw schemas from declaration files instead of
// Go code. HCL and YAML files share one structure:
//
//	terminator = "end"        # optional, default "end"
//	comment    = "#"          # optional; "" disables comments
//	policy     = "strict"     # optional
//
//	define "group" {          # reusable object, may refer to itself
//	  repeatable = true
//	  parameter "shift" { type = "real"  count = 3 }
//	  object "group" { use = "group" }
//	}
//
//	object "box" {
//	  repeatable = true
//	  parameter "size"  { type = "real"  count = 3 }
//	  parameter "name"  { type = "endless" }
//	  object "inner"    { use = "group" }
//	}
//
// A parameter count of -1 takes every remaining token.
package schemafile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bzwparse/internal/bzw"
)

// fileDecl is the format-independent form of a schema file.
type fileDecl struct {
	Terminator *string
	Comment    *string
	Policy     string
	Defines    []objectDecl
	Objects    []objectDecl
}

type objectDecl struct {
	Name       string
	Pos        string
	Repeatable bool
	Use        string
	Params     []paramDecl
	Objects    []objectDecl
}

type paramDecl struct {
	Name       string
	Pos        string
	Type       string
	Count      *int
	Repeatable bool
}

// Load reads a schema file, choosing the format by extension.
func Load(path string) (*bzw.Schema, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return LoadHCL(src, path)
	case ".yaml", ".yml":
		return LoadYAML(src)
	default:
		return nil, fmt.Errorf("schema %s: unsupported extension (want .hcl, .yaml or .yml)", path)
	}
}

func (d *fileDecl) options() (bzw.Options, error) {
	opts := bzw.DefaultOptions()
	if d.Terminator != nil {
		opts.Terminator = *d.Terminator
	}
	if d.Comment != nil {
		opts.CommentMarker = *d.Comment
	}
	p, err := bzw.ParsePolicy(d.Policy)
	if err != nil {
		return opts, err
	}
	opts.Policy = p
	return opts, nil
}

// build turns the declaration into a frozen schema. All definitions are
// allocated before any body is filled so that uses may point forward or
// back at the object being defined.
func (d *fileDecl) build() (*bzw.Schema, error) {
	opts, err := d.options()
	if err != nil {
		return nil, err
	}
	defs := make(map[string]*bzw.ObjectSchema, len(d.Defines))
	for _, od := range d.Defines {
		if _, dup := defs[od.Name]; dup {
			return nil, fmt.Errorf("%s: define %q: %w", od.Pos, od.Name, bzw.ErrDuplicateObjectName)
		}
		if od.Use != "" {
			return nil, fmt.Errorf("%s: define %q: a definition cannot use another", od.Pos, od.Name)
		}
		defs[od.Name] = bzw.NewObject(od.Repeatable)
	}
	for _, od := range d.Defines {
		if err := fill(defs[od.Name], od, defs); err != nil {
			return nil, err
		}
	}

	b := bzw.NewSchemaBuilder()
	var errs []error
	for _, od := range d.Objects {
		o, err := resolve(od, defs)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := b.ManageObject(od.Name, o); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", od.Pos, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return b.Build(opts)
}

// resolve returns the schema an object block stands for: a definition it
// uses, or a fresh object built from its own body.
func resolve(od objectDecl, defs map[string]*bzw.ObjectSchema) (*bzw.ObjectSchema, error) {
	if od.Use != "" {
		if len(od.Params) > 0 || len(od.Objects) > 0 {
			return nil, fmt.Errorf("%s: object %q: use excludes a body", od.Pos, od.Name)
		}
		o, ok := defs[od.Use]
		if !ok {
			return nil, fmt.Errorf("%s: object %q: no define named %q", od.Pos, od.Name, od.Use)
		}
		return o, nil
	}
	o := bzw.NewObject(od.Repeatable)
	if err := fill(o, od, defs); err != nil {
		return nil, err
	}
	return o, nil
}

func fill(o *bzw.ObjectSchema, od objectDecl, defs map[string]*bzw.ObjectSchema) error {
	for _, pd := range od.Params {
		t, err := bzw.ParseValueType(pd.Type)
		if err != nil {
			return fmt.Errorf("%s: parameter %q: %w", pd.Pos, pd.Name, err)
		}
		count := 1
		if pd.Count != nil {
			count = *pd.Count
		}
		if err := o.ManageParameter(pd.Name, t, count, pd.Repeatable); err != nil {
			return fmt.Errorf("%s: %w", pd.Pos, err)
		}
	}
	for _, cd := range od.Objects {
		child, err := resolve(cd, defs)
		if err != nil {
			return err
		}
		if err := o.ManageObject(cd.Name, child); err != nil {
			return fmt.Errorf("%s: %w", cd.Pos, err)
		}
	}
	return nil
}
