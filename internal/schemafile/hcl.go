/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package schemafile

import (
	"fmt"

	"bzwparse/internal/bzw"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

type hclRoot struct {
	Terminator *string      `hcl:"terminator,optional"`
	Comment    *string      `hcl:"comment,optional"`
	Policy     *string      `hcl:"policy,optional"`
	Defines    []*hclObject `hcl:"define,block"`
	Objects    []*hclObject `hcl:"object,block"`
}

type hclObject struct {
	Name       string          `hcl:"name,label"`
	Repeatable *bool           `hcl:"repeatable,optional"`
	Use        *string         `hcl:"use,optional"`
	Params     []*hclParameter `hcl:"parameter,block"`
	Objects    []*hclObject    `hcl:"object,block"`
	DefRange   hcl.Range       `hcl:",def_range"`
}

type hclParameter struct {
	Name       string    `hcl:"name,label"`
	Type       string    `hcl:"type"`
	Count      *int      `hcl:"count,optional"`
	Repeatable *bool     `hcl:"repeatable,optional"`
	DefRange   hcl.Range `hcl:",def_range"`
}

// LoadHCL builds a schema from HCL source. filename is used in positions.
func LoadHCL(src []byte, filename string) (*bzw.Schema, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL schema %s: %w", filename, diags)
	}
	var root hclRoot
	if diags := gohcl.DecodeBody(f.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL schema %s: %w", filename, diags)
	}
	d := fileDecl{Terminator: root.Terminator, Comment: root.Comment, Policy: deref(root.Policy)}
	for _, o := range root.Defines {
		d.Defines = append(d.Defines, o.decl())
	}
	for _, o := range root.Objects {
		d.Objects = append(d.Objects, o.decl())
	}
	return d.build()
}

func (o *hclObject) decl() objectDecl {
	od := objectDecl{
		Name:       o.Name,
		Pos:        o.DefRange.String(),
		Repeatable: o.Repeatable != nil && *o.Repeatable,
		Use:        deref(o.Use),
	}
	for _, p := range o.Params {
		od.Params = append(od.Params, paramDecl{
			Name:       p.Name,
			Pos:        p.DefRange.String(),
			Type:       p.Type,
			Count:      p.Count,
			Repeatable: p.Repeatable != nil && *p.Repeatable,
		})
	}
	for _, c := range o.Objects {
		od.Objects = append(od.Objects, c.decl())
	}
	return od
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
