/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package schemafile

import (
	"bytes"
	"fmt"
	"slices"

	"bzwparse/internal/bzw"

	"gopkg.in/yaml.v3"
)

type yamlRoot struct {
	Terminator *string                `yaml:"terminator"`
	Comment    *string                `yaml:"comment"`
	Policy     string                 `yaml:"policy"`
	Define     map[string]*yamlObject `yaml:"define"`
	Objects    map[string]*yamlObject `yaml:"objects"`
}

type yamlObject struct {
	Repeatable bool                      `yaml:"repeatable"`
	Use        string                    `yaml:"use"`
	Parameters map[string]*yamlParameter `yaml:"parameters"`
	Objects    map[string]*yamlObject    `yaml:"objects"`
}

type yamlParameter struct {
	Type       string `yaml:"type"`
	Count      *int   `yaml:"count"`
	Repeatable bool   `yaml:"repeatable"`
}

// LoadYAML builds a schema from YAML source. Unknown keys are rejected.
func LoadYAML(src []byte) (*bzw.Schema, error) {
	var root yamlRoot
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("failed to decode YAML schema: %w", err)
	}
	d := fileDecl{Terminator: root.Terminator, Comment: root.Comment, Policy: root.Policy}
	d.Defines = yamlObjects("define", root.Define)
	d.Objects = yamlObjects("objects", root.Objects)
	return d.build()
}

// yamlObjects converts a map in key order so errors are reproducible.
func yamlObjects(path string, m map[string]*yamlObject) []objectDecl {
	var out []objectDecl
	for _, name := range sortedKeys(m) {
		o := m[name]
		if o == nil {
			o = &yamlObject{}
		}
		pos := path + "." + name
		od := objectDecl{Name: name, Pos: pos, Repeatable: o.Repeatable, Use: o.Use}
		for _, pn := range sortedKeys(o.Parameters) {
			p := o.Parameters[pn]
			if p == nil {
				p = &yamlParameter{}
			}
			od.Params = append(od.Params, paramDecl{
				Name: pn, Pos: pos + ".parameters." + pn,
				Type: p.Type, Count: p.Count, Repeatable: p.Repeatable,
			})
		}
		od.Objects = yamlObjects(pos+".objects", o.Objects)
		out = append(out, od)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
