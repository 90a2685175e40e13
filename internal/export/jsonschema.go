/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"bzwparse/internal/bzw"

	"github.com/xeipuuv/gojsonschema"
)

const draft07 = "http://json-schema.org/draft-07/schema#"

// JSONSchema derives a draft-07 JSON Schema describing what MarshalJSON
// produces for documents of s. Shared and recursive object schemas become
// one definition each.
func JSONSchema(s *bzw.Schema) ([]byte, error) {
	g := &schemaGen{defs: make(map[string]any), names: make(map[*bzw.ObjectSchema]string)}
	props := make(map[string]any)
	for _, id := range s.ObjectNames() {
		o, _ := s.Object(id)
		props[id] = occurrences(g.ref(id, o), o.IsRepeatable())
	}
	root := map[string]any{
		"$schema":              draft07,
		"title":                "bzw document",
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
		"definitions":          g.defs,
	}
	b, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json schema: %w", err)
	}
	return b, nil
}

type schemaGen struct {
	defs  map[string]any
	names map[*bzw.ObjectSchema]string
}

// ref returns a $ref to the definition of o, creating it under path on first
// sight.
func (g *schemaGen) ref(path string, o *bzw.ObjectSchema) map[string]any {
	name, ok := g.names[o]
	if !ok {
		name = path
		g.names[o] = name
		fields := make(map[string]any)
		for _, fname := range o.FieldNames() {
			f, _ := o.Field(fname)
			if child, ok := f.Object(); ok {
				fields[fname] = occurrences(g.ref(path+"."+fname, child), child.IsRepeatable())
				continue
			}
			p, _ := f.Parameter()
			fields[fname] = occurrences(valuesSchema(p), p.Repeatable)
		}
		g.defs[name] = map[string]any{
			"type":     "object",
			"required": []string{"name", "line", "fields"},
			"properties": map[string]any{
				"name": map[string]any{"type": "string"},
				"line": map[string]any{"type": "integer", "minimum": 1},
				"fields": map[string]any{
					"type":                 "object",
					"properties":           fields,
					"additionalProperties": false,
				},
			},
			"additionalProperties": false,
		}
	}
	return map[string]any{"$ref": "#/definitions/" + name}
}

// occurrences wraps item in the array every field and object maps to.
func occurrences(item map[string]any, repeatable bool) map[string]any {
	a := map[string]any{"type": "array", "items": item, "minItems": 1}
	if !repeatable {
		a["maxItems"] = 1
	}
	return a
}

func valuesSchema(p bzw.ParameterSchema) map[string]any {
	s := map[string]any{"type": "array"}
	var count int
	switch p.Type {
	case bzw.Nothing:
		s["maxItems"] = 0
		return s
	case bzw.Real:
		s["items"] = map[string]any{"type": "number"}
		count = p.Count
	case bzw.String:
		s["items"] = map[string]any{"type": "string", "pattern": "^\\S+$"}
		count = p.Count
	case bzw.EndlessString:
		s["items"] = map[string]any{"type": "string"}
		count = 1
	}
	if count != bzw.Unbounded {
		s["minItems"] = count
		s["maxItems"] = count
	}
	return s
}

// ValidationError lists every way a JSON document violates the schema.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "json does not match schema: " + strings.Join(e.Problems, "; ")
}

// Validate checks a JSON document against the schema derived from s.
func Validate(s *bzw.Schema, data []byte) error {
	sch, err := JSONSchema(s)
	if err != nil {
		return err
	}
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(sch), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validate: %w", err)
	}
	if res.Valid() {
		return nil
	}
	ve := &ValidationError{}
	for _, e := range res.Errors() {
		ve.Problems = append(ve.Problems, e.String())
	}
	return ve
}
