/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders parsed documents for other tools: JSON (through
// cty), a JSON Schema derived from the grammar, and a PDF summary report.
package export

import (
	"fmt"

	"bzwparse/internal/bzw"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// ToCty converts doc to a cty object keyed by top-level identifier. Every
// key holds a tuple of occurrences:
//
//	{ "box": [ { "name": "", "line": 3, "fields": { "size": [[1, 2, 3]] } } ] }
//
// A parameter occurrence is a tuple of its values; a nested object
// occurrence has the same shape as a top-level one.
func ToCty(doc *bzw.Document) cty.Value {
	top := make(map[string][]cty.Value)
	for id, o := range doc.Objects().All() {
		top[id] = append(top[id], objectVal(o))
	}
	return groups(top)
}

func objectVal(o *bzw.ObjectInstance) cty.Value {
	fields := make(map[string][]cty.Value)
	for name, f := range o.Fields().All() {
		switch f.Kind() {
		case bzw.FieldParameter:
			fields[name] = append(fields[name], paramVal(f.Parameter()))
		case bzw.FieldObject:
			fields[name] = append(fields[name], objectVal(f.Object()))
		}
	}
	return cty.ObjectVal(map[string]cty.Value{
		"name":   cty.StringVal(o.Name()),
		"line":   cty.NumberIntVal(int64(o.Line())),
		"fields": groups(fields),
	})
}

func paramVal(p *bzw.ParameterInstance) cty.Value {
	vals := p.Values()
	out := make([]cty.Value, len(vals))
	for i, v := range vals {
		if v.Kind() == bzw.Real {
			out[i] = cty.NumberFloatVal(v.Real())
		} else {
			out[i] = cty.StringVal(v.Text())
		}
	}
	return cty.TupleVal(out)
}

func groups(m map[string][]cty.Value) cty.Value {
	if len(m) == 0 {
		return cty.EmptyObjectVal
	}
	attrs := make(map[string]cty.Value, len(m))
	for k, vs := range m {
		attrs[k] = cty.TupleVal(vs)
	}
	return cty.ObjectVal(attrs)
}

// MarshalJSON encodes doc as JSON. Object keys come out sorted; occurrence
// order inside each tuple follows the input.
func MarshalJSON(doc *bzw.Document) ([]byte, error) {
	v := ToCty(doc)
	b, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return b, nil
}
