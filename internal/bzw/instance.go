/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package bzw

import "slices"

// ParameterInstance is one parsed parameter occurrence. It owns its values;
// the schema it was read with is copied in and never changed.
type ParameterInstance struct {
	schema ParameterSchema
	values []Value
	line   int
}

// Values returns a copy of the values read, in order.
func (p *ParameterInstance) Values() []Value { return slices.Clone(p.values) }

// Reals returns the numeric values. Non-real values yield 0.
func (p *ParameterInstance) Reals() []float64 {
	out := make([]float64, len(p.values))
	for i, v := range p.values {
		out[i] = v.Real()
	}
	return out
}

// Texts returns the textual form of every value.
func (p *ParameterInstance) Texts() []string {
	out := make([]string, len(p.values))
	for i, v := range p.values {
		out[i] = v.String()
	}
	return out
}

func (p *ParameterInstance) Schema() ParameterSchema { return p.schema }

func (p *ParameterInstance) IsRepeatable() bool { return p.schema.Repeatable }

// Line is the 1-based source line of the occurrence.
func (p *ParameterInstance) Line() int { return p.line }

// Equal compares schema and values; source positions are ignored.
func (p *ParameterInstance) Equal(q *ParameterInstance) bool {
	if p == nil || q == nil {
		return p == q
	}
	return p.schema == q.schema && slices.Equal(p.values, q.values)
}

// FieldInstance is a parsed child of an object: a parameter or a nested
// object, tagged by Kind.
type FieldInstance struct {
	kind   FieldKind
	param  *ParameterInstance
	object *ObjectInstance
}

func (f FieldInstance) Kind() FieldKind { return f.kind }

// Parameter returns the parameter instance, or nil for object fields.
func (f FieldInstance) Parameter() *ParameterInstance { return f.param }

// Object returns the object instance, or nil for parameter fields.
func (f FieldInstance) Object() *ObjectInstance { return f.object }

func (f FieldInstance) Equal(g FieldInstance) bool {
	if f.kind != g.kind {
		return false
	}
	switch f.kind {
	case FieldParameter:
		return f.param.Equal(g.param)
	case FieldObject:
		return f.object.Equal(g.object)
	default:
		return true
	}
}

// ObjectInstance is one parsed block. It is immutable once the parser hands
// it out.
type ObjectInstance struct {
	schema *ObjectSchema
	name   string
	line   int
	fields Multimap[FieldInstance]
}

// Name is the free text that followed the identifier on the opening line.
func (o *ObjectInstance) Name() string { return o.name }

func (o *ObjectInstance) Line() int { return o.line }

func (o *ObjectInstance) Schema() *ObjectSchema { return o.schema }

// Fields returns a read-only view of every child read, in input order.
func (o *ObjectInstance) Fields() Multimap[FieldInstance] { return o.fields }

// Parameter returns the first occurrence of the named parameter.
func (o *ObjectInstance) Parameter(name string) (*ParameterInstance, bool) {
	for _, f := range o.fields.Get(name) {
		if f.kind == FieldParameter {
			return f.param, true
		}
	}
	return nil, false
}

// Parameters returns every occurrence of the named parameter.
func (o *ObjectInstance) Parameters(name string) []*ParameterInstance {
	var out []*ParameterInstance
	for _, f := range o.fields.Get(name) {
		if f.kind == FieldParameter {
			out = append(out, f.param)
		}
	}
	return out
}

// Object returns the first occurrence of the named nested object.
func (o *ObjectInstance) Object(name string) (*ObjectInstance, bool) {
	for _, f := range o.fields.Get(name) {
		if f.kind == FieldObject {
			return f.object, true
		}
	}
	return nil, false
}

func (o *ObjectInstance) Objects(name string) []*ObjectInstance {
	var out []*ObjectInstance
	for _, f := range o.fields.Get(name) {
		if f.kind == FieldObject {
			out = append(out, f.object)
		}
	}
	return out
}

// Has reports whether the named field occurred at least once. It is the
// natural query for Nothing parameters.
func (o *ObjectInstance) Has(name string) bool { return o.fields.Count(name) > 0 }

// Equal compares schema identity, name and children in order. Source
// positions are ignored.
func (o *ObjectInstance) Equal(q *ObjectInstance) bool {
	if o == nil || q == nil {
		return o == q
	}
	if o.schema != q.schema || o.name != q.name || o.fields.Len() != q.fields.Len() {
		return false
	}
	for i, e := range o.fields.entries {
		g := q.fields.entries[i]
		if e.name != g.name || !e.value.Equal(g.value) {
			return false
		}
	}
	return true
}

// Document is the result of one Parse call. The caller owns it; the parser
// keeps no reference.
type Document struct {
	schema  *Schema
	objects Multimap[*ObjectInstance]
	diags   []Diagnostic
	err     error
}

// Objects returns the parsed top-level objects keyed by identifier.
func (d *Document) Objects() Multimap[*ObjectInstance] { return d.objects }

// Diagnostics returns what a permissive parse skipped.
func (d *Document) Diagnostics() []Diagnostic { return slices.Clone(d.diags) }

func (d *Document) Schema() *Schema { return d.schema }

// Err returns the fatal error that ended the parse, if any.
func (d *Document) Err() error { return d.err }

// OK reports whether the parse ran to the end of input without a fatal
// error. Content skipped under the permissive policy does not count.
func (d *Document) OK() bool { return d.err == nil }

// Clean reports OK with nothing skipped.
func (d *Document) Clean() bool { return d.err == nil && len(d.diags) == 0 }

// Equal compares the object trees of two documents.
func (d *Document) Equal(e *Document) bool {
	if d == nil || e == nil {
		return d == e
	}
	if d.objects.Len() != e.objects.Len() {
		return false
	}
	for i, a := range d.objects.entries {
		b := e.objects.entries[i]
		if a.name != b.name || !a.value.Equal(b.value) {
			return false
		}
	}
	return true
}
