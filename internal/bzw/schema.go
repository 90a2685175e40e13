/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package bzw

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// Unbounded as a parameter count consumes every remaining token on the line.
const Unbounded = -1

// ParameterSchema declares a leaf field. It is a plain value and therefore
// immutable once registered.
type ParameterSchema struct {
	Type       ValueType
	Count      int // values per occurrence, or Unbounded
	Repeatable bool
}

// normalized pins Count for types where it carries no information.
func (p ParameterSchema) normalized() ParameterSchema {
	switch p.Type {
	case Nothing:
		p.Count = 0
	case EndlessString:
		p.Count = 1
	}
	return p
}

func (p ParameterSchema) validate() error {
	if !p.Type.valid() {
		return fmt.Errorf("unknown value type %d", int(p.Type))
	}
	if p.Count < Unbounded {
		return fmt.Errorf("negative value count %d", p.Count)
	}
	return nil
}

// FieldKind tells which variant a Field or FieldInstance holds.
type FieldKind int

const (
	FieldParameter FieldKind = iota + 1
	FieldObject
)

func (k FieldKind) String() string {
	switch k {
	case FieldParameter:
		return "parameter"
	case FieldObject:
		return "object"
	default:
		return "invalid"
	}
}

// Field is a child schema node: either a parameter or a nested object.
// The zero Field is invalid.
type Field struct {
	kind   FieldKind
	param  ParameterSchema
	object *ObjectSchema
}

// Param declares a parameter field.
func Param(t ValueType, count int, repeatable bool) Field {
	return ParamField(ParameterSchema{Type: t, Count: count, Repeatable: repeatable})
}

func ParamField(p ParameterSchema) Field {
	return Field{kind: FieldParameter, param: p.normalized()}
}

// ObjectField declares a nested object field.
func ObjectField(o *ObjectSchema) Field {
	return Field{kind: FieldObject, object: o}
}

func (f Field) Kind() FieldKind { return f.kind }

func (f Field) Parameter() (ParameterSchema, bool) {
	return f.param, f.kind == FieldParameter
}

func (f Field) Object() (*ObjectSchema, bool) {
	return f.object, f.kind == FieldObject
}

func (f Field) IsRepeatable() bool {
	switch f.kind {
	case FieldParameter:
		return f.param.Repeatable
	case FieldObject:
		return f.object.repeatable
	default:
		return false
	}
}

// same reports whether g declares the identical schema: parameters compare
// by value, objects by identity.
func (f Field) same(g Field) bool {
	if f.kind != g.kind {
		return false
	}
	if f.kind == FieldObject {
		return f.object == g.object
	}
	return f.param == g.param
}

func (f Field) validate() error {
	switch f.kind {
	case FieldParameter:
		return f.param.validate()
	case FieldObject:
		if f.object == nil {
			return fmt.Errorf("nil object schema")
		}
		return nil
	default:
		return fmt.Errorf("zero field")
	}
}

// ObjectSchema declares a block: which child identifiers may appear in its
// body and how each is parsed. It is mutable until a SchemaBuilder freezes it.
type ObjectSchema struct {
	repeatable bool
	fields     map[string]Field
	frozen     bool
}

// NewObject returns an empty object schema.
func NewObject(repeatable bool) *ObjectSchema {
	return &ObjectSchema{repeatable: repeatable, fields: make(map[string]Field)}
}

func (o *ObjectSchema) IsRepeatable() bool { return o.repeatable }

// Manage registers f under name. Registering a different schema under a
// taken name fails with DuplicateFieldName; registering the identical one
// again is a no-op.
func (o *ObjectSchema) Manage(name string, f Field) error {
	if o.frozen {
		return &ConfigError{Kind: SchemaFrozen, Name: name, Detail: "object schema is already in use by a built schema"}
	}
	if !isWord(name) {
		return &ConfigError{Kind: InvalidName, Name: name, Detail: "field names must be a single non-empty word"}
	}
	if err := f.validate(); err != nil {
		return &ConfigError{Kind: InvalidField, Name: name, Detail: err.Error()}
	}
	if prev, ok := o.fields[name]; ok {
		if prev.same(f) {
			return nil
		}
		return &ConfigError{Kind: DuplicateFieldName, Name: name,
			Detail: fmt.Sprintf("already registered as a different %s", prev.kind)}
	}
	if o.fields == nil {
		o.fields = make(map[string]Field)
	}
	o.fields[name] = f
	return nil
}

func (o *ObjectSchema) ManageParameter(name string, t ValueType, count int, repeatable bool) error {
	return o.Manage(name, Param(t, count, repeatable))
}

func (o *ObjectSchema) ManageObject(name string, child *ObjectSchema) error {
	return o.Manage(name, ObjectField(child))
}

// Field looks up a registered child field.
func (o *ObjectSchema) Field(name string) (Field, bool) {
	f, ok := o.fields[name]
	return f, ok
}

// FieldNames returns the registered child names, sorted.
func (o *ObjectSchema) FieldNames() []string {
	names := make([]string, 0, len(o.fields))
	for n := range o.fields {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// SchemaBuilder collects top-level object schemas until Build.
type SchemaBuilder struct {
	objects map[string]*ObjectSchema
}

func NewSchemaBuilder() *SchemaBuilder {
	return &SchemaBuilder{objects: make(map[string]*ObjectSchema)}
}

// ManageObject registers a top-level object. The duplicate rule matches
// ObjectSchema.Manage.
func (b *SchemaBuilder) ManageObject(name string, o *ObjectSchema) error {
	if !isWord(name) {
		return &ConfigError{Kind: InvalidName, Name: name, Detail: "object names must be a single non-empty word"}
	}
	if o == nil {
		return &ConfigError{Kind: InvalidField, Name: name, Detail: "nil object schema"}
	}
	if prev, ok := b.objects[name]; ok {
		if prev == o {
			return nil
		}
		return &ConfigError{Kind: DuplicateObjectName, Name: name, Detail: "already registered as a different object"}
	}
	if b.objects == nil {
		b.objects = make(map[string]*ObjectSchema)
	}
	b.objects[name] = o
	return nil
}

// Build validates every name reachable from the registered objects against
// opts and freezes the object schemas. Further Manage calls on them fail.
func (b *SchemaBuilder) Build(opts Options) (*Schema, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	reserved := func(name string) error {
		if name == opts.Terminator {
			return &ConfigError{Kind: InvalidName, Name: name, Detail: "collides with the terminator"}
		}
		if opts.CommentMarker != "" && strings.HasPrefix(name, opts.CommentMarker) {
			return &ConfigError{Kind: InvalidName, Name: name, Detail: "starts with the comment marker"}
		}
		return nil
	}

	seen := make(map[*ObjectSchema]bool)
	var walk func(o *ObjectSchema) error
	walk = func(o *ObjectSchema) error {
		if seen[o] {
			return nil
		}
		seen[o] = true
		for _, name := range o.FieldNames() {
			if err := reserved(name); err != nil {
				return err
			}
			if child, ok := o.fields[name].Object(); ok {
				if err := walk(child); err != nil {
					return err
				}
			}
		}
		return nil
	}

	objects := make(map[string]*ObjectSchema, len(b.objects))
	for name, o := range b.objects {
		if err := reserved(name); err != nil {
			return nil, err
		}
		if err := walk(o); err != nil {
			return nil, err
		}
		objects[name] = o
	}
	for o := range seen {
		o.frozen = true
	}
	return &Schema{objects: objects, opts: opts}, nil
}

// Schema is a frozen grammar. It is never mutated by parsing and may be
// shared by concurrent Parsers.
type Schema struct {
	objects map[string]*ObjectSchema
	opts    Options
}

func (s *Schema) Object(name string) (*ObjectSchema, bool) {
	o, ok := s.objects[name]
	return o, ok
}

// ObjectNames returns the top-level object names, sorted.
func (s *Schema) ObjectNames() []string {
	names := make([]string, 0, len(s.objects))
	for n := range s.objects {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func (s *Schema) Options() Options { return s.opts }

// WithPolicy returns a copy of s that parses with policy p. The object
// schemas are shared.
func (s *Schema) WithPolicy(p Policy) *Schema {
	cp := *s
	cp.opts.Policy = p
	return &cp
}

func isSpaceRune(r rune) bool { return unicode.IsSpace(r) }

func isWord(s string) bool {
	return s != "" && !strings.ContainsFunc(s, isSpaceRune)
}
