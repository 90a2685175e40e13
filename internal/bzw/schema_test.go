/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package bzw

import (
	"errors"
	"slices"
	"testing"
)

func TestManageDuplicateRules(t *testing.T) {
	o := NewObject(false)
	if err := o.ManageParameter("size", Real, 3, false); err != nil {
		t.Fatalf("first manage: %v", err)
	}
	// identical schema again is a no-op
	if err := o.ManageParameter("size", Real, 3, false); err != nil {
		t.Fatalf("identical re-register should be a no-op: %v", err)
	}
	err := o.ManageParameter("size", Real, 2, false)
	if !errors.Is(err, ErrDuplicateFieldName) {
		t.Fatalf("expected duplicate field name, got %v", err)
	}
	child := NewObject(false)
	if err := o.ManageObject("child", child); err != nil {
		t.Fatalf("manage child: %v", err)
	}
	if err := o.ManageObject("child", child); err != nil {
		t.Fatalf("same child again: %v", err)
	}
	if err := o.ManageObject("child", NewObject(false)); !errors.Is(err, ErrDuplicateFieldName) {
		t.Fatalf("expected duplicate for a different object, got %v", err)
	}
	if err := o.ManageParameter("child", Nothing, 0, false); !errors.Is(err, ErrDuplicateFieldName) {
		t.Fatalf("expected duplicate for a kind change, got %v", err)
	}
}

func TestManageNormalizesCountsForComparison(t *testing.T) {
	o := NewObject(false)
	if err := o.ManageParameter("flag", Nothing, 0, false); err != nil {
		t.Fatal(err)
	}
	// count carries no meaning for Nothing, so this is the identical schema
	if err := o.ManageParameter("flag", Nothing, 5, false); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
	f, _ := o.Field("flag")
	p, ok := f.Parameter()
	if !ok || p.Count != 0 {
		t.Fatalf("unexpected normalized schema: %+v", p)
	}
}

func TestManageRejectsInvalidInput(t *testing.T) {
	o := NewObject(false)
	cases := []struct {
		name  string
		field Field
		want  error
	}{
		{"", Param(Real, 1, false), ErrInvalidName},
		{"two words", Param(Real, 1, false), ErrInvalidName},
		{"zero", Field{}, ErrInvalidField},
		{"nilobj", ObjectField(nil), ErrInvalidField},
		{"badcount", Param(Real, -2, false), ErrInvalidField},
		{"badtype", Param(ValueType(42), 1, false), ErrInvalidField},
	}
	for _, c := range cases {
		if err := o.Manage(c.name, c.field); !errors.Is(err, c.want) {
			t.Fatalf("%q: got %v, want %v", c.name, err, c.want)
		}
	}
}

func TestBuilderDuplicateObjects(t *testing.T) {
	b := NewSchemaBuilder()
	box := NewObject(true)
	if err := b.ManageObject("box", box); err != nil {
		t.Fatal(err)
	}
	if err := b.ManageObject("box", box); err != nil {
		t.Fatalf("identical object again: %v", err)
	}
	if err := b.ManageObject("box", NewObject(true)); !errors.Is(err, ErrDuplicateObjectName) {
		t.Fatalf("expected duplicate object name, got %v", err)
	}
}

func TestBuildFreezesReachableObjects(t *testing.T) {
	outer := NewObject(false)
	inner := NewObject(false)
	if err := outer.ManageObject("inner", inner); err != nil {
		t.Fatal(err)
	}
	b := NewSchemaBuilder()
	_ = b.ManageObject("outer", outer)
	s, err := b.Build(DefaultOptions())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := inner.ManageParameter("late", Real, 1, false); !errors.Is(err, ErrSchemaFrozen) {
		t.Fatalf("expected frozen error, got %v", err)
	}
	if got := s.ObjectNames(); !slices.Equal(got, []string{"outer"}) {
		t.Fatalf("object names = %v", got)
	}
	// registering more top-level objects on the builder does not leak into s
	_ = b.ManageObject("late", NewObject(false))
	if _, ok := s.Object("late"); ok {
		t.Fatalf("built schema must not see later registrations")
	}
}

func TestBuildRejectsReservedNames(t *testing.T) {
	o := NewObject(false)
	if err := o.ManageParameter("end", Nothing, 0, false); err != nil {
		t.Fatal(err)
	}
	b := NewSchemaBuilder()
	_ = b.ManageObject("thing", o)
	if _, err := b.Build(DefaultOptions()); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected terminator collision, got %v", err)
	}
	// not frozen after a failed build
	if err := o.ManageParameter("other", Nothing, 0, false); err != nil {
		t.Fatalf("failed build must not freeze: %v", err)
	}

	b2 := NewSchemaBuilder()
	_ = b2.ManageObject("#box", NewObject(false))
	if _, err := b2.Build(DefaultOptions()); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected comment marker collision, got %v", err)
	}
}

func TestOptionsValidation(t *testing.T) {
	b := NewSchemaBuilder()
	bad := []Options{
		{Terminator: "", CommentMarker: "#"},
		{Terminator: "the end", CommentMarker: "#"},
		{Terminator: "#end", CommentMarker: "#"},
		{Terminator: "end", CommentMarker: "# "},
		{Terminator: "end", CommentMarker: "#", Policy: Policy(9)},
	}
	for _, o := range bad {
		if _, err := b.Build(o); !errors.Is(err, ErrInvalidName) {
			t.Fatalf("%+v: expected invalid name, got %v", o, err)
		}
	}
	if _, err := b.Build(Options{Terminator: "end"}); err != nil {
		t.Fatalf("empty comment marker should be allowed: %v", err)
	}
}

func TestParsePolicyAndValueType(t *testing.T) {
	if p, err := ParsePolicy("Permissive"); err != nil || p != Permissive {
		t.Fatalf("ParsePolicy = %v, %v", p, err)
	}
	if p, err := ParsePolicy(""); err != nil || p != Strict {
		t.Fatalf("empty policy = %v, %v", p, err)
	}
	if _, err := ParsePolicy("sloppy"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
	for in, want := range map[string]ValueType{"real": Real, "STRING": String, "endless": EndlessString, "nothing": Nothing} {
		got, err := ParseValueType(in)
		if err != nil || got != want {
			t.Fatalf("ParseValueType(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseValueType("complex"); err == nil {
		t.Fatalf("expected error for unknown value type")
	}
}

func TestWithPolicySharesObjects(t *testing.T) {
	s := boxSchema(t, Strict)
	p := s.WithPolicy(Permissive)
	if s.Options().Policy != Strict || p.Options().Policy != Permissive {
		t.Fatalf("policies: %v %v", s.Options().Policy, p.Options().Policy)
	}
	a, _ := s.Object("box")
	b, _ := p.Object("box")
	if a != b {
		t.Fatalf("object schemas should be shared")
	}
}

func TestZeroValueSchemasAreUsable(t *testing.T) {
	var box ObjectSchema
	if err := box.ManageParameter("size", Real, 3, false); err != nil {
		t.Fatalf("manage on zero object: %v", err)
	}
	if names := box.FieldNames(); !slices.Equal(names, []string{"size"}) {
		t.Fatalf("field names = %v", names)
	}
	var b SchemaBuilder
	if err := b.ManageObject("box", &box); err != nil {
		t.Fatalf("manage on zero builder: %v", err)
	}
	s, err := b.Build(DefaultOptions())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	doc, err := NewParser(s).ParseString("box\nsize 1 2 3\nend\n")
	if err != nil || doc.Objects().Count("box") != 1 {
		t.Fatalf("parse: %v", err)
	}
}
