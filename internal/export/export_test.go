/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"bzwparse/internal/bzw"
	"bzwparse/internal/world"
)

func testSchema(t *testing.T) *bzw.Schema {
	t.Helper()
	group := bzw.NewObject(true)
	box := bzw.NewObject(true)
	for _, err := range []error{
		group.ManageParameter("shift", bzw.Real, 3, true),
		group.ManageObject("group", group),
		box.ManageParameter("size", bzw.Real, 3, false),
		box.ManageParameter("name", bzw.String, 1, false),
		box.ManageParameter("hidden", bzw.Nothing, 0, false),
		box.ManageParameter("note", bzw.EndlessString, 1, false),
		box.ManageObject("group", group),
	} {
		if err != nil {
			t.Fatalf("manage: %v", err)
		}
	}
	b := bzw.NewSchemaBuilder()
	if err := b.ManageObject("box", box); err != nil {
		t.Fatalf("manage box: %v", err)
	}
	s, err := b.Build(bzw.DefaultOptions())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return s
}

const testSource = `box
  size 1 2 3.5
  name crate
  hidden
  note a wooden crate
  group
    shift 0 0 1
    group
    end
  end
end
box
end
`

func parse(t *testing.T, s *bzw.Schema, src string) *bzw.Document {
	t.Helper()
	doc, err := bzw.NewParser(s).ParseString(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestMarshalJSON_Shape(t *testing.T) {
	doc := parse(t, testSchema(t), testSource)
	b, err := MarshalJSON(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got struct {
		Box []struct {
			Name   string                       `json:"name"`
			Line   int                          `json:"line"`
			Fields map[string][]json.RawMessage `json:"fields"`
		} `json:"box"`
	}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, b)
	}
	if len(got.Box) != 2 {
		t.Fatalf("expected 2 boxes, got %d", len(got.Box))
	}
	first := got.Box[0]
	if first.Line != 1 || got.Box[1].Line != 12 {
		t.Fatalf("unexpected lines: %d, %d", first.Line, got.Box[1].Line)
	}
	want := map[string]string{
		"size":   `[1,2,3.5]`,
		"name":   `["crate"]`,
		"hidden": `[]`,
		"note":   `["a wooden crate"]`,
	}
	for k, v := range want {
		if len(first.Fields[k]) != 1 || string(first.Fields[k][0]) != v {
			t.Fatalf("field %s: got %s want [%s]", k, first.Fields[k], v)
		}
	}
	if len(got.Box[1].Fields) != 0 {
		t.Fatalf("empty box should have no fields: %v", got.Box[1].Fields)
	}
	if !strings.Contains(string(first.Fields["group"][0]), `"shift":[[0,0,1]]`) {
		t.Fatalf("nested group not rendered: %s", first.Fields["group"][0])
	}
}

func TestMarshalJSON_EmptyDocument(t *testing.T) {
	doc := parse(t, testSchema(t), "# nothing here\n")
	b, err := MarshalJSON(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "{}" {
		t.Fatalf("expected {}, got %s", b)
	}
}

func TestJSONSchema_ReusesRecursiveDefinitions(t *testing.T) {
	b, err := JSONSchema(testSchema(t))
	if err != nil {
		t.Fatalf("json schema: %v", err)
	}
	var root struct {
		Definitions map[string]json.RawMessage `json:"definitions"`
	}
	if err := json.Unmarshal(b, &root); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(root.Definitions) != 2 {
		t.Fatalf("expected box and one group definition, got %d", len(root.Definitions))
	}
	if _, ok := root.Definitions["box.group"]; !ok {
		t.Fatalf("group definition missing: %v", root.Definitions)
	}
	if !strings.Contains(string(root.Definitions["box.group"]), `"#/definitions/box.group"`) {
		t.Fatalf("recursive reference missing")
	}
}

func TestValidate_AcceptsMarshalledDocuments(t *testing.T) {
	s := testSchema(t)
	b, err := MarshalJSON(parse(t, s, testSource))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := Validate(s, b); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidate_RejectsViolations(t *testing.T) {
	s := testSchema(t)
	cases := map[string]string{
		"unknown kind":     `{"pyramid":[]}`,
		"short size":       `{"box":[{"name":"","line":1,"fields":{"size":[[1,2]]}}]}`,
		"twice size":       `{"box":[{"name":"","line":1,"fields":{"size":[[1,2,3],[1,2,3]]}}]}`,
		"flag with values": `{"box":[{"name":"","line":1,"fields":{"hidden":[["x"]]}}]}`,
		"word with space":  `{"box":[{"name":"","line":1,"fields":{"name":[["a b"]]}}]}`,
		"unknown field":    `{"box":[{"name":"","line":1,"fields":{"color":[[1]]}}]}`,
	}
	for name, data := range cases {
		err := Validate(s, []byte(data))
		var ve *ValidationError
		if !errors.As(err, &ve) || len(ve.Problems) == 0 {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestWriteReportPDF(t *testing.T) {
	src, err := os.ReadFile("../world/testdata/ctf.bzw")
	if err != nil {
		t.Fatalf("read map: %v", err)
	}
	s, err := world.Default()
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	doc := parse(t, s, string(src)+"link\n  from nowhere\n  to west:f\nend\n")
	var buf bytes.Buffer
	if err := WriteReportPDF(&buf, world.Summarize(doc), ReportOptions{Title: "Capture the Flag", Author: "test"}); err != nil {
		t.Fatalf("report: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	if buf.Len() < 500 {
		t.Fatalf("pdf suspiciously small: %d bytes", buf.Len())
	}
}
