/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package bzw implements a schema-driven, recursive-descent parser for
// line-oriented block files such as BZFlag world (.bzw) maps.
//
// A grammar is declared in two phases. First the consumer builds object
// schemas with NewObject and Manage, registers the top-level ones on a
// SchemaBuilder, and calls Build, which freezes every reachable object schema.
// Then any number of Parsers read input against the frozen *Schema:
//
//	box := bzw.NewObject(true)
//	_ = box.ManageParameter("size", bzw.Real, 3, false)
//	b := bzw.NewSchemaBuilder()
//	_ = b.ManageObject("box", box)
//	schema, _ := b.Build(bzw.DefaultOptions())
//	doc, err := bzw.NewParser(schema).ParseString("box\nsize 1 2 3\nend\n")
//
// Input is a sequence of blocks. A block starts with a line whose first
// whitespace-delimited token names the object, optionally followed by free
// text (the instance name). Body lines start with a field identifier and end
// at the terminator line ("end" by default). Blank lines and lines starting
// with the comment marker ("#" by default) are ignored anywhere.
//
// Parse returns a *Document the caller owns outright. On a fatal error the
// document still holds every top-level object completed before the failure.
package bzw
