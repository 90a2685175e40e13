/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package bzw

import (
	"bufio"
	"io"
	"strings"
)

// Write renders doc as canonical text: one block per object, bodies indented
// by two spaces per level, a blank line between top-level blocks. Parsing
// the output against the same schema yields an Equal document.
func Write(w io.Writer, doc *Document) error {
	term := DefaultOptions().Terminator
	if doc.schema != nil {
		term = doc.schema.opts.Terminator
	}
	bw := bufio.NewWriter(w)
	first := true
	for id, obj := range doc.objects.All() {
		if !first {
			bw.WriteString("\n")
		}
		first = false
		writeObject(bw, id, obj, "", term)
	}
	return bw.Flush()
}

// Format is Write into a string.
func Format(doc *Document) string {
	var b strings.Builder
	_ = Write(&b, doc)
	return b.String()
}

func writeObject(w *bufio.Writer, id string, o *ObjectInstance, indent, term string) {
	w.WriteString(indent)
	w.WriteString(id)
	if o.name != "" {
		w.WriteString(" ")
		w.WriteString(o.name)
	}
	w.WriteString("\n")
	inner := indent + "  "
	for name, f := range o.fields.All() {
		switch f.kind {
		case FieldParameter:
			w.WriteString(inner)
			w.WriteString(name)
			for _, v := range f.param.values {
				if v.kind == EndlessString && v.text == "" {
					continue
				}
				w.WriteString(" ")
				w.WriteString(v.String())
			}
			w.WriteString("\n")
		case FieldObject:
			writeObject(w, name, f.object, inner, term)
		}
	}
	w.WriteString(indent)
	w.WriteString(term)
	w.WriteString("\n")
}
