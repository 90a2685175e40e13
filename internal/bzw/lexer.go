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
	"unicode"
	"unicode/utf8"
)

// maxLineSize caps a single input line; bufio's 64 KiB default is too small
// for generated meshes.
const maxLineSize = 1 << 20

const utf8BOM = "\uFEFF"

type token struct {
	text string
	col  int // 1-based byte offset in the line
}

// line is one content line: neither blank nor a comment.
type line struct {
	no     int
	text   string
	tokens []token
}

func (l line) ident() string { return l.tokens[0].text }

func (l line) identCol() int { return l.tokens[0].col }

// restFrom returns the text from token i to the end of the line with
// surrounding whitespace trimmed and inner whitespace kept.
func (l line) restFrom(i int) string {
	if i >= len(l.tokens) {
		return ""
	}
	return strings.TrimSpace(l.text[l.tokens[i].col-1:])
}

func tokenize(s string) []token {
	var toks []token
	start := -1
	for i, r := range s {
		if unicode.IsSpace(r) {
			if start >= 0 {
				toks = append(toks, token{text: s[start:i], col: start + 1})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		toks = append(toks, token{text: s[start:], col: start + 1})
	}
	return toks
}

// lineReader yields content lines, skipping blanks and comments. Read errors
// are kept in err once next reports false.
type lineReader struct {
	sc      *bufio.Scanner
	no      int
	comment string
	err     error
}

func newLineReader(r io.Reader, comment string) *lineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &lineReader{sc: sc, comment: comment}
}

func (lr *lineReader) next() (line, bool) {
	for lr.sc.Scan() {
		lr.no++
		raw := strings.TrimRight(lr.sc.Text(), "\r")
		if lr.no == 1 {
			raw = strings.TrimPrefix(raw, utf8BOM)
		}
		if !utf8.ValidString(raw) {
			raw = strings.ToValidUTF8(raw, "\uFFFD")
		}
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		if lr.comment != "" && strings.HasPrefix(trimmed, lr.comment) {
			continue
		}
		return line{no: lr.no, text: raw, tokens: tokenize(raw)}, true
	}
	lr.err = lr.sc.Err()
	return line{}, false
}
