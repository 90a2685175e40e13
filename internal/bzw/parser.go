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
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	applog "bzwparse/internal/log"
)

// Parser reads input against a frozen Schema. A Parser holds no per-parse
// state, so one value may serve many sequential Parse calls.
type Parser struct {
	schema *Schema
	log    *slog.Logger
}

func NewParser(schema *Schema) *Parser {
	return &Parser{
		schema: schema,
		log:    applog.WithOperation(applog.WithComponent("bzw"), "parse"),
	}
}

// Parse consumes r to the end or to the first fatal error. The returned
// Document is never nil: after a fatal error it holds every top-level object
// completed before it, and Document.Err returns the same error.
func (p *Parser) Parse(r io.Reader) (*Document, error) {
	s := &session{
		opts: p.schema.opts,
		lr:   newLineReader(r, p.schema.opts.CommentMarker),
		doc:  &Document{schema: p.schema},
		log:  p.log,
	}
	err := s.run(p.schema)
	s.doc.err = err
	if err != nil {
		p.log.Debug("parse failed", slog.Int("objects", s.doc.objects.Len()), slog.Any("err", err))
	} else {
		p.log.Debug("parse done", slog.Int("objects", s.doc.objects.Len()), slog.Int("diagnostics", len(s.doc.diags)))
	}
	return s.doc, err
}

func (p *Parser) ParseString(src string) (*Document, error) {
	return p.Parse(strings.NewReader(src))
}

type session struct {
	opts Options
	lr   *lineReader
	doc  *Document
	log  *slog.Logger
}

func (s *session) run(schema *Schema) error {
	for {
		ln, ok := s.lr.next()
		if !ok {
			return s.readErr()
		}
		id := ln.ident()
		if id == s.opts.Terminator {
			perr := &ParseError{Kind: UnexpectedTerminator, Line: ln.no, Column: ln.identCol(), Identifier: id,
				Detail: "no block is open"}
			if err := s.recoverable(perr); err != nil {
				return err
			}
			continue
		}
		obj, ok := schema.objects[id]
		if !ok {
			perr := &ParseError{Kind: UnknownObject, Line: ln.no, Column: ln.identCol(), Identifier: id}
			if err := s.recoverable(perr); err != nil {
				return err
			}
			if err := s.skipBlock(ln); err != nil {
				return err
			}
			continue
		}
		if !obj.repeatable && s.doc.objects.Count(id) > 0 {
			return &ParseError{Kind: DuplicateNonRepeatableObject, Line: ln.no, Column: ln.identCol(), Identifier: id}
		}
		inst, err := obj.parseOccurrence(s, ln)
		if err != nil {
			return err
		}
		s.doc.objects.add(id, inst)
		s.log.Debug("object parsed", slog.String("object", id), slog.String("name", inst.name), slog.Int("line", ln.no))
	}
}

// recoverable turns a skippable error into a Diagnostic under the permissive
// policy and returns nil; otherwise it returns the error unchanged.
func (s *session) recoverable(perr *ParseError) error {
	if s.opts.Policy != Permissive || !perr.Kind.skippable() {
		return perr
	}
	msg := "skipped"
	if perr.Detail != "" {
		msg = perr.Detail + ", skipped"
	}
	d := Diagnostic{Kind: perr.Kind, Line: perr.Line, Identifier: perr.Identifier, Message: msg}
	s.doc.diags = append(s.doc.diags, d)
	s.log.Warn("skipping unrecognized content", slog.String("kind", perr.Kind.String()),
		slog.String("identifier", perr.Identifier), slog.Int("line", perr.Line))
	return nil
}

// skipBlock discards lines through the next terminator. Nested unknown
// blocks cannot be told apart from parameters, so the first terminator wins.
func (s *session) skipBlock(open line) error {
	for {
		ln, ok := s.lr.next()
		if !ok {
			if err := s.readErr(); err != nil {
				return err
			}
			return &ParseError{Kind: UnterminatedBlock, Line: open.no, Identifier: open.ident(),
				Detail: "end of input while skipping unknown block"}
		}
		if ln.ident() == s.opts.Terminator {
			return nil
		}
	}
}

func (s *session) readErr() error {
	if s.lr.err != nil {
		return fmt.Errorf("read line %d: %w", s.lr.no+1, s.lr.err)
	}
	return nil
}

// parseOccurrence reads the body of an object whose opening line already
// matched, up to and including its terminator.
func (o *ObjectSchema) parseOccurrence(s *session, open line) (*ObjectInstance, error) {
	inst := &ObjectInstance{schema: o, name: open.restFrom(1), line: open.no}
	for {
		ln, ok := s.lr.next()
		if !ok {
			if err := s.readErr(); err != nil {
				return nil, err
			}
			return nil, &ParseError{Kind: UnterminatedBlock, Line: open.no, Identifier: open.ident(),
				Detail: fmt.Sprintf("end of input before %q", s.opts.Terminator)}
		}
		id := ln.ident()
		if id == s.opts.Terminator {
			return inst, nil
		}
		f, ok := o.fields[id]
		if !ok {
			perr := &ParseError{Kind: UnknownField, Line: ln.no, Column: ln.identCol(), Identifier: id,
				Detail: fmt.Sprintf("not allowed in %q", open.ident())}
			if err := s.recoverable(perr); err != nil {
				return nil, err
			}
			continue
		}
		if !f.IsRepeatable() && inst.fields.Count(id) > 0 {
			return nil, &ParseError{Kind: DuplicateNonRepeatableField, Line: ln.no, Column: ln.identCol(), Identifier: id,
				Detail: fmt.Sprintf("already given in %q at line %d", open.ident(), open.no)}
		}
		var fi FieldInstance
		switch f.kind {
		case FieldParameter:
			pi, err := f.param.parseOccurrence(ln)
			if err != nil {
				return nil, err
			}
			fi = FieldInstance{kind: FieldParameter, param: pi}
		case FieldObject:
			oi, err := f.object.parseOccurrence(s, ln)
			if err != nil {
				return nil, err
			}
			fi = FieldInstance{kind: FieldObject, object: oi}
		default:
			panic(fmt.Sprintf("bzw: field %q has invalid kind %d", id, f.kind))
		}
		inst.fields.add(id, fi)
	}
}

// ParseLine parses a single parameter line such as "size 1 2 3" as one
// occurrence of p. The leading identifier is not checked.
func (p ParameterSchema) ParseLine(text string) (*ParameterInstance, error) {
	if err := p.validate(); err != nil {
		return nil, &ConfigError{Kind: InvalidField, Detail: err.Error()}
	}
	toks := tokenize(text)
	if len(toks) == 0 {
		return nil, &ParseError{Kind: MissingValue, Line: 1, Detail: "empty line"}
	}
	return p.normalized().parseOccurrence(line{no: 1, text: text, tokens: toks})
}

func (p ParameterSchema) parseOccurrence(ln line) (*ParameterInstance, error) {
	inst := &ParameterInstance{schema: p, line: ln.no}
	args := ln.tokens[1:]
	switch p.Type {
	case Nothing:
		if len(args) > 0 {
			return nil, &ParseError{Kind: UnexpectedToken, Line: ln.no, Column: args[0].col, Identifier: ln.ident(),
				Token: args[0].text, Detail: "takes no values"}
		}
	case EndlessString:
		inst.values = []Value{EndlessValue(ln.restFrom(1))}
	case Real, String:
		n := p.Count
		if n == Unbounded {
			n = len(args)
		}
		if len(args) < n {
			return nil, &ParseError{Kind: MissingValue, Line: ln.no, Column: len(ln.text) + 1, Identifier: ln.ident(),
				Detail: fmt.Sprintf("want %d values, got %d", n, len(args))}
		}
		if len(args) > n {
			return nil, &ParseError{Kind: UnexpectedToken, Line: ln.no, Column: args[n].col, Identifier: ln.ident(),
				Token: args[n].text, Detail: fmt.Sprintf("want %d values, got %d", n, len(args))}
		}
		inst.values = make([]Value, 0, n)
		for _, tok := range args {
			if p.Type == String {
				inst.values = append(inst.values, StringValue(tok.text))
				continue
			}
			if !isDecimal(tok.text) {
				return nil, &ParseError{Kind: MalformedNumber, Line: ln.no, Column: tok.col, Identifier: ln.ident(),
					Token: tok.text}
			}
			f, err := strconv.ParseFloat(tok.text, 64)
			if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
				return nil, &ParseError{Kind: MalformedNumber, Line: ln.no, Column: tok.col, Identifier: ln.ident(),
					Token: tok.text}
			}
			inst.values = append(inst.values, RealValue(f))
		}
	}
	return inst, nil
}

// isDecimal reports whether s is a plain decimal numeral: an optional sign,
// digits with at most one point, and an optional exponent. Hex floats,
// digit separators, inf and nan are rejected.
func isDecimal(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
			digits++
		}
	}
	if digits == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
			exp++
		}
		if exp == 0 {
			return false
		}
	}
	return i == len(s)
}
