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
	"strconv"
	"strings"
)

// ErrorKind classifies a ParseError.
type ErrorKind int

const (
	MalformedNumber ErrorKind = iota + 1
	UnknownField
	UnknownObject
	DuplicateNonRepeatableField
	DuplicateNonRepeatableObject
	UnterminatedBlock
	// MissingValue: a parameter line carries fewer values than its schema expects.
	MissingValue
	// UnexpectedToken: a parameter line carries more values than its schema expects.
	UnexpectedToken
	// UnexpectedTerminator: a terminator line outside of any block.
	UnexpectedTerminator
)

var errorKindNames = map[ErrorKind]string{
	MalformedNumber:              "malformed number",
	UnknownField:                 "unknown field",
	UnknownObject:                "unknown object",
	DuplicateNonRepeatableField:  "duplicate non-repeatable field",
	DuplicateNonRepeatableObject: "duplicate non-repeatable object",
	UnterminatedBlock:            "unterminated block",
	MissingValue:                 "missing value",
	UnexpectedToken:              "unexpected token",
	UnexpectedTerminator:         "unexpected terminator",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return "ErrorKind(" + strconv.Itoa(int(k)) + ")"
}

// skippable reports whether a permissive parser may record the error as a
// diagnostic and continue. Structural errors never are: after them the
// stream cannot be re-synchronized unambiguously.
func (k ErrorKind) skippable() bool {
	return k == UnknownField || k == UnknownObject || k == UnexpectedTerminator
}

// ParseError reports malformed input. Line and Column are 1-based; Column is
// 0 when the error concerns a whole line or block.
type ParseError struct {
	Kind       ErrorKind
	Line       int
	Column     int
	Identifier string // object or field the error occurred in
	Token      string // offending token, if any
	Detail     string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d", e.Line)
		if e.Column > 0 {
			fmt.Fprintf(&b, ", column %d", e.Column)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Identifier != "" {
		fmt.Fprintf(&b, " %q", e.Identifier)
	}
	if e.Token != "" {
		fmt.Fprintf(&b, ": token %q", e.Token)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

// Is matches any ParseError of the same kind, so callers can write
// errors.Is(err, bzw.ErrMalformedNumber).
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrMalformedNumber              = &ParseError{Kind: MalformedNumber}
	ErrUnknownField                 = &ParseError{Kind: UnknownField}
	ErrUnknownObject                = &ParseError{Kind: UnknownObject}
	ErrDuplicateNonRepeatableField  = &ParseError{Kind: DuplicateNonRepeatableField}
	ErrDuplicateNonRepeatableObject = &ParseError{Kind: DuplicateNonRepeatableObject}
	ErrUnterminatedBlock            = &ParseError{Kind: UnterminatedBlock}
	ErrMissingValue                 = &ParseError{Kind: MissingValue}
	ErrUnexpectedToken              = &ParseError{Kind: UnexpectedToken}
	ErrUnexpectedTerminator         = &ParseError{Kind: UnexpectedTerminator}
)

// ConfigErrorKind classifies a ConfigError.
type ConfigErrorKind int

const (
	DuplicateFieldName ConfigErrorKind = iota + 1
	DuplicateObjectName
	InvalidName
	InvalidField
	SchemaFrozen
)

func (k ConfigErrorKind) String() string {
	switch k {
	case DuplicateFieldName:
		return "duplicate field name"
	case DuplicateObjectName:
		return "duplicate object name"
	case InvalidName:
		return "invalid name"
	case InvalidField:
		return "invalid field"
	case SchemaFrozen:
		return "schema frozen"
	default:
		return "ConfigErrorKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// ConfigError reports a misdeclared schema. It is raised while the schema is
// built and is never recoverable by the parser.
type ConfigError struct {
	Kind   ConfigErrorKind
	Name   string
	Detail string
}

func (e *ConfigError) Error() string {
	msg := "schema: " + e.Kind.String()
	if e.Name != "" {
		msg += fmt.Sprintf(" %q", e.Name)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ConfigError) Is(target error) bool {
	t, ok := target.(*ConfigError)
	return ok && t.Kind == e.Kind
}

var (
	ErrDuplicateFieldName  = &ConfigError{Kind: DuplicateFieldName}
	ErrDuplicateObjectName = &ConfigError{Kind: DuplicateObjectName}
	ErrInvalidName         = &ConfigError{Kind: InvalidName}
	ErrInvalidField        = &ConfigError{Kind: InvalidField}
	ErrSchemaFrozen        = &ConfigError{Kind: SchemaFrozen}
)

// Diagnostic is a problem a permissive parser recorded and skipped over.
type Diagnostic struct {
	Kind       ErrorKind
	Line       int
	Identifier string
	Message    string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s %q: %s", d.Line, d.Kind, d.Identifier, d.Message)
}
