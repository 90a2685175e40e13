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
	"strings"
)

// Policy decides what happens to unrecognized identifiers.
type Policy int

const (
	// Strict fails the parse on the first unknown object or field.
	Strict Policy = iota
	// Permissive records a Diagnostic and skips unknown content. Structural
	// errors stay fatal. An unknown field skips its own line only: the body
	// of an unknown nested block is read as further unknown fields, and its
	// terminator closes the enclosing object.
	Permissive
)

func (p Policy) String() string {
	if p == Permissive {
		return "permissive"
	}
	return "strict"
}

// ParsePolicy accepts "strict" and "permissive" (case-insensitive). The empty
// string yields Strict.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return Strict, nil
	case "permissive", "lenient":
		return Permissive, nil
	}
	return Strict, fmt.Errorf("unknown policy %q (want strict or permissive)", s)
}

// Options fixes the concrete syntax a Schema is parsed with.
type Options struct {
	Terminator    string // keyword closing every block
	CommentMarker string // prefix of ignored lines; empty disables comments
	Policy        Policy
}

// DefaultOptions returns the BZW conventions: "end" terminates blocks, "#"
// starts comments, unknown content is an error.
func DefaultOptions() Options {
	return Options{Terminator: "end", CommentMarker: "#", Policy: Strict}
}

func (o Options) validate() error {
	if !isWord(o.Terminator) {
		return &ConfigError{Kind: InvalidName, Name: o.Terminator, Detail: "terminator must be a single non-empty word"}
	}
	if strings.ContainsFunc(o.CommentMarker, isSpaceRune) {
		return &ConfigError{Kind: InvalidName, Name: o.CommentMarker, Detail: "comment marker must not contain whitespace"}
	}
	if o.CommentMarker != "" && strings.HasPrefix(o.Terminator, o.CommentMarker) {
		return &ConfigError{Kind: InvalidName, Name: o.Terminator, Detail: "terminator starts with the comment marker"}
	}
	if o.Policy != Strict && o.Policy != Permissive {
		return &ConfigError{Kind: InvalidName, Name: fmt.Sprint(int(o.Policy)), Detail: "unknown policy"}
	}
	return nil
}
